package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/scrapeworks/scrapeworks-mcp/internal/config"
	"github.com/scrapeworks/scrapeworks-mcp/internal/logging"
	"github.com/scrapeworks/scrapeworks-mcp/pkg/api"
	"github.com/scrapeworks/scrapeworks-mcp/pkg/gateway"
	"github.com/scrapeworks/scrapeworks-mcp/pkg/mcpserver"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP server",
	Long: `Starts the ScrapeWorks MCP server.

Supported transports:
- stdio (default): standard input/output, one session for the process lifetime.
- http: streamable HTTP with per-connection sessions, OAuth discovery
  documents, and an idle-session reaper.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("transport") {
			cfg.Transport, _ = cmd.Flags().GetString("transport")
		}
		if cmd.Flags().Changed("port") {
			cfg.Port, _ = cmd.Flags().GetInt("port")
		}
		if cmd.Flags().Changed("host") {
			cfg.Host, _ = cmd.Flags().GetString("host")
		}
		if cmd.Flags().Changed("debug") {
			cfg.Debug, _ = cmd.Flags().GetBool("debug")
		}

		logger := logging.FromDebug(cfg.Debug)

		switch cfg.Transport {
		case config.TransportStdio:
			// Keep stdout clean for JSON-RPC framing.
			log.SetOutput(os.Stderr)
			client := api.NewClient(cfg.BaseURL,
				api.WithAPIKey(cfg.APIKey),
				api.WithLogger(logger),
			)
			srv := mcpserver.New(client, mcpserver.WithLogger(logger))
			logger.Info("starting MCP server (stdio)")
			return server.ServeStdio(srv)

		case config.TransportHTTP:
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger.Info("starting MCP server (http)", "host", cfg.Host, "port", cfg.Port)
			if err := gateway.NewServer(cfg, logger).Run(ctx); err != nil {
				return err
			}
			logger.Info("MCP server stopped gracefully")
			return nil
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("transport", config.TransportStdio, "Transport protocol: 'stdio' or 'http'")
	serveCmd.Flags().String("host", "0.0.0.0", "Host to bind (http transport)")
	serveCmd.Flags().Int("port", 8080, "Port to listen on (http transport)")
	serveCmd.Flags().Bool("debug", false, "Enable debug logging")
}
