package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "scrapeworks-mcp",
	Short: "MCP server for the ScrapeWorks web-scraping control plane",
	Long: `scrapeworks-mcp exposes the ScrapeWorks control-plane API to MCP clients.
Agents, runs, schedules, spaces, billing, and analytics become callable tools
over a stdio or streamable HTTP transport.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML config file (optional)")
}
