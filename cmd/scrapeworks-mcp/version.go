package main

import (
	"fmt"

	"github.com/spf13/cobra"

	scrapeworks "github.com/scrapeworks/scrapeworks-mcp"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of scrapeworks-mcp",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("scrapeworks-mcp version %s\n", scrapeworks.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
