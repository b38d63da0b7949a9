// Package scrapeworks exposes module-level metadata shared by the CLI and
// the MCP server surface.
package scrapeworks

// Version is the release version reported by the server and the CLI.
const Version = "0.3.1"
