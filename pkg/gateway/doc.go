/*
Package gateway runs the network transport for the MCP server.

Each long-lived client connection owns one MCP server instance, one streamable
HTTP transport, and one authenticated API client, bound together as a Session
and registered in an in-memory Store keyed by the transport-assigned
identifier. A Reaper evicts idle sessions on a fixed interval, and shutdown
drains the store concurrently under a hard deadline.
*/
package gateway
