// Package mcpserver exposes shieldscan as a Model Context Protocol (MCP)
// server so AI assistants can run scans through tool calls.
//
// # Capabilities
//
//   - Tools:     run_scan (one full scan of a URL), list_categories
//   - Resources: shieldscan://version, shieldscan://categories
//
// # Transport
//
// The server speaks MCP over stdin/stdout. Scans run synchronously inside
// the tool call; the client's request context cancels them.
package mcpserver
