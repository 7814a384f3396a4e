// Package service wires MCP transports to the draw tools.
//
// It runs the MCP server over stdio or streamable HTTP and owns the run
// store used by the tools.
package service
