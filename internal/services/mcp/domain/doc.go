// Package domain maps MCP tool calls onto draw service operations.
//
// Each tool has a schema constructor and a handler factory. Handlers return
// structured results and render domain errors with their code and a
// localized message.
package domain
