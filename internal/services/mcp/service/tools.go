package service

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Truvis/CodeDrop/internal/services/mcp/domain"
)

func registerDrawTools(mcpServer *mcp.Server, svc domain.DrawService, locale string) {
	mcp.AddTool(mcpServer, domain.FlipCoinTool(), domain.FlipCoinHandler(svc, locale))
	mcp.AddTool(mcpServer, domain.RollRangeTool(), domain.RollRangeHandler(svc, locale))
	mcp.AddTool(mcpServer, domain.ReplayRunTool(), domain.ReplayRunHandler(svc, locale))
	mcp.AddTool(mcpServer, domain.AnalyzeRunTool(), domain.AnalyzeRunHandler(svc, locale))
	mcp.AddTool(mcpServer, domain.ListRunsTool(), domain.ListRunsHandler(svc, locale))
}
