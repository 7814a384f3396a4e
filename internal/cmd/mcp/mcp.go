// Package mcp parses MCP command flags and selects stdio or HTTP transport.
package mcp

import (
	"context"
	"flag"
	"fmt"

	platformcmd "github.com/Truvis/CodeDrop/internal/platform/cmd"
	"github.com/Truvis/CodeDrop/internal/platform/timeouts"
	mcpservice "github.com/Truvis/CodeDrop/internal/services/mcp/service"
)

// Config holds MCP command configuration.
type Config struct {
	HTTPAddr  string `env:"RANDOMFLIP_MCP_HTTP_ADDR" envDefault:"localhost:8081"`
	Transport string `env:"RANDOMFLIP_MCP_TRANSPORT" envDefault:"stdio"`
	DBPath    string `env:"RANDOMFLIP_DB_PATH"       envDefault:"data/randomflip.db"`
	Locale    string `env:"RANDOMFLIP_LOCALE"        envDefault:"en-US"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := platformcmd.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP server address (for HTTP transport)")
	fs.StringVar(&cfg.Transport, "transport", cfg.Transport, "Transport type: stdio or http")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "run history database path (empty disables history)")
	fs.StringVar(&cfg.Locale, "locale", cfg.Locale, "locale for summaries and errors")
	rest, err := platformcmd.ParseArgs(fs, args)
	if err != nil {
		return Config{}, err
	}
	if len(rest) > 0 {
		return Config{}, fmt.Errorf("unexpected argument %q", rest[0])
	}
	return cfg, nil
}

// Run starts the MCP protocol adapter.
func Run(ctx context.Context, cfg Config) error {
	return platformcmd.RunWithTelemetry(ctx, platformcmd.ServiceMCP, func(ctx context.Context) error {
		return mcpservice.Run(ctx, mcpservice.Config{
			Transport: mcpservice.TransportKind(cfg.Transport),
			HTTPAddr:  cfg.HTTPAddr,
			DBPath:    cfg.DBPath,
			Locale:    cfg.Locale,
		})
	}, platformcmd.WithShutdownTimeout(timeouts.Shutdown))
}
