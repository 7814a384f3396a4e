package main

import (
	"flag"
	"log"
	"os"

	mcpcmd "github.com/Truvis/CodeDrop/internal/cmd/mcp"
	platformcmd "github.com/Truvis/CodeDrop/internal/platform/cmd"
)

// main starts the MCP server on stdio or HTTP.
func main() {
	cfg, err := mcpcmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	platformcmd.SetLogPrefix(platformcmd.ServiceMCP)

	ctx, stop := platformcmd.SignalContext()
	defer stop()

	if err := mcpcmd.Run(ctx, cfg); err != nil {
		log.Fatalf("failed to serve MCP: %v", err)
	}
}
