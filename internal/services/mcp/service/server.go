package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Truvis/CodeDrop/internal/services/draw"
	"github.com/Truvis/CodeDrop/internal/services/mcp/domain"
	"github.com/Truvis/CodeDrop/internal/storage/sqlite"
)

const (
	// serverName identifies this MCP server to clients.
	serverName = "randomflip"
	// serverVersion identifies the MCP server version.
	serverVersion = "0.1.0"
	// defaultHTTPAddr is used when HTTP transport has no address.
	defaultHTTPAddr = "localhost:8081"
)

// TransportKind identifies the MCP transport implementation.
type TransportKind string

const (
	// TransportStdio uses standard input/output for MCP.
	TransportStdio TransportKind = "stdio"
	// TransportHTTP serves MCP over streamable HTTP.
	TransportHTTP TransportKind = "http"
)

// Config configures the MCP server.
type Config struct {
	Transport TransportKind
	HTTPAddr  string
	// DBPath locates the run store. Empty disables replay_run and list_runs.
	DBPath string
	Locale string
}

// Server hosts the MCP server.
type Server struct {
	mcpServer *mcp.Server
	store     *sqlite.Store
}

// New creates an MCP server exposing the draw tools backed by svc.
func New(svc domain.DrawService, locale string) *Server {
	mcpServer := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil)
	registerDrawTools(mcpServer, svc, locale)
	return &Server{mcpServer: mcpServer}
}

// newServer opens the configured run store and builds a server around it.
func newServer(cfg Config) (*Server, error) {
	if strings.TrimSpace(cfg.DBPath) == "" {
		return New(draw.New(), cfg.Locale), nil
	}
	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open run store: %w", err)
	}
	server := New(draw.New(draw.WithStore(store)), cfg.Locale)
	server.store = store
	return server, nil
}

// Run is the service entrypoint for MCP and blocks until context cancellation.
func Run(ctx context.Context, cfg Config) error {
	if cfg.Transport == "" {
		cfg.Transport = TransportStdio
	}

	switch cfg.Transport {
	case TransportStdio:
		return runWithTransport(ctx, cfg, &mcp.StdioTransport{})
	case TransportHTTP:
		return runWithHTTPTransport(ctx, cfg)
	default:
		return fmt.Errorf("transport %q is not supported", cfg.Transport)
	}
}

// runWithTransport creates a server and serves it over the provided transport.
func runWithTransport(ctx context.Context, cfg Config, transport mcp.Transport) error {
	server, err := newServer(cfg)
	if err != nil {
		return err
	}
	return server.serveWithTransport(ctx, transport)
}

// runWithHTTPTransport creates a server and serves it over streamable HTTP.
func runWithHTTPTransport(ctx context.Context, cfg Config) error {
	httpAddr := cfg.HTTPAddr
	if httpAddr == "" {
		httpAddr = defaultHTTPAddr
	}

	server, err := newServer(cfg)
	if err != nil {
		return err
	}
	defer server.Close()

	return NewHTTPTransport(httpAddr, server.mcpServer).Start(ctx)
}

// Serve starts the MCP server on stdio and blocks until it stops or the context ends.
func (s *Server) Serve(ctx context.Context) error {
	return s.serveWithTransport(ctx, &mcp.StdioTransport{})
}

// Close releases the run store held by the server.
func (s *Server) Close() error {
	if s == nil || s.store == nil {
		return nil
	}
	if err := s.store.Close(); err != nil {
		return err
	}
	s.store = nil
	return nil
}

// serveWithTransport starts the MCP server using the provided transport.
func (s *Server) serveWithTransport(ctx context.Context, transport mcp.Transport) error {
	if s == nil || s.mcpServer == nil {
		return fmt.Errorf("MCP server is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	err := s.mcpServer.Run(ctx, transport)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		err = nil
	}
	closeErr := s.Close()
	if closeErr != nil {
		if err == nil {
			return fmt.Errorf("close run store: %w", closeErr)
		}
		return fmt.Errorf("serve MCP: %v; close run store: %w", err, closeErr)
	}
	if err != nil {
		return fmt.Errorf("serve MCP: %w", err)
	}
	return nil
}
