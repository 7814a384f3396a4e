package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Truvis/CodeDrop/internal/platform/timeouts"
)

// HTTPTransport serves an MCP server over streamable HTTP.
type HTTPTransport struct {
	addr       string
	mcpServer  *mcp.Server
	httpServer *http.Server
}

// NewHTTPTransport creates an HTTP transport for mcpServer listening on addr.
func NewHTTPTransport(addr string, mcpServer *mcp.Server) *HTTPTransport {
	return &HTTPTransport{addr: addr, mcpServer: mcpServer}
}

// Handler returns the HTTP routes: /mcp for the protocol and /mcp/health for probes.
func (t *HTTPTransport) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/mcp", mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return t.mcpServer
	}, nil))
	mux.HandleFunc("/mcp/health", t.handleHealth)
	return mux
}

// Start serves HTTP until ctx ends or the listener fails.
func (t *HTTPTransport) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", t.addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", t.addr, err)
	}

	t.httpServer = &http.Server{
		Handler:           t.Handler(),
		ReadHeaderTimeout: timeouts.ReadHeader,
	}
	log.Printf("Starting MCP HTTP server on %s", listener.Addr())

	errChan := make(chan error, 1)
	go func() {
		if err := t.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Printf("Shutting down MCP HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		defer cancel()
		if err := t.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown HTTP server: %w", err)
		}
		return nil
	case err := <-errChan:
		return fmt.Errorf("HTTP server error: %w", err)
	}
}

func (t *HTTPTransport) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
