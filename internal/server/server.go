// Package server wires the Visa tool set into an MCP server and runs it over
// the stdio or SSE transport.
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"visamcp/internal/config"
	"visamcp/internal/tools"
	"visamcp/internal/visa"
	"visamcp/pkg/logging"

	"github.com/mark3labs/mcp-go/server"
)

const serverName = "visa-mcp"

// Server hosts the Visa MCP tool set.
type Server struct {
	cfg       config.ServerConfig
	mcpServer *server.MCPServer
}

// New creates an MCP server with all Visa tools registered.
func New(version string, client visa.API, cfg config.ServerConfig) *Server {
	mcpServer := server.NewMCPServer(
		serverName,
		version,
		server.WithToolCapabilities(true),
	)

	visaTools := tools.NewVisaTools(client)
	handlers := visaTools.Handlers()
	for _, tool := range visaTools.GetTools() {
		mcpServer.AddTool(tool, handlers[tool.Name])
	}

	return &Server{
		cfg:       cfg,
		mcpServer: mcpServer,
	}
}

// Start runs the server on the configured transport until ctx is cancelled
// or the transport closes.
func (s *Server) Start(ctx context.Context) error {
	switch s.cfg.Transport {
	case config.TransportSSE:
		return s.startSSE(ctx)
	case config.TransportStdio, "":
		return s.startStdio(ctx)
	default:
		return fmt.Errorf("unsupported transport: %s", s.cfg.Transport)
	}
}

// startStdio serves MCP over stdin/stdout. All logging goes to stderr so the
// protocol stream stays clean.
func (s *Server) startStdio(ctx context.Context) error {
	logging.Info("Server", "Starting %s on stdio transport", serverName)
	stdioServer := server.NewStdioServer(s.mcpServer)
	return stdioServer.Listen(ctx, os.Stdin, os.Stdout)
}

// startSSE serves MCP over HTTP with server-sent events.
func (s *Server) startSSE(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	baseURL := fmt.Sprintf("http://%s", addr)

	sseServer := server.NewSSEServer(
		s.mcpServer,
		server.WithBaseURL(baseURL),
		server.WithSSEEndpoint("/sse"),
		server.WithMessageEndpoint("/message"),
		server.WithKeepAlive(true),
		server.WithKeepAliveInterval(30*time.Second),
	)

	logging.Info("Server", "Starting %s SSE server on %s", serverName, addr)

	errCh := make(chan error, 1)
	go func() {
		if err := sseServer.Start(addr); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("SSE server error: %w", err)
	case <-ctx.Done():
	}

	logging.Info("Server", "Shutting down SSE server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sseServer.Shutdown(shutdownCtx); err != nil {
		logging.Error("Server", err, "Error shutting down SSE server")
		return err
	}
	return nil
}
