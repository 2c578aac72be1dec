package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"visamcp/internal/config"
	"visamcp/internal/server"
	"visamcp/internal/visa"
	"visamcp/pkg/logging"

	"github.com/spf13/cobra"
)

// serveDebug enables verbose logging across the application.
// This helps troubleshoot certificate and connectivity issues.
var serveDebug bool

// serveTransport overrides the configured MCP transport (stdio or sse).
var serveTransport string

// serveHost and servePort override the SSE listen address.
var serveHost string
var servePort int

// serveCmd defines the serve command structure. This is the main command of
// visamcp: it builds the authenticated Visa client and serves the tool set.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Visa MCP server",
	Long: `Starts the Visa MCP server, exposing Visa Developer Platform APIs as MCP tools.

The server supports two transports:

1. stdio (default):
   - Speaks MCP over stdin/stdout, for clients that spawn the server as a
     subprocess (Claude Desktop, Cursor, etc). Logs go to stderr.

2. SSE (using --transport sse):
   - Serves MCP over HTTP with server-sent events on the configured host
     and port, for clients that connect over the network.

Configuration:
  visamcp loads configuration from ~/.config/visamcp/config.yaml and
  ./.visamcp/config.yaml, with VISA_* environment variables taking
  precedence. Credentials (VISA_USER_ID, VISA_PASSWORD) and the client
  certificate pair (VISA_CERT_PATH, VISA_KEY_PATH) are required; the
  certificate files are only read on the first tool call.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

// runServe is the main entry point for the serve command
func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Flags override file and environment configuration
	if serveTransport != "" {
		cfg.Server.Transport = serveTransport
	}
	if serveHost != "" {
		cfg.Server.Host = serveHost
	}
	if servePort != 0 {
		cfg.Server.Port = servePort
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logLevel := logging.LevelInfo
	if serveDebug {
		logLevel = logging.LevelDebug
	}
	// Logs must never reach stdout: the stdio transport owns it.
	logging.Init(logLevel, os.Stderr)

	client := visa.NewClient(&cfg)
	srv := server.New(rootCmd.Version, client, cfg.Server)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.Start(ctx)
}

// init registers the serve command and its flags with the root command.
func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().BoolVar(&serveDebug, "debug", false, "Enable debug logging")
	serveCmd.Flags().StringVar(&serveTransport, "transport", "", "MCP transport: stdio or sse (default from config, stdio)")
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Host to bind the SSE server to")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port for the SSE server")
}
