package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "visamcp",
	Short: "MCP server for Visa payment-network APIs",
	Long: `visamcp exposes Visa Developer Platform APIs (foreign exchange rates,
ATM locator, subscription manager, stop payment service) as MCP tools,
authenticating with client-certificate mutual TLS.`,
	// SilenceUsage is set to true to prevent printing usage message on errors
	// handled by us (e.g. invalid configuration, failed connections)
	SilenceUsage: true,
}

// SetVersion sets the version for the root command
func SetVersion(v string) {
	rootCmd.Version = v
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "visamcp version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		// Cobra prints the error, we just exit non-zero
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newVersionCmd())
}
