// Package cli implements the registrarctl commands. Each command is a
// thin shell over the server's JSON API; token minting is the only
// operation that runs locally.
package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	Version = "dev"

	serverURL string
	authToken string
)

// RootCmd represents the base command when called without any subcommands.
var RootCmd = &cobra.Command{
	Use:     "registrarctl",
	Version: Version,
	Short:   "Client for the namelease domain leasing registry",
	Long: `registrarctl talks to a running namelease server.

Leases are claimed and renewed against the server's HTTP API; the admin
surface prices, pauses, and drains the registry. Requests authenticate
with the bearer token minted by "registrarctl token".`,
	SilenceUsage: true,
}

// Execute runs the root command. Called once from main.
func Execute() error {
	return RootCmd.Execute()
}

func init() {
	RootCmd.PersistentFlags().StringVar(&serverURL, "server",
		envOr("NAMELEASE_SERVER", "http://localhost:8080"),
		"base URL of the namelease server")
	RootCmd.PersistentFlags().StringVar(&authToken, "token",
		os.Getenv("NAMELEASE_TOKEN"),
		"bearer token (defaults to NAMELEASE_TOKEN)")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func newClient() *Client {
	return NewClient(serverURL, authToken)
}
