package main

import (
	"os"

	"github.com/spf13/cobra"

	"aegis/internal/interfaces/cli/migrate"
	"aegis/internal/interfaces/cli/server"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "aegis",
		Short: "Aegis - community membership and service account management",
		Long:  `Aegis resolves member states, computes group entitlements and keeps external service accounts in sync with them.`,
	}

	rootCmd.AddCommand(
		server.NewCommand(),
		migrate.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
