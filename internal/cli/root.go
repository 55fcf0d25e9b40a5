package cli

import (
	"github.com/spf13/cobra"
)

// Version is set at build time with -ldflags
var Version = "dev"

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:     "webhookctl",
	Version: Version,
	Short:   "Operate the clinic webhook delivery subsystem",
	Long: `webhookctl is the operator tool for clinic webhooks.
It signs and verifies payloads the way receivers must, runs the
recovery sweep by hand, applies provisioning files and migrates the
postgres schema.

Commands that touch the store or the queue read the same settings
as the API (.env file or environment).`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and runs it.
// This is called by main.main().
func Execute() error {
	return RootCmd.Execute()
}
