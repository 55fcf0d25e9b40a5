package cli

import (
	"fmt"

	"github.com/marcelsud/clinic-webhooks/webhook"
	"github.com/spf13/cobra"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "List the event tags a subscription can listen to",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, e := range webhook.Events() {
			fmt.Fprintln(cmd.OutOrStdout(), e.String())
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(eventsCmd)
}
