package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var depositCmd = &cobra.Command{
	Use:   "deposit <amount>",
	Short: "Credit value from the calling account into the registry ledger",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid amount %q: %w", args[0], err)
		}
		if err := newClient().Deposit(cmd.Context(), amount); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "deposit accepted")
		return nil
	},
}

func init() {
	RootCmd.AddCommand(depositCmd)
}
