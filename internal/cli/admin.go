package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Registry administration (requires the admin account token)",
	Long: `Registry administration.

Every subcommand is rejected with "unauthorized" unless the token's
account matches the admin the registry was seeded with.`,
}

var adminPriceCmd = &cobra.Command{
	Use:   "price <per-year>",
	Short: "Set the per-year claim price",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		price, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid price %q: %w", args[0], err)
		}
		raw, err := newClient().SetPrice(cmd.Context(), price)
		if err != nil {
			return err
		}
		return printJSON(cmd, raw)
	},
}

var adminMultiplierCmd = &cobra.Command{
	Use:   "multiplier <factor>",
	Short: "Set the renewal price multiplier",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		factor, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid multiplier %q: %w", args[0], err)
		}
		raw, err := newClient().SetMultiplier(cmd.Context(), factor)
		if err != nil {
			return err
		}
		return printJSON(cmd, raw)
	},
}

var adminPauseCmd = &cobra.Command{
	Use:   "pause",
	Short: "Stop all claims and renewals",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := newClient().Pause(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(cmd, raw)
	},
}

var adminUnpauseCmd = &cobra.Command{
	Use:   "unpause",
	Short: "Resume claims and renewals",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := newClient().Unpause(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(cmd, raw)
	},
}

var adminWithdrawCmd = &cobra.Command{
	Use:   "withdraw",
	Short: "Drain the registry balance to the admin account",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := newClient().Withdraw(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(cmd, raw)
	},
}

var adminSnapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Export every lease and the settings to the server's blob store",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := newClient().Snapshot(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(cmd, raw)
	},
}

func init() {
	adminCmd.AddCommand(adminPriceCmd)
	adminCmd.AddCommand(adminMultiplierCmd)
	adminCmd.AddCommand(adminPauseCmd)
	adminCmd.AddCommand(adminUnpauseCmd)
	adminCmd.AddCommand(adminWithdrawCmd)
	adminCmd.AddCommand(adminSnapshotCmd)
	RootCmd.AddCommand(adminCmd)
}
