package cli

import (
	"github.com/spf13/cobra"
)

var (
	claimYears  int
	claimAmount int64
	renewYears  int
	renewAmount int64
)

var claimCmd = &cobra.Command{
	Use:   "claim <name>",
	Short: "Lease a domain name for the calling account",
	Long: `Lease a domain name for the calling account.

The attached amount must cover years * price_per_year; any excess is
kept by the registry. Claiming an expired name evicts the previous
record entirely.

Examples:
  registrarctl claim example.com --years 2 --amount 200`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := newClient().Claim(cmd.Context(), args[0], claimYears, claimAmount)
		if err != nil {
			return err
		}
		return printJSON(cmd, raw)
	},
}

var renewCmd = &cobra.Command{
	Use:   "renew <name>",
	Short: "Extend an existing lease owned by the calling account",
	Long: `Extend an existing lease owned by the calling account.

Renewal prices at years * price_per_year * renewal_multiplier and adds
to the current duration. Works on an expired lease too, as long as
nobody has reclaimed the name.

Examples:
  registrarctl renew example.com --years 1 --amount 400`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := newClient().Renew(cmd.Context(), args[0], renewYears, renewAmount)
		if err != nil {
			return err
		}
		return printJSON(cmd, raw)
	},
}

var infoCmd = &cobra.Command{
	Use:   "info <name>",
	Short: "Show the full lease record for a name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := newClient().Info(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd, raw)
	},
}

var ownerCmd = &cobra.Command{
	Use:   "owner <name>",
	Short: "Show which account holds a name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := newClient().Owner(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd, raw)
	},
}

func init() {
	claimCmd.Flags().IntVar(&claimYears, "years", 1, "lease duration in years (1-10)")
	claimCmd.Flags().Int64Var(&claimAmount, "amount", 0, "attached payment in minor units")
	renewCmd.Flags().IntVar(&renewYears, "years", 1, "additional years (1-10)")
	renewCmd.Flags().Int64Var(&renewAmount, "amount", 0, "attached payment in minor units")

	RootCmd.AddCommand(claimCmd)
	RootCmd.AddCommand(renewCmd)
	RootCmd.AddCommand(infoCmd)
	RootCmd.AddCommand(ownerCmd)
}
