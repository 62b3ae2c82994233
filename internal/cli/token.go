package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	jwttoken "namelease/internal/jwt_token"
	id "namelease/pkg/domain"
)

var (
	tokenAccount    string
	tokenTTL        time.Duration
	tokenSigningKey string
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a bearer token for an account",
	Long: `Mint a signed bearer token locally.

The signing key must match the server's jwt_signing_key or the token
will be rejected. Without --account a fresh account ID is generated;
keep it, it is the identity that owns whatever the token claims.`,
	RunE: runTokenCmd,
}

func runTokenCmd(cmd *cobra.Command, args []string) error {
	accountID := id.NewAccountID()
	if tokenAccount != "" {
		parsed, err := id.ParseAccountID(tokenAccount)
		if err != nil {
			return fmt.Errorf("invalid --account: %w", err)
		}
		accountID = parsed
	}

	svc := jwttoken.NewJWTService(tokenSigningKey, jwttoken.Issuer, jwttoken.Audience)
	token, err := svc.GenerateAccessToken(accountID, tokenTTL)
	if err != nil {
		return fmt.Errorf("failed to mint token: %w", err)
	}

	out, err := json.MarshalIndent(map[string]string{
		"account_id": accountID.String(),
		"token":      token,
	}, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return err
}

func init() {
	tokenCmd.Flags().StringVar(&tokenAccount, "account", "",
		"account ID to mint for (default: generate a new one)")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour,
		"token lifetime")
	tokenCmd.Flags().StringVar(&tokenSigningKey, "signing-key",
		envOr("NAMELEASE_JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		"JWT signing key shared with the server")
	RootCmd.AddCommand(tokenCmd)
}
