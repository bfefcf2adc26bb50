package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"docarchive/internal/auth"
	"docarchive/internal/docstore"
)

func NewTokenCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token <username>",
		Short: "Issue an API bearer token",
		Long: `Issue a signed bearer token for the API.

The user is created if it does not exist yet. The token is valid for JWT_TTL
unless --ttl overrides it; a zero TTL issues a token that never expires.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if err := docstore.ValidateUserName(name); err != nil {
				return err
			}

			a, err := openArchive(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			ttl := a.Config.Auth.TokenTTL
			if cmd.Flags().Changed("ttl") {
				ttl, _ = cmd.Flags().GetDuration("ttl")
			}
			tokens, err := auth.NewTokens(a.Config.Auth.JWTSecret, ttl)
			if err != nil {
				return err
			}

			if _, err := a.Repos.Users.Ensure(cmd.Context(), name); err != nil {
				return fmt.Errorf("ensure user: %w", err)
			}
			token, err := tokens.Issue(name)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().Duration("ttl", 0, "token lifetime (default JWT_TTL)")

	return cmd
}
