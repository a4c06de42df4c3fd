package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"swipehire/internal/domain/session"
	"swipehire/internal/security"
)

type TokenOptions struct {
	*RootOptions
	Secret string
	TTL    time.Duration
}

func NewTokenCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TokenOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "token <actorId> <developer|company>",
		Short: "Mint a bearer token for local testing",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Secret == "" {
				return fmt.Errorf("--secret or JWT_SECRET is required")
			}
			sess, err := session.New(args[0], session.Role(args[1]))
			if err != nil {
				return err
			}
			token, expiresAt, err := security.NewJWTProvider(opts.Secret).Generate(sess, opts.TTL)
			if err != nil {
				return err
			}
			if opts.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), map[string]any{"token": token, "expiresAt": expiresAt})
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Secret, "secret", os.Getenv("JWT_SECRET"), "HMAC secret shared with the server")
	cmd.Flags().DurationVar(&opts.TTL, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}
