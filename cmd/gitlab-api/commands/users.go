package commands

import (
	"fmt"

	"github.com/fivetwenty-io/gitlab-client/pkg/gitlab"
	"github.com/spf13/cobra"
)

// NewWhoamiCommand creates the whoami command.
func NewWhoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the user the credential belongs to",
		Long:  "Display the account behind the configured token (or the --sudo user)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			client, err := createClient(ctx)
			if err != nil {
				return err
			}

			user, err := gitlab.NewUsersService(client).Current(ctx)
			if err != nil {
				return fmt.Errorf("failed to get current user: %w", err)
			}

			return render(ctx, cmd.OutOrStdout(), user)
		},
	}
}
