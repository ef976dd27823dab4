package commands

import (
	"fmt"

	"github.com/fivetwenty-io/gitlab-client/pkg/gitlab"
	"github.com/spf13/cobra"
)

// NewProjectsCommand creates the projects command group.
func NewProjectsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "projects",
		Aliases: []string{"project"},
		Short:   "Work with projects",
		Long:    "List and inspect projects and their webhooks",
	}

	cmd.AddCommand(newProjectsListCommand())
	cmd.AddCommand(newProjectsGetCommand())
	cmd.AddCommand(newProjectsHooksCommand())

	return cmd
}

func newProjectsListCommand() *cobra.Command {
	var (
		opts gitlab.ListProjectsOptions
		sort string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List projects",
		Long:  "List projects visible to the credential. --order-by id uses keyset pagination.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if sort != "" {
				sortOrder, err := gitlab.ParseSortOrder(sort)
				if err != nil {
					return err
				}

				opts.Sort = sortOrder
			}

			client, err := createClient(ctx)
			if err != nil {
				return err
			}

			projects, err := gitlab.NewProjectsService(client).List(ctx, &opts)
			if err != nil && !gitlab.IsPaginationGuard(err) {
				return fmt.Errorf("failed to list projects: %w", err)
			}

			renderErr := render(ctx, cmd.OutOrStdout(), projects)
			if renderErr != nil {
				return renderErr
			}

			return err
		},
	}

	cmd.Flags().StringVar(&opts.Search, "search", "", "only projects matching this search")
	cmd.Flags().BoolVar(&opts.Owned, "owned", false, "only projects owned by the current user")
	cmd.Flags().BoolVar(&opts.Membership, "membership", false, "only projects the current user is a member of")
	cmd.Flags().StringVar(&opts.Visibility, "visibility", "", "public, internal or private")
	cmd.Flags().StringVar(&opts.OrderBy, "order-by", "", `order_by key; "id" selects keyset pagination`)
	cmd.Flags().StringVar(&sort, "sort", "", "sort order (asc, desc)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "stop after this many projects (0 for all)")

	return cmd
}

func newProjectsGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get PROJECT",
		Short: "Show a project",
		Long:  "Show a project by numeric ID or full path (group/project)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			client, err := createClient(ctx)
			if err != nil {
				return err
			}

			project, err := gitlab.NewProjectsService(client).Get(ctx, gitlab.ParseNameOrID(args[0]))
			if err != nil {
				return fmt.Errorf("failed to get project %s: %w", args[0], err)
			}

			return render(ctx, cmd.OutOrStdout(), project)
		},
	}
}

func newProjectsHooksCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hooks",
		Short: "Manage project webhooks",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list PROJECT",
		Short: "List the webhooks of a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			client, err := createClient(ctx)
			if err != nil {
				return err
			}

			hooks, err := gitlab.NewProjectsService(client).ListHooks(ctx, gitlab.ParseNameOrID(args[0]))
			if err != nil {
				return fmt.Errorf("failed to list hooks: %w", err)
			}

			return render(ctx, cmd.OutOrStdout(), hooks)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete PROJECT HOOK_ID",
		Short: "Delete a project webhook",
		Args:  cobra.ExactArgs(2), //nolint:mnd // project and hook
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			hookID, err := gitlab.ParseID[gitlab.HookID](args[1])
			if err != nil {
				return err
			}

			client, err := createClient(ctx)
			if err != nil {
				return err
			}

			err = gitlab.NewProjectsService(client).DeleteHook(ctx, gitlab.ParseNameOrID(args[0]), hookID)
			if err != nil {
				return fmt.Errorf("failed to delete hook %s: %w", args[1], err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted hook %s\n", args[1])

			return nil
		},
	})

	return cmd
}
