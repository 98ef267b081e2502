package client

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/mwantia/pastebox/internal/command"
)

func NewTagCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tag <id> <name...>",
		Short: "Attach tags to a paste",
		Long:  "Attach the named tags to the end of the paste's tag list, creating tags that do not exist yet.",
		Args:  cobra.MinimumNArgs(2),
		RunE: withService(func(ctx context.Context, cmd *cobra.Command, svc *command.Service, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			for _, name := range args[1:] {
				if _, err := svc.Tag(ctx, id, name); err != nil {
					return err
				}
			}
			return nil
		}),
	}

	return cmd
}

func NewUntagCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "untag <id> <name...>",
		Short: "Detach tags from a paste",
		Args:  cobra.MinimumNArgs(2),
		RunE: withService(func(ctx context.Context, cmd *cobra.Command, svc *command.Service, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			for _, name := range args[1:] {
				if err := svc.Untag(ctx, id, name); err != nil {
					return err
				}
			}
			return nil
		}),
	}

	return cmd
}

func NewReorderCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reorder <id> <name...>",
		Short: "Reorder the tags of a paste",
		Long:  "Reorder the tags of a paste. Every attached tag must be named exactly once.",
		Args:  cobra.MinimumNArgs(2),
		RunE: withService(func(ctx context.Context, cmd *cobra.Command, svc *command.Service, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			return svc.ReorderTags(ctx, id, args[1:])
		}),
	}

	return cmd
}

func NewTagsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tags",
		Short: "Manage tags",
	}

	cmd.AddCommand(newTagsListCommand())
	cmd.AddCommand(newTagsRemoveCommand())

	return cmd
}

func newTagsListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List all tags",
		Args:  cobra.NoArgs,
		RunE: withService(func(ctx context.Context, cmd *cobra.Command, svc *command.Service, args []string) error {
			tags, err := svc.ListTags(ctx)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tCREATED")
			for _, tag := range tags {
				fmt.Fprintf(w, "%d\t%s\t%s\n", tag.ID, tag.Name, tag.CreatedAt.Local().Format(time.DateTime))
			}
			return w.Flush()
		}),
	}

	return cmd
}

func newTagsRemoveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rm <id...>",
		Short: "Delete tags from every paste",
		Args:  cobra.MinimumNArgs(1),
		RunE: withService(func(ctx context.Context, cmd *cobra.Command, svc *command.Service, args []string) error {
			for _, arg := range args {
				id, err := parseID(arg)
				if err != nil {
					return err
				}
				if err := svc.DeleteTag(ctx, id); err != nil {
					return err
				}
			}
			return nil
		}),
	}

	return cmd
}
