package client

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/mwantia/pastebox/internal/command"
	"github.com/mwantia/pastebox/pkg/db/models"
	"github.com/mwantia/pastebox/pkg/db/store"
)

func NewCaptureCommand() *cobra.Command {
	var tags []string
	var fromStdin bool

	cmd := &cobra.Command{
		Use:   "capture [content...]",
		Short: "Store a new paste",
		Long:  "Store the given content, or stdin with --stdin, as a new paste and attach the given tags in order.",
		RunE: withService(func(ctx context.Context, cmd *cobra.Command, svc *command.Service, args []string) error {
			content, err := readContent(cmd, args, fromStdin)
			if err != nil {
				return err
			}

			id, err := svc.Capture(ctx, content, tags...)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		}),
	}

	cmd.Flags().StringSliceVarP(&tags, "tag", "t", nil, "tag to attach (repeatable)")
	cmd.Flags().BoolVar(&fromStdin, "stdin", false, "read content from stdin")

	return cmd
}

func NewRecallCommand() *cobra.Command {
	var order string
	var ascending bool
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "recall [filter]",
		Short: "List stored pastes",
		Long:  "List stored pastes with their tags. A filter matches paste content or tag names.",
		Args:  cobra.MaximumNArgs(1),
		RunE: withService(func(ctx context.Context, cmd *cobra.Command, svc *command.Service, args []string) error {
			opts := store.ListOptions{
				Descending: !ascending,
				Limit:      limit,
				Offset:     offset,
			}
			switch order {
			case "used", "":
				opts.OrderBy = models.OrderByLastUsedAt
			case "created":
				opts.OrderBy = models.OrderByCreatedAt
			default:
				return fmt.Errorf("unknown order '%s' (expected used or created)", order)
			}

			var filter string
			if len(args) > 0 {
				filter = args[0]
			}

			pastes, err := svc.Recall(ctx, filter, opts)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tLAST USED\tTAGS\tVALUE")
			for _, p := range pastes {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n",
					p.ID, p.LastUsedAt.Local().Format(time.DateTime), strings.Join(p.Tags, ","), preview(p.Value, 60))
			}
			return w.Flush()
		}),
	}

	cmd.Flags().StringVar(&order, "order", "used", "sort by 'used' or 'created'")
	cmd.Flags().BoolVar(&ascending, "asc", false, "oldest first")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of pastes, 0 for all")
	cmd.Flags().IntVar(&offset, "offset", 0, "number of pastes to skip")

	return cmd
}

func NewUseCommand() *cobra.Command {
	var printValue bool

	cmd := &cobra.Command{
		Use:   "use <id>",
		Short: "Copy a paste back to the clipboard",
		Long:  "Marks the paste as used and copies its value to the system clipboard, or prints it with --print.",
		Args:  cobra.ExactArgs(1),
		RunE: withService(func(ctx context.Context, cmd *cobra.Command, svc *command.Service, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			paste, err := svc.Use(ctx, id)
			if err != nil {
				return err
			}

			if printValue {
				_, err := cmd.OutOrStdout().Write(paste.Value)
				return err
			}

			if err := clipboard.WriteAll(string(paste.Value)); err != nil {
				return fmt.Errorf("failed to write clipboard: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Copied paste %d\n", id)
			return nil
		}),
	}

	cmd.Flags().BoolVarP(&printValue, "print", "p", false, "print the value instead of copying it")

	return cmd
}

func NewEditCommand() *cobra.Command {
	var tags []string
	var fromStdin bool

	cmd := &cobra.Command{
		Use:   "edit <id> [content...]",
		Short: "Replace the content and tags of a paste",
		Args:  cobra.MinimumNArgs(1),
		RunE: withService(func(ctx context.Context, cmd *cobra.Command, svc *command.Service, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			content, err := readContent(cmd, args[1:], fromStdin)
			if err != nil {
				return err
			}

			return svc.EditPaste(ctx, id, content, tags)
		}),
	}

	cmd.Flags().StringSliceVarP(&tags, "tag", "t", nil, "tags of the paste in order (repeatable)")
	cmd.Flags().BoolVar(&fromStdin, "stdin", false, "read content from stdin")

	return cmd
}

func NewRemoveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rm <id...>",
		Short: "Delete pastes",
		Args:  cobra.MinimumNArgs(1),
		RunE: withService(func(ctx context.Context, cmd *cobra.Command, svc *command.Service, args []string) error {
			for _, arg := range args {
				id, err := parseID(arg)
				if err != nil {
					return err
				}
				if err := svc.DeletePaste(ctx, id); err != nil {
					return err
				}
			}
			return nil
		}),
	}

	return cmd
}
