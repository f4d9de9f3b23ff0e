package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"roadmap/internal/catalog"
	"roadmap/internal/tracker"
)

func newSetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "set <id> <status>",
		Short: "Set a module's status",
		Long: "Set a module's status. Valid statuses: " + strings.Join(statusNames(), ", ") + ".\n" +
			"Modules covered by a genuine build manifest entry cannot be changed by hand.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.TrimSpace(args[0])
			status, ok := catalog.ParseStatus(args[1])
			if !ok {
				return fmt.Errorf("%w %q (valid: %s)", catalog.ErrUnknownStatus, args[1], strings.Join(statusNames(), ", "))
			}

			tr, _, err := ctx.openTracker(cmd.Context())
			if err != nil {
				return err
			}
			m, err := tr.SetStatus(cmd.Context(), id, status)
			if err != nil {
				if errors.Is(err, tracker.ErrDerived) {
					current, _ := tr.Module(id)
					return fmt.Errorf("%s is %s because it is built; update the build manifest instead", id, current.Status)
				}
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s is now %s\n", m.ID, m.Status)
			if m.Queued() {
				fmt.Fprintf(out, "Queued at position %d\n", m.ExecutionOrder)
			}
			return ctx.settle(cmd, tr, true)
		},
	}
}

func newNotesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "notes <id> <text>",
		Short: "Replace a module's notes (empty text clears them)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.TrimSpace(args[0])
			text := strings.TrimSpace(strings.Join(args[1:], " "))

			tr, _, err := ctx.openTracker(cmd.Context())
			if err != nil {
				return err
			}
			if _, err := tr.SetNotes(cmd.Context(), id, text); err != nil {
				return err
			}
			if text == "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared notes on %s\n", id)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Updated notes on %s\n", id)
			}
			return ctx.settle(cmd, tr, true)
		},
	}
}

func statusNames() []string {
	statuses := catalog.AllStatuses()
	names := make([]string, len(statuses))
	for i, s := range statuses {
		names[i] = string(s)
	}
	return names
}
