package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"roadmap/internal/queue"
)

func newQueueCommand(ctx *commandContext) *cobra.Command {
	queueCmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect and reorder the execution queue of spec-ready modules",
	}
	queueCmd.AddCommand(newQueueListCommand(ctx))
	queueCmd.AddCommand(newQueueMoveCommand(ctx))
	return queueCmd
}

func newQueueListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List queued modules in execution order",
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, _, err := ctx.openTracker(cmd.Context())
			if err != nil {
				return err
			}
			ctx.offlineNotice(cmd, tr)

			out := cmd.OutOrStdout()
			queued := tr.Queue()
			if len(queued) == 0 {
				fmt.Fprintln(out, "Execution queue is empty")
				return ctx.settle(cmd, tr, false)
			}
			rows := make([][]string, 0, len(queued))
			for _, m := range queued {
				rows = append(rows, []string{
					strconv.Itoa(m.ExecutionOrder),
					m.ID,
					m.Name,
					displayLabel(string(m.Priority)),
					formatHours(m.EstimatedHours),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"#", "ID", "Name", "Priority", "Hours"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight},
			))
			return ctx.settle(cmd, tr, false)
		},
	}
}

func newQueueMoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "move <id> up|down",
		Short: "Swap a queued module with its neighbour",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.TrimSpace(args[0])
			dir, ok := queue.ParseDirection(args[1])
			if !ok {
				return fmt.Errorf("direction must be up or down, got %q", args[1])
			}

			tr, _, err := ctx.openTracker(cmd.Context())
			if err != nil {
				return err
			}
			moved, err := tr.Move(cmd.Context(), id, dir)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !moved {
				end := "top"
				if dir == queue.Down {
					end = "bottom"
				}
				fmt.Fprintf(out, "%s is already at the %s of the queue\n", id, end)
				return ctx.settle(cmd, tr, false)
			}
			m, _ := tr.Module(id)
			fmt.Fprintf(out, "Moved %s %s to position %d\n", id, dir, m.ExecutionOrder)
			return ctx.settle(cmd, tr, true)
		},
	}
}
