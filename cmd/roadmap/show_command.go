package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"roadmap/internal/api"
	"roadmap/internal/attachments"
	"roadmap/internal/catalog"
	"roadmap/internal/derive"
)

type showView struct {
	Module      api.Module       `json:"module"`
	Derived     bool             `json:"derived"`
	Attachments *api.Attachments `json:"attachments,omitempty"`
}

func newShowCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one module with its sub-items and attachments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.TrimSpace(args[0])
			tr, _, err := ctx.openTracker(cmd.Context())
			if err != nil {
				return err
			}
			ctx.offlineNotice(cmd, tr)

			m, ok := tr.Module(id)
			if !ok {
				return fmt.Errorf("%w: %s", catalog.ErrUnknownModule, id)
			}

			var files *api.Attachments
			if !tr.Offline() {
				listing, err := ctx.remoteClient().Files(cmd.Context(), id)
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "warning: list attachments: %v\n", err)
				} else {
					files = &listing
				}
			}

			if asJSON {
				if err := writeJSON(cmd, showView{Module: api.FromModule(m), Derived: tr.Derived(id), Attachments: files}); err != nil {
					return err
				}
				return ctx.settle(cmd, tr, false)
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			for _, line := range renderSectionHeader(m.Name+" ("+m.ID+")", colorize) {
				fmt.Fprintln(out, line)
			}
			field := func(label, value string) {
				fmt.Fprintf(out, "%s%-*s %s\n", statusIndent, statusLabelWidth, label+":", value)
			}
			status := renderModuleStatus(m.Status, colorize)
			if tr.Derived(id) {
				status += " (derived from build manifest)"
			}
			field("Status", status)
			field("Category", displayLabel(string(m.Category)))
			field("Priority", displayLabel(string(m.Priority)))
			field("Estimated hours", formatHours(m.EstimatedHours))
			field("Progress", renderProgressBar(derive.EffectivePercent(m)))
			if m.Queued() {
				field("Queue position", fmt.Sprintf("%d of %d", m.ExecutionOrder, len(tr.Queue())))
			}
			if !m.UpdatedAt.IsZero() {
				field("Updated", m.UpdatedAt.Local().Format("2006-01-02 15:04"))
			}
			if m.Notes != "" {
				field("Notes", m.Notes)
			}

			if len(m.SubItems) > 0 {
				fmt.Fprintln(out)
				rows := make([][]string, 0, len(m.SubItems))
				for _, item := range m.SubItems {
					rows = append(rows, []string{item.ID, item.Name, renderModuleStatus(item.Status, colorize), formatHours(item.EstimatedHours)})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Sub-item", "Name", "Status", "Hours"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight},
				))
			}

			if files != nil {
				fmt.Fprintln(out)
				for _, line := range renderSectionHeader("Attachments", colorize) {
					fmt.Fprintln(out, line)
				}
				for _, category := range attachments.Categories() {
					entries := files.Files[string(category)]
					names := make([]string, 0, len(entries))
					for _, entry := range entries {
						names = append(names, entry.Name)
					}
					value := "none"
					if len(names) > 0 {
						value = strings.Join(names, ", ")
					}
					field(displayLabel(string(category)), value)
				}
			}
			return ctx.settle(cmd, tr, false)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON")
	return cmd
}
