package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"roadmap/internal/api"
	"roadmap/internal/catalog"
	"roadmap/internal/derive"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	var categoryFlag string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show overall progress and every module's effective status",
		RunE: func(cmd *cobra.Command, args []string) error {
			var category catalog.Category
			if value := strings.TrimSpace(categoryFlag); value != "" {
				parsed, ok := catalog.ParseCategory(value)
				if !ok {
					return fmt.Errorf("unknown category %q", value)
				}
				category = parsed
			}

			tr, _, err := ctx.openTracker(cmd.Context())
			if err != nil {
				return err
			}
			ctx.offlineNotice(cmd, tr)

			modules := filterCategory(tr.Modules(), category)
			progress := derive.Summarize(modules)

			if asJSON {
				if err := writeJSON(cmd, statusView{
					Offline:  tr.Offline(),
					Progress: newProgressView(progress),
					Modules:  api.FromModules(modules),
				}); err != nil {
					return err
				}
				return ctx.settle(cmd, tr, false)
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			for _, line := range renderSectionHeader("Progress", colorize) {
				fmt.Fprintln(out, line)
			}
			fmt.Fprintf(out, "%s%-*s %s\n", statusIndent, statusLabelWidth, "Overall:", renderProgressBar(progress.Percent))
			fmt.Fprintf(out, "%s%-*s %d/%d completed, %d queued, %s hours\n", statusIndent, statusLabelWidth, "Modules:",
				progress.Completed, progress.Modules, progress.Queued, formatHours(progress.Hours))
			for _, pair := range statusCounts(progress.ByStatus) {
				fmt.Fprintf(out, "%s%-*s %s\n", statusIndent, statusLabelWidth, displayLabel(pair[0])+":", pair[1])
			}
			fmt.Fprintln(out)

			if len(progress.Categories) > 1 {
				rows := make([][]string, 0, len(progress.Categories))
				for _, c := range progress.Categories {
					rows = append(rows, []string{
						displayLabel(string(c.Category)),
						strconv.Itoa(c.Modules),
						strconv.Itoa(c.Completed),
						formatHours(c.Hours),
						strconv.Itoa(c.Percent) + "%",
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Category", "Modules", "Done", "Hours", "Progress"},
					rows,
					[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight},
				))
				fmt.Fprintln(out)
			}

			fmt.Fprintln(out, renderModuleTable(modules, tr.Derived, colorize))
			return ctx.settle(cmd, tr, false)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of tables")
	cmd.Flags().StringVar(&categoryFlag, "category", "", "Only show modules in this category")
	return cmd
}

func renderModuleTable(modules []catalog.Module, derived func(string) bool, colorize bool) string {
	if len(modules) == 0 {
		return "No modules"
	}
	rows := make([][]string, 0, len(modules))
	var hours float64
	for _, m := range modules {
		status := renderModuleStatus(m.Status, colorize)
		if derived(m.ID) {
			status += " (built)"
		}
		order := ""
		if m.Queued() {
			order = strconv.Itoa(m.ExecutionOrder)
		}
		hours += m.EstimatedHours
		rows = append(rows, []string{
			m.ID,
			m.Name,
			displayLabel(string(m.Category)),
			status,
			displayLabel(string(m.Priority)),
			order,
			formatHours(m.EstimatedHours),
			strconv.Itoa(derive.EffectivePercent(m)) + "%",
		})
	}
	return tableSpec{
		headers: []string{"ID", "Name", "Category", "Status", "Priority", "Queue", "Hours", "Done"},
		rows:    rows,
		aligns:  []columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight},
		footer:  []string{"", strconv.Itoa(len(modules)) + " modules", "", "", "", "", formatHours(hours), ""},
	}.render()
}
