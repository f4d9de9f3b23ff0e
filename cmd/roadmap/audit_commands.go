package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"roadmap/internal/audit"
	"roadmap/internal/reconcile"
)

type auditView struct {
	Summary         audit.Summary `json:"summary"`
	CoveragePercent int           `json:"coveragePercent"`
	audit.Report
}

func newAuditCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Compare catalog ids against the build manifest",
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := ctx.loadInputs()
			if err != nil {
				return err
			}
			report := audit.Run(in.catalog.IDs(), in.manifest)
			if asJSON {
				return writeJSON(cmd, auditView{Summary: report.Summary(), CoveragePercent: report.CoveragePercent(), Report: report})
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			for _, line := range renderSectionHeader("Manifest coverage", colorize) {
				fmt.Fprintln(out, line)
			}
			fmt.Fprintf(out, "%s%s\n", statusIndent, report.Summary())
			fmt.Fprintf(out, "%s%-*s %s\n\n", statusIndent, statusLabelWidth, "Coverage:", renderProgressBar(report.CoveragePercent()))

			if len(report.Covered) > 0 {
				rows := make([][]string, 0, len(report.Covered))
				for _, c := range report.Covered {
					refs := make([]string, 0, len(c.Entries))
					for _, e := range c.Entries {
						refs = append(refs, e.Ref())
					}
					rows = append(rows, []string{c.ID, strings.Join(refs, ", ")})
				}
				fmt.Fprintln(out, renderTable([]string{"Covered", "Entries"}, rows, nil))
			}
			if len(report.Missing) > 0 {
				fmt.Fprintln(out, renderStatusLine("Missing", statusWarn, strings.Join(report.Missing, ", "), colorize))
			}
			if len(report.Orphans) > 0 {
				rows := make([][]string, 0, len(report.Orphans))
				for _, o := range report.Orphans {
					rows = append(rows, []string{o.ID, o.Ref()})
				}
				fmt.Fprintln(out, renderTable([]string{"Orphan id", "Entry"}, rows, nil))
			}
			if len(report.Placeholders) > 0 {
				refs := make([]string, 0, len(report.Placeholders))
				for _, e := range report.Placeholders {
					refs = append(refs, e.Ref())
				}
				fmt.Fprintln(out, renderStatusLine("Placeholders", statusInfo, strings.Join(refs, ", "), colorize))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON")
	return cmd
}

func newDriftCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "drift",
		Short: "Report how the remote snapshot differs from the merged view without writing",
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := ctx.loadInputs()
			if err != nil {
				return err
			}
			client := ctx.remoteClient()
			fetchCtx, cancel := context.WithTimeout(cmd.Context(), ctx.writeTimeout())
			defer cancel()
			records, err := client.Fetch(fetchCtx)
			if err != nil {
				return fmt.Errorf("fetch snapshot from %s: %w", client.BaseURL(), err)
			}
			res := reconcile.Reconcile(in.catalog.Definitions(), in.manifest, records)

			if asJSON {
				return writeJSON(cmd, driftView{RemoteEmpty: res.RemoteEmpty, MustResync: res.MustResync, Drift: res.Drift})
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			if res.RemoteEmpty {
				fmt.Fprintln(out, renderStatusLine("Snapshot", statusWarn, "empty; the next command will write the derived catalog", colorize))
				return nil
			}
			if res.Drift.Empty() {
				fmt.Fprintln(out, renderStatusLine("Snapshot", statusOK, "in sync", colorize))
				return nil
			}
			d := res.Drift
			if len(d.NewIDs) > 0 {
				fmt.Fprintln(out, renderStatusLine("Missing remotely", statusWarn, strings.Join(d.NewIDs, ", "), colorize))
			}
			if len(d.Unknown) > 0 {
				fmt.Fprintln(out, renderStatusLine("Unknown ids", statusWarn, strings.Join(d.Unknown, ", "), colorize))
			}
			if len(d.StaleRepaired) > 0 {
				fmt.Fprintln(out, renderStatusLine("Stale statuses", statusWarn, strings.Join(d.StaleRepaired, ", "), colorize))
			}
			if len(d.Diverged) > 0 {
				rows := make([][]string, 0, len(d.Diverged))
				for _, change := range d.Diverged {
					remote := string(change.Remote)
					if remote == "" {
						remote = "(missing)"
					}
					rows = append(rows, []string{change.ID, remote, string(change.Merged)})
				}
				fmt.Fprintln(out, renderTable([]string{"Module", "Remote", "Merged"}, rows, nil))
			}
			resync := statusOK
			if res.MustResync {
				resync = statusWarn
			}
			fmt.Fprintln(out, renderStatusLine("Resync needed", resync, yesNo(res.MustResync), colorize))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON")
	return cmd
}

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate the catalog and manifest files",
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := ctx.loadInputs()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			problems := 0
			for _, v := range in.catalog.Check() {
				fmt.Fprintln(out, renderStatusLine("Catalog", statusError, v.String(), colorize))
				problems++
			}
			for _, v := range in.manifest.Check() {
				fmt.Fprintln(out, renderStatusLine("Manifest", statusError, v.String(), colorize))
				problems++
			}
			report := audit.Run(in.catalog.IDs(), in.manifest)
			for _, o := range report.Orphans {
				fmt.Fprintln(out, renderStatusLine("Orphan", statusWarn, fmt.Sprintf("%s covers unknown id %s", o.Ref(), o.ID), colorize))
			}
			if problems > 0 {
				return fmt.Errorf("%d problem(s) found", problems)
			}
			fmt.Fprintln(out, renderStatusLine("Files", statusOK, fmt.Sprintf("%d modules, %d manifest entries", len(in.catalog.Modules), entryCount(in)), colorize))
			return nil
		},
	}
}

func entryCount(in inputs) int {
	if in.manifest == nil {
		return 0
	}
	return len(in.manifest.Entries)
}
