package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"roadmap/internal/catalog"
	"roadmap/internal/manifest"
)

func newSyncCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Reconcile with the snapshot store and write the merged view back",
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, res, err := ctx.openTracker(cmd.Context())
			if err != nil {
				return err
			}
			if tr.Offline() {
				_ = ctx.settle(cmd, tr, false)
				return fmt.Errorf("unsaved changes: snapshot store at %s unavailable", ctx.configValue().Remote.BaseURL)
			}
			if err := ctx.settle(cmd, tr, true); err != nil {
				return err
			}

			saveCtx, cancel := context.WithTimeout(cmd.Context(), ctx.writeTimeout())
			defer cancel()
			if err := tr.Save(saveCtx); err != nil {
				return fmt.Errorf("unsaved changes: %w", err)
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			fmt.Fprintln(out, renderStatusLine("Modules", statusOK, fmt.Sprintf("%d written", len(tr.Modules())), colorize))
			if n := len(res.Drift.StaleRepaired); n > 0 {
				fmt.Fprintln(out, renderStatusLine("Stale repaired", statusWarn, fmt.Sprintf("%d", n), colorize))
			}
			if n := len(res.Drift.Unknown); n > 0 {
				fmt.Fprintln(out, renderStatusLine("Unknown dropped", statusWarn, fmt.Sprintf("%d", n), colorize))
			}
			return nil
		},
	}
}

func newResetCommand(ctx *commandContext) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete the remote snapshot and rewrite it from the catalog and manifest",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force {
				return errors.New("reset discards every remote status, note, and queue position; rerun with --force")
			}
			tr, _, err := ctx.openTracker(cmd.Context())
			if err != nil {
				return err
			}
			if err := ctx.settle(cmd, tr, false); err != nil {
				return err
			}

			resetCtx, cancel := context.WithTimeout(cmd.Context(), ctx.writeTimeout())
			defer cancel()
			removed, err := tr.Reset(resetCtx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d remote records; wrote %d modules from the catalog\n", removed, len(tr.Modules()))
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Confirm the reset")
	return cmd
}

func newInitCommand(ctx *commandContext) *cobra.Command {
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the sample catalog and build manifest to the configured paths",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			targets := []struct {
				label string
				path  string
				data  []byte
			}{
				{"catalog", cfg.Paths.CatalogPath, catalog.SampleBytes()},
				{"manifest", cfg.Paths.ManifestPath, manifest.SampleBytes()},
			}
			for _, target := range targets {
				if !overwrite {
					if _, err := os.Stat(target.path); err == nil {
						fmt.Fprintf(out, "Kept existing %s at %s\n", target.label, target.path)
						continue
					} else if !os.IsNotExist(err) {
						return fmt.Errorf("check %s path: %w", target.label, err)
					}
				}
				if err := os.MkdirAll(filepath.Dir(target.path), 0o755); err != nil {
					return fmt.Errorf("create %s directory: %w", target.label, err)
				}
				if err := os.WriteFile(target.path, target.data, 0o644); err != nil {
					return fmt.Errorf("write sample %s: %w", target.label, err)
				}
				fmt.Fprintf(out, "Wrote sample %s to %s\n", target.label, target.path)
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return err
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace existing files")
	return cmd
}
