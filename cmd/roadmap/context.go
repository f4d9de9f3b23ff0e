package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"roadmap/internal/catalog"
	"roadmap/internal/config"
	"roadmap/internal/logging"
	"roadmap/internal/manifest"
	"roadmap/internal/reconcile"
	"roadmap/internal/remote"
	"roadmap/internal/tracker"
)

type commandContext struct {
	configFlag *string
	verbose    *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
}

func newCommandContext(configFlag *string, verbose *bool) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		verbose:    verbose,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) configValue() *config.Config {
	cfg, _ := c.ensureConfig()
	return cfg
}

// log returns the CLI logger. Output goes to stderr only; reconciliation
// decisions are shown with --verbose.
func (c *commandContext) log() *slog.Logger {
	c.loggerOnce.Do(func() {
		cfg := c.configValue()
		level := "warn"
		format := "console"
		if cfg != nil {
			format = cfg.Logging.Format
			if c.verbose != nil && *c.verbose {
				level = cfg.Logging.Level
			}
		}
		logger, err := logging.New(logging.Options{
			Level:            level,
			Format:           format,
			OutputPaths:      []string{"stderr"},
			ErrorOutputPaths: []string{"stderr"},
		})
		if err != nil {
			logger = logging.NewNop()
		}
		c.logger = logger
	})
	return c.logger
}

type inputs struct {
	catalog  *catalog.Catalog
	manifest *manifest.Manifest
}

// loadInputs reads the catalog and manifest. A missing manifest means no
// module is build-derived; a missing catalog is an error.
func (c *commandContext) loadInputs() (inputs, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return inputs{}, err
	}
	cat, err := catalog.Load(cfg.Paths.CatalogPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return inputs{}, fmt.Errorf("%w (run `roadmap init` to write a sample catalog)", err)
		}
		return inputs{}, err
	}
	man, err := manifest.Load(cfg.Paths.ManifestPath)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return inputs{}, err
		}
		man = nil
	}
	return inputs{catalog: cat, manifest: man}, nil
}

func (c *commandContext) remoteClient() *remote.Client {
	return remote.NewFromConfig(c.configValue(), c.log())
}

// openTracker loads inputs, builds a tracker against the remote store, and
// reconciles it.
func (c *commandContext) openTracker(ctx context.Context) (*tracker.Tracker, reconcile.Result, error) {
	in, err := c.loadInputs()
	if err != nil {
		return nil, reconcile.Result{}, err
	}
	tr := tracker.New(in.catalog, in.manifest, c.remoteClient(), c.log())
	res := tr.Load(ctx)
	return tr, res, nil
}

// writeTimeout bounds how long the CLI waits for background writes.
func (c *commandContext) writeTimeout() time.Duration {
	cfg := c.configValue()
	attempts := max(cfg.Remote.WriteAttempts, 1)
	return cfg.RemoteTimeout()*time.Duration(attempts) + time.Second
}

// settle waits for background writes. Mutating commands fail when changes
// are left unsaved; read commands only print a warning.
func (c *commandContext) settle(cmd *cobra.Command, tr *tracker.Tracker, mutating bool) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), c.writeTimeout())
	defer cancel()

	err := tr.Wait(ctx)
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		err = fmt.Errorf("unsaved changes: snapshot write did not finish within %s", c.writeTimeout())
	}
	if mutating {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
	return nil
}

func (c *commandContext) offlineNotice(cmd *cobra.Command, tr *tracker.Tracker) {
	if tr.Offline() {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: snapshot store at %s unavailable; showing catalog and manifest state\n", c.configValue().Remote.BaseURL)
	}
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
