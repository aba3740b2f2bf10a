package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/wudi/schemadiff/internal/logging"
	"github.com/wudi/schemadiff/internal/schema"
	"github.com/wudi/schemadiff/internal/schemaevolution"
	"github.com/wudi/schemadiff/internal/watcher"
	"go.uber.org/zap"
)

func (a *app) checker() (*schemaevolution.Checker, error) {
	if !a.cfg.History.Enabled {
		return nil, fmt.Errorf("schema history is disabled (history.enabled: false)")
	}
	return schemaevolution.NewChecker(a.cfg.History, a.registry, logging.Global())
}

func newCheckCmd(a *app) *cobra.Command {
	var label string

	cmd := &cobra.Command{
		Use:   "check SUBJECT FILE",
		Short: "Compare a schema file with the stored history of SUBJECT and record it",
		Long: `Check compares FILE with the latest version of SUBJECT in the history
store and records it. In block mode a version that is incompatible, or
breaking when history.fail_on_breaking is set, is not recorded and the
command exits with status 1.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.checker()
			if err != nil {
				return err
			}
			s, err := a.readSchema(args[1])
			if err != nil {
				return err
			}
			if label != "" {
				s = schema.New(s.Format(), s.Content(), label)
			}

			eval, err := c.CheckAndStore(cmd.Context(), args[0], s)
			if eval == nil {
				return err
			}
			if perr := a.print(cmd, eval); perr != nil {
				return perr
			}
			if err != nil {
				logging.Warn("schema version rejected", zap.String("subject", args[0]), zap.Error(err))
				return &exitError{code: 1}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&label, "schema-version", "", "Version label to record; defaults to the file name")
	return cmd
}

func newWatchCmd(a *app) *cobra.Command {
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "watch SUBJECT FILE",
		Short: "Check FILE into the history of SUBJECT every time it changes",
		Long: `Watch checks FILE once, then again each time its content changes, until
interrupted. Each version is labelled with the time it was read.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			subject, path := args[0], args[1]
			format, err := a.formatFor(path)
			if err != nil {
				return err
			}
			c, err := a.checker()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			w, err := watcher.New(path)
			if err != nil {
				return err
			}
			w.SetDebounce(debounce)

			check := func(content []byte) {
				s := schema.New(format, string(content), versionLabel(path, time.Now()))
				eval, err := c.CheckAndStore(ctx, subject, s)
				if eval != nil {
					if perr := a.print(cmd, eval); perr != nil {
						logging.Error("failed to write evaluation", zap.Error(perr))
					}
				}
				if err != nil {
					logging.Error("schema check failed", zap.String("subject", subject), zap.Error(err))
				}
			}

			check(w.Content())
			w.OnChange(check)
			if err := w.Start(); err != nil {
				_ = w.Stop()
				return err
			}
			logging.Info("watching schema file", zap.String("subject", subject), zap.String("path", path))

			<-ctx.Done()
			return w.Stop()
		},
	}

	cmd.Flags().DurationVar(&debounce, "debounce", watcher.DefaultDebounce, "Quiet period before a change is checked")
	return cmd
}

func versionLabel(path string, t time.Time) string {
	return filepath.Base(path) + "@" + t.UTC().Format(time.RFC3339)
}
