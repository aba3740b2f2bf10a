package main

import (
	"github.com/spf13/cobra"
	"github.com/wudi/schemadiff/internal/batch"
	"github.com/wudi/schemadiff/internal/logging"
	"github.com/wudi/schemadiff/internal/migration"
	"github.com/wudi/schemadiff/internal/report"
	"go.uber.org/zap"
)

type batchOutput struct {
	Summary batch.Summary `json:"summary" yaml:"summary"`
	Results []batchEntry  `json:"results" yaml:"results"`
}

type batchEntry struct {
	Name   string                      `json:"name" yaml:"name"`
	Report *report.CompatibilityReport `json:"report,omitempty" yaml:"report,omitempty"`
	Plan   *migration.Plan             `json:"plan,omitempty" yaml:"plan,omitempty"`
	Error  string                      `json:"error,omitempty" yaml:"error,omitempty"`
}

func newBatchCmd(a *app) *cobra.Command {
	var (
		oldDir      string
		newDir      string
		pattern     string
		concurrency int
	)

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Compare every schema file present in two directory trees",
		Long: `Batch pairs the files matched by --pattern under --old-dir and --new-dir by
relative path and compares each pair. Files with an unrecognized extension
are skipped. The command exits with status 1 when any pair is incompatible,
fails to compare or matches a failing rule.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pairs, err := batch.Discover(oldDir, newDir, pattern)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("concurrency") {
				concurrency = a.cfg.Batch.Concurrency
			}

			results, err := batch.Run(cmd.Context(), a.registry, pairs, concurrency)
			if err != nil {
				return err
			}

			out := batchOutput{Summary: batch.Summarize(results)}
			gated := false
			for i, r := range results {
				e := batchEntry{Name: r.Name, Report: r.Report, Plan: r.Plan}
				if r.Err != nil {
					e.Error = r.Err.Error()
					logging.Warn("batch comparison failed", zap.String("name", r.Name), zap.Error(r.Err))
				} else {
					failed, err := a.gate(cmd, pairs[i].Old.Format(), r.Report)
					if err != nil {
						return err
					}
					gated = gated || failed
				}
				out.Results = append(out.Results, e)
			}
			if err := a.print(cmd, out); err != nil {
				return err
			}
			if gated || out.Summary.Incompatible > 0 || out.Summary.Failed > 0 {
				return &exitError{code: 1}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&oldDir, "old-dir", "", "Directory holding the old schema versions")
	cmd.Flags().StringVar(&newDir, "new-dir", "", "Directory holding the new schema versions")
	cmd.Flags().StringVar(&pattern, "pattern", "**/*", "Glob pattern, relative to each directory, selecting schema files")
	cmd.Flags().IntVar(&concurrency, "concurrency", batch.DefaultConcurrency, "Maximum concurrent comparisons; defaults to batch.concurrency")
	_ = cmd.MarkFlagRequired("old-dir")
	_ = cmd.MarkFlagRequired("new-dir")
	return cmd
}
