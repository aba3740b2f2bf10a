package main

import (
	"github.com/spf13/cobra"
)

func newCompareCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "compare OLD NEW",
		Short: "Report the changes between two schema versions and score their compatibility",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			old, new, err := a.readPair(args[0], args[1])
			if err != nil {
				return err
			}
			r, err := a.registry.Compare(old, new)
			if err != nil {
				return err
			}
			if err := a.print(cmd, r); err != nil {
				return err
			}
			failed, err := a.gate(cmd, old.Format(), r)
			if err != nil {
				return err
			}
			if failed {
				return &exitError{code: 1}
			}
			return nil
		},
	}
}

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate OLD NEW",
		Short: "Plan the migration from one schema version to the next",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			old, new, err := a.readPair(args[0], args[1])
			if err != nil {
				return err
			}
			p, err := a.registry.Migrate(old, new)
			if err != nil {
				return err
			}
			return a.print(cmd, p)
		},
	}
}

func newValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate OLD NEW",
		Short: "Validate the changes between two schema versions",
		Long: `Validate compares OLD and NEW, then checks the detected changes against
the rules of their format. The command exits with status 1 when a change
fails validation.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			old, new, err := a.readPair(args[0], args[1])
			if err != nil {
				return err
			}
			r, err := a.registry.Compare(old, new)
			if err != nil {
				return err
			}
			res, err := a.registry.Validate(old.Format(), r.Changes)
			if err != nil {
				return err
			}
			if err := a.print(cmd, res); err != nil {
				return err
			}
			failed, err := a.gate(cmd, old.Format(), r)
			if err != nil {
				return err
			}
			if failed || !res.IsValid {
				return &exitError{code: 1}
			}
			return nil
		},
	}
}
