package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thewell/content-studio/internal/optimizer"
	"github.com/thewell/content-studio/internal/types"
)

func newOptimizeCmd(a *app) *cobra.Command {
	var (
		platforms   []string
		contentType string
		inFile      string
		asJSON      bool
	)
	cmd := &cobra.Command{
		Use:   "optimize [text]",
		Short: "Rewrite copy for one or more social platforms",
		Long: `Rewrite copy for LinkedIn, Facebook, Twitter or Instagram. Each result fits the
platform's character limit and carries the firm's call to action exactly once.
Copy is read from the arguments, --in or stdin.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := readContent(cmd, args, inFile)
			if err != nil {
				return err
			}
			ids := make([]optimizer.PlatformID, len(platforms))
			for i, p := range platforms {
				ids[i] = optimizer.PlatformID(p)
			}

			results, err := optimizer.New(a.brand).OptimizeAll(content, ids, optimizer.ContentType(contentType))
			if err != nil {
				return err
			}
			findings := optimizer.NewScanner().Findings(content)

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), map[string]any{
					"results":    results,
					"violations": findings,
				})
			}
			for _, r := range results {
				a.printer.PrintOptimization(r)
			}
			a.printer.PrintViolations(&types.Violations{Violations: findings})
			return nil
		},
	}
	cmd.Flags().StringSliceVarP(&platforms, "platform", "p", nil, "Platforms to optimize for (default: all)")
	cmd.Flags().StringVarP(&contentType, "type", "t", string(optimizer.ContentPost), "Content type: post or article")
	cmd.Flags().StringVarP(&inFile, "in", "i", "", "Read copy from a file")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print results as JSON")
	return cmd
}

func newScanCmd(a *app) *cobra.Command {
	var (
		inFile string
		strict bool
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "scan [text]",
		Short: "Check copy against the compliance rules",
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := readContent(cmd, args, inFile)
			if err != nil {
				return err
			}
			violations := types.Violations{Violations: optimizer.NewScanner().Findings(content)}

			if asJSON {
				if err := writeJSON(cmd.OutOrStdout(), violations); err != nil {
					return err
				}
			} else {
				a.printer.PrintViolations(&violations)
			}
			if strict && violations.HasErrors() {
				return fmt.Errorf("copy is not compliant: %d finding(s)", len(violations.Violations))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&inFile, "in", "i", "", "Read copy from a file")
	cmd.Flags().BoolVar(&strict, "strict", false, "Exit non-zero when an error-severity rule is violated")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print findings as JSON")
	return cmd
}
