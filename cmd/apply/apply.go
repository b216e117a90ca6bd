// SPDX-FileCopyrightText: 2026 archtune authors
// SPDX-License-Identifier: Apache-2.0

package apply

import (
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/logrusorgru/aurora/v3"
	"github.com/olekukonko/tablewriter"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/archtune/archtune/internal/pkg/facts"
	"github.com/archtune/archtune/pkg/config"
	"github.com/archtune/archtune/pkg/mutator"
	"github.com/archtune/archtune/pkg/tuner"
)

func NewApplyCmd() *cobra.Command {
	var cfgFile string
	var dryRun bool
	var only []string

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Apply the tuning profile. Must be run as root (or with sudo)",
		Long: `Runs all enabled tuning modules against this host. Every mutated
file is backed up next to itself first. With --dry-run, nothing is
written and the proposed changes are printed as unified diffs.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mode := mutator.ModeApply
			if dryRun {
				mode = mutator.ModeSimulate
			}

			if mode == mutator.ModeApply && os.Geteuid() != 0 {
				return fmt.Errorf("this command must be run as root")
			}

			cfg, err := loadConfig(cfgFile)
			if err != nil {
				return err
			}

			hostFacts := facts.NewDetector().Detect()
			if hostFacts.RootFSType != "btrfs" {
				return fmt.Errorf("root filesystem is %s, not btrfs", hostFacts.RootFSType)
			}

			modules := tuner.Modules(cfg)
			if len(only) > 0 {
				modules = filterModules(modules, only)
				if len(modules) == 0 {
					return fmt.Errorf("no enabled module matches %v", only)
				}
			}

			env := &tuner.Env{
				Config:  cfg,
				Facts:   hostFacts,
				Mutator: mutator.New(mode),
			}
			report := tuner.NewRunner(modules...).Run(cmd.Context(), env)

			printSummary(cmd.OutOrStdout(), report, dryRun)

			// Module failures are best-effort and already reported;
			// they do not fail the process.
			for _, moduleErr := range report.Errors {
				logrus.WithError(moduleErr.Err).Errorf("module %s failed", moduleErr.Module)
			}
			return nil
		},
	}
	cmd.SilenceUsage = true

	flags := cmd.Flags()
	flags.StringVarP(&cfgFile, "config", "c", "", "tuning profile file (default: built-in profile)")
	flags.BoolVarP(&dryRun, "dry-run", "n", false, "only print what would change")
	flags.StringSliceVar(&only, "module", nil, "run only the named modules (can be repeated)")

	return cmd
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.DefaultConfig(), nil
	}
	return config.FromFile(path)
}

func filterModules(modules []tuner.Module, names []string) []tuner.Module {
	var selected []tuner.Module
	for _, module := range modules {
		if slices.Contains(names, module.Name()) {
			selected = append(selected, module)
		}
	}
	return selected
}

func printSummary(out io.Writer, report *tuner.Report, dryRun bool) {
	colors := aurora.NewAurora(true)

	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"File", "Status", "Backup"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	table.SetNoWhiteSpace(true)

	for _, result := range report.Results {
		status := colors.Gray(12, "unchanged").String()
		switch {
		case result.Skipped:
			status = colors.Yellow("skipped").String()
		case result.Changed && dryRun:
			status = colors.Cyan("would change").String()
		case result.Changed:
			status = colors.Green("changed").String()
		}
		table.Append([]string{result.Path, status, result.BackupPath})
	}
	for _, moduleErr := range report.Errors {
		table.Append([]string{moduleErr.Module, colors.Red("failed").String(), ""})
	}
	table.Render()

	verb := "changed"
	if dryRun {
		verb = "would change"
	}
	fmt.Fprintf(out, "\n%d file(s) %s, %d module error(s)\n", report.Changed(), verb, len(report.Errors))
}
