// SPDX-FileCopyrightText: 2026 archtune authors
// SPDX-License-Identifier: Apache-2.0

package modules

import (
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/archtune/archtune/pkg/config"
	"github.com/archtune/archtune/pkg/tuner"
)

func NewModulesCmd() *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "modules",
		Short: "List the tuning modules and whether they are enabled",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.DefaultConfig()
			if cfgFile != "" {
				loaded, err := config.FromFile(cfgFile)
				if err != nil {
					return err
				}
				cfg = loaded
			}

			enabled := map[string]bool{}
			for _, module := range tuner.Modules(cfg) {
				enabled[module.Name()] = true
			}

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetHeader([]string{"Module", "Enabled"})
			table.SetAutoWrapText(false)
			table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
			table.SetAlignment(tablewriter.ALIGN_LEFT)
			table.SetCenterSeparator("")
			table.SetColumnSeparator("")
			table.SetRowSeparator("")
			table.SetHeaderLine(false)
			table.SetBorder(false)
			table.SetTablePadding("\t")
			table.SetNoWhiteSpace(true)

			for _, name := range tuner.ModuleNames() {
				state := "no"
				if enabled[name] {
					state = "yes"
				}
				table.Append([]string{name, state})
			}
			table.Render()
			return nil
		},
	}
	cmd.SilenceUsage = true

	cmd.Flags().StringVarP(&cfgFile, "config", "c", "", "tuning profile file (default: built-in profile)")

	return cmd
}
