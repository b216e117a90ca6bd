// SPDX-FileCopyrightText: 2026 archtune authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/archtune/archtune/cmd/apply"
	"github.com/archtune/archtune/cmd/facts"
	"github.com/archtune/archtune/cmd/modules"
	"github.com/archtune/archtune/cmd/version"
	"github.com/archtune/archtune/internal/pkg/log"
)

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archtune",
		Short: "archtune - btrfs post-install tuning for Arch Linux",
		Long: `archtune applies a curated tuning profile to a freshly installed
Arch Linux system on btrfs: mount options, package manager settings,
initramfs modules, boot entries, journal limits, sysctl knobs and
snapshot schedules. Every file mutation is backed up first, and the
whole run can be simulated without touching anything.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log.InitLogging()
			if viper.GetBool("debug") {
				log.SetDebugLevel()
			}
		},
	}

	cmd.PersistentFlags().AddFlagSet(persistentFlags())
	_ = viper.BindPFlag("debug", cmd.PersistentFlags().Lookup("debug"))

	viper.SetEnvPrefix("ARCHTUNE")
	viper.AutomaticEnv()

	cmd.AddCommand(apply.NewApplyCmd())
	cmd.AddCommand(facts.NewFactsCmd())
	cmd.AddCommand(modules.NewModulesCmd())
	cmd.AddCommand(version.NewVersionCmd())

	return cmd
}

func persistentFlags() *pflag.FlagSet {
	flags := pflag.NewFlagSet("persistent", pflag.ContinueOnError)
	flags.BoolP("debug", "d", false, "Debug logging (default: false)")
	return flags
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		logrus.Exit(1)
	}
}
