// SPDX-FileCopyrightText: 2026 archtune authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/archtune/archtune/pkg/build"
)

func NewVersionCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the archtune version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := versionInfo{
				Version: build.Version,
				Commit:  build.Commit,
			}

			out := cmd.OutOrStdout()
			if asJSON {
				encoded, err := json.MarshalIndent(info, "", "  ")
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(out, string(encoded))
				return err
			}

			if info.Commit != "" {
				_, err := fmt.Fprintf(out, "%s (%s)\n", info.Version, info.Commit)
				return err
			}
			_, err := fmt.Fprintln(out, info.Version)
			return err
		},
	}

	cmd.Flags().BoolVarP(&asJSON, "json", "j", false, "print version info as json")

	return cmd
}

type versionInfo struct {
	Version string `json:"version"`
	Commit  string `json:"commit,omitempty"`
}
