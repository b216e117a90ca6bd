// SPDX-FileCopyrightText: 2026 archtune authors
// SPDX-License-Identifier: Apache-2.0

package facts

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	"github.com/archtune/archtune/internal/pkg/facts"
)

func NewFactsCmd() *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "facts",
		Short: "Display detected host facts",
		Long:  `Detects the hardware and environment facts that drive module decisions and issues them to stdout.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			detected := facts.NewDetector().Detect()

			out := cmd.OutOrStdout()
			switch outputFormat {
			case "text":
				return printText(out, detected)
			case "json":
				encoded, err := json.MarshalIndent(detected, "", "  ")
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(out, string(encoded))
				return err
			case "yaml":
				encoded, err := yaml.Marshal(detected)
				if err != nil {
					return err
				}
				_, err = out.Write(encoded)
				return err
			default:
				return fmt.Errorf("unknown output format: %q", outputFormat)
			}
		},
	}
	cmd.SilenceUsage = true

	cmd.Flags().StringVarP(&outputFormat, "output", "o", "text", "Output format (valid values: text, json, yaml)")

	return cmd
}

func printText(w io.Writer, f facts.Facts) error {
	gpu := "none"
	if f.HasDiscreteGPU {
		gpu = f.GPUVendor
		if gpu == "" {
			gpu = "unknown vendor"
		}
	}

	_, err := fmt.Fprintf(w, `Hostname:       %s
OS:             %s
Kernel:         %s
Product:        %s
Root device:    %s
Root fstype:    %s
Root on SSD:    %t
Discrete GPU:   %s
`, f.Hostname, f.OS, f.Kernel, f.Product, f.RootDevice, f.RootFSType, f.RootIsSSD, gpu)
	return err
}
