// SPDX-FileCopyrightText: 2026 archtune authors
// SPDX-License-Identifier: Apache-2.0

package tuner

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/archtune/archtune/internal/pkg/optionset"
	"github.com/archtune/archtune/pkg/constant"
	"github.com/archtune/archtune/pkg/mutator"
)

// optionsPrefix starts the kernel command line of a loader entry.
const optionsPrefix = "options "

// BootEntryModule merges kernel parameters into the options line of
// every systemd-boot loader entry. Hosts that boot another way have
// no entries directory and are skipped.
type BootEntryModule struct {
	// Dir overrides the loader entries directory. For tests.
	Dir string
}

func (m *BootEntryModule) Name() string { return "bootentry" }

func (m *BootEntryModule) Run(ctx context.Context, env *Env) ([]mutator.Result, error) {
	// Add-only merge: existing tokens survive. In particular
	// rootflags= has no configured replacement, and a subvolume root
	// does not boot without its rootflags=subvol= token.
	rules := optionset.Rules{
		Add: env.Config.BootEntry.KernelParams,
	}
	if env.Facts.GPUVendor == "nvidia" {
		rules.Add = append(rules.Add, "nvidia_drm.modeset=1")
	}

	dir := m.dir()
	entries, err := filepath.Glob(filepath.Join(dir, "*.conf"))
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		logrus.WithField("module", m.Name()).Warnf("no loader entries under %s, skipping", dir)
		return []mutator.Result{{Path: dir, Skipped: true}}, nil
	}

	var results []mutator.Result
	for _, entry := range entries {
		result, err := env.Mutator.Do(mutator.Request{
			Path: entry,
			Transform: func(current []byte) ([]byte, error) {
				return mergeOptionsLine(current, rules), nil
			},
		})
		if err != nil {
			return results, err
		}
		results = append(results, result)
	}
	return results, nil
}

// mergeOptionsLine rewrites the first "options " line of a loader
// entry, merging rules into its space-delimited token set. Leading
// whitespace before the key is tolerated and preserved. An entry
// without an options line gains one at the end.
func mergeOptionsLine(content []byte, rules optionset.Rules) []byte {
	lines := strings.Split(string(content), "\n")
	for i, line := range lines {
		trimmed := strings.TrimLeft(line, " \t")
		if !strings.HasPrefix(trimmed, optionsPrefix) {
			continue
		}
		indent := line[:len(line)-len(trimmed)]
		merged := optionset.Merge(strings.TrimPrefix(trimmed, optionsPrefix), " ", rules, "")
		lines[i] = indent + optionsPrefix + merged
		return []byte(strings.Join(lines, "\n"))
	}

	out := string(content)
	if out != "" && !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	out += optionsPrefix + optionset.Merge("", " ", rules, "") + "\n"
	return []byte(out)
}

func (m *BootEntryModule) dir() string {
	if m.Dir != "" {
		return m.Dir
	}
	return constant.BootEntriesDir
}
