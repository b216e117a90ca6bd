// SPDX-FileCopyrightText: 2026 archtune authors
// SPDX-License-Identifier: Apache-2.0

package tuner

import (
	"context"
	"fmt"

	"github.com/archtune/archtune/internal/pkg/fstab"
	"github.com/archtune/archtune/internal/pkg/optionset"
	"github.com/archtune/archtune/pkg/constant"
	"github.com/archtune/archtune/pkg/mutator"
)

// FstabModule rewrites the option sets of all btrfs records in the
// mount table. Non-btrfs records and everything that is not a record
// pass through untouched.
type FstabModule struct {
	// Path overrides the fstab location. For tests.
	Path string
}

func (m *FstabModule) Name() string { return "fstab" }

// Rules returns the option-set rules this module applies, derived
// from the run configuration and host facts.
func (m *FstabModule) Rules(env *Env) optionset.Rules {
	cfg := env.Config.Fstab

	rules := optionset.Rules{
		StripPrefixes: []string{"compress=", "compress-force=", "commit="},
		Remove:        []string{"defaults"},
		Add: []string{
			"noatime",
			"discard=async",
			fmt.Sprintf("compress=zstd:%d", cfg.CompressLevel),
			fmt.Sprintf("commit=%d", cfg.CommitSeconds),
		},
		PerRole: map[string]optionset.RoleRules{
			// Volumes the boot must not hang on get nofail; the
			// volumes the system cannot come up without never do.
			string(fstab.RoleSecondary): {Add: []string{"nofail"}},
		},
	}
	if env.Facts.RootIsSSD {
		rules.Add = append(rules.Add, "ssd")
	}
	return rules
}

func (m *FstabModule) Run(ctx context.Context, env *Env) ([]mutator.Result, error) {
	policy := fstab.Policy{
		FSType:  "btrfs",
		Options: m.Rules(env),
	}

	result, err := env.Mutator.Do(mutator.Request{
		Path: m.path(),
		Transform: func(current []byte) ([]byte, error) {
			return fstab.Transform(current, policy), nil
		},
	})
	if err != nil {
		return nil, err
	}
	return []mutator.Result{result}, nil
}

func (m *FstabModule) path() string {
	if m.Path != "" {
		return m.Path
	}
	return constant.FstabPath
}
