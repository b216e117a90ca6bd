// SPDX-FileCopyrightText: 2026 archtune authors
// SPDX-License-Identifier: Apache-2.0

package tuner

import (
	"context"

	"github.com/archtune/archtune/internal/pkg/directive"
	"github.com/archtune/archtune/pkg/constant"
	"github.com/archtune/archtune/pkg/mutator"
)

// JournaldModule caps the journal's disk usage. On btrfs the journal
// is one of the few steadily rewritten files, so bounding it keeps
// snapshot growth in check.
type JournaldModule struct {
	// Path overrides the journald.conf location. For tests.
	Path string
}

func (m *JournaldModule) Name() string { return "journald" }

func (m *JournaldModule) Run(ctx context.Context, env *Env) ([]mutator.Result, error) {
	cfg := env.Config.Journald

	compress := "no"
	if cfg.Compress {
		compress = "yes"
	}
	directives := []directive.Directive{
		directive.SystemdKey("SystemMaxUse", cfg.SystemMaxUse),
		directive.SystemdKey("Compress", compress),
	}

	result, err := env.Mutator.Do(mutator.Request{
		Path:     m.path(),
		Optional: true,
		Transform: func(current []byte) ([]byte, error) {
			for _, d := range directives {
				current, _ = directive.Apply(current, d)
			}
			return current, nil
		},
	})
	if err != nil {
		return nil, err
	}
	return []mutator.Result{result}, nil
}

func (m *JournaldModule) path() string {
	if m.Path != "" {
		return m.Path
	}
	return constant.JournaldConfPath
}
