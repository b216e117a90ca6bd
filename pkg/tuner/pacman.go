// SPDX-FileCopyrightText: 2026 archtune authors
// SPDX-License-Identifier: Apache-2.0

package tuner

import (
	"context"
	"strconv"

	"github.com/archtune/archtune/internal/pkg/directive"
	"github.com/archtune/archtune/pkg/constant"
	"github.com/archtune/archtune/pkg/mutator"
)

// PacmanModule tunes the package manager configuration: download
// parallelism plus the cosmetic output switches.
type PacmanModule struct {
	// Path overrides the pacman.conf location. For tests.
	Path string
}

func (m *PacmanModule) Name() string { return "pacman" }

func (m *PacmanModule) Run(ctx context.Context, env *Env) ([]mutator.Result, error) {
	cfg := env.Config.Pacman

	directives := []directive.Directive{
		directive.KeyValue("ParallelDownloads", strconv.Itoa(cfg.ParallelDownloads)),
	}
	if cfg.Color {
		directives = append(directives, directive.Flag("Color"))
	}
	if cfg.VerbosePkgLists {
		directives = append(directives, directive.Flag("VerbosePkgLists"))
	}

	result, err := env.Mutator.Do(mutator.Request{
		Path: m.path(),
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

func (m *PacmanModule) path() string {
	if m.Path != "" {
		return m.Path
	}
	return constant.PacmanConfPath
}
