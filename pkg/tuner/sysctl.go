// SPDX-FileCopyrightText: 2026 archtune authors
// SPDX-License-Identifier: Apache-2.0

package tuner

import (
	"context"
	"path/filepath"

	"github.com/archtune/archtune/internal/pkg/dir"
	"github.com/archtune/archtune/internal/pkg/templatewriter"
	"github.com/archtune/archtune/pkg/constant"
	"github.com/archtune/archtune/pkg/mutator"
)

// SysctlModule generates the kernel tunables drop-in. The file is
// fully owned by archtune, but it is still written through the
// mutator so dry runs and backups of manual edits work like
// everywhere else.
type SysctlModule struct {
	// Path overrides the drop-in location. For tests.
	Path string
}

func (m *SysctlModule) Name() string { return "sysctl" }

const sysctlTemplate = `# Generated by archtune. Manual changes will be overwritten.
vm.swappiness = {{ .Swappiness }}
vm.vfs_cache_pressure = {{ .VFSCachePressure }}
`

func (m *SysctlModule) Run(ctx context.Context, env *Env) ([]mutator.Result, error) {
	tw := templatewriter.TemplateWriter{
		Name:     "sysctl-dropin",
		Template: sysctlTemplate,
		Data:     env.Config.Sysctl,
	}
	content, err := tw.Render()
	if err != nil {
		return nil, err
	}

	path := m.path()
	if !env.Mutator.Simulating() {
		if err := dir.Init(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
	}

	result, err := env.Mutator.Do(mutator.Request{
		Path:   path,
		Create: true,
		Perm:   constant.ConfFileMode,
		Transform: func([]byte) ([]byte, error) {
			return content, nil
		},
	})
	if err != nil {
		return nil, err
	}
	return []mutator.Result{result}, nil
}

func (m *SysctlModule) path() string {
	if m.Path != "" {
		return m.Path
	}
	return constant.SysctlDropInPath
}
