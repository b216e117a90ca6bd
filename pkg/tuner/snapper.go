// SPDX-FileCopyrightText: 2026 archtune authors
// SPDX-License-Identifier: Apache-2.0

package tuner

import (
	"context"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/archtune/archtune/internal/pkg/dir"
	"github.com/archtune/archtune/internal/pkg/templatewriter"
	"github.com/archtune/archtune/pkg/constant"
	"github.com/archtune/archtune/pkg/mutator"
)

// SnapperModule writes the snapshot profile for the root volume.
// Skipped entirely when snapper is not installed.
type SnapperModule struct {
	// ConfigDir overrides the snapper configuration directory. For
	// tests.
	ConfigDir string
}

func (m *SnapperModule) Name() string { return "snapper" }

const snapperTemplate = `# Generated by archtune. Manual changes will be overwritten.
SUBVOLUME="/"
FSTYPE="btrfs"
TIMELINE_CREATE="yes"
TIMELINE_CLEANUP="yes"
TIMELINE_LIMIT_HOURLY="{{ .Hourly }}"
TIMELINE_LIMIT_DAILY="{{ .Daily }}"
TIMELINE_LIMIT_MONTHLY="{{ .Monthly }}"
`

func (m *SnapperModule) Run(ctx context.Context, env *Env) ([]mutator.Result, error) {
	configDir := m.configDir()
	if !dir.IsDirectory(configDir) {
		logrus.WithField("module", m.Name()).Warnf("%s does not exist, snapper is not installed, skipping", configDir)
		return []mutator.Result{{Path: configDir, Skipped: true}}, nil
	}

	tw := templatewriter.TemplateWriter{
		Name:     "snapper-root",
		Template: snapperTemplate,
		Data:     env.Config.Snapper.TimelineLimits,
	}
	content, err := tw.Render()
	if err != nil {
		return nil, err
	}

	result, err := env.Mutator.Do(mutator.Request{
		Path:   filepath.Join(configDir, "root"),
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

func (m *SnapperModule) configDir() string {
	if m.ConfigDir != "" {
		return m.ConfigDir
	}
	return constant.SnapperConfigDir
}
