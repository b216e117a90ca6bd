// SPDX-FileCopyrightText: 2026 archtune authors
// SPDX-License-Identifier: Apache-2.0

// Package backup creates timestamped recovery copies of configuration
// files before they are mutated.
package backup

import (
	"fmt"
	"time"

	"github.com/archtune/archtune/internal/pkg/file"
)

// TimestampFormat is the suffix format of backup file names.
const TimestampFormat = "20060102-150405"

// Manager creates at most one backup per path per run. Re-running a
// mutation within the same process reuses the first backup instead of
// stacking new ones.
type Manager struct {
	now  func() time.Time
	done map[string]string
}

// NewManager returns a Manager using the wall clock.
func NewManager() *Manager {
	return &Manager{
		now:  time.Now,
		done: map[string]string{},
	}
}

// WithClock replaces the clock used for backup names. Intended for
// tests that need deterministic file names.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

// Path returns the backup file name that Backup would create for
// path, without performing any I/O. If a backup was already made for
// path in this run, its name is returned instead.
func (m *Manager) Path(path string) string {
	if done, ok := m.done[path]; ok {
		return done
	}
	return fmt.Sprintf("%s.bak.%s", path, m.now().Format(TimestampFormat))
}

// Backup copies path to a timestamped sibling, preserving mode and
// ownership, and returns the backup's name. A missing path is a no-op
// and returns the empty string. Callers must invoke Backup before any
// write to path and must not proceed if it fails.
//
// Backups made within the same second of an earlier, separate run
// overwrite that run's backup. Known limitation of the naming scheme.
func (m *Manager) Backup(path string) (string, error) {
	if done, ok := m.done[path]; ok {
		return done, nil
	}
	if !file.Exists(path) {
		return "", nil
	}

	backupPath := m.Path(path)
	if err := file.Copy(path, backupPath); err != nil {
		return "", fmt.Errorf("failed to back up %s: %w", path, err)
	}
	m.done[path] = backupPath
	return backupPath, nil
}
