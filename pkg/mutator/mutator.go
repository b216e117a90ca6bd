// SPDX-FileCopyrightText: 2026 archtune authors
// SPDX-License-Identifier: Apache-2.0

// Package mutator wraps every configuration file mutation so that it
// is either performed behind a fresh backup, or only described. Both
// execution modes run the exact same content transformation; simulate
// mode stops right before the first filesystem write, so its reported
// outcome always predicts what apply mode would do.
package mutator

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"syscall"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/sirupsen/logrus"

	"github.com/archtune/archtune/internal/pkg/backup"
	"github.com/archtune/archtune/internal/pkg/file"
)

// Mode selects between performing mutations and describing them. It
// is fixed for the lifetime of a run; apply and simulate are never
// mixed within one invocation.
type Mode string

const (
	ModeApply    Mode = "apply"
	ModeSimulate Mode = "simulate"
)

// A Mutator performs or simulates file mutations.
type Mutator struct {
	mode    Mode
	backups *backup.Manager
	log     *logrus.Entry
}

// New returns a Mutator for the given mode with a fresh backup
// manager.
func New(mode Mode) *Mutator {
	return &Mutator{
		mode:    mode,
		backups: backup.NewManager(),
		log:     logrus.WithField("component", "mutator"),
	}
}

// WithBackups replaces the backup manager, mainly so tests can inject
// a deterministic clock.
func (m *Mutator) WithBackups(backups *backup.Manager) *Mutator {
	m.backups = backups
	return m
}

// Simulating reports whether the mutator only describes changes.
func (m *Mutator) Simulating() bool {
	return m.mode == ModeSimulate
}

// A Request describes one file mutation.
type Request struct {
	// Path is the absolute path of the file to mutate.
	Path string

	// Optional makes a missing file a logged skip instead of an
	// error. Many tuned files are not present on every installation.
	Optional bool

	// Create starts from empty content when the file is missing,
	// creating it with Perm on apply.
	Create bool

	// Perm is the mode for newly created files. Existing files keep
	// their mode. Defaults to 0644.
	Perm os.FileMode

	// Transform computes the desired content from the current one.
	// It must be a pure function of its input: it runs identically in
	// both execution modes.
	Transform func(current []byte) ([]byte, error)
}

// A Result describes the outcome of one mutation request.
type Result struct {
	// Path of the target file.
	Path string

	// Changed reports whether the file content was (or, when
	// simulating, would be) modified.
	Changed bool

	// Skipped reports that an optional target was missing.
	Skipped bool

	// BackupPath is the backup created before the write, or the name
	// it would get when simulating. Empty if nothing was changed or
	// the file did not exist yet.
	BackupPath string

	// Diff is the unified diff of the would-be change. Only populated
	// when simulating.
	Diff string
}

// Do runs one mutation request. The target content is computed the
// same way in both modes; only the effects differ. On apply, a backup
// is taken before the first write and a failed backup aborts the
// mutation. A transform that leaves the content unchanged causes
// neither a backup nor a write.
func (m *Mutator) Do(req Request) (Result, error) {
	current, exists, err := file.ReadIfExists(req.Path)
	if err != nil {
		return Result{Path: req.Path}, fmt.Errorf("failed to read %s: %w", req.Path, err)
	}
	if !exists && !req.Create {
		if req.Optional {
			m.log.Warnf("%s does not exist, skipping", req.Path)
			return Result{Path: req.Path, Skipped: true}, nil
		}
		return Result{Path: req.Path}, fmt.Errorf("failed to mutate %s: %w", req.Path, fs.ErrNotExist)
	}

	desired, err := req.Transform(current)
	if err != nil {
		return Result{Path: req.Path}, fmt.Errorf("failed to compute new content for %s: %w", req.Path, err)
	}

	if exists && bytes.Equal(current, desired) {
		m.log.Debugf("%s is already up to date", req.Path)
		return Result{Path: req.Path}, nil
	}

	if m.Simulating() {
		result := Result{
			Path:    req.Path,
			Changed: true,
			Diff:    unifiedDiff(req.Path, current, desired),
		}
		if exists {
			result.BackupPath = m.backups.Path(req.Path)
		}
		m.log.Infof("would update %s:\n%s", req.Path, result.Diff)
		return result, nil
	}

	result := Result{Path: req.Path, Changed: true}
	if exists {
		backupPath, err := m.backups.Backup(req.Path)
		if err != nil {
			return Result{Path: req.Path}, err
		}
		result.BackupPath = backupPath
	}

	if err := m.write(req, exists, desired); err != nil {
		return Result{Path: req.Path}, fmt.Errorf("failed to write %s: %w", req.Path, err)
	}

	m.log.Infof("updated %s", req.Path)
	return result, nil
}

// write rewrites the target, preserving an existing file's mode and
// ownership.
func (m *Mutator) write(req Request, exists bool, content []byte) error {
	perm := req.Perm
	if perm == 0 {
		perm = 0o644
	}

	opener := file.AtomicWithTarget(req.Path)
	if exists {
		info, err := os.Stat(req.Path)
		if err != nil {
			return err
		}
		opener = opener.WithPermissions(info.Mode())
		if stat, ok := info.Sys().(*syscall.Stat_t); ok {
			opener = opener.WithOwner(int(stat.Uid)).WithGroup(int(stat.Gid))
		}
	} else {
		opener = opener.WithPermissions(perm)
	}

	return opener.Write(content)
}

func unifiedDiff(path string, current, desired []byte) string {
	text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(current)),
		B:        difflib.SplitLines(string(desired)),
		FromFile: path,
		ToFile:   path + " (proposed)",
		Context:  3,
	})
	if err != nil {
		return ""
	}
	return text
}
