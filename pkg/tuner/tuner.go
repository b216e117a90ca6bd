// SPDX-FileCopyrightText: 2026 archtune authors
// SPDX-License-Identifier: Apache-2.0

// Package tuner runs the tuning modules. Each module mutates a small
// number of configuration files through the shared mutator; the
// runner executes modules sequentially and best-effort, so one
// module's failure never rolls back or blocks another's work.
package tuner

import (
	"context"

	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"

	"github.com/archtune/archtune/internal/pkg/facts"
	"github.com/archtune/archtune/pkg/config"
	"github.com/archtune/archtune/pkg/mutator"
)

// Env is the read-only environment shared by all modules of a run.
// It is computed once at process start.
type Env struct {
	Config  *config.Config
	Facts   facts.Facts
	Mutator *mutator.Mutator
}

// A Module is one independent tuning step.
type Module interface {
	// Name identifies the module in configuration and reports.
	Name() string

	// Run performs the module's mutations and returns one result per
	// touched file.
	Run(ctx context.Context, env *Env) ([]mutator.Result, error)
}

// Modules returns the modules enabled by cfg, in run order.
func Modules(cfg *config.Config) []Module {
	var modules []Module
	if cfg.Pacman.Enabled {
		modules = append(modules, &PacmanModule{})
	}
	if cfg.Fstab.Enabled {
		modules = append(modules, &FstabModule{})
	}
	if cfg.Initramfs.Enabled {
		modules = append(modules, &InitramfsModule{})
	}
	if cfg.BootEntry.Enabled {
		modules = append(modules, &BootEntryModule{})
	}
	if cfg.Journald.Enabled {
		modules = append(modules, &JournaldModule{})
	}
	if cfg.Sysctl.Enabled {
		modules = append(modules, &SysctlModule{})
	}
	if cfg.Snapper.Enabled {
		modules = append(modules, &SnapperModule{})
	}
	return modules
}

// ModuleNames returns the names of all known modules, in run order.
func ModuleNames() []string {
	return []string{"pacman", "fstab", "initramfs", "bootentry", "journald", "sysctl", "snapper"}
}

// ModuleError records which module failed and why.
type ModuleError struct {
	Module string
	Err    error
}

func (e *ModuleError) Error() string {
	return "module " + e.Module + ": " + e.Err.Error()
}

func (e *ModuleError) Unwrap() error {
	return e.Err
}

// Report collects the outcome of a whole run.
type Report struct {
	// Results holds one entry per mutation attempt, across modules.
	Results []mutator.Result

	// Errors holds the failures of individual modules. A failed
	// module never aborts the run.
	Errors []*ModuleError
}

// Err returns all module failures combined, or nil.
func (r *Report) Err() error {
	var err error
	for _, moduleErr := range r.Errors {
		err = multierr.Append(err, moduleErr)
	}
	return err
}

// Changed counts the results that changed (or would change) a file.
func (r *Report) Changed() int {
	var n int
	for _, result := range r.Results {
		if result.Changed {
			n++
		}
	}
	return n
}

// Runner executes modules sequentially.
type Runner struct {
	modules []Module
	log     *logrus.Entry
}

// NewRunner returns a Runner over the given modules.
func NewRunner(modules ...Module) *Runner {
	return &Runner{
		modules: modules,
		log:     logrus.WithField("component", "tuner"),
	}
}

// Run executes every module, continuing past failures. Earlier
// modules' successful mutations are kept when a later module fails.
// Cancellation is honored between modules; a module's own file
// operations are local and fast enough to finish.
func (r *Runner) Run(ctx context.Context, env *Env) *Report {
	report := &Report{}
	for _, module := range r.modules {
		if err := ctx.Err(); err != nil {
			report.Errors = append(report.Errors, &ModuleError{Module: module.Name(), Err: err})
			break
		}

		log := r.log.WithField("module", module.Name())
		log.Debug("running")

		results, err := module.Run(ctx, env)
		report.Results = append(report.Results, results...)
		if err != nil {
			log.WithError(err).Error("module failed, continuing with remaining modules")
			report.Errors = append(report.Errors, &ModuleError{Module: module.Name(), Err: err})
			continue
		}
	}
	return report
}
