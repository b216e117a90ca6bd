// SPDX-FileCopyrightText: 2026 archtune authors
// SPDX-License-Identifier: Apache-2.0

package tuner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archtune/archtune/internal/pkg/backup"
	"github.com/archtune/archtune/internal/pkg/facts"
	"github.com/archtune/archtune/pkg/config"
	"github.com/archtune/archtune/pkg/mutator"
)

func testEnv(t *testing.T, mode mutator.Mode) *Env {
	t.Helper()
	at := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	backups := backup.NewManager().WithClock(func() time.Time { return at })
	return &Env{
		Config:  config.DefaultConfig(),
		Facts:   facts.Facts{RootFSType: "btrfs", RootIsSSD: true},
		Mutator: mutator.New(mode).WithBackups(backups),
	}
}

func writeFixture(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestPacmanModule(t *testing.T) {
	dir := t.TempDir()
	path := writeFixture(t, dir, "pacman.conf", "[options]\n#ParallelDownloads = 5\n#Color\n")

	env := testEnv(t, mutator.ModeApply)
	module := &PacmanModule{Path: path}

	results, err := module.Run(context.Background(), env)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].Changed)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "ParallelDownloads = 10\n")
	assert.Contains(t, string(content), "\nColor\n")
	assert.Contains(t, string(content), "VerbosePkgLists\n")
	assert.NotContains(t, string(content), "#ParallelDownloads")

	// Second run converges.
	results, err = module.Run(context.Background(), env)
	require.NoError(t, err)
	assert.False(t, results[0].Changed)
}

func TestPacmanModuleMissingFileFails(t *testing.T) {
	env := testEnv(t, mutator.ModeApply)
	module := &PacmanModule{Path: filepath.Join(t.TempDir(), "pacman.conf")}

	_, err := module.Run(context.Background(), env)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFstabModule(t *testing.T) {
	dir := t.TempDir()
	path := writeFixture(t, dir, "fstab",
		"/dev/sda2\t/\tbtrfs\tdefaults\t0\t1\n"+
			"/dev/sdb1\t/data\tbtrfs\tdefaults\t0\t2\n"+
			"/dev/sda1\t/boot\tvfat\tdefaults\t0\t2\n")

	env := testEnv(t, mutator.ModeApply)
	module := &FstabModule{Path: path}

	results, err := module.Run(context.Background(), env)
	require.NoError(t, err)
	require.Len(t, results, 1)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(string(content), "\n")

	assert.Equal(t, "/dev/sda2\t/\tbtrfs\tcommit=60,compress=zstd:3,discard=async,noatime,ssd\t0\t1", lines[0])
	assert.Contains(t, lines[1], "nofail")
	assert.Equal(t, "/dev/sda1\t/boot\tvfat\tdefaults\t0\t2", lines[2], "non-btrfs records stay byte-identical")
}

func TestFstabModuleNoSSD(t *testing.T) {
	env := testEnv(t, mutator.ModeApply)
	env.Facts.RootIsSSD = false

	rules := (&FstabModule{}).Rules(env)
	assert.NotContains(t, rules.Add, "ssd")
}

func TestInitramfsModule(t *testing.T) {
	tests := []struct {
		name  string
		facts facts.Facts
		want  string
	}{
		{"plain", facts.Facts{}, "MODULES=(btrfs)"},
		{"nvidia", facts.Facts{HasDiscreteGPU: true, GPUVendor: "nvidia"}, "MODULES=(btrfs nvidia nvidia_modeset nvidia_uvm nvidia_drm)"},
		{"amd", facts.Facts{HasDiscreteGPU: true, GPUVendor: "amd"}, "MODULES=(btrfs amdgpu)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := writeFixture(t, dir, "mkinitcpio.conf", "MODULES=()\nHOOKS=(base udev)\n")

			env := testEnv(t, mutator.ModeApply)
			env.Facts = tt.facts

			_, err := (&InitramfsModule{Path: path}).Run(context.Background(), env)
			require.NoError(t, err)

			content, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Contains(t, string(content), tt.want+"\n")
			assert.Contains(t, string(content), "HOOKS=(base udev)\n")
		})
	}
}

func TestBootEntryModule(t *testing.T) {
	dir := t.TempDir()
	entry := writeFixture(t, dir, "arch.conf",
		"title Arch Linux\nlinux /vmlinuz-linux\ninitrd /initramfs-linux.img\noptions root=UUID=abc rootflags=subvol=@ rw\n")

	env := testEnv(t, mutator.ModeApply)
	env.Facts.GPUVendor = "nvidia"
	env.Facts.HasDiscreteGPU = true

	results, err := (&BootEntryModule{Dir: dir}).Run(context.Background(), env)
	require.NoError(t, err)
	require.Len(t, results, 1)

	content, err := os.ReadFile(entry)
	require.NoError(t, err)
	lines := strings.Split(string(content), "\n")

	assert.Equal(t, "title Arch Linux", lines[0])
	assert.Equal(t, "options nvidia_drm.modeset=1 quiet root=UUID=abc rootflags=subvol=@ rw", lines[3])
}

func TestBootEntryModulePreservesRootflags(t *testing.T) {
	dir := t.TempDir()
	entry := writeFixture(t, dir, "arch.conf",
		"options root=UUID=abc rootflags=compress=lzo rw\n")

	env := testEnv(t, mutator.ModeApply)

	_, err := (&BootEntryModule{Dir: dir}).Run(context.Background(), env)
	require.NoError(t, err)

	content, err := os.ReadFile(entry)
	require.NoError(t, err)
	assert.Equal(t, "options quiet root=UUID=abc rootflags=compress=lzo rw\n", string(content),
		"existing rootflags tokens must survive the merge")
}

func TestBootEntryModuleIndentedOptionsLine(t *testing.T) {
	dir := t.TempDir()
	entry := writeFixture(t, dir, "arch.conf",
		"title Arch Linux\n\toptions root=UUID=abc rw\n")

	env := testEnv(t, mutator.ModeApply)

	_, err := (&BootEntryModule{Dir: dir}).Run(context.Background(), env)
	require.NoError(t, err)

	content, err := os.ReadFile(entry)
	require.NoError(t, err)
	assert.Equal(t, "title Arch Linux\n\toptions quiet root=UUID=abc rw\n", string(content),
		"the indented options line must be merged in place, not duplicated")
	assert.Equal(t, 1, strings.Count(string(content), "options "))
}

func TestBootEntryModuleNoEntries(t *testing.T) {
	env := testEnv(t, mutator.ModeApply)

	results, err := (&BootEntryModule{Dir: filepath.Join(t.TempDir(), "entries")}).Run(context.Background(), env)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].Skipped)
}

func TestJournaldModule(t *testing.T) {
	dir := t.TempDir()
	path := writeFixture(t, dir, "journald.conf", "[Journal]\n#SystemMaxUse=\n;Compress=yes\n")

	env := testEnv(t, mutator.ModeApply)

	_, err := (&JournaldModule{Path: path}).Run(context.Background(), env)
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "SystemMaxUse=500M\n")
	assert.Contains(t, string(content), "Compress=yes\n")
	assert.NotContains(t, string(content), ";Compress")
}

func TestJournaldModuleMissingFileIsSkipped(t *testing.T) {
	env := testEnv(t, mutator.ModeApply)

	results, err := (&JournaldModule{Path: filepath.Join(t.TempDir(), "journald.conf")}).Run(context.Background(), env)
	require.NoError(t, err)
	assert.True(t, results[0].Skipped)
}

func TestSysctlModule(t *testing.T) {
	path := filepath.Join(t.TempDir(), "99-archtune.conf")

	env := testEnv(t, mutator.ModeApply)

	results, err := (&SysctlModule{Path: path}).Run(context.Background(), env)
	require.NoError(t, err)
	assert.True(t, results[0].Changed)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "vm.swappiness = 10\n")
	assert.Contains(t, string(content), "vm.vfs_cache_pressure = 50\n")

	// Regenerating identical content is a no-op.
	results, err = (&SysctlModule{Path: path}).Run(context.Background(), env)
	require.NoError(t, err)
	assert.False(t, results[0].Changed)
}

func TestSnapperModule(t *testing.T) {
	dir := t.TempDir()

	env := testEnv(t, mutator.ModeApply)

	results, err := (&SnapperModule{ConfigDir: dir}).Run(context.Background(), env)
	require.NoError(t, err)
	assert.True(t, results[0].Changed)

	content, err := os.ReadFile(filepath.Join(dir, "root"))
	require.NoError(t, err)
	assert.Contains(t, string(content), `TIMELINE_LIMIT_HOURLY="5"`)
	assert.Contains(t, string(content), `TIMELINE_LIMIT_DAILY="7"`)
}

func TestSnapperModuleNotInstalled(t *testing.T) {
	env := testEnv(t, mutator.ModeApply)

	results, err := (&SnapperModule{ConfigDir: filepath.Join(t.TempDir(), "configs")}).Run(context.Background(), env)
	require.NoError(t, err)
	assert.True(t, results[0].Skipped)
}

type failingModule struct{}

func (failingModule) Name() string { return "failing" }

func (failingModule) Run(context.Context, *Env) ([]mutator.Result, error) {
	return nil, errors.New("boom")
}

func TestRunnerContinuesPastFailures(t *testing.T) {
	dir := t.TempDir()
	path := writeFixture(t, dir, "pacman.conf", "#ParallelDownloads = 5\n")

	env := testEnv(t, mutator.ModeApply)
	runner := NewRunner(failingModule{}, &PacmanModule{Path: path})

	report := runner.Run(context.Background(), env)

	require.Len(t, report.Errors, 1)
	assert.Equal(t, "failing", report.Errors[0].Module)
	assert.Error(t, report.Err())
	assert.Equal(t, 1, report.Changed(), "modules after a failure must still run")

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "ParallelDownloads = 10")
}

func TestRunnerHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	env := testEnv(t, mutator.ModeApply)
	report := NewRunner(failingModule{}).Run(ctx, env)

	require.Len(t, report.Errors, 1)
	assert.ErrorIs(t, report.Errors[0].Err, context.Canceled)
}

func TestModulesRespectConfigSwitches(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Fstab.Enabled = false
	cfg.Snapper.Enabled = false

	var names []string
	for _, module := range Modules(cfg) {
		names = append(names, module.Name())
	}

	assert.Equal(t, []string{"pacman", "initramfs", "bootentry", "journald", "sysctl"}, names)
}

func TestSimulateMakesNoChanges(t *testing.T) {
	dir := t.TempDir()
	path := writeFixture(t, dir, "pacman.conf", "#ParallelDownloads = 5\n")

	env := testEnv(t, mutator.ModeSimulate)
	results, err := (&PacmanModule{Path: path}).Run(context.Background(), env)
	require.NoError(t, err)

	assert.True(t, results[0].Changed)
	assert.NotEmpty(t, results[0].Diff)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "#ParallelDownloads = 5\n", string(content))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "simulate mode must not create backups")
}
