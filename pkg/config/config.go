// SPDX-FileCopyrightText: 2026 archtune authors
// SPDX-License-Identifier: Apache-2.0

// Package config holds the run configuration for archtune. The
// configuration is constructed once at process start, validated, and
// passed read-only into every tuning module; there is no ambient
// mutable state.
package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"

	"github.com/archtune/archtune/internal/pkg/strictyaml"
)

// Config selects and parameterizes the tuning modules of one run.
type Config struct {
	Pacman    PacmanConfig    `yaml:"pacman"`
	Fstab     FstabConfig     `yaml:"fstab"`
	Initramfs InitramfsConfig `yaml:"initramfs"`
	BootEntry BootEntryConfig `yaml:"bootEntry"`
	Journald  JournaldConfig  `yaml:"journald"`
	Sysctl    SysctlConfig    `yaml:"sysctl"`
	Snapper   SnapperConfig   `yaml:"snapper"`
}

// PacmanConfig tunes /etc/pacman.conf.
type PacmanConfig struct {
	Enabled           bool `yaml:"enabled"`
	ParallelDownloads int  `yaml:"parallelDownloads" validate:"min=1,max=20"`
	Color             bool `yaml:"color"`
	VerbosePkgLists   bool `yaml:"verbosePkgLists"`
}

// FstabConfig tunes the btrfs records of /etc/fstab.
type FstabConfig struct {
	Enabled bool `yaml:"enabled"`
	// CompressLevel is the zstd level for compress=zstd:N.
	CompressLevel int `yaml:"compressLevel" validate:"min=1,max=15"`
	// CommitSeconds is the btrfs commit interval.
	CommitSeconds int `yaml:"commitSeconds" validate:"min=5,max=300"`
}

// InitramfsConfig tunes /etc/mkinitcpio.conf.
type InitramfsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// BootEntryConfig tunes the option lines of systemd-boot entries.
type BootEntryConfig struct {
	Enabled bool `yaml:"enabled"`
	// KernelParams are always merged into the kernel command line.
	KernelParams []string `yaml:"kernelParams"`
}

// JournaldConfig tunes /etc/systemd/journald.conf.
type JournaldConfig struct {
	Enabled      bool   `yaml:"enabled"`
	SystemMaxUse string `yaml:"systemMaxUse" validate:"required"`
	Compress     bool   `yaml:"compress"`
}

// SysctlConfig generates the archtune sysctl drop-in.
type SysctlConfig struct {
	Enabled          bool `yaml:"enabled"`
	Swappiness       int  `yaml:"swappiness" validate:"min=0,max=200"`
	VFSCachePressure int  `yaml:"vfsCachePressure" validate:"min=1,max=500"`
}

// TimelineLimits bound how many timeline snapshots snapper keeps.
type TimelineLimits struct {
	Hourly  int `yaml:"hourly" validate:"min=0"`
	Daily   int `yaml:"daily" validate:"min=0"`
	Monthly int `yaml:"monthly" validate:"min=0"`
}

// SnapperConfig generates the snapper configuration for /.
type SnapperConfig struct {
	Enabled        bool           `yaml:"enabled"`
	TimelineLimits TimelineLimits `yaml:"timelineLimits"`
}

// DefaultConfig returns the stock tuning profile.
func DefaultConfig() *Config {
	return &Config{
		Pacman: PacmanConfig{
			Enabled:           true,
			ParallelDownloads: 10,
			Color:             true,
			VerbosePkgLists:   true,
		},
		Fstab: FstabConfig{
			Enabled:       true,
			CompressLevel: 3,
			CommitSeconds: 60,
		},
		Initramfs: InitramfsConfig{Enabled: true},
		BootEntry: BootEntryConfig{
			Enabled:      true,
			KernelParams: []string{"rw", "quiet"},
		},
		Journald: JournaldConfig{
			Enabled:      true,
			SystemMaxUse: "500M",
			Compress:     true,
		},
		Sysctl: SysctlConfig{
			Enabled:          true,
			Swappiness:       10,
			VFSCachePressure: 50,
		},
		Snapper: SnapperConfig{
			Enabled: true,
			TimelineLimits: TimelineLimits{
				Hourly:  5,
				Daily:   7,
				Monthly: 2,
			},
		},
	}
}

// FromFile loads a configuration file over the defaults.
func FromFile(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return FromYaml(content)
}

// FromYaml parses a configuration document over the defaults. Unknown
// fields are an error so typos do not silently fall back to default
// behavior.
func FromYaml(content []byte) (*Config, error) {
	c := DefaultConfig()
	if err := strictyaml.YamlUnmarshalStrictIgnoringFields(content, c); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks the field constraints of the whole configuration.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
