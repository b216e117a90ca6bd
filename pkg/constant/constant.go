// SPDX-FileCopyrightText: 2026 archtune authors
// SPDX-License-Identifier: Apache-2.0

package constant

const (
	// PacmanConfPath is the package manager configuration
	PacmanConfPath = "/etc/pacman.conf"

	// FstabPath is the static mount table
	FstabPath = "/etc/fstab"

	// MkinitcpioConfPath is the initramfs generator configuration
	MkinitcpioConfPath = "/etc/mkinitcpio.conf"

	// BootEntriesDir holds the systemd-boot loader entries
	BootEntriesDir = "/boot/loader/entries"

	// JournaldConfPath is the systemd journal configuration
	JournaldConfPath = "/etc/systemd/journald.conf"

	// SysctlDropInPath is where archtune places its kernel tunables
	SysctlDropInPath = "/etc/sysctl.d/99-archtune.conf"

	// SnapperConfigDir holds per-volume snapper configurations
	SnapperConfigDir = "/etc/snapper/configs"

	// ConfFileMode is the mode for generated configuration files
	ConfFileMode = 0o644
)
