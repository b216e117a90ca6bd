// SPDX-FileCopyrightText: 2026 archtune authors
// SPDX-License-Identifier: Apache-2.0

package facts

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestDiskOf(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"sda2", "sda"},
		{"sda", "sda"},
		{"vdb1", "vdb"},
		{"nvme0n1p2", "nvme0n1"},
		{"nvme0n1", "nvme0n1"},
		{"mmcblk0p1", "mmcblk0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, diskOf(tt.name))
		})
	}
}

func TestIsSSD(t *testing.T) {
	sysRoot := t.TempDir()
	writeFile(t, filepath.Join(sysRoot, "block", "nvme0n1", "queue", "rotational"), "0\n")
	writeFile(t, filepath.Join(sysRoot, "block", "sdb", "queue", "rotational"), "1\n")

	d := NewDetector().WithSysRoot(sysRoot)

	assert.True(t, d.isSSD("/dev/nvme0n1p2"))
	assert.False(t, d.isSSD("/dev/sdb1"))
	assert.False(t, d.isSSD("UUID=0a3407de-014b-458b-b5c1-848e92a327a3"))
	assert.False(t, d.isSSD("/dev/mapper/cryptroot"))
	assert.False(t, d.isSSD("/dev/sdc1"), "unknown disks count as rotational")
}

func TestDiscreteGPU(t *testing.T) {
	tests := []struct {
		name       string
		devices    map[string][2]string // name -> class, vendor
		want       bool
		wantVendor string
	}{
		{
			"nvidiaCard",
			map[string][2]string{
				"0000:00:02.0": {"0x030000", "0x8086"},
				"0000:01:00.0": {"0x030000", "0x10de"},
			},
			true,
			"nvidia",
		},
		{
			"amdCard",
			map[string][2]string{
				"0000:03:00.0": {"0x030200", "0x1002"},
			},
			true,
			"amd",
		},
		{
			"intelOnly",
			map[string][2]string{
				"0000:00:02.0": {"0x030000", "0x8086"},
			},
			false,
			"",
		},
		{
			"noDisplayDevices",
			map[string][2]string{
				"0000:00:1f.0": {"0x060100", "0x8086"},
			},
			false,
			"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sysRoot := t.TempDir()
			for device, attrs := range tt.devices {
				base := filepath.Join(sysRoot, "bus", "pci", "devices", device)
				writeFile(t, filepath.Join(base, "class"), attrs[0]+"\n")
				writeFile(t, filepath.Join(base, "vendor"), attrs[1]+"\n")
			}

			d := NewDetector().WithSysRoot(sysRoot)
			vendor, ok := d.discreteGPU()
			assert.Equal(t, tt.want, ok)
			assert.Equal(t, tt.wantVendor, vendor)
		})
	}
}

func TestRootMount(t *testing.T) {
	procRoot := t.TempDir()
	writeFile(t, filepath.Join(procRoot, "self", "mounts"),
		"proc /proc proc rw,nosuid 0 0\n/dev/nvme0n1p2 / btrfs rw,noatime,compress=zstd:3 0 0\n")

	d := NewDetector().WithProcRoot(procRoot)

	root, ok := d.rootMount()
	require.True(t, ok)
	assert.Equal(t, "/dev/nvme0n1p2", root.Source)
	assert.Equal(t, "btrfs", root.FSType)
}
