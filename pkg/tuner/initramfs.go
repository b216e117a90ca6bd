// SPDX-FileCopyrightText: 2026 archtune authors
// SPDX-License-Identifier: Apache-2.0

package tuner

import (
	"context"

	"github.com/archtune/archtune/internal/pkg/directive"
	"github.com/archtune/archtune/pkg/constant"
	"github.com/archtune/archtune/pkg/mutator"
)

// InitramfsModule pins the btrfs module into the initramfs so the
// root volume is mountable before udev settles, plus the GPU's KMS
// modules for flicker-free early modesetting.
type InitramfsModule struct {
	// Path overrides the mkinitcpio.conf location. For tests.
	Path string
}

func (m *InitramfsModule) Name() string { return "initramfs" }

// earlyGPUModules maps a detected GPU vendor to the kernel modules
// worth loading in early userspace.
var earlyGPUModules = map[string][]string{
	"nvidia": {"nvidia", "nvidia_modeset", "nvidia_uvm", "nvidia_drm"},
	"amd":    {"amdgpu"},
}

func (m *InitramfsModule) Run(ctx context.Context, env *Env) ([]mutator.Result, error) {
	modules := []string{"btrfs"}
	if env.Facts.HasDiscreteGPU {
		modules = append(modules, earlyGPUModules[env.Facts.GPUVendor]...)
	}

	result, err := env.Mutator.Do(mutator.Request{
		Path: m.path(),
		Transform: func(current []byte) ([]byte, error) {
			current, _ = directive.Apply(current, directive.ShellArray("MODULES", modules...))
			return current, nil
		},
	})
	if err != nil {
		return nil, err
	}
	return []mutator.Result{result}, nil
}

func (m *InitramfsModule) path() string {
	if m.Path != "" {
		return m.Path
	}
	return constant.MkinitcpioConfPath
}
