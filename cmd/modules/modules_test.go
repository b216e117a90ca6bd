// SPDX-FileCopyrightText: 2026 archtune authors
// SPDX-License-Identifier: Apache-2.0

package modules

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModulesCmd(t *testing.T) {
	var out bytes.Buffer
	cmd := NewModulesCmd()
	cmd.SetOut(&out)
	cmd.SetArgs(nil)

	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), "pacman")
	assert.Contains(t, out.String(), "snapper")
	assert.NotContains(t, out.String(), "no")
}

func TestModulesCmdWithConfig(t *testing.T) {
	cfgFile := filepath.Join(t.TempDir(), "archtune.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("snapper:\n  enabled: false\n"), 0o644))

	var out bytes.Buffer
	cmd := NewModulesCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--config", cfgFile})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "no")
}
