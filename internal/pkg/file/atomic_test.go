// SPDX-FileCopyrightText: 2026 archtune authors
// SPDX-License-Identifier: Apache-2.0

package file

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteAtomically(t *testing.T) {
	t.Run("filePermissions", func(t *testing.T) {
		for _, mode := range []os.FileMode{0400, 0644, 0755} {
			modeStr := strconv.FormatUint(uint64(mode), 8)
			t.Run(modeStr, func(t *testing.T) {
				dir := t.TempDir()
				file := filepath.Join(dir, "file")

				require.NoError(t, WriteAtomically(file, mode, func(file io.Writer) error {
					_, err := file.Write([]byte(modeStr))
					return err
				}))

				content, err := os.ReadFile(file)
				require.NoError(t, err)
				assert.Equal(t, []byte(modeStr), content)
				info, err := os.Stat(file)
				if assert.NoError(t, err) {
					assert.Equal(t, mode, info.Mode())
				}
			})
		}
	})

	t.Run("writeFails", func(t *testing.T) {
		dir := t.TempDir()
		file := filepath.Join(dir, "file")

		err := WriteAtomically(file, 0644, func(io.Writer) error {
			return assert.AnError
		})
		assert.ErrorIs(t, err, assert.AnError)

		// Neither the target nor a stray temporary file may remain.
		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("targetUntouchedOnFailure", func(t *testing.T) {
		dir := t.TempDir()
		file := filepath.Join(dir, "file")
		require.NoError(t, os.WriteFile(file, []byte("before"), 0644))

		assert.Error(t, WriteAtomically(file, 0644, func(w io.Writer) error {
			_, err := w.Write([]byte("partial"))
			require.NoError(t, err)
			return assert.AnError
		}))

		content, err := os.ReadFile(file)
		require.NoError(t, err)
		assert.Equal(t, []byte("before"), content)
	})

	t.Run("pathObstructed", func(t *testing.T) {
		dir := t.TempDir()
		file := filepath.Join(dir, "file")

		// Obstruct the file path, so that the rename fails.
		require.NoError(t, os.Mkdir(file, 0700))

		err := WriteAtomically(file, 0644, func(file io.Writer) error {
			_, err := file.Write([]byte("obstructed"))
			return err
		})

		var linkErr *os.LinkError
		if assert.True(t, errors.As(err, &linkErr), "Not a LinkError: %v", err) {
			assert.Equal(t, "rename", linkErr.Op)
			assert.Equal(
				t, dir, filepath.Dir(linkErr.Old),
				"Expected the temporary file to be in the same directory as the target file",
			)
			assert.Equal(t, file, linkErr.New)
		}

		// Expect just the single directory that obstructs the file path.
		if entries, err := os.ReadDir(dir); assert.NoError(t, err) && assert.Len(t, entries, 1) {
			assert.True(t, entries[0].IsDir())
		}
	})
}

func TestAtomic_Close(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file")

	f, err := AtomicWithTarget(file).Open()
	require.NoError(t, err)

	_, err = f.Write([]byte("discarded"))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	// Closing without finishing leaves nothing behind.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)

	// A second close is a no-op.
	assert.NoError(t, f.Close())
}

func TestAtomic_FinishAfterClose(t *testing.T) {
	f, err := AtomicWithTarget(filepath.Join(t.TempDir(), "file")).Open()
	require.NoError(t, err)
	require.NoError(t, f.Close())

	assert.ErrorIs(t, f.Finish(), fs.ErrClosed)
}

func TestAtomic_ReplacesExistingFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(file, []byte("old"), 0644))

	require.NoError(t, AtomicWithTarget(file).WithPermissions(0600).Write([]byte("new")))

	content, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), content)

	info, err := os.Stat(file)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode())
}
