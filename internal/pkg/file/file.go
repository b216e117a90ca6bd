// SPDX-FileCopyrightText: 2026 archtune authors
// SPDX-License-Identifier: Apache-2.0

package file

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"syscall"
)

// Exists checks if a file exists and is not a directory before we
// try using it to prevent further errors.
func Exists(fileName string) bool {
	info, err := os.Stat(fileName)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// Chown changes file mode and ownership. Ownership errors are only
// propagated when running as root, since non-root invocations (tests,
// simulations against scratch copies) cannot chown at all.
func Chown(file string, uid, gid int, permissions os.FileMode) error {
	err := os.Chown(file, uid, gid)
	if err != nil && os.Geteuid() == 0 {
		return err
	}
	err = os.Chmod(file, permissions)
	if err != nil && os.Geteuid() == 0 {
		return err
	}
	return nil
}

// Copy copies the regular file at src to dst, preserving the source's
// mode and, when running as root, its ownership.
func Copy(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, in.Close()) }()

	sourceFileStat, err := in.Stat()
	if err != nil {
		return err
	}

	if !sourceFileStat.Mode().IsRegular() {
		return fmt.Errorf("%s is not a regular file", src)
	}

	if err := WriteAtomically(dst, sourceFileStat.Mode(), func(out io.Writer) error {
		_, err := io.Copy(out, in)
		return err
	}); err != nil {
		return err
	}

	if stat, ok := sourceFileStat.Sys().(*syscall.Stat_t); ok {
		return Chown(dst, int(stat.Uid), int(stat.Gid), sourceFileStat.Mode())
	}
	return nil
}

// ReadIfExists reads the file at path. A missing file is not an error;
// it is reported via the returned boolean instead.
func ReadIfExists(path string) ([]byte, bool, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return content, true, nil
}
