// SPDX-FileCopyrightText: 2026 archtune authors
// SPDX-License-Identifier: Apache-2.0

package dir

import (
	"errors"
	"os"
)

// IsDirectory check the given path exists and is a directory
func IsDirectory(name string) bool {
	fi, err := os.Stat(name)
	return err == nil && fi.Mode().IsDir()
}

// Init creates a path if it does not exist, and enforces its
// permissions, if it does
func Init(path string, perm os.FileMode) error {
	if path == "" {
		return errors.New("init dir: path cannot be empty")
	}
	if err := os.MkdirAll(path, perm); err != nil {
		return err
	}
	return os.Chmod(path, perm)
}
