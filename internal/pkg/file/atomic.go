// SPDX-FileCopyrightText: 2026 archtune authors
// SPDX-License-Identifier: Apache-2.0

package file

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync/atomic"
)

// The internal options for atomic file writes.
type atomicOpts struct {
	target      string
	permissions fs.FileMode
	uid, gid    int
}

func (o *atomicOpts) wantsChmod() bool {
	return o.permissions.IsRegular()
}

type AtomicOpener struct{ atomicOpts }

// AtomicWithTarget prepares an atomic write of the file at the given
// target path.
func AtomicWithTarget(target string) *AtomicOpener {
	return &AtomicOpener{atomicOpts{
		target:      target,
		permissions: fs.ModeIrregular, // "unset" marker, see wantsChmod()
		uid:         -1,
		gid:         -1,
	}}
}

// The desired permissions for the target.
// Will rely on the umask if not called.
func (o *AtomicOpener) WithPermissions(perm os.FileMode) *AtomicOpener {
	o.permissions = perm.Perm()
	return o
}

// The desired owner UID for the target file.
// Will be owned by the current user if not called.
func (o *AtomicOpener) WithOwner(uid int) *AtomicOpener {
	o.uid = max(-1, uid)
	return o
}

// The desired group ID for the target file.
// Will be owned by the current user's group if not called.
func (o *AtomicOpener) WithGroup(gid int) *AtomicOpener {
	o.gid = max(-1, gid)
	return o
}

// Open starts the atomic write by creating the temporary shadow file
// next to the target. Writes go to the shadow until [Atomic.Finish]
// renames it over the target. Closing without finishing deletes the
// shadow and leaves the target untouched.
func (o *AtomicOpener) Open() (f *Atomic, err error) {
	f = &Atomic{atomicOpts: o.atomicOpts}

	// Resolve the target to an absolute path so that the write is
	// robust against intermediary working directory changes.
	if f.target, err = filepath.Abs(f.target); err != nil {
		return nil, err
	}

	f.fd, err = os.CreateTemp(filepath.Dir(f.target), fmt.Sprintf(".%s.*.tmp", filepath.Base(f.target)))
	if err != nil {
		return nil, err
	}

	return f, nil
}

// Do performs the atomic file creation or replacement. The contents of
// the target will be whatever the write callback writes to the passed
// io.Writer. If write returns an error, the target is left untouched.
func (o *AtomicOpener) Do(write func(unbuffered io.Writer) error) (err error) {
	f, err := o.Open()
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, f.Close()) }()
	if err := write(f); err != nil {
		return err
	}
	return f.Finish()
}

// Write atomically creates or replaces the target file with the given
// content. Will delegate to [AtomicOpener.Do].
func (o *AtomicOpener) Write(content []byte) error {
	return o.Do(func(w io.Writer) error {
		_, err := w.Write(content)
		return err
	})
}

// A file that will appear atomically at its target path after
// [Atomic.Finish] has been called.
type Atomic struct {
	atomicOpts
	fd     *os.File
	closed atomic.Bool
}

func (f *Atomic) Name() string {
	return f.target
}

// Write implements [io.Writer].
func (f *Atomic) Write(p []byte) (int, error) {
	if f == nil {
		return 0, fs.ErrInvalid
	}

	return f.fd.Write(p)
}

// Finish closes f and makes it appear atomically at its target path.
// The temporary file is renamed to the target, unless finishing fails
// and an error is returned, in which case the temporary file is
// deleted without touching the target.
func (f *Atomic) Finish() (err error) {
	if f == nil {
		return fs.ErrInvalid
	}

	if !f.closed.CompareAndSwap(false, true) {
		return &fs.PathError{Op: "close", Path: f.target, Err: fs.ErrClosed}
	}

	close := true
	defer func() {
		var closeErr, removeErr error
		if close {
			closeErr = f.fd.Close()
		}
		if err != nil {
			removeErr = remove(f.fd)
		}
		err = errors.Join(err, closeErr, removeErr)
	}()

	if err = f.fd.Sync(); err != nil {
		return err
	}

	close = false // If Close() fails or panics, don't try it a second time.
	if err = f.fd.Close(); err != nil {
		return err
	}

	if f.wantsChmod() {
		if err := os.Chmod(f.fd.Name(), f.permissions.Perm()); err != nil {
			return err
		}
	}

	// Chown after chmod: chown is privileged anyway, so if it succeeds
	// the process could also have chmodded the file as the new owner.
	if wantsChown := (f.uid >= 0 || f.gid >= 0); wantsChown {
		err = os.Chown(f.fd.Name(), f.uid, f.gid)
		if err != nil && !errors.Is(err, errors.ErrUnsupported) {
			return err
		}
	}

	if err = os.Rename(f.fd.Name(), f.target); err != nil {
		return err
	}

	return nil
}

// Close closes f and deletes its temporary shadow. The target remains
// untouched. This is a no-op if f has already been finished/closed.
func (f *Atomic) Close() (err error) {
	if f == nil {
		return fs.ErrInvalid
	}

	if !f.closed.CompareAndSwap(false, true) {
		return nil // Already closed, make this a no-op.
	}

	return errors.Join(f.fd.Close(), remove(f.fd))
}

func remove(fd *os.File) error {
	err := os.Remove(fd.Name())
	// The desired state is reached if the temporary file is already
	// gone, so swallow fs.ErrNotExist.
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	return nil
}

// WriteAtomically atomically creates or replaces a file. The contents
// of the file will be those that the write callback writes to the
// io.Writer that gets passed in. If write returns an error, the target
// file is left untouched.
func WriteAtomically(fileName string, perm os.FileMode, write func(file io.Writer) error) (err error) {
	return AtomicWithTarget(fileName).WithPermissions(perm).Do(write)
}
