package ext2

import "errors"

// Error taxonomy. Callers distinguish failure classes with errors.Is;
// every returned error wraps one of these sentinels.
var (
	// ErrIoFailure is any non-transient failure from the device handle,
	// including a short read that never reaches the requested length.
	ErrIoFailure = errors.New("ext2: device i/o failure")

	// ErrInvalidImage covers magic mismatch, unsupported feature flags,
	// and an already-errored filesystem state at mount time.
	ErrInvalidImage = errors.New("ext2: invalid filesystem image")

	// ErrInvalidArgument covers empty paths, a relative path with no
	// origin, a non-absolute origin, and an inode number out of range.
	ErrInvalidArgument = errors.New("ext2: invalid argument")

	// ErrNotFound means a path component has no matching directory entry.
	ErrNotFound = errors.New("ext2: no such file or directory")

	// ErrNotADirectory means an intermediate path component, or a
	// directory-required target, is not a directory.
	ErrNotADirectory = errors.New("ext2: not a directory")

	// ErrMalformed covers a zero rec_len, an out-of-range file_type under
	// DynamicRev, a hole (zero block pointer) during a data read, and a
	// logical offset beyond the triple-indirect range.
	ErrMalformed = errors.New("ext2: malformed on-disk structure")

	// ErrClosed is returned once the Drive has been closed by its
	// path-taking methods (OpenDir, OpenFile, Stat, ReadDir, ReadLink),
	// by Info, and by File.Read/ReadAt. Dir iteration does not check it.
	ErrClosed = errors.New("ext2: drive is closed")
)
