package ext2

import (
	"fmt"
	"io"
)

// File is an open regular-file handle with a byte cursor, per §4.7.
// Beyond the core's own Read contract, File also implements io.ReaderAt
// and io.Seeker — an ambient addition so a File can be handed directly
// to anything that accepts those standard interfaces (io.SectionReader,
// io.Copy, etc.) without the caller re-deriving them.
type File struct {
	drive    *Drive
	inodeNum uint32
	inode    inode
	cursor   int64
}

// InodeNumber returns the file's inode number.
func (f *File) InodeNumber() uint32 { return f.inodeNum }

// Size returns the file's size in bytes as recorded in its inode.
func (f *File) Size() int64 { return int64(f.inode.size) }

// Read reads into p starting at the current cursor, clipping the
// request to the file's recorded size, and advances the cursor by the
// number of bytes read. It returns io.EOF once the cursor has reached
// the file's size, matching io.Reader's contract.
func (f *File) Read(p []byte) (int, error) {
	n, err := f.ReadAt(p, f.cursor)
	f.cursor += int64(n)
	if n > 0 && err == io.EOF {
		err = nil
	}
	return n, err
}

// ReadAt reads into p starting at off without touching the cursor. It
// clips the request to the file's size and returns io.EOF alongside a
// short (possibly zero-length) read when off is at or beyond the end
// of file, per io.ReaderAt's contract.
func (f *File) ReadAt(p []byte, off int64) (int, error) {
	if err := f.drive.checkOpen(); err != nil {
		return 0, err
	}
	if off < 0 {
		return 0, fmt.Errorf("negative offset %d: %w", off, ErrInvalidArgument)
	}
	size := int64(f.inode.size)
	if off >= size {
		return 0, io.EOF
	}
	n := len(p)
	if int64(n) > size-off {
		n = int(size - off)
	}
	if n == 0 {
		return 0, nil
	}
	if err := f.drive.readInodeData(&f.inode, off, p[:n]); err != nil {
		return 0, err
	}
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// Seek repositions the cursor per io.Seeker's whence semantics.
func (f *File) Seek(offset int64, whence int) (int64, error) {
	var base int64
	switch whence {
	case io.SeekStart:
		base = 0
	case io.SeekCurrent:
		base = f.cursor
	case io.SeekEnd:
		base = int64(f.inode.size)
	default:
		return 0, fmt.Errorf("invalid whence %d: %w", whence, ErrInvalidArgument)
	}
	pos := base + offset
	if pos < 0 {
		return 0, fmt.Errorf("negative resulting offset %d: %w", pos, ErrInvalidArgument)
	}
	f.cursor = pos
	return pos, nil
}
