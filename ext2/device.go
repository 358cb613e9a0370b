package ext2

import (
	"errors"
	"fmt"
	"io"

	"golang.org/x/sys/unix"
)

// Device is the backing store contract: positional reads and writes of
// arbitrary byte ranges, addressed by a signed 64-bit byte offset. Any
// *os.File satisfies this; so does an in-memory buffer used in tests.
type Device interface {
	io.ReaderAt
	io.WriterAt
}

// readExact reads exactly len(buf) bytes from dev at off, or fails.
// io.ReaderAt already guarantees "full read or non-nil error" per its
// contract, so this mostly exists to fold io.EOF into ErrIoFailure and
// to give every L0 call site one call shape.
func readExact(dev io.ReaderAt, off int64, buf []byte) error {
	if len(buf) == 0 {
		return nil
	}
	n, err := dev.ReadAt(buf, off)
	if n == len(buf) && (err == nil || errors.Is(err, io.EOF)) {
		return nil
	}
	if err == nil {
		err = io.ErrUnexpectedEOF
	}
	return fmt.Errorf("read %d bytes at offset %d: %w: %v", len(buf), off, ErrIoFailure, err)
}

// writeExact writes exactly len(buf) bytes to dev at off, or fails.
func writeExact(dev io.WriterAt, off int64, buf []byte) error {
	if len(buf) == 0 {
		return nil
	}
	n, err := dev.WriteAt(buf, off)
	if n == len(buf) && err == nil {
		return nil
	}
	if err == nil {
		err = io.ErrShortWrite
	}
	return fmt.Errorf("write %d bytes at offset %d: %w: %v", len(buf), off, ErrIoFailure, err)
}

// RawFileDevice adapts a raw OS file descriptor into a Device using
// unix.Pread/unix.Pwrite directly, retrying on EINTR/EAGAIN rather than
// relying on the runtime's own retry loop around os.File. This mirrors
// the original driver's ReadReentrant/WriteReentrant: the pread/pwrite
// syscall is retried immediately on a transient errno, and any other
// errno is reported as ErrIoFailure.
//
// Most callers should just open an *os.File and use it as a Device
// directly; RawFileDevice exists for callers that already manage a raw
// fd themselves (e.g. a block device opened with non-standard flags).
type RawFileDevice struct {
	Fd int
}

func (d RawFileDevice) ReadAt(p []byte, off int64) (int, error) {
	total := 0
	for total < len(p) {
		n, err := unix.Pread(d.Fd, p[total:], off+int64(total))
		if err != nil {
			if isTransient(err) {
				continue
			}
			return total, fmt.Errorf("pread at offset %d: %w: %v", off+int64(total), ErrIoFailure, err)
		}
		if n == 0 {
			if total < len(p) {
				return total, fmt.Errorf("pread at offset %d: %w: %v", off+int64(total), ErrIoFailure, io.ErrUnexpectedEOF)
			}
			break
		}
		total += n
	}
	return total, nil
}

func (d RawFileDevice) WriteAt(p []byte, off int64) (int, error) {
	total := 0
	for total < len(p) {
		n, err := unix.Pwrite(d.Fd, p[total:], off+int64(total))
		if err != nil {
			if isTransient(err) {
				continue
			}
			return total, fmt.Errorf("pwrite at offset %d: %w: %v", off+int64(total), ErrIoFailure, err)
		}
		total += n
	}
	return total, nil
}

func isTransient(err error) bool {
	return errors.Is(err, unix.EINTR) || errors.Is(err, unix.EAGAIN)
}
