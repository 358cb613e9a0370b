// Package ext2 mounts and reads a raw ext2 filesystem image: superblock
// and block-group descriptor parsing, inode-table lookup, the
// direct/indirect block-pointer walk, the directory-entry stream, path
// resolution, and the small set of public handles (Drive, Dir, File,
// Stat) built on top of them.
//
// The core is read-mostly and single-threaded: it does not allocate
// blocks or inodes, does not journal, and does not add its own locking.
// A Drive backed by the same device from two goroutines at once races
// the device's seek/read state; callers that need concurrent access
// must serialize it themselves.
package ext2

import (
	"fmt"
	"time"
)

// Option configures a Drive at mount time.
type Option func(*Drive)

// WithLogger overrides the default logrus-backed Logger.
func WithLogger(l Logger) Option {
	return func(d *Drive) {
		if l == nil {
			l = nopLogger{}
		}
		d.log = l
	}
}

// WithClock overrides the source of "now" used for s_mtime/s_mnt_count
// bookkeeping and atime updates. Tests use this to pin deterministic
// timestamps; production code should never need it.
func WithClock(now func() time.Time) Option {
	return func(d *Drive) { d.now = now }
}

// ReadOnly mounts without performing any of the §6 persisted-state
// writes (mount-count bump, state flag, atime updates). Stat and reads
// still work; TryMount's own rejects (bad magic, HasErrors, non-empty
// feature sets) still apply, since those are validation, not writes.
func ReadOnly() Option {
	return func(d *Drive) { d.readOnly = true }
}

// Drive is a mounted ext2 filesystem: the device handle plus an
// in-memory copy of its superblock. It is created by TryMount and
// released by Close. Dir and File handles created from a Drive hold a
// plain pointer back to it — Go's garbage collector, not reference
// counting, is what keeps a Drive reachable for as long as any handle
// still points to it; see SPEC_FULL.md's design notes for why this
// replaces the original driver's weak/strong back-reference scheme.
type Drive struct {
	dev Device
	sb  superblock
	log Logger
	now func() time.Time

	readOnly bool
	closed   bool

	// sbRaw is the verbatim 1024-byte superblock image read at mount
	// time, so write-back only touches the handful of fields the core
	// actually models and leaves the rest byte-for-byte untouched.
	sbRaw [superblockSize]byte
}

// TryMount reads the superblock at byte offset 1024, validates it per
// §3's invariants, and — unless ReadOnly was given — marks the
// filesystem HasErrors, bumps s_mnt_count, stamps s_mtime, and persists
// both before returning. The returned Drive's Close resets the state
// flag to Valid and persists again.
func TryMount(dev Device, opts ...Option) (*Drive, error) {
	d := &Drive{
		dev: dev,
		log: defaultLogger(),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}

	if err := readExact(dev, superblockOffset, d.sbRaw[:]); err != nil {
		d.log.Errorf("mount: reading superblock: %v", err)
		return nil, err
	}

	sb, err := parseSuperblock(d.sbRaw[:])
	if err != nil {
		d.log.Errorf("mount: parsing superblock: %v", err)
		return nil, err
	}
	if err := sb.validate(); err != nil {
		d.log.Warnf("mount: rejected image: %v", err)
		return nil, err
	}
	d.sb = sb

	if !d.readOnly {
		d.sb.state = fsStateHasErrors
		d.sb.mntCount++
		d.sb.mtime = uint32(d.now().Unix())
		d.sb.encodeInto(d.sbRaw[:])
		if err := writeExact(dev, superblockOffset, d.sbRaw[:]); err != nil {
			d.log.Errorf("mount: persisting superblock: %v", err)
			return nil, err
		}
	}

	d.log.Infof("mounted volume %q (uuid %s): %d blocks of %d bytes, %d inodes, %d groups",
		d.sb.volumeNameValue(), d.sb.uuidValue(), d.sb.blocksCount, d.sb.blockSize, d.sb.inodesCount, d.sb.groupCount)

	return d, nil
}

// Close performs the clean-unmount write-back (§3 Lifecycle, §6): reset
// s_state to Valid and persist the superblock. It is idempotent; a
// second call is a no-op. Close does not close the device, which stays
// with the caller. Using a handle after Close is invalid usage (§5
// Ownership): File reads return ErrClosed, while a Dir iterator is not
// checked and keeps reading from the device.
func (d *Drive) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true

	if d.readOnly {
		return nil
	}

	d.sb.state = fsStateValid
	d.sb.encodeInto(d.sbRaw[:])
	if err := writeExact(d.dev, superblockOffset, d.sbRaw[:]); err != nil {
		d.log.Errorf("close: persisting superblock: %v", err)
		return err
	}
	d.log.Infof("unmounted volume %q cleanly", d.sb.volumeNameValue())
	return nil
}

func (d *Drive) checkOpen() error {
	if d.closed {
		return ErrClosed
	}
	return nil
}

// Info summarizes the mounted volume's superblock for diagnostics and
// the CLI's info subcommand.
type Info struct {
	VolumeName      string
	UUID            string
	BlockSize       uint32
	InodesCount     uint32
	BlocksCount     uint32
	FreeBlocksCount uint32
	FreeInodesCount uint32
	GroupCount      uint32
}

// Info returns a snapshot of the mounted volume's superblock fields.
func (d *Drive) Info() (Info, error) {
	if err := d.checkOpen(); err != nil {
		return Info{}, err
	}
	return Info{
		VolumeName:      d.sb.volumeNameValue(),
		UUID:            d.sb.uuidValue().String(),
		BlockSize:       d.sb.blockSize,
		InodesCount:     d.sb.inodesCount,
		BlocksCount:     d.sb.blocksCount,
		FreeBlocksCount: d.sb.freeBlocksCount,
		FreeInodesCount: d.sb.freeInodesCount,
		GroupCount:      d.sb.groupCount,
	}, nil
}

// resolve implements §4.6's two InodeFromPath overloads, dispatched on
// whether path is absolute (origin is used only for a relative path).
func (d *Drive) resolve(path, origin string) (uint32, error) {
	if err := d.checkOpen(); err != nil {
		return 0, err
	}
	return d.resolvePathFromPath(path, origin)
}

// OpenDir resolves path (relative to origin, if path is not itself
// absolute) and returns a handle to it, failing with ErrNotADirectory
// if the resolved inode is not a directory.
func (d *Drive) OpenDir(path, origin string) (*Dir, error) {
	n, err := d.resolve(path, origin)
	if err != nil {
		return nil, err
	}
	in, err := d.readInode(n)
	if err != nil {
		return nil, err
	}
	if !in.isDirectory() {
		return nil, fmt.Errorf("%q: %w", path, ErrNotADirectory)
	}
	return &Dir{drive: d, inodeNum: n, inode: in}, nil
}

// OpenFile resolves path and returns a readable handle to it. OpenFile
// does not reject non-regular files outright (a device node or fifo
// inode is a legitimate metadata object even though reading its data
// makes little sense); File.Read on such an inode behaves exactly as
// §4.4 specifies for its (likely zero or garbage) block pointers.
func (d *Drive) OpenFile(path, origin string) (*File, error) {
	n, err := d.resolve(path, origin)
	if err != nil {
		return nil, err
	}
	in, err := d.readInode(n)
	if err != nil {
		return nil, err
	}
	return &File{drive: d, inodeNum: n, inode: in}, nil
}

// Stat resolves path and returns a metadata snapshot, updating the
// target inode's on-disk atime in the process (§4.7, §6, Testable
// Property 6). In a ReadOnly-mounted Drive, the atime write is skipped.
func (d *Drive) Stat(path, origin string) (Stat, error) {
	n, err := d.resolve(path, origin)
	if err != nil {
		return Stat{}, err
	}
	in, err := d.readInode(n)
	if err != nil {
		return Stat{}, err
	}

	if !d.readOnly {
		in.atime = uint32(d.now().Unix())
		if err := d.writeInode(n, in); err != nil {
			return Stat{}, err
		}
	}

	return statFromInode(n, in, d.sb.blockSize), nil
}

// ReadDir is a buffered convenience wrapper over OpenDir that drains
// the directory iterator into a slice, for callers that don't need the
// streaming form.
func (d *Drive) ReadDir(path, origin string) ([]DirEntry, error) {
	dir, err := d.OpenDir(path, origin)
	if err != nil {
		return nil, err
	}
	var entries []DirEntry
	it := dir.Iterator()
	for it.Next() {
		entries = append(entries, it.Entry())
	}
	if err := it.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// ReadLink returns the raw target of the symlink at path, without
// following it (symlink following is a non-goal of the core). It fails
// with ErrInvalidArgument if the resolved inode is not a symlink.
//
// Ext2 stores a "fast" symlink target inline in the inode's i_block
// array when it fits in 60 bytes (inode.blocks == 0); otherwise it is a
// "slow" symlink whose target is ordinary file data in the first data
// block, read through the normal block-pointer path.
func (d *Drive) ReadLink(path, origin string) (string, error) {
	n, err := d.resolve(path, origin)
	if err != nil {
		return "", err
	}
	in, err := d.readInode(n)
	if err != nil {
		return "", err
	}
	if !in.isSymlink() {
		return "", fmt.Errorf("%q: not a symlink: %w", path, ErrInvalidArgument)
	}
	if in.blocks == 0 {
		n := int(in.size)
		if n > len(in.rawBlock) {
			n = len(in.rawBlock)
		}
		return string(in.rawBlock[:n]), nil
	}
	buf := make([]byte, in.size)
	if err := d.readInodeData(&in, 0, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}
