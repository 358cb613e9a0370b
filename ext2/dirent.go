package ext2

import (
	"encoding/binary"
	"fmt"
)

const (
	dirEntryHeaderSize = 8
	maxNameLen         = 255
)

// file_type values, valid only under DynamicRev.
const (
	ftUnknown         uint8 = 0
	ftRegular         uint8 = 1
	ftDirectory       uint8 = 2
	ftCharacterDevice uint8 = 3
	ftBlockDevice     uint8 = 4
	ftFifo            uint8 = 5
	ftSocket          uint8 = 6
	ftSymlink         uint8 = 7
)

// DirEntry is one live (non-tombstoned) entry yielded by a directory
// iterator.
type DirEntry struct {
	Name     string
	Inode    uint32
	FileType uint8 // meaningful only when the volume is DynamicRev.
}

type dirEntryHeader struct {
	inode    uint32
	recLen   uint16
	nameLen  uint8
	fileType uint8
}

// readDirEntryHeader reads the fixed 8-byte header at offset within the
// directory payload described by in.
func (d *Drive) readDirEntryHeader(in *inode, offset int64) (dirEntryHeader, error) {
	buf := make([]byte, dirEntryHeaderSize)
	if err := d.readInodeData(in, offset, buf); err != nil {
		return dirEntryHeader{}, err
	}
	return dirEntryHeader{
		inode:    binary.LittleEndian.Uint32(buf[0:4]),
		recLen:   binary.LittleEndian.Uint16(buf[4:6]),
		nameLen:  buf[6],
		fileType: buf[7],
	}, nil
}

// readDirEntryName reads the name bytes immediately following a header
// at headerOffset, bounded by §4.5's min(255, name_len).
func (d *Drive) readDirEntryName(in *inode, headerOffset int64, nameLen uint8) (string, error) {
	n := int(nameLen)
	if n > maxNameLen {
		n = maxNameLen
	}
	if n == 0 {
		return "", nil
	}
	buf := make([]byte, n)
	if err := d.readInodeData(in, headerOffset+dirEntryHeaderSize, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

// DirIterator streams the directory-entry records stored as the file
// data payload of a directory inode, per §4.5. A zero value is not
// usable; construct one via Dir.Iterator.
//
// Unlike the original driver, a mid-stream L3 failure is surfaced
// through Err rather than silently collapsed into end-of-stream — see
// the "Iterator error suppression" design note.
type DirIterator struct {
	drive  *Drive
	inode  inode
	offset int64
	size   int64

	cur  DirEntry
	err  error
	done bool
}

func newDirIterator(drive *Drive, in inode) *DirIterator {
	return &DirIterator{drive: drive, inode: in, size: int64(in.size)}
}

// Next advances to the next live entry, skipping tombstones, and
// reports whether one was found. Once Next returns false, Err reports
// whether that was clean end-of-stream (nil) or a failure.
func (it *DirIterator) Next() bool {
	if it.done {
		return false
	}
	for {
		if it.offset >= it.size {
			it.done = true
			return false
		}
		hdr, err := it.drive.readDirEntryHeader(&it.inode, it.offset)
		if err != nil {
			it.err = err
			it.done = true
			return false
		}
		if hdr.recLen == 0 {
			// Malformed tail: terminate the stream, per §4.5 step 3.
			it.done = true
			return false
		}
		nextOffset := it.offset + int64(hdr.recLen)
		if hdr.inode == 0 {
			// Tombstone: consumed but not yielded.
			it.offset = nextOffset
			continue
		}
		name, err := it.drive.readDirEntryName(&it.inode, it.offset, hdr.nameLen)
		if err != nil {
			it.err = err
			it.done = true
			return false
		}
		it.cur = DirEntry{Name: name, Inode: hdr.inode, FileType: hdr.fileType}
		it.offset = nextOffset
		return true
	}
}

// Entry returns the entry most recently yielded by a successful Next.
func (it *DirIterator) Entry() DirEntry { return it.cur }

// Err returns the failure, if any, that caused Next to return false.
// A nil Err after Next returns false means clean end-of-stream.
func (it *DirIterator) Err() error { return it.err }

// findDirectoryEntry linearly scans in's directory payload for an entry
// whose name equals name exactly, per §4.6 step 3.
func (d *Drive) findDirectoryEntry(in inode, name string) (DirEntry, error) {
	it := newDirIterator(d, in)
	for it.Next() {
		if it.Entry().Name == name {
			return it.Entry(), nil
		}
	}
	if err := it.Err(); err != nil {
		return DirEntry{}, err
	}
	return DirEntry{}, fmt.Errorf("%q: %w", name, ErrNotFound)
}
