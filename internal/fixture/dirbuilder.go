package fixture

import "encoding/binary"

// file_type values written into dirent headers, mirroring the ext2
// package's own ft* constants (kept duplicated here deliberately: a
// fixture builder that imported the package under test to borrow its
// constants would no longer be an independent check).
const (
	ftRegular   uint8 = 1
	ftDirectory uint8 = 2
	ftSymlink   uint8 = 7
)

type rawEntry struct {
	name     string
	inode    uint32
	fileType uint8
	recLen   uint16 // meaningful only when explicitRecLen is set.
	explicitRecLen bool
}

// DirBuilder accumulates directory entries for one directory inode.
// Entries are serialized into the directory's data blocks by Build.
type DirBuilder struct {
	b         *Builder
	inodeNum  uint32
	in        *fixtureInode
	selfNum   uint32
	parentNum uint32

	entries  []rawEntry
	children []*DirBuilder
}

// InodeNumber returns the directory's inode number.
func (d *DirBuilder) InodeNumber() uint32 { return d.inodeNum }

// AddFile creates a regular-file inode with the given content and adds
// a directory entry named name pointing to it.
func (d *DirBuilder) AddFile(name string, content []byte) *File {
	n := d.b.allocInode()
	in := d.b.inodes[n]
	in.mode = 0x8000 | 0644
	in.linksCount = 1
	d.b.writeFileData(in, content)
	d.entries = append(d.entries, rawEntry{name: name, inode: n, fileType: ftRegular})
	return &File{InodeNumber: n, fi: in}
}

// AddDir creates a subdirectory, pre-populated with "." and ".."
// entries, adds a directory entry for it in d, and returns a builder
// for the new directory's own contents.
func (d *DirBuilder) AddDir(name string) *DirBuilder {
	n := d.b.allocInode()
	in := d.b.inodes[n]
	in.mode = 0x4000 | 0755
	in.linksCount = 2

	child := &DirBuilder{b: d.b, inodeNum: n, in: in, selfNum: n, parentNum: d.selfNum}
	child.entries = append(child.entries,
		rawEntry{name: ".", inode: n, fileType: ftDirectory},
		rawEntry{name: "..", inode: d.selfNum, fileType: ftDirectory},
	)

	d.entries = append(d.entries, rawEntry{name: name, inode: n, fileType: ftDirectory})
	d.children = append(d.children, child)
	return child
}

// AddSymlinkFast creates a fast symlink (target stored inline in the
// inode, no data block) and adds a directory entry for it. target must
// fit within 60 bytes.
func (d *DirBuilder) AddSymlinkFast(name, target string) uint32 {
	n := d.b.allocInode()
	in := d.b.inodes[n]
	in.mode = 0xA000 | 0777
	in.linksCount = 1
	in.size = uint32(len(target))
	in.fastSymlink = make([]byte, 60)
	copy(in.fastSymlink, target)
	d.entries = append(d.entries, rawEntry{name: name, inode: n, fileType: ftSymlink})
	return n
}

// AddSymlinkSlow creates a slow symlink (target stored as ordinary file
// data in the first data block) and adds a directory entry for it.
func (d *DirBuilder) AddSymlinkSlow(name, target string) uint32 {
	n := d.b.allocInode()
	in := d.b.inodes[n]
	in.mode = 0xA000 | 0777
	in.linksCount = 1
	d.b.writeFileData(in, []byte(target))
	d.entries = append(d.entries, rawEntry{name: name, inode: n, fileType: ftSymlink})
	return n
}

// AddTombstone appends a dead (inode == 0) directory record whose
// rec_len field is recLen; it occupies recLen bytes, or just enough for
// its header and name if recLen is smaller. It is for building the "tombstone between two live entries"
// layout in scenario S6. name is written into the record purely as
// realistic padding; a tombstone's name is never read by the iterator.
func (d *DirBuilder) AddTombstone(name string, recLen uint16) {
	d.entries = append(d.entries, rawEntry{name: name, inode: 0, fileType: 0, recLen: recLen, explicitRecLen: true})
}

func align4(n uint16) uint16 { return (n + 3) &^ 3 }

// finish packs d's entries into its data blocks (recursing into any
// child directories first) and sets d.in.size to match.
func (d *DirBuilder) finish() {
	for _, c := range d.children {
		c.finish()
	}

	var buf []byte
	for _, e := range d.entries {
		nameBytes := []byte(e.name)
		minLen := align4(uint16(8 + len(nameBytes)))

		encodedRecLen := minLen
		physicalLen := minLen
		if e.explicitRecLen {
			encodedRecLen = e.recLen
			if e.recLen >= minLen {
				physicalLen = e.recLen
			}
			// A deliberately too-short or zero recLen (e.g. to exercise
			// stream termination) still needs minLen physical bytes so
			// the header itself can be written; later entries simply
			// become unreachable through the live iterator, which is
			// the point of the test using it.
		}

		record := make([]byte, physicalLen)
		binary.LittleEndian.PutUint32(record[0:], e.inode)
		binary.LittleEndian.PutUint16(record[4:], encodedRecLen)
		record[6] = uint8(len(nameBytes))
		record[7] = e.fileType
		copy(record[8:], nameBytes)
		buf = append(buf, record...)
	}
	d.b.writeFileData(d.in, buf)
}
