package ext2

import (
	"encoding/binary"
	"fmt"
)

const (
	inodeBlockPointers = 15
	inodeDirectCount   = 12
	// inode.block[12], [13], [14]
	idxSingleIndirect = 12
	idxDoubleIndirect = 13
	idxTripleIndirect = 14

	decodedInodeSize = 0x6C // through i_file_acl; enough for every field the core consumes.

	// file format nibble, from mode & formatMask.
	formatMask       uint16 = 0xF000
	formatFIFO       uint16 = 0x1000
	formatCharDevice uint16 = 0x2000
	formatDirectory  uint16 = 0x4000
	formatBlockDevice uint16 = 0x6000
	formatRegular    uint16 = 0x8000
	formatSymlink    uint16 = 0xA000
	formatSocket     uint16 = 0xC000
)

// inode is the decoded subset of an on-disk inode record that the core
// consumes. The on-disk record may be larger (s_inode_size); reads fetch
// exactly decodedInodeSize bytes regardless of the record's true size.
type inode struct {
	mode       uint16
	uid        uint16
	size       uint32
	atime      uint32
	ctime      uint32
	mtime      uint32
	dtime      uint32
	gid        uint16
	linksCount uint16
	blocks     uint32
	flags      uint32
	block      [inodeBlockPointers]uint32
	// rawBlock is i_block reinterpreted as raw bytes, used only to
	// decode a fast symlink's target (stored inline instead of as
	// block pointers when the target fits in 60 bytes).
	rawBlock [inodeBlockPointers * 4]byte
}

func parseInode(data []byte) inode {
	le := binary.LittleEndian
	var in inode
	in.mode = le.Uint16(data[0x00:])
	in.uid = le.Uint16(data[0x02:])
	in.size = le.Uint32(data[0x04:])
	in.atime = le.Uint32(data[0x08:])
	in.ctime = le.Uint32(data[0x0C:])
	in.mtime = le.Uint32(data[0x10:])
	in.dtime = le.Uint32(data[0x14:])
	in.gid = le.Uint16(data[0x18:])
	in.linksCount = le.Uint16(data[0x1A:])
	in.blocks = le.Uint32(data[0x1C:])
	in.flags = le.Uint32(data[0x20:])
	for i := 0; i < inodeBlockPointers; i++ {
		in.block[i] = le.Uint32(data[0x28+4*i:])
	}
	copy(in.rawBlock[:], data[0x28:0x28+inodeBlockPointers*4])
	return in
}

func (in *inode) encodeInto(data []byte) {
	le := binary.LittleEndian
	le.PutUint16(data[0x00:], in.mode)
	le.PutUint16(data[0x02:], in.uid)
	le.PutUint32(data[0x04:], in.size)
	le.PutUint32(data[0x08:], in.atime)
	le.PutUint32(data[0x0C:], in.ctime)
	le.PutUint32(data[0x10:], in.mtime)
	le.PutUint32(data[0x14:], in.dtime)
	le.PutUint16(data[0x18:], in.gid)
	le.PutUint16(data[0x1A:], in.linksCount)
	le.PutUint32(data[0x1C:], in.blocks)
	le.PutUint32(data[0x20:], in.flags)
	for i := 0; i < inodeBlockPointers; i++ {
		le.PutUint32(data[0x28+4*i:], in.block[i])
	}
}

func (in *inode) fileFormat() uint16 {
	return in.mode & formatMask
}

func (in *inode) isDirectory() bool {
	return in.fileFormat() == formatDirectory
}

func (in *inode) isSymlink() bool {
	return in.fileFormat() == formatSymlink
}

// computeInodeOffset maps an inode number to its byte offset on the
// device, per §4.3: rejects n == 0 and n > total inodes, otherwise reads
// the owning group's descriptor and computes
// descriptor.inode_table*block_size + ((n-1)%inodes_per_group)*inode_size.
func (d *Drive) computeInodeOffset(n uint32) (int64, error) {
	if n == 0 || n > d.sb.inodesCount {
		return 0, fmt.Errorf("inode number %d out of range (1..%d): %w", n, d.sb.inodesCount, ErrInvalidArgument)
	}
	group := (n - 1) / d.sb.inodesPerGroup
	index := (n - 1) % d.sb.inodesPerGroup

	desc, err := d.readGroupDescriptor(group)
	if err != nil {
		return 0, err
	}
	off := int64(desc.inodeTable)*int64(d.sb.blockSize) + int64(index)*int64(d.sb.inodeSize)
	return off, nil
}

// readInode reads and decodes the inode numbered n.
func (d *Drive) readInode(n uint32) (inode, error) {
	off, err := d.computeInodeOffset(n)
	if err != nil {
		return inode{}, err
	}
	buf := make([]byte, decodedInodeSize)
	if err := readExact(d.dev, off, buf); err != nil {
		return inode{}, err
	}
	return parseInode(buf), nil
}

// writeInode encodes and writes back the inode numbered n.
func (d *Drive) writeInode(n uint32, in inode) error {
	off, err := d.computeInodeOffset(n)
	if err != nil {
		return err
	}
	// Start from the on-disk bytes so fields the core does not model
	// (osd1, i_generation, i_file_acl) are written back unchanged.
	buf := make([]byte, decodedInodeSize)
	if err := readExact(d.dev, off, buf); err != nil {
		return err
	}
	in.encodeInto(buf)
	return writeExact(d.dev, off, buf)
}
