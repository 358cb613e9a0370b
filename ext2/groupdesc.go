package ext2

import (
	"encoding/binary"
	"fmt"
)

const groupDescSize = 32

// groupDescriptor is the 32-byte on-disk block-group descriptor.
type groupDescriptor struct {
	blockBitmap     uint32
	inodeBitmap     uint32
	inodeTable      uint32
	freeBlocksCount uint16
	freeInodesCount uint16
	usedDirsCount   uint16
}

func parseGroupDescriptor(data []byte) groupDescriptor {
	le := binary.LittleEndian
	return groupDescriptor{
		blockBitmap:     le.Uint32(data[0x00:]),
		inodeBitmap:     le.Uint32(data[0x04:]),
		inodeTable:      le.Uint32(data[0x08:]),
		freeBlocksCount: le.Uint16(data[0x0C:]),
		freeInodesCount: le.Uint16(data[0x0E:]),
		usedDirsCount:   le.Uint16(data[0x10:]),
	}
}

func (d groupDescriptor) encodeInto(data []byte) {
	le := binary.LittleEndian
	le.PutUint32(data[0x00:], d.blockBitmap)
	le.PutUint32(data[0x04:], d.inodeBitmap)
	le.PutUint32(data[0x08:], d.inodeTable)
	le.PutUint16(data[0x0C:], d.freeBlocksCount)
	le.PutUint16(data[0x0E:], d.freeInodesCount)
	le.PutUint16(data[0x10:], d.usedDirsCount)
}

// descriptorTableOffset is the byte offset of the block-group descriptor
// array: the block immediately following the superblock's block.
func (sb *superblock) descriptorTableOffset() int64 {
	return superblockOffset + int64(sb.blockSize)
}

// readGroupDescriptor reads the block-group descriptor for groupIdx
// (§4.2's ReadDescriptorTable).
func (d *Drive) readGroupDescriptor(groupIdx uint32) (groupDescriptor, error) {
	if groupIdx >= d.sb.groupCount {
		return groupDescriptor{}, fmt.Errorf("group index %d out of range (%d groups): %w", groupIdx, d.sb.groupCount, ErrInvalidArgument)
	}
	off := d.sb.descriptorTableOffset() + int64(groupIdx)*groupDescSize
	buf := make([]byte, groupDescSize)
	if err := readExact(d.dev, off, buf); err != nil {
		return groupDescriptor{}, err
	}
	return parseGroupDescriptor(buf), nil
}

// writeGroupDescriptor writes back the block-group descriptor for
// groupIdx (§4.2's WriteDescriptorTable).
func (d *Drive) writeGroupDescriptor(groupIdx uint32, desc groupDescriptor) error {
	if groupIdx >= d.sb.groupCount {
		return fmt.Errorf("group index %d out of range (%d groups): %w", groupIdx, d.sb.groupCount, ErrInvalidArgument)
	}
	off := d.sb.descriptorTableOffset() + int64(groupIdx)*groupDescSize
	buf := make([]byte, groupDescSize)
	desc.encodeInto(buf)
	return writeExact(d.dev, off, buf)
}
