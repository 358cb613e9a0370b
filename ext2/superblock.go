package ext2

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const (
	superblockOffset = 1024
	superblockSize   = 1024

	extMagic uint16 = 0xEF53

	// s_state
	fsStateValid     uint16 = 1
	fsStateHasErrors uint16 = 2

	// s_rev_level
	revGoodOld uint32 = 0
	revDynamic uint32 = 1

	rootInodeNum uint32 = 2
)

// superblock is the in-memory decode of the 1024-byte on-disk record at
// byte offset 1024. Field names follow the on-disk s_* names minus the
// prefix, the way the teacher's ext.go keeps on-disk naming recognizable
// in the decoded struct.
type superblock struct {
	inodesCount      uint32
	blocksCount      uint32
	freeBlocksCount  uint32
	freeInodesCount  uint32
	firstDataBlock   uint32
	logBlockSize     uint32
	blocksPerGroup   uint32
	inodesPerGroup   uint32
	mtime            uint32
	wtime            uint32
	mntCount         uint16
	magic            uint16
	state            uint16
	errors           uint16
	revLevel         uint32
	firstIno         uint32
	inodeSize        uint16
	featureCompat    uint32
	featureIncompat  uint32
	featureRoCompat  uint32
	uuid             [16]byte
	volumeName       [16]byte

	// blockSize is derived, not stored on disk: 1024 << logBlockSize.
	blockSize uint32
	// groupCount is derived: ceil(blocksCount / blocksPerGroup).
	groupCount uint32
}

func parseSuperblock(data []byte) (superblock, error) {
	if len(data) < superblockSize {
		return superblock{}, fmt.Errorf("superblock buffer too short (%d bytes): %w", len(data), ErrInvalidImage)
	}

	le := binary.LittleEndian
	var sb superblock
	sb.inodesCount = le.Uint32(data[0x00:])
	sb.blocksCount = le.Uint32(data[0x04:])
	sb.freeBlocksCount = le.Uint32(data[0x0C:])
	sb.freeInodesCount = le.Uint32(data[0x10:])
	sb.firstDataBlock = le.Uint32(data[0x14:])
	sb.logBlockSize = le.Uint32(data[0x18:])
	sb.blocksPerGroup = le.Uint32(data[0x20:])
	sb.inodesPerGroup = le.Uint32(data[0x28:])
	sb.mtime = le.Uint32(data[0x2C:])
	sb.wtime = le.Uint32(data[0x30:])
	sb.mntCount = le.Uint16(data[0x34:])
	sb.magic = le.Uint16(data[0x38:])
	sb.state = le.Uint16(data[0x3A:])
	sb.errors = le.Uint16(data[0x3C:])
	sb.revLevel = le.Uint32(data[0x4C:])

	sb.firstIno = 11
	sb.inodeSize = 128
	if sb.revLevel >= revDynamic {
		sb.firstIno = le.Uint32(data[0x54:])
		sb.inodeSize = le.Uint16(data[0x58:])
		sb.featureCompat = le.Uint32(data[0x5C:])
		sb.featureIncompat = le.Uint32(data[0x60:])
		sb.featureRoCompat = le.Uint32(data[0x64:])
		copy(sb.uuid[:], data[0x68:0x78])
		copy(sb.volumeName[:], data[0x78:0x88])
	}

	if sb.inodeSize == 0 {
		sb.inodeSize = 128
	}

	sb.blockSize = 1024 << sb.logBlockSize
	if sb.blockSize == 0 || sb.blocksPerGroup == 0 {
		return superblock{}, fmt.Errorf("degenerate block geometry: %w", ErrInvalidImage)
	}
	sb.groupCount = (sb.blocksCount + sb.blocksPerGroup - 1) / sb.blocksPerGroup

	return sb, nil
}

// validate enforces the mount-time invariants from §3: magic match,
// empty incompat/ro_compat feature sets, and a clean (non-errored) state.
func (sb *superblock) validate() error {
	if sb.magic != extMagic {
		return fmt.Errorf("bad magic 0x%04x: %w", sb.magic, ErrInvalidImage)
	}
	if sb.featureIncompat != 0 {
		return fmt.Errorf("non-empty incompat feature set 0x%x: %w", sb.featureIncompat, ErrInvalidImage)
	}
	if sb.featureRoCompat != 0 {
		return fmt.Errorf("non-empty ro_compat feature set 0x%x: %w", sb.featureRoCompat, ErrInvalidImage)
	}
	if sb.state == fsStateHasErrors {
		return fmt.Errorf("filesystem already marked as errored: %w", ErrInvalidImage)
	}
	return nil
}

// encodeInto writes the mutable fields of sb back into a 1024-byte buffer
// that is otherwise a byte-for-byte copy of what was read at mount time,
// so that fields the core doesn't model are preserved on write-back.
func (sb *superblock) encodeInto(data []byte) {
	le := binary.LittleEndian
	le.PutUint32(data[0x2C:], sb.mtime)
	le.PutUint16(data[0x34:], sb.mntCount)
	le.PutUint16(data[0x3A:], sb.state)
}

// uuidValue decodes the raw 16-byte s_uuid field as a UUID for
// diagnostic display; an all-zero field is the valid "no UUID set" case.
func (sb *superblock) uuidValue() uuid.UUID {
	var u uuid.UUID
	copy(u[:], sb.uuid[:])
	return u
}

func (sb *superblock) volumeNameValue() string {
	return strings.TrimRight(string(sb.volumeName[:]), "\x00")
}
