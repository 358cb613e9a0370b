// Package fixture builds synthetic, in-memory ext2 images for tests.
// It is a from-scratch, pure-Go stand-in for shelling out to mkfs.ext2:
// every byte is placed by hand at a computed offset, the same technique
// the teacher's testdata/mkdisk.go uses to assemble its disk images,
// adapted here to ext2's on-disk structures instead of FAT/MBR/GPT.
package fixture

import (
	"encoding/binary"
)

const (
	blockSize      = 1024
	extMagic       = 0xEF53
	rootInode      = 2
	firstFreeInode = 11 // matches s_first_ino for a DynamicRev volume.

	// Fixed layout, in block numbers, for every image this package
	// builds: boot block, superblock, one descriptor-table block, then
	// the inode table. Data and indirect-pointer blocks are allocated
	// sequentially starting right after.
	blockBoot       = 0
	blockSuperblock = 1
	blockGroupDesc  = 2
	blockInodeTable = 3

	inodeSize = 128
)

// fixtureInode mirrors the subset of an on-disk inode the ext2 package
// decodes, plus a fastSymlink override used only by AddSymlinkFast.
type fixtureInode struct {
	mode       uint16
	uid, gid   uint16
	size       uint32
	atime      uint32
	ctime      uint32
	mtime      uint32
	dtime      uint32
	linksCount uint16
	blocks     uint32
	block      [15]uint32

	fastSymlink []byte // if non-nil, overrides block[] encoding with inline bytes.
}

// ptrBlock is an indirect block under construction: a fixed-size array
// of block-pointer entries, flushed to bytes at Build time.
type ptrBlock struct {
	entries []uint32
}

// Builder assembles one ext2 image. The zero value is not usable; use
// New.
type Builder struct {
	inodesPerGroup uint32
	state          uint16
	mountCount     uint16
	featureIncompat uint32
	featureRoCompat uint32
	volumeName      string
	uuid            [16]byte
	now             uint32

	nextBlock uint32
	nextInode uint32

	dataBlocks    map[uint32][]byte
	pointerBlocks map[uint32]*ptrBlock
	inodes        map[uint32]*fixtureInode

	root *DirBuilder
}

// Option configures a Builder at construction.
type Option func(*Builder)

// WithInodesPerGroup overrides the default inode-table size. Must be
// large enough to cover every inode the test allocates (default 128).
func WithInodesPerGroup(n uint32) Option { return func(b *Builder) { b.inodesPerGroup = n } }

// WithState overrides s_state (default: Valid = 1).
func WithState(state uint16) Option { return func(b *Builder) { b.state = state } }

// WithFeatureIncompat sets s_feature_incompat, letting a test build an
// image TryMount must refuse (scenario S5).
func WithFeatureIncompat(f uint32) Option { return func(b *Builder) { b.featureIncompat = f } }

// WithFeatureRoCompat sets s_feature_ro_compat.
func WithFeatureRoCompat(f uint32) Option { return func(b *Builder) { b.featureRoCompat = f } }

// WithVolumeName sets s_volume_name.
func WithVolumeName(name string) Option { return func(b *Builder) { b.volumeName = name } }

// WithNow sets the mtime/ctime/atime stamped onto every inode and the
// superblock, for deterministic assertions.
func WithNow(unix uint32) Option { return func(b *Builder) { b.now = unix } }

// New creates a Builder and pre-allocates the root directory's inode
// (always inode 2), ready for population via Root().
func New(opts ...Option) *Builder {
	b := &Builder{
		inodesPerGroup: 128,
		state:          1, // Valid
		mountCount:     0,
		now:            1_700_000_000,
		dataBlocks:     map[uint32][]byte{},
		pointerBlocks:  map[uint32]*ptrBlock{},
		inodes:         map[uint32]*fixtureInode{},
		nextBlock:      blockInodeTable + inodeTableBlocks(128),
		nextInode:      firstFreeInode,
	}
	for _, opt := range opts {
		opt(b)
	}
	// Re-derive nextBlock in case WithInodesPerGroup changed the table size.
	b.nextBlock = blockInodeTable + inodeTableBlocks(b.inodesPerGroup)

	b.inodes[rootInode] = &fixtureInode{
		mode: 0x4000 | 0755, linksCount: 2,
		atime: b.now, ctime: b.now, mtime: b.now,
	}
	b.root = &DirBuilder{b: b, inodeNum: rootInode, in: b.inodes[rootInode], selfNum: rootInode, parentNum: rootInode}
	b.root.entries = append(b.root.entries,
		rawEntry{name: ".", inode: rootInode, fileType: ftDirectory},
		rawEntry{name: "..", inode: rootInode, fileType: ftDirectory},
	)
	return b
}

func inodeTableBlocks(inodesPerGroup uint32) uint32 {
	bytes := inodesPerGroup * inodeSize
	return (bytes + blockSize - 1) / blockSize
}

// Root returns the builder for the volume's root directory (inode 2).
func (b *Builder) Root() *DirBuilder { return b.root }

func (b *Builder) allocBlock() uint32 {
	n := b.nextBlock
	b.nextBlock++
	return n
}

func (b *Builder) allocInode() uint32 {
	n := b.nextInode
	b.nextInode++
	b.inodes[n] = &fixtureInode{atime: b.now, ctime: b.now, mtime: b.now}
	return n
}

// placeDataBlock allocates a fresh data block containing data, padded
// with zeroes to a full block.
func (b *Builder) placeDataBlock(data []byte) uint32 {
	num := b.allocBlock()
	buf := make([]byte, blockSize)
	copy(buf, data)
	b.dataBlocks[num] = buf
	return num
}

// pointerBlockFor returns the ptrBlock rooted at *ptr, allocating and
// wiring up a fresh one the first time *ptr is zero. This is the
// inverse of the ext2 package's blockResolver: where that walks an
// existing chain, this grows one on demand.
func (b *Builder) pointerBlockFor(ptr *uint32) *ptrBlock {
	if *ptr != 0 {
		return b.pointerBlocks[*ptr]
	}
	num := b.allocBlock()
	pb := &ptrBlock{entries: make([]uint32, blockSize/4)}
	b.pointerBlocks[num] = pb
	*ptr = num
	return pb
}

// setLogicalBlock writes data (at most one block's worth) as logical
// block index k of in's data, walking/growing the direct, single-,
// double-, or triple-indirect pointer chain as needed.
func (b *Builder) setLogicalBlock(in *fixtureInode, k uint64, data []byte) {
	const p = uint64(blockSize / 4)

	if k < 12 {
		in.block[k] = b.placeDataBlock(data)
		return
	}
	k -= 12

	if k < p {
		single := b.pointerBlockFor(&in.block[12])
		single.entries[k] = b.placeDataBlock(data)
		return
	}
	k -= p

	if k < p*p {
		outer, inner := k/p, k%p
		top := b.pointerBlockFor(&in.block[13])
		innerPB := b.pointerBlockFor(&top.entries[outer])
		innerPB.entries[inner] = b.placeDataBlock(data)
		return
	}
	k -= p * p

	if k < p*p*p {
		outer, mid, inner := k/(p*p), (k/p)%p, k%p
		top := b.pointerBlockFor(&in.block[14])
		midPB := b.pointerBlockFor(&top.entries[outer])
		innerPB := b.pointerBlockFor(&midPB.entries[mid])
		innerPB.entries[inner] = b.placeDataBlock(data)
		return
	}
	panic("fixture: logical block beyond triple-indirect range")
}

// writeFileData splits data into block-sized chunks and lays them down
// as in's logical blocks 0, 1, 2, ..., setting in.size and in.blocks.
func (b *Builder) writeFileData(in *fixtureInode, data []byte) {
	in.size = uint32(len(data))
	in.blocks = (uint32(len(data)) + 511) / 512
	for start := uint64(0); start < uint64(len(data)); start += blockSize {
		end := start + blockSize
		if end > uint64(len(data)) {
			end = uint64(len(data))
		}
		b.setLogicalBlock(in, start/blockSize, data[start:end])
	}
}

// SetLogicalBlock exposes setLogicalBlock for tests that need to place
// a single far-away logical block directly — e.g. to exercise the
// double- or triple-indirect boundary without materializing every
// block in between.
func (b *Builder) SetLogicalBlock(in *File, k uint64, data []byte) {
	b.setLogicalBlock(in.fi, k, data)
	if end := uint32(k*blockSize) + uint32(len(data)); end > in.fi.size {
		in.fi.size = end
	}
}

// File is a handle to an already-allocated regular-file inode, returned
// by DirBuilder.AddFile, for callers that want to keep poking at it
// (e.g. via SetLogicalBlock) after the directory entry is recorded.
type File struct {
	InodeNumber uint32
	fi          *fixtureInode
}

// Build serializes every allocated inode, pointer block, and data block
// into one flat byte slice representing the complete ext2 image, along
// with the superblock and the single block-group descriptor.
func (b *Builder) Build() []byte {
	b.root.finish()

	totalBlocks := b.nextBlock
	img := make([]byte, uint64(totalBlocks)*blockSize)

	// Group descriptor: one group, inode table starts at blockInodeTable.
	gd := img[blockGroupDesc*blockSize:]
	binary.LittleEndian.PutUint32(gd[0x08:], blockInodeTable)

	// Inode table.
	for n, in := range b.inodes {
		off := uint64(blockInodeTable)*blockSize + uint64(n-1)*inodeSize
		encodeInode(img[off:off+inodeSize], in)
	}

	// Indirect pointer blocks.
	for num, pb := range b.pointerBlocks {
		off := uint64(num) * blockSize
		buf := img[off : off+blockSize]
		for i, v := range pb.entries {
			binary.LittleEndian.PutUint32(buf[4*i:], v)
		}
	}

	// Data blocks.
	for num, data := range b.dataBlocks {
		off := uint64(num) * blockSize
		copy(img[off:off+blockSize], data)
	}

	// Superblock, written last so nothing above can clobber it.
	sb := img[1024:2048]
	binary.LittleEndian.PutUint32(sb[0x00:], b.inodesPerGroup) // inodes_count (1 group)
	binary.LittleEndian.PutUint32(sb[0x04:], totalBlocks)       // blocks_count
	binary.LittleEndian.PutUint32(sb[0x14:], blockBoot)         // first_data_block
	binary.LittleEndian.PutUint32(sb[0x18:], 0)                 // log_block_size -> 1024<<0
	binary.LittleEndian.PutUint32(sb[0x20:], totalBlocks)       // blocks_per_group (one group covers all)
	binary.LittleEndian.PutUint32(sb[0x28:], b.inodesPerGroup)  // inodes_per_group
	binary.LittleEndian.PutUint32(sb[0x2C:], b.now)             // mtime
	binary.LittleEndian.PutUint32(sb[0x30:], b.now)             // wtime
	binary.LittleEndian.PutUint16(sb[0x34:], b.mountCount)      // mnt_count
	binary.LittleEndian.PutUint16(sb[0x38:], extMagic)          // magic
	binary.LittleEndian.PutUint16(sb[0x3A:], b.state)           // state
	binary.LittleEndian.PutUint32(sb[0x4C:], 1)                 // rev_level = DynamicRev
	binary.LittleEndian.PutUint32(sb[0x54:], firstFreeInode)    // first_ino
	binary.LittleEndian.PutUint16(sb[0x58:], inodeSize)         // inode_size
	binary.LittleEndian.PutUint32(sb[0x5C:], 0)                 // feature_compat
	binary.LittleEndian.PutUint32(sb[0x60:], b.featureIncompat)
	binary.LittleEndian.PutUint32(sb[0x64:], b.featureRoCompat)
	copy(sb[0x68:0x78], b.uuid[:])
	name := make([]byte, 16)
	copy(name, b.volumeName)
	copy(sb[0x78:0x88], name)

	return img
}

func encodeInode(data []byte, in *fixtureInode) {
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
	if in.fastSymlink != nil {
		copy(data[0x28:0x28+60], in.fastSymlink)
		return
	}
	for i := 0; i < 15; i++ {
		le.PutUint32(data[0x28+4*i:], in.block[i])
	}
}
