package ext2

// Stat is the metadata record returned by Drive.Stat, per §4.7.
type Stat struct {
	InodeNumber uint32
	Mode        uint16
	LinksCount  uint16
	UID         uint16
	GID         uint16
	Size        uint32
	BlockSize   uint32
	BlockCount  uint32 // in 512-byte units, as stored on disk (i_blocks).
	Atime       uint32
	Mtime       uint32
	Ctime       uint32
}

// IsDir reports whether the stat'd inode is a directory.
func (s Stat) IsDir() bool { return s.Mode&formatMask == formatDirectory }

// IsRegular reports whether the stat'd inode is a regular file.
func (s Stat) IsRegular() bool { return s.Mode&formatMask == formatRegular }

// IsSymlink reports whether the stat'd inode is a symbolic link.
func (s Stat) IsSymlink() bool { return s.Mode&formatMask == formatSymlink }

func statFromInode(n uint32, in inode, blockSize uint32) Stat {
	return Stat{
		InodeNumber: n,
		Mode:        in.mode,
		LinksCount:  in.linksCount,
		UID:         in.uid,
		GID:         in.gid,
		Size:        in.size,
		BlockSize:   blockSize,
		BlockCount:  in.blocks,
		Atime:       in.atime,
		Mtime:       in.mtime,
		Ctime:       in.ctime,
	}
}
