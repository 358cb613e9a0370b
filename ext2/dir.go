package ext2

// Dir is an open directory handle: the resolved inode number and its
// decoded inode, plus the Drive that can turn those into I/O. It holds
// a plain *Drive pointer — see the Drive type's doc comment on why
// that, and not a reference count, is enough to keep the Drive alive
// for as long as the Dir is reachable.
type Dir struct {
	drive    *Drive
	inodeNum uint32
	inode    inode
}

// InodeNumber returns the directory's inode number.
func (dir *Dir) InodeNumber() uint32 { return dir.inodeNum }

// Iterator returns a fresh DirIterator positioned before the first
// entry. Each call starts a new scan from the beginning of the
// directory payload.
func (dir *Dir) Iterator() *DirIterator {
	return newDirIterator(dir.drive, dir.inode)
}
