package ext2

import (
	"fmt"
	"strings"
)

// fileFormatOf determines a directory entry's file-format nibble, per
// §4.6's GetFileFormat. Under DynamicRev it trusts the entry's file_type
// byte (an out-of-range value is ErrMalformed, resolving the original's
// open question conservatively); otherwise, and whenever file_type is 0
// (unknown), it falls back to reading the referenced inode's mode.
func (d *Drive) fileFormatOf(entry DirEntry) (uint16, error) {
	if d.sb.revLevel >= revDynamic && entry.FileType != ftUnknown {
		switch entry.FileType {
		case ftRegular:
			return formatRegular, nil
		case ftDirectory:
			return formatDirectory, nil
		case ftCharacterDevice:
			return formatCharDevice, nil
		case ftBlockDevice:
			return formatBlockDevice, nil
		case ftFifo:
			return formatFIFO, nil
		case ftSocket:
			return formatSocket, nil
		case ftSymlink:
			return formatSymlink, nil
		default:
			return 0, fmt.Errorf("unknown file_type %d for %q: %w", entry.FileType, entry.Name, ErrMalformed)
		}
	}
	in, err := d.readInode(entry.Inode)
	if err != nil {
		return 0, err
	}
	return in.fileFormat(), nil
}

// resolvePath walks path component by component starting from the
// directory identified by originInode, per §4.6's InodeFromPath(path,
// originInode) overload. The original's mutual recursion between the
// origin-path and origin-inode overloads collapses here into one
// iterative loop over path components.
func (d *Drive) resolvePath(path string, originInode uint32) (uint32, error) {
	origin := originInode
	rest := path

	for {
		rest = strings.TrimLeft(rest, "/")
		if rest == "" {
			return origin, nil
		}

		component := rest
		if idx := strings.IndexByte(rest, '/'); idx >= 0 {
			component = rest[:idx]
			rest = rest[idx:]
		} else {
			rest = ""
		}

		in, err := d.readInode(origin)
		if err != nil {
			return 0, err
		}
		if !in.isDirectory() {
			return 0, fmt.Errorf("inode %d: %w", origin, ErrNotADirectory)
		}

		entry, err := d.findDirectoryEntry(in, component)
		if err != nil {
			return 0, err
		}
		origin = entry.Inode

		if rest != "" {
			format, err := d.fileFormatOf(entry)
			if err != nil {
				return 0, err
			}
			if format != formatDirectory {
				return 0, fmt.Errorf("%q: %w", component, ErrNotADirectory)
			}
		}
	}
}

// resolvePathFromPath implements §4.6's InodeFromPath(path, originPath)
// overload: an absolute path resolves against root inode 2; a relative
// path requires a non-empty, absolute originPath, which is resolved
// first.
func (d *Drive) resolvePathFromPath(path, originPath string) (uint32, error) {
	if path == "" {
		return 0, fmt.Errorf("cannot resolve empty path: %w", ErrInvalidArgument)
	}
	if strings.HasPrefix(path, "/") {
		return d.resolvePath(path, rootInodeNum)
	}
	if originPath == "" || !strings.HasPrefix(originPath, "/") {
		return 0, fmt.Errorf("relative path %q requires an absolute origin: %w", path, ErrInvalidArgument)
	}
	origin, err := d.resolvePath(originPath, rootInodeNum)
	if err != nil {
		return 0, err
	}
	return d.resolvePath(path, origin)
}
