package ext2

import (
	"testing"

	"github.com/ext2fs/ext2fs/internal/fixture"
	"github.com/stretchr/testify/require"
)

// TestReadLinkFast covers scenario S7: a fast symlink's target is
// decoded straight out of the inode with no data-block read.
func TestReadLinkFast(t *testing.T) {
	b := fixture.New()
	b.Root().AddSymlinkFast("link", "/hello.txt")
	img := b.Build()

	cd := &countingDevice{Device: &memDevice{data: img}}
	d, err := TryMount(cd)
	require.NoError(t, err)
	defer d.Close()

	// Reads for resolving the path and fetching the inode, which ReadLink
	// also has to do before it looks at the target.
	cd.reads = 0
	n, err := d.resolve("/link", "")
	require.NoError(t, err)
	_, err = d.readInode(n)
	require.NoError(t, err)
	lookupReads := cd.reads

	cd.reads = 0
	target, err := d.ReadLink("/link", "")
	require.NoError(t, err)
	require.Equal(t, "/hello.txt", target)
	require.Equal(t, lookupReads, cd.reads, "a fast symlink target must not trigger a data block read")
}

// TestReadLinkSlow covers the "slow" symlink form, where the target is
// ordinary file data in the first data block.
func TestReadLinkSlow(t *testing.T) {
	longTarget := "/a/very/long/path/that/does/not/fit/inline/in/sixty/bytes/of/i_block"
	b := fixture.New()
	b.Root().AddSymlinkSlow("link", longTarget)
	img := b.Build()

	d, err := TryMount(&memDevice{data: img})
	require.NoError(t, err)
	defer d.Close()

	target, err := d.ReadLink("/link", "")
	require.NoError(t, err)
	require.Equal(t, longTarget, target)
}

func TestReadLinkRejectsNonSymlink(t *testing.T) {
	b := fixture.New()
	b.Root().AddFile("plain", []byte("x"))
	img := b.Build()

	d, err := TryMount(&memDevice{data: img})
	require.NoError(t, err)
	defer d.Close()

	_, err = d.ReadLink("/plain", "")
	require.ErrorIs(t, err, ErrInvalidArgument)
}

// TestInfoExposesUUIDAndVolumeName covers scenario S8.
func TestInfoExposesUUIDAndVolumeName(t *testing.T) {
	var id [16]byte
	for i := range id {
		id[i] = byte(i + 1)
	}
	b := fixture.New(fixture.WithVolumeName("testvol"))
	img := b.Build()
	copy(img[superblockOffset+0x68:superblockOffset+0x78], id[:])

	d, err := TryMount(&memDevice{data: img})
	require.NoError(t, err)
	defer d.Close()

	info, err := d.Info()
	require.NoError(t, err)
	require.Equal(t, "testvol", info.VolumeName)
	require.NotEqual(t, "00000000-0000-0000-0000-000000000000", info.UUID)
}
