package ext2

import (
	"testing"

	"github.com/ext2fs/ext2fs/internal/fixture"
	"github.com/stretchr/testify/require"
)

// TestPathResolutionAssociativity establishes Testable Property 4:
// resolving "A/B" equals resolving B relative to A, for A a directory.
func TestPathResolutionAssociativity(t *testing.T) {
	b := fixture.New()
	sub := b.Root().AddDir("sub")
	sub.AddFile("leaf.txt", []byte("x"))
	img := b.Build()

	d, err := TryMount(&memDevice{data: img})
	require.NoError(t, err)
	defer d.Close()

	direct, err := d.resolve("/sub/leaf.txt", "")
	require.NoError(t, err)

	viaOrigin, err := d.resolve("leaf.txt", "/sub")
	require.NoError(t, err)

	require.Equal(t, direct, viaOrigin)
}

func TestPathResolutionRootIsInode2(t *testing.T) {
	img := fixture.New().Build()
	d, err := TryMount(&memDevice{data: img})
	require.NoError(t, err)
	defer d.Close()

	n, err := d.resolve("/", "")
	require.NoError(t, err)
	require.EqualValues(t, rootInodeNum, n)
}

func TestPathResolutionEmptyPathFails(t *testing.T) {
	img := fixture.New().Build()
	d, err := TryMount(&memDevice{data: img})
	require.NoError(t, err)
	defer d.Close()

	_, err = d.resolve("", "")
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestPathResolutionRelativeWithoutOriginFails(t *testing.T) {
	img := fixture.New().Build()
	d, err := TryMount(&memDevice{data: img})
	require.NoError(t, err)
	defer d.Close()

	_, err = d.resolve("foo", "")
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestPathResolutionThroughNonDirectoryFails(t *testing.T) {
	b := fixture.New()
	b.Root().AddFile("afile", []byte("x"))
	img := b.Build()

	d, err := TryMount(&memDevice{data: img})
	require.NoError(t, err)
	defer d.Close()

	_, err = d.resolve("/afile/nope", "")
	require.ErrorIs(t, err, ErrNotADirectory)
}

func TestPathResolutionMissingComponentIsNotFound(t *testing.T) {
	img := fixture.New().Build()
	d, err := TryMount(&memDevice{data: img})
	require.NoError(t, err)
	defer d.Close()

	_, err = d.resolve("/does-not-exist", "")
	require.ErrorIs(t, err, ErrNotFound)
}
