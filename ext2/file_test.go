package ext2

import (
	"io"
	"testing"

	"github.com/ext2fs/ext2fs/internal/fixture"
	"github.com/stretchr/testify/require"
)

// TestReadAtDirectToIndirectBoundary covers scenario S4: a file sized
// exactly to fill the direct block range must clip a read straddling
// the boundary to its recorded size rather than following the (unset)
// single-indirect pointer past end of file.
func TestReadAtDirectToIndirectBoundary(t *testing.T) {
	const blockSize = 1024
	data := make([]byte, 12*blockSize)
	data[len(data)-1] = 0x7A

	b := fixture.New()
	b.Root().AddFile("big", data)
	img := b.Build()

	d, err := TryMount(&memDevice{data: img})
	require.NoError(t, err)
	defer d.Close()

	f, err := d.OpenFile("/big", "")
	require.NoError(t, err)
	require.Equal(t, int64(len(data)), f.Size())

	buf := make([]byte, 2)
	n, err := f.ReadAt(buf, int64(len(data))-1)
	require.ErrorIs(t, err, io.EOF)
	require.Equal(t, 1, n)
	require.Equal(t, byte(0x7A), buf[0])
}

func TestFileReadAdvancesCursor(t *testing.T) {
	b := fixture.New()
	b.Root().AddFile("small", []byte("hello world"))
	img := b.Build()

	d, err := TryMount(&memDevice{data: img})
	require.NoError(t, err)
	defer d.Close()

	f, err := d.OpenFile("/small", "")
	require.NoError(t, err)

	first := make([]byte, 5)
	n, err := f.Read(first)
	require.NoError(t, err)
	require.Equal(t, 5, n)
	require.Equal(t, "hello", string(first))

	rest := make([]byte, 64)
	n, err = f.Read(rest)
	require.NoError(t, err)
	require.Equal(t, " world", string(rest[:n]))
}

func TestFileSeek(t *testing.T) {
	b := fixture.New()
	b.Root().AddFile("small", []byte("0123456789"))
	img := b.Build()

	d, err := TryMount(&memDevice{data: img})
	require.NoError(t, err)
	defer d.Close()

	f, err := d.OpenFile("/small", "")
	require.NoError(t, err)

	pos, err := f.Seek(3, io.SeekStart)
	require.NoError(t, err)
	require.Equal(t, int64(3), pos)

	buf := make([]byte, 2)
	n, err := f.Read(buf)
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Equal(t, "34", string(buf))

	_, err = f.Seek(-100, io.SeekCurrent)
	require.ErrorIs(t, err, ErrInvalidArgument)
}
