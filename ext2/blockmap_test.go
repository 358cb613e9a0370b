package ext2

import (
	"testing"

	"github.com/ext2fs/ext2fs/internal/fixture"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

// TestBlockPointerTreeCoverage establishes Testable Property 3: reading
// a single byte at the start of each pointer-tree level invokes exactly
// the expected number of block reads (direct -> 1, single -> 2, double
// -> 3, triple -> 4).
func TestBlockPointerTreeCoverage(t *testing.T) {
	const blockSize = 1024
	p := uint64(blockSize / 4)

	cases := []struct {
		name        string
		logicalBlk  uint64
		expectReads int
	}{
		{"direct", 0, 1},
		{"single-indirect start", 12, 2},
		{"double-indirect start", 12 + p, 3},
		{"triple-indirect start", 12 + p + p*p, 4},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := fixture.New()
			want := byte(0x42)
			f := b.Root().AddFile("probe", []byte{0})
			b.SetLogicalBlock(f, tc.logicalBlk, []byte{want})
			img := b.Build()

			cd := &countingDevice{Device: &memDevice{data: img}}
			d, err := TryMount(cd)
			require.NoError(t, err)
			defer d.Close()

			in, err := d.readInode(f.InodeNumber)
			require.NoError(t, err)

			cd.reads = 0
			buf := make([]byte, 1)
			err = d.readInodeData(&in, int64(tc.logicalBlk)*int64(d.sb.blockSize), buf)
			require.NoError(t, err)
			require.Equal(t, want, buf[0])
			require.Equal(t, tc.expectReads, cd.reads, "unexpected number of device reads")
		})
	}
}

// TestBlockPointerTreeNoRedundantReads ensures a range fully inside one
// indirect block's span never re-reads that indirect block, the second
// half of Testable Property 3.
func TestBlockPointerTreeNoRedundantReads(t *testing.T) {
	const blockSize = 1024

	b := fixture.New()
	f := b.Root().AddFile("probe", []byte{0})
	// Fill several consecutive single-indirect blocks with known bytes.
	for i := uint64(0); i < 5; i++ {
		b.SetLogicalBlock(f, 12+i, []byte{byte(i)})
	}
	img := b.Build()

	cd := &countingDevice{Device: &memDevice{data: img}}
	d, err := TryMount(cd)
	require.NoError(t, err)
	defer d.Close()

	in, err := d.readInode(f.InodeNumber)
	require.NoError(t, err)

	cd.reads = 0
	buf := make([]byte, 4*blockSize+1)
	// Spans logical blocks 12..16, all within the single-indirect block.
	err = d.readInodeData(&in, 12*int64(blockSize), buf)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		require.Equal(t, byte(i), buf[i*blockSize])
	}
	// One read for the (cached) single-indirect block, plus one per data block.
	require.Equal(t, 1+5, cd.reads)
}

// TestBlockPointerTreeReadTrace diffs the exact sequence of block
// offsets one ReadAt pass issues, not just the count: the fixture
// builder allocates a single-indirect pointer block immediately
// followed by the data blocks it points at, so reading across all of
// them should produce six strictly consecutive block offsets with the
// pointer block read only at the front of the trace.
func TestBlockPointerTreeReadTrace(t *testing.T) {
	const blockSize = 1024

	b := fixture.New()
	f := b.Root().AddFile("probe", []byte{0})
	for i := uint64(0); i < 5; i++ {
		b.SetLogicalBlock(f, 12+i, []byte{byte(i)})
	}
	img := b.Build()

	td := &traceDevice{Device: &memDevice{data: img}}
	d, err := TryMount(td)
	require.NoError(t, err)
	defer d.Close()

	in, err := d.readInode(f.InodeNumber)
	require.NoError(t, err)

	td.offsets = nil
	buf := make([]byte, 4*blockSize+1)
	err = d.readInodeData(&in, 12*int64(blockSize), buf)
	require.NoError(t, err)
	require.Len(t, td.offsets, 6)

	want := make([]int64, len(td.offsets))
	for i := range want {
		want[i] = td.offsets[0] + int64(i)*blockSize
	}
	if diff := cmp.Diff(want, td.offsets); diff != "" {
		t.Errorf("read offset trace mismatch (-want +got):\n%s", diff)
	}
}

// TestBlockPointerHoleIsMalformed confirms the resolved hole-semantics
// design note: a zero pointer is always an error, never zero-filled.
func TestBlockPointerHoleIsMalformed(t *testing.T) {
	b := fixture.New()
	f := b.Root().AddFile("sparse", make([]byte, 1)) // allocates logical block 0 only.
	img := b.Build()
	d, err := TryMount(&memDevice{data: img})
	require.NoError(t, err)
	defer d.Close()

	in, err := d.readInode(f.InodeNumber)
	require.NoError(t, err)
	// Logical block 1 was never allocated: in.block[1] == 0.
	in.size = 2 * 1024

	buf := make([]byte, 1)
	err = d.readInodeData(&in, 1024, buf)
	require.ErrorIs(t, err, ErrMalformed)
}
