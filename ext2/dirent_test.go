package ext2

import (
	"sort"
	"testing"

	"github.com/ext2fs/ext2fs/internal/fixture"
	"github.com/stretchr/testify/require"
)

// TestDirIteratorSkipsTombstone establishes Testable Property 5 and
// covers scenario S6: a tombstone between two live entries is skipped,
// and the live entries are yielded in on-disk order.
func TestDirIteratorSkipsTombstone(t *testing.T) {
	b := fixture.New()
	root := b.Root()
	root.AddFile("first", []byte("a"))
	root.AddTombstone("dead", 16)
	root.AddFile("second", []byte("b"))
	img := b.Build()

	d, err := TryMount(&memDevice{data: img})
	require.NoError(t, err)
	defer d.Close()

	entries, err := d.ReadDir("/", "")
	require.NoError(t, err)

	var names []string
	for _, e := range entries {
		names = append(names, e.Name)
	}
	// "." and ".." precede the two files added above.
	require.Equal(t, []string{".", "..", "first", "second"}, names)
}

// TestDirIteratorMultisetMatchesLiveEntries builds a directory with a
// larger, shuffled-looking set of live entries and confirms the
// iterator yields exactly that multiset.
func TestDirIteratorMultisetMatchesLiveEntries(t *testing.T) {
	b := fixture.New()
	root := b.Root()
	want := []string{".", ".."}
	for _, name := range []string{"alpha", "bravo", "charlie", "delta"} {
		root.AddFile(name, []byte(name))
		want = append(want, name)
	}
	img := b.Build()

	d, err := TryMount(&memDevice{data: img})
	require.NoError(t, err)
	defer d.Close()

	entries, err := d.ReadDir("/", "")
	require.NoError(t, err)
	var got []string
	for _, e := range entries {
		got = append(got, e.Name)
	}
	sort.Strings(got)
	sort.Strings(want)
	require.Equal(t, want, got)
}

// TestDirIteratorTerminatesOnZeroRecLen covers the "rec_len == 0
// terminates the stream" edge case from §4.5 step 3.
func TestDirIteratorTerminatesOnZeroRecLen(t *testing.T) {
	b := fixture.New()
	root := b.Root()
	root.AddFile("before", []byte("x"))
	// A zero rec_len record terminates the stream before this entry.
	root.AddTombstone("trailer", 0)
	root.AddFile("after", []byte("y"))
	img := b.Build()

	d, err := TryMount(&memDevice{data: img})
	require.NoError(t, err)
	defer d.Close()

	entries, err := d.ReadDir("/", "")
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name)
	}
	require.Equal(t, []string{".", "..", "before"}, names)
}
