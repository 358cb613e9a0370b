package ext2

// memDevice is an in-memory Device backed by a byte slice, for tests
// that need direct access to both the ext2 package's private API and
// the raw bytes underneath it (cross-package tests use the public API
// plus internal/fixture instead).
type memDevice struct {
	data []byte
}

func (m *memDevice) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || int(off) > len(m.data) {
		return 0, errOutOfRange
	}
	n := copy(p, m.data[off:])
	if n < len(p) {
		return n, errShortRead
	}
	return n, nil
}

func (m *memDevice) WriteAt(p []byte, off int64) (int, error) {
	end := int(off) + len(p)
	if end > len(m.data) {
		grown := make([]byte, end)
		copy(grown, m.data)
		m.data = grown
	}
	return copy(m.data[off:], p), nil
}

// countingDevice wraps a Device and counts ReadAt calls, so a test can
// assert exactly how many block reads one ReadInodeData call issued
// (Testable Property 3).
type countingDevice struct {
	Device
	reads int
}

func (c *countingDevice) ReadAt(p []byte, off int64) (int, error) {
	c.reads++
	return c.Device.ReadAt(p, off)
}

// traceDevice wraps a Device and records the offset of every ReadAt
// call, so a test can diff the exact sequence of block reads one
// operation issued (not just how many).
type traceDevice struct {
	Device
	offsets []int64
}

func (t *traceDevice) ReadAt(p []byte, off int64) (int, error) {
	t.offsets = append(t.offsets, off)
	return t.Device.ReadAt(p, off)
}

var (
	errOutOfRange = simpleErr("memDevice: read past end of backing buffer")
	errShortRead  = simpleErr("memDevice: short read")
)

type simpleErr string

func (e simpleErr) Error() string { return string(e) }
