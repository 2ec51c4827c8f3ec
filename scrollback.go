package vtgrid

// ScrollbackLine is one row archived from the top of the primary grid.
// Wrapped records whether the row continued onto the next one, which drives
// logical-line snapping and line breaks during text extraction.
type ScrollbackLine struct {
	Cells   []Cell
	Wrapped bool
}

// ScrollbackProvider stores rows scrolled off the top of the primary grid.
// Implementations take ownership of pushed rows; the grid never touches them
// again.
type ScrollbackProvider interface {
	// Push archives a row as the newest history line. When the store is
	// full the oldest line is silently discarded.
	Push(line ScrollbackLine)
	// Len returns the number of stored lines.
	Len() int
	// At returns a stored line, where 0 is the oldest.
	At(index int) ScrollbackLine
	// Clear removes all stored lines.
	Clear()
	// Capacity returns the maximum number of lines retained.
	Capacity() int
}

// NoopScrollback discards everything pushed into it.
type NoopScrollback struct{}

func (NoopScrollback) Push(ScrollbackLine)   {}
func (NoopScrollback) Len() int              { return 0 }
func (NoopScrollback) At(int) ScrollbackLine { return ScrollbackLine{} }
func (NoopScrollback) Clear()                {}
func (NoopScrollback) Capacity() int         { return 0 }

// RingScrollback is the default ScrollbackProvider: a fixed-capacity
// circular buffer allocated once at construction. The line count saturates
// at capacity, after which each push overwrites the oldest line.
type RingScrollback struct {
	lines []ScrollbackLine
	start int // index of the oldest line
	count int
}

// NewRingScrollback creates a ring holding at most capacity lines.
// A capacity <= 0 yields a ring that stores nothing.
func NewRingScrollback(capacity int) *RingScrollback {
	if capacity < 0 {
		capacity = 0
	}
	return &RingScrollback{
		lines: make([]ScrollbackLine, capacity),
	}
}

// Push archives a row as the newest line, evicting the oldest when full.
func (r *RingScrollback) Push(line ScrollbackLine) {
	if len(r.lines) == 0 {
		return
	}
	if r.count < len(r.lines) {
		r.lines[(r.start+r.count)%len(r.lines)] = line
		r.count++
		return
	}
	r.lines[r.start] = line
	r.start = (r.start + 1) % len(r.lines)
}

// Len returns the number of stored lines.
func (r *RingScrollback) Len() int {
	return r.count
}

// At returns a stored line, where 0 is the oldest. Out-of-range indices
// return an empty line.
func (r *RingScrollback) At(index int) ScrollbackLine {
	if index < 0 || index >= r.count {
		return ScrollbackLine{}
	}
	return r.lines[(r.start+index)%len(r.lines)]
}

// Clear removes all stored lines without releasing the backing array.
func (r *RingScrollback) Clear() {
	for i := range r.lines {
		r.lines[i] = ScrollbackLine{}
	}
	r.start = 0
	r.count = 0
}

// Capacity returns the maximum number of lines retained.
func (r *RingScrollback) Capacity() int {
	return len(r.lines)
}
