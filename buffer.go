package vtgrid

// Buffer stores a 2D grid of cells and tracks per-row dirty state, line
// wrapping, and tab stops. The primary buffer archives rows scrolled off its
// top into a ScrollbackProvider; the alternate buffer has none.
//
// Every row always holds exactly cols cells. Rows move by reference during
// scrolling, so a full-region scroll costs O(n) pointer moves.
type Buffer struct {
	rows       int
	cols       int
	cells      [][]Cell
	wrapped    []bool // tracks if each line was wrapped (vs explicit newline)
	dirty      []bool // per-row changed flags, cleared by renderer ack
	tabStop    []bool
	tabWidth   int
	scrollback ScrollbackProvider
	hasDirty   bool
}

// NewBuffer creates a buffer with the given dimensions and no scrollback.
func NewBuffer(rows, cols, tabWidth int) *Buffer {
	return NewBufferWithStorage(rows, cols, tabWidth, NoopScrollback{})
}

// NewBufferWithStorage creates a buffer with custom scrollback storage.
// Tab stops are initialized every tabWidth columns.
func NewBufferWithStorage(rows, cols, tabWidth int, storage ScrollbackProvider) *Buffer {
	if tabWidth <= 0 {
		tabWidth = 8
	}
	b := &Buffer{
		rows:       rows,
		cols:       cols,
		cells:      make([][]Cell, rows),
		wrapped:    make([]bool, rows),
		dirty:      make([]bool, rows),
		tabWidth:   tabWidth,
		scrollback: storage,
	}

	for i := range b.cells {
		b.cells[i] = newRow(cols, NewCell())
	}
	b.initTabStops()

	return b
}

// newRow allocates a row of cols copies of the fill cell.
func newRow(cols int, fill Cell) []Cell {
	row := make([]Cell, cols)
	for i := range row {
		row[i] = fill
	}
	return row
}

func (b *Buffer) initTabStops() {
	b.tabStop = make([]bool, b.cols)
	for i := 0; i < b.cols; i += b.tabWidth {
		b.tabStop[i] = true
	}
}

// Rows returns the buffer height in character rows.
func (b *Buffer) Rows() int {
	return b.rows
}

// Cols returns the buffer width in character columns.
func (b *Buffer) Cols() int {
	return b.cols
}

// Cell returns a pointer to the cell at (row, col).
// Returns nil if coordinates are out of bounds.
func (b *Buffer) Cell(row, col int) *Cell {
	if row < 0 || row >= b.rows || col < 0 || col >= b.cols {
		return nil
	}
	return &b.cells[row][col]
}

// Row returns the cell slice for one row, or nil when out of bounds.
func (b *Buffer) Row(row int) []Cell {
	if row < 0 || row >= b.rows {
		return nil
	}
	return b.cells[row]
}

// --- Dirty tracking ---

// MarkRowDirty flags a row as changed since the last renderer ack.
func (b *Buffer) MarkRowDirty(row int) {
	if row < 0 || row >= b.rows {
		return
	}
	b.dirty[row] = true
	b.hasDirty = true
}

// MarkAllDirty flags every row as changed.
func (b *Buffer) MarkAllDirty() {
	for i := range b.dirty {
		b.dirty[i] = true
	}
	b.hasDirty = true
}

// HasDirty returns true if any row changed since the last AckDirty call.
func (b *Buffer) HasDirty() bool {
	return b.hasDirty
}

// DirtyRows returns the indices of all changed rows, in order.
func (b *Buffer) DirtyRows() []int {
	var rows []int
	for i, d := range b.dirty {
		if d {
			rows = append(rows, i)
		}
	}
	return rows
}

// AckDirty clears the dirty flags. Only the renderer calls this; flags
// accumulate across skipped render cycles otherwise.
func (b *Buffer) AckDirty() {
	for i := range b.dirty {
		b.dirty[i] = false
	}
	b.hasDirty = false
}

// --- Erase ---

// ClearRow resets all cells in the row to blanks carrying the template's
// colors and marks the row dirty.
func (b *Buffer) ClearRow(row int, blank Cell) {
	b.ClearRowRange(row, 0, b.cols, blank)
}

// ClearRowRange resets cells in the row from startCol (inclusive) to endCol
// (exclusive). A wide pair straddling either boundary is blanked whole, so
// the invariant never breaks mid-row.
func (b *Buffer) ClearRowRange(row, startCol, endCol int, blank Cell) {
	if row < 0 || row >= b.rows {
		return
	}
	if startCol < 0 {
		startCol = 0
	}
	if endCol > b.cols {
		endCol = b.cols
	}
	if startCol >= endCol {
		return
	}

	// Blank both halves of any wide pair crossing the span edges.
	b.clearWideAt(row, startCol, blank)
	b.clearWideAt(row, endCol-1, blank)

	for col := startCol; col < endCol; col++ {
		b.cells[row][col] = blank
	}
	b.wrapped[row] = false
	b.MarkRowDirty(row)
}

// ClearAll resets every cell in the buffer to blanks with the template's
// colors.
func (b *Buffer) ClearAll(blank Cell) {
	for row := 0; row < b.rows; row++ {
		b.ClearRow(row, blank)
	}
}

// clearWideAt blanks both halves of any wide pair overlapping column col.
func (b *Buffer) clearWideAt(row, col int, blank Cell) {
	if row < 0 || row >= b.rows || col < 0 || col >= b.cols {
		return
	}
	c := &b.cells[row][col]
	if c.IsWide() {
		b.cells[row][col] = blank
		if col+1 < b.cols && b.cells[row][col+1].IsWideSpacer() {
			b.cells[row][col+1] = blank
		}
		b.MarkRowDirty(row)
	} else if c.IsWideSpacer() {
		b.cells[row][col] = blank
		if col > 0 && b.cells[row][col-1].IsWide() {
			b.cells[row][col-1] = blank
		}
		b.MarkRowDirty(row)
	}
}

// fixWideRow restores the wide/spacer pairing invariant across a whole row,
// blanking any orphaned half. Used after shifts that can split a pair at the
// shift boundary.
func (b *Buffer) fixWideRow(row int, blank Cell) {
	if row < 0 || row >= b.rows {
		return
	}
	for col := 0; col < b.cols; col++ {
		c := &b.cells[row][col]
		if c.IsWide() {
			if col+1 >= b.cols || !b.cells[row][col+1].IsWideSpacer() {
				*c = blank
			} else {
				col++
			}
		} else if c.IsWideSpacer() {
			// Reachable only when the preceding cell was not wide.
			*c = blank
		}
	}
}

// --- Scrolling ---

// ScrollUp shifts lines up by n positions within [top, bottom). When archive
// is set, departing rows are pushed to the scrollback provider in order
// before the shift. Vacated bottom rows clear to the blank template.
func (b *Buffer) ScrollUp(top, bottom, n int, blank Cell, archive bool) {
	if n <= 0 || top >= bottom {
		return
	}
	if top < 0 {
		top = 0
	}
	if bottom > b.rows {
		bottom = b.rows
	}
	if n > bottom-top {
		n = bottom - top
	}

	if archive && b.scrollback != nil {
		for i := top; i < top+n; i++ {
			b.scrollback.Push(ScrollbackLine{Cells: b.cells[i], Wrapped: b.wrapped[i]})
		}
	}

	// Move rows up by reference; the archived slices are now owned by the
	// scrollback store.
	for row := top; row < bottom-n; row++ {
		b.cells[row] = b.cells[row+n]
		b.wrapped[row] = b.wrapped[row+n]
		b.MarkRowDirty(row)
	}

	for row := bottom - n; row < bottom; row++ {
		b.cells[row] = newRow(b.cols, blank)
		b.wrapped[row] = false
		b.MarkRowDirty(row)
	}
}

// ScrollDown shifts lines down by n positions within [top, bottom).
// Vacated top rows clear to the blank template.
func (b *Buffer) ScrollDown(top, bottom, n int, blank Cell) {
	if n <= 0 || top >= bottom {
		return
	}
	if top < 0 {
		top = 0
	}
	if bottom > b.rows {
		bottom = b.rows
	}
	if n > bottom-top {
		n = bottom - top
	}

	for row := bottom - 1; row >= top+n; row-- {
		b.cells[row] = b.cells[row-n]
		b.wrapped[row] = b.wrapped[row-n]
		b.MarkRowDirty(row)
	}

	for row := top; row < top+n; row++ {
		b.cells[row] = newRow(b.cols, blank)
		b.wrapped[row] = false
		b.MarkRowDirty(row)
	}
}

// InsertLines inserts n blank lines at row, shifting existing lines down
// within [row, bottom).
func (b *Buffer) InsertLines(row, n, bottom int, blank Cell) {
	if row < 0 || row >= bottom || n <= 0 {
		return
	}
	b.ScrollDown(row, bottom, n, blank)
}

// DeleteLines removes n lines at row, shifting remaining lines up within
// [row, bottom). Deleted rows are discarded, never archived.
func (b *Buffer) DeleteLines(row, n, bottom int, blank Cell) {
	if row < 0 || row >= bottom || n <= 0 {
		return
	}
	b.ScrollUp(row, bottom, n, blank, false)
}

// --- Character shifts ---

// InsertBlanks inserts n blank cells at (row, col), shifting the remainder
// of the row right. Cells pushed past the right edge are lost.
func (b *Buffer) InsertBlanks(row, col, n int, blank Cell) {
	if row < 0 || row >= b.rows || col < 0 || col >= b.cols || n <= 0 {
		return
	}

	for c := b.cols - 1; c >= col+n; c-- {
		b.cells[row][c] = b.cells[row][c-n]
	}
	for c := col; c < col+n && c < b.cols; c++ {
		b.cells[row][c] = blank
	}

	b.fixWideRow(row, blank)
	b.MarkRowDirty(row)
}

// DeleteChars removes n characters at (row, col), shifting the remainder of
// the row left and filling the tail with blanks.
func (b *Buffer) DeleteChars(row, col, n int, blank Cell) {
	if row < 0 || row >= b.rows || col < 0 || col >= b.cols || n <= 0 {
		return
	}
	if n > b.cols-col {
		n = b.cols - col
	}

	for c := col; c < b.cols-n; c++ {
		b.cells[row][c] = b.cells[row][c+n]
	}
	for c := b.cols - n; c < b.cols; c++ {
		b.cells[row][c] = blank
	}

	b.fixWideRow(row, blank)
	b.MarkRowDirty(row)
}

// --- Resize ---

// Resize reallocates every row to the new column count, preserving
// left-to-right content. New columns fill with the blank template; shrinking
// truncates with no reflow. Tab stops re-initialize to the configured
// interval and every row is marked dirty.
func (b *Buffer) Resize(rows, cols int, blank Cell) {
	if rows <= 0 || cols <= 0 {
		return
	}

	newCells := make([][]Cell, rows)
	for i := range newCells {
		if i < b.rows {
			row := make([]Cell, cols)
			n := copy(row, b.cells[i])
			for j := n; j < cols; j++ {
				row[j] = blank
			}
			newCells[i] = row
		} else {
			newCells[i] = newRow(cols, blank)
		}
	}

	newWrapped := make([]bool, rows)
	copy(newWrapped, b.wrapped)

	b.cells = newCells
	b.wrapped = newWrapped
	b.dirty = make([]bool, rows)
	b.rows = rows
	b.cols = cols
	b.initTabStops()

	// Truncation can cut a wide pair at the new right edge.
	for row := 0; row < b.rows; row++ {
		b.fixWideRow(row, blank)
	}
	b.MarkAllDirty()
}

// --- Tab stops ---

// SetTabStop enables a tab stop at the specified column.
func (b *Buffer) SetTabStop(col int) {
	if col >= 0 && col < b.cols {
		b.tabStop[col] = true
	}
}

// ClearTabStop disables the tab stop at the specified column.
func (b *Buffer) ClearTabStop(col int) {
	if col >= 0 && col < b.cols {
		b.tabStop[col] = false
	}
}

// ClearAllTabStops disables all tab stops.
func (b *Buffer) ClearAllTabStops() {
	for i := range b.tabStop {
		b.tabStop[i] = false
	}
}

// NextTabStop returns the column of the next enabled tab stop after col, or
// the last column if none remains.
func (b *Buffer) NextTabStop(col int) int {
	for c := col + 1; c < b.cols; c++ {
		if b.tabStop[c] {
			return c
		}
	}
	return b.cols - 1
}

// PrevTabStop returns the column of the previous enabled tab stop before
// col, or 0 if none remains.
func (b *Buffer) PrevTabStop(col int) int {
	for c := col - 1; c >= 0; c-- {
		if b.tabStop[c] {
			return c
		}
	}
	return 0
}

// FillWithE fills all cells with 'E' (DECALN alignment test pattern).
func (b *Buffer) FillWithE() {
	for row := range b.cells {
		for col := range b.cells[row] {
			b.cells[row][col].Reset()
			b.cells[row][col].Char = 'E'
		}
		b.wrapped[row] = false
		b.MarkRowDirty(row)
	}
}

// --- Scrollback access ---

// ScrollbackLen returns the number of lines stored in scrollback.
func (b *Buffer) ScrollbackLen() int {
	if b.scrollback == nil {
		return 0
	}
	return b.scrollback.Len()
}

// ScrollbackAt returns a line from scrollback, where 0 is the oldest.
func (b *Buffer) ScrollbackAt(index int) ScrollbackLine {
	if b.scrollback == nil {
		return ScrollbackLine{}
	}
	return b.scrollback.At(index)
}

// ClearScrollback removes all stored scrollback lines.
func (b *Buffer) ClearScrollback() {
	if b.scrollback != nil {
		b.scrollback.Clear()
	}
}

// Scrollback returns the buffer's scrollback storage.
func (b *Buffer) Scrollback() ScrollbackProvider {
	return b.scrollback
}

// --- Wrapped line tracking ---

// IsWrapped returns true if the line was wrapped due to column overflow,
// false if it ended with an explicit newline.
func (b *Buffer) IsWrapped(row int) bool {
	if row < 0 || row >= b.rows {
		return false
	}
	return b.wrapped[row]
}

// SetWrapped records whether the line wrapped or ended with an explicit
// newline.
func (b *Buffer) SetWrapped(row int, wrapped bool) {
	if row < 0 || row >= b.rows {
		return
	}
	b.wrapped[row] = wrapped
}

// LineContent returns the text content of a line, trimming trailing spaces.
// Wide character spacers are skipped.
func (b *Buffer) LineContent(row int) string {
	if row < 0 || row >= b.rows {
		return ""
	}

	lastNonSpace := -1
	for col := b.cols - 1; col >= 0; col-- {
		cell := &b.cells[row][col]
		if cell.Char != ' ' && cell.Char != 0 && !cell.IsWideSpacer() {
			lastNonSpace = col
			break
		}
	}
	if lastNonSpace < 0 {
		return ""
	}

	runes := make([]rune, 0, lastNonSpace+1)
	for col := 0; col <= lastNonSpace; col++ {
		cell := &b.cells[row][col]
		if cell.IsWideSpacer() {
			continue
		}
		if cell.Char == 0 {
			runes = append(runes, ' ')
		} else {
			runes = append(runes, cell.Char)
		}
	}
	return string(runes)
}

// Position identifies a cell location in the terminal grid (0-based).
type Position struct {
	Row int
	Col int
}

// Before returns true if this position comes before other in reading order
// (top-to-bottom, left-to-right).
func (p Position) Before(other Position) bool {
	if p.Row < other.Row {
		return true
	}
	if p.Row == other.Row && p.Col < other.Col {
		return true
	}
	return false
}

// Equal returns true if both row and column match.
func (p Position) Equal(other Position) bool {
	return p.Row == other.Row && p.Col == other.Col
}
