package vtgrid

import "strings"

// SnapMode controls how a new selection expands around its anchor, the way
// double- and triple-clicks select words and lines.
type SnapMode int

const (
	SnapNone SnapMode = iota
	SnapWord
	SnapLine
)

// SelectionShape selects between the normal reading-order selection and a
// rectangular block.
type SelectionShape int

const (
	SelectionLinear SelectionShape = iota
	SelectionRect
)

type selPhase int

const (
	selIdle    selPhase = iota
	selPending          // anchored but still inside the dead zone
	selActive
)

// selPoint addresses a cell in buffer-absolute coordinates: row 0 is the
// oldest scrollback line, live rows follow history. Absolute coordinates
// stay stable while output scrolls into history; only ring eviction shifts
// them.
type selPoint struct {
	Abs int
	Col int
}

func (p selPoint) before(o selPoint) bool {
	return p.Abs < o.Abs || (p.Abs == o.Abs && p.Col < o.Col)
}

type selectionState struct {
	phase selPhase
	snap  SnapMode
	shape SelectionShape

	anchor selPoint
	// The snapped extent of the anchor; extension grows from whichever
	// side the pointer is on.
	pivotStart, pivotEnd selPoint

	start, end selPoint // normalized, start <= end
}

// --- Coordinate mapping ---

// absBase is the absolute row of viewport row 0.
func (t *Terminal) absBase() int {
	if t.altActive {
		return 0
	}
	return t.ScrollbackLen() - t.scrollOffset
}

// liveAbs converts a live grid row to its absolute row.
func (t *Terminal) liveAbs(row int) int {
	if t.altActive {
		return row
	}
	return t.ScrollbackLen() + row
}

// absRowCount is the total number of addressable rows, history included.
func (t *Terminal) absRowCount() int {
	if t.altActive {
		return t.rows
	}
	return t.ScrollbackLen() + t.rows
}

// absRowCells returns the cells of an absolute row, or nil out of range.
func (t *Terminal) absRowCells(abs int) []Cell {
	if t.altActive {
		return t.alternate.Row(abs)
	}
	sb := t.ScrollbackLen()
	if abs < 0 {
		return nil
	}
	if abs < sb {
		return t.primary.ScrollbackAt(abs).Cells
	}
	return t.primary.Row(abs - sb)
}

// absRowWrapped reports whether an absolute row continues onto the next.
func (t *Terminal) absRowWrapped(abs int) bool {
	if t.altActive {
		return t.alternate.IsWrapped(abs)
	}
	sb := t.ScrollbackLen()
	if abs < 0 {
		return false
	}
	if abs < sb {
		return t.primary.ScrollbackAt(abs).Wrapped
	}
	return t.primary.IsWrapped(abs - sb)
}

func (t *Terminal) clampPoint(p selPoint) selPoint {
	p.Abs = min(max(p.Abs, 0), t.absRowCount()-1)
	p.Col = min(max(p.Col, 0), t.cols-1)
	return p
}

// --- Public API ---

// BeginSelection anchors a selection at a viewport cell. With SnapNone the
// selection stays invisible until the pointer leaves the anchor cell; word
// and line snapping select the snapped extent immediately.
func (t *Terminal) BeginSelection(row, col int, shape SelectionShape, snap SnapMode) {
	p := t.clampPoint(selPoint{Abs: t.absBase() + row, Col: col})

	t.markSelectionDirty()
	t.sel = selectionState{
		snap:   snap,
		shape:  shape,
		anchor: p,
	}

	switch snap {
	case SnapNone:
		t.sel.phase = selPending
		t.sel.pivotStart, t.sel.pivotEnd = p, p
		t.sel.start, t.sel.end = p, p
	case SnapWord:
		t.sel.phase = selActive
		t.sel.pivotStart, t.sel.pivotEnd = t.snapWord(p)
		t.sel.start, t.sel.end = t.sel.pivotStart, t.sel.pivotEnd
	case SnapLine:
		t.sel.phase = selActive
		t.sel.pivotStart, t.sel.pivotEnd = t.snapLine(p)
		t.sel.start, t.sel.end = t.sel.pivotStart, t.sel.pivotEnd
	}
	if t.sel.phase == selActive {
		t.markSelectionDirty()
	}
}

// ExtendSelection grows the selection to a viewport cell. The snapped anchor
// extent always stays selected; the moving end snaps the same way the anchor
// did.
func (t *Terminal) ExtendSelection(row, col int) {
	if t.sel.phase == selIdle {
		return
	}
	p := t.clampPoint(selPoint{Abs: t.absBase() + row, Col: col})

	if t.sel.phase == selPending {
		if p == t.sel.anchor {
			return // still inside the dead zone
		}
		t.sel.phase = selActive
	}

	t.markSelectionDirty()

	if p.before(t.sel.pivotStart) {
		start := p
		switch t.sel.snap {
		case SnapWord:
			start, _ = t.snapWord(p)
		case SnapLine:
			start, _ = t.snapLine(p)
		}
		t.sel.start, t.sel.end = start, t.sel.pivotEnd
	} else {
		end := p
		switch t.sel.snap {
		case SnapWord:
			_, end = t.snapWord(p)
		case SnapLine:
			_, end = t.snapLine(p)
		}
		t.sel.start, t.sel.end = t.sel.pivotStart, end
	}

	t.markSelectionDirty()
}

// ClearSelection discards any selection.
func (t *Terminal) ClearSelection() {
	t.clearSelection()
}

// HasSelection reports whether a visible selection exists.
func (t *Terminal) HasSelection() bool {
	return t.sel.phase == selActive
}

// IsSelected reports whether the viewport cell at (row, col) is inside the
// selection.
func (t *Terminal) IsSelected(row, col int) bool {
	if t.sel.phase != selActive {
		return false
	}
	p := selPoint{Abs: t.absBase() + row, Col: col}

	if t.sel.shape == SelectionRect {
		lo, hi := minmax(t.sel.start.Col, t.sel.end.Col)
		return p.Abs >= t.sel.start.Abs && p.Abs <= t.sel.end.Abs &&
			p.Col >= lo && p.Col <= hi
	}
	return !p.before(t.sel.start) && !t.sel.end.before(p)
}

// SelectedText extracts the selection as text. Linear selections join
// wrapped rows without a line break and trim trailing blanks at explicit
// line ends; rectangular selections emit one trimmed line per row.
func (t *Terminal) SelectedText() string {
	if t.sel.phase != selActive {
		return ""
	}

	var sb strings.Builder
	if t.sel.shape == SelectionRect {
		lo, hi := minmax(t.sel.start.Col, t.sel.end.Col)
		for abs := t.sel.start.Abs; abs <= t.sel.end.Abs; abs++ {
			if abs > t.sel.start.Abs {
				sb.WriteByte('\n')
			}
			sb.WriteString(trimTrailing(t.segmentText(abs, lo, hi)))
		}
		return sb.String()
	}

	for abs := t.sel.start.Abs; abs <= t.sel.end.Abs; abs++ {
		startCol, endCol := 0, t.cols-1
		if abs == t.sel.start.Abs {
			startCol = t.sel.start.Col
		}
		if abs == t.sel.end.Abs {
			endCol = t.sel.end.Col
		}
		text := t.segmentText(abs, startCol, endCol)
		if t.absRowWrapped(abs) && abs < t.sel.end.Abs {
			// A wrapped row flows into the next with no break and no
			// trimming.
			sb.WriteString(text)
			continue
		}
		sb.WriteString(trimTrailing(text))
		if abs < t.sel.end.Abs {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// segmentText renders columns [startCol, endCol] of an absolute row,
// skipping wide spacers.
func (t *Terminal) segmentText(abs, startCol, endCol int) string {
	cells := t.absRowCells(abs)
	if cells == nil {
		return ""
	}
	runes := make([]rune, 0, endCol-startCol+1)
	for col := startCol; col <= endCol && col < len(cells); col++ {
		c := &cells[col]
		if c.IsWideSpacer() {
			continue
		}
		if c.Char == 0 {
			runes = append(runes, ' ')
		} else {
			runes = append(runes, c.Char)
		}
	}
	return string(runes)
}

func trimTrailing(s string) string {
	return strings.TrimRight(s, " ")
}

func minmax(a, b int) (int, int) {
	if a > b {
		return b, a
	}
	return a, b
}

// --- Snapping ---

// isWordCell reports whether a cell belongs to a word for snapping purposes.
func (t *Terminal) isWordCell(cells []Cell, col int) bool {
	if col < 0 || col >= len(cells) {
		return false
	}
	c := &cells[col]
	if c.IsWideSpacer() {
		return true
	}
	if c.Char == 0 || c.Char == ' ' {
		return false
	}
	return !strings.ContainsRune(t.wordDelimiters, c.Char)
}

// snapWord expands a point to the word under it, following wrapped line
// boundaries in both directions. A delimiter under the anchor selects just
// that cell.
func (t *Terminal) snapWord(p selPoint) (selPoint, selPoint) {
	cells := t.absRowCells(p.Abs)
	if cells == nil || !t.isWordCell(cells, p.Col) {
		return p, p
	}

	start := p
	for {
		if start.Col > 0 {
			if !t.isWordCell(t.absRowCells(start.Abs), start.Col-1) {
				break
			}
			start.Col--
			continue
		}
		// At column 0: continue onto the previous row only across a wrap.
		if start.Abs == 0 || !t.absRowWrapped(start.Abs-1) {
			break
		}
		prev := t.absRowCells(start.Abs - 1)
		if !t.isWordCell(prev, len(prev)-1) {
			break
		}
		start.Abs--
		start.Col = len(prev) - 1
	}

	end := p
	for {
		row := t.absRowCells(end.Abs)
		if end.Col < len(row)-1 {
			if !t.isWordCell(row, end.Col+1) {
				break
			}
			end.Col++
			continue
		}
		if !t.absRowWrapped(end.Abs) || end.Abs+1 >= t.absRowCount() {
			break
		}
		next := t.absRowCells(end.Abs + 1)
		if !t.isWordCell(next, 0) {
			break
		}
		end.Abs++
		end.Col = 0
	}

	return start, end
}

// snapLine expands a point to its whole logical line, spanning wrapped
// continuations in both directions.
func (t *Terminal) snapLine(p selPoint) (selPoint, selPoint) {
	start := selPoint{Abs: p.Abs, Col: 0}
	for start.Abs > 0 && t.absRowWrapped(start.Abs-1) {
		start.Abs--
	}

	end := selPoint{Abs: p.Abs, Col: t.cols - 1}
	for t.absRowWrapped(end.Abs) && end.Abs+1 < t.absRowCount() {
		end.Abs++
	}
	end.Col = max(len(t.absRowCells(end.Abs))-1, 0)

	return start, end
}

// --- Engine hooks ---

// clearSelection drops the selection and repaints its rows.
func (t *Terminal) clearSelection() {
	if t.sel.phase == selActive {
		t.markSelectionDirty()
	}
	t.sel = selectionState{}
}

// markSelectionDirty flags the live rows the selection covers so the
// renderer repaints the highlight. History rows repaint with viewport
// scrolls.
func (t *Terminal) markSelectionDirty() {
	if t.sel.phase != selActive {
		return
	}
	base := 0
	if !t.altActive {
		base = t.ScrollbackLen()
	}
	for abs := t.sel.start.Abs; abs <= t.sel.end.Abs; abs++ {
		if live := abs - base; live >= 0 && live < t.rows {
			t.active.MarkRowDirty(live)
		}
	}
}

// damageSelectionRow cancels the selection when new output lands on a live
// row it covers. A stale highlight over rewritten content is worse than a
// dropped one.
func (t *Terminal) damageSelectionRow(row int) {
	if t.sel.phase != selActive {
		return
	}
	abs := t.liveAbs(row)
	if abs >= t.sel.start.Abs && abs <= t.sel.end.Abs {
		t.clearSelection()
	}
}

// damageSelectionRows cancels the selection when it overlaps the live rows
// [first, last].
func (t *Terminal) damageSelectionRows(first, last int) {
	if t.sel.phase != selActive {
		return
	}
	if t.liveAbs(last) >= t.sel.start.Abs && t.liveAbs(first) <= t.sel.end.Abs {
		t.clearSelection()
	}
}

// shiftSelectionAbs moves the selection by delta absolute rows, canceling it
// once it slides off the top of retained history. Used when ring eviction
// renumbers history.
func (t *Terminal) shiftSelectionAbs(delta int) {
	if t.sel.phase == selIdle {
		return
	}
	t.sel.anchor.Abs += delta
	t.sel.pivotStart.Abs += delta
	t.sel.pivotEnd.Abs += delta
	t.sel.start.Abs += delta
	t.sel.end.Abs += delta
	if t.sel.end.Abs < 0 {
		t.sel = selectionState{}
		return
	}
	if t.sel.start.Abs < 0 {
		t.sel.start.Abs = 0
		t.sel.start.Col = 0
		if t.sel.pivotStart.Abs < 0 {
			t.sel.pivotStart = t.sel.start
		}
	}
}

// shiftSelectionRegion adjusts the selection for a non-archiving scroll of
// live rows [top, bottom) by delta. A selection fully inside the region
// moves with its content; one straddling the region boundary is canceled.
func (t *Terminal) shiftSelectionRegion(top, bottom, delta int) {
	if t.sel.phase == selIdle {
		return
	}
	absTop := t.liveAbs(top)
	absBottom := t.liveAbs(bottom)

	if t.sel.end.Abs < absTop || t.sel.start.Abs >= absBottom {
		return // entirely outside the scrolled region
	}
	if t.sel.start.Abs < absTop || t.sel.end.Abs >= absBottom {
		t.clearSelection()
		return
	}
	if t.sel.start.Abs+delta < absTop || t.sel.end.Abs+delta >= absBottom {
		// Content scrolled out of the region is gone.
		t.clearSelection()
		return
	}
	t.sel.anchor.Abs += delta
	t.sel.pivotStart.Abs += delta
	t.sel.pivotEnd.Abs += delta
	t.sel.start.Abs += delta
	t.sel.end.Abs += delta
}
