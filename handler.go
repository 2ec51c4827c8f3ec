package vtgrid

import (
	"encoding/base64"
	"fmt"
	"image/color"
	"strings"
)

// This file holds the terminal engine: the operations the escape-sequence
// parser dispatches into. All coordinates are 0-based internally; the parser
// converts from the 1-based wire encoding before calling in.

func (t *Terminal) logf(format string, args ...any) {
	if t.logger != nil {
		t.logger.Debug(fmt.Sprintf(format, args...))
	}
}

// blank returns the erased-cell template: a space carrying the current
// foreground and background but no other attributes.
func (t *Terminal) blank() Cell {
	return blankCell(t.template)
}

// screenIndex selects the saved-cursor slot for the active screen.
func (t *Terminal) screenIndex() int {
	if t.altActive {
		return 1
	}
	return 0
}

// --- Character input ---

// input places one printable codepoint at the cursor.
func (t *Terminal) input(r rune) {
	r = translateCharset(t.charsets[t.activeCharset], r)
	width := runeWidth(r)
	if width == 0 {
		// Zero-width codepoints (combining marks, ZWJ) are dropped; the
		// grid stores one spacing character per cell.
		return
	}
	t.writeRune(r, width)
}

// substitute renders the SUB control as a replacement character.
func (t *Terminal) substitute() {
	t.writeRune('�', 1)
}

// repeatLast repeats the most recently written printable character n times.
func (t *Terminal) repeatLast(n int) {
	if t.lastChar == 0 {
		return
	}
	for i := 0; i < n; i++ {
		t.writeRune(t.lastChar, t.lastWidth)
	}
}

func (t *Terminal) writeRune(r rune, width int) {
	buf := t.active

	// Deferred wrap: a write into the last column leaves the cursor parked
	// there; the wrap happens now, on the next write.
	if t.cursor.PendingWrap {
		t.cursor.PendingWrap = false
		if t.modes.LineWrap {
			buf.SetWrapped(t.cursor.Row, true)
			t.cursor.Col = 0
			t.linefeedRaw()
		}
	}

	// A wide character that would straddle the right edge blanks the last
	// column and starts on the next line instead.
	if width == 2 && t.cursor.Col == t.cols-1 {
		buf.ClearRowRange(t.cursor.Row, t.cursor.Col, t.cols, t.blank())
		if t.modes.LineWrap {
			buf.SetWrapped(t.cursor.Row, true)
			t.cursor.Col = 0
			t.linefeedRaw()
		} else if t.cols >= 2 {
			t.cursor.Col = t.cols - 2
		}
	}

	if t.modes.Insert {
		buf.InsertBlanks(t.cursor.Row, t.cursor.Col, width, t.blank())
	}

	row, col := t.cursor.Row, t.cursor.Col

	// Overwriting either half of an existing wide pair blanks the whole
	// pair first.
	buf.clearWideAt(row, col, t.blank())
	if width == 2 {
		buf.clearWideAt(row, col+1, t.blank())
	}

	cell := buf.Cell(row, col)
	if cell == nil {
		return
	}
	*cell = t.template
	cell.Char = r
	cell.Hyperlink = t.hyperlink
	if width == 2 {
		cell.SetFlag(CellFlagWideChar)
		if sp := buf.Cell(row, col+1); sp != nil {
			*sp = t.template
			sp.Char = 0
			sp.Hyperlink = t.hyperlink
			sp.SetFlag(CellFlagWideCharSpacer)
		}
	}
	buf.MarkRowDirty(row)
	t.damageSelectionRow(row)

	t.lastChar = r
	t.lastWidth = width

	t.cursor.Col += width
	if t.cursor.Col >= t.cols {
		t.cursor.Col = t.cols - 1
		t.cursor.PendingWrap = true
	}
}

// --- Simple controls ---

func (t *Terminal) bell() {
	if t.bellProvider != nil {
		t.bellProvider.Bell()
	}
}

func (t *Terminal) answerback() {
	if t.answerbackMsg != "" {
		t.writeResponse(t.answerbackMsg)
	}
}

func (t *Terminal) backspace() {
	t.cursor.PendingWrap = false
	if t.cursor.Col > 0 {
		t.cursor.Col--
	}
}

func (t *Terminal) carriageReturn() {
	t.cursor.PendingWrap = false
	t.cursor.Col = 0
}

func (t *Terminal) linefeed() {
	t.linefeedRaw()
	if t.modes.LineFeed {
		t.cursor.Col = 0
	}
}

// linefeedRaw moves the cursor down one line, scrolling the region when the
// cursor sits on its last line.
func (t *Terminal) linefeedRaw() {
	t.cursor.PendingWrap = false
	if t.cursor.Row == t.bottom-1 {
		t.scrollUpRegion(1)
	} else if t.cursor.Row < t.rows-1 {
		t.cursor.Row++
	}
}

func (t *Terminal) index() {
	t.linefeedRaw()
}

func (t *Terminal) nextLine() {
	t.linefeedRaw()
	t.cursor.Col = 0
}

func (t *Terminal) reverseIndex() {
	t.cursor.PendingWrap = false
	if t.cursor.Row == t.top {
		t.scrollDownRegion(1)
	} else if t.cursor.Row > 0 {
		t.cursor.Row--
	}
}

// --- Tabs ---

func (t *Terminal) tab(n int) {
	t.cursor.PendingWrap = false
	for i := 0; i < n; i++ {
		t.cursor.Col = t.active.NextTabStop(t.cursor.Col)
	}
}

func (t *Terminal) backTab(n int) {
	t.cursor.PendingWrap = false
	for i := 0; i < n; i++ {
		t.cursor.Col = t.active.PrevTabStop(t.cursor.Col)
	}
}

func (t *Terminal) tabSet() {
	t.active.SetTabStop(t.cursor.Col)
}

func (t *Terminal) clearTabs(mode int) {
	switch mode {
	case 0:
		t.active.ClearTabStop(t.cursor.Col)
	case 3:
		t.active.ClearAllTabStops()
	default:
		t.logf("ignoring TBC mode %d", mode)
	}
}

// --- Cursor motion ---

func (t *Terminal) moveUp(n int) {
	t.cursor.PendingWrap = false
	limit := 0
	if t.cursor.Row >= t.top {
		limit = t.top
	}
	t.cursor.Row = max(t.cursor.Row-n, limit)
}

func (t *Terminal) moveDown(n int) {
	t.cursor.PendingWrap = false
	limit := t.rows - 1
	if t.cursor.Row < t.bottom {
		limit = t.bottom - 1
	}
	t.cursor.Row = min(t.cursor.Row+n, limit)
}

func (t *Terminal) moveForward(n int) {
	t.cursor.PendingWrap = false
	t.cursor.Col = min(t.cursor.Col+n, t.cols-1)
}

func (t *Terminal) moveBackward(n int) {
	t.cursor.PendingWrap = false
	t.cursor.Col = max(t.cursor.Col-n, 0)
}

func (t *Terminal) moveDownCr(n int) {
	t.moveDown(n)
	t.cursor.Col = 0
}

func (t *Terminal) moveUpCr(n int) {
	t.moveUp(n)
	t.cursor.Col = 0
}

func (t *Terminal) moveToCol(col int) {
	t.cursor.PendingWrap = false
	t.cursor.Col = min(max(col, 0), t.cols-1)
}

// moveTo positions the cursor absolutely. In origin mode the row is relative
// to the scroll region top and clamped inside the region.
func (t *Terminal) moveTo(row, col int) {
	t.cursor.PendingWrap = false
	base, limit := 0, t.rows
	if t.modes.Origin {
		base, limit = t.top, t.bottom
	}
	t.cursor.Row = min(max(row+base, base), limit-1)
	t.cursor.Col = min(max(col, 0), t.cols-1)
}

func (t *Terminal) moveToRow(row int) {
	t.cursor.PendingWrap = false
	base, limit := 0, t.rows
	if t.modes.Origin {
		base, limit = t.top, t.bottom
	}
	t.cursor.Row = min(max(row+base, base), limit-1)
}

// --- Scrolling ---

// scrollUpRegion scrolls the region up by n. Rows leaving the top of the
// primary screen with a full-height region top are archived to scrollback.
func (t *Terminal) scrollUpRegion(n int) {
	buf := t.active
	archive := !t.altActive && t.top == 0
	// The buffer clamps internally too; clamping here keeps the eviction
	// arithmetic honest for oversized counts.
	n = min(n, t.bottom-t.top)

	if archive {
		before := buf.ScrollbackLen()
		buf.ScrollUp(t.top, t.bottom, n, t.blank(), true)
		after := buf.ScrollbackLen()

		// Archived content keeps its absolute coordinates; only ring
		// eviction shifts them.
		if evicted := before + n - after; evicted > 0 {
			t.shiftSelectionAbs(-evicted)
		}
		// A scrolled-back viewport stays pinned to its content.
		if t.scrollOffset > 0 {
			t.scrollOffset = min(t.scrollOffset+after-before, after)
			buf.MarkAllDirty()
		}
	} else {
		buf.ScrollUp(t.top, t.bottom, n, t.blank(), false)
		t.shiftSelectionRegion(t.top, t.bottom, -n)
	}
}

func (t *Terminal) scrollDownRegion(n int) {
	t.active.ScrollDown(t.top, t.bottom, n, t.blank())
	t.shiftSelectionRegion(t.top, t.bottom, n)
}

// scrollUp and scrollDown implement CSI S / CSI T: content moves, the cursor
// stays.
func (t *Terminal) scrollUp(n int) {
	t.scrollUpRegion(n)
}

func (t *Terminal) scrollDown(n int) {
	t.scrollDownRegion(n)
}

// --- Erase ---

func (t *Terminal) clearScreen(mode int) {
	buf := t.active
	blank := t.blank()

	switch mode {
	case 0: // cursor to end of screen
		buf.ClearRowRange(t.cursor.Row, t.cursor.Col, t.cols, blank)
		for row := t.cursor.Row + 1; row < t.rows; row++ {
			buf.ClearRow(row, blank)
		}
		t.damageSelectionRows(t.cursor.Row, t.rows-1)
	case 1: // start of screen to cursor
		for row := 0; row < t.cursor.Row; row++ {
			buf.ClearRow(row, blank)
		}
		buf.ClearRowRange(t.cursor.Row, 0, t.cursor.Col+1, blank)
		t.damageSelectionRows(0, t.cursor.Row)
	case 2: // entire screen
		buf.ClearAll(blank)
		t.damageSelectionRows(0, t.rows-1)
	case 3: // entire screen plus scrollback
		buf.ClearAll(blank)
		if !t.altActive {
			buf.ClearScrollback()
			t.scrollOffset = 0
		}
		t.clearSelection()
	default:
		t.logf("ignoring ED mode %d", mode)
	}
}

func (t *Terminal) clearLine(mode int) {
	buf := t.active
	blank := t.blank()

	switch mode {
	case 0:
		buf.ClearRowRange(t.cursor.Row, t.cursor.Col, t.cols, blank)
	case 1:
		buf.ClearRowRange(t.cursor.Row, 0, t.cursor.Col+1, blank)
	case 2:
		buf.ClearRow(t.cursor.Row, blank)
	default:
		t.logf("ignoring EL mode %d", mode)
		return
	}
	t.damageSelectionRow(t.cursor.Row)
}

func (t *Terminal) eraseChars(n int) {
	t.active.ClearRowRange(t.cursor.Row, t.cursor.Col, t.cursor.Col+n, t.blank())
	t.damageSelectionRow(t.cursor.Row)
}

// --- Insert / delete ---

func (t *Terminal) insertBlanks(n int) {
	t.cursor.PendingWrap = false
	t.active.InsertBlanks(t.cursor.Row, t.cursor.Col, n, t.blank())
	t.damageSelectionRow(t.cursor.Row)
}

func (t *Terminal) deleteChars(n int) {
	t.cursor.PendingWrap = false
	t.active.DeleteChars(t.cursor.Row, t.cursor.Col, n, t.blank())
	t.damageSelectionRow(t.cursor.Row)
}

// insertLines and deleteLines act only when the cursor is inside the scroll
// region, and home the cursor to column 0.
func (t *Terminal) insertLines(n int) {
	if t.cursor.Row < t.top || t.cursor.Row >= t.bottom {
		return
	}
	t.active.InsertLines(t.cursor.Row, n, t.bottom, t.blank())
	t.shiftSelectionRegion(t.cursor.Row, t.bottom, n)
	t.cursor.Col = 0
	t.cursor.PendingWrap = false
}

func (t *Terminal) deleteLines(n int) {
	if t.cursor.Row < t.top || t.cursor.Row >= t.bottom {
		return
	}
	t.active.DeleteLines(t.cursor.Row, n, t.bottom, t.blank())
	t.shiftSelectionRegion(t.cursor.Row, t.bottom, -n)
	t.cursor.Col = 0
	t.cursor.PendingWrap = false
}

// --- Graphics rendition ---

// setGraphicsRendition applies SGR parameters to the template cell that
// subsequent writes copy their attributes from. Each slot is the main value
// followed by its ':' sub-parameters.
func (t *Terminal) setGraphicsRendition(params [][]int) {
	if len(params) == 0 {
		params = [][]int{{0}}
	}

	for i := 0; i < len(params); i++ {
		p := params[i]
		switch p[0] {
		case 0:
			t.template = NewCell()
		case 1:
			t.template.SetFlag(CellFlagBold)
		case 2:
			t.template.SetFlag(CellFlagDim)
		case 3:
			t.template.SetFlag(CellFlagItalic)
		case 4:
			t.template.ClearFlag(cellFlagAnyUnderline)
			style := 1
			if len(p) > 1 {
				style = p[1]
			}
			switch style {
			case 0:
				// 4:0 turns underlining off
			case 1:
				t.template.SetFlag(CellFlagUnderline)
			case 2:
				t.template.SetFlag(CellFlagDoubleUnderline)
			case 3:
				t.template.SetFlag(CellFlagCurlyUnderline)
			case 4:
				t.template.SetFlag(CellFlagDottedUnderline)
			case 5:
				t.template.SetFlag(CellFlagDashedUnderline)
			default:
				t.template.SetFlag(CellFlagUnderline)
			}
		case 5, 6:
			t.template.SetFlag(CellFlagBlink)
		case 7:
			t.template.SetFlag(CellFlagReverse)
		case 8:
			t.template.SetFlag(CellFlagHidden)
		case 9:
			t.template.SetFlag(CellFlagStrike)
		case 21:
			t.template.ClearFlag(cellFlagAnyUnderline)
			t.template.SetFlag(CellFlagDoubleUnderline)
		case 22:
			t.template.ClearFlag(CellFlagBold | CellFlagDim)
		case 23:
			t.template.ClearFlag(CellFlagItalic)
		case 24:
			t.template.ClearFlag(cellFlagAnyUnderline)
		case 25:
			t.template.ClearFlag(CellFlagBlink)
		case 27:
			t.template.ClearFlag(CellFlagReverse)
		case 28:
			t.template.ClearFlag(CellFlagHidden)
		case 29:
			t.template.ClearFlag(CellFlagStrike)
		case 30, 31, 32, 33, 34, 35, 36, 37:
			t.template.Fg = &IndexedColor{Index: p[0] - 30}
		case 38:
			c, skip := extendedColor(params, i)
			if c != nil {
				t.template.Fg = c
			}
			i += skip
		case 39:
			t.template.Fg = defaultForegroundRef
		case 40, 41, 42, 43, 44, 45, 46, 47:
			t.template.Bg = &IndexedColor{Index: p[0] - 40}
		case 48:
			c, skip := extendedColor(params, i)
			if c != nil {
				t.template.Bg = c
			}
			i += skip
		case 49:
			t.template.Bg = defaultBackgroundRef
		case 58:
			c, skip := extendedColor(params, i)
			if c != nil {
				t.template.UnderlineColor = c
			}
			i += skip
		case 59:
			t.template.UnderlineColor = nil
		case 90, 91, 92, 93, 94, 95, 96, 97:
			t.template.Fg = &IndexedColor{Index: p[0] - 90 + 8}
		case 100, 101, 102, 103, 104, 105, 106, 107:
			t.template.Bg = &IndexedColor{Index: p[0] - 100 + 8}
		default:
			t.logf("ignoring SGR code %d", p[0])
		}
	}
}

// extendedColor decodes the 38/48/58 extended color forms. Both the colon
// form (all values as sub-parameters of one slot, optionally carrying a
// colorspace id) and the legacy semicolon form (values in following slots)
// are accepted. It returns the decoded color, or nil when malformed, and the
// number of extra semicolon slots consumed.
func extendedColor(params [][]int, i int) (color.Color, int) {
	p := params[i]

	if len(p) > 1 {
		switch p[1] {
		case 5:
			if len(p) > 2 {
				return &IndexedColor{Index: p[2]}, 0
			}
		case 2:
			vals := p[2:]
			if len(vals) > 3 {
				// 38:2:<colorspace>:r:g:b
				vals = vals[len(vals)-3:]
			}
			if len(vals) == 3 {
				return color.RGBA{
					R: clamp8(vals[0]),
					G: clamp8(vals[1]),
					B: clamp8(vals[2]),
					A: 255,
				}, 0
			}
		}
		return nil, 0
	}

	if i+1 < len(params) {
		switch params[i+1][0] {
		case 5:
			if i+2 < len(params) {
				return &IndexedColor{Index: params[i+2][0]}, 2
			}
			return nil, 1
		case 2:
			if i+4 < len(params) {
				return color.RGBA{
					R: clamp8(params[i+2][0]),
					G: clamp8(params[i+3][0]),
					B: clamp8(params[i+4][0]),
					A: 255,
				}, 4
			}
			return nil, len(params) - i - 1
		}
	}
	return nil, 0
}

func clamp8(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// --- Modes ---

func (t *Terminal) setAnsiMode(mode int, set bool) {
	switch mode {
	case 4:
		t.modes.Insert = set
	case 20:
		t.modes.LineFeed = set
	default:
		t.logf("ignoring ANSI mode %d", mode)
	}
}

func (t *Terminal) setPrivateMode(mode int, set bool) {
	switch mode {
	case 1:
		t.modes.AppCursorKeys = set
	case 5:
		if t.modes.ReverseVideo != set {
			t.modes.ReverseVideo = set
			t.active.MarkAllDirty()
		}
	case 6:
		t.modes.Origin = set
		t.moveTo(0, 0)
	case 7:
		t.modes.LineWrap = set
	case 9:
		t.setMouseMode(MouseModeX10, set)
	case 12:
		t.setCursorBlink(set)
	case 25:
		t.cursor.Visible = set
		t.active.MarkRowDirty(t.cursor.Row)
	case 47:
		t.switchScreen(set, false, false)
	case 1000:
		t.setMouseMode(MouseModeNormal, set)
	case 1002:
		t.setMouseMode(MouseModeButtonEvent, set)
	case 1003:
		t.setMouseMode(MouseModeAnyEvent, set)
	case 1004:
		t.modes.FocusReporting = set
	case 1005:
		t.setMouseEncoding(MouseEncodingUTF8, set)
	case 1006:
		t.setMouseEncoding(MouseEncodingSGR, set)
	case 1015:
		t.setMouseEncoding(MouseEncodingURXVT, set)
	case 1047:
		t.switchScreen(set, true, false)
	case 1048:
		if set {
			t.saveCursor()
		} else {
			t.restoreCursor()
		}
	case 1049:
		t.switchScreen(set, true, true)
	case 2004:
		t.modes.BracketedPaste = set
	case 2026:
		t.modes.SynchronizedUpdate = set
	default:
		t.logf("ignoring private mode %d", mode)
	}
}

func (t *Terminal) setMouseMode(mode MouseMode, set bool) {
	if set {
		t.modes.MouseMode = mode
	} else if t.modes.MouseMode == mode {
		t.modes.MouseMode = MouseModeNone
	}
}

func (t *Terminal) setMouseEncoding(enc MouseEncoding, set bool) {
	if set {
		t.modes.MouseEncoding = enc
	} else if t.modes.MouseEncoding == enc {
		t.modes.MouseEncoding = MouseEncodingDefault
	}
}

func (t *Terminal) setCursorBlink(blink bool) {
	switch t.cursor.Style {
	case CursorStyleBlinkingBlock, CursorStyleSteadyBlock:
		t.cursor.Style = CursorStyleSteadyBlock
		if blink {
			t.cursor.Style = CursorStyleBlinkingBlock
		}
	case CursorStyleBlinkingUnderline, CursorStyleSteadyUnderline:
		t.cursor.Style = CursorStyleSteadyUnderline
		if blink {
			t.cursor.Style = CursorStyleBlinkingUnderline
		}
	case CursorStyleBlinkingBar, CursorStyleSteadyBar:
		t.cursor.Style = CursorStyleSteadyBar
		if blink {
			t.cursor.Style = CursorStyleBlinkingBar
		}
	}
}

// switchScreen moves between the primary and alternate screens. clearAlt
// clears the alternate grid on entry and again on exit, so stale content
// never leaks into a later plain mode-47 entry; saveRestore wraps the switch
// in a cursor save/restore (the 1049 behavior).
func (t *Terminal) switchScreen(toAlt, clearAlt, saveRestore bool) {
	if toAlt == t.altActive {
		return
	}

	if toAlt {
		if saveRestore {
			t.saveCursor()
		}
		t.altActive = true
		t.active = t.alternate
		if clearAlt {
			t.alternate.ClearAll(t.blank())
		}
		if saveRestore {
			t.top, t.bottom = 0, t.rows
			t.moveTo(0, 0)
		}
	} else {
		t.altActive = false
		t.active = t.primary
		if clearAlt {
			t.alternate.ClearAll(t.blank())
		}
		if saveRestore {
			t.restoreCursor()
		}
	}

	t.scrollOffset = 0
	t.clearSelection()
	t.active.MarkAllDirty()
}

// --- Scroll region ---

// setScrollingRegion sets the DECSTBM margins from 1-based inclusive
// arguments; bottom 0 means the last line. Invalid regions are ignored. The
// cursor homes, honoring origin mode.
func (t *Terminal) setScrollingRegion(top, bottom int) {
	if bottom == 0 || bottom > t.rows {
		bottom = t.rows
	}
	top-- // to 0-based; bottom stays exclusive
	if top < 0 {
		top = 0
	}
	if bottom-top < 2 {
		// A single-line or inverted region is rejected.
		t.logf("ignoring DECSTBM %d;%d", top+1, bottom)
		return
	}
	t.top = top
	t.bottom = bottom
	t.moveTo(0, 0)
}

// --- Cursor save/restore ---

func (t *Terminal) saveCursor() {
	i := t.screenIndex()
	t.saved[i] = SavedCursor{
		Row:           t.cursor.Row,
		Col:           t.cursor.Col,
		Template:      t.template,
		OriginMode:    t.modes.Origin,
		PendingWrap:   t.cursor.PendingWrap,
		ActiveCharset: t.activeCharset,
		Charsets:      t.charsets,
	}
	t.savedValid[i] = true
}

func (t *Terminal) restoreCursor() {
	i := t.screenIndex()
	if !t.savedValid[i] {
		// DECRC without a prior DECSC homes the cursor with defaults.
		t.cursor.Row = 0
		t.cursor.Col = 0
		t.cursor.PendingWrap = false
		t.template = NewCell()
		t.modes.Origin = false
		return
	}
	s := t.saved[i]
	t.cursor.Row = min(s.Row, t.rows-1)
	t.cursor.Col = min(s.Col, t.cols-1)
	t.cursor.PendingWrap = s.PendingWrap
	t.template = s.Template
	t.modes.Origin = s.OriginMode
	t.activeCharset = s.ActiveCharset
	t.charsets = s.Charsets
}

// --- Charsets ---

func (t *Terminal) configureCharset(slot int, cs Charset) {
	if slot >= 0 && slot < len(t.charsets) {
		t.charsets[slot] = cs
	}
}

func (t *Terminal) setActiveCharset(slot int) {
	if slot >= 0 && slot < len(t.charsets) {
		t.activeCharset = slot
	}
}

// --- Resets ---

func (t *Terminal) decaln() {
	t.top, t.bottom = 0, t.rows
	t.cursor.Row = 0
	t.cursor.Col = 0
	t.cursor.PendingWrap = false
	t.active.FillWithE()
	t.clearSelection()
}

// softReset implements DECSTR: rendition, modes, margins, and charsets reset
// while the screen contents survive.
func (t *Terminal) softReset() {
	t.template = NewCell()
	t.cursor.Visible = true
	t.cursor.PendingWrap = false
	t.modes.Origin = false
	t.modes.Insert = false
	t.modes.AppCursorKeys = false
	t.modes.AppKeypad = false
	t.top, t.bottom = 0, t.rows
	t.charsets = [4]Charset{}
	t.activeCharset = 0
	t.savedValid[t.screenIndex()] = false
	t.hyperlink = nil
}

// fullReset implements RIS: the terminal returns to its power-on state.
// Scrollback survives; everything else resets.
func (t *Terminal) fullReset() {
	t.softReset()
	t.modes = defaultModes()
	t.cursor = NewCursor()
	t.lastChar = 0
	t.scrollOffset = 0
	t.savedValid = [2]bool{}
	t.titleStack = nil

	t.primary.ClearAll(NewCell())
	t.alternate.ClearAll(NewCell())
	t.primary.initTabStops()
	t.alternate.initTabStops()
	t.altActive = false
	t.active = t.primary
	t.top, t.bottom = 0, t.rows
	t.clearSelection()
	t.active.MarkAllDirty()
}

func (t *Terminal) setKeypadApplication(on bool) {
	t.modes.AppKeypad = on
}

func (t *Terminal) setCursorStyle(style int) {
	switch style {
	case 0, 1:
		t.cursor.Style = CursorStyleBlinkingBlock
	case 2:
		t.cursor.Style = CursorStyleSteadyBlock
	case 3:
		t.cursor.Style = CursorStyleBlinkingUnderline
	case 4:
		t.cursor.Style = CursorStyleSteadyUnderline
	case 5:
		t.cursor.Style = CursorStyleBlinkingBar
	case 6:
		t.cursor.Style = CursorStyleSteadyBar
	default:
		t.logf("ignoring cursor style %d", style)
	}
}

// --- Reports ---

func (t *Terminal) writeResponse(s string) {
	if t.responseWriter != nil {
		_, _ = t.responseWriter.Write([]byte(s))
		return
	}
	t.responses = append(t.responses, s)
}

func (t *Terminal) reportDeviceStatus(code int) {
	switch code {
	case 5: // operating status
		t.writeResponse("\x1b[0n")
	case 6: // cursor position
		row, col := t.cursor.Row, t.cursor.Col
		if t.modes.Origin {
			row -= t.top
		}
		t.writeResponse(fmt.Sprintf("\x1b[%d;%dR", row+1, col+1))
	default:
		t.logf("ignoring DSR code %d", code)
	}
}

func (t *Terminal) reportDeviceAttributes() {
	// VT220 with ANSI color.
	t.writeResponse("\x1b[?62;22c")
}

func (t *Terminal) reportSecondaryDeviceAttributes() {
	t.writeResponse("\x1b[>1;10;0c")
}

// reportMode answers DECRQM for the modes this terminal tracks.
func (t *Terminal) reportMode(mode int, private bool) {
	// DECRPM status: 1 set, 2 reset, 0 not recognized.
	status := 0
	if private {
		switch mode {
		case 1:
			status = modeStatus(t.modes.AppCursorKeys)
		case 5:
			status = modeStatus(t.modes.ReverseVideo)
		case 6:
			status = modeStatus(t.modes.Origin)
		case 7:
			status = modeStatus(t.modes.LineWrap)
		case 25:
			status = modeStatus(t.cursor.Visible)
		case 47, 1047, 1049:
			status = modeStatus(t.altActive)
		case 1004:
			status = modeStatus(t.modes.FocusReporting)
		case 2004:
			status = modeStatus(t.modes.BracketedPaste)
		case 2026:
			status = modeStatus(t.modes.SynchronizedUpdate)
		}
		t.writeResponse(fmt.Sprintf("\x1b[?%d;%d$y", mode, status))
		return
	}

	switch mode {
	case 4:
		status = modeStatus(t.modes.Insert)
	case 20:
		status = modeStatus(t.modes.LineFeed)
	}
	t.writeResponse(fmt.Sprintf("\x1b[%d;%d$y", mode, status))
}

func modeStatus(set bool) int {
	if set {
		return 1
	}
	return 2
}

// windowOp handles the XTWINOPS subset that makes sense without a window:
// the text-area size report and the title stack.
func (t *Terminal) windowOp(params [][]int) {
	if len(params) == 0 {
		return
	}
	switch params[0][0] {
	case 18:
		t.writeResponse(fmt.Sprintf("\x1b[8;%d;%dt", t.rows, t.cols))
	case 22:
		t.titleStack = append(t.titleStack, t.title)
	case 23:
		if n := len(t.titleStack); n > 0 {
			t.applyTitle(t.titleStack[n-1])
			t.titleStack = t.titleStack[:n-1]
		}
	default:
		t.logf("ignoring window op %d", params[0][0])
	}
}

// --- OSC handlers ---

func (t *Terminal) setTitle(title string) {
	t.applyTitle(title)
}

func (t *Terminal) applyTitle(title string) {
	t.title = title
	if t.titleProvider != nil {
		t.titleProvider.SetTitle(title)
	}
}

// setHyperlink starts or ends an OSC 8 hyperlink run. An empty URI ends the
// run. The params field may carry an id ("id=...") to join split links.
func (t *Terminal) setHyperlink(params, uri string) {
	if uri == "" {
		t.hyperlink = nil
		return
	}
	var id string
	for _, kv := range strings.Split(params, ":") {
		if v, ok := strings.CutPrefix(kv, "id="); ok {
			id = v
		}
	}
	t.hyperlink = &Hyperlink{ID: id, URI: uri}
}

// handleColorOp services the OSC color set/query/reset family. An empty spec
// resets; "?" queries, answered with the terminator the client used.
func (t *Terminal) handleColorOp(kind oscColorKind, index int, spec, terminator string) {
	switch kind {
	case oscColorPalette:
		switch spec {
		case "?":
			c := t.palette.Index(index)
			t.writeResponse(fmt.Sprintf("\x1b]4;%d;%s%s", index, formatColorResponse(c), terminator))
		default:
			if c, ok := parseColorSpec(spec); ok {
				t.palette.SetIndex(index, c)
				t.active.MarkAllDirty()
			} else {
				t.logf("ignoring malformed color spec %q", spec)
			}
		}

	case oscColorForeground, oscColorBackground, oscColorCursor:
		get, set := t.dynamicColorAccessors(kind)
		switch spec {
		case "":
			set(t.stockDynamicColor(kind))
			t.active.MarkAllDirty()
		case "?":
			t.writeResponse(fmt.Sprintf("\x1b]%d;%s%s", int(kind), formatColorResponse(get()), terminator))
		default:
			if c, ok := parseColorSpec(spec); ok {
				set(c)
				t.active.MarkAllDirty()
			} else {
				t.logf("ignoring malformed color spec %q", spec)
			}
		}
	}
}

func (t *Terminal) dynamicColorAccessors(kind oscColorKind) (func() color.RGBA, func(color.RGBA)) {
	switch kind {
	case oscColorBackground:
		return t.palette.Background, t.palette.SetBackground
	case oscColorCursor:
		return t.palette.Cursor, t.palette.SetCursor
	default:
		return t.palette.Foreground, t.palette.SetForeground
	}
}

func (t *Terminal) stockDynamicColor(kind oscColorKind) color.RGBA {
	switch kind {
	case oscColorBackground:
		return DefaultBackground
	case oscColorCursor:
		return DefaultCursorColor
	default:
		return DefaultForeground
	}
}

func (t *Terminal) resetColor(index int) {
	t.palette.ResetIndex(index)
	t.active.MarkAllDirty()
}

func (t *Terminal) resetAllColors() {
	t.palette.ResetAll()
	t.active.MarkAllDirty()
}

// handleClipboard services OSC 52. Payloads are base64; "?" queries the
// provider and replies in kind.
func (t *Terminal) handleClipboard(targets, data, terminator string) {
	if t.clipboardProvider == nil {
		return
	}
	if data == "?" {
		content := t.clipboardProvider.GetClipboard(targets)
		encoded := base64.StdEncoding.EncodeToString(content)
		t.writeResponse(fmt.Sprintf("\x1b]52;%s;%s%s", targets, encoded, terminator))
		return
	}
	decoded, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		t.logf("ignoring clipboard write with malformed base64")
		return
	}
	t.clipboardProvider.SetClipboard(targets, decoded)
}
