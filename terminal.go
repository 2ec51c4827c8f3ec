package vtgrid

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// ErrInvalidSize reports a resize to a non-positive dimension.
var ErrInvalidSize = errors.New("invalid terminal size")

const (
	defaultRows       = 24
	defaultCols       = 80
	defaultTabWidth   = 8
	defaultScrollback = 1000

	// defaultWordDelimiters bound word-snapped selections.
	defaultWordDelimiters = " \t()[]{}<>'\"`,;:|"
)

// MouseMode selects which mouse events the application asked to receive.
type MouseMode int

const (
	MouseModeNone MouseMode = iota
	MouseModeX10
	MouseModeNormal
	MouseModeButtonEvent
	MouseModeAnyEvent
)

// MouseEncoding selects the coordinate encoding for mouse reports.
type MouseEncoding int

const (
	MouseEncodingDefault MouseEncoding = iota
	MouseEncodingUTF8
	MouseEncodingSGR
	MouseEncodingURXVT
)

// Modes holds the switchable terminal behaviors. The zero value is not the
// power-on state; use defaultModes.
type Modes struct {
	LineWrap           bool // DECAWM
	Insert             bool // IRM
	Origin             bool // DECOM
	AppCursorKeys      bool // DECCKM
	AppKeypad          bool // DECKPAM
	ReverseVideo       bool // DECSCNM
	LineFeed           bool // LNM
	BracketedPaste     bool
	FocusReporting     bool
	SynchronizedUpdate bool
	MouseMode          MouseMode
	MouseEncoding      MouseEncoding
}

func defaultModes() Modes {
	return Modes{LineWrap: true}
}

// Terminal is a headless terminal emulator: it consumes a byte stream of
// text and escape sequences and maintains the resulting screen state for a
// renderer to read.
//
// Terminal is not safe for concurrent use. Callers that share one across
// goroutines serialize access themselves; a renderer typically alternates
// Write with DirtyRows/AckDirty on a single loop.
type Terminal struct {
	rows int
	cols int

	primary   *Buffer
	alternate *Buffer
	active    *Buffer
	altActive bool

	cursor     Cursor
	saved      [2]SavedCursor
	savedValid [2]bool
	template   Cell
	hyperlink  *Hyperlink

	modes       Modes
	top, bottom int // scroll region, 0-based half-open

	charsets      [4]Charset
	activeCharset int

	lastChar  rune
	lastWidth int

	scrollOffset int

	sel            selectionState
	wordDelimiters string

	title      string
	titleStack []string

	palette *Palette

	decoder utf8Decoder
	parser  parser

	tabWidth        int
	scrollbackCap   int
	scrollbackStore ScrollbackProvider

	responses      []string
	responseWriter io.Writer
	answerbackMsg  string

	bellProvider      BellProvider
	titleProvider     TitleProvider
	clipboardProvider ClipboardProvider

	logger *slog.Logger
}

// Option configures a Terminal at construction.
type Option func(*Terminal)

// WithSize sets the initial grid dimensions. Non-positive values fall back
// to the 24x80 default.
func WithSize(rows, cols int) Option {
	return func(t *Terminal) {
		if rows > 0 && cols > 0 {
			t.rows = rows
			t.cols = cols
		}
	}
}

// WithScrollback sets how many lines of history the primary screen retains.
// Zero disables scrollback.
func WithScrollback(lines int) Option {
	return func(t *Terminal) {
		t.scrollbackCap = lines
	}
}

// WithScrollbackStorage supplies a custom history store in place of the
// default ring, e.g. one that spills to disk.
func WithScrollbackStorage(p ScrollbackProvider) Option {
	return func(t *Terminal) {
		t.scrollbackStore = p
	}
}

// WithTabWidth sets the default tab stop interval.
func WithTabWidth(width int) Option {
	return func(t *Terminal) {
		if width > 0 {
			t.tabWidth = width
		}
	}
}

// WithWordDelimiters sets the characters that bound word-snapped selections.
func WithWordDelimiters(delims string) Option {
	return func(t *Terminal) {
		t.wordDelimiters = delims
	}
}

// WithPalette supplies a palette, letting callers share or pre-seed color
// overrides.
func WithPalette(p *Palette) Option {
	return func(t *Terminal) {
		if p != nil {
			t.palette = p
		}
	}
}

// WithLogger routes diagnostics about ignored or malformed sequences.
func WithLogger(l *slog.Logger) Option {
	return func(t *Terminal) {
		t.logger = l
	}
}

// WithResponseWriter streams terminal query replies (DSR, DA, DECRQM, OSC
// queries) to w as they are produced, instead of queuing them for
// TakeResponses. The writer typically feeds back into the application's
// input.
func WithResponseWriter(w io.Writer) Option {
	return func(t *Terminal) {
		t.responseWriter = w
	}
}

// WithAnswerback sets the message sent in reply to ENQ.
func WithAnswerback(msg string) Option {
	return func(t *Terminal) {
		t.answerbackMsg = msg
	}
}

// WithBell sets the provider notified on BEL.
func WithBell(p BellProvider) Option {
	return func(t *Terminal) {
		t.bellProvider = p
	}
}

// WithTitle sets the provider notified on title changes.
func WithTitle(p TitleProvider) Option {
	return func(t *Terminal) {
		t.titleProvider = p
	}
}

// WithClipboard sets the provider backing OSC 52 clipboard access.
func WithClipboard(p ClipboardProvider) Option {
	return func(t *Terminal) {
		t.clipboardProvider = p
	}
}

// New creates a terminal with the given options applied over the defaults:
// 24x80, 1000 lines of scrollback, tab stops every 8 columns.
func New(opts ...Option) *Terminal {
	t := &Terminal{
		rows:           defaultRows,
		cols:           defaultCols,
		tabWidth:       defaultTabWidth,
		scrollbackCap:  defaultScrollback,
		wordDelimiters: defaultWordDelimiters,
		cursor:         NewCursor(),
		template:       NewCell(),
		modes:          defaultModes(),
	}
	for _, opt := range opts {
		opt(t)
	}

	if t.palette == nil {
		t.palette = NewPalette()
	}

	storage := t.scrollbackStore
	if storage == nil {
		if t.scrollbackCap > 0 {
			storage = NewRingScrollback(t.scrollbackCap)
		} else {
			storage = NoopScrollback{}
		}
	}
	t.primary = NewBufferWithStorage(t.rows, t.cols, t.tabWidth, storage)
	t.alternate = NewBuffer(t.rows, t.cols, t.tabWidth)
	t.active = t.primary
	t.top, t.bottom = 0, t.rows

	t.parser = parser{term: t}
	return t
}

// Write consumes a chunk of the application byte stream. Incomplete UTF-8
// sequences and escape sequences carry over to the next call, so splitting
// the stream at any byte boundary never changes the result. Write always
// consumes the whole chunk.
func (t *Terminal) Write(p []byte) (int, error) {
	for _, b := range p {
		t.decoder.feed(b, t.parser.advance)
	}
	return len(p), nil
}

// Resize changes the grid dimensions. When shrinking would cut the cursor
// off the bottom, the excess rows scroll into history first. Content is
// preserved left-to-right with no reflow; the scroll region resets and tab
// stops re-initialize.
func (t *Terminal) Resize(rows, cols int) error {
	if rows <= 0 || cols <= 0 {
		return fmt.Errorf("resize to %dx%d: %w", rows, cols, ErrInvalidSize)
	}
	if rows == t.rows && cols == t.cols {
		return nil
	}

	if rows < t.rows && t.cursor.Row >= rows {
		shift := t.cursor.Row - rows + 1
		t.active.ScrollUp(0, t.rows, shift, t.blank(), !t.altActive)
		t.cursor.Row -= shift
	}

	blank := t.blank()
	t.primary.Resize(rows, cols, blank)
	t.alternate.Resize(rows, cols, blank)
	t.rows = rows
	t.cols = cols
	t.top, t.bottom = 0, rows

	t.cursor.Row = min(t.cursor.Row, rows-1)
	t.cursor.Col = min(t.cursor.Col, cols-1)
	t.cursor.PendingWrap = false

	t.scrollOffset = min(t.scrollOffset, t.ScrollbackLen())
	t.clearSelection()
	return nil
}

// --- Read API ---

// Rows returns the grid height.
func (t *Terminal) Rows() int { return t.rows }

// Cols returns the grid width.
func (t *Terminal) Cols() int { return t.cols }

// Cursor returns a copy of the cursor state.
func (t *Terminal) Cursor() Cursor { return t.cursor }

// Modes returns a copy of the current mode state.
func (t *Terminal) Modes() Modes { return t.modes }

// IsAltScreen reports whether the alternate screen is active.
func (t *Terminal) IsAltScreen() bool { return t.altActive }

// Title returns the window title set by OSC 0/2.
func (t *Terminal) Title() string { return t.title }

// Palette returns the terminal's color palette for render-time resolution.
func (t *Terminal) Palette() *Palette { return t.palette }

// Cell returns the live-grid cell at (row, col), or nil when out of bounds.
// The pointer is valid until the next Write or Resize.
func (t *Terminal) Cell(row, col int) *Cell {
	return t.active.Cell(row, col)
}

// VisibleRow returns the cells of visible row y, accounting for the scroll
// offset: scrolled-back viewports splice history lines above the live grid.
// History rows may be shorter than the current width; callers pad as needed.
func (t *Terminal) VisibleRow(y int) []Cell {
	if y < 0 || y >= t.rows {
		return nil
	}
	if t.altActive || t.scrollOffset == 0 {
		return t.active.Row(y)
	}
	if y < t.scrollOffset {
		idx := t.ScrollbackLen() - t.scrollOffset + y
		return t.primary.ScrollbackAt(idx).Cells
	}
	return t.primary.Row(y - t.scrollOffset)
}

// --- Dirty tracking ---

// HasDirty reports whether any row changed since the last AckDirty.
func (t *Terminal) HasDirty() bool { return t.active.HasDirty() }

// DirtyRows returns the indices of rows changed since the last AckDirty.
// Flags accumulate across skipped render cycles.
func (t *Terminal) DirtyRows() []int { return t.active.DirtyRows() }

// AckDirty clears the dirty flags after a renderer consumed them.
func (t *Terminal) AckDirty() { t.active.AckDirty() }

// --- Scrollback viewport ---

// ScrollbackLen returns the number of history lines retained.
func (t *Terminal) ScrollbackLen() int { return t.primary.ScrollbackLen() }

// ScrollOffset returns how many lines the viewport is scrolled back, 0 being
// the live bottom.
func (t *Terminal) ScrollOffset() int { return t.scrollOffset }

// ScrollBy moves the viewport n lines into history (negative toward the
// bottom). The alternate screen has no history and ignores this.
func (t *Terminal) ScrollBy(n int) {
	t.setScrollOffset(t.scrollOffset + n)
}

// ScrollToTop jumps the viewport to the oldest history line.
func (t *Terminal) ScrollToTop() {
	t.setScrollOffset(t.ScrollbackLen())
}

// ScrollToBottom returns the viewport to the live grid.
func (t *Terminal) ScrollToBottom() {
	t.setScrollOffset(0)
}

func (t *Terminal) setScrollOffset(offset int) {
	if t.altActive {
		return
	}
	offset = min(max(offset, 0), t.ScrollbackLen())
	if offset != t.scrollOffset {
		t.scrollOffset = offset
		t.active.MarkAllDirty()
	}
}

// --- Responses ---

// TakeResponses returns the queued query replies and clears the queue.
// Unused when a response writer is configured.
func (t *Terminal) TakeResponses() []string {
	r := t.responses
	t.responses = nil
	return r
}

// --- Text extraction ---

// LineContent returns the text of visible row y with trailing blanks
// trimmed, honoring the scroll offset.
func (t *Terminal) LineContent(y int) string {
	if t.altActive || t.scrollOffset == 0 {
		return t.active.LineContent(y)
	}
	return lineText(t.VisibleRow(y))
}

// String renders the visible screen as text, one line per row.
func (t *Terminal) String() string {
	var sb strings.Builder
	for y := 0; y < t.rows; y++ {
		sb.WriteString(t.LineContent(y))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Search returns the positions where needle occurs in the live grid, in
// reading order. Matches are found within single rows; wrapped continuations
// are not joined.
func (t *Terminal) Search(needle string) []Position {
	if needle == "" {
		return nil
	}
	var found []Position
	target := []rune(needle)
	for row := 0; row < t.rows; row++ {
		line := []rune(t.rowText(row))
		for col := 0; col+len(target) <= len(line); col++ {
			if string(line[col:col+len(target)]) == needle {
				found = append(found, Position{Row: row, Col: col})
			}
		}
	}
	return found
}

// rowText renders a live row without trimming, one rune per column with
// wide spacers skipped.
func (t *Terminal) rowText(row int) string {
	cells := t.active.Row(row)
	runes := make([]rune, 0, len(cells))
	for i := range cells {
		c := &cells[i]
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

// lineText extracts trimmed text from a raw cell slice.
func lineText(cells []Cell) string {
	last := -1
	for i := len(cells) - 1; i >= 0; i-- {
		c := &cells[i]
		if c.Char != ' ' && c.Char != 0 && !c.IsWideSpacer() {
			last = i
			break
		}
	}
	if last < 0 {
		return ""
	}
	runes := make([]rune, 0, last+1)
	for i := 0; i <= last; i++ {
		c := &cells[i]
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
