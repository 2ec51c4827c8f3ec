package vtgrid

// CursorStyle determines how the cursor is rendered.
type CursorStyle int

const (
	CursorStyleBlinkingBlock CursorStyle = iota
	CursorStyleSteadyBlock
	CursorStyleBlinkingUnderline
	CursorStyleSteadyUnderline
	CursorStyleBlinkingBar
	CursorStyleSteadyBar
)

// Cursor tracks the current position and rendering style (0-based
// coordinates). PendingWrap is the deferred-wrap flag: writing into the last
// column leaves the cursor there and wraps only on the next write.
type Cursor struct {
	Row         int
	Col         int
	Style       CursorStyle
	Visible     bool
	PendingWrap bool
}

// NewCursor creates a cursor at (0, 0) with blinking block style, visible.
func NewCursor() Cursor {
	return Cursor{
		Row:     0,
		Col:     0,
		Style:   CursorStyleBlinkingBlock,
		Visible: true,
	}
}

// SavedCursor stores cursor position, cell attributes, and charset state for
// restoration. One slot exists per screen (primary/alternate); save/restore
// happens explicitly via DECSC/DECRC and implicitly around alternate-screen
// switches.
type SavedCursor struct {
	Row           int
	Col           int
	Template      Cell
	OriginMode    bool
	PendingWrap   bool
	ActiveCharset int
	Charsets      [4]Charset
}

// Charset selects the character encoding variant for one of the G0-G3 slots.
type Charset int

const (
	CharsetASCII Charset = iota
	CharsetSpecialGraphics
)

// decSpecialGraphics maps the DEC special-graphics charset (designated with
// ESC ( 0) onto Unicode. Bytes outside the table pass through unchanged.
var decSpecialGraphics = map[rune]rune{
	'`': '◆',
	'a': '▒',
	'b': '␉',
	'c': '␌',
	'd': '␍',
	'e': '␊',
	'f': '°',
	'g': '±',
	'h': '␤',
	'i': '␋',
	'j': '┘',
	'k': '┐',
	'l': '┌',
	'm': '└',
	'n': '┼',
	'o': '⎺',
	'p': '⎻',
	'q': '─',
	'r': '⎼',
	's': '⎽',
	't': '├',
	'u': '┤',
	'v': '┴',
	'w': '┬',
	'x': '│',
	'y': '≤',
	'z': '≥',
	'{': 'π',
	'|': '≠',
	'}': '£',
	'~': '·',
}

// translateCharset maps a codepoint through the given charset.
func translateCharset(cs Charset, r rune) rune {
	if cs == CharsetSpecialGraphics {
		if m, ok := decSpecialGraphics[r]; ok {
			return m
		}
	}
	return r
}
