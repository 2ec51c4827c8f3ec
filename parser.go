package vtgrid

import (
	"strconv"
	"strings"
)

// parserState identifies which construct the escape-sequence parser is
// collecting. Exactly one state is active at a time; there is no flag
// conjunction to reconstruct.
type parserState int

const (
	stateGround  parserState = iota
	stateEscape              // after a bare ESC
	stateCSI                 // collecting a control sequence (ESC [)
	stateString              // collecting OSC/DCS/PM/APC string data
	stateCharset             // awaiting a charset designation byte
)

const (
	// maxParams caps the number of CSI parameter slots. Further parameters
	// are scanned to keep the state machine synchronized, then discarded.
	maxParams = 32
	// maxParamValue caps a single numeric parameter.
	maxParamValue = 65535
	// maxStringLen caps OSC/DCS payload accumulation. OSC 52 clipboard
	// payloads are the largest legitimate producer.
	maxStringLen = 1 << 20
)

// parser is the escape-sequence state machine. It consumes decoded
// codepoints and drives the terminal engine. Parse state survives arbitrary
// chunk boundaries: a sequence split across Write calls behaves exactly like
// an unsplit one.
type parser struct {
	term  *Terminal
	state parserState

	// CSI accumulation. Each params slot holds the main value followed by
	// any ':' sub-parameters.
	params       [][]int
	curSub       []int
	curVal       int
	hasVal       bool
	sawSeparator bool
	private      byte // 0x3C-0x3F marker, or 0
	intermediate byte // 0x20-0x2F, or 0

	// String accumulation.
	stringKind byte // ']' OSC, 'P' DCS, '^' PM, '_' APC
	stringData []byte
	stringEsc  bool

	// Charset designation.
	charsetIntro byte // '(' ')' '*' '+' or '#'
}

// reset returns the parser to ground and discards any partial sequence.
func (p *parser) reset() {
	p.state = stateGround
	p.resetCSI()
	p.stringData = nil
	p.stringEsc = false
}

func (p *parser) resetCSI() {
	p.params = p.params[:0]
	p.curSub = nil
	p.curVal = 0
	p.hasVal = false
	p.sawSeparator = false
	p.private = 0
	p.intermediate = 0
}

// advance feeds one decoded codepoint through the state machine.
func (p *parser) advance(r rune) {
	// CAN and SUB abort any in-progress sequence unconditionally, with no
	// side effect. In ground state they are ordinary C0 controls.
	if r == 0x18 || r == 0x1A {
		if p.state != stateGround {
			p.reset()
			return
		}
		if r == 0x1A {
			p.term.substitute()
		}
		return
	}

	switch p.state {
	case stateGround:
		p.advanceGround(r)
	case stateEscape:
		p.advanceEscape(r)
	case stateCSI:
		p.advanceCSI(r)
	case stateString:
		p.advanceString(r)
	case stateCharset:
		p.advanceCharset(r)
	}
}

func (p *parser) advanceGround(r rune) {
	switch {
	case r == 0x1B:
		p.state = stateEscape
	case r < 0x20:
		p.executeC0(r)
	case r == 0x7F:
		// DEL is ignored.
	case r >= 0x80 && r <= 0x9F:
		p.executeC1(r)
	default:
		p.term.input(r)
	}
}

// executeC0 dispatches a C0 control in ground state.
func (p *parser) executeC0(r rune) {
	switch r {
	case 0x05: // ENQ
		p.term.answerback()
	case 0x07: // BEL
		p.term.bell()
	case 0x08: // BS
		p.term.backspace()
	case 0x09: // HT
		p.term.tab(1)
	case 0x0A, 0x0B, 0x0C: // LF, VT, FF
		p.term.linefeed()
	case 0x0D: // CR
		p.term.carriageReturn()
	case 0x0E: // SO: invoke G1
		p.term.setActiveCharset(1)
	case 0x0F: // SI: invoke G0
		p.term.setActiveCharset(0)
	default:
		// NUL and the rest are ignored.
	}
}

// executeC1 dispatches the 8-bit C1 controls that arrive as decoded
// codepoints U+0080..U+009F.
func (p *parser) executeC1(r rune) {
	switch r {
	case 0x84: // IND
		p.term.index()
	case 0x85: // NEL
		p.term.nextLine()
	case 0x88: // HTS
		p.term.tabSet()
	case 0x8D: // RI
		p.term.reverseIndex()
	case 0x90: // DCS
		p.startString('P')
	case 0x9B: // CSI
		p.state = stateCSI
		p.resetCSI()
	case 0x9C: // ST with no string open
	case 0x9D: // OSC
		p.startString(']')
	case 0x9E: // PM
		p.startString('^')
	case 0x9F: // APC
		p.startString('_')
	default:
		p.term.logf("ignoring C1 control 0x%02x", r)
	}
}

func (p *parser) advanceEscape(r rune) {
	switch r {
	case '[':
		p.state = stateCSI
		p.resetCSI()
	case ']', 'P', '^', '_':
		p.startString(byte(r))
	case '(', ')', '*', '+', '#':
		p.charsetIntro = byte(r)
		p.state = stateCharset
	case 'D': // IND
		p.term.index()
		p.state = stateGround
	case 'E': // NEL
		p.term.nextLine()
		p.state = stateGround
	case 'H': // HTS
		p.term.tabSet()
		p.state = stateGround
	case 'M': // RI
		p.term.reverseIndex()
		p.state = stateGround
	case 'Z': // DECID
		p.term.reportDeviceAttributes()
		p.state = stateGround
	case 'c': // RIS
		p.term.fullReset()
		p.state = stateGround
	case '7': // DECSC
		p.term.saveCursor()
		p.state = stateGround
	case '8': // DECRC
		p.term.restoreCursor()
		p.state = stateGround
	case '=': // DECKPAM
		p.term.setKeypadApplication(true)
		p.state = stateGround
	case '>': // DECKPNM
		p.term.setKeypadApplication(false)
		p.state = stateGround
	case '\\': // stray ST
		p.state = stateGround
	case 0x1B:
		// ESC restarts the escape.
	default:
		p.term.logf("ignoring unknown escape final %q", r)
		p.state = stateGround
	}
}

func (p *parser) startString(kind byte) {
	p.state = stateString
	p.stringKind = kind
	p.stringData = p.stringData[:0]
	p.stringEsc = false
}

func (p *parser) advanceCharset(r rune) {
	p.state = stateGround

	if p.charsetIntro == '#' {
		// DEC screen tests: only DECALN matters.
		if r == '8' {
			p.term.decaln()
		} else {
			p.term.logf("ignoring DEC test sequence ESC # %q", r)
		}
		return
	}

	var slot int
	switch p.charsetIntro {
	case '(':
		slot = 0
	case ')':
		slot = 1
	case '*':
		slot = 2
	case '+':
		slot = 3
	}

	switch r {
	case '0':
		p.term.configureCharset(slot, CharsetSpecialGraphics)
	case 'B':
		p.term.configureCharset(slot, CharsetASCII)
	default:
		// Unsupported national charsets fall back to ASCII.
		p.term.configureCharset(slot, CharsetASCII)
	}
}

func (p *parser) advanceCSI(r rune) {
	switch {
	case r >= '0' && r <= '9':
		p.curVal = p.curVal*10 + int(r-'0')
		if p.curVal > maxParamValue {
			p.curVal = maxParamValue
		}
		p.hasVal = true
	case r == ';':
		p.finishParam(false)
		p.sawSeparator = true
	case r == ':':
		p.finishSub()
		p.sawSeparator = true
	case r >= 0x3C && r <= 0x3F: // < = > ?
		p.private = byte(r)
	case r >= 0x20 && r <= 0x2F:
		p.intermediate = byte(r)
	case r >= 0x40 && r <= 0x7E:
		p.finishParam(true)
		p.dispatchCSI(r)
		p.state = stateGround
	case r == 0x1B:
		p.state = stateEscape
	case r < 0x20:
		// C0 controls execute from within a control sequence.
		p.executeC0(r)
	default:
		// Malformed byte aborts the sequence.
		p.term.logf("aborting control sequence on byte 0x%02x", r)
		p.state = stateGround
	}
}

// finishSub closes the current value as a sub-parameter of the open slot.
func (p *parser) finishSub() {
	p.curSub = append(p.curSub, p.curVal)
	p.curVal = 0
	p.hasVal = false
}

// finishParam closes the current slot. Missing values default to 0. Slots
// beyond the cap are dropped after being scanned.
func (p *parser) finishParam(final bool) {
	if final && !p.hasVal && !p.sawSeparator && len(p.curSub) == 0 && len(p.params) == 0 {
		return // sequence carried no parameters at all
	}
	// The slot is the main value followed by its sub-parameters in order.
	slot := append(p.curSub, p.curVal)
	if len(p.params) < maxParams {
		p.params = append(p.params, slot)
	}
	p.curSub = nil
	p.curVal = 0
	p.hasVal = false
}

// arg returns the main value of parameter slot i, or def when absent/zero.
func (p *parser) arg(i, def int) int {
	if i < len(p.params) && len(p.params[i]) > 0 && p.params[i][0] != 0 {
		return p.params[i][0]
	}
	return def
}

// argAllowZero returns the main value of slot i with no zero-defaulting.
func (p *parser) argAllowZero(i, def int) int {
	if i < len(p.params) && len(p.params[i]) > 0 {
		return p.params[i][0]
	}
	return def
}

func (p *parser) dispatchCSI(final rune) {
	t := p.term

	// Sequences selected by intermediate byte.
	switch {
	case p.intermediate == '!' && final == 'p':
		t.softReset()
		return
	case p.intermediate == ' ' && final == 'q':
		t.setCursorStyle(p.argAllowZero(0, 0))
		return
	case p.intermediate == '$' && final == 'p':
		t.reportMode(p.argAllowZero(0, 0), p.private == '?')
		return
	case p.intermediate != 0:
		t.logf("ignoring CSI with intermediate %q final %q", p.intermediate, final)
		return
	}

	if p.private == '>' {
		if final == 'c' {
			t.reportSecondaryDeviceAttributes()
		} else {
			t.logf("ignoring CSI > final %q", final)
		}
		return
	}

	if p.private == '?' {
		switch final {
		case 'h':
			for i := range p.params {
				t.setPrivateMode(p.argAllowZero(i, 0), true)
			}
		case 'l':
			for i := range p.params {
				t.setPrivateMode(p.argAllowZero(i, 0), false)
			}
		case 'J':
			// DECSED: treat like plain ED.
			t.clearScreen(p.argAllowZero(0, 0))
		case 'K':
			t.clearLine(p.argAllowZero(0, 0))
		default:
			t.logf("ignoring private CSI final %q", final)
		}
		return
	}

	switch final {
	case '@': // ICH
		t.insertBlanks(p.arg(0, 1))
	case 'A': // CUU
		t.moveUp(p.arg(0, 1))
	case 'B', 'e': // CUD, VPR
		t.moveDown(p.arg(0, 1))
	case 'C', 'a': // CUF, HPR
		t.moveForward(p.arg(0, 1))
	case 'D': // CUB
		t.moveBackward(p.arg(0, 1))
	case 'E': // CNL
		t.moveDownCr(p.arg(0, 1))
	case 'F': // CPL
		t.moveUpCr(p.arg(0, 1))
	case 'G', '`': // CHA, HPA
		t.moveToCol(p.arg(0, 1) - 1)
	case 'H', 'f': // CUP, HVP
		t.moveTo(p.arg(0, 1)-1, p.arg(1, 1)-1)
	case 'I': // CHT
		t.tab(p.arg(0, 1))
	case 'J': // ED
		t.clearScreen(p.argAllowZero(0, 0))
	case 'K': // EL
		t.clearLine(p.argAllowZero(0, 0))
	case 'L': // IL
		t.insertLines(p.arg(0, 1))
	case 'M': // DL
		t.deleteLines(p.arg(0, 1))
	case 'P': // DCH
		t.deleteChars(p.arg(0, 1))
	case 'S': // SU
		t.scrollUp(p.arg(0, 1))
	case 'T': // SD
		t.scrollDown(p.arg(0, 1))
	case 'X': // ECH
		t.eraseChars(p.arg(0, 1))
	case 'Z': // CBT
		t.backTab(p.arg(0, 1))
	case 'b': // REP
		t.repeatLast(p.arg(0, 1))
	case 'c': // DA
		t.reportDeviceAttributes()
	case 'd': // VPA
		t.moveToRow(p.arg(0, 1) - 1)
	case 'g': // TBC
		t.clearTabs(p.argAllowZero(0, 0))
	case 'h': // SM
		for i := range p.params {
			t.setAnsiMode(p.argAllowZero(i, 0), true)
		}
	case 'l': // RM
		for i := range p.params {
			t.setAnsiMode(p.argAllowZero(i, 0), false)
		}
	case 'm': // SGR
		t.setGraphicsRendition(p.params)
	case 'n': // DSR
		t.reportDeviceStatus(p.argAllowZero(0, 0))
	case 'r': // DECSTBM
		t.setScrollingRegion(p.arg(0, 1), p.argAllowZero(1, 0))
	case 's': // SCOSC
		t.saveCursor()
	case 't': // XTWINOPS
		t.windowOp(p.params)
	case 'u': // SCORC
		t.restoreCursor()
	default:
		t.logf("ignoring unknown CSI final %q", final)
	}
}

func (p *parser) advanceString(r rune) {
	if p.stringEsc {
		p.stringEsc = false
		if r == '\\' { // ESC \ = ST
			p.dispatchString("\x1b\\")
			p.state = stateGround
			return
		}
		// Bare ESC aborts the string; the ESC itself starts a new
		// sequence.
		p.state = stateEscape
		p.stringData = p.stringData[:0]
		p.advanceEscape(r)
		return
	}

	switch r {
	case 0x07: // BEL terminator
		p.dispatchString("\x07")
		p.state = stateGround
	case 0x9C: // C1 ST
		p.dispatchString("\x1b\\")
		p.state = stateGround
	case 0x1B:
		p.stringEsc = true
	default:
		if len(p.stringData) < maxStringLen {
			p.stringData = append(p.stringData, string(r)...)
		}
	}
}

// dispatchString routes a terminated string sequence. The terminator is
// remembered so query replies echo the form the client used.
func (p *parser) dispatchString(terminator string) {
	data := string(p.stringData)
	p.stringData = p.stringData[:0]

	switch p.stringKind {
	case ']':
		p.dispatchOSC(data, terminator)
	case 'P', '^', '_':
		// DCS, PM, and APC payloads are consumed and dropped.
		p.term.logf("discarding %c string of %d bytes", p.stringKind, len(data))
	}
}

func (p *parser) dispatchOSC(data, terminator string) {
	t := p.term

	parts := strings.Split(data, ";")
	code, err := strconv.Atoi(parts[0])
	if err != nil {
		t.logf("ignoring OSC with non-numeric selector %q", parts[0])
		return
	}
	args := parts[1:]

	switch code {
	case 0, 1, 2: // icon name and/or window title
		t.setTitle(strings.Join(args, ";"))

	case 4: // set/query palette color: pairs of index;spec
		for i := 0; i+1 < len(args); i += 2 {
			index, err := strconv.Atoi(args[i])
			if err != nil {
				continue
			}
			t.handleColorOp(oscColorPalette, index, args[i+1], terminator)
		}

	case 8: // hyperlink
		if len(args) >= 2 {
			t.setHyperlink(args[0], strings.Join(args[1:], ";"))
		} else {
			t.setHyperlink("", "")
		}

	case 10, 11, 12: // default foreground / background / cursor color
		if len(args) >= 1 {
			t.handleColorOp(oscColorKind(code), 0, args[0], terminator)
		}

	case 52: // clipboard
		if len(args) >= 2 {
			t.handleClipboard(args[0], args[1], terminator)
		}

	case 104: // reset palette color(s)
		if len(args) == 0 || (len(args) == 1 && args[0] == "") {
			t.resetAllColors()
			return
		}
		for _, a := range args {
			if index, err := strconv.Atoi(a); err == nil {
				t.resetColor(index)
			}
		}

	case 110:
		t.handleColorOp(oscColorForeground, 0, "", "")
	case 111:
		t.handleColorOp(oscColorBackground, 0, "", "")
	case 112:
		t.handleColorOp(oscColorCursor, 0, "", "")

	default:
		t.logf("ignoring unknown OSC code %d", code)
	}
}

// oscColorKind selects which color an OSC color operation addresses.
type oscColorKind int

const (
	oscColorPalette    oscColorKind = 4
	oscColorForeground oscColorKind = 10
	oscColorBackground oscColorKind = 11
	oscColorCursor     oscColorKind = 12
)
