package vtgrid

import (
	"errors"
	"fmt"
	"image/color"
	"testing"
)

func TestPlainText(t *testing.T) {
	term := New(WithSize(5, 20))
	write(t, term, "hello")
	if got := term.LineContent(0); got != "hello" {
		t.Errorf("line = %q, want hello", got)
	}
	if cur := term.Cursor(); cur.Row != 0 || cur.Col != 5 {
		t.Errorf("cursor = (%d,%d), want (0,5)", cur.Row, cur.Col)
	}
}

func TestCRLF(t *testing.T) {
	term := New(WithSize(5, 20))
	write(t, term, "one\r\ntwo")
	if got := term.LineContent(0); got != "one" {
		t.Errorf("line 0 = %q", got)
	}
	if got := term.LineContent(1); got != "two" {
		t.Errorf("line 1 = %q", got)
	}
}

func TestDeferredWrap(t *testing.T) {
	term := New(WithSize(3, 10))
	write(t, term, "0123456789")

	cur := term.Cursor()
	if cur.Row != 0 || cur.Col != 9 || !cur.PendingWrap {
		t.Fatalf("cursor = (%d,%d) pending=%v, want (0,9) pending", cur.Row, cur.Col, cur.PendingWrap)
	}

	write(t, term, "A")
	cur = term.Cursor()
	if cur.Row != 1 || cur.Col != 1 || cur.PendingWrap {
		t.Errorf("cursor = (%d,%d) pending=%v, want (1,1)", cur.Row, cur.Col, cur.PendingWrap)
	}
	if term.Cell(1, 0).Char != 'A' {
		t.Errorf("cell (1,0) = %q, want A", term.Cell(1, 0).Char)
	}
	if !term.active.IsWrapped(0) {
		t.Error("row 0 must be flagged wrapped")
	}
}

func TestCarriageReturnCancelsPendingWrap(t *testing.T) {
	term := New(WithSize(3, 10))
	write(t, term, "0123456789\rZ")

	if term.Cell(0, 0).Char != 'Z' {
		t.Errorf("cell (0,0) = %q, want Z", term.Cell(0, 0).Char)
	}
	if got := term.LineContent(1); got != "" {
		t.Errorf("row 1 = %q, want empty", got)
	}
}

func TestWrapDisabled(t *testing.T) {
	term := New(WithSize(3, 10))
	write(t, term, "\x1b[?7l0123456789XY")

	// Without autowrap the last column keeps being overwritten.
	if term.Cell(0, 9).Char != 'Y' {
		t.Errorf("cell (0,9) = %q, want Y", term.Cell(0, 9).Char)
	}
	if cur := term.Cursor(); cur.Row != 0 {
		t.Errorf("cursor row = %d, want 0", cur.Row)
	}
}

func TestWideCharPair(t *testing.T) {
	term := New(WithSize(3, 10))
	write(t, term, "界x")

	if c := term.Cell(0, 0); c.Char != '界' || !c.IsWide() {
		t.Errorf("cell (0,0) = %q wide=%v", c.Char, c.IsWide())
	}
	if !term.Cell(0, 1).IsWideSpacer() {
		t.Error("cell (0,1) must be a wide spacer")
	}
	if term.Cell(0, 2).Char != 'x' {
		t.Errorf("cell (0,2) = %q, want x", term.Cell(0, 2).Char)
	}
	if cur := term.Cursor(); cur.Col != 3 {
		t.Errorf("cursor col = %d, want 3", cur.Col)
	}
}

func TestOverwriteWideHalfBlanksPair(t *testing.T) {
	term := New(WithSize(3, 10))
	write(t, term, "界")
	write(t, term, "\x1b[1;2Hy")

	if c := term.Cell(0, 0); c.Char != ' ' || c.IsWide() {
		t.Errorf("cell (0,0) = %q wide=%v, want blanked", c.Char, c.IsWide())
	}
	if c := term.Cell(0, 1); c.Char != 'y' || c.IsWideSpacer() {
		t.Errorf("cell (0,1) = %q spacer=%v, want y", c.Char, c.IsWideSpacer())
	}
}

func TestWideCharAtLastColumn(t *testing.T) {
	term := New(WithSize(3, 4))
	write(t, term, "abc界")

	// The wide character cannot straddle the edge: the last column blanks
	// and the pair starts the next row.
	if c := term.Cell(0, 3); c.Char != ' ' {
		t.Errorf("cell (0,3) = %q, want blank", c.Char)
	}
	if c := term.Cell(1, 0); c.Char != '界' || !c.IsWide() {
		t.Errorf("cell (1,0) = %q wide=%v", c.Char, c.IsWide())
	}
	if !term.active.IsWrapped(0) {
		t.Error("row 0 must be flagged wrapped")
	}
}

func TestScrollIntoHistory(t *testing.T) {
	term := New(WithSize(3, 10))
	write(t, term, "a\r\nb\r\nc\r\nd\r\ne")

	if got := term.ScrollbackLen(); got != 2 {
		t.Fatalf("scrollback len = %d, want 2", got)
	}
	if got := lineText(term.primary.ScrollbackAt(0).Cells); got != "a" {
		t.Errorf("history 0 = %q, want a", got)
	}
	if got := term.LineContent(0); got != "c" {
		t.Errorf("live row 0 = %q, want c", got)
	}
}

func TestScrollOffsetViewport(t *testing.T) {
	term := New(WithSize(3, 10))
	write(t, term, "a\r\nb\r\nc\r\nd\r\ne")

	term.ScrollBy(1)
	if got := term.LineContent(0); got != "b" {
		t.Errorf("scrolled row 0 = %q, want b", got)
	}
	if got := term.LineContent(1); got != "c" {
		t.Errorf("scrolled row 1 = %q, want c", got)
	}

	term.ScrollToTop()
	if got := term.LineContent(0); got != "a" {
		t.Errorf("top row 0 = %q, want a", got)
	}

	term.ScrollToBottom()
	if got := term.LineContent(0); got != "c" {
		t.Errorf("bottom row 0 = %q, want c", got)
	}
	if term.ScrollOffset() != 0 {
		t.Errorf("offset = %d, want 0", term.ScrollOffset())
	}
}

func TestScrollbackRingEviction(t *testing.T) {
	term := New(WithSize(2, 10), WithScrollback(2))
	write(t, term, "a\r\nb\r\nc\r\nd\r\ne")

	// Five lines on two rows archive three; the ring keeps the last two.
	if got := term.ScrollbackLen(); got != 2 {
		t.Fatalf("scrollback len = %d, want 2", got)
	}
	if got := lineText(term.primary.ScrollbackAt(0).Cells); got != "b" {
		t.Errorf("oldest = %q, want b", got)
	}
	if got := lineText(term.primary.ScrollbackAt(1).Cells); got != "c" {
		t.Errorf("newest = %q, want c", got)
	}
}

func TestEraseDisplayBelow(t *testing.T) {
	term := New(WithSize(3, 10))
	write(t, term, "aaa\r\nbbb\r\nccc")
	write(t, term, "\x1b[2;2H\x1b[J")

	if got := term.LineContent(0); got != "aaa" {
		t.Errorf("row 0 = %q, want aaa", got)
	}
	if got := term.LineContent(1); got != "b" {
		t.Errorf("row 1 = %q, want b", got)
	}
	if got := term.LineContent(2); got != "" {
		t.Errorf("row 2 = %q, want empty", got)
	}
}

func TestEraseDisplayWithScrollback(t *testing.T) {
	term := New(WithSize(2, 10))
	write(t, term, "a\r\nb\r\nc")
	if term.ScrollbackLen() != 1 {
		t.Fatal("expected one archived line")
	}

	// ED 2 keeps history, ED 3 drops it.
	write(t, term, "\x1b[2J")
	if term.ScrollbackLen() != 1 {
		t.Error("ED 2 must preserve scrollback")
	}
	write(t, term, "\x1b[3J")
	if term.ScrollbackLen() != 0 {
		t.Error("ED 3 must clear scrollback")
	}
}

func TestEraseKeepsRendition(t *testing.T) {
	term := New(WithSize(3, 10))
	write(t, term, "\x1b[41mxx\x1b[1;1H\x1b[K")

	// Erased cells carry the current background, no other attributes.
	c := term.Cell(0, 0)
	bg, ok := c.Bg.(*IndexedColor)
	if !ok || bg.Index != 1 {
		t.Errorf("erased bg = %#v, want indexed 1", c.Bg)
	}
	if c.Flags != 0 {
		t.Errorf("erased flags = %v, want none", c.Flags)
	}
}

func TestInsertMode(t *testing.T) {
	term := New(WithSize(3, 10))
	write(t, term, "abc\x1b[1;1H\x1b[4hX")
	if got := term.LineContent(0); got != "Xabc" {
		t.Errorf("line = %q, want Xabc", got)
	}
}

func TestInsertDeleteChars(t *testing.T) {
	term := New(WithSize(3, 10))
	write(t, term, "abcdef\x1b[1;2H\x1b[2@")
	if got := term.LineContent(0); got != "a  bcdef" {
		t.Errorf("after ICH: %q, want 'a  bcdef'", got)
	}
	write(t, term, "\x1b[2P")
	if got := term.LineContent(0); got != "abcdef" {
		t.Errorf("after DCH: %q, want abcdef", got)
	}
}

func TestInsertDeleteLines(t *testing.T) {
	term := New(WithSize(4, 10))
	write(t, term, "a\r\nb\r\nc\r\nd\x1b[2;1H\x1b[1L")
	if term.LineContent(1) != "" || term.LineContent(2) != "b" {
		t.Errorf("after IL: %q / %q", term.LineContent(1), term.LineContent(2))
	}
	write(t, term, "\x1b[2;1H\x1b[1M")
	if term.LineContent(1) != "b" || term.LineContent(2) != "c" {
		t.Errorf("after DL: %q / %q", term.LineContent(1), term.LineContent(2))
	}
}

func TestScrollRegion(t *testing.T) {
	term := New(WithSize(4, 10))
	write(t, term, "a\r\nb\r\nc\r\nd")
	// Region rows 2-3 (1-based); LF at its bottom scrolls only the region
	// and archives nothing.
	write(t, term, "\x1b[2;3r\x1b[3;1H\n")

	if got := term.LineContent(0); got != "a" {
		t.Errorf("row 0 = %q, want a", got)
	}
	if got := term.LineContent(1); got != "c" {
		t.Errorf("row 1 = %q, want c", got)
	}
	if got := term.LineContent(2); got != "" {
		t.Errorf("row 2 = %q, want empty", got)
	}
	if got := term.LineContent(3); got != "d" {
		t.Errorf("row 3 = %q, want d", got)
	}
	if term.ScrollbackLen() != 0 {
		t.Error("region scroll must not archive")
	}
}

func TestOriginMode(t *testing.T) {
	term := New(WithSize(5, 20))
	write(t, term, "\x1b[2;4r\x1b[?6hX")

	if term.Cell(1, 0).Char != 'X' {
		t.Error("origin-mode home must be the region top")
	}

	write(t, term, "\x1b[6n")
	got := term.TakeResponses()
	if len(got) != 1 || got[0] != "\x1b[1;2R" {
		t.Errorf("CPR = %q, want ESC [1;2R", got)
	}
}

func TestReverseIndexScrollsDown(t *testing.T) {
	term := New(WithSize(3, 10))
	write(t, term, "a\r\nb\r\nc\x1b[1;1H\x1bMX")

	if term.Cell(0, 0).Char != 'X' {
		t.Errorf("cell (0,0) = %q, want X", term.Cell(0, 0).Char)
	}
	if got := term.LineContent(1); got != "a" {
		t.Errorf("row 1 = %q, want a", got)
	}
	if got := term.LineContent(2); got != "b" {
		t.Errorf("row 2 = %q, want b", got)
	}
}

func TestAltScreen(t *testing.T) {
	term := New(WithSize(3, 20))
	write(t, term, "primary")
	write(t, term, "\x1b[?1049h")

	if !term.IsAltScreen() {
		t.Fatal("expected alternate screen")
	}
	if got := term.LineContent(0); got != "" {
		t.Errorf("alt row 0 = %q, want empty", got)
	}

	write(t, term, "alt text")
	write(t, term, "\x1b[?1049l")

	if term.IsAltScreen() {
		t.Fatal("expected primary screen")
	}
	if got := term.LineContent(0); got != "primary" {
		t.Errorf("primary row 0 = %q, want primary", got)
	}
	if cur := term.Cursor(); cur.Row != 0 || cur.Col != 7 {
		t.Errorf("cursor = (%d,%d), want (0,7)", cur.Row, cur.Col)
	}
}

func TestAltScreenNoScrollback(t *testing.T) {
	term := New(WithSize(2, 10))
	write(t, term, "\x1b[?1049ha\r\nb\r\nc\r\nd")
	if term.ScrollbackLen() != 0 {
		t.Error("alternate screen must never archive")
	}
	term.ScrollBy(1)
	if term.ScrollOffset() != 0 {
		t.Error("alternate screen must not scroll back")
	}
}

func TestAltScreenExitBlanksAltGrid(t *testing.T) {
	term := New(WithSize(3, 20))
	write(t, term, "\x1b[?1049hsecret\x1b[?1049l")

	// Mode 47 re-enters without clearing, so anything left behind by the
	// 1049 exit would show through here.
	write(t, term, "\x1b[?47h")
	if got := term.LineContent(0); got != "" {
		t.Errorf("LineContent(0) = %q, want empty", got)
	}
}

func TestSaveRestoreCursor(t *testing.T) {
	term := New(WithSize(5, 20))
	write(t, term, "\x1b[2;3H\x1b[1m\x1b7\x1b[5;5H\x1b[0m\x1b8X")

	c := term.Cell(1, 2)
	if c.Char != 'X' {
		t.Fatalf("cell (1,2) = %q, want X", c.Char)
	}
	if !c.HasFlag(CellFlagBold) {
		t.Error("restored rendition must include bold")
	}
}

func TestRestoreWithoutSaveHomes(t *testing.T) {
	term := New(WithSize(5, 20))
	write(t, term, "\x1b[3;3H\x1b8")
	if cur := term.Cursor(); cur.Row != 0 || cur.Col != 0 {
		t.Errorf("cursor = (%d,%d), want (0,0)", cur.Row, cur.Col)
	}
}

func TestTabStops(t *testing.T) {
	term := New(WithSize(3, 20))
	write(t, term, "\tX")
	if term.Cell(0, 8).Char != 'X' {
		t.Errorf("tab landed at col %d content mismatch", 8)
	}
	write(t, term, "\x1b[Z\x1b[Z")
	if cur := term.Cursor(); cur.Col != 0 {
		t.Errorf("backtab col = %d, want 0", cur.Col)
	}

	// Clear all stops: tab goes to the last column.
	write(t, term, "\x1b[3g\t")
	if cur := term.Cursor(); cur.Col != 19 {
		t.Errorf("tab with no stops col = %d, want 19", cur.Col)
	}
}

func TestRepeatLastCharacter(t *testing.T) {
	term := New(WithSize(3, 20))
	write(t, term, "ab\x1b[3b")
	if got := term.LineContent(0); got != "abbbb" {
		t.Errorf("line = %q, want abbbb", got)
	}
}

func TestDECALN(t *testing.T) {
	term := New(WithSize(2, 4))
	write(t, term, "\x1b#8")
	if got := term.LineContent(0); got != "EEEE" {
		t.Errorf("row 0 = %q, want EEEE", got)
	}
	if got := term.LineContent(1); got != "EEEE" {
		t.Errorf("row 1 = %q, want EEEE", got)
	}
}

func TestSpecialGraphicsCharset(t *testing.T) {
	term := New(WithSize(3, 10))
	write(t, term, "\x1b(0qx\x1b(Bq")
	if term.Cell(0, 0).Char != '─' {
		t.Errorf("cell (0,0) = %q, want ─", term.Cell(0, 0).Char)
	}
	if term.Cell(0, 1).Char != '│' {
		t.Errorf("cell (0,1) = %q, want │", term.Cell(0, 1).Char)
	}
	if term.Cell(0, 2).Char != 'q' {
		t.Errorf("cell (0,2) = %q, want q", term.Cell(0, 2).Char)
	}
}

func TestShiftOutInvokesG1(t *testing.T) {
	term := New(WithSize(3, 10))
	write(t, term, "\x1b)0\x0eq\x0fq")
	if term.Cell(0, 0).Char != '─' {
		t.Errorf("cell (0,0) = %q, want ─", term.Cell(0, 0).Char)
	}
	if term.Cell(0, 1).Char != 'q' {
		t.Errorf("cell (0,1) = %q, want q", term.Cell(0, 1).Char)
	}
}

func TestModes(t *testing.T) {
	term := New(WithSize(5, 20))
	write(t, term, "\x1b[?2004h\x1b[?2026h\x1b[?1002h\x1b[?1006h\x1b[?1004h")

	m := term.Modes()
	if !m.BracketedPaste || !m.SynchronizedUpdate || !m.FocusReporting {
		t.Errorf("modes = %+v", m)
	}
	if m.MouseMode != MouseModeButtonEvent || m.MouseEncoding != MouseEncodingSGR {
		t.Errorf("mouse = %v/%v", m.MouseMode, m.MouseEncoding)
	}

	write(t, term, "\x1b[?1002l\x1b[?2004l")
	m = term.Modes()
	if m.MouseMode != MouseModeNone || m.BracketedPaste {
		t.Errorf("modes after reset = %+v", m)
	}
}

func TestCursorVisibility(t *testing.T) {
	term := New(WithSize(5, 20))
	if !term.Cursor().Visible {
		t.Fatal("cursor starts visible")
	}
	write(t, term, "\x1b[?25l")
	if term.Cursor().Visible {
		t.Error("DECTCEM reset must hide the cursor")
	}
	write(t, term, "\x1b[?25h")
	if !term.Cursor().Visible {
		t.Error("DECTCEM set must show the cursor")
	}
}

func TestCursorStyle(t *testing.T) {
	term := New(WithSize(5, 20))
	write(t, term, "\x1b[4 q")
	if got := term.Cursor().Style; got != CursorStyleSteadyUnderline {
		t.Errorf("style = %v, want steady underline", got)
	}
}

func TestDeviceStatusReports(t *testing.T) {
	term := New(WithSize(5, 20))
	write(t, term, "abcd\x1b[5n\x1b[6n\x1b[c")

	got := term.TakeResponses()
	want := []string{"\x1b[0n", "\x1b[1;5R", "\x1b[?62;22c"}
	if len(got) != len(want) {
		t.Fatalf("responses = %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("response %d = %q, want %q", i, got[i], want[i])
		}
	}
	if len(term.TakeResponses()) != 0 {
		t.Error("TakeResponses must drain the queue")
	}
}

func TestDECRQM(t *testing.T) {
	term := New(WithSize(5, 20))
	write(t, term, "\x1b[?2004$p\x1b[?2004h\x1b[?2004$p")

	got := term.TakeResponses()
	want := []string{"\x1b[?2004;2$y", "\x1b[?2004;1$y"}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("responses = %q, want %q", got, want)
	}
}

func TestWindowSizeReport(t *testing.T) {
	term := New(WithSize(5, 20))
	write(t, term, "\x1b[18t")
	got := term.TakeResponses()
	if len(got) != 1 || got[0] != "\x1b[8;5;20t" {
		t.Errorf("responses = %q", got)
	}
}

func TestTitleStack(t *testing.T) {
	term := New(WithSize(5, 20))
	write(t, term, "\x1b]2;one\x07\x1b[22t\x1b]2;two\x07")
	if term.Title() != "two" {
		t.Fatalf("title = %q, want two", term.Title())
	}
	write(t, term, "\x1b[23t")
	if term.Title() != "one" {
		t.Errorf("title = %q, want one", term.Title())
	}
}

func TestHyperlink(t *testing.T) {
	term := New(WithSize(3, 20))
	write(t, term, "\x1b]8;;https://example.com\x1b\\hi\x1b]8;;\x1b\\x")

	link := term.Cell(0, 0).Hyperlink
	if link == nil || link.URI != "https://example.com" {
		t.Fatalf("cell (0,0) hyperlink = %+v", link)
	}
	if term.Cell(0, 1).Hyperlink != link {
		t.Error("cells of one run share the hyperlink")
	}
	if term.Cell(0, 2).Hyperlink != nil {
		t.Error("hyperlink must end after the empty-URI OSC 8")
	}
}

func TestPaletteOSC(t *testing.T) {
	term := New(WithSize(3, 20))
	write(t, term, "\x1b]4;1;#102030\x07")
	if got := term.Palette().Index(1); got != (color.RGBA{16, 32, 48, 255}) {
		t.Errorf("palette 1 = %v", got)
	}

	write(t, term, "\x1b]4;1;?\x07")
	got := term.TakeResponses()
	if len(got) != 1 || got[0] != "\x1b]4;1;rgb:1010/2020/3030\x07" {
		t.Errorf("query response = %q", got)
	}

	write(t, term, "\x1b]104;1\x07")
	if got := term.Palette().Index(1); got != DefaultPalette[1] {
		t.Errorf("palette 1 after reset = %v", got)
	}
}

func TestDynamicColorsOSC(t *testing.T) {
	term := New(WithSize(3, 20))
	write(t, term, "\x1b]10;rgb:ff/88/00\x07")
	if got := term.Palette().Foreground(); got != (color.RGBA{255, 136, 0, 255}) {
		t.Errorf("foreground = %v", got)
	}

	write(t, term, "\x1b]10;?\x1b\\")
	got := term.TakeResponses()
	if len(got) != 1 || got[0] != "\x1b]10;rgb:ffff/8888/0000\x1b\\" {
		t.Errorf("query response = %q", got)
	}

	write(t, term, "\x1b]110\x07")
	if got := term.Palette().Foreground(); got != DefaultForeground {
		t.Errorf("foreground after reset = %v", got)
	}
}

type recordingClipboard struct {
	selection string
	data      []byte
}

func (c *recordingClipboard) SetClipboard(selection string, data []byte) {
	c.selection = selection
	c.data = data
}

func (c *recordingClipboard) GetClipboard(string) []byte { return c.data }

func TestClipboardOSC(t *testing.T) {
	clip := &recordingClipboard{}
	term := New(WithSize(3, 20), WithClipboard(clip))

	write(t, term, "\x1b]52;c;aGVsbG8=\x07")
	if clip.selection != "c" || string(clip.data) != "hello" {
		t.Errorf("clipboard = %q/%q", clip.selection, clip.data)
	}

	write(t, term, "\x1b]52;c;?\x07")
	got := term.TakeResponses()
	if len(got) != 1 || got[0] != "\x1b]52;c;aGVsbG8=\x07" {
		t.Errorf("query response = %q", got)
	}
}

type countingBell int

func (b *countingBell) Bell() { *b++ }

func TestBellProvider(t *testing.T) {
	var bell countingBell
	term := New(WithSize(3, 20), WithBell(&bell))
	write(t, term, "a\x07b\x07")
	if bell != 2 {
		t.Errorf("bell count = %d, want 2", bell)
	}
}

func TestDirtyRowTracking(t *testing.T) {
	term := New(WithSize(5, 20))
	term.AckDirty()

	write(t, term, "a")
	if got := term.DirtyRows(); len(got) != 1 || got[0] != 0 {
		t.Fatalf("dirty = %v, want [0]", got)
	}

	// Without an ack the flags accumulate.
	write(t, term, "\r\nb")
	got := term.DirtyRows()
	if len(got) != 2 || got[0] != 0 || got[1] != 1 {
		t.Fatalf("dirty = %v, want [0 1]", got)
	}

	term.AckDirty()
	if term.HasDirty() {
		t.Error("flags must clear on ack")
	}
	if got := term.DirtyRows(); len(got) != 0 {
		t.Errorf("dirty after ack = %v", got)
	}
}

func TestSoftReset(t *testing.T) {
	term := New(WithSize(5, 20))
	write(t, term, "keep\x1b[4h\x1b[?6h\x1b[2;4r\x1b[1m\x1b[!p")

	m := term.Modes()
	if m.Insert || m.Origin {
		t.Errorf("modes after DECSTR = %+v", m)
	}
	if term.top != 0 || term.bottom != 5 {
		t.Errorf("region = [%d,%d), want full", term.top, term.bottom)
	}
	// Contents survive a soft reset.
	if got := term.LineContent(0); got != "keep" {
		t.Errorf("line = %q, want keep", got)
	}
	write(t, term, "\x1b[1;6HX")
	if term.Cell(0, 5).HasFlag(CellFlagBold) {
		t.Error("rendition must reset")
	}
}

func TestFullReset(t *testing.T) {
	term := New(WithSize(2, 10))
	write(t, term, "a\r\nb\r\nc\x1b[?25l")
	if term.ScrollbackLen() != 1 {
		t.Fatal("expected archived line")
	}

	write(t, term, "\x1bc")
	if got := term.LineContent(0); got != "" {
		t.Errorf("row 0 = %q, want empty", got)
	}
	if cur := term.Cursor(); cur.Row != 0 || cur.Col != 0 || !cur.Visible {
		t.Errorf("cursor = %+v", cur)
	}
	// History survives RIS.
	if term.ScrollbackLen() != 1 {
		t.Error("scrollback must survive a full reset")
	}
}

func TestResizeInvalid(t *testing.T) {
	term := New(WithSize(5, 20))
	if err := term.Resize(0, 20); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("err = %v, want ErrInvalidSize", err)
	}
	if err := term.Resize(5, -1); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("err = %v, want ErrInvalidSize", err)
	}
}

func TestResizeNoop(t *testing.T) {
	term := New(WithSize(5, 20))
	term.AckDirty()
	if err := term.Resize(5, 20); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	if term.HasDirty() {
		t.Error("same-size resize must not touch the grid")
	}
}

func TestResizeGrow(t *testing.T) {
	term := New(WithSize(3, 5))
	write(t, term, "abcde")
	if err := term.Resize(5, 10); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	if got := term.LineContent(0); got != "abcde" {
		t.Errorf("line = %q, want abcde", got)
	}
	if term.Rows() != 5 || term.Cols() != 10 {
		t.Errorf("size = %dx%d", term.Rows(), term.Cols())
	}
}

func TestResizeShrinkArchivesAboveCursor(t *testing.T) {
	term := New(WithSize(24, 80))
	for i := 0; i < 16; i++ {
		write(t, term, fmt.Sprintf("\x1b[%d;1HL%d", i+1, i))
	}
	write(t, term, "\x1b[16;11H")

	if err := term.Resize(10, 80); err != nil {
		t.Fatalf("Resize: %v", err)
	}

	// Rows above the cursor scroll into history so the cursor stays on
	// screen.
	if got := term.ScrollbackLen(); got != 6 {
		t.Errorf("scrollback len = %d, want 6", got)
	}
	if cur := term.Cursor(); cur.Row != 9 || cur.Col != 10 {
		t.Errorf("cursor = (%d,%d), want (9,10)", cur.Row, cur.Col)
	}
	if got := lineText(term.primary.ScrollbackAt(0).Cells); got != "L0" {
		t.Errorf("history 0 = %q, want L0", got)
	}
	if got := term.LineContent(0); got != "L6" {
		t.Errorf("live row 0 = %q, want L6", got)
	}
}

func TestResizeShrinkColsTruncates(t *testing.T) {
	term := New(WithSize(3, 10))
	write(t, term, "0123456789")
	if err := term.Resize(3, 5); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	if got := term.LineContent(0); got != "01234" {
		t.Errorf("line = %q, want 01234", got)
	}
}

func TestResizeResetsScrollRegion(t *testing.T) {
	term := New(WithSize(5, 20))
	write(t, term, "\x1b[2;4r")
	if err := term.Resize(6, 20); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	if term.top != 0 || term.bottom != 6 {
		t.Errorf("region = [%d,%d), want [0,6)", term.top, term.bottom)
	}
}

func TestSearch(t *testing.T) {
	term := New(WithSize(3, 20))
	write(t, term, "foo bar\r\nbar foo")

	got := term.Search("foo")
	want := []Position{{Row: 0, Col: 0}, {Row: 1, Col: 4}}
	if len(got) != len(want) {
		t.Fatalf("Search = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("match %d = %v, want %v", i, got[i], want[i])
		}
	}
	if term.Search("absent") != nil {
		t.Error("expected no matches")
	}
}

func TestStringRendersScreen(t *testing.T) {
	term := New(WithSize(2, 10))
	write(t, term, "ab\r\ncd")
	if got := term.String(); got != "ab\ncd\n" {
		t.Errorf("String = %q", got)
	}
}
