package vtgrid

import "github.com/unilibs/uniwidth"

// runeWidth returns the display width of a codepoint: 2 for wide characters
// (CJK, fullwidth forms, emoji), 1 for normal, 0 for zero-width (combining
// marks, control characters).
//
// A handful of symbol blocks are forced to width 1 regardless of their
// East-Asian-width class, because monospace fonts render them in a single
// cell and TUI programs lay them out that way.
func runeWidth(r rune) int {
	if isForcedNarrow(r) {
		return 1
	}
	return uniwidth.RuneWidth(r)
}

// isForcedNarrow reports whether r belongs to a block that is always
// rendered single-width: arrows, box drawing, geometric shapes, braille
// patterns, and the powerline symbol range.
func isForcedNarrow(r rune) bool {
	switch {
	case r >= 0x2190 && r <= 0x21FF: // Arrows
	case r >= 0x2500 && r <= 0x257F: // Box Drawing
	case r >= 0x25A0 && r <= 0x25FF: // Geometric Shapes
	case r >= 0x2800 && r <= 0x28FF: // Braille Patterns
	case r >= 0xE0A0 && r <= 0xE0D4: // Powerline symbols
	default:
		return false
	}
	return true
}

// isWideRune returns true if the rune occupies 2 columns.
func isWideRune(r rune) bool {
	return runeWidth(r) == 2
}

// StringWidth returns the total display width of a string (sum of rune widths).
func StringWidth(s string) int {
	w := 0
	for _, r := range s {
		w += runeWidth(r)
	}
	return w
}
