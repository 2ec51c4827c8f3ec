// Package vtgrid implements a headless terminal emulator core: it consumes
// the byte stream an application writes to a pty and maintains the resulting
// screen state, without rendering anything itself.
//
// The pipeline is a streaming UTF-8 decoder feeding an escape-sequence state
// machine feeding the terminal engine. All three carry their state across
// Write calls, so the byte stream may be split at any boundary.
//
// A renderer reads the grid through VisibleRow, Cell, and the per-row dirty
// tracking (DirtyRows/AckDirty). Rows scrolled off the top of the primary
// screen land in a fixed-capacity scrollback ring and can be brought back
// into view with the scroll-offset API. Selections address the combined
// history-plus-live coordinate space and stay anchored to their content
// while output scrolls.
//
// Basic usage:
//
//	term := vtgrid.New(vtgrid.WithSize(24, 80))
//	term.Write([]byte("\x1b[1;31mhello\x1b[0m\r\n"))
//	for _, row := range term.DirtyRows() {
//		// repaint row
//	}
//	term.AckDirty()
//
// Terminal is not safe for concurrent use; callers serialize access.
package vtgrid
