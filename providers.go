package vtgrid

// BellProvider is notified when the application rings the bell (BEL).
type BellProvider interface {
	Bell()
}

// TitleProvider is notified when the application changes the window title
// (OSC 0/2 and the XTWINOPS title stack).
type TitleProvider interface {
	SetTitle(title string)
}

// ClipboardProvider backs OSC 52 clipboard access. The selection string is
// the OSC 52 target list, typically "c" for the clipboard or "p" for the
// primary selection.
type ClipboardProvider interface {
	SetClipboard(selection string, data []byte)
	GetClipboard(selection string) []byte
}

// NoopBell ignores bell events.
type NoopBell struct{}

func (NoopBell) Bell() {}

// NoopTitle ignores title changes.
type NoopTitle struct{}

func (NoopTitle) SetTitle(string) {}

// NoopClipboard ignores clipboard writes and answers queries with nothing.
type NoopClipboard struct{}

func (NoopClipboard) SetClipboard(string, []byte) {}
func (NoopClipboard) GetClipboard(string) []byte  { return nil }
