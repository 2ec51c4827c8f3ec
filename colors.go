package vtgrid

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// DefaultPalette is the standard 256-color palette: 16 named colors (0-15),
// 216 color cube (16-231), 24 grayscale (232-255).
var DefaultPalette = [256]color.RGBA{
	// Standard colors (0-7)
	{0, 0, 0, 255},       // Black
	{205, 49, 49, 255},   // Red
	{13, 188, 121, 255},  // Green
	{229, 229, 16, 255},  // Yellow
	{36, 114, 200, 255},  // Blue
	{188, 63, 188, 255},  // Magenta
	{17, 168, 205, 255},  // Cyan
	{229, 229, 229, 255}, // White

	// Bright colors (8-15)
	{102, 102, 102, 255}, // Bright Black
	{241, 76, 76, 255},   // Bright Red
	{35, 209, 139, 255},  // Bright Green
	{245, 245, 67, 255},  // Bright Yellow
	{59, 142, 234, 255},  // Bright Blue
	{214, 112, 214, 255}, // Bright Magenta
	{41, 184, 219, 255},  // Bright Cyan
	{255, 255, 255, 255}, // Bright White

	// 216 color cube (16-231) and grayscale (232-255) are generated in init.
}

func init() {
	// Generate 216 color cube (16-231)
	i := 16
	for r := 0; r < 6; r++ {
		for g := 0; g < 6; g++ {
			for b := 0; b < 6; b++ {
				DefaultPalette[i] = color.RGBA{
					R: uint8(r * 51),
					G: uint8(g * 51),
					B: uint8(b * 51),
					A: 255,
				}
				i++
			}
		}
	}

	// Generate grayscale (232-255)
	for j := 0; j < 24; j++ {
		gray := uint8(8 + j*10)
		DefaultPalette[232+j] = color.RGBA{gray, gray, gray, 255}
	}
}

// DefaultForeground is the default text color (light gray).
var DefaultForeground = color.RGBA{229, 229, 229, 255}

// DefaultBackground is the default background color (black).
var DefaultBackground = color.RGBA{0, 0, 0, 255}

// DefaultCursorColor is the default cursor rendering color (light gray).
var DefaultCursorColor = color.RGBA{229, 229, 229, 255}

// Named color indices for semantic colors (used with NamedColor).
const (
	NamedColorForeground = 256 // Default foreground text color
	NamedColorBackground = 257 // Default background color
	NamedColorCursor     = 258 // Cursor color
)

// Shared references for default cell colors, so freshly cleared cells do not
// allocate.
var (
	defaultForegroundRef = &NamedColor{Name: NamedColorForeground}
	defaultBackgroundRef = &NamedColor{Name: NamedColorBackground}
)

// IndexedColor references a color by palette index (0-255).
// Resolution to actual RGBA happens at render time using the palette.
type IndexedColor struct {
	Index int
}

// RGBA implements color.Color, returning a placeholder (actual resolution
// happens at render time via the terminal's palette).
func (c *IndexedColor) RGBA() (r, g, b, a uint32) {
	return 0, 0, 0, 0xffff
}

// NamedColor references a color by semantic name (foreground, background,
// cursor). Resolution to actual RGBA happens at render time.
type NamedColor struct {
	Name int
}

// RGBA implements color.Color, returning a placeholder (actual resolution
// happens at render time).
func (c *NamedColor) RGBA() (r, g, b, a uint32) {
	return 0, 0, 0, 0xffff
}

// Palette resolves color references against the 256-color table, with
// per-index overrides set by OSC 4 and resettable by OSC 104. The default
// fg/bg/cursor colors are seeded at construction and adjustable by
// OSC 10/11/12.
type Palette struct {
	overrides  map[int]color.RGBA
	foreground color.RGBA
	background color.RGBA
	cursor     color.RGBA
}

// NewPalette creates a palette with no overrides and stock defaults.
func NewPalette() *Palette {
	return &Palette{
		overrides:  make(map[int]color.RGBA),
		foreground: DefaultForeground,
		background: DefaultBackground,
		cursor:     DefaultCursorColor,
	}
}

// Index returns the color for a palette index, honoring overrides.
func (p *Palette) Index(i int) color.RGBA {
	if c, ok := p.overrides[i]; ok {
		return c
	}
	if i >= 0 && i < 256 {
		return DefaultPalette[i]
	}
	return p.foreground
}

// SetIndex overrides one palette entry.
func (p *Palette) SetIndex(i int, c color.RGBA) {
	if i >= 0 && i < 256 {
		p.overrides[i] = c
	}
}

// ResetIndex removes the override for one palette entry.
func (p *Palette) ResetIndex(i int) {
	delete(p.overrides, i)
}

// ResetAll removes every override and restores stock defaults.
func (p *Palette) ResetAll() {
	p.overrides = make(map[int]color.RGBA)
	p.foreground = DefaultForeground
	p.background = DefaultBackground
	p.cursor = DefaultCursorColor
}

// SetForeground overrides the default foreground color (OSC 10).
func (p *Palette) SetForeground(c color.RGBA) { p.foreground = c }

// SetBackground overrides the default background color (OSC 11).
func (p *Palette) SetBackground(c color.RGBA) { p.background = c }

// SetCursor overrides the cursor color (OSC 12).
func (p *Palette) SetCursor(c color.RGBA) { p.cursor = c }

// Foreground returns the default foreground color.
func (p *Palette) Foreground() color.RGBA { return p.foreground }

// Background returns the default background color.
func (p *Palette) Background() color.RGBA { return p.background }

// Cursor returns the cursor color.
func (p *Palette) Cursor() color.RGBA { return p.cursor }

// Resolve converts any cell color reference to concrete RGBA.
// Nil means "default": foreground when fg is true, background otherwise.
func (p *Palette) Resolve(c color.Color, fg bool) color.RGBA {
	if c == nil {
		if fg {
			return p.foreground
		}
		return p.background
	}

	switch v := c.(type) {
	case color.RGBA:
		return v
	case *IndexedColor:
		return p.Index(v.Index)
	case *NamedColor:
		switch v.Name {
		case NamedColorForeground:
			return p.foreground
		case NamedColorBackground:
			return p.background
		case NamedColorCursor:
			return p.cursor
		default:
			if v.Name >= 0 && v.Name < 256 {
				return p.Index(v.Name)
			}
			if fg {
				return p.foreground
			}
			return p.background
		}
	default:
		r, g, b, a := c.RGBA()
		return color.RGBA{
			R: uint8(r >> 8),
			G: uint8(g >> 8),
			B: uint8(b >> 8),
			A: uint8(a >> 8),
		}
	}
}

// parseColorSpec parses an OSC color specification. Both XParseColor forms
// used by terminal programs are accepted: "rgb:RR/GG/BB" with 1-4 hex digits
// per component, and "#rrggbb" hex notation.
func parseColorSpec(spec string) (color.RGBA, bool) {
	spec = strings.TrimSpace(spec)

	if strings.HasPrefix(spec, "#") {
		c, err := colorful.Hex(spec)
		if err != nil {
			return color.RGBA{}, false
		}
		r, g, b := c.RGB255()
		return color.RGBA{R: r, G: g, B: b, A: 255}, true
	}

	if rest, ok := strings.CutPrefix(spec, "rgb:"); ok {
		parts := strings.Split(rest, "/")
		if len(parts) != 3 {
			return color.RGBA{}, false
		}
		var comp [3]uint8
		for i, part := range parts {
			v, ok := parseScaledHex(part)
			if !ok {
				return color.RGBA{}, false
			}
			comp[i] = v
		}
		return color.RGBA{R: comp[0], G: comp[1], B: comp[2], A: 255}, true
	}

	return color.RGBA{}, false
}

// parseScaledHex parses a 1-4 digit hex component, scaling it to 8 bits.
func parseScaledHex(s string) (uint8, bool) {
	if len(s) == 0 || len(s) > 4 {
		return 0, false
	}
	v, err := strconv.ParseUint(s, 16, 16)
	if err != nil {
		return 0, false
	}
	max := uint64(1)<<(4*len(s)) - 1
	return uint8(v * 255 / max), true
}

// formatColorResponse renders a color in the "rgb:rrrr/gggg/bbbb" form used
// by OSC query replies.
func formatColorResponse(c color.RGBA) string {
	cf := colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
	r, g, b := cf.RGB255()
	return fmt.Sprintf("rgb:%02x%02x/%02x%02x/%02x%02x", r, r, g, g, b, b)
}
