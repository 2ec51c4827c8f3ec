package vtgrid

// runeError is emitted for every byte sequence that cannot be decoded.
const runeError = '�'

// utf8Decoder decodes a UTF-8 byte stream incrementally. Up to three bytes
// of an incomplete sequence are retained between calls, so a codepoint split
// across two reads decodes the same as an unsplit one.
//
// Recovery follows the replacement-character policy: an invalid lead byte, a
// continuation mismatch, or a pending sequence foreclosed by a
// non-continuation byte each emit exactly one U+FFFD, and decoding resumes at
// the very next byte. No valid bytes are ever dropped.
type utf8Decoder struct {
	buf  [4]byte
	n    int // bytes accumulated so far
	want int // total bytes expected, 0 when idle
}

// feed consumes one byte, calling emit for every decoded codepoint.
// A single byte can produce up to two codepoints (a replacement for a
// foreclosed sequence followed by the byte's own decoding).
func (d *utf8Decoder) feed(b byte, emit func(rune)) {
	if d.want > 0 {
		if b&0xC0 == 0x80 {
			if d.n == 1 && !acceptContinuation(d.buf[0], b) {
				// Second byte outside the lead's legal range
				// (overlong or surrogate encoding).
				d.reset()
				emit(runeError)
				d.feed(b, emit)
				return
			}
			d.buf[d.n] = b
			d.n++
			if d.n == d.want {
				r := d.assemble()
				d.reset()
				emit(r)
			}
			return
		}
		// Non-continuation byte forecloses the pending sequence.
		d.reset()
		emit(runeError)
		// Fall through: b starts a fresh sequence.
	}

	switch {
	case b < 0x80:
		emit(rune(b))
	case b < 0xC2:
		// Stray continuation byte or overlong lead (C0/C1).
		emit(runeError)
	case b < 0xE0:
		d.buf[0], d.n, d.want = b, 1, 2
	case b < 0xF0:
		d.buf[0], d.n, d.want = b, 1, 3
	case b < 0xF5:
		d.buf[0], d.n, d.want = b, 1, 4
	default:
		emit(runeError)
	}
}

// pending returns how many bytes of an incomplete sequence are buffered.
func (d *utf8Decoder) pending() int {
	return d.n
}

func (d *utf8Decoder) reset() {
	d.n = 0
	d.want = 0
}

// assemble combines the buffered bytes into a codepoint. The lead and second
// byte were validated on entry, so only the bit math remains.
func (d *utf8Decoder) assemble() rune {
	switch d.want {
	case 2:
		return rune(d.buf[0]&0x1F)<<6 | rune(d.buf[1]&0x3F)
	case 3:
		return rune(d.buf[0]&0x0F)<<12 | rune(d.buf[1]&0x3F)<<6 | rune(d.buf[2]&0x3F)
	default:
		return rune(d.buf[0]&0x07)<<18 | rune(d.buf[1]&0x3F)<<12 | rune(d.buf[2]&0x3F)<<6 | rune(d.buf[3]&0x3F)
	}
}

// acceptContinuation validates the second byte of a multi-byte sequence
// against the lead byte, rejecting overlong encodings, UTF-16 surrogates,
// and codepoints beyond U+10FFFF.
func acceptContinuation(lead, b byte) bool {
	switch lead {
	case 0xE0:
		return b >= 0xA0 && b <= 0xBF
	case 0xED:
		return b >= 0x80 && b <= 0x9F
	case 0xF0:
		return b >= 0x90 && b <= 0xBF
	case 0xF4:
		return b >= 0x80 && b <= 0x8F
	default:
		return b >= 0x80 && b <= 0xBF
	}
}
