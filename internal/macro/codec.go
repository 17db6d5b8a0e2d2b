package macro

// Wire encoding bytes shared by both protocol versions. In the v1 encoding
// the tag bytes appear bare in the stream; in v2 every structured action is
// introduced by the QMK prefix byte and the tag follows it.
const (
	qmkPrefix = 0x01

	tagTap   = 0x01
	tagDown  = 0x02
	tagUp    = 0x03
	tagDelay = 0x04

	// Extended tags carry a two-byte little-endian keycode (v2 only).
	tagExtTap  = 0x05
	tagExtDown = 0x06
	tagExtUp   = 0x07
)

func tagFor(k Kind) byte {
	switch k {
	case KindDown:
		return tagDown
	case KindUp:
		return tagUp
	default:
		return tagTap
	}
}

func kindFor(tag byte) Kind {
	switch tag {
	case tagDown, tagExtDown:
		return KindDown
	case tagUp, tagExtUp:
		return KindUp
	default:
		return KindTap
	}
}

// packKeycode applies the firmware's two-byte keycode packing: a keycode
// whose low byte is zero is stored as (kc>>8)|0xFF00 so that common
// upper-byte-only keycodes stay representable.
func packKeycode(kc uint16) uint16 {
	if kc&0x00FF == 0 {
		return kc>>8 | 0xFF00
	}
	return kc
}

// unpackKeycode reverses packKeycode. The boundary is strictly greater than
// 0xFF00: a literal 0xFF00 is kept as-is.
func unpackKeycode(w uint16) uint16 {
	if w > 0xFF00 {
		return (w & 0x00FF) << 8
	}
	return w
}

// Encode serializes one macro's actions to device bytes. v2 selects the
// prefixed encoding used at Vial protocol 2 and above; under v1, keycodes
// above 255 are truncated to their low byte and delays are dropped, both
// known limitations of the old format.
func Encode(actions []Action, v2 bool) []byte {
	var out []byte
	for _, a := range actions {
		switch a.Kind {
		case KindText:
			out = append(out, a.Text...)
		case KindDelay:
			if v2 {
				ms := a.Delay
				out = append(out, qmkPrefix, tagDelay, byte(ms%255)+1, byte(ms/255)+1)
			}
		case KindTap, KindDown, KindUp:
			tag := tagFor(a.Kind)
			for _, kc := range a.Keycodes {
				switch {
				case !v2:
					out = append(out, tag, byte(kc))
				case kc > 0xFF:
					w := packKeycode(kc)
					out = append(out, qmkPrefix, tag+4, byte(w), byte(w>>8))
				default:
					out = append(out, qmkPrefix, tag, byte(kc))
				}
			}
		}
	}
	return out
}

// Decode parses one macro's device bytes into actions. Consecutive actions
// of the same tap/down/up kind are merged into one action with the
// concatenated keycode list, matching what the device executes; merging
// never crosses a text or delay boundary. Truncated trailing sequences are
// dropped silently and unknown prefixed tags are skipped without corrupting
// the surrounding text.
func Decode(data []byte, v2 bool) []Action {
	if v2 {
		return decodeV2(data)
	}
	return decodeV1(data)
}

func decodeV1(data []byte) []Action {
	var b builder
	for i := 0; i < len(data); i++ {
		switch data[i] {
		case tagTap, tagDown, tagUp:
			if i+1 >= len(data) {
				return b.finish()
			}
			b.key(kindFor(data[i]), uint16(data[i+1]))
			i++
		default:
			b.text(data[i])
		}
	}
	return b.finish()
}

func decodeV2(data []byte) []Action {
	var b builder
	for i := 0; i < len(data); i++ {
		if data[i] != qmkPrefix {
			b.text(data[i])
			continue
		}
		if i+1 >= len(data) {
			return b.finish()
		}
		tag := data[i+1]
		switch tag {
		case tagTap, tagDown, tagUp:
			if i+2 >= len(data) {
				return b.finish()
			}
			b.key(kindFor(tag), uint16(data[i+2]))
			i += 2
		case tagDelay:
			if i+3 >= len(data) {
				return b.finish()
			}
			d1, d2 := int(data[i+2]), int(data[i+3])
			b.delay((d1 - 1) + (d2-1)*255)
			i += 3
		case tagExtTap, tagExtDown, tagExtUp:
			if i+3 >= len(data) {
				return b.finish()
			}
			w := uint16(data[i+2]) | uint16(data[i+3])<<8
			b.key(kindFor(tag), unpackKeycode(w))
			i += 3
		default:
			// Unknown structured action: skip prefix and tag byte.
			i++
		}
	}
	return b.finish()
}

// builder accumulates decoded actions, merging text runs and same-kind key
// actions as it goes.
type builder struct {
	actions []Action
	textRun []byte
}

func (b *builder) flushText() {
	if len(b.textRun) > 0 {
		b.actions = append(b.actions, Text(string(b.textRun)))
		b.textRun = nil
	}
}

func (b *builder) text(c byte) {
	b.textRun = append(b.textRun, c)
}

func (b *builder) key(k Kind, kc uint16) {
	b.flushText()
	if n := len(b.actions); n > 0 && b.actions[n-1].Kind == k {
		b.actions[n-1].Keycodes = append(b.actions[n-1].Keycodes, kc)
		return
	}
	b.actions = append(b.actions, Action{Kind: k, Keycodes: []uint16{kc}})
}

func (b *builder) delay(ms int) {
	b.flushText()
	b.actions = append(b.actions, Delay(ms))
}

func (b *builder) finish() []Action {
	b.flushText()
	return b.actions
}
