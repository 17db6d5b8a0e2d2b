package macro

// Split cuts the raw device buffer into count per-macro byte slices. Macros
// are NUL-delimited and concatenated in slot order; splitting consumes
// exactly count terminators and ignores any bytes past the last one, which
// is what the firmware itself does. Macros beyond the available data come
// back empty.
func Split(buf []byte, count int) [][]byte {
	out := make([][]byte, count)
	pos := 0
	for i := 0; i < count; i++ {
		start := pos
		for pos < len(buf) && buf[pos] != 0 {
			pos++
		}
		out[i] = buf[start:pos]
		if pos < len(buf) {
			pos++ // consume the terminator
		}
	}
	return out
}

// Join concatenates per-macro byte slices back into one device buffer, each
// macro followed by its NUL terminator.
func Join(macros [][]byte) []byte {
	var out []byte
	for _, m := range macros {
		out = append(out, m...)
		out = append(out, 0)
	}
	return out
}

// DecodeBuffer splits the raw device buffer and decodes each macro.
func DecodeBuffer(buf []byte, count int, v2 bool) [][]Action {
	raw := Split(buf, count)
	out := make([][]Action, count)
	for i, m := range raw {
		out[i] = Decode(m, v2)
	}
	return out
}

// EncodeBuffer encodes each macro and joins them into one device buffer.
func EncodeBuffer(macros [][]Action, v2 bool) []byte {
	raw := make([][]byte, len(macros))
	for i, m := range macros {
		raw[i] = Encode(m, v2)
	}
	return Join(raw)
}
