package wfdparam

// decodeNibbleLenient decodes one ASCII hex nibble. Per spec §4.1, any
// character outside 0-9/a-f/A-F decodes as 0 rather than failing - the
// codec's EDID payload decoder is intentionally lenient (Open Questions
// in spec §9 flag this as a simplification a stricter implementation
// could revisit).
func decodeNibbleLenient(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10
	default:
		return 0
	}
}

// decodeHexPayloadLenient decodes an even-length ASCII hex string into
// bytes, two nibbles per byte, using the lenient nibble decoder.
func decodeHexPayloadLenient(s string) []byte {
	n := len(s) / 2
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		hi := decodeNibbleLenient(s[2*i])
		lo := decodeNibbleLenient(s[2*i+1])
		out[i] = hi<<4 | lo
	}
	return out
}

const hexDigits = "0123456789abcdef"

func encodeHexPayload(b []byte) string {
	out := make([]byte, len(b)*2)
	for i, v := range b {
		out[2*i] = hexDigits[v>>4]
		out[2*i+1] = hexDigits[v&0x0f]
	}
	return string(out)
}
