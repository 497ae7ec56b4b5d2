package classfile

import (
	"unicode/utf16"
	"unicode/utf8"
)

// decodeMUTF8 converts JVM modified UTF-8 into a Go string.
// Malformed sequences decode to utf8.RuneError instead of failing.
func decodeMUTF8(b []byte) string {
	ascii := true
	for _, c := range b {
		if c == 0 || c >= 0x80 {
			ascii = false
			break
		}
	}
	if ascii {
		return string(b)
	}

	units := make([]uint16, 0, len(b))
	for i := 0; i < len(b); {
		c := b[i]
		switch {
		case c < 0x80:
			units = append(units, uint16(c))
			i++
		case c&0xe0 == 0xc0 && i+1 < len(b):
			units = append(units, uint16(c&0x1f)<<6|uint16(b[i+1]&0x3f))
			i += 2
		case c&0xf0 == 0xe0 && i+2 < len(b):
			units = append(units, uint16(c&0x0f)<<12|uint16(b[i+1]&0x3f)<<6|uint16(b[i+2]&0x3f))
			i += 3
		default:
			units = append(units, utf8.RuneError)
			i++
		}
	}
	return string(utf16.Decode(units))
}

// encodeMUTF8 converts a Go string into JVM modified UTF-8: NUL is written as
// C0 80 and supplementary characters as encoded surrogate pairs.
func encodeMUTF8(s string) []byte {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		switch {
		case r != 0 && r < 0x80:
			out = append(out, byte(r))
		case r < 0x800:
			out = append(out, 0xc0|byte(r>>6), 0x80|byte(r&0x3f))
		case r < 0x10000:
			out = appendUnit3(out, uint16(r))
		default:
			hi, lo := utf16.EncodeRune(r)
			out = appendUnit3(out, uint16(hi))
			out = appendUnit3(out, uint16(lo))
		}
	}
	return out
}

func appendUnit3(out []byte, u uint16) []byte {
	return append(out, 0xe0|byte(u>>12), 0x80|byte((u>>6)&0x3f), 0x80|byte(u&0x3f))
}
