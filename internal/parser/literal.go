package parser

import (
	"bytes"
)

// unwrap strips the script around the symbol array of a symbols.js file:
// leading line comments, "var symbols =" and the trailing semicolon.
// Plain JSON passes through unchanged.
func unwrap(content []byte) []byte {
	s := bytes.TrimSpace(content)

	for bytes.HasPrefix(s, []byte("//")) {
		nl := bytes.IndexByte(s, '\n')
		if nl < 0 {
			return nil
		}
		s = bytes.TrimSpace(s[nl+1:])
	}

	if bytes.HasPrefix(s, []byte("var ")) {
		if eq := bytes.IndexByte(s, '='); eq >= 0 {
			s = bytes.TrimSpace(s[eq+1:])
		}
	}

	s = bytes.TrimSuffix(s, []byte(";"))
	return bytes.TrimSpace(s)
}

// normalizeEscapes rewrites the JSON5 string escapes \xHH, \v and \0 as
// \u escapes, the only numeric form json5 decodes
func normalizeEscapes(src []byte) []byte {
	if bytes.IndexByte(src, '\\') < 0 {
		return src
	}

	out := make([]byte, 0, len(src)+16)
	for i := 0; i < len(src); i++ {
		if src[i] != '\\' || i+1 >= len(src) {
			out = append(out, src[i])
			continue
		}

		switch next := src[i+1]; {
		case next == 'x' && i+3 < len(src) && isHex(src[i+2]) && isHex(src[i+3]):
			out = append(out, `\u00`...)
			out = append(out, src[i+2], src[i+3])
			i += 3
		case next == 'v':
			out = append(out, `\u000b`...)
			i++
		case next == '0' && (i+2 >= len(src) || !isDigit(src[i+2])):
			out = append(out, `\u0000`...)
			i++
		default:
			out = append(out, src[i], next)
			i++
		}
	}
	return out
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isHex(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
