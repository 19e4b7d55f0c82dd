package document

import "bytes"

// _emptyBlockMarker stands in for the contents of an empty `{}` block.
// kdl-go folds `{}` into "no block", so the marker survives parsing and
// fromKDL turns it back into an empty child list.
const _emptyBlockMarker = "__smithy_empty_block__"

// markEmptyBlocks writes the marker node into every children block that
// holds only whitespace and comments. Strings and comments are skipped so a
// brace inside them is left alone. No newlines are added, so line numbers
// in parser errors still match the source.
func markEmptyBlocks(src []byte) []byte {
	var out bytes.Buffer
	out.Grow(len(src))

	for i := 0; i < len(src); {
		c := src[i]
		switch {
		case c == '"':
			end := skipQuoted(src, i)
			out.Write(src[i:end])
			i = end
		case (c == 'r' || c == '#') && atBoundary(src, i):
			end, ok := skipRaw(src, i)
			if !ok {
				out.WriteByte(c)
				i++
				continue
			}
			out.Write(src[i:end])
			i = end
		case c == '/' && i+1 < len(src) && (src[i+1] == '/' || src[i+1] == '*'):
			end := skipComment(src, i)
			out.Write(src[i:end])
			i = end
		case c == '{':
			out.WriteByte(c)
			if blockIsEmpty(src, i+1) {
				out.WriteString(_emptyBlockMarker)
				out.WriteByte(';')
			}
			i++
		default:
			out.WriteByte(c)
			i++
		}
	}
	return out.Bytes()
}

// atBoundary reports whether src[i] starts a token.
func atBoundary(src []byte, i int) bool {
	if i == 0 {
		return true
	}
	switch src[i-1] {
	case ' ', '\t', '\r', '\n', '(', ')', '{', '}', ';', '=':
		return true
	}
	return false
}

// skipQuoted returns the index just past the escaped string starting at i.
func skipQuoted(src []byte, i int) int {
	for j := i + 1; j < len(src); j++ {
		switch src[j] {
		case '\\':
			j++
		case '"':
			return j + 1
		}
	}
	return len(src)
}

// skipRaw handles r"..", r#".."# and #".."#. ok is false when src[i] does
// not open a raw string.
func skipRaw(src []byte, i int) (end int, ok bool) {
	j := i
	if src[j] == 'r' {
		j++
	}
	hashes := 0
	for j < len(src) && src[j] == '#' {
		hashes++
		j++
	}
	if j >= len(src) || src[j] != '"' || (src[i] == '#' && hashes == 0) {
		return 0, false
	}
	closing := append([]byte{'"'}, bytes.Repeat([]byte{'#'}, hashes)...)
	k := bytes.Index(src[j+1:], closing)
	if k < 0 {
		return len(src), true
	}
	return j + 1 + k + len(closing), true
}

// skipComment returns the index just past the comment starting at i. Block
// comments nest.
func skipComment(src []byte, i int) int {
	if src[i+1] == '/' {
		if k := bytes.IndexByte(src[i:], '\n'); k >= 0 {
			return i + k
		}
		return len(src)
	}
	depth := 0
	for j := i; j+1 < len(src); j++ {
		switch {
		case src[j] == '/' && src[j+1] == '*':
			depth++
			j++
		case src[j] == '*' && src[j+1] == '/':
			depth--
			j++
			if depth == 0 {
				return j + 1
			}
		}
	}
	return len(src)
}

// blockIsEmpty reports whether only whitespace and comments sit between
// src[i] and the next '}'.
func blockIsEmpty(src []byte, i int) bool {
	for i < len(src) {
		switch c := src[i]; {
		case c == ' ', c == '\t', c == '\r', c == '\n':
			i++
		case c == '/' && i+1 < len(src) && (src[i+1] == '/' || src[i+1] == '*'):
			i = skipComment(src, i)
		default:
			return c == '}'
		}
	}
	return false
}
