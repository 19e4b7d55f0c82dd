package document

import (
	"fmt"
	"io"
	"strings"
	"unicode"
)

// Format writes nodes as canonical KDL: properties in sorted key order,
// strings escaped and child blocks indented by four spaces. Two trees that
// decode the same always format the same.
func Format(w io.Writer, nodes []*Node) error {
	var b strings.Builder
	for _, n := range nodes {
		writeNode(&b, n, 0)
	}
	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("writing document: %w", err)
	}
	return nil
}

func writeNode(b *strings.Builder, n *Node, depth int) {
	indent := strings.Repeat("    ", depth)
	_, _ = b.WriteString(indent)
	_, _ = b.WriteString(identifier(n.Name))
	for _, arg := range n.Arguments {
		_ = b.WriteByte(' ')
		_, _ = b.WriteString(arg.String())
	}
	for _, k := range n.Properties.Keys() {
		_ = b.WriteByte(' ')
		_, _ = b.WriteString(identifier(k))
		_ = b.WriteByte('=')
		_, _ = b.WriteString(n.Properties[k].String())
	}
	if n.Children != nil {
		if len(n.Children) == 0 {
			_, _ = b.WriteString(" {}\n")
			return
		}
		_, _ = b.WriteString(" {\n")
		for _, kid := range n.Children {
			writeNode(b, kid, depth+1)
		}
		_, _ = b.WriteString(indent)
		_ = b.WriteByte('}')
	}
	_ = b.WriteByte('\n')
}

// identifier returns s bare when it is a plain KDL identifier and quoted
// otherwise.
func identifier(s string) string {
	if isBareIdentifier(s) {
		return s
	}
	return quote(s)
}

func isBareIdentifier(s string) bool {
	if s == "" {
		return false
	}
	switch s {
	case "true", "false", "null":
		return false
	}
	for i, r := range s {
		switch {
		case unicode.IsSpace(r), unicode.IsControl(r):
			return false
		case strings.ContainsRune(`\/(){}<>;[]=,"#`, r):
			return false
		case i == 0 && unicode.IsDigit(r):
			return false
		}
	}
	// A leading sign followed by a digit reads as a number.
	if len(s) > 1 && (s[0] == '-' || s[0] == '+') && s[1] >= '0' && s[1] <= '9' {
		return false
	}
	return true
}

func quote(s string) string {
	var b strings.Builder
	_ = b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			_, _ = b.WriteString(`\"`)
		case '\\':
			_, _ = b.WriteString(`\\`)
		case '\n':
			_, _ = b.WriteString(`\n`)
		case '\r':
			_, _ = b.WriteString(`\r`)
		case '\t':
			_, _ = b.WriteString(`\t`)
		case '\b':
			_, _ = b.WriteString(`\b`)
		case '\f':
			_, _ = b.WriteString(`\f`)
		default:
			if unicode.IsControl(r) {
				_, _ = fmt.Fprintf(&b, `\u{%x}`, r)
				continue
			}
			_, _ = b.WriteRune(r)
		}
	}
	_ = b.WriteByte('"')
	return b.String()
}
