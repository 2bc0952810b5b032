package generate

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"unicode"

	"tfg/content"
)

// exportTypeScript emits the fallback table as a TypeScript module: a value
// type (flat or recursive depending on actual nesting), the table literal,
// a keys alias and an accessor returning an empty object for unknown keys.
func exportTypeScript(t *content.Table, w io.Writer) error {
	var b bytes.Buffer

	b.WriteString("// Code generated by tfg. DO NOT EDIT.\n")
	b.WriteString("// Default-locale fallback strings used when translation loading fails.\n\n")

	if t.Nested() {
		b.WriteString("export type FallbackValues = { [key: string]: string | FallbackValues };\n\n")
	} else {
		b.WriteString("export type FallbackValues = Record<string, string>;\n\n")
	}

	b.WriteString("const fallbacks: Record<string, FallbackValues> = {\n")
	for _, key := range t.Keys() {
		fmt.Fprintf(&b, "  %s: {\n", tsKey(key))
		writeTSNode(&b, t.Get(key), 2)
		b.WriteString("  },\n")
	}
	b.WriteString("};\n\n")

	b.WriteString("export type FallbackKey = keyof typeof fallbacks;\n\n")
	b.WriteString("export function getFallback(key: string): FallbackValues {\n")
	b.WriteString("  return fallbacks[key as FallbackKey] ?? {};\n")
	b.WriteString("}\n")

	_, err := w.Write(b.Bytes())
	return err
}

func writeTSNode(b *bytes.Buffer, n *content.Node, indent int) {
	pad := strings.Repeat("  ", indent)
	for _, key := range n.Keys() {
		child := n.Child(key)
		if child.IsLeaf() {
			fmt.Fprintf(b, "%s%s: %s,\n", pad, tsKey(key), tsString(child.Value()))
			continue
		}
		fmt.Fprintf(b, "%s%s: {\n", pad, tsKey(key))
		writeTSNode(b, child, indent+1)
		fmt.Fprintf(b, "%s},\n", pad)
	}
}

// tsKey emits object keys bare when they are valid identifiers and quoted
// otherwise.
func tsKey(key string) string {
	if isTSIdentifier(key) {
		return key
	}
	return tsString(key)
}

func isTSIdentifier(s string) bool {
	if len(s) == 0 {
		return false
	}
	for i, r := range s {
		if r == '_' || r == '$' || unicode.IsLetter(r) {
			continue
		}
		if i > 0 && unicode.IsDigit(r) {
			continue
		}
		return false
	}
	return true
}

// tsString single-quotes a string the way generated sources conventionally
// look, escaping quotes, backslashes and control characters.
func tsString(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('\'')
	for _, r := range s {
		switch r {
		case '\'':
			b.WriteString(`\'`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if r < 0x20 {
				fmt.Fprintf(&b, `\u%04x`, r)
				continue
			}
			b.WriteRune(r)
		}
	}
	b.WriteByte('\'')
	return b.String()
}
