package generate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"tfg/content"
)

// exportJSON emits the fallback table as a nested JSON object preserving the
// source field order. encoding/json maps would sort keys, so the object is
// assembled by hand with per-string marshaling for correct escaping.
func exportJSON(t *content.Table, w io.Writer) error {
	var b bytes.Buffer

	keys := t.Keys()
	if len(keys) == 0 {
		b.WriteString("{}\n")
		_, err := w.Write(b.Bytes())
		return err
	}

	b.WriteString("{\n")
	for i, key := range keys {
		fmt.Fprintf(&b, "  %s: ", jsonString(key))
		writeJSONNode(&b, t.Get(key), 1)
		if i < len(keys)-1 {
			b.WriteByte(',')
		}
		b.WriteByte('\n')
	}
	b.WriteString("}\n")

	_, err := w.Write(b.Bytes())
	return err
}

func writeJSONNode(b *bytes.Buffer, n *content.Node, indent int) {
	if n.IsLeaf() {
		b.WriteString(jsonString(n.Value()))
		return
	}

	keys := n.Keys()
	if len(keys) == 0 {
		b.WriteString("{}")
		return
	}

	pad := strings.Repeat("  ", indent+1)
	b.WriteString("{\n")
	for i, key := range keys {
		b.WriteString(pad)
		b.WriteString(jsonString(key))
		b.WriteString(": ")
		writeJSONNode(b, n.Child(key), indent+1)
		if i < len(keys)-1 {
			b.WriteByte(',')
		}
		b.WriteByte('\n')
	}
	b.WriteString(strings.Repeat("  ", indent))
	b.WriteByte('}')
}

func jsonString(s string) string {
	data, err := json.Marshal(s)
	if err != nil {
		// this should never happen for a string
		panic(err)
	}
	return string(data)
}
