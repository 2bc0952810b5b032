package content

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/maruel/natural"
)

// String returns a readable tree of the accumulated table. It exists solely
// for manual inspection during debugging, keys are naturally ordered to make
// eyeballing large tables bearable.
func (t *Table) String() string {
	if t == nil {
		return "<nil Table>"
	}

	tw := newTreeWriter()
	tw.line(0, "Fallback table: %d keys, %d values", t.Len(), t.Leaves())

	keys := t.Keys()
	sort.Sort(natural.StringSlice(keys))
	for _, k := range keys {
		tw.line(1, "Key[%q] values[%d]", k, CountLeaves(t.entries[k]))
		dumpNode(tw, 2, t.entries[k])
	}
	return tw.String()
}

// String returns a readable tree of a single extraction result.
func (f *File) String() string {
	if f == nil {
		return "<nil File>"
	}

	tw := newTreeWriter()
	tw.line(0, "Source[%q] key[%q] values[%d] truncated[%t] omitted[%d]",
		f.SrcName, f.Key, CountLeaves(f.Root), f.Truncated, f.Omitted)
	if f.Root != nil {
		dumpNode(tw, 1, f.Root)
	}
	return tw.String()
}

func dumpNode(tw *treeWriter, depth int, n *Node) {
	if n == nil {
		return
	}
	keys := n.Keys()
	sort.Sort(natural.StringSlice(keys))
	for _, k := range keys {
		child := n.children[k]
		if child.IsLeaf() {
			tw.leaf(depth, k, child.value)
			continue
		}
		tw.line(depth, "%s:", k)
		dumpNode(tw, depth+1, child)
	}
}

// treeWriter assembles indented dumps of extracted trees.
type treeWriter struct {
	w *strings.Builder
}

func newTreeWriter() *treeWriter {
	return &treeWriter{w: &strings.Builder{}}
}

func (tw *treeWriter) String() string {
	return tw.w.String()
}

func (tw *treeWriter) line(depth int, format string, args ...any) {
	tw.indent(depth)
	fmt.Fprintf(tw.w, format, args...)
	tw.w.WriteByte('\n')
}

// leaf prints a key with its quoted value so control characters and tricky
// whitespace inside extracted strings stay visible.
func (tw *treeWriter) leaf(depth int, key, value string) {
	tw.indent(depth)
	tw.w.WriteString(key)
	tw.w.WriteString(": ")
	if value != "" {
		value = strconv.Quote(value)
	}
	tw.w.WriteString(value)
	tw.w.WriteByte('\n')
}

func (tw *treeWriter) indent(depth int) {
	for range depth {
		tw.w.WriteString("  ")
	}
}
