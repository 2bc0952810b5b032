package content

// Table accumulates extraction results across content files: content key to
// extracted tree, in the order files contributed them.
type Table struct {
	entries map[string]*Node
	order   []string
}

func NewTable() *Table {
	return &Table{entries: make(map[string]*Node)}
}

// Add records the extracted tree for a content key. Entries without a single
// leaf are dropped so only keys with at least one value end up in the output.
// Returns false when the entry was dropped.
func (t *Table) Add(key string, root *Node) bool {
	if root == nil || CountLeaves(root) == 0 {
		return false
	}
	if _, exists := t.entries[key]; !exists {
		t.order = append(t.order, key)
	}
	t.entries[key] = root
	return true
}

// Keys returns content keys in the order they were added.
func (t *Table) Keys() []string {
	keys := make([]string, len(t.order))
	copy(keys, t.order)
	return keys
}

func (t *Table) Get(key string) *Node {
	return t.entries[key]
}

func (t *Table) Len() int {
	return len(t.order)
}

// Leaves returns the total number of extracted values.
func (t *Table) Leaves() int {
	count := 0
	for _, key := range t.order {
		count += CountLeaves(t.entries[key])
	}
	return count
}

// Nested reports whether any entry nests deeper than a single level of
// fields. Exporters use it to pick between the flat and the recursive value
// type declarations.
func (t *Table) Nested() bool {
	for _, key := range t.order {
		if Depth(t.entries[key]) > 1 {
			return true
		}
	}
	return false
}
