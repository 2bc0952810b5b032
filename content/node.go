// Package content extracts default-locale fallback strings from content
// dictionary sources.
package content

// Node is a single element of the extracted tree: either a leaf carrying the
// default-locale string or an object with named children. Children keep the
// order in which they appear in the source so the generated artifact mirrors
// input structure exactly.
type Node struct {
	value    string
	children map[string]*Node
	order    []string
}

func NewLeaf(value string) *Node {
	return &Node{value: value}
}

func NewObject() *Node {
	return &Node{children: make(map[string]*Node)}
}

func (n *Node) IsLeaf() bool {
	return n.children == nil
}

// Value returns the default-locale string of a leaf, empty for objects.
func (n *Node) Value() string {
	return n.value
}

// Keys returns child names in source order.
func (n *Node) Keys() []string {
	keys := make([]string, len(n.order))
	copy(keys, n.order)
	return keys
}

func (n *Node) Child(key string) *Node {
	if n.children == nil {
		return nil
	}
	return n.children[key]
}

func (n *Node) Len() int {
	return len(n.order)
}

// Put adds or replaces a child. A replaced key keeps its original position.
func (n *Node) Put(key string, child *Node) {
	if n.children == nil {
		// this should never happen
		panic("cannot add child to a leaf node")
	}
	if _, exists := n.children[key]; !exists {
		n.order = append(n.order, key)
	}
	n.children[key] = child
}

// CountLeaves returns the number of leaf strings in the subtree, used for
// diagnostic reporting only.
func CountLeaves(n *Node) int {
	if n == nil {
		return 0
	}
	if n.IsLeaf() {
		return 1
	}
	count := 0
	for _, key := range n.order {
		count += CountLeaves(n.children[key])
	}
	return count
}

// Depth returns the longest chain of nested objects below n: 0 for a leaf, 1
// for an object of leaves and so on.
func Depth(n *Node) int {
	if n == nil || n.IsLeaf() {
		return 0
	}
	max := 0
	for _, key := range n.order {
		if d := Depth(n.children[key]); d > max {
			max = d
		}
	}
	return max + 1
}
