package generate

import (
	"io"

	"github.com/beevik/etree"

	"tfg/content"
)

// exportXML emits the fallback table as an XML document for consumers
// outside the TypeScript toolchain.
func exportXML(t *content.Table, w io.Writer) error {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("fallbacks")
	for _, key := range t.Keys() {
		entry := root.CreateElement("entry")
		entry.CreateAttr("key", key)
		writeXMLNode(entry, t.Get(key))
	}

	doc.Indent(2)
	_, err := doc.WriteTo(w)
	return err
}

func writeXMLNode(parent *etree.Element, n *content.Node) {
	for _, key := range n.Keys() {
		child := n.Child(key)
		if child.IsLeaf() {
			el := parent.CreateElement("string")
			el.CreateAttr("name", key)
			el.SetText(child.Value())
			continue
		}
		el := parent.CreateElement("group")
		el.CreateAttr("name", key)
		writeXMLNode(el, child)
	}
}
