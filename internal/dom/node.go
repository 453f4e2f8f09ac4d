// Package dom holds the browser-independent view of a DOM node and the
// overlay heuristics that run over it.
package dom

// Node is the subset of a DOM element the overlay heuristics need.
// Tag is lower-case; Text is the node's full text content.
type Node interface {
	Tag() string
	Attr(name string) (string, bool)
	InlineStyle(property string) string
	Text() string
	Parent() Node
}

func attr(n Node, name string) string {
	v, _ := n.Attr(name)

	return v
}
