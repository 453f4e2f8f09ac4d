package dom

import (
	"strings"

	"golang.org/x/net/html"
)

// htmlNode adapts a parsed golang.org/x/net/html element to Node.
// Inline styles come from the style attribute; there is no cascade.
type htmlNode struct {
	n *html.Node
}

// ParseHTML parses a document or fragment and returns its root.
func ParseHTML(src string) (*html.Node, error) {
	return html.Parse(strings.NewReader(src))
}

// Wrap adapts an element node. Non-element nodes yield nil.
func Wrap(n *html.Node) Node {
	if n == nil || n.Type != html.ElementNode {
		return nil
	}

	return htmlNode{n: n}
}

// Find returns the first element (document order) whose id attribute equals id.
func Find(root *html.Node, id string) Node {
	var found *html.Node

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if found != nil {
			return
		}

		if n.Type == html.ElementNode {
			for _, a := range n.Attr {
				if a.Key == "id" && a.Val == id {
					found = n

					return
				}
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	return Wrap(found)
}

func (h htmlNode) Tag() string { return strings.ToLower(h.n.Data) }

func (h htmlNode) Attr(name string) (string, bool) {
	for _, a := range h.n.Attr {
		if a.Key == name {
			return a.Val, true
		}
	}

	return "", false
}

func (h htmlNode) InlineStyle(property string) string {
	style, ok := h.Attr("style")
	if !ok {
		return ""
	}

	for _, decl := range strings.Split(style, ";") {
		key, value, found := strings.Cut(decl, ":")
		if !found {
			continue
		}

		if strings.EqualFold(strings.TrimSpace(key), property) {
			return strings.TrimSpace(value)
		}
	}

	return ""
}

func (h htmlNode) Text() string {
	var sb strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(h.n)

	return sb.String()
}

func (h htmlNode) Parent() Node {
	p := h.n.Parent
	if p == nil || p.Type != html.ElementNode {
		return nil
	}

	return htmlNode{n: p}
}
