package dom

import (
	"goal-navigator/internal/entity"
	"strings"
)

// chainNode is a detached node rebuilt from a scan snapshot.
type chainNode struct {
	tag    string
	attrs  map[string]string
	style  map[string]string
	text   string
	parent *chainNode
}

func (c *chainNode) Tag() string { return c.tag }

func (c *chainNode) Attr(name string) (string, bool) {
	v, ok := c.attrs[name]

	return v, ok
}

func (c *chainNode) InlineStyle(property string) string { return c.style[property] }

func (c *chainNode) Text() string { return c.text }

func (c *chainNode) Parent() Node {
	if c.parent == nil {
		return nil
	}

	return c.parent
}

// Chain rebuilds a candidate and its ancestor chain as a Node.
func Chain(raw entity.RawCandidate) Node {
	var parent *chainNode

	for i := len(raw.Ancestors) - 1; i >= 0; i-- {
		a := raw.Ancestors[i]
		parent = &chainNode{
			tag:    strings.ToLower(a.Tag),
			attrs:  attrMap(a.Role, a.IDAttr, a.ClassAttr, "", a.AriaModal),
			style:  styleMap(a.Position),
			text:   a.Text,
			parent: parent,
		}
	}

	attrs := attrMap(raw.Role, raw.IDAttr, raw.ClassAttr, raw.Type, raw.AriaModal)
	if raw.AriaLabel != "" {
		attrs["aria-label"] = raw.AriaLabel
	}

	if raw.Title != "" {
		attrs["title"] = raw.Title
	}

	text := raw.FullText
	if text == "" {
		text = raw.Text
	}

	return &chainNode{
		tag:    strings.ToLower(raw.Tag),
		attrs:  attrs,
		style:  styleMap(raw.Position),
		text:   text,
		parent: parent,
	}
}

func attrMap(role, id, class, typ string, modal bool) map[string]string {
	attrs := make(map[string]string, 4)

	if role != "" {
		attrs["role"] = role
	}

	if id != "" {
		attrs["id"] = id
	}

	if class != "" {
		attrs["class"] = class
	}

	if typ != "" {
		attrs["type"] = typ
	}

	if modal {
		attrs["aria-modal"] = "true"
	}

	return attrs
}

func styleMap(position string) map[string]string {
	if position == "" {
		return nil
	}

	return map[string]string{"position": position}
}
