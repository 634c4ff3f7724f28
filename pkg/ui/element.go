package ui

import (
	"slices"
	"strings"
)

// Element is a node in the host document. Its fields are mutated directly by
// the single event loop that owns the document.
type Element struct {
	Tag    string
	ID     string
	Text   string
	Hidden bool

	classes  []string
	styles   map[string]string
	attrs    map[string]string
	children []*Element
	parent   *Element
}

// NewElement creates a detached element.
func NewElement(tag string, classes ...string) *Element {
	el := &Element{Tag: strings.ToLower(tag)}
	el.AddClass(classes...)
	return el
}

// AddClass adds classes that are not already present, keeping order.
func (e *Element) AddClass(classes ...string) *Element {
	for _, c := range classes {
		for _, f := range strings.Fields(c) {
			if !e.HasClass(f) {
				e.classes = append(e.classes, f)
			}
		}
	}
	return e
}

// RemoveClass drops the given classes.
func (e *Element) RemoveClass(classes ...string) *Element {
	e.classes = slices.DeleteFunc(e.classes, func(c string) bool {
		return slices.Contains(classes, c)
	})
	return e
}

// HasClass reports whether the element carries class c.
func (e *Element) HasClass(c string) bool {
	return slices.Contains(e.classes, c)
}

// Classes returns a copy of the class list.
func (e *Element) Classes() []string {
	return slices.Clone(e.classes)
}

// SetStyle sets an inline style property.
func (e *Element) SetStyle(prop, value string) *Element {
	if e.styles == nil {
		e.styles = make(map[string]string)
	}
	e.styles[prop] = value
	return e
}

// RemoveStyle clears inline style properties.
func (e *Element) RemoveStyle(props ...string) *Element {
	for _, p := range props {
		delete(e.styles, p)
	}
	return e
}

// Style returns an inline style property and whether it is set.
func (e *Element) Style(prop string) (string, bool) {
	v, ok := e.styles[prop]
	return v, ok
}

// Styles returns a copy of the inline styles.
func (e *Element) Styles() map[string]string {
	out := make(map[string]string, len(e.styles))
	for k, v := range e.styles {
		out[k] = v
	}
	return out
}

// Attr returns an attribute value, or "" when unset.
func (e *Element) Attr(name string) string {
	return e.attrs[name]
}

// SetAttr sets an attribute.
func (e *Element) SetAttr(name, value string) *Element {
	if e.attrs == nil {
		e.attrs = make(map[string]string)
	}
	e.attrs[name] = value
	return e
}

// Children returns the direct children.
func (e *Element) Children() []*Element {
	return e.children
}

// Parent returns the parent, or nil for detached and root elements.
func (e *Element) Parent() *Element {
	return e.parent
}

// Append attaches children at the end, detaching them from any previous
// parent first.
func (e *Element) Append(children ...*Element) *Element {
	for _, c := range children {
		if c == nil {
			continue
		}
		c.Remove()
		c.parent = e
		e.children = append(e.children, c)
	}
	return e
}

// InsertBefore attaches child directly before ref. When ref is not a child
// of e the child is appended.
func (e *Element) InsertBefore(child, ref *Element) *Element {
	child.Remove()
	i := slices.Index(e.children, ref)
	if i < 0 {
		return e.Append(child)
	}
	child.parent = e
	e.children = slices.Insert(e.children, i, child)
	return e
}

// Remove detaches the element from its parent.
func (e *Element) Remove() {
	if e.parent == nil {
		return
	}
	p := e.parent
	p.children = slices.DeleteFunc(p.children, func(c *Element) bool { return c == e })
	e.parent = nil
}

// Empty removes every child.
func (e *Element) Empty() {
	for _, c := range e.children {
		c.parent = nil
	}
	e.children = nil
	e.Text = ""
}

// Contains reports whether other is e or one of its descendants.
func (e *Element) Contains(other *Element) bool {
	for n := other; n != nil; n = n.parent {
		if n == e {
			return true
		}
	}
	return false
}

// Walk visits e and its descendants depth first. Returning false from fn
// skips the node's children.
func (e *Element) Walk(fn func(*Element) bool) {
	if !fn(e) {
		return
	}
	for _, c := range slices.Clone(e.children) {
		c.Walk(fn)
	}
}

// Find returns the descendants of e matching selector, in document order.
func (e *Element) Find(selector string) []*Element {
	sel := ParseSelector(selector)
	var out []*Element
	for _, c := range e.children {
		c.Walk(func(n *Element) bool {
			if sel.Match(n) {
				out = append(out, n)
			}
			return true
		})
	}
	return out
}

// First returns the first descendant matching selector, or nil.
func (e *Element) First(selector string) *Element {
	if found := e.Find(selector); len(found) > 0 {
		return found[0]
	}
	return nil
}

// Visible reports whether e and all its ancestors are shown.
func (e *Element) Visible() bool {
	for n := e; n != nil; n = n.parent {
		if n.Hidden {
			return false
		}
	}
	return true
}

// TextContent returns the concatenated text of e and its descendants.
func (e *Element) TextContent() string {
	var sb strings.Builder
	e.Walk(func(n *Element) bool {
		sb.WriteString(n.Text)
		return true
	})
	return sb.String()
}
