package ui

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ParseMarkup parses an HTML fragment into detached elements. Text between
// elements becomes anonymous "#text" elements so ordering survives.
func ParseMarkup(markup string) ([]*Element, error) {
	ctx := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(markup), ctx)
	if err != nil {
		return nil, fmt.Errorf("parse markup: %w", err)
	}
	var out []*Element
	for _, n := range nodes {
		if el := convertNode(n); el != nil {
			out = append(out, el)
		}
	}
	return out, nil
}

func convertNode(n *html.Node) *Element {
	switch n.Type {
	case html.TextNode:
		text := collapseSpace(n.Data)
		if strings.TrimSpace(text) == "" {
			return nil
		}
		return &Element{Tag: "#text", Text: text}
	case html.ElementNode:
		el := NewElement(n.Data)
		for _, a := range n.Attr {
			switch a.Key {
			case "id":
				el.ID = a.Val
			case "class":
				el.AddClass(a.Val)
			case "style":
				for _, decl := range strings.Split(a.Val, ";") {
					if k, v, ok := strings.Cut(decl, ":"); ok {
						el.SetStyle(strings.TrimSpace(k), strings.TrimSpace(v))
					}
				}
			case "hidden":
				el.Hidden = true
			default:
				el.SetAttr(a.Key, a.Val)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			el.Append(convertNode(c))
		}
		return el
	}
	return nil
}

func collapseSpace(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return s
	}
	out := strings.Join(fields, " ")
	if strings.HasPrefix(s, " ") || strings.HasPrefix(s, "\n") {
		out = " " + out
	}
	if strings.HasSuffix(s, " ") || strings.HasSuffix(s, "\n") {
		out += " "
	}
	return out
}

// InnerMarkup serializes the children of e back to HTML.
func (e *Element) InnerMarkup() string {
	var sb strings.Builder
	if e.Text != "" && e.Tag != "#text" {
		sb.WriteString(html.EscapeString(e.Text))
	}
	for _, c := range e.children {
		c.writeMarkup(&sb)
	}
	return sb.String()
}

// OuterMarkup serializes e and its children to HTML.
func (e *Element) OuterMarkup() string {
	var sb strings.Builder
	e.writeMarkup(&sb)
	return sb.String()
}

var voidElements = map[string]bool{
	"img": true, "br": true, "hr": true, "input": true, "link": true, "meta": true, "source": true,
}

func (e *Element) writeMarkup(sb *strings.Builder) {
	if e.Tag == "#text" {
		sb.WriteString(html.EscapeString(e.Text))
		return
	}
	sb.WriteString("<" + e.Tag)
	if e.ID != "" {
		fmt.Fprintf(sb, ` id="%s"`, html.EscapeString(e.ID))
	}
	if len(e.classes) > 0 {
		fmt.Fprintf(sb, ` class="%s"`, html.EscapeString(strings.Join(e.classes, " ")))
	}
	if len(e.styles) > 0 {
		keys := make([]string, 0, len(e.styles))
		for k := range e.styles {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		decls := make([]string, 0, len(keys))
		for _, k := range keys {
			decls = append(decls, k+": "+e.styles[k])
		}
		fmt.Fprintf(sb, ` style="%s"`, html.EscapeString(strings.Join(decls, "; ")))
	}
	if len(e.attrs) > 0 {
		keys := make([]string, 0, len(e.attrs))
		for k := range e.attrs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(sb, ` %s="%s"`, k, html.EscapeString(e.attrs[k]))
		}
	}
	if e.Hidden {
		sb.WriteString(" hidden")
	}
	sb.WriteString(">")
	if voidElements[e.Tag] {
		return
	}
	sb.WriteString(e.InnerMarkup())
	sb.WriteString("</" + e.Tag + ">")
}
