package ui

import "strings"

// Pseudo selectors for targets outside the element tree.
const (
	WindowSelector   = "window"
	DocumentSelector = "document"
)

// Selector is a parsed selector: a comma list of descendant chains of
// compound simple selectors (tag, #id, .class).
type Selector struct {
	chains [][]simpleSelector
}

type simpleSelector struct {
	tag     string
	id      string
	classes []string
}

// ParseSelector parses s. Unsupported syntax yields a selector that matches
// nothing.
func ParseSelector(s string) Selector {
	var sel Selector
	for _, part := range strings.Split(s, ",") {
		fields := strings.Fields(part)
		if len(fields) == 0 {
			continue
		}
		chain := make([]simpleSelector, 0, len(fields))
		for _, f := range fields {
			chain = append(chain, parseSimple(f))
		}
		sel.chains = append(sel.chains, chain)
	}
	return sel
}

func parseSimple(s string) simpleSelector {
	var ss simpleSelector
	cur := &ss.tag
	var buf strings.Builder
	flush := func() {
		if cur == nil {
			ss.classes = append(ss.classes, buf.String())
		} else {
			*cur = buf.String()
		}
		buf.Reset()
	}
	for _, r := range s {
		switch r {
		case '#':
			flush()
			cur = &ss.id
		case '.':
			flush()
			cur = nil
		default:
			buf.WriteRune(r)
		}
	}
	flush()
	ss.classes = slicesCompactEmpty(ss.classes)
	if ss.tag == "*" {
		ss.tag = ""
	}
	ss.tag = strings.ToLower(ss.tag)
	return ss
}

func slicesCompactEmpty(in []string) []string {
	out := in[:0]
	for _, s := range in {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func (s simpleSelector) match(el *Element) bool {
	if s.tag != "" && s.tag != el.Tag {
		return false
	}
	if s.id != "" && s.id != el.ID {
		return false
	}
	for _, c := range s.classes {
		if !el.HasClass(c) {
			return false
		}
	}
	return true
}

// Match reports whether el matches any chain of the selector.
func (sel Selector) Match(el *Element) bool {
	for _, chain := range sel.chains {
		if matchChain(chain, el) {
			return true
		}
	}
	return false
}

func matchChain(chain []simpleSelector, el *Element) bool {
	last := len(chain) - 1
	if !chain[last].match(el) {
		return false
	}
	i := last - 1
	for n := el.parent; n != nil && i >= 0; n = n.parent {
		if chain[i].match(n) {
			i--
		}
	}
	return i < 0
}
