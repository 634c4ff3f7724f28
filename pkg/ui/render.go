package ui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/marcus/modalkit/pkg/ui/mouse"
)

// DefaultWindowWidth is the width of a window without a width style.
const DefaultWindowWidth = 50

type region struct {
	el         *Element
	x, y, w, h int
}

// block is a laid-out element: rendered lines plus the regions of the
// elements inside it, relative to the block's top-left cell.
type block struct {
	lines   []string
	regions []region
}

func (b *block) height() int { return len(b.lines) }

func (b *block) stack(o block) {
	off := len(b.lines)
	b.lines = append(b.lines, o.lines...)
	for _, r := range o.regions {
		r.y += off
		b.regions = append(b.regions, r)
	}
}

type renderer struct {
	markdown map[int]*glamour.TermRenderer
}

func newRenderer() *renderer {
	return &renderer{markdown: make(map[int]*glamour.TermRenderer)}
}

// View draws the document into a frame of the viewport size and, when hits
// is non-nil, replaces its regions with those of the new frame.
func (d *Document) View(hits *mouse.HitMap) string {
	w, h := d.width, d.height
	if w <= 0 || h <= 0 {
		return ""
	}
	canvas := make([]string, h)
	for i := range canvas {
		canvas[i] = strings.Repeat(" ", w)
	}

	var regions []region
	for _, child := range d.Body.children {
		if child.Hidden {
			continue
		}
		switch {
		case child.HasClass("modal-overlay"):
			shade := Overlay.Render(strings.Repeat(overlayRune(child), w))
			for i := range canvas {
				canvas[i] = shade
			}
			regions = append(regions, region{el: child, w: w, h: h})

		case child.HasClass("modal-tray"):
			b := d.renderer.inlineRow(child.children, w)
			y := h - b.height()
			for i, line := range b.lines {
				if y+i >= 0 {
					canvas[y+i] = splice(canvas[y+i], 0, line, w)
				}
			}
			for _, r := range b.regions {
				r.y += y
				regions = append(regions, r)
			}

		default:
			b, x, y := d.renderer.window(child, w, h)
			for i, line := range b.lines {
				if row := y + i; row >= 0 && row < h {
					canvas[row] = splice(canvas[row], x, line, w)
				}
			}
			for _, r := range b.regions {
				r.x += x
				r.y += y
				regions = append(regions, r)
			}
		}
	}

	if hits != nil {
		hits.Clear()
		for _, r := range regions {
			id := r.el.ID
			if id == "" {
				id = r.el.Tag
			}
			hits.AddRect(id, r.x, r.y, r.w, r.h, r.el)
		}
	}
	return strings.Join(canvas, "\n")
}

// Measure returns the rendered size of el in cells.
func (d *Document) Measure(el *Element) (int, int) {
	if el == nil || el.Hidden {
		return 0, 0
	}
	if el.parent == d.Body {
		if el.HasClass("modal-tray") {
			b := d.renderer.inlineRow(el.children, d.width)
			if b.height() == 0 {
				return 0, 0
			}
			return d.width, b.height()
		}
		b, _, _ := d.renderer.window(el, d.width, d.height)
		return blockWidth(b), b.height()
	}

	root := el
	for root.parent != nil && root.parent != d.Body {
		root = root.parent
	}
	width := d.width
	if root.HasClass("modal") {
		width = windowWidth(root, d.width) - 4
	}
	b := d.renderer.layout(el, width)
	return width, b.height()
}

func overlayRune(el *Element) string {
	op, err := strconv.ParseFloat(styleOr(el, "opacity", "0.6"), 64)
	if err != nil {
		op = 0.6
	}
	switch {
	case op < 0.34:
		return "░"
	case op < 0.67:
		return "▒"
	default:
		return "▓"
	}
}

func windowWidth(el *Element, vw int) int {
	w := styleInt(el, "width", DefaultWindowWidth)
	if w > vw {
		w = vw
	}
	if w < 8 {
		w = 8
	}
	return w
}

// window renders a top-level element and returns it with its position.
func (r *renderer) window(el *Element, vw, vh int) (block, int, int) {
	if !el.HasClass("modal") {
		b := r.layout(el, vw)
		return b, styleInt(el, "left", 0), styleInt(el, "top", 0)
	}

	width := windowWidth(el, vw)
	inner := width - 4
	var content block
	for _, c := range el.children {
		content.stack(r.layout(c, inner))
	}

	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor(el)).
		Padding(0, 1).
		Width(width - 2)

	_, hasTop := el.Style("top")
	_, hasBottom := el.Style("bottom")
	if hasTop && hasBottom {
		h := vh - styleInt(el, "top", 0) - styleInt(el, "bottom", 0) - 2
		if h < 1 {
			h = 1
		}
		if len(content.lines) > h {
			content.lines = content.lines[:h]
		}
		style = style.Height(h)
	}

	box := strings.Split(style.Render(strings.Join(content.lines, "\n")), "\n")
	out := block{lines: box}
	out.regions = append(out.regions, region{el: el, w: width, h: len(box)})
	for _, reg := range content.regions {
		if reg.y >= len(box)-2 {
			continue
		}
		reg.x += 2
		reg.y++
		out.regions = append(out.regions, reg)
	}

	x := styleInt(el, "left", 0)
	if _, ok := el.Style("right"); ok {
		if _, ok := el.Style("left"); !ok {
			x = vw - width - styleInt(el, "right", 0)
		}
	}
	y := styleInt(el, "top", 0)
	if _, ok := el.Style("bottom"); ok && !hasTop {
		y = vh - len(box) - styleInt(el, "bottom", 0)
	}
	return out, x, y
}

var inlineTags = map[string]bool{
	"#text": true, "span": true, "a": true, "b": true, "strong": true, "em": true,
	"i": true, "code": true, "button": true, "label": true, "small": true,
}

func isInline(el *Element) bool { return inlineTags[el.Tag] }

func isInteractive(el *Element) bool {
	switch el.Tag {
	case "button", "a":
		return true
	case "span":
		return el.ID != "" || len(el.classes) > 0
	}
	return false
}

// layout renders el at the given width.
func (r *renderer) layout(el *Element, width int) block {
	if el.Hidden || width <= 0 {
		return block{}
	}
	switch el.Tag {
	case "#text":
		return block{lines: wrap(el.Text, width)}
	case "script", "link", "style", "meta", "source":
		return block{}
	case "br":
		return block{lines: []string{""}}
	case "img", "video", "iframe", "audio":
		label := el.Attr("alt")
		if label == "" {
			label = el.Attr("title")
		}
		if label == "" {
			label = el.Attr("src")
		}
		line := ansi.Truncate(Subtitle.Render("["+mediaLabel(el.Tag)+": "+label+"]"), width, "…")
		return block{
			lines:   []string{line},
			regions: []region{{el: el, w: lipgloss.Width(line), h: 1}},
		}
	}
	if isInline(el) {
		return r.inlineRow([]*Element{el}, width)
	}

	var b block
	switch {
	case el.HasClass("modal-header"):
		b = r.header(el, width)
	case el.HasClass("markdown"):
		b = block{lines: r.renderMarkdown(el.Text, width)}
	default:
		if el.Text != "" {
			b.lines = wrap(el.Text, width)
		}
		var run []*Element
		flush := func() {
			if len(run) > 0 {
				b.stack(r.inlineRow(run, width))
				run = nil
			}
		}
		for _, c := range el.children {
			if isInline(c) {
				run = append(run, c)
				continue
			}
			flush()
			b.stack(r.layout(c, width))
		}
		flush()
	}

	if style, ok := textStyle(el); ok {
		for i, line := range b.lines {
			b.lines[i] = style.Render(line)
		}
	}
	if el.Tag == "li" {
		for i, line := range b.lines {
			prefix := "  "
			if i == 0 {
				prefix = "• "
			}
			b.lines[i] = prefix + line
		}
	}

	if n := styleInt(el, "padding-top", 0); n > 0 {
		pad := make([]string, n)
		b.lines = append(pad, b.lines...)
		for i := range b.regions {
			b.regions[i].y += n
		}
	}
	if n := styleInt(el, "padding-bottom", 0); n > 0 {
		b.lines = append(b.lines, make([]string, n)...)
	}
	if limit := styleInt(el, "max-height", 0); limit > 0 && len(b.lines) > limit {
		b.lines = b.lines[:limit]
		b.lines[limit-1] = Subtitle.Render("↓ more")
		kept := b.regions[:0]
		for _, reg := range b.regions {
			if reg.y < limit-1 {
				kept = append(kept, reg)
			}
		}
		b.regions = kept
	}

	b.regions = append([]region{{el: el, w: width, h: len(b.lines)}}, b.regions...)
	return b
}

// header lays out the title block with the window actions on its first line.
func (r *renderer) header(el *Element, width int) block {
	var actions block
	var body block
	for _, c := range el.children {
		if c.HasClass("modal-actions") {
			actions = r.inlineRow(c.children, width)
			continue
		}
		body.stack(r.layout(c, width))
	}
	if actions.height() == 0 {
		return body
	}
	aw := blockWidth(actions)
	if len(body.lines) == 0 {
		body.lines = []string{""}
	}
	first := ansi.Truncate(body.lines[0], width-aw-1, "…")
	body.lines[0] = first + strings.Repeat(" ", max(0, width-aw-lipgloss.Width(first))) + actions.lines[0]
	for _, reg := range actions.regions {
		reg.x += width - aw
		body.regions = append(body.regions, reg)
	}
	return body
}

// inlineRow lays out inline elements left to right. Runs of plain text are
// wrapped as a paragraph; runs with interactive elements are placed item by
// item so each keeps its own hit region.
func (r *renderer) inlineRow(items []*Element, width int) block {
	var visible []*Element
	interactive := false
	for _, it := range items {
		if it.Hidden {
			continue
		}
		visible = append(visible, it)
		if isInteractive(it) || it.HasClass("modal-chip") {
			interactive = true
		}
	}
	if len(visible) == 0 {
		return block{}
	}

	if !interactive {
		var sb strings.Builder
		for _, it := range visible {
			sb.WriteString(inlineText(it))
		}
		return block{lines: wrap(sb.String(), width)}
	}

	var b block
	line := ""
	x := 0
	for _, it := range visible {
		s := ansi.Truncate(inlineText(it), width, "…")
		w := lipgloss.Width(s)
		if w == 0 {
			continue
		}
		gap := 0
		if x > 0 && it.Tag != "#text" {
			gap = 1
		}
		if x+gap+w > width && x > 0 {
			b.lines = append(b.lines, line)
			line, x, gap = "", 0, 0
		}
		line += strings.Repeat(" ", gap) + s
		if it.Tag != "#text" {
			b.regions = append(b.regions, region{el: it, x: x + gap, y: len(b.lines), w: w, h: 1})
		}
		x += gap + w
	}
	b.lines = append(b.lines, line)
	return b
}

func inlineText(el *Element) string {
	text := el.TextContent()
	switch {
	case el.Tag == "#text":
		return text
	case el.Tag == "button":
		return buttonStyle(el).Render(strings.TrimSpace(text))
	case el.HasClass("modal-chip"):
		return Chip.Render(strings.TrimSpace(text))
	case el.HasClass("modal-close"), el.HasClass("modal-minimize"):
		return WindowAction.Render(strings.TrimSpace(text))
	case el.Tag == "b", el.Tag == "strong":
		return lipgloss.NewStyle().Bold(true).Render(text)
	case el.Tag == "em", el.Tag == "i":
		return lipgloss.NewStyle().Italic(true).Render(text)
	case el.Tag == "a":
		return lipgloss.NewStyle().Underline(true).Foreground(Info).Render(text)
	case el.Tag == "code":
		return lipgloss.NewStyle().Foreground(Warning).Render(text)
	}
	return text
}

func textStyle(el *Element) (lipgloss.Style, bool) {
	for class, style := range alertStyles {
		if el.HasClass(class) {
			return style, true
		}
	}
	switch el.Tag {
	case "h1", "h3", "h4":
		return Title, true
	case "h2", "h5", "h6", "small":
		return Subtitle, true
	}
	return lipgloss.Style{}, false
}

func (r *renderer) renderMarkdown(text string, width int) []string {
	tr, ok := r.markdown[width]
	if !ok {
		var err error
		tr, err = glamour.NewTermRenderer(
			glamour.WithStandardStyle("dark"),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return wrap(text, width)
		}
		r.markdown[width] = tr
	}
	out, err := tr.Render(text)
	if err != nil {
		return wrap(text, width)
	}
	return strings.Split(strings.Trim(out, "\n"), "\n")
}

func mediaLabel(tag string) string {
	switch tag {
	case "img":
		return "image"
	default:
		return tag
	}
}

func wrap(text string, width int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	return strings.Split(lipgloss.NewStyle().Width(width).Render(text), "\n")
}

func blockWidth(b block) int {
	w := 0
	for _, l := range b.lines {
		w = max(w, lipgloss.Width(l))
	}
	return w
}

// splice overwrites bg with fg starting at cell x, keeping the rest of bg.
func splice(bg string, x int, fg string, width int) string {
	if x < 0 {
		fg = ansi.TruncateLeft(fg, -x, "")
		x = 0
	}
	if x >= width {
		return bg
	}
	fg = ansi.Truncate(fg, width-x, "")
	fw := ansi.StringWidth(fg)
	left := ansi.Truncate(bg, x, "")
	if pad := x - ansi.StringWidth(left); pad > 0 {
		left += strings.Repeat(" ", pad)
	}
	right := ansi.TruncateLeft(bg, x+fw, "")
	return left + fg + right
}

func styleOr(el *Element, prop, def string) string {
	if v, ok := el.Style(prop); ok {
		return v
	}
	return def
}

func styleInt(el *Element, prop string, def int) int {
	v, ok := el.Style(prop)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimSpace(v), "px"))
	if err != nil {
		return def
	}
	return n
}
