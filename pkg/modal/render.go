package modal

import (
	"html"
	"strconv"

	"github.com/marcus/modalkit/internal/i18n"
	"github.com/marcus/modalkit/pkg/ui"
)

// mediaSelector matches the embedded resources a render waits for.
const mediaSelector = "img, video, iframe, audio, script, link"

// Render builds the dialog's elements and inserts them into the container.
// When the content embeds media, the rest of the work (showing, fitting,
// the OnRender hook, overlay, handlers, centering and the render and load
// events) runs once every media element reports back. Calling Render again
// while that wait is pending returns ErrRenderPending.
func (d *Dialog) Render() error {
	if d.closed {
		return ErrClosed
	}
	if d.rendering {
		d.log.Log("render rejected: waiting for media", "pending", len(d.pending))
		return ErrRenderPending
	}
	if old := d.root; old != nil {
		d.unbindAll()
		d.doc.Undraggable(old)
		old.Remove()
	}

	root := d.build()
	container := d.doc.QueryOne(d.opts.Container)
	if container == nil {
		d.log.Log("container not found, using body", "container", d.opts.Container)
		container = d.doc.Body
	}
	container.Append(root)
	d.root = root

	media := root.Find(mediaSelector)
	if len(media) == 0 || d.env.Media == nil {
		d.complete()
		return nil
	}

	d.rendering = true
	d.pending = make(map[*ui.Element]bool, len(media))
	for _, el := range media {
		d.pending[el] = true
	}
	loop := d.doc.Loop()
	for _, el := range media {
		d.env.Media.Load(loop, el, func(err error) { d.mediaDone(root, el, err) })
	}
	return nil
}

func (d *Dialog) mediaDone(root, el *ui.Element, err error) {
	if d.root != root || !d.pending[el] {
		return
	}
	delete(d.pending, el)
	if err != nil {
		el.AddClass("media-error")
		d.log.Log("media failed", "tag", el.Tag, "err", err)
	}
	if len(d.pending) > 0 {
		return
	}
	d.rendering = false
	d.pending = nil
	d.complete()
}

// build creates the window skeleton and fills it from the options.
func (d *Dialog) build() *ui.Element {
	root := ui.NewElement("div", "modal")
	root.Hidden = true

	header := ui.NewElement("div", "modal-header")
	body := ui.NewElement("div", "modal-body")
	body.SetStyle("padding-top", "1").SetStyle("padding-bottom", "1")
	alert := ui.NewElement("div", "modal-alert")
	alert.Hidden = true
	content := ui.NewElement("div", "modal-content")
	body.Append(alert, content)
	root.Append(header, body)

	d.buildHeader(header)
	d.buildContent(content)
	if d.opts.Footer != "" || len(d.opts.Buttons) > 0 {
		footer := ui.NewElement("div", "modal-footer")
		d.buildFooter(footer)
		root.Append(footer)
	}

	root.AddClass(d.opts.Theme, d.opts.Class)
	if d.opts.Width > 0 {
		root.SetStyle("width", strconv.Itoa(d.opts.Width))
	}

	if d.opts.Draggable {
		hooks := ui.DragHooks{
			OnStart: func(el *ui.Element) { el.RemoveStyle("right") },
			OnStop:  d.dragStopped,
		}
		if !d.doc.Draggable(root, ".modal-header", hooks) {
			d.log.Log("host cannot drag; dialog stays fixed")
		}
	}

	root.ID = d.dialogID
	return root
}

func (d *Dialog) buildHeader(header *ui.Element) {
	title := ui.NewElement("h1", "modal-title")
	title.Text = d.opts.Title
	header.Append(title)
	if d.opts.Subtitle != "" {
		sub := ui.NewElement("h2", "modal-subtitle")
		sub.Text = d.opts.Subtitle
		header.Append(sub)
	}

	actions := ui.NewElement("div", "modal-actions")
	if d.opts.Minimizable {
		m := ui.NewElement("span", "modal-minimize")
		m.Text = "_"
		actions.Append(m)
	}
	if d.opts.Closable {
		c := ui.NewElement("span", "modal-close")
		c.Text = "×"
		actions.Append(c)
	}
	if len(actions.Children()) > 0 {
		header.Append(actions)
	}
}

func (d *Dialog) buildContent(content *ui.Element) {
	markup := d.opts.Content
	if sel := d.opts.ContentSelector; sel != "" {
		if src := d.doc.QueryOne(sel); src != nil {
			markup = src.InnerMarkup()
		} else {
			d.log.Log("content selector matched nothing", "selector", sel)
			markup = d.notFoundMarkup()
		}
	}

	if d.opts.Markdown {
		content.AddClass("markdown")
		content.Text = markup
		return
	}
	nodes, err := ui.ParseMarkup(markup)
	if err != nil {
		d.log.Log("content is not valid markup, showing as text", "err", err)
		content.Text = markup
		return
	}
	content.Append(nodes...)
}

func (d *Dialog) buildFooter(footer *ui.Element) {
	if d.opts.Footer != "" {
		if len(d.opts.Buttons) > 0 {
			d.log.Log("footer markup set, buttons ignored", "buttons", len(d.opts.Buttons))
		}
		nodes, err := ui.ParseMarkup(d.opts.Footer)
		if err != nil {
			footer.Text = d.opts.Footer
			return
		}
		footer.Append(nodes...)
		return
	}
	for _, b := range d.opts.Buttons {
		btn := ui.NewElement("button", "modal-button", b.Class)
		btn.Text = b.Label
		btn.SetAttr("data-value", b.value())
		if b.Close {
			btn.SetAttr("data-close", "true")
		}
		footer.Append(btn)
	}
}

// SetContentFromSelector takes the dialog's content from the inner markup
// of the first element matching selector and renders. A selector matching
// nothing renders the translated "not found" message instead.
func (d *Dialog) SetContentFromSelector(selector string) error {
	d.opts.ContentSelector = selector
	if selector == "" {
		d.opts.Content = d.notFoundMarkup()
	}
	return d.Render()
}

// complete is the tail of Render once media has loaded.
func (d *Dialog) complete() {
	if d.opts.ShowOnLoad {
		d.Show()
	}
	if d.opts.FitToMedia {
		d.fitToMedia()
	}
	if d.opts.OnRender != nil {
		d.opts.OnRender(d)
	}
	if d.root == nil {
		// Closed by the hook.
		return
	}

	switch {
	case d.root.First("img") != nil:
		d.root.AddClass("modal-photo")
	case d.root.First("video") != nil:
		d.root.AddClass("modal-video")
	case d.root.First("iframe") != nil:
		d.root.AddClass("modal-iframe")
	}

	d.renderOverlay()
	d.bindHandlers()
	if d.opts.Center {
		d.Center()
	}
	d.emit(EventRender, nil)
	d.emit(EventLoad, nil)
}

func (d *Dialog) renderOverlay() {
	if d.opts.NoOverlay {
		return
	}
	if d.overlay == nil {
		ov := ui.NewElement("div", "modal-overlay")
		ov.ID = d.overlayID
		ov.Hidden = true
		d.overlay = ov
	}
	d.overlay.SetStyle("opacity", strconv.FormatFloat(d.opts.Overlay, 'f', -1, 64))

	// The overlay sits directly below the window in paint order.
	top := d.root
	for top.Parent() != nil && top.Parent() != d.doc.Body {
		top = top.Parent()
	}
	d.doc.Body.InsertBefore(d.overlay, top)
	if d.visible {
		d.ShowOverlay()
	}
}

// fitToMedia widens the window to the widest embedded media.
func (d *Dialog) fitToMedia() {
	widest := 0
	for _, el := range d.root.Find(mediaSelector) {
		if w, err := strconv.Atoi(el.Attr("width")); err == nil && w > widest {
			widest = w
		}
	}
	if widest > 0 {
		d.root.SetStyle("width", strconv.Itoa(widest+4))
	}
}

func (d *Dialog) notFoundMarkup() string {
	return "<p>" + html.EscapeString(i18n.T(d.lang(), i18n.ContentNotFound)) + "</p>"
}

func (d *Dialog) lang() string {
	if d.opts.Lang != "" {
		return d.opts.Lang
	}
	return d.env.Lang
}
