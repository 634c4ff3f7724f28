// Package ui is the host environment dialogs live in: a retained element
// tree with native event bindings, focus tracking, timed animations and a
// lipgloss renderer, driven by a bubbletea program through App.
package ui

import (
	"time"

	"github.com/marcus/modalkit/pkg/eventbus"
)

// Animation durations by speed token.
const (
	SpeedFast    = 200 * time.Millisecond
	SpeedDefault = 400 * time.Millisecond
	SpeedSlow    = 600 * time.Millisecond
)

// SpeedDuration maps a speed token to a duration. Unknown tokens use the
// default speed.
func SpeedDuration(token string) time.Duration {
	switch token {
	case "fast":
		return SpeedFast
	case "slow":
		return SpeedSlow
	case "none", "instant":
		return 0
	default:
		return SpeedDefault
	}
}

// Capabilities lists optional host features.
type Capabilities struct {
	Drag bool
}

// DragHooks are called while a draggable element moves.
type DragHooks struct {
	OnStart func(el *Element)
	OnDrag  func(el *Element)
	OnStop  func(el *Element)
}

type draggable struct {
	handle string
	hooks  DragHooks
}

type binding struct {
	id       eventbus.HostBinding
	selector string
	sel      Selector
	name     string
	fn       eventbus.Listener
}

// Document is the root of the element tree plus its event plumbing. It
// implements eventbus.Host. A Document is not safe for concurrent use.
type Document struct {
	Body *Element

	width, height int
	loop          Loop
	caps          Capabilities

	bindings []binding
	nextID   eventbus.HostBinding

	active     *Element
	draggables map[*Element]draggable
	renderer   *renderer

	// fades maps an element to the sequence number of its latest fade.
	fades   map[*Element]uint64
	fadeSeq uint64
}

// NewDocument creates an empty document with the given viewport size.
func NewDocument(width, height int, loop Loop, caps Capabilities) *Document {
	if loop == nil {
		loop = NewManualLoop()
	}
	return &Document{
		Body:       NewElement("body"),
		width:      width,
		height:     height,
		loop:       loop,
		caps:       caps,
		draggables: make(map[*Element]draggable),
		fades:      make(map[*Element]uint64),
		renderer:   newRenderer(),
	}
}

// Loop returns the scheduler driving the document.
func (d *Document) Loop() Loop { return d.loop }

// SetLoop replaces the scheduler.
func (d *Document) SetLoop(l Loop) { d.loop = l }

// Capabilities returns the optional features the host provides.
func (d *Document) Capabilities() Capabilities { return d.caps }

// Size returns the viewport size in cells.
func (d *Document) Size() (int, int) { return d.width, d.height }

// Resize changes the viewport and fires "resize" on the window.
func (d *Document) Resize(width, height int) {
	d.width, d.height = width, height
	d.Fire(WindowSelector, &eventbus.Event{Type: "resize"})
}

// Query returns every element in the document matching selector.
func (d *Document) Query(selector string) []*Element {
	return d.Body.Find(selector)
}

// QueryOne returns the first element matching selector, or nil. "body"
// resolves to the body itself.
func (d *Document) QueryOne(selector string) *Element {
	if selector == "body" || selector == "" {
		return d.Body
	}
	return d.Body.First(selector)
}

// ByID returns the element with the given id, or nil.
func (d *Document) ByID(id string) *Element {
	return d.Body.First("#" + id)
}

// Bind implements eventbus.Host.
func (d *Document) Bind(selector, name string, fn eventbus.Listener) eventbus.HostBinding {
	d.nextID++
	d.bindings = append(d.bindings, binding{
		id:       d.nextID,
		selector: selector,
		sel:      ParseSelector(selector),
		name:     name,
		fn:       fn,
	})
	return d.nextID
}

// Unbind implements eventbus.Host.
func (d *Document) Unbind(selector, name string, id eventbus.HostBinding) bool {
	for i, b := range d.bindings {
		if b.id == id && b.selector == selector && b.name == name {
			d.bindings = append(d.bindings[:i], d.bindings[i+1:]...)
			return true
		}
	}
	return false
}

// UnbindAll implements eventbus.Host.
func (d *Document) UnbindAll(selector, name string) {
	kept := d.bindings[:0]
	for _, b := range d.bindings {
		if b.selector == selector && (name == "" || b.name == name) {
			continue
		}
		kept = append(kept, b)
	}
	d.bindings = kept
}

// BindingCount returns the number of live native bindings.
func (d *Document) BindingCount() int { return len(d.bindings) }

// Fire implements eventbus.Host: e is dispatched to every element matching
// selector, or to the window/document pseudo targets.
func (d *Document) Fire(selector string, e *eventbus.Event) {
	switch selector {
	case WindowSelector, DocumentSelector:
		d.invoke(selector, nil, e)
		return
	}
	for _, el := range d.Query(selector) {
		d.Dispatch(el, e)
	}
}

// Dispatch delivers e at el and bubbles it up to the body and then to the
// document. A listener returning false stops bubbling and prevents the
// default action.
func (d *Document) Dispatch(el *Element, e *eventbus.Event) {
	if e.Target == nil {
		e.Target = el
	}
	for n := el; n != nil; n = n.parent {
		if !d.invoke("", n, e) {
			return
		}
	}
	d.invoke(DocumentSelector, nil, e)
}

// invoke runs the bindings for e at one node (or pseudo target). It returns
// false when a listener stopped propagation.
func (d *Document) invoke(pseudo string, n *Element, e *eventbus.Event) bool {
	// Listeners may bind or unbind while running.
	snapshot := append([]binding(nil), d.bindings...)
	for _, b := range snapshot {
		if b.name != e.Type || !d.stillBound(b.id) {
			continue
		}
		if pseudo != "" {
			if b.selector != pseudo {
				continue
			}
		} else if !b.sel.Match(n) {
			continue
		}
		if !b.fn(e) {
			e.PreventDefault()
			return false
		}
	}
	return true
}

func (d *Document) stillBound(id eventbus.HostBinding) bool {
	for _, b := range d.bindings {
		if b.id == id {
			return true
		}
	}
	return false
}

// Focus moves input focus to el, firing "blur" on the previous element and
// "focus" on el. A nil el only blurs.
func (d *Document) Focus(el *Element) {
	if d.active == el {
		return
	}
	if prev := d.active; prev != nil {
		d.active = nil
		d.Dispatch(prev, &eventbus.Event{Type: "blur"})
	}
	if el != nil {
		d.active = el
		d.Dispatch(el, &eventbus.Event{Type: "focus"})
	}
}

// Active returns the focused element, or nil.
func (d *Document) Active() *Element { return d.active }

// IsInput reports whether el is a form field that takes typed input.
func IsInput(el *Element) bool {
	if el == nil {
		return false
	}
	switch el.Tag {
	case "input", "textarea", "select":
		return true
	}
	return el.Attr("contenteditable") == "true"
}

// FadeIn shows el now and calls done once the animation time has passed.
// A later fade of the same element supersedes this one: its completion,
// including done, is skipped.
func (d *Document) FadeIn(el *Element, speed string, done func()) {
	seq := d.claimFade(el)
	el.Hidden = false
	el.AddClass("fading-in")
	d.loop.AfterFunc(SpeedDuration(speed), func() {
		if !d.finishFade(el, seq) {
			return
		}
		el.RemoveClass("fading-in")
		if done != nil {
			done()
		}
	})
}

// FadeOut hides el once the animation time has passed, then calls done.
// Like FadeIn, it is skipped if el is faded again before it completes.
func (d *Document) FadeOut(el *Element, speed string, done func()) {
	seq := d.claimFade(el)
	el.AddClass("fading-out")
	d.loop.AfterFunc(SpeedDuration(speed), func() {
		if !d.finishFade(el, seq) {
			return
		}
		el.RemoveClass("fading-out")
		el.Hidden = true
		if done != nil {
			done()
		}
	})
}

// StopFade cancels any fade running on el and leaves its visibility as it
// is now. Callers that set Hidden directly use it so a pending fade cannot
// undo them.
func (d *Document) StopFade(el *Element) {
	el.RemoveClass("fading-in", "fading-out")
	delete(d.fades, el)
}

// Fading reports whether a fade of el is still running.
func (d *Document) Fading(el *Element) bool {
	_, ok := d.fades[el]
	return ok
}

func (d *Document) claimFade(el *Element) uint64 {
	d.StopFade(el)
	d.fadeSeq++
	d.fades[el] = d.fadeSeq
	return d.fadeSeq
}

func (d *Document) finishFade(el *Element, seq uint64) bool {
	if d.fades[el] != seq {
		return false
	}
	delete(d.fades, el)
	return true
}

// Draggable makes el movable by dragging any descendant matching handle.
// It reports false when the host has no drag capability.
func (d *Document) Draggable(el *Element, handle string, hooks DragHooks) bool {
	if !d.caps.Drag {
		return false
	}
	d.draggables[el] = draggable{handle: handle, hooks: hooks}
	return true
}

// Undraggable removes drag support from el.
func (d *Document) Undraggable(el *Element) {
	delete(d.draggables, el)
}

// dragTarget returns the draggable root whose handle contains el.
func (d *Document) dragTarget(el *Element) (*Element, draggable, bool) {
	for n := el; n != nil; n = n.parent {
		for root, dr := range d.draggables {
			if !root.Contains(n) {
				continue
			}
			if ParseSelector(dr.handle).Match(n) {
				return root, dr, true
			}
		}
	}
	return nil, draggable{}, false
}
