// Package modal implements dialog windows on top of the ui host document:
// rendering, overlay, show and hide, edge docking, minimizing to a tray,
// transient alerts, confirmation prompts and remotely fetched content.
//
// A Dialog is driven by the document's single loop and is not safe for
// concurrent use.
package modal

import (
	"errors"
	"strconv"

	"github.com/marcus/modalkit/internal/debuglog"
	"github.com/marcus/modalkit/pkg/eventbus"
	"github.com/marcus/modalkit/pkg/ui"
)

// Events emitted on a dialog's bus.
const (
	EventRender          = "render"
	EventLoad            = "load"
	EventShow            = "show"
	EventHide            = "hide"
	EventClose           = "close"
	EventCancelClose     = "cancel_close"
	EventMinimize        = "minimize"
	EventUserAction      = "user_action"
	EventConfirmSelected = "confirm_selected"
	EventFetchContent    = "fetch_content"
)

var (
	// ErrRenderPending is returned by Render while an earlier render still
	// waits for media to load.
	ErrRenderPending = errors.New("render already in progress")
	// ErrClosed is returned when rendering a dialog that was closed.
	ErrClosed = errors.New("dialog is closed")
)

// State is the lifecycle state of a dialog.
type State int

const (
	StateUnrendered State = iota
	StateRendering
	StateVisible
	StateHidden
	StateMinimized
	StateDocked
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUnrendered:
		return "unrendered"
	case StateRendering:
		return "rendering"
	case StateVisible:
		return "visible"
	case StateHidden:
		return "hidden"
	case StateMinimized:
		return "minimized"
	case StateDocked:
		return "docked"
	case StateClosed:
		return "closed"
	default:
		return "state(" + strconv.Itoa(int(s)) + ")"
	}
}

// Env is everything a dialog needs from its surroundings.
type Env struct {
	Doc      *ui.Document
	Registry *Registry
	Log      *debuglog.Logger
	// Media reports when embedded media finished loading. Nil treats all
	// media as already loaded.
	Media MediaLoader
	// Source serves Fetch. Nil uses HTTPSource with the default client.
	Source Source
	// Lang selects translations of built-in strings.
	Lang string
}

type hostBinding struct {
	selector, name string
	id             eventbus.HostBinding
}

// Dialog is one modal window.
type Dialog struct {
	env  Env
	doc  *ui.Document
	reg  *Registry
	log  *debuglog.Logger
	bus  *eventbus.Bus
	opts Options

	num       int
	dialogID  string
	overlayID string

	root    *ui.Element
	overlay *ui.Element
	chip    *ui.Element

	visible       bool
	overlayShown  bool
	minimized     bool
	docked        Side
	closed        bool
	cancelClose   bool
	inputHasFocus bool

	rendering bool
	pending   map[*ui.Element]bool

	bindings    []hostBinding
	chipBinding *hostBinding
	preDock     map[string]*string
	alertGen    int
}

// New creates an unrendered dialog and assigns its identifiers.
func New(env Env, opts Options) *Dialog {
	if env.Registry == nil {
		env.Registry = NewRegistry()
	}
	d := &Dialog{
		env:  env,
		doc:  env.Doc,
		reg:  env.Registry,
		opts: opts,
	}
	d.num = d.reg.register(d)
	d.dialogID = "modal-" + strconv.Itoa(d.num)
	d.overlayID = "modal-overlay-" + strconv.Itoa(d.num)
	d.log = env.Log.With("dialog", d.dialogID)
	d.bus = eventbus.New(d, "#"+d.dialogID, env.Doc)
	return d
}

// ID returns the dialog's element id.
func (d *Dialog) ID() string { return d.dialogID }

// OverlayID returns the overlay's element id.
func (d *Dialog) OverlayID() string { return d.overlayID }

// Root returns the dialog's root element, or nil before Render and after
// Close.
func (d *Dialog) Root() *ui.Element { return d.root }

// Overlay returns the overlay element, or nil when there is none.
func (d *Dialog) Overlay() *ui.Element { return d.overlay }

// Chip returns the tray chip while minimized.
func (d *Dialog) Chip() *ui.Element { return d.chip }

// Options returns a copy of the current options.
func (d *Dialog) Options() Options { return d.opts }

// Visible reports whether the dialog is shown.
func (d *Dialog) Visible() bool { return d.visible }

// Minimized reports whether the dialog sits in the tray.
func (d *Dialog) Minimized() bool { return d.minimized }

// Docked returns the side the dialog is docked to.
func (d *Dialog) Docked() Side { return d.docked }

// InputHasFocus reports whether a form field currently has focus, which
// disables the docking keys.
func (d *Dialog) InputHasFocus() bool { return d.inputHasFocus }

// State returns the lifecycle state.
func (d *Dialog) State() State {
	switch {
	case d.closed:
		return StateClosed
	case d.rendering:
		return StateRendering
	case d.root == nil:
		return StateUnrendered
	case d.minimized:
		return StateMinimized
	case d.docked != DockNone:
		return StateDocked
	case d.visible:
		return StateVisible
	default:
		return StateHidden
	}
}

// Configure merges opts into the current options. Unknown names are not
// applied; each is logged with a suggestion. It returns the dialog.
func (d *Dialog) Configure(opts map[string]any) *Dialog {
	for _, err := range d.opts.apply(opts) {
		d.log.Log("configure", "err", err)
	}
	return d
}

// ConfigureErr is Configure returning the rejected names and values.
func (d *Dialog) ConfigureErr(opts map[string]any) error {
	return errors.Join(d.opts.apply(opts)...)
}

// SetOptions replaces the options wholesale.
func (d *Dialog) SetOptions(opts Options) *Dialog {
	d.opts = opts
	return d
}

// Bus returns the dialog's event bus.
func (d *Dialog) Bus() *eventbus.Bus { return d.bus }

// AddListener registers fn for the named event.
func (d *Dialog) AddListener(name string, fn eventbus.Listener) eventbus.ListenerID {
	return d.bus.AddListener(name, fn)
}

// RemoveListener removes one registration.
func (d *Dialog) RemoveListener(name string, id eventbus.ListenerID) eventbus.RemoveResult {
	return d.bus.RemoveListener(name, id)
}

// RemoveAllListeners clears the listeners of the named events, or of all
// events when none are named.
func (d *Dialog) RemoveAllListeners(names ...string) {
	d.bus.RemoveAllListeners(names...)
}

// HasListeners reports whether name has internal listeners.
func (d *Dialog) HasListeners(name string) bool {
	return d.bus.HasListeners(name)
}

// Trigger emits an event on the dialog.
func (d *Dialog) Trigger(event any, params any) error {
	return d.bus.Trigger(event, params)
}

func (d *Dialog) emit(name string, params any) {
	if err := d.bus.Trigger(name, params); err != nil {
		d.log.Log("emit failed", "event", name, "err", err)
	}
}

// CancelClose vetoes the close currently being requested. Call it from a
// close listener or the OnClose hook.
func (d *Dialog) CancelClose() { d.cancelClose = true }

// Show makes the dialog and its overlay visible.
func (d *Dialog) Show() *Dialog {
	if d.root == nil {
		return d
	}
	d.visible = true
	d.doc.FadeIn(d.root, d.opts.Speed, nil)
	d.ShowOverlay()
	d.emit(EventShow, nil)
	return d
}

// Hide hides the dialog and its overlay.
func (d *Dialog) Hide() *Dialog {
	if d.root == nil {
		return d
	}
	d.visible = false
	d.doc.FadeOut(d.root, d.opts.Speed, nil)
	d.HideOverlay()
	d.emit(EventHide, nil)
	return d
}

// ShowOverlay fades the overlay in. It does nothing when the overlay is
// disabled or not created yet.
func (d *Dialog) ShowOverlay() *Dialog {
	if d.opts.NoOverlay || d.overlay == nil {
		return d
	}
	d.overlayShown = true
	d.doc.FadeIn(d.overlay, d.opts.Speed, nil)
	return d
}

// HideOverlay fades the overlay out.
func (d *Dialog) HideOverlay() *Dialog {
	if d.opts.NoOverlay || d.overlay == nil {
		return d
	}
	d.overlayShown = false
	d.doc.FadeOut(d.overlay, d.opts.Speed, nil)
	return d
}

// Close requests closing. Listeners of "close" and the OnClose hook may
// veto with CancelClose, in which case "cancel_close" is emitted and the
// dialog stays. Otherwise the dialog is unregistered, unbound and removed.
// Closing twice does nothing. A dialog that was never rendered has nothing
// to close: it only gives up its registration, without events.
func (d *Dialog) Close() {
	if d.closed {
		return
	}
	if d.root == nil {
		d.closed = true
		d.reg.release(d)
		d.bus.RemoveAllListeners()
		return
	}
	d.emit(EventClose, nil)
	if d.opts.OnClose != nil {
		d.opts.OnClose(d)
	}
	if d.cancelClose {
		d.cancelClose = false
		d.emit(EventCancelClose, nil)
		return
	}

	d.closed = true
	d.visible = false
	d.rendering = false
	d.pending = nil
	d.reg.release(d)
	d.unbindAll()
	d.removeChip()

	if root := d.root; root != nil {
		d.doc.Undraggable(root)
		d.doc.FadeOut(root, d.opts.Speed, root.Remove)
	}
	if ov := d.overlay; ov != nil {
		d.doc.FadeOut(ov, d.opts.Speed, ov.Remove)
	}
	d.root, d.overlay = nil, nil
	d.overlayShown = false
	d.bus.RemoveAllListeners()
}

// Transition swaps in new content without closing: opts are merged, the
// old window fades out and a new one renders while the existing overlay is
// kept as is.
func (d *Dialog) Transition(opts map[string]any) error {
	if d.closed {
		return ErrClosed
	}
	d.Configure(opts)
	if d.root == nil {
		return d.Render()
	}

	noOverlay, overlay := d.opts.NoOverlay, d.overlay
	d.opts.NoOverlay, d.overlay = true, nil

	old := d.root
	d.root = nil
	d.rendering = false
	d.pending = nil
	d.unbindAll()
	d.removeChip()
	d.minimized = false
	d.docked = DockNone
	d.preDock = nil
	d.doc.Undraggable(old)
	d.doc.FadeOut(old, d.opts.Speed, old.Remove)

	err := d.Render()
	d.opts.NoOverlay, d.overlay = noOverlay, overlay
	return err
}

func (d *Dialog) bind(selector, name string, fn eventbus.Listener) hostBinding {
	b := hostBinding{selector: selector, name: name, id: d.doc.Bind(selector, name, fn)}
	d.bindings = append(d.bindings, b)
	return b
}

func (d *Dialog) unbindAll() {
	for _, b := range d.bindings {
		d.doc.Unbind(b.selector, b.name, b.id)
	}
	d.bindings = nil
}

// measure returns el's rendered size even while it is hidden.
func (d *Dialog) measure(el *ui.Element) (int, int) {
	hidden := el.Hidden
	el.Hidden = false
	w, h := d.doc.Measure(el)
	el.Hidden = hidden
	return w, h
}
