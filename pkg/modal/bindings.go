package modal

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/marcus/modalkit/pkg/eventbus"
	"github.com/marcus/modalkit/pkg/ui"
)

// KeyMap holds the keys a visible dialog responds to.
type KeyMap struct {
	Close     key.Binding
	DockLeft  key.Binding
	DockRight key.Binding
	Undock    key.Binding
}

// DefaultKeyMap returns the default bindings. The docking keys only apply
// when snapping is enabled and no form field has focus.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Close: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close"),
		),
		DockLeft: key.NewBinding(
			key.WithKeys("ctrl+left", "alt+left", "shift+left"),
			key.WithHelp("ctrl+←", "dock left"),
		),
		DockRight: key.NewBinding(
			key.WithKeys("ctrl+right", "alt+right", "shift+right"),
			key.WithHelp("ctrl+→", "dock right"),
		),
		Undock: key.NewBinding(
			key.WithKeys("ctrl+down", "alt+down", "shift+down"),
			key.WithHelp("ctrl+↓", "undock"),
		),
	}
}

// Keys is the key map used by every dialog.
var Keys = DefaultKeyMap()

// bindHandlers attaches the dialog's document, window and element handlers,
// replacing any from an earlier render.
func (d *Dialog) bindHandlers() {
	d.unbindAll()
	sel := "#" + d.dialogID

	d.bind(ui.DocumentSelector, "keydown", d.onKey)
	d.bind(ui.WindowSelector, "resize", d.onResize)
	d.bind(sel+" .modal-close", "click", func(*eventbus.Event) bool {
		d.Close()
		return false
	})
	d.bind(sel+" .modal-minimize", "click", func(*eventbus.Event) bool {
		if d.opts.Minimizable {
			d.Minimize()
		}
		return false
	})
	d.bind(sel+" .modal-button", "click", d.onButton)

	const fields = "input, textarea, select"
	d.bind(fields, "focus", func(*eventbus.Event) bool {
		d.inputHasFocus = true
		return true
	})
	d.bind(fields, "blur", func(*eventbus.Event) bool {
		d.inputHasFocus = false
		return true
	})
}

func (d *Dialog) onKey(e *eventbus.Event) bool {
	msg, ok := e.Native.(tea.KeyMsg)
	if !ok || d.reg.top() != d {
		return true
	}
	switch {
	case key.Matches(msg, Keys.Close):
		d.Close()
		return false
	case !d.opts.Snap || d.inputHasFocus:
		return true
	case key.Matches(msg, Keys.DockLeft):
		d.Dock(DockLeft)
		return false
	case key.Matches(msg, Keys.DockRight):
		d.Dock(DockRight)
		return false
	case key.Matches(msg, Keys.Undock):
		d.Dock(DockNone)
		if d.opts.Center {
			d.Center()
		}
		return false
	}
	return true
}

func (d *Dialog) onResize(*eventbus.Event) bool {
	if d.root == nil {
		return true
	}
	if d.opts.CenterOnResize {
		d.Center()
	}
	if d.docked != DockNone {
		d.Dock(d.docked)
	}
	return true
}

func (d *Dialog) onButton(e *eventbus.Event) bool {
	el, _ := e.Target.(*ui.Element)
	for el != nil && !el.HasClass("modal-button") {
		el = el.Parent()
	}
	if el == nil {
		return true
	}
	d.emit(EventUserAction, el.Attr("data-value"))
	if el.Attr("data-close") == "true" {
		d.Close()
	}
	return false
}
