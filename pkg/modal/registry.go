package modal

import (
	"slices"

	"github.com/marcus/modalkit/pkg/ui"
)

// TrayID is the id of the shared element that holds minimized dialogs.
const TrayID = "modal-tray"

// Registry tracks the live dialogs of one document and numbers new ones.
// Dialogs share a Registry through their Env; it replaces a process-wide
// counter so independent documents (and tests) do not interfere.
type Registry struct {
	live []*Dialog
	seq  int
	tray *ui.Element
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Count returns the number of dialogs created and not yet closed.
func (r *Registry) Count() int { return len(r.live) }

// Dialogs returns the live dialogs, oldest first.
func (r *Registry) Dialogs() []*Dialog {
	return append([]*Dialog(nil), r.live...)
}

// register adds d and returns its sequence number.
func (r *Registry) register(d *Dialog) int {
	r.live = append(r.live, d)
	r.seq++
	return r.seq
}

// release removes d. Numbering restarts once no dialog is live. It reports
// false when d was not registered.
func (r *Registry) release(d *Dialog) bool {
	i := slices.Index(r.live, d)
	if i < 0 {
		return false
	}
	r.live = slices.Delete(r.live, i, i+1)
	if len(r.live) == 0 {
		r.seq = 0
	}
	return true
}

// top returns the most recent dialog that is visible and not minimized.
func (r *Registry) top() *Dialog {
	for i := len(r.live) - 1; i >= 0; i-- {
		if d := r.live[i]; d.visible && !d.minimized {
			return d
		}
	}
	return nil
}

// Tray returns the minimized-dialog tray, creating it on first use.
func (r *Registry) Tray(doc *ui.Document) *ui.Element {
	if r.tray != nil && doc.Body.Contains(r.tray) {
		return r.tray
	}
	if el := doc.ByID(TrayID); el != nil {
		r.tray = el
		return el
	}
	r.tray = ui.NewElement("div", "modal-tray")
	r.tray.ID = TrayID
	doc.Body.Append(r.tray)
	return r.tray
}

// TrayHeight returns the rows the tray occupies, zero when it has no chips.
func (r *Registry) TrayHeight(doc *ui.Document) int {
	if r.tray == nil || len(r.tray.Children()) == 0 {
		return 0
	}
	_, h := doc.Measure(r.tray)
	return h
}
