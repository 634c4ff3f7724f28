package modal

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/marcus/modalkit/pkg/eventbus"
	"github.com/marcus/modalkit/pkg/ui"
)

// Side is a viewport edge a dialog can be docked to.
type Side string

const (
	DockNone  Side = ""
	DockLeft  Side = "left"
	DockRight Side = "right"
)

// ParseSide accepts "left", "right" and "", "none" or "null" for undocked.
func ParseSide(s string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "left":
		return DockLeft, nil
	case "right":
		return DockRight, nil
	case "", "none", "null":
		return DockNone, nil
	}
	return DockNone, fmt.Errorf("invalid dock side %q", s)
}

func (s Side) opposite() Side {
	switch s {
	case DockLeft:
		return DockRight
	case DockRight:
		return DockLeft
	}
	return DockNone
}

// body style properties that docking overrides and undocking restores.
var dockedBodyStyles = []string{"max-height", "padding-top", "padding-bottom"}

// Dock pins the dialog to a viewport edge at full height, above the tray.
// DockNone undocks and restores the body's previous sizing. Docking a
// minimized dialog restores it first.
func (d *Dialog) Dock(side Side) *Dialog {
	if d.root == nil {
		return d
	}

	if side == DockNone {
		if d.docked == DockNone && d.preDock == nil {
			return d
		}
		d.root.RemoveClass("docked", "docked-left", "docked-right")
		d.root.RemoveStyle("left", "right", "top", "bottom")
		if body := d.root.First(".modal-body"); body != nil && d.preDock != nil {
			for _, prop := range dockedBodyStyles {
				if v := d.preDock[prop]; v != nil {
					body.SetStyle(prop, *v)
				} else {
					body.RemoveStyle(prop)
				}
			}
		}
		d.preDock = nil
		d.docked = DockNone
		if d.visible && !d.overlayShown {
			d.ShowOverlay()
		}
		return d
	}

	if d.minimized {
		d.restore()
	}
	if !d.opts.SnapKeepsOverlay {
		d.HideOverlay()
	}

	if body := d.root.First(".modal-body"); body != nil && d.preDock == nil {
		d.preDock = make(map[string]*string, len(dockedBodyStyles))
		for _, prop := range dockedBodyStyles {
			if v, ok := body.Style(prop); ok {
				d.preDock[prop] = &v
			}
		}
	}

	other := side.opposite()
	d.root.RemoveClass("docked-"+string(other)).AddClass("docked", "docked-"+string(side))
	d.root.RemoveStyle(string(other), "position")
	d.root.SetStyle(string(side), "0").
		SetStyle("top", "0").
		SetStyle("bottom", strconv.Itoa(d.reg.TrayHeight(d.doc)))
	d.docked = side
	return d.Resize()
}

// Resize fits the body to the viewport height minus the window chrome and,
// when docked, the tray below it.
func (d *Dialog) Resize() *Dialog {
	if d.root == nil {
		return d
	}
	body := d.root.First(".modal-body")
	if body == nil {
		return d
	}

	// Two border rows plus every section except the body.
	chrome := 2
	for _, c := range d.root.Children() {
		if c == body {
			continue
		}
		_, h := d.measure(c)
		chrome += h
	}
	_, vh := d.doc.Size()
	avail := vh - chrome
	if d.docked != DockNone {
		avail -= styleInt(d.root, "bottom")
	}
	if avail < 1 {
		avail = 1
	}
	body.SetStyle("max-height", strconv.Itoa(avail)).
		SetStyle("padding-top", "0").
		SetStyle("padding-bottom", "0")
	return d
}

// Center places the window in the middle of the viewport. Docked dialogs
// are left alone.
func (d *Dialog) Center() *Dialog {
	if d.root == nil || d.docked != DockNone {
		return d
	}
	w, h := d.measure(d.root)
	vw, vh := d.doc.Size()
	d.root.RemoveStyle("right", "bottom")
	d.root.SetStyle("left", strconv.Itoa(max(0, (vw-w)/2)))
	d.root.SetStyle("top", strconv.Itoa(max(0, (vh-h)/2)))
	return d
}

// Minimize hides the dialog and its overlay and puts a chip for it in the
// tray. Clicking the chip restores the dialog. The minimize event carries
// true here and false on restore.
func (d *Dialog) Minimize() *Dialog {
	if d.root == nil || d.minimized {
		return d
	}
	if d.docked != DockNone {
		d.Dock(DockNone)
	}
	d.minimized = true
	d.visible = false
	d.doc.StopFade(d.root)
	d.root.Hidden = true
	d.HideOverlay()

	chip := ui.NewElement("span", "modal-chip")
	chip.ID = d.dialogID + "-chip"
	chip.Text = d.opts.Title
	if chip.Text == "" {
		chip.Text = d.dialogID
	}
	chip.SetAttr("data-dialog", d.dialogID)
	if d.opts.Subtitle != "" {
		chip.SetAttr("title", d.opts.Subtitle)
	}
	d.reg.Tray(d.doc).Append(chip)
	d.chip = chip

	b := hostBinding{selector: "#" + chip.ID, name: "click"}
	b.id = d.doc.Bind(b.selector, b.name, func(*eventbus.Event) bool {
		d.restore()
		return false
	})
	d.chipBinding = &b

	d.emit(EventMinimize, true)
	return d
}

// restore brings a minimized dialog back from the tray.
func (d *Dialog) restore() {
	if !d.minimized {
		return
	}
	d.removeChip()
	d.minimized = false
	d.visible = true
	if d.root != nil {
		d.doc.StopFade(d.root)
		d.root.Hidden = false
	}
	d.ShowOverlay()
	d.emit(EventMinimize, false)
}

// Restore is the chip's click action.
func (d *Dialog) Restore() *Dialog {
	d.restore()
	return d
}

func (d *Dialog) removeChip() {
	if b := d.chipBinding; b != nil {
		d.doc.Unbind(b.selector, b.name, b.id)
		d.chipBinding = nil
	}
	if d.chip != nil {
		d.chip.Remove()
		d.chip = nil
	}
}

// dragStopped docks the window when dropped on a viewport edge and undocks
// it when dragged away from one.
func (d *Dialog) dragStopped(el *ui.Element) {
	if d.root == nil || el != d.root {
		return
	}
	w, _ := d.measure(el)
	vw, _ := d.doc.Size()
	x := styleInt(el, "left")
	switch {
	case d.opts.Snap && x <= 0:
		d.Dock(DockLeft)
	case d.opts.Snap && x+w >= vw:
		d.Dock(DockRight)
	default:
		if d.docked != DockNone {
			top := styleInt(el, "top")
			d.Dock(DockNone)
			el.SetStyle("left", strconv.Itoa(x)).SetStyle("top", strconv.Itoa(top))
		}
		el.SetStyle("position", "fixed")
	}
}

func styleInt(el *ui.Element, prop string) int {
	v, ok := el.Style(prop)
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0
	}
	return n
}
