package modal

import (
	"strconv"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/marcus/modalkit/pkg/eventbus"
	"github.com/marcus/modalkit/pkg/ui"
)

func press(env Env, msg tea.KeyMsg) {
	env.Doc.Fire(ui.DocumentSelector, &eventbus.Event{Type: "keydown", Native: msg})
}

func TestDockAndUndock(t *testing.T) {
	env, loop := newTestEnv()
	d := Quick(env, map[string]any{"title": "Inspector", "content": "<p>Details</p>"})
	loop.RunAll()
	root := d.Root()
	body := root.First(".modal-body")

	d.Dock(DockLeft)
	if !root.HasClass("docked") || !root.HasClass("docked-left") {
		t.Fatalf("classes after docking left = %v", root.Classes())
	}
	for prop, want := range map[string]string{"left": "0", "top": "0", "bottom": "0"} {
		if got, _ := root.Style(prop); got != want {
			t.Errorf("style %s = %q, want %q", prop, got, want)
		}
	}
	maxHeight, ok := body.Style("max-height")
	if !ok {
		t.Fatal("docked body has no max-height")
	}
	if h, _ := strconv.Atoi(maxHeight); h <= 0 || h >= 30 {
		t.Errorf("max-height = %s, want within the 30 row viewport", maxHeight)
	}
	if got, _ := body.Style("padding-top"); got != "0" {
		t.Errorf("docked padding-top = %q", got)
	}
	if d.State() != StateDocked || d.Docked() != DockLeft {
		t.Errorf("state = %s, side = %q", d.State(), d.Docked())
	}
	loop.RunAll()
	if !d.Overlay().Hidden {
		t.Error("overlay still shown while docked")
	}

	d.Dock(DockRight)
	if root.HasClass("docked-left") || !root.HasClass("docked-right") {
		t.Errorf("classes after docking right = %v", root.Classes())
	}
	if _, ok := root.Style("left"); ok {
		t.Error("left offset kept after docking right")
	}

	d.Dock(DockNone)
	for _, c := range []string{"docked", "docked-left", "docked-right"} {
		if root.HasClass(c) {
			t.Errorf("class %s kept after undocking", c)
		}
	}
	if _, ok := body.Style("max-height"); ok {
		t.Error("max-height not restored")
	}
	for _, prop := range []string{"padding-top", "padding-bottom"} {
		if got, _ := body.Style(prop); got != "1" {
			t.Errorf("%s = %q after undock, want 1", prop, got)
		}
	}
	if d.State() != StateVisible {
		t.Errorf("state after undock = %s", d.State())
	}
	if d.Overlay().Hidden {
		t.Error("overlay not shown again after undock")
	}
}

func TestDockKeepsOverlay(t *testing.T) {
	env, loop := newTestEnv()
	d := Quick(env, map[string]any{"snap_keeps_overlay": true})
	loop.RunAll()
	d.Dock(DockRight)
	loop.RunAll()
	if d.Overlay().Hidden {
		t.Error("overlay hidden although snap_keeps_overlay is set")
	}
}

func TestDockAboveTray(t *testing.T) {
	env, _ := newTestEnv()
	a := Quick(env, map[string]any{"title": "Parked"})
	a.Minimize()
	b := Quick(env, map[string]any{"title": "Working"})

	b.Dock(DockLeft)
	bottom, _ := b.Root().Style("bottom")
	if n, _ := strconv.Atoi(bottom); n <= 0 {
		t.Errorf("bottom = %q, want the tray height", bottom)
	}
}

func TestUndockDuringOverlayFade(t *testing.T) {
	env, loop := newTestEnv()
	d := Quick(env, nil)
	loop.RunAll()

	d.Dock(DockLeft)
	d.Dock(DockNone)
	loop.RunAll()
	if d.Docked() != DockNone || !d.Visible() {
		t.Fatalf("state = %s", d.State())
	}
	if d.Overlay().Hidden {
		t.Error("overlay hidden after undocking before the fade ended")
	}
}

func TestUndockWhenNotDocked(t *testing.T) {
	env, loop := newTestEnv()
	d := Quick(env, nil)
	loop.RunAll()
	left, _ := d.Root().Style("left")
	top, _ := d.Root().Style("top")

	d.Dock(DockNone)
	if got, ok := d.Root().Style("left"); !ok || got != left {
		t.Errorf("left = %q, want %q", got, left)
	}
	if got, ok := d.Root().Style("top"); !ok || got != top {
		t.Errorf("top = %q, want %q", got, top)
	}
}

func TestRestoreDuringOverlayFade(t *testing.T) {
	env, loop := newTestEnv()
	d := Quick(env, map[string]any{"minimizable": true})
	loop.RunAll()

	d.Minimize()
	click(env, d.Chip())
	loop.RunAll()
	if d.Minimized() || !d.Visible() || d.Root().Hidden {
		t.Fatalf("state = %s", d.State())
	}
	if d.Overlay().Hidden {
		t.Error("overlay hidden after restoring before the fade ended")
	}
}

func TestMinimizeAndRestore(t *testing.T) {
	env, loop := newTestEnv()
	d := Quick(env, map[string]any{"title": "Logs", "subtitle": "tail", "minimizable": true})
	loop.RunAll()
	events := record(d, EventMinimize)

	click(env, d.Root().First(".modal-minimize"))
	if !d.Minimized() || d.State() != StateMinimized {
		t.Fatalf("state after minimize = %s", d.State())
	}
	if !d.Root().Hidden {
		t.Error("window still shown while minimized")
	}
	tray := env.Doc.ByID(TrayID)
	if tray == nil || !tray.HasClass("modal-tray") {
		t.Fatal("tray not created")
	}
	chips := tray.Find(".modal-chip")
	if len(chips) != 1 {
		t.Fatalf("tray has %d chips, want 1", len(chips))
	}
	chip := chips[0]
	if chip.Text != "Logs" || chip.Attr("data-dialog") != "modal-1" || chip.Attr("title") != "tail" {
		t.Errorf("chip = %q data-dialog=%q title=%q", chip.Text, chip.Attr("data-dialog"), chip.Attr("title"))
	}
	loop.RunAll()
	if !d.Overlay().Hidden {
		t.Error("overlay shown while minimized")
	}

	// Minimizing twice is a no-op.
	d.Minimize()
	if n := len(tray.Find(".modal-chip")); n != 1 {
		t.Errorf("second minimize left %d chips", n)
	}

	click(env, chip)
	if d.Minimized() || !d.Visible() || d.Root().Hidden {
		t.Error("chip click did not restore the dialog")
	}
	if n := len(tray.Find(".modal-chip")); n != 0 {
		t.Errorf("%d chips left after restore", n)
	}
	if d.Chip() != nil {
		t.Error("chip reference kept after restore")
	}
	if d.Overlay().Hidden {
		t.Error("overlay not restored")
	}

	if len(*events) != 2 || (*events)[0] != true || (*events)[1] != false {
		t.Errorf("minimize events = %v, want [true false]", *events)
	}
}

func TestMinimizeActionRequiresOption(t *testing.T) {
	env, _ := newTestEnv()
	d := Quick(env, map[string]any{"minimizable": true})
	d.SetOptions(DefaultOptions())
	click(env, d.Root().First(".modal-minimize"))
	if d.Minimized() {
		t.Error("minimized with minimizable off")
	}
}

func TestDockUnminimizes(t *testing.T) {
	env, _ := newTestEnv()
	d := Quick(env, map[string]any{"minimizable": true})
	d.Minimize()
	d.Dock(DockRight)
	if d.Minimized() || d.Chip() != nil {
		t.Error("docking left the dialog minimized")
	}
	if d.State() != StateDocked {
		t.Errorf("state = %s, want docked", d.State())
	}

	// And minimizing a docked dialog undocks it.
	d.Minimize()
	if d.Docked() != DockNone || d.Root().HasClass("docked") {
		t.Error("minimized dialog still docked")
	}
}

func TestDockKeys(t *testing.T) {
	env, _ := newTestEnv()
	d := Quick(env, map[string]any{"snap": true})

	press(env, tea.KeyMsg{Type: tea.KeyCtrlLeft})
	if d.Docked() != DockLeft {
		t.Fatalf("ctrl+left: docked = %q", d.Docked())
	}
	press(env, tea.KeyMsg{Type: tea.KeyShiftRight})
	if d.Docked() != DockRight {
		t.Fatalf("shift+right: docked = %q", d.Docked())
	}
	press(env, tea.KeyMsg{Type: tea.KeyDown, Alt: true})
	if d.Docked() != DockNone {
		t.Fatalf("alt+down: docked = %q", d.Docked())
	}
	if _, ok := d.Root().Style("left"); !ok {
		t.Error("undock key did not re-center")
	}

	field := ui.NewElement("input")
	env.Doc.Body.Append(field)
	env.Doc.Focus(field)
	if !d.InputHasFocus() {
		t.Fatal("focus on a form field not tracked")
	}
	press(env, tea.KeyMsg{Type: tea.KeyCtrlLeft})
	if d.Docked() != DockNone {
		t.Error("docked while a form field has focus")
	}
	env.Doc.Focus(nil)
	if d.InputHasFocus() {
		t.Fatal("blur not tracked")
	}
	press(env, tea.KeyMsg{Type: tea.KeyCtrlLeft})
	if d.Docked() != DockLeft {
		t.Error("docking key ignored after blur")
	}

	press(env, tea.KeyMsg{Type: tea.KeyEsc})
	if d.State() != StateClosed {
		t.Errorf("esc left state %s", d.State())
	}
}

func TestDockKeysNeedSnap(t *testing.T) {
	env, _ := newTestEnv()
	d := Quick(env, nil)
	press(env, tea.KeyMsg{Type: tea.KeyCtrlRight})
	if d.Docked() != DockNone {
		t.Error("docked without snap")
	}
}

func TestEscClosesTopmostOnly(t *testing.T) {
	env, _ := newTestEnv()
	below := Quick(env, map[string]any{"title": "Below"})
	above := Quick(env, map[string]any{"title": "Above"})

	press(env, tea.KeyMsg{Type: tea.KeyEsc})
	if above.State() != StateClosed || below.State() == StateClosed {
		t.Fatalf("states after esc = %s, %s", below.State(), above.State())
	}
	press(env, tea.KeyMsg{Type: tea.KeyEsc})
	if below.State() != StateClosed {
		t.Error("second esc did not close the remaining dialog")
	}

	hidden := Quick(env, map[string]any{"show_on_load": false})
	press(env, tea.KeyMsg{Type: tea.KeyEsc})
	if hidden.State() == StateClosed {
		t.Error("esc closed a hidden dialog")
	}
}

func TestResizeRecenters(t *testing.T) {
	env, _ := newTestEnv()
	d := Quick(env, nil)
	before, _ := d.Root().Style("left")
	env.Doc.Resize(200, 50)
	after, _ := d.Root().Style("left")
	if before == after {
		t.Errorf("left stayed %s after the viewport doubled", after)
	}

	pinned := Quick(env, map[string]any{"center_on_resize": false})
	left, _ := pinned.Root().Style("left")
	env.Doc.Resize(120, 40)
	if got, _ := pinned.Root().Style("left"); got != left {
		t.Errorf("left moved to %s without center_on_resize", got)
	}
}

func TestResizeRedocks(t *testing.T) {
	env, _ := newTestEnv()
	d := Quick(env, nil)
	d.Dock(DockRight)
	small, _ := d.Root().First(".modal-body").Style("max-height")

	env.Doc.Resize(100, 60)
	if d.Docked() != DockRight {
		t.Fatal("resize undocked the dialog")
	}
	large, _ := d.Root().First(".modal-body").Style("max-height")
	s, _ := strconv.Atoi(small)
	l, _ := strconv.Atoi(large)
	if l <= s {
		t.Errorf("max-height %d -> %d, want it to grow with the viewport", s, l)
	}
	if _, ok := d.Root().Style("left"); ok {
		t.Error("right-docked dialog got a left offset")
	}
}

func TestDragStopSnaps(t *testing.T) {
	env, _ := newTestEnv()
	d := Quick(env, map[string]any{"draggable": true, "snap": true})
	root := d.Root()

	root.SetStyle("left", "0")
	d.dragStopped(root)
	if d.Docked() != DockLeft {
		t.Fatalf("drop at the left edge: docked = %q", d.Docked())
	}

	root.SetStyle("left", "30").SetStyle("top", "4")
	d.dragStopped(root)
	if d.Docked() != DockNone {
		t.Fatal("drop away from the edge kept the dialog docked")
	}
	if got, _ := root.Style("left"); got != "30" {
		t.Errorf("left = %q, want 30", got)
	}
	if got, _ := root.Style("position"); got != "fixed" {
		t.Errorf("position = %q, want fixed", got)
	}

	w, _ := env.Doc.Measure(root)
	root.SetStyle("left", strconv.Itoa(100-w))
	d.dragStopped(root)
	if d.Docked() != DockRight {
		t.Errorf("drop at the right edge: docked = %q", d.Docked())
	}
}

func TestDragWithoutHostSupport(t *testing.T) {
	loop := ui.NewManualLoop()
	env := Env{Doc: ui.NewDocument(80, 24, loop, ui.Capabilities{}), Registry: NewRegistry()}
	d := Quick(env, map[string]any{"draggable": true})
	if d.State() != StateVisible {
		t.Errorf("state = %s, want visible", d.State())
	}
}

func TestParseSide(t *testing.T) {
	tests := []struct {
		in      string
		want    Side
		wantErr bool
	}{
		{"left", DockLeft, false},
		{"RIGHT", DockRight, false},
		{"", DockNone, false},
		{"null", DockNone, false},
		{"top", DockNone, true},
	}
	for _, tt := range tests {
		got, err := ParseSide(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseSide(%q) = %q, %v", tt.in, got, err)
		}
	}
}
