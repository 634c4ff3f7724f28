package ui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"

	"github.com/marcus/modalkit/pkg/ui/mouse"
)

func window(t *testing.T, doc *Document) *Element {
	t.Helper()
	nodes, err := ParseMarkup(`<div id="modal-1" class="modal" style="width: 40; left: 5; top: 2">` +
		`<div class="modal-header"><h1 class="modal-title">Report</h1>` +
		`<div class="modal-actions"><span class="modal-close">×</span></div></div>` +
		`<div class="modal-body"><div class="modal-content"><p>All checks passed.</p></div></div>` +
		`<div class="modal-footer"><button class="modal-button">OK</button></div></div>`)
	if err != nil {
		t.Fatal(err)
	}
	doc.Body.Append(nodes...)
	return nodes[0]
}

func TestViewDrawsWindow(t *testing.T) {
	doc := NewDocument(80, 20, nil, Capabilities{})
	window(t, doc)
	hits := mouse.NewHitMap()
	out := doc.View(hits)

	lines := strings.Split(out, "\n")
	if len(lines) != 20 {
		t.Fatalf("view has %d lines, want 20", len(lines))
	}
	for i, line := range lines {
		if w := ansi.StringWidth(line); w != 80 {
			t.Errorf("line %d is %d cells wide", i, w)
		}
	}
	plain := ansi.Strip(out)
	for _, want := range []string{"Report", "All checks passed.", "OK", "×"} {
		if !strings.Contains(plain, want) {
			t.Errorf("view missing %q", want)
		}
	}

	closeBtn := doc.QueryOne(".modal-close")
	found := false
	for _, r := range hits.Regions() {
		if r.Data == closeBtn {
			found = true
			if hit := hits.Test(r.Rect.X, r.Rect.Y); hit == nil || hit.Data != closeBtn {
				t.Error("close region not on top at its own position")
			}
		}
	}
	if !found {
		t.Error("no hit region for the close action")
	}
}

func TestViewSkipsHidden(t *testing.T) {
	doc := NewDocument(60, 10, nil, Capabilities{})
	win := window(t, doc)
	win.Hidden = true
	if strings.Contains(ansi.Strip(doc.View(nil)), "Report") {
		t.Error("hidden window drawn")
	}
}

func TestMeasure(t *testing.T) {
	doc := NewDocument(80, 20, nil, Capabilities{})
	win := window(t, doc)
	w, h := doc.Measure(win)
	if w != 40 {
		t.Errorf("width = %d, want 40", w)
	}
	if h < 5 {
		t.Errorf("height = %d, want at least borders plus three sections", h)
	}

	body := win.First(".modal-body")
	_, bh := doc.Measure(body)
	if bh != 1 {
		t.Errorf("body height = %d, want 1", bh)
	}
	body.SetStyle("padding-top", "1").SetStyle("padding-bottom", "1")
	if _, bh = doc.Measure(body); bh != 3 {
		t.Errorf("padded body height = %d, want 3", bh)
	}

	win.Hidden = true
	if w, h := doc.Measure(win); w != 0 || h != 0 {
		t.Error("hidden element has a size")
	}
}

func TestMaxHeightTruncates(t *testing.T) {
	doc := NewDocument(80, 20, nil, Capabilities{})
	nodes, _ := ParseMarkup(`<div class="modal"><div class="modal-body" style="max-height: 2"><p>1</p><p>2</p><p>3</p></div></div>`)
	doc.Body.Append(nodes...)
	body := doc.QueryOne(".modal-body")
	if _, h := doc.Measure(body); h != 2 {
		t.Errorf("height = %d, want 2", h)
	}
	if !strings.Contains(ansi.Strip(doc.View(nil)), "↓ more") {
		t.Error("no overflow marker")
	}
}
