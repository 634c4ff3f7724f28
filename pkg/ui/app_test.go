package ui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/marcus/modalkit/pkg/eventbus"
)

func TestAppKeysBecomeKeydown(t *testing.T) {
	doc := NewDocument(80, 24, nil, Capabilities{Drag: true})
	app := NewApp(doc, nil)
	var got []string
	doc.Bind(DocumentSelector, "keydown", func(e *eventbus.Event) bool {
		got = append(got, e.Native.(tea.KeyMsg).String())
		return true
	})

	app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	app.Update(tea.KeyMsg{Type: tea.KeyCtrlLeft})
	if len(got) != 2 || got[0] != "esc" || got[1] != "ctrl+left" {
		t.Errorf("keydown events = %v", got)
	}

	if _, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlC}); cmd == nil {
		t.Error("ctrl+c did not quit")
	}
}

func TestAppResize(t *testing.T) {
	doc := NewDocument(80, 24, nil, Capabilities{})
	app := NewApp(doc, nil)
	app.Update(tea.WindowSizeMsg{Width: 132, Height: 43})
	if w, h := doc.Size(); w != 132 || h != 43 {
		t.Errorf("size = %dx%d", w, h)
	}
}

func TestAppRunsCallbacks(t *testing.T) {
	doc := NewDocument(80, 24, nil, Capabilities{})
	app := NewApp(doc, nil)
	ran := false
	doc.Loop().AfterFunc(0, func() { ran = true })
	if cmd := app.Init(); cmd == nil {
		t.Fatal("scheduled callback produced no command")
	}
	app.Update(callbackMsg{fn: func() { ran = true }})
	if !ran {
		t.Error("callback not run inside Update")
	}
}

func TestAppQuitWhen(t *testing.T) {
	done := false
	app := NewApp(NewDocument(80, 24, nil, Capabilities{}), func() bool { return done })
	if _, cmd := app.Update(tea.WindowSizeMsg{Width: 10, Height: 10}); cmd != nil {
		t.Error("quit before condition")
	}
	done = true
	if _, cmd := app.Update(tea.WindowSizeMsg{Width: 10, Height: 10}); cmd == nil {
		t.Error("no quit after condition")
	}
}
