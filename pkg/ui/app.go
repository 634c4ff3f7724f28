package ui

import (
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/marcus/modalkit/pkg/eventbus"
	"github.com/marcus/modalkit/pkg/ui/mouse"
)

// callbackMsg carries a continuation back onto the bubbletea update loop.
type callbackMsg struct {
	fn func()
}

// teaLoop implements Loop with tea commands. Commands accumulate until the
// App drains them at the end of each Update.
type teaLoop struct {
	cmds []tea.Cmd
}

func (l *teaLoop) AfterFunc(d time.Duration, fn func()) {
	l.cmds = append(l.cmds, tea.Tick(d, func(time.Time) tea.Msg {
		return callbackMsg{fn: fn}
	}))
}

func (l *teaLoop) Go(work func() func()) {
	l.cmds = append(l.cmds, func() tea.Msg {
		return callbackMsg{fn: work()}
	})
}

func (l *teaLoop) drain() tea.Cmd {
	if len(l.cmds) == 0 {
		return nil
	}
	cmds := l.cmds
	l.cmds = nil
	return tea.Batch(cmds...)
}

type appKeyMap struct {
	Quit key.Binding
}

var appKeys = appKeyMap{
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("ctrl+c", "quit"),
	),
}

type dragState struct {
	root   *Element
	hooks  DragHooks
	x0, y0 int
	moved  bool
}

// App is the bubbletea model hosting a Document. Key, mouse and resize
// messages become native events on the document; scheduled callbacks run
// inside Update so the document is only touched from one goroutine.
type App struct {
	doc      *Document
	loop     *teaLoop
	mouse    *mouse.Handler
	drag     *dragState
	quitWhen func() bool
}

// NewApp wraps doc and installs the App's scheduler as the document loop.
// Create dialogs after NewApp so their timers run through the program.
// quitWhen, if non-nil, is checked after every message.
func NewApp(doc *Document, quitWhen func() bool) *App {
	loop := &teaLoop{}
	doc.SetLoop(loop)
	return &App{
		doc:      doc,
		loop:     loop,
		mouse:    mouse.NewHandler(),
		quitWhen: quitWhen,
	}
}

// Document returns the hosted document.
func (a *App) Document() *Document { return a.doc }

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return a.loop.drain()
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case callbackMsg:
		if msg.fn != nil {
			msg.fn()
		}
	case tea.WindowSizeMsg:
		a.doc.Resize(msg.Width, msg.Height)
	case tea.KeyMsg:
		if key.Matches(msg, appKeys.Quit) {
			return a, tea.Quit
		}
		target := a.doc.Active()
		if target == nil {
			target = a.doc.Body
		}
		a.doc.Dispatch(target, &eventbus.Event{Type: "keydown", Native: msg})
	case tea.MouseMsg:
		a.handleMouse(msg)
	}

	if a.quitWhen != nil && a.quitWhen() {
		return a, tea.Quit
	}
	return a, a.loop.drain()
}

// View implements tea.Model.
func (a *App) View() string {
	return a.doc.View(a.mouse.HitMap)
}

func (a *App) handleMouse(msg tea.MouseMsg) {
	action := a.mouse.HandleMouse(msg)
	switch action.Type {
	case mouse.ActionClick, mouse.ActionDoubleClick:
		el := regionElement(action.Region)
		if el == nil {
			return
		}
		if root, dr, ok := a.doc.dragTarget(el); ok {
			_, x, y := a.doc.renderer.window(root, a.doc.width, a.doc.height)
			a.mouse.StartDrag(msg.X, msg.Y, root.ID, x)
			a.drag = &dragState{root: root, hooks: dr.hooks, x0: x, y0: y}
		}
		a.doc.Dispatch(el, &eventbus.Event{Type: "mousedown", Native: msg})
		a.doc.Dispatch(el, &eventbus.Event{Type: "click", Native: msg})
		if action.Type == mouse.ActionDoubleClick {
			a.doc.Dispatch(el, &eventbus.Event{Type: "dblclick", Native: msg})
		}

	case mouse.ActionDrag:
		d := a.drag
		if d == nil {
			return
		}
		if !d.moved {
			d.moved = true
			if d.hooks.OnStart != nil {
				d.hooks.OnStart(d.root)
			}
		}
		d.root.SetStyle("left", strconv.Itoa(d.x0+action.DragDX))
		d.root.SetStyle("top", strconv.Itoa(d.y0+action.DragDY))
		d.root.RemoveStyle("bottom")
		if d.hooks.OnDrag != nil {
			d.hooks.OnDrag(d.root)
		}

	case mouse.ActionDragEnd:
		if d := a.drag; d != nil && d.moved && d.hooks.OnStop != nil {
			d.hooks.OnStop(d.root)
		}
		a.drag = nil
		if el := regionElement(a.mouse.HitMap.Test(msg.X, msg.Y)); el != nil {
			a.doc.Dispatch(el, &eventbus.Event{Type: "mouseup", Native: msg})
		}

	case mouse.ActionRelease:
		if el := regionElement(action.Region); el != nil {
			a.doc.Dispatch(el, &eventbus.Event{Type: "mouseup", Native: msg})
		}

	case mouse.ActionHover:
		if el := regionElement(action.Region); el != nil {
			a.doc.Dispatch(el, &eventbus.Event{Type: "mousemove", Native: msg})
		}
	}
}

func regionElement(r *mouse.Region) *Element {
	if r == nil {
		return nil
	}
	el, _ := r.Data.(*Element)
	return el
}
