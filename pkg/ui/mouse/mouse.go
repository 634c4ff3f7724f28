// Package mouse maps terminal mouse messages onto rendered regions.
//
// Regions are registered while a frame is drawn; later registrations sit on
// top of earlier ones. The Handler turns raw tea.MouseMsg values into
// clicks, double clicks, hovers, scrolls and drags against the current map.
package mouse

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// DoubleClickThreshold is the maximum gap between two clicks on the same
// region for the second to count as a double click.
const DoubleClickThreshold = 400 * time.Millisecond

// Rect is a cell rectangle. W and H are exclusive extents.
type Rect struct {
	X, Y, W, H int
}

// Contains reports whether the cell (x, y) lies inside r.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// Region is a named hit area with optional attached data.
type Region struct {
	ID   string
	Rect Rect
	Data any
}

// HitMap holds the regions of the last drawn frame.
type HitMap struct {
	regions []Region
}

// NewHitMap returns an empty hit map.
func NewHitMap() *HitMap {
	return &HitMap{}
}

// AddRect registers a region. Later regions take priority.
func (h *HitMap) AddRect(id string, x, y, w, height int, data any) {
	h.regions = append(h.regions, Region{
		ID:   id,
		Rect: Rect{X: x, Y: y, W: w, H: height},
		Data: data,
	})
}

// Test returns the topmost region containing (x, y), or nil.
func (h *HitMap) Test(x, y int) *Region {
	for i := len(h.regions) - 1; i >= 0; i-- {
		if h.regions[i].Rect.Contains(x, y) {
			r := h.regions[i]
			return &r
		}
	}
	return nil
}

// Regions returns the registered regions in registration order.
func (h *HitMap) Regions() []Region {
	return h.regions
}

// Clear drops every region.
func (h *HitMap) Clear() {
	h.regions = h.regions[:0]
}

// ActionType classifies a handled mouse message.
type ActionType int

const (
	ActionNone ActionType = iota
	ActionClick
	ActionDoubleClick
	ActionHover
	ActionScrollUp
	ActionScrollDown
	ActionScrollLeft
	ActionScrollRight
	ActionDrag
	ActionDragEnd
	ActionRelease
)

// Action is the result of HandleMouse.
type Action struct {
	Type   ActionType
	Region *Region
	X, Y   int
	DragDX int
	DragDY int
}

// ClickResult is the result of HandleClick.
type ClickResult struct {
	Region        *Region
	IsDoubleClick bool
}

// Handler tracks click timing and drag state against a HitMap.
type Handler struct {
	HitMap *HitMap

	lastClickID   string
	lastClickTime time.Time

	dragging       bool
	dragRegion     string
	dragStartX     int
	dragStartY     int
	dragStartValue int

	now func() time.Time
}

// NewHandler returns a handler with an empty hit map.
func NewHandler() *Handler {
	return &Handler{HitMap: NewHitMap(), now: time.Now}
}

// HandleClick resolves a click at (x, y) and detects double clicks.
func (h *Handler) HandleClick(x, y int) ClickResult {
	region := h.HitMap.Test(x, y)
	if region == nil {
		h.lastClickID = ""
		return ClickResult{}
	}

	now := h.now()
	double := region.ID == h.lastClickID && now.Sub(h.lastClickTime) <= DoubleClickThreshold
	if double {
		// A third click starts a new sequence.
		h.lastClickID = ""
	} else {
		h.lastClickID = region.ID
		h.lastClickTime = now
	}
	return ClickResult{Region: region, IsDoubleClick: double}
}

// StartDrag begins a drag at (x, y) on region. startValue is an arbitrary
// caller value captured at drag start, such as an initial width.
func (h *Handler) StartDrag(x, y int, region string, startValue int) {
	h.dragging = true
	h.dragRegion = region
	h.dragStartX = x
	h.dragStartY = y
	h.dragStartValue = startValue
}

// IsDragging reports whether a drag is in progress.
func (h *Handler) IsDragging() bool { return h.dragging }

// DragRegion returns the region the current drag started on.
func (h *Handler) DragRegion() string { return h.dragRegion }

// DragStartValue returns the value captured by StartDrag.
func (h *Handler) DragStartValue() int { return h.dragStartValue }

// DragDelta returns the offset of (x, y) from the drag start.
func (h *Handler) DragDelta(x, y int) (int, int) {
	return x - h.dragStartX, y - h.dragStartY
}

// EndDrag stops the current drag.
func (h *Handler) EndDrag() {
	h.dragging = false
	h.dragRegion = ""
}

// Clear drops all regions and click state. Drag state is kept so a drag
// survives redraws.
func (h *Handler) Clear() {
	h.HitMap.Clear()
	h.lastClickID = ""
}

// HandleMouse classifies msg.
func (h *Handler) HandleMouse(msg tea.MouseMsg) Action {
	switch msg.Action {
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			if msg.Shift {
				return Action{Type: ActionScrollLeft, X: msg.X, Y: msg.Y, Region: h.HitMap.Test(msg.X, msg.Y)}
			}
			return Action{Type: ActionScrollUp, X: msg.X, Y: msg.Y, Region: h.HitMap.Test(msg.X, msg.Y)}
		case tea.MouseButtonWheelDown:
			if msg.Shift {
				return Action{Type: ActionScrollRight, X: msg.X, Y: msg.Y, Region: h.HitMap.Test(msg.X, msg.Y)}
			}
			return Action{Type: ActionScrollDown, X: msg.X, Y: msg.Y, Region: h.HitMap.Test(msg.X, msg.Y)}
		case tea.MouseButtonLeft:
			res := h.HandleClick(msg.X, msg.Y)
			t := ActionClick
			if res.IsDoubleClick {
				t = ActionDoubleClick
			}
			return Action{Type: t, Region: res.Region, X: msg.X, Y: msg.Y}
		}

	case tea.MouseActionMotion:
		if h.dragging {
			dx, dy := h.DragDelta(msg.X, msg.Y)
			return Action{Type: ActionDrag, X: msg.X, Y: msg.Y, DragDX: dx, DragDY: dy}
		}
		return Action{Type: ActionHover, Region: h.HitMap.Test(msg.X, msg.Y), X: msg.X, Y: msg.Y}

	case tea.MouseActionRelease:
		if h.dragging {
			dx, dy := h.DragDelta(msg.X, msg.Y)
			h.EndDrag()
			return Action{Type: ActionDragEnd, X: msg.X, Y: msg.Y, DragDX: dx, DragDY: dy}
		}
		return Action{Type: ActionRelease, Region: h.HitMap.Test(msg.X, msg.Y), X: msg.X, Y: msg.Y}
	}
	return Action{Type: ActionNone, X: msg.X, Y: msg.Y}
}
