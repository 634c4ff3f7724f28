package eventbus

import (
	"errors"
	"reflect"
	"testing"
)

// fakeHost records native bindings and fires them on demand.
type fakeHost struct {
	next     HostBinding
	bindings map[HostBinding]fakeBinding
	fired    []string
}

type fakeBinding struct {
	selector, name string
	fn             Listener
}

func newFakeHost() *fakeHost {
	return &fakeHost{bindings: make(map[HostBinding]fakeBinding)}
}

func (h *fakeHost) Bind(selector, name string, fn Listener) HostBinding {
	h.next++
	h.bindings[h.next] = fakeBinding{selector, name, fn}
	return h.next
}

func (h *fakeHost) Unbind(selector, name string, b HostBinding) bool {
	fb, ok := h.bindings[b]
	if !ok || fb.selector != selector || fb.name != name {
		return false
	}
	delete(h.bindings, b)
	return true
}

func (h *fakeHost) UnbindAll(selector, name string) {
	for id, fb := range h.bindings {
		if fb.selector == selector && (name == "" || fb.name == name) {
			delete(h.bindings, id)
		}
	}
}

func (h *fakeHost) Fire(selector string, e *Event) {
	h.fired = append(h.fired, selector+":"+e.Type)
	for _, fb := range h.bindings {
		if fb.selector == selector && fb.name == e.Type {
			fb.fn(e)
		}
	}
}

func recorder(calls *[]int, n int, ret bool) Listener {
	return func(*Event) bool {
		*calls = append(*calls, n)
		return ret
	}
}

func TestTriggerInvokesInRegistrationOrder(t *testing.T) {
	bus := New(nil, "#owner", nil)
	var calls []int
	ids := make([]ListenerID, 5)
	for i := range ids {
		ids[i] = bus.AddListener("saved", recorder(&calls, i+1, true))
	}

	if got := bus.RemoveListener("saved", ids[1]); got != Removed {
		t.Fatalf("RemoveListener = %v, want Removed", got)
	}
	bus.AddListener("saved", recorder(&calls, 6, true))

	if err := bus.Trigger("saved", nil); err != nil {
		t.Fatalf("Trigger: %v", err)
	}
	want := []int{1, 3, 4, 5, 6}
	if !reflect.DeepEqual(calls, want) {
		t.Errorf("calls = %v, want %v", calls, want)
	}
}

func TestTriggerStopsOnFalse(t *testing.T) {
	bus := New(nil, "", nil)
	var calls []int
	for i := 1; i <= 5; i++ {
		bus.AddListener("step", recorder(&calls, i, i != 3))
	}

	if err := bus.Trigger("step", nil); err != nil {
		t.Fatalf("Trigger: %v", err)
	}
	want := []int{1, 2, 3}
	if !reflect.DeepEqual(calls, want) {
		t.Errorf("calls = %v, want %v", calls, want)
	}
}

func TestRemoveListenerNotFound(t *testing.T) {
	bus := New(nil, "", nil)
	var calls []int
	bus.AddListener("a", recorder(&calls, 1, true))
	other := bus.AddListener("b", recorder(&calls, 2, true))

	if got := bus.RemoveListener("a", other); got != NotFound {
		t.Errorf("RemoveListener with foreign id = %v, want NotFound", got)
	}
	if got := bus.RemoveListener("missing", other); got != NotFound {
		t.Errorf("RemoveListener on missing bucket = %v, want NotFound", got)
	}
	if !bus.HasListeners("a") {
		t.Error("bucket a should be unchanged")
	}

	_ = bus.Trigger("a", nil)
	if !reflect.DeepEqual(calls, []int{1}) {
		t.Errorf("calls = %v, want [1]", calls)
	}
}

func TestRemoveListenerRemovesOnlyOne(t *testing.T) {
	bus := New(nil, "", nil)
	var calls []int
	id := bus.AddListener("x", recorder(&calls, 1, true))
	bus.AddListener("x", recorder(&calls, 2, true))

	if got := bus.RemoveListener("x", id); got != Removed {
		t.Fatalf("first remove = %v", got)
	}
	if got := bus.RemoveListener("x", id); got != NotFound {
		t.Errorf("second remove = %v, want NotFound", got)
	}
	_ = bus.Trigger("x", nil)
	if !reflect.DeepEqual(calls, []int{2}) {
		t.Errorf("calls = %v, want [2]", calls)
	}
}

func TestRemoveAllListeners(t *testing.T) {
	bus := New(nil, "", nil)
	noop := func(*Event) bool { return true }
	bus.AddListener("a", noop)
	bus.AddListener("b", noop)

	bus.RemoveAllListeners("a")
	if bus.HasListeners("a") {
		t.Error("HasListeners(a) should be false after RemoveAllListeners(a)")
	}
	if !bus.HasListeners("b") {
		t.Error("HasListeners(b) should survive RemoveAllListeners(a)")
	}

	bus.RemoveAllListeners()
	for _, name := range []string{"a", "b", "never"} {
		if bus.HasListeners(name) {
			t.Errorf("HasListeners(%q) should be false after RemoveAllListeners()", name)
		}
	}
}

func TestNativeNamesRouteToHost(t *testing.T) {
	host := newFakeHost()
	bus := New("owner", "#modal-1", host)

	clicks := 0
	id := bus.AddListener("click", func(*Event) bool {
		clicks++
		return true
	})

	if bus.HasListeners("click") {
		t.Error("native listener must not enter the internal registry")
	}
	if len(host.bindings) != 1 {
		t.Fatalf("host bindings = %d, want 1", len(host.bindings))
	}

	if err := bus.Trigger("click", nil); err != nil {
		t.Fatalf("Trigger: %v", err)
	}
	if clicks != 1 {
		t.Errorf("clicks = %d, want 1", clicks)
	}
	if !reflect.DeepEqual(host.fired, []string{"#modal-1:click"}) {
		t.Errorf("fired = %v", host.fired)
	}

	if got := bus.RemoveListener("click", id); got != Removed {
		t.Errorf("RemoveListener(click) = %v, want Removed", got)
	}
	if len(host.bindings) != 0 {
		t.Errorf("host bindings after remove = %d, want 0", len(host.bindings))
	}
}

func TestRemoveAllListenersUnbindsHost(t *testing.T) {
	host := newFakeHost()
	bus := New(nil, "#modal-2", host)
	noop := func(*Event) bool { return true }
	bus.AddListener("keydown", noop)
	bus.AddListener("resize", noop)

	bus.RemoveAllListeners("keydown")
	if len(host.bindings) != 1 {
		t.Errorf("bindings after RemoveAllListeners(keydown) = %d, want 1", len(host.bindings))
	}
	bus.RemoveAllListeners()
	if len(host.bindings) != 0 {
		t.Errorf("bindings after RemoveAllListeners() = %d, want 0", len(host.bindings))
	}
}

func TestAddListeners(t *testing.T) {
	host := newFakeHost()
	bus := New(nil, "#m", host)
	noop := func(*Event) bool { return true }

	ids := bus.AddListeners(map[string]Listener{
		"render": noop,
		"close":  noop,
		"focus":  noop,
	})
	if len(ids) != 3 {
		t.Fatalf("ids = %v", ids)
	}
	if !bus.HasListeners("render") || !bus.HasListeners("close") {
		t.Error("internal listeners missing")
	}
	if bus.HasListeners("focus") {
		t.Error("focus is native and must not be internal")
	}
	if len(host.bindings) != 1 {
		t.Errorf("host bindings = %d, want 1", len(host.bindings))
	}
}

func TestTriggerEventRecord(t *testing.T) {
	owner := &struct{ name string }{"dialog"}
	bus := New(owner, "", nil)

	var got *Event
	bus.AddListener("fetch_content", func(e *Event) bool {
		got = e
		return true
	})

	if err := bus.Trigger("fetch_content", "payload"); err != nil {
		t.Fatalf("Trigger: %v", err)
	}
	if got == nil {
		t.Fatal("listener not called")
	}
	if got.Target != owner {
		t.Errorf("Target = %v, want owner", got.Target)
	}
	if got.Params != "payload" {
		t.Errorf("Params = %v", got.Params)
	}

	explicit := &Event{Type: "fetch_content", Target: "elsewhere"}
	_ = bus.Trigger(explicit, nil)
	if got.Target != "elsewhere" {
		t.Errorf("explicit target overwritten: %v", got.Target)
	}
}

func TestTriggerInvalidEvent(t *testing.T) {
	bus := New(nil, "", nil)
	tests := []struct {
		name  string
		event any
	}{
		{"empty string", ""},
		{"empty record", &Event{}},
		{"wrong type", 42},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := bus.Trigger(tt.event, nil); !errors.Is(err, ErrInvalidEvent) {
				t.Errorf("Trigger(%v) err = %v, want ErrInvalidEvent", tt.event, err)
			}
		})
	}
}

func TestListenerMayRemoveItself(t *testing.T) {
	bus := New(nil, "", nil)
	var calls []int
	var id ListenerID
	id = bus.AddListener("once", func(*Event) bool {
		calls = append(calls, 1)
		bus.RemoveListener("once", id)
		return true
	})
	bus.AddListener("once", recorder(&calls, 2, true))

	_ = bus.Trigger("once", nil)
	_ = bus.Trigger("once", nil)
	if !reflect.DeepEqual(calls, []int{1, 2, 2}) {
		t.Errorf("calls = %v, want [1 2 2]", calls)
	}
}

func TestIsNative(t *testing.T) {
	for _, name := range []string{"click", "keydown", "resize", "load", "mouseup"} {
		if !IsNative(name) {
			t.Errorf("IsNative(%q) = false", name)
		}
	}
	for _, name := range []string{"Click", "render", "close", "user_action", ""} {
		if IsNative(name) {
			t.Errorf("IsNative(%q) = true", name)
		}
	}
	if len(NativeEvents()) != 21 {
		t.Errorf("native set size = %d, want 21", len(NativeEvents()))
	}
}

func TestGenerateID(t *testing.T) {
	id := GenerateID()
	if id == "" || len(id) > 9 {
		t.Fatalf("GenerateID() = %q", id)
	}
	for _, r := range id {
		if !(r >= '0' && r <= '9' || r >= 'a' && r <= 'z') {
			t.Errorf("GenerateID() = %q contains non base-36 rune %q", id, r)
		}
	}
}
