// Package eventbus provides per-owner named event chains with two delivery
// strategies: a fixed set of interaction events is handed to the host
// environment, every other name is delivered through an internal ordered
// listener chain.
//
// Listeners run synchronously on the calling goroutine, in registration
// order. A listener returning false stops the rest of the chain for that
// dispatch. Panics raised by listeners are not recovered.
//
// Go function values cannot be compared, so AddListener returns a ListenerID
// and removal is by ID.
//
//	bus := eventbus.New(owner, "#modal-1", host)
//	id := bus.AddListener("close", func(e *eventbus.Event) bool {
//	    return true
//	})
//	_ = bus.Trigger("close", nil)
//	bus.RemoveListener("close", id)
package eventbus

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
)

// ErrInvalidEvent is returned by Trigger when the event has no type.
var ErrInvalidEvent = errors.New("event has no type")

// ListenerID identifies a registered listener.
type ListenerID uint64

// RemoveResult reports the outcome of RemoveListener.
type RemoveResult int

const (
	NotFound RemoveResult = iota
	Removed
)

func (r RemoveResult) String() string {
	if r == Removed {
		return "removed"
	}
	return "not found"
}

// record is a listener as stored in the internal chain.
type record struct {
	id       ListenerID
	fn       Listener
	mode     DeliveryMode
	selector string
}

// Bus is a named-event registry owned by a single object. It is not safe for
// concurrent use; callers run it on one event loop.
type Bus struct {
	owner    any
	selector string
	mode     DeliveryMode
	host     Host

	listeners map[string][]record
	native    map[ListenerID]nativeBinding
	nextID    ListenerID
}

type nativeBinding struct {
	name    string
	binding HostBinding
}

// New creates a bus for owner. selector anchors native bindings in host;
// host may be nil, in which case native names are silently dropped.
func New(owner any, selector string, host Host) *Bus {
	return &Bus{
		owner:     owner,
		selector:  selector,
		host:      host,
		listeners: make(map[string][]record),
		native:    make(map[ListenerID]nativeBinding),
	}
}

// SetMode changes the default delivery mode used for future registrations.
func (b *Bus) SetMode(m DeliveryMode) { b.mode = m }

// Mode returns the current default delivery mode.
func (b *Bus) Mode() DeliveryMode { return b.mode }

// SetSelector changes where future native bindings are anchored.
func (b *Bus) SetSelector(sel string) { b.selector = sel }

// Selector returns the native anchor selector.
func (b *Bus) Selector() string { return b.selector }

// AddListener registers fn for name. Native names are bound in the host and
// never enter the internal registry.
func (b *Bus) AddListener(name string, fn Listener) ListenerID {
	b.nextID++
	id := b.nextID

	if IsNative(name) {
		if b.host != nil {
			hb := b.host.Bind(b.selector, name, fn)
			b.native[id] = nativeBinding{name: name, binding: hb}
		}
		return id
	}

	b.listeners[name] = append(b.listeners[name], record{
		id:       id,
		fn:       fn,
		mode:     b.mode,
		selector: b.selector,
	})
	return id
}

// AddListeners registers every name/listener pair and returns their IDs.
func (b *Bus) AddListeners(m map[string]Listener) map[string]ListenerID {
	ids := make(map[string]ListenerID, len(m))
	for name, fn := range m {
		ids[name] = b.AddListener(name, fn)
	}
	return ids
}

// RemoveListener removes the listener registered under name with id. At most
// one record is removed and the order of the rest is preserved.
func (b *Bus) RemoveListener(name string, id ListenerID) RemoveResult {
	if IsNative(name) {
		nb, ok := b.native[id]
		if !ok || nb.name != name {
			return NotFound
		}
		delete(b.native, id)
		if b.host != nil && !b.host.Unbind(b.selector, name, nb.binding) {
			return NotFound
		}
		return Removed
	}

	chain, ok := b.listeners[name]
	if !ok {
		return NotFound
	}
	for i, r := range chain {
		if r.id == id {
			b.listeners[name] = append(chain[:i:i], chain[i+1:]...)
			return Removed
		}
	}
	return NotFound
}

// RemoveAllListeners clears the named chains, or every chain when no name is
// given. Native-set names, and every name when the bus runs in Native mode,
// are also unbound from the host.
func (b *Bus) RemoveAllListeners(names ...string) {
	if len(names) == 0 {
		if b.host != nil {
			b.host.UnbindAll(b.selector, "")
		}
		b.listeners = make(map[string][]record)
		b.native = make(map[ListenerID]nativeBinding)
		return
	}

	for _, name := range names {
		if IsNative(name) || b.mode == Native {
			if b.host != nil {
				b.host.UnbindAll(b.selector, name)
			}
			for id, nb := range b.native {
				if nb.name == name {
					delete(b.native, id)
				}
			}
		}
		if _, ok := b.listeners[name]; ok {
			b.listeners[name] = nil
		}
	}
}

// HasListeners reports whether the internal chain for name is non-empty.
func (b *Bus) HasListeners(name string) bool {
	return len(b.listeners[name]) > 0
}

// Trigger dispatches event, which is either a name or an *Event. params is
// attached as the event payload. Native-set types are fired in the host
// first; internal listeners then run in order until one returns false.
func (b *Bus) Trigger(event any, params any) error {
	var e *Event
	switch v := event.(type) {
	case string:
		e = &Event{Type: v}
	case *Event:
		e = v
	case Event:
		e = &v
	default:
		return fmt.Errorf("trigger %T: %w", event, ErrInvalidEvent)
	}
	if e == nil || e.Type == "" {
		return ErrInvalidEvent
	}
	if e.Target == nil {
		e.Target = b.owner
	}
	if params != nil {
		e.Params = params
	}

	if IsNative(e.Type) && b.host != nil {
		b.host.Fire(b.selector, e)
	}

	chain := b.listeners[e.Type]
	if len(chain) == 0 {
		return nil
	}
	// Listeners may add or remove listeners while running.
	snapshot := append([]record(nil), chain...)
	for _, r := range snapshot {
		if !r.fn(e) {
			break
		}
	}
	return nil
}

// GenerateID returns a short pseudo-random base-36 token for display-only
// identifiers. It is not unique and must not be used for security.
func GenerateID() string {
	s := strconv.FormatUint(rand.Uint64(), 36)
	if len(s) > 9 {
		s = s[:9]
	}
	return s
}
