package eventbus

// Event is the record handed to every listener.
type Event struct {
	// Type is the event name. Trigger rejects events without one.
	Type string

	// Target is a back-reference for listeners. Trigger fills it with the
	// bus owner when the caller leaves it nil; the host fills it with the
	// element an interaction happened on.
	Target any

	// Params is the payload passed to Trigger.
	Params any

	// Native carries host-specific data such as the originating key or
	// mouse message. Nil for events raised through Trigger.
	Native any

	defaultPrevented bool
}

// PreventDefault marks the event so the host skips its default handling.
func (e *Event) PreventDefault() {
	e.defaultPrevented = true
}

// DefaultPrevented reports whether PreventDefault was called.
func (e *Event) DefaultPrevented() bool {
	return e.defaultPrevented
}

// Listener handles an event. Returning false stops the remaining listeners
// of the same dispatch from running.
type Listener func(e *Event) bool

// Host is the environment that delivers native events. Bindings are
// anchored at a selector understood by the host.
type Host interface {
	Bind(selector, name string, fn Listener) HostBinding
	Unbind(selector, name string, b HostBinding) bool
	// UnbindAll removes every binding for name at selector, or every binding
	// at selector when name is empty.
	UnbindAll(selector, name string)
	Fire(selector string, e *Event)
}

// HostBinding identifies a binding made with Host.Bind.
type HostBinding uint64
