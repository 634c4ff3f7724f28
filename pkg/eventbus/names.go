package eventbus

// DeliveryMode selects how a bus delivers events it does not route natively.
type DeliveryMode int

const (
	// Internal delivers through the bus's own ordered listener chains.
	Internal DeliveryMode = iota
	// Native delegates delivery to the host environment.
	Native
)

func (m DeliveryMode) String() string {
	switch m {
	case Native:
		return "native"
	default:
		return "internal"
	}
}

// nativeEvents is the closed set of interaction event names that are always
// delivered by the host environment. Membership is exact and case-sensitive.
var nativeEvents = map[string]bool{
	"click":      true,
	"dblclick":   true,
	"hover":      true,
	"blur":       true,
	"change":     true,
	"focus":      true,
	"focusin":    true,
	"focusout":   true,
	"keypress":   true,
	"keydown":    true,
	"keyup":      true,
	"ready":      true,
	"resize":     true,
	"load":       true,
	"mousedown":  true,
	"mouseenter": true,
	"mouseleave": true,
	"mousemove":  true,
	"mouseout":   true,
	"mouseover":  true,
	"mouseup":    true,
}

// IsNative reports whether name belongs to the native-delivery set.
func IsNative(name string) bool {
	return nativeEvents[name]
}

// NativeEvents returns a copy of the native-delivery set.
func NativeEvents() map[string]bool {
	out := make(map[string]bool, len(nativeEvents))
	for k := range nativeEvents {
		out[k] = true
	}
	return out
}
