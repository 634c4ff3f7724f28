package modal

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/marcus/modalkit/internal/suggest"
)

// Button is one action button in the dialog footer.
type Button struct {
	Label string `json:"label"`
	// Value is emitted with user_action. Empty means the lowercased label.
	Value string `json:"value,omitempty"`
	Class string `json:"class,omitempty"`
	// Close closes the dialog after the action is emitted.
	Close bool `json:"close,omitempty"`
}

func (b Button) value() string {
	if b.Value != "" {
		return b.Value
	}
	return strings.ToLower(b.Label)
}

// Options configures a Dialog. The JSON names are the names accepted by
// Configure, definition files and the HTTP content payloads.
type Options struct {
	Title           string   `json:"title"`
	Subtitle        string   `json:"subtitle"`
	Content         string   `json:"content"`
	ContentSelector string   `json:"content_selector"`
	Footer          string   `json:"footer"`
	Buttons         []Button `json:"buttons"`
	Theme           string   `json:"theme"`
	Class           string   `json:"class"`

	// Overlay is the overlay opacity between 0 and 1.
	Overlay   float64 `json:"overlay"`
	NoOverlay bool    `json:"no_overlay"`
	Speed     string  `json:"speed"`

	Draggable        bool `json:"draggable"`
	Snap             bool `json:"snap"`
	SnapKeepsOverlay bool `json:"snap_keeps_overlay"`
	Minimizable      bool `json:"minimizable"`
	Closable         bool `json:"closable"`
	Center           bool `json:"center"`
	CenterOnResize   bool `json:"center_on_resize"`
	FitToMedia       bool `json:"fit_to_media"`
	ShowOnLoad       bool `json:"show_on_load"`
	Markdown         bool `json:"markdown"`

	Width     int    `json:"width"`
	Container string `json:"container"`
	Lang      string `json:"lang"`

	// OnRender runs once the dialog finished rendering, after it was shown.
	OnRender func(d *Dialog) `json:"-"`
	// OnClose runs when a close is requested. It may call CancelClose.
	OnClose func(d *Dialog) `json:"-"`
}

// DefaultOptions returns the options a new dialog starts from.
func DefaultOptions() Options {
	return Options{
		Overlay:        0.6,
		Speed:          "default",
		Closable:       true,
		Center:         true,
		CenterOnResize: true,
		ShowOnLoad:     true,
		Width:          50,
		Container:      "body",
	}
}

var (
	namesOnce   sync.Once
	optionNames []string
	optionSet   map[string]bool
)

// OptionNames returns the recognized option names, sorted.
func OptionNames() []string {
	namesOnce.Do(func() {
		optionSet = make(map[string]bool)
		t := reflect.TypeOf(Options{})
		for i := 0; i < t.NumField(); i++ {
			name, _, _ := strings.Cut(t.Field(i).Tag.Get("json"), ",")
			if name == "" || name == "-" {
				continue
			}
			optionNames = append(optionNames, name)
			optionSet[name] = true
		}
		sort.Strings(optionNames)
	})
	return append([]string(nil), optionNames...)
}

// IsOption reports whether name is a recognized option.
func IsOption(name string) bool {
	OptionNames()
	return optionSet[name]
}

// UnknownOptionError reports option names that are not recognized.
type UnknownOptionError struct {
	Name string
	Hint string
}

func (e *UnknownOptionError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("unknown option %q (%s)", e.Name, e.Hint)
	}
	return fmt.Sprintf("unknown option %q", e.Name)
}

// apply merges the recognized keys of m into opts. Unknown keys and values
// of the wrong type are skipped and reported in the returned errors; the
// rest are still applied.
func (opts *Options) apply(m map[string]any) []error {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var errs []error
	for _, k := range keys {
		if !IsOption(k) {
			errs = append(errs, &UnknownOptionError{Name: k, Hint: suggest.Hint(k, OptionNames())})
			continue
		}
		// overlay: false disables the overlay rather than setting an opacity.
		if on, ok := m[k].(bool); ok && k == "overlay" {
			opts.NoOverlay = !on
			continue
		}
		raw, err := json.Marshal(map[string]any{k: m[k]})
		if err != nil {
			errs = append(errs, fmt.Errorf("option %s: %w", k, err))
			continue
		}
		// Decode into a copy so a bad value leaves opts untouched. A new
		// buttons list replaces the old one instead of decoding over it.
		next := *opts
		if k == "buttons" {
			next.Buttons = nil
		}
		if err := json.Unmarshal(raw, &next); err != nil {
			errs = append(errs, fmt.Errorf("option %s: %w", k, err))
			continue
		}
		*opts = next
	}
	return errs
}

// ValidateOptions reports every key of m that Configure would reject.
func ValidateOptions(m map[string]any) []error {
	opts := DefaultOptions()
	return opts.apply(m)
}
