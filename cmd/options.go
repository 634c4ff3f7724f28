package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/marcus/modalkit/internal/store"
	"github.com/marcus/modalkit/pkg/modal"
)

// addOptionFlags registers the flags that build dialog options.
func addOptionFlags(c *cobra.Command) {
	c.Flags().StringP("file", "f", "", "YAML dialog definition")
	c.Flags().StringP("title", "t", "", "Dialog title")
	c.Flags().String("content", "", "Body markup")
	c.Flags().Bool("markdown", false, "Render the body as markdown")
	c.Flags().String("theme", "", "Theme class (danger, warning, info)")
	c.Flags().StringArrayP("button", "b", nil, "Footer button as Label or Label=value (repeatable)")
	c.Flags().StringArray("set", nil, "Set any option as key=value; values are parsed as YAML (repeatable)")
}

// optionsFromFlags merges, lowest first: the definition file, the named
// flags, then --set.
func optionsFromFlags(c *cobra.Command) (map[string]any, error) {
	opts := map[string]any{}

	if path, _ := c.Flags().GetString("file"); path != "" {
		def, err := readDefinition(path)
		if err != nil {
			return nil, err
		}
		for k, v := range definitionOptions(def) {
			opts[k] = v
		}
	}

	named, err := namedFlagOptions(c)
	if err != nil {
		return nil, err
	}
	for k, v := range named {
		opts[k] = v
	}
	return opts, nil
}

// namedFlagOptions collects the option flags other than --file.
func namedFlagOptions(c *cobra.Command) (map[string]any, error) {
	opts := map[string]any{}
	for _, name := range []string{"title", "content", "theme"} {
		if c.Flags().Changed(name) {
			v, _ := c.Flags().GetString(name)
			opts[name] = v
		}
	}
	if c.Flags().Changed("markdown") {
		v, _ := c.Flags().GetBool("markdown")
		opts["markdown"] = v
	}
	if labels, _ := c.Flags().GetStringArray("button"); len(labels) > 0 {
		opts["buttons"] = parseButtons(labels)
	}

	sets, _ := c.Flags().GetStringArray("set")
	extra, err := parseSets(sets)
	if err != nil {
		return nil, err
	}
	for k, v := range extra {
		opts[k] = v
	}
	return opts, nil
}

// readDefinition reads the first definition of a YAML file.
func readDefinition(path string) (*store.Definition, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	defs, err := store.DecodeYAML(f, path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &defs[0], nil
}

// definitionOptions returns the options a definition shows with; its HTML
// replaces the content option.
func definitionOptions(def *store.Definition) map[string]any {
	opts := make(map[string]any, len(def.Options)+1)
	for k, v := range def.Options {
		opts[k] = v
	}
	if strings.TrimSpace(def.HTML) != "" {
		opts["content"] = def.HTML
		delete(opts, "content_selector")
	}
	return opts
}

// parseSets parses key=value pairs. Values are YAML scalars or flow
// collections, so width=40 is a number and snap=true a bool.
func parseSets(sets []string) (map[string]any, error) {
	out := make(map[string]any, len(sets))
	for _, kv := range sets {
		k, raw, ok := strings.Cut(kv, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("--set %q: want key=value", kv)
		}
		var v any
		if err := yaml.Unmarshal([]byte(raw), &v); err != nil {
			return nil, fmt.Errorf("--set %s: %w", k, err)
		}
		if v == nil {
			v = raw
		}
		out[k] = v
	}
	return out, nil
}

func parseButtons(labels []string) []any {
	buttons := make([]any, 0, len(labels))
	for i, l := range labels {
		label, value, _ := strings.Cut(l, "=")
		b := map[string]any{"label": label, "close": true}
		if value != "" {
			b["value"] = value
		}
		if i == 0 {
			b["class"] = "primary"
		}
		buttons = append(buttons, b)
	}
	return buttons
}

// checkOptions rejects options Configure would drop.
func checkOptions(opts map[string]any) error {
	return errors.Join(modal.ValidateOptions(opts)...)
}
