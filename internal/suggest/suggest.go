// Package suggest produces "did you mean" hints for unknown option names.
package suggest

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// maxSuggestions caps the number of names returned by Option.
const maxSuggestions = 3

// OptionAliases maps names people commonly reach for to the dialog option
// that does the job.
var OptionAliases = map[string]string{
	"body":      "content",
	"html":      "content",
	"text":      "content",
	"selector":  "content_selector",
	"header":    "title",
	"heading":   "title",
	"actions":   "buttons",
	"css":       "class",
	"classname": "class",
	"modal":     "no_overlay",
	"backdrop":  "overlay",
	"opacity":   "overlay",
	"animation": "speed",
	"drag":      "draggable",
	"dock":      "snap",
	"close":     "closable",
	"minimize":  "minimizable",
}

// normalize lowercases name and folds dashes and spaces to underscores.
func normalize(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.TrimLeft(name, "-")
	return strings.NewReplacer("-", "_", " ", "_").Replace(name)
}

// Option returns up to three valid names close to unknown, best first.
// Names further away than max(3, len/2) edits are not suggested.
func Option(unknown string, valid []string) []string {
	needle := normalize(unknown)
	if needle == "" {
		return nil
	}

	type scored struct {
		name string
		dist int
	}
	var hits []scored
	for _, v := range valid {
		candidate := normalize(v)
		limit := max(3, len(candidate)/2)
		d := levenshtein.ComputeDistance(needle, candidate)
		if d <= limit {
			hits = append(hits, scored{v, d})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].dist != hits[j].dist {
			return hits[i].dist < hits[j].dist
		}
		return hits[i].name < hits[j].name
	})

	out := make([]string, 0, min(len(hits), maxSuggestions))
	for i := 0; i < len(hits) && i < maxSuggestions; i++ {
		out = append(out, hits[i].name)
	}
	return out
}

// Hint returns a one-line hint for an unknown option, or "" when nothing
// useful can be said.
func Hint(unknown string, valid []string) string {
	if alias, ok := OptionAliases[normalize(unknown)]; ok {
		return "use " + alias
	}
	if names := Option(unknown, valid); len(names) > 0 {
		return "did you mean " + strings.Join(names, ", ") + "?"
	}
	return ""
}
