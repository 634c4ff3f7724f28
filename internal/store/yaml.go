package store

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// DecodeYAML reads one or more definition documents separated by "---".
// A document without a name takes fallbackName, which must then be unique.
func DecodeYAML(r io.Reader, fallbackName string) ([]Definition, error) {
	dec := yaml.NewDecoder(r)
	var defs []Definition
	for {
		var def Definition
		err := dec.Decode(&def)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse definition %d: %w", len(defs)+1, err)
		}
		if def.Name == "" {
			def.Name = fallbackName
		}
		if def.Name == "" {
			return nil, fmt.Errorf("definition %d has no name", len(defs)+1)
		}
		defs = append(defs, def)
	}
	if len(defs) == 0 {
		return nil, errors.New("no definitions found")
	}
	return defs, nil
}
