package topology

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/nerrad567/linkstatus-core/internal/devicestatus"
)

//go:embed default.yaml
var defaultDocument []byte

// Default returns the built-in layout.
func Default() (devicestatus.Layout, error) {
	layout, err := Parse(defaultDocument)
	if err != nil {
		return devicestatus.Layout{}, fmt.Errorf("embedded topology: %w", err)
	}
	return layout, nil
}

// LoadFile reads and validates a YAML topology file.
func LoadFile(path string) (devicestatus.Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return devicestatus.Layout{}, fmt.Errorf("reading topology file: %w", err)
	}
	layout, err := Parse(data)
	if err != nil {
		return devicestatus.Layout{}, fmt.Errorf("topology file %s: %w", path, err)
	}
	return layout, nil
}

// Parse decodes a YAML topology document and validates it.
//
// Unknown keys are rejected so that a misspelt field fails loudly instead of
// silently producing an empty link table.
func Parse(data []byte) (devicestatus.Layout, error) {
	var layout devicestatus.Layout

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&layout); err != nil {
		if errors.Is(err, io.EOF) {
			return devicestatus.Layout{}, fmt.Errorf("%w: document is empty", ErrInvalidDocument)
		}
		return devicestatus.Layout{}, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}

	if err := layout.Validate(); err != nil {
		return devicestatus.Layout{}, err
	}
	return layout, nil
}

// Marshal encodes a layout in the document format read by Parse.
func Marshal(layout devicestatus.Layout) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(layout); err != nil {
		return nil, fmt.Errorf("encoding topology: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding topology: %w", err)
	}
	return buf.Bytes(), nil
}
