package command

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// InputSchema reflects a Go struct into a JSON Schema Draft 2020-12
// document suitable for a Definition's InputSchema. Inlined (no $ref
// indirection) so the document stands alone when served over MCP.
func InputSchema[T any]() (map[string]any, error) {
	r := new(jsonschema.Reflector)
	r.DoNotReference = true
	r.ExpandedStruct = true

	var zero T
	s := r.Reflect(&zero)
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal reflected schema: %w", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode reflected schema: %w", err)
	}
	return doc, nil
}

// MustInputSchema is InputSchema for startup wiring.
func MustInputSchema[T any]() map[string]any {
	doc, err := InputSchema[T]()
	if err != nil {
		panic(err)
	}
	return doc
}

// ReflectSchema reflects an arbitrary value into an indented JSON
// Schema document with identity metadata, for schema export surfaces.
func ReflectSchema(v any, id, title, description string) ([]byte, error) {
	r := new(jsonschema.Reflector)
	s := r.Reflect(v)
	s.ID = jsonschema.ID(id)
	s.Title = title
	s.Description = description

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	return data, nil
}
