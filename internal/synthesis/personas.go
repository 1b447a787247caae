// internal/synthesis/personas.go
package synthesis

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xeipuuv/gojsonschema"
)

// personasSchema validates the persona presets file before any preset is
// trusted. A file that fails validation stops startup.
const personasSchema = `{
	"type": "object",
	"required": ["personas"],
	"properties": {
		"personas": {
			"type": "array",
			"minItems": 1,
			"items": {
				"type": "object",
				"required": ["name", "prompt"],
				"properties": {
					"name":        {"type": "string", "minLength": 1},
					"prompt":      {"type": "string", "minLength": 1},
					"description": {"type": "string"}
				}
			}
		}
	}
}`

// Persona is one named system-prompt preset.
type Persona struct {
	Name        string `json:"name"`
	Prompt      string `json:"prompt"`
	Description string `json:"description,omitempty"`
}

// PersonaSet resolves persona names to presets.
type PersonaSet struct {
	byName map[string]Persona
	names  []string
}

// LoadPersonas reads and validates the presets file.
func LoadPersonas(path string) (*PersonaSet, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read personas file: %w", err)
	}
	return ParsePersonas(raw)
}

// ParsePersonas validates raw JSON against the persona schema and builds
// the set.
func ParsePersonas(raw []byte) (*PersonaSet, error) {
	schemaLoader := gojsonschema.NewStringLoader(personasSchema)
	documentLoader := gojsonschema.NewBytesLoader(raw)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return nil, fmt.Errorf("persona validation error: %w", err)
	}
	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return nil, fmt.Errorf("persona file invalid: %v", errs)
	}

	var doc struct {
		Personas []Persona `json:"personas"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse personas file: %w", err)
	}

	set := &PersonaSet{byName: make(map[string]Persona, len(doc.Personas))}
	for _, p := range doc.Personas {
		if _, dup := set.byName[p.Name]; dup {
			return nil, fmt.Errorf("duplicate persona %q", p.Name)
		}
		set.byName[p.Name] = p
		set.names = append(set.names, p.Name)
	}
	return set, nil
}

// Resolve returns the preset for name, or the first preset in file order
// when name is empty.
func (s *PersonaSet) Resolve(name string) (Persona, error) {
	if name == "" {
		return s.byName[s.names[0]], nil
	}
	p, ok := s.byName[name]
	if !ok {
		return Persona{}, fmt.Errorf("unknown persona %q", name)
	}
	return p, nil
}

// Names lists the available presets in file order.
func (s *PersonaSet) Names() []string {
	names := make([]string, len(s.names))
	copy(names, s.names)
	return names
}
