package load

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"jobpost-etl/internal/model"
)

// sectionFields lists each section's fields with their JSON type.
var sectionFields = map[model.Section][][2]string{
	model.SectionLocation: {
		{"country", "string"}, {"locality", "string"}, {"region", "string"},
		{"postal_code", "string"}, {"street_address", "string"},
		{"latitude", "number"}, {"longitude", "number"},
	},
	model.SectionSalary: {
		{"currency", "string"}, {"min_value", "number"}, {"max_value", "number"}, {"unit", "string"},
	},
	model.SectionJob: {
		{"title", "string"}, {"industry", "string"}, {"description", "string"},
		{"employment_type", "string"}, {"date_posted", "string"},
	},
	model.SectionCompany: {
		{"name", "string"}, {"link", "string"},
	},
	model.SectionEducation: {
		{"required_credential", "string"},
	},
	model.SectionExperience: {
		{"months_of_experience", "number"}, {"seniority_level", "string"},
	},
}

// sectionSchema accepts a section whose fields are either all set or all
// null.
func sectionSchema(fields [][2]string) map[string]any {
	names := make([]string, 0, len(fields))
	known := map[string]any{}
	present := map[string]any{}
	absent := map[string]any{}
	for _, f := range fields {
		names = append(names, f[0])
		known[f[0]] = map[string]any{"type": []string{f[1], "null"}}
		present[f[0]] = map[string]any{"type": f[1]}
		absent[f[0]] = map[string]any{"type": "null"}
	}
	return map[string]any{
		"type":                 "object",
		"required":             names,
		"properties":           known,
		"additionalProperties": false,
		"oneOf": []any{
			map[string]any{"properties": present},
			map[string]any{"properties": absent},
		},
	}
}

func recordSchema() map[string]any {
	props := map[string]any{}
	required := make([]string, 0, len(model.Sections))
	for _, sec := range model.Sections {
		props[string(sec)] = sectionSchema(sectionFields[sec])
		required = append(required, string(sec))
	}
	return map[string]any{
		"$schema":              "http://json-schema.org/draft-07/schema#",
		"type":                 "object",
		"required":             required,
		"additionalProperties": false,
		"properties":           props,
	}
}

// Validator checks staged normalized records before they reach the store.
type Validator struct {
	schema *jsonschema.Schema
}

func NewValidator() (*Validator, error) {
	b, err := json.Marshal(recordSchema())
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("record.json", bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("record.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Validator{schema: schema}, nil
}

// Decode validates data and decodes it into a record.
func (v *Validator) Decode(data []byte) (model.NormalizedRecord, error) {
	var rec model.NormalizedRecord

	var doc any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return rec, fmt.Errorf("unmarshal: %w", err)
	}
	if dec.More() {
		return rec, fmt.Errorf("unmarshal: trailing data after record")
	}
	if err := v.schema.Validate(doc); err != nil {
		return rec, fmt.Errorf("record does not match schema: %w", err)
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		return rec, fmt.Errorf("decode: %w", err)
	}
	return rec, nil
}
