package data

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.schema.json
var catalogSchemaJSON string

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func catalogSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = jsonschema.CompileString("catalog.schema.json", catalogSchemaJSON)
	})
	return schema, schemaErr
}

// Validate checks raw catalog YAML against the embedded schema.
func Validate(raw []byte) error {
	s, err := catalogSchema()
	if err != nil {
		return fmt.Errorf("compile catalog schema: %w", err)
	}
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("parse catalog: %w", err)
	}
	if doc == nil {
		doc = map[string]any{}
	}
	// The validator expects encoding/json shaped values.
	js, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("catalog to json: %w", err)
	}
	var v any
	if err := json.Unmarshal(js, &v); err != nil {
		return fmt.Errorf("catalog to json: %w", err)
	}
	if err := s.Validate(v); err != nil {
		return fmt.Errorf("validate catalog: %w", err)
	}
	return nil
}
