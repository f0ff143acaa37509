package config

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// GenerateSchema generates a JSON schema for the Config struct
func GenerateSchema() (*jsonschema.Schema, error) {
	r := jsonschema.Reflector{DoNotReference: true}
	return r.Reflect(&Config{}), nil
}

// SchemaJSON returns the indented JSON schema for the Config struct
func SchemaJSON() ([]byte, error) {
	schema, err := GenerateSchema()
	if err != nil {
		return nil, fmt.Errorf("generate schema: %w", err)
	}
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	return data, nil
}
