package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed game_config.schema.json
var gameConfigSchema string

const schemaURL = "tilekingdoms://game_config.schema.json"

var compiledSchema = jsonschema.MustCompileString(schemaURL, gameConfigSchema)

// ValidateDocument checks a raw config document against the embedded JSON
// Schema. ext selects YAML (".yaml", ".yml") or JSON decoding.
func ValidateDocument(data []byte, ext string) error {
	var doc interface{}
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		var raw interface{}
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("failed to parse yaml: %w", err)
		}
		// normalize YAML scalars to their JSON equivalents
		buf, err := json.Marshal(raw)
		if err != nil {
			return fmt.Errorf("failed to normalize yaml: %w", err)
		}
		if err := json.Unmarshal(buf, &doc); err != nil {
			return err
		}
	default:
		if err := json.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("failed to parse json: %w", err)
		}
	}

	if err := compiledSchema.Validate(doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}
