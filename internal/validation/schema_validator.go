// Package validation checks JSON documents against JSON schemas.
package validation

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// PlantCatalogSchema names the embedded plant catalog schema
const PlantCatalogSchema = "plant_catalog.schema.json"

//go:embed schemas/*.json
var embedded embed.FS

// SchemaValidator validates JSON data against named JSON schemas
type SchemaValidator interface {
	ValidateFile(dataPath, schemaName string) error
	ValidateBytes(data []byte, schemaName string) error
}

type validator struct {
	source fs.FS

	mu       sync.Mutex
	compiler *jsonschema.Compiler
	schemas  map[string]*jsonschema.Schema
}

// NewSchemaValidator creates a validator over the built-in schemas
func NewSchemaValidator() SchemaValidator {
	sub, err := fs.Sub(embedded, "schemas")
	if err != nil {
		panic(err)
	}
	return NewSchemaValidatorFS(sub)
}

// NewSchemaValidatorFS creates a validator that resolves schema names in fsys
func NewSchemaValidatorFS(fsys fs.FS) SchemaValidator {
	return &validator{
		source:   fsys,
		compiler: jsonschema.NewCompiler(),
		schemas:  make(map[string]*jsonschema.Schema),
	}
}

// ValidateFile validates a JSON file against a schema
func (v *validator) ValidateFile(dataPath, schemaName string) error {
	data, err := os.ReadFile(dataPath)
	if err != nil {
		return fmt.Errorf("failed to read data file %s: %w", dataPath, err)
	}

	return v.ValidateBytes(data, schemaName)
}

// ValidateBytes validates JSON data bytes against a schema
func (v *validator) ValidateBytes(data []byte, schemaName string) error {
	schema, err := v.loadSchema(schemaName)
	if err != nil {
		return fmt.Errorf("failed to load schema %s: %w", schemaName, err)
	}

	var jsonData interface{}
	if err := json.Unmarshal(data, &jsonData); err != nil {
		return fmt.Errorf("failed to parse JSON data: %w", err)
	}

	if err := schema.Validate(jsonData); err != nil {
		return formatValidationError(err)
	}

	return nil
}

// loadSchema compiles a schema once and caches it
func (v *validator) loadSchema(schemaName string) (*jsonschema.Schema, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if schema, ok := v.schemas[schemaName]; ok {
		return schema, nil
	}

	schemaData, err := fs.ReadFile(v.source, schemaName)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}

	var schemaJSON interface{}
	if err := json.Unmarshal(schemaData, &schemaJSON); err != nil {
		return nil, fmt.Errorf("failed to parse schema JSON: %w", err)
	}

	if err := v.compiler.AddResource(schemaName, schemaJSON); err != nil {
		return nil, fmt.Errorf("failed to add schema resource: %w", err)
	}

	schema, err := v.compiler.Compile(schemaName)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	v.schemas[schemaName] = schema
	return schema, nil
}

// formatValidationError flattens the error tree into one line per failure
func formatValidationError(err error) error {
	if validationErr, ok := err.(*jsonschema.ValidationError); ok {
		var errors []string
		collectErrors(validationErr, &errors)
		return fmt.Errorf("schema validation failed:\n%s", strings.Join(errors, "\n"))
	}
	return fmt.Errorf("validation error: %w", err)
}

func collectErrors(err *jsonschema.ValidationError, errors *[]string) {
	if msg := formatError(err); msg != "" {
		*errors = append(*errors, msg)
	}
	for _, cause := range err.Causes {
		collectErrors(cause, errors)
	}
}

func formatError(err *jsonschema.ValidationError) string {
	location := "(root)"
	if len(err.InstanceLocation) > 0 {
		location = "/" + strings.Join(err.InstanceLocation, "/")
	}

	var keywords string
	if err.ErrorKind != nil {
		keywords = strings.Join(err.ErrorKind.KeywordPath(), ".")
	}

	if keywords != "" {
		return fmt.Sprintf("  - at %s: %s validation failed", location, keywords)
	}
	return fmt.Sprintf("  - at %s: validation failed", location)
}
