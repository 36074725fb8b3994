// Package fragment validates the JSON configuration fragments injected into
// a release.
package fragment

import (
	"embed"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schemas/*.schema.json
var schemaFS embed.FS

// Kind names a fragment type with its own schema.
type Kind string

const (
	// KindEnvironment is the environment variables fragment.
	KindEnvironment Kind = "environment"
	// KindPaths is the paths.d mapping fragment.
	KindPaths Kind = "paths"
)

// Problem is a single schema violation.
type Problem struct {
	Field       string
	Description string
}

// ValidationError lists every schema violation of a fragment.
type ValidationError struct {
	Kind     Kind
	Path     string
	Problems []Problem
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Problems))
	for _, p := range e.Problems {
		parts = append(parts, fmt.Sprintf("%s: %s", p.Field, p.Description))
	}
	return fmt.Sprintf("%s fragment %s is invalid: %s", e.Kind, e.Path, strings.Join(parts, "; "))
}

// Validate checks the file at path against the schema for kind. It returns a
// *ValidationError when the document is well-formed JSON that violates the
// schema.
func Validate(kind Kind, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s fragment: %w", kind, err)
	}
	return ValidateBytes(kind, path, data)
}

// ValidateBytes is Validate for content already in memory; name is used in
// error messages only.
func ValidateBytes(kind Kind, name string, data []byte) error {
	schemaBytes, err := schemaFS.ReadFile(fmt.Sprintf("schemas/%s.schema.json", kind))
	if err != nil {
		return fmt.Errorf("unknown fragment kind %q", kind)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schemaBytes),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return fmt.Errorf("%s fragment %s is not valid JSON: %w", kind, name, err)
	}

	if result.Valid() {
		return nil
	}

	verr := &ValidationError{Kind: kind, Path: name}
	for _, desc := range result.Errors() {
		verr.Problems = append(verr.Problems, Problem{
			Field:       desc.Field(),
			Description: desc.Description(),
		})
	}
	return verr
}
