// Package apispec embeds the OpenAPI contract of the JSON API.
package apispec

import (
	_ "embed"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
)

// BasePath is where the JSON API is mounted.
const BasePath = "/api/v1"

//go:embed openapi.yaml
var spec []byte

// Raw returns the embedded document.
func Raw() []byte {
	return spec
}

// Load parses and validates the embedded document.
func Load() (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(spec)
	if err != nil {
		return nil, fmt.Errorf("load openapi document: %w", err)
	}
	if err := doc.Validate(loader.Context); err != nil {
		return nil, fmt.Errorf("validate openapi document: %w", err)
	}
	return doc, nil
}
