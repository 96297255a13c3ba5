// Package validation checks inbound request payloads against embedded JSON schemas.
//
// Only the structure of a payload is validated. Item-level problems such as a
// missing, null or empty id pass validation and are filtered later when the payload
// is parsed into an identity map.
package validation

import (
	"bytes"
	"embed"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ErrInvalidRequest is returned for payloads that do not match their schema.
var ErrInvalidRequest = errors.New("validation: invalid request payload")

// Schema names.
const (
	SchemaIdentityMap = "identity-map.schema.json"
	SchemaAdID        = "ad-id.schema.json"
	SchemaLegacyECID  = "legacy-ecid.schema.json"
)

// schemaBaseURL names the embedded schemas inside the compiler.
const schemaBaseURL = "https://edgeidentity.local/schemas/"

//go:embed schemas/*.json
var schemaFS embed.FS

// RequestValidator validates request payloads. It is safe for concurrent use.
type RequestValidator struct {
	schemas map[string]*jsonschema.Schema
}

// NewRequestValidator compiles the embedded schemas.
func NewRequestValidator() (*RequestValidator, error) {
	compiler := jsonschema.NewCompiler()
	names := []string{SchemaIdentityMap, SchemaAdID, SchemaLegacyECID}

	for _, name := range names {
		data, err := schemaFS.ReadFile("schemas/" + name)
		if err != nil {
			return nil, fmt.Errorf("read schema %s: %w", name, err)
		}
		if err := compiler.AddResource(schemaBaseURL+name, bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("add schema resource %s: %w", name, err)
		}
	}

	v := &RequestValidator{schemas: make(map[string]*jsonschema.Schema, len(names))}
	for _, name := range names {
		schema, err := compiler.Compile(schemaBaseURL + name)
		if err != nil {
			return nil, fmt.Errorf("compile schema %s: %w", name, err)
		}
		v.schemas[name] = schema
	}
	return v, nil
}

// MustNewRequestValidator is like NewRequestValidator but panics on error. The
// schemas are embedded, so an error means the binary itself is broken.
func MustNewRequestValidator() *RequestValidator {
	v, err := NewRequestValidator()
	if err != nil {
		panic(err)
	}
	return v
}

// ValidateIdentityMap checks an update or remove request payload.
func (v *RequestValidator) ValidateIdentityMap(data map[string]any) error {
	return v.Validate(SchemaIdentityMap, data)
}

// ValidateAdID checks an advertising identifier request payload.
func (v *RequestValidator) ValidateAdID(data map[string]any) error {
	return v.Validate(SchemaAdID, data)
}

// ValidateLegacyECID checks a legacy identity shared state payload.
func (v *RequestValidator) ValidateLegacyECID(data map[string]any) error {
	return v.Validate(SchemaLegacyECID, data)
}

// Validate checks data against the named schema. Data is normalized through JSON
// first, so typed Go values such as []map[string]any are accepted.
func (v *RequestValidator) Validate(schemaName string, data map[string]any) error {
	schema, ok := v.schemas[schemaName]
	if !ok {
		return fmt.Errorf("unknown schema %q", schemaName)
	}
	if data == nil {
		return fmt.Errorf("%w: empty payload", ErrInvalidRequest)
	}

	instance, err := normalize(data)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if err := schema.Validate(instance); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return nil
}

func normalize(data map[string]any) (any, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	var instance any
	if err := json.Unmarshal(raw, &instance); err != nil {
		return nil, fmt.Errorf("unmarshal payload: %w", err)
	}
	return instance, nil
}
