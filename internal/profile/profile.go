// Package profile loads the applicant profile document. A profile is read
// once at startup, checked against the embedded JSON Schema and the struct
// constraints on types.Profile, and never written afterwards.
package profile

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/jonathan/formfill/internal/schemas"
	"github.com/jonathan/formfill/internal/types"
	profileschema "github.com/jonathan/formfill/schemas"
)

// Format is the on-disk encoding of a profile
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFor picks the encoding from the file extension; anything that is not
// .yaml or .yml is treated as JSON.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// LoadError is returned when a profile cannot be read or decoded.
type LoadError struct {
	Path    string
	Message string
	Cause   error
}

func (e *LoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("profile %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("profile %s: %s", e.Path, e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}

// ValidationError is returned when a decoded profile breaks the schema or a
// field constraint. Fields lists the offending paths.
type ValidationError struct {
	Path   string
	Fields []string
	Cause  error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("profile %s is invalid (%s): %v", e.Path, strings.Join(e.Fields, ", "), e.Cause)
}

func (e *ValidationError) Unwrap() error {
	return e.Cause
}

var validate = validator.New()

// Load reads the profile at path.
func Load(path string) (*types.Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Message: "failed to read file", Cause: err}
	}
	return Parse(path, data, FormatFor(path))
}

// Parse decodes and validates a profile document. name only labels errors.
func Parse(name string, data []byte, format Format) (*types.Profile, error) {
	doc, err := toJSON(data, format)
	if err != nil {
		return nil, &LoadError{Path: name, Message: "failed to decode " + string(format), Cause: err}
	}

	if err := schemas.ValidateBytes(profileschema.Profile, doc); err != nil {
		var verr *schemas.ValidationError
		if errors.As(err, &verr) {
			fields := make([]string, 0, len(verr.Errors))
			for _, fe := range verr.Errors {
				fields = append(fields, fe.Field)
			}
			return nil, &ValidationError{Path: name, Fields: fields, Cause: err}
		}
		return nil, &LoadError{Path: name, Message: "schema check failed", Cause: err}
	}

	var p types.Profile
	if err := json.Unmarshal(doc, &p); err != nil {
		return nil, &LoadError{Path: name, Message: "failed to decode profile", Cause: err}
	}

	if err := validate.Struct(&p); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return nil, &LoadError{Path: name, Message: "field validation failed", Cause: err}
		}
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, strings.TrimPrefix(fe.Namespace(), "Profile."))
		}
		return nil, &ValidationError{Path: name, Fields: fields, Cause: err}
	}

	return &p, nil
}

// toJSON normalises a YAML document to JSON so both encodings share one
// schema check and one decoder.
func toJSON(data []byte, format Format) ([]byte, error) {
	if format != FormatYAML {
		if !json.Valid(data) {
			return nil, errors.New("malformed JSON")
		}
		return data, nil
	}

	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, errors.New("empty document")
	}
	return json.Marshal(doc)
}
