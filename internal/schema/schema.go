// Package schema validates submit and patch request bodies against embedded
// JSON Schemas before they are decoded into models.
package schema

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/qri-io/jsonschema"

	"github.com/garnizeh/pereval/pkg/repository"
)

//go:embed submission.json patch.json
var files embed.FS

// Document names accepted by Validate.
const (
	Submission = "submission"
	Patch      = "patch"
)

// Validator holds the compiled schemas. It is safe for concurrent use.
type Validator struct {
	schemas map[string]*jsonschema.Schema
}

func New() (*Validator, error) {
	v := &Validator{schemas: make(map[string]*jsonschema.Schema)}
	for _, name := range []string{Submission, Patch} {
		data, err := files.ReadFile(name + ".json")
		if err != nil {
			return nil, fmt.Errorf("read schema %s: %w", name, err)
		}

		rs := &jsonschema.Schema{}
		if err := json.Unmarshal(data, rs); err != nil {
			return nil, fmt.Errorf("compile schema %s: %w", name, err)
		}
		v.schemas[name] = rs
	}
	return v, nil
}

// MustNew is New for package-level initialization; the schemas are embedded
// so a failure is a build defect.
func MustNew() *Validator {
	v, err := New()
	if err != nil {
		panic(err)
	}
	return v
}

// Validate checks body against the named schema. Malformed JSON and schema
// violations are both reported as repository.ErrValidation.
func (v *Validator) Validate(ctx context.Context, name string, body []byte) error {
	rs, ok := v.schemas[name]
	if !ok {
		return fmt.Errorf("unknown schema %q", name)
	}

	if !json.Valid(body) {
		return repository.Invalid("request body is not valid JSON")
	}

	verrs, err := rs.ValidateBytes(ctx, body)
	if err != nil {
		return repository.Invalid("%v", err)
	}
	if len(verrs) == 0 {
		return nil
	}

	msgs := make([]string, 0, len(verrs))
	for _, ke := range verrs {
		if ke.PropertyPath == "" || ke.PropertyPath == "/" {
			msgs = append(msgs, ke.Message)
			continue
		}
		msgs = append(msgs, ke.PropertyPath+": "+ke.Message)
	}
	return repository.Invalid("%s", strings.Join(msgs, "; "))
}
