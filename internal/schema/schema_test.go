package schema_test

import (
	"context"
	"errors"
	"testing"

	"github.com/garnizeh/pereval/internal/schema"
	"github.com/garnizeh/pereval/pkg/repository"
)

func TestValidate(t *testing.T) {
	v, err := schema.New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	tests := []struct {
		name    string
		doc     string
		body    string
		wantErr bool
	}{
		{"full submission", schema.Submission, `{"raw_data":{"title":"x","user":{"email":"a@b.c"}},"images":[{"url":"a.jpg"},{"image_id":2}]}`, false},
		{"submission without images", schema.Submission, `{"raw_data":{}}`, false},
		{"missing raw_data", schema.Submission, `{"images":[]}`, true},
		{"raw_data not object", schema.Submission, `{"raw_data":"text"}`, true},
		{"email not string", schema.Submission, `{"raw_data":{"user":{"email":5}}}`, true},
		{"image with both refs", schema.Submission, `{"raw_data":{},"images":[{"url":"a.jpg","image_id":1}]}`, true},
		{"image with neither ref", schema.Submission, `{"raw_data":{},"images":[{"title":"x"}]}`, true},
		{"image empty url", schema.Submission, `{"raw_data":{},"images":[{"url":""}]}`, true},
		{"image id zero", schema.Submission, `{"raw_data":{},"images":[{"image_id":0}]}`, true},
		{"malformed json", schema.Submission, `{"raw_data":`, true},
		{"empty patch", schema.Patch, `{}`, false},
		{"patch images only", schema.Patch, `{"images":[{"url":"b.jpg"}]}`, false},
		{"patch raw_data array", schema.Patch, `{"raw_data":[]}`, true},
		{"patch not object", schema.Patch, `[1,2]`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(context.Background(), tt.doc, []byte(tt.body))
			if tt.wantErr {
				if !errors.Is(err, repository.ErrValidation) {
					t.Fatalf("expected validation error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidate_UnknownSchema(t *testing.T) {
	v := schema.MustNew()
	err := v.Validate(context.Background(), "nope", []byte(`{}`))
	if err == nil || errors.Is(err, repository.ErrValidation) {
		t.Fatalf("expected plain error for unknown schema, got %v", err)
	}
}
