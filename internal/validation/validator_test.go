package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/hitoshi/memelandia/internal/model"
)

type sampleInput struct {
	Name  string `json:"name" validate:"required,max=10"`
	Email string `json:"email" validate:"required,email"`
	URL   string `json:"url" validate:"required,http_url"`
}

func TestStruct_Valid(t *testing.T) {
	v := New()

	err := v.Struct(sampleInput{Name: "ana", Email: "ana@example.com", URL: "https://example.com/gato.png"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestStruct_ReportsEveryViolatedField(t *testing.T) {
	v := New()

	err := v.Struct(sampleInput{Name: "", Email: "not-an-email", URL: "gato.png"})

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *model.APIError", err)
	}
	if apiErr.Code != model.ErrCodeInvalidRequest {
		t.Errorf("Code = %q, want %q", apiErr.Code, model.ErrCodeInvalidRequest)
	}
	for _, field := range []string{"name", "email", "url"} {
		if !strings.Contains(apiErr.Message, field) {
			t.Errorf("Message should mention %q, got %q", field, apiErr.Message)
		}
	}
}

func TestStruct_MaxLength(t *testing.T) {
	v := New()

	err := v.Struct(sampleInput{Name: "abcdefghijk", Email: "ana@example.com", URL: "https://example.com"})

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *model.APIError", err)
	}
	if !strings.Contains(apiErr.Message, "10") {
		t.Errorf("Message should mention the limit, got %q", apiErr.Message)
	}
}
