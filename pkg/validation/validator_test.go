package validation

import (
	"errors"
	"strings"
	"testing"
)

type registerRequest struct {
	Name       string `json:"name" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	NationalID string `json:"national_id" validate:"required,numeric,min=9,max=10"`
}

type tagRequest struct {
	Name  string `json:"name" validate:"required"`
	Color string `json:"color" validate:"omitempty,tagcolor"`
}

func TestValidateStructPasses(t *testing.T) {
	req := registerRequest{Name: "Ana", Email: "ana@example.com", NationalID: "123456789"}
	if err := ValidateStruct(&req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateStructUsesJSONNames(t *testing.T) {
	err := ValidateStruct(&registerRequest{Email: "nope", NationalID: "12ab"})
	var ve *RequestValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *RequestValidationError, got %T", err)
	}

	fields := map[string]string{}
	for _, f := range ve.Fields {
		fields[f.Field] = f.Message
	}
	if fields["name"] != "name is required" {
		t.Fatalf("unexpected name message: %q", fields["name"])
	}
	if fields["email"] != "email must be a valid email address" {
		t.Fatalf("unexpected email message: %q", fields["email"])
	}
	if !strings.HasPrefix(fields["national_id"], "national_id") {
		t.Fatalf("unexpected national id message: %q", fields["national_id"])
	}
}

func TestNationalIDLength(t *testing.T) {
	for _, id := range []string{"12345678", "12345678901"} {
		if err := ValidateStruct(&registerRequest{Name: "a", Email: "a@b.co", NationalID: id}); err == nil {
			t.Fatalf("expected %q to be rejected", id)
		}
	}
	if err := ValidateStruct(&registerRequest{Name: "a", Email: "a@b.co", NationalID: "1234567890"}); err != nil {
		t.Fatalf("10 digits must pass: %v", err)
	}
}

func TestTagColorRule(t *testing.T) {
	if err := ValidateStruct(&tagRequest{Name: "Urgent", Color: "#f00"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ValidateStruct(&tagRequest{Name: "Urgent"}); err != nil {
		t.Fatalf("empty color falls back to the default: %v", err)
	}
	err := ValidateStruct(&tagRequest{Name: "Urgent", Color: "red"})
	if err == nil || err.Error() != "color must be a hex color like #abc or #aabbcc" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestEchoValidator(t *testing.T) {
	if err := (EchoValidator{}).Validate(&tagRequest{}); err == nil {
		t.Fatalf("expected missing name to fail")
	}
}
