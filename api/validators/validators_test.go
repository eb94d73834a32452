package validators

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	pkgerrors "github.com/Brooksey3011/military-tees-uk/pkg/errors"
)

type samplePayload struct {
	VariantID string `json:"variant_id" validate:"required,uuid4"`
	Quantity  int    `json:"quantity" validate:"min=0,max=99"`
}

func TestDecodeJSONBody(t *testing.T) {
	body := `{"variant_id":"` + uuid.NewString() + `","quantity":2}`
	r := httptest.NewRequest("POST", "/", strings.NewReader(body))

	var dest samplePayload
	if err := DecodeJSONBody(r, &dest); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dest.Quantity != 2 {
		t.Fatalf("unexpected payload %+v", dest)
	}
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	r := httptest.NewRequest("POST", "/", strings.NewReader(`{"variant_id":"x","bogus":true}`))

	var dest samplePayload
	err := DecodeJSONBody(r, &dest)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDecodeJSONBodyReportsFieldErrors(t *testing.T) {
	r := httptest.NewRequest("POST", "/", strings.NewReader(`{"variant_id":"not-a-uuid","quantity":2}`))

	var dest samplePayload
	err := DecodeJSONBody(r, &dest)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	details, ok := typed.Details().(map[string]string)
	if !ok {
		t.Fatalf("expected field details, got %+v", typed.Details())
	}
	if _, ok := details["variant_id"]; !ok {
		t.Fatalf("expected variant_id in details, got %+v", details)
	}
}

func TestParseQueryInt(t *testing.T) {
	r := httptest.NewRequest("GET", "/?page=3", nil)
	value, err := ParseQueryInt(r, "page", 1, 1, 100)
	if err != nil || value != 3 {
		t.Fatalf("got %d, %v", value, err)
	}

	r = httptest.NewRequest("GET", "/", nil)
	value, err = ParseQueryInt(r, "page", 1, 1, 100)
	if err != nil || value != 1 {
		t.Fatalf("expected default, got %d, %v", value, err)
	}

	r = httptest.NewRequest("GET", "/?page=abc", nil)
	if _, err = ParseQueryInt(r, "page", 1, 1, 100); err == nil {
		t.Fatal("expected error for non-numeric input")
	}

	r = httptest.NewRequest("GET", "/?page=500", nil)
	if _, err = ParseQueryInt(r, "page", 1, 1, 100); err == nil {
		t.Fatal("expected error for out-of-range input")
	}
}

func TestParsePathUUID(t *testing.T) {
	id := uuid.New()
	parsed, err := ParsePathUUID(id.String(), "item_id")
	if err != nil || parsed != id {
		t.Fatalf("got %s, %v", parsed, err)
	}

	if _, err := ParsePathUUID("nope", "item_id"); err == nil {
		t.Fatal("expected error for malformed uuid")
	}
	if _, err := ParsePathUUID(uuid.Nil.String(), "item_id"); err == nil {
		t.Fatal("expected error for nil uuid")
	}
}
