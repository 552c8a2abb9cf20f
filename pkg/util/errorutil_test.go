package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
)

func TestToDomainErrorPassthrough(t *testing.T) {
	original := NewValidationError("mobile_number required", map[string]any{"field": "mobile_number"})
	mapped := ToDomainError(original)
	if mapped.Code != "VALIDATION_FAILED" || mapped.HTTPStatus != http.StatusBadRequest {
		t.Fatalf("unexpected mapping: %+v", mapped)
	}
}

func TestToDomainErrorRowMiss(t *testing.T) {
	cases := []error{
		pgx.ErrNoRows,
		fmt.Errorf("load user: %w", pgx.ErrNoRows),
	}
	for _, err := range cases {
		mapped := ToDomainError(err)
		if mapped.Code != "NOT_FOUND" || mapped.HTTPStatus != http.StatusNotFound {
			t.Fatalf("%v: want NOT_FOUND/404, got %+v", err, mapped)
		}
	}
}

func TestToDomainErrorGeneric(t *testing.T) {
	mapped := ToDomainError(errors.New("disk on fire"))
	if mapped.Code != "INTERNAL_ERROR" || mapped.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("want INTERNAL_ERROR/500, got %+v", mapped)
	}
}

func TestToDomainErrorNil(t *testing.T) {
	if mapped := ToDomainError(nil); mapped != nil {
		t.Fatalf("nil error must map to nil, got %+v", mapped)
	}
}

func TestDomainErrorUnwrap(t *testing.T) {
	cause := errors.New("cause")
	wrapped := NewInternalError(cause)
	if !errors.Is(wrapped, cause) {
		t.Fatal("DomainError should unwrap to its cause")
	}
}
