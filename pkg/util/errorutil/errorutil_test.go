package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestToDomainError_MapsStorageMisses(t *testing.T) {
	for _, err := range []error{ErrNotFound, pgx.ErrNoRows, fmt.Errorf("get team: %w", pgx.ErrNoRows)} {
		de := ToDomainError(err)
		if de.Code != CodeNotFound || de.HTTPStatus != http.StatusNotFound {
			t.Fatalf("expected NOT_FOUND for %v, got %+v", err, de)
		}
	}
}

func TestToDomainError_UnknownBecomesInternal(t *testing.T) {
	de := ToDomainError(errors.New("boom"))
	if de.Code != CodeInternal || de.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("unexpected mapping: %+v", de)
	}
}

func TestToDomainError_MalformedUUIDIsBadRequest(t *testing.T) {
	err := fmt.Errorf("get task: %w", &pgconn.PgError{Code: "22P02", Message: `invalid input syntax for type uuid: "abc"`})
	de := ToDomainError(err)
	if de.Code != CodeValidationFailed || de.HTTPStatus != http.StatusBadRequest {
		t.Fatalf("expected VALIDATION_FAILED, got %+v", de)
	}
	if other := ToDomainError(&pgconn.PgError{Code: "23505"}); other.Code != CodeInternal {
		t.Fatalf("other postgres errors stay internal, got %+v", other)
	}
}

func TestIsValidation(t *testing.T) {
	err := fmt.Errorf("create subtask: %w", NewValidationError("bad deadline", nil))
	if !IsValidation(err) {
		t.Fatalf("expected wrapped validation error to be recognised")
	}
	if IsValidation(NewForbidden("nope")) {
		t.Fatalf("forbidden must not be reported as validation")
	}
}

func TestValidateStruct(t *testing.T) {
	type payload struct {
		Name  string `validate:"required"`
		Color int    `validate:"min=0,max=11"`
	}
	if err := ValidateStruct(payload{Name: "ops", Color: 3}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := ValidateStruct(payload{Color: 12})
	de := ToDomainError(err)
	if de.Code != CodeValidationFailed {
		t.Fatalf("expected validation failure, got %+v", de)
	}
	if de.Details["name"] != "name is required" {
		t.Fatalf("unexpected name detail: %v", de.Details["name"])
	}
	if de.Details["color"] != "color must be at most 11" {
		t.Fatalf("unexpected color detail: %v", de.Details["color"])
	}

	type reference struct {
		TeamID *string `validate:"omitempty,uuid"`
	}
	if err := ValidateStruct(reference{}); err != nil {
		t.Fatalf("unset reference must pass: %v", err)
	}
	bad := "abc"
	de = ToDomainError(ValidateStruct(reference{TeamID: &bad}))
	if de == nil || de.Details["teamid"] != "teamid must be a valid UUID" {
		t.Fatalf("unexpected uuid detail: %+v", de)
	}
}
