package server

import (
	"errors"
	"net/http"
	"testing"

	paymentdomain "github.com/bentoworks/shukin/internal/payment/domain"
	receiptdomain "github.com/bentoworks/shukin/internal/receipt/domain"
	"gorm.io/gorm"
)

func TestMapErrorCheckFailed(t *testing.T) {
	err := &paymentdomain.CheckFailedError{Expected: 5000, Supplied: 4000}

	status, payload := mapError(err)
	if status != http.StatusConflict {
		t.Fatalf("expected 409, got %d", status)
	}
	if payload.Type != "check_failed" {
		t.Fatalf("expected type check_failed, got %s", payload.Type)
	}
	if payload.Expected == nil || *payload.Expected != 5000 {
		t.Fatalf("expected expected_amount 5000, got %v", payload.Expected)
	}
	if payload.Supplied == nil || *payload.Supplied != 4000 {
		t.Fatalf("expected supplied_amount 4000, got %v", payload.Supplied)
	}
}

func TestMapErrorAlreadyIssued(t *testing.T) {
	status, payload := mapError(&receiptdomain.AlreadyIssuedError{})
	if status != http.StatusConflict {
		t.Fatalf("expected 409, got %d", status)
	}
	if payload.Type != "already_issued" {
		t.Fatalf("expected type already_issued, got %s", payload.Type)
	}
}

func TestMapErrorValidation(t *testing.T) {
	for _, err := range []error{
		paymentdomain.ErrInvalidAmount,
		paymentdomain.ErrExceedsOutstanding,
		receiptdomain.ErrInvalidTarget,
	} {
		status, payload := mapError(err)
		if status != http.StatusBadRequest {
			t.Fatalf("%v: expected 400, got %d", err, status)
		}
		if payload.Type != "validation_error" {
			t.Fatalf("%v: expected type validation_error, got %s", err, payload.Type)
		}
	}
}

func TestMapErrorNotFound(t *testing.T) {
	for _, err := range []error{
		paymentdomain.ErrNotFound,
		receiptdomain.ErrPaymentNotFound,
		gorm.ErrRecordNotFound,
	} {
		status, _ := mapError(err)
		if status != http.StatusNotFound {
			t.Fatalf("%v: expected 404, got %d", err, status)
		}
	}
}

func TestMapErrorInternal(t *testing.T) {
	status, payload := mapError(errors.New("boom"))
	if status != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", status)
	}
	if payload.Type != "internal_error" {
		t.Fatalf("expected type internal_error, got %s", payload.Type)
	}
}
