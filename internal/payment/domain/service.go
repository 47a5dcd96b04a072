package domain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bentoworks/shukin/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
)

var (
	ErrInvalidAmount      = errors.New("invalid_amount")
	ErrInvalidDate        = errors.New("invalid_payment_date")
	ErrInvalidTarget      = errors.New("invalid_target")
	ErrExceedsOutstanding = errors.New("amount_exceeds_outstanding")
	ErrTargetNotFound     = errors.New("target_not_found")
	ErrNotFound           = errors.New("payment_not_found")
)

// CheckFailedError reports a company payment whose amount does not match the
// company's outstanding total. It is a correctable condition, not a hard
// failure: callers surface the expected figure so the operator can resubmit.
type CheckFailedError struct {
	Expected int64
	Supplied int64
}

func (e *CheckFailedError) Error() string {
	return fmt.Sprintf("company_amount_mismatch: expected %d, supplied %d", e.Expected, e.Supplied)
}

type RecordPaymentRequest struct {
	UserID      string
	PaymentDate time.Time
	Amount      int64
	Method      string
	ReferenceNo string
	Notes       string
	CreatedBy   string
}

type RecordCompanyPaymentRequest struct {
	CompanyName string
	PaymentDate time.Time
	Amount      int64
	Method      string
	ReferenceNo string
	Notes       string
	CreatedBy   string
}

type UpdatePaymentRequest struct {
	ID          snowflake.ID
	PaymentDate time.Time
	Amount      int64
	Method      string
	ReferenceNo string
	Notes       string
}

type ListPaymentRequest struct {
	Kind     string
	TargetID string
	From     *time.Time
	To       *time.Time
	Page     pagination.Pagination
}

type ListPaymentResponse struct {
	pagination.PageInfo
	Payments []Payment `json:"payments"`
}

type Service interface {
	Record(ctx context.Context, req RecordPaymentRequest) (Payment, error)
	RecordCompany(ctx context.Context, req RecordCompanyPaymentRequest) (Payment, error)
	Update(ctx context.Context, req UpdatePaymentRequest) (Payment, error)
	Delete(ctx context.Context, id snowflake.ID) error
	GetByID(ctx context.Context, id snowflake.ID) (Payment, error)
	List(ctx context.Context, req ListPaymentRequest) (ListPaymentResponse, error)
	AllocationsForPayment(ctx context.Context, id snowflake.ID) ([]Allocation, error)
}
