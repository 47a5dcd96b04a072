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
	ErrInvalidTarget    = errors.New("invalid_target")
	ErrInvalidIssueDate = errors.New("invalid_issue_date")
	ErrNotFound         = errors.New("receipt_not_found")
	ErrPaymentNotFound  = errors.New("payment_not_found")
	ErrTargetNotFound   = errors.New("target_not_found")
)

// AlreadyIssuedError reports that a receipt already exists for the payment.
// Bulk issuance counts it as a skip, not a failure.
type AlreadyIssuedError struct {
	PaymentID snowflake.ID
}

func (e *AlreadyIssuedError) Error() string {
	return fmt.Sprintf("receipt_already_issued: payment %s", e.PaymentID)
}

type IssueReceiptRequest struct {
	PaymentID   snowflake.ID
	IssueDate   time.Time
	Description string
	IssuerName  string
	CreatedBy   string
}

type BulkIssueRequest struct {
	IssueDate   time.Time
	Description string
	IssuerName  string
	CreatedBy   string
}

// IssuePreReceiptRequest targets exactly one of UserID or CompanyName.
// IssueDate may be nil: the date is hand-filled at physical collection.
type IssuePreReceiptRequest struct {
	UserID      string
	CompanyName string
	IssueDate   *time.Time
	Description string
	IssuerName  string
	CreatedBy   string
}

type ReissueReceiptRequest struct {
	ID          snowflake.ID
	IssueDate   *time.Time
	Description string
	IssuerName  string
}

type ListReceiptRequest struct {
	PreOnly bool
	Page    pagination.Pagination
}

type ListReceiptResponse struct {
	pagination.PageInfo
	Receipts []Receipt `json:"receipts"`
}

type Service interface {
	Issue(ctx context.Context, req IssueReceiptRequest) (Receipt, error)
	BulkIssue(ctx context.Context, paymentIDs []snowflake.ID, req BulkIssueRequest) (BulkIssueSummary, error)
	IssuePre(ctx context.Context, req IssuePreReceiptRequest) (Receipt, error)
	Reissue(ctx context.Context, req ReissueReceiptRequest) (Receipt, error)
	BulkPrint(ctx context.Context, paymentIDs []snowflake.ID) ([]Receipt, error)
	GetByID(ctx context.Context, id snowflake.ID) (Receipt, error)
	List(ctx context.Context, req ListReceiptRequest) (ListReceiptResponse, error)
}
