package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Receipt is issued either for a recorded payment (PaymentID set, at most
// one receipt per payment) or ahead of collection as a pre-receipt
// (PaymentID nil, amount frozen at the outstanding figure it was based on).
type Receipt struct {
	ID          snowflake.ID  `json:"id" gorm:"primaryKey"`
	ReceiptNo   string        `json:"receipt_number" gorm:"column:receipt_number;type:text;not null;uniqueIndex:ux_receipts_number"`
	PaymentID   *snowflake.ID `json:"payment_id" gorm:"uniqueIndex:ux_receipts_payment"`
	UserID      string        `json:"user_id,omitempty" gorm:"type:text;index"`
	CompanyName string        `json:"company_name,omitempty" gorm:"type:text"`
	Amount      int64         `json:"amount" gorm:"not null"`
	IssueDate   *time.Time    `json:"issue_date"`
	Description string        `json:"description" gorm:"type:text"`
	IssuerName  string        `json:"issuer_name" gorm:"type:text"`
	CreatedBy   string        `json:"created_by" gorm:"type:text"`
	CreatedAt   time.Time     `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Receipt) TableName() string { return "receipts" }

func (r Receipt) IsPreReceipt() bool {
	return r.PaymentID == nil
}

// Counter backs receipt number generation. Numbers are year-scoped,
// monotonic and never reused, even when a receipt is deleted.
type Counter struct {
	ID      int64 `gorm:"primaryKey"`
	Year    int   `gorm:"not null"`
	LastSeq int64 `gorm:"not null"`
}

// TableName sets the database table name.
func (Counter) TableName() string { return "receipt_counters" }

// BulkIssueSummary reports per-item outcomes of a bulk issuance.
// Issued + Skipped + Failed always equals the number of submitted ids.
type BulkIssueSummary struct {
	Issued  int `json:"issued"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}
