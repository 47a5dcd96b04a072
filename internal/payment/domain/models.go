package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Kind distinguishes an individual payment from a company lump-sum payment.
type Kind string

const (
	KindIndividual Kind = "individual"
	KindCompany    Kind = "company"
)

func (k Kind) Valid() bool {
	return k == KindIndividual || k == KindCompany
}

// Payment is money received against outstanding orders. An individual
// payment targets one user; a company payment settles every user of the
// company at once. TargetID holds the user id or the company name.
type Payment struct {
	ID          snowflake.ID `json:"id" gorm:"primaryKey"`
	Kind        Kind         `json:"payment_type" gorm:"column:payment_type;type:text;not null;index"`
	TargetID    string       `json:"target_id" gorm:"type:text;not null;index"`
	PaymentDate time.Time    `json:"payment_date" gorm:"not null"`
	Amount      int64        `json:"amount" gorm:"not null"`
	Method      string       `json:"payment_method" gorm:"column:payment_method;type:text"`
	ReferenceNo string       `json:"reference_number" gorm:"column:reference_number;type:text"`
	Notes       string       `json:"notes" gorm:"type:text"`
	CreatedBy   string       `json:"created_by" gorm:"type:text"`
	CreatedAt   time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time    `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Payment) TableName() string { return "payments" }

// Allocation records the portion of a payment applied to one user's debt.
// Allocations are owned by their payment: they are deleted when the payment
// is deleted and regenerated when it is edited.
type Allocation struct {
	ID        snowflake.ID `json:"id" gorm:"primaryKey"`
	PaymentID snowflake.ID `json:"payment_id" gorm:"not null;index"`
	UserID    string       `json:"user_id" gorm:"type:text;not null;index"`
	Amount    int64        `json:"amount" gorm:"not null"`
	CreatedAt time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Allocation) TableName() string { return "allocations" }
