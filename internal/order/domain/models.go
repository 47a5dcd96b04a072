package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Order is a delivered catering order. Orders are written by the intake
// pipeline and are read-only for the reconciliation engine.
type Order struct {
	ID           snowflake.ID `json:"id" gorm:"primaryKey"`
	UserID       string       `json:"user_id" gorm:"type:text;not null;index"`
	UserName     string       `json:"user_name" gorm:"type:text;not null"`
	CompanyName  string       `json:"company_name" gorm:"type:text;not null;index"`
	Amount       int64        `json:"amount" gorm:"not null"`
	DeliveryDate time.Time    `json:"delivery_date" gorm:"not null"`
	CreatedAt    time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Order) TableName() string { return "orders" }
