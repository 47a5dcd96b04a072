package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, payment *Payment) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Payment, error)
	Update(ctx context.Context, db *gorm.DB, payment *Payment) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	List(ctx context.Context, db *gorm.DB, req ListPaymentRequest) ([]*Payment, error)

	InsertAllocations(ctx context.Context, db *gorm.DB, allocations []Allocation) error
	AllocationsForPayment(ctx context.Context, db *gorm.DB, paymentID snowflake.ID) ([]Allocation, error)
	DeleteAllocationsForPayment(ctx context.Context, db *gorm.DB, paymentID snowflake.ID) error
}
