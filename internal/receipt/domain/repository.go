package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, receipt *Receipt) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Receipt, error)
	FindByPaymentID(ctx context.Context, db *gorm.DB, paymentID snowflake.ID) (*Receipt, error)
	FindByPaymentIDs(ctx context.Context, db *gorm.DB, paymentIDs []snowflake.ID) ([]Receipt, error)
	Update(ctx context.Context, db *gorm.DB, receipt *Receipt) error
	DeleteByPaymentID(ctx context.Context, db *gorm.DB, paymentID snowflake.ID) error
	List(ctx context.Context, db *gorm.DB, req ListReceiptRequest) ([]*Receipt, error)
	// NextNumber advances the year-scoped counter and returns the next
	// sequence. Must be called inside the caller's transaction.
	NextNumber(ctx context.Context, db *gorm.DB, year int) (int64, error)
}
