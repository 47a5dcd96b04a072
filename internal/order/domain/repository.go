package domain

import (
	"context"

	"gorm.io/gorm"
)

// Repository reads the order store. The engine never writes orders.
type Repository interface {
	OrdersForUser(ctx context.Context, db *gorm.DB, userID string) ([]Order, error)
	OrdersForCompany(ctx context.Context, db *gorm.DB, companyName string) ([]Order, error)
	// LockUserOrders takes row locks on the user's orders so a
	// validate-then-write sequence is not interleaved with another writer
	// on the same user. No-op on sqlite, which serializes writers itself.
	LockUserOrders(ctx context.Context, db *gorm.DB, userID string) error
	LockCompanyOrders(ctx context.Context, db *gorm.DB, companyName string) error
}
