package repository

import (
	"context"

	"github.com/bentoworks/shukin/internal/order/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) OrdersForUser(ctx context.Context, db *gorm.DB, userID string) ([]domain.Order, error) {
	var items []domain.Order
	err := db.WithContext(ctx).Raw(
		`SELECT id, user_id, user_name, company_name, amount, delivery_date, created_at
		 FROM orders
		 WHERE user_id = ?
		 ORDER BY delivery_date, id`,
		userID,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) OrdersForCompany(ctx context.Context, db *gorm.DB, companyName string) ([]domain.Order, error) {
	var items []domain.Order
	err := db.WithContext(ctx).Raw(
		`SELECT id, user_id, user_name, company_name, amount, delivery_date, created_at
		 FROM orders
		 WHERE company_name = ?
		 ORDER BY user_id, delivery_date, id`,
		companyName,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) LockUserOrders(ctx context.Context, db *gorm.DB, userID string) error {
	if !supportsRowLocks(db) {
		return nil
	}
	var ids []int64
	return db.WithContext(ctx).Raw(
		`SELECT id FROM orders WHERE user_id = ? FOR UPDATE`,
		userID,
	).Scan(&ids).Error
}

func (r *repo) LockCompanyOrders(ctx context.Context, db *gorm.DB, companyName string) error {
	if !supportsRowLocks(db) {
		return nil
	}
	var ids []int64
	return db.WithContext(ctx).Raw(
		`SELECT id FROM orders WHERE company_name = ? FOR UPDATE`,
		companyName,
	).Scan(&ids).Error
}

func supportsRowLocks(db *gorm.DB) bool {
	if db == nil || db.Dialector == nil {
		return false
	}
	return db.Dialector.Name() != "sqlite"
}
