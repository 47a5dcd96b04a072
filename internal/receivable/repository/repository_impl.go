package repository

import (
	"context"

	"github.com/bentoworks/shukin/internal/receivable/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

const userTotalsSelect = `
	SELECT o.user_id AS user_id,
	       MAX(o.user_name) AS user_name,
	       MAX(o.company_name) AS company_name,
	       COUNT(o.id) AS total_orders,
	       COALESCE(SUM(o.amount), 0) AS total_ordered,
	       COALESCE((SELECT SUM(a.amount) FROM allocations a WHERE a.user_id = o.user_id), 0) AS total_paid
	FROM orders o`

func (r *repo) UserTotals(ctx context.Context, db *gorm.DB, userID string) (*domain.UserTotals, error) {
	var item domain.UserTotals
	err := db.WithContext(ctx).Raw(
		userTotalsSelect+`
		WHERE o.user_id = ?
		GROUP BY o.user_id`,
		userID,
	).Scan(&item).Error
	if err != nil {
		return nil, err
	}
	if item.UserID == "" {
		return nil, nil
	}
	return &item, nil
}

func (r *repo) CompanyUserTotals(ctx context.Context, db *gorm.DB, companyName string) ([]domain.UserTotals, error) {
	var items []domain.UserTotals
	err := db.WithContext(ctx).Raw(
		userTotalsSelect+`
		WHERE o.company_name = ?
		GROUP BY o.user_id
		ORDER BY o.user_id`,
		companyName,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) AllUserTotals(ctx context.Context, db *gorm.DB) ([]domain.UserTotals, error) {
	var items []domain.UserTotals
	err := db.WithContext(ctx).Raw(
		userTotalsSelect + `
		GROUP BY o.user_id
		ORDER BY o.user_id`,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
