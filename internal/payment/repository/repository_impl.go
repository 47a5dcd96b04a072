package repository

import (
	"context"
	"strconv"

	"github.com/bentoworks/shukin/internal/payment/domain"
	"github.com/bentoworks/shukin/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, payment *domain.Payment) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO payments (
			id, payment_type, target_id, payment_date, amount,
			payment_method, reference_number, notes, created_by, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		payment.ID,
		string(payment.Kind),
		payment.TargetID,
		payment.PaymentDate,
		payment.Amount,
		payment.Method,
		payment.ReferenceNo,
		payment.Notes,
		payment.CreatedBy,
		payment.CreatedAt,
		payment.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Payment, error) {
	var item domain.Payment
	err := db.WithContext(ctx).Raw(
		`SELECT id, payment_type, target_id, payment_date, amount,
			payment_method, reference_number, notes, created_by, created_at, updated_at
		 FROM payments
		 WHERE id = ?
		 LIMIT 1`,
		id,
	).Scan(&item).Error
	if err != nil {
		return nil, err
	}
	if item.ID == 0 {
		return nil, nil
	}
	return &item, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, payment *domain.Payment) error {
	return db.WithContext(ctx).Exec(
		`UPDATE payments
		 SET payment_date = ?, amount = ?, payment_method = ?,
		     reference_number = ?, notes = ?, updated_at = ?
		 WHERE id = ?`,
		payment.PaymentDate,
		payment.Amount,
		payment.Method,
		payment.ReferenceNo,
		payment.Notes,
		payment.UpdatedAt,
		payment.ID,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(`DELETE FROM payments WHERE id = ?`, id).Error
}

func (r *repo) List(ctx context.Context, db *gorm.DB, req domain.ListPaymentRequest) ([]*domain.Payment, error) {
	query := db.WithContext(ctx).Table("payments")
	if req.Kind != "" {
		query = query.Where("payment_type = ?", req.Kind)
	}
	if req.TargetID != "" {
		query = query.Where("target_id = ?", req.TargetID)
	}
	if req.From != nil {
		query = query.Where("payment_date >= ?", req.From)
	}
	if req.To != nil {
		query = query.Where("payment_date < ?", req.To)
	}

	if token := req.Page.PageToken; token != "" {
		cursor, err := pagination.DecodeCursor(token)
		if err != nil {
			return nil, err
		}
		if cursor.ID != "" {
			id, err := strconv.ParseInt(cursor.ID, 10, 64)
			if err != nil {
				return nil, err
			}
			query = query.Where("id < ?", id)
		}
	}

	limit := req.Page.PageSize
	if limit <= 0 {
		limit = 50
	}

	var items []*domain.Payment
	err := query.Order("id DESC").Limit(limit + 1).Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) InsertAllocations(ctx context.Context, db *gorm.DB, allocations []domain.Allocation) error {
	for _, a := range allocations {
		if err := db.WithContext(ctx).Exec(
			`INSERT INTO allocations (id, payment_id, user_id, amount, created_at)
			 VALUES (?, ?, ?, ?, ?)`,
			a.ID,
			a.PaymentID,
			a.UserID,
			a.Amount,
			a.CreatedAt,
		).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *repo) AllocationsForPayment(ctx context.Context, db *gorm.DB, paymentID snowflake.ID) ([]domain.Allocation, error) {
	var items []domain.Allocation
	err := db.WithContext(ctx).Raw(
		`SELECT id, payment_id, user_id, amount, created_at
		 FROM allocations
		 WHERE payment_id = ?
		 ORDER BY user_id, id`,
		paymentID,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) DeleteAllocationsForPayment(ctx context.Context, db *gorm.DB, paymentID snowflake.ID) error {
	return db.WithContext(ctx).Exec(`DELETE FROM allocations WHERE payment_id = ?`, paymentID).Error
}
