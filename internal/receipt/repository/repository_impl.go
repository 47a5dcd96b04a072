package repository

import (
	"context"
	"strconv"

	"github.com/bentoworks/shukin/internal/receipt/domain"
	"github.com/bentoworks/shukin/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, receipt *domain.Receipt) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO receipts (
			id, receipt_number, payment_id, user_id, company_name,
			amount, issue_date, description, issuer_name, created_by, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		receipt.ID,
		receipt.ReceiptNo,
		receipt.PaymentID,
		receipt.UserID,
		receipt.CompanyName,
		receipt.Amount,
		receipt.IssueDate,
		receipt.Description,
		receipt.IssuerName,
		receipt.CreatedBy,
		receipt.CreatedAt,
	).Error
}

const receiptSelect = `
	SELECT id, receipt_number, payment_id, user_id, company_name,
	       amount, issue_date, description, issuer_name, created_by, created_at
	FROM receipts`

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Receipt, error) {
	var item domain.Receipt
	err := db.WithContext(ctx).Raw(receiptSelect+` WHERE id = ? LIMIT 1`, id).Scan(&item).Error
	if err != nil {
		return nil, err
	}
	if item.ID == 0 {
		return nil, nil
	}
	return &item, nil
}

func (r *repo) FindByPaymentID(ctx context.Context, db *gorm.DB, paymentID snowflake.ID) (*domain.Receipt, error) {
	var item domain.Receipt
	err := db.WithContext(ctx).Raw(receiptSelect+` WHERE payment_id = ? LIMIT 1`, paymentID).Scan(&item).Error
	if err != nil {
		return nil, err
	}
	if item.ID == 0 {
		return nil, nil
	}
	return &item, nil
}

func (r *repo) FindByPaymentIDs(ctx context.Context, db *gorm.DB, paymentIDs []snowflake.ID) ([]domain.Receipt, error) {
	if len(paymentIDs) == 0 {
		return nil, nil
	}
	ids := make([]int64, 0, len(paymentIDs))
	for _, id := range paymentIDs {
		ids = append(ids, int64(id))
	}
	var items []domain.Receipt
	err := db.WithContext(ctx).Raw(receiptSelect+` WHERE payment_id IN ? ORDER BY receipt_number`, ids).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, receipt *domain.Receipt) error {
	return db.WithContext(ctx).Exec(
		`UPDATE receipts
		 SET receipt_number = ?, issue_date = ?, description = ?, issuer_name = ?
		 WHERE id = ?`,
		receipt.ReceiptNo,
		receipt.IssueDate,
		receipt.Description,
		receipt.IssuerName,
		receipt.ID,
	).Error
}

func (r *repo) DeleteByPaymentID(ctx context.Context, db *gorm.DB, paymentID snowflake.ID) error {
	return db.WithContext(ctx).Exec(`DELETE FROM receipts WHERE payment_id = ?`, paymentID).Error
}

func (r *repo) List(ctx context.Context, db *gorm.DB, req domain.ListReceiptRequest) ([]*domain.Receipt, error) {
	query := db.WithContext(ctx).Table("receipts")
	if req.PreOnly {
		query = query.Where("payment_id IS NULL")
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

	var items []*domain.Receipt
	err := query.Order("id DESC").Limit(limit + 1).Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) NextNumber(ctx context.Context, db *gorm.DB, year int) (int64, error) {
	// Single-row counter; the update also serves as the lock so
	// concurrent issuers serialize here.
	res := db.WithContext(ctx).Exec(
		`UPDATE receipt_counters
		 SET last_seq = CASE WHEN year = ? THEN last_seq + 1 ELSE 1 END,
		     year = ?
		 WHERE id = 1`,
		year,
		year,
	)
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		if err := db.WithContext(ctx).Exec(
			`INSERT INTO receipt_counters (id, year, last_seq) VALUES (1, ?, 1)`,
			year,
		).Error; err != nil {
			return 0, err
		}
		return 1, nil
	}

	var seq int64
	if err := db.WithContext(ctx).Raw(
		`SELECT last_seq FROM receipt_counters WHERE id = 1`,
	).Scan(&seq).Error; err != nil {
		return 0, err
	}
	return seq, nil
}
