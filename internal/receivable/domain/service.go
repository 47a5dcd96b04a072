package domain

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

var (
	ErrInvalidSort    = errors.New("invalid_sort")
	ErrInvalidTarget  = errors.New("invalid_target")
	ErrTargetNotFound = errors.New("target_not_found")
)

type Service interface {
	ListUserReceivables(ctx context.Context, req ListRequest) ([]Receivable, error)
	ListCompanyReceivables(ctx context.Context, req ListRequest) ([]Receivable, error)
	OutstandingForUser(ctx context.Context, userID string) (int64, error)
	OutstandingForCompany(ctx context.Context, companyName string) (int64, error)
}

// Repository computes balance aggregates. Methods take the db handle so
// callers can run them inside their own transaction and observe allocation
// state from the same boundary they write in.
type Repository interface {
	UserTotals(ctx context.Context, db *gorm.DB, userID string) (*UserTotals, error)
	CompanyUserTotals(ctx context.Context, db *gorm.DB, companyName string) ([]UserTotals, error)
	AllUserTotals(ctx context.Context, db *gorm.DB) ([]UserTotals, error)
}
