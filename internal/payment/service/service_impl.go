package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	obsmetrics "github.com/bentoworks/shukin/internal/observability/metrics"
	orderdomain "github.com/bentoworks/shukin/internal/order/domain"
	paymentdomain "github.com/bentoworks/shukin/internal/payment/domain"
	receiptdomain "github.com/bentoworks/shukin/internal/receipt/domain"
	receivabledomain "github.com/bentoworks/shukin/internal/receivable/domain"
	"github.com/bentoworks/shukin/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Repo        paymentdomain.Repository
	Orders      orderdomain.Repository
	Receivables receivabledomain.Repository
	Receipts    receiptdomain.Repository
	ObsMetrics  *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	repo        paymentdomain.Repository
	orders      orderdomain.Repository
	receivables receivabledomain.Repository
	receipts    receiptdomain.Repository
	obsMetrics  *obsmetrics.Metrics
}

func NewService(p Params) paymentdomain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("payment.service"),
		genID:       p.GenID,
		repo:        p.Repo,
		orders:      p.Orders,
		receivables: p.Receivables,
		receipts:    p.Receipts,
		obsMetrics:  p.ObsMetrics,
	}
}

// Record validates and persists an individual payment together with its
// single allocation. The outstanding check runs inside the transaction, after
// the user's order rows are locked, so two concurrent payments against the
// same user cannot both pass validation on a stale balance.
func (s *Service) Record(ctx context.Context, req paymentdomain.RecordPaymentRequest) (paymentdomain.Payment, error) {
	req.UserID = strings.TrimSpace(req.UserID)
	if req.UserID == "" {
		return paymentdomain.Payment{}, paymentdomain.ErrInvalidTarget
	}
	if req.Amount <= 0 {
		return paymentdomain.Payment{}, paymentdomain.ErrInvalidAmount
	}
	if req.PaymentDate.IsZero() {
		return paymentdomain.Payment{}, paymentdomain.ErrInvalidDate
	}

	var payment paymentdomain.Payment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.orders.LockUserOrders(ctx, tx, req.UserID); err != nil {
			return err
		}

		totals, err := s.receivables.UserTotals(ctx, tx, req.UserID)
		if err != nil {
			return err
		}
		if totals == nil {
			return paymentdomain.ErrTargetNotFound
		}
		if req.Amount > totals.Outstanding() {
			return paymentdomain.ErrExceedsOutstanding
		}

		now := time.Now().UTC()
		payment = paymentdomain.Payment{
			ID:          s.genID.Generate(),
			Kind:        paymentdomain.KindIndividual,
			TargetID:    req.UserID,
			PaymentDate: req.PaymentDate.UTC(),
			Amount:      req.Amount,
			Method:      strings.TrimSpace(req.Method),
			ReferenceNo: strings.TrimSpace(req.ReferenceNo),
			Notes:       req.Notes,
			CreatedBy:   strings.TrimSpace(req.CreatedBy),
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := s.repo.Insert(ctx, tx, &payment); err != nil {
			return err
		}

		return s.repo.InsertAllocations(ctx, tx, []paymentdomain.Allocation{{
			ID:        s.genID.Generate(),
			PaymentID: payment.ID,
			UserID:    req.UserID,
			Amount:    req.Amount,
			CreatedAt: now,
		}})
	})
	if err != nil {
		return paymentdomain.Payment{}, err
	}

	if s.obsMetrics != nil {
		s.obsMetrics.RecordPayment(string(paymentdomain.KindIndividual))
	}
	s.log.Info("payment recorded",
		zap.String("payment_id", payment.ID.String()),
		zap.String("user_id", req.UserID),
		zap.Int64("amount", req.Amount),
	)
	return payment, nil
}

// RecordCompany accepts a lump-sum payment only as a full reconciliation of
// every constituent user's debt. A partial amount is ambiguous to allocate
// fairly, so a mismatch returns CheckFailedError with the expected figure
// and writes nothing.
func (s *Service) RecordCompany(ctx context.Context, req paymentdomain.RecordCompanyPaymentRequest) (paymentdomain.Payment, error) {
	req.CompanyName = strings.TrimSpace(req.CompanyName)
	if req.CompanyName == "" {
		return paymentdomain.Payment{}, paymentdomain.ErrInvalidTarget
	}
	if req.Amount <= 0 {
		return paymentdomain.Payment{}, paymentdomain.ErrInvalidAmount
	}
	if req.PaymentDate.IsZero() {
		return paymentdomain.Payment{}, paymentdomain.ErrInvalidDate
	}

	var payment paymentdomain.Payment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.orders.LockCompanyOrders(ctx, tx, req.CompanyName); err != nil {
			return err
		}

		totals, err := s.receivables.CompanyUserTotals(ctx, tx, req.CompanyName)
		if err != nil {
			return err
		}
		if len(totals) == 0 {
			return paymentdomain.ErrTargetNotFound
		}

		var expected int64
		for _, t := range totals {
			expected += t.Outstanding()
		}
		if req.Amount != expected {
			return &paymentdomain.CheckFailedError{Expected: expected, Supplied: req.Amount}
		}

		now := time.Now().UTC()
		payment = paymentdomain.Payment{
			ID:          s.genID.Generate(),
			Kind:        paymentdomain.KindCompany,
			TargetID:    req.CompanyName,
			PaymentDate: req.PaymentDate.UTC(),
			Amount:      req.Amount,
			Method:      strings.TrimSpace(req.Method),
			ReferenceNo: strings.TrimSpace(req.ReferenceNo),
			Notes:       req.Notes,
			CreatedBy:   strings.TrimSpace(req.CreatedBy),
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := s.repo.Insert(ctx, tx, &payment); err != nil {
			return err
		}

		return s.repo.InsertAllocations(ctx, tx, buildCompanyAllocations(s.genID, payment.ID, totals, now))
	})
	if err != nil {
		return paymentdomain.Payment{}, err
	}

	if s.obsMetrics != nil {
		s.obsMetrics.RecordPayment(string(paymentdomain.KindCompany))
	}
	s.log.Info("company payment recorded",
		zap.String("payment_id", payment.ID.String()),
		zap.String("company", req.CompanyName),
		zap.Int64("amount", req.Amount),
	)
	return payment, nil
}

// Update re-validates the new amount as if this payment did not exist, then
// regenerates the allocations under the same rule as the original kind.
func (s *Service) Update(ctx context.Context, req paymentdomain.UpdatePaymentRequest) (paymentdomain.Payment, error) {
	if req.Amount <= 0 {
		return paymentdomain.Payment{}, paymentdomain.ErrInvalidAmount
	}
	if req.PaymentDate.IsZero() {
		return paymentdomain.Payment{}, paymentdomain.ErrInvalidDate
	}

	var payment paymentdomain.Payment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.repo.FindByID(ctx, tx, req.ID)
		if err != nil {
			return err
		}
		if existing == nil {
			return paymentdomain.ErrNotFound
		}

		// Dropping the old allocations first makes the outstanding
		// re-read reflect "all other payments"; a failed validation
		// rolls the delete back with the rest of the transaction.
		if err := s.repo.DeleteAllocationsForPayment(ctx, tx, existing.ID); err != nil {
			return err
		}

		now := time.Now().UTC()
		switch existing.Kind {
		case paymentdomain.KindIndividual:
			if err := s.orders.LockUserOrders(ctx, tx, existing.TargetID); err != nil {
				return err
			}
			totals, err := s.receivables.UserTotals(ctx, tx, existing.TargetID)
			if err != nil {
				return err
			}
			if totals == nil {
				return paymentdomain.ErrTargetNotFound
			}
			if req.Amount > totals.Outstanding() {
				return paymentdomain.ErrExceedsOutstanding
			}
			if err := s.repo.InsertAllocations(ctx, tx, []paymentdomain.Allocation{{
				ID:        s.genID.Generate(),
				PaymentID: existing.ID,
				UserID:    existing.TargetID,
				Amount:    req.Amount,
				CreatedAt: now,
			}}); err != nil {
				return err
			}
		case paymentdomain.KindCompany:
			if err := s.orders.LockCompanyOrders(ctx, tx, existing.TargetID); err != nil {
				return err
			}
			totals, err := s.receivables.CompanyUserTotals(ctx, tx, existing.TargetID)
			if err != nil {
				return err
			}
			if len(totals) == 0 {
				return paymentdomain.ErrTargetNotFound
			}
			var expected int64
			for _, t := range totals {
				expected += t.Outstanding()
			}
			if req.Amount != expected {
				return &paymentdomain.CheckFailedError{Expected: expected, Supplied: req.Amount}
			}
			if err := s.repo.InsertAllocations(ctx, tx, buildCompanyAllocations(s.genID, existing.ID, totals, now)); err != nil {
				return err
			}
		default:
			return paymentdomain.ErrInvalidTarget
		}

		existing.PaymentDate = req.PaymentDate.UTC()
		existing.Amount = req.Amount
		existing.Method = strings.TrimSpace(req.Method)
		existing.ReferenceNo = strings.TrimSpace(req.ReferenceNo)
		existing.Notes = req.Notes
		existing.UpdatedAt = now
		if err := s.repo.Update(ctx, tx, existing); err != nil {
			return err
		}

		payment = *existing
		return nil
	})
	if err != nil {
		return paymentdomain.Payment{}, err
	}

	s.log.Info("payment updated",
		zap.String("payment_id", payment.ID.String()),
		zap.Int64("amount", payment.Amount),
	)
	return payment, nil
}

// Delete removes a payment together with its allocations and any receipt
// issued for it. A receipt cannot outlive its payment; pre-receipts carry no
// payment linkage and are untouched.
func (s *Service) Delete(ctx context.Context, id snowflake.ID) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.repo.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if existing == nil {
			return paymentdomain.ErrNotFound
		}

		if err := s.repo.DeleteAllocationsForPayment(ctx, tx, id); err != nil {
			return err
		}
		if err := s.receipts.DeleteByPaymentID(ctx, tx, id); err != nil {
			return err
		}
		return s.repo.Delete(ctx, tx, id)
	})
	if err != nil {
		return err
	}

	if s.obsMetrics != nil {
		s.obsMetrics.RecordPaymentDeleted()
	}
	s.log.Info("payment deleted", zap.String("payment_id", id.String()))
	return nil
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (paymentdomain.Payment, error) {
	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return paymentdomain.Payment{}, err
	}
	if item == nil {
		return paymentdomain.Payment{}, paymentdomain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) List(ctx context.Context, req paymentdomain.ListPaymentRequest) (paymentdomain.ListPaymentResponse, error) {
	if req.Kind != "" && !paymentdomain.Kind(req.Kind).Valid() {
		return paymentdomain.ListPaymentResponse{}, paymentdomain.ErrInvalidTarget
	}

	items, err := s.repo.List(ctx, s.db, req)
	if err != nil {
		return paymentdomain.ListPaymentResponse{}, err
	}

	limit := req.Page.PageSize
	if limit <= 0 {
		limit = 50
	}
	items, pageInfo := pagination.BuildCursorPageInfo(items, limit, func(p *paymentdomain.Payment) string {
		token, _ := pagination.EncodeCursor(pagination.Cursor{ID: strconv.FormatInt(int64(p.ID), 10)})
		return token
	})

	payments := make([]paymentdomain.Payment, 0, len(items))
	for _, item := range items {
		payments = append(payments, *item)
	}
	return paymentdomain.ListPaymentResponse{
		PageInfo: *pageInfo,
		Payments: payments,
	}, nil
}

func (s *Service) AllocationsForPayment(ctx context.Context, id snowflake.ID) ([]paymentdomain.Allocation, error) {
	existing, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, paymentdomain.ErrNotFound
	}
	return s.repo.AllocationsForPayment(ctx, s.db, id)
}

// buildCompanyAllocations settles each user with outstanding debt in full.
// The allocation sum equals the payment amount because the amount was
// required to match the company outstanding exactly.
func buildCompanyAllocations(genID *snowflake.Node, paymentID snowflake.ID, totals []receivabledomain.UserTotals, now time.Time) []paymentdomain.Allocation {
	allocations := make([]paymentdomain.Allocation, 0, len(totals))
	for _, t := range totals {
		outstanding := t.Outstanding()
		if outstanding <= 0 {
			continue
		}
		allocations = append(allocations, paymentdomain.Allocation{
			ID:        genID.Generate(),
			PaymentID: paymentID,
			UserID:    t.UserID,
			Amount:    outstanding,
			CreatedAt: now,
		})
	}
	return allocations
}
