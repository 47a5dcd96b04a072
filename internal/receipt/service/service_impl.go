package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bentoworks/shukin/internal/clock"
	"github.com/bentoworks/shukin/internal/config"
	obsmetrics "github.com/bentoworks/shukin/internal/observability/metrics"
	paymentdomain "github.com/bentoworks/shukin/internal/payment/domain"
	receiptdomain "github.com/bentoworks/shukin/internal/receipt/domain"
	receivabledomain "github.com/bentoworks/shukin/internal/receivable/domain"
	"github.com/bentoworks/shukin/pkg/db"
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
	Clock       clock.Clock
	Cfg         config.Config
	Repo        receiptdomain.Repository
	Payments    paymentdomain.Repository
	Receivables receivabledomain.Repository
	ObsMetrics  *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	cfg         config.Config
	repo        receiptdomain.Repository
	payments    paymentdomain.Repository
	receivables receivabledomain.Repository
	obsMetrics  *obsmetrics.Metrics
}

func NewService(p Params) receiptdomain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("receipt.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		cfg:         p.Cfg,
		repo:        p.Repo,
		payments:    p.Payments,
		receivables: p.Receivables,
		obsMetrics:  p.ObsMetrics,
	}
}

// Issue creates the single receipt for a payment. The existence check runs
// inside the transaction and the unique index on payment_id backstops it, so
// issuing twice yields exactly one receipt and one AlreadyIssuedError.
func (s *Service) Issue(ctx context.Context, req receiptdomain.IssueReceiptRequest) (receiptdomain.Receipt, error) {
	if req.IssueDate.IsZero() {
		return receiptdomain.Receipt{}, receiptdomain.ErrInvalidIssueDate
	}

	var receipt receiptdomain.Receipt
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		payment, err := s.payments.FindByID(ctx, tx, req.PaymentID)
		if err != nil {
			return err
		}
		if payment == nil {
			return receiptdomain.ErrPaymentNotFound
		}

		existing, err := s.repo.FindByPaymentID(ctx, tx, req.PaymentID)
		if err != nil {
			return err
		}
		if existing != nil {
			return &receiptdomain.AlreadyIssuedError{PaymentID: req.PaymentID}
		}

		number, err := s.nextReceiptNumber(ctx, tx)
		if err != nil {
			return err
		}

		issueDate := req.IssueDate.UTC()
		paymentID := payment.ID
		receipt = receiptdomain.Receipt{
			ID:          s.genID.Generate(),
			ReceiptNo:   number,
			PaymentID:   &paymentID,
			Amount:      payment.Amount,
			IssueDate:   &issueDate,
			Description: strings.TrimSpace(req.Description),
			IssuerName:  s.issuerName(req.IssuerName),
			CreatedBy:   strings.TrimSpace(req.CreatedBy),
			CreatedAt:   s.clock.Now(),
		}
		switch payment.Kind {
		case paymentdomain.KindCompany:
			receipt.CompanyName = payment.TargetID
		default:
			receipt.UserID = payment.TargetID
		}

		if err := s.repo.Insert(ctx, tx, &receipt); err != nil {
			if db.IsDuplicateKeyErr(err) {
				return &receiptdomain.AlreadyIssuedError{PaymentID: req.PaymentID}
			}
			return err
		}
		return nil
	})
	if err != nil {
		return receiptdomain.Receipt{}, err
	}

	if s.obsMetrics != nil {
		s.obsMetrics.RecordReceiptIssued("receipt")
	}
	s.log.Info("receipt issued",
		zap.String("receipt_id", receipt.ID.String()),
		zap.String("receipt_number", receipt.ReceiptNo),
		zap.String("payment_id", req.PaymentID.String()),
	)
	return receipt, nil
}

// BulkIssue walks the selection item by item: already-receipted payments are
// skipped, storage failures are counted and logged without aborting the rest.
// Issued + Skipped + Failed always equals len(paymentIDs).
func (s *Service) BulkIssue(ctx context.Context, paymentIDs []snowflake.ID, req receiptdomain.BulkIssueRequest) (receiptdomain.BulkIssueSummary, error) {
	var summary receiptdomain.BulkIssueSummary
	var alreadyIssued *receiptdomain.AlreadyIssuedError

	for _, paymentID := range paymentIDs {
		_, err := s.Issue(ctx, receiptdomain.IssueReceiptRequest{
			PaymentID:   paymentID,
			IssueDate:   req.IssueDate,
			Description: req.Description,
			IssuerName:  req.IssuerName,
			CreatedBy:   req.CreatedBy,
		})
		switch {
		case err == nil:
			summary.Issued++
			s.recordBulkOutcome("issued")
		case errors.As(err, &alreadyIssued):
			summary.Skipped++
			s.recordBulkOutcome("skipped")
		default:
			summary.Failed++
			s.recordBulkOutcome("failed")
			s.log.Warn("bulk receipt issuance item failed",
				zap.String("payment_id", paymentID.String()),
				zap.Error(err),
			)
		}
	}

	s.log.Info("bulk receipt issuance finished",
		zap.Int("issued", summary.Issued),
		zap.Int("skipped", summary.Skipped),
		zap.Int("failed", summary.Failed),
	)
	return summary, nil
}

// IssuePre creates a receipt ahead of any payment, frozen at the target's
// outstanding figure. A target may accumulate several pre-receipts; each
// records the exact amount it was based on.
func (s *Service) IssuePre(ctx context.Context, req receiptdomain.IssuePreReceiptRequest) (receiptdomain.Receipt, error) {
	userID := strings.TrimSpace(req.UserID)
	companyName := strings.TrimSpace(req.CompanyName)
	if (userID == "") == (companyName == "") {
		return receiptdomain.Receipt{}, receiptdomain.ErrInvalidTarget
	}

	var receipt receiptdomain.Receipt
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var outstanding int64
		if userID != "" {
			totals, err := s.receivables.UserTotals(ctx, tx, userID)
			if err != nil {
				return err
			}
			if totals == nil {
				return receiptdomain.ErrTargetNotFound
			}
			outstanding = totals.Outstanding()
		} else {
			totals, err := s.receivables.CompanyUserTotals(ctx, tx, companyName)
			if err != nil {
				return err
			}
			if len(totals) == 0 {
				return receiptdomain.ErrTargetNotFound
			}
			for _, t := range totals {
				outstanding += t.Outstanding()
			}
		}

		number, err := s.nextReceiptNumber(ctx, tx)
		if err != nil {
			return err
		}

		var issueDate *time.Time
		if req.IssueDate != nil {
			d := req.IssueDate.UTC()
			issueDate = &d
		}

		receipt = receiptdomain.Receipt{
			ID:          s.genID.Generate(),
			ReceiptNo:   number,
			UserID:      userID,
			CompanyName: companyName,
			Amount:      outstanding,
			IssueDate:   issueDate,
			Description: strings.TrimSpace(req.Description),
			IssuerName:  s.issuerName(req.IssuerName),
			CreatedBy:   strings.TrimSpace(req.CreatedBy),
			CreatedAt:   s.clock.Now(),
		}
		return s.repo.Insert(ctx, tx, &receipt)
	})
	if err != nil {
		return receiptdomain.Receipt{}, err
	}

	if s.obsMetrics != nil {
		s.obsMetrics.RecordReceiptIssued("pre_receipt")
	}
	s.log.Info("pre-receipt issued",
		zap.String("receipt_id", receipt.ID.String()),
		zap.String("receipt_number", receipt.ReceiptNo),
		zap.Int64("amount", receipt.Amount),
	)
	return receipt, nil
}

// Reissue replaces the printable fields of an existing receipt under a fresh
// receipt number. The payment linkage and the amount never change, and the
// superseded number is never handed out again.
func (s *Service) Reissue(ctx context.Context, req receiptdomain.ReissueReceiptRequest) (receiptdomain.Receipt, error) {
	var receipt receiptdomain.Receipt
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.repo.FindByID(ctx, tx, req.ID)
		if err != nil {
			return err
		}
		if existing == nil {
			return receiptdomain.ErrNotFound
		}

		number, err := s.nextReceiptNumber(ctx, tx)
		if err != nil {
			return err
		}

		existing.ReceiptNo = number
		if req.IssueDate != nil {
			d := req.IssueDate.UTC()
			existing.IssueDate = &d
		}
		if desc := strings.TrimSpace(req.Description); desc != "" {
			existing.Description = desc
		}
		if issuer := strings.TrimSpace(req.IssuerName); issuer != "" {
			existing.IssuerName = issuer
		}

		if err := s.repo.Update(ctx, tx, existing); err != nil {
			return err
		}
		receipt = *existing
		return nil
	})
	if err != nil {
		return receiptdomain.Receipt{}, err
	}

	s.log.Info("receipt reissued",
		zap.String("receipt_id", receipt.ID.String()),
		zap.String("receipt_number", receipt.ReceiptNo),
	)
	return receipt, nil
}

// BulkPrint is a read-only fetch for combined print rendering; payment ids
// without a receipt are silently skipped.
func (s *Service) BulkPrint(ctx context.Context, paymentIDs []snowflake.ID) ([]receiptdomain.Receipt, error) {
	return s.repo.FindByPaymentIDs(ctx, s.db, paymentIDs)
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (receiptdomain.Receipt, error) {
	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return receiptdomain.Receipt{}, err
	}
	if item == nil {
		return receiptdomain.Receipt{}, receiptdomain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) List(ctx context.Context, req receiptdomain.ListReceiptRequest) (receiptdomain.ListReceiptResponse, error) {
	items, err := s.repo.List(ctx, s.db, req)
	if err != nil {
		return receiptdomain.ListReceiptResponse{}, err
	}

	limit := req.Page.PageSize
	if limit <= 0 {
		limit = 50
	}
	items, pageInfo := pagination.BuildCursorPageInfo(items, limit, func(r *receiptdomain.Receipt) string {
		token, _ := pagination.EncodeCursor(pagination.Cursor{ID: strconv.FormatInt(int64(r.ID), 10)})
		return token
	})

	receipts := make([]receiptdomain.Receipt, 0, len(items))
	for _, item := range items {
		receipts = append(receipts, *item)
	}
	return receiptdomain.ListReceiptResponse{
		PageInfo: *pageInfo,
		Receipts: receipts,
	}, nil
}

func (s *Service) nextReceiptNumber(ctx context.Context, tx *gorm.DB) (string, error) {
	year := s.clock.Now().Year()
	seq, err := s.repo.NextNumber(ctx, tx, year)
	if err != nil {
		return "", err
	}

	prefix := strings.TrimSpace(s.cfg.ReceiptPrefix)
	if prefix == "" {
		prefix = "R"
	}
	return fmt.Sprintf("%s%04d-%06d", prefix, year, seq), nil
}

func (s *Service) issuerName(requested string) string {
	if issuer := strings.TrimSpace(requested); issuer != "" {
		return issuer
	}
	return strings.TrimSpace(s.cfg.DefaultIssuerName)
}

func (s *Service) recordBulkOutcome(outcome string) {
	if s.obsMetrics != nil {
		s.obsMetrics.RecordBulkIssueItem(outcome)
	}
}
