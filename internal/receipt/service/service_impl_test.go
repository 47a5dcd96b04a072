package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bentoworks/shukin/internal/clock"
	"github.com/bentoworks/shukin/internal/config"
	paymentrepo "github.com/bentoworks/shukin/internal/payment/repository"
	receiptdomain "github.com/bentoworks/shukin/internal/receipt/domain"
	receiptrepo "github.com/bentoworks/shukin/internal/receipt/repository"
	receiptservice "github.com/bentoworks/shukin/internal/receipt/service"
	receivablerepo "github.com/bentoworks/shukin/internal/receivable/repository"
	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newReceiptService(db *gorm.DB, node *snowflake.Node, clk clock.Clock) receiptdomain.Service {
	return receiptservice.NewService(receiptservice.Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clk,
		Cfg: config.Config{
			ReceiptPrefix:     "R",
			DefaultIssuerName: "Bento Works Co.",
		},
		Repo:        receiptrepo.Provide(),
		Payments:    paymentrepo.Provide(),
		Receivables: receivablerepo.Provide(),
	})
}

func TestIssueReceipt(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)

	node, err := snowflake.NewNode(20)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}
	clk := clock.NewFakeClock(time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC))
	svc := newReceiptService(db, node, clk)

	paymentID := node.Generate()
	seedPayment(t, db, paymentID, "individual", "U001", 2000)

	receipt, err := svc.Issue(ctx, receiptdomain.IssueReceiptRequest{
		PaymentID: paymentID,
		IssueDate: time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC),
		CreatedBy: "admin",
	})
	if err != nil {
		t.Fatalf("issue receipt: %v", err)
	}

	if receipt.ReceiptNo != "R2024-000001" {
		t.Fatalf("expected receipt number R2024-000001, got %s", receipt.ReceiptNo)
	}
	if receipt.PaymentID == nil || *receipt.PaymentID != paymentID {
		t.Fatalf("expected payment linkage %s, got %v", paymentID, receipt.PaymentID)
	}
	if receipt.Amount != 2000 {
		t.Fatalf("expected amount 2000, got %d", receipt.Amount)
	}
	if receipt.UserID != "U001" {
		t.Fatalf("expected user U001, got %s", receipt.UserID)
	}
	if receipt.IssuerName != "Bento Works Co." {
		t.Fatalf("expected default issuer, got %s", receipt.IssuerName)
	}
}

func TestIssueReceiptTwice(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)

	node, err := snowflake.NewNode(21)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}
	clk := clock.NewFakeClock(time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC))
	svc := newReceiptService(db, node, clk)

	paymentID := node.Generate()
	seedPayment(t, db, paymentID, "individual", "U001", 2000)

	req := receiptdomain.IssueReceiptRequest{
		PaymentID: paymentID,
		IssueDate: time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC),
	}
	if _, err := svc.Issue(ctx, req); err != nil {
		t.Fatalf("first issue: %v", err)
	}

	_, err = svc.Issue(ctx, req)
	var alreadyIssued *receiptdomain.AlreadyIssuedError
	if !errors.As(err, &alreadyIssued) {
		t.Fatalf("expected AlreadyIssuedError, got %v", err)
	}
	if alreadyIssued.PaymentID != paymentID {
		t.Fatalf("expected payment id %s, got %s", paymentID, alreadyIssued.PaymentID)
	}

	assertCount(t, db, "SELECT COUNT(1) FROM receipts", 1)
}

func TestIssueReceiptPaymentNotFound(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)

	node, err := snowflake.NewNode(22)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}
	clk := clock.NewFakeClock(time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC))
	svc := newReceiptService(db, node, clk)

	_, err = svc.Issue(ctx, receiptdomain.IssueReceiptRequest{
		PaymentID: node.Generate(),
		IssueDate: time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC),
	})
	if !errors.Is(err, receiptdomain.ErrPaymentNotFound) {
		t.Fatalf("expected ErrPaymentNotFound, got %v", err)
	}
}

func TestBulkIssueCountsOutcomes(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)

	node, err := snowflake.NewNode(23)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}
	clk := clock.NewFakeClock(time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC))
	svc := newReceiptService(db, node, clk)

	freshID := node.Generate()
	receiptedID := node.Generate()
	missingID := node.Generate()
	seedPayment(t, db, freshID, "individual", "U001", 2000)
	seedPayment(t, db, receiptedID, "individual", "U002", 1500)

	if _, err := svc.Issue(ctx, receiptdomain.IssueReceiptRequest{
		PaymentID: receiptedID,
		IssueDate: time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC),
	}); err != nil {
		t.Fatalf("pre-issue: %v", err)
	}

	summary, err := svc.BulkIssue(ctx, []snowflake.ID{freshID, receiptedID, missingID}, receiptdomain.BulkIssueRequest{
		IssueDate: time.Date(2024, 7, 2, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("bulk issue: %v", err)
	}

	if summary.Issued != 1 || summary.Skipped != 1 || summary.Failed != 1 {
		t.Fatalf("expected 1/1/1, got %d/%d/%d", summary.Issued, summary.Skipped, summary.Failed)
	}
	if summary.Issued+summary.Skipped+summary.Failed != 3 {
		t.Fatalf("outcome counts do not cover the selection")
	}

	assertCount(t, db, "SELECT COUNT(1) FROM receipts", 2)
}

func TestIssuePreReceiptForUser(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)

	node, err := snowflake.NewNode(24)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}
	clk := clock.NewFakeClock(time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC))
	svc := newReceiptService(db, node, clk)

	seedOrder(t, db, node.Generate(), "U001", "Tanaka", "Higashi Trading", 2000)
	seedOrder(t, db, node.Generate(), "U001", "Tanaka", "Higashi Trading", 1500)

	receipt, err := svc.IssuePre(ctx, receiptdomain.IssuePreReceiptRequest{
		UserID: "U001",
	})
	if err != nil {
		t.Fatalf("issue pre-receipt: %v", err)
	}

	if !receipt.IsPreReceipt() {
		t.Fatalf("expected a pre-receipt")
	}
	if receipt.Amount != 3500 {
		t.Fatalf("expected amount frozen at 3500, got %d", receipt.Amount)
	}
	if receipt.IssueDate != nil {
		t.Fatalf("expected issue date left blank, got %v", receipt.IssueDate)
	}
}

func TestIssuePreReceiptForCompany(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)

	node, err := snowflake.NewNode(25)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}
	clk := clock.NewFakeClock(time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC))
	svc := newReceiptService(db, node, clk)

	seedOrder(t, db, node.Generate(), "U001", "Tanaka", "Higashi Trading", 3000)
	seedOrder(t, db, node.Generate(), "U002", "Suzuki", "Higashi Trading", 2000)

	issueDate := time.Date(2024, 7, 5, 0, 0, 0, 0, time.UTC)
	receipt, err := svc.IssuePre(ctx, receiptdomain.IssuePreReceiptRequest{
		CompanyName: "Higashi Trading",
		IssueDate:   &issueDate,
	})
	if err != nil {
		t.Fatalf("issue pre-receipt: %v", err)
	}

	if receipt.Amount != 5000 {
		t.Fatalf("expected company outstanding 5000, got %d", receipt.Amount)
	}
	if receipt.CompanyName != "Higashi Trading" {
		t.Fatalf("expected company name, got %s", receipt.CompanyName)
	}
	if receipt.IssueDate == nil || !receipt.IssueDate.Equal(issueDate) {
		t.Fatalf("expected issue date %v, got %v", issueDate, receipt.IssueDate)
	}
}

func TestIssuePreReceiptTargetValidation(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)

	node, err := snowflake.NewNode(26)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}
	clk := clock.NewFakeClock(time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC))
	svc := newReceiptService(db, node, clk)

	if _, err := svc.IssuePre(ctx, receiptdomain.IssuePreReceiptRequest{}); !errors.Is(err, receiptdomain.ErrInvalidTarget) {
		t.Fatalf("expected ErrInvalidTarget for empty target, got %v", err)
	}
	if _, err := svc.IssuePre(ctx, receiptdomain.IssuePreReceiptRequest{
		UserID:      "U001",
		CompanyName: "Higashi Trading",
	}); !errors.Is(err, receiptdomain.ErrInvalidTarget) {
		t.Fatalf("expected ErrInvalidTarget for double target, got %v", err)
	}
}

func TestReissueKeepsLinkageAndAmount(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)

	node, err := snowflake.NewNode(27)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}
	clk := clock.NewFakeClock(time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC))
	svc := newReceiptService(db, node, clk)

	paymentID := node.Generate()
	seedPayment(t, db, paymentID, "individual", "U001", 2000)

	original, err := svc.Issue(ctx, receiptdomain.IssueReceiptRequest{
		PaymentID: paymentID,
		IssueDate: time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("issue receipt: %v", err)
	}

	reissued, err := svc.Reissue(ctx, receiptdomain.ReissueReceiptRequest{
		ID:          original.ID,
		Description: "lost by recipient",
	})
	if err != nil {
		t.Fatalf("reissue: %v", err)
	}

	if reissued.ReceiptNo == original.ReceiptNo {
		t.Fatalf("expected a fresh receipt number, got %s again", reissued.ReceiptNo)
	}
	if reissued.ReceiptNo != "R2024-000002" {
		t.Fatalf("expected R2024-000002, got %s", reissued.ReceiptNo)
	}
	if reissued.PaymentID == nil || *reissued.PaymentID != paymentID {
		t.Fatalf("expected payment linkage preserved")
	}
	if reissued.Amount != original.Amount {
		t.Fatalf("expected amount preserved, got %d", reissued.Amount)
	}

	// The superseded number stays consumed; the next issuance continues
	// the sequence.
	assertCount(t, db, "SELECT COUNT(1) FROM receipts", 1)

	seedOrder(t, db, node.Generate(), "U002", "Suzuki", "Higashi Trading", 1000)
	next, err := svc.IssuePre(ctx, receiptdomain.IssuePreReceiptRequest{UserID: "U002"})
	if err != nil {
		t.Fatalf("issue pre-receipt: %v", err)
	}
	if next.ReceiptNo != "R2024-000003" {
		t.Fatalf("expected R2024-000003, got %s", next.ReceiptNo)
	}
}

func TestReceiptNumberYearRollover(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)

	node, err := snowflake.NewNode(28)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}
	clk := clock.NewFakeClock(time.Date(2024, 12, 31, 23, 0, 0, 0, time.UTC))
	svc := newReceiptService(db, node, clk)

	seedOrder(t, db, node.Generate(), "U001", "Tanaka", "Higashi Trading", 2000)

	first, err := svc.IssuePre(ctx, receiptdomain.IssuePreReceiptRequest{UserID: "U001"})
	if err != nil {
		t.Fatalf("issue pre-receipt: %v", err)
	}
	if first.ReceiptNo != "R2024-000001" {
		t.Fatalf("expected R2024-000001, got %s", first.ReceiptNo)
	}

	clk.Advance(48 * time.Hour)

	second, err := svc.IssuePre(ctx, receiptdomain.IssuePreReceiptRequest{UserID: "U001"})
	if err != nil {
		t.Fatalf("issue pre-receipt: %v", err)
	}
	if second.ReceiptNo != "R2025-000001" {
		t.Fatalf("expected sequence reset to R2025-000001, got %s", second.ReceiptNo)
	}
}

func TestBulkPrintSkipsMissingReceipts(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)

	node, err := snowflake.NewNode(29)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}
	clk := clock.NewFakeClock(time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC))
	svc := newReceiptService(db, node, clk)

	receiptedID := node.Generate()
	bareID := node.Generate()
	seedPayment(t, db, receiptedID, "individual", "U001", 2000)
	seedPayment(t, db, bareID, "individual", "U002", 1500)

	if _, err := svc.Issue(ctx, receiptdomain.IssueReceiptRequest{
		PaymentID: receiptedID,
		IssueDate: time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC),
	}); err != nil {
		t.Fatalf("issue receipt: %v", err)
	}

	receipts, err := svc.BulkPrint(ctx, []snowflake.ID{receiptedID, bareID})
	if err != nil {
		t.Fatalf("bulk print: %v", err)
	}
	if len(receipts) != 1 {
		t.Fatalf("expected 1 printable receipt, got %d", len(receipts))
	}
	if receipts[0].PaymentID == nil || *receipts[0].PaymentID != receiptedID {
		t.Fatalf("expected the receipted payment, got %v", receipts[0].PaymentID)
	}
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:memdb_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	schema := []string{
		`CREATE TABLE orders (
			id BIGINT PRIMARY KEY,
			user_id TEXT NOT NULL,
			user_name TEXT NOT NULL,
			company_name TEXT NOT NULL,
			amount BIGINT NOT NULL,
			delivery_date TIMESTAMPTZ NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE payments (
			id BIGINT PRIMARY KEY,
			payment_type TEXT NOT NULL,
			target_id TEXT NOT NULL,
			payment_date TIMESTAMPTZ NOT NULL,
			amount BIGINT NOT NULL,
			payment_method TEXT,
			reference_number TEXT,
			notes TEXT,
			created_by TEXT,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE allocations (
			id BIGINT PRIMARY KEY,
			payment_id BIGINT NOT NULL,
			user_id TEXT NOT NULL,
			amount BIGINT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE receipts (
			id BIGINT PRIMARY KEY,
			receipt_number TEXT NOT NULL,
			payment_id BIGINT,
			user_id TEXT,
			company_name TEXT,
			amount BIGINT NOT NULL,
			issue_date TIMESTAMPTZ,
			description TEXT,
			issuer_name TEXT,
			created_by TEXT,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE UNIQUE INDEX ux_receipts_number ON receipts(receipt_number)`,
		`CREATE UNIQUE INDEX ux_receipts_payment ON receipts(payment_id)`,
		`CREATE TABLE receipt_counters (
			id BIGINT PRIMARY KEY,
			year INT NOT NULL,
			last_seq BIGINT NOT NULL
		)`,
	}

	for _, stmt := range schema {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("schema exec failed: %v", err)
		}
	}

	return db
}

func seedOrder(t *testing.T, db *gorm.DB, id snowflake.ID, userID, userName, companyName string, amount int64) {
	t.Helper()

	if err := db.Exec(
		"INSERT INTO orders (id, user_id, user_name, company_name, amount, delivery_date, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		id, userID, userName, companyName, amount,
		time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		time.Now().UTC(),
	).Error; err != nil {
		t.Fatalf("seed order: %v", err)
	}
}

func seedPayment(t *testing.T, db *gorm.DB, id snowflake.ID, kind, targetID string, amount int64) {
	t.Helper()

	now := time.Now().UTC()
	if err := db.Exec(
		"INSERT INTO payments (id, payment_type, target_id, payment_date, amount, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		id, kind, targetID,
		time.Date(2024, 6, 25, 0, 0, 0, 0, time.UTC),
		amount, now, now,
	).Error; err != nil {
		t.Fatalf("seed payment: %v", err)
	}
}

func assertCount(t *testing.T, db *gorm.DB, query string, expected int64) {
	t.Helper()

	var count int64
	if err := db.Raw(query).Scan(&count).Error; err != nil {
		t.Fatalf("query count: %v", err)
	}
	if count != expected {
		t.Fatalf("expected %d, got %d", expected, count)
	}
}
