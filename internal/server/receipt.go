package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	receiptdomain "github.com/bentoworks/shukin/internal/receipt/domain"
	"github.com/bentoworks/shukin/pkg/db/pagination"
)

type issueReceiptRequest struct {
	PaymentID   string `json:"payment_id"`
	IssueDate   string `json:"issue_date"`
	Description string `json:"description"`
	IssuerName  string `json:"issuer_name"`
	CreatedBy   string `json:"created_by"`
}

func (s *Server) IssueReceipt(c *gin.Context) {
	var req issueReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	paymentID, err := snowflake.ParseString(strings.TrimSpace(req.PaymentID))
	if err != nil {
		AbortWithError(c, newValidationError("payment_id", "invalid_id", "invalid payment id"))
		return
	}
	issueDate, err := parseDate(req.IssueDate)
	if err != nil {
		AbortWithError(c, newValidationError("issue_date", "invalid_issue_date", "invalid issue date"))
		return
	}

	item, err := s.receiptSvc.Issue(c.Request.Context(), receiptdomain.IssueReceiptRequest{
		PaymentID:   paymentID,
		IssueDate:   issueDate,
		Description: req.Description,
		IssuerName:  req.IssuerName,
		CreatedBy:   req.CreatedBy,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": item})
}

type bulkIssueReceiptsRequest struct {
	PaymentIDs  []string `json:"payment_ids"`
	IssueDate   string   `json:"issue_date"`
	Description string   `json:"description"`
	IssuerName  string   `json:"issuer_name"`
	CreatedBy   string   `json:"created_by"`
}

func (s *Server) BulkIssueReceipts(c *gin.Context) {
	var req bulkIssueReceiptsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if len(req.PaymentIDs) == 0 {
		AbortWithError(c, newValidationError("payment_ids", "required", "payment_ids is required"))
		return
	}

	issueDate, err := parseDate(req.IssueDate)
	if err != nil {
		AbortWithError(c, newValidationError("issue_date", "invalid_issue_date", "invalid issue date"))
		return
	}
	paymentIDs, ok := parsePaymentIDs(c, req.PaymentIDs)
	if !ok {
		return
	}

	summary, err := s.receiptSvc.BulkIssue(c.Request.Context(), paymentIDs, receiptdomain.BulkIssueRequest{
		IssueDate:   issueDate,
		Description: req.Description,
		IssuerName:  req.IssuerName,
		CreatedBy:   req.CreatedBy,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": summary})
}

type issuePreReceiptRequest struct {
	UserID      string `json:"user_id"`
	CompanyName string `json:"company_name"`
	IssueDate   string `json:"issue_date"`
	Description string `json:"description"`
	IssuerName  string `json:"issuer_name"`
	CreatedBy   string `json:"created_by"`
}

func (s *Server) IssuePreReceipt(c *gin.Context) {
	var req issuePreReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	var issueDate *time.Time
	if strings.TrimSpace(req.IssueDate) != "" {
		parsed, err := parseDate(req.IssueDate)
		if err != nil {
			AbortWithError(c, newValidationError("issue_date", "invalid_issue_date", "invalid issue date"))
			return
		}
		issueDate = &parsed
	}

	item, err := s.receiptSvc.IssuePre(c.Request.Context(), receiptdomain.IssuePreReceiptRequest{
		UserID:      req.UserID,
		CompanyName: req.CompanyName,
		IssueDate:   issueDate,
		Description: req.Description,
		IssuerName:  req.IssuerName,
		CreatedBy:   req.CreatedBy,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": item})
}

type reissueReceiptRequest struct {
	IssueDate   string `json:"issue_date"`
	Description string `json:"description"`
	IssuerName  string `json:"issuer_name"`
}

func (s *Server) ReissueReceipt(c *gin.Context) {
	id, err := snowflake.ParseString(strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid id"))
		return
	}

	var req reissueReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	var issueDate *time.Time
	if strings.TrimSpace(req.IssueDate) != "" {
		parsed, err := parseDate(req.IssueDate)
		if err != nil {
			AbortWithError(c, newValidationError("issue_date", "invalid_issue_date", "invalid issue date"))
			return
		}
		issueDate = &parsed
	}

	item, err := s.receiptSvc.Reissue(c.Request.Context(), receiptdomain.ReissueReceiptRequest{
		ID:          id,
		IssueDate:   issueDate,
		Description: req.Description,
		IssuerName:  req.IssuerName,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": item})
}

func (s *Server) BulkPrintReceipts(c *gin.Context) {
	raw := strings.TrimSpace(c.Query("payment_ids"))
	if raw == "" {
		AbortWithError(c, newValidationError("payment_ids", "required", "payment_ids is required"))
		return
	}

	paymentIDs, ok := parsePaymentIDs(c, strings.Split(raw, ","))
	if !ok {
		return
	}

	items, err := s.receiptSvc.BulkPrint(c.Request.Context(), paymentIDs)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (s *Server) GetReceipt(c *gin.Context) {
	id, err := snowflake.ParseString(strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid id"))
		return
	}

	item, err := s.receiptSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": item})
}

func (s *Server) ListReceipts(c *gin.Context) {
	var page pagination.Pagination
	if err := c.ShouldBindQuery(&page); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.receiptSvc.List(c.Request.Context(), receiptdomain.ListReceiptRequest{
		PreOnly: strings.EqualFold(strings.TrimSpace(c.Query("pre_only")), "true"),
		Page:    page,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func parsePaymentIDs(c *gin.Context, raw []string) ([]snowflake.ID, bool) {
	ids := make([]snowflake.ID, 0, len(raw))
	for _, value := range raw {
		id, err := snowflake.ParseString(strings.TrimSpace(value))
		if err != nil {
			AbortWithError(c, newValidationError("payment_ids", "invalid_id", "invalid payment id"))
			return nil, false
		}
		ids = append(ids, id)
	}
	return ids, true
}
