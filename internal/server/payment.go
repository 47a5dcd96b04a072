package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	paymentdomain "github.com/bentoworks/shukin/internal/payment/domain"
	"github.com/bentoworks/shukin/pkg/db/pagination"
)

type recordPaymentRequest struct {
	UserID      string `json:"user_id"`
	PaymentDate string `json:"payment_date"`
	Amount      int64  `json:"amount"`
	Method      string `json:"payment_method"`
	ReferenceNo string `json:"reference_number"`
	Notes       string `json:"notes"`
	CreatedBy   string `json:"created_by"`
}

func (s *Server) RecordPayment(c *gin.Context) {
	var req recordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	paymentDate, err := parseDate(req.PaymentDate)
	if err != nil {
		AbortWithError(c, newValidationError("payment_date", "invalid_payment_date", "invalid payment date"))
		return
	}

	item, err := s.paymentSvc.Record(c.Request.Context(), paymentdomain.RecordPaymentRequest{
		UserID:      req.UserID,
		PaymentDate: paymentDate,
		Amount:      req.Amount,
		Method:      req.Method,
		ReferenceNo: req.ReferenceNo,
		Notes:       req.Notes,
		CreatedBy:   req.CreatedBy,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": item})
}

type recordCompanyPaymentRequest struct {
	CompanyName string `json:"company_name"`
	PaymentDate string `json:"payment_date"`
	Amount      int64  `json:"amount"`
	Method      string `json:"payment_method"`
	ReferenceNo string `json:"reference_number"`
	Notes       string `json:"notes"`
	CreatedBy   string `json:"created_by"`
}

func (s *Server) RecordCompanyPayment(c *gin.Context) {
	var req recordCompanyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	paymentDate, err := parseDate(req.PaymentDate)
	if err != nil {
		AbortWithError(c, newValidationError("payment_date", "invalid_payment_date", "invalid payment date"))
		return
	}

	item, err := s.paymentSvc.RecordCompany(c.Request.Context(), paymentdomain.RecordCompanyPaymentRequest{
		CompanyName: req.CompanyName,
		PaymentDate: paymentDate,
		Amount:      req.Amount,
		Method:      req.Method,
		ReferenceNo: req.ReferenceNo,
		Notes:       req.Notes,
		CreatedBy:   req.CreatedBy,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": item})
}

type updatePaymentRequest struct {
	PaymentDate string `json:"payment_date"`
	Amount      int64  `json:"amount"`
	Method      string `json:"payment_method"`
	ReferenceNo string `json:"reference_number"`
	Notes       string `json:"notes"`
}

func (s *Server) UpdatePayment(c *gin.Context) {
	id, ok := paymentIDParam(c)
	if !ok {
		return
	}

	var req updatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	paymentDate, err := parseDate(req.PaymentDate)
	if err != nil {
		AbortWithError(c, newValidationError("payment_date", "invalid_payment_date", "invalid payment date"))
		return
	}

	item, err := s.paymentSvc.Update(c.Request.Context(), paymentdomain.UpdatePaymentRequest{
		ID:          id,
		PaymentDate: paymentDate,
		Amount:      req.Amount,
		Method:      req.Method,
		ReferenceNo: req.ReferenceNo,
		Notes:       req.Notes,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": item})
}

func (s *Server) DeletePayment(c *gin.Context) {
	id, ok := paymentIDParam(c)
	if !ok {
		return
	}

	if err := s.paymentSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (s *Server) GetPayment(c *gin.Context) {
	id, ok := paymentIDParam(c)
	if !ok {
		return
	}

	item, err := s.paymentSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": item})
}

func (s *Server) ListPayments(c *gin.Context) {
	var page pagination.Pagination
	if err := c.ShouldBindQuery(&page); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	req := paymentdomain.ListPaymentRequest{
		Kind:     strings.TrimSpace(c.Query("type")),
		TargetID: strings.TrimSpace(c.Query("target_id")),
		Page:     page,
	}
	if from := strings.TrimSpace(c.Query("from")); from != "" {
		parsed, err := parseDate(from)
		if err != nil {
			AbortWithError(c, newValidationError("from", "invalid_date", "invalid date"))
			return
		}
		req.From = &parsed
	}
	if to := strings.TrimSpace(c.Query("to")); to != "" {
		parsed, err := parseDate(to)
		if err != nil {
			AbortWithError(c, newValidationError("to", "invalid_date", "invalid date"))
			return
		}
		req.To = &parsed
	}

	resp, err := s.paymentSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) ListPaymentAllocations(c *gin.Context) {
	id, ok := paymentIDParam(c)
	if !ok {
		return
	}

	items, err := s.paymentSvc.AllocationsForPayment(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": items})
}

func paymentIDParam(c *gin.Context) (snowflake.ID, bool) {
	id, err := snowflake.ParseString(strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid id"))
		return 0, false
	}
	return id, true
}

func parseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}
