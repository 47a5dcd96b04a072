package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	paymentdomain "github.com/bentoworks/shukin/internal/payment/domain"
	receiptdomain "github.com/bentoworks/shukin/internal/receipt/domain"
	receivabledomain "github.com/bentoworks/shukin/internal/receivable/domain"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type     string            `json:"type"`
	Message  string            `json:"message"`
	Errors   []ValidationError `json:"errors,omitempty"`
	Expected *int64            `json:"expected_amount,omitempty"`
	Supplied *int64            `json:"supplied_amount,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrInvalidRequest = errors.New("invalid_request")
	ErrNotFound       = errors.New("not_found")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	var checkFailed *paymentdomain.CheckFailedError
	if errors.As(err, &checkFailed) {
		return http.StatusConflict, errorPayload{
			Type:     "check_failed",
			Message:  "company payment amount does not match outstanding total",
			Expected: &checkFailed.Expected,
			Supplied: &checkFailed.Supplied,
		}
	}

	var alreadyIssued *receiptdomain.AlreadyIssuedError
	if errors.As(err, &alreadyIssued) {
		return http.StatusConflict, errorPayload{
			Type:    "already_issued",
			Message: "a receipt already exists for this payment",
		}
	}

	if isValidationError(err) {
		code := err.Error()
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Code:    code,
					Message: "invalid value",
				},
			},
		}
	}

	if isNotFoundError(err) {
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	}

	return http.StatusInternalServerError, errorPayload{
		Type:    "internal_error",
		Message: "internal server error",
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, paymentdomain.ErrInvalidAmount),
		errors.Is(err, paymentdomain.ErrInvalidDate),
		errors.Is(err, paymentdomain.ErrInvalidTarget),
		errors.Is(err, paymentdomain.ErrExceedsOutstanding),
		errors.Is(err, receiptdomain.ErrInvalidTarget),
		errors.Is(err, receiptdomain.ErrInvalidIssueDate),
		errors.Is(err, receivabledomain.ErrInvalidSort),
		errors.Is(err, receivabledomain.ErrInvalidTarget):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, paymentdomain.ErrNotFound),
		errors.Is(err, paymentdomain.ErrTargetNotFound),
		errors.Is(err, receiptdomain.ErrNotFound),
		errors.Is(err, receiptdomain.ErrPaymentNotFound),
		errors.Is(err, receiptdomain.ErrTargetNotFound),
		errors.Is(err, receivabledomain.ErrTargetNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

// classifyErrorForLog feeds the request-log middleware a stable type/code
// pair without rendering user-facing payloads.
func classifyErrorForLog(err error) (string, string) {
	if err == nil {
		return "", ""
	}

	var checkFailed *paymentdomain.CheckFailedError
	var alreadyIssued *receiptdomain.AlreadyIssuedError
	switch {
	case asValidationErrors(err) != nil, isValidationError(err):
		return "validation_error", err.Error()
	case errors.As(err, &checkFailed):
		return "check_failed", "company_amount_mismatch"
	case errors.As(err, &alreadyIssued):
		return "already_issued", "receipt_already_issued"
	case isNotFoundError(err):
		return "not_found", err.Error()
	default:
		return "internal_error", "internal_error"
	}
}
