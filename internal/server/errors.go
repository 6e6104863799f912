package server

import (
	"errors"
	"net/http"

	auditdomain "github.com/GestionAscensores/elevarapp/internal/audit/domain"
	billingrundomain "github.com/GestionAscensores/elevarapp/internal/billingrun/domain"
	"github.com/GestionAscensores/elevarapp/internal/fiscal"
	invoicedomain "github.com/GestionAscensores/elevarapp/internal/invoice/domain"
	pricingdomain "github.com/GestionAscensores/elevarapp/internal/pricing/domain"
	sequencedomain "github.com/GestionAscensores/elevarapp/internal/sequence/domain"
	taxcategorydomain "github.com/GestionAscensores/elevarapp/internal/taxcategory/domain"
	tenantdomain "github.com/GestionAscensores/elevarapp/internal/tenant/domain"
	"github.com/gin-gonic/gin"
)

// APIError is the wire shape of every handler failure.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func (e *APIError) Error() string { return e.Message }

var (
	ErrUnauthorized       = &APIError{Status: http.StatusUnauthorized, Code: "unauthorized", Message: "missing or invalid tenant"}
	ErrNotFound           = &APIError{Status: http.StatusNotFound, Code: "not_found", Message: "resource not found"}
	ErrServiceUnavailable = &APIError{Status: http.StatusServiceUnavailable, Code: "service_unavailable", Message: "service unavailable"}
	ErrTooManyRequests    = &APIError{Status: http.StatusTooManyRequests, Code: "rate_limited", Message: "too many requests"}
)

func newValidationError(field, code, message string) *APIError {
	return &APIError{Status: http.StatusBadRequest, Code: code, Message: message, Field: field}
}

func invalidRequestError() *APIError {
	return &APIError{Status: http.StatusBadRequest, Code: "invalid_request", Message: "malformed request body"}
}

// AbortWithError maps domain errors onto HTTP statuses with the structured
// {success:false} body; unexpected errors become opaque 500s.
func AbortWithError(c *gin.Context, err error) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		abort(c, apiErr)
		return
	}

	var authErr *fiscal.AuthorizationError
	if errors.As(err, &authErr) {
		abort(c, &APIError{
			Status:  http.StatusUnprocessableEntity,
			Code:    "fiscal_" + string(authErr.Kind),
			Message: authErr.Message,
		})
		return
	}

	switch {
	case isNotFound(err):
		abort(c, &APIError{Status: http.StatusNotFound, Code: err.Error(), Message: "resource not found"})
	case isConflict(err):
		abort(c, &APIError{Status: http.StatusConflict, Code: err.Error(), Message: "operation conflicts with current state"})
	case isValidation(err):
		abort(c, &APIError{Status: http.StatusBadRequest, Code: err.Error(), Message: "invalid request"})
	default:
		abort(c, &APIError{Status: http.StatusInternalServerError, Code: "internal_error", Message: "internal error"})
	}
}

func abort(c *gin.Context, apiErr *APIError) {
	c.AbortWithStatusJSON(apiErr.Status, gin.H{
		"success": false,
		"error":   apiErr.Code,
		"message": apiErr.Message,
	})
}

func isNotFound(err error) bool {
	return errors.Is(err, invoicedomain.ErrInvoiceNotFound) ||
		errors.Is(err, tenantdomain.ErrTenantNotFound) ||
		errors.Is(err, taxcategorydomain.ErrTenantNotFound)
}

func isConflict(err error) bool {
	return errors.Is(err, invoicedomain.ErrInvoiceNotEditable) ||
		errors.Is(err, invoicedomain.ErrAlreadyApproved) ||
		errors.Is(err, invoicedomain.ErrNotApprovable) ||
		errors.Is(err, invoicedomain.ErrNotApproved) ||
		errors.Is(err, invoicedomain.ErrNotRevertible) ||
		errors.Is(err, sequencedomain.ErrCounterConflict)
}

func isValidation(err error) bool {
	return errors.Is(err, invoicedomain.ErrInvalidInvoiceID) ||
		errors.Is(err, invoicedomain.ErrInvalidClient) ||
		errors.Is(err, invoicedomain.ErrInvalidType) ||
		errors.Is(err, invoicedomain.ErrInvalidItems) ||
		errors.Is(err, invoicedomain.ErrInvalidTenant) ||
		errors.Is(err, invoicedomain.ErrNotFiscalType) ||
		errors.Is(err, pricingdomain.ErrInvalidPercentage) ||
		errors.Is(err, pricingdomain.ErrInvalidFrequency) ||
		errors.Is(err, pricingdomain.ErrInvalidClient) ||
		errors.Is(err, pricingdomain.ErrInvalidTenant) ||
		errors.Is(err, billingrundomain.ErrInvalidDay) ||
		errors.Is(err, billingrundomain.ErrInvalidTenant) ||
		errors.Is(err, taxcategorydomain.ErrInvalidTenant) ||
		errors.Is(err, auditdomain.ErrInvalidTenant) ||
		errors.Is(err, sequencedomain.ErrInvalidSeries) ||
		errors.Is(err, sequencedomain.ErrInvalidTenant)
}
