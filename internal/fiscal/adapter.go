package fiscal

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// FailureKind classifies a non-success answer from the fiscal authority.
type FailureKind string

const (
	FailureRejected    FailureKind = "rejected"
	FailureUnreachable FailureKind = "unreachable"
	FailureInvalidData FailureKind = "invalid_data"
)

// AuthorizationError is the typed failure returned by an Authorizer. Any
// non-success moves the document to REJECTED and consumes no fiscal number.
type AuthorizationError struct {
	Kind    FailureKind
	Message string
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("fiscal authorization %s: %s", e.Kind, e.Message)
}

// Retryable reports whether the document can be resubmitted as-is.
func (e *AuthorizationError) Retryable() bool {
	return e.Kind == FailureUnreachable
}

// AuthorizationRequest is the payload submitted for approval.
type AuthorizationRequest struct {
	CUIT         string
	PointOfSale  int
	DocumentType string
	Date         time.Time
	ServiceFrom  *time.Time
	ServiceTo    *time.Time
	NetAmount    decimal.Decimal
	IVAAmount    decimal.Decimal
	TotalAmount  decimal.Decimal
	Items        []AuthorizationItem
}

// AuthorizationItem mirrors one invoice line.
type AuthorizationItem struct {
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	IVARate     decimal.Decimal
}

// AuthorizationResult carries the approval code (CAE) on success.
type AuthorizationResult struct {
	AuthorizationCode string
	ExpirationDate    time.Time
}

// Authorizer is the external fiscal authorization service. Implementations
// must not be called while holding store locks: authorization completes
// before the numbering transaction opens.
type Authorizer interface {
	Authorize(ctx context.Context, req AuthorizationRequest) (AuthorizationResult, error)
}
