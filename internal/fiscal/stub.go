package fiscal

import (
	"context"
	"fmt"
	"time"

	"github.com/GestionAscensores/elevarapp/internal/clock"
	"go.uber.org/zap"
)

// StubAuthorizer approves every valid request with a synthetic CAE. Wired by
// default when no fiscal endpoint is configured so development environments
// can exercise the full approval path.
type StubAuthorizer struct {
	log   *zap.Logger
	clock clock.Clock
}

func NewStubAuthorizer(log *zap.Logger, clk clock.Clock) *StubAuthorizer {
	return &StubAuthorizer{log: log.Named("fiscal.stub"), clock: clk}
}

func (s *StubAuthorizer) Authorize(ctx context.Context, req AuthorizationRequest) (AuthorizationResult, error) {
	if req.CUIT == "" || req.DocumentType == "" || req.PointOfSale <= 0 {
		return AuthorizationResult{}, &AuthorizationError{
			Kind:    FailureInvalidData,
			Message: "missing fiscal identity",
		}
	}
	if req.TotalAmount.IsZero() {
		return AuthorizationResult{}, &AuthorizationError{
			Kind:    FailureRejected,
			Message: "zero amount document",
		}
	}

	now := s.clock.Now()
	result := AuthorizationResult{
		AuthorizationCode: fmt.Sprintf("%d%02d%010d", now.Year(), now.Month(), now.UnixNano()%1e10),
		ExpirationDate:    now.Add(10 * 24 * time.Hour),
	}
	s.log.Debug("stub authorization granted",
		zap.String("doc_type", req.DocumentType),
		zap.Int("point_of_sale", req.PointOfSale),
	)
	return result, nil
}
