package port

import (
	"context"
	"errors"

	"github.com/ajmusgrove/bookstore/internal/core/domain"
)

// ErrNoSuchSession means the provider has no record of the session id.
var ErrNoSuchSession = errors.New("checkout session not found")

type PaymentProvider interface {
	// CreateSession opens a hosted checkout session for one line item,
	// attaching metadata the provider echoes back on every retrieval.
	// returnURL may contain the provider's session-id placeholder.
	CreateSession(ctx context.Context, item domain.LineItem, meta domain.SessionMetadata, returnURL string) (*domain.SessionHandle, error)

	// RetrieveSession fetches a fresh status snapshot. Purely
	// observational; safe to call any number of times.
	RetrieveSession(ctx context.Context, sessionID string) (*domain.SessionStatus, error)
}
