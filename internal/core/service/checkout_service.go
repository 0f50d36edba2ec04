package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ajmusgrove/bookstore/internal/core/domain"
	"github.com/ajmusgrove/bookstore/internal/port"
)

var (
	ErrItemNotFound    = errors.New("item not found")
	ErrSessionNotFound = errors.New("session not found")
)

// sessionIDPlaceholder is filled in by the payment provider when it
// redirects the customer back after payment.
const sessionIDPlaceholder = "{CHECKOUT_SESSION_ID}"

// CheckoutService bridges the catalog and the payment provider. It owns
// session creation and status retrieval; it never mutates anything.
type CheckoutService struct {
	catalog  port.CatalogRepository
	provider port.PaymentProvider
	currency string
	baseURL  string
	logger   *slog.Logger
}

func NewCheckoutService(catalog port.CatalogRepository, provider port.PaymentProvider, currency, baseURL string, logger *slog.Logger) *CheckoutService {
	return &CheckoutService{
		catalog:  catalog,
		provider: provider,
		currency: currency,
		baseURL:  baseURL,
		logger:   logger,
	}
}

// ListBooks returns the catalog for the storefront listing.
func (s *CheckoutService) ListBooks(ctx context.Context) ([]domain.Book, error) {
	books, err := s.catalog.ListBooks(ctx)
	if err != nil {
		return nil, fmt.Errorf("catalog scan failed: %w", err)
	}
	return books, nil
}

// CreateSession resolves the book and opens a provider checkout session
// priced at the exact catalog amount. Provider and store failures are
// surfaced as-is; nothing here retries.
func (s *CheckoutService) CreateSession(ctx context.Context, isbn string) (*domain.SessionHandle, error) {
	book, err := s.catalog.FindBook(ctx, isbn)
	switch {
	case errors.Is(err, port.ErrDuplicateISBN):
		// Integrity violation in the catalog. The customer sees a plain
		// not-found; operators see this log line.
		s.logger.Warn("catalog integrity violation", "isbn", isbn, "error", err)
		return nil, ErrItemNotFound
	case errors.Is(err, port.ErrBookNotFound):
		return nil, ErrItemNotFound
	case err != nil:
		return nil, fmt.Errorf("catalog lookup failed: %w", err)
	}

	item := domain.LineItem{
		Name:        book.Title,
		UnitAmount:  book.PriceCents,
		Currency:    s.currency,
		TaxBehavior: domain.TaxInclusive,
		Quantity:    1,
	}
	meta := domain.SessionMetadata{ISBN: book.ISBN, Fulfilled: false}
	returnURL := s.baseURL + "/return.html?session_id=" + sessionIDPlaceholder

	handle, err := s.provider.CreateSession(ctx, item, meta, returnURL)
	if err != nil {
		return nil, fmt.Errorf("session creation failed: %w", err)
	}

	s.logger.Info("checkout session created", "isbn", isbn, "session_id", handle.SessionID)
	return handle, nil
}

// GetStatus fetches a fresh snapshot from the provider. Idempotent and
// side-effect free; fulfillment is the dispatcher's job.
func (s *CheckoutService) GetStatus(ctx context.Context, sessionID string) (*domain.SessionStatus, error) {
	status, err := s.provider.RetrieveSession(ctx, sessionID)
	if errors.Is(err, port.ErrNoSuchSession) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("session retrieval failed: %w", err)
	}
	return status, nil
}
