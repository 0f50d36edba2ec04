package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ajmusgrove/bookstore/internal/core/domain"
	"github.com/ajmusgrove/bookstore/internal/port"
)

// FulfillmentService triggers delivery at most once per checkout session.
// The check-and-mark lives in the store so the guarantee holds across
// concurrent polls and across processes.
type FulfillmentService struct {
	store    port.FulfillmentStore
	notifier port.FulfillmentNotifier
	logger   *slog.Logger
}

func NewFulfillmentService(store port.FulfillmentStore, notifier port.FulfillmentNotifier, logger *slog.Logger) *FulfillmentService {
	return &FulfillmentService{
		store:    store,
		notifier: notifier,
		logger:   logger,
	}
}

// MaybeFulfill inspects a status snapshot and, on the first observation of
// a complete payment, emits exactly one FulfillmentRecord. Every other
// outcome returns (nil, nil): not yet paid, never paid, or already
// fulfilled — all defined no-ops, not errors.
func (s *FulfillmentService) MaybeFulfill(ctx context.Context, status *domain.SessionStatus) (*domain.FulfillmentRecord, error) {
	if status.State != domain.SessionStateComplete {
		return nil, nil
	}

	first, err := s.store.MarkFulfilled(ctx, status.SessionID)
	if err != nil {
		return nil, fmt.Errorf("fulfillment mark failed: %w", err)
	}
	if !first {
		return nil, nil
	}

	rec := domain.FulfillmentRecord{
		ID:            uuid.NewString(),
		ISBN:          status.Metadata.ISBN,
		SessionID:     status.SessionID,
		CustomerEmail: status.CustomerEmail,
		CreatedAt:     time.Now().UTC(),
	}

	if err := s.notifier.Notify(ctx, rec); err != nil {
		// The mark stays set: replaying fulfillment risks shipping twice.
		// Log the whole record so operators can hand it off manually.
		s.logger.Error("fulfillment hand-off failed",
			"record_id", rec.ID,
			"session_id", rec.SessionID,
			"isbn", rec.ISBN,
			"customer_email", rec.CustomerEmail,
			"error", err,
		)
		return &rec, nil
	}

	s.logger.Info("fulfillment dispatched",
		"record_id", rec.ID,
		"session_id", rec.SessionID,
		"isbn", rec.ISBN,
	)
	return &rec, nil
}
