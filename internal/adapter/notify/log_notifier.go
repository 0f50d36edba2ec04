package notify

import (
	"context"
	"log/slog"

	"github.com/ajmusgrove/bookstore/internal/core/domain"
)

// LogNotifier writes fulfillment records to the log instead of a delivery
// pipeline. Used when no fulfillment endpoint is configured.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(ctx context.Context, rec domain.FulfillmentRecord) error {
	n.logger.Info("need to fulfill",
		"record_id", rec.ID,
		"isbn", rec.ISBN,
		"session_id", rec.SessionID,
		"customer_email", rec.CustomerEmail,
	)
	return nil
}
