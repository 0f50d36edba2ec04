package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/ajmusgrove/bookstore/internal/core/domain"
)

// WebhookNotifier POSTs each FulfillmentRecord to the delivery pipeline as
// JSON. One-way: a non-2xx answer is an error for the caller to log, never
// a reason to retry here.
type WebhookNotifier struct {
	client   *http.Client
	endpoint string
	logger   *slog.Logger
}

func NewWebhookNotifier(endpoint string, logger *slog.Logger) *WebhookNotifier {
	return &WebhookNotifier{
		client:   &http.Client{Timeout: 10 * time.Second},
		endpoint: endpoint,
		logger:   logger,
	}
}

func (n *WebhookNotifier) Notify(ctx context.Context, rec domain.FulfillmentRecord) error {
	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode fulfillment record: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build fulfillment request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("post fulfillment record: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("fulfillment endpoint returned %s", resp.Status)
	}

	n.logger.Debug("fulfillment record posted", "session_id", rec.SessionID, "endpoint", n.endpoint)
	return nil
}
