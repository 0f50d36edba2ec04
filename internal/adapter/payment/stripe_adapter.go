package payment

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"

	"github.com/ajmusgrove/bookstore/internal/core/domain"
	"github.com/ajmusgrove/bookstore/internal/port"
)

// Metadata keys on the Stripe session. The adapter owns this codec; the
// rest of the system only sees domain.SessionMetadata.
const (
	metaKeyISBN      = "isbn"
	metaKeyFulfilled = "fulfilled"
)

// StripeAdapter implements port.PaymentProvider on Stripe hosted checkout
// sessions in embedded UI mode. The API client is owned by the adapter,
// not a package-level global, so every instance can carry its own key.
type StripeAdapter struct {
	api *client.API
}

func NewStripeAdapter(apiKey string) *StripeAdapter {
	api := &client.API{}
	api.Init(apiKey, nil)
	return &StripeAdapter{api: api}
}

func (a *StripeAdapter) CreateSession(ctx context.Context, item domain.LineItem, meta domain.SessionMetadata, returnURL string) (*domain.SessionHandle, error) {
	params := &stripe.CheckoutSessionParams{
		Params:    stripe.Params{Context: ctx},
		UIMode:    stripe.String(string(stripe.CheckoutSessionUIModeEmbedded)),
		Mode:      stripe.String(string(stripe.CheckoutSessionModePayment)),
		ReturnURL: stripe.String(returnURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:    stripe.String(item.Currency),
					UnitAmount:  stripe.Int64(item.UnitAmount),
					TaxBehavior: stripe.String(item.TaxBehavior),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(item.Name),
					},
				},
				Quantity: stripe.Int64(item.Quantity),
			},
		},
	}
	params.AddMetadata(metaKeyISBN, meta.ISBN)
	params.AddMetadata(metaKeyFulfilled, strconv.FormatBool(meta.Fulfilled))

	sess, err := a.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe session create: %w", err)
	}

	return &domain.SessionHandle{
		SessionID:    sess.ID,
		ClientSecret: sess.ClientSecret,
	}, nil
}

func (a *StripeAdapter) RetrieveSession(ctx context.Context, sessionID string) (*domain.SessionStatus, error) {
	sess, err := a.api.CheckoutSessions.Get(sessionID, &stripe.CheckoutSessionParams{
		Params: stripe.Params{Context: ctx},
	})
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.HTTPStatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", port.ErrNoSuchSession, sessionID)
		}
		return nil, fmt.Errorf("stripe session retrieve: %w", err)
	}

	return &domain.SessionStatus{
		SessionID:     sess.ID,
		State:         mapState(sess.Status),
		CustomerEmail: customerEmail(sess),
		Metadata:      decodeMetadata(sess.Metadata),
	}, nil
}

func mapState(s stripe.CheckoutSessionStatus) domain.SessionState {
	switch s {
	case stripe.CheckoutSessionStatusOpen:
		return domain.SessionStateOpen
	case stripe.CheckoutSessionStatusComplete:
		return domain.SessionStateComplete
	case stripe.CheckoutSessionStatusExpired:
		return domain.SessionStateExpired
	default:
		return domain.SessionStateFailed
	}
}

func customerEmail(sess *stripe.CheckoutSession) string {
	if sess.CustomerDetails == nil {
		return ""
	}
	return sess.CustomerDetails.Email
}

func decodeMetadata(m map[string]string) domain.SessionMetadata {
	fulfilled, _ := strconv.ParseBool(m[metaKeyFulfilled])
	return domain.SessionMetadata{
		ISBN:      m[metaKeyISBN],
		Fulfilled: fulfilled,
	}
}
