package domain

import "time"

type SessionState string

const (
	SessionStateOpen     SessionState = "open"
	SessionStateComplete SessionState = "complete"
	SessionStateExpired  SessionState = "expired"
	SessionStateFailed   SessionState = "failed"
)

// Terminal reports whether the session can still change state.
func (s SessionState) Terminal() bool {
	return s != SessionStateOpen
}

func (s SessionState) String() string {
	return string(s)
}

// TaxInclusive is the only tax treatment the store sells under.
const TaxInclusive = "inclusive"

// SessionMetadata travels opaquely with the payment session and comes back
// on every status snapshot. Decoded once by the provider adapter; nothing
// downstream touches the provider's string map.
type SessionMetadata struct {
	ISBN      string
	Fulfilled bool
}

// SessionHandle is what the browser needs to drive the hosted checkout.
type SessionHandle struct {
	SessionID    string
	ClientSecret string
}

// SessionStatus is a point-in-time snapshot from the payment provider.
// Never cached; every poll fetches a fresh one.
type SessionStatus struct {
	SessionID     string
	State         SessionState
	CustomerEmail string
	Metadata      SessionMetadata
}

// LineItem prices one book for a checkout session. UnitAmount carries the
// catalog price in minor units, exactly, no rounding.
type LineItem struct {
	Name        string
	UnitAmount  int64
	Currency    string
	TaxBehavior string
	Quantity    int64
}

// FulfillmentRecord is produced at most once per checkout session, on the
// first observation of a complete payment.
type FulfillmentRecord struct {
	ID            string    `json:"id"`
	ISBN          string    `json:"isbn"`
	SessionID     string    `json:"session_id"`
	CustomerEmail string    `json:"customer_email"`
	CreatedAt     time.Time `json:"created_at"`
}
