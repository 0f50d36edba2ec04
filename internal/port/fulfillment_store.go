package port

import "context"

// FulfillmentStore holds the per-session fulfilled marker. It is the only
// shared mutable state in the core and must be durable across processes.
type FulfillmentStore interface {
	// MarkFulfilled atomically records the first fulfillment for a session,
	// returning false if the session was already marked. Calls for
	// different session ids never contend.
	MarkFulfilled(ctx context.Context, sessionID string) (bool, error)
}
