package port

import (
	"context"

	"github.com/ajmusgrove/bookstore/internal/core/domain"
)

// FulfillmentNotifier hands a completed sale to the delivery pipeline.
// One-way: the dispatcher does not depend on the pipeline's success.
type FulfillmentNotifier interface {
	Notify(ctx context.Context, rec domain.FulfillmentRecord) error
}
