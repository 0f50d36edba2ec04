// fulfillstorm hammers the fulfillment dispatcher with concurrent polls of
// one completed session against a real Redis, to demonstrate the
// at-most-once guarantee outside of the test suite.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/ajmusgrove/bookstore/internal/adapter/storage"
	"github.com/ajmusgrove/bookstore/internal/core/domain"
	"github.com/ajmusgrove/bookstore/internal/core/service"
)

const (
	redisAddr     = "localhost:6379"
	totalRequests = 50
)

type countingNotifier struct {
	notified atomic.Int32
}

func (n *countingNotifier) Notify(ctx context.Context, rec domain.FulfillmentRecord) error {
	n.notified.Add(1)
	return nil
}

func main() {
	ctx := context.Background()

	rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("failed to connect redis: %v", err)
	}
	defer rdb.Close()

	redisAdapter := storage.NewRedisAdapter(rdb)
	notifier := &countingNotifier{}
	logger := slog.Default()

	fulfillment := service.NewFulfillmentService(redisAdapter, notifier, logger)

	sessionID := "storm-" + uuid.NewString()
	status := &domain.SessionStatus{
		SessionID:     sessionID,
		State:         domain.SessionStateComplete,
		CustomerEmail: "storm@example.com",
		Metadata:      domain.SessionMetadata{ISBN: "ISBN-0001"},
	}

	var records atomic.Int32
	var noops atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < totalRequests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec, err := fulfillment.MaybeFulfill(ctx, status)
			if err != nil {
				log.Printf("maybeFulfill error: %v", err)
				return
			}
			if rec != nil {
				records.Add(1)
			} else {
				noops.Add(1)
			}
		}()
	}

	wg.Wait()

	// Leave no marker behind for the next run
	if err := redisAdapter.ClearFulfilled(ctx, sessionID); err != nil {
		log.Printf("cleanup failed: %v", err)
	}

	fmt.Printf("polls:     %d\n", totalRequests)
	fmt.Printf("records:   %d\n", records.Load())
	fmt.Printf("no-ops:    %d\n", noops.Load())
	fmt.Printf("notified:  %d\n", notifier.notified.Load())

	if records.Load() != 1 {
		log.Fatalf("INVARIANT VIOLATED: expected exactly 1 fulfillment record, got %d", records.Load())
	}
	fmt.Println("at-most-once fulfillment held")
}
