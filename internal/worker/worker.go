// Package worker validates fares requested over the event bus.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/opensource-finance/bce/internal/domain"
	"github.com/opensource-finance/bce/internal/service"
	"github.com/opensource-finance/bce/internal/verdict"
	"golang.org/x/sync/semaphore"
)

// GlobalTenant is the subscription tenant used when no tenants are configured.
const GlobalTenant = "_global"

// Worker consumes validation requests from the EventBus.
type Worker struct {
	bus domain.EventBus
	svc *service.Service

	subscriptions []domain.Subscription
	sem           *semaphore.Weighted
	wg            sync.WaitGroup
	ctx           context.Context
	cancel        context.CancelFunc

	processed atomic.Int64
	failed    atomic.Int64
}

// Config holds worker configuration.
type Config struct {
	// TenantIDs is the list of tenants to process. Empty subscribes the
	// global tenant and takes the tenant from each message.
	TenantIDs []string

	// WorkerCount bounds the validations running at once.
	WorkerCount int
}

// NewWorker creates a new async worker.
func NewWorker(bus domain.EventBus, svc *service.Service) *Worker {
	ctx, cancel := context.WithCancel(context.Background())
	return &Worker{
		bus:    bus,
		svc:    svc,
		ctx:    ctx,
		cancel: cancel,
	}
}

// ValidateMessage is the payload of a validation request.
type ValidateMessage struct {
	TenantID string                  `json:"tenantId,omitempty"`
	TraceID  string                  `json:"traceId,omitempty"`
	Input    *domain.ValidationInput `json:"input"`
}

// ValidateReply answers a validation request sent with Request.
type ValidateReply struct {
	Verdict *domain.Verdict `json:"verdict,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// Start begins processing messages for the given tenants.
func (w *Worker) Start(cfg Config) error {
	count := cfg.WorkerCount
	if count <= 0 {
		count = 1
	}
	w.sem = semaphore.NewWeighted(int64(count))

	if len(cfg.TenantIDs) == 0 {
		return w.subscribe(GlobalTenant)
	}

	for _, tenantID := range cfg.TenantIDs {
		if err := w.subscribe(tenantID); err != nil {
			slog.Error("failed to start worker for tenant",
				"tenant_id", tenantID,
				"error", err,
			)
			continue
		}
	}

	slog.Info("workers started",
		"tenant_count", len(cfg.TenantIDs),
		"worker_count", count,
	)
	return nil
}

func (w *Worker) subscribe(tenantID string) error {
	sub, err := w.bus.Subscribe(w.ctx, tenantID, domain.TopicValidateRequested, func(_ context.Context, msg *domain.Message) error {
		return w.dispatch(tenantID, msg)
	})
	if err != nil {
		return err
	}
	w.subscriptions = append(w.subscriptions, sub)

	slog.Info("tenant worker started",
		"tenant_id", tenantID,
		"topic", domain.TopicValidateRequested,
	)
	return nil
}

// dispatch hands a message to a free worker slot. It blocks while every
// slot is busy, so a slow worker holds back the bus.
func (w *Worker) dispatch(tenantID string, msg *domain.Message) error {
	if err := w.sem.Acquire(w.ctx, 1); err != nil {
		return err
	}
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer w.sem.Release(1)
		if err := w.process(w.ctx, tenantID, msg); err != nil {
			w.failed.Add(1)
			return
		}
		w.processed.Add(1)
	}()
	return nil
}

// process validates one request and publishes the verdict.
func (w *Worker) process(ctx context.Context, tenantID string, msg *domain.Message) error {
	start := time.Now()

	var req ValidateMessage
	if err := json.Unmarshal(msg.Payload, &req); err != nil {
		slog.Error("failed to parse validation message",
			"message_id", msg.ID,
			"error", err,
		)
		w.reply(ctx, msg, ValidateReply{Error: fmt.Sprintf("invalid message: %v", err)})
		return err
	}

	if req.TenantID != "" {
		tenantID = req.TenantID
	}

	traceID := req.TraceID
	if traceID == "" {
		traceID = msg.ID
	}

	v, err := w.svc.Validate(ctx, tenantID, traceID, req.Input)
	if err != nil {
		slog.Error("validation failed",
			"tenant_id", tenantID,
			"trace_id", traceID,
			"error", err,
		)
		w.reply(ctx, msg, ValidateReply{Error: err.Error()})
		return err
	}

	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if err := w.bus.Publish(ctx, tenantID, domain.TopicVerdict, payload); err != nil {
		slog.Error("failed to publish verdict",
			"verdict_id", v.ID,
			"error", err,
		)
	}
	if verdict.Failed(v) {
		if err := w.bus.Publish(ctx, tenantID, domain.TopicVerdictFailed, payload); err != nil {
			slog.Error("failed to publish failed verdict",
				"verdict_id", v.ID,
				"error", err,
			)
		}
	}
	w.reply(ctx, msg, ValidateReply{Verdict: v})

	slog.Info("validation processed",
		"tenant_id", tenantID,
		"item", v.ItemNo,
		"fare_id", v.FareID,
		"status", v.Status,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

func (w *Worker) reply(ctx context.Context, msg *domain.Message, r ValidateReply) {
	if msg.Metadata[domain.MetaReplyTo] == "" {
		return
	}
	payload, err := json.Marshal(r)
	if err != nil {
		return
	}
	if err := w.bus.Reply(ctx, msg, payload); err != nil {
		slog.Error("failed to reply",
			"message_id", msg.ID,
			"error", err,
		)
	}
}

// Stop unsubscribes, waits for running validations and releases the worker.
func (w *Worker) Stop() error {
	for _, sub := range w.subscriptions {
		if err := sub.Unsubscribe(); err != nil {
			slog.Error("failed to unsubscribe",
				"topic", sub.Topic(),
				"error", err,
			)
		}
	}
	w.subscriptions = nil

	w.wg.Wait()
	w.cancel()

	slog.Info("workers stopped",
		"processed", w.processed.Load(),
		"failed", w.failed.Load(),
	)
	return nil
}

// Stats returns worker statistics.
type Stats struct {
	SubscriptionCount int      `json:"subscriptionCount"`
	Topics            []string `json:"topics"`
	Processed         int64    `json:"processed"`
	Failed            int64    `json:"failed"`
}

// GetStats returns current worker statistics.
func (w *Worker) GetStats() Stats {
	topics := make([]string, len(w.subscriptions))
	for i, sub := range w.subscriptions {
		topics[i] = sub.Topic()
	}
	return Stats{
		SubscriptionCount: len(w.subscriptions),
		Topics:            topics,
		Processed:         w.processed.Load(),
		Failed:            w.failed.Load(),
	}
}
