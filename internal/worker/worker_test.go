package worker

import (
	"context"
	"encoding/json"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/opensource-finance/bce/internal/bus"
	"github.com/opensource-finance/bce/internal/domain"
	"github.com/opensource-finance/bce/internal/repository"
	"github.com/opensource-finance/bce/internal/rules"
	"github.com/opensource-finance/bce/internal/service"
)

func newTestService(t *testing.T) *service.Service {
	t.Helper()

	tmpFile, err := os.CreateTemp("", "worker-test-*.db")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	tmpPath := tmpFile.Name()
	tmpFile.Close()
	t.Cleanup(func() { os.Remove(tmpPath) })

	repo, err := repository.New(domain.RepositoryConfig{Driver: "sqlite", SQLitePath: tmpPath})
	if err != nil {
		t.Fatalf("failed to create repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	engine, _ := rules.NewEngine()
	t.Cleanup(func() { engine.Close() })

	svc := service.New(repo, nil, engine, service.Options{})
	err = svc.SaveItem(context.Background(), "tenant-001", &domain.ExceptionItem{
		ItemNo: 100,
		Sequences: []domain.ExceptionSequence{{
			SeqNo: 100,
			Segments: []domain.ExceptionSegment{
				{SegNo: 1, RestrictionTag: domain.TagRequired, BookingCode1: "Y"},
			},
		}},
	})
	if err != nil {
		t.Fatalf("failed to seed item: %v", err)
	}
	return svc
}

func requestPayload(t *testing.T, tenantID, code string) []byte {
	t.Helper()
	jfk := domain.Location{Airport: "JFK", City: "NYC", Nation: "US", Area: "1"}
	lhr := domain.Location{Airport: "LHR", City: "LON", Nation: "GB", Area: "2"}

	payload, err := json.Marshal(ValidateMessage{
		TenantID: tenantID,
		TraceID:  "trace-1",
		Input: &domain.ValidationInput{
			ItemNo: 100,
			Fare: &domain.Fare{
				ID:      "F1",
				Carrier: "AA",
				Market: &domain.FareMarket{
					GoverningCarrier: "AA",
					Origin:           jfk,
					Destination:      lhr,
					Segments: []*domain.TravelSegment{{
						ID:          "S1",
						Origin:      jfk,
						Destination: lhr,
						Carrier:     "AA",
						BookingCode: code,
						BookedCabin: domain.CabinEconomy,
						ResStatus:   domain.ResStatusConfirmed,
						Departure:   time.Date(2025, 6, 2, 9, 30, 0, 0, time.UTC),
					}},
				},
			},
			Request: domain.Request{TrxType: domain.TrxPricing},
		},
	})
	if err != nil {
		t.Fatalf("failed to encode request: %v", err)
	}
	return payload
}

func TestWorker(t *testing.T) {
	eventBus := bus.NewChannelBus(100)
	defer eventBus.Close()
	svc := newTestService(t)
	ctx := context.Background()

	t.Run("StartAndStop", func(t *testing.T) {
		worker := NewWorker(eventBus, svc)
		if err := worker.Start(Config{TenantIDs: []string{"tenant-001", "tenant-002"}, WorkerCount: 2}); err != nil {
			t.Fatalf("Start failed: %v", err)
		}

		stats := worker.GetStats()
		if stats.SubscriptionCount != 2 {
			t.Errorf("expected 2 subscriptions, got %d", stats.SubscriptionCount)
		}
		if stats.Topics[0] != domain.TopicValidateRequested {
			t.Errorf("unexpected topic %s", stats.Topics[0])
		}

		if err := worker.Stop(); err != nil {
			t.Errorf("Stop failed: %v", err)
		}
		if worker.GetStats().SubscriptionCount != 0 {
			t.Error("expected 0 subscriptions after stop")
		}
	})

	t.Run("PublishesVerdicts", func(t *testing.T) {
		worker := NewWorker(eventBus, svc)
		if err := worker.Start(Config{TenantIDs: []string{"tenant-001"}, WorkerCount: 1}); err != nil {
			t.Fatalf("Start failed: %v", err)
		}
		defer worker.Stop()

		verdicts := make(chan *domain.Verdict, 4)
		var failedCount atomic.Int32
		eventBus.Subscribe(ctx, "tenant-001", domain.TopicVerdict, func(ctx context.Context, msg *domain.Message) error {
			var v domain.Verdict
			if err := json.Unmarshal(msg.Payload, &v); err != nil {
				t.Errorf("bad verdict payload: %v", err)
			}
			verdicts <- &v
			return nil
		})
		eventBus.Subscribe(ctx, "tenant-001", domain.TopicVerdictFailed, func(ctx context.Context, msg *domain.Message) error {
			failedCount.Add(1)
			return nil
		})

		eventBus.Publish(ctx, "tenant-001", domain.TopicValidateRequested, requestPayload(t, "", "Y"))
		select {
		case v := <-verdicts:
			if v.Status != domain.VerdictPass {
				t.Errorf("expected PASS, got %s", v.Status)
			}
			if v.Metadata.TraceID != "trace-1" {
				t.Errorf("expected trace-1, got %s", v.Metadata.TraceID)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("timeout waiting for verdict")
		}

		eventBus.Publish(ctx, "tenant-001", domain.TopicValidateRequested, requestPayload(t, "", "B"))
		select {
		case v := <-verdicts:
			if v.Status != domain.VerdictFail {
				t.Errorf("expected FAIL, got %s", v.Status)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("timeout waiting for verdict")
		}

		deadline := time.Now().Add(time.Second)
		for failedCount.Load() != 1 && time.Now().Before(deadline) {
			time.Sleep(5 * time.Millisecond)
		}
		if failedCount.Load() != 1 {
			t.Errorf("expected 1 failed verdict, got %d", failedCount.Load())
		}
	})

	t.Run("GlobalRequestReply", func(t *testing.T) {
		worker := NewWorker(eventBus, svc)
		if err := worker.Start(Config{}); err != nil {
			t.Fatalf("Start failed: %v", err)
		}
		defer worker.Stop()

		reqCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()

		data, err := eventBus.Request(reqCtx, GlobalTenant, domain.TopicValidateRequested, requestPayload(t, "tenant-001", "Y"))
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		var reply ValidateReply
		if err := json.Unmarshal(data, &reply); err != nil {
			t.Fatalf("bad reply: %v", err)
		}
		if reply.Error != "" || reply.Verdict == nil {
			t.Fatalf("unexpected reply %+v", reply)
		}
		if reply.Verdict.TenantID != "tenant-001" || reply.Verdict.Status != domain.VerdictPass {
			t.Errorf("unexpected verdict %+v", reply.Verdict)
		}
	})

	t.Run("ErrorReply", func(t *testing.T) {
		worker := NewWorker(eventBus, svc)
		_ = worker.Start(Config{TenantIDs: []string{"tenant-002"}})
		defer worker.Stop()

		reqCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()

		data, err := eventBus.Request(reqCtx, "tenant-002", domain.TopicValidateRequested, requestPayload(t, "", "Y"))
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		var reply ValidateReply
		_ = json.Unmarshal(data, &reply)
		if reply.Error == "" {
			t.Error("expected an error for a tenant without the item")
		}

		data, err = eventBus.Request(reqCtx, "tenant-002", domain.TopicValidateRequested, []byte("{not json"))
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		_ = json.Unmarshal(data, &reply)
		if reply.Error == "" {
			t.Error("expected an error for a malformed message")
		}

		worker.Stop()
		if worker.GetStats().Failed != 2 {
			t.Errorf("expected 2 failed messages, got %d", worker.GetStats().Failed)
		}
	})
}
