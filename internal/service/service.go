// Package service runs booking code validations for the API and the worker.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/opensource-finance/bce/internal/bce"
	"github.com/opensource-finance/bce/internal/domain"
	"github.com/opensource-finance/bce/internal/rules"
	"github.com/opensource-finance/bce/internal/sequence"
	"github.com/opensource-finance/bce/internal/verdict"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Cache keys of the tenant reference data.
const (
	cabinsKey = "ref:cabins"
	zonesKey  = "ref:zones"
)

var tracer = otel.Tracer("bce/service")

// Service loads sequences and reference data, runs the validator and
// persists verdicts.
type Service struct {
	repo      domain.Repository
	cache     domain.Cache
	loader    *sequence.Loader
	engine    *rules.Engine
	processor *verdict.Processor
	cfg       domain.ValidatorConfig
	refTTL    time.Duration
	now       func() time.Time
}

// Options configures a Service.
type Options struct {
	Validator domain.ValidatorConfig
	// SequenceTTL bounds how long cached items and reference data live.
	SequenceTTL time.Duration
	// Now overrides the validator clock.
	Now func() time.Time
}

// New creates a service. cache may be nil.
func New(repo domain.Repository, cache domain.Cache, engine *rules.Engine, opts Options) *Service {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		repo:      repo,
		cache:     cache,
		loader:    sequence.NewLoader(repo, cache, opts.SequenceTTL),
		engine:    engine,
		processor: verdict.NewProcessor(),
		cfg:       opts.Validator,
		refTTL:    opts.SequenceTTL,
		now:       now,
	}
}

// Validate applies the input's exception item to its fare and stores the
// verdict. The input is mutated in place.
func (s *Service) Validate(ctx context.Context, tenantID, traceID string, in *domain.ValidationInput) (*domain.Verdict, error) {
	start := time.Now()

	if tenantID == "" {
		return nil, fmt.Errorf("%w: tenantID is required", domain.ErrInvalidInput)
	}
	if in == nil {
		return nil, fmt.Errorf("%w: validation input is required", domain.ErrInvalidInput)
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "bce.validate",
		trace.WithAttributes(
			attribute.String("tenant.id", tenantID),
			attribute.Int("item.no", in.ItemNo),
			attribute.String("fare.id", in.Fare.ID),
		),
	)
	defer span.End()

	item, err := s.loader.Load(ctx, tenantID, in.ItemNo)
	var seqs []domain.ExceptionSequence
	switch {
	case err == nil:
		seqs = item.Sequences
	case errors.Is(err, domain.ErrNoSequences):
		// An empty item does not apply; the validator reports it as such.
	default:
		span.SetStatus(otelcodes.Error, "failed to load sequences")
		return nil, err
	}
	loadTime := time.Since(start)

	opts, err := s.referenceOptions(ctx, tenantID)
	if err != nil {
		span.SetStatus(otelcodes.Error, "failed to load reference data")
		return nil, err
	}

	validateStart := time.Now()
	outcome, err := bce.New(bce.Config{
		PartOfLocalJourney: s.cfg.PartOfLocalJourney,
		SkipFlownCat31:     s.cfg.SkipFlownCat31,
		UseExceptionIndex:  s.cfg.UseExceptionIndex,
	}, opts...).Validate(ctx, in, seqs)
	if err != nil {
		span.SetStatus(otelcodes.Error, "validation failed")
		return nil, err
	}
	validateTime := time.Since(validateStart)

	v := s.processor.Process(ctx, &verdict.DecisionInput{
		TenantID:        tenantID,
		TraceID:         traceID,
		Input:           in,
		Applied:         outcome.Applied,
		Diagnostics:     outcome.Diagnostics,
		SequencesLoaded: len(seqs),
		LoadTime:        loadTime,
		ValidateTime:    validateTime,
		StartTime:       start,
	})

	if err := s.repo.SaveVerdict(ctx, tenantID, v); err != nil {
		slog.Error("failed to save verdict",
			"tenant_id", tenantID,
			"verdict_id", v.ID,
			"error", err,
		)
	}

	span.SetAttributes(
		attribute.String("verdict.status", v.Status),
		attribute.Int("sequences.tried", outcome.SequencesTried),
	)
	span.SetStatus(otelcodes.Ok, "ok")

	slog.Debug("validation complete",
		"tenant_id", tenantID,
		"item", in.ItemNo,
		"fare_id", in.Fare.ID,
		"status", v.Status,
		"sequences_tried", outcome.SequencesTried,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return v, nil
}

// GetVerdict returns a stored verdict.
func (s *Service) GetVerdict(ctx context.Context, tenantID, id string) (*domain.Verdict, error) {
	return s.repo.GetVerdict(ctx, tenantID, id)
}

// SaveItem stores an exception item and drops the cached copy.
func (s *Service) SaveItem(ctx context.Context, tenantID string, item *domain.ExceptionItem) error {
	if item == nil || item.ItemNo <= 0 {
		return fmt.Errorf("%w: itemNo must be positive", domain.ErrInvalidInput)
	}
	for i := range item.Sequences {
		if item.Sequences[i].ItemNo == 0 {
			item.Sequences[i].ItemNo = item.ItemNo
		}
	}
	return s.loader.Save(ctx, tenantID, item)
}

// GetItem returns a stored exception item.
func (s *Service) GetItem(ctx context.Context, tenantID string, itemNo int) (*domain.ExceptionItem, error) {
	return s.repo.GetExceptionItem(ctx, tenantID, itemNo)
}

// SaveCabins stores booking code to cabin mappings.
func (s *Service) SaveCabins(ctx context.Context, tenantID string, rows []domain.RBDCabin) error {
	if err := s.repo.SaveRBDCabins(ctx, tenantID, rows); err != nil {
		return err
	}
	return s.invalidate(ctx, tenantID, cabinsKey)
}

// SaveZone stores a zone.
func (s *Service) SaveZone(ctx context.Context, tenantID string, zone *domain.Zone) error {
	if zone == nil || zone.Zone == "" {
		return fmt.Errorf("%w: zone is required", domain.ErrInvalidInput)
	}
	if err := s.repo.SaveZone(ctx, tenantID, zone); err != nil {
		return err
	}
	return s.invalidate(ctx, tenantID, zonesKey)
}

// SaveTSI compiles, stores and loads a TSI definition.
func (s *Service) SaveTSI(ctx context.Context, tenantID string, def *domain.TSIDefinition) error {
	if err := s.engine.ValidateTSI(def); err != nil {
		return err
	}
	def.TenantID = tenantID
	if err := s.repo.SaveTSIDefinition(ctx, tenantID, def); err != nil {
		return err
	}
	return s.ReloadTSI(ctx, tenantID)
}

// ListTSI returns the indicators in effect for a tenant.
func (s *Service) ListTSI(ctx context.Context, tenantID string) ([]*domain.TSIDefinition, error) {
	if err := s.ensureTSI(ctx, tenantID); err != nil {
		return nil, err
	}
	return s.engine.Definitions(tenantID), nil
}

// ReloadTSI rebuilds a tenant's indicators from the built-in defaults and
// the stored definitions. A stored definition replaces the default with the
// same ID.
func (s *Service) ReloadTSI(ctx context.Context, tenantID string) error {
	stored, err := s.repo.ListTSIDefinitions(ctx, tenantID)
	if err != nil {
		return fmt.Errorf("failed to list tsi definitions: %w", err)
	}

	byID := make(map[int]*domain.TSIDefinition)
	for _, def := range rules.DefaultTSIs() {
		byID[def.ID] = def
	}
	for _, def := range stored {
		byID[def.ID] = def
	}
	defs := make([]*domain.TSIDefinition, 0, len(byID))
	for _, def := range byID {
		defs = append(defs, def)
	}

	if err := s.engine.ReloadTenant(tenantID, defs); err != nil {
		return err
	}

	slog.Info("tsi definitions loaded",
		"tenant_id", tenantID,
		"count", s.engine.Count(tenantID),
		"stored", len(stored),
	)
	return nil
}

// Ping checks the repository and the cache.
func (s *Service) Ping(ctx context.Context) error {
	if err := s.repo.Ping(ctx); err != nil {
		return fmt.Errorf("repository: %w", err)
	}
	if s.cache != nil {
		if err := s.cache.Ping(ctx); err != nil {
			return fmt.Errorf("cache: %w", err)
		}
	}
	return nil
}

func (s *Service) ensureTSI(ctx context.Context, tenantID string) error {
	if s.engine.Loaded(tenantID) {
		return nil
	}
	return s.ReloadTSI(ctx, tenantID)
}

// referenceOptions builds the validator's lookups for a tenant.
func (s *Service) referenceOptions(ctx context.Context, tenantID string) ([]bce.Option, error) {
	if err := s.ensureTSI(ctx, tenantID); err != nil {
		return nil, err
	}

	var cabins []domain.RBDCabin
	if err := s.cached(ctx, tenantID, cabinsKey, &cabins, func() (any, error) {
		return s.repo.ListRBDCabins(ctx, tenantID)
	}); err != nil {
		return nil, fmt.Errorf("failed to load cabins: %w", err)
	}

	var zones []*domain.Zone
	if err := s.cached(ctx, tenantID, zonesKey, &zones, func() (any, error) {
		return s.repo.ListZones(ctx, tenantID)
	}); err != nil {
		return nil, fmt.Errorf("failed to load zones: %w", err)
	}

	zt := bce.NewZoneTable()
	for _, z := range zones {
		zt.Put(*z)
	}

	return []bce.Option{
		bce.WithCabinLookup(bce.NewCabinTable(cabins...)),
		bce.WithZoneLookup(zt),
		bce.WithTSIMatcher(s.engine.ForTenant(tenantID)),
		bce.WithClock(s.now),
	}, nil
}

// cached decodes key into dst, filling it from load on a miss.
func (s *Service) cached(ctx context.Context, tenantID, key string, dst any, load func() (any, error)) error {
	if s.cache != nil {
		data, err := s.cache.Get(ctx, tenantID, key)
		if err == nil && data != nil {
			if err := json.Unmarshal(data, dst); err == nil {
				return nil
			}
		}
		if err != nil {
			slog.Warn("cache read failed", "tenant_id", tenantID, "key", key, "error", err)
		}
	}

	v, err := load()
	if err != nil {
		return err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, tenantID, key, data, s.refTTL); err != nil {
			slog.Warn("cache write failed", "tenant_id", tenantID, "key", key, "error", err)
		}
	}
	return json.Unmarshal(data, dst)
}

func (s *Service) invalidate(ctx context.Context, tenantID, key string) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Delete(ctx, tenantID, key)
}
