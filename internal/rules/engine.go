// Package rules provides the CEL-Go based travel segment indicator engine.
//
// A travel segment indicator (TSI) narrows an exception segment to the
// travel segments a predicate selects. Each tenant files its TSIs as CEL
// boolean expressions over two variables:
//
//	seg  the travel segment: index, id, kind, carrier, flight, equipment,
//	     primary, origin and destination (airport, city, state, nation, area)
//	fm   the fare market: origin, destination, governingCarrier,
//	     geoTravelType, direction, segmentCount
package rules

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/opensource-finance/bce/internal/domain"
)

// Engine compiles and evaluates travel segment indicators per tenant.
type Engine struct {
	mu      sync.RWMutex
	env     *cel.Env
	tenants map[string]tsiSet
}

// tsiSet is an immutable set of compiled indicators. Reloads replace the
// whole set, so a matcher taken with ForTenant sees a consistent view.
type tsiSet map[int]*CompiledTSI

// CompiledTSI holds a pre-compiled CEL program.
type CompiledTSI struct {
	Def     *domain.TSIDefinition
	Program cel.Program
}

// NewEngine creates a new TSI engine.
func NewEngine() (*Engine, error) {
	env, err := cel.NewEnv(
		cel.Variable("seg", cel.MapType(cel.StringType, cel.DynType)),
		cel.Variable("fm", cel.MapType(cel.StringType, cel.DynType)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	return &Engine{
		env:     env,
		tenants: make(map[string]tsiSet),
	}, nil
}

// ValidateTSI compiles a definition without loading it.
func (e *Engine) ValidateTSI(def *domain.TSIDefinition) error {
	if def == nil {
		return fmt.Errorf("%w: tsi definition is required", domain.ErrInvalidInput)
	}
	_, err := e.compile(def)
	return err
}

// LoadTSI compiles a definition and adds it to the tenant's set. A
// disabled definition removes the indicator.
func (e *Engine) LoadTSI(tenantID string, def *domain.TSIDefinition) error {
	if tenantID == "" {
		return fmt.Errorf("%w: tenantID is required", domain.ErrInvalidInput)
	}

	var compiled *CompiledTSI
	if def.Enabled {
		var err error
		if compiled, err = e.compile(def); err != nil {
			return err
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	next := make(tsiSet, len(e.tenants[tenantID])+1)
	for id, c := range e.tenants[tenantID] {
		next[id] = c
	}
	if compiled == nil {
		delete(next, def.ID)
	} else {
		next[def.ID] = compiled
	}
	e.tenants[tenantID] = next
	return nil
}

// ReloadTenant replaces every indicator of a tenant. Nothing changes when
// any definition fails to compile.
func (e *Engine) ReloadTenant(tenantID string, defs []*domain.TSIDefinition) error {
	if tenantID == "" {
		return fmt.Errorf("%w: tenantID is required", domain.ErrInvalidInput)
	}

	next := make(tsiSet, len(defs))
	for _, def := range defs {
		if !def.Enabled {
			continue
		}
		compiled, err := e.compile(def)
		if err != nil {
			return err
		}
		next[def.ID] = compiled
	}

	e.mu.Lock()
	e.tenants[tenantID] = next
	e.mu.Unlock()
	return nil
}

// Count returns the number of loaded indicators of a tenant.
func (e *Engine) Count(tenantID string) int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.tenants[tenantID])
}

// Loaded reports whether the tenant's indicators were loaded at least once.
func (e *Engine) Loaded(tenantID string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, ok := e.tenants[tenantID]
	return ok
}

// Definitions returns the loaded definitions of a tenant ordered by ID.
func (e *Engine) Definitions(tenantID string) []*domain.TSIDefinition {
	e.mu.RLock()
	set := e.tenants[tenantID]
	e.mu.RUnlock()

	defs := make([]*domain.TSIDefinition, 0, len(set))
	for _, c := range set {
		defs = append(defs, c.Def)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].ID < defs[j].ID })
	return defs
}

// ForTenant returns a matcher over the tenant's current indicators.
func (e *Engine) ForTenant(tenantID string) domain.TSIMatcher {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return &tenantMatcher{tenantID: tenantID, set: e.tenants[tenantID]}
}

// Close cleans up the engine.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tenants = make(map[string]tsiSet)
	return nil
}

func (e *Engine) compile(def *domain.TSIDefinition) (*CompiledTSI, error) {
	ast, issues := e.env.Compile(def.Expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("%w: failed to compile tsi %d: %v", domain.ErrInvalidInput, def.ID, issues.Err())
	}

	if ast.OutputType() != cel.BoolType && ast.OutputType() != cel.DynType {
		return nil, fmt.Errorf("%w: tsi %d: expression must return bool, got %s", domain.ErrInvalidInput, def.ID, ast.OutputType())
	}

	program, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("failed to create program for tsi %d: %w", def.ID, err)
	}

	return &CompiledTSI{Def: def, Program: program}, nil
}

// tenantMatcher implements domain.TSIMatcher over one tenant's set.
type tenantMatcher struct {
	tenantID string
	set      tsiSet
}

// Match evaluates the indicator for one travel segment. Evaluation errors
// and non-boolean results count as no match.
func (m *tenantMatcher) Match(tsi int, seg *domain.TravelSegment, fm *domain.FareMarket) (bool, bool) {
	c, ok := m.set[tsi]
	if !ok {
		return false, false
	}

	out, _, err := c.Program.Eval(map[string]any{
		"seg": segmentVars(seg, fm),
		"fm":  marketVars(fm),
	})
	if err != nil {
		slog.Warn("tsi evaluation failed",
			"tenant", m.tenantID,
			"tsi", tsi,
			"segment", seg.ID,
			"error", err,
		)
		return false, true
	}

	b, isBool := out.(types.Bool)
	return isBool && bool(b), true
}

// Arrival reports whether the indicator tests the arrival point.
func (m *tenantMatcher) Arrival(tsi int) bool {
	c, ok := m.set[tsi]
	return ok && c.Def.Arrival
}

func locationVars(l domain.Location) map[string]any {
	return map[string]any{
		"airport": l.Airport,
		"city":    l.City,
		"state":   l.State,
		"nation":  l.Nation,
		"area":    l.Area,
	}
}

func segmentVars(seg *domain.TravelSegment, fm *domain.FareMarket) map[string]any {
	index := int64(-1)
	primary := false
	if fm != nil {
		index = int64(fm.IndexOf(seg.ID))
		primary = fm.IsPrimarySector(seg)
	}
	kind := seg.Kind
	if kind == "" {
		kind = domain.SegmentAir
	}
	return map[string]any{
		"index":       index,
		"id":          seg.ID,
		"kind":        string(kind),
		"carrier":     seg.Carrier,
		"flight":      int64(seg.FlightNumber),
		"equipment":   seg.Equipment,
		"primary":     primary,
		"origin":      locationVars(seg.Origin),
		"destination": locationVars(seg.Destination),
	}
}

func marketVars(fm *domain.FareMarket) map[string]any {
	if fm == nil {
		return map[string]any{}
	}
	return map[string]any{
		"origin":           locationVars(fm.Origin),
		"destination":      locationVars(fm.Destination),
		"governingCarrier": fm.GoverningCarrier,
		"geoTravelType":    string(fm.GeoTravelType),
		"direction":        fm.GlobalDirection,
		"segmentCount":     int64(len(fm.Segments)),
	}
}
