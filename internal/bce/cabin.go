package bce

import (
	"context"
	"sync"
	"time"

	"github.com/opensource-finance/bce/internal/domain"
)

// cabinOf resolves the cabin the segment's carrier sells code in. Open
// segments without a dated mapping retry with the current date, and the
// segment inventory is the last resort.
func (p *pass) cabinOf(tvl *domain.TravelSegment, code string) domain.CabinType {
	if code == "" {
		return domain.CabinInvalid
	}
	if p.v.cabins != nil {
		c := p.v.cabins.Cabin(p.ctx, tvl.Carrier, code, tvl.Departure)
		if c.IsValid() {
			return c
		}
		if tvl.Open {
			if c = p.v.cabins.Cabin(p.ctx, tvl.Carrier, code, p.v.now()); c.IsValid() {
				return c
			}
		}
	}
	for _, cs := range tvl.ClassOfService {
		if cs.BookingCode == code && cs.Cabin.IsValid() {
			return cs.Cabin
		}
	}
	return domain.CabinInvalid
}

// CabinTable is an in-memory CabinLookup keyed by carrier and booking code.
type CabinTable struct {
	mu      sync.RWMutex
	entries map[string][]domain.RBDCabin
}

// NewCabinTable creates a table holding the given mappings.
func NewCabinTable(rows ...domain.RBDCabin) *CabinTable {
	t := &CabinTable{entries: make(map[string][]domain.RBDCabin)}
	t.Add(rows...)
	return t
}

func cabinKey(carrier, code string) string { return carrier + "/" + code }

// Add stores mappings. Later rows for the same key are tried after earlier ones.
func (t *CabinTable) Add(rows ...domain.RBDCabin) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, r := range rows {
		k := cabinKey(r.Carrier, r.BookingCode)
		t.entries[k] = append(t.entries[k], r)
	}
}

// Cabin implements domain.CabinLookup.
func (t *CabinTable) Cabin(_ context.Context, carrier, bookingCode string, date time.Time) domain.CabinType {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, r := range t.entries[cabinKey(carrier, bookingCode)] {
		if date.IsZero() || r.Covers(date) {
			return r.Cabin
		}
	}
	return domain.CabinInvalid
}

// Len returns the number of stored mappings.
func (t *CabinTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	n := 0
	for _, rows := range t.entries {
		n += len(rows)
	}
	return n
}

// ZoneTable is an in-memory ZoneLookup.
type ZoneTable struct {
	mu    sync.RWMutex
	zones map[string][]domain.LocKey
}

// NewZoneTable creates a table holding the given zones.
func NewZoneTable(zones ...domain.Zone) *ZoneTable {
	t := &ZoneTable{zones: make(map[string][]domain.LocKey)}
	for _, z := range zones {
		t.Put(z)
	}
	return t
}

// Put replaces the locations of a zone.
func (t *ZoneTable) Put(z domain.Zone) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.zones[z.Zone] = z.Locations
}

// InZone implements domain.ZoneLookup. Nested zones are not expanded.
func (t *ZoneTable) InZone(_ context.Context, zone string, loc domain.Location) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, key := range t.zones[zone] {
		if InLoc(loc, key) {
			return true
		}
	}
	return false
}
