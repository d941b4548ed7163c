package domain

import (
	"context"
	"time"
)

// CabinLookup resolves the cabin a carrier sells a booking code in.
type CabinLookup interface {
	// Cabin returns CabinInvalid when the code is unknown.
	Cabin(ctx context.Context, carrier, bookingCode string, date time.Time) CabinType
}

// ZoneLookup resolves user-defined zones for LocZone qualifiers.
type ZoneLookup interface {
	InZone(ctx context.Context, zone string, loc Location) bool
}

// TSIMatcher decides whether a travel segment is inside the scope of a
// travel segment indicator.
type TSIMatcher interface {
	// Match reports whether seg falls in the TSI scope. ok is false when
	// the TSI is unknown.
	Match(tsi int, seg *TravelSegment, fm *FareMarket) (match bool, ok bool)
	// Arrival reports whether the TSI checks the arrival point.
	Arrival(tsi int) bool
}

// RBDCabin maps one booking code of a carrier to a cabin.
type RBDCabin struct {
	Carrier     string    `json:"carrier"`
	BookingCode string    `json:"bookingCode"`
	Cabin       CabinType `json:"cabin"`
	EffDate     time.Time `json:"effDate,omitzero"`
	DiscDate    time.Time `json:"discDate,omitzero"`
}

// Covers reports whether the mapping is effective on date.
func (r *RBDCabin) Covers(date time.Time) bool {
	if !r.EffDate.IsZero() && date.Before(r.EffDate) {
		return false
	}
	if !r.DiscDate.IsZero() && date.After(r.DiscDate) {
		return false
	}
	return true
}

// Zone is a named set of locations.
type Zone struct {
	Zone      string   `json:"zone"`
	Locations []LocKey `json:"locations"`
}

// TSIDefinition is a travel segment indicator expressed in CEL.
type TSIDefinition struct {
	ID          int    `json:"id"`
	TenantID    string `json:"tenantId"`
	Name        string `json:"name"`
	Description string `json:"description"`
	// Expression is a CEL boolean over the segment and fare market.
	Expression string `json:"expression"`
	// Arrival marks TSIs that test the arrival point of the segment.
	Arrival bool `json:"arrival"`
	Enabled bool `json:"enabled"`
}
