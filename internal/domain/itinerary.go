package domain

import (
	"slices"
	"time"
)

// SegmentKind is the closed set of travel segment variants.
type SegmentKind string

const (
	SegmentAir     SegmentKind = "air"
	SegmentArunk   SegmentKind = "arunk"
	SegmentSurface SegmentKind = "surface"
	SegmentBus     SegmentKind = "bus"
	SegmentTrain   SegmentKind = "train"
)

// IsAir reports whether the segment is a carrier-operated segment that
// carries flight, equipment and booking-code data.
func (k SegmentKind) IsAir() bool {
	switch k {
	case SegmentAir, SegmentBus, SegmentTrain, "":
		return true
	}
	return false
}

// Reservation status codes the validator inspects.
const (
	ResStatusConfirmed = "HK"
	ResStatusQueued    = "QF"
)

// Location is a resolved airport with its containing geography.
type Location struct {
	Airport string `json:"airport"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	Nation  string `json:"nation"`
	Area    string `json:"area"`
}

// Nation codes with dedicated portion-of-travel rules.
const (
	NationUS = "US"
	NationCA = "CA"
	NationMX = "MX"
)

// Areas of the three IATA traffic conferences.
const (
	Area1 = "1"
	Area2 = "2"
	Area3 = "3"
)

// ClassOfService is the inventory of one booking code on a segment.
type ClassOfService struct {
	BookingCode string    `json:"bookingCode"`
	Cabin       CabinType `json:"cabin"`
	Seats       int       `json:"seats"`
}

// CarrierPreference holds the per-carrier availability switches.
type CarrierPreference struct {
	ApplyRule2Status   bool `json:"applyRule2Status"`
	FlowMarketJourney  bool `json:"flowMarketJourney,omitempty"`
	LocalMarketJourney bool `json:"localMarketJourney,omitempty"`
}

// TravelSegment is one segment of the itinerary.
type TravelSegment struct {
	ID                  string             `json:"id"`
	Kind                SegmentKind        `json:"kind,omitempty"`
	Origin              Location           `json:"origin"`
	Destination         Location           `json:"destination"`
	Carrier             string             `json:"carrier,omitempty"`
	FlightNumber        int                `json:"flightNumber,omitempty"`
	Equipment           string             `json:"equipment,omitempty"`
	BookingCode         string             `json:"bookingCode,omitempty"`
	BookedCabin         CabinType          `json:"bookedCabin,omitempty"`
	ResStatus           string             `json:"resStatus,omitempty"`
	Departure           time.Time          `json:"departure"`
	Arrival             time.Time          `json:"arrival"`
	Open                bool               `json:"open,omitempty"`
	Unflown             bool               `json:"unflown"`
	FlowJourneyCarrier  bool               `json:"flowJourneyCarrier,omitempty"`
	LocalJourneyCarrier bool               `json:"localJourneyCarrier,omitempty"`
	ClassOfService      []ClassOfService   `json:"classOfService,omitempty"`
	CarrierPref         *CarrierPreference `json:"carrierPref,omitempty"`
}

// IsAir reports whether the segment is air-like.
func (s *TravelSegment) IsAir() bool { return s != nil && s.Kind.IsAir() }

// IsQueued reports whether the reservation is queued (QF).
func (s *TravelSegment) IsQueued() bool { return s.ResStatus == ResStatusQueued }

// IsConfirmed reports whether the reservation is confirmed.
func (s *TravelSegment) IsConfirmed() bool {
	switch s.ResStatus {
	case ResStatusConfirmed, "OK", "KK", "RR":
		return true
	}
	return false
}

// IsWaitlisted reports whether the reservation is on a waitlist.
func (s *TravelSegment) IsWaitlisted() bool {
	switch s.ResStatus {
	case "LL", "HL", "BL", "DL":
		return true
	}
	return false
}

// ODMarket is an origin and destination journey market of the itinerary.
type ODMarket struct {
	ID                 string                      `json:"id"`
	SegmentIDs         []string                    `json:"segmentIds"`
	FlowCarrierJourney bool                        `json:"flowCarrierJourney,omitempty"`
	JourneyByMarriage  bool                        `json:"journeyByMarriage,omitempty"`
	ClassOfService     map[string][]ClassOfService `json:"classOfService,omitempty"`
}

// Contains reports whether the market covers the segment.
func (m *ODMarket) Contains(segID string) bool {
	return slices.Contains(m.SegmentIDs, segID)
}

// SalesIndicator is the international sales indicator of the itinerary.
type SalesIndicator string

const (
	SaleSITI SalesIndicator = "SITI"
	SaleSITO SalesIndicator = "SITO"
	SaleSOTI SalesIndicator = "SOTI"
	SaleSOTO SalesIndicator = "SOTO"
)

// Itinerary holds journey data shared by every fare market.
type Itinerary struct {
	SalesIndicator SalesIndicator `json:"salesIndicator,omitempty"`
	ODMarkets      []ODMarket     `json:"odMarkets,omitempty"`
	// FlowAvailability is the journey availability per segment ID used
	// by pricing requests.
	FlowAvailability map[string][]ClassOfService `json:"flowAvailability,omitempty"`
	// MaxThruAvailability is the through availability per segment ID used
	// by shopping requests.
	MaxThruAvailability map[string][]ClassOfService `json:"maxThruAvailability,omitempty"`
}

// ODMarketFor returns the journey market covering the segment, or nil.
func (it *Itinerary) ODMarketFor(segID string) *ODMarket {
	if it == nil {
		return nil
	}
	for i := range it.ODMarkets {
		if it.ODMarkets[i].Contains(segID) {
			return &it.ODMarkets[i]
		}
	}
	return nil
}
