package domain

// GeoTravelType classifies the geography of a fare market.
type GeoTravelType string

const (
	GeoDomestic        GeoTravelType = "domestic"
	GeoTransborder     GeoTravelType = "transborder"
	GeoForeignDomestic GeoTravelType = "foreign_domestic"
	GeoInternational   GeoTravelType = "international"
)

// IsDomesticLike reports whether primary/secondary filing is meaningless
// for the fare market.
func (g GeoTravelType) IsDomesticLike() bool {
	return g == GeoDomestic || g == GeoTransborder || g == GeoForeignDomestic
}

// Fare directionality values.
const (
	DirectionalityFrom = "FROM"
	DirectionalityTo   = "TO"
)

// FareMarket is the origin and destination priced by a fare.
type FareMarket struct {
	GoverningCarrier string           `json:"governingCarrier"`
	Origin           Location         `json:"origin"`
	Destination      Location         `json:"destination"`
	GlobalDirection  string           `json:"globalDirection,omitempty"`
	GeoTravelType    GeoTravelType    `json:"geoTravelType,omitempty"`
	FlowMarket       bool             `json:"flowMarket,omitempty"`
	PrimarySectorID  string           `json:"primarySectorId,omitempty"`
	Segments         []*TravelSegment `json:"segments"`
	// ClassOfService is the fare-market (through) inventory, one entry per
	// segment. Missing entries fall back to the segment's own inventory.
	ClassOfService [][]ClassOfService `json:"classOfService,omitempty"`
}

// Normalize fills the fare-market inventory from the segments when absent.
func (fm *FareMarket) Normalize() {
	if len(fm.ClassOfService) == len(fm.Segments) {
		return
	}
	cos := make([][]ClassOfService, len(fm.Segments))
	for i, seg := range fm.Segments {
		if i < len(fm.ClassOfService) && fm.ClassOfService[i] != nil {
			cos[i] = fm.ClassOfService[i]
			continue
		}
		cos[i] = seg.ClassOfService
	}
	fm.ClassOfService = cos
}

// PrimarySector returns the primary sector segment, or nil.
func (fm *FareMarket) PrimarySector() *TravelSegment {
	if fm.PrimarySectorID == "" {
		return nil
	}
	for _, s := range fm.Segments {
		if s.ID == fm.PrimarySectorID {
			return s
		}
	}
	return nil
}

// IsPrimarySector reports whether seg is the primary sector.
func (fm *FareMarket) IsPrimarySector(seg *TravelSegment) bool {
	p := fm.PrimarySector()
	return p != nil && p == seg
}

// IndexOf returns the position of seg in the market, or -1.
func (fm *FareMarket) IndexOf(segID string) int {
	for i, s := range fm.Segments {
		if s.ID == segID {
			return i
		}
	}
	return -1
}

// Fare is the pax-type fare whose booking codes are being validated.
type Fare struct {
	ID                string      `json:"id"`
	Carrier           string      `json:"carrier"`
	FareClass         string      `json:"fareClass"`
	FareType          string      `json:"fareType,omitempty"`
	FareBasis         string      `json:"fareBasis,omitempty"`
	Industry          bool        `json:"industry,omitempty"`
	ChangeFareClass   bool        `json:"changeFareClass,omitempty"`
	Constructed       bool        `json:"constructed,omitempty"`
	Cabin             CabinType   `json:"cabin"`
	Directionality    string      `json:"directionality,omitempty"`
	PrimeBookingCodes []string    `json:"primeBookingCodes,omitempty"`
	Passengers        int         `json:"passengers"`
	Market            *FareMarket `json:"market"`

	SegmentStatus      []SegmentStatus `json:"segmentStatus,omitempty"`
	SegmentStatusRule2 []SegmentStatus `json:"segmentStatusRule2,omitempty"`
	Flags              FareStatusFlag  `json:"flags,omitempty"`
	// ChangeBookingCode is the booking code selected for an industry fare
	// whose fare class is rewritten.
	ChangeBookingCode string `json:"changeBookingCode,omitempty"`
	// AllowedChangeBookingCode is the fare basis booking code the request
	// asks for. Blank accepts whatever the item selects.
	AllowedChangeBookingCode string `json:"allowedChangeBookingCode,omitempty"`
	// S8BookingCode records the booking code the fare finally passed with.
	S8BookingCode string `json:"s8BookingCode,omitempty"`
}

// PrepareStatus sizes both status vectors to the fare market.
func (f *Fare) PrepareStatus() {
	n := 0
	if f.Market != nil {
		n = len(f.Market.Segments)
	}
	if len(f.SegmentStatus) != n {
		f.SegmentStatus = NewSegmentStatuses(n)
	}
	if len(f.SegmentStatusRule2) != n {
		f.SegmentStatusRule2 = NewSegmentStatuses(n)
	}
}

// SeatsRequired is the number of seats the fare needs on each segment.
func (f *Fare) SeatsRequired() int {
	if f.Passengers <= 0 {
		return 1
	}
	return f.Passengers
}

// FareUsage overrides the fare's own status vector when a fare is reused
// inside a pricing unit.
type FareUsage struct {
	SegmentStatus []SegmentStatus `json:"segmentStatus"`
}
