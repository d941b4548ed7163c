package domain

import "time"

// RestrictionTag tells the validator how the booking codes of an exception
// segment apply to the matched travel segment.
type RestrictionTag string

const (
	TagPermitted                    RestrictionTag = "P"
	TagRequired                     RestrictionTag = "R"
	TagPermittedIfPrimeNotOffered   RestrictionTag = "O"
	TagPermittedIfPrimeNotAvailable RestrictionTag = "A"
	TagRequiredIfPrimeNotOffered    RestrictionTag = "G"
	TagRequiredIfPrimeNotAvailable  RestrictionTag = "H"
	TagRequiredWhenOffered          RestrictionTag = "W"
	TagRequiredWhenAvailable        RestrictionTag = "V"
	TagRBD2PermittedIfRBD1Available RestrictionTag = "B"
	TagRBD2RequiredIfRBD1Available  RestrictionTag = "D"
	TagAdditionalDataApplies        RestrictionTag = "U"
	TagStandby                      RestrictionTag = "S"
	TagNotPermitted                 RestrictionTag = "X"
	TagDoesNotExist                 RestrictionTag = "N"
)

// IsPrimeFamily reports whether the tag is conditioned on the prime booking code.
func (t RestrictionTag) IsPrimeFamily() bool {
	switch t {
	case TagPermittedIfPrimeNotOffered, TagPermittedIfPrimeNotAvailable,
		TagRequiredIfPrimeNotOffered, TagRequiredIfPrimeNotAvailable:
		return true
	}
	return false
}

// IsDualRBD reports whether the tag is one of the RBD2-if-RBD1 tags.
func (t RestrictionTag) IsDualRBD() bool {
	return t == TagRBD2PermittedIfRBD1Available || t == TagRBD2RequiredIfRBD1Available
}

// Carrier qualifiers with special meaning in ExceptionSegment.ViaCarrier.
const (
	CarrierDollarDollar = "$$"
	CarrierAny          = "**"
	CarrierXDollar      = "X$"
	CarrierIndustry     = "YY"
)

// Sequence and segment indicator values.
const (
	IfTagFareComponent = "1"
	IfTagAnyTravelSeg  = "2"

	PrimeIndicator = "X"

	FareConstructed = "C"
	FareSpecified   = "S"

	FlightIndividual = "I"
	FlightRange      = "R"

	SectorPrimary       = "P"
	SectorSecondary     = "S"
	SectorFromToPrimary = "T"

	DirectionFromLoc1     = "1"
	DirectionToLoc1       = "2"
	DirectionOriginLoc1   = "3"
	DirectionDestLoc1     = "4"
	FareclassTypeFareType = "T"
	FareclassTypeExact    = "F"
	FareclassTypeMask     = "M"
	FareclassTypeFirstChr = "A"

	SoldInTicketedIn   = "1"
	SoldOutTicketedOut = "2"
	SoldInTicketedOut  = "3"
	SoldOutTicketedIn  = "4"
)

// TSIPointOfSaleInverted is the point-of-sale TSI that negates the location test.
const TSIPointOfSaleInverted = 33

// LocType identifies how a LocKey code is interpreted.
type LocType string

const (
	LocArea    LocType = "A"
	LocNation  LocType = "N"
	LocState   LocType = "S"
	LocCity    LocType = "C"
	LocAirport LocType = "P"
	LocZone    LocType = "Z"
)

// LocKey is a filed geographic qualifier.
type LocKey struct {
	Type LocType `json:"type,omitempty"`
	Code string  `json:"code,omitempty"`
}

// IsEmpty reports whether the key carries no location.
func (l LocKey) IsEmpty() bool { return l.Code == "" }

// ExceptionSegment is one filed rule row of an exception sequence.
type ExceptionSegment struct {
	SegNo            int            `json:"segNo"`
	ViaCarrier       string         `json:"viaCarrier,omitempty"`
	PrimarySecondary string         `json:"primarySecondary,omitempty"`
	FltRangeAppl     string         `json:"fltRangeAppl,omitempty"`
	Flight1          int            `json:"flight1,omitempty"`
	Flight2          int            `json:"flight2,omitempty"`
	Equipment        string         `json:"equipment,omitempty"`
	PortionOfTravel  string         `json:"portionOfTravel,omitempty"`
	TSI              int            `json:"tsi,omitempty"`
	DirectionInd     string         `json:"directionInd,omitempty"`
	Loc1             LocKey         `json:"loc1,omitempty"`
	Loc2             LocKey         `json:"loc2,omitempty"`
	PosTSI           int            `json:"posTsi,omitempty"`
	PosLoc           LocKey         `json:"posLoc,omitempty"`
	SoldInOutInd     string         `json:"soldInOutInd,omitempty"`
	FareclassType    string         `json:"fareclassType,omitempty"`
	Fareclass        string         `json:"fareclass,omitempty"`
	TvlEffYear       int            `json:"tvlEffYear,omitempty"`
	TvlEffMonth      int            `json:"tvlEffMonth,omitempty"`
	TvlEffDay        int            `json:"tvlEffDay,omitempty"`
	TvlDiscYear      int            `json:"tvlDiscYear,omitempty"`
	TvlDiscMonth     int            `json:"tvlDiscMonth,omitempty"`
	TvlDiscDay       int            `json:"tvlDiscDay,omitempty"`
	DaysOfWeek       string         `json:"daysOfWeek,omitempty"`
	TvlStartTime     int            `json:"tvlStartTime,omitempty"`
	TvlEndTime       int            `json:"tvlEndTime,omitempty"`
	ArbZoneNo        string         `json:"arbZoneNo,omitempty"`
	RestrictionTag   RestrictionTag `json:"restrictionTag"`
	BookingCode1     string         `json:"bookingCode1,omitempty"`
	BookingCode2     string         `json:"bookingCode2,omitempty"`
}

// ExceptionSequence is an ordered group of exception segments.
type ExceptionSequence struct {
	ItemNo             int                `json:"itemNo"`
	SeqNo              int                `json:"seqNo"`
	TableType          string             `json:"tableType,omitempty"`
	ConstructSpecified string             `json:"constructSpecified,omitempty"`
	IfTag              string             `json:"ifTag,omitempty"`
	PrimeInd           string             `json:"primeInd,omitempty"`
	ExpireDate         time.Time          `json:"expireDate,omitzero"`
	Segments           []ExceptionSegment `json:"segments"`
}

// Segment returns the segment with the given number, or nil.
func (s *ExceptionSequence) Segment(segNo int) *ExceptionSegment {
	for i := range s.Segments {
		if s.Segments[i].SegNo == segNo {
			return &s.Segments[i]
		}
	}
	return nil
}

// ExceptionItem is the full ordered sequence list filed under one item number.
type ExceptionItem struct {
	ItemNo    int                 `json:"itemNo"`
	Carrier   string              `json:"carrier,omitempty"`
	Sequences []ExceptionSequence `json:"sequences"`
	UpdatedAt time.Time           `json:"updatedAt"`
}
