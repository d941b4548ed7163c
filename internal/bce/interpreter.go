package bce

import (
	"strings"
	"time"

	"github.com/opensource-finance/bce/internal/domain"
)

// Unset travel time markers.
const (
	timeUnset      = 0
	timeUnsetFiled = 65535
)

// fareComponentLevel reports whether the segment is the "if" segment of a
// sequence applied per fare component. Such segments are checked against the
// fare market instead of the travel segment, and a failure skips the whole
// sequence.
func fareComponentLevel(seq *domain.ExceptionSequence, seg *domain.ExceptionSegment) bool {
	return seq.IfTag == domain.IfTagFareComponent && seg.SegNo == 1
}

// validateCarrier checks the via carrier qualifier.
func (p *pass) validateCarrier(seq *domain.ExceptionSequence, seg *domain.ExceptionSegment, tvl *domain.TravelSegment, iFlt, fltIndex int) Result {
	via := seg.ViaCarrier
	if via == "" || via == domain.CarrierDollarDollar || via == domain.CarrierAny {
		return Pass
	}

	if fareComponentLevel(seq, seg) {
		switch {
		case via == domain.CarrierXDollar:
			if p.fare.Industry {
				return Pass
			}
			if iFlt != -1 {
				if iFlt != fltIndex {
					return NextFlight
				}
				if tvl.Carrier != p.fare.Carrier {
					return Pass
				}
			}
		case via == domain.CarrierIndustry && p.fare.Industry:
			return Pass
		case via == p.fare.Carrier:
			return Pass
		}
		return NextSequence
	}

	if via == domain.CarrierXDollar {
		if p.fare.Industry || tvl.Carrier != p.fare.Carrier {
			return Pass
		}
		return NextFlight
	}
	if via == tvl.Carrier {
		return Pass
	}
	return NextFlight
}

// validatePrimarySecondary checks the primary/secondary sector qualifier.
// FromToPrimary asks the caller to look at the neighbouring segments.
func (p *pass) validatePrimarySecondary(seg *domain.ExceptionSegment, tvl *domain.TravelSegment) Result {
	ind := seg.PrimarySecondary
	if ind == "" {
		return Pass
	}
	switch ind {
	case domain.SectorPrimary, domain.SectorSecondary, domain.SectorFromToPrimary:
		if p.fm.GeoTravelType.IsDomesticLike() {
			return NextSequence
		}
	}

	isPrimary := p.fm.IsPrimarySector(tvl)
	switch ind {
	case domain.SectorPrimary:
		if isPrimary {
			return Pass
		}
	case domain.SectorFromToPrimary:
		if isPrimary {
			return NextFlight
		}
		return FromToPrimary
	case domain.SectorSecondary:
		if !isPrimary {
			return Pass
		}
	}
	return NextFlight
}

// validateFlights checks the flight number qualifier. Range bounds may be
// filed in either order.
func validateFlights(seg *domain.ExceptionSegment, tvl *domain.TravelSegment) Result {
	if seg.Flight1 <= 0 {
		return Pass
	}
	flt := tvl.FlightNumber
	switch seg.FltRangeAppl {
	case domain.FlightIndividual:
		if flt != seg.Flight1 && (seg.Flight2 == 0 || flt != seg.Flight2) {
			return NextFlight
		}
	case domain.FlightRange:
		lo, hi := seg.Flight1, seg.Flight2
		if hi <= 0 {
			hi = lo
		}
		if lo > hi {
			lo, hi = hi, lo
		}
		if flt < lo || flt > hi {
			return NextFlight
		}
	}
	return Pass
}

// validateEquipment checks the equipment qualifier.
func validateEquipment(seg *domain.ExceptionSegment, tvl *domain.TravelSegment) Result {
	if seg.Equipment == "" || seg.Equipment == tvl.Equipment {
		return Pass
	}
	return NextFlight
}

// validatePortionOfTravel checks the portion of travel qualifier.
func validatePortionOfTravel(seg *domain.ExceptionSegment, fm *domain.FareMarket, tvl *domain.TravelSegment) Result {
	if seg.PortionOfTravel == "" || portionMatches(seg.PortionOfTravel, fm, tvl) {
		return Pass
	}
	return NextFlight
}

// validateTSI checks the travel segment indicator. Unknown indicators never match.
func (p *pass) validateTSI(seg *domain.ExceptionSegment, tvl *domain.TravelSegment) Result {
	if seg.TSI == 0 {
		return Pass
	}
	if p.v.tsi == nil {
		p.tracef("TSI %d: NO MATCHER", seg.TSI)
		return NextFlight
	}
	match, ok := p.v.tsi.Match(seg.TSI, tvl, p.fm)
	if !ok {
		p.tracef("TSI %d: UNKNOWN", seg.TSI)
		return NextFlight
	}
	if !match {
		return NextFlight
	}
	return Pass
}

func locationMissing(l domain.Location) bool {
	return l.Airport == "" && l.City == "" && l.Nation == ""
}

// validateLocation checks the directional location qualifiers.
func (p *pass) validateLocation(seq *domain.ExceptionSequence, seg *domain.ExceptionSegment, tvl *domain.TravelSegment) Result {
	if seg.Loc1.IsEmpty() && seg.Loc2.IsEmpty() {
		return Pass
	}

	fareLevel := fareComponentLevel(seq, seg)
	orig, dest := tvl.Origin, tvl.Destination
	fail := NextFlight
	if fareLevel {
		orig, dest = p.fm.Origin, p.fm.Destination
		fail = NextSequence
	}
	if locationMissing(orig) || locationMissing(dest) {
		return NextSequence
	}

	switch seg.DirectionInd {
	case domain.DirectionFromLoc1:
		if p.isInLoc(orig, seg.Loc1) && p.isInLoc(dest, seg.Loc2) {
			return Pass
		}
		return fail
	case domain.DirectionToLoc1:
		if p.isInLoc(dest, seg.Loc1) && p.isInLoc(orig, seg.Loc2) {
			return Pass
		}
		return fail
	case domain.DirectionOriginLoc1, domain.DirectionDestLoc1:
		if !fareLevel {
			return NextFlight
		}
		o, d := p.fm.Origin, p.fm.Destination
		if p.fare.Directionality == domain.DirectionalityTo {
			o, d = d, o
		}
		if seg.DirectionInd == domain.DirectionDestLoc1 {
			o, d = d, o
		}
		if p.isInLoc(o, seg.Loc1) && p.isInLoc(d, seg.Loc2) {
			return Pass
		}
		return NextSequence
	case "":
		if seg.Loc1 == seg.Loc2 {
			// within a single location
			if p.isInLoc(orig, seg.Loc1) && p.isInLoc(dest, seg.Loc1) {
				return Pass
			}
			return fail
		}
		if (p.isInLoc(orig, seg.Loc1) && p.isInLoc(dest, seg.Loc2)) ||
			(p.isInLoc(orig, seg.Loc2) && p.isInLoc(dest, seg.Loc1)) {
			return Pass
		}
		return fail
	default:
		return NextSequence
	}
}

// validatePointOfSale checks the agent location against the point of sale.
func (p *pass) validatePointOfSale(seg *domain.ExceptionSegment) Result {
	if seg.PosLoc.IsEmpty() || seg.PosLoc.Type == "" {
		return Pass
	}
	agentIn := p.isInLoc(p.req.AgentLocation, seg.PosLoc)
	if seg.PosTSI == domain.TSIPointOfSaleInverted {
		agentIn = !agentIn
	}
	if agentIn {
		return Pass
	}
	return NextFlight
}

// validateSoldTag checks the sold/ticketed in/out indicator against the
// international sales indicator of the itinerary.
func (p *pass) validateSoldTag(seg *domain.ExceptionSegment) Result {
	var want domain.SalesIndicator
	switch seg.SoldInOutInd {
	case domain.SoldInTicketedIn:
		want = domain.SaleSITI
	case domain.SoldOutTicketedOut:
		want = domain.SaleSOTO
	case domain.SoldInTicketedOut:
		want = domain.SaleSITO
	case domain.SoldOutTicketedIn:
		want = domain.SaleSOTI
	default:
		return Pass
	}
	// an itinerary without a sales indicator never satisfies a sold tag
	if p.req.Itinerary.SalesIndicator != want {
		return NextFlight
	}
	return Pass
}

// validateDateTimeDOW checks the travel date window, days of week and time
// of day.
func (p *pass) validateDateTimeDOW(seq *domain.ExceptionSequence, seg *domain.ExceptionSegment, tvl *domain.TravelSegment) Result {
	if !hasDateTimeQualifiers(seg) {
		return Pass
	}

	arrival := seg.TSI != 0 && p.v.tsi != nil && p.v.tsi.Arrival(seg.TSI)
	when := tvl.Departure
	if arrival {
		when = tvl.Arrival
	}
	fail := NextFlight
	if fareComponentLevel(seq, seg) {
		fail = NextSequence
		air := p.airSegments()
		if len(air) > 0 {
			when = air[0].Departure
			if arrival {
				when = air[len(air)-1].Arrival
			}
		}
	}
	if when.IsZero() {
		// open segments without a date are not restricted
		return Pass
	}

	if !validateStartDate(when, seg.TvlEffYear, seg.TvlEffMonth, seg.TvlEffDay) {
		return fail
	}
	if !validateStopDate(when, seg.TvlDiscYear, seg.TvlDiscMonth, seg.TvlDiscDay) {
		return fail
	}
	if seg.DaysOfWeek != "" {
		dow := int(when.Weekday())
		if dow == 0 {
			dow = 7
		}
		if !strings.ContainsRune(seg.DaysOfWeek, rune('0'+dow)) {
			return fail
		}
	}

	minutes := when.Hour()*60 + when.Minute()
	if timeSet(seg.TvlStartTime) && minutes < seg.TvlStartTime {
		return fail
	}
	if timeSet(seg.TvlEndTime) && minutes > seg.TvlEndTime {
		return fail
	}
	return Pass
}

func timeSet(t int) bool {
	return t != timeUnset && t != timeUnsetFiled
}

func hasDateTimeQualifiers(seg *domain.ExceptionSegment) bool {
	return seg.TvlEffYear > 0 || seg.TvlEffMonth > 0 || seg.TvlEffDay > 0 ||
		seg.TvlDiscYear > 0 || seg.TvlDiscMonth > 0 || seg.TvlDiscDay > 0 ||
		seg.DaysOfWeek != "" || timeSet(seg.TvlStartTime) || timeSet(seg.TvlEndTime)
}

// filedYear expands two digit filed years.
func filedYear(y int) int {
	if y > 0 && y < 100 {
		return 2000 + y
	}
	return y
}

// compareDate compares date with a filed y/m/d, skipping zero fields.
// It returns -1, 0 or 1.
func compareDate(date time.Time, year, month, day int) int {
	parts := [3][2]int{
		{date.Year(), filedYear(year)},
		{int(date.Month()), month},
		{date.Day(), day},
	}
	for _, p := range parts {
		if p[1] <= 0 {
			continue
		}
		switch {
		case p[0] < p[1]:
			return -1
		case p[0] > p[1]:
			return 1
		}
	}
	return 0
}

// validateStartDate reports whether date is on or after the filed start date.
func validateStartDate(date time.Time, year, month, day int) bool {
	return compareDate(date, year, month, day) >= 0
}

// validateStopDate reports whether date is on or before the filed stop date.
func validateStopDate(date time.Time, year, month, day int) bool {
	return compareDate(date, year, month, day) <= 0
}

// validateFareclassType checks the fare class or fare type qualifier. A
// mismatch rules out the whole sequence.
func (p *pass) validateFareclassType(seg *domain.ExceptionSegment) Result {
	if seg.Fareclass == "" {
		return Pass
	}
	if p.validateFCType(seg) {
		return Pass
	}
	return NextSequence
}

// validateFCType reports whether the fare matches the filed fare class
// qualifier.
func (p *pass) validateFCType(seg *domain.ExceptionSegment) bool {
	if seg.Fareclass == "" {
		return true
	}
	switch seg.FareclassType {
	case domain.FareclassTypeFareType:
		return matchFareType(seg.Fareclass, p.fare.FareType)
	case domain.FareclassTypeExact:
		return seg.Fareclass == p.fare.FareClass
	case domain.FareclassTypeMask:
		return matchFareClass(seg.Fareclass, p.fare.FareClass)
	case domain.FareclassTypeFirstChr:
		return strings.HasPrefix(p.fare.FareClass, seg.Fareclass)
	default:
		return false
	}
}
