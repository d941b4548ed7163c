package bce

import (
	"slices"

	"github.com/opensource-finance/bce/internal/domain"
)

// validateBC reports whether the travel segment may be sold in one of the
// segment's booking codes.
func (p *pass) validateBC(seg *domain.ExceptionSegment, tvl *domain.TravelSegment, stat []domain.SegmentStatus, airIndex int, rbd2Only bool) bool {
	if p.validateWP(seg, tvl, stat, airIndex, rbd2Only) {
		return true
	}
	if p.statusType.IsAsBooked() {
		return false
	}
	return p.req.LowFareRequested && p.validateWPNC(seg, tvl, stat, airIndex, rbd2Only)
}

// validateBCNew is validateBC with the reason of a failure. The booked code
// is tried first; rebooking is attempted only outside the as-booked pass of
// a low fare request.
func (p *pass) validateBCNew(seg *domain.ExceptionSegment, tvl *domain.TravelSegment, stat []domain.SegmentStatus, airIndex int, rbd2Only bool) BookingCodeStatus {
	if p.validateWP(seg, tvl, stat, airIndex, rbd2Only) {
		return BookingCodePassed
	}
	if p.statusType.IsAsBooked() {
		return BookingCodeNotOffered
	}
	if p.req.LowFareRequested {
		return p.validateWPNCNew(seg, tvl, stat, airIndex, rbd2Only)
	}
	return BookingCodeNotOffered
}

// validateWP checks the booked code of the travel segment.
func (p *pass) validateWP(seg *domain.ExceptionSegment, tvl *domain.TravelSegment, stat []domain.SegmentStatus, airIndex int, rbd2Only bool) bool {
	if airIndex < 0 || airIndex >= len(stat) {
		return false
	}
	if p.checkBookedClassAvail(tvl, false) {
		return false
	}

	booked := tvl.BookingCode
	allowed := booked != "" && !p.req.IsExcluded(booked)
	matchBC2 := allowed && booked == seg.BookingCode2
	skipFlown := p.skipCat31Flown(tvl)

	if rbd2Only {
		if !matchBC2 && !skipFlown {
			return false
		}
		p.passAsBooked(&stat[airIndex])
		p.fare.S8BookingCode = seg.BookingCode2
		return true
	}

	matchBC1 := allowed && booked == seg.BookingCode1
	if !matchBC1 && !matchBC2 && !skipFlown {
		return false
	}
	p.passAsBooked(&stat[airIndex])
	if matchBC1 {
		p.fare.S8BookingCode = seg.BookingCode1
	} else {
		p.fare.S8BookingCode = seg.BookingCode2
	}
	return true
}

func (p *pass) passAsBooked(st *domain.SegmentStatus) {
	st.Set(domain.StatusPass)
	st.Clear(domain.StatusNoMatch | domain.StatusNotYetProcessed)
}

// cabinOK compares an offered cabin with the booked cabin. Missing cabins
// never block a match.
func cabinOK(offered, booked domain.CabinType, exact bool) bool {
	if !offered.IsValid() || !booked.IsValid() {
		return true
	}
	if exact {
		return offered == booked
	}
	return offered.AtLeast(booked)
}

// validateWPNC looks for an offered booking code of the segment with enough
// seats and rebooks the travel segment into it.
func (p *pass) validateWPNC(seg *domain.ExceptionSegment, tvl *domain.TravelSegment, stat []domain.SegmentStatus, airIndex int, rbd2Only bool) bool {
	if airIndex < 0 || airIndex >= len(stat) {
		return false
	}
	p.validateCabinForDifferential(tvl)

	cos := p.classOfService(tvl, &stat[airIndex], airIndex)
	if cos == nil {
		return false
	}

	seats := p.fare.SeatsRequired()
	for _, cs := range cos {
		if !cabinOK(cs.Cabin, tvl.BookedCabin, p.req.WPANoMatch) {
			continue
		}
		if !p.req.NoMatchAvail && cs.Seats < seats {
			continue
		}
		if rbd2Only {
			if cs.BookingCode == "" || cs.BookingCode != seg.BookingCode2 {
				continue
			}
			stat[airIndex].Set(domain.StatusDualRBDPass)
			stat[airIndex].DualRBD1 = seg.BookingCode1
			p.setRebookRBD(tvl, stat, airIndex, cs)
			return true
		}
		if cs.BookingCode == "" || (cs.BookingCode != seg.BookingCode1 && cs.BookingCode != seg.BookingCode2) {
			continue
		}
		p.setRebookRBD(tvl, stat, airIndex, cs)
		return true
	}
	return false
}

// validateWPNCNew is validateWPNC reporting why no booking code qualified.
// Excluded booking codes are skipped and, when cabin jumps are disabled, the
// offered cabin must be the cabin of the filed booking code.
func (p *pass) validateWPNCNew(seg *domain.ExceptionSegment, tvl *domain.TravelSegment, stat []domain.SegmentStatus, airIndex int, rbd2Only bool) BookingCodeStatus {
	if airIndex < 0 || airIndex >= len(stat) {
		return BookingCodeNotOffered
	}
	p.validateCabinForDifferential(tvl)

	cos := p.classOfService(tvl, &stat[airIndex], airIndex)
	if cos == nil {
		return BookingCodeNotOffered
	}

	var cabin1, cabin2 domain.CabinType
	if p.req.JumpCabinDisabled {
		cabin1 = p.cabinOf(tvl, seg.BookingCode1)
		cabin2 = p.cabinOf(tvl, seg.BookingCode2)
	}

	seats := p.fare.SeatsRequired()
	worst := BookingCodeNotOffered
	for _, cs := range cos {
		ok := cabinOK(cs.Cabin, tvl.BookedCabin, p.req.WPANoMatch || p.req.JumpCabinDisabled)
		if p.req.JumpCabinDisabled {
			if rbd2Only && cs.Cabin != cabin2 {
				ok = false
			}
			if !rbd2Only && cs.Cabin != cabin1 && cs.Cabin != cabin2 {
				ok = false
			}
		}

		var hasCode bool
		if rbd2Only {
			hasCode = cs.BookingCode != "" && cs.BookingCode == seg.BookingCode2
		} else {
			hasCode = cs.BookingCode != "" && (cs.BookingCode == seg.BookingCode1 || cs.BookingCode == seg.BookingCode2)
		}
		if !hasCode || !ok {
			worst = worseStatus(worst, BookingCodeNotOffered)
			continue
		}
		if p.req.IsExcluded(cs.BookingCode) {
			worst = worseStatus(worst, BookingCodeIsExcluded)
			continue
		}
		if !p.req.NoMatchAvail && cs.Seats < seats {
			worst = worseStatus(worst, BookingCodeNotAvailable)
			continue
		}
		p.setRebookRBD(tvl, stat, airIndex, cs)
		return BookingCodePassed
	}
	return worst
}

// statusRank orders failure reasons; not-available wins over the others.
var statusRank = map[BookingCodeStatus]int{
	BookingCodeNotOffered:   1,
	BookingCodeIsExcluded:   2,
	BookingCodeNotAvailable: 3,
}

func worseStatus(a, b BookingCodeStatus) BookingCodeStatus {
	if statusRank[b] > statusRank[a] {
		return b
	}
	return a
}

// setRebookRBD passes the segment in the given class of service and
// rebooks it when the class differs from the booked one.
func (p *pass) setRebookRBD(tvl *domain.TravelSegment, stat []domain.SegmentStatus, airIndex int, cs domain.ClassOfService) {
	st := &stat[airIndex]
	st.Set(domain.StatusPass)
	st.Clear(domain.StatusNotYetProcessed | domain.StatusNoMatch)

	if tvl.BookingCode != cs.BookingCode || tvl.IsQueued() ||
		p.req.TrxType == domain.TrxIS || p.req.TrxType == domain.TrxFareDisplay ||
		p.req.MIPRelaxedAction() {
		st.Set(domain.StatusRebooked)
		st.RebookCode = cs.BookingCode
		st.RebookCabin = cs.Cabin
	}
	p.fare.S8BookingCode = cs.BookingCode
}

// validateCabinForDifferential flags fares booked in a cabin below their own.
func (p *pass) validateCabinForDifferential(tvl *domain.TravelSegment) {
	if tvl.BookedCabin.Lower(p.fare.Cabin) {
		p.fare.Flags |= domain.FareReqLowerCabin
	}
}

// classOfService returns the inventory used for the travel segment,
// falling back to the fare market inventory.
func (p *pass) classOfService(tvl *domain.TravelSegment, st *domain.SegmentStatus, airIndex int) []domain.ClassOfService {
	if cos := p.getAvailability(tvl, st, airIndex); cos != nil {
		return cos
	}
	return p.marketClassOfService(airIndex)
}

func (p *pass) marketClassOfService(airIndex int) []domain.ClassOfService {
	if airIndex < 0 || airIndex >= len(p.fm.ClassOfService) {
		return nil
	}
	return p.fm.ClassOfService[airIndex]
}

// isPrimeOffered reports whether any prime booking code of the fare is
// offered on the travel segment.
func (p *pass) isPrimeOffered(tvl *domain.TravelSegment, stat []domain.SegmentStatus, airIndex int) bool {
	if airIndex < 0 || airIndex >= len(stat) {
		return false
	}
	cos := p.classOfService(tvl, &stat[airIndex], airIndex)
	if cos == nil {
		return false
	}
	for _, prime := range p.fare.PrimeBookingCodes {
		if !p.checkBookedClassOffer(tvl) && tvl.BookingCode == prime {
			return true
		}
		for _, cs := range cos {
			if cs.BookingCode == prime {
				return true
			}
		}
	}
	return false
}

// isPrimeAvailable reports whether any prime booking code of the fare has
// enough seats on the travel segment.
func (p *pass) isPrimeAvailable(tvl *domain.TravelSegment, stat []domain.SegmentStatus, airIndex int) bool {
	if airIndex < 0 || airIndex >= len(stat) {
		return false
	}
	cos := p.classOfService(tvl, &stat[airIndex], airIndex)
	if cos == nil {
		return false
	}
	seats := p.fare.SeatsRequired()
	for _, prime := range p.fare.PrimeBookingCodes {
		if !p.checkBookedClassAvail(tvl, false) && tvl.BookingCode == prime {
			return true
		}
		for _, cs := range cos {
			if cs.BookingCode == prime && cs.Seats >= seats {
				return true
			}
		}
	}
	return false
}

// isBceOffered reports whether either booking code of the segment is
// offered on the travel segment.
func (p *pass) isBceOffered(seg *domain.ExceptionSegment, tvl *domain.TravelSegment, stat []domain.SegmentStatus, airIndex int) bool {
	if airIndex < 0 || airIndex >= len(stat) {
		return false
	}
	cos := p.classOfService(tvl, &stat[airIndex], airIndex)
	if cos == nil {
		return false
	}
	codes := nonEmpty(seg.BookingCode1, seg.BookingCode2)
	if !p.checkBookedClassOffer(tvl) && slices.Contains(codes, tvl.BookingCode) {
		return true
	}
	for _, cs := range cos {
		if slices.Contains(codes, cs.BookingCode) {
			return true
		}
	}
	return false
}

// isBceAvailable reports whether a booking code of the segment has enough
// seats. rbd1Only restricts the check to the primary booking code.
func (p *pass) isBceAvailable(seg *domain.ExceptionSegment, tvl *domain.TravelSegment, stat []domain.SegmentStatus, airIndex int, rbd1Only bool) bool {
	if airIndex < 0 || airIndex >= len(stat) {
		return false
	}

	var cos []domain.ClassOfService
	if rbd1Only && p.localJourneyCarrier(tvl) {
		cos = p.marketClassOfService(airIndex)
	} else {
		cos = p.classOfService(tvl, &stat[airIndex], airIndex)
	}
	if cos == nil {
		return false
	}

	codes := nonEmpty(seg.BookingCode1, seg.BookingCode2)
	if rbd1Only {
		codes = nonEmpty(seg.BookingCode1)
	}

	seats := p.fare.SeatsRequired()
	if p.req.InfiniUser && p.req.SeatsWithoutIgnoreAvail > 0 {
		seats = p.req.SeatsWithoutIgnoreAvail
	}

	if !p.checkBookedClassAvail(tvl, rbd1Only) && slices.Contains(codes, tvl.BookingCode) {
		return true
	}
	for _, cs := range cos {
		if slices.Contains(codes, cs.BookingCode) && (p.req.NoMatchAvail || cs.Seats >= seats) {
			return true
		}
	}
	return false
}

func nonEmpty(codes ...string) []string {
	out := codes[:0:0]
	for _, c := range codes {
		if c != "" {
			out = append(out, c)
		}
	}
	return out
}

// checkBookedClassAvail reports whether the booked class must be checked
// against inventory rather than accepted as booked.
func (p *pass) checkBookedClassAvail(tvl *domain.TravelSegment, rbd1Only bool) bool {
	if !p.req.LowFareRequested {
		return false
	}
	if p.req.UpSell {
		return true
	}
	if p.req.MIPRelaxedAction() {
		return true
	}
	if p.req.TrxType == domain.TrxIS || p.req.TrxType == domain.TrxFareDisplay {
		return true
	}
	if tvl == nil {
		return false
	}
	if tvl.IsQueued() {
		return true
	}
	return rbd1Only && tvl.IsWaitlisted()
}

// checkBookedClassOffer reports whether the booked class must be checked
// against the offered classes rather than accepted as booked.
func (p *pass) checkBookedClassOffer(tvl *domain.TravelSegment) bool {
	if !p.req.LowFareRequested {
		return false
	}
	if p.req.MIPRelaxedAction() {
		return true
	}
	return tvl != nil && tvl.IsQueued()
}

// allSegsStatusQF reports whether the conv1 segment, or every air segment
// of the fare market, has a queued reservation.
func (p *pass) allSegsStatusQF(conv1 *domain.TravelSegment) bool {
	if !p.req.LowFareRequested || p.req.TrxType != domain.TrxPricing {
		return false
	}
	if conv1 != nil && conv1.IsQueued() {
		return true
	}
	for _, s := range p.fm.Segments {
		if s.IsAir() && !s.IsQueued() {
			return false
		}
	}
	return true
}

// skipCat31Flown reports whether a flown segment of an exchange is exempt
// from booking code validation.
func (p *pass) skipCat31Flown(tvl *domain.TravelSegment) bool {
	if p.req.TrxType != domain.TrxExchange || !p.req.RexNewItinPhase {
		return false
	}
	if !p.skipFlownCat31 {
		return false
	}
	return tvl.IsAir() && !tvl.Unflown
}
