package bce

import (
	"github.com/opensource-finance/bce/internal/domain"
)

// ValidateWPNCSFromPrimeRBD reports whether a no-availability low fare
// request rebooks into the fare's prime booking codes for this segment.
func ValidateWPNCSFromPrimeRBD(seg *domain.ExceptionSegment) bool {
	return seg.RestrictionTag.IsPrimeFamily()
}

// validateWPNCS applies a segment for a lowest fare request that ignores
// availability. Offered codes are assumed sellable, so the segment passes
// and is rebooked into a filed or prime code.
func (p *pass) validateWPNCS(seg *domain.ExceptionSegment, tvl *domain.TravelSegment, stat []domain.SegmentStatus, airIndex, iFlt int) {
	if airIndex < 0 || airIndex >= len(stat) {
		return
	}
	switch seg.RestrictionTag {
	case domain.TagDoesNotExist:
		p.tagFltFailTagN(stat, airIndex)
		p.tracef("%s: WPNCS FAIL TAG N", tvl.ID)
		return
	case domain.TagStandby, domain.TagNotPermitted, domain.TagAdditionalDataApplies:
		p.tagFltNoMatch(stat, airIndex)
		p.tracef("%s: WPNCS NOMATCH", tvl.ID)
		return
	}

	st := &stat[airIndex]
	st.Set(domain.StatusPass)
	st.Clear(domain.StatusNoMatch | domain.StatusNotYetProcessed)

	if ValidateWPNCSFromPrimeRBD(seg) {
		p.wpncsFromPrime(tvl, stat, airIndex)
		return
	}

	booked := tvl.BookingCode
	if (booked == seg.BookingCode1 || booked == seg.BookingCode2) && !p.req.IsExcluded(booked) {
		p.checkPriceByCabin(tvl, stat, airIndex)
		return
	}

	st.Set(domain.StatusRebooked)
	var code string
	if iFlt == -1 && seg.RestrictionTag.IsDualRBD() {
		if seg.BookingCode2 == "" || p.req.IsExcluded(seg.BookingCode2) {
			st.Status = domain.StatusNoMatch
			return
		}
		code = seg.BookingCode2
	} else {
		code = seg.BookingCode1
		if code == "" || p.req.IsExcluded(code) {
			if seg.BookingCode2 == "" || p.req.IsExcluded(seg.BookingCode2) {
				st.Status = domain.StatusNoMatch
				return
			}
			code = seg.BookingCode2
		}
	}
	st.RebookCode = code
	st.RebookCabin = p.cabinOf(tvl, code)
	p.fare.S8BookingCode = code
	p.tracef("%s: WPNCS REBOOK %s", tvl.ID, code)
	p.checkPriceByCabin(tvl, stat, airIndex)
}

// wpncsFromPrime rebooks into a prime booking code unless the segment is
// already booked in one.
func (p *pass) wpncsFromPrime(tvl *domain.TravelSegment, stat []domain.SegmentStatus, airIndex int) {
	st := &stat[airIndex]

	var primes []string
	for _, code := range p.fare.PrimeBookingCodes {
		if !p.req.IsExcluded(code) {
			primes = append(primes, code)
		}
	}
	if len(p.fare.PrimeBookingCodes) > 0 && len(primes) == 0 {
		st.Status = domain.StatusNoMatch
		return
	}

	for _, code := range primes {
		if tvl.BookingCode != code {
			continue
		}
		if !p.req.JumpCabinDisabled || p.cabinOf(tvl, code) == tvl.BookedCabin {
			p.tracef("%s: WPNCS BOOKED IN PRIME %s", tvl.ID, code)
			return
		}
	}

	if len(primes) == 0 {
		p.failWPNCS(stat, airIndex, BookingCodeNotOffered)
		return
	}
	if p.req.JumpCabinDisabled {
		p.validateRBDRec1PriceByCabin(tvl, stat, airIndex, primes)
		return
	}
	st.Set(domain.StatusRebooked)
	st.RebookCode = primes[0]
	st.RebookCabin = p.cabinOf(tvl, primes[0])
	p.fare.S8BookingCode = primes[0]
	p.tracef("%s: WPNCS REBOOK PRIME %s", tvl.ID, primes[0])
}

// validateRBDRec1PriceByCabin rebooks into the first prime code sold in the
// booked cabin. A single prime code cannot be priced by cabin.
func (p *pass) validateRBDRec1PriceByCabin(tvl *domain.TravelSegment, stat []domain.SegmentStatus, airIndex int, primes []string) {
	if len(primes) > 1 {
		for _, code := range primes {
			if p.cabinOf(tvl, code) != tvl.BookedCabin {
				continue
			}
			st := &stat[airIndex]
			st.Set(domain.StatusRebooked)
			st.RebookCode = code
			st.RebookCabin = tvl.BookedCabin
			p.fare.S8BookingCode = code
			p.tracef("%s: WPNCS REBOOK PRIME %s IN CABIN", tvl.ID, code)
			return
		}
	}
	p.failWPNCS(stat, airIndex, BookingCodeNotOffered)
	p.tracef("%s: WPNCS CABIN NOT MATCH", tvl.ID)
}

// checkPriceByCabin fails a rebook that would move the segment out of its
// booked cabin when cabin jumps are disabled.
func (p *pass) checkPriceByCabin(tvl *domain.TravelSegment, stat []domain.SegmentStatus, airIndex int) {
	st := &stat[airIndex]
	if !p.req.JumpCabinDisabled || !st.RebookCabin.IsDefined() {
		return
	}
	if st.RebookCabin == tvl.BookedCabin {
		return
	}
	p.failWPNCS(stat, airIndex, BookingCodeNotOffered)
	p.tracef("%s: WPNCS FAIL CABIN", tvl.ID)
}

func (p *pass) failWPNCS(stat []domain.SegmentStatus, airIndex int, vs BookingCodeStatus) {
	st := &stat[airIndex]
	st.Clear(domain.StatusRebooked | domain.StatusPass)
	p.tagFltFail(stat, airIndex, vs)
	st.RebookCode = ""
	st.RebookCabin = domain.CabinUndefined
	p.fare.S8BookingCode = ""
}
