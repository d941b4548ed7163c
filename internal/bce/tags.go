package bce

import (
	"github.com/opensource-finance/bce/internal/domain"
)

// failMode selects how a failed booking code check is tagged.
type failMode int

const (
	tagNoMatch failMode = iota
	tagFail
)

// processRestrictionTag applies the restriction tag of a matched exception
// segment to one travel segment.
func (p *pass) processRestrictionTag(seg *domain.ExceptionSegment, tvl *domain.TravelSegment, stat []domain.SegmentStatus, airIndex, iFlt int) {
	if p.req.LowFareNoAvailability {
		p.validateWPNCS(seg, tvl, stat, airIndex, iFlt)
		return
	}

	tag := seg.RestrictionTag
	p.tracef("%s: TAG %s BC1 %q BC2 %q", tvl.ID, tag, seg.BookingCode1, seg.BookingCode2)

	switch tag {
	case domain.TagPermitted:
		p.permittedTagP(seg, tvl, stat, airIndex)

	case domain.TagRequired:
		p.restTag = tag
		p.bcValidation(seg, tvl, stat, airIndex, tagFail, false, BookingCodeNone)

	case domain.TagPermittedIfPrimeNotOffered, domain.TagPermittedIfPrimeNotAvailable,
		domain.TagRequiredIfPrimeNotOffered, domain.TagRequiredIfPrimeNotAvailable:
		if p.req.NoMatchAvail && !p.req.InfiniUser {
			p.permittedTagP(seg, tvl, stat, airIndex)
			return
		}
		p.restTag = tag
		p.primeTag(tag, seg, tvl, stat, airIndex)

	case domain.TagRequiredWhenOffered:
		if p.req.NoMatchAvail && p.req.AxessUser {
			p.permittedTagP(seg, tvl, stat, airIndex)
			return
		}
		p.restTag = tag
		if !p.isBceOffered(seg, tvl, stat, airIndex) {
			p.tagFltNoMatchNew(stat, airIndex, BookingCodeNotOffered)
			return
		}
		p.bcValidation(seg, tvl, stat, airIndex, tagFail, false, BookingCodeNone)

	case domain.TagRequiredWhenAvailable:
		if p.req.NoMatchAvail && p.req.AxessUser {
			p.permittedTagP(seg, tvl, stat, airIndex)
			return
		}
		p.restTag = tag
		if !p.isBceAvailable(seg, tvl, stat, airIndex, false) {
			p.tagFltNoMatchNew(stat, airIndex, BookingCodeNotAvailable)
			return
		}
		p.bcValidation(seg, tvl, stat, airIndex, tagFail, false, BookingCodeNone)

	case domain.TagRBD2PermittedIfRBD1Available, domain.TagRBD2RequiredIfRBD1Available:
		// Dual RBD tags apply to whole fare components only, and a
		// Cat25 record 3 cross reference suppresses them.
		if iFlt != -1 || p.in.Rec1T999Cat25R3 {
			p.tracef("%s: TAG %s SUPPRESSED", tvl.ID, tag)
			return
		}
		p.restTag = tag
		if !p.isBceAvailable(seg, tvl, stat, airIndex, true) {
			p.tagFltNoMatchNew(stat, airIndex, BookingCodeNotAvailable)
			return
		}
		mode := tagNoMatch
		if tag == domain.TagRBD2RequiredIfRBD1Available {
			mode = tagFail
		}
		p.bcValidation(seg, tvl, stat, airIndex, mode, true, BookingCodeNone)

	case domain.TagAdditionalDataApplies:
		p.restTag = tag
		p.tagFltNoMatch(stat, airIndex)

	case domain.TagStandby:
		p.restTag = tag
		if tvl.IsConfirmed() {
			p.tagFltNoMatch(stat, airIndex)
			return
		}
		p.bcValidation(seg, tvl, stat, airIndex, tagFail, false, BookingCodeNone)

	case domain.TagNotPermitted:
		p.restTag = tag
		if !p.validateBC(seg, tvl, stat, airIndex, false) {
			p.tagFltNoMatchNew(stat, airIndex, BookingCodePassed)
			return
		}
		// The booked code is one the carrier forbids.
		p.tagFltFail(stat, airIndex, BookingCodePassed)
		stat[airIndex].Clear(domain.StatusPass)
		if p.req.LowFareRequested {
			stat[airIndex].Clear(domain.StatusRebooked)
			stat[airIndex].RebookCode = ""
			stat[airIndex].RebookCabin = domain.CabinUndefined
		}

	case domain.TagDoesNotExist:
		p.restTag = tag
		p.tagFltFailTagN(stat, airIndex)

	default:
		p.tracef("%s: UNKNOWN TAG %q", tvl.ID, tag)
	}
}

// permittedTagP validates the segment as a plain permitted tag.
func (p *pass) permittedTagP(seg *domain.ExceptionSegment, tvl *domain.TravelSegment, stat []domain.SegmentStatus, airIndex int) {
	p.restTag = domain.TagPermitted
	p.bcValidation(seg, tvl, stat, airIndex, tagNoMatch, false, BookingCodeNone)
}

// primeTag handles the four tags conditioned on the prime booking code.
// The segment applies only when the prime code is not offered or available.
func (p *pass) primeTag(tag domain.RestrictionTag, seg *domain.ExceptionSegment, tvl *domain.TravelSegment, stat []domain.SegmentStatus, airIndex int) {
	switch tag {
	case domain.TagPermittedIfPrimeNotOffered:
		if p.isPrimeOffered(tvl, stat, airIndex) {
			p.tagFltNoMatch(stat, airIndex)
			return
		}
		p.bcValidation(seg, tvl, stat, airIndex, tagNoMatch, false, BookingCodeNone)
	case domain.TagPermittedIfPrimeNotAvailable:
		if p.isPrimeAvailable(tvl, stat, airIndex) {
			p.tagFltNoMatch(stat, airIndex)
			return
		}
		p.bcValidation(seg, tvl, stat, airIndex, tagNoMatch, false, BookingCodeNotAvailable)
	case domain.TagRequiredIfPrimeNotOffered:
		if p.isPrimeOffered(tvl, stat, airIndex) {
			p.tagFltNoMatch(stat, airIndex)
			return
		}
		p.bcValidation(seg, tvl, stat, airIndex, tagFail, false, BookingCodeNone)
	case domain.TagRequiredIfPrimeNotAvailable:
		if p.isPrimeAvailable(tvl, stat, airIndex) {
			p.tagFltNoMatch(stat, airIndex)
			return
		}
		p.bcValidation(seg, tvl, stat, airIndex, tagFail, false, BookingCodeNotAvailable)
	}
}

// bcValidation validates the booking codes and tags the segment NOMATCH or
// FAIL on failure. force overrides the failure reason when not BookingCodeNone.
func (p *pass) bcValidation(seg *domain.ExceptionSegment, tvl *domain.TravelSegment, stat []domain.SegmentStatus, airIndex int, mode failMode, rbd2Only bool, force BookingCodeStatus) {
	vStat := p.validateBCNew(seg, tvl, stat, airIndex, rbd2Only)
	if vStat == BookingCodePassed {
		if rbd2Only {
			stat[airIndex].Set(domain.StatusDualRBDPass)
			stat[airIndex].DualRBD1 = seg.BookingCode1
		}
		p.tracef("%s: PASS", tvl.ID)
		return
	}

	reason := vStat
	if force != BookingCodeNone {
		reason = force
	}
	switch mode {
	case tagNoMatch:
		p.tagFltNoMatchNew(stat, airIndex, reason)
		p.tracef("%s: NOMATCH %s", tvl.ID, reason)
	case tagFail:
		p.tagFltFail(stat, airIndex, reason)
		p.tracef("%s: FAIL %s", tvl.ID, reason)
	}
}

// setFlagForBcvStatus records the failure reason on the segment status.
func setFlagForBcvStatus(st *domain.SegmentStatus, vs BookingCodeStatus) {
	switch vs {
	case BookingCodeNotOffered:
		st.Set(domain.StatusFailOffer)
	case BookingCodeNotAvailable:
		st.Set(domain.StatusFailAvailability)
	case BookingCodeCabinNotMatch:
		st.Set(domain.StatusFailCabin)
	}
}

// tagFltNoMatch marks the segment as not matched by the item.
func (p *pass) tagFltNoMatch(stat []domain.SegmentStatus, airIndex int) {
	if airIndex >= len(stat) {
		return
	}
	stat[airIndex].Set(domain.StatusNoMatch)
	stat[airIndex].Clear(domain.StatusNotYetProcessed)
	p.fltResult[airIndex] = FltResult{Seq: FltNoMatch, Seg: FltNoMatch}
}

// tagFltNoMatchNew is tagFltNoMatch with a failure reason.
func (p *pass) tagFltNoMatchNew(stat []domain.SegmentStatus, airIndex int, vs BookingCodeStatus) {
	if airIndex >= len(stat) {
		return
	}
	p.tagFltNoMatch(stat, airIndex)
	setFlagForBcvStatus(&stat[airIndex], vs)
}

// tagFltFail marks the segment as failed. The sequence that matched keeps
// its claim on the travel segment.
func (p *pass) tagFltFail(stat []domain.SegmentStatus, airIndex int, vs BookingCodeStatus) {
	if airIndex >= len(stat) {
		return
	}
	stat[airIndex].Set(domain.StatusFail)
	stat[airIndex].Clear(domain.StatusNoMatch | domain.StatusNotYetProcessed)
	setFlagForBcvStatus(&stat[airIndex], vs)
	p.fltResult[airIndex].Seg = FltFailed
}

// tagFltFailTagN fails the segment for a booking code that does not exist
// and flags the fare.
func (p *pass) tagFltFailTagN(stat []domain.SegmentStatus, airIndex int) {
	p.fare.Flags |= domain.FareFailTagN
	if airIndex >= len(stat) {
		return
	}
	stat[airIndex].Set(domain.StatusFailTagN)
	p.tagFltFail(stat, airIndex, BookingCodeNotOffered)
}
