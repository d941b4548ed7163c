package bce

import (
	"strings"

	"github.com/opensource-finance/bce/internal/domain"
)

// analyzeSequences picks the first unconditional sequence that decides the
// booking code an industry fare basis is rewritten with.
func (p *pass) analyzeSequences(seqs []domain.ExceptionSequence) {
	for i := range seqs {
		seq := &seqs[i]
		for j := range seq.Segments {
			seg := &seq.Segments[j]
			if p.validateCarrier(seq, seg, p.conv1, p.conv1Index, p.conv1Index) != Pass ||
				!p.validateFCType(seg) || !p.analyzeFMLoc(seq, seg) {
				break
			}
			if p.analyzeSeg(seg) {
				p.tracef("SEQ %d: FARE BASIS BOOKING CODE %q", seq.SeqNo, p.fare.ChangeBookingCode)
				return
			}
		}
	}
}

// hasConditionalData reports whether a segment carries any qualifier that
// depends on the travel segment.
func hasConditionalData(seg *domain.ExceptionSegment) bool {
	return seg.FltRangeAppl != "" || seg.Flight1 > 0 ||
		seg.Equipment != "" || seg.PortionOfTravel != "" ||
		seg.PosTSI > 0 || !seg.PosLoc.IsEmpty() || seg.PosLoc.Type != "" ||
		seg.SoldInOutInd != "" ||
		seg.TvlEffYear > 0 || seg.TvlEffMonth > 0 || seg.TvlEffDay > 0 ||
		seg.TvlDiscYear > 0 || seg.TvlDiscMonth > 0 || seg.TvlDiscDay > 0 ||
		seg.DaysOfWeek != "" ||
		timeSet(seg.TvlStartTime) || timeSet(seg.TvlEndTime) ||
		seg.ArbZoneNo != ""
}

// analyzeSeg decides the fare basis booking code from one unconditional
// segment. It returns true once the decision is made.
func (p *pass) analyzeSeg(seg *domain.ExceptionSegment) bool {
	if hasConditionalData(seg) {
		return false
	}
	switch seg.RestrictionTag {
	case domain.TagPermittedIfPrimeNotOffered, domain.TagPermittedIfPrimeNotAvailable,
		domain.TagRequiredIfPrimeNotOffered, domain.TagRequiredIfPrimeNotAvailable,
		domain.TagAdditionalDataApplies, domain.TagDoesNotExist:
		p.bkgYYUpdate = true
		p.fare.ChangeBookingCode = ""
		return true
	case domain.TagPermitted, domain.TagRequired,
		domain.TagRequiredWhenOffered, domain.TagRequiredWhenAvailable:
		if want := p.fare.AllowedChangeBookingCode; want != "" &&
			!strings.Contains(seg.BookingCode1, want) {
			p.fare.Flags |= domain.FareRequestedBasisInvalid
		}
		p.bkgYYUpdate = true
		p.fare.ChangeBookingCode = seg.BookingCode1
		return true
	}
	return false
}

// analyzeFMLoc checks the segment locations against the fare market end
// points.
func (p *pass) analyzeFMLoc(seq *domain.ExceptionSequence, seg *domain.ExceptionSegment) bool {
	if seg.Loc1.IsEmpty() && seg.Loc2.IsEmpty() {
		return true
	}
	orig, dest := p.fm.Origin, p.fm.Destination

	switch seg.DirectionInd {
	case domain.DirectionFromLoc1, domain.DirectionToLoc1, "":
		origInL1 := p.isInLoc(orig, seg.Loc1)
		destInL2 := p.isInLoc(dest, seg.Loc2)
		origInL2 := p.isInLoc(orig, seg.Loc2)
		destInL1 := p.isInLoc(dest, seg.Loc1)
		return (origInL1 && destInL2) || (origInL2 && destInL1)

	case domain.DirectionOriginLoc1, domain.DirectionDestLoc1:
		if p.fare.Directionality == domain.DirectionalityTo {
			orig, dest = dest, orig
		}
		if seq.IfTag != domain.IfTagFareComponent || seg.SegNo != 1 {
			return false
		}
		if seg.DirectionInd == domain.DirectionDestLoc1 {
			orig, dest = dest, orig
		}
		return p.isInLoc(orig, seg.Loc1) && p.isInLoc(dest, seg.Loc2)
	}
	return true
}
