package bce

import (
	"slices"

	"github.com/opensource-finance/bce/internal/domain"
)

// validateAsBooked re-runs the sequences in the as-booked shadow scope when
// the first pass rebooked a segment. Segments that also pass as booked
// take the as-booked result.
func (p *pass) validateAsBooked(seqs []domain.ExceptionSequence) {
	if !p.doAsBooked() {
		return
	}
	if !p.statusToAsBooked() {
		return
	}

	saved := slices.Clone(p.firstMatching)
	n := len(p.fm.Segments)
	p.resetFltResult(AllSequences, n)
	p.resetAsBooked()
	p.tracef("AS BOOKED: %s", p.statusType)
	p.validateSequence(seqs)
	p.statusFromAsBooked()
	p.adjustStatus()

	if p.fare.Flags.Has(domain.FareFailTagN) {
		stat := p.segStatusVec()
		for i := range stat {
			if stat[i].Has(domain.StatusDualRBDPass) {
				p.fare.Flags &^= domain.FareFailTagN
				break
			}
		}
		if !p.fare.Flags.Has(domain.FareFailTagN) {
			for i := range stat {
				stat[i].Clear(domain.StatusFailTagN)
			}
		}
	}
	p.firstMatching = saved
}

// doAsBooked reports whether an as-booked pass is needed: a low fare
// request rebooked at least one segment without moving it to a higher cabin.
func (p *pass) doAsBooked() bool {
	if !p.req.LowFareRequested {
		return false
	}
	if p.checkBookedClassAvail(nil, false) {
		return false
	}
	if p.allSegsStatusQF(p.conv1) {
		return false
	}

	stat := p.segStatusVec()
	if len(stat) != len(p.fm.Segments) {
		return false
	}
	for i, tvl := range p.fm.Segments {
		if !p.asBookedCandidate(tvl) {
			continue
		}
		st := stat[i]
		if !st.Has(domain.StatusPass) || !st.Has(domain.StatusRebooked) || st.RebookCode == "" {
			continue
		}
		if st.RebookCabin.Higher(tvl.BookedCabin) {
			return false
		}
		return true
	}
	return false
}

// asBookedCandidate filters the travel segments the as-booked pass looks at.
func (p *pass) asBookedCandidate(tvl *domain.TravelSegment) bool {
	if !tvl.IsAir() {
		return false
	}
	if p.conv1 != nil && tvl != p.conv1 {
		return false
	}
	return !(p.in.Cat25PrimeSector && p.fm.IsPrimarySector(tvl))
}

func (p *pass) resetAsBooked() {
	n := len(p.fm.Segments)
	if len(p.asBooked) != n {
		p.asBooked = make([]domain.SegmentStatus, n)
	}
	for i := range p.asBooked {
		p.asBooked[i] = domain.SegmentStatus{}
	}
}

// adjustStatus replaces rebooked results with the as-booked ones wherever
// the booked code passed on its own.
func (p *pass) adjustStatus() {
	stat := p.segStatusVec()
	n := len(p.fm.Segments)
	if len(stat) != n || len(p.asBooked) != n {
		return
	}
	for i, tvl := range p.fm.Segments {
		if !p.asBookedCandidate(tvl) {
			continue
		}
		st := stat[i]
		if !st.Has(domain.StatusPass) || !st.Has(domain.StatusRebooked) || st.RebookCode == "" {
			continue
		}
		ab := p.asBooked[i]
		if !ab.Has(domain.StatusPass) || ab.Has(domain.StatusRebooked) || ab.RebookCode != "" {
			continue
		}
		if st.Has(domain.StatusAvailBreak) {
			ab.Set(domain.StatusAvailBreak)
		}
		stat[i] = ab
		p.tracef("%s: AS BOOKED %s", tvl.ID, ab.Status)
	}
}
