package bce

import (
	"github.com/opensource-finance/bce/internal/domain"
)

// getAvailability selects the class of service inventory for a travel
// segment under the current status scope. A nil result means the fare
// market inventory applies.
func (p *pass) getAvailability(tvl *domain.TravelSegment, st *domain.SegmentStatus, airIndex int) []domain.ClassOfService {
	if od := p.req.Itinerary.ODMarketFor(tvl.ID); od != nil && (od.FlowCarrierJourney || od.JourneyByMarriage) {
		if cos, ok := od.ClassOfService[tvl.ID]; ok {
			return cos
		}
	}

	switch {
	case p.statusType.IsRule2Family():
		if tvl.CarrierPref == nil || tvl.CarrierPref.ApplyRule2Status {
			return nil
		}
		if tvl.FlowJourneyCarrier || tvl.LocalJourneyCarrier {
			return nil
		}
		st.Set(domain.StatusAvailBreak)
		return tvl.ClassOfService

	case p.statusType.IsRule1Family():
		if p.flowJourneyCarrier(tvl) && !p.fm.FlowMarket {
			return p.flowMarketAvail(tvl, airIndex)
		}
		if p.localJourneyCarrier(tvl) {
			st.Set(domain.StatusAvailBreak)
			return tvl.ClassOfService
		}

	case p.statusType.IsJourneyFamily():
		if p.localJourneyCarrier(tvl) {
			if cos := p.flowMarketAvail(tvl, airIndex); cos != nil {
				return cos
			}
			st.Set(domain.StatusAvailBreak)
			return tvl.ClassOfService
		}
	}
	return nil
}

// journeyActivated reports whether journey logic is switched on for the
// transaction type of the request.
func (p *pass) journeyActivated() bool {
	switch p.req.TrxType {
	case domain.TrxPricing:
		if !p.req.JourneyActivatedForPricing {
			return false
		}
	case domain.TrxMIP:
		if !p.req.JourneyActivatedForShopping {
			return false
		}
	}
	return p.req.ApplyJourneyLogic
}

// flowJourneyCarrier reports whether flow journey availability applies to
// the travel segment.
func (p *pass) flowJourneyCarrier(tvl *domain.TravelSegment) bool {
	return p.journeyActivated() && tvl.IsAir() && tvl.FlowJourneyCarrier
}

// localJourneyCarrier reports whether local journey availability applies
// to the travel segment.
func (p *pass) localJourneyCarrier(tvl *domain.TravelSegment) bool {
	return p.journeyActivated() && p.partOfLocalJourney && tvl.IsAir() && tvl.LocalJourneyCarrier
}

// flowMarketAvail returns the journey availability of the travel segment:
// the itinerary flow availability for pricing, the through availability
// for shopping.
func (p *pass) flowMarketAvail(tvl *domain.TravelSegment, airIndex int) []domain.ClassOfService {
	switch p.req.TrxType {
	case domain.TrxPricing:
		return p.req.Itinerary.FlowAvailability[tvl.ID]
	case domain.TrxMIP:
		return p.shoppingAvail(tvl, airIndex)
	}
	return nil
}

func (p *pass) shoppingAvail(tvl *domain.TravelSegment, airIndex int) []domain.ClassOfService {
	cos := p.marketClassOfService(airIndex)
	if !p.flowJourneyCarrier(tvl) && !p.localJourneyCarrier(tvl) {
		return cos
	}
	if p.partOfJourney(tvl) {
		cos = p.req.Itinerary.MaxThruAvailability[tvl.ID]
	}
	if len(cos) == 0 {
		return nil
	}
	return cos
}

// partOfJourney reports whether the travel segment belongs to a journey
// market of the itinerary.
func (p *pass) partOfJourney(tvl *domain.TravelSegment) bool {
	return p.req.Itinerary.ODMarketFor(tvl.ID) != nil
}

// tryRule2 decides whether a second pass with rule 2 availability is
// worthwhile: a solo carrier failed rule 1 after matching a sequence while
// every other carrier passed.
func (p *pass) tryRule2() bool {
	if !p.req.LowFareRequested || p.req.TrxType != domain.TrxPricing || !p.req.SoloActive {
		return false
	}
	if len(p.fm.Segments) < 2 {
		return false
	}

	stat := p.fare.SegmentStatus
	allPassed := true
	matched := false
	otherFailed := false
	soloPresent := false
	for i, tvl := range p.fm.Segments {
		if !tvl.IsAir() {
			continue
		}
		if tvl.CarrierPref == nil {
			return false
		}
		passed := i < len(stat) && stat[i].Has(domain.StatusPass)
		if !tvl.CarrierPref.ApplyRule2Status && !tvl.FlowJourneyCarrier && !tvl.LocalJourneyCarrier {
			soloPresent = true
			if !passed {
				allPassed = false
			}
			if p.firstMatching[i] != FltNoMatch {
				matched = true
			}
			continue
		}
		if !passed {
			otherFailed = true
		}
	}
	if !soloPresent {
		return false
	}
	return !allPassed && !otherFailed && matched
}

// tryLocalWithFlowAvail reports whether a journey pass using flow
// availability for local journey carriers applies. Pricing only.
func (p *pass) tryLocalWithFlowAvail() bool {
	if p.req.TrxType != domain.TrxPricing {
		return false
	}
	return p.journeyActivated() && p.partOfLocalJourney
}
