package domain

import (
	"fmt"
	"slices"
	"time"
)

// TrxType is the kind of transaction requesting validation.
type TrxType string

const (
	TrxPricing     TrxType = "PRICING"
	TrxMIP         TrxType = "MIP"
	TrxIS          TrxType = "IS"
	TrxFareDisplay TrxType = "FF"
	TrxExchange    TrxType = "REX"
)

// Billing action codes that keep booked-class checks relaxed for MIP.
const (
	ActionCodeWPNIC = "WPNI.C"
	ActionCodeWFRC  = "WFR.C"
)

// Request carries the transaction options the validator consults.
type Request struct {
	TrxType                     TrxType   `json:"trxType"`
	LowFareRequested            bool      `json:"lowFareRequested,omitempty"`
	LowFareNoAvailability       bool      `json:"lowFareNoAvailability,omitempty"`
	UpSell                      bool      `json:"upSell,omitempty"`
	BillingActionCode           string    `json:"billingActionCode,omitempty"`
	SoloActive                  bool      `json:"soloActive,omitempty"`
	JourneyActivatedForPricing  bool      `json:"journeyActivatedForPricing,omitempty"`
	JourneyActivatedForShopping bool      `json:"journeyActivatedForShopping,omitempty"`
	ApplyJourneyLogic           bool      `json:"applyJourneyLogic,omitempty"`
	NoMatchAvail                bool      `json:"noMatchAvail,omitempty"`
	JumpCabinDisabled           bool      `json:"jumpCabinDisabled,omitempty"`
	WPANoMatch                  bool      `json:"wpaNoMatch,omitempty"`
	InfiniUser                  bool      `json:"infiniUser,omitempty"`
	AxessUser                   bool      `json:"axessUser,omitempty"`
	RexNewItinPhase             bool      `json:"rexNewItinPhase,omitempty"`
	SeatsWithoutIgnoreAvail     int       `json:"seatsWithoutIgnoreAvail,omitempty"`
	ExcludedBookingCodes        []string  `json:"excludedBookingCodes,omitempty"`
	AgentLocation               Location  `json:"agentLocation"`
	TicketDate                  time.Time `json:"ticketDate"`
	Itinerary                   Itinerary `json:"itinerary"`
}

// IsExcluded reports whether the booking code was excluded by the request.
func (r *Request) IsExcluded(code string) bool {
	return code != "" && slices.Contains(r.ExcludedBookingCodes, code)
}

// MIPRelaxedAction reports whether a MIP transaction carries an action code
// other than the two that keep booked-class checks on.
func (r *Request) MIPRelaxedAction() bool {
	return r.TrxType == TrxMIP &&
		r.BillingActionCode != ActionCodeWPNIC && r.BillingActionCode != ActionCodeWFRC
}

// ValidationInput is one validation job: a fare, its transaction and the
// exception item to apply.
type ValidationInput struct {
	RequestID string  `json:"requestId,omitempty"`
	ItemNo    int     `json:"itemNo"`
	Fare      *Fare   `json:"fare"`
	Request   Request `json:"request"`
	// Conv1SegmentID restricts validation to one segment (record 6
	// convention 1).
	Conv1SegmentID     string     `json:"conv1SegmentId,omitempty"`
	FareUsage          *FareUsage `json:"fareUsage,omitempty"`
	Rec1T999Cat25R3    bool       `json:"rec1T999Cat25R3,omitempty"`
	Cat25PrimeSector   bool       `json:"cat25PrimeSector,omitempty"`
	PartOfLocalJourney bool       `json:"partOfLocalJourney,omitempty"`
	SkipFlownCat31     bool       `json:"skipFlownCat31,omitempty"`
	Diagnostic         bool       `json:"diagnostic,omitempty"`
}

// Validate checks structural completeness of the input.
func (in *ValidationInput) Validate() error {
	if in.ItemNo <= 0 {
		return fmt.Errorf("%w: itemNo is required", ErrInvalidInput)
	}
	if in.Fare == nil {
		return fmt.Errorf("%w: fare is required", ErrInvalidInput)
	}
	if in.Fare.Market == nil || len(in.Fare.Market.Segments) == 0 {
		return fmt.Errorf("%w: fare market with segments is required", ErrInvalidInput)
	}
	for i, seg := range in.Fare.Market.Segments {
		if seg == nil {
			return fmt.Errorf("%w: segment %d is null", ErrInvalidInput, i)
		}
		if seg.ID == "" {
			seg.ID = fmt.Sprintf("S%d", i+1)
		}
	}
	if in.Conv1SegmentID != "" && in.Fare.Market.IndexOf(in.Conv1SegmentID) < 0 {
		return fmt.Errorf("%w: conv1 segment %s is not in the fare market", ErrInvalidInput, in.Conv1SegmentID)
	}
	return nil
}
