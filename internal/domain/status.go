package domain

import (
	"fmt"
	"strings"
)

// SegmentStatusFlag is the booking-code status bit-set of one travel segment.
type SegmentStatusFlag uint32

const (
	StatusNotYetProcessed SegmentStatusFlag = 1 << iota
	StatusPass
	StatusFail
	StatusFailTagN
	StatusNoMatch
	StatusRebooked
	StatusFailT999
	StatusFailRec1T999
	StatusFailConv1T999
	StatusFailConv2T999
	StatusFailMixedClass
	StatusFailLocalMarket
	StatusFailPrimeRBDDomestic
	StatusFailPrimeRBDInternational
	StatusFailOffer
	StatusFailAvailability
	StatusFailCabin
	StatusAvailBreak
	StatusDualRBDPass
)

// terminal flags; at most one is set once a segment has been processed.
const terminalFlags = StatusPass | StatusFail | StatusNoMatch

var flagNames = []struct {
	flag SegmentStatusFlag
	name string
}{
	{StatusNotYetProcessed, "NYP"},
	{StatusPass, "PASS"},
	{StatusFail, "FAIL"},
	{StatusFailTagN, "FAIL_TAG_N"},
	{StatusNoMatch, "NOMATCH"},
	{StatusRebooked, "REBOOKED"},
	{StatusFailT999, "FAIL_T999"},
	{StatusFailRec1T999, "FAIL_REC1_T999"},
	{StatusFailConv1T999, "FAIL_CONV1_T999"},
	{StatusFailConv2T999, "FAIL_CONV2_T999"},
	{StatusFailMixedClass, "FAIL_MIXEDCLASS"},
	{StatusFailLocalMarket, "FAIL_LOCALMARKET"},
	{StatusFailPrimeRBDDomestic, "FAIL_PRIME_RBD_DOMESTIC"},
	{StatusFailPrimeRBDInternational, "FAIL_PRIME_RBD_INTERNATIONAL"},
	{StatusFailOffer, "FAIL_OFFER"},
	{StatusFailAvailability, "FAIL_AVAILABILITY"},
	{StatusFailCabin, "FAIL_CABIN"},
	{StatusAvailBreak, "AVAIL_BREAK"},
	{StatusDualRBDPass, "DUAL_RBD_PASS"},
}

// Has reports whether every bit of f is set.
func (s SegmentStatusFlag) Has(f SegmentStatusFlag) bool {
	return s&f == f
}

// Terminal returns the terminal flag currently set, or 0.
func (s SegmentStatusFlag) Terminal() SegmentStatusFlag {
	return s & terminalFlags
}

// Names lists the set flags in declaration order.
func (s SegmentStatusFlag) Names() []string {
	var out []string
	for _, fn := range flagNames {
		if s&fn.flag != 0 {
			out = append(out, fn.name)
		}
	}
	return out
}

func (s SegmentStatusFlag) String() string {
	if s == 0 {
		return "NONE"
	}
	return strings.Join(s.Names(), "|")
}

// SegmentStatus is the mutable booking-code outcome of one travel segment.
type SegmentStatus struct {
	Status      SegmentStatusFlag `json:"status"`
	RebookCode  string            `json:"rebookCode,omitempty"`
	RebookCabin CabinType         `json:"rebookCabin,omitempty"`
	DualRBD1    string            `json:"dualRbd1,omitempty"`
}

// Set turns on the given flags.
func (s *SegmentStatus) Set(f SegmentStatusFlag) { s.Status |= f }

// Clear turns off the given flags.
func (s *SegmentStatus) Clear(f SegmentStatusFlag) { s.Status &^= f }

// SetTo turns the given flags on or off.
func (s *SegmentStatus) SetTo(f SegmentStatusFlag, on bool) {
	if on {
		s.Set(f)
	} else {
		s.Clear(f)
	}
}

// Has reports whether all given flags are set.
func (s SegmentStatus) Has(f SegmentStatusFlag) bool { return s.Status.Has(f) }

// Reset restores the not-yet-processed state.
func (s *SegmentStatus) Reset() {
	*s = SegmentStatus{Status: StatusNotYetProcessed}
}

// NewSegmentStatuses returns n fresh not-yet-processed statuses.
func NewSegmentStatuses(n int) []SegmentStatus {
	out := make([]SegmentStatus, n)
	for i := range out {
		out[i].Reset()
	}
	return out
}

// FareStatusFlag holds fare-level booking-code flags.
type FareStatusFlag uint16

const (
	FareFailTagN FareStatusFlag = 1 << iota
	FareReqLowerCabin
	// FareRequestedBasisInvalid marks a requested fare basis booking code
	// the item does not allow.
	FareRequestedBasisInvalid
)

func (f FareStatusFlag) Has(o FareStatusFlag) bool { return f&o == o }

func (f FareStatusFlag) String() string {
	var parts []string
	if f.Has(FareFailTagN) {
		parts = append(parts, "FAIL_TAG_N")
	}
	if f.Has(FareReqLowerCabin) {
		parts = append(parts, "REQ_LOWER_CABIN")
	}
	if f.Has(FareRequestedBasisInvalid) {
		parts = append(parts, "REQUESTED_FARE_BASIS_INVALID")
	}
	if len(parts) == 0 {
		return "NONE"
	}
	return strings.Join(parts, "|")
}

// StatusScope selects which status vector of a fare is being written.
type StatusScope int

const (
	ScopeRule1 StatusScope = iota
	ScopeRule1AsBooked
	ScopeRule2
	ScopeRule2AsBooked
	ScopeJourney
	ScopeJourneyAsBooked
)

func (s StatusScope) String() string {
	switch s {
	case ScopeRule1:
		return "RULE1"
	case ScopeRule1AsBooked:
		return "RULE1_AS_BOOKED"
	case ScopeRule2:
		return "RULE2"
	case ScopeRule2AsBooked:
		return "RULE2_AS_BOOKED"
	case ScopeJourney:
		return "JOURNEY"
	case ScopeJourneyAsBooked:
		return "JOURNEY_AS_BOOKED"
	default:
		return fmt.Sprintf("SCOPE(%d)", int(s))
	}
}

// IsAsBooked reports whether s is one of the shadow as-booked scopes.
func (s StatusScope) IsAsBooked() bool {
	return s == ScopeRule1AsBooked || s == ScopeRule2AsBooked || s == ScopeJourneyAsBooked
}

// IsRule2Family reports whether s belongs to the rule-2 pass.
func (s StatusScope) IsRule2Family() bool {
	return s == ScopeRule2 || s == ScopeRule2AsBooked
}

// IsRule1Family reports whether s belongs to the rule-1 pass.
func (s StatusScope) IsRule1Family() bool {
	return s == ScopeRule1 || s == ScopeRule1AsBooked
}

// IsJourneyFamily reports whether s belongs to the journey pass.
func (s StatusScope) IsJourneyFamily() bool {
	return s == ScopeJourney || s == ScopeJourneyAsBooked
}
