// Package bce implements booking-code exception validation: it interprets
// carrier-filed exception sequences against the travel segments of a fare
// and stamps each segment with a pass, fail, no-match or rebook verdict.
package bce

import "fmt"

// Result is the outcome of evaluating one qualifier of an exception segment.
type Result int

const (
	// Pass means the qualifier is satisfied.
	Pass Result = iota
	// NextFlight means the segment does not apply to this travel segment.
	NextFlight
	// NextSequence means the whole sequence does not apply.
	NextSequence
	// FromToPrimary defers the decision to the neighbouring segments.
	FromToPrimary
)

func (r Result) String() string {
	switch r {
	case Pass:
		return "PASS"
	case NextFlight:
		return "NEXT_FLT"
	case NextSequence:
		return "NEXT_SEQUENCE"
	case FromToPrimary:
		return "FROMTO_PRI"
	default:
		return fmt.Sprintf("RESULT(%d)", int(r))
	}
}

// Markers stored in the flight result and match vectors.
const (
	FltNoMatch = -1
	FltFailed  = -2
	FltSkipped = -3
	SegIfTag   = -4
	SecArunk   = -5
)

// AllSequences resets every entry of the flight result vector.
const AllSequences = 0

// FltResult records which sequence and segment matched a travel segment.
type FltResult struct {
	Seq int
	Seg int
}

// BookingCodeStatus is the detailed outcome of a booking-code check.
type BookingCodeStatus int

const (
	BookingCodePassed BookingCodeStatus = iota
	BookingCodeNotOffered
	BookingCodeNotAvailable
	BookingCodeCabinNotMatch
	BookingCodeIsExcluded
	// BookingCodeNone means no status was forced on the caller.
	BookingCodeNone
)

func (s BookingCodeStatus) String() string {
	switch s {
	case BookingCodePassed:
		return "PASSED"
	case BookingCodeNotOffered:
		return "NOT_OFFERED"
	case BookingCodeNotAvailable:
		return "NOT_AVAILABLE"
	case BookingCodeCabinNotMatch:
		return "CABIN_NOT_MATCH"
	case BookingCodeIsExcluded:
		return "IS_EXCLUDED"
	default:
		return "NONE"
	}
}

// IsSegmentNoMatched reports whether any entry is unmatched or skipped.
func IsSegmentNoMatched(match []int) bool {
	for _, m := range match {
		if m == FltNoMatch || m == FltSkipped {
			return true
		}
	}
	return false
}

// IsAllFlightsSkipped reports whether every non-arunk entry was skipped.
func IsAllFlightsSkipped(match []int) bool {
	seen := false
	for _, m := range match {
		if m == SecArunk {
			continue
		}
		if m != FltSkipped {
			return false
		}
		seen = true
	}
	return seen
}

// IsAllFlightsMatched reports whether every non-arunk entry matched a
// segment. It is false when no air entry exists.
func IsAllFlightsMatched(match []int) bool {
	seen := false
	for _, m := range match {
		if m == SecArunk {
			continue
		}
		if m < 0 {
			return false
		}
		seen = true
	}
	return seen
}
