package domain

import (
	"time"
)

// Verdict is the persisted outcome of one booking-code validation.
type Verdict struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenantId"`
	RequestID string    `json:"requestId"`
	ItemNo    int       `json:"itemNo"`
	FareID    string    `json:"fareId"`
	Status    string    `json:"status"` // "PASS", "FAIL" or "NOMATCH"
	Applied   bool      `json:"applied"`
	Timestamp time.Time `json:"timestamp"`

	Segments  []SegmentVerdict `json:"segments"`
	FareFlags []string         `json:"fareFlags,omitempty"`
	// ChangeBookingCode is set when an industry fare class was rewritten.
	ChangeBookingCode string `json:"changeBookingCode,omitempty"`

	Diagnostics []string        `json:"diagnostics,omitempty"`
	Metadata    VerdictMetadata `json:"metadata"`
}

// SegmentVerdict is the final status of one travel segment.
type SegmentVerdict struct {
	SegmentID   string    `json:"segmentId"`
	BookingCode string    `json:"bookingCode,omitempty"`
	Flags       []string  `json:"flags"`
	RebookCode  string    `json:"rebookCode,omitempty"`
	RebookCabin CabinType `json:"rebookCabin,omitempty"`
	Status      string    `json:"status"`
	// Rule2Flags are the flags of the rule-2 pass, when it ran.
	Rule2Flags []string `json:"rule2Flags,omitempty"`
}

// VerdictMetadata contains processing information.
type VerdictMetadata struct {
	TraceID          string `json:"traceId"`
	LoadMs           int64  `json:"loadMs"`
	ValidateMs       int64  `json:"validateMs"`
	TotalMs          int64  `json:"totalMs"`
	SequencesLoaded  int    `json:"sequencesLoaded"`
	ValidatorVersion string `json:"validatorVersion"`
}

// Verdict status values.
const (
	VerdictPass    = "PASS"
	VerdictFail    = "FAIL"
	VerdictNoMatch = "NOMATCH"
)

// SegmentStatusName reduces a status bit-set to one verdict status.
func SegmentStatusName(s SegmentStatusFlag) string {
	switch {
	case s.Has(StatusFail):
		return VerdictFail
	case s.Has(StatusPass):
		return VerdictPass
	case s.Has(StatusNoMatch):
		return VerdictNoMatch
	default:
		return "NYP"
	}
}
