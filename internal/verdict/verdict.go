// Package verdict turns the status vectors a validation leaves on a fare
// into the persisted Verdict.
package verdict

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/opensource-finance/bce/internal/domain"
)

// Version is stamped on every verdict.
const Version = "bce-1.0"

// Processor aggregates segment statuses into a verdict.
type Processor struct {
	// IncludeRule2 adds the rule-2 flags to each segment verdict.
	IncludeRule2 bool
}

// NewProcessor creates a processor with default settings.
func NewProcessor() *Processor {
	return &Processor{IncludeRule2: true}
}

// DecisionInput contains all data needed to build a verdict.
type DecisionInput struct {
	TenantID        string
	TraceID         string
	Input           *domain.ValidationInput
	Applied         bool
	Diagnostics     []string
	SequencesLoaded int
	LoadTime        time.Duration
	ValidateTime    time.Duration
	StartTime       time.Time
}

// Process reads the fare (or fare usage) status vector and produces the
// verdict. The overall status is FAIL when any segment failed, NOMATCH when
// any segment was not matched or the item did not apply, else PASS.
// Segments left unprocessed do not count.
func (p *Processor) Process(ctx context.Context, in *DecisionInput) *domain.Verdict {
	fare := in.Input.Fare

	v := &domain.Verdict{
		ID:                uuid.New().String(),
		TenantID:          in.TenantID,
		RequestID:         in.Input.RequestID,
		ItemNo:            in.Input.ItemNo,
		FareID:            fare.ID,
		Applied:           in.Applied,
		Timestamp:         time.Now().UTC(),
		ChangeBookingCode: fare.ChangeBookingCode,
		Diagnostics:       in.Diagnostics,
	}
	if fare.Flags != 0 {
		v.FareFlags = strings.Split(fare.Flags.String(), "|")
	}

	statuses := fare.SegmentStatus
	if in.Input.FareUsage != nil {
		statuses = in.Input.FareUsage.SegmentStatus
	}

	var segs []*domain.TravelSegment
	if fare.Market != nil {
		segs = fare.Market.Segments
	}

	counts := map[string]int{}
	for i, seg := range segs {
		sv := domain.SegmentVerdict{
			SegmentID:   seg.ID,
			BookingCode: seg.BookingCode,
			Status:      "NYP",
		}
		if i < len(statuses) {
			st := statuses[i]
			sv.Flags = st.Status.Names()
			sv.RebookCode = st.RebookCode
			sv.RebookCabin = st.RebookCabin
			sv.Status = domain.SegmentStatusName(st.Status)
		}
		if p.IncludeRule2 && i < len(fare.SegmentStatusRule2) {
			if r2 := fare.SegmentStatusRule2[i].Status; r2.Terminal() != 0 {
				sv.Rule2Flags = r2.Names()
			}
		}
		if seg.IsAir() {
			counts[sv.Status]++
		}
		v.Segments = append(v.Segments, sv)
	}

	switch {
	case !in.Applied:
		v.Status = domain.VerdictNoMatch
	case counts[domain.VerdictFail] > 0:
		v.Status = domain.VerdictFail
	case counts[domain.VerdictNoMatch] > 0:
		v.Status = domain.VerdictNoMatch
	case counts[domain.VerdictPass] > 0:
		v.Status = domain.VerdictPass
	default:
		v.Status = domain.VerdictNoMatch
	}

	total := time.Since(in.StartTime)
	if in.StartTime.IsZero() {
		total = in.LoadTime + in.ValidateTime
	}
	v.Metadata = domain.VerdictMetadata{
		TraceID:          in.TraceID,
		LoadMs:           in.LoadTime.Milliseconds(),
		ValidateMs:       in.ValidateTime.Milliseconds(),
		TotalMs:          total.Milliseconds(),
		SequencesLoaded:  in.SequencesLoaded,
		ValidatorVersion: Version,
	}

	return v
}

// Failed reports whether the verdict failed any segment.
func Failed(v *domain.Verdict) bool {
	return v.Status == domain.VerdictFail
}

// Reasons lists one line per segment that did not pass.
func Reasons(v *domain.Verdict) []string {
	var reasons []string
	for _, s := range v.Segments {
		if s.Status == domain.VerdictFail || s.Status == domain.VerdictNoMatch {
			reasons = append(reasons, fmt.Sprintf("%s %s: %v", s.SegmentID, s.Status, s.Flags))
		}
	}
	return reasons
}
