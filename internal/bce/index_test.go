package bce

import (
	"testing"

	"github.com/opensource-finance/bce/internal/domain"
)

func viaSeq(seqNo int, carriers ...string) domain.ExceptionSequence {
	seq := domain.ExceptionSequence{ItemNo: 1, SeqNo: seqNo}
	for i, c := range carriers {
		seq.Segments = append(seq.Segments, domain.ExceptionSegment{
			SegNo:          i + 1,
			ViaCarrier:     c,
			RestrictionTag: domain.TagPermitted,
			BookingCode1:   "Y",
		})
	}
	return seq
}

func seqNos(seqs []*domain.ExceptionSequence) []int {
	out := make([]int, len(seqs))
	for i, s := range seqs {
		out[i] = s.SeqNo
	}
	return out
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestIndexLookup(t *testing.T) {
	idx := NewIndex([]domain.ExceptionSequence{
		viaSeq(100, "AA"),
		viaSeq(200, "BA"),
		viaSeq(300, ""),
		viaSeq(400, "YY"),
		viaSeq(500, "BA", "AA"),
		viaSeq(600, domain.CarrierXDollar),
		viaSeq(700),
	})

	tests := []struct {
		name     string
		carriers []string
		industry bool
		want     []int
	}{
		{"one carrier", []string{"AA"}, false, []int{100, 300, 500, 600, 700}},
		{"two carriers", []string{"BA", "AA"}, false, []int{100, 200, 300, 500, 600, 700}},
		{"industry", []string{"LH"}, true, []int{300, 400, 600, 700}},
		{"unknown", []string{"LH"}, false, []int{300, 600, 700}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := seqNos(idx.Lookup(tt.carriers, tt.industry))
			if !equalInts(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}

	if idx.Len() != 7 {
		t.Errorf("expected 7 sequences, got %d", idx.Len())
	}
}

func TestIndexDoesNotAliasCallerSlice(t *testing.T) {
	idx := NewIndex([]domain.ExceptionSequence{viaSeq(1, "")})
	carriers := make([]string, 1, 4)
	carriers[0] = "AA"

	_ = idx.Lookup(carriers, true)
	if spare := carriers[:2][1]; spare != "" {
		t.Errorf("lookup wrote %q past the caller's slice", spare)
	}
}
