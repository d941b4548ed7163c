package bce

import (
	"github.com/opensource-finance/bce/internal/domain"
)

// Index groups the sequences of an item by the carriers their segments
// name, so a fare only walks sequences that can apply to it.
type Index struct {
	seqs      []domain.ExceptionSequence
	byCarrier map[string][]int
	open      []int
}

// NewIndex builds an index over seqs. The slice must not be modified while
// the index is in use.
func NewIndex(seqs []domain.ExceptionSequence) *Index {
	idx := &Index{
		seqs:      seqs,
		byCarrier: make(map[string][]int),
	}
	for i := range seqs {
		carriers, open := sequenceCarriers(&seqs[i])
		if open {
			idx.open = append(idx.open, i)
			continue
		}
		for _, c := range carriers {
			idx.byCarrier[c] = append(idx.byCarrier[c], i)
		}
	}
	return idx
}

// sequenceCarriers lists the carriers a sequence is restricted to. open is
// true when some segment accepts any carrier.
func sequenceCarriers(seq *domain.ExceptionSequence) (carriers []string, open bool) {
	seen := make(map[string]bool)
	for i := range seq.Segments {
		via := seq.Segments[i].ViaCarrier
		switch via {
		case "", domain.CarrierDollarDollar, domain.CarrierAny, domain.CarrierXDollar:
			return nil, true
		}
		if !seen[via] {
			seen[via] = true
			carriers = append(carriers, via)
		}
	}
	return carriers, len(seq.Segments) == 0
}

// Lookup returns the sequences that may apply to the given carriers, in
// filing order. Industry fares also see sequences filed for YY.
func (idx *Index) Lookup(carriers []string, industry bool) []*domain.ExceptionSequence {
	hit := make(map[int]bool, len(idx.open))
	for _, i := range idx.open {
		hit[i] = true
	}
	mark := func(c string) {
		for _, i := range idx.byCarrier[c] {
			hit[i] = true
		}
	}
	for _, c := range carriers {
		mark(c)
	}
	if industry {
		mark(domain.CarrierIndustry)
	}

	out := make([]*domain.ExceptionSequence, 0, len(hit))
	for i := range idx.seqs {
		if hit[i] {
			out = append(out, &idx.seqs[i])
		}
	}
	return out
}

// Len returns the number of indexed sequences.
func (idx *Index) Len() int { return len(idx.seqs) }
