package bce

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/opensource-finance/bce/internal/domain"
)

// Config holds the flags a Validator is constructed with. They do not change
// for the life of the validator.
type Config struct {
	// PartOfLocalJourney enables the local journey availability paths.
	PartOfLocalJourney bool
	// SkipFlownCat31 skips re-validation of flown segments when an exchange
	// prices its new itinerary.
	SkipFlownCat31 bool
	// UseExceptionIndex prunes sequences by carrier before matching.
	UseExceptionIndex bool
}

// Option configures a Validator.
type Option func(*Validator)

// WithCabinLookup sets the booking code to cabin resolver.
func WithCabinLookup(c domain.CabinLookup) Option {
	return func(v *Validator) { v.cabins = c }
}

// WithZoneLookup sets the resolver used for zone location qualifiers.
func WithZoneLookup(z domain.ZoneLookup) Option {
	return func(v *Validator) { v.zones = z }
}

// WithTSIMatcher sets the travel segment indicator matcher.
func WithTSIMatcher(m domain.TSIMatcher) Option {
	return func(v *Validator) { v.tsi = m }
}

// WithClock overrides the clock used when a request has no ticketing date.
func WithClock(now func() time.Time) Option {
	return func(v *Validator) { v.now = now }
}

// Validator applies booking code exception sequences to fares.
// A Validator keeps no per-fare state and may be shared between goroutines;
// each call to Validate works on its own pass.
type Validator struct {
	cfg    Config
	cabins domain.CabinLookup
	zones  domain.ZoneLookup
	tsi    domain.TSIMatcher
	now    func() time.Time
}

// New creates a validator.
func New(cfg Config, opts ...Option) *Validator {
	v := &Validator{
		cfg: cfg,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Outcome summarises one Validate call. Per-segment results are written to
// the fare (or its fare usage) status vectors.
type Outcome struct {
	// Applied is false when the item does not apply to the fare at all.
	Applied        bool
	SequencesTried int
	Diagnostics    []string
}

// Validate runs the exception sequences of one item against the fare in the
// input. The fare's status vectors are mutated in place; callers must not
// read them concurrently.
func (v *Validator) Validate(ctx context.Context, in *domain.ValidationInput, seqs []domain.ExceptionSequence) (*Outcome, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	p := v.newPass(ctx, in)
	applied := p.validate(seqs)

	out := &Outcome{
		Applied:        applied,
		SequencesTried: p.tried,
	}
	if p.trace != nil {
		out.Diagnostics = p.trace.Lines()
	}
	return out, nil
}

// pass is the mutable state of one validation of one fare market.
type pass struct {
	v   *Validator
	ctx context.Context

	in   *domain.ValidationInput
	req  *domain.Request
	fare *domain.Fare
	fm   *domain.FareMarket
	fu   *domain.FareUsage

	conv1      *domain.TravelSegment
	conv1Index int

	partOfLocalJourney bool
	skipFlownCat31     bool

	fltResult     []FltResult
	firstMatching []int
	statusType    domain.StatusScope
	asBooked      []domain.SegmentStatus

	// restTag is the restriction tag last honoured by processRestrictionTag.
	restTag     domain.RestrictionTag
	bkgYYUpdate bool

	tried int
	trace *Trace
}

func (v *Validator) newPass(ctx context.Context, in *domain.ValidationInput) *pass {
	fm := in.Fare.Market
	fm.Normalize()
	in.Fare.PrepareStatus()

	p := &pass{
		v:                  v,
		ctx:                ctx,
		in:                 in,
		req:                &in.Request,
		fare:               in.Fare,
		fm:                 fm,
		fu:                 in.FareUsage,
		conv1Index:         -1,
		partOfLocalJourney: v.cfg.PartOfLocalJourney || in.PartOfLocalJourney,
		skipFlownCat31:     v.cfg.SkipFlownCat31 || in.SkipFlownCat31,
		statusType:         domain.ScopeRule1,
	}
	if p.fu != nil && len(p.fu.SegmentStatus) != len(fm.Segments) {
		p.fu.SegmentStatus = domain.NewSegmentStatuses(len(fm.Segments))
	}
	if in.Conv1SegmentID != "" {
		p.conv1Index = fm.IndexOf(in.Conv1SegmentID)
		p.conv1 = fm.Segments[p.conv1Index]
	}
	if in.Diagnostic {
		p.trace = &Trace{}
	}
	return p
}

// validate is the entry point of a pass. It returns false when the item
// does not apply to the fare.
func (p *pass) validate(seqs []domain.ExceptionSequence) bool {
	if len(seqs) == 0 {
		p.tracef("ITEM %d: NO SEQUENCES", p.in.ItemNo)
		return false
	}

	// The table type of the first sequence applies to the whole item.
	switch seqs[0].TableType {
	case domain.FareConstructed:
		if !p.fare.Constructed {
			p.tracef("ITEM %d: CONSTRUCTED ONLY", p.in.ItemNo)
			return false
		}
	case domain.FareSpecified:
		if p.fare.Constructed {
			p.tracef("ITEM %d: SPECIFIED ONLY", p.in.ItemNo)
			return false
		}
	}

	n := len(p.fm.Segments)
	p.resetFltResult(AllSequences, n)
	p.resetFirstMatchingSeqs()
	p.statusType = domain.ScopeRule1
	p.validateSequence(seqs)
	p.validateAsBooked(seqs)

	if p.tryRule2() {
		p.resetFltResult(AllSequences, n)
		p.statusType = domain.ScopeRule2
		saved := slices.Clone(p.firstMatching)
		p.validateSequence(seqs)
		p.firstMatching = saved
		p.validateAsBooked(seqs)
	}

	if p.tryLocalWithFlowAvail() {
		p.resetFltResult(AllSequences, n)
		p.statusType = domain.ScopeJourney
		saved := slices.Clone(p.firstMatching)
		p.validateSequence(seqs)
		p.firstMatching = saved
		p.validateAsBooked(seqs)
	}
	return true
}

// validateSequence walks the sequences in filing order until one of them
// settles every travel segment.
func (p *pass) validateSequence(seqs []domain.ExceptionSequence) {
	if p.conv1 != nil && p.changeFareBasisEligible() {
		p.analyzeSequences(seqs)
	}

	candidates := p.candidates(seqs)
	ticketDate := p.req.TicketDate
	if ticketDate.IsZero() {
		ticketDate = p.v.now()
	}

	for _, seq := range candidates {
		p.tried++
		if !seq.ExpireDate.IsZero() && ticketDate.After(seq.ExpireDate) {
			p.tracef("SEQ %d: EXPIRED", seq.SeqNo)
			continue
		}
		if p.validateSingleSequence(seq) {
			break
		}
	}
}

// candidates returns the sequences to try, pruned by carrier when the
// exception index is enabled.
func (p *pass) candidates(seqs []domain.ExceptionSequence) []*domain.ExceptionSequence {
	if p.v.cfg.UseExceptionIndex {
		return NewIndex(seqs).Lookup(p.lookupCarriers(), p.fare.Industry)
	}
	out := make([]*domain.ExceptionSequence, len(seqs))
	for i := range seqs {
		out[i] = &seqs[i]
	}
	return out
}

// lookupCarriers lists the carriers a sequence may name to be applicable.
func (p *pass) lookupCarriers() []string {
	carriers := []string{domain.CarrierDollarDollar}
	if p.conv1 != nil {
		carriers = append(carriers, p.fare.Carrier)
		if p.fare.Industry {
			carriers = append(carriers, domain.CarrierIndustry)
		}
		return carriers
	}
	carriers = append(carriers, p.fare.Carrier)
	for _, seg := range p.fm.Segments {
		if seg.IsAir() && seg.Carrier != "" {
			carriers = append(carriers, seg.Carrier)
		}
	}
	return carriers
}

// changeFareBasisEligible reports whether an industry fare may have the
// first character of its fare basis rewritten by the item.
func (p *pass) changeFareBasisEligible() bool {
	if p.bkgYYUpdate || p.fare.ChangeBookingCode != "" {
		return false
	}
	if !p.fare.Industry || !p.fare.ChangeFareClass {
		return false
	}
	if p.fm.GoverningCarrier != p.conv1.Carrier {
		return false
	}
	basis := p.fare.FareBasis
	if basis == "" {
		basis = p.fare.FareClass
	}
	n := min(len(basis), len(p.fare.FareClass))
	if n > 1 && basis[1] == '/' {
		n = 1
	}
	return n > 1
}

// validateSingleSequence applies one sequence. It returns true once every
// relevant travel segment already has a result.
func (p *pass) validateSingleSequence(seq *domain.ExceptionSequence) bool {
	switch seq.ConstructSpecified {
	case domain.FareConstructed:
		if !p.fare.Constructed {
			return false
		}
	case domain.FareSpecified:
		if p.fare.Constructed {
			return false
		}
	}
	if len(seq.Segments) == 0 {
		return false
	}

	if p.conv1 == nil {
		if p.allFltsDone(-1) {
			return true
		}
		if !dualRBDFilingComplete(seq) {
			p.tracef("SEQ %d: INCOMPLETE DUAL RBD FILING", seq.SeqNo)
			return false
		}
		p.validateSegment(seq, -1)
		return false
	}

	if p.allFltsDone(p.conv1Index) {
		return true
	}
	p.validateSegment(seq, p.conv1Index)
	return false
}

// validateSegment matches every exception segment of seq against the travel
// segments and applies the booking codes of the matches.
func (p *pass) validateSegment(seq *domain.ExceptionSequence, iFlt int) {
	n := len(p.fm.Segments)
	segs := seq.Segments
	multi := len(segs) > 1
	blankIf := seq.IfTag == ""
	isIfTag := seq.IfTag == domain.IfTagFareComponent || seq.IfTag == domain.IfTagAnyTravelSeg

	segMatch := filled(len(segs), FltNoMatch)
	fltMatch := filled(n, FltNoMatch)
	saved := slices.Clone(p.segStatusVec())

	ifPassed := false
	ifTagFirst := false
	for segIdx := range segs {
		seg := &segs[segIdx]
		ifTagFirst = segIdx == 0 && isIfTag
		if ifTagFirst {
			segMatch[segIdx] = SegIfTag
		}

		segPassed := false
		if blankIf {
			ifPassed = true
		} else if segIdx > 0 && !ifPassed {
			p.tracef("SEQ %d: IF SEGMENT DID NOT PASS", seq.SeqNo)
			p.resetFltResult(seq.SeqNo, n)
			return
		}

		for i := range fltMatch {
			if p.fltResult[i].Seg != FltNoMatch && fltMatch[i] != SecArunk {
				fltMatch[i] = p.fltResult[i].Seg
			}
		}

		for fltIndex, tvl := range p.fm.Segments {
			scoped := blankIf || segIdx > 0
			if iFlt != -1 && scoped && fltIndex != iFlt {
				continue
			}
			if !tvl.IsAir() {
				fltMatch[fltIndex] = SecArunk
				continue
			}
			if p.in.Cat25PrimeSector && p.fm.IsPrimarySector(tvl) {
				continue
			}
			if p.statusType != domain.ScopeRule1 && scoped {
				first := p.firstMatching[fltIndex]
				if first == FltNoMatch {
					continue
				}
				if first != 0 && first != seq.SeqNo {
					continue
				}
				p.firstMatching[fltIndex] = 0
			}
			if p.fltResult[fltIndex].Seq != FltNoMatch && p.fltResult[fltIndex].Seg != FltNoMatch {
				continue
			}
			if seq.PrimeInd == domain.PrimeIndicator && tvl.Carrier == p.fare.Carrier {
				continue
			}

			switch p.matchQualifiers(seq, seg, fltIndex, iFlt) {
			case NextSequence:
				p.tracef("SEQ %d SEG %d: NEXT SEQUENCE ON %s", seq.SeqNo, seg.SegNo, tvl.ID)
				p.resetFltResult(seq.SeqNo, n)
				return
			case NextFlight:
				continue
			}

			segPassed = true
			if segIdx == 0 {
				ifPassed = true
			}
			if !scoped {
				continue
			}

			p.fltResult[fltIndex] = FltResult{Seq: seq.SeqNo, Seg: seg.SegNo}
			p.tracef("SEQ %d SEG %d: MATCHED %s", seq.SeqNo, seg.SegNo, tvl.ID)
			p.applyBookingCodeForSingleFlight(seq, tvl, fltIndex, iFlt)

			st := p.segStatusVec()[fltIndex]
			if st.Has(domain.StatusNoMatch) && !st.Has(domain.StatusFailAvailability) {
				p.fltResult[fltIndex] = FltResult{Seq: FltNoMatch, Seg: FltNoMatch}
				if fltMatch[fltIndex] == FltNoMatch {
					fltMatch[fltIndex] = FltSkipped
				}
				if segMatch[segIdx] == FltNoMatch {
					segMatch[segIdx] = FltSkipped
				}
				continue
			}
			fltMatch[fltIndex] = seg.SegNo
			segMatch[segIdx] = fltIndex
			if p.statusType == domain.ScopeRule1 && p.firstMatching[fltIndex] == FltNoMatch {
				p.firstMatching[fltIndex] = seq.SeqNo
			}
		}

		if !multi || ifTagFirst {
			continue
		}

		// Every segment of a multi-segment sequence must claim its own
		// travel segment.
		allSkipped, allMatched, segSkipped := false, false, false
		if segIdx == 0 {
			allSkipped = IsAllFlightsSkipped(fltMatch)
			if !allSkipped {
				allMatched = IsAllFlightsMatched(fltMatch)
			}
		} else {
			segSkipped = segMatch[segIdx] == FltSkipped || segMatch[segIdx] == FltNoMatch
		}
		if !segPassed || allSkipped || allMatched || segSkipped {
			if allMatched || segSkipped {
				p.restoreSegStatus(saved)
			}
			p.tracef("SEQ %d SEG %d: SEQUENCE NOT SATISFIED", seq.SeqNo, seg.SegNo)
			p.resetFltResult(seq.SeqNo, n)
			return
		}
	}

	if multi && !ifTagFirst && IsSegmentNoMatched(segMatch) {
		p.resetFltResult(seq.SeqNo, n)
		p.restoreSegStatus(saved)
	}
}

// matchQualifiers runs the qualifier chain of one exception segment against
// the travel segment at fltIndex.
func (p *pass) matchQualifiers(seq *domain.ExceptionSequence, seg *domain.ExceptionSegment, fltIndex, iFlt int) Result {
	tvl := p.fm.Segments[fltIndex]

	if r := p.validateCarrier(seq, seg, tvl, iFlt, fltIndex); r != Pass {
		return r
	}

	r := p.validatePrimarySecondary(seg, tvl)
	if r == FromToPrimary {
		r = NextFlight
		primary := p.fm.PrimarySector()
		if primary != nil {
			if fltIndex > 0 && p.fm.Segments[fltIndex-1] == primary {
				r = Pass
			}
			if fltIndex+1 < len(p.fm.Segments) && p.fm.Segments[fltIndex+1] == primary {
				r = Pass
			}
		}
	}
	if r != Pass {
		return r
	}

	checks := []func() Result{
		func() Result { return validateFlights(seg, tvl) },
		func() Result { return validateEquipment(seg, tvl) },
		func() Result { return validatePortionOfTravel(seg, p.fm, tvl) },
		func() Result { return p.validateTSI(seg, tvl) },
		func() Result { return p.validateLocation(seq, seg, tvl) },
		func() Result { return p.validatePointOfSale(seg) },
		func() Result { return p.validateSoldTag(seg) },
		func() Result { return p.validateDateTimeDOW(seq, seg, tvl) },
		func() Result { return p.validateFareclassType(seg) },
	}
	for _, check := range checks {
		if r := check(); r != Pass {
			return r
		}
	}
	return Pass
}

// applyBookingCodeForSingleFlight runs the restriction tag of the segment
// that matched the travel segment.
func (p *pass) applyBookingCodeForSingleFlight(seq *domain.ExceptionSequence, tvl *domain.TravelSegment, airIndex, iFlt int) {
	if iFlt != -1 && airIndex != iFlt {
		return
	}
	if !tvl.IsAir() {
		return
	}
	stat := p.segStatusVec()
	if airIndex >= len(stat) || airIndex >= len(p.fltResult) {
		return
	}
	if p.fltResult[airIndex].Seq == FltNoMatch ||
		stat[airIndex].Has(domain.StatusPass) || stat[airIndex].Has(domain.StatusFail) {
		return
	}

	seg := seq.Segment(p.fltResult[airIndex].Seg)
	if seg == nil {
		p.resetFltResult(seq.SeqNo, len(p.fm.Segments))
		return
	}
	p.processRestrictionTag(seg, tvl, stat, airIndex, iFlt)
}

// resetFltResult clears the flight results written by seqNo, or all of them
// for AllSequences.
func (p *pass) resetFltResult(seqNo, size int) {
	if len(p.fltResult) != size {
		p.fltResult = make([]FltResult, size)
		seqNo = AllSequences
	}
	for i := range p.fltResult {
		if seqNo == AllSequences || p.fltResult[i].Seq == seqNo {
			p.fltResult[i] = FltResult{Seq: FltNoMatch, Seg: FltNoMatch}
		}
	}
}

// allFltsDone reports whether the travel segment at iFlt, or every travel
// segment when iFlt is negative, already matched a sequence.
func (p *pass) allFltsDone(iFlt int) bool {
	if iFlt > -1 && iFlt < len(p.fltResult) {
		return p.fltResult[iFlt].Seq != FltNoMatch
	}
	for _, r := range p.fltResult {
		if r.Seq == FltNoMatch {
			return false
		}
	}
	return true
}

// resetFirstMatchingSeqs forgets the first matching sequence of every
// travel segment.
func (p *pass) resetFirstMatchingSeqs() {
	p.firstMatching = filled(len(p.fm.Segments), FltNoMatch)
}

// segStatusVec returns the status vector the current scope writes to.
func (p *pass) segStatusVec() []domain.SegmentStatus {
	if p.fu != nil {
		return p.fu.SegmentStatus
	}
	switch p.statusType {
	case domain.ScopeRule1:
		return p.fare.SegmentStatus
	case domain.ScopeRule2, domain.ScopeJourney:
		return p.fare.SegmentStatusRule2
	case domain.ScopeRule1AsBooked, domain.ScopeRule2AsBooked, domain.ScopeJourneyAsBooked:
		return p.asBooked
	default:
		slog.Warn("unknown status scope, using as-booked status",
			"scope", p.statusType.String(),
			"fare_id", p.fare.ID,
		)
		return p.asBooked
	}
}

func (p *pass) restoreSegStatus(saved []domain.SegmentStatus) {
	copy(p.segStatusVec(), saved)
}

// statusToAsBooked moves the scope to its as-booked shadow. It returns
// false for scopes without one.
func (p *pass) statusToAsBooked() bool {
	switch p.statusType {
	case domain.ScopeRule1:
		p.statusType = domain.ScopeRule1AsBooked
	case domain.ScopeRule2:
		p.statusType = domain.ScopeRule2AsBooked
	case domain.ScopeJourney:
		p.statusType = domain.ScopeJourneyAsBooked
	default:
		return false
	}
	return true
}

// statusFromAsBooked returns from an as-booked shadow scope. Any other
// scope falls back to rule 1.
func (p *pass) statusFromAsBooked() {
	switch p.statusType {
	case domain.ScopeRule1AsBooked:
		p.statusType = domain.ScopeRule1
	case domain.ScopeRule2AsBooked:
		p.statusType = domain.ScopeRule2
	case domain.ScopeJourneyAsBooked:
		p.statusType = domain.ScopeJourney
	default:
		p.statusType = domain.ScopeRule1
	}
}

func (p *pass) airSegments() []*domain.TravelSegment {
	var out []*domain.TravelSegment
	for _, s := range p.fm.Segments {
		if s.IsAir() {
			out = append(out, s)
		}
	}
	return out
}

func filled(n, v int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = v
	}
	return out
}

// ValidateSequenceForBothRBDs reports whether a sequence files both dual RBD
// tags, each with a secondary booking code.
func ValidateSequenceForBothRBDs(seq *domain.ExceptionSequence) bool {
	var permitted, required bool
	for i := range seq.Segments {
		s := &seq.Segments[i]
		switch s.RestrictionTag {
		case domain.TagRBD2PermittedIfRBD1Available:
			if s.BookingCode2 == "" {
				return false
			}
			permitted = true
		case domain.TagRBD2RequiredIfRBD1Available:
			if s.BookingCode2 == "" {
				return false
			}
			required = true
		}
	}
	return permitted && required
}

// dualRBDFilingComplete reports whether every dual RBD segment of the
// sequence carries both booking codes. Incomplete sequences are skipped.
func dualRBDFilingComplete(seq *domain.ExceptionSequence) bool {
	for i := range seq.Segments {
		s := &seq.Segments[i]
		if s.RestrictionTag.IsDualRBD() && (s.BookingCode1 == "" || s.BookingCode2 == "") {
			return false
		}
	}
	return true
}
