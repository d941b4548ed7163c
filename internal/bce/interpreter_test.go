package bce

import (
	"context"
	"testing"
	"time"

	"github.com/opensource-finance/bce/internal/domain"
)

func TestValidateCarrierAnyCarrier(t *testing.T) {
	in := testInput()
	in.Fare.Industry = true
	p := newTestPass(in, Config{})
	tvl := in.Fare.Market.Segments[0]
	tvl.Carrier = "BA"

	for _, via := range []string{domain.CarrierDollarDollar, domain.CarrierAny} {
		for _, ifTag := range []string{"", domain.IfTagFareComponent} {
			seq := &domain.ExceptionSequence{SeqNo: 1, IfTag: ifTag}
			seg := &domain.ExceptionSegment{SegNo: 1, ViaCarrier: via}
			if got := p.validateCarrier(seq, seg, tvl, -1, 0); got != Pass {
				t.Errorf("via %s ifTag %q: got %s, want PASS", via, ifTag, got)
			}
		}
	}
}

func TestValidateCarrier(t *testing.T) {
	tests := []struct {
		name     string
		via      string
		ifTag    string
		carrier  string
		industry bool
		want     Result
	}{
		{"blank", "", "", "BA", false, Pass},
		{"same carrier", "AA", "", "AA", false, Pass},
		{"other carrier", "BA", "", "AA", false, NextFlight},
		{"x dollar other carrier", domain.CarrierXDollar, "", "BA", false, Pass},
		{"x dollar fare carrier", domain.CarrierXDollar, "", "AA", false, NextFlight},
		{"x dollar industry", domain.CarrierXDollar, "", "AA", true, Pass},
		{"fare level fare carrier", "AA", domain.IfTagFareComponent, "BA", false, Pass},
		{"fare level other carrier", "BA", domain.IfTagFareComponent, "BA", false, NextSequence},
		{"fare level industry", domain.CarrierIndustry, domain.IfTagFareComponent, "AA", true, Pass},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := testInput()
			in.Fare.Industry = tt.industry
			p := newTestPass(in, Config{})
			tvl := in.Fare.Market.Segments[0]
			tvl.Carrier = tt.carrier

			seq := &domain.ExceptionSequence{SeqNo: 1, IfTag: tt.ifTag}
			seg := &domain.ExceptionSegment{SegNo: 1, ViaCarrier: tt.via}
			if got := p.validateCarrier(seq, seg, tvl, -1, 0); got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestValidatePrimarySecondary(t *testing.T) {
	in := testInput()
	p := newTestPass(in, Config{})
	s1, s2 := in.Fare.Market.Segments[0], in.Fare.Market.Segments[1]

	tests := []struct {
		name string
		ind  string
		tvl  *domain.TravelSegment
		want Result
	}{
		{"blank", "", s1, Pass},
		{"primary on primary", domain.SectorPrimary, s2, Pass},
		{"primary on secondary", domain.SectorPrimary, s1, NextFlight},
		{"secondary on secondary", domain.SectorSecondary, s1, Pass},
		{"secondary on primary", domain.SectorSecondary, s2, NextFlight},
		{"from to primary on primary", domain.SectorFromToPrimary, s2, NextFlight},
		{"from to primary elsewhere", domain.SectorFromToPrimary, s1, FromToPrimary},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seg := &domain.ExceptionSegment{PrimarySecondary: tt.ind}
			if got := p.validatePrimarySecondary(seg, tt.tvl); got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}

	t.Run("domestic market", func(t *testing.T) {
		in := testInput()
		in.Fare.Market.GeoTravelType = domain.GeoDomestic
		p := newTestPass(in, Config{})
		seg := &domain.ExceptionSegment{PrimarySecondary: domain.SectorPrimary}
		if got := p.validatePrimarySecondary(seg, in.Fare.Market.Segments[1]); got != NextSequence {
			t.Errorf("got %s, want NEXT_SEQUENCE", got)
		}
	})
}

func TestFromToPrimaryNeighbours(t *testing.T) {
	in := testInput()
	p := newTestPass(in, Config{})
	seq := &domain.ExceptionSequence{SeqNo: 1}
	seg := &domain.ExceptionSegment{SegNo: 1, PrimarySecondary: domain.SectorFromToPrimary}

	// S1 connects to the primary sector S2.
	if got := p.matchQualifiers(seq, seg, 0, -1); got != Pass {
		t.Errorf("S1: got %s, want PASS", got)
	}
	if got := p.matchQualifiers(seq, seg, 1, -1); got != NextFlight {
		t.Errorf("S2: got %s, want NEXT_FLT", got)
	}
}

func TestValidateFlights(t *testing.T) {
	tests := []struct {
		name   string
		appl   string
		f1, f2 int
		flight int
		want   Result
	}{
		{"none filed", "", 0, 0, 100, Pass},
		{"individual first", domain.FlightIndividual, 100, 200, 100, Pass},
		{"individual second", domain.FlightIndividual, 100, 200, 200, Pass},
		{"individual miss", domain.FlightIndividual, 100, 200, 150, NextFlight},
		{"range inside", domain.FlightRange, 100, 200, 150, Pass},
		{"range bound", domain.FlightRange, 100, 200, 200, Pass},
		{"range outside", domain.FlightRange, 100, 200, 201, NextFlight},
		{"range reversed", domain.FlightRange, 3, 1, 2, Pass},
		{"range single", domain.FlightRange, 5, 0, 5, Pass},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seg := &domain.ExceptionSegment{FltRangeAppl: tt.appl, Flight1: tt.f1, Flight2: tt.f2}
			if got := validateFlights(seg, &domain.TravelSegment{FlightNumber: tt.flight}); got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestValidateEquipment(t *testing.T) {
	tvl := &domain.TravelSegment{Equipment: "777"}
	if validateEquipment(&domain.ExceptionSegment{}, tvl) != Pass {
		t.Error("blank equipment must pass")
	}
	if validateEquipment(&domain.ExceptionSegment{Equipment: "777"}, tvl) != Pass {
		t.Error("same equipment must pass")
	}
	if validateEquipment(&domain.ExceptionSegment{Equipment: "320"}, tvl) != NextFlight {
		t.Error("other equipment must not match")
	}
}

func TestPortionOfTravel(t *testing.T) {
	fm := &domain.FareMarket{GlobalDirection: "AT"}
	loc := func(nation, area string) domain.Location {
		return domain.Location{Airport: nation + area, Nation: nation, Area: area}
	}

	tests := []struct {
		code     string
		from, to domain.Location
		want     bool
	}{
		{"AT", loc("US", "1"), loc("GB", "2"), true},
		{"AT", loc("US", "1"), loc("US", "1"), false},
		{"PA", loc("US", "1"), loc("JP", "3"), false},
		{"CA", loc("CA", "1"), loc("CA", "1"), true},
		{"CO", loc("US", "1"), loc("MX", "1"), true},
		{"CO", loc("US", "1"), loc("US", "1"), false},
		{"DO", loc("US", "1"), loc("CA", "1"), true},
		{"DO", loc("FR", "2"), loc("FR", "2"), true},
		{"DO", loc("FR", "2"), loc("DE", "2"), false},
		{"EH", loc("FR", "2"), loc("JP", "3"), true},
		{"EH", loc("JP", "3"), loc("FR", "2"), true},
		{"EH", loc("JP", "3"), loc("US", "1"), false},
		{"FD", loc("FR", "2"), loc("FR", "2"), true},
		{"FD", loc("US", "1"), loc("US", "1"), false},
		{"FE", loc("JP", "3"), loc("AU", "3"), true},
		{"TB", loc("US", "1"), loc("CA", "1"), true},
		{"TB", loc("US", "1"), loc("US", "1"), false},
		{"TM", loc("MX", "1"), loc("US", "1"), true},
		{"US", loc("US", "1"), loc("US", "1"), true},
		{"US", loc("US", "1"), loc("CA", "1"), false},
		{"WH", loc("US", "1"), loc("BR", "1"), true},
		{"WH", loc("US", "1"), loc("GB", "2"), false},
		{"ZZ", loc("US", "1"), loc("GB", "2"), true},
	}

	for _, tt := range tests {
		seg := &domain.TravelSegment{Origin: tt.from, Destination: tt.to}
		if got := portionMatches(tt.code, fm, seg); got != tt.want {
			t.Errorf("%s %s-%s: got %v, want %v", tt.code, tt.from.Nation, tt.to.Nation, got, tt.want)
		}
	}
}

func TestInLoc(t *testing.T) {
	loc := domain.Location{Airport: "JFK", City: "NYC", State: "NY", Nation: "US", Area: "1"}

	tests := []struct {
		key  domain.LocKey
		want bool
	}{
		{domain.LocKey{}, true},
		{domain.LocKey{Type: domain.LocArea, Code: "1"}, true},
		{domain.LocKey{Type: domain.LocArea, Code: "2"}, false},
		{domain.LocKey{Type: domain.LocNation, Code: "US"}, true},
		{domain.LocKey{Type: domain.LocState, Code: "NY"}, true},
		{domain.LocKey{Type: domain.LocState, Code: "USNY"}, true},
		{domain.LocKey{Type: domain.LocCity, Code: "NYC"}, true},
		{domain.LocKey{Type: domain.LocAirport, Code: "JFK"}, true},
		{domain.LocKey{Type: domain.LocAirport, Code: "LGA"}, false},
		{domain.LocKey{Type: domain.LocZone, Code: "1"}, false},
	}

	for _, tt := range tests {
		if got := InLoc(loc, tt.key); got != tt.want {
			t.Errorf("InLoc(%+v) = %v, want %v", tt.key, got, tt.want)
		}
	}
}

func TestValidateLocationDirection(t *testing.T) {
	in := testInput()
	p := newTestPass(in, Config{})
	seq := &domain.ExceptionSequence{SeqNo: 1}
	s2 := in.Fare.Market.Segments[1]
	us := domain.LocKey{Type: domain.LocNation, Code: "US"}
	gb := domain.LocKey{Type: domain.LocNation, Code: "GB"}

	tests := []struct {
		name       string
		dir        string
		loc1, loc2 domain.LocKey
		want       Result
	}{
		{"between either way", "", gb, us, Pass},
		{"from loc1", domain.DirectionFromLoc1, us, gb, Pass},
		{"from loc1 wrong way", domain.DirectionFromLoc1, gb, us, NextFlight},
		{"to loc1", domain.DirectionToLoc1, gb, us, Pass},
		{"within", "", us, us, NextFlight},
		{"origin loc1 needs fare level", domain.DirectionOriginLoc1, us, gb, NextFlight},
		{"unknown direction", "9", us, gb, NextSequence},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seg := &domain.ExceptionSegment{SegNo: 1, DirectionInd: tt.dir, Loc1: tt.loc1, Loc2: tt.loc2}
			if got := p.validateLocation(seq, seg, s2); got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}

	t.Run("fare level origin", func(t *testing.T) {
		fareSeq := &domain.ExceptionSequence{SeqNo: 1, IfTag: domain.IfTagFareComponent}
		seg := &domain.ExceptionSegment{SegNo: 1, DirectionInd: domain.DirectionOriginLoc1, Loc1: us, Loc2: gb}
		if got := p.validateLocation(fareSeq, seg, in.Fare.Market.Segments[0]); got != Pass {
			t.Errorf("got %s, want PASS", got)
		}
		seg.Loc1, seg.Loc2 = gb, us
		if got := p.validateLocation(fareSeq, seg, in.Fare.Market.Segments[0]); got != NextSequence {
			t.Errorf("got %s, want NEXT_SEQUENCE", got)
		}
	})
}

func TestValidatePointOfSale(t *testing.T) {
	in := testInput()
	in.Request.AgentLocation = domain.Location{City: "DFW", Nation: "US", Area: "1"}
	p := newTestPass(in, Config{})

	inUS := &domain.ExceptionSegment{PosLoc: domain.LocKey{Type: domain.LocNation, Code: "US"}}
	if p.validatePointOfSale(inUS) != Pass {
		t.Error("agent in US should pass")
	}
	inverted := &domain.ExceptionSegment{PosTSI: domain.TSIPointOfSaleInverted, PosLoc: domain.LocKey{Type: domain.LocNation, Code: "US"}}
	if p.validatePointOfSale(inverted) != NextFlight {
		t.Error("inverted point of sale should not match")
	}
}

func TestValidateSoldTag(t *testing.T) {
	tests := []struct {
		name  string
		sales domain.SalesIndicator
		ind   string
		want  Result
	}{
		{"sold in ticketed out", domain.SaleSITO, domain.SoldInTicketedOut, Pass},
		{"sold in ticketed in mismatch", domain.SaleSITO, domain.SoldInTicketedIn, NextFlight},
		{"sold out ticketed out", domain.SaleSOTO, domain.SoldOutTicketedOut, Pass},
		{"sold out ticketed in", domain.SaleSOTI, domain.SoldOutTicketedIn, Pass},
		{"sold in ticketed in", domain.SaleSITI, domain.SoldInTicketedIn, Pass},
		{"blank segment indicator", domain.SaleSITO, "", Pass},
		{"blank itinerary indicator", "", domain.SoldInTicketedIn, NextFlight},
		{"blank itinerary sold out", "", domain.SoldOutTicketedOut, NextFlight},
		{"blank both", "", "", Pass},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := testInput()
			in.Request.Itinerary.SalesIndicator = tt.sales
			p := newTestPass(in, Config{})
			if got := p.validateSoldTag(&domain.ExceptionSegment{SoldInOutInd: tt.ind}); got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestValidateDateTimeDOW(t *testing.T) {
	in := testInput()
	p := newTestPass(in, Config{})
	seq := &domain.ExceptionSequence{SeqNo: 1}
	// Monday 2 June 2025 09:30
	tvl := in.Fare.Market.Segments[0]

	tests := []struct {
		name string
		seg  domain.ExceptionSegment
		want Result
	}{
		{"nothing filed", domain.ExceptionSegment{}, Pass},
		{"inside window", domain.ExceptionSegment{TvlEffYear: 25, TvlEffMonth: 6, TvlEffDay: 1, TvlDiscYear: 2025, TvlDiscMonth: 6, TvlDiscDay: 30}, Pass},
		{"before window", domain.ExceptionSegment{TvlEffYear: 2025, TvlEffMonth: 7, TvlEffDay: 1}, NextFlight},
		{"after window", domain.ExceptionSegment{TvlDiscYear: 2025, TvlDiscMonth: 5, TvlDiscDay: 31}, NextFlight},
		{"month only", domain.ExceptionSegment{TvlEffMonth: 6, TvlDiscMonth: 6}, Pass},
		{"monday", domain.ExceptionSegment{DaysOfWeek: "1"}, Pass},
		{"weekend", domain.ExceptionSegment{DaysOfWeek: "67"}, NextFlight},
		{"morning", domain.ExceptionSegment{TvlStartTime: 360, TvlEndTime: 720}, Pass},
		{"evening", domain.ExceptionSegment{TvlStartTime: 1080}, NextFlight},
		{"unset filed time", domain.ExceptionSegment{TvlStartTime: 65535, TvlEndTime: 65535}, Pass},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.validateDateTimeDOW(seq, &tt.seg, tvl); got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}

	t.Run("open segment", func(t *testing.T) {
		open := &domain.TravelSegment{Open: true}
		seg := &domain.ExceptionSegment{TvlEffYear: 2030}
		if got := p.validateDateTimeDOW(seq, seg, open); got != Pass {
			t.Errorf("undated segment: got %s, want PASS", got)
		}
	})
}

func TestValidateFareclassType(t *testing.T) {
	in := testInput()
	p := newTestPass(in, Config{})

	tests := []struct {
		typ, class string
		want       Result
	}{
		{"", "", Pass},
		{domain.FareclassTypeExact, "YOW", Pass},
		{domain.FareclassTypeExact, "Y", NextSequence},
		{domain.FareclassTypeMask, "Y-", Pass},
		{domain.FareclassTypeMask, "-OW", Pass},
		{domain.FareclassTypeMask, "B-", NextSequence},
		{domain.FareclassTypeFirstChr, "Y", Pass},
		{domain.FareclassTypeFirstChr, "YO", Pass},
		{domain.FareclassTypeFareType, "*E", Pass},
		{domain.FareclassTypeFareType, "*Y", Pass},
		{domain.FareclassTypeFareType, "*B", NextSequence},
		{"Q", "YOW", NextSequence},
	}

	for _, tt := range tests {
		seg := &domain.ExceptionSegment{FareclassType: tt.typ, Fareclass: tt.class}
		if got := p.validateFareclassType(seg); got != tt.want {
			t.Errorf("type %q class %q: got %s, want %s", tt.typ, tt.class, got, tt.want)
		}
	}
}

func TestFlightResultHelpers(t *testing.T) {
	t.Run("reset all", func(t *testing.T) {
		p := newTestPass(testInput(), Config{})
		p.fltResult[0] = FltResult{Seq: 100, Seg: 1}
		p.fltResult[1] = FltResult{Seq: 200, Seg: FltFailed}

		p.resetFltResult(AllSequences, 2)
		for i, r := range p.fltResult {
			if r.Seq != FltNoMatch || r.Seg != FltNoMatch {
				t.Errorf("entry %d not reset: %+v", i, r)
			}
		}
	})

	t.Run("reset one sequence", func(t *testing.T) {
		p := newTestPass(testInput(), Config{})
		p.fltResult[0] = FltResult{Seq: 100, Seg: 1}
		p.fltResult[1] = FltResult{Seq: 200, Seg: 1}

		p.resetFltResult(100, 2)
		if p.fltResult[0].Seq != FltNoMatch || p.fltResult[1].Seq != 200 {
			t.Errorf("unexpected results %+v", p.fltResult)
		}
	})

	t.Run("resize resets", func(t *testing.T) {
		p := newTestPass(testInput(), Config{})
		p.fltResult[0] = FltResult{Seq: 100, Seg: 1}
		p.resetFltResult(100, 3)
		if len(p.fltResult) != 3 {
			t.Fatalf("expected 3 entries, got %d", len(p.fltResult))
		}
		for i, r := range p.fltResult {
			if r.Seq != FltNoMatch || r.Seg != FltNoMatch {
				t.Errorf("entry %d not reset: %+v", i, r)
			}
		}
	})

	matched := []struct {
		in   []int
		want bool
	}{
		{[]int{1, 2}, true},
		{[]int{1, SecArunk, 2}, true},
		{[]int{1, FltNoMatch}, false},
		{[]int{FltSkipped, 1}, false},
		{[]int{SecArunk}, false},
	}
	for _, tt := range matched {
		if got := IsAllFlightsMatched(tt.in); got != tt.want {
			t.Errorf("IsAllFlightsMatched(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}

	if !IsAllFlightsSkipped([]int{FltSkipped, SecArunk, FltSkipped}) {
		t.Error("expected all skipped")
	}
	if IsAllFlightsSkipped([]int{FltSkipped, 1}) {
		t.Error("matched entry is not skipped")
	}
	if !IsSegmentNoMatched([]int{0, FltSkipped}) || !IsSegmentNoMatched([]int{FltNoMatch}) {
		t.Error("skipped and unmatched entries count as no match")
	}
	if IsSegmentNoMatched([]int{0, 1}) {
		t.Error("all matched")
	}
}

func TestStatusScopeRoundTrip(t *testing.T) {
	p := newTestPass(testInput(), Config{})

	for _, scope := range []domain.StatusScope{domain.ScopeRule1, domain.ScopeRule2, domain.ScopeJourney} {
		p.statusType = scope
		if !p.statusToAsBooked() {
			t.Fatalf("%s has no as-booked scope", scope)
		}
		if !p.statusType.IsAsBooked() {
			t.Errorf("%s: expected as-booked scope, got %s", scope, p.statusType)
		}
		p.statusFromAsBooked()
		if p.statusType != scope {
			t.Errorf("round trip of %s ended at %s", scope, p.statusType)
		}
	}

	p.statusType = domain.ScopeRule1AsBooked
	if p.statusToAsBooked() {
		t.Error("as-booked scope has no further shadow")
	}
}

func TestSegStatusVec(t *testing.T) {
	in := testInput()
	p := newTestPass(in, Config{})
	p.resetAsBooked()

	tests := []struct {
		scope domain.StatusScope
		want  []domain.SegmentStatus
	}{
		{domain.ScopeRule1, in.Fare.SegmentStatus},
		{domain.ScopeRule2, in.Fare.SegmentStatusRule2},
		{domain.ScopeJourney, in.Fare.SegmentStatusRule2},
		{domain.ScopeRule1AsBooked, p.asBooked},
		{domain.StatusScope(999), p.asBooked},
	}

	for _, tt := range tests {
		p.statusType = tt.scope
		a, b := p.segStatusVec(), p.segStatusVec()
		if &a[0] != &b[0] {
			t.Errorf("%s: repeated calls returned different vectors", tt.scope)
		}
		if &a[0] != &tt.want[0] {
			t.Errorf("%s: wrong vector", tt.scope)
		}
	}

	in.FareUsage = &domain.FareUsage{SegmentStatus: domain.NewSegmentStatuses(2)}
	p.fu = in.FareUsage
	p.statusType = domain.ScopeRule2
	if &p.segStatusVec()[0] != &in.FareUsage.SegmentStatus[0] {
		t.Error("fare usage vector must win")
	}
}

func TestValidateSequenceForBothRBDs(t *testing.T) {
	both := func(bc2a, bc2b string) *domain.ExceptionSequence {
		return &domain.ExceptionSequence{Segments: []domain.ExceptionSegment{
			{SegNo: 1, RestrictionTag: domain.TagRBD2PermittedIfRBD1Available, BookingCode1: "Y", BookingCode2: bc2a},
			{SegNo: 2, RestrictionTag: domain.TagRBD2RequiredIfRBD1Available, BookingCode1: "Y", BookingCode2: bc2b},
		}}
	}

	if !ValidateSequenceForBothRBDs(both("B", "M")) {
		t.Error("complete dual filing should validate")
	}
	if ValidateSequenceForBothRBDs(both("", "M")) || ValidateSequenceForBothRBDs(both("B", "")) {
		t.Error("missing booking code 2 must fail")
	}
	one := &domain.ExceptionSequence{Segments: []domain.ExceptionSegment{
		{SegNo: 1, RestrictionTag: domain.TagRBD2PermittedIfRBD1Available, BookingCode1: "Y", BookingCode2: "B"},
	}}
	if ValidateSequenceForBothRBDs(one) {
		t.Error("one dual tag is not enough")
	}
}

func TestCabinOf(t *testing.T) {
	in := testInput()
	cabins := NewCabinTable(
		domain.RBDCabin{Carrier: "AA", BookingCode: "W", Cabin: domain.CabinEconomyPremium,
			EffDate: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), DiscDate: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)},
		domain.RBDCabin{Carrier: "AA", BookingCode: "W", Cabin: domain.CabinBusiness,
			EffDate: time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)},
	)
	now := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	p := newTestPass(in, Config{}, WithCabinLookup(cabins), WithClock(func() time.Time { return now }))
	tvl := in.Fare.Market.Segments[0]

	if got := p.cabinOf(tvl, "W"); got != domain.CabinBusiness {
		t.Errorf("dated lookup: got %s, want BUSINESS", got)
	}
	if got := p.cabinOf(tvl, "J"); got != domain.CabinBusiness {
		t.Errorf("inventory fallback: got %s, want BUSINESS", got)
	}
	if got := p.cabinOf(tvl, "Z"); got != domain.CabinInvalid {
		t.Errorf("unknown code: got %s, want INVALID", got)
	}

	open := &domain.TravelSegment{Carrier: "AA", Open: true, Departure: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	if got := p.cabinOf(open, "W"); got != domain.CabinEconomyPremium {
		t.Errorf("open segment retries with today: got %s, want ECONOMY_PREMIUM", got)
	}
	if cabins.Len() != 2 {
		t.Errorf("expected 2 mappings, got %d", cabins.Len())
	}
}

func TestZoneTable(t *testing.T) {
	zones := NewZoneTable(domain.Zone{Zone: "210", Locations: []domain.LocKey{
		{Type: domain.LocNation, Code: "FR"},
		{Type: domain.LocCity, Code: "LON"},
	}})
	ctx := context.Background()

	if !zones.InZone(ctx, "210", lhr) {
		t.Error("LON should be in zone 210")
	}
	if zones.InZone(ctx, "210", jfk) {
		t.Error("JFK should not be in zone 210")
	}
	if zones.InZone(ctx, "999", lhr) {
		t.Error("unknown zone must not match")
	}

	zones.Put(domain.Zone{Zone: "210", Locations: []domain.LocKey{{Type: domain.LocArea, Code: "1"}}})
	if !zones.InZone(ctx, "210", jfk) || zones.InZone(ctx, "210", lhr) {
		t.Error("Put must replace the zone")
	}
}
