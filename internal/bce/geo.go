package bce

import (
	"github.com/opensource-finance/bce/internal/domain"
)

// isInLoc reports whether loc lies inside the filed location key.
func (p *pass) isInLoc(loc domain.Location, key domain.LocKey) bool {
	if key.Type == domain.LocZone {
		if p.v.zones == nil {
			return false
		}
		return p.v.zones.InZone(p.ctx, key.Code, loc)
	}
	return InLoc(loc, key)
}

// InLoc reports whether loc lies inside key. Zone keys never match here;
// they need a ZoneLookup.
func InLoc(loc domain.Location, key domain.LocKey) bool {
	if key.IsEmpty() {
		return true
	}
	switch key.Type {
	case domain.LocArea:
		return loc.Area == key.Code
	case domain.LocNation:
		return loc.Nation == key.Code
	case domain.LocState:
		return loc.State == key.Code || loc.Nation+loc.State == key.Code
	case domain.LocCity:
		if loc.City == "" {
			return loc.Airport == key.Code
		}
		return loc.City == key.Code
	case domain.LocAirport:
		return loc.Airport == key.Code
	case domain.LocZone:
		return false
	default:
		return loc.Airport == key.Code || loc.City == key.Code
	}
}

func isNorthAmerican(nation string) bool {
	return nation == domain.NationUS || nation == domain.NationCA
}

// isDomestic is true for travel wholly inside one nation or inside the
// US/Canada pair.
func isDomestic(orig, dest domain.Location) bool {
	if isNorthAmerican(orig.Nation) && isNorthAmerican(dest.Nation) {
		return true
	}
	return orig.Nation != "" && orig.Nation == dest.Nation
}

// isForeignDomestic is true for travel inside one nation other than the US or Canada.
func isForeignDomestic(orig, dest domain.Location) bool {
	return orig.Nation != "" && orig.Nation == dest.Nation && !isNorthAmerican(orig.Nation)
}

func isTransborder(orig, dest domain.Location) bool {
	return isNorthAmerican(orig.Nation) && isNorthAmerican(dest.Nation) && orig.Nation != dest.Nation
}

func isBetweenNations(orig, dest domain.Location, a, b string) bool {
	return (orig.Nation == a && dest.Nation == b) || (orig.Nation == b && dest.Nation == a)
}

func inAreas(area string, areas ...string) bool {
	for _, a := range areas {
		if area == a {
			return true
		}
	}
	return false
}

// oceanCrossing checks the AT/PA portions: the fare travels in the given
// global direction and the segment joins area 1 with area 2 or 3.
func oceanCrossing(direction string, fm *domain.FareMarket, orig, dest domain.Location) bool {
	if fm == nil || fm.GlobalDirection != direction {
		return false
	}
	if orig.Area == dest.Area {
		return false
	}
	if orig.Area == domain.Area1 {
		return inAreas(dest.Area, domain.Area2, domain.Area3)
	}
	if dest.Area == domain.Area1 {
		return inAreas(orig.Area, domain.Area2, domain.Area3)
	}
	return false
}

// portionMatches evaluates a two letter portion-of-travel code against one
// travel segment. Unknown codes match.
func portionMatches(code string, fm *domain.FareMarket, seg *domain.TravelSegment) bool {
	orig, dest := seg.Origin, seg.Destination
	switch code {
	case "AT":
		return oceanCrossing("AT", fm, orig, dest)
	case "PA":
		return oceanCrossing("PA", fm, orig, dest)
	case "CA":
		return orig.Nation == domain.NationCA && dest.Nation == domain.NationCA
	case "CO":
		return orig.Area != dest.Area || orig.Nation != dest.Nation
	case "DO":
		return isDomestic(orig, dest) || isForeignDomestic(orig, dest)
	case "EH":
		return (orig.Area == domain.Area2 && inAreas(dest.Area, domain.Area2, domain.Area3)) ||
			(orig.Area == domain.Area3 && dest.Area == domain.Area2)
	case "FD":
		return isForeignDomestic(orig, dest)
	case "FE":
		return orig.Area == domain.Area3 && dest.Area == domain.Area3
	case "TB":
		return isTransborder(orig, dest)
	case "TM":
		return isBetweenNations(orig, dest, domain.NationUS, domain.NationMX)
	case "US":
		return orig.Nation == domain.NationUS && dest.Nation == domain.NationUS
	case "WH":
		return orig.Area == domain.Area1 && dest.Area == domain.Area1
	default:
		return true
	}
}
