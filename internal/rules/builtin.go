package rules

import "github.com/opensource-finance/bce/internal/domain"

// DefaultTSIs returns the indicators seeded for a tenant that has filed
// none of its own. A tenant definition with the same ID replaces the
// default.
func DefaultTSIs() []*domain.TSIDefinition {
	return []*domain.TSIDefinition{
		{
			ID:          1,
			Name:        "First sector",
			Description: "First travel segment of the fare component",
			Expression:  `seg.index == 0`,
			Enabled:     true,
		},
		{
			ID:          2,
			Name:        "Last sector",
			Description: "Last travel segment of the fare component",
			Expression:  `seg.index == fm.segmentCount - 1`,
			Arrival:     true,
			Enabled:     true,
		},
		{
			ID:          3,
			Name:        "Departure from origin",
			Description: "Segment departing the fare component origin",
			Expression:  `seg.origin.airport == fm.origin.airport || (seg.origin.city != "" && seg.origin.city == fm.origin.city)`,
			Enabled:     true,
		},
		{
			ID:          4,
			Name:        "Arrival at destination",
			Description: "Segment arriving at the fare component destination",
			Expression:  `seg.destination.airport == fm.destination.airport || (seg.destination.city != "" && seg.destination.city == fm.destination.city)`,
			Arrival:     true,
			Enabled:     true,
		},
		{
			ID:          5,
			Name:        "Primary sector",
			Description: "The primary sector of the fare component",
			Expression:  `seg.primary`,
			Enabled:     true,
		},
		{
			ID:          6,
			Name:        "Inter-area sector",
			Description: "Segment between two IATA traffic conference areas",
			Expression:  `seg.origin.area != seg.destination.area`,
			Enabled:     true,
		},
		{
			ID:          7,
			Name:        "International sector",
			Description: "Segment between two nations",
			Expression:  `seg.origin.nation != seg.destination.nation`,
			Enabled:     true,
		},
		{
			ID:          8,
			Name:        "Domestic sector",
			Description: "Segment within one nation",
			Expression:  `seg.origin.nation == seg.destination.nation`,
			Enabled:     true,
		},
	}
}
