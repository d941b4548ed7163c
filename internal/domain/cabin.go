package domain

import (
	"encoding/json"
	"fmt"
)

// CabinType is a service cabin. Lower values are higher cabins; the valid
// range runs from CabinSuperSonic down to CabinEconomy.
type CabinType uint8

const (
	CabinUndefined CabinType = iota
	CabinSuperSonic
	CabinFirstPremium
	CabinFirst
	CabinBusinessPremium
	CabinBusiness
	CabinEconomyPremium
	CabinEconomy
	CabinUnknown
	CabinInvalid
)

var cabinAlpha = map[CabinType]byte{
	CabinSuperSonic:      'R',
	CabinFirstPremium:    'P',
	CabinFirst:           'F',
	CabinBusinessPremium: 'J',
	CabinBusiness:        'C',
	CabinEconomyPremium:  'W',
	CabinEconomy:         'Y',
}

var cabinNames = map[CabinType]string{
	CabinUndefined:       "UNDEFINED",
	CabinSuperSonic:      "SUPERSONIC",
	CabinFirstPremium:    "FIRST_PREMIUM",
	CabinFirst:           "FIRST",
	CabinBusinessPremium: "BUSINESS_PREMIUM",
	CabinBusiness:        "BUSINESS",
	CabinEconomyPremium:  "ECONOMY_PREMIUM",
	CabinEconomy:         "ECONOMY",
	CabinUnknown:         "UNKNOWN",
	CabinInvalid:         "INVALID",
}

// IsValid reports whether c is one of the seven bookable cabins.
func (c CabinType) IsValid() bool {
	return c >= CabinSuperSonic && c <= CabinEconomy
}

// IsDefined reports whether c carries any value other than CabinUndefined.
func (c CabinType) IsDefined() bool {
	return c != CabinUndefined
}

// Higher reports whether c is a strictly higher cabin than o.
// Comparisons involving non-bookable cabins are always false.
func (c CabinType) Higher(o CabinType) bool {
	return c.IsValid() && o.IsValid() && c < o
}

// Lower reports whether c is a strictly lower cabin than o.
func (c CabinType) Lower(o CabinType) bool {
	return c.IsValid() && o.IsValid() && c > o
}

// AtLeast reports whether c is the same cabin as o or higher.
func (c CabinType) AtLeast(o CabinType) bool {
	return c == o || c.Higher(o)
}

// OneLevelUp returns the adjacent higher cabin, or c itself at the top.
func (c CabinType) OneLevelUp() CabinType {
	if !c.IsValid() || c == CabinSuperSonic {
		return c
	}
	return c - 1
}

// OneLevelDown returns the adjacent lower cabin, or c itself at the bottom.
func (c CabinType) OneLevelDown() CabinType {
	if !c.IsValid() || c == CabinEconomy {
		return c
	}
	return c + 1
}

// GeneralIndex collapses premium variants onto their base cabin.
func (c CabinType) GeneralIndex() CabinType {
	switch c {
	case CabinFirstPremium:
		return CabinFirst
	case CabinBusinessPremium:
		return CabinBusiness
	case CabinEconomyPremium:
		return CabinEconomy
	default:
		return c
	}
}

// AlphaCode returns the one-letter cabin code, or 0 for non-bookable cabins.
func (c CabinType) AlphaCode() byte {
	return cabinAlpha[c]
}

// NumericCode returns '1' for supersonic through '7' for economy.
func (c CabinType) NumericCode() byte {
	if !c.IsValid() {
		return '0'
	}
	return byte('0' + c)
}

// CabinFromAlpha parses a one-letter cabin code.
func CabinFromAlpha(code byte) CabinType {
	for c, a := range cabinAlpha {
		if a == code {
			return c
		}
	}
	return CabinInvalid
}

// CabinFromNumeric parses a numeric cabin code.
func CabinFromNumeric(code byte) CabinType {
	if code < '1' || code > '7' {
		return CabinInvalid
	}
	return CabinType(code - '0')
}

func (c CabinType) String() string {
	if n, ok := cabinNames[c]; ok {
		return n
	}
	return fmt.Sprintf("CABIN(%d)", uint8(c))
}

// MarshalJSON encodes the cabin as its name.
func (c CabinType) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// UnmarshalJSON accepts a cabin name, a one-letter alpha code, or a number.
func (c *CabinType) UnmarshalJSON(data []byte) error {
	var n uint8
	if err := json.Unmarshal(data, &n); err == nil {
		*c = CabinType(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: cabin must be a string or number", ErrInvalidInput)
	}
	if s == "" {
		*c = CabinUndefined
		return nil
	}
	for k, name := range cabinNames {
		if name == s {
			*c = k
			return nil
		}
	}
	if len(s) == 1 {
		if v := CabinFromAlpha(s[0]); v != CabinInvalid {
			*c = v
			return nil
		}
		*c = CabinFromNumeric(s[0])
		return nil
	}
	return fmt.Errorf("%w: unknown cabin %q", ErrInvalidInput, s)
}
