package bce

import "strings"

// fareTypeGroups maps the generic "*X" fare type masks to the fare type
// families they cover. "*Y" is the economy group: excursion, instant
// purchase, advance purchase, special and promotional fares.
var fareTypeGroups = map[byte]string{
	'Y': "EXAPS",
}

// singleFareTypes are the fare type families addressable as "*X".
const singleFareTypes = "RFBEWXSPAZJ"

// matchFareType reports whether a filed fare type mask matches the fare's
// fare type code.
func matchFareType(rule, fareType string) bool {
	if rule == "" || rule == fareType {
		return true
	}
	if rule == "**" {
		return true
	}
	if len(rule) < 2 || rule[0] != '*' || fareType == "" {
		return false
	}
	family := rule[1]
	if group, ok := fareTypeGroups[family]; ok {
		return strings.IndexByte(group, fareType[0]) >= 0
	}
	if strings.IndexByte(singleFareTypes, family) >= 0 {
		return fareType[0] == family
	}
	return false
}

// matchFareClass reports whether a filed fare class mask matches a fare
// class. A hyphen stands for any run of characters; a leading hyphen needs
// at least one. Without a hyphen the match is exact.
func matchFareClass(rule, fareClass string) bool {
	if !strings.Contains(rule, "-") {
		return rule == fareClass
	}

	parts := strings.Split(rule, "-")
	if !strings.HasPrefix(fareClass, parts[0]) {
		return false
	}

	pos := len(parts[0])
	if parts[0] == "" {
		// a leading hyphen consumes at least one character
		if fareClass == "" {
			return false
		}
		pos = 1
	}

	for _, part := range parts[1:] {
		if part == "" {
			continue
		}
		idx := strings.Index(fareClass[pos:], part)
		if idx < 0 {
			return false
		}
		pos += idx + len(part)
	}
	return true
}
