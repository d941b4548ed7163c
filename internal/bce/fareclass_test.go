package bce

import "testing"

func TestMatchFareClass(t *testing.T) {
	tests := []struct {
		rule, class string
		want        bool
	}{
		{"Y", "Y", true},
		{"Y", "Y26", false},
		{"Y-", "Y26", true},
		{"Y-", "Y", true},
		{"Y-", "BY26", false},
		{"-E", "YE", true},
		{"-E", "E", false},
		{"-E", "YEX", true},
		{"Y-E", "Y26E", true},
		{"Y-E", "Y26", false},
		{"B-E-7", "BXE27", true},
		{"B-E-7", "BXE2", false},
		{"-", "Q", true},
		{"-", "", false},
	}

	for _, tt := range tests {
		if got := matchFareClass(tt.rule, tt.class); got != tt.want {
			t.Errorf("matchFareClass(%q, %q) = %v, want %v", tt.rule, tt.class, got, tt.want)
		}
	}
}

func TestMatchFareType(t *testing.T) {
	tests := []struct {
		rule, fareType string
		want           bool
	}{
		{"", "XPN", true},
		{"XPN", "XPN", true},
		{"**", "BR", true},
		{"*Y", "EU", true},
		{"*Y", "XPN", true},
		{"*Y", "BR", false},
		{"*Y", "AU", true},
		{"*Y", "PGV", true},
		{"*Y", "SIP", true},
		{"*Y", "WU", false},
		{"*YX", "EU", true},
		{"*B", "BR", true},
		{"*B", "EU", false},
		{"*Q", "QU", false},
		{"*J", "JR", true},
		{"*Z", "ZEX", true},
		{"*", "EU", false},
		{"*E", "", false},
		{"XPN", "XEX", false},
	}

	for _, tt := range tests {
		if got := matchFareType(tt.rule, tt.fareType); got != tt.want {
			t.Errorf("matchFareType(%q, %q) = %v, want %v", tt.rule, tt.fareType, got, tt.want)
		}
	}
}
