package ebay

import "testing"

func TestResolveCondition(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		wantCode string
		wantOK   bool
	}{
		{name: "exact new", text: "New", wantCode: ConditionNew, wantOK: true},
		{name: "brand new", text: "Brand New", wantCode: ConditionNew, wantOK: true},
		{name: "pre-owned maps to used", text: "Pre-owned", wantCode: ConditionUsed, wantOK: true},
		{name: "whitespace is trimmed", text: "  Used  ", wantCode: ConditionUsed, wantOK: true},
		{name: "case insensitive", text: "FOR PARTS OR NOT WORKING", wantCode: ConditionForParts, wantOK: true},
		{name: "open box is new other", text: "Open box", wantCode: ConditionNewOther, wantOK: true},
		{name: "refurbished variant", text: "Seller refurbished", wantCode: ConditionRefurbished, wantOK: true},
		{name: "unknown variant", text: "Slightly loved", wantCode: "", wantOK: false},
		{name: "empty text", text: "", wantCode: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, ok := ResolveCondition(tt.text)
			if ok != tt.wantOK {
				t.Fatalf("ResolveCondition(%q) ok = %v, want %v", tt.text, ok, tt.wantOK)
			}
			if code != tt.wantCode {
				t.Errorf("ResolveCondition(%q) = %q, want %q", tt.text, code, tt.wantCode)
			}
		})
	}
}
