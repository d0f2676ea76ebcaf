package utils

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestNewObjectKey_UniquePerCall(t *testing.T) {
	a := NewObjectKey("list.xlsx")
	b := NewObjectKey("list.xlsx")
	if a == b {
		t.Fatal("two uploads of the same filename must get distinct keys")
	}
	if !strings.HasSuffix(a, "-list.xlsx") {
		t.Fatalf("key %q should end with the original filename", a)
	}
}

func TestFileTypeFromName(t *testing.T) {
	cases := []struct {
		name string
		want string
	}{
		{"prices.xlsx", "xlsx"},
		{"prices.v2.csv", "csv"},
		{"PRICES.XLSX", "XLSX"},
		{"noextension", ""},
		{"trailingdot.", ""},
		{".env", "env"},
	}
	for _, tc := range cases {
		if got := FileTypeFromName(tc.name); got != tc.want {
			t.Errorf("FileTypeFromName(%q) = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestParseDecimal(t *testing.T) {
	d, err := ParseDecimal(" 123.4567 ")
	if err != nil {
		t.Fatalf("ParseDecimal: %v", err)
	}
	if d.String() != "123.4567" {
		t.Fatalf("got %s, want 123.4567", d.String())
	}

	if _, err := ParseDecimal(""); err == nil {
		t.Fatal("empty string should fail")
	}
	if _, err := ParseDecimal("12,5"); err == nil {
		t.Fatal("comma decimals should fail")
	}
}

func TestEmptyListRendersAsJSONArray(t *testing.T) {
	// FetchAllModels hands its slice straight to the JSON encoder, so it must
	// start non-nil: a nil slice renders as null, not [].
	type record struct{ ID int }

	var nilSlice []*record
	if b, _ := json.Marshal(nilSlice); string(b) != "null" {
		t.Fatalf("nil slice marshals as %s", b)
	}

	initialized := make([]*record, 0)
	if b, _ := json.Marshal(initialized); string(b) != "[]" {
		t.Fatalf("initialized slice marshals as %s, want []", b)
	}
}

func TestListOptionsNormalized(t *testing.T) {
	cases := []struct {
		in   ListOptions
		want ListOptions
	}{
		{ListOptions{}, ListOptions{Limit: DefaultListLimit, Offset: 0}},
		{ListOptions{Limit: -5, Offset: -1}, ListOptions{Limit: DefaultListLimit, Offset: 0}},
		{ListOptions{Limit: 10, Offset: 20}, ListOptions{Limit: 10, Offset: 20}},
		{ListOptions{Limit: 100000}, ListOptions{Limit: MaxListLimit, Offset: 0}},
	}
	for _, tc := range cases {
		if got := tc.in.normalized(); got != tc.want {
			t.Errorf("normalized(%+v) = %+v, want %+v", tc.in, got, tc.want)
		}
	}
}
