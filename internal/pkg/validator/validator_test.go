package validator

import (
	"testing"
)

func TestIsEmpty(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"", true},
		{"   ", true},
		{"abc", false},
		{" abc ", false},
	}
	for _, c := range cases {
		got := IsEmpty(c.input)
		if got != c.want {
			t.Errorf("IsEmpty(%q) = %v, want %v", c.input, got, c.want)
		}
	}
}

func TestIsValidAccountNumber(t *testing.T) {
	valid := []string{"661100", "422000", "521000"}
	invalid := []string{"", "66110", "6611000", "66110a", "66-100"}
	for _, n := range valid {
		if !IsValidAccountNumber(n) {
			t.Errorf("IsValidAccountNumber(%q) = false, want true", n)
		}
	}
	for _, n := range invalid {
		if IsValidAccountNumber(n) {
			t.Errorf("IsValidAccountNumber(%q) = true, want false", n)
		}
	}
}

func TestIsValidCurrency(t *testing.T) {
	valid := []string{"EUR", "CDF", "USD"}
	invalid := []string{"", "eur", "EU", "EURO", "E1R"}
	for _, c := range valid {
		if !IsValidCurrency(c) {
			t.Errorf("IsValidCurrency(%q) = false, want true", c)
		}
	}
	for _, c := range invalid {
		if IsValidCurrency(c) {
			t.Errorf("IsValidCurrency(%q) = true, want false", c)
		}
	}
}

func TestIndexedField(t *testing.T) {
	if got := IndexedField("rows", 2, "amount"); got != "rows[2].amount" {
		t.Errorf("IndexedField = %q", got)
	}
}

func TestIsValidDate(t *testing.T) {
	if _, ok := IsValidDate("2025-03-31"); !ok {
		t.Error("expected 2025-03-31 to parse")
	}
	if _, ok := IsValidDate("31/03/2025"); ok {
		t.Error("expected 31/03/2025 to fail")
	}
}
