package statement

import (
	"math"
	"testing"
)

func TestCoerceStrings(t *testing.T) {
	tests := []struct {
		input    string
		expected *float64
	}{
		{"10,000", floatPtr(10000)},
		{"(5,000)", floatPtr(-5000)},
		{"-3,500", floatPtr(-3500)},
		{"$1,234.56", floatPtr(1234.56)},
		{"1 234", floatPtr(1234)},
		{"-", nil},
		{"--", nil},
		{"—", nil},
		{"N/A", nil},
		{"", nil},
		{"   ", nil},
		{"Sep. 28, 2024", nil},
		{"12/31/2023", nil},
		{"abc", nil},
		{"100", floatPtr(100)},
		{"0", floatPtr(0)},
	}

	for _, tc := range tests {
		result := Coerce(tc.input)
		if tc.expected == nil {
			if result != nil {
				t.Errorf("Input %q: expected nil, got %f", tc.input, *result)
			}
		} else {
			if result == nil {
				t.Errorf("Input %q: expected %f, got nil", tc.input, *tc.expected)
			} else if *result != *tc.expected {
				t.Errorf("Input %q: expected %f, got %f", tc.input, *tc.expected, *result)
			}
		}
	}
}

func TestCoerceNonStrings(t *testing.T) {
	if v := Coerce(nil); v != nil {
		t.Errorf("nil cell: expected nil, got %f", *v)
	}
	if v := Coerce(42.5); v == nil || *v != 42.5 {
		t.Error("float64 cell should pass through")
	}
	if v := Coerce(7); v == nil || *v != 7.0 {
		t.Error("int cell should convert")
	}
	// A NaN must never masquerade as a real value.
	if v := Coerce(math.NaN()); v != nil {
		t.Error("NaN cell should resolve to nil")
	}
	if v := Coerce(math.Inf(1)); v != nil {
		t.Error("Inf cell should resolve to nil")
	}
}

func floatPtr(f float64) *float64 {
	return &f
}
