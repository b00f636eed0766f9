package units

import (
	"math/big"
	"testing"
)

func TestFormat(t *testing.T) {
	cases := []struct {
		value    string
		decimals uint8
		want     string
	}{
		{"1000000000000000000", 18, "1.000000000000000000"},
		{"1500000000000000000", 18, "1.500000000000000000"},
		{"1", 18, "0.000000000000000001"},
		{"0", 18, "0.000000000000000000"},
		{"-2500000000000000000", 18, "-2.500000000000000000"},
		{"123456", 0, "123456"},
		{"123456", 6, "0.123456"},
	}

	for _, tc := range cases {
		value, ok := new(big.Int).SetString(tc.value, 10)
		if !ok {
			t.Fatalf("bad test value %q", tc.value)
		}
		if got := Format(value, tc.decimals); got != tc.want {
			t.Fatalf("Format(%s, %d) = %q, want %q", tc.value, tc.decimals, got, tc.want)
		}
	}
}

func TestFormatNil(t *testing.T) {
	if got := Format(nil, 18); got != "0" {
		t.Fatalf("Format(nil) = %q, want 0", got)
	}
}

func TestParse(t *testing.T) {
	cases := []struct {
		text string
		want string
	}{
		{"1", "1000000000000000000"},
		{"1.5", "1500000000000000000"},
		{"0.000000000000000001", "1"},
		{"100", "100000000000000000000"},
		{".5", "500000000000000000"},
		{"-2.5", "-2500000000000000000"},
	}

	for _, tc := range cases {
		got, err := Parse(tc.text, 18)
		if err != nil {
			t.Fatalf("Parse(%q): %v", tc.text, err)
		}
		if got.String() != tc.want {
			t.Fatalf("Parse(%q) = %s, want %s", tc.text, got, tc.want)
		}
	}
}

func TestParseInvalid(t *testing.T) {
	for _, text := range []string{"", ".", "abc", "1.2.3", "1,5", "0.0000000000000000001"} {
		if _, err := Parse(text, 18); err == nil {
			t.Fatalf("Parse(%q): expected error", text)
		}
	}
}

// A raw integer formatted to display units and parsed back must reproduce
// the original integer exactly.
func TestRoundTrip(t *testing.T) {
	for _, raw := range []string{
		"1000000000000000000",
		"1",
		"999999999999999999",
		"123456789012345678901234567890",
	} {
		value, ok := new(big.Int).SetString(raw, 10)
		if !ok {
			t.Fatalf("bad test value %q", raw)
		}
		back, err := Parse(Format(value, 18), 18)
		if err != nil {
			t.Fatalf("round trip %s: %v", raw, err)
		}
		if back.Cmp(value) != 0 {
			t.Fatalf("round trip %s: got %s", raw, back)
		}
	}
}
