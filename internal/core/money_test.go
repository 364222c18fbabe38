package core

import (
	"encoding/json"
	"testing"
)

func TestParseDecimalToCents(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{"1000.00", 100000, true},
		{"1.005", 101, true}, // half-up rounding
		{" 2.50 ", 250, true},
		{"-1", 0, false},
		{"+1", 0, false},
		{"0", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseDecimalToCents(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestMoneyString(t *testing.T) {
	cases := []struct {
		cents int64
		want  string
	}{
		{100000, "1000.00"},
		{50000, "500.00"},
		{1, "0.01"},
		{-1250, "-12.50"},
		{0, "0.00"},
	}
	for _, tc := range cases {
		if got := (Money{Cents: tc.cents}).String(); got != tc.want {
			t.Fatalf("cents %d: expected %q, got %q", tc.cents, tc.want, got)
		}
	}
}

func TestMoneySubExact(t *testing.T) {
	income := Money{Cents: 100000}
	expense := Money{Cents: 50000}
	net := income.Sub(expense)
	if net.Cents != 50000 {
		t.Fatalf("expected 50000, got %d", net.Cents)
	}
	// Exactness survives repeated runs; no accumulation of error.
	for i := 0; i < 1000; i++ {
		if income.Sub(expense).Cents != net.Cents {
			t.Fatal("subtraction drifted")
		}
	}
}

func TestMoneyJSON(t *testing.T) {
	b, err := json.Marshal(Money{Cents: 123456})
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `"1234.56"` {
		t.Fatalf("expected quoted decimal, got %s", b)
	}

	var m Money
	if err := json.Unmarshal([]byte(`"12.34"`), &m); err != nil || m.Cents != 1234 {
		t.Fatalf("string form: got %d (err=%v)", m.Cents, err)
	}
	if err := json.Unmarshal([]byte(`12.34`), &m); err != nil || m.Cents != 1234 {
		t.Fatalf("number form: got %d (err=%v)", m.Cents, err)
	}
	if err := json.Unmarshal([]byte(`"-5"`), &m); err == nil {
		t.Fatal("expected error for negative amount")
	}
}
