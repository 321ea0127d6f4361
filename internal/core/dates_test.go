package core

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseDisplayDate(t *testing.T) {
	cases := []struct {
		in  string
		out Date
		ok  bool
	}{
		{"15/01/2024", NewDate(2024, 1, 15), true},
		{"29/02/2024", NewDate(2024, 2, 29), true}, // leap day
		{"01/12/1999", NewDate(1999, 12, 1), true},
		{"31/02/2024", Date{}, false}, // normalized by time.Parse, must reject
		{"29/02/2023", Date{}, false},
		{"2024-01-15", Date{}, false},
		{"15/13/2024", Date{}, false},
		{"", Date{}, false},
		{"15/1/2024", Date{}, false}, // single-digit month
	}
	for i, tc := range cases {
		got, err := ParseDisplayDate(tc.in)
		if tc.ok {
			if err != nil {
				t.Fatalf("case %d expected ok, got %v", i, err)
			}
			if !got.Equal(tc.out.Time) {
				t.Fatalf("case %d got %v want %v", i, got, tc.out)
			}
			continue
		}
		if err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestParseDisplayDateRoundTrip(t *testing.T) {
	for _, in := range []string{"01/01/2020", "29/02/2024", "31/12/2030"} {
		d, err := ParseDisplayDate(in)
		if err != nil {
			t.Fatalf("%s: %v", in, err)
		}
		if got := d.Display(); got != in {
			t.Fatalf("%s round-tripped to %s", in, got)
		}
	}
}

func TestParseInternalDate(t *testing.T) {
	d, err := ParseInternalDate("2024-11-05")
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if d.Internal() != "2024-11-05" {
		t.Fatalf("got %s", d.Internal())
	}
	if _, err := ParseInternalDate("05/11/2024"); err == nil {
		t.Fatalf("expected error for display form")
	}
}

func TestZeroDateFormatsEmpty(t *testing.T) {
	var d Date
	if d.Display() != "" || d.Internal() != "" {
		t.Fatalf("zero date must format empty, got %q / %q", d.Display(), d.Internal())
	}
}

func TestDateJSONTolerance(t *testing.T) {
	cases := []struct {
		in   string
		want Date
	}{
		{`"2024-03-10"`, NewDate(2024, 3, 10)},
		{`""`, Date{}},
		{`"not a date"`, Date{}},
		{`42`, Date{}},
	}
	for i, tc := range cases {
		var d Date
		if err := json.Unmarshal([]byte(tc.in), &d); err != nil {
			t.Fatalf("case %d unexpected error %v", i, err)
		}
		if !d.Equal(tc.want.Time) {
			t.Fatalf("case %d got %v want %v", i, d, tc.want)
		}
	}
}

func TestDaysSince(t *testing.T) {
	now := time.Date(2024, 11, 20, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		d    Date
		want int
	}{
		{NewDate(2024, 11, 1), 19},
		{NewDate(2024, 10, 1), 50},
		{NewDate(2024, 11, 20), 0},
		{NewDate(2024, 11, 25), -4}, // future date, partial day truncated
	}
	for i, tc := range cases {
		if got := DaysSince(tc.d, now); got != tc.want {
			t.Fatalf("case %d got %d want %d", i, got, tc.want)
		}
	}
}
