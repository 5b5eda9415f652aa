package model

import (
	"encoding/json"
	"testing"
	"time"
)

// TestParseDate tests date parsing and formatting.
//
// WHY: Dates are the key of every stored series; a parsing asymmetry
// between what we write and what we accept back would silently split one
// trading day into two records.
func TestParseDate(t *testing.T) {
	t.Run("round-trips the ISO format", func(t *testing.T) {
		d, err := ParseDate("2024-03-08")
		if err != nil {
			t.Fatalf("ParseDate() returned unexpected error: %v", err)
		}
		if got := d.String(); got != "2024-03-08" {
			t.Errorf("String() = %q, want %q", got, "2024-03-08")
		}
	})

	t.Run("accepts single-digit month and day", func(t *testing.T) {
		d, err := ParseDate("2024-3-8")
		if err != nil {
			t.Fatalf("ParseDate() returned unexpected error: %v", err)
		}
		if got := d.String(); got != "2024-03-08" {
			t.Errorf("String() = %q, want %q", got, "2024-03-08")
		}
	})

	t.Run("rejects garbage", func(t *testing.T) {
		if _, err := ParseDate("not-a-date"); err == nil {
			t.Error("ParseDate() accepted invalid input")
		}
	})
}

// TestDateOrdering tests Before/After/Compare and day arithmetic.
//
// WHY: The merge, split-adjustment, and coverage logic all branch on
// strict date comparisons; off-by-one-day behavior here corrupts every
// downstream series.
func TestDateOrdering(t *testing.T) {
	a := MustParseDate("2024-02-28")
	b := MustParseDate("2024-02-29")

	if !a.Before(b) || b.Before(a) {
		t.Error("Before() ordering is wrong for consecutive days")
	}
	if !b.After(a) {
		t.Error("After() ordering is wrong for consecutive days")
	}
	if got := a.AddDays(1); got != b {
		t.Errorf("AddDays(1) across leap day = %s, want %s", got, b)
	}
	if got := a.AddDays(2).String(); got != "2024-03-01" {
		t.Errorf("AddDays(2) = %q, want 2024-03-01", got)
	}
}

// TestDateUnixBounds tests the inclusive range bound helpers.
//
// WHY: The fetcher encodes the requested range as Unix timestamps at
// 00:00:00 and 23:59:59; a wrong bound drops the first or last trading
// day of every fetch.
func TestDateUnixBounds(t *testing.T) {
	d := MustParseDate("2024-01-02")

	start := time.Unix(d.StartOfDayUnix(), 0).UTC()
	if start.Hour() != 0 || start.Minute() != 0 || start.Second() != 0 {
		t.Errorf("StartOfDayUnix() = %v, want midnight", start)
	}
	end := time.Unix(d.EndOfDayUnix(), 0).UTC()
	if end.Hour() != 23 || end.Minute() != 59 || end.Second() != 59 {
		t.Errorf("EndOfDayUnix() = %v, want 23:59:59", end)
	}
	if DateOf(end) != d {
		t.Errorf("EndOfDayUnix() crossed into the next day: %v", end)
	}
}

// TestDateWeekend tests weekend detection.
func TestDateWeekend(t *testing.T) {
	if !MustParseDate("2024-01-06").IsWeekend() { // Saturday
		t.Error("expected Saturday to be a weekend")
	}
	if !MustParseDate("2024-01-07").IsWeekend() { // Sunday
		t.Error("expected Sunday to be a weekend")
	}
	if MustParseDate("2024-01-08").IsWeekend() { // Monday
		t.Error("expected Monday to be a weekday")
	}
}

// TestDateJSON tests JSON round-tripping.
//
// WHY: Dates cross the API boundary and the transactions document as JSON
// strings; both directions must agree on the format.
func TestDateJSON(t *testing.T) {
	d := MustParseDate("2024-06-30")

	data, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("Marshal() returned unexpected error: %v", err)
	}
	if string(data) != `"2024-06-30"` {
		t.Errorf("Marshal() = %s, want %q", data, `"2024-06-30"`)
	}

	var back Date
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal() returned unexpected error: %v", err)
	}
	if back != d {
		t.Errorf("round-trip mismatch: got %s, want %s", back, d)
	}
}
