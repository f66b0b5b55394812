package hotel

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	t.Parallel()

	d, err := ParseDate("2026-01-22")
	if err != nil {
		t.Fatalf("ParseDate() error = %v", err)
	}
	if d != NewDate(2026, time.January, 22) {
		t.Fatalf("ParseDate() = %v", d)
	}
	if d.String() != "2026-01-22" {
		t.Fatalf("String() = %q", d.String())
	}

	if _, err := ParseDate("22/01/2026"); err == nil {
		t.Fatal("expected error for non ISO date")
	}
}

func TestDateArithmetic(t *testing.T) {
	t.Parallel()

	in := NewDate(2026, time.January, 30)
	out := in.AddDays(3)
	if out.String() != "2026-02-02" {
		t.Fatalf("AddDays() = %s", out)
	}
	if out.DaysSince(in) != 3 {
		t.Fatalf("DaysSince() = %d", out.DaysSince(in))
	}
	if !in.Before(out) || !out.After(in) {
		t.Fatal("unexpected ordering")
	}

	r := Reservation{CheckInDate: in, CheckOutDate: out}
	if r.Nights() != 3 {
		t.Fatalf("Nights() = %d", r.Nights())
	}
	r.CheckOutDate = in.AddDays(-1)
	if r.Nights() != 0 {
		t.Fatalf("Nights() for inverted stay = %d", r.Nights())
	}
}

func TestDateScan(t *testing.T) {
	t.Parallel()

	want := NewDate(2026, time.March, 5)
	srcs := []any{
		"2026-03-05",
		[]byte("2026-03-05"),
		"2026-03-05 00:00:00+00:00",
		time.Date(2026, time.March, 5, 0, 0, 0, 0, time.UTC),
	}
	for _, src := range srcs {
		var d Date
		if err := d.Scan(src); err != nil {
			t.Fatalf("Scan(%#v) error = %v", src, err)
		}
		if d != want {
			t.Fatalf("Scan(%#v) = %v, want %v", src, d, want)
		}
	}

	var d Date
	if err := d.Scan(42); err == nil {
		t.Fatal("expected error for int source")
	}
}

func TestDateJSON(t *testing.T) {
	t.Parallel()

	raw, err := json.Marshal(struct {
		In Date `json:"in"`
	}{In: NewDate(2026, time.January, 22)})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(raw) != `{"in":"2026-01-22"}` {
		t.Fatalf("Marshal() = %s", raw)
	}

	var out struct {
		In Date `json:"in"`
	}
	if err := json.Unmarshal([]byte(`{"in":"2026-01-25"}`), &out); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if out.In != NewDate(2026, time.January, 25) {
		t.Fatalf("Unmarshal() = %v", out.In)
	}
}
