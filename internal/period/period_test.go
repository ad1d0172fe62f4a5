package period

import (
	"errors"
	"testing"
	"time"

	"github.com/jamesaloy3/hospitality-outlook/internal/model"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func TestResolveDefaultSeason(t *testing.T) {
	cases := []struct {
		now   time.Time
		label string
	}{
		{date(2025, time.August, 1), "Q2 2025"},
		{date(2025, time.February, 1), "Q4 2024"},
		{date(2025, time.January, 5), "Q3 2024"},
		{date(2025, time.January, 15), "Q4 2024"},
		{date(2025, time.April, 20), "Q1 2025"},
		{date(2025, time.December, 31), "Q3 2025"},
	}
	for _, tc := range cases {
		got, err := Resolve(Input{}, tc.now)
		if err != nil {
			t.Fatalf("Resolve(%s) failed: %v", tc.now, err)
		}
		if got.Label != tc.label {
			t.Errorf("Resolve(%s) = %q, want %q", tc.now, got.Label, tc.label)
		}
		if got.Kind != model.PeriodQuarter {
			t.Errorf("Resolve(%s) kind = %q, want quarter", tc.now, got.Kind)
		}
	}
}

func TestResolveDefaultIsDeterministic(t *testing.T) {
	now := date(2025, time.August, 1)
	first, err := Resolve(Input{}, now)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := Resolve(Input{}, now)
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		if again != first {
			t.Fatalf("resolution not deterministic: %+v vs %+v", again, first)
		}
	}
}

func TestResolveQuarter(t *testing.T) {
	for _, raw := range []string{"Q2", "q2", "2", "Q-2", "q 2"} {
		got, err := Resolve(Input{Quarter: raw, Year: 2025}, date(2025, time.March, 1))
		if err != nil {
			t.Fatalf("Resolve(quarter=%q) failed: %v", raw, err)
		}
		if got.Label != "Q2 2025" || got.Quarter != 2 || got.Year != 2025 {
			t.Errorf("Resolve(quarter=%q) = %+v", raw, got)
		}
	}
}

func TestResolveQuarterInvalid(t *testing.T) {
	if _, err := Resolve(Input{Quarter: "Q5", Year: 2025}, time.Now()); err == nil {
		t.Fatal("expected error for Q5")
	}
	if _, err := Resolve(Input{Quarter: "Q2"}, time.Now()); err == nil {
		t.Fatal("expected error for quarter without year")
	}
}

func TestResolveMonth(t *testing.T) {
	got, err := Resolve(Input{Month: 7, Year: 2025}, time.Now())
	if err != nil {
		t.Fatalf("resolve month: %v", err)
	}
	if got.Label != "2025-07" || got.Kind != model.PeriodMonth {
		t.Errorf("got %+v", got)
	}
}

func TestResolveFreeform(t *testing.T) {
	got, err := Resolve(Input{Text: "  summer 2025 "}, time.Now())
	if err != nil {
		t.Fatalf("resolve text: %v", err)
	}
	if got.Label != "summer 2025" || got.Kind != model.PeriodFreeform {
		t.Errorf("got %+v", got)
	}
}

func TestResolveConflicts(t *testing.T) {
	conflicting := []Input{
		{Quarter: "Q2", Month: 7, Year: 2025},
		{Text: "Q2 2025", Quarter: "Q2", Year: 2025},
		{Text: "2025-07", Month: 7, Year: 2025},
	}
	for _, in := range conflicting {
		_, err := Resolve(in, time.Now())
		if !errors.Is(err, model.ErrConflictingPeriod) {
			t.Errorf("Resolve(%+v): got %v, want ErrConflictingPeriod", in, err)
		}
	}
}

func TestResolveYearAlone(t *testing.T) {
	if _, err := Resolve(Input{Year: 2025}, time.Now()); err == nil {
		t.Fatal("expected error for bare --year")
	}
}

func TestFileStem(t *testing.T) {
	p := model.ReportPeriod{Label: "Q2 2025"}
	if got := FileStem(p); got != "report_Q2_2025" {
		t.Errorf("FileStem = %q", got)
	}
}
