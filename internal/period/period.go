// Package period turns report-request input into a canonical reporting
// period. Resolution is a pure function of its inputs and the supplied
// current date; no clocks or external calls.
package period

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jamesaloy3/hospitality-outlook/internal/model"
)

// Input collects the three mutually exclusive period forms a caller may
// supply. Zero values mean "not supplied".
type Input struct {
	Text    string // free-form, e.g. "Q2 2025" or "summer 2025"
	Quarter string // "Q1".."Q4", also accepts "1", "q2", "Q-3"
	Month   int    // 1-12, paired with Year
	Year    int    // paired with Quarter or Month
}

// season is one earnings-season window. Opens names the month/day the window
// opens; the season reports the given fiscal quarter, with yearOffset applied
// to the calendar year (Q4 results are reported early the following year).
type season struct {
	openMonth  time.Month
	openDay    int
	quarter    int
	yearOffset int
}

// Earnings seasons open mid-January (prior-year Q4), mid-April (Q1),
// mid-July (Q2), and mid-October (Q3).
var seasons = []season{
	{time.January, 15, 4, -1},
	{time.April, 15, 1, 0},
	{time.July, 15, 2, 0},
	{time.October, 15, 3, 0},
}

// Resolve produces the canonical ReportPeriod for in at the given current
// date. Supplying more than one of the three forms is a conflict; supplying
// none defaults to the earnings season whose window most recently opened.
func Resolve(in Input, now time.Time) (model.ReportPeriod, error) {
	forms := 0
	if strings.TrimSpace(in.Text) != "" {
		forms++
	}
	if strings.TrimSpace(in.Quarter) != "" {
		forms++
	}
	if in.Month != 0 {
		forms++
	}
	if forms > 1 {
		return model.ReportPeriod{}, fmt.Errorf("%w: supply only one of --period, --quarter/--year, --month/--year", model.ErrConflictingPeriod)
	}

	switch {
	case strings.TrimSpace(in.Text) != "":
		return model.ReportPeriod{
			Kind:  model.PeriodFreeform,
			Label: strings.TrimSpace(in.Text),
		}, nil

	case strings.TrimSpace(in.Quarter) != "":
		q, err := parseQuarter(in.Quarter)
		if err != nil {
			return model.ReportPeriod{}, err
		}
		if in.Year == 0 {
			return model.ReportPeriod{}, fmt.Errorf("quarter input requires --year")
		}
		return quarterPeriod(q, in.Year), nil

	case in.Month != 0:
		if in.Month < 1 || in.Month > 12 {
			return model.ReportPeriod{}, fmt.Errorf("month must be 1-12, got %d", in.Month)
		}
		if in.Year == 0 {
			return model.ReportPeriod{}, fmt.Errorf("month input requires --year")
		}
		return model.ReportPeriod{
			Kind:  model.PeriodMonth,
			Year:  in.Year,
			Month: in.Month,
			Label: fmt.Sprintf("%04d-%02d", in.Year, in.Month),
		}, nil

	case in.Year != 0:
		return model.ReportPeriod{}, fmt.Errorf("--year requires --quarter or --month")
	}

	q, y := nearestSeason(now)
	return quarterPeriod(q, y), nil
}

// nearestSeason picks the earnings season whose window most recently opened
// relative to now. Dates before the first window of the year fall back to the
// prior year's final season (Q3, opened mid-October).
func nearestSeason(now time.Time) (quarter, year int) {
	best := -1
	for i, s := range seasons {
		open := time.Date(now.Year(), s.openMonth, s.openDay, 0, 0, 0, 0, now.Location())
		if !open.After(now) {
			best = i
		}
	}
	if best < 0 {
		return 3, now.Year() - 1
	}
	s := seasons[best]
	return s.quarter, now.Year() + s.yearOffset
}

func quarterPeriod(q, year int) model.ReportPeriod {
	return model.ReportPeriod{
		Kind:    model.PeriodQuarter,
		Year:    year,
		Quarter: q,
		Label:   fmt.Sprintf("Q%d %d", q, year),
	}
}

// parseQuarter normalizes quarter spellings like "2", "q2", "Q-2", "Q 2".
func parseQuarter(raw string) (int, error) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	s = strings.NewReplacer(" ", "", "-", "").Replace(s)
	s = strings.TrimPrefix(s, "Q")
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > 4 {
		return 0, fmt.Errorf("invalid quarter %q (want Q1-Q4)", raw)
	}
	return n, nil
}

// FileStem converts a period label into a filesystem-safe filename stem.
func FileStem(p model.ReportPeriod) string {
	stem := strings.NewReplacer(" ", "_", ":", "-", "/", "-").Replace(p.Label)
	return "report_" + stem
}
