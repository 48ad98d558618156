package internal

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// PeriodRow holds the per-status values of one calendar period
type PeriodRow struct {
	Period string                     `json:"period"`
	Values map[Status]decimal.Decimal `json:"values"`
	Total  decimal.Decimal            `json:"total"`
}

// Get returns the value for a status, zero if none
func (r PeriodRow) Get(st Status) decimal.Decimal {
	if v, ok := r.Values[st]; ok {
		return v
	}
	return decimal.Zero
}

// Series is the ordered time series produced by GroupByPeriod
type Series struct {
	Granularity Granularity `json:"granularity"`
	Mode        ViewMode    `json:"mode"`
	Rows        []PeriodRow `json:"rows"`
}

// Periods returns the period keys in order
func (s Series) Periods() []string {
	keys := make([]string, 0, len(s.Rows))
	for _, r := range s.Rows {
		keys = append(keys, r.Period)
	}
	return keys
}

// PeriodKey returns the bucket key for a date.
// Monthly keys are YYYY-MM. Weekly keys are YYYY-Www where the week is
// ceil((dayOfYear + weekdayOfJan1 + 1) / 7), dayOfYear counting from 0 and
// weekdays from Sunday = 0. This is not ISO-8601 week numbering; exported
// reports depend on it, so keep it as is.
func PeriodKey(d Date, granularity Granularity) (string, error) {
	t, err := d.Time()
	if err != nil {
		return "", err
	}
	switch granularity {
	case Weekly:
		days := t.YearDay() - 1
		jan1 := t.AddDate(0, 0, -days)
		week := (days + int(jan1.Weekday()) + 1 + 6) / 7
		return fmt.Sprintf("%04d-W%02d", t.Year(), week), nil
	default:
		return t.Format("2006-01"), nil
	}
}

// GroupByPeriod buckets requirements by registration date. Only periods that
// contain at least one requirement appear, sorted ascending by key.
func GroupByPeriod(reqs []Requirement, today Date, mode ViewMode, granularity Granularity) (Series, error) {
	series := Series{Granularity: granularity, Mode: mode, Rows: []PeriodRow{}}

	grouped := make(map[string]map[Status]decimal.Decimal)
	for _, req := range reqs {
		key, err := PeriodKey(req.RegisteredDate, granularity)
		if err != nil {
			return Series{}, fmt.Errorf("requirement %d registration date: %w", req.ID, err)
		}
		if grouped[key] == nil {
			grouped[key] = make(map[Status]decimal.Decimal, len(AllStatuses))
			for _, st := range AllStatuses {
				grouped[key][st] = decimal.Zero
			}
		}
		st := Classify(req, today)
		grouped[key][st] = grouped[key][st].Add(ValueOf(req, st, mode))
	}

	keys := make([]string, 0, len(grouped))
	for k := range grouped {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		total := decimal.Zero
		for _, st := range AllStatuses {
			total = total.Add(grouped[k][st])
		}
		series.Rows = append(series.Rows, PeriodRow{Period: k, Values: grouped[k], Total: total})
	}
	return series, nil
}
