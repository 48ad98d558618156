package internal

import "github.com/shopspring/decimal"

// StatusTotal is one bucket of a category summary
type StatusTotal struct {
	Status  Status          `json:"status"`
	Label   string          `json:"label"`
	Value   decimal.Decimal `json:"value"`
	Percent float64         `json:"percent"`
}

// CategoryTotals holds one bucket per status, always all five, in AllStatuses order
type CategoryTotals struct {
	Mode    ViewMode        `json:"mode"`
	Buckets []StatusTotal   `json:"buckets"`
	Total   decimal.Decimal `json:"total"`
	Count   int             `json:"requirements"`
}

// Aggregate classifies every requirement and sums its value into the bucket of its status
func Aggregate(reqs []Requirement, today Date, mode ViewMode) CategoryTotals {
	sums := make(map[Status]decimal.Decimal, len(AllStatuses))
	for _, req := range reqs {
		st := Classify(req, today)
		sums[st] = sums[st].Add(ValueOf(req, st, mode))
	}

	total := decimal.Zero
	for _, st := range AllStatuses {
		total = total.Add(sums[st])
	}

	result := CategoryTotals{
		Mode:    mode,
		Buckets: make([]StatusTotal, 0, len(AllStatuses)),
		Total:   total,
		Count:   len(reqs),
	}
	for _, st := range AllStatuses {
		result.Buckets = append(result.Buckets, StatusTotal{
			Status:  st,
			Label:   st.Label(),
			Value:   sums[st],
			Percent: percentOf(sums[st], total),
		})
	}
	return result
}

// Get returns the bucket for a status
func (c CategoryTotals) Get(st Status) StatusTotal {
	for _, b := range c.Buckets {
		if b.Status == st {
			return b
		}
	}
	return StatusTotal{Status: st, Label: st.Label(), Value: decimal.Zero}
}
