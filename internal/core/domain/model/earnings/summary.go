package earnings

import (
	"sort"
	"time"

	"dispatch/internal/core/domain/model/kernel"
)

// Summary is a filtered view of one driver's ledger.
type Summary struct {
	Period              Period
	Records             []*Record
	TotalEarnings       kernel.Money
	TotalOrderValue     kernel.Money
	Deliveries          int
	AverageDeliveryTime float64
}

// Summarize filters records to the period ending at now and totals them.
// Records are returned newest first. Filtering happens at read time, so a
// narrower period is always a subset of a wider one.
func Summarize(records []*Record, period Period, now time.Time) Summary {
	s := Summary{Period: period, Records: make([]*Record, 0, len(records))}

	var minutes float64
	for _, r := range records {
		if !period.Contains(r.Timestamp(), now) {
			continue
		}
		s.Records = append(s.Records, r)
		s.TotalEarnings = s.TotalEarnings.Add(r.Commission())
		s.TotalOrderValue = s.TotalOrderValue.Add(r.OrderValue())
		minutes += r.DeliveryMinutes()
	}
	s.Deliveries = len(s.Records)
	if s.Deliveries > 0 {
		s.AverageDeliveryTime = minutes / float64(s.Deliveries)
	}

	sort.SliceStable(s.Records, func(i, j int) bool {
		return s.Records[i].Timestamp().After(s.Records[j].Timestamp())
	})
	return s
}
