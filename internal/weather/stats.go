package weather

// SummaryStats is derived from a DailyRecord list and never stored.
// AverageHigh and AverageLow are nil when no record has a temperature.
type SummaryStats struct {
	Days          int      `json:"days"`
	TotalSnowfall float64  `json:"totalSnowfall"`
	AverageHigh   *float64 `json:"averageHigh"`
	AverageLow    *float64 `json:"averageLow"`
	SnowDays      int      `json:"snowDays"`
}

// Summarize computes the summary statistics of records.
func Summarize(records []DailyRecord) SummaryStats {
	stats := SummaryStats{Days: len(records)}

	var (
		sumHigh, sumLow float64
		nHigh, nLow     int
	)
	for _, r := range records {
		stats.TotalSnowfall += r.Snowfall
		if r.Snowfall > 0 {
			stats.SnowDays++
		}
		if r.TempMax != nil {
			sumHigh += float64(*r.TempMax)
			nHigh++
		}
		if r.TempMin != nil {
			sumLow += float64(*r.TempMin)
			nLow++
		}
	}

	stats.AverageHigh = mean(sumHigh, nHigh)
	stats.AverageLow = mean(sumLow, nLow)
	return stats
}

func mean(sum float64, n int) *float64 {
	if n == 0 {
		return nil
	}
	v := sum / float64(n)
	return &v
}
