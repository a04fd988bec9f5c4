package weather

import (
	"fmt"
	"time"
	_ "time/tzdata" // Europe/Paris must resolve on hosts without zoneinfo
)

// DefaultTimezone is the fixed zone used for all calendar-day arithmetic.
const DefaultTimezone = "Europe/Paris"

// LoadTimezone resolves an IANA zone name, defaulting to Europe/Paris.
func LoadTimezone(name string) (*time.Location, error) {
	if name == "" {
		name = DefaultTimezone
	}
	tz, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", name, err)
	}
	return tz, nil
}

// DateRangeFor returns the inclusive archive range for a lookback window:
// End is today's date in tz, Start is End minus w calendar days.
func DateRangeFor(now time.Time, w Window, tz *time.Location) DateRange {
	local := now.In(tz)
	end := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, tz)
	return DateRange{
		Start: end.AddDate(0, 0, -int(w)),
		End:   end,
	}
}

// StartDate formats the range start as YYYY-MM-DD.
func (r DateRange) StartDate() string { return r.Start.Format(DateLayout) }

// EndDate formats the range end as YYYY-MM-DD.
func (r DateRange) EndDate() string { return r.End.Format(DateLayout) }

// MarshalJSON renders the range as calendar dates.
func (r DateRange) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf(`{"start":%q,"end":%q}`, r.StartDate(), r.EndDate())), nil
}
