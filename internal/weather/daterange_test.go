package weather

import (
	"encoding/json"
	"testing"
	"time"
)

func TestDateRangeFor(t *testing.T) {
	tz := paris(t)

	tests := []struct {
		name      string
		now       time.Time
		window    Window
		wantStart string
		wantEnd   string
		wantDays  int
	}{
		{
			name:      "seven days",
			now:       time.Date(2025, 1, 15, 10, 0, 0, 0, tz),
			window:    Window7Days,
			wantStart: "2025-01-08",
			wantEnd:   "2025-01-15",
			wantDays:  8,
		},
		{
			name:      "fourteen days",
			now:       time.Date(2025, 1, 15, 10, 0, 0, 0, tz),
			window:    Window14Days,
			wantStart: "2025-01-01",
			wantEnd:   "2025-01-15",
			wantDays:  15,
		},
		{
			// 23:30 UTC is already the next day in Paris.
			name:      "utc evening is next day in paris",
			now:       time.Date(2025, 1, 14, 23, 30, 0, 0, time.UTC),
			window:    Window7Days,
			wantStart: "2025-01-08",
			wantEnd:   "2025-01-15",
			wantDays:  8,
		},
		{
			name:      "across spring dst change",
			now:       time.Date(2025, 4, 2, 12, 0, 0, 0, tz),
			window:    Window14Days,
			wantStart: "2025-03-19",
			wantEnd:   "2025-04-02",
			wantDays:  15,
		},
		{
			name:      "across year boundary",
			now:       time.Date(2025, 1, 3, 8, 0, 0, 0, tz),
			window:    Window7Days,
			wantStart: "2024-12-27",
			wantEnd:   "2025-01-03",
			wantDays:  8,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := DateRangeFor(tt.now, tt.window, tz)
			if r.StartDate() != tt.wantStart || r.EndDate() != tt.wantEnd {
				t.Errorf("range = %s..%s, want %s..%s", r.StartDate(), r.EndDate(), tt.wantStart, tt.wantEnd)
			}
			if r.Days() != tt.wantDays {
				t.Errorf("Days() = %d, want %d", r.Days(), tt.wantDays)
			}
		})
	}
}

func TestDateRange_MarshalJSON(t *testing.T) {
	tz := paris(t)
	r := DateRangeFor(time.Date(2025, 1, 15, 10, 0, 0, 0, tz), Window7Days, tz)

	b, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"start":"2025-01-08","end":"2025-01-15"}` {
		t.Errorf("got %s", b)
	}
}

func TestParseWindow(t *testing.T) {
	tests := []struct {
		in      string
		want    Window
		wantErr bool
	}{
		{"7", Window7Days, false},
		{"14", Window14Days, false},
		{"14days", Window14Days, false},
		{"10", 0, true},
		{"", 0, true},
		{"seven", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseWindow(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseWindow(%q) = %d, %v", tt.in, got, err)
		}
	}
}
