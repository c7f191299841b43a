package sources

import (
	"testing"
	"time"
)

func TestParseLocalDate(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		layouts []string
		want    time.Time
		ok      bool
	}{
		{"paper date and time", "2025年10月22日 05:00", paperDateLayouts, time.Date(2025, 10, 22, 5, 0, 0, 0, chinaStandardTime), true},
		{"paper date without padding", "2025年1月2日", paperDateLayouts, time.Date(2025, 1, 2, 0, 0, 0, 0, chinaStandardTime), true},
		{"paper date with surrounding space", "\n  2025年10月22日  \n", paperDateLayouts, time.Date(2025, 10, 22, 0, 0, 0, 0, chinaStandardTime), true},
		{"list date with weekday", "2025-10-21 星期二", listDateLayouts, time.Date(2025, 10, 21, 0, 0, 0, 0, chinaStandardTime), true},
		{"empty", "   ", listDateLayouts, time.Time{}, false},
		{"garbage", "今日节目", listDateLayouts, time.Time{}, false},
		{"impossible date", "2025-02-30", listDateLayouts, time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseLocalDate(tt.value, chinaStandardTime, tt.layouts)
			if ok != tt.ok {
				t.Fatalf("Expected ok=%v, got %v", tt.ok, ok)
			}
			if !got.Equal(tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestAtHour(t *testing.T) {
	// 23:30 UTC is already the next day in Beijing.
	got := atHour(time.Date(2025, 10, 21, 23, 30, 0, 0, time.UTC), chinaStandardTime, broadcastHour)
	want := time.Date(2025, 10, 22, 19, 0, 0, 0, chinaStandardTime)

	if !got.Equal(want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}
