package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWeekday(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"月", "月曜日", false},
		{"月曜日", "月曜日", false},
		{"日", "日曜日", false},
		{"月曜", "", true},
		{"", "", true},
		{"funday", "", true},
	}

	for _, tt := range tests {
		got, err := ParseWeekday(tt.in)
		if tt.wantErr {
			assert.Error(t, err, "input %q", tt.in)
			continue
		}
		require.NoError(t, err, "input %q", tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestTodayTomorrowLabel(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	// 2025-09-01 — понедельник в Токио.
	monday := time.Date(2025, 9, 1, 10, 0, 0, 0, loc)
	assert.Equal(t, "月曜日", TodayLabel(monday, loc))
	assert.Equal(t, "火曜日", TomorrowLabel(monday, loc))

	// Воскресенье переходит на понедельник.
	sunday := time.Date(2025, 9, 7, 23, 59, 0, 0, loc)
	assert.Equal(t, "日曜日", TodayLabel(sunday, loc))
	assert.Equal(t, "月曜日", TomorrowLabel(sunday, loc))

	// Момент задан в UTC: 31 августа 23:00 UTC — уже 1 сентября в Токио.
	utcEvening := time.Date(2025, 8, 31, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, "月曜日", TodayLabel(utcEvening, loc))
}
