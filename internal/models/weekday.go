package models

import (
	"fmt"
	"time"
)

// Weekday подписи дней недели, используемые и в БД, и в сообщениях.
// Порядок отображения — с понедельника, как в японском календаре расписаний.
var Weekdays = []string{"月曜日", "火曜日", "水曜日", "木曜日", "金曜日", "土曜日", "日曜日"}

// WeekdayLabel возвращает японскую подпись для time.Weekday.
func WeekdayLabel(wd time.Weekday) string {
	// time.Weekday нумеруется с воскресенья, список — с понедельника.
	return Weekdays[(int(wd)+6)%7]
}

// ParseWeekday принимает короткую форму ("月") или полную ("月曜日")
// и возвращает каноническую подпись дня недели.
func ParseWeekday(s string) (string, error) {
	for _, day := range Weekdays {
		if s == day || s+"曜日" == day {
			return day, nil
		}
	}
	return "", fmt.Errorf("unknown weekday: %q", s)
}

// TodayLabel возвращает подпись сегодняшнего дня в заданной зоне.
func TodayLabel(now time.Time, loc *time.Location) string {
	return WeekdayLabel(now.In(loc).Weekday())
}

// TomorrowLabel возвращает подпись завтрашнего дня в заданной зоне.
func TomorrowLabel(now time.Time, loc *time.Location) string {
	return WeekdayLabel(now.In(loc).AddDate(0, 0, 1).Weekday())
}
