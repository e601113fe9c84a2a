package lunar

import (
	"math"
	"time"
)

// termNames lists the 24 solar terms in calendar order, two per
// Gregorian month starting with January: the minor term (节) first,
// then the major term (中气).
var termNames = [24]string{
	"小寒", "大寒", "立春", "雨水", "惊蛰", "春分",
	"清明", "谷雨", "立夏", "小满", "芒种", "夏至",
	"小暑", "大暑", "立秋", "处暑", "白露", "秋分",
	"寒露", "霜降", "立冬", "小雪", "大雪", "冬至",
}

// Century constants for the classic solar-term day approximation
//
//	day = floor(y*0.2422 + C) - floor((y-1)/4)
//
// with y the two-digit year. One table per supported century; this is
// a fixed-table approximation, not an astronomical computation.
var (
	termC1900 = [24]float64{
		6.11, 20.84, 4.6295, 19.4599, 6.3926, 21.4155,
		5.59, 20.888, 6.318, 21.86, 6.5, 22.2,
		7.928, 23.65, 8.35, 23.95, 8.44, 23.822,
		9.098, 24.218, 8.218, 23.08, 7.9, 22.6,
	}
	termC2000 = [24]float64{
		5.4055, 20.12, 3.87, 18.73, 5.63, 20.646,
		4.81, 20.1, 5.52, 21.04, 5.678, 21.37,
		7.108, 22.83, 7.5, 23.13, 7.646, 23.042,
		8.318, 23.438, 7.438, 22.36, 7.18, 21.94,
	}
)

// termDay returns the day of month on which the given term (0-23)
// falls in the given year.
func termDay(year, term int) int {
	c := termC2000
	if year < 2000 {
		c = termC1900
	}
	y := year % 100
	return int(math.Floor(float64(y)*0.2422+c[term])) -
		int(math.Floor(float64(y-1)/4))
}

// TermName returns the solar-term name falling exactly on the given
// date, or the empty string.
func TermName(year int, month time.Month, day int) string {
	minor := 2 * (int(month) - 1)
	if day == termDay(year, minor) {
		return termNames[minor]
	}
	if day == termDay(year, minor+1) {
		return termNames[minor+1]
	}
	return ""
}

// solarMonth returns the 1-12 month number of the solar (term-based)
// month containing the date: the month advances at its minor term, so
// early February before 立春 still belongs to solar month 1.
func solarMonth(year int, month time.Month, day int) int {
	m := int(month)
	if day < termDay(year, 2*(m-1)) {
		m--
		if m == 0 {
			m = 12
		}
	}
	return m
}

// beforeLichun reports whether the date falls before 立春, i.e. still
// inside the previous sexagesimal year.
func beforeLichun(year int, month time.Month, day int) bool {
	if month > time.February {
		return false
	}
	if month == time.January {
		return true
	}
	return day < termDay(year, 2) // 立春
}
