// Package lunar implements the Gregorian-to-lunar calendar conversion
// consumed by the ganzhi core. Pillar codes are derived arithmetically
// from the sexagesimal cycle and solar-term boundaries; lunar month and
// day labels come from a packed per-year code table shipped with the
// binary. Nothing here computes lunar positions astronomically.
package lunar

import (
	_ "embed"
	"fmt"
	"strconv"
	"time"

	"github.com/tidwall/gjson"

	"github.com/mingxia/ganzhi-api/internal/ganzhi"
)

//go:embed data/lunar_years.json
var yearData []byte

// Supported conversion range. Pillars and solar terms cover the two
// centuries the term tables cover; lunar labels additionally require a
// year code, so dates past the code table yield empty labels.
const (
	MinYear = 1900
	MaxYear = 2099
)

// baseNewYearJDN is the Julian day number of 1900-01-31, the lunar new
// year of the first coded year.
var baseNewYearJDN = jdn(1900, time.January, 31)

// Calendar converts Gregorian dates. It is immutable after
// construction and safe for concurrent use.
type Calendar struct {
	baseYear int
	codes    []uint32
}

// NewCalendar loads the embedded year-code table.
func NewCalendar() (*Calendar, error) {
	if !gjson.ValidBytes(yearData) {
		return nil, fmt.Errorf("lunar year data is not valid JSON")
	}

	parsed := gjson.ParseBytes(yearData)
	base := parsed.Get("base_year")
	list := parsed.Get("codes")
	if !base.Exists() || !list.IsArray() {
		return nil, fmt.Errorf("lunar year data missing base_year or codes")
	}

	cal := &Calendar{baseYear: int(base.Int())}
	for _, item := range list.Array() {
		code, err := strconv.ParseUint(item.String(), 0, 32)
		if err != nil {
			return nil, fmt.Errorf("parse year code %q: %w", item.String(), err)
		}
		cal.codes = append(cal.codes, uint32(code))
	}
	if len(cal.codes) == 0 {
		return nil, fmt.Errorf("lunar year data has no codes")
	}

	return cal, nil
}

// Convert returns the lunar labels, pillar codes, and solar-term name
// for a Gregorian date. It fails only when the date is outside the
// supported range, wrapping ganzhi.ErrOutOfRange.
func (c *Calendar) Convert(year int, month time.Month, day int) (ganzhi.Conversion, error) {
	if year < MinYear || year > MaxYear {
		return ganzhi.Conversion{}, fmt.Errorf("%w: %04d-%02d-%02d", ganzhi.ErrOutOfRange, year, month, day)
	}

	conv := ganzhi.Conversion{
		YearPillar:  c.yearPillar(year, month, day),
		MonthPillar: c.monthPillar(year, month, day),
		DayPillar:   dayPillar(year, month, day),
		SolarTerm:   TermName(year, month, day),
	}

	if monthLabel, dayLabel, leap, ok := c.lunarLabels(year, month, day); ok {
		conv.LunarMonth = monthLabel
		conv.LunarDay = dayLabel
		conv.LeapMonth = leap
	}

	return conv, nil
}

// dayPillar derives the day's sexagesimal pillar from its Julian day
// number. JDN 2451545 (2000-01-01) is 戊午, index 54, which fixes the
// offset at 49.
func dayPillar(year int, month time.Month, day int) ganzhi.Pillar {
	return ganzhi.SexagesimalPillar(jdn(year, month, day) + 49)
}

// yearPillar derives the year pillar, with the year boundary at 立春
// per the usual chart convention. 1984 is 甲子.
func (c *Calendar) yearPillar(year int, month time.Month, day int) ganzhi.Pillar {
	sy := year
	if beforeLichun(year, month, day) {
		sy--
	}
	return ganzhi.SexagesimalPillar(sy - 4)
}

// monthPillar derives the month pillar: the branch follows the solar
// month (寅 begins at 立春), the stem follows the five-tigers rule
// keyed by the year stem.
func (c *Calendar) monthPillar(year int, month time.Month, day int) ganzhi.Pillar {
	sy := year
	if beforeLichun(year, month, day) {
		sy--
	}
	yearStemIdx := ((sy-4)%10 + 10) % 10

	sm := solarMonth(year, month, day)
	branchIdx := sm % 12

	firstStem := (yearStemIdx%5)*2 + 2 // stem of the 寅 month
	monthsFromYin := (branchIdx - 2 + 12) % 12
	stemIdx := (firstStem + monthsFromYin) % 10

	return ganzhi.Pillar{
		Stem:   ganzhi.Stems[stemIdx],
		Branch: ganzhi.Branches[branchIdx],
	}
}

// lunarLabels walks the packed year codes from the 1900 epoch to find
// the lunar month and day for a date. Dates before the epoch or past
// the coded years report no labels.
func (c *Calendar) lunarLabels(year int, month time.Month, day int) (string, string, bool, bool) {
	offset := jdn(year, month, day) - baseNewYearJDN
	if offset < 0 {
		return "", "", false, false
	}

	ly := c.baseYear
	for ly < c.baseYear+len(c.codes) {
		days := c.lunarYearDays(ly)
		if offset < days {
			break
		}
		offset -= days
		ly++
	}
	if ly >= c.baseYear+len(c.codes) {
		return "", "", false, false
	}

	leap := c.leapMonth(ly)
	lunarMonth := 1
	isLeap := false
	for lunarMonth = 1; lunarMonth <= 12; lunarMonth++ {
		days := c.lunarMonthDays(ly, lunarMonth)
		if offset < days {
			break
		}
		offset -= days

		if lunarMonth == leap {
			days = c.leapMonthDays(ly)
			if offset < days {
				isLeap = true
				break
			}
			offset -= days
		}
	}

	return monthLabel(lunarMonth), dayLabel(offset + 1), isLeap, true
}

// lunarYearDays is the total day count of a coded lunar year: twelve
// months of 29 or 30 days plus the leap month if any.
func (c *Calendar) lunarYearDays(year int) int {
	code := c.codes[year-c.baseYear]
	days := 348 // 12 * 29
	for mask := uint32(0x8000); mask >= 0x10; mask >>= 1 {
		if code&mask != 0 {
			days++
		}
	}
	return days + c.leapMonthDays(year)
}

// lunarMonthDays is the length of a regular lunar month (1-12).
func (c *Calendar) lunarMonthDays(year, month int) int {
	if c.codes[year-c.baseYear]&(0x10000>>uint(month)) != 0 {
		return 30
	}
	return 29
}

// leapMonth returns which month is followed by a leap month, 0 if none.
func (c *Calendar) leapMonth(year int) int {
	return int(c.codes[year-c.baseYear] & 0xf)
}

// leapMonthDays is the length of the year's leap month, 0 if none.
func (c *Calendar) leapMonthDays(year int) int {
	if c.leapMonth(year) == 0 {
		return 0
	}
	if c.codes[year-c.baseYear]&0x10000 != 0 {
		return 30
	}
	return 29
}

var monthLabels = []string{"正", "二", "三", "四", "五", "六", "七", "八", "九", "十", "冬", "腊"}

var dayDigits = []string{"", "一", "二", "三", "四", "五", "六", "七", "八", "九", "十"}

func monthLabel(m int) string {
	if m < 1 || m > 12 {
		return ""
	}
	return monthLabels[m-1] + "月"
}

func dayLabel(d int) string {
	switch d {
	case 10:
		return "初十"
	case 20:
		return "二十"
	case 30:
		return "三十"
	}
	prefixes := []string{"初", "十", "廿"}
	if d < 1 || d > 30 {
		return ""
	}
	return prefixes[(d-1)/10] + dayDigits[d%10]
}

// jdn is the Julian day number of a Gregorian calendar date.
func jdn(year int, month time.Month, day int) int {
	a := (14 - int(month)) / 12
	y := year + 4800 - a
	m := int(month) + 12*a - 3
	return day + (153*m+2)/5 + 365*y + y/4 - y/100 + y/400 - 32045
}
