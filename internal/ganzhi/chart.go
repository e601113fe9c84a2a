package ganzhi

import (
	"time"
)

// Conversion is the result of the external Gregorian-to-lunar
// conversion collaborator for a single date.
type Conversion struct {
	LunarMonth string // e.g. "正月"
	LunarDay   string // e.g. "初一"
	LeapMonth  bool
	YearPillar Pillar
	MonthPillar Pillar
	DayPillar  Pillar
	SolarTerm  string // empty when the date is not a solar term
}

// Converter supplies year/month/day pillars and lunar labels for a
// Gregorian date. Implementations fail only on out-of-range dates, in
// which case the error wraps ErrOutOfRange.
type Converter interface {
	Convert(year int, month time.Month, day int) (Conversion, error)
}

// Moment is the immutable input to a chart derivation: a civil date and
// time in a timezone, plus the geographic position used for the
// optional true-solar-time correction.
type Moment struct {
	Year      int
	Month     time.Month
	Day       int
	Hour      int
	Minute    int
	HasTime   bool
	Location  *time.Location
	Longitude float64
	Latitude  float64
	TrueSolar bool
}

// geoValid reports whether the coordinates are inside the valid range.
// Invalid coordinates do not fail a derivation; they only disable the
// solar-time correction.
func (m Moment) geoValid() bool {
	return m.Longitude >= -180 && m.Longitude <= 180 &&
		m.Latitude >= -90 && m.Latitude <= 90
}

// Chart is a full derivation for one moment.
type Chart struct {
	Year   Pillar `json:"year"`
	Month  Pillar `json:"month"`
	Day    Pillar `json:"day"`
	Hour   Pillar `json:"hour,omitempty"`
	HasHour bool  `json:"has_hour"`

	LunarMonth string `json:"lunar_month,omitempty"`
	LunarDay   string `json:"lunar_day,omitempty"`
	LeapMonth  bool   `json:"leap_month,omitempty"`
	SolarTerm  string `json:"solar_term,omitempty"`

	Elements Distribution `json:"elements"`
	ShenSha  []string     `json:"shensha"`

	// Derived is the timestamp the pillars were read from: the true
	// solar time when the correction applied, otherwise the civil time.
	Derived time.Time `json:"derived_time"`
}

// BuildChart derives the four pillars, element distribution, and
// shensha set for a moment. The solar-time correction is applied before
// any pillar derivation when requested and the coordinates are valid,
// so a correction across midnight shifts the day pillar with it.
func BuildChart(conv Converter, m Moment) (*Chart, error) {
	if m.Year == 0 || m.Day == 0 {
		return nil, ErrMissingInput
	}

	loc := m.Location
	if loc == nil {
		loc = time.UTC
	}

	hour, minute := m.Hour, m.Minute
	if !m.HasTime {
		// Pillar derivation needs a concrete instant; noon keeps the
		// date stable under the solar correction.
		hour, minute = 12, 0
	}

	t := time.Date(m.Year, m.Month, m.Day, hour, minute, 0, 0, loc)
	if m.TrueSolar && m.geoValid() {
		t = TrueSolarTime(t, m.Longitude)
	}

	c, err := conv.Convert(t.Year(), t.Month(), t.Day())
	if err != nil {
		return nil, err
	}

	chart := &Chart{
		Year:       c.YearPillar,
		Month:      c.MonthPillar,
		Day:        c.DayPillar,
		LunarMonth: c.LunarMonth,
		LunarDay:   c.LunarDay,
		LeapMonth:  c.LeapMonth,
		SolarTerm:  c.SolarTerm,
		Derived:    t,
	}

	if m.HasTime {
		chart.Hour = HourPillar(c.DayPillar.Stem, t.Hour())
		chart.HasHour = true
	}

	chart.Elements = ElementDistribution(
		[]Pillar{chart.Year, chart.Month, chart.Day, chart.Hour},
		DefaultWeights,
	)
	chart.ShenSha = ShenSha(chart.Year, chart.Month, chart.Day, chart.Hour)

	return chart, nil
}
