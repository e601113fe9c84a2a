package ganzhi

import (
	"math"
	"testing"
	"time"
)

func TestEquationOfTime_Day81(t *testing.T) {
	// B = 0 on day 81: both sine terms vanish and only -7.53 cos(0)
	// remains, matching the real equation of time in late March
	// (about -7 minutes, near its spring zero crossing).
	if got := EquationOfTime(81); math.Abs(got+7.53) > 1e-9 {
		t.Errorf("EquationOfTime(81) = %v, want -7.53", got)
	}
}

func TestTrueSolarTime_OnStandardMeridian(t *testing.T) {
	// On the zone's standard meridian the longitude term is zero, so
	// the total correction is just the equation of time and stays
	// within its ±17 minute envelope all year.
	loc := time.FixedZone("UTC+8", 8*3600)
	for day := 1; day <= 365; day += 30 {
		civil := time.Date(2024, time.January, 1, 12, 0, 0, 0, loc).AddDate(0, 0, day-1)
		corrected := TrueSolarTime(civil, 120) // 120°E is the UTC+8 meridian
		delta := corrected.Sub(civil).Minutes()
		if math.Abs(delta) > 17 {
			t.Errorf("day %d: correction on meridian = %.2f min, want within ±17", day, delta)
		}
	}
}

func TestTrueSolarTime_LongitudeOffset(t *testing.T) {
	loc := time.FixedZone("UTC+8", 8*3600)
	civil := time.Date(2024, time.June, 1, 12, 0, 0, 0, loc)

	// Four minutes per degree: 116.4°E (Beijing) sits 3.6° west of the
	// 120°E meridian, so the longitude term is -14.4 minutes.
	corrected := TrueSolarTime(civil, 116.4)
	onMeridian := TrueSolarTime(civil, 120)
	delta := corrected.Sub(onMeridian).Minutes()
	if math.Abs(delta+14.4) > 0.01 {
		t.Errorf("longitude term = %.3f min, want -14.4", delta)
	}
}

func TestTrueSolarTime_NoClamping(t *testing.T) {
	// Extreme longitude offsets must not be rejected or clamped.
	loc := time.FixedZone("UTC+0", 0)
	civil := time.Date(2024, time.March, 1, 12, 0, 0, 0, loc)
	corrected := TrueSolarTime(civil, 179)
	if d := corrected.Sub(civil).Minutes(); d < 60 {
		t.Errorf("correction at 179°E in UTC+0 = %.1f min, want a large positive value", d)
	}
}

func TestTrueSolarTime_InvalidLongitudeSkipsCorrection(t *testing.T) {
	loc := time.FixedZone("UTC+8", 8*3600)
	civil := time.Date(2024, time.June, 1, 12, 0, 0, 0, loc)
	if got := TrueSolarTime(civil, 181); !got.Equal(civil) {
		t.Errorf("TrueSolarTime with longitude 181 = %v, want unchanged %v", got, civil)
	}
	if got := TrueSolarTime(civil, -200); !got.Equal(civil) {
		t.Errorf("TrueSolarTime with longitude -200 = %v, want unchanged %v", got, civil)
	}
}
