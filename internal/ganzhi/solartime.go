package ganzhi

import (
	"math"
	"time"
)

// EquationOfTime returns the equation-of-time correction in minutes for
// a 1-based day of year, using the common harmonic approximation
//
//	EoT(N) = 9.87 sin(2B) - 7.53 cos(B) - 1.5 sin(B),  B = 2π(N-81)/364
//
// By construction EoT(81) is zero.
func EquationOfTime(dayOfYear int) float64 {
	b := 2 * math.Pi * float64(dayOfYear-81) / 364
	return 9.87*math.Sin(2*b) - 7.53*math.Cos(b) - 1.5*math.Sin(b)
}

// TrueSolarTime corrects a civil timestamp to true solar time at the
// given longitude. The zone's standard meridian is derived from its UTC
// offset at that instant; the total correction is the equation of time
// plus four minutes per degree of longitude offset. The result is not
// clamped: large longitude offsets yield large corrections.
//
// A longitude outside [-180, 180] is out of the valid geo range; the
// timestamp is returned unchanged rather than producing a nonsensical
// correction.
func TrueSolarTime(t time.Time, longitude float64) time.Time {
	if longitude < -180 || longitude > 180 {
		return t
	}

	_, offsetSeconds := t.Zone()
	meridian := 15 * (float64(offsetSeconds) / 3600)

	minutes := EquationOfTime(t.YearDay()) + 4*(longitude-meridian)
	return t.Add(time.Duration(minutes * float64(time.Minute)))
}
