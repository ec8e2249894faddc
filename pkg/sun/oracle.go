// Package sun wraps an ephemeris library behind the contract this
// pipeline needs: sunrise/sunset/golden-hour/dawn/dusk times plus
// azimuth/altitude at a target moment, with azimuth already converted
// to compass bearing.
package sun

import (
	"fmt"
	"time"

	"github.com/sixdouglas/suncalc"
)

// Mode selects which twilight event the pipeline is centered on.
type Mode string

const (
	ModeSunset  Mode = "sunset"
	ModeSunrise Mode = "sunrise"
)

// Data mirrors the SunData type from the data model: sunrise/sunset
// bracket the day, golden hour bounds the target window, and
// azimuth/altitude are evaluated at TargetTime.
type Data struct {
	Mode             Mode
	TargetTime       time.Time
	SunriseTime      time.Time
	SunsetTime       time.Time
	GoldenHourStart  time.Time
	GoldenHourEnd    time.Time
	SolarNoon        time.Time
	Dawn             time.Time
	Dusk             time.Time
	AzimuthDeg       float64 // compass, 0=north, clockwise, [0, 360)
	AltitudeDeg      float64
}

// At computes SunData for the given local-noon date at (lat, lng) and
// mode. date's time-of-day component is ignored; only the calendar day
// matters to the underlying ephemeris.
func At(date time.Time, lat, lng float64, mode Mode) (Data, error) {
	if mode != ModeSunset && mode != ModeSunrise {
		return Data{}, fmt.Errorf("sun: unknown mode %q", mode)
	}

	times := suncalc.GetTimes(date, lat, lng)

	d := Data{
		Mode:        mode,
		SunriseTime: times[suncalc.Sunrise].Value,
		SunsetTime:  times[suncalc.Sunset].Value,
		SolarNoon:   times[suncalc.SolarNoon].Value,
		Dawn:        times[suncalc.Dawn].Value,
		Dusk:        times[suncalc.Dusk].Value,
	}

	switch mode {
	case ModeSunset:
		d.TargetTime = d.SunsetTime
		d.GoldenHourStart = times[suncalc.GoldenHour].Value
		d.GoldenHourEnd = d.SunsetTime
	case ModeSunrise:
		d.TargetTime = d.SunriseTime
		d.GoldenHourStart = d.SunriseTime
		d.GoldenHourEnd = times[suncalc.GoldenHourEnd].Value
	}

	pos := suncalc.GetPosition(d.TargetTime, lat, lng)
	d.AzimuthDeg = southRefToCompass(pos.Azimuth)
	d.AltitudeDeg = pos.Altitude * (180.0 / 3.141592653589793)

	return d, nil
}

// southRefToCompass converts an azimuth in radians measured from south,
// increasing towards west (suncalc.js convention) to compass degrees in
// [0, 360), 0=north, increasing clockwise.
func southRefToCompass(azimuthRad float64) float64 {
	deg := azimuthRad * (180.0 / 3.141592653589793)
	compass := deg + 180.0
	for compass < 0 {
		compass += 360.0
	}
	for compass >= 360.0 {
		compass -= 360.0
	}
	return compass
}
