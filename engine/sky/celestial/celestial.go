// Package celestial derives sun and moon directions in the observer's local frame from date, time and position.
// The local frame is x east, y up, z north.
package celestial

import (
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/soniakeys/meeus/v3/julian"
	"github.com/soniakeys/meeus/v3/moonposition"
	"github.com/soniakeys/meeus/v3/nutation"
	"github.com/soniakeys/meeus/v3/sidereal"
	"github.com/soniakeys/meeus/v3/solar"
)

// SunDirection returns the unit vector towards the sun.
//
// Parameters:
//   - t: the instant, converted to UTC
//   - latitude: observer latitude in degrees, north positive
//   - longitude: observer longitude in degrees, east positive
//
// Returns:
//   - mgl32.Vec3: the direction in the local east-up-north frame
func SunDirection(t time.Time, latitude, longitude float64) mgl32.Vec3 {
	jd := julian.TimeToJD(t.UTC())
	ra, dec := solar.ApparentEquatorial(jd)
	return localDirection(jd, ra.Rad(), dec.Rad(), latitude, longitude)
}

// MoonDirection returns the unit vector towards the moon. Parallax is ignored.
//
// Parameters:
//   - t: the instant, converted to UTC
//   - latitude: observer latitude in degrees, north positive
//   - longitude: observer longitude in degrees, east positive
//
// Returns:
//   - mgl32.Vec3: the direction in the local east-up-north frame
func MoonDirection(t time.Time, latitude, longitude float64) mgl32.Vec3 {
	jd := julian.TimeToJD(t.UTC())
	lon, lat, _ := moonposition.Position(jd)
	eps := nutation.MeanObliquity(jd)

	// ecliptic to equatorial
	sinEps, cosEps := eps.Sin(), eps.Cos()
	ra := math.Atan2(lon.Sin()*cosEps-math.Tan(lat.Rad())*sinEps, lon.Cos())
	dec := math.Asin(lat.Sin()*cosEps + lat.Cos()*sinEps*lon.Sin())
	return localDirection(jd, ra, dec, latitude, longitude)
}

// Elevation returns the angle of dir above the horizon in degrees.
func Elevation(dir mgl32.Vec3) float64 {
	l := dir.Len()
	if l == 0 {
		return 0
	}
	return math.Asin(float64(mgl32.Clamp(dir[1]/l, -1, 1))) * 180 / math.Pi
}

func localDirection(jd, ra, dec, latitude, longitude float64) mgl32.Vec3 {
	gast := sidereal.Apparent(jd).Angle().Rad()
	lst := gast + longitude*math.Pi/180
	h := lst - ra
	phi := latitude * math.Pi / 180

	sinH, cosH := math.Sincos(h)
	sinDec, cosDec := math.Sincos(dec)
	sinPhi, cosPhi := math.Sincos(phi)

	east := -cosDec * sinH
	up := sinPhi*sinDec + cosPhi*cosDec*cosH
	north := cosPhi*sinDec - sinPhi*cosDec*cosH
	return mgl32.Vec3{float32(east), float32(up), float32(north)}.Normalize()
}
