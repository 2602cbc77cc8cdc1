package celestial

import (
	"math"
	"testing"
	"time"
)

func TestSunEquinoxNoon(t *testing.T) {
	noon := time.Date(2024, time.March, 20, 12, 0, 0, 0, time.UTC)
	dir := SunDirection(noon, 0, 0)
	if e := Elevation(dir); e < 80 {
		t.Errorf("elevation at equinox noon on the equator = %.2f, want > 80", e)
	}
	if l := dir.Len(); math.Abs(float64(l)-1) > 1e-5 {
		t.Errorf("direction not normalized: %v", l)
	}
}

func TestSunEquinoxMidnight(t *testing.T) {
	midnight := time.Date(2024, time.March, 20, 0, 0, 0, 0, time.UTC)
	if e := Elevation(SunDirection(midnight, 0, 0)); e > -60 {
		t.Errorf("elevation at midnight = %.2f, want < -60", e)
	}
}

func TestSunRisesInTheEast(t *testing.T) {
	morning := time.Date(2024, time.March, 20, 7, 0, 0, 0, time.UTC)
	dir := SunDirection(morning, 0, 0)
	if dir[0] <= 0 {
		t.Errorf("morning sun east component = %v, want positive", dir[0])
	}
	evening := time.Date(2024, time.March, 20, 17, 0, 0, 0, time.UTC)
	if SunDirection(evening, 0, 0)[0] >= 0 {
		t.Error("evening sun should be in the west")
	}
}

func TestSunLongitudeShift(t *testing.T) {
	// Noon UTC is close to midnight on the antimeridian.
	noon := time.Date(2024, time.June, 21, 12, 0, 0, 0, time.UTC)
	if e := Elevation(SunDirection(noon, 0, 180)); e > -60 {
		t.Errorf("elevation on the antimeridian = %.2f", e)
	}
}

func TestSunSolsticeNorthernSky(t *testing.T) {
	noon := time.Date(2024, time.June, 21, 12, 0, 0, 0, time.UTC)
	dir := SunDirection(noon, 0, 0)
	if dir[2] <= 0 {
		t.Errorf("June sun seen from the equator should be north, got %v", dir)
	}
	if e := Elevation(dir); e < 60 || e > 70 {
		t.Errorf("June solstice noon elevation = %.2f, want about 66.5", e)
	}
}

func TestMoonDirection(t *testing.T) {
	ts := time.Date(2024, time.March, 25, 0, 0, 0, 0, time.UTC)
	dir := MoonDirection(ts, 45, 10)
	if l := dir.Len(); math.Abs(float64(l)-1) > 1e-5 {
		t.Errorf("moon direction not normalized: %v", l)
	}
	// Near full moon the moon is roughly opposite the sun.
	sun := SunDirection(ts, 45, 10)
	if dot := dir.Dot(sun); dot > -0.8 {
		t.Errorf("moon and sun dot = %.3f, want close to -1 at full moon", dot)
	}
}
