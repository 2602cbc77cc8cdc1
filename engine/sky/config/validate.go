package config

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/Carmen-Shannon/oxy-sky/engine/sky/quality"
	"github.com/go-gl/mathgl/mgl32"
)

// ErrInvalidDateTime is returned when a body's DateTime is not RFC 3339.
var ErrInvalidDateTime = errors.New("config: invalid date/time")

// Warning describes a field that Validate had to recover.
type Warning struct {
	Field   string
	Message string
}

func (w Warning) String() string {
	return w.Field + ": " + w.Message
}

// ParseDateTime parses a body date/time in RFC 3339 form.
//
// Parameters:
//   - s: the date/time string, e.g. "2024-03-20T12:00:00Z"
//
// Returns:
//   - time.Time: the parsed instant in UTC
//   - error: an error wrapping ErrInvalidDateTime if s is malformed
func ParseDateTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDateTime, s)
	}
	return t.UTC(), nil
}

// Validate clamps out-of-range numeric fields in place and reports every recovery.
// Disabled layers and bodies are not checked.
// Malformed date/time strings are reported but left untouched; the body keeps its last resolved direction.
//
// Returns:
//   - []Warning: one entry per recovered field, empty when the configuration is valid
func (c *Config) Validate() []Warning {
	v := &validator{}

	v.clamp("planet.radius", &c.Planet.Radius, 1, 1e6)
	v.clamp("planet.atmosphereThickness", &c.Planet.AtmosphereThickness, 0.1, 1e4)
	v.clampVec("planet.groundAlbedo", &c.Planet.GroundAlbedo, 0, 1)
	v.clamp("lightPollution.intensity", &c.LightPollution.Intensity, 0, 1e6)
	v.clampVec("lightPollution.color", &c.LightPollution.Color, 0, 1e6)

	if !c.Quality.Valid() {
		v.warn("quality", fmt.Sprintf("unknown tier %v, using %v", c.Quality, quality.Potato))
		c.Quality = quality.Potato
	}
	if !c.StarQuality.Valid() {
		v.warn("starQuality", fmt.Sprintf("unknown tier %v, using %v", c.StarQuality, quality.StarLow))
		c.StarQuality = quality.StarLow
	}

	s := &c.Samples
	for _, f := range []struct {
		name string
		p    *int32
	}{
		{"samples.transmittance", &s.Transmittance},
		{"samples.groundIrradiance", &s.GroundIrradiance},
		{"samples.lightPollution", &s.LightPollution},
		{"samples.singleScattering", &s.SingleScattering},
		{"samples.aerialPerspective", &s.AerialPerspective},
		{"samples.multipleScattering", &s.MultipleScattering},
		{"samples.msAccumulation", &s.MSAccumulation},
	} {
		v.clampInt(f.name, f.p, 1, 512)
	}

	for i := range c.Layers {
		l := &c.Layers[i]
		if !l.Enabled {
			continue
		}
		prefix := fmt.Sprintf("layers[%d].", i)
		v.clampVec(prefix+"absorption", &l.Absorption, 0, 10)
		v.clampVec(prefix+"scattering", &l.Scattering, 0, 10)
		if l.Distribution > DensityTent {
			v.warn(prefix+"distribution", fmt.Sprintf("unknown distribution %d, using exponential", uint32(l.Distribution)))
			l.Distribution = DensityExponential
		}
		if l.Phase > PhaseMie {
			v.warn(prefix+"phase", fmt.Sprintf("unknown phase function %d, using isotropic", uint32(l.Phase)))
			l.Phase = PhaseIsotropic
		}
		v.clamp(prefix+"height", &l.Height, 0, 1e4)
		v.clamp(prefix+"thickness", &l.Thickness, 1e-3, 1e4)
		v.clamp(prefix+"anisotropy", &l.Anisotropy, -0.999, 0.999)
		v.clamp(prefix+"density", &l.Density, 0, 1e3)
		v.clamp(prefix+"attenuation.distance", &l.Attenuation.Distance, 0, 1e6)
		v.clamp(prefix+"attenuation.bias", &l.Attenuation.Bias, -1e6, 1e6)
		v.clampVec(prefix+"tint", &l.Tint, 0, 1e3)
		v.clamp(prefix+"multipleScatteringMultiplier", &l.MultipleScatteringMultiplier, 0, 100)
	}

	for i := range c.Bodies {
		b := &c.Bodies[i]
		if !b.Enabled {
			continue
		}
		prefix := fmt.Sprintf("bodies[%d].", i)
		v.clamp(prefix+"angularRadius", &b.AngularRadius, 0, math.Pi/2)
		v.clamp(prefix+"distance", &b.Distance, 0, 1e12)
		v.clamp(prefix+"lightIntensity", &b.LightIntensity, 0, 1e6)
		v.clamp(prefix+"temperature", &b.Temperature, 1000, 40000)
		v.clampVec(prefix+"color", &b.Color, 0, 1e3)
		v.clamp(prefix+"emissiveMultiplier", &b.EmissiveMultiplier, 0, 1e6)
		v.clampF64(prefix+"latitude", &b.Latitude, -90, 90)
		v.clampF64(prefix+"longitude", &b.Longitude, -180, 180)
		if b.Kind > BodyMoon {
			v.warn(prefix+"kind", fmt.Sprintf("unknown kind %d, using sun", uint32(b.Kind)))
			b.Kind = BodySun
		}
		if b.UseDateTime {
			if _, err := ParseDateTime(b.DateTime); err != nil {
				v.warn(prefix+"dateTime", err.Error()+", keeping previous direction")
			}
		} else if !finiteVec(b.Direction) || b.Direction.Len() < 1e-6 {
			v.warn(prefix+"direction", "zero or non-finite direction, using zenith")
			b.Direction = mgl32.Vec3{0, 1, 0}
		}
	}

	cl := &c.Clouds
	v.clamp("clouds.coverage", &cl.Coverage, 0, 1)
	v.clamp("clouds.density", &cl.Density, 0, 10)
	v.clamp("clouds.altitude", &cl.Altitude, 0, 100)
	v.clamp("clouds.thickness", &cl.Thickness, 0.01, 100)
	v.clamp("clouds.anisotropy", &cl.Anisotropy, -0.999, 0.999)
	v.clamp("clouds.windSpeed", &cl.WindSpeed, 0, 10)
	v.clampInt("clouds.marchSteps", &cl.MarchSteps, 1, 512)
	v.clamp("clouds.reprojectionBlend", &cl.ReprojectionBlend, 0, 0.99)

	n := &c.NightSky
	v.clamp("nightSky.starDensity", &n.StarDensity, 0, 1)
	v.clamp("nightSky.starBrightness", &n.StarBrightness, 0, 1e3)
	v.clamp("nightSky.nebulaIntensity", &n.NebulaIntensity, 0, 1e3)
	v.clampVec("nightSky.nebulaTint", &n.NebulaTint, 0, 1e3)
	v.clamp("nightSky.nebulaScale", &n.NebulaScale, 0.01, 100)
	v.clamp("nightSky.twinkle", &n.Twinkle, 0, 1)

	v.clamp("exposure", &c.Exposure, 0, 1e6)

	return v.warnings
}

type validator struct {
	warnings []Warning
}

func (v *validator) warn(field, msg string) {
	v.warnings = append(v.warnings, Warning{Field: field, Message: msg})
}

func (v *validator) clamp(field string, p *float32, lo, hi float32) {
	f := float64(*p)
	switch {
	case math.IsNaN(f):
		v.warn(field, fmt.Sprintf("NaN replaced by %v", lo))
		*p = lo
	case *p < lo:
		v.warn(field, fmt.Sprintf("%v clamped to %v", *p, lo))
		*p = lo
	case *p > hi:
		v.warn(field, fmt.Sprintf("%v clamped to %v", *p, hi))
		*p = hi
	}
}

func (v *validator) clampF64(field string, p *float64, lo, hi float64) {
	switch {
	case math.IsNaN(*p):
		v.warn(field, fmt.Sprintf("NaN replaced by %v", lo))
		*p = lo
	case *p < lo:
		v.warn(field, fmt.Sprintf("%v clamped to %v", *p, lo))
		*p = lo
	case *p > hi:
		v.warn(field, fmt.Sprintf("%v clamped to %v", *p, hi))
		*p = hi
	}
}

func (v *validator) clampInt(field string, p *int32, lo, hi int32) {
	switch {
	case *p < lo:
		v.warn(field, fmt.Sprintf("%d clamped to %d", *p, lo))
		*p = lo
	case *p > hi:
		v.warn(field, fmt.Sprintf("%d clamped to %d", *p, hi))
		*p = hi
	}
}

func (v *validator) clampVec(field string, p *mgl32.Vec3, lo, hi float32) {
	for i, axis := range []string{".x", ".y", ".z"} {
		v.clamp(field+axis, &p[i], lo, hi)
	}
}

func finiteVec(vec mgl32.Vec3) bool {
	for _, c := range vec {
		f := float64(c)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}
