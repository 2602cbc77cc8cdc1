// Package physmath holds the small numeric routines shared by the CPU lighting path and the GPU passes:
// ray-sphere intersection, blackbody color and the transmittance table parameterization.
package physmath

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// IntersectSphere intersects the ray origin + t*direction with a sphere of the given radius centered at the origin.
// Direction need not be normalized; the roots are expressed in units of its length.
//
// Parameters:
//   - origin: ray origin relative to the sphere center
//   - direction: ray direction
//   - radius: sphere radius
//
// Returns:
//   - float32: the nearer root
//   - float32: the farther root
//   - bool: false when the ray misses the sphere or the direction is zero, in which case both roots are 0
func IntersectSphere(origin, direction mgl32.Vec3, radius float32) (float32, float32, bool) {
	a := float64(direction.Dot(direction))
	if a == 0 {
		return 0, 0, false
	}
	b := 2 * float64(origin.Dot(direction))
	c := float64(origin.Dot(origin)) - float64(radius)*float64(radius)
	disc := b*b - 4*a*c
	if disc < 0 {
		return 0, 0, false
	}
	sq := math.Sqrt(disc)
	// Numerically stable form, avoids cancellation when b is close to sq.
	var q float64
	if b < 0 {
		q = -0.5 * (b - sq)
	} else {
		q = -0.5 * (b + sq)
	}
	t0 := q / a
	t1 := t0
	if q != 0 {
		t1 = c / q
	}
	if t0 > t1 {
		t0, t1 = t1, t0
	}
	return float32(t0), float32(t1), true
}

// BlackbodyToRGB approximates the color of a black body at the given temperature.
// Input is clamped to [1000, 40000] K, each output channel is in [0, 1].
//
// Parameters:
//   - kelvin: color temperature in Kelvin
//
// Returns:
//   - mgl32.Vec3: linear RGB color
func BlackbodyToRGB(kelvin float32) mgl32.Vec3 {
	k := float64(kelvin)
	if math.IsNaN(k) {
		k = 6600
	}
	k = math.Min(math.Max(k, 1000), 40000)
	t := k / 100

	var r, g, b float64
	if t <= 66 {
		r = 255
		g = 99.4708025861*math.Log(t) - 161.1195681661
	} else {
		r = 329.698727446 * math.Pow(t-60, -0.1332047592)
		g = 288.1221695283 * math.Pow(t-60, -0.0755148492)
	}
	switch {
	case t >= 66:
		b = 255
	case t <= 19:
		b = 0
	default:
		b = 138.5177312231*math.Log(t-10) - 305.0447927307
	}
	return mgl32.Vec3{channel(r), channel(g), channel(b)}
}

func channel(v float64) float32 {
	return float32(math.Min(math.Max(v, 0), 255) / 255)
}

// Lower and upper halves of the transmittance table v range.
const (
	groundHitVMax = 0.4
	escapeVMin    = 0.6
)

// MapRadiusMuToUV encodes (r, mu) into transmittance table coordinates.
// Rays that hit the ground use v in [0, 0.4], rays that escape use [0.6, 1].
// Within each half, v grows with the normalized distance to the boundary the ray ends on.
//
// Parameters:
//   - r: distance from the planet center
//   - mu: cosine of the view zenith angle
//   - atmosphereRadius: radius of the top of the atmosphere
//   - planetRadius: radius of the ground
//   - distance: distance along the ray to the boundary, or a negative value to derive it from r and mu
//   - groundHit: whether the ray ends on the ground
//
// Returns:
//   - float32: u, the normalized distance to the horizon
//   - float32: v
func MapRadiusMuToUV(r, mu, atmosphereRadius, planetRadius, distance float32, groundHit bool) (float32, float32) {
	H := SafeSqrt(atmosphereRadius*atmosphereRadius - planetRadius*planetRadius)
	rho := SafeSqrt(r*r - planetRadius*planetRadius)

	var u float32
	if H > 0 {
		u = Clamp01(rho / H)
	}

	if groundHit {
		if distance < 0 {
			distance = DistanceToBottomBoundary(r, mu, planetRadius)
		}
		dMin := r - planetRadius
		dMax := rho
		return u, groundHitVMax * (1 - normalize(distance, dMin, dMax))
	}

	if distance < 0 {
		distance = DistanceToTopBoundary(r, mu, atmosphereRadius)
	}
	dMin := atmosphereRadius - r
	dMax := rho + H
	return u, escapeVMin + (1-escapeVMin)*normalize(distance, dMin, dMax)
}

// normalize maps d into [0, 1] over [lo, hi]. An empty range maps to 0.
func normalize(d, lo, hi float32) float32 {
	if hi == lo || isBad(d) || isBad(lo) || isBad(hi) {
		return 0
	}
	return Clamp01((d - lo) / (hi - lo))
}

// DistanceToTopBoundary returns the distance from radius r along direction mu to the top of the atmosphere.
func DistanceToTopBoundary(r, mu, atmosphereRadius float32) float32 {
	disc := r*r*(mu*mu-1) + atmosphereRadius*atmosphereRadius
	return float32(math.Max(0, float64(-r*mu+SafeSqrt(disc))))
}

// DistanceToBottomBoundary returns the distance from radius r along direction mu to the ground.
func DistanceToBottomBoundary(r, mu, planetRadius float32) float32 {
	disc := r*r*(mu*mu-1) + planetRadius*planetRadius
	return float32(math.Max(0, float64(-r*mu-SafeSqrt(disc))))
}

// RayIntersectsGround reports whether a ray from radius r with view zenith cosine mu hits the planet.
func RayIntersectsGround(r, mu, planetRadius float32) bool {
	return mu < 0 && r*r*(mu*mu-1)+planetRadius*planetRadius >= 0
}

// SafeSqrt returns the square root of max(v, 0).
func SafeSqrt(v float32) float32 {
	if v <= 0 || isBad(v) {
		return 0
	}
	return float32(math.Sqrt(float64(v)))
}

// Clamp01 clamps v to [0, 1]. NaN maps to 0.
func Clamp01(v float32) float32 {
	if isBad(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func isBad(v float32) bool {
	f := float64(v)
	return math.IsNaN(f) || math.IsInf(f, 0)
}
