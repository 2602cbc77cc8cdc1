package physmath

import (
	"math"
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func abs(v float32) float32 {
	return float32(math.Abs(float64(v)))
}

func approx(a, b, eps float32) bool {
	return abs(a-b) <= eps
}

func TestIntersectSphereThroughCenter(t *testing.T) {
	near, far, hit := IntersectSphere(mgl32.Vec3{0, 0, -3}, mgl32.Vec3{0, 0, 1}, 1)
	if !hit {
		t.Fatal("expected hit")
	}
	if near <= 0 || far <= 0 {
		t.Fatalf("roots %v %v should both be positive", near, far)
	}
	if !approx(near, 2, 1e-6) || !approx(far, 4, 1e-6) {
		t.Errorf("roots = %v, %v, want 2, 4", near, far)
	}
}

func TestIntersectSphereMiss(t *testing.T) {
	tests := []struct {
		name   string
		origin mgl32.Vec3
		dir    mgl32.Vec3
	}{
		{"parallel offset", mgl32.Vec3{2, 0, -3}, mgl32.Vec3{0, 0, 1}},
		{"pointing away sideways", mgl32.Vec3{0, 5, 0}, mgl32.Vec3{1, 0, 0}},
		{"zero direction", mgl32.Vec3{0, 0, -3}, mgl32.Vec3{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			near, far, hit := IntersectSphere(tt.origin, tt.dir, 1)
			if hit || near != 0 || far != 0 {
				t.Errorf("got %v %v %v, want no hit sentinel", near, far, hit)
			}
		})
	}
}

func TestIntersectSphereInside(t *testing.T) {
	near, far, hit := IntersectSphere(mgl32.Vec3{0, 0.5, 0}, mgl32.Vec3{0, 1, 0}, 1)
	if !hit || near >= 0 || far <= 0 {
		t.Fatalf("got %v %v %v, want roots straddling the origin", near, far, hit)
	}
	if !approx(far, 0.5, 1e-6) || !approx(near, -1.5, 1e-6) {
		t.Errorf("roots = %v %v", near, far)
	}
}

func TestIntersectSphereScaleInvariance(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 500; i++ {
		o := mgl32.Vec3{rng.Float32()*20 - 10, rng.Float32()*20 - 10, rng.Float32()*20 - 10}
		d := mgl32.Vec3{rng.Float32()*2 - 1, rng.Float32()*2 - 1, rng.Float32()*2 - 1}
		if d.Len() < 0.2 {
			continue
		}
		r := 1 + rng.Float32()*5
		k := 0.1 + rng.Float32()*10

		n0, f0, h0 := IntersectSphere(o, d, r)
		n1, f1, h1 := IntersectSphere(o, d.Mul(k), r)
		if !h0 || !h1 {
			continue
		}
		if f0-n0 < 0.05*(1+abs(n0)+abs(f0)) {
			// grazing ray, the roots are ill-conditioned
			continue
		}
		eps := 1e-3 * (1 + abs(n0) + abs(f0))
		if !approx(n1*k, n0, eps) || !approx(f1*k, f0, eps) {
			t.Fatalf("roots not rescaled: (%v,%v) vs k*(%v,%v) k=%v", n0, f0, n1, f1, k)
		}
	}
}

func TestBlackbodyReference(t *testing.T) {
	tests := []struct {
		kelvin float32
		want   mgl32.Vec3
	}{
		{1000, mgl32.Vec3{1, 0.26635458, 0}},
		{2000, mgl32.Vec3{1, 0.53673853, 0.05452577}},
		{6500, mgl32.Vec3{1, 0.99651013, 0.98055650}},
		{6600, mgl32.Vec3{1, 1, 1}},
		{6700, mgl32.Vec3{0.99771387, 0.97548152, 1}},
		{10000, mgl32.Vec3{0.79099743, 0.85517929, 1}},
		{40000, mgl32.Vec3{0.59480149, 0.72756575, 1}},
		{500, mgl32.Vec3{1, 0.26635458, 0}},
		{90000, mgl32.Vec3{0.59480149, 0.72756575, 1}},
	}
	for _, tt := range tests {
		got := BlackbodyToRGB(tt.kelvin)
		for c := 0; c < 3; c++ {
			if !approx(got[c], tt.want[c], 1e-4) {
				t.Errorf("BlackbodyToRGB(%v)[%d] = %v, want %v", tt.kelvin, c, got[c], tt.want[c])
			}
		}
	}
}

func TestBlackbodyBias(t *testing.T) {
	warm := BlackbodyToRGB(1000)
	if warm[0] < 10*warm[2]+0.5 {
		t.Errorf("1000K not red biased: %v", warm)
	}
	cool := BlackbodyToRGB(10000)
	if cool[2] <= cool[0] {
		t.Errorf("10000K not blue biased: %v", cool)
	}
	for k := float32(800); k <= 45000; k += 137 {
		c := BlackbodyToRGB(k)
		for i := 0; i < 3; i++ {
			if c[i] < 0 || c[i] > 1 || math.IsNaN(float64(c[i])) {
				t.Fatalf("BlackbodyToRGB(%v) = %v out of range", k, c)
			}
		}
	}
}

const (
	earthRadius = 6360
	topRadius   = 6460
)

func TestMapRadiusMuToUVHalves(t *testing.T) {
	r := float32(earthRadius + 1)
	dMinGround := r - earthRadius
	_, vGround := MapRadiusMuToUV(r, -1, topRadius, earthRadius, dMinGround, true)
	if !approx(vGround, 0.4, 1e-6) {
		t.Errorf("ground hit at d_min: v = %v, want 0.4", vGround)
	}
	dMinTop := topRadius - r
	_, vSky := MapRadiusMuToUV(r, 1, topRadius, earthRadius, dMinTop, false)
	if !approx(vSky, 0.6, 1e-6) {
		t.Errorf("escape at d_min: v = %v, want 0.6", vSky)
	}

	rho := SafeSqrt(r*r - earthRadius*earthRadius)
	_, vGroundMax := MapRadiusMuToUV(r, -0.01, topRadius, earthRadius, rho, true)
	if !approx(vGroundMax, 0, 1e-6) {
		t.Errorf("ground hit at d_max: v = %v, want 0", vGroundMax)
	}
	H := SafeSqrt(topRadius*topRadius - earthRadius*earthRadius)
	_, vSkyMax := MapRadiusMuToUV(r, 0, topRadius, earthRadius, rho+H, false)
	if !approx(vSkyMax, 1, 1e-6) {
		t.Errorf("escape at d_max: v = %v, want 1", vSkyMax)
	}
}

func TestMapRadiusMuToUVDegenerate(t *testing.T) {
	// On the ground d_min == d_max == 0 for ground rays.
	u, v := MapRadiusMuToUV(earthRadius, -1, topRadius, earthRadius, 0, true)
	if u != 0 || v != 0.4 {
		t.Errorf("ground degenerate = (%v, %v), want (0, 0.4)", u, v)
	}
	// Atmosphere with zero thickness.
	u, v = MapRadiusMuToUV(earthRadius, 1, earthRadius, earthRadius, 0, false)
	if u != 0 || v != 0.6 {
		t.Errorf("zero thickness = (%v, %v), want (0, 0.6)", u, v)
	}
}

func TestMapRadiusMuToUVNoNaN(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for i := 0; i < 20000; i++ {
		r := earthRadius + rng.Float32()*(topRadius-earthRadius)
		mu := rng.Float32()*2 - 1
		ground := RayIntersectsGround(r, mu, earthRadius)
		u, v := MapRadiusMuToUV(r, mu, topRadius, earthRadius, -1, ground)
		if math.IsNaN(float64(u)) || math.IsNaN(float64(v)) || u < 0 || u > 1 || v < 0 || v > 1 {
			t.Fatalf("r=%v mu=%v ground=%v -> (%v, %v)", r, mu, ground, u, v)
		}
		if ground && v > 0.4 {
			t.Fatalf("ground ray mapped to upper half: v=%v", v)
		}
		if !ground && v < 0.6 {
			t.Fatalf("escaping ray mapped to lower half: v=%v", v)
		}
	}
}

func TestDistanceToBoundaries(t *testing.T) {
	if d := DistanceToTopBoundary(earthRadius, 1, topRadius); !approx(d, topRadius-earthRadius, 1e-2) {
		t.Errorf("straight up = %v", d)
	}
	if d := DistanceToBottomBoundary(earthRadius+10, -1, earthRadius); !approx(d, 10, 1e-2) {
		t.Errorf("straight down = %v", d)
	}
	if RayIntersectsGround(earthRadius+10, 0.1, earthRadius) {
		t.Error("upward ray should not hit the ground")
	}
}
