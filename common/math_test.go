package common

import (
	"math"
	"testing"
)

func transform(m []float32, v [4]float32) [4]float32 {
	var out [4]float32
	for i := 0; i < 4; i++ {
		for k := 0; k < 4; k++ {
			out[i] += m[k*4+i] * v[k]
		}
	}
	return out
}

func near(a, b, eps float32) bool {
	return float32(math.Abs(float64(a-b))) <= eps
}

func TestInvert4RoundTrip(t *testing.T) {
	var view, proj, vp, inv, id [16]float32
	LookAt(view[:], 1, 2, 3, 4, 2, -1, 0, 1, 0)
	Perspective(proj[:], 1.1, 1.5, 0.1, 100)
	Mul4(vp[:], proj[:], view[:])

	if !Invert4(inv[:], vp[:]) {
		t.Fatal("view-projection reported singular")
	}
	Mul4(id[:], vp[:], inv[:])
	var want [16]float32
	Identity(want[:])
	for i := range id {
		if !near(id[i], want[i], 1e-2) {
			t.Fatalf("vp * inv[%d] = %v, want %v", i, id[i], want[i])
		}
	}
}

func TestInvert4Singular(t *testing.T) {
	var zero, out [16]float32
	out[0] = 42
	if Invert4(out[:], zero[:]) {
		t.Error("zero matrix inverted")
	}
	if out[0] != 42 {
		t.Error("output changed for a singular matrix")
	}
}

func TestCubeFaceViewProjCentersForward(t *testing.T) {
	eye := [3]float32{0, 1, 0}
	for face := 0; face < CubeFaceCount; face++ {
		var m [16]float32
		CubeFaceViewProj(m[:], face, eye, 0.1, 100)
		f := CubeFaceForward(face)
		p := transform(m[:], [4]float32{eye[0] + 10*f[0], eye[1] + 10*f[1], eye[2] + 10*f[2], 1})
		if p[3] <= 0 {
			t.Fatalf("face %d: forward point behind the camera (w=%v)", face, p[3])
		}
		if !near(p[0]/p[3], 0, 1e-4) || !near(p[1]/p[3], 0, 1e-4) {
			t.Errorf("face %d: forward projects to (%v, %v)", face, p[0]/p[3], p[1]/p[3])
		}
	}
}

func TestCubeFaceForwardOutOfRange(t *testing.T) {
	if CubeFaceForward(-1) != CubeFaceForward(0) || CubeFaceForward(6) != CubeFaceForward(0) {
		t.Error("out of range faces must fall back to +X")
	}
}

func TestCoalesce(t *testing.T) {
	if got := Coalesce("", "label", "other"); got != "label" {
		t.Errorf("Coalesce = %q", got)
	}
	if got := Coalesce(0, 0); got != 0 {
		t.Errorf("Coalesce = %d", got)
	}
}
