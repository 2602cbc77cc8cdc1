package camera

import (
	"math"
	"testing"
)

func near(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-4
}

func TestControllerDefaults(t *testing.T) {
	cc := NewCameraController()
	f := cc.Forward()
	if !near(f[0], 0) || !near(f[1], 0) || !near(f[2], -1) {
		t.Errorf("forward = %v", f)
	}
	_, y, _ := cc.Position()
	if !near(y, 0.0015) {
		t.Errorf("altitude = %v", y)
	}
}

func TestLookTurnsAndClamps(t *testing.T) {
	cc := NewCameraController(WithMouseSensitivity(0.01))

	cc.Look(50, 0)
	if !near(cc.Yaw(), 0.5) {
		t.Errorf("yaw = %v", cc.Yaw())
	}
	if f := cc.Forward(); f[0] <= 0 {
		t.Errorf("dragging right should turn towards +X, forward = %v", f)
	}

	cc.Look(0, 30)
	if !near(cc.Pitch(), -0.3) {
		t.Errorf("pitch = %v", cc.Pitch())
	}

	cc.Look(0, -10000)
	if cc.Pitch() >= math.Pi/2 {
		t.Errorf("pitch %v not clamped", cc.Pitch())
	}

	cc.Turn(4*math.Pi, 0)
	if cc.Yaw() > math.Pi || cc.Yaw() < -math.Pi {
		t.Errorf("yaw %v not wrapped", cc.Yaw())
	}
}

func TestClimbStaysAboveGround(t *testing.T) {
	cc := NewCameraController(WithMinAltitude(0.001), WithPosition(1, 2, 3))
	cc.Climb(-10)
	x, y, z := cc.Position()
	if x != 1 || z != 3 || !near(y, 0.001) {
		t.Errorf("position = %v, %v, %v", x, y, z)
	}
	cc.SetPosition(0, -5, 0)
	if _, y, _ := cc.Position(); !near(y, 0.001) {
		t.Errorf("altitude = %v", y)
	}
}

func TestTargetIsAheadOfPosition(t *testing.T) {
	cc := NewCameraController(WithPosition(0, 1, 0), WithPitch(float32(math.Pi/4)))
	tx, ty, tz := cc.Target()
	f := cc.Forward()
	if !near(tx, f[0]) || !near(ty, 1+f[1]) || !near(tz, f[2]) {
		t.Errorf("target = %v, %v, %v", tx, ty, tz)
	}
}

func TestCameraFrame(t *testing.T) {
	cc := NewCameraController(WithPosition(0, 2, 0))
	c := NewCamera(WithController(cc), WithAspect(2), WithFov(1))

	fr := c.Frame()
	if fr.Position != [3]float32{0, 2, 0} {
		t.Errorf("position = %v", fr.Position)
	}
	// Looking along -Z from y = 2: the view moves the eye to the origin.
	if !near(fr.View[13], -2) {
		t.Errorf("view translation y = %v", fr.View[13])
	}
	if fr.Projection != c.ProjectionMatrix() {
		t.Error("frame projection differs from the camera's")
	}

	before := c.ProjectionMatrix()
	c.SetAspect(-1)
	if c.ProjectionMatrix() != before {
		t.Error("non-positive aspect changed the projection")
	}
	c.SetAspect(1)
	if c.ProjectionMatrix() == before {
		t.Error("aspect change did not update the projection")
	}
}

func TestCameraUpdateFollowsController(t *testing.T) {
	cc := NewCameraController()
	c := NewCamera(WithController(cc))
	before := c.ViewMatrix()
	cc.Turn(1, 0)
	if c.ViewMatrix() != before {
		t.Error("view changed before Update")
	}
	c.Update()
	if c.ViewMatrix() == before {
		t.Error("view did not follow the controller")
	}
}
