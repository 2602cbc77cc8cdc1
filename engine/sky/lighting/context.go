package lighting

import (
	"github.com/Carmen-Shannon/oxy-sky/engine/sky/config"
	"github.com/go-gl/mathgl/mgl32"
)

// BodyInput is one active celestial body as the sky system resolved it this frame.
type BodyInput struct {
	// Slot is the configuration slot the body came from.
	Slot      int
	Direction mgl32.Vec3
	BaseColor mgl32.Vec3
	Intensity float32
}

// BodyLight is everything a light consumer needs for one body.
type BodyLight struct {
	Slot             int
	Direction        mgl32.Vec3
	BaseColor        mgl32.Vec3
	Intensity        float32
	SkyTransmittance mgl32.Vec3
	Occluded         bool
}

// Radiance returns the light color reaching the camera: base color scaled by intensity and
// attenuated by the sky.
func (b BodyLight) Radiance() mgl32.Vec3 {
	c := b.BaseColor.Mul(b.Intensity)
	return mgl32.Vec3{
		c[0] * b.SkyTransmittance[0],
		c[1] * b.SkyTransmittance[1],
		c[2] * b.SkyTransmittance[2],
	}
}

// Context is the per-frame lighting result handed to the light consumer.
// A new Context is built every frame; consumers must not keep it across frames.
type Context struct {
	Frame  uint64
	Bodies [config.MaxBodies]BodyLight
	Count  int
}

// Body returns the light of the body that came from configuration slot slot.
//
// Parameters:
//   - slot: the configuration slot
//
// Returns:
//   - BodyLight: the body light
//   - bool: false if the slot is not active this frame
func (c *Context) Body(slot int) (BodyLight, bool) {
	if c == nil {
		return BodyLight{}, false
	}
	for i := range c.Count {
		if c.Bodies[i].Slot == slot {
			return c.Bodies[i], true
		}
	}
	return BodyLight{}, false
}
