package frame

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-sky/engine/sky/config"
	"github.com/Carmen-Shannon/oxy-sky/engine/sky/physmath"
	"github.com/go-gl/mathgl/mgl32"
)

// GPUFrameSource is the canonical WGSL definition of the Frame struct (240 bytes).
//
//go:embed assets/frame.wgsl
var GPUFrameSource string

// GPUCloudsSource is the canonical WGSL definition of the Clouds struct (48 bytes).
//
//go:embed assets/clouds.wgsl
var GPUCloudsSource string

// GPUBodiesSource is the canonical WGSL definition of the Bodies and CelestialBody structs (272 bytes).
//
//go:embed assets/bodies.wgsl
var GPUBodiesSource string

// GPUFrameUniforms is the per-face camera block shared by the sky, clouds and composite passes.
// Size: 240 bytes.
type GPUFrameUniforms struct {
	ViewProj       [16]float32 // offset   0
	InvViewProj    [16]float32 // offset  64
	PrevViewProj   [16]float32 // offset 128: view-projection of the same face last frame
	CameraPosition [3]float32  // offset 192
	Time           float32     // offset 204
	Resolution     [2]float32  // offset 208
	Face           uint32      // offset 216: cube face layer, 0 for the screen
	HistoryValid   uint32      // offset 220: 0 when the clouds pass must ignore its history
	Exposure       float32     // offset 224
	Cubemap        uint32      // offset 228
	_pad0          uint32      // offset 232
	_pad1          uint32      // offset 236
}

// Size returns the size of the GPUFrameUniforms struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (240)
func (g *GPUFrameUniforms) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the frame uniforms into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 240-byte buffer ready for GPU upload
func (g *GPUFrameUniforms) Marshal() []byte {
	buf := make([]byte, 240)
	for i := range 16 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(g.ViewProj[i]))
		binary.LittleEndian.PutUint32(buf[64+i*4:], math.Float32bits(g.InvViewProj[i]))
		binary.LittleEndian.PutUint32(buf[128+i*4:], math.Float32bits(g.PrevViewProj[i]))
	}
	for i := range 3 {
		binary.LittleEndian.PutUint32(buf[192+i*4:], math.Float32bits(g.CameraPosition[i]))
	}
	binary.LittleEndian.PutUint32(buf[204:], math.Float32bits(g.Time))
	binary.LittleEndian.PutUint32(buf[208:], math.Float32bits(g.Resolution[0]))
	binary.LittleEndian.PutUint32(buf[212:], math.Float32bits(g.Resolution[1]))
	binary.LittleEndian.PutUint32(buf[216:], g.Face)
	binary.LittleEndian.PutUint32(buf[220:], g.HistoryValid)
	binary.LittleEndian.PutUint32(buf[224:], math.Float32bits(g.Exposure))
	binary.LittleEndian.PutUint32(buf[228:], g.Cubemap)
	return buf
}

// GPUCloudUniforms is the clouds pass parameter block.
// Size: 48 bytes.
type GPUCloudUniforms struct {
	WindDirection     [2]float32 // offset  0
	WindSpeed         float32    // offset  8
	Coverage          float32    // offset 12
	Density           float32    // offset 16
	Altitude          float32    // offset 20
	Thickness         float32    // offset 24
	Anisotropy        float32    // offset 28
	Seed              uint32     // offset 32
	MarchSteps        uint32     // offset 36
	Enabled           uint32     // offset 40
	ReprojectionBlend float32    // offset 44
}

// Size returns the size of the GPUCloudUniforms struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (48)
func (g *GPUCloudUniforms) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the cloud uniforms.
//
// Returns:
//   - []byte: 48-byte buffer ready for GPU upload
func (g *GPUCloudUniforms) Marshal() []byte {
	buf := make([]byte, 48)
	binary.LittleEndian.PutUint32(buf[0:], math.Float32bits(g.WindDirection[0]))
	binary.LittleEndian.PutUint32(buf[4:], math.Float32bits(g.WindDirection[1]))
	binary.LittleEndian.PutUint32(buf[8:], math.Float32bits(g.WindSpeed))
	binary.LittleEndian.PutUint32(buf[12:], math.Float32bits(g.Coverage))
	binary.LittleEndian.PutUint32(buf[16:], math.Float32bits(g.Density))
	binary.LittleEndian.PutUint32(buf[20:], math.Float32bits(g.Altitude))
	binary.LittleEndian.PutUint32(buf[24:], math.Float32bits(g.Thickness))
	binary.LittleEndian.PutUint32(buf[28:], math.Float32bits(g.Anisotropy))
	binary.LittleEndian.PutUint32(buf[32:], g.Seed)
	binary.LittleEndian.PutUint32(buf[36:], g.MarchSteps)
	binary.LittleEndian.PutUint32(buf[40:], g.Enabled)
	binary.LittleEndian.PutUint32(buf[44:], math.Float32bits(g.ReprojectionBlend))
	return buf
}

// NewCloudUniforms converts the cloud parameters into their uniform block.
func NewCloudUniforms(c config.Clouds) GPUCloudUniforms {
	u := GPUCloudUniforms{
		WindDirection:     c.WindDirection,
		WindSpeed:         c.WindSpeed,
		Coverage:          c.Coverage,
		Density:           c.Density,
		Altitude:          c.Altitude,
		Thickness:         c.Thickness,
		Anisotropy:        c.Anisotropy,
		Seed:              c.Seed,
		MarchSteps:        uint32(max(c.MarchSteps, 0)),
		ReprojectionBlend: c.ReprojectionBlend,
	}
	if c.Enabled {
		u.Enabled = 1
	}
	return u
}

// Body flag bits of GPUCelestialBody.Flags.
const (
	BodyFlagEmissive uint32 = 1 << iota
	BodyFlagAlbedo
	BodyFlagMoon
)

// GPUCelestialBody is the GPU-aligned representation of one active celestial body.
// Size: 64 bytes.
type GPUCelestialBody struct {
	Direction          [3]float32 // offset  0
	AngularRadius      float32    // offset 12
	Color              [3]float32 // offset 16: blackbody or explicit light color
	Intensity          float32    // offset 28
	EmissiveTint       [3]float32 // offset 32
	EmissiveMultiplier float32    // offset 44
	AlbedoTint         [3]float32 // offset 48
	Flags              uint32     // offset 60
}

// Size returns the size of the GPUCelestialBody struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (64)
func (g *GPUCelestialBody) Size() int {
	return int(unsafe.Sizeof(*g))
}

// MarshalTo writes the body into buf, which must hold at least 64 bytes.
func (g *GPUCelestialBody) MarshalTo(buf []byte) {
	putVec3(buf[0:], g.Direction)
	binary.LittleEndian.PutUint32(buf[12:], math.Float32bits(g.AngularRadius))
	putVec3(buf[16:], g.Color)
	binary.LittleEndian.PutUint32(buf[28:], math.Float32bits(g.Intensity))
	putVec3(buf[32:], g.EmissiveTint)
	binary.LittleEndian.PutUint32(buf[44:], math.Float32bits(g.EmissiveMultiplier))
	putVec3(buf[48:], g.AlbedoTint)
	binary.LittleEndian.PutUint32(buf[60:], g.Flags)
}

// GPUBodiesUniforms is the celestial body block: a 16-byte header and MaxBodies bodies.
// Size: 272 bytes.
type GPUBodiesUniforms struct {
	Count uint32 // offset 0
	_pad  [3]uint32
	Items [config.MaxBodies]GPUCelestialBody // offset 16
}

// Size returns the size of the GPUBodiesUniforms struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (272)
func (g *GPUBodiesUniforms) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the body block.
//
// Returns:
//   - []byte: 272-byte buffer ready for GPU upload
func (g *GPUBodiesUniforms) Marshal() []byte {
	buf := make([]byte, 16+config.MaxBodies*64)
	binary.LittleEndian.PutUint32(buf[0:], g.Count)
	for i := range g.Items {
		g.Items[i].MarshalTo(buf[16+i*64:])
	}
	return buf
}

// NewBodiesUniforms packs the active bodies with their resolved directions.
//
// Parameters:
//   - active: the compacted enabled bodies
//   - directions: the resolved direction of each active body, indexed like active.Items
//
// Returns:
//   - GPUBodiesUniforms: the body block
func NewBodiesUniforms(active config.ActiveBodies, directions [config.MaxBodies]mgl32.Vec3) GPUBodiesUniforms {
	u := GPUBodiesUniforms{Count: uint32(active.Count)}
	for i := range active.Count {
		b := active.Items[i]
		color := b.Color
		if b.UseTemperature {
			color = physmath.BlackbodyToRGB(b.Temperature)
		}
		g := GPUCelestialBody{
			Direction:          directions[i],
			AngularRadius:      b.AngularRadius,
			Color:              color,
			Intensity:          b.LightIntensity,
			EmissiveTint:       b.EmissiveTint,
			EmissiveMultiplier: b.EmissiveMultiplier,
			AlbedoTint:         b.AlbedoTint,
		}
		if b.Emissive {
			g.Flags |= BodyFlagEmissive
		}
		if b.Albedo {
			g.Flags |= BodyFlagAlbedo
		}
		if b.Kind == config.BodyMoon {
			g.Flags |= BodyFlagMoon
		}
		u.Items[i] = g
	}
	return u
}

func putVec3(buf []byte, v [3]float32) {
	binary.LittleEndian.PutUint32(buf[0:], math.Float32bits(v[0]))
	binary.LittleEndian.PutUint32(buf[4:], math.Float32bits(v[1]))
	binary.LittleEndian.PutUint32(buf[8:], math.Float32bits(v[2]))
}
