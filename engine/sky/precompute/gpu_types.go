package precompute

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-sky/engine/sky/config"
	"github.com/Carmen-Shannon/oxy-sky/engine/sky/gpu"
	"github.com/Carmen-Shannon/oxy-sky/engine/sky/quality"
)

// GPUAtmosphereSource is the canonical WGSL definition of the Atmosphere and AtmosphereLayer structs.
// Matches GPUAtmosphereUniforms layout exactly (816 bytes).
//
//go:embed assets/atmosphere.wgsl
var GPUAtmosphereSource string

// GPUStageParamsSource is the canonical WGSL definition of the StageParams struct (16 bytes).
//
//go:embed assets/stage_params.wgsl
var GPUStageParamsSource string

// GPUNightSkySource is the canonical WGSL definition of the NightSky struct (48 bytes).
//
//go:embed assets/night_sky.wgsl
var GPUNightSkySource string

// GPUAtmosphereLayer is the GPU-aligned representation of one active atmosphere layer.
// Size: 96 bytes.
type GPUAtmosphereLayer struct {
	Absorption          [3]float32 // offset  0
	Distribution        uint32     // offset 12: 0 = exponential, 1 = tent
	Scattering          [3]float32 // offset 16
	Phase               uint32     // offset 28: 0 = isotropic, 1 = rayleigh, 2 = mie
	Tint                [3]float32 // offset 32
	Anisotropy          float32    // offset 44
	AttenuationOrigin   [3]float32 // offset 48
	AttenuationEnabled  uint32     // offset 60
	Height              float32    // offset 64
	Thickness           float32    // offset 68
	Density             float32    // offset 72
	MSMultiplier        float32    // offset 76
	AttenuationDistance float32    // offset 80
	AttenuationBias     float32    // offset 84
	Slot                uint32     // offset 88: configuration slot the layer came from
	_pad                uint32     // offset 92
}

// Size returns the size of the GPUAtmosphereLayer struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (96)
func (g *GPUAtmosphereLayer) Size() int {
	return int(unsafe.Sizeof(*g))
}

// MarshalTo writes the layer into buf, which must hold at least 96 bytes.
func (g *GPUAtmosphereLayer) MarshalTo(buf []byte) {
	putVec3(buf[0:], g.Absorption)
	binary.LittleEndian.PutUint32(buf[12:], g.Distribution)
	putVec3(buf[16:], g.Scattering)
	binary.LittleEndian.PutUint32(buf[28:], g.Phase)
	putVec3(buf[32:], g.Tint)
	binary.LittleEndian.PutUint32(buf[44:], math.Float32bits(g.Anisotropy))
	putVec3(buf[48:], g.AttenuationOrigin)
	binary.LittleEndian.PutUint32(buf[60:], g.AttenuationEnabled)
	binary.LittleEndian.PutUint32(buf[64:], math.Float32bits(g.Height))
	binary.LittleEndian.PutUint32(buf[68:], math.Float32bits(g.Thickness))
	binary.LittleEndian.PutUint32(buf[72:], math.Float32bits(g.Density))
	binary.LittleEndian.PutUint32(buf[76:], math.Float32bits(g.MSMultiplier))
	binary.LittleEndian.PutUint32(buf[80:], math.Float32bits(g.AttenuationDistance))
	binary.LittleEndian.PutUint32(buf[84:], math.Float32bits(g.AttenuationBias))
	binary.LittleEndian.PutUint32(buf[88:], g.Slot)
	binary.LittleEndian.PutUint32(buf[92:], 0) // _pad
}

// GPUAtmosphereUniforms is the atmosphere uniform block shared by every precomputation kernel
// and by the sky pass. Only the first LayerCount layers are meaningful.
// Size: 48-byte header followed by MaxLayers 96-byte layers.
type GPUAtmosphereUniforms struct {
	GroundAlbedo            [3]float32 // offset  0
	LayerCount              uint32     // offset 12
	LightPollutionColor     [3]float32 // offset 16
	LightPollutionIntensity float32    // offset 28
	PlanetRadius            float32    // offset 32
	AtmosphereRadius        float32    // offset 36
	ScatteringSlices        uint32     // offset 40: view-sun azimuth slices packed along X of the single scattering table
	AccumulationSlices      uint32     // offset 44: same for the accumulation table
	Layers                  [config.MaxLayers]GPUAtmosphereLayer
}

// GPUAtmosphereUniformsSize is the marshaled size of GPUAtmosphereUniforms.
const GPUAtmosphereUniformsSize = 48 + config.MaxLayers*96

// Size returns the size of the GPUAtmosphereUniforms struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (816)
func (g *GPUAtmosphereUniforms) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the uniforms into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 816-byte buffer ready for GPU upload
func (g *GPUAtmosphereUniforms) Marshal() []byte {
	buf := make([]byte, GPUAtmosphereUniformsSize)
	putVec3(buf[0:], g.GroundAlbedo)
	binary.LittleEndian.PutUint32(buf[12:], g.LayerCount)
	putVec3(buf[16:], g.LightPollutionColor)
	binary.LittleEndian.PutUint32(buf[28:], math.Float32bits(g.LightPollutionIntensity))
	binary.LittleEndian.PutUint32(buf[32:], math.Float32bits(g.PlanetRadius))
	binary.LittleEndian.PutUint32(buf[36:], math.Float32bits(g.AtmosphereRadius))
	binary.LittleEndian.PutUint32(buf[40:], g.ScatteringSlices)
	binary.LittleEndian.PutUint32(buf[44:], g.AccumulationSlices)
	for i := range g.Layers {
		g.Layers[i].MarshalTo(buf[48+i*96:])
	}
	return buf
}

// NewAtmosphereUniforms compacts the enabled layers of cfg into a uniform block.
//
// Parameters:
//   - cfg: the sky configuration
//
// Returns:
//   - GPUAtmosphereUniforms: the uniform block
func NewAtmosphereUniforms(cfg *config.Config) GPUAtmosphereUniforms {
	active := cfg.ActiveLayers()
	res := quality.Resolutions(cfg.Quality)
	u := GPUAtmosphereUniforms{
		GroundAlbedo:            cfg.Planet.GroundAlbedo,
		LayerCount:              uint32(active.Count),
		LightPollutionColor:     cfg.LightPollution.Color,
		LightPollutionIntensity: cfg.LightPollution.Intensity,
		PlanetRadius:            cfg.Planet.Radius,
		AtmosphereRadius:        cfg.Planet.AtmosphereRadius(),
		ScatteringSlices:        res.SingleScattering.Nu,
		AccumulationSlices:      res.MSAccumulation.Nu,
	}
	for i := range active.Count {
		l := active.Items[i]
		u.Layers[i] = GPUAtmosphereLayer{
			Absorption:          l.Absorption,
			Distribution:        uint32(l.Distribution),
			Scattering:          l.Scattering,
			Phase:               uint32(l.Phase),
			Tint:                l.Tint,
			Anisotropy:          l.Anisotropy,
			AttenuationOrigin:   l.Attenuation.Origin,
			AttenuationEnabled:  boolToUint32(l.Attenuation.Enabled),
			Height:              l.Height,
			Thickness:           l.Thickness,
			Density:             l.Density,
			MSMultiplier:        l.MultipleScatteringMultiplier,
			AttenuationDistance: l.Attenuation.Distance,
			AttenuationBias:     l.Attenuation.Bias,
			Slot:                uint32(active.Slots[i]),
		}
	}
	return u
}

// GPUStageParams is the per-dispatch parameter block, prepended to the atmosphere uniforms.
// Size: 16 bytes.
type GPUStageParams struct {
	SampleCount uint32 // offset  0
	LOD         uint32 // offset  4
	LayerCount  uint32 // offset  8
	TileSize    uint32 // offset 12
}

// Size returns the size of the GPUStageParams struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (16)
func (g *GPUStageParams) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the stage parameters.
//
// Returns:
//   - []byte: 16-byte buffer ready for GPU upload
func (g *GPUStageParams) Marshal() []byte {
	buf := make([]byte, 16)
	binary.LittleEndian.PutUint32(buf[0:], g.SampleCount)
	binary.LittleEndian.PutUint32(buf[4:], g.LOD)
	binary.LittleEndian.PutUint32(buf[8:], g.LayerCount)
	binary.LittleEndian.PutUint32(buf[12:], g.TileSize)
	return buf
}

// GPUNightSkyUniforms is the uniform block of the star and nebula kernels.
// Size: 48 bytes.
type GPUNightSkyUniforms struct {
	StarSeed        uint32     // offset  0
	StarDensity     float32    // offset  4
	StarBrightness  float32    // offset  8
	NebulaSeed      uint32     // offset 12
	NebulaTint      [3]float32 // offset 16
	NebulaIntensity float32    // offset 28
	NebulaScale     float32    // offset 32
	FaceSize        uint32     // offset 36
	_pad0           uint32     // offset 40
	_pad1           uint32     // offset 44
}

// Size returns the size of the GPUNightSkyUniforms struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (48)
func (g *GPUNightSkyUniforms) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the night sky uniforms.
//
// Returns:
//   - []byte: 48-byte buffer ready for GPU upload
func (g *GPUNightSkyUniforms) Marshal() []byte {
	buf := make([]byte, 48)
	binary.LittleEndian.PutUint32(buf[0:], g.StarSeed)
	binary.LittleEndian.PutUint32(buf[4:], math.Float32bits(g.StarDensity))
	binary.LittleEndian.PutUint32(buf[8:], math.Float32bits(g.StarBrightness))
	binary.LittleEndian.PutUint32(buf[12:], g.NebulaSeed)
	putVec3(buf[16:], g.NebulaTint)
	binary.LittleEndian.PutUint32(buf[28:], math.Float32bits(g.NebulaIntensity))
	binary.LittleEndian.PutUint32(buf[32:], math.Float32bits(g.NebulaScale))
	binary.LittleEndian.PutUint32(buf[36:], g.FaceSize)
	return buf
}

// NewNightSkyUniforms builds the night sky uniform block for a cube face size.
func NewNightSkyUniforms(cfg *config.Config, faceSize uint32) GPUNightSkyUniforms {
	n := cfg.NightSky
	return GPUNightSkyUniforms{
		StarSeed:        n.StarSeed,
		StarDensity:     n.StarDensity,
		StarBrightness:  n.StarBrightness,
		NebulaSeed:      n.NebulaSeed,
		NebulaTint:      n.NebulaTint,
		NebulaIntensity: n.NebulaIntensity,
		NebulaScale:     n.NebulaScale,
		FaceSize:        faceSize,
	}
}

func stageUniforms(params GPUStageParams, atmosphere []byte) []byte {
	params.TileSize = gpu.TileSize
	out := make([]byte, 0, 16+len(atmosphere))
	out = append(out, params.Marshal()...)
	return append(out, atmosphere...)
}

func putVec3(buf []byte, v [3]float32) {
	binary.LittleEndian.PutUint32(buf[0:], math.Float32bits(v[0]))
	binary.LittleEndian.PutUint32(buf[4:], math.Float32bits(v[1]))
	binary.LittleEndian.PutUint32(buf[8:], math.Float32bits(v[2]))
}

func boolToUint32(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
