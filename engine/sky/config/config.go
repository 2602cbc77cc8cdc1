// Package config holds the sky parameter set: atmosphere layers, celestial bodies, quality tiers,
// sample counts, cloud and night sky parameters.
package config

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-sky/engine/sky/quality"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	// MaxLayers is the number of atmosphere layer slots.
	MaxLayers = 8

	// MaxBodies is the number of celestial body slots.
	MaxBodies = 4
)

// DensityDistribution selects how a layer's density falls off with altitude.
type DensityDistribution uint32

const (
	// DensityExponential decays with a scale height equal to the layer thickness.
	DensityExponential DensityDistribution = iota

	// DensityTent peaks at the layer height and falls linearly to zero over half the thickness on each side.
	DensityTent
)

func (d DensityDistribution) String() string {
	switch d {
	case DensityExponential:
		return "exponential"
	case DensityTent:
		return "tent"
	default:
		return fmt.Sprintf("density(%d)", uint32(d))
	}
}

// PhaseFunction selects the scattering phase function of a layer.
type PhaseFunction uint32

const (
	PhaseIsotropic PhaseFunction = iota
	PhaseRayleigh
	PhaseMie
)

func (p PhaseFunction) String() string {
	switch p {
	case PhaseIsotropic:
		return "isotropic"
	case PhaseRayleigh:
		return "rayleigh"
	case PhaseMie:
		return "mie"
	default:
		return fmt.Sprintf("phase(%d)", uint32(p))
	}
}

// Attenuation fades a layer out with distance from an origin, e.g. for local fog.
type Attenuation struct {
	Enabled  bool       `json:"enabled"`
	Origin   mgl32.Vec3 `json:"origin"`
	Distance float32    `json:"distance"`
	Bias     float32    `json:"bias"`
}

// AtmosphereLayer is one independently configurable participating medium.
// Heights and thicknesses are in kilometres, coefficients in 1/km.
type AtmosphereLayer struct {
	Enabled bool `json:"enabled"`
	// Name is a display label only.
	Name         string              `json:"name,omitempty"`
	Absorption   mgl32.Vec3          `json:"absorption"`
	Scattering   mgl32.Vec3          `json:"scattering"`
	Distribution DensityDistribution `json:"distribution"`
	Height       float32             `json:"height"`
	Thickness    float32             `json:"thickness"`
	Phase        PhaseFunction       `json:"phase"`
	Anisotropy   float32             `json:"anisotropy"`
	Density      float32             `json:"density"`
	Attenuation  Attenuation         `json:"attenuation"`
	Tint         mgl32.Vec3          `json:"tint"`
	// MultipleScatteringMultiplier scales the layer's multiple scattering contribution.
	MultipleScatteringMultiplier float32 `json:"multipleScatteringMultiplier"`
}

// BodyKind selects the ephemeris used when a body's direction is derived from date and time.
type BodyKind uint32

const (
	BodySun BodyKind = iota
	BodyMoon
)

// CelestialBody is a sun, moon or other body lighting the sky.
type CelestialBody struct {
	Enabled bool     `json:"enabled"`
	Name    string   `json:"name,omitempty"`
	Kind    BodyKind `json:"kind"`

	// Direction points from the observer towards the body (x east, y up, z north).
	// It is ignored when UseDateTime is set.
	Direction mgl32.Vec3 `json:"direction"`
	// UseDateTime derives Direction from DateTime (RFC 3339), Latitude and Longitude.
	UseDateTime bool    `json:"useDateTime"`
	DateTime    string  `json:"dateTime,omitempty"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`

	// AngularRadius is in radians.
	AngularRadius float32 `json:"angularRadius"`
	// Distance is in kilometres.
	Distance float32 `json:"distance"`

	Emissive           bool       `json:"emissive"`
	EmissiveTexture    string     `json:"emissiveTexture,omitempty"`
	EmissiveTint       mgl32.Vec3 `json:"emissiveTint"`
	EmissiveMultiplier float32    `json:"emissiveMultiplier"`

	Albedo        bool       `json:"albedo"`
	AlbedoTexture string     `json:"albedoTexture,omitempty"`
	AlbedoTint    mgl32.Vec3 `json:"albedoTint"`

	LightIntensity float32 `json:"lightIntensity"`
	// UseTemperature derives the light color from Temperature instead of Color.
	UseTemperature bool       `json:"useTemperature"`
	Color          mgl32.Vec3 `json:"color"`
	Temperature    float32    `json:"temperature"`
}

// Planet describes the ground sphere and the outer radius of the atmosphere, in kilometres.
type Planet struct {
	Radius              float32    `json:"radius"`
	AtmosphereThickness float32    `json:"atmosphereThickness"`
	GroundAlbedo        mgl32.Vec3 `json:"groundAlbedo"`
}

// AtmosphereRadius returns the radius of the top of the atmosphere.
func (p Planet) AtmosphereRadius() float32 {
	return p.Radius + p.AtmosphereThickness
}

// LightPollution describes artificial light emitted from the ground.
type LightPollution struct {
	Intensity float32    `json:"intensity"`
	Color     mgl32.Vec3 `json:"color"`
}

// SampleCounts are the integration step counts per precomputation stage.
type SampleCounts struct {
	Transmittance      int32 `json:"transmittance"`
	GroundIrradiance   int32 `json:"groundIrradiance"`
	LightPollution     int32 `json:"lightPollution"`
	SingleScattering   int32 `json:"singleScattering"`
	AerialPerspective  int32 `json:"aerialPerspective"`
	MultipleScattering int32 `json:"multipleScattering"`
	MSAccumulation     int32 `json:"msAccumulation"`
}

// Clouds holds the volumetric cloud layer parameters. Altitudes are in kilometres.
type Clouds struct {
	Enabled       bool       `json:"enabled"`
	Coverage      float32    `json:"coverage"`
	Density       float32    `json:"density"`
	Altitude      float32    `json:"altitude"`
	Thickness     float32    `json:"thickness"`
	Anisotropy    float32    `json:"anisotropy"`
	WindDirection mgl32.Vec2 `json:"windDirection"`
	WindSpeed     float32    `json:"windSpeed"`
	Seed          uint32     `json:"seed"`
	MarchSteps    int32      `json:"marchSteps"`
	// ReprojectionBlend is the weight given to the history buffer. Render time only.
	ReprojectionBlend float32 `json:"reprojectionBlend"`
}

// NightSky holds the procedural star field and nebula parameters.
type NightSky struct {
	StarSeed        uint32     `json:"starSeed"`
	StarDensity     float32    `json:"starDensity"`
	StarBrightness  float32    `json:"starBrightness"`
	NebulaSeed      uint32     `json:"nebulaSeed"`
	NebulaIntensity float32    `json:"nebulaIntensity"`
	NebulaTint      mgl32.Vec3 `json:"nebulaTint"`
	NebulaScale     float32    `json:"nebulaScale"`
	// Twinkle animates star intensity at render time only.
	Twinkle float32 `json:"twinkle"`
}

// Config is the complete sky parameter set. It is a plain value: copying it copies every layer and body.
type Config struct {
	Layers [MaxLayers]AtmosphereLayer `json:"layers"`
	Bodies [MaxBodies]CelestialBody   `json:"bodies"`

	Planet         Planet           `json:"planet"`
	LightPollution LightPollution   `json:"lightPollution"`
	Quality        quality.Tier     `json:"quality"`
	StarQuality    quality.StarTier `json:"starQuality"`
	Samples        SampleCounts     `json:"samples"`
	Clouds         Clouds           `json:"clouds"`
	NightSky       NightSky         `json:"nightSky"`
	// Exposure is applied by the composite pass only.
	Exposure float32 `json:"exposure"`
}

// IsLayerEnabled reports whether layer slot i exists and is enabled.
func (c *Config) IsLayerEnabled(i int) bool {
	return i >= 0 && i < MaxLayers && c.Layers[i].Enabled
}

// IsBodyEnabled reports whether body slot i exists and is enabled.
func (c *Config) IsBodyEnabled(i int) bool {
	return i >= 0 && i < MaxBodies && c.Bodies[i].Enabled
}

// Layer returns layer slot i. Out of range slots return a disabled zero layer and false.
func (c *Config) Layer(i int) (AtmosphereLayer, bool) {
	if i < 0 || i >= MaxLayers {
		return AtmosphereLayer{}, false
	}
	return c.Layers[i], true
}

// Body returns body slot i. Out of range slots return a disabled zero body and false.
func (c *Config) Body(i int) (CelestialBody, bool) {
	if i < 0 || i >= MaxBodies {
		return CelestialBody{}, false
	}
	return c.Bodies[i], true
}

// EarthRayleigh returns a Rayleigh layer with Earth-like coefficients.
func EarthRayleigh() AtmosphereLayer {
	return AtmosphereLayer{
		Enabled:                      true,
		Name:                         "rayleigh",
		Scattering:                   mgl32.Vec3{5.802e-3, 13.558e-3, 33.1e-3},
		Distribution:                 DensityExponential,
		Thickness:                    8,
		Phase:                        PhaseRayleigh,
		Density:                      1,
		Tint:                         mgl32.Vec3{1, 1, 1},
		MultipleScatteringMultiplier: 1,
	}
}

// EarthMie returns a Mie aerosol layer with Earth-like coefficients.
func EarthMie() AtmosphereLayer {
	return AtmosphereLayer{
		Enabled:                      true,
		Name:                         "mie",
		Absorption:                   mgl32.Vec3{4.4e-3, 4.4e-3, 4.4e-3},
		Scattering:                   mgl32.Vec3{3.996e-3, 3.996e-3, 3.996e-3},
		Distribution:                 DensityExponential,
		Thickness:                    1.2,
		Phase:                        PhaseMie,
		Anisotropy:                   0.8,
		Density:                      1,
		Tint:                         mgl32.Vec3{1, 1, 1},
		MultipleScatteringMultiplier: 1,
	}
}

// EarthOzone returns an absorbing ozone layer with a tent profile centered at 25 km.
func EarthOzone() AtmosphereLayer {
	return AtmosphereLayer{
		Enabled:                      true,
		Name:                         "ozone",
		Absorption:                   mgl32.Vec3{0.65e-3, 1.881e-3, 0.085e-3},
		Distribution:                 DensityTent,
		Height:                       25,
		Thickness:                    30,
		Phase:                        PhaseIsotropic,
		Density:                      1,
		Tint:                         mgl32.Vec3{1, 1, 1},
		MultipleScatteringMultiplier: 1,
	}
}

// Sun returns a body configured as the sun at a fixed direction.
func Sun() CelestialBody {
	return CelestialBody{
		Enabled:            true,
		Name:               "sun",
		Kind:               BodySun,
		Direction:          mgl32.Vec3{0, 0.5, 0.866}.Normalize(),
		AngularRadius:      0.004675,
		Distance:           1.496e8,
		Emissive:           true,
		EmissiveTint:       mgl32.Vec3{1, 1, 1},
		EmissiveMultiplier: 1,
		LightIntensity:     1,
		UseTemperature:     true,
		Color:              mgl32.Vec3{1, 1, 1},
		Temperature:        5778,
	}
}

// Moon returns a body configured as the moon, lit by albedo only.
func Moon() CelestialBody {
	return CelestialBody{
		Enabled:        true,
		Name:           "moon",
		Kind:           BodyMoon,
		Direction:      mgl32.Vec3{0, 0.3, -0.95}.Normalize(),
		AngularRadius:  0.0045,
		Distance:       384400,
		Albedo:         true,
		AlbedoTint:     mgl32.Vec3{1, 1, 1},
		LightIntensity: 0.05,
		Color:          mgl32.Vec3{0.8, 0.85, 1},
		Temperature:    4100,
	}
}

// Default returns an Earth-like configuration with Rayleigh, Mie and ozone layers and a single sun.
func Default() Config {
	c := Config{
		Planet: Planet{
			Radius:              6360,
			AtmosphereThickness: 100,
			GroundAlbedo:        mgl32.Vec3{0.3, 0.3, 0.3},
		},
		LightPollution: LightPollution{Intensity: 0, Color: mgl32.Vec3{1, 0.6, 0.3}},
		Quality:        quality.Medium,
		StarQuality:    quality.StarMedium,
		Samples: SampleCounts{
			Transmittance:      40,
			GroundIrradiance:   32,
			LightPollution:     32,
			SingleScattering:   32,
			AerialPerspective:  16,
			MultipleScattering: 20,
			MSAccumulation:     16,
		},
		Clouds: Clouds{
			Enabled:           true,
			Coverage:          0.45,
			Density:           0.03,
			Altitude:          1.5,
			Thickness:         3,
			Anisotropy:        0.6,
			WindDirection:     mgl32.Vec2{1, 0},
			WindSpeed:         0.01,
			Seed:              1,
			MarchSteps:        64,
			ReprojectionBlend: 0.9,
		},
		NightSky: NightSky{
			StarSeed:        7,
			StarDensity:     0.5,
			StarBrightness:  1,
			NebulaSeed:      13,
			NebulaIntensity: 0.2,
			NebulaTint:      mgl32.Vec3{0.6, 0.4, 1},
			NebulaScale:     1,
			Twinkle:         0.1,
		},
		Exposure: 10,
	}
	c.Layers[0] = EarthRayleigh()
	c.Layers[1] = EarthMie()
	c.Layers[2] = EarthOzone()
	c.Bodies[0] = Sun()
	return c
}
