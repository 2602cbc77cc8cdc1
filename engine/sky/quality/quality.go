// Package quality maps discrete quality tiers to concrete lookup table resolutions.
package quality

import "fmt"

// Tier is an ordered quality level. Higher tiers allocate larger tables.
type Tier int

const (
	Potato Tier = iota
	Low
	Medium
	High
	Ultra
)

func (t Tier) String() string {
	switch t {
	case Potato:
		return "potato"
	case Low:
		return "low"
	case Medium:
		return "medium"
	case High:
		return "high"
	case Ultra:
		return "ultra"
	default:
		return fmt.Sprintf("tier(%d)", int(t))
	}
}

// Valid reports whether t is one of the declared tiers.
func (t Tier) Valid() bool {
	return t >= Potato && t <= Ultra
}

// ParseTier resolves a tier name. Unknown names resolve to Potato and ok=false.
func ParseTier(name string) (Tier, bool) {
	for t := Potato; t <= Ultra; t++ {
		if t.String() == name {
			return t, true
		}
	}
	return Potato, false
}

// Table4D is the extent of a 4D scattering table, indexed by
// view zenith (Mu), sun zenith (MuS), view-sun angle (Nu) and altitude (R).
type Table4D struct {
	Mu, MuS, Nu, R uint32
}

// Packed returns the 2D-array layout of the table for a number of layers:
// Nu slices side by side in X, MuS in Y, and R slices per layer stacked in the array.
//
// Parameters:
//   - layers: number of atmosphere layers sharing the table, at least 1
//
// Returns:
//   - [3]uint32: width, height and array layer count
func (t Table4D) Packed(layers int) [3]uint32 {
	if layers < 1 {
		layers = 1
	}
	return [3]uint32{t.Mu * t.Nu, t.MuS, t.R * uint32(layers)}
}

// TableResolutionSet is the full set of table resolutions selected by a tier.
// It is a comparable value so that shape changes can be detected with ==.
type TableResolutionSet struct {
	Tier                 Tier
	Transmittance        [2]uint32
	MultipleScattering   [2]uint32
	SingleScattering     Table4D
	MSAccumulation       Table4D
	GroundIrradiance     uint32
	LightPollution       [2]uint32
	AerialPerspectiveLOD [2][3]uint32
}

var resolutions = [...]TableResolutionSet{
	Potato: {
		Tier:                 Potato,
		Transmittance:        [2]uint32{128, 32},
		MultipleScattering:   [2]uint32{16, 16},
		SingleScattering:     Table4D{Mu: 32, MuS: 16, Nu: 4, R: 8},
		MSAccumulation:       Table4D{Mu: 16, MuS: 8, Nu: 4, R: 8},
		GroundIrradiance:     32,
		LightPollution:       [2]uint32{32, 16},
		AerialPerspectiveLOD: [2][3]uint32{{16, 16, 16}, {8, 8, 8}},
	},
	Low: {
		Tier:                 Low,
		Transmittance:        [2]uint32{256, 64},
		MultipleScattering:   [2]uint32{32, 32},
		SingleScattering:     Table4D{Mu: 64, MuS: 32, Nu: 4, R: 16},
		MSAccumulation:       Table4D{Mu: 32, MuS: 16, Nu: 4, R: 16},
		GroundIrradiance:     64,
		LightPollution:       [2]uint32{64, 32},
		AerialPerspectiveLOD: [2][3]uint32{{32, 32, 32}, {16, 16, 16}},
	},
	Medium: {
		Tier:                 Medium,
		Transmittance:        [2]uint32{256, 64},
		MultipleScattering:   [2]uint32{32, 32},
		SingleScattering:     Table4D{Mu: 128, MuS: 32, Nu: 8, R: 32},
		MSAccumulation:       Table4D{Mu: 64, MuS: 32, Nu: 8, R: 32},
		GroundIrradiance:     64,
		LightPollution:       [2]uint32{128, 64},
		AerialPerspectiveLOD: [2][3]uint32{{32, 32, 32}, {16, 16, 16}},
	},
	High: {
		Tier:                 High,
		Transmittance:        [2]uint32{512, 128},
		MultipleScattering:   [2]uint32{64, 64},
		SingleScattering:     Table4D{Mu: 256, MuS: 64, Nu: 16, R: 32},
		MSAccumulation:       Table4D{Mu: 128, MuS: 32, Nu: 8, R: 32},
		GroundIrradiance:     128,
		LightPollution:       [2]uint32{256, 128},
		AerialPerspectiveLOD: [2][3]uint32{{64, 64, 32}, {32, 32, 16}},
	},
	Ultra: {
		Tier:                 Ultra,
		Transmittance:        [2]uint32{1024, 256},
		MultipleScattering:   [2]uint32{64, 64},
		SingleScattering:     Table4D{Mu: 256, MuS: 128, Nu: 16, R: 64},
		MSAccumulation:       Table4D{Mu: 128, MuS: 64, Nu: 16, R: 32},
		GroundIrradiance:     256,
		LightPollution:       [2]uint32{512, 256},
		AerialPerspectiveLOD: [2][3]uint32{{128, 128, 64}, {64, 64, 32}},
	},
}

// Resolutions returns the resolution set for tier. Values outside the declared tiers
// fall back to the lowest tier.
//
// Parameters:
//   - tier: the requested quality tier
//
// Returns:
//   - TableResolutionSet: the resolutions for tier, or for Potato when tier is unknown
func Resolutions(tier Tier) TableResolutionSet {
	if !tier.Valid() {
		return resolutions[Potato]
	}
	return resolutions[tier]
}

// StarTier selects the resolution of the procedural star and nebula cubemaps.
// It is independent of Tier because the night sky is generated once and rarely changes.
type StarTier int

const (
	StarLow StarTier = iota
	StarMedium
	StarHigh
	StarUltra
)

func (t StarTier) String() string {
	switch t {
	case StarLow:
		return "low"
	case StarMedium:
		return "medium"
	case StarHigh:
		return "high"
	case StarUltra:
		return "ultra"
	default:
		return fmt.Sprintf("star-tier(%d)", int(t))
	}
}

// Valid reports whether t is one of the declared star tiers.
func (t StarTier) Valid() bool {
	return t >= StarLow && t <= StarUltra
}

// NightSkyResolutionSet holds the cube face sizes of the night sky textures.
type NightSkyResolutionSet struct {
	Tier       StarTier
	StarFace   uint32
	NebulaFace uint32
}

var starResolutions = [...]NightSkyResolutionSet{
	StarLow:    {Tier: StarLow, StarFace: 256, NebulaFace: 128},
	StarMedium: {Tier: StarMedium, StarFace: 512, NebulaFace: 256},
	StarHigh:   {Tier: StarHigh, StarFace: 1024, NebulaFace: 512},
	StarUltra:  {Tier: StarUltra, StarFace: 2048, NebulaFace: 1024},
}

// StarResolutions returns the night sky face sizes for tier, falling back to StarLow.
func StarResolutions(tier StarTier) NightSkyResolutionSet {
	if !tier.Valid() {
		return starResolutions[StarLow]
	}
	return starResolutions[tier]
}

func (t Tier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText decodes a tier name. Unknown names decode to an invalid tier so that
// configuration validation can report them; Resolutions still falls back to Potato.
func (t *Tier) UnmarshalText(b []byte) error {
	if tier, ok := ParseTier(string(b)); ok {
		*t = tier
		return nil
	}
	*t = Tier(-1)
	return nil
}

func (t StarTier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText decodes a star tier name, unknown names decode to an invalid tier.
func (t *StarTier) UnmarshalText(b []byte) error {
	for s := StarLow; s <= StarUltra; s++ {
		if s.String() == string(b) {
			*t = s
			return nil
		}
	}
	*t = StarTier(-1)
	return nil
}
