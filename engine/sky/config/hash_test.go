package config

import (
	"math/rand"
	"testing"

	"github.com/Carmen-Shannon/oxy-sky/engine/sky/quality"
	"github.com/go-gl/mathgl/mgl32"
)

const noGroup HashGroup = -1

type mutator struct {
	name   string
	group  HashGroup
	mutate func(c *Config, r *rand.Rand)
}

func bump32(p *float32, r *rand.Rand) {
	old := *p
	abs := old
	if abs < 0 {
		abs = -abs
	}
	*p = old + (abs+1)*(0.01+r.Float32())
}

func bump64(p *float64, r *rand.Rand) {
	old := *p
	abs := old
	if abs < 0 {
		abs = -abs
	}
	*p = old + (abs+1)*(0.01+r.Float64())
}

func f32(get func(c *Config) *float32) func(*Config, *rand.Rand) {
	return func(c *Config, r *rand.Rand) { bump32(get(c), r) }
}

func f64(get func(c *Config) *float64) func(*Config, *rand.Rand) {
	return func(c *Config, r *rand.Rand) { bump64(get(c), r) }
}

func vec(get func(c *Config) *mgl32.Vec3) func(*Config, *rand.Rand) {
	return func(c *Config, r *rand.Rand) { bump32(&get(c)[r.Intn(3)], r) }
}

func i32(get func(c *Config) *int32) func(*Config, *rand.Rand) {
	return func(c *Config, r *rand.Rand) { *get(c) += 1 + int32(r.Intn(1000)) }
}

func u32(get func(c *Config) *uint32) func(*Config, *rand.Rand) {
	return func(c *Config, r *rand.Rand) { *get(c) += 1 + uint32(r.Intn(1000)) }
}

func toggle(get func(c *Config) *bool) func(*Config, *rand.Rand) {
	return func(c *Config, _ *rand.Rand) { *get(c) = !*get(c) }
}

func str(get func(c *Config) *string) func(*Config, *rand.Rand) {
	return func(c *Config, r *rand.Rand) { *get(c) += string(rune('a' + r.Intn(26))) }
}

// layerMutators returns a mutator for every field of layer slot, attributed to group.
func layerMutators(slot int, group HashGroup) []mutator {
	l := func(c *Config) *AtmosphereLayer { return &c.Layers[slot] }
	return []mutator{
		{"absorption", group, vec(func(c *Config) *mgl32.Vec3 { return &l(c).Absorption })},
		{"scattering", group, vec(func(c *Config) *mgl32.Vec3 { return &l(c).Scattering })},
		{"distribution", group, func(c *Config, _ *rand.Rand) { l(c).Distribution = 1 - l(c).Distribution }},
		{"height", group, f32(func(c *Config) *float32 { return &l(c).Height })},
		{"thickness", group, f32(func(c *Config) *float32 { return &l(c).Thickness })},
		{"phase", group, func(c *Config, r *rand.Rand) { l(c).Phase = (l(c).Phase + 1 + PhaseFunction(r.Intn(2))) % 3 }},
		{"anisotropy", group, f32(func(c *Config) *float32 { return &l(c).Anisotropy })},
		{"density", group, f32(func(c *Config) *float32 { return &l(c).Density })},
		{"attenuation.enabled", group, toggle(func(c *Config) *bool { return &l(c).Attenuation.Enabled })},
		{"attenuation.origin", group, vec(func(c *Config) *mgl32.Vec3 { return &l(c).Attenuation.Origin })},
		{"attenuation.distance", group, f32(func(c *Config) *float32 { return &l(c).Attenuation.Distance })},
		{"attenuation.bias", group, f32(func(c *Config) *float32 { return &l(c).Attenuation.Bias })},
		{"tint", group, vec(func(c *Config) *mgl32.Vec3 { return &l(c).Tint })},
		{"multipleScatteringMultiplier", group, f32(func(c *Config) *float32 { return &l(c).MultipleScatteringMultiplier })},
		{"name", noGroup, str(func(c *Config) *string { return &l(c).Name })},
	}
}

func bodyMutators(slot int) []mutator {
	b := func(c *Config) *CelestialBody { return &c.Bodies[slot] }
	return []mutator{
		{"enabled", noGroup, toggle(func(c *Config) *bool { return &b(c).Enabled })},
		{"direction", noGroup, vec(func(c *Config) *mgl32.Vec3 { return &b(c).Direction })},
		{"useDateTime", noGroup, toggle(func(c *Config) *bool { return &b(c).UseDateTime })},
		{"dateTime", noGroup, str(func(c *Config) *string { return &b(c).DateTime })},
		{"latitude", noGroup, f64(func(c *Config) *float64 { return &b(c).Latitude })},
		{"longitude", noGroup, f64(func(c *Config) *float64 { return &b(c).Longitude })},
		{"angularRadius", noGroup, f32(func(c *Config) *float32 { return &b(c).AngularRadius })},
		{"distance", noGroup, f32(func(c *Config) *float32 { return &b(c).Distance })},
		{"emissive", noGroup, toggle(func(c *Config) *bool { return &b(c).Emissive })},
		{"emissiveTint", noGroup, vec(func(c *Config) *mgl32.Vec3 { return &b(c).EmissiveTint })},
		{"emissiveMultiplier", noGroup, f32(func(c *Config) *float32 { return &b(c).EmissiveMultiplier })},
		{"albedo", noGroup, toggle(func(c *Config) *bool { return &b(c).Albedo })},
		{"albedoTint", noGroup, vec(func(c *Config) *mgl32.Vec3 { return &b(c).AlbedoTint })},
		{"lightIntensity", noGroup, f32(func(c *Config) *float32 { return &b(c).LightIntensity })},
		{"useTemperature", noGroup, toggle(func(c *Config) *bool { return &b(c).UseTemperature })},
		{"color", noGroup, vec(func(c *Config) *mgl32.Vec3 { return &b(c).Color })},
		{"temperature", noGroup, f32(func(c *Config) *float32 { return &b(c).Temperature })},
	}
}

func allMutators() []mutator {
	ms := []mutator{
		{"planet.radius", GroupSky, f32(func(c *Config) *float32 { return &c.Planet.Radius })},
		{"planet.atmosphereThickness", GroupSky, f32(func(c *Config) *float32 { return &c.Planet.AtmosphereThickness })},
		{"planet.groundAlbedo", GroupSky, vec(func(c *Config) *mgl32.Vec3 { return &c.Planet.GroundAlbedo })},
		{"lightPollution.intensity", GroupSky, f32(func(c *Config) *float32 { return &c.LightPollution.Intensity })},
		{"lightPollution.color", GroupSky, vec(func(c *Config) *mgl32.Vec3 { return &c.LightPollution.Color })},
		{"quality", GroupSky, func(c *Config, r *rand.Rand) {
			c.Quality = (c.Quality + 1 + quality.Tier(r.Intn(4))) % 5
		}},
		{"samples.transmittance", GroupSky, i32(func(c *Config) *int32 { return &c.Samples.Transmittance })},
		{"samples.groundIrradiance", GroupSky, i32(func(c *Config) *int32 { return &c.Samples.GroundIrradiance })},
		{"samples.lightPollution", GroupSky, i32(func(c *Config) *int32 { return &c.Samples.LightPollution })},
		{"samples.singleScattering", GroupSky, i32(func(c *Config) *int32 { return &c.Samples.SingleScattering })},
		{"samples.aerialPerspective", GroupSky, i32(func(c *Config) *int32 { return &c.Samples.AerialPerspective })},
		{"samples.multipleScattering", GroupSky, i32(func(c *Config) *int32 { return &c.Samples.MultipleScattering })},
		{"samples.msAccumulation", GroupSky, i32(func(c *Config) *int32 { return &c.Samples.MSAccumulation })},
		{"layers[0].enabled", GroupSky, toggle(func(c *Config) *bool { return &c.Layers[0].Enabled })},
		{"layers[3].enabled", GroupSky, toggle(func(c *Config) *bool { return &c.Layers[3].Enabled })},

		{"clouds.enabled", GroupCloud, toggle(func(c *Config) *bool { return &c.Clouds.Enabled })},
		{"clouds.coverage", GroupCloud, f32(func(c *Config) *float32 { return &c.Clouds.Coverage })},
		{"clouds.density", GroupCloud, f32(func(c *Config) *float32 { return &c.Clouds.Density })},
		{"clouds.altitude", GroupCloud, f32(func(c *Config) *float32 { return &c.Clouds.Altitude })},
		{"clouds.thickness", GroupCloud, f32(func(c *Config) *float32 { return &c.Clouds.Thickness })},
		{"clouds.anisotropy", GroupCloud, f32(func(c *Config) *float32 { return &c.Clouds.Anisotropy })},
		{"clouds.windDirection", GroupCloud, func(c *Config, r *rand.Rand) { bump32(&c.Clouds.WindDirection[r.Intn(2)], r) }},
		{"clouds.windSpeed", GroupCloud, f32(func(c *Config) *float32 { return &c.Clouds.WindSpeed })},
		{"clouds.seed", GroupCloud, u32(func(c *Config) *uint32 { return &c.Clouds.Seed })},
		{"clouds.marchSteps", GroupCloud, i32(func(c *Config) *int32 { return &c.Clouds.MarchSteps })},
		{"clouds.reprojectionBlend", noGroup, f32(func(c *Config) *float32 { return &c.Clouds.ReprojectionBlend })},

		{"starQuality", GroupNightSky, func(c *Config, r *rand.Rand) {
			c.StarQuality = (c.StarQuality + 1 + quality.StarTier(r.Intn(3))) % 4
		}},
		{"nightSky.starSeed", GroupNightSky, u32(func(c *Config) *uint32 { return &c.NightSky.StarSeed })},
		{"nightSky.starDensity", GroupNightSky, f32(func(c *Config) *float32 { return &c.NightSky.StarDensity })},
		{"nightSky.starBrightness", GroupNightSky, f32(func(c *Config) *float32 { return &c.NightSky.StarBrightness })},
		{"nightSky.nebulaSeed", GroupNightSky, u32(func(c *Config) *uint32 { return &c.NightSky.NebulaSeed })},
		{"nightSky.nebulaIntensity", GroupNightSky, f32(func(c *Config) *float32 { return &c.NightSky.NebulaIntensity })},
		{"nightSky.nebulaTint", GroupNightSky, vec(func(c *Config) *mgl32.Vec3 { return &c.NightSky.NebulaTint })},
		{"nightSky.nebulaScale", GroupNightSky, f32(func(c *Config) *float32 { return &c.NightSky.NebulaScale })},
		{"nightSky.twinkle", noGroup, f32(func(c *Config) *float32 { return &c.NightSky.Twinkle })},

		{"exposure", noGroup, f32(func(c *Config) *float32 { return &c.Exposure })},
	}
	for _, m := range layerMutators(0, GroupSky) {
		m.name = "layers[0]." + m.name
		ms = append(ms, m)
	}
	for _, m := range layerMutators(2, GroupSky) {
		m.name = "layers[2]." + m.name
		ms = append(ms, m)
	}
	// Slot 3 is disabled in the base configuration, none of its fields may leak into a digest.
	for _, m := range layerMutators(3, noGroup) {
		m.name = "layers[3]." + m.name
		m.group = noGroup
		ms = append(ms, m)
	}
	for _, m := range bodyMutators(0) {
		m.name = "bodies[0]." + m.name
		ms = append(ms, m)
	}
	for _, m := range bodyMutators(1) {
		m.name = "bodies[1]." + m.name
		ms = append(ms, m)
	}
	return ms
}

func baseConfig() Config {
	c := Default()
	c.Layers[3] = EarthMie()
	c.Layers[3].Enabled = false
	c.Layers[3].Attenuation = Attenuation{Enabled: true, Origin: mgl32.Vec3{1, 2, 3}, Distance: 5, Bias: 0.5}
	c.Bodies[1] = Moon()
	return c
}

func digests(c *Config) [GroupCount]Hash {
	var d [GroupCount]Hash
	for g := HashGroup(0); g < GroupCount; g++ {
		d[g] = c.ComputeHash(g)
	}
	return d
}

func TestHashIndependence(t *testing.T) {
	const mutations = 100
	base := baseConfig()
	want := digests(&base)

	for _, m := range allMutators() {
		t.Run(m.name, func(t *testing.T) {
			rng := rand.New(rand.NewSource(int64(len(m.name)) * 7919))
			for i := 0; i < mutations; i++ {
				c := baseConfig()
				m.mutate(&c, rng)
				got := digests(&c)
				for g := HashGroup(0); g < GroupCount; g++ {
					if g == m.group {
						if got[g] == want[g] {
							t.Fatalf("mutation %d did not change the %v digest", i, g)
						}
						continue
					}
					if got[g] != want[g] {
						t.Fatalf("mutation %d changed the %v digest", i, g)
					}
				}
			}
		})
	}
}

func TestHashDeterministic(t *testing.T) {
	a, b := baseConfig(), baseConfig()
	if digests(&a) != digests(&b) {
		t.Fatal("equal configurations hash differently")
	}
}

func TestHashGroupsSeeded(t *testing.T) {
	var c Config
	d := digests(&c)
	if d[GroupSky] == d[GroupCloud] || d[GroupCloud] == d[GroupNightSky] || d[GroupSky] == d[GroupNightSky] {
		t.Errorf("groups share a digest: %v", d)
	}
}

func TestHashKeyedByActiveIndex(t *testing.T) {
	a := Default()
	b := Default()
	b.Layers[0] = AtmosphereLayer{}
	b.Layers[1] = a.Layers[0]
	b.Layers[2] = a.Layers[1]
	b.Layers[3] = a.Layers[2]
	if a.ComputeHash(GroupSky) != b.ComputeHash(GroupSky) {
		t.Error("shifting enabled layers to other slots changed the sky digest")
	}

	swapped := Default()
	swapped.Layers[0], swapped.Layers[1] = swapped.Layers[1], swapped.Layers[0]
	if a.ComputeHash(GroupSky) == swapped.ComputeHash(GroupSky) {
		t.Error("reordering active layers did not change the sky digest")
	}
}

func TestFieldNames(t *testing.T) {
	c := baseConfig()
	names := c.FieldNames(GroupSky)
	has := func(n string) bool {
		for _, s := range names {
			if s == n {
				return true
			}
		}
		return false
	}
	for _, n := range []string{"planet.radius[0]", "layer.absorption[0]", "layer.tint[2]", "layers.count[0]"} {
		if !has(n) {
			t.Errorf("sky fields missing %q", n)
		}
	}
	if has("layer.absorption[3]") {
		t.Error("disabled slot contributes to the sky digest")
	}
	if got := len(c.FieldNames(GroupCloud)); got != 11 {
		t.Errorf("cloud field count = %d, want 11", got)
	}
}
