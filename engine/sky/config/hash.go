package config

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/cespare/xxhash/v2"
	"github.com/go-gl/mathgl/mgl32"
)

// HashGroup names one of the disjoint parameter subsets tracked for change detection.
type HashGroup int

const (
	// GroupSky covers everything the precomputed scattering tables depend on.
	GroupSky HashGroup = iota
	// GroupCloud covers the cloud parameters that invalidate reprojection history.
	GroupCloud
	// GroupNightSky covers the procedural star and nebula textures.
	GroupNightSky
)

// GroupCount is the number of hash groups.
const GroupCount = 3

func (g HashGroup) String() string {
	switch g {
	case GroupSky:
		return "sky"
	case GroupCloud:
		return "cloud"
	case GroupNightSky:
		return "night-sky"
	default:
		return fmt.Sprintf("group(%d)", int(g))
	}
}

// Hash is a content digest of one group.
type Hash uint64

// ComputeHash digests the fields of group g.
//
// Each field is hashed on its own, keyed by group, field name and index, and the field hashes are summed,
// so the result does not depend on the order fields are visited but does depend on the group.
// Fields outside the group never reach the digest.
//
// Parameters:
//   - g: the group to digest
//
// Returns:
//   - Hash: the group digest
func (c *Config) ComputeHash(g HashGroup) Hash {
	d := newDigest(g, nil)
	c.visit(g, d)
	return d.sum()
}

// FieldNames lists the fields that feed the digest of group g for this configuration.
// Layer fields only appear for enabled layers.
func (c *Config) FieldNames(g HashGroup) []string {
	var names []string
	d := newDigest(g, &names)
	c.visit(g, d)
	return names
}

func (c *Config) visit(g HashGroup, d *digest) {
	switch g {
	case GroupSky:
		c.visitSky(d)
	case GroupCloud:
		c.visitCloud(d)
	case GroupNightSky:
		c.visitNightSky(d)
	}
}

func (c *Config) visitSky(d *digest) {
	d.f32("planet.radius", 0, c.Planet.Radius)
	d.f32("planet.atmosphereThickness", 0, c.Planet.AtmosphereThickness)
	d.vec3("planet.groundAlbedo", 0, c.Planet.GroundAlbedo)
	d.f32("lightPollution.intensity", 0, c.LightPollution.Intensity)
	d.vec3("lightPollution.color", 0, c.LightPollution.Color)
	d.u32("quality", 0, uint32(c.Quality))

	d.u32("samples.transmittance", 0, uint32(c.Samples.Transmittance))
	d.u32("samples.groundIrradiance", 0, uint32(c.Samples.GroundIrradiance))
	d.u32("samples.lightPollution", 0, uint32(c.Samples.LightPollution))
	d.u32("samples.singleScattering", 0, uint32(c.Samples.SingleScattering))
	d.u32("samples.aerialPerspective", 0, uint32(c.Samples.AerialPerspective))
	d.u32("samples.multipleScattering", 0, uint32(c.Samples.MultipleScattering))
	d.u32("samples.msAccumulation", 0, uint32(c.Samples.MSAccumulation))

	// Layers are keyed by their position in the active list, which is also their table slot.
	active := c.ActiveLayers()
	d.u32("layers.count", 0, uint32(active.Count))
	for i := 0; i < active.Count; i++ {
		l := &active.Items[i]
		d.vec3("layer.absorption", i, l.Absorption)
		d.vec3("layer.scattering", i, l.Scattering)
		d.u32("layer.distribution", i, uint32(l.Distribution))
		d.f32("layer.height", i, l.Height)
		d.f32("layer.thickness", i, l.Thickness)
		d.u32("layer.phase", i, uint32(l.Phase))
		d.f32("layer.anisotropy", i, l.Anisotropy)
		d.f32("layer.density", i, l.Density)
		d.boolean("layer.attenuation.enabled", i, l.Attenuation.Enabled)
		d.vec3("layer.attenuation.origin", i, l.Attenuation.Origin)
		d.f32("layer.attenuation.distance", i, l.Attenuation.Distance)
		d.f32("layer.attenuation.bias", i, l.Attenuation.Bias)
		d.vec3("layer.tint", i, l.Tint)
		d.f32("layer.multipleScatteringMultiplier", i, l.MultipleScatteringMultiplier)
	}
}

func (c *Config) visitCloud(d *digest) {
	cl := &c.Clouds
	d.boolean("clouds.enabled", 0, cl.Enabled)
	d.f32("clouds.coverage", 0, cl.Coverage)
	d.f32("clouds.density", 0, cl.Density)
	d.f32("clouds.altitude", 0, cl.Altitude)
	d.f32("clouds.thickness", 0, cl.Thickness)
	d.f32("clouds.anisotropy", 0, cl.Anisotropy)
	d.f32("clouds.windDirection.x", 0, cl.WindDirection[0])
	d.f32("clouds.windDirection.y", 0, cl.WindDirection[1])
	d.f32("clouds.windSpeed", 0, cl.WindSpeed)
	d.u32("clouds.seed", 0, cl.Seed)
	d.u32("clouds.marchSteps", 0, uint32(cl.MarchSteps))
}

func (c *Config) visitNightSky(d *digest) {
	n := &c.NightSky
	d.u32("starQuality", 0, uint32(c.StarQuality))
	d.u32("nightSky.starSeed", 0, n.StarSeed)
	d.f32("nightSky.starDensity", 0, n.StarDensity)
	d.f32("nightSky.starBrightness", 0, n.StarBrightness)
	d.u32("nightSky.nebulaSeed", 0, n.NebulaSeed)
	d.f32("nightSky.nebulaIntensity", 0, n.NebulaIntensity)
	d.vec3("nightSky.nebulaTint", 0, n.NebulaTint)
	d.f32("nightSky.nebulaScale", 0, n.NebulaScale)
}

// digest accumulates per-field hashes for one group.
type digest struct {
	group HashGroup
	h     *xxhash.Digest
	acc   uint64
	n     uint64
	buf   [64]byte
	names *[]string
}

func newDigest(g HashGroup, names *[]string) *digest {
	return &digest{group: g, h: xxhash.New(), names: names}
}

func (d *digest) field(name string, index int, value []byte) {
	if d.names != nil {
		*d.names = append(*d.names, fmt.Sprintf("%s[%d]", name, index))
	}
	d.h.Reset()
	var hdr [8]byte
	binary.LittleEndian.PutUint32(hdr[0:4], uint32(d.group))
	binary.LittleEndian.PutUint32(hdr[4:8], uint32(index))
	_, _ = d.h.Write(hdr[:])
	_, _ = d.h.WriteString(name)
	_, _ = d.h.Write(value)
	d.acc += d.h.Sum64()
	d.n++
}

func (d *digest) f32(name string, index int, v float32) {
	binary.LittleEndian.PutUint32(d.buf[0:4], math.Float32bits(v))
	d.field(name, index, d.buf[:4])
}

func (d *digest) u32(name string, index int, v uint32) {
	binary.LittleEndian.PutUint32(d.buf[0:4], v)
	d.field(name, index, d.buf[:4])
}

func (d *digest) boolean(name string, index int, v bool) {
	d.buf[0] = 0
	if v {
		d.buf[0] = 1
	}
	d.field(name, index, d.buf[:1])
}

func (d *digest) vec3(name string, index int, v mgl32.Vec3) {
	for i := 0; i < 3; i++ {
		binary.LittleEndian.PutUint32(d.buf[i*4:i*4+4], math.Float32bits(v[i]))
	}
	d.field(name, index, d.buf[:12])
}

func (d *digest) sum() Hash {
	d.h.Reset()
	var tail [20]byte
	binary.LittleEndian.PutUint32(tail[0:4], uint32(d.group))
	binary.LittleEndian.PutUint64(tail[4:12], d.acc)
	binary.LittleEndian.PutUint64(tail[12:20], d.n)
	_, _ = d.h.Write(tail[:])
	return Hash(d.h.Sum64())
}
