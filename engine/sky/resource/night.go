package resource

import (
	"github.com/Carmen-Shannon/oxy-sky/engine/sky/gpu"
	"github.com/Carmen-Shannon/oxy-sky/engine/sky/quality"
)

// NightSkyTextures holds the procedural star and nebula cubemaps.
type NightSkyTextures struct {
	Stars       gpu.Table
	Nebulae     gpu.Table
	Resolutions quality.NightSkyResolutionSet
}

// Lookup returns the cubemap bound to a night sky kernel slot, or nil.
func (n *NightSkyTextures) Lookup(slot string, _ int) gpu.Table {
	if n == nil {
		return nil
	}
	switch slot {
	case gpu.SlotStars:
		return n.Stars
	case gpu.SlotNebulae:
		return n.Nebulae
	}
	return nil
}

func (n *NightSkyTextures) release() {
	for _, t := range []gpu.Table{n.Stars, n.Nebulae} {
		if t != nil {
			t.Release()
		}
	}
}

func nightDescriptors(prefix string, res quality.NightSkyResolutionSet) []gpu.TableDescriptor {
	usage := gpu.UsageSampled | gpu.UsageStorage
	return []gpu.TableDescriptor{
		{Label: prefix + gpu.SlotStars, Dimension: gpu.DimensionCube, Format: gpu.FormatRGBA16Float,
			Width: res.StarFace, Height: res.StarFace, Depth: 6, Usage: usage},
		{Label: prefix + gpu.SlotNebulae, Dimension: gpu.DimensionCube, Format: gpu.FormatRGBA16Float,
			Width: res.NebulaFace, Height: res.NebulaFace, Depth: 6, Usage: usage},
	}
}
