package resource

import (
	"github.com/Carmen-Shannon/oxy-sky/engine/sky/gpu"
	"github.com/Carmen-Shannon/oxy-sky/engine/sky/quality"
)

// TableSet is the allocated set of precomputed lookup tables for one resolution set and layer count.
// Tables are never resized in place: a shape change replaces the whole set.
type TableSet struct {
	Transmittance            gpu.Table
	MultipleScattering       gpu.Table
	SingleScattering         gpu.Table
	SingleScatteringNoShadow gpu.Table
	MSAccumulation           gpu.Table
	GroundIrradiance         gpu.Table
	LightPollution           gpu.Table
	AerialPerspective        [2]gpu.Table

	// Resolutions is the resolution set the tables were sized from.
	Resolutions quality.TableResolutionSet

	// LayerCount is the number of active layers requested. Zero means the set holds
	// single layer placeholders and no stage may write it.
	LayerCount int
}

// Lookup returns the table bound to a kernel slot. The lod selects between the two aerial
// perspective volumes and is ignored by every other slot.
//
// Parameters:
//   - slot: one of the gpu.Slot names
//   - lod: aerial perspective level, 0 or 1
//
// Returns:
//   - gpu.Table: the table, or nil if the slot is not part of the set
func (s *TableSet) Lookup(slot string, lod int) gpu.Table {
	if s == nil {
		return nil
	}
	switch slot {
	case gpu.SlotTransmittance:
		return s.Transmittance
	case gpu.SlotMultipleScattering:
		return s.MultipleScattering
	case gpu.SlotSingleScattering:
		return s.SingleScattering
	case gpu.SlotSingleScatteringNoShadow:
		return s.SingleScatteringNoShadow
	case gpu.SlotMSAccumulation:
		return s.MSAccumulation
	case gpu.SlotGroundIrradiance:
		return s.GroundIrradiance
	case gpu.SlotLightPollution:
		return s.LightPollution
	case gpu.SlotAerialPerspective:
		if lod < 0 || lod >= len(s.AerialPerspective) {
			return nil
		}
		return s.AerialPerspective[lod]
	}
	return nil
}

// All returns every table of the set, in allocation order.
func (s *TableSet) All() []gpu.Table {
	if s == nil {
		return nil
	}
	return []gpu.Table{
		s.Transmittance,
		s.MultipleScattering,
		s.SingleScattering,
		s.SingleScatteringNoShadow,
		s.MSAccumulation,
		s.GroundIrradiance,
		s.LightPollution,
		s.AerialPerspective[0],
		s.AerialPerspective[1],
	}
}

func (s *TableSet) release() {
	for _, t := range s.All() {
		if t != nil {
			t.Release()
		}
	}
}

// tableDescriptors lays out the precomputation tables for res and count layers.
// Transmittance and the isotropic multiple scattering estimate integrate all layers into one table.
// The transmittance table is read back to the CPU, so it is full float and copyable.
func tableDescriptors(prefix string, format gpu.Format, res quality.TableResolutionSet, count int) []gpu.TableDescriptor {
	layers := uint32(max(count, 1))
	rw := gpu.UsageSampled | gpu.UsageStorage
	ss := res.SingleScattering.Packed(int(layers))
	acc := res.MSAccumulation.Packed(int(layers))
	ap0, ap1 := res.AerialPerspectiveLOD[0], res.AerialPerspectiveLOD[1]

	return []gpu.TableDescriptor{
		{Label: prefix + gpu.SlotTransmittance, Dimension: gpu.Dimension2D, Format: gpu.FormatRGBA32Float,
			Width: res.Transmittance[0], Height: res.Transmittance[1], Depth: 1, Usage: rw | gpu.UsageCopySource},
		{Label: prefix + gpu.SlotMultipleScattering, Dimension: gpu.Dimension2D, Format: format,
			Width: res.MultipleScattering[0], Height: res.MultipleScattering[1], Depth: 1, Usage: rw},
		{Label: prefix + gpu.SlotSingleScattering, Dimension: gpu.Dimension2DArray, Format: format,
			Width: ss[0], Height: ss[1], Depth: ss[2], Usage: rw},
		{Label: prefix + gpu.SlotSingleScatteringNoShadow, Dimension: gpu.Dimension2DArray, Format: format,
			Width: ss[0], Height: ss[1], Depth: ss[2], Usage: rw},
		{Label: prefix + gpu.SlotMSAccumulation, Dimension: gpu.Dimension2DArray, Format: format,
			Width: acc[0], Height: acc[1], Depth: acc[2], Usage: rw},
		{Label: prefix + gpu.SlotGroundIrradiance, Dimension: gpu.Dimension2DArray, Format: format,
			Width: res.GroundIrradiance, Height: 1, Depth: layers, Usage: rw},
		{Label: prefix + gpu.SlotLightPollution, Dimension: gpu.Dimension2DArray, Format: format,
			Width: res.LightPollution[0], Height: res.LightPollution[1], Depth: layers, Usage: rw},
		{Label: prefix + gpu.SlotAerialPerspective + "0", Dimension: gpu.Dimension3D, Format: format,
			Width: ap0[0], Height: ap0[1], Depth: ap0[2], Usage: rw},
		{Label: prefix + gpu.SlotAerialPerspective + "1", Dimension: gpu.Dimension3D, Format: format,
			Width: ap1[0], Height: ap1[1], Depth: ap1[2], Usage: rw},
	}
}
