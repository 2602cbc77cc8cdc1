package precompute

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-sky/engine/sky/config"
	"github.com/Carmen-Shannon/oxy-sky/engine/sky/gpu"
)

// ErrStageOrder is returned when a stage reads a table that no earlier stage writes.
var ErrStageOrder = errors.New("precompute: stage reads a table before it is written")

// Stage is one compute dispatch of the precomputation sequence.
type Stage struct {
	// Name labels the dispatch, e.g. "SSAerialPerspective/LOD1".
	Name string
	// Kernel is the compute entry point.
	Kernel string
	// Inputs are the slots the kernel samples. Each must be written by an earlier stage.
	Inputs []string
	// Outputs are the slots the kernel writes. The first one sizes the dispatch grid.
	Outputs []string
	// LOD selects the aerial perspective volume.
	LOD int
	// Samples picks the integration step count from the configuration.
	Samples func(config.SampleCounts) int32
}

// DefaultStages returns the precomputation sequence in submission order:
// transmittance first, then everything that depends on it, and the multiple scattering
// accumulation last because it reads both single and multiple scattering.
//
// Returns:
//   - []Stage: a fresh copy of the default sequence
func DefaultStages() []Stage {
	return []Stage{
		{
			Name:    gpu.KernelTransmittance,
			Kernel:  gpu.KernelTransmittance,
			Outputs: []string{gpu.SlotTransmittance},
			Samples: func(s config.SampleCounts) int32 { return s.Transmittance },
		},
		{
			Name:    gpu.KernelGroundIrradiance,
			Kernel:  gpu.KernelGroundIrradiance,
			Inputs:  []string{gpu.SlotTransmittance},
			Outputs: []string{gpu.SlotGroundIrradiance},
			Samples: func(s config.SampleCounts) int32 { return s.GroundIrradiance },
		},
		{
			Name:    gpu.KernelLightPollution,
			Kernel:  gpu.KernelLightPollution,
			Inputs:  []string{gpu.SlotTransmittance},
			Outputs: []string{gpu.SlotLightPollution},
			Samples: func(s config.SampleCounts) int32 { return s.LightPollution },
		},
		{
			Name:    gpu.KernelSingleScattering,
			Kernel:  gpu.KernelSingleScattering,
			Inputs:  []string{gpu.SlotTransmittance},
			Outputs: []string{gpu.SlotSingleScattering, gpu.SlotSingleScatteringNoShadow},
			Samples: func(s config.SampleCounts) int32 { return s.SingleScattering },
		},
		{
			Name:    gpu.KernelAerialPerspective + "/LOD0",
			Kernel:  gpu.KernelAerialPerspective,
			Inputs:  []string{gpu.SlotTransmittance},
			Outputs: []string{gpu.SlotAerialPerspective},
			LOD:     0,
			Samples: func(s config.SampleCounts) int32 { return s.AerialPerspective },
		},
		{
			Name:    gpu.KernelAerialPerspective + "/LOD1",
			Kernel:  gpu.KernelAerialPerspective,
			Inputs:  []string{gpu.SlotTransmittance},
			Outputs: []string{gpu.SlotAerialPerspective},
			LOD:     1,
			Samples: func(s config.SampleCounts) int32 { return s.AerialPerspective },
		},
		{
			Name:    gpu.KernelMultipleScattering,
			Kernel:  gpu.KernelMultipleScattering,
			Inputs:  []string{gpu.SlotTransmittance},
			Outputs: []string{gpu.SlotMultipleScattering},
			Samples: func(s config.SampleCounts) int32 { return s.MultipleScattering },
		},
		{
			Name:    gpu.KernelMultipleScatteringAcc,
			Kernel:  gpu.KernelMultipleScatteringAcc,
			Inputs:  []string{gpu.SlotMultipleScattering, gpu.SlotSingleScattering},
			Outputs: []string{gpu.SlotMSAccumulation},
			Samples: func(s config.SampleCounts) int32 { return s.MSAccumulation },
		},
	}
}

// NightSkyStages returns the star and nebula generation sequence.
func NightSkyStages() []Stage {
	return []Stage{
		{Name: gpu.KernelStars, Kernel: gpu.KernelStars, Outputs: []string{gpu.SlotStars}},
		{Name: gpu.KernelNebulae, Kernel: gpu.KernelNebulae, Outputs: []string{gpu.SlotNebulae}},
	}
}

// ValidateOrder checks that every stage input is written by an earlier stage or is external.
//
// Parameters:
//   - stages: the stages in submission order
//   - external: slots that are valid before the first stage runs
//
// Returns:
//   - error: an error wrapping ErrStageOrder naming the first offending stage, or nil
func ValidateOrder(stages []Stage, external ...string) error {
	written := make(map[string]bool, len(external))
	for _, s := range external {
		written[s] = true
	}
	for i, st := range stages {
		if len(st.Outputs) == 0 {
			return fmt.Errorf("%w: stage %d %q writes nothing", ErrStageOrder, i, st.Name)
		}
		for _, in := range st.Inputs {
			if !written[in] {
				return fmt.Errorf("%w: stage %d %q reads %q", ErrStageOrder, i, st.Name, in)
			}
		}
		for _, out := range st.Outputs {
			written[out] = true
		}
	}
	return nil
}
