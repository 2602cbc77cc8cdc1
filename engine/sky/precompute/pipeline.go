package precompute

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-sky/engine/sky/config"
	"github.com/Carmen-Shannon/oxy-sky/engine/sky/gpu"
	"github.com/Carmen-Shannon/oxy-sky/engine/sky/resource"
)

// ErrMissingTable is returned when a stage slot has no table to bind.
var ErrMissingTable = errors.New("precompute: missing table")

// slotSource resolves a kernel slot to a table.
type slotSource interface {
	Lookup(slot string, lod int) gpu.Table
}

// Pipeline records the precomputation stages into a device submission.
type Pipeline interface {
	// Run dispatches every scattering stage in order inside one submission.
	// Nothing is dispatched when the table set holds no active layers.
	//
	// Parameters:
	//   - dev: the device to record into
	//   - tables: the table set to write
	//   - cfg: the validated configuration the uniforms are built from
	//
	// Returns:
	//   - int: the number of dispatches recorded
	//   - error: an error wrapping ErrMissingTable, or a device error
	Run(dev gpu.Device, tables *resource.TableSet, cfg *config.Config) (int, error)

	// RunNightSky dispatches the star and nebula generation inside one submission.
	//
	// Parameters:
	//   - dev: the device to record into
	//   - night: the textures to write
	//   - cfg: the validated configuration
	//
	// Returns:
	//   - int: the number of dispatches recorded
	//   - error: an error wrapping ErrMissingTable, or a device error
	RunNightSky(dev gpu.Device, night *resource.NightSkyTextures, cfg *config.Config) (int, error)

	// Stages returns the scattering stages in submission order.
	Stages() []Stage
}

type pipeline struct {
	stages      []Stage
	nightStages []Stage
}

var _ Pipeline = &pipeline{}

// NewPipeline creates a Pipeline. It panics if the configured stage order is invalid.
//
// Parameters:
//   - options: functional options to configure the pipeline
//
// Returns:
//   - Pipeline: the new pipeline
func NewPipeline(options ...PipelineBuilderOption) Pipeline {
	p := &pipeline{
		stages:      DefaultStages(),
		nightStages: NightSkyStages(),
	}
	for _, opt := range options {
		opt(p)
	}
	if err := ValidateOrder(p.stages); err != nil {
		panic(err.Error())
	}
	if err := ValidateOrder(p.nightStages); err != nil {
		panic(err.Error())
	}
	return p
}

func (p *pipeline) Stages() []Stage {
	return append([]Stage(nil), p.stages...)
}

func (p *pipeline) Run(dev gpu.Device, tables *resource.TableSet, cfg *config.Config) (int, error) {
	if tables == nil {
		return 0, fmt.Errorf("%w: no table set", ErrMissingTable)
	}
	if tables.LayerCount == 0 {
		return 0, nil
	}

	atmosphere := NewAtmosphereUniforms(cfg)
	atmosphereBytes := atmosphere.Marshal()
	cmds, err := buildCommands(p.stages, tables, func(st Stage) []byte {
		params := GPUStageParams{
			LOD:        uint32(st.LOD),
			LayerCount: uint32(tables.LayerCount),
		}
		if st.Samples != nil {
			params.SampleCount = uint32(max(st.Samples(cfg.Samples), 1))
		}
		return stageUniforms(params, atmosphereBytes)
	})
	if err != nil {
		return 0, err
	}
	return submit(dev, cmds)
}

func (p *pipeline) RunNightSky(dev gpu.Device, night *resource.NightSkyTextures, cfg *config.Config) (int, error) {
	if night == nil {
		return 0, fmt.Errorf("%w: no night sky textures", ErrMissingTable)
	}
	cmds, err := buildCommands(p.nightStages, night, func(st Stage) []byte {
		face := night.Resolutions.StarFace
		if st.Kernel == gpu.KernelNebulae {
			face = night.Resolutions.NebulaFace
		}
		u := NewNightSkyUniforms(cfg, face)
		return u.Marshal()
	})
	if err != nil {
		return 0, err
	}
	return submit(dev, cmds)
}

// buildCommands resolves every binding before anything is recorded, so a missing table never
// leaves a half recorded submission.
func buildCommands(stages []Stage, src slotSource, uniforms func(Stage) []byte) ([]gpu.DispatchCommand, error) {
	cmds := make([]gpu.DispatchCommand, 0, len(stages))
	for _, st := range stages {
		cmd := gpu.DispatchCommand{
			Kernel:   st.Kernel,
			Label:    st.Name,
			Bindings: make([]gpu.Binding, 0, len(st.Inputs)+len(st.Outputs)),
			Uniforms: uniforms(st),
		}
		for _, slot := range st.Inputs {
			t := src.Lookup(slot, st.LOD)
			if t == nil {
				return nil, fmt.Errorf("%w: %s input %q", ErrMissingTable, st.Name, slot)
			}
			cmd.Bindings = append(cmd.Bindings, gpu.Binding{Slot: slot, Table: t, Access: gpu.AccessRead})
		}
		for _, slot := range st.Outputs {
			t := src.Lookup(slot, st.LOD)
			if t == nil {
				return nil, fmt.Errorf("%w: %s output %q", ErrMissingTable, st.Name, slot)
			}
			cmd.Bindings = append(cmd.Bindings, gpu.Binding{Slot: slot, Table: t, Access: gpu.AccessWrite})
		}
		cmd.Groups = gpu.DispatchGrid(src.Lookup(st.Outputs[0], st.LOD).Descriptor().Extent())
		cmds = append(cmds, cmd)
	}
	return cmds, nil
}

// submit records cmds in order inside one submission. The submission is always closed.
func submit(dev gpu.Device, cmds []gpu.DispatchCommand) (int, error) {
	if err := dev.BeginCommands(); err != nil {
		return 0, fmt.Errorf("failed to begin precompute submission: %w", err)
	}
	n := 0
	for _, cmd := range cmds {
		if err := dev.Dispatch(cmd); err != nil {
			if endErr := dev.EndCommands(); endErr != nil {
				err = errors.Join(err, endErr)
			}
			return n, fmt.Errorf("failed to dispatch %s: %w", cmd.Label, err)
		}
		n++
	}
	if err := dev.EndCommands(); err != nil {
		return n, fmt.Errorf("failed to submit precompute: %w", err)
	}
	return n, nil
}
