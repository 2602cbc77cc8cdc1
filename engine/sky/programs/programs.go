// Package programs holds the WGSL kernels and passes that fill and shade the sky tables, and
// registers them with a renderer.
package programs

import (
	"embed"
	"fmt"
	"path"
	"strconv"

	"github.com/Carmen-Shannon/oxy-sky/engine/renderer"
	"github.com/Carmen-Shannon/oxy-sky/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-sky/engine/sky/gpu"
)

//go:embed assets/kernels/*.wgsl assets/passes/*.wgsl
var assets embed.FS

// Pre-processor flags and defines the programs read.
const (
	FlagDepth  = "depth"
	FlagCube   = "cube"
	FlagScreen = "screen"

	DefineTileSize      = "TILE_SIZE"
	DefineTableFormat   = "TABLE_FORMAT"
	DefineTargetTexture = "TARGET_TEXTURE"
)

var kernelFiles = map[string]string{
	gpu.KernelTransmittance:         "transmittance.wgsl",
	gpu.KernelGroundIrradiance:      "ground_irradiance.wgsl",
	gpu.KernelLightPollution:        "light_pollution.wgsl",
	gpu.KernelSingleScattering:      "single_scattering.wgsl",
	gpu.KernelAerialPerspective:     "aerial_perspective.wgsl",
	gpu.KernelMultipleScattering:    "multiple_scattering.wgsl",
	gpu.KernelMultipleScatteringAcc: "ms_accumulation.wgsl",
	gpu.KernelStars:                 "stars.wgsl",
	gpu.KernelNebulae:               "nebulae.wgsl",
}

// passProgram describes one pass variant: its source file, the properties it binds in order
// and the flags it is compiled with.
type passProgram struct {
	file     string
	textures []string
	uniforms []string
	cube     bool
	depth    bool
}

var (
	skyTextures = []string{
		gpu.SlotTransmittance,
		gpu.SlotSingleScattering,
		gpu.SlotMSAccumulation,
		gpu.SlotGroundIrradiance,
		gpu.SlotLightPollution,
		gpu.SlotStars,
		gpu.SlotNebulae,
	}
	skyUniforms = []string{gpu.UniformAtmosphere, gpu.UniformFrame, gpu.UniformBodies, gpu.UniformNightSky}

	cloudTextures = []string{
		gpu.SlotTransmittance,
		gpu.SlotAerialPerspective,
		gpu.PropertyAerialPerspectiveFar,
		gpu.PropertyHistoryColor,
		gpu.PropertyHistoryTransmittance,
	}
	cloudUniforms = []string{gpu.UniformAtmosphere, gpu.UniformFrame, gpu.UniformBodies, gpu.UniformClouds}

	compositeTextures = []string{gpu.PropertySkyColor, gpu.PropertyCloudColor, gpu.PropertyCloudTransmittance}
	compositeUniforms = []string{gpu.UniformFrame}
)

var passPrograms = map[gpu.PassIndex]passProgram{
	gpu.PassSkyCubemap:          {file: "sky.wgsl", textures: skyTextures, uniforms: skyUniforms, cube: true},
	gpu.PassSkyFullscreen:       {file: "sky.wgsl", textures: skyTextures, uniforms: skyUniforms, depth: true},
	gpu.PassCloudsCubemap:       {file: "clouds.wgsl", textures: cloudTextures, uniforms: cloudUniforms, cube: true},
	gpu.PassCloudsFullscreen:    {file: "clouds.wgsl", textures: cloudTextures, uniforms: cloudUniforms, depth: true},
	gpu.PassCompositeCubemap:    {file: "composite.wgsl", textures: compositeTextures, uniforms: compositeUniforms, cube: true},
	gpu.PassCompositeFullscreen: {file: "composite.wgsl", textures: compositeTextures, uniforms: compositeUniforms},
}

// KernelNames returns the names of every kernel program in a stable order.
func KernelNames() []string {
	return []string{
		gpu.KernelTransmittance,
		gpu.KernelGroundIrradiance,
		gpu.KernelLightPollution,
		gpu.KernelSingleScattering,
		gpu.KernelAerialPerspective,
		gpu.KernelMultipleScattering,
		gpu.KernelMultipleScatteringAcc,
		gpu.KernelStars,
		gpu.KernelNebulae,
	}
}

// Kernel pre-processes the compute program of one kernel.
//
// Parameters:
//   - name: one of the gpu.Kernel* names
//   - format: the texel format of the scattering tables, RGBA16Float or RGBA32Float
//
// Returns:
//   - shader.Shader: the processed program with its bindings
//   - error: an error if the name is unknown, the format has no storage form or the source is malformed
func Kernel(name string, format gpu.Format) (shader.Shader, error) {
	file, ok := kernelFiles[name]
	if !ok {
		return nil, fmt.Errorf("unknown kernel %q", name)
	}
	if format != gpu.FormatRGBA16Float && format != gpu.FormatRGBA32Float {
		return nil, fmt.Errorf("kernel %s: table format %s cannot be written by a kernel", name, format)
	}
	src, err := assets.ReadFile(path.Join("assets/kernels", file))
	if err != nil {
		return nil, fmt.Errorf("kernel %s: %w", name, err)
	}
	return shader.ParseShader(name, shader.ShaderTypeCompute, string(src),
		shader.WithDefine(DefineTileSize, strconv.Itoa(gpu.TileSize)),
		shader.WithDefine(DefineTableFormat, format.String()),
	)
}

// Pass pre-processes the program of one pass variant.
//
// Parameters:
//   - index: the pass the program serves
//
// Returns:
//   - shader.Shader: the processed program with its bindings
//   - renderer.PassDescriptor: the descriptor to register with a renderer
//   - error: an error if the index is unknown or the source is malformed
func Pass(index gpu.PassIndex) (shader.Shader, renderer.PassDescriptor, error) {
	p, ok := passPrograms[index]
	if !ok {
		return nil, renderer.PassDescriptor{}, fmt.Errorf("unknown pass %s", index)
	}
	src, err := assets.ReadFile(path.Join("assets/passes", p.file))
	if err != nil {
		return nil, renderer.PassDescriptor{}, fmt.Errorf("pass %s: %w", index, err)
	}
	target := "texture_2d<f32>"
	if p.cube {
		target = "texture_cube<f32>"
	}
	s, err := shader.ParseShader(index.String(), shader.ShaderTypeRender, string(src),
		shader.WithFlag(FlagCube, p.cube),
		shader.WithFlag(FlagScreen, !p.cube),
		shader.WithFlag(FlagDepth, p.depth),
		shader.WithDefine(DefineTargetTexture, target),
	)
	if err != nil {
		return nil, renderer.PassDescriptor{}, err
	}
	return s, renderer.PassDescriptor{
		Source:             s.Source(),
		VertexEntryPoint:   s.VertexEntryPoint(),
		FragmentEntryPoint: s.FragmentEntryPoint(),
		Textures:           append([]string(nil), p.textures...),
		Uniforms:           append([]string(nil), p.uniforms...),
		Depth:              p.depth,
	}, nil
}

// Kernels builds the descriptor of every kernel.
func Kernels(format gpu.Format) (map[string]renderer.KernelDescriptor, error) {
	out := make(map[string]renderer.KernelDescriptor, len(kernelFiles))
	for _, name := range KernelNames() {
		s, err := Kernel(name, format)
		if err != nil {
			return nil, err
		}
		out[name] = renderer.KernelDescriptor{Source: s.Source(), EntryPoint: s.ComputeEntryPoint()}
	}
	return out, nil
}

// Passes builds the descriptor of every pass variant.
func Passes() (map[gpu.PassIndex]renderer.PassDescriptor, error) {
	out := make(map[gpu.PassIndex]renderer.PassDescriptor, gpu.PassCount)
	for i := range gpu.PassCount {
		_, desc, err := Pass(gpu.PassIndex(i))
		if err != nil {
			return nil, err
		}
		out[gpu.PassIndex(i)] = desc
	}
	return out, nil
}

// RendererOptions returns the builder options registering every kernel and pass with a renderer.
//
// Parameters:
//   - format: the texel format the resource pool allocates scattering tables with
//
// Returns:
//   - []renderer.RendererBuilderOption: one option per program
//   - error: an error if any program fails to pre-process
func RendererOptions(format gpu.Format) ([]renderer.RendererBuilderOption, error) {
	kernels, err := Kernels(format)
	if err != nil {
		return nil, err
	}
	passes, err := Passes()
	if err != nil {
		return nil, err
	}
	opts := make([]renderer.RendererBuilderOption, 0, len(kernels)+len(passes))
	for _, name := range KernelNames() {
		opts = append(opts, renderer.WithKernel(name, kernels[name]))
	}
	for i := range gpu.PassCount {
		opts = append(opts, renderer.WithPass(gpu.PassIndex(i), passes[gpu.PassIndex(i)]))
	}
	return opts, nil
}
