package shader

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// ShaderType identifies whether a shader is a render shader or a compute shader.
type ShaderType int

const (
	// ShaderTypeCompute indicates a shader containing a @compute entry point.
	ShaderTypeCompute ShaderType = iota

	// ShaderTypeRender indicates a shader containing both a @vertex and a @fragment entry point.
	ShaderTypeRender
)

// shader is the implementation of the Shader interface.
type shader struct {
	key                string
	source             string
	shaderType         ShaderType
	bindings           map[string]uint32
	workGroupSize      [3]uint32
	computeEntryPoint  string
	vertexEntryPoint   string
	fragmentEntryPoint string
	module             *wgpu.ShaderModuleDescriptor

	pp PreProcessor
}

// Shader is a pre-processed WGSL program along with the metadata parsed from it.
type Shader interface {
	// Key retrieves the unique identifier for this shader.
	Key() string

	// Source retrieves the processed WGSL source code.
	Source() string

	// ShaderType returns whether the shader is a compute or a render program.
	ShaderType() ShaderType

	// ComputeEntryPoint returns the @compute function name, or "" for render shaders.
	ComputeEntryPoint() string

	// VertexEntryPoint returns the @vertex function name, or "" for compute shaders.
	VertexEntryPoint() string

	// FragmentEntryPoint returns the @fragment function name, or "" for compute shaders.
	FragmentEntryPoint() string

	// WorkgroupSize returns the workgroup size of a compute shader, [1, 1, 1] when it is not
	// declared and [0, 0, 0] for render shaders.
	//
	// Returns:
	//   - [3]uint32: the workgroup size as [x, y, z]
	WorkgroupSize() [3]uint32

	// Binding returns the group 0 binding index of a module-scope resource variable.
	//
	// Parameters:
	//   - varName: the WGSL variable name
	//
	// Returns:
	//   - uint32: the binding index
	//   - bool: true if the variable is declared
	Binding(varName string) (uint32, bool)

	// Bindings returns every group 0 resource variable keyed by name.
	Bindings() map[string]uint32

	// Module returns the shader module descriptor built from the processed source.
	Module() *wgpu.ShaderModuleDescriptor

	// Declarations returns the @oxy:group annotations found in the source.
	Declarations() []Annotation
}

var _ Shader = &shader{}

// NewShader pre-processes source and parses its entry points and bindings.
// It panics when the source cannot be processed, the same way a missing asset would.
//
// Parameters:
//   - key: a unique identifier for the shader
//   - shaderType: compute or render
//   - source: the annotated WGSL source
//   - options: defines and flags for the pre-processor
//
// Returns:
//   - Shader: the processed shader
func NewShader(key string, shaderType ShaderType, source string, options ...PreProcessorBuilderOption) Shader {
	s, err := ParseShader(key, shaderType, source, options...)
	if err != nil {
		panic(fmt.Sprintf("shader: %v", err))
	}
	return s
}

// ParseShader is NewShader returning an error instead of panicking.
// A shader without the entry point its type requires is an error.
func ParseShader(key string, shaderType ShaderType, source string, options ...PreProcessorBuilderOption) (Shader, error) {
	if source == "" {
		return nil, fmt.Errorf("%s: empty source", key)
	}
	s := &shader{
		key:        key,
		shaderType: shaderType,
		pp:         NewPreProcessor(options...),
	}
	if err := s.parseSource(source); err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	return s, nil
}

func (s *shader) Key() string                { return s.key }
func (s *shader) Source() string             { return s.source }
func (s *shader) ShaderType() ShaderType     { return s.shaderType }
func (s *shader) ComputeEntryPoint() string  { return s.computeEntryPoint }
func (s *shader) VertexEntryPoint() string   { return s.vertexEntryPoint }
func (s *shader) FragmentEntryPoint() string { return s.fragmentEntryPoint }
func (s *shader) WorkgroupSize() [3]uint32   { return s.workGroupSize }
func (s *shader) Bindings() map[string]uint32 {
	return s.bindings
}

func (s *shader) Binding(varName string) (uint32, bool) {
	b, ok := s.bindings[varName]
	return b, ok
}

func (s *shader) Module() *wgpu.ShaderModuleDescriptor {
	return s.module
}

func (s *shader) Declarations() []Annotation {
	return s.pp.Declarations()
}

// parseSource runs the pre-processor, builds the module descriptor and extracts the entry
// points, workgroup size and bindings appropriate for the shader type.
func (s *shader) parseSource(raw string) error {
	processed, err := s.pp.Process(raw)
	if err != nil {
		return fmt.Errorf("failed to pre-process source: %w", err)
	}
	s.source = processed
	s.module = &wgpu.ShaderModuleDescriptor{
		Label: s.key,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: s.source,
		},
	}

	switch s.shaderType {
	case ShaderTypeCompute:
		s.computeEntryPoint = parseEntryPoint(s.source, entryCompute)
		if s.computeEntryPoint == "" {
			return fmt.Errorf("no @compute entry point")
		}
		s.workGroupSize = parseWorkgroupSize(s.source)
	case ShaderTypeRender:
		s.vertexEntryPoint = parseEntryPoint(s.source, entryVertex)
		s.fragmentEntryPoint = parseEntryPoint(s.source, entryFragment)
		if s.vertexEntryPoint == "" || s.fragmentEntryPoint == "" {
			return fmt.Errorf("render shader needs @vertex and @fragment entry points")
		}
	default:
		return fmt.Errorf("unknown shader type %d", s.shaderType)
	}
	s.bindings = parseBindings(s.source, 0)
	return nil
}
