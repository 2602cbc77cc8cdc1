// pre_processor.go implements the Oxy WGSL shader pre-processor. It scans shader source
// for @oxy: annotations, injects registered struct and library sources, generates uniform
// declarations, drops disabled conditional blocks and substitutes ${NAME} defines.
//
// The pre-processor maintains two registries:
//   - structRegistry: maps AnnotationArg keys to embedded WGSL sources and the WGSL type name
//     they declare. Used by @oxy:include and by @oxy:group to resolve the declared type.
//   - addressSpaceRegistry: maps address space argument keys to WGSL var<> syntax strings.
package shader

import (
	_ "embed"
	"fmt"
	"regexp"
	"strings"

	"github.com/Carmen-Shannon/oxy-sky/engine/sky/frame"
	"github.com/Carmen-Shannon/oxy-sky/engine/sky/precompute"
)

//go:embed assets/kernel_uniforms.wgsl
var kernelUniformsSource string

//go:embed assets/scattering.wgsl
var scatteringSource string

//go:embed assets/fullscreen.wgsl
var fullscreenSource string

// defineRegex matches ${NAME} placeholders.
var defineRegex = regexp.MustCompile(`\$\{(\w+)\}`)

// registryEntry pairs a WGSL source with the type name emitted in @oxy:group declarations.
// Library entries have no type.
type registryEntry struct {
	Source string
	Type   string
}

// preProcessor is the implementation of the PreProcessor interface.
type preProcessor struct {
	structRegistry       map[AnnotationArg]registryEntry
	addressSpaceRegistry map[AnnotationArg]string

	defines map[string]string
	flags   map[string]bool

	// declarations accumulates group annotations during a Process call.
	declarations []Annotation
}

// PreProcessor turns annotated WGSL into plain WGSL.
type PreProcessor interface {
	// Process replaces every @oxy: annotation in source with its WGSL output.
	// Each registered source is injected at most once, at its first include.
	// The declarations list is reset at the start of each call.
	//
	// Parameters:
	//   - source: the annotated WGSL source
	//
	// Returns:
	//   - string: the processed WGSL source
	//   - error: an error if an annotation is malformed, names an unknown key, leaves a
	//     conditional block open or a placeholder has no define
	Process(source string) (string, error)

	// Declarations returns the group annotations collected by the most recent Process call,
	// in source order.
	Declarations() []Annotation
}

var _ PreProcessor = &preProcessor{}

// NewPreProcessor creates a PreProcessor with the sky's shared struct and library sources registered.
//
// Parameters:
//   - options: defines and flags applied to every Process call
//
// Returns:
//   - PreProcessor: a ready-to-use pre-processor instance
func NewPreProcessor(options ...PreProcessorBuilderOption) PreProcessor {
	p := &preProcessor{
		structRegistry: map[AnnotationArg]registryEntry{
			AnnotationArgAtmosphere:     {Source: precompute.GPUAtmosphereSource, Type: "Atmosphere"},
			AnnotationArgStageParams:    {Source: precompute.GPUStageParamsSource, Type: "StageParams"},
			AnnotationArgKernelUniforms: {Source: kernelUniformsSource, Type: "KernelUniforms"},
			AnnotationArgNightSky:       {Source: precompute.GPUNightSkySource, Type: "NightSky"},
			AnnotationArgFrame:          {Source: frame.GPUFrameSource, Type: "Frame"},
			AnnotationArgClouds:         {Source: frame.GPUCloudsSource, Type: "Clouds"},
			AnnotationArgBodies:         {Source: frame.GPUBodiesSource, Type: "Bodies"},
			AnnotationArgScattering:     {Source: scatteringSource},
			AnnotationArgFullscreen:     {Source: fullscreenSource},
		},
		addressSpaceRegistry: map[AnnotationArg]string{
			annotationArgStorageTypeUniform: "var<uniform>",
		},
		defines: make(map[string]string),
		flags:   make(map[string]bool),
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *preProcessor) Process(source string) (string, error) {
	p.declarations = p.declarations[:0]
	included := make(map[AnnotationArg]bool)

	lines := strings.Split(source, "\n")
	out := make([]string, 0, len(lines))
	// skipping counts the open if blocks whose flag is unset; open counts every open block.
	skipping, open := 0, 0

	for i, line := range lines {
		a, err := parseAnnotation(line, i+1)
		if err != nil {
			return "", err
		}
		if a == nil {
			if skipping == 0 {
				out = append(out, line)
			}
			continue
		}

		switch a.Type {
		case annotationTypeIf:
			open++
			if skipping > 0 || !p.flags[string(a.Args[0])] {
				skipping++
			}
			continue
		case annotationTypeEndIf:
			if open == 0 {
				return "", fmt.Errorf("line %d: @oxy endif without if", i+1)
			}
			open--
			if skipping > 0 {
				skipping--
			}
			continue
		}
		if skipping > 0 {
			continue
		}

		switch a.Type {
		case annotationTypeInclude:
			entry, ok := p.structRegistry[a.Args[0]]
			if !ok {
				return "", fmt.Errorf("line %d: unknown @oxy:include argument %q", i+1, a.Args[0])
			}
			if included[a.Args[0]] {
				continue
			}
			included[a.Args[0]] = true
			out = append(out, entry.Source)
		case AnnotationTypeBindingGroup:
			entry, ok := p.structRegistry[a.Args[2]]
			if !ok || entry.Type == "" {
				return "", fmt.Errorf("line %d: unknown @oxy:group type %q", i+1, a.Args[2])
			}
			addrSpace := p.addressSpaceRegistry[a.Args[0]]
			out = append(out, fmt.Sprintf("@group(%d) @binding(%d) %s %s: %s;", *a.Group, *a.Binding, addrSpace, a.Args[1], entry.Type))
			p.declarations = append(p.declarations, *a)
		}
	}
	if open != 0 {
		return "", fmt.Errorf("%d unterminated @oxy:if block(s)", open)
	}

	result := strings.Join(out, "\n")
	var missing string
	result = defineRegex.ReplaceAllStringFunc(result, func(m string) string {
		name := defineRegex.FindStringSubmatch(m)[1]
		v, ok := p.defines[name]
		if !ok && missing == "" {
			missing = name
		}
		return v
	})
	if missing != "" {
		return "", fmt.Errorf("no define for ${%s}", missing)
	}
	return result, nil
}

func (p *preProcessor) Declarations() []Annotation {
	return p.declarations
}
