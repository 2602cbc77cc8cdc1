// annotations.go defines the annotation types and parser of the Oxy WGSL pre-processor.
// Annotations are single-line WGSL comments prefixed with @oxy: that inject shared struct
// sources, generate uniform declarations and strip source that a program variant does not use.
package shader

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// annotationPrefix is the marker that identifies an Oxy annotation within a WGSL comment line.
const annotationPrefix = "@oxy:"

// AnnotationType identifies the kind of annotation parsed from a WGSL comment line.
type AnnotationType string

const (
	// annotationTypeInclude injects the WGSL source of a registered struct or library.
	//
	// Syntax: //@oxy:include <name>
	//
	// Example: //@oxy:include atmosphere
	annotationTypeInclude AnnotationType = "include"

	// AnnotationTypeBindingGroup generates a @group/@binding uniform declaration and appends
	// an Annotation to the declarations list.
	//
	// Syntax: //@oxy:group <group> <binding> <address_space> <var_name> <type>
	//
	// Example: //@oxy:group 0 9 uniform frame frame
	AnnotationTypeBindingGroup AnnotationType = "group"

	// annotationTypeIf keeps the lines up to the matching endif only when the flag is set.
	// Blocks nest.
	//
	// Syntax: //@oxy:if <flag>
	annotationTypeIf AnnotationType = "if"

	// annotationTypeEndIf closes the innermost if block.
	//
	// Syntax: //@oxy:endif
	annotationTypeEndIf AnnotationType = "endif"
)

// Annotation represents a single parsed @oxy: annotation.
type Annotation struct {
	Type AnnotationType

	// Args holds the annotation's arguments. The contents depend on Type:
	//   - include: [0] = registry key
	//   - group:   [0] = address space, [1] = var name, [2] = registry key of the type
	//   - if:      [0] = flag name
	Args []AnnotationArg

	// Line is the 1-based line number in the source, used for error reporting.
	Line int

	// Group and Binding are set for group annotations only.
	Group   *int
	Binding *int
}

// AnnotationArg is a typed string used as an annotation argument.
type AnnotationArg string

// Registry keys of the shared WGSL sources.
const (
	AnnotationArgAtmosphere     AnnotationArg = "atmosphere"
	AnnotationArgStageParams    AnnotationArg = "stage_params"
	AnnotationArgKernelUniforms AnnotationArg = "kernel_uniforms"
	AnnotationArgNightSky       AnnotationArg = "night_sky"
	AnnotationArgFrame          AnnotationArg = "frame"
	AnnotationArgClouds         AnnotationArg = "clouds"
	AnnotationArgBodies         AnnotationArg = "bodies"

	// AnnotationArgScattering is the shared library of density, phase and ray helpers.
	AnnotationArgScattering AnnotationArg = "scattering"

	// AnnotationArgFullscreen is the full-screen triangle vertex stage shared by every pass.
	AnnotationArgFullscreen AnnotationArg = "fullscreen"
)

const (
	annotationArgStorageTypeUniform AnnotationArg = "uniform"
)

var validAddressSpaces = []AnnotationArg{annotationArgStorageTypeUniform}

// parseAnnotation parses a single line. Lines that are not annotations return nil, nil.
//
// Parameters:
//   - line: the raw source line
//   - lineNum: the 1-based line number for error reporting
//
// Returns:
//   - *Annotation: the parsed annotation, or nil if the line is not an annotation
//   - error: a descriptive error if the annotation is malformed
func parseAnnotation(line string, lineNum int) (*Annotation, error) {
	trimmed := strings.TrimSpace(line)
	after, ok := strings.CutPrefix(trimmed, "//")
	if !ok {
		return nil, nil
	}
	after, ok = strings.CutPrefix(strings.TrimSpace(after), annotationPrefix)
	if !ok {
		return nil, nil
	}

	args := strings.Fields(after)
	if len(args) == 0 {
		return nil, fmt.Errorf("line %d: empty @oxy annotation", lineNum)
	}

	switch AnnotationType(args[0]) {
	case annotationTypeInclude:
		if len(args) != 2 {
			return nil, fmt.Errorf("line %d: @oxy include annotation requires exactly one argument", lineNum)
		}
		return &Annotation{Type: annotationTypeInclude, Args: []AnnotationArg{AnnotationArg(args[1])}, Line: lineNum}, nil
	case AnnotationTypeBindingGroup:
		if len(args) != 6 {
			return nil, fmt.Errorf("line %d: @oxy group annotation requires exactly five arguments (group, binding, address space, name, type)", lineNum)
		}
		groupInt, err := strconv.Atoi(args[1])
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid group number %q in @oxy group annotation: %v", lineNum, args[1], err)
		}
		bindingInt, err := strconv.Atoi(args[2])
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid binding number %q in @oxy group annotation: %v", lineNum, args[2], err)
		}
		if !slices.Contains(validAddressSpaces, AnnotationArg(args[3])) {
			return nil, fmt.Errorf("line %d: unknown address space %q in @oxy group annotation", lineNum, args[3])
		}
		return &Annotation{
			Type:    AnnotationTypeBindingGroup,
			Args:    []AnnotationArg{AnnotationArg(args[3]), AnnotationArg(args[4]), AnnotationArg(args[5])},
			Line:    lineNum,
			Group:   &groupInt,
			Binding: &bindingInt,
		}, nil
	case annotationTypeIf:
		if len(args) != 2 {
			return nil, fmt.Errorf("line %d: @oxy if annotation requires exactly one flag", lineNum)
		}
		return &Annotation{Type: annotationTypeIf, Args: []AnnotationArg{AnnotationArg(args[1])}, Line: lineNum}, nil
	case annotationTypeEndIf:
		if len(args) != 1 {
			return nil, fmt.Errorf("line %d: @oxy endif annotation takes no arguments", lineNum)
		}
		return &Annotation{Type: annotationTypeEndIf, Line: lineNum}, nil
	default:
		return nil, fmt.Errorf("line %d: unknown @oxy annotation type %q", lineNum, args[0])
	}
}
