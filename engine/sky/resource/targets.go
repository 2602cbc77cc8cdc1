package resource

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-sky/engine/sky/gpu"
)

// OutputTarget identifies one of the two views the sky is rendered to.
type OutputTarget int

const (
	// TargetScreen is the screen-space view. It is depth tested against scene geometry.
	TargetScreen OutputTarget = iota

	// TargetCubemap is the omnidirectional view used for reflections and ambient lighting.
	TargetCubemap
)

// TargetCount is the number of output targets.
const TargetCount = 2

func (t OutputTarget) String() string {
	switch t {
	case TargetScreen:
		return "screen"
	case TargetCubemap:
		return "cubemap"
	default:
		return fmt.Sprintf("target(%d)", int(t))
	}
}

// CloudBuffers is one half of the cloud history.
// Transmittance holds the optical transmittance in RGB and the blend factor against the atmosphere in A.
type CloudBuffers struct {
	Color         gpu.Table
	Transmittance gpu.Table
}

// RenderTargetPair holds the per-target render buffers and the double buffered cloud history.
// A new pair starts with cursor 1, so the first clouds pass reads buffer 0 as history.
type RenderTargetPair struct {
	Target    OutputTarget
	Width     uint32
	Height    uint32
	Sky       gpu.Table
	Composite gpu.Table
	History   [2]CloudBuffers

	cursor int
}

// Cursor returns the index of the current history buffer.
func (p *RenderTargetPair) Cursor() int {
	return p.cursor
}

// Current returns the history buffers written by this frame's clouds pass.
func (p *RenderTargetPair) Current() CloudBuffers {
	return p.History[p.cursor]
}

// Previous returns the history buffers written by the previous frame.
func (p *RenderTargetPair) Previous() CloudBuffers {
	return p.History[1-p.cursor]
}

// Swap makes the current buffers the previous ones. Call it only after the composite pass was recorded.
func (p *RenderTargetPair) Swap() {
	p.cursor = 1 - p.cursor
}

// All returns every table of the pair.
func (p *RenderTargetPair) All() []gpu.Table {
	if p == nil {
		return nil
	}
	return []gpu.Table{
		p.Sky,
		p.Composite,
		p.History[0].Color,
		p.History[0].Transmittance,
		p.History[1].Color,
		p.History[1].Transmittance,
	}
}

func (p *RenderTargetPair) release() {
	for _, t := range p.All() {
		if t != nil {
			t.Release()
		}
	}
}

func targetDescriptors(prefix string, target OutputTarget, width, height uint32) []gpu.TableDescriptor {
	dim, depth := gpu.Dimension2D, uint32(1)
	if target == TargetCubemap {
		dim, depth = gpu.DimensionCube, 6
		height = width
	}
	usage := gpu.UsageSampled | gpu.UsageRenderTarget
	base := fmt.Sprintf("%s%s.", prefix, target)
	desc := func(name string) gpu.TableDescriptor {
		return gpu.TableDescriptor{
			Label:     base + name,
			Dimension: dim,
			Format:    gpu.FormatRGBA16Float,
			Width:     width,
			Height:    height,
			Depth:     depth,
			Usage:     usage,
		}
	}
	return []gpu.TableDescriptor{
		desc(gpu.PropertySkyColor),
		desc("composite"),
		desc("cloudColor0"),
		desc("cloudTransmittance0"),
		desc("cloudColor1"),
		desc("cloudTransmittance1"),
	}
}
