package gpu

import (
	"fmt"
	"sort"
)

// PassIndex names a render pass of the shading collaborator.
type PassIndex int

const (
	PassSkyCubemap PassIndex = iota
	PassSkyFullscreen
	PassCloudsCubemap
	PassCloudsFullscreen
	PassCompositeCubemap
	PassCompositeFullscreen
)

// PassCount is the number of PassIndex values.
const PassCount = 6

func (p PassIndex) String() string {
	switch p {
	case PassSkyCubemap:
		return "sky-cubemap"
	case PassSkyFullscreen:
		return "sky-fullscreen"
	case PassCloudsCubemap:
		return "clouds-cubemap"
	case PassCloudsFullscreen:
		return "clouds-fullscreen"
	case PassCompositeCubemap:
		return "composite-cubemap"
	case PassCompositeFullscreen:
		return "composite-fullscreen"
	default:
		return fmt.Sprintf("pass(%d)", int(p))
	}
}

// Property names used by the render passes in addition to the table slot names.
const (
	PropertySkyColor             = "skyColor"
	PropertyCloudColor           = "cloudColor"
	PropertyCloudTransmittance   = "cloudTransmittance"
	PropertyHistoryColor         = "cloudHistoryColor"
	PropertyHistoryTransmittance = "cloudHistoryTransmittance"
	PropertyAerialPerspectiveFar = "aerialPerspectiveFar"
	UniformAtmosphere            = "atmosphere"
	UniformFrame                 = "frame"
	UniformBodies                = "bodies"
	UniformClouds                = "clouds"
	UniformNightSky              = "nightSky"
)

// PropertyBlock is the shared set of texture and uniform bindings handed to every pass.
// The orchestrator clears and repopulates it before each pass.
type PropertyBlock struct {
	textures map[string]Table
	uniforms map[string][]byte
}

// NewPropertyBlock creates an empty PropertyBlock.
func NewPropertyBlock() *PropertyBlock {
	return &PropertyBlock{
		textures: make(map[string]Table),
		uniforms: make(map[string][]byte),
	}
}

// SetTexture binds t under name. A nil table removes the binding.
func (b *PropertyBlock) SetTexture(name string, t Table) {
	if t == nil {
		delete(b.textures, name)
		return
	}
	b.textures[name] = t
}

// Texture returns the table bound under name.
func (b *PropertyBlock) Texture(name string) (Table, bool) {
	t, ok := b.textures[name]
	return t, ok
}

// SetUniforms stores a raw uniform block under name.
func (b *PropertyBlock) SetUniforms(name string, data []byte) {
	b.uniforms[name] = data
}

// Uniforms returns the uniform block stored under name.
func (b *PropertyBlock) Uniforms(name string) ([]byte, bool) {
	u, ok := b.uniforms[name]
	return u, ok
}

// TextureNames returns the bound texture names in sorted order.
func (b *PropertyBlock) TextureNames() []string {
	names := make([]string, 0, len(b.textures))
	for n := range b.textures {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Clear removes every binding while keeping the allocated maps.
func (b *PropertyBlock) Clear() {
	clear(b.textures)
	clear(b.uniforms)
}

// DrawCommand invokes one pass index as a full-screen (or full cube face) draw.
type DrawCommand struct {
	Pass       PassIndex
	Properties *PropertyBlock
	// Targets are the color attachments, in attachment order.
	Targets []Table
	// Depth binds the scene depth buffer for occlusion. Only the screen target uses it.
	Depth bool
	// Layer is the cube face written by the draw, 0 for 2D targets.
	Layer uint32
}
