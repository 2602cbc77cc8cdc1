package renderer

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-sky/engine/sky/gpu"
	"github.com/cogentcore/webgpu/wgpu"
)

// allLayers selects every layer of a table in a viewKey.
const allLayers = -1

type viewKey struct {
	dimension wgpu.TextureViewDimension
	layer     int
}

// wgpuTable is the gpu.Table created by the wgpu backend.
// Views are created on first use and cached until the table is released.
type wgpuTable struct {
	desc    gpu.TableDescriptor
	format  wgpu.TextureFormat
	texture *wgpu.Texture
	views   map[viewKey]*wgpu.TextureView

	// external tables wrap a texture the backend does not own, such as the swapchain image.
	external bool
	released bool
}

var _ gpu.Table = &wgpuTable{}

func (t *wgpuTable) Label() string                   { return t.desc.Label }
func (t *wgpuTable) Descriptor() gpu.TableDescriptor { return t.desc }

func (t *wgpuTable) Release() {
	if t.released {
		return
	}
	t.released = true
	for k, v := range t.views {
		v.Release()
		delete(t.views, k)
	}
	if !t.external && t.texture != nil {
		t.texture.Release()
	}
	t.texture = nil
}

// view returns a view of the table. layer selects a single array layer or cube face, or allLayers.
func (t *wgpuTable) view(dimension wgpu.TextureViewDimension, layer int) (*wgpu.TextureView, error) {
	if t.released {
		return nil, fmt.Errorf("table %q was released", t.desc.Label)
	}
	key := viewKey{dimension: dimension, layer: layer}
	if v, ok := t.views[key]; ok {
		return v, nil
	}

	base, count := uint32(0), t.desc.Depth
	if t.desc.Dimension == gpu.Dimension3D || t.desc.Dimension == gpu.Dimension2D {
		count = 1
	}
	if layer != allLayers {
		if uint32(layer) >= t.desc.Depth && t.desc.Dimension != gpu.Dimension2D {
			return nil, fmt.Errorf("table %q has no layer %d", t.desc.Label, layer)
		}
		base, count = uint32(layer), 1
	}

	v, err := t.texture.CreateView(&wgpu.TextureViewDescriptor{
		Label:           fmt.Sprintf("%s View %d/%d", t.desc.Label, dimension, layer),
		Format:          t.format,
		Dimension:       dimension,
		BaseMipLevel:    0,
		MipLevelCount:   1,
		BaseArrayLayer:  base,
		ArrayLayerCount: count,
		Aspect:          wgpu.TextureAspectAll,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create view of %q: %w", t.desc.Label, err)
	}
	if t.views == nil {
		t.views = make(map[viewKey]*wgpu.TextureView)
	}
	t.views[key] = v
	return v, nil
}
