package renderer

import (
	"github.com/Carmen-Shannon/oxy-sky/engine/sky/gpu"
	"github.com/cogentcore/webgpu/wgpu"
)

// readbackRowAlignment is the byte alignment WebGPU requires for rows of a texture to buffer copy.
const readbackRowAlignment = 256

// alignedRowPitch returns the padded byte length of one row of a readback.
//
// Parameters:
//   - width: the row length in texels
//   - bytesPerTexel: the texel size
//
// Returns:
//   - uint32: the row length rounded up to readbackRowAlignment
func alignedRowPitch(width uint32, bytesPerTexel int) uint32 {
	row := width * uint32(bytesPerTexel)
	return (row + readbackRowAlignment - 1) / readbackRowAlignment * readbackRowAlignment
}

// uniformBufferSize rounds a uniform block up to the 16 byte size WGSL structs are padded to.
func uniformBufferSize(n int) uint64 {
	return uint64((n + 15) &^ 15)
}

func textureFormat(f gpu.Format, surface wgpu.TextureFormat) wgpu.TextureFormat {
	switch f {
	case gpu.FormatRGBA32Float:
		return wgpu.TextureFormatRGBA32Float
	case gpu.FormatRGBA8Unorm:
		return wgpu.TextureFormatRGBA8Unorm
	case gpu.FormatSurface:
		return surface
	default:
		return wgpu.TextureFormatRGBA16Float
	}
}

func textureUsage(u gpu.Usage) wgpu.TextureUsage {
	usage := wgpu.TextureUsageCopyDst
	if u.Has(gpu.UsageSampled) {
		usage |= wgpu.TextureUsageTextureBinding
	}
	if u.Has(gpu.UsageStorage) {
		usage |= wgpu.TextureUsageStorageBinding
	}
	if u.Has(gpu.UsageRenderTarget) {
		usage |= wgpu.TextureUsageRenderAttachment
	}
	if u.Has(gpu.UsageCopySource) {
		usage |= wgpu.TextureUsageCopySrc
	}
	return usage
}

func textureDimension(d gpu.Dimension) wgpu.TextureDimension {
	if d == gpu.Dimension3D {
		return wgpu.TextureDimension3D
	}
	return wgpu.TextureDimension2D
}

// sampledViewDimension is the view a table is read through.
func sampledViewDimension(d gpu.Dimension) wgpu.TextureViewDimension {
	switch d {
	case gpu.Dimension2DArray:
		return wgpu.TextureViewDimension2DArray
	case gpu.Dimension3D:
		return wgpu.TextureViewDimension3D
	case gpu.DimensionCube:
		return wgpu.TextureViewDimensionCube
	default:
		return wgpu.TextureViewDimension2D
	}
}

// storageViewDimension is the view a kernel writes a table through. Cubes are written face by face
// as a 2D array because storage bindings cannot be cube views.
func storageViewDimension(d gpu.Dimension) wgpu.TextureViewDimension {
	switch d {
	case gpu.Dimension2DArray, gpu.DimensionCube:
		return wgpu.TextureViewDimension2DArray
	case gpu.Dimension3D:
		return wgpu.TextureViewDimension3D
	default:
		return wgpu.TextureViewDimension2D
	}
}

// sampleType reports how a pass may sample a format. 32-bit float tables need the
// non-filtering sampler unless the adapter exposes float32 filtering.
func sampleType(f gpu.Format) wgpu.TextureSampleType {
	if f == gpu.FormatRGBA32Float {
		return wgpu.TextureSampleTypeUnfilterableFloat
	}
	return wgpu.TextureSampleTypeFloat
}
