package gpu

import (
	"errors"
	"fmt"
)

// ErrInvalidDescriptor is returned when a TableDescriptor cannot describe a real GPU resource.
var ErrInvalidDescriptor = errors.New("gpu: invalid table descriptor")

// Format identifies the texel format of a table.
type Format int

const (
	// FormatRGBA16Float is a 4 channel half float format, the default for scattering tables.
	FormatRGBA16Float Format = iota

	// FormatRGBA32Float is a 4 channel full float format. Tables read back to the CPU use it.
	FormatRGBA32Float

	// FormatRGBA8Unorm is a 4 channel 8-bit normalized format.
	FormatRGBA8Unorm

	// FormatSurface resolves to whatever format the presentation surface was configured with.
	FormatSurface
)

// BytesPerTexel returns the number of bytes a single texel occupies.
//
// Returns:
//   - int: bytes per texel, or 4 for FormatSurface
func (f Format) BytesPerTexel() int {
	switch f {
	case FormatRGBA32Float:
		return 16
	case FormatRGBA16Float:
		return 8
	default:
		return 4
	}
}

func (f Format) String() string {
	switch f {
	case FormatRGBA16Float:
		return "rgba16float"
	case FormatRGBA32Float:
		return "rgba32float"
	case FormatRGBA8Unorm:
		return "rgba8unorm"
	case FormatSurface:
		return "surface"
	default:
		return fmt.Sprintf("format(%d)", int(f))
	}
}

// Dimension describes how the extents of a table are interpreted.
type Dimension int

const (
	// Dimension2D is a single 2D image, Depth must be 1.
	Dimension2D Dimension = iota

	// Dimension2DArray is a stack of Depth 2D layers. Packed 4D tables use this layout.
	Dimension2DArray

	// Dimension3D is a volume of Width x Height x Depth texels.
	Dimension3D

	// DimensionCube is a cube with 6 square faces, Depth must be 6.
	DimensionCube
)

// Usage is a bit set describing how a table is used by the GPU.
type Usage uint32

const (
	// UsageSampled allows the table to be bound as a read-only texture.
	UsageSampled Usage = 1 << iota

	// UsageStorage allows compute kernels to write the table.
	UsageStorage

	// UsageRenderTarget allows render passes to write the table as a color attachment.
	UsageRenderTarget

	// UsageCopySource allows the table to be copied into a buffer for CPU readback.
	UsageCopySource
)

// Has reports whether all bits in flag are set.
func (u Usage) Has(flag Usage) bool {
	return u&flag == flag
}

// TableDescriptor declares the shape and format of a GPU table.
type TableDescriptor struct {
	Label     string
	Dimension Dimension
	Format    Format
	Width     uint32
	Height    uint32
	Depth     uint32
	Usage     Usage
}

// Validate checks that the descriptor has non-zero extents that agree with its dimension.
//
// Returns:
//   - error: an error wrapping ErrInvalidDescriptor, or nil if the descriptor is usable
func (d TableDescriptor) Validate() error {
	if d.Width == 0 || d.Height == 0 || d.Depth == 0 {
		return fmt.Errorf("%w: %q has zero extent %dx%dx%d", ErrInvalidDescriptor, d.Label, d.Width, d.Height, d.Depth)
	}
	switch d.Dimension {
	case Dimension2D:
		if d.Depth != 1 {
			return fmt.Errorf("%w: %q is 2D but has depth %d", ErrInvalidDescriptor, d.Label, d.Depth)
		}
	case DimensionCube:
		if d.Depth != 6 || d.Width != d.Height {
			return fmt.Errorf("%w: %q is a cube but is %dx%dx%d", ErrInvalidDescriptor, d.Label, d.Width, d.Height, d.Depth)
		}
	case Dimension2DArray, Dimension3D:
	default:
		return fmt.Errorf("%w: %q has unknown dimension %d", ErrInvalidDescriptor, d.Label, d.Dimension)
	}
	if d.Usage == 0 {
		return fmt.Errorf("%w: %q has no usage", ErrInvalidDescriptor, d.Label)
	}
	return nil
}

// Extent returns the width, height and depth (or layer count) of the table.
func (d TableDescriptor) Extent() [3]uint32 {
	return [3]uint32{d.Width, d.Height, d.Depth}
}

// SameShape reports whether two descriptors would allocate interchangeable tables.
// Labels are ignored.
func (d TableDescriptor) SameShape(o TableDescriptor) bool {
	return d.Dimension == o.Dimension && d.Format == o.Format &&
		d.Width == o.Width && d.Height == o.Height && d.Depth == o.Depth && d.Usage == o.Usage
}

// Table is a GPU-resident multi-dimensional array created by a Device.
type Table interface {
	// Label returns the debug label the table was created with.
	Label() string

	// Descriptor returns the descriptor the table was created from.
	//
	// Returns:
	//   - TableDescriptor: the creation descriptor
	Descriptor() TableDescriptor

	// Release frees the GPU memory backing the table. Calling Release more than once is a no-op.
	Release()
}
