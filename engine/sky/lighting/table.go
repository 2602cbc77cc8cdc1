package lighting

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-sky/engine/sky/gpu"
	"github.com/Carmen-Shannon/oxy-sky/engine/sky/physmath"
	"github.com/go-gl/mathgl/mgl32"
)

// opticalDepthTable is the CPU copy of the transmittance table. Texels hold RGB optical depth.
type opticalDepthTable struct {
	width, height int
	texels        []mgl32.Vec3
}

// sample bilinearly filters the table at (u, v) with clamp-to-edge addressing.
func (t *opticalDepthTable) sample(u, v float32) mgl32.Vec3 {
	x := physmath.Clamp01(u)*float32(t.width) - 0.5
	y := physmath.Clamp01(v)*float32(t.height) - 0.5
	x0, fx := split(x, t.width)
	y0, fy := split(y, t.height)
	x1 := min(x0+1, t.width-1)
	y1 := min(y0+1, t.height-1)

	a := t.texels[y0*t.width+x0]
	b := t.texels[y0*t.width+x1]
	c := t.texels[y1*t.width+x0]
	d := t.texels[y1*t.width+x1]
	top := a.Mul(1 - fx).Add(b.Mul(fx))
	bottom := c.Mul(1 - fx).Add(d.Mul(fx))
	return top.Mul(1 - fy).Add(bottom.Mul(fy))
}

func split(x float32, n int) (int, float32) {
	if x <= 0 {
		return 0, 0
	}
	i := int(x)
	if i >= n-1 {
		return n - 1, 0
	}
	return i, x - float32(i)
}

// decodeTable converts padded RGBA32Float rows into an optical depth table.
// Rows are split into chunks that are decoded in parallel on pool.
func decodeTable(pool worker.DynamicWorkerPool, data []byte, pitch int, desc gpu.TableDescriptor, chunkRows int) (*opticalDepthTable, error) {
	if desc.Format != gpu.FormatRGBA32Float {
		return nil, fmt.Errorf("lighting: transmittance readback has format %s, want %s", desc.Format, gpu.FormatRGBA32Float)
	}
	w, h := int(desc.Width), int(desc.Height)
	rowBytes := w * desc.Format.BytesPerTexel()
	if w == 0 || h == 0 || pitch < rowBytes || len(data) < pitch*(h-1)+rowBytes {
		return nil, fmt.Errorf("lighting: readback of %dx%d has %d bytes at pitch %d", w, h, len(data), pitch)
	}

	t := &opticalDepthTable{width: w, height: h, texels: make([]mgl32.Vec3, w*h)}
	decodeRows := func(from, to int) {
		for y := from; y < to; y++ {
			row := data[y*pitch : y*pitch+rowBytes]
			for x := range w {
				px := row[x*16:]
				t.texels[y*w+x] = mgl32.Vec3{
					finite(math.Float32frombits(binary.LittleEndian.Uint32(px[0:]))),
					finite(math.Float32frombits(binary.LittleEndian.Uint32(px[4:]))),
					finite(math.Float32frombits(binary.LittleEndian.Uint32(px[8:]))),
				}
			}
		}
	}

	chunkRows = max(chunkRows, 1)
	if pool == nil || h <= chunkRows {
		decodeRows(0, h)
		return t, nil
	}

	var wg sync.WaitGroup
	id := 0
	for from := 0; from < h; from += chunkRows {
		to := min(from+chunkRows, h)
		wg.Add(1)
		f, e := from, to
		pool.SubmitTask(worker.Task{
			ID: id,
			Do: func() (any, error) {
				defer wg.Done()
				decodeRows(f, e)
				return nil, nil
			},
		})
		id++
	}
	wg.Wait()
	return t, nil
}

// finite replaces NaN and negative optical depth with 0 and infinity with the largest float.
func finite(v float32) float32 {
	f := float64(v)
	switch {
	case math.IsNaN(f) || f < 0:
		return 0
	case math.IsInf(f, 1):
		return math.MaxFloat32
	}
	return v
}
