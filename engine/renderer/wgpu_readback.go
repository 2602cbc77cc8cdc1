package renderer

import (
	"errors"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-sky/engine/sky/gpu"
	"github.com/cogentcore/webgpu/wgpu"
)

const (
	readbackPending int32 = iota
	readbackMapped
	readbackFailed
)

// wgpuReadback is a staging buffer being mapped for reading. The map callback fires from
// Device.Poll, which Ready calls without waiting.
type wgpuReadback struct {
	device *wgpu.Device
	buffer *wgpu.Buffer
	desc   gpu.TableDescriptor
	pitch  uint32
	size   uint64
	state  atomic.Int32
}

var _ gpu.Readback = &wgpuReadback{}

func (r *wgpuReadback) Ready() bool {
	if r.state.Load() == readbackPending && r.device != nil {
		r.device.Poll(false, nil)
	}
	return r.state.Load() != readbackPending
}

func (r *wgpuReadback) Data() ([]byte, error) {
	switch r.state.Load() {
	case readbackPending:
		return nil, errors.New("renderer: readback is not ready")
	case readbackFailed:
		return nil, errors.New("renderer: readback mapping failed")
	}
	if r.buffer == nil {
		return nil, errors.New("renderer: readback was released")
	}
	mapped := r.buffer.GetMappedRange(0, uint(r.size))
	return append([]byte(nil), mapped...), nil
}

func (r *wgpuReadback) RowPitch() int                   { return int(r.pitch) }
func (r *wgpuReadback) Descriptor() gpu.TableDescriptor { return r.desc }

func (r *wgpuReadback) Release() {
	if r.buffer == nil {
		return
	}
	if r.state.Load() == readbackMapped {
		r.buffer.Unmap()
	}
	r.buffer.Release()
	r.buffer = nil
}
