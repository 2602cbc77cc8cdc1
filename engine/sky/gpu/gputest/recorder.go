// Package gputest provides a recording gpu.Device for tests.
package gputest

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-sky/engine/sky/gpu"
)

// ErrInjected is returned by a Recorder when a configured failure triggers.
var ErrInjected = errors.New("gputest: injected failure")

// Table is the table type handed out by a Recorder.
type Table struct {
	id       int
	desc     gpu.TableDescriptor
	released bool
	owner    *Recorder
}

func (t *Table) Label() string                   { return t.desc.Label }
func (t *Table) Descriptor() gpu.TableDescriptor { return t.desc }
func (t *Table) ID() int                         { return t.id }
func (t *Table) Released() bool                  { return t.released }

func (t *Table) Release() {
	if t.released {
		return
	}
	t.released = true
	t.owner.mu.Lock()
	t.owner.released++
	t.owner.mu.Unlock()
}

// Draw is a snapshot of a recorded draw. The property block is copied at record time.
type Draw struct {
	Pass     gpu.PassIndex
	Textures map[string]gpu.Table
	Uniforms map[string][]byte
	Targets  []gpu.Table
	Depth    bool
	Layer    uint32
}

// Event is one entry of the ordered command log.
type Event struct {
	Submission int
	Dispatch   *gpu.DispatchCommand
	Draw       *Draw
}

// Recorder is a gpu.Device that records every call.
type Recorder struct {
	mu *sync.Mutex

	nextID     int
	created    int
	released   int
	failAfter  int
	submission int
	open       bool

	Tables     []*Table
	Dispatches []gpu.DispatchCommand
	Draws      []Draw
	Events     []Event
	Submitted  int
	Readbacks  []*Readback

	// ReadbackData, when set, is returned by every readback.
	ReadbackData func(desc gpu.TableDescriptor) ([]byte, int)
}

var _ gpu.Device = &Recorder{}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{mu: &sync.Mutex{}, failAfter: -1}
}

// FailAfter makes CreateTable fail once n more tables have been created. A negative n disables it.
func (r *Recorder) FailAfter(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failAfter = n
}

// Live returns the number of created tables that have not been released.
func (r *Recorder) Live() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.created - r.released
}

// Created returns the total number of tables created.
func (r *Recorder) Created() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.created
}

// Reset clears the command logs but keeps table accounting.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Dispatches = nil
	r.Draws = nil
	r.Events = nil
	r.Submitted = 0
}

// Passes returns the pass indices of every recorded draw, in order.
func (r *Recorder) Passes() []gpu.PassIndex {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]gpu.PassIndex, len(r.Draws))
	for i, d := range r.Draws {
		out[i] = d.Pass
	}
	return out
}

// Kernels returns the kernel names of every recorded dispatch, in order.
func (r *Recorder) Kernels() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.Dispatches))
	for i, d := range r.Dispatches {
		out[i] = d.Kernel
	}
	return out
}

func (r *Recorder) CreateTable(desc gpu.TableDescriptor) (gpu.Table, error) {
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAfter == 0 {
		return nil, fmt.Errorf("%w: create %q", ErrInjected, desc.Label)
	}
	if r.failAfter > 0 {
		r.failAfter--
	}
	r.nextID++
	r.created++
	t := &Table{id: r.nextID, desc: desc, owner: r}
	r.Tables = append(r.Tables, t)
	return t, nil
}

func (r *Recorder) BeginCommands() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.open {
		return errors.New("gputest: submission already open")
	}
	r.open = true
	r.submission++
	return nil
}

func (r *Recorder) Dispatch(cmd gpu.DispatchCommand) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.open {
		return errors.New("gputest: dispatch outside submission")
	}
	for _, b := range cmd.Bindings {
		if t, ok := b.Table.(*Table); ok && t.released {
			return fmt.Errorf("gputest: %s binds released table %q", cmd.Kernel, t.Label())
		}
	}
	r.Dispatches = append(r.Dispatches, cmd)
	c := cmd
	r.Events = append(r.Events, Event{Submission: r.submission, Dispatch: &c})
	return nil
}

func (r *Recorder) Draw(cmd gpu.DrawCommand) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.open {
		return errors.New("gputest: draw outside submission")
	}
	d := Draw{
		Pass:     cmd.Pass,
		Textures: make(map[string]gpu.Table),
		Uniforms: make(map[string][]byte),
		Targets:  append([]gpu.Table(nil), cmd.Targets...),
		Depth:    cmd.Depth,
		Layer:    cmd.Layer,
	}
	if cmd.Properties != nil {
		for _, name := range cmd.Properties.TextureNames() {
			t, _ := cmd.Properties.Texture(name)
			d.Textures[name] = t
		}
		for _, name := range []string{gpu.UniformAtmosphere, gpu.UniformFrame, gpu.UniformBodies, gpu.UniformClouds, gpu.UniformNightSky} {
			if u, ok := cmd.Properties.Uniforms(name); ok {
				d.Uniforms[name] = u
			}
		}
	}
	r.Draws = append(r.Draws, d)
	r.Events = append(r.Events, Event{Submission: r.submission, Draw: &d})
	return nil
}

func (r *Recorder) EndCommands() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.open {
		return errors.New("gputest: no open submission")
	}
	r.open = false
	r.Submitted++
	return nil
}

// Readback is the Readback type handed out by a Recorder. It becomes ready after Polls calls to Ready.
type Readback struct {
	desc     gpu.TableDescriptor
	data     []byte
	pitch    int
	polls    int
	Released bool
}

// Polls is how many Ready calls a Readback needs before it reports ready.
const Polls = 1

func (rb *Readback) Ready() bool {
	if rb.polls < Polls {
		rb.polls++
		return false
	}
	return true
}

func (rb *Readback) Data() ([]byte, error) {
	if rb.polls < Polls {
		return nil, errors.New("gputest: readback not ready")
	}
	return append([]byte(nil), rb.data...), nil
}

func (rb *Readback) RowPitch() int                   { return rb.pitch }
func (rb *Readback) Descriptor() gpu.TableDescriptor { return rb.desc }
func (rb *Readback) Release()                        { rb.Released = true }

func (r *Recorder) RequestReadback(t gpu.Table) (gpu.Readback, error) {
	desc := t.Descriptor()
	if !desc.Usage.Has(gpu.UsageCopySource) {
		return nil, fmt.Errorf("gputest: %q is not copyable", desc.Label)
	}
	pitch := int(desc.Width) * desc.Format.BytesPerTexel()
	var data []byte
	if r.ReadbackData != nil {
		data, pitch = r.ReadbackData(desc)
	} else {
		data = make([]byte, pitch*int(desc.Height))
	}
	rb := &Readback{desc: desc, data: data, pitch: pitch}
	r.mu.Lock()
	r.Readbacks = append(r.Readbacks, rb)
	r.mu.Unlock()
	return rb, nil
}
