package resource

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-sky/engine/sky/gpu"
	"github.com/Carmen-Shannon/oxy-sky/engine/sky/quality"
)

// ErrAllocation is returned when a table set or render target pair could not be fully allocated.
// When it is returned nothing from the failed attempt remains allocated.
var ErrAllocation = errors.New("resource: allocation failed")

// Stats counts whole-set allocations and releases. A set is the table set, one render target pair,
// or the night sky textures.
type Stats struct {
	TableAllocations  int
	TableReleases     int
	TargetAllocations int
	TargetReleases    int
	NightAllocations  int
	NightReleases     int
}

// Pool owns every GPU resource of the sky: the precomputation tables, the render target pairs of
// both output targets and the night sky textures. Each resource group follows the same contract:
// an unchanged shape is a no-op, a changed shape releases the old group and allocates a new one.
type Pool interface {
	// EnsureTables makes the table set match res and activeCount.
	// A changed result means the tables hold no valid data and every stage must run again.
	//
	// Parameters:
	//   - res: the resolution set to size the tables from
	//   - activeCount: the number of active atmosphere layers
	//
	// Returns:
	//   - bool: true if the set was (re)allocated
	//   - error: an error wrapping ErrAllocation if any table failed; Tables then returns nil
	EnsureTables(res quality.TableResolutionSet, activeCount int) (bool, error)

	// Tables returns the current table set, or nil if none is allocated.
	Tables() *TableSet

	// EnsureTargets makes the render target pair of target match the given pixel size.
	// For the cubemap target width is the face size and height is ignored.
	//
	// Parameters:
	//   - target: the output target
	//   - width: the width in pixels
	//   - height: the height in pixels
	//
	// Returns:
	//   - bool: true if the pair was (re)allocated
	//   - error: an error wrapping ErrAllocation if any buffer failed
	EnsureTargets(target OutputTarget, width, height uint32) (bool, error)

	// Targets returns the render target pair of target, or nil if none is allocated.
	Targets(target OutputTarget) *RenderTargetPair

	// EnsureNightSky makes the star and nebula cubemaps match tier.
	//
	// Parameters:
	//   - tier: the star quality tier
	//
	// Returns:
	//   - bool: true if the textures were (re)allocated
	//   - error: an error wrapping ErrAllocation if any texture failed
	EnsureNightSky(tier quality.StarTier) (bool, error)

	// NightSky returns the night sky textures, or nil if none are allocated.
	NightSky() *NightSkyTextures

	// Stats returns allocation counters.
	Stats() Stats

	// Release frees every resource the pool owns.
	Release()
}

type tableKey struct {
	res   quality.TableResolutionSet
	count int
}

type targetKey struct {
	width, height uint32
}

type pool struct {
	mu          *sync.Mutex
	device      gpu.Device
	labelPrefix string
	tableFormat gpu.Format

	tables   *TableSet
	tableKey tableKey

	targets    [TargetCount]*RenderTargetPair
	targetKeys [TargetCount]targetKey

	night *NightSkyTextures

	stats Stats
}

var _ Pool = &pool{}

// NewPool creates a Pool that allocates from device.
//
// Parameters:
//   - device: the device tables are created on
//   - options: functional options to configure the pool
//
// Returns:
//   - Pool: the new pool with nothing allocated
func NewPool(device gpu.Device, options ...PoolBuilderOption) Pool {
	if device == nil {
		panic("resource: NewPool requires a device")
	}
	p := &pool{
		mu:          &sync.Mutex{},
		device:      device,
		labelPrefix: "sky.",
		tableFormat: gpu.FormatRGBA16Float,
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *pool) EnsureTables(res quality.TableResolutionSet, activeCount int) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if activeCount < 0 {
		activeCount = 0
	}
	key := tableKey{res: res, count: activeCount}
	if p.tables != nil && p.tableKey == key {
		return false, nil
	}

	if p.tables != nil {
		p.tables.release()
		p.tables = nil
		p.stats.TableReleases++
	}

	made, err := p.allocate(tableDescriptors(p.labelPrefix, p.tableFormat, res, activeCount))
	if err != nil {
		return false, fmt.Errorf("table set %s x%d: %w", res.Tier, activeCount, err)
	}
	p.tables = &TableSet{
		Transmittance:            made[0],
		MultipleScattering:       made[1],
		SingleScattering:         made[2],
		SingleScatteringNoShadow: made[3],
		MSAccumulation:           made[4],
		GroundIrradiance:         made[5],
		LightPollution:           made[6],
		AerialPerspective:        [2]gpu.Table{made[7], made[8]},
		Resolutions:              res,
		LayerCount:               activeCount,
	}
	p.tableKey = key
	p.stats.TableAllocations++
	return true, nil
}

func (p *pool) Tables() *TableSet {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tables
}

func (p *pool) EnsureTargets(target OutputTarget, width, height uint32) (bool, error) {
	if target < 0 || int(target) >= TargetCount {
		return false, fmt.Errorf("%w: unknown target %s", ErrAllocation, target)
	}
	if target == TargetCubemap {
		height = width
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	key := targetKey{width: width, height: height}
	if p.targets[target] != nil && p.targetKeys[target] == key {
		return false, nil
	}

	if old := p.targets[target]; old != nil {
		old.release()
		p.targets[target] = nil
		p.stats.TargetReleases++
	}

	made, err := p.allocate(targetDescriptors(p.labelPrefix, target, width, height))
	if err != nil {
		return false, fmt.Errorf("%s targets %dx%d: %w", target, width, height, err)
	}
	p.targets[target] = &RenderTargetPair{
		Target:    target,
		Width:     width,
		Height:    height,
		Sky:       made[0],
		Composite: made[1],
		History: [2]CloudBuffers{
			{Color: made[2], Transmittance: made[3]},
			{Color: made[4], Transmittance: made[5]},
		},
		cursor: 1,
	}
	p.targetKeys[target] = key
	p.stats.TargetAllocations++
	return true, nil
}

func (p *pool) Targets(target OutputTarget) *RenderTargetPair {
	if target < 0 || int(target) >= TargetCount {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.targets[target]
}

func (p *pool) EnsureNightSky(tier quality.StarTier) (bool, error) {
	res := quality.StarResolutions(tier)

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.night != nil && p.night.Resolutions == res {
		return false, nil
	}
	if p.night != nil {
		p.night.release()
		p.night = nil
		p.stats.NightReleases++
	}

	made, err := p.allocate(nightDescriptors(p.labelPrefix, res))
	if err != nil {
		return false, fmt.Errorf("night sky %s: %w", res.Tier, err)
	}
	p.night = &NightSkyTextures{Stars: made[0], Nebulae: made[1], Resolutions: res}
	p.stats.NightAllocations++
	return true, nil
}

func (p *pool) NightSky() *NightSkyTextures {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.night
}

func (p *pool) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

func (p *pool) Release() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.tables != nil {
		p.tables.release()
		p.tables = nil
		p.stats.TableReleases++
	}
	for i, t := range p.targets {
		if t != nil {
			t.release()
			p.targets[i] = nil
			p.stats.TargetReleases++
		}
	}
	if p.night != nil {
		p.night.release()
		p.night = nil
		p.stats.NightReleases++
	}
}

// allocate creates every table in descs, or none of them.
func (p *pool) allocate(descs []gpu.TableDescriptor) ([]gpu.Table, error) {
	made := make([]gpu.Table, 0, len(descs))
	for _, desc := range descs {
		t, err := p.device.CreateTable(desc)
		if err != nil {
			for _, m := range made {
				m.Release()
			}
			return nil, fmt.Errorf("%w: %q: %w", ErrAllocation, desc.Label, err)
		}
		made = append(made, t)
	}
	return made, nil
}
