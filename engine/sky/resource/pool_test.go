package resource

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-sky/engine/sky/gpu"
	"github.com/Carmen-Shannon/oxy-sky/engine/sky/gpu/gputest"
	"github.com/Carmen-Shannon/oxy-sky/engine/sky/quality"
)

const tablesPerSet = 9

func TestEnsureTablesIdempotent(t *testing.T) {
	rec := gputest.NewRecorder()
	p := NewPool(rec)
	res := quality.Resolutions(quality.Medium)

	changed, err := p.EnsureTables(res, 2)
	if err != nil || !changed {
		t.Fatalf("first ensure = %v, %v", changed, err)
	}
	changed, err = p.EnsureTables(res, 2)
	if err != nil || changed {
		t.Fatalf("second ensure = %v, %v", changed, err)
	}

	s := p.Stats()
	if s.TableAllocations != 1 || s.TableReleases != 0 {
		t.Errorf("stats = %+v", s)
	}
	if rec.Created() != tablesPerSet {
		t.Errorf("created %d tables, want %d", rec.Created(), tablesPerSet)
	}
}

func TestEnsureTablesReallocatesOnChange(t *testing.T) {
	rec := gputest.NewRecorder()
	p := NewPool(rec)
	res := quality.Resolutions(quality.Medium)
	if _, err := p.EnsureTables(res, 2); err != nil {
		t.Fatal(err)
	}
	old := p.Tables()

	changed, err := p.EnsureTables(res, 3)
	if err != nil || !changed {
		t.Fatalf("count change = %v, %v", changed, err)
	}
	s := p.Stats()
	if s.TableAllocations != 2 || s.TableReleases != 1 {
		t.Errorf("stats = %+v", s)
	}
	for _, tb := range old.All() {
		if !tb.(*gputest.Table).Released() {
			t.Errorf("old table %q not released", tb.Label())
		}
	}
	if rec.Live() != tablesPerSet {
		t.Errorf("live = %d", rec.Live())
	}

	ts := p.Tables()
	if ts.LayerCount != 3 {
		t.Errorf("layer count = %d", ts.LayerCount)
	}
	want := res.SingleScattering.Packed(3)
	if got := ts.SingleScattering.Descriptor().Extent(); got != want {
		t.Errorf("single scattering extent = %v, want %v", got, want)
	}
	if d := ts.GroundIrradiance.Descriptor(); d.Depth != 3 || d.Width != res.GroundIrradiance {
		t.Errorf("ground irradiance = %+v", d)
	}

	changed, err = p.EnsureTables(quality.Resolutions(quality.High), 3)
	if err != nil || !changed {
		t.Fatalf("tier change = %v, %v", changed, err)
	}
	if got := p.Tables().Transmittance.Descriptor(); got.Width != 512 || got.Height != 128 {
		t.Errorf("transmittance = %dx%d", got.Width, got.Height)
	}
}

func TestEnsureTablesPlaceholder(t *testing.T) {
	rec := gputest.NewRecorder()
	p := NewPool(rec)
	res := quality.Resolutions(quality.Low)

	if _, err := p.EnsureTables(res, 0); err != nil {
		t.Fatal(err)
	}
	ts := p.Tables()
	if ts.LayerCount != 0 {
		t.Errorf("layer count = %d", ts.LayerCount)
	}
	if d := ts.LightPollution.Descriptor(); d.Depth != 1 {
		t.Errorf("placeholder depth = %d", d.Depth)
	}
	// One layer requested is a different key than the placeholder.
	changed, _ := p.EnsureTables(res, 1)
	if !changed {
		t.Error("0 -> 1 layers must reallocate")
	}
}

func TestEnsureTablesAllOrNothing(t *testing.T) {
	for _, failAt := range []int{0, 1, 4, tablesPerSet - 1} {
		rec := gputest.NewRecorder()
		p := NewPool(rec)
		rec.FailAfter(failAt)

		changed, err := p.EnsureTables(quality.Resolutions(quality.Medium), 2)
		if changed {
			t.Errorf("failAt %d: changed reported on failure", failAt)
		}
		if !errors.Is(err, ErrAllocation) || !errors.Is(err, gputest.ErrInjected) {
			t.Errorf("failAt %d: err = %v", failAt, err)
		}
		if p.Tables() != nil {
			t.Errorf("failAt %d: partial table set visible", failAt)
		}
		if rec.Live() != 0 {
			t.Errorf("failAt %d: %d tables leaked", failAt, rec.Live())
		}

		rec.FailAfter(-1)
		changed, err = p.EnsureTables(quality.Resolutions(quality.Medium), 2)
		if err != nil || !changed {
			t.Errorf("failAt %d: retry = %v, %v", failAt, changed, err)
		}
	}
}

func TestEnsureTablesFailureReleasesOldSet(t *testing.T) {
	rec := gputest.NewRecorder()
	p := NewPool(rec)
	if _, err := p.EnsureTables(quality.Resolutions(quality.Low), 1); err != nil {
		t.Fatal(err)
	}
	rec.FailAfter(2)
	if _, err := p.EnsureTables(quality.Resolutions(quality.Low), 2); err == nil {
		t.Fatal("expected failure")
	}
	if p.Tables() != nil || rec.Live() != 0 {
		t.Errorf("tables = %v, live = %d", p.Tables(), rec.Live())
	}
}

func TestLookup(t *testing.T) {
	p := NewPool(gputest.NewRecorder())
	if _, err := p.EnsureTables(quality.Resolutions(quality.Potato), 1); err != nil {
		t.Fatal(err)
	}
	ts := p.Tables()
	for slot, want := range map[string]gpu.Table{
		gpu.SlotTransmittance:            ts.Transmittance,
		gpu.SlotMultipleScattering:       ts.MultipleScattering,
		gpu.SlotSingleScattering:         ts.SingleScattering,
		gpu.SlotSingleScatteringNoShadow: ts.SingleScatteringNoShadow,
		gpu.SlotMSAccumulation:           ts.MSAccumulation,
		gpu.SlotGroundIrradiance:         ts.GroundIrradiance,
		gpu.SlotLightPollution:           ts.LightPollution,
	} {
		if got := ts.Lookup(slot, 0); got != want {
			t.Errorf("Lookup(%q) = %v", slot, got)
		}
	}
	if ts.Lookup(gpu.SlotAerialPerspective, 1) != ts.AerialPerspective[1] {
		t.Error("aerial perspective lod 1")
	}
	if ts.Lookup(gpu.SlotAerialPerspective, 2) != nil || ts.Lookup("bogus", 0) != nil {
		t.Error("unknown lookups must be nil")
	}
	if !ts.Transmittance.Descriptor().Usage.Has(gpu.UsageCopySource) {
		t.Error("transmittance must be copyable for readback")
	}

	var empty *TableSet
	if empty.Lookup(gpu.SlotTransmittance, 0) != nil {
		t.Error("nil set lookup")
	}
}

func TestEnsureTargets(t *testing.T) {
	rec := gputest.NewRecorder()
	p := NewPool(rec)

	changed, err := p.EnsureTargets(TargetScreen, 1280, 720)
	if err != nil || !changed {
		t.Fatalf("first = %v, %v", changed, err)
	}
	pair := p.Targets(TargetScreen)
	if pair.Cursor() != 1 {
		t.Errorf("initial cursor = %d", pair.Cursor())
	}
	if pair.Previous() != pair.History[0] || pair.Current() != pair.History[1] {
		t.Error("previous/current mismatch")
	}
	pair.Swap()
	if pair.Cursor() != 0 || pair.Current() != pair.History[0] {
		t.Error("swap")
	}

	if changed, _ := p.EnsureTargets(TargetScreen, 1280, 720); changed {
		t.Error("same size reallocated")
	}
	if changed, _ := p.EnsureTargets(TargetScreen, 1920, 1080); !changed {
		t.Error("resize not reallocated")
	}
	s := p.Stats()
	if s.TargetAllocations != 2 || s.TargetReleases != 1 {
		t.Errorf("stats = %+v", s)
	}
	if got := p.Targets(TargetScreen); got.Width != 1920 || got.Height != 1080 || got.Cursor() != 1 {
		t.Errorf("resized pair = %dx%d cursor %d", got.Width, got.Height, got.Cursor())
	}

	if _, err := p.EnsureTargets(TargetCubemap, 256, 0); err != nil {
		t.Fatal(err)
	}
	cube := p.Targets(TargetCubemap)
	d := cube.Sky.Descriptor()
	if d.Dimension != gpu.DimensionCube || d.Width != 256 || d.Height != 256 || d.Depth != 6 {
		t.Errorf("cube descriptor = %+v", d)
	}
	if p.Targets(OutputTarget(5)) != nil {
		t.Error("unknown target")
	}
}

func TestEnsureTargetsZeroSize(t *testing.T) {
	rec := gputest.NewRecorder()
	p := NewPool(rec)
	if _, err := p.EnsureTargets(TargetScreen, 0, 720); !errors.Is(err, ErrAllocation) {
		t.Errorf("err = %v", err)
	}
	if rec.Live() != 0 {
		t.Errorf("live = %d", rec.Live())
	}
}

func TestEnsureNightSky(t *testing.T) {
	rec := gputest.NewRecorder()
	p := NewPool(rec)
	if changed, err := p.EnsureNightSky(quality.StarMedium); !changed || err != nil {
		t.Fatalf("first = %v, %v", changed, err)
	}
	if changed, _ := p.EnsureNightSky(quality.StarMedium); changed {
		t.Error("same tier reallocated")
	}
	if changed, _ := p.EnsureNightSky(quality.StarHigh); !changed {
		t.Error("tier change not reallocated")
	}
	n := p.NightSky()
	if n.Stars.Descriptor().Width != 1024 || n.Nebulae.Descriptor().Width != 512 {
		t.Errorf("night = %+v", n.Resolutions)
	}
	if n.Lookup(gpu.SlotStars, 0) != n.Stars || n.Lookup(gpu.SlotNebulae, 0) != n.Nebulae {
		t.Error("night lookup")
	}
	s := p.Stats()
	if s.NightAllocations != 2 || s.NightReleases != 1 {
		t.Errorf("stats = %+v", s)
	}
}

func TestRelease(t *testing.T) {
	rec := gputest.NewRecorder()
	p := NewPool(rec, WithLabelPrefix("test."), WithTableFormat(gpu.FormatRGBA32Float))
	p.EnsureTables(quality.Resolutions(quality.Low), 2)
	p.EnsureTargets(TargetScreen, 64, 64)
	p.EnsureTargets(TargetCubemap, 32, 32)
	p.EnsureNightSky(quality.StarLow)

	if got := p.Tables().SingleScattering.Descriptor(); got.Format != gpu.FormatRGBA32Float || got.Label != "test.singleScattering" {
		t.Errorf("options not applied: %+v", got)
	}

	p.Release()
	if rec.Live() != 0 {
		t.Errorf("live after release = %d", rec.Live())
	}
	if p.Tables() != nil || p.Targets(TargetScreen) != nil || p.NightSky() != nil {
		t.Error("pool still exposes resources")
	}
}

func TestNewPoolPanicsWithoutDevice(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	NewPool(nil)
}
