package config

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-sky/engine/sky/quality"
	"github.com/go-gl/mathgl/mgl32"
)

func TestActiveLayersCompaction(t *testing.T) {
	c := Default()
	c.Layers[1].Enabled = false
	c.Layers[5] = EarthRayleigh()

	a := c.ActiveLayers()
	if a.Count != 3 {
		t.Fatalf("Count = %d, want 3", a.Count)
	}
	wantSlots := []int{0, 2, 5}
	for i, s := range wantSlots {
		if a.Slots[i] != s {
			t.Errorf("Slots[%d] = %d, want %d", i, a.Slots[i], s)
		}
		if a.Items[i] != c.Layers[s] {
			t.Errorf("Items[%d] does not match slot %d", i, s)
		}
	}
	if a.Items[3] != (AtmosphereLayer{}) {
		t.Error("entries past Count must stay zero")
	}
}

func TestEnabledGetters(t *testing.T) {
	c := Default()
	if !c.IsLayerEnabled(0) || c.IsLayerEnabled(3) || c.IsLayerEnabled(-1) || c.IsLayerEnabled(MaxLayers) {
		t.Error("IsLayerEnabled wrong")
	}
	if !c.IsBodyEnabled(0) || c.IsBodyEnabled(1) || c.IsBodyEnabled(MaxBodies) {
		t.Error("IsBodyEnabled wrong")
	}
	if _, ok := c.Layer(MaxLayers); ok {
		t.Error("Layer out of range reported ok")
	}
	if b, ok := c.Body(0); !ok || b.Name != "sun" {
		t.Errorf("Body(0) = %+v, %v", b, ok)
	}
	if ab := c.ActiveBodies(); ab.Count != 1 || ab.Slots[0] != 0 {
		t.Errorf("ActiveBodies = %+v", ab)
	}
}

func TestDefaultIsValid(t *testing.T) {
	c := Default()
	if w := c.Validate(); len(w) != 0 {
		t.Errorf("default config produced warnings: %v", w)
	}
}

func TestValidateClamps(t *testing.T) {
	c := Default()
	c.Planet.Radius = float32(math.NaN())
	c.Layers[0].Anisotropy = 2
	c.Layers[1].Thickness = -1
	c.Samples.Transmittance = 0
	c.Quality = quality.Tier(17)
	c.Bodies[0].Temperature = 100
	c.Clouds.Coverage = 3

	w := c.Validate()
	fields := map[string]bool{}
	for _, x := range w {
		fields[x.Field] = true
	}
	for _, f := range []string{"planet.radius", "layers[0].anisotropy", "layers[1].thickness", "samples.transmittance", "quality", "bodies[0].temperature", "clouds.coverage"} {
		if !fields[f] {
			t.Errorf("missing warning for %s in %v", f, w)
		}
	}
	if c.Planet.Radius != 1 || c.Layers[0].Anisotropy != 0.999 || c.Layers[1].Thickness != 1e-3 {
		t.Errorf("clamped values wrong: %v %v %v", c.Planet.Radius, c.Layers[0].Anisotropy, c.Layers[1].Thickness)
	}
	if c.Samples.Transmittance != 1 || c.Quality != quality.Potato || c.Bodies[0].Temperature != 1000 || c.Clouds.Coverage != 1 {
		t.Error("clamped values wrong")
	}
	if again := c.Validate(); len(again) != 0 {
		t.Errorf("second validation still warns: %v", again)
	}
}

func TestValidateDateTime(t *testing.T) {
	c := Default()
	c.Bodies[0].UseDateTime = true
	c.Bodies[0].DateTime = "yesterday at noon"
	w := c.Validate()
	if len(w) != 1 || w[0].Field != "bodies[0].dateTime" {
		t.Fatalf("warnings = %v", w)
	}
	if c.Bodies[0].DateTime != "yesterday at noon" {
		t.Error("malformed date/time should be left untouched")
	}
	if _, err := ParseDateTime("yesterday"); !errors.Is(err, ErrInvalidDateTime) {
		t.Errorf("ParseDateTime error = %v", err)
	}
	if ts, err := ParseDateTime("2024-03-20T14:00:00+02:00"); err != nil || ts.Hour() != 12 {
		t.Errorf("ParseDateTime = %v, %v", ts, err)
	}
}

func TestValidateZeroDirection(t *testing.T) {
	c := Default()
	c.Bodies[0].Direction = mgl32.Vec3{}
	c.Validate()
	if c.Bodies[0].Direction != (mgl32.Vec3{0, 1, 0}) {
		t.Errorf("direction = %v, want zenith", c.Bodies[0].Direction)
	}
}

func TestLoad(t *testing.T) {
	doc := `{
		"quality": "high",
		"starQuality": "ultra",
		"planet": {"radius": 3390, "atmosphereThickness": 80, "groundAlbedo": [0.4, 0.2, 0.1]},
		"layers": [
			{"enabled": true, "name": "dust", "scattering": [0.02, 0.01, 0.005], "distribution": "exponential",
			 "thickness": 11, "phase": "mie", "anisotropy": 0.7, "density": 1, "tint": [1, 1, 1],
			 "multipleScatteringMultiplier": 1}
		],
		"bodies": [
			{"enabled": true, "kind": "sun", "useDateTime": true, "dateTime": "2024-03-20T12:00:00Z",
			 "angularRadius": 0.003, "lightIntensity": 0.6, "useTemperature": true, "temperature": 5800}
		]
	}`
	c, w, err := Load(strings.NewReader(doc))
	if err != nil {
		t.Fatal(err)
	}
	if len(w) != 0 {
		t.Errorf("unexpected warnings %v", w)
	}
	if c.Quality != quality.High || c.StarQuality != quality.StarUltra {
		t.Errorf("quality = %v / %v", c.Quality, c.StarQuality)
	}
	if c.Planet.Radius != 3390 || c.Layers[0].Phase != PhaseMie || c.Layers[0].Name != "dust" {
		t.Errorf("decoded config wrong: %+v", c.Layers[0])
	}
	if a := c.ActiveLayers(); a.Count != 1 {
		t.Errorf("layers beyond the document should be zero, active = %d", a.Count)
	}
	if !c.Bodies[0].UseDateTime || c.IsBodyEnabled(1) {
		t.Error("bodies decoded wrong")
	}
	if c.Samples != Default().Samples {
		t.Error("fields absent from the document should keep their defaults")
	}
}

func TestLoadReplacesSlotDefaults(t *testing.T) {
	doc := `{
		"layers": [{"enabled": true, "phase": "mie", "scattering": [0.004, 0.004, 0.004], "thickness": 1.2, "density": 1}],
		"bodies": [{"enabled": true, "kind": "moon", "angularRadius": 0.0045}]
	}`
	c, _, err := Load(strings.NewReader(doc))
	if err != nil {
		t.Fatal(err)
	}
	l := c.Layers[0]
	if l.Name != "" || l.Tint != (mgl32.Vec3{}) || l.MultipleScatteringMultiplier != 0 {
		t.Errorf("layer kept default fields: name %q, tint %v, ms multiplier %v",
			l.Name, l.Tint, l.MultipleScatteringMultiplier)
	}
	if l.Phase != PhaseMie || l.Thickness != 1.2 {
		t.Errorf("layer fields in the document lost: %+v", l)
	}
	if b := c.Bodies[0]; b.Name != "" || b.LightIntensity != 0 || b.Kind != BodyMoon {
		t.Errorf("body kept default fields: %+v", b)
	}

	// Documents without the arrays keep the default layers and bodies.
	c, _, err = Load(strings.NewReader(`{"quality": "low"}`))
	if err != nil {
		t.Fatal(err)
	}
	if c.Layers != Default().Layers || c.Bodies != Default().Bodies {
		t.Error("absent arrays should keep their defaults")
	}
}

func TestLoadUnknownTierWarns(t *testing.T) {
	c, w, err := Load(strings.NewReader(`{"quality": "cinematic"}`))
	if err != nil {
		t.Fatal(err)
	}
	if c.Quality != quality.Potato || len(w) != 1 || w[0].Field != "quality" {
		t.Errorf("quality = %v, warnings = %v", c.Quality, w)
	}
}

func TestLoadUnknownField(t *testing.T) {
	_, _, err := Load(strings.NewReader(`{"gravity": 9.8}`))
	if !errors.Is(err, ErrUnknownField) {
		t.Errorf("err = %v, want ErrUnknownField", err)
	}
	if _, _, err := Load(strings.NewReader(`{"quality": `)); err == nil {
		t.Error("truncated document should fail")
	}
}
