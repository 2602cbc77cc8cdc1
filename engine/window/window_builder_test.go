package window

import "testing"

func apply(options ...WindowBuilderOption) *engineWindow {
	w := &engineWindow{width: 1280, height: 720}
	for _, opt := range options {
		opt(w)
	}
	w.clampSize()
	return w
}

func TestWithSize(t *testing.T) {
	w := apply(WithSize(1600, 900))
	if w.width != 1600 || w.height != 900 {
		t.Errorf("size = %dx%d", w.width, w.height)
	}
	w = apply(WithSize(0, -1))
	if w.width != 1280 || w.height != 720 {
		t.Errorf("non-positive size changed the default: %dx%d", w.width, w.height)
	}
}

func TestSizeLimitsClampInitialSize(t *testing.T) {
	tests := []struct {
		name          string
		options       []WindowBuilderOption
		width, height int
	}{
		{"below minimum", []WindowBuilderOption{WithSize(200, 100), WithSizeLimits(640, 360, 0, 0)}, 640, 360},
		{"above maximum", []WindowBuilderOption{WithSize(5000, 3000), WithSizeLimits(0, 0, 1920, 1080)}, 1920, 1080},
		{"unbounded", []WindowBuilderOption{WithSize(5000, 100)}, 5000, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := apply(tt.options...)
			if w.width != tt.width || w.height != tt.height {
				t.Errorf("size = %dx%d, want %dx%d", w.width, w.height, tt.width, tt.height)
			}
		})
	}
}

func TestAspectRatioAndResizable(t *testing.T) {
	w := apply(WithAspectRatio(16, 9), WithResizable(false))
	if w.aspectNumerator != 16 || w.aspectDenominator != 9 || !w.fixedSize {
		t.Errorf("window = %+v", w)
	}
	w = apply(WithAspectRatio(16, 9), WithAspectRatio(0, 9))
	if w.aspectNumerator != 0 || w.aspectDenominator != 0 {
		t.Error("non-positive ratio should unlock the aspect")
	}
}
