package window

// WindowBuilderOption is a functional option for configuring an engineWindow.
type WindowBuilderOption func(w *engineWindow)

// WithTitle sets the window title.
func WithTitle(title string) WindowBuilderOption {
	return func(w *engineWindow) {
		w.title = title
	}
}

// WithSize sets the initial client size. Sizes outside the size limits are clamped when the
// window is created.
//
// Parameters:
//   - width: initial width in pixels
//   - height: initial height in pixels
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithSize(width, height int) WindowBuilderOption {
	return func(w *engineWindow) {
		if width > 0 {
			w.width = width
		}
		if height > 0 {
			w.height = height
		}
	}
}

// WithSizeLimits bounds the client size while the window is resized. A limit of 0 leaves that
// bound unset.
//
// Parameters:
//   - minWidth, minHeight: smallest client size in pixels
//   - maxWidth, maxHeight: largest client size in pixels
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithSizeLimits(minWidth, minHeight, maxWidth, maxHeight int) WindowBuilderOption {
	return func(w *engineWindow) {
		w.minWidth, w.minHeight = minWidth, minHeight
		w.maxWidth, w.maxHeight = maxWidth, maxHeight
	}
}

// WithAspectRatio locks the client area to numerator:denominator during resize, keeping the sky
// camera's projection stable. Non-positive values unlock it.
func WithAspectRatio(numerator, denominator int) WindowBuilderOption {
	return func(w *engineWindow) {
		if numerator <= 0 || denominator <= 0 {
			w.aspectNumerator, w.aspectDenominator = 0, 0
			return
		}
		w.aspectNumerator, w.aspectDenominator = numerator, denominator
	}
}

// WithResizable controls whether the user may resize the window.
func WithResizable(resizable bool) WindowBuilderOption {
	return func(w *engineWindow) {
		w.fixedSize = !resizable
	}
}
