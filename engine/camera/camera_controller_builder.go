package camera

// CameraControllerOption is a functional option for configuring a CameraController.
type CameraControllerOption func(*cameraControllerImpl)

// WithPosition sets the initial position in kilometres.
//
// Parameters:
//   - x, y, z: world-space coordinates, y above the ground
//
// Returns:
//   - CameraControllerOption: functional option to set the position
func WithPosition(x, y, z float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.position = [3]float32{x, y, z}
	}
}

// WithYaw sets the initial heading around +Y in radians.
func WithYaw(yaw float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.yaw = yaw
	}
}

// WithPitch sets the initial angle above the horizon in radians.
func WithPitch(pitch float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.pitch = pitch
	}
}

// WithPitchLimits sets the pitch range. Limits outside (-pi/2, pi/2) would flip the view.
//
// Parameters:
//   - minPitch: lowest angle in radians
//   - maxPitch: highest angle in radians
//
// Returns:
//   - CameraControllerOption: functional option to set the pitch limits
func WithPitchLimits(minPitch, maxPitch float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.minPitch = minPitch
		cc.maxPitch = maxPitch
	}
}

// WithMinAltitude sets the lowest altitude the camera can reach.
func WithMinAltitude(altitude float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.minAltitude = altitude
	}
}

// WithMouseSensitivity sets the radians turned per dragged pixel.
//
// Parameters:
//   - sensitivity: radians per pixel
//
// Returns:
//   - CameraControllerOption: functional option to set the mouse sensitivity
func WithMouseSensitivity(sensitivity float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.mouseSensitivity = sensitivity
	}
}
