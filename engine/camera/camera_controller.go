package camera

// CameraController owns the pose of a first-person look camera: a position and a heading
// given by yaw around +Y and pitch above the horizon. The camera reads the pose and builds
// its matrices from it.
type CameraController interface {
	// Position returns the camera's world-space position in kilometres, y above the ground.
	//
	// Returns:
	//   - x, y, z: world-space camera position
	Position() (x, y, z float32)

	// Target returns a point one unit ahead along the view direction.
	//
	// Returns:
	//   - x, y, z: world-space target position
	Target() (x, y, z float32)

	// Forward returns the unit view direction.
	Forward() [3]float32

	// SetPosition sets the camera's world-space position directly. The altitude is clamped to
	// the controller's minimum.
	//
	// Parameters:
	//   - x, y, z: world-space coordinates
	SetPosition(x, y, z float32)

	// Look turns the heading by a pointer drag in pixels, scaled by the mouse sensitivity.
	// Dragging right turns right and dragging down looks down.
	//
	// Parameters:
	//   - dx, dy: drag distance in pixels
	Look(dx, dy float32)

	// Turn turns the heading by angles in radians. Pitch is clamped to the controller's limits.
	//
	// Parameters:
	//   - yaw: rotation around +Y, positive turns right
	//   - pitch: rotation towards the zenith
	Turn(yaw, pitch float32)

	// Climb moves the camera vertically by delta kilometres.
	Climb(delta float32)

	// Yaw returns the heading around +Y in radians, 0 looking along -Z.
	Yaw() float32

	// Pitch returns the angle above the horizon in radians.
	Pitch() float32

	// MouseSensitivity returns the radians turned per dragged pixel.
	MouseSensitivity() float32
}
