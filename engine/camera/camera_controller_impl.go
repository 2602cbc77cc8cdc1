package camera

import (
	"math"
	"sync"
)

// cameraControllerImpl is the single implementation of CameraController.
type cameraControllerImpl struct {
	mu *sync.Mutex

	position [3]float32

	yaw   float32
	pitch float32

	minPitch    float32
	maxPitch    float32
	minAltitude float32

	mouseSensitivity float32
}

// Compile-time interface compliance check
var _ CameraController = &cameraControllerImpl{}

// NewCameraController creates a look controller standing 1.5 m above the ground, looking at
// the horizon along -Z.
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - CameraController: the newly created controller
func NewCameraController(options ...CameraControllerOption) CameraController {
	cc := &cameraControllerImpl{
		mu:       &sync.Mutex{},
		position: [3]float32{0, 0.0015, 0},

		minPitch:    float32(-math.Pi/2 + 0.01),
		maxPitch:    float32(math.Pi/2 - 0.01),
		minAltitude: 0.0005,

		mouseSensitivity: 0.004,
	}

	for _, option := range options {
		option(cc)
	}

	cc.clamp()
	return cc
}

// clamp keeps pitch within its limits, yaw within one turn and the position above the ground.
// Caller must hold the mutex.
func (cc *cameraControllerImpl) clamp() {
	cc.pitch = min(max(cc.pitch, cc.minPitch), cc.maxPitch)
	cc.yaw = float32(math.Remainder(float64(cc.yaw), 2*math.Pi))
	cc.position[1] = max(cc.position[1], cc.minAltitude)
}

// forward computes the unit view direction from yaw and pitch.
// Caller must hold the mutex.
func (cc *cameraControllerImpl) forward() [3]float32 {
	cosPitch := float32(math.Cos(float64(cc.pitch)))
	return [3]float32{
		cosPitch * float32(math.Sin(float64(cc.yaw))),
		float32(math.Sin(float64(cc.pitch))),
		-cosPitch * float32(math.Cos(float64(cc.yaw))),
	}
}

func (cc *cameraControllerImpl) Position() (x, y, z float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.position[0], cc.position[1], cc.position[2]
}

func (cc *cameraControllerImpl) Target() (x, y, z float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	f := cc.forward()
	return cc.position[0] + f[0], cc.position[1] + f[1], cc.position[2] + f[2]
}

func (cc *cameraControllerImpl) Forward() [3]float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.forward()
}

func (cc *cameraControllerImpl) SetPosition(x, y, z float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.position = [3]float32{x, y, z}
	cc.clamp()
}

func (cc *cameraControllerImpl) Look(dx, dy float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.yaw += dx * cc.mouseSensitivity
	cc.pitch -= dy * cc.mouseSensitivity
	cc.clamp()
}

func (cc *cameraControllerImpl) Turn(yaw, pitch float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.yaw += yaw
	cc.pitch += pitch
	cc.clamp()
}

func (cc *cameraControllerImpl) Climb(delta float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.position[1] += delta
	cc.clamp()
}

func (cc *cameraControllerImpl) Yaw() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.yaw
}

func (cc *cameraControllerImpl) Pitch() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.pitch
}

func (cc *cameraControllerImpl) MouseSensitivity() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.mouseSensitivity
}
