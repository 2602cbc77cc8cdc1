package common

import "math"

// CubeFaceCount is the number of faces of a cubemap.
const CubeFaceCount = 6

// cubeFaces holds the forward and up vectors of each cube face in layer order +X, -X, +Y, -Y, +Z, -Z.
var cubeFaces = [CubeFaceCount][2][3]float32{
	{{1, 0, 0}, {0, 1, 0}},
	{{-1, 0, 0}, {0, 1, 0}},
	{{0, 1, 0}, {0, 0, -1}},
	{{0, -1, 0}, {0, 0, 1}},
	{{0, 0, 1}, {0, 1, 0}},
	{{0, 0, -1}, {0, 1, 0}},
}

// CubeFaceForward returns the direction a cube face looks towards.
//
// Parameters:
//   - face: the face layer index in [0, 6)
//
// Returns:
//   - [3]float32: the unit forward vector, or +X when face is out of range
func CubeFaceForward(face int) [3]float32 {
	if face < 0 || face >= CubeFaceCount {
		face = 0
	}
	return cubeFaces[face][0]
}

// CubeFaceViewProj builds the view-projection matrix of one cube face seen from eye.
// The projection has a 90 degree field of view and a square aspect so the six faces tile the sphere.
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - face: the face layer index in [0, 6)
//   - eye: the cube center in world space
//   - near: near clipping plane distance
//   - far: far clipping plane distance
func CubeFaceViewProj(out []float32, face int, eye [3]float32, near, far float32) {
	if face < 0 || face >= CubeFaceCount {
		face = 0
	}
	fwd, up := cubeFaces[face][0], cubeFaces[face][1]

	var view, proj [16]float32
	LookAt(view[:], eye[0], eye[1], eye[2], eye[0]+fwd[0], eye[1]+fwd[1], eye[2]+fwd[2], up[0], up[1], up[2])
	Perspective(proj[:], math.Pi/2, 1, near, far)
	Mul4(out, proj[:], view[:])
}
