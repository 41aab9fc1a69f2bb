package types

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// A 4x4 matrix in column-major order; the element at (row, col) is stored
// at index col*4+row. This matches the layout GPU kernels expect for
// matrices passed through uniforms and push constants.
type Mat4 mgl32.Mat4

var (
	axisX = mgl32.Vec3{1, 0, 0}
	axisY = mgl32.Vec3{0, 1, 0}
	axisZ = mgl32.Vec3{0, 0, 1}
)

// Create identity matrix.
func Ident4() Mat4 {
	return Mat4(mgl32.Ident4())
}

// Get matrix element at the given row and column.
func (m Mat4) At(row, col int) float32 {
	return m[col*4+row]
}

// Get a matrix column.
func (m Mat4) Col(col int) Vec4 {
	return Vec4{m[col*4], m[col*4+1], m[col*4+2], m[col*4+3]}
}

// Multiply two matrices.
func (m Mat4) Mul4(m2 Mat4) Mat4 {
	return Mat4(mgl32.Mat4(m).Mul4(mgl32.Mat4(m2)))
}

// Multiply matrix with a column vector.
func (m Mat4) Mul4x1(v Vec4) Vec4 {
	return Vec4(mgl32.Mat4(m).Mul4x1(mgl32.Vec4(v)))
}

// Transpose matrix.
func (m Mat4) Transpose() Mat4 {
	return Mat4(mgl32.Mat4(m).Transpose())
}

// Compare two matrices using the package float tolerance.
func (m Mat4) ApproxEqual(m2 Mat4) bool {
	return mgl32.Mat4(m).ApproxEqualThreshold(mgl32.Mat4(m2), floatCmpEpsilon)
}

// Compose a rotation matrix from Euler angles (in radians). The rotation is
// R = Ry(yaw) * Rx(pitch) * Rz(roll): roll is applied first and yaw last, so
// yaw always turns around the world up axis.
func EulerMat4(pitch, yaw, roll float32) Mat4 {
	q := mgl32.QuatRotate(yaw, axisY).
		Mul(mgl32.QuatRotate(pitch, axisX)).
		Mul(mgl32.QuatRotate(roll, axisZ))
	return Mat4(q.Normalize().Mat4())
}

// Recover the Euler angles of a rotation matrix produced by EulerMat4. The
// decomposition is unique while |pitch| < pi/2.
func (m Mat4) Euler() (pitch, yaw, roll float32) {
	sinPitch := -m.At(1, 2)
	if sinPitch > 1 {
		sinPitch = 1
	} else if sinPitch < -1 {
		sinPitch = -1
	}

	pitch = math32.Asin(sinPitch)
	yaw = math32.Atan2(m.At(0, 2), m.At(2, 2))
	roll = math32.Atan2(m.At(1, 0), m.At(1, 1))
	return pitch, yaw, roll
}

// Rotate v around the world Y axis.
func RotateY(v Vec3, angle float32) Vec3 {
	return Vec3(mgl32.QuatRotate(angle, axisY).Rotate(mgl32.Vec3(v)))
}
