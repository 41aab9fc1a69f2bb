package types

import (
	"testing"

	"github.com/chewxy/math32"
)

func TestEulerIdentity(t *testing.T) {
	m := EulerMat4(0, 0, 0)
	if m != Ident4() {
		t.Fatalf("expected zero Euler angles to yield the identity matrix; got %v", m)
	}
}

func TestEulerRoundTrip(t *testing.T) {
	type spec struct {
		pitch, yaw, roll float32
	}

	specs := []spec{
		{0.3, 0, 0},
		{0, 1.2, 0},
		{0, 0, -0.7},
		{-0.4, 2.5, 0},
		{1.2, -3.0, 0.25},
	}

	for index, s := range specs {
		pitch, yaw, roll := EulerMat4(s.pitch, s.yaw, s.roll).Euler()
		if math32.Abs(pitch-s.pitch) > 1e-4 || math32.Abs(yaw-s.yaw) > 1e-4 || math32.Abs(roll-s.roll) > 1e-4 {
			t.Fatalf("[spec %d] expected angles (%f, %f, %f); got (%f, %f, %f)", index, s.pitch, s.yaw, s.roll, pitch, yaw, roll)
		}
	}
}

func TestEulerCompositionOrder(t *testing.T) {
	// A quarter turn of yaw maps the view axis (-Z) onto -X.
	m := EulerMat4(0, math32.Pi/2, 0)
	got := m.Mul4x1(XYZW(0, 0, -1, 0)).Vec3()
	if exp := XYZ(-1, 0, 0); !got.ApproxEqual(exp) {
		t.Fatalf("expected %v; got %v", exp, got)
	}

	// Pitch rotates around the local X axis before yaw is applied.
	m = EulerMat4(math32.Pi/2, math32.Pi/2, 0)
	got = m.Mul4x1(XYZW(0, 0, -1, 0)).Vec3()
	if exp := XYZ(0, 1, 0); !got.ApproxEqual(exp) {
		t.Fatalf("expected %v; got %v", exp, got)
	}
}

func TestColumnMajorLayout(t *testing.T) {
	m := EulerMat4(0.1, 0.7, 0)
	for col := 0; col < 4; col++ {
		c := m.Col(col)
		for row := 0; row < 4; row++ {
			if c[row] != m.At(row, col) {
				t.Fatalf("expected column %d row %d to equal %f; got %f", col, row, m.At(row, col), c[row])
			}
		}
	}

	if m.Transpose().At(0, 2) != m.At(2, 0) {
		t.Fatal("expected transpose to swap rows and columns")
	}
}

func TestRotateY(t *testing.T) {
	type spec struct {
		in    Vec3
		angle float32
		exp   Vec3
	}

	specs := []spec{
		{XYZ(0, 0, 1), 0, XYZ(0, 0, 1)},
		{XYZ(0, 0, 1), math32.Pi / 2, XYZ(1, 0, 0)},
		{XYZ(1, 0, 0), math32.Pi / 2, XYZ(0, 0, -1)},
		{XYZ(0, 3, 0), 1.3, XYZ(0, 3, 0)},
	}

	for index, s := range specs {
		if got := RotateY(s.in, s.angle); !got.ApproxEqual(s.exp) {
			t.Fatalf("[spec %d] expected %v; got %v", index, s.exp, got)
		}
	}
}

func TestVectorHelpers(t *testing.T) {
	v := XYZ(3, 0, 4)
	if v.Len() != 5 {
		t.Fatalf("expected length 5; got %f", v.Len())
	}
	if n := v.Normalize(); !n.ApproxEqual(XYZ(0.6, 0, 0.8)) {
		t.Fatalf("expected normalized vector (0.6, 0, 0.8); got %v", n)
	}
	if n := (Vec3{}).Normalize(); n != (Vec3{}) {
		t.Fatalf("expected zero vector to normalize to zero; got %v", n)
	}
	if got := XYZ(1, 1, 1).Lerp(XYZ(3, 5, 7), 0.5); got != XYZ(2, 3, 4) {
		t.Fatalf("expected midpoint (2, 3, 4); got %v", got)
	}
	if got := MinVec3(XYZ(1, 5, -2), XYZ(0, 6, -3)); got != XYZ(0, 5, -3) {
		t.Fatalf("expected (0, 5, -3); got %v", got)
	}
	if got := MaxVec3(XYZ(1, 5, -2), XYZ(0, 6, -3)); got != XYZ(1, 6, -2) {
		t.Fatalf("expected (1, 6, -2); got %v", got)
	}
}
