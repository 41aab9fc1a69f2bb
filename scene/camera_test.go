package scene

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/ktnlvr/wreckage-deprecated/types"
)

func TestIdentityOrientationEncoding(t *testing.T) {
	rc := NewCamera(types.XYZ(0, 0, 0)).Encode()
	if rc.Rotation != types.Ident4() {
		t.Fatalf("expected identity rotation matrix; got %v", rc.Rotation)
	}
}

func TestRawCameraLayout(t *testing.T) {
	cam := NewCamera(types.XYZ(1, 2, 3))
	cam.Yaw = 0.5
	cam.Pitch = -0.25

	rc := cam.Encode()
	if rc.Position != types.XYZW(1, 2, 3, 0) {
		t.Fatalf("expected position (1, 2, 3, 0); got %v", rc.Position)
	}

	data := rc.Bytes()
	if len(data) != RawCameraSize {
		t.Fatalf("expected %d bytes; got %d", RawCameraSize, len(data))
	}

	parsed, err := ParseRawCamera(data)
	if err != nil {
		t.Fatal(err)
	}
	if parsed != rc {
		t.Fatalf("expected parsed block to match the encoded one; got %v", parsed)
	}

	// The second 16-byte group is the first matrix column.
	col := cam.Rotation().Col(0)
	for row := 0; row < 4; row++ {
		if parsed.Rotation[row] != col[row] {
			t.Fatalf("expected column-major layout; element %d is %f, column value %f", row, parsed.Rotation[row], col[row])
		}
	}
}

func TestCameraRoundTrip(t *testing.T) {
	type spec struct {
		pos              types.Vec3
		pitch, yaw, roll float32
	}

	specs := []spec{
		{types.XYZ(0, 0, 0), 0, 0, 0},
		{types.XYZ(1, -2, 3.5), 0.3, 1.1, 0},
		{types.XYZ(-7, 0.25, 2), -1.2, -2.9, 0},
		{types.XYZ(0, 5, 0), 0.7, 3.0, 0.4},
	}

	for index, s := range specs {
		cam := NewCamera(s.pos)
		cam.Pitch, cam.Yaw, cam.Roll = s.pitch, s.yaw, s.roll

		rc, err := ParseRawCamera(cam.Encode().Bytes())
		if err != nil {
			t.Fatalf("[spec %d] unexpected error: %v", index, err)
		}
		pos, pitch, yaw, roll := DecodeCamera(rc)
		if pos != s.pos {
			t.Fatalf("[spec %d] expected position %v; got %v", index, s.pos, pos)
		}
		if math32.Abs(pitch-s.pitch) > 1e-4 || math32.Abs(yaw-s.yaw) > 1e-4 || math32.Abs(roll-s.roll) > 1e-4 {
			t.Fatalf("[spec %d] expected angles (%f, %f, %f); got (%f, %f, %f)", index, s.pitch, s.yaw, s.roll, pitch, yaw, roll)
		}
	}
}

func TestIntegrateForwardMovement(t *testing.T) {
	var speed, dt float32 = 2.0, 0.25

	cam := NewCamera(types.XYZ(0, 0, 0))
	cam.MoveSpeed = speed

	in := &InputState{}
	in.Apply(Event{Type: KeyDown, Key: KeyForward})
	cam.Integrate(in, dt)

	if exp := types.XYZ(0, 0, speed*dt); cam.Position != exp {
		t.Fatalf("expected position %v; got %v", exp, cam.Position)
	}
}

func TestIntegrateMovementIsRotatedByYaw(t *testing.T) {
	type spec struct {
		key Key
		exp types.Vec3
	}

	specs := []spec{
		{KeyForward, types.XYZ(1, 0, 0)},
		{KeyBackward, types.XYZ(-1, 0, 0)},
		{KeyStrafeRight, types.XYZ(0, 0, -1)},
		{KeyStrafeLeft, types.XYZ(0, 0, 1)},
	}

	for index, s := range specs {
		cam := NewCamera(types.XYZ(0, 0, 0))
		cam.MoveSpeed = 1
		cam.Yaw = math32.Pi / 2

		in := &InputState{}
		in.Apply(Event{Type: KeyDown, Key: s.key})
		cam.Integrate(in, 1)

		if !cam.Position.ApproxEqual(s.exp) {
			t.Fatalf("[spec %d] expected %s to move the camera to %v; got %v", index, s.key, s.exp, cam.Position)
		}
	}
}

func TestIntegrateLook(t *testing.T) {
	cam := NewCamera(types.XYZ(0, 0, 0))
	cam.LookSensitivity = 0.5

	in := &InputState{}
	in.Apply(Event{Type: PointerMoved, Delta: types.XY(2, 0)})
	in.Apply(Event{Type: PointerMoved, Delta: types.XY(2, -1)})
	cam.Integrate(in, 0.5)

	if exp := float32(-1); math32.Abs(cam.Yaw-exp) > 1e-6 {
		t.Fatalf("expected yaw %f; got %f", exp, cam.Yaw)
	}
	if exp := float32(0.25); math32.Abs(cam.Pitch-exp) > 1e-6 {
		t.Fatalf("expected pitch %f; got %f", exp, cam.Pitch)
	}
	if in.Pointer != (types.Vec2{}) {
		t.Fatalf("expected pointer delta to be consumed; got %v", in.Pointer)
	}

	// Pitch is clamped below a quarter turn.
	in.Apply(Event{Type: PointerMoved, Delta: types.XY(0, -1000)})
	cam.Integrate(in, 1)
	if cam.Pitch >= math32.Pi/2 {
		t.Fatalf("expected pitch to be clamped; got %f", cam.Pitch)
	}
}

func TestInputState(t *testing.T) {
	in := &InputState{}
	in.Apply(Event{Type: KeyDown, Key: KeyForward})
	in.Apply(Event{Type: KeyDown, Key: KeyStrafeLeft})
	if exp := types.XYZ(-1, 0, 1); in.Direction() != exp {
		t.Fatalf("expected direction %v; got %v", exp, in.Direction())
	}

	in.Apply(Event{Type: KeyDown, Key: KeyBackward})
	in.Apply(Event{Type: KeyUp, Key: KeyStrafeLeft})
	if exp := (types.Vec3{}); in.Direction() != exp {
		t.Fatalf("expected opposing keys to cancel out; got %v", in.Direction())
	}

	if in.Close {
		t.Fatal("expected close flag to be unset")
	}
	in.Apply(Event{Type: CloseRequested})
	if !in.Close {
		t.Fatal("expected close flag to be set")
	}
}
