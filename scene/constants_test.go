package scene

import (
	"errors"
	"testing"
)

func TestFrameConstants(t *testing.T) {
	type spec struct {
		w, h     uint32
		min, max float32
		expErr   error
	}

	specs := []spec{
		{800, 600, 0, 12, nil},
		{1, 1, -1, 1, nil},
		{0, 600, 0, 12, ErrInvalidViewport},
		{800, 0, 0, 12, ErrInvalidViewport},
		{800, 600, 12, 12, ErrInvalidDepthRange},
		{800, 600, 5, 1, ErrInvalidDepthRange},
	}

	for index, s := range specs {
		fc, err := NewFrameConstants(s.w, s.h, s.min, s.max)
		if s.expErr != nil {
			if !errors.Is(err, s.expErr) {
				t.Fatalf("[spec %d] expected error %v; got %v", index, s.expErr, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("[spec %d] unexpected error: %v", index, err)
		}

		if exp := float32(s.w) / float32(s.h); fc.AspectRatio != exp {
			t.Fatalf("[spec %d] expected aspect ratio %f; got %f", index, exp, fc.AspectRatio)
		}

		data := fc.Bytes()
		if len(data) != FrameConstantsSize {
			t.Fatalf("[spec %d] expected %d encoded bytes; got %d", index, FrameConstantsSize, len(data))
		}
		decoded, err := DecodeFrameConstants(data)
		if err != nil {
			t.Fatalf("[spec %d] unexpected decode error: %v", index, err)
		}
		if decoded != fc {
			t.Fatalf("[spec %d] expected decoded constants %+v; got %+v", index, fc, decoded)
		}
	}
}

func TestFrameConstantsFieldOrder(t *testing.T) {
	fc, _ := NewFrameConstants(800, 600, 0, 12)
	data := fc.Bytes()

	// width and height are stored as integers at offsets 4 and 8.
	if data[4] != 0x20 || data[5] != 0x03 {
		t.Fatalf("expected width 800 at offset 4; got % x", data[4:8])
	}
	if data[8] != 0x58 || data[9] != 0x02 {
		t.Fatalf("expected height 600 at offset 8; got % x", data[8:12])
	}
}
