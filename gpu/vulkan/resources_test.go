//go:build !386 && !arm

package vulkan

import (
	"testing"
	"unsafe"

	vk "github.com/goki/vulkan"
)

func TestImageRelease(t *testing.T) {
	// Non-dispatchable handles are pointers on 64-bit targets; any non-nil
	// value stands in for a live handle.
	var storage [3]byte
	view := vk.ImageView(unsafe.Pointer(&storage[0]))
	handle := vk.Image(unsafe.Pointer(&storage[1]))
	memory := vk.DeviceMemory(unsafe.Pointer(&storage[2]))

	type spec struct {
		img          Image
		expDestroyed []string
	}

	specs := []spec{
		{Image{handle: handle, memory: memory, view: view}, []string{"view", "image", "memory"}},
		// Memory allocation failed after the image was created.
		{Image{handle: handle}, []string{"image"}},
		{Image{handle: handle, memory: memory}, []string{"image", "memory"}},
		{Image{handle: handle, presentable: true}, nil},
		{Image{}, nil},
	}

	for index, s := range specs {
		var destroyed []string
		img := s.img
		img.release(
			func(vk.ImageView) { destroyed = append(destroyed, "view") },
			func(vk.Image) { destroyed = append(destroyed, "image") },
			func(vk.DeviceMemory) { destroyed = append(destroyed, "memory") },
		)

		if len(destroyed) != len(s.expDestroyed) {
			t.Fatalf("[spec %d] expected to destroy %v; got %v", index, s.expDestroyed, destroyed)
		}
		for i := range destroyed {
			if destroyed[i] != s.expDestroyed[i] {
				t.Fatalf("[spec %d] expected to destroy %v; got %v", index, s.expDestroyed, destroyed)
			}
		}

		// A second release is a no-op.
		img.release(
			func(vk.ImageView) { t.Fatalf("[spec %d] view destroyed twice", index) },
			func(vk.Image) { t.Fatalf("[spec %d] image destroyed twice", index) },
			func(vk.DeviceMemory) { t.Fatalf("[spec %d] memory freed twice", index) },
		)
	}
}
