package gpu

import "testing"

func TestKernelGroupCount(t *testing.T) {
	type spec struct {
		w, h       uint32
		expX, expY uint32
	}

	k := Kernel{Name: "test", EntryPoint: "main", WorkgroupSize: [3]uint32{8, 8, 1}}
	specs := []spec{
		{800, 600, 100, 75},
		{801, 600, 101, 75},
		{1, 1, 1, 1},
		{7, 9, 1, 2},
	}

	for index, s := range specs {
		x, y, z := k.GroupCount(s.w, s.h)
		if x != s.expX || y != s.expY || z != 1 {
			t.Fatalf("[spec %d] expected groups (%d, %d, 1); got (%d, %d, %d)", index, s.expX, s.expY, x, y, z)
		}
	}
}

func TestKernelValidation(t *testing.T) {
	type spec struct {
		kernel Kernel
		expErr bool
	}

	specs := []spec{
		{Kernel{Name: "ok", EntryPoint: "main", WorkgroupSize: [3]uint32{8, 8, 1}}, false},
		{Kernel{Name: "no-entry", WorkgroupSize: [3]uint32{8, 8, 1}}, true},
		{Kernel{Name: "empty-group", EntryPoint: "main", WorkgroupSize: [3]uint32{8, 0, 1}}, true},
	}

	for index, s := range specs {
		err := s.kernel.Validate()
		if s.expErr && err == nil {
			t.Fatalf("[spec %d] expected a validation error", index)
		}
		if !s.expErr && err != nil {
			t.Fatalf("[spec %d] unexpected error: %v", index, err)
		}
	}
}

func TestFormatNames(t *testing.T) {
	if FormatRGBA8Unorm.String() != "RGBA8_UNORM" {
		t.Fatalf("expected RGBA8_UNORM; got %s", FormatRGBA8Unorm)
	}
	if Format(99).String() != "UNDEFINED" {
		t.Fatalf("expected unknown formats to be reported as UNDEFINED; got %s", Format(99))
	}
}

func TestCoversPushConstants(t *testing.T) {
	type spec struct {
		stages       ShaderStage
		offset, size uint32
		exp          bool
	}

	ranges := []PushConstantRange{{Stages: ShaderStageCompute, Offset: 0, Size: 80}}
	specs := []spec{
		{ShaderStageCompute, 0, 80, true},
		{ShaderStageCompute, 16, 64, true},
		{ShaderStageCompute, 16, 65, false},
		{ShaderStageCompute, 80, 1, false},
		{ShaderStageCompute | ShaderStage(2), 0, 4, false},
	}

	for index, s := range specs {
		if got := CoversPushConstants(ranges, s.stages, s.offset, s.size); got != s.exp {
			t.Fatalf("[spec %d] expected %t; got %t", index, s.exp, got)
		}
	}
}
