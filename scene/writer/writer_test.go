package writer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ktnlvr/wreckage-deprecated/scene"
	"github.com/ktnlvr/wreckage-deprecated/scene/reader"
	"github.com/ktnlvr/wreckage-deprecated/types"
)

func TestWriteAndReadBack(t *testing.T) {
	dir := t.TempDir()

	cam := scene.NewCamera(types.XYZ(0, 1, 2))
	cam.Yaw = 0.5
	doc := scene.NewDocument(scene.Default(), cam)

	for _, name := range []string{"scene.yaml", "scene.toml"} {
		sceneFile := filepath.Join(dir, name)
		if err := WriteScene(doc, sceneFile); err != nil {
			t.Fatalf("[%s] unexpected write error: %v", name, err)
		}

		sc, readCam, err := reader.ReadScene(sceneFile)
		if err != nil {
			t.Fatalf("[%s] unexpected read error: %v", name, err)
		}

		if sc.Len() != scene.Default().Len() {
			t.Fatalf("[%s] expected %d spheres; got %d", name, scene.Default().Len(), sc.Len())
		}
		for index, exp := range scene.Default().Spheres() {
			if got := sc.Spheres()[index]; got != exp {
				t.Fatalf("[%s] expected sphere %d to be %v; got %v", name, index, exp, got)
			}
		}
		if readCam.Position != cam.Position {
			t.Fatalf("[%s] expected camera position %v; got %v", name, cam.Position, readCam.Position)
		}
		if d := readCam.Yaw - cam.Yaw; d > 1e-5 || d < -1e-5 {
			t.Fatalf("[%s] expected camera yaw %f; got %f", name, cam.Yaw, readCam.Yaw)
		}
	}
}

func TestUnsupportedFormat(t *testing.T) {
	sceneFile := filepath.Join(t.TempDir(), "scene.obj")
	expError := `scene writer: unsupported file format ".obj"`
	err := WriteScene(scene.NewDocument(scene.Default(), nil), sceneFile)
	if err == nil || err.Error() != expError {
		t.Fatalf("expected error %q; got %v", expError, err)
	}
	if _, statErr := os.Stat(sceneFile); !os.IsNotExist(statErr) {
		t.Fatal("expected no file to be created for an unsupported format")
	}
}
