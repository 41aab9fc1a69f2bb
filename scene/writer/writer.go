package writer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ktnlvr/wreckage-deprecated/log"
	"github.com/ktnlvr/wreckage-deprecated/scene"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

var logger = log.New("scene writer")

// The Writer interface is implemented by all scene writers.
type Writer interface {
	// Write scene definition
	Write(io.Writer, *scene.Document) error
}

// Select a writer based on the file extension of the given path.
func ForPath(sceneFile string) (Writer, error) {
	ext := strings.ToLower(filepath.Ext(sceneFile))
	switch ext {
	case ".yaml", ".yml":
		return yamlWriter{}, nil
	case ".toml":
		return tomlWriter{}, nil
	}
	return nil, fmt.Errorf("scene writer: unsupported file format %q", ext)
}

// Write scene document to a file. The format is selected by the file extension.
func WriteScene(doc *scene.Document, sceneFile string) error {
	w, err := ForPath(sceneFile)
	if err != nil {
		return err
	}

	f, err := os.Create(sceneFile)
	if err != nil {
		return err
	}
	defer f.Close()

	if err = w.Write(f, doc); err != nil {
		return fmt.Errorf("scene writer: could not write %q: %w", sceneFile, err)
	}
	logger.Noticef("wrote %d sphere(s) to %s", len(doc.Spheres), sceneFile)
	return nil
}

type yamlWriter struct{}

func (yamlWriter) Write(w io.Writer, doc *scene.Document) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}

type tomlWriter struct{}

func (tomlWriter) Write(w io.Writer, doc *scene.Document) error {
	return toml.NewEncoder(w).Encode(doc)
}
