package reader

import (
	"fmt"
	"time"

	"github.com/ktnlvr/wreckage-deprecated/asset"
	"github.com/ktnlvr/wreckage-deprecated/log"
	"github.com/ktnlvr/wreckage-deprecated/scene"
)

var logger = log.New("scene reader")

// The Reader interface is implemented by all scene readers.
type Reader interface {
	// Read scene definition from a resource.
	Read(*asset.Resource) (*scene.Document, error)
}

// Select a reader based on the file extension of the given path.
func ForPath(pathToScene string) (Reader, error) {
	ext := asset.Ext(pathToScene)
	switch ext {
	case ".yaml", ".yml":
		return &yamlReader{}, nil
	case ".toml":
		return &tomlReader{}, nil
	}
	return nil, fmt.Errorf("scene reader: unsupported file format %q", ext)
}

// Read a scene document from a local file or an http(s) URL.
func ReadDocument(pathToScene string) (*scene.Document, error) {
	reader, err := ForPath(pathToScene)
	if err != nil {
		return nil, err
	}

	res, err := asset.NewResource(pathToScene, nil)
	if err != nil {
		return nil, err
	}
	defer res.Close()

	start := time.Now()
	doc, err := reader.Read(res)
	if err != nil {
		return nil, fmt.Errorf("scene reader: could not parse %q: %w", res.Path(), err)
	}
	logger.Infof("parsed %d sphere(s) from %q in %d ms", len(doc.Spheres), res.Path(), time.Since(start).Nanoseconds()/1e6)

	return doc, nil
}

// Read a scene and its initial camera from a local file or an http(s) URL.
func ReadScene(pathToScene string) (*scene.Scene, *scene.Camera, error) {
	doc, err := ReadDocument(pathToScene)
	if err != nil {
		return nil, nil, err
	}
	return doc.Build()
}
