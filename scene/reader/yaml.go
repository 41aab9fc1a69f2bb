package reader

import (
	"github.com/ktnlvr/wreckage-deprecated/asset"
	"github.com/ktnlvr/wreckage-deprecated/scene"
	"gopkg.in/yaml.v3"
)

type yamlReader struct{}

// Read a YAML scene document. Unknown fields are rejected.
func (r *yamlReader) Read(res *asset.Resource) (*scene.Document, error) {
	dec := yaml.NewDecoder(res)
	dec.KnownFields(true)

	doc := &scene.Document{}
	if err := dec.Decode(doc); err != nil {
		return nil, err
	}
	return doc, nil
}
