package reader

import (
	"github.com/ktnlvr/wreckage-deprecated/asset"
	"github.com/ktnlvr/wreckage-deprecated/scene"
	"github.com/pelletier/go-toml/v2"
)

type tomlReader struct{}

// Read a TOML scene document. Unknown fields are rejected.
func (r *tomlReader) Read(res *asset.Resource) (*scene.Document, error) {
	dec := toml.NewDecoder(res)
	dec.DisallowUnknownFields()

	doc := &scene.Document{}
	if err := dec.Decode(doc); err != nil {
		return nil, err
	}
	return doc, nil
}
