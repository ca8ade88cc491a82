package loaders

import (
	"os"
	"path/filepath"

	"github.com/spaghettifunk/lumen/engine/resources"
)

// BinaryLoader returns raw bytes, or a string for text resources.
type BinaryLoader struct{}

func (bl *BinaryLoader) Load(path string, assetType resources.ResourceType, params interface{}) (*resources.Resource, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	name := filepath.Base(path)
	if p, ok := params.(map[string]string); ok && p["name"] != "" {
		name = p["name"]
	}

	res := &resources.Resource{
		Name:     name,
		Type:     assetType,
		FullPath: path,
		DataSize: uint64(len(buf)),
		Data:     buf,
	}
	if assetType == resources.ResourceTypeText {
		res.Data = string(buf)
	}
	return res, nil
}

func (bl *BinaryLoader) Unload(resource *resources.Resource) error {
	resource.Data = nil
	resource.DataSize = 0
	return nil
}
