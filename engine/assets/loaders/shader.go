package loaders

import (
	"errors"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/spaghettifunk/lumen/engine/resources"
)

/**
 * @brief Reads HLSL source. Files missing on disk are looked up in
 * Fallback under "shaders/<file name>".
 */
type ShaderLoader struct {
	Fallback fs.FS
}

func (sl *ShaderLoader) Load(filePath string, assetType resources.ResourceType, params interface{}) (*resources.Resource, error) {
	data, err := os.ReadFile(filePath)
	if errors.Is(err, fs.ErrNotExist) && sl.Fallback != nil {
		data, err = fs.ReadFile(sl.Fallback, path.Join("shaders", filepath.Base(filePath)))
	}
	if err != nil {
		return nil, err
	}
	return &resources.Resource{
		Name:     shaderName(filePath),
		Type:     resources.ResourceTypeShader,
		FullPath: filePath,
		DataSize: uint64(len(data)),
		Data:     &resources.ShaderResourceData{Source: data},
	}, nil
}

func (sl *ShaderLoader) Unload(resource *resources.Resource) error {
	resource.Data = nil
	resource.DataSize = 0
	return nil
}

func shaderName(filePath string) string {
	base := filepath.Base(filePath)
	return base[:len(base)-len(filepath.Ext(base))]
}
