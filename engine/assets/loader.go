package assets

import "github.com/spaghettifunk/lumen/engine/resources"

// Loader reads one kind of asset from disk.
type Loader interface {
	Load(path string, assetType resources.ResourceType, params interface{}) (*resources.Resource, error)
	Unload(*resources.Resource) error
}
