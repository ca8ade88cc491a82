package resources

import (
	"github.com/spaghettifunk/lumen/engine/math"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
)

type ResourceType int

/** @brief Pre-defined resource types. */
const (
	/** @brief Unknown files are ignored by the asset manager. */
	ResourceTypeNone ResourceType = iota
	/** @brief Text resource type. */
	ResourceTypeText
	/** @brief Binary resource type. */
	ResourceTypeBinary
	/** @brief Image resource type. */
	ResourceTypeImage
	/** @brief Shader source. */
	ResourceTypeShader
	/** @brief Bitmap font resource type. */
	ResourceTypeBitmapFont
	/** @brief Material description (.amt). */
	ResourceTypeMaterial
)

var resourceTypeNames = [...]string{"none", "text", "binary", "image", "shader", "bitmap_font", "material"}

func (t ResourceType) String() string {
	if t < 0 || int(t) >= len(resourceTypeNames) {
		return "unknown"
	}
	return resourceTypeNames[t]
}

/**
 * @brief A generic structure for a resource. All resource loaders
 * load data into these.
 */
type Resource struct {
	/** @brief The name of the resource. */
	Name string
	/** @brief The type the loader produced. */
	Type ResourceType
	/** @brief The full file path of the resource. */
	FullPath string
	/** @brief The size of the resource data in bytes. */
	DataSize uint64
	/** @brief The resource data. */
	Data interface{}
}

/**
 * @brief A structure to hold image resource data.
 */
type ImageResourceData struct {
	/** @brief The number of channels. */
	ChannelCount uint8
	/** @brief The width of the image. */
	Width uint32
	/** @brief The height of the image. */
	Height uint32
	/** @brief RGBA texels in [0, 1], row by row from the top. */
	Pixels []float32
}

/** @brief Parameters used when loading an image. */
type ImageResourceParams struct {
	/** @brief Indicates if the image should be flipped on the y-axis when loaded. */
	FlipY bool
}

type ShaderResourceData struct {
	Source []byte
}

type BitmapFontPage struct {
	ID   int8
	File string
}

type BitmapFontResourceData struct {
	Data  *FontData
	Pages []*BitmapFontPage
}

/**
 * @brief Material description as read from an .amt file. Texture maps are
 * asset names resolved by the caller.
 */
type MaterialConfig struct {
	Name        string
	AlbedoColor math.Vec4
	Roughness   float32
	Metallic    float32
	CullMode    metadata.FaceCullMode
	Maps        map[metadata.TextureType]string
}
