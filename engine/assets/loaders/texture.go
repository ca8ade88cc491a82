package loaders

import (
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"github.com/spaghettifunk/lumen/engine/resources"
)

// TextureLoader decodes PNG, JPEG, BMP and TIFF files into RGBA floats.
type TextureLoader struct{}

func (tl *TextureLoader) Load(path string, assetType resources.ResourceType, params interface{}) (*resources.Resource, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, err
	}

	img, format, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}

	flip := false
	if p, ok := params.(*resources.ImageResourceParams); ok && p != nil {
		flip = p.FlipY
	}

	return &resources.Resource{
		Name:     format,
		Type:     resources.ResourceTypeImage,
		FullPath: path,
		DataSize: uint64(info.Size()),
		Data:     ImageData(img, flip),
	}, nil
}

func (tl *TextureLoader) Unload(resource *resources.Resource) error {
	resource.Data = nil
	resource.DataSize = 0
	return nil
}

/**
 * @brief Converts any decoded image into straight (non premultiplied)
 * RGBA floats, top row first unless flip is set.
 */
func ImageData(img image.Image, flip bool) *resources.ImageResourceData {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	out := &resources.ImageResourceData{
		ChannelCount: channelCount(img),
		Width:        uint32(w),
		Height:       uint32(h),
		Pixels:       make([]float32, 0, w*h*4),
	}
	for row := 0; row < h; row++ {
		y := b.Min.Y + row
		if flip {
			y = b.Max.Y - 1 - row
		}
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBA64Model.Convert(img.At(x, y)).(color.NRGBA64)
			out.Pixels = append(out.Pixels,
				float32(c.R)/0xffff,
				float32(c.G)/0xffff,
				float32(c.B)/0xffff,
				float32(c.A)/0xffff)
		}
	}
	return out
}

func channelCount(img image.Image) uint8 {
	switch img.ColorModel() {
	case color.GrayModel, color.Gray16Model:
		return 1
	case color.RGBAModel, color.RGBA64Model, color.NRGBAModel, color.NRGBA64Model:
		return 4
	}
	return 3
}
