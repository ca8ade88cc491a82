package loaders

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fzipp/bmfont"
	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/resources"
)

/**
 * @brief Imports AngelCode .fnt descriptors. When the font has a single
 * page the atlas image is decoded next to it and stored in the font data.
 */
type BitmapFontLoader struct {
	Images *TextureLoader
}

type BitmapFontFileType int

const (
	BITMAP_FONT_FILE_TYPE_NOT_FOUND BitmapFontFileType = iota
	BITMAP_FONT_FILE_TYPE_FNT
)

type SupportedBitmapFontFileType struct {
	Extension  string
	BitmapType BitmapFontFileType
	IsBinary   bool
}

var supportedBitmapFontFileTypes = []SupportedBitmapFontFileType{
	{Extension: ".fnt", BitmapType: BITMAP_FONT_FILE_TYPE_FNT},
}

func (fl *BitmapFontLoader) Load(path string, assetType resources.ResourceType, params interface{}) (*resources.Resource, error) {
	bitmapType := BITMAP_FONT_FILE_TYPE_NOT_FOUND
	for _, ft := range supportedBitmapFontFileTypes {
		if filepath.Ext(path) == ft.Extension {
			bitmapType = ft.BitmapType
			break
		}
	}
	if bitmapType == BITMAP_FONT_FILE_TYPE_NOT_FOUND {
		return nil, fmt.Errorf("unable to find bitmap font of supported type called '%s'", path)
	}
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}

	rd, err := fl.importFNTFile(path)
	if err != nil {
		return nil, err
	}
	if len(rd.Pages) == 1 {
		fl.loadAtlas(filepath.Join(filepath.Dir(path), rd.Pages[0].File), rd.Data)
	}

	return &resources.Resource{
		Name:     rd.Data.Face,
		Type:     resources.ResourceTypeBitmapFont,
		FullPath: path,
		DataSize: uint64(len(rd.Data.Glyphs)),
		Data:     rd,
	}, nil
}

func (fl *BitmapFontLoader) Unload(resource *resources.Resource) error {
	if resource.Data != nil {
		data := resource.Data.(*resources.BitmapFontResourceData)
		data.Data.Glyphs = nil
		data.Data.Kernings = nil
		data.Data.AtlasPixels = nil
		data.Pages = nil
		resource.Data = nil
		resource.DataSize = 0
		resource.FullPath = ""
	}
	return nil
}

func (fl *BitmapFontLoader) importFNTFile(fntFileName string) (*resources.BitmapFontResourceData, error) {
	font, err := bmfont.Load(fntFileName)
	if err != nil {
		return nil, err
	}

	outData := &resources.BitmapFontResourceData{
		Data: &resources.FontData{
			FontType:   resources.FONT_TYPE_BITMAP,
			Face:       font.Descriptor.Info.Face,
			Size:       uint32(font.Descriptor.Info.Size),
			LineHeight: int32(font.Descriptor.Common.LineHeight),
			Baseline:   int32(font.Descriptor.Common.Base),
			AtlasSizeX: int32(font.Descriptor.Common.ScaleW),
			AtlasSizeY: int32(font.Descriptor.Common.ScaleH),
			Glyphs:     make([]*resources.FontGlyph, 0, len(font.Descriptor.Chars)),
			Kernings:   make([]*resources.FontKerning, 0, len(font.Descriptor.Kerning)),
		},
		Pages: make([]*resources.BitmapFontPage, 0, len(font.Descriptor.Pages)),
	}

	for _, p := range font.Descriptor.Pages {
		outData.Pages = append(outData.Pages, &resources.BitmapFontPage{
			ID:   int8(p.ID),
			File: p.File,
		})
	}

	for _, g := range font.Descriptor.Chars {
		outData.Data.Glyphs = append(outData.Data.Glyphs, &resources.FontGlyph{
			Codepoint: g.ID,
			X:         uint16(g.X),
			Y:         uint16(g.Y),
			Width:     uint16(g.Width),
			Height:    uint16(g.Height),
			XOffset:   int16(g.XOffset),
			YOffset:   int16(g.YOffset),
			XAdvance:  int16(g.XAdvance),
			PageID:    uint8(g.Page),
		})
	}

	for p, k := range font.Descriptor.Kerning {
		outData.Data.Kernings = append(outData.Data.Kernings, &resources.FontKerning{
			Codepoint0: p.First,
			Codepoint1: p.Second,
			Amount:     int16(k.Amount),
		})
	}

	return outData, nil
}

// loadAtlas leaves AtlasPixels empty when the page image cannot be read.
func (fl *BitmapFontLoader) loadAtlas(pagePath string, data *resources.FontData) {
	images := fl.Images
	if images == nil {
		images = &TextureLoader{}
	}
	res, err := images.Load(pagePath, resources.ResourceTypeImage, nil)
	if err != nil {
		core.LogWarn("bitmap font %s: atlas page not loaded: %s", data.Face, err.Error())
		return
	}
	img := res.Data.(*resources.ImageResourceData)
	data.AtlasSizeX = int32(img.Width)
	data.AtlasSizeY = int32(img.Height)
	data.AtlasPixels = img.Pixels
}
