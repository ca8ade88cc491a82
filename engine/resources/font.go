package resources

import (
	"image"

	"github.com/spaghettifunk/lumen/engine/math"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

type FontGlyph struct {
	Codepoint int32
	X         uint16
	Y         uint16
	Width     uint16
	Height    uint16
	XOffset   int16
	YOffset   int16
	XAdvance  int16
	PageID    uint8
}

type FontKerning struct {
	Codepoint0 int32
	Codepoint1 int32
	Amount     int16
}

type FontType int

const (
	FONT_TYPE_BITMAP FontType = iota
	FONT_TYPE_SYSTEM
)

/**
 * @brief Glyph metrics of a font and, for fonts rasterized in memory,
 * the RGBA atlas itself.
 */
type FontData struct {
	FontType    FontType
	Face        string
	Size        uint32
	LineHeight  int32
	Baseline    int32
	AtlasSizeX  int32
	AtlasSizeY  int32
	Glyphs      []*FontGlyph
	Kernings    []*FontKerning
	TabXAdvance float32
	/** @brief Four floats per texel. Empty when the atlas lives in a page file. */
	AtlasPixels []float32

	glyphIndex   map[int32]*FontGlyph
	kerningIndex map[[2]int32]int16
}

func (f *FontData) buildIndex() {
	if f.glyphIndex != nil {
		return
	}
	f.glyphIndex = make(map[int32]*FontGlyph, len(f.Glyphs))
	for _, g := range f.Glyphs {
		if g != nil {
			f.glyphIndex[g.Codepoint] = g
		}
	}
	f.kerningIndex = make(map[[2]int32]int16, len(f.Kernings))
	for _, k := range f.Kernings {
		if k != nil {
			f.kerningIndex[[2]int32{k.Codepoint0, k.Codepoint1}] = k.Amount
		}
	}
	if f.TabXAdvance == 0 {
		if space := f.glyphIndex[' ']; space != nil {
			f.TabXAdvance = float32(space.XAdvance) * 4
		}
	}
}

// Glyph returns nil for codepoints the font does not have.
func (f *FontData) Glyph(codepoint rune) *FontGlyph {
	f.buildIndex()
	return f.glyphIndex[codepoint]
}

func (f *FontData) Kerning(first, second rune) int16 {
	f.buildIndex()
	return f.kerningIndex[[2]int32{first, second}]
}

/**
 * @brief Lays out text as pixel-space quads starting at origin (top left).
 * Unknown codepoints fall back to '?'.
 */
func (f *FontData) Layout(text string, origin math.Vec2, scale float32) ([]math.VertexPositionTexcoord, []uint32) {
	f.buildIndex()
	if scale <= 0 {
		scale = 1
	}
	vertices := make([]math.VertexPositionTexcoord, 0, len(text)*4)
	indices := make([]uint32, 0, len(text)*6)
	atlasX := float32(max(f.AtlasSizeX, 1))
	atlasY := float32(max(f.AtlasSizeY, 1))

	x, y := origin.X, origin.Y
	var previous rune = -1
	for _, r := range text {
		switch r {
		case '\n':
			x = origin.X
			y += float32(f.LineHeight) * scale
			previous = -1
			continue
		case '\t':
			x += f.TabXAdvance * scale
			previous = -1
			continue
		}
		g := f.Glyph(r)
		if g == nil {
			g = f.Glyph('?')
		}
		if g == nil {
			continue
		}
		if previous >= 0 {
			x += float32(f.Kerning(previous, r)) * scale
		}

		x0 := x + float32(g.XOffset)*scale
		y0 := y + float32(g.YOffset)*scale
		x1 := x0 + float32(g.Width)*scale
		y1 := y0 + float32(g.Height)*scale
		u0 := float32(g.X) / atlasX
		v0 := float32(g.Y) / atlasY
		u1 := float32(uint32(g.X)+uint32(g.Width)) / atlasX
		v1 := float32(uint32(g.Y)+uint32(g.Height)) / atlasY

		base := uint32(len(vertices))
		vertices = append(vertices,
			math.VertexPositionTexcoord{Position: math.NewVec3(x0, y0, 0), Texcoord: math.NewVec2(u0, v0)},
			math.VertexPositionTexcoord{Position: math.NewVec3(x1, y1, 0), Texcoord: math.NewVec2(u1, v1)},
			math.VertexPositionTexcoord{Position: math.NewVec3(x0, y1, 0), Texcoord: math.NewVec2(u0, v1)},
			math.VertexPositionTexcoord{Position: math.NewVec3(x1, y0, 0), Texcoord: math.NewVec2(u1, v0)},
		)
		indices = append(indices, base+0, base+1, base+2, base+0, base+3, base+1)

		x += float32(g.XAdvance) * scale
		previous = r
	}
	return vertices, indices
}

// Measure returns the pixel size of the laid out text.
func (f *FontData) Measure(text string) math.Vec2 {
	vertices, _ := f.Layout(text, math.Vec2{}, 1)
	var size math.Vec2
	for _, v := range vertices {
		size.X = max(size.X, v.Position.X)
		size.Y = max(size.Y, v.Position.Y)
	}
	return size
}

const (
	builtinFirstCodepoint = 32
	builtinLastCodepoint  = 126
	builtinColumns        = 16
)

/**
 * @brief Rasterizes the 7x13 fixed font of x/image into an in-memory
 * atlas covering printable ASCII. Used when no bitmap font is configured.
 */
func NewBuiltinFont() *FontData {
	face := basicfont.Face7x13
	cellW := face.Advance
	cellH := face.Height
	count := builtinLastCodepoint - builtinFirstCodepoint + 1
	rows := (count + builtinColumns - 1) / builtinColumns

	atlas := image.NewRGBA(image.Rect(0, 0, builtinColumns*cellW, rows*cellH))
	drawer := font.Drawer{Dst: atlas, Src: image.White, Face: face}

	data := &FontData{
		FontType:   FONT_TYPE_BITMAP,
		Face:       "basic7x13",
		Size:       uint32(cellH),
		LineHeight: int32(cellH),
		Baseline:   int32(face.Ascent),
		AtlasSizeX: int32(atlas.Bounds().Dx()),
		AtlasSizeY: int32(atlas.Bounds().Dy()),
		Glyphs:     make([]*FontGlyph, 0, count),
	}
	for i := 0; i < count; i++ {
		r := rune(builtinFirstCodepoint + i)
		col := i % builtinColumns
		row := i / builtinColumns
		drawer.Dot = fixed.P(col*cellW, row*cellH+face.Ascent)
		drawer.DrawString(string(r))
		data.Glyphs = append(data.Glyphs, &FontGlyph{
			Codepoint: r,
			X:         uint16(col * cellW),
			Y:         uint16(row * cellH),
			Width:     uint16(cellW),
			Height:    uint16(cellH),
			XAdvance:  int16(cellW),
		})
	}

	bounds := atlas.Bounds()
	data.AtlasPixels = make([]float32, 0, bounds.Dx()*bounds.Dy()*4)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			a := float32(atlas.RGBAAt(x, y).A) / 255
			data.AtlasPixels = append(data.AtlasPixels, 1, 1, 1, a)
		}
	}
	return data
}
