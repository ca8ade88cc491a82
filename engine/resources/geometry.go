package resources

import (
	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/math"
)

const DefaultGeometryName string = "default"

/** @brief Vertices and indices ready to be uploaded as a Model. */
type GeometryConfig struct {
	Name     string
	Vertices []math.Vertex3D
	Indices  []uint32
	Extents  math.Extents3D
	Center   math.Vec3
}

/**
 * @brief Generates a plane lying on XZ and facing +Y, split into
 * segments. Uvs repeat tileX and tileY times across it.
 */
func GeneratePlaneConfig(width, depth float32, xSegmentCount, zSegmentCount uint32, tileX, tileY float32, name string) *GeometryConfig {
	if width == 0 {
		core.LogWarn("Width must be nonzero. Defaulting to one.")
		width = 1.0
	}
	if depth == 0 {
		core.LogWarn("Depth must be nonzero. Defaulting to one.")
		depth = 1.0
	}
	if xSegmentCount < 1 {
		core.LogWarn("xSegmentCount must be a positive number. Defaulting to one.")
		xSegmentCount = 1
	}
	if zSegmentCount < 1 {
		core.LogWarn("zSegmentCount must be a positive number. Defaulting to one.")
		zSegmentCount = 1
	}
	if tileX == 0 {
		tileX = 1.0
	}
	if tileY == 0 {
		tileY = 1.0
	}

	config := &GeometryConfig{
		Name:     name,
		Vertices: make([]math.Vertex3D, xSegmentCount*zSegmentCount*4),
		Indices:  make([]uint32, xSegmentCount*zSegmentCount*6),
	}
	if len(config.Name) == 0 {
		config.Name = DefaultGeometryName
	}

	segWidth := width / float32(xSegmentCount)
	segDepth := depth / float32(zSegmentCount)
	halfWidth := width * 0.5
	halfDepth := depth * 0.5
	up := math.NewVec3Up()
	white := math.NewVec4One()
	for z := uint32(0); z < zSegmentCount; z++ {
		for x := uint32(0); x < xSegmentCount; x++ {
			minX := (float32(x) * segWidth) - halfWidth
			minZ := halfDepth - (float32(z) * segDepth)
			maxX := minX + segWidth
			maxZ := minZ - segDepth
			minU := (float32(x) / float32(xSegmentCount)) * tileX
			minV := (float32(z) / float32(zSegmentCount)) * tileY
			maxU := (float32(x+1) / float32(xSegmentCount)) * tileX
			maxV := (float32(z+1) / float32(zSegmentCount)) * tileY

			vOffset := ((z * xSegmentCount) + x) * 4
			config.Vertices[vOffset+0] = math.Vertex3D{Position: math.NewVec3(minX, 0, minZ), Normal: up, Texcoord: math.NewVec2(minU, minV), Colour: white}
			config.Vertices[vOffset+1] = math.Vertex3D{Position: math.NewVec3(maxX, 0, maxZ), Normal: up, Texcoord: math.NewVec2(maxU, maxV), Colour: white}
			config.Vertices[vOffset+2] = math.Vertex3D{Position: math.NewVec3(minX, 0, maxZ), Normal: up, Texcoord: math.NewVec2(minU, maxV), Colour: white}
			config.Vertices[vOffset+3] = math.Vertex3D{Position: math.NewVec3(maxX, 0, minZ), Normal: up, Texcoord: math.NewVec2(maxU, minV), Colour: white}

			iOffset := ((z * xSegmentCount) + x) * 6
			config.Indices[iOffset+0] = vOffset + 0
			config.Indices[iOffset+1] = vOffset + 1
			config.Indices[iOffset+2] = vOffset + 2
			config.Indices[iOffset+3] = vOffset + 0
			config.Indices[iOffset+4] = vOffset + 3
			config.Indices[iOffset+5] = vOffset + 1
		}
	}

	config.Extents = math.Extents3D{
		Min: math.NewVec3(-halfWidth, 0, -halfDepth),
		Max: math.NewVec3(halfWidth, 0, halfDepth),
	}
	config.Vertices = math.GeometryGenerateTangents(config.Vertices, config.Indices)
	return config
}

// GenerateCubeConfig builds a box centered on the origin, four vertices per face.
func GenerateCubeConfig(width, height, depth, tileX, tileY float32, name string) *GeometryConfig {
	if width == 0 {
		core.LogWarn("Width must be nonzero. Defaulting to one.")
		width = 1.0
	}
	if height == 0 {
		core.LogWarn("Height must be nonzero. Defaulting to one.")
		height = 1.0
	}
	if depth == 0 {
		core.LogWarn("Depth must be nonzero. Defaulting to one.")
		depth = 1
	}
	if tileX == 0 {
		tileX = 1.0
	}
	if tileY == 0 {
		tileY = 1.0
	}

	minX, maxX := -width*0.5, width*0.5
	minY, maxY := -height*0.5, height*0.5
	minZ, maxZ := -depth*0.5, depth*0.5

	type face struct {
		corners [4]math.Vec3
		normal  math.Vec3
	}
	faces := [6]face{
		// front
		{[4]math.Vec3{{X: minX, Y: minY, Z: maxZ}, {X: maxX, Y: maxY, Z: maxZ}, {X: minX, Y: maxY, Z: maxZ}, {X: maxX, Y: minY, Z: maxZ}}, math.NewVec3(0, 0, 1)},
		// back
		{[4]math.Vec3{{X: maxX, Y: minY, Z: minZ}, {X: minX, Y: maxY, Z: minZ}, {X: maxX, Y: maxY, Z: minZ}, {X: minX, Y: minY, Z: minZ}}, math.NewVec3(0, 0, -1)},
		// left
		{[4]math.Vec3{{X: minX, Y: minY, Z: minZ}, {X: minX, Y: maxY, Z: maxZ}, {X: minX, Y: maxY, Z: minZ}, {X: minX, Y: minY, Z: maxZ}}, math.NewVec3(-1, 0, 0)},
		// right
		{[4]math.Vec3{{X: maxX, Y: minY, Z: maxZ}, {X: maxX, Y: maxY, Z: minZ}, {X: maxX, Y: maxY, Z: maxZ}, {X: maxX, Y: minY, Z: minZ}}, math.NewVec3(1, 0, 0)},
		// bottom
		{[4]math.Vec3{{X: maxX, Y: minY, Z: maxZ}, {X: minX, Y: minY, Z: minZ}, {X: maxX, Y: minY, Z: minZ}, {X: minX, Y: minY, Z: maxZ}}, math.NewVec3(0, -1, 0)},
		// top
		{[4]math.Vec3{{X: minX, Y: maxY, Z: maxZ}, {X: maxX, Y: maxY, Z: minZ}, {X: minX, Y: maxY, Z: minZ}, {X: maxX, Y: maxY, Z: maxZ}}, math.NewVec3(0, 1, 0)},
	}
	uvs := [4]math.Vec2{{X: 0, Y: 0}, {X: tileX, Y: tileY}, {X: 0, Y: tileY}, {X: tileX, Y: 0}}

	config := &GeometryConfig{
		Name:     name,
		Vertices: make([]math.Vertex3D, 0, 24),
		Indices:  make([]uint32, 0, 36),
		Extents: math.Extents3D{
			Min: math.NewVec3(minX, minY, minZ),
			Max: math.NewVec3(maxX, maxY, maxZ),
		},
	}
	if len(config.Name) == 0 {
		config.Name = DefaultGeometryName
	}
	for i, f := range faces {
		for c := 0; c < 4; c++ {
			config.Vertices = append(config.Vertices, math.Vertex3D{
				Position: f.corners[c],
				Normal:   f.normal,
				Texcoord: uvs[c],
				Colour:   math.NewVec4One(),
			})
		}
		v := uint32(i * 4)
		config.Indices = append(config.Indices, v+0, v+1, v+2, v+0, v+3, v+1)
	}
	config.Vertices = math.GeometryGenerateTangents(config.Vertices, config.Indices)
	return config
}
