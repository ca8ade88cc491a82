package loaders

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/math"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
	"github.com/spaghettifunk/lumen/engine/resources"
)

// MaterialLoader parses key = value material files (.amt).
type MaterialLoader struct{}

func (ml *MaterialLoader) Load(path string, assetType resources.ResourceType, params interface{}) (*resources.Resource, error) {
	mCfg, err := parseAMTFile(path)
	if err != nil {
		return nil, err
	}
	return &resources.Resource{
		Name:     mCfg.Name,
		Type:     resources.ResourceTypeMaterial,
		FullPath: path,
		DataSize: 1,
		Data:     mCfg,
	}, nil
}

func (ml *MaterialLoader) Unload(resource *resources.Resource) error {
	resource.Data = nil
	resource.DataSize = 0
	return nil
}

var materialMapKeys = map[string]metadata.TextureType{
	"albedo_map":    metadata.TEXTURE_TYPE_ALBEDO,
	"roughness_map": metadata.TEXTURE_TYPE_ROUGHNESS,
	"metallic_map":  metadata.TEXTURE_TYPE_METALLIC,
	"normal_map":    metadata.TEXTURE_TYPE_NORMAL,
	"height_map":    metadata.TEXTURE_TYPE_HEIGHT,
	"occlusion_map": metadata.TEXTURE_TYPE_OCCLUSION,
	"emission_map":  metadata.TEXTURE_TYPE_EMISSION,
	"mask_map":      metadata.TEXTURE_TYPE_MASK,
}

func parseAMTFile(filename string) (*resources.MaterialConfig, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	materialConfig := &resources.MaterialConfig{
		AlbedoColor: math.NewVec4One(),
		Roughness:   1,
		CullMode:    metadata.FaceCullModeBack,
		Maps:        make(map[metadata.TextureType]string),
	}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip comments and empty lines
		if strings.HasPrefix(line, "#") || line == "" {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			core.LogWarn("skipping invalid line: %s", line)
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		if textureType, isMap := materialMapKeys[key]; isMap {
			materialConfig.Maps[textureType] = value
			continue
		}

		switch key {
		case "name":
			materialConfig.Name = value
		case "albedo_colour":
			c, err := parseVec4(value)
			if err != nil {
				return nil, fmt.Errorf("invalid albedo_colour %q: %w", value, err)
			}
			materialConfig.AlbedoColor = c
		case "roughness":
			f, err := strconv.ParseFloat(value, 32)
			if err != nil {
				return nil, fmt.Errorf("invalid roughness value: %s", value)
			}
			materialConfig.Roughness = float32(f)
		case "metallic":
			f, err := strconv.ParseFloat(value, 32)
			if err != nil {
				return nil, fmt.Errorf("invalid metallic value: %s", value)
			}
			materialConfig.Metallic = float32(f)
		case "cull_mode":
			switch value {
			case "none":
				materialConfig.CullMode = metadata.FaceCullModeNone
			case "front":
				materialConfig.CullMode = metadata.FaceCullModeFront
			case "back":
				materialConfig.CullMode = metadata.FaceCullModeBack
			default:
				return nil, fmt.Errorf("invalid cull_mode value: %s", value)
			}
		default:
			core.LogError("Unknown key '%s' found in file. Skipping...", key)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if err := validateMaterial(materialConfig); err != nil {
		return nil, err
	}
	return materialConfig, nil
}

func parseVec4(value string) (math.Vec4, error) {
	fields := strings.Fields(value)
	if len(fields) != 4 {
		return math.Vec4{}, fmt.Errorf("expected 4 values, got %d", len(fields))
	}
	var out [4]float32
	for i, v := range fields {
		f, err := strconv.ParseFloat(v, 32)
		if err != nil {
			return math.Vec4{}, err
		}
		out[i] = float32(f)
	}
	return math.NewVec4(out[0], out[1], out[2], out[3]), nil
}

func validateMaterial(material *resources.MaterialConfig) error {
	if material.Name == "" {
		return fmt.Errorf("material name is required")
	}
	c := material.AlbedoColor
	if !inRange(c.X) || !inRange(c.Y) || !inRange(c.Z) || !inRange(c.W) {
		return fmt.Errorf("albedo_colour values must be between 0.0 and 1.0")
	}
	if !inRange(material.Roughness) || !inRange(material.Metallic) {
		return fmt.Errorf("roughness and metallic must be between 0.0 and 1.0")
	}
	for textureType, name := range material.Maps {
		if name == "" {
			return fmt.Errorf("empty %s map name", textureType)
		}
	}
	return nil
}

func inRange(value float32) bool {
	return value >= 0.0 && value <= 1.0
}
