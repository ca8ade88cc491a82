package assets

import (
	"embed"
	"io/fs"
)

//go:embed shaders
var builtin embed.FS

// BuiltinShaders holds the HLSL sources of every builtin shader, rooted at
// "shaders/".
func BuiltinShaders() fs.FS {
	return builtin
}
