// Package assets embeds the WGSL shaders and OBJ models the viewer ships with.
package assets

import (
	"embed"
	"io/fs"
)

//go:embed shaders models
var embedded embed.FS

// ShaderRoot and ModelRoot are the directories of FS holding shaders and models.
const (
	ShaderRoot = "shaders"
	ModelRoot  = "models"
)

// Default model paths, relative to FS.
const (
	SphereModel     = "models/sphere.obj"
	FloorModel      = "models/floor.obj"
	QuadModel       = "models/quad.obj"
	PointLightModel = "models/point_light.obj"
	OpenBoxModel    = "models/open_box.obj"
)

// FS returns the embedded asset tree.
func FS() fs.FS {
	return embedded
}
