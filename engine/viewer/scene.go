package viewer

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/Carmen-Shannon/oxy-view/assets"
	"github.com/Carmen-Shannon/oxy-view/common"
	"github.com/Carmen-Shannon/oxy-view/engine/instance"
	"github.com/Carmen-Shannon/oxy-view/engine/light"
	"github.com/Carmen-Shannon/oxy-view/engine/logging"
	"github.com/Carmen-Shannon/oxy-view/engine/mesh"
	"github.com/Carmen-Shannon/oxy-view/engine/renderer"
	"github.com/Carmen-Shannon/oxy-view/engine/renderer/program"
	"github.com/chewxy/math32"
)

// Decorative transform applied to the boundary overlay before any gesture.
const (
	decorScale = 50
	decorDepth = -150
)

var boundaryColor = [3]float32{1, 0, 0}

// buildScene uploads the built-in meshes and creates the floor, the instance ring and the orbiting lights.
func (v *viewer) buildScene() error {
	sc := v.cfg.Scene

	quad, err := v.uploadAsset("fullscreen-quad", assets.QuadModel)
	if err != nil {
		return err
	}
	v.quad = quad

	floorMesh, err := v.uploadAsset("floor", sc.Floor)
	if err != nil {
		return err
	}
	v.floor = instance.NewGroup(instance.WithLabel("floor"))
	v.floor.SetMesh(floorMesh)
	floor := v.floor.CreateInstance()
	floor.Material = instance.Material{Diffuse: [3]float32{0, 0, 1}, Specular: [3]float32{0.5, 0.5, 0.5}, Exponent: 1}
	floor.Transform.SetScale(100)
	floor.Transform.SetTranslation(0, -2, 0)

	lightMesh, err := v.uploadAsset("light-volume", sc.LightMesh)
	if err != nil {
		return err
	}
	v.lights = light.NewGroup()
	v.lights.SetMesh(lightMesh)
	for range sc.LightCount {
		v.lights.CreateLight(sc.LightRadius)
	}

	v.models = instance.NewGroup(instance.WithLabel("models"))
	for i := range sc.RingCount {
		deg := float32(i) * 360 / float32(sc.RingCount)
		rad := common.Radians(deg)
		inst := v.models.CreateInstance()
		inst.Material = instance.Material{
			Diffuse:  [3]float32{deg / 360, 1 - deg/360, 0},
			Specular: [3]float32{1, 1, 1},
			Exponent: 16,
		}
		inst.Transform.SetTranslation(math32.Cos(rad)*sc.RingRadius, 0, math32.Sin(rad)*sc.RingRadius)
	}

	v.boundaries = instance.NewGroup(instance.WithLabel("boundaries"), instance.WithPipelineKey(program.BoundaryKey))
	v.overlay = v.boundaries.CreateInstance()
	v.overlay.Material.Diffuse = boundaryColor
	v.decor.SetScale(decorScale)
	v.decor.SetTranslation(0, 0, decorDepth)

	v.placeLights()
	logging.Info("scene built", "instances", v.models.Count(), "lights", v.lights.Count())
	return nil
}

// uploadAsset loads an OBJ and uploads it as an indexed triangle mesh.
func (v *viewer) uploadAsset(label, path string) (renderer.Mesh, error) {
	m, err := v.openMesh(path)
	if err != nil {
		return nil, err
	}
	return v.uploadMesh(label, m.Interleave())
}

func (v *viewer) uploadMesh(label string, data mesh.Interleaved) (renderer.Mesh, error) {
	gpu, err := v.renderer.CreateMesh(label, data.Vertices, data.VertexCount, data.Indices, data.IndexCount)
	if err != nil {
		return nil, fmt.Errorf("upload mesh %s: %w", label, err)
	}
	return gpu, nil
}

// openMesh reads an OBJ from disk, falling back to the embedded assets when no such file exists.
func (v *viewer) openMesh(path string) (*mesh.HalfEdgeMesh, error) {
	if _, err := os.Stat(path); err == nil {
		return mesh.OpenFile(path)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	if !fs.ValidPath(path) {
		return nil, fmt.Errorf("open %s: %w", path, fs.ErrNotExist)
	}
	return mesh.Open(v.assets, path)
}

// onDisk reports whether path names a regular file on disk rather than an embedded asset.
func onDisk(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// beginFrame snapshots the previous-frame state of everything that feeds motion vectors.
func (v *viewer) beginFrame() {
	v.camera.BeginFrame()
	v.floor.BeginFrame()
	v.models.BeginFrame()
	v.boundaries.BeginFrame()
	v.lights.BeginFrame()
}

// animate spins every ring instance by its index in degrees and advances the light orbit.
func (v *viewer) animate() {
	for i, inst := range v.models.Instances() {
		inst.Transform.Rotate(float32(i), common.AxisZ)
	}
	v.lightPhase += v.cfg.Scene.LightSpeed
	v.placeLights()
}

// placeLights spaces the lights evenly on a horizontal circle, starting at the current phase.
func (v *viewer) placeLights() {
	lights := v.lights.Lights()
	if len(lights) == 0 {
		return
	}
	orbit := v.cfg.Scene.LightOrbit
	step := 2 * math32.Pi / float32(len(lights))
	for i, l := range lights {
		angle := v.lightPhase + float32(i)*step
		l.SetPosition(math32.Cos(angle)*orbit, 0, math32.Sin(angle)*orbit)
	}
}
