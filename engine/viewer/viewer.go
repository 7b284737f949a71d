// Package viewer drives the deferred renderer frame by frame: it owns the scene, the render targets and the
// per-frame sequence of passes, and it reloads the displayed model on request.
package viewer

import (
	"errors"
	"fmt"
	"io/fs"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-view/assets"
	"github.com/Carmen-Shannon/oxy-view/common"
	"github.com/Carmen-Shannon/oxy-view/engine/camera"
	"github.com/Carmen-Shannon/oxy-view/engine/config"
	"github.com/Carmen-Shannon/oxy-view/engine/dialog"
	"github.com/Carmen-Shannon/oxy-view/engine/input"
	"github.com/Carmen-Shannon/oxy-view/engine/instance"
	"github.com/Carmen-Shannon/oxy-view/engine/light"
	"github.com/Carmen-Shannon/oxy-view/engine/logging"
	"github.com/Carmen-Shannon/oxy-view/engine/mesh"
	"github.com/Carmen-Shannon/oxy-view/engine/renderer"
	"github.com/Carmen-Shannon/oxy-view/engine/renderer/program"
	"github.com/Carmen-Shannon/oxy-view/engine/renderer/target"
	"github.com/Carmen-Shannon/oxy-view/engine/transform"
	"github.com/Carmen-Shannon/oxy-view/engine/watcher"
)

// ErrNotResized is returned by Render before the first successful Resize.
var ErrNotResized = errors.New("viewer: render targets not allocated")

// Stats are the diagnostics of the last model load.
type Stats struct {
	Path             string
	Mesh             mesh.Stats
	Instances        int
	PolygonsPerFrame int

	ParseTime      time.Duration
	InterleaveTime time.Duration
	BoundaryTime   time.Duration
	UploadTime     time.Duration

	// Frames counts frames rendered since the load.
	Frames uint64
}

// viewer is the implementation of the Viewer interface.
type viewer struct {
	mu *sync.Mutex

	cfg      config.Config
	assets   fs.FS
	renderer renderer.Renderer
	input    input.Manager
	camera   camera.Camera
	bank     program.Bank
	dialog   dialog.Dialog
	watcher  watcher.Watcher

	targets target.RenderTargetSet
	frames  target.FrameGraphBuffers
	globals renderer.Buffer
	quad    renderer.Mesh

	floor      instance.Group
	models     instance.Group
	lights     light.Group
	boundaries instance.Group
	overlay    *instance.Instance

	decor        transform.Transform
	dragAxis     common.Vec3
	dragVelocity float32
	lightPhase   float32

	channel        Channel
	state          State
	paused         bool
	showBoundaries bool

	edges []mesh.Edge
	stats Stats
}

// Viewer renders the scene through the deferred pipeline.
//
// Every frame the owner calls Update, then Render, from the thread that owns the GPU device. Resize must succeed
// before the first Render.
type Viewer interface {
	// Resize reallocates every render target at width x height and rebuilds both framebuffers.
	//
	// Parameters:
	//   - width, height: the new surface size in pixels
	//
	// Returns:
	//   - error: a wrapped allocation failure or a *target.FramebufferError, both fatal
	Resize(width, height int) error

	// Update advances the scene by one frame. It polls the file watcher, applies key bindings, snapshots the
	// previous-frame camera and transforms, then applies camera input, gestures and animation.
	Update()

	// Render records and presents one frame. A paused viewer returns immediately without issuing commands.
	//
	// Returns:
	//   - error: ErrNotResized, or a failure of the renderer
	Render() error

	// SelectChannel chooses the G-buffer view the present pass shows.
	//
	// Parameters:
	//   - ch: the channel
	//
	// Returns:
	//   - error: program.ErrUnknownChannel
	SelectChannel(ch Channel) error

	// Channel returns the selected channel.
	Channel() Channel

	// LoadModel replaces the displayed model with the OBJ file at path. The viewer is paused for the duration.
	// The previous model is released before parsing, so a failed load leaves nothing drawn.
	//
	// Parameters:
	//   - path: an OS path, or a path inside the embedded assets
	//
	// Returns:
	//   - error: a read, parse or upload failure
	LoadModel(path string) error

	// OpenModel asks the user for a model and loads it. Cancelling the dialog is not an error.
	//
	// Returns:
	//   - error: a dialog or load failure
	OpenModel() error

	// Paused reports whether rendering is suspended.
	Paused() bool

	// SetPaused suspends or resumes rendering.
	SetPaused(paused bool)

	// State returns the phase of the frame in progress, StateIdle between frames.
	State() State

	// Stats returns the diagnostics of the last load.
	Stats() Stats

	// Boundaries returns the boundary edges of the loaded model.
	//
	// Returns:
	//   - []mesh.Edge: the edges in model space; the slice must not be modified
	Boundaries() []mesh.Edge

	// ShowBoundaries turns the boundary edge overlay on or off.
	ShowBoundaries(show bool)

	// Camera returns the scene camera.
	Camera() camera.Camera

	// Instances returns the group drawn with the loaded model.
	Instances() instance.Group

	// Lights returns the point light group.
	Lights() light.Group

	// Release frees every GPU resource owned by the viewer.
	Release()
}

var _ Viewer = &viewer{}

// NewViewer compiles the programs, uploads the built-in meshes, builds the scene described by the config and
// loads its model.
//
// Parameters:
//   - r: the renderer
//   - in: the input manager fed by the window
//   - options: a variadic list of ViewerBuilderOption functions
//
// Returns:
//   - Viewer: the viewer, not yet resized
//   - error: a shader, mesh or allocation failure
func NewViewer(r renderer.Renderer, in input.Manager, options ...ViewerBuilderOption) (Viewer, error) {
	v := &viewer{
		mu:       &sync.Mutex{},
		cfg:      config.Default(),
		assets:   assets.FS(),
		renderer: r,
		input:    in,
		decor:    transform.New(),
	}
	for _, opt := range options {
		opt(v)
	}

	if v.camera == nil {
		v.camera = newCamera(v.cfg)
	}
	ch, err := program.ParseChannel(v.cfg.Scene.Channel)
	if err != nil {
		return nil, err
	}
	v.channel = ch
	v.showBoundaries = v.cfg.Scene.ShowBoundaries

	if v.bank, err = program.NewBank(v.assets, program.WithShaderRoot(assets.ShaderRoot)); err != nil {
		return nil, fmt.Errorf("compile programs: %w", err)
	}
	if err := r.RegisterPipelines(v.bank.Pipelines()...); err != nil {
		return nil, err
	}

	v.targets = target.NewRenderTargetSet(r)
	v.frames = target.NewFrameGraphBuffers()

	if v.globals, err = r.CreateBuffer("globals", renderer.BufferUsageUniform, camera.GPUGlobalUniformSize); err != nil {
		return nil, fmt.Errorf("allocate globals: %w", err)
	}
	r.SetGlobals(v.globals)

	if err := v.buildScene(); err != nil {
		v.Release()
		return nil, err
	}
	if err := v.LoadModel(v.cfg.Scene.Model); err != nil {
		v.Release()
		return nil, err
	}
	return v, nil
}

func newCamera(cfg config.Config) camera.Camera {
	c := cfg.Camera
	return camera.NewCamera(
		camera.WithFov(common.Radians(c.FovDegrees)),
		camera.WithNear(c.Near),
		camera.WithFar(c.Far),
		camera.WithViewport(cfg.Window.Width, cfg.Window.Height),
		camera.WithPosition(c.Position[0], c.Position[1], c.Position[2]),
		camera.WithController(camera.NewFlyController(
			camera.WithTranslateSpeed(c.TranslateSpeed),
			camera.WithSlowSpeed(c.SlowSpeed),
			camera.WithRotateSpeed(c.RotateSpeed),
		)),
	)
}

func (v *viewer) Resize(width, height int) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if err := v.targets.Resize(width, height); err != nil {
		return fmt.Errorf("resize render targets: %w", err)
	}
	if err := v.frames.Build(v.targets); err != nil {
		return err
	}
	v.renderer.SetTextures(textureTable(v.targets))
	v.renderer.Resize(width, height)
	v.camera.SetViewport(width, height)
	logging.Debug("resized", "width", width, "height", height, "generation", v.targets.Generation())
	return nil
}

// textureTable maps the render targets onto the fixed texture units every deferred program samples.
func textureTable(set target.RenderTargetSet) [renderer.TextureUnitCount]target.Texture {
	var t [renderer.TextureUnitCount]target.Texture
	t[renderer.UnitGeometry] = set.Channel(target.ChannelGeometry)
	t[renderer.UnitMaterial] = set.Channel(target.ChannelMaterial)
	t[renderer.UnitDynamics] = set.Channel(target.ChannelDynamics)
	t[renderer.UnitBackBuffer] = set.BackBuffer()
	t[renderer.UnitLightBuffer] = set.Channel(target.ChannelLight)
	t[renderer.UnitDepth] = set.Depth()
	return t
}

func (v *viewer) SelectChannel(ch Channel) error {
	if !ch.Valid() {
		return fmt.Errorf("select %s: %w", ch, program.ErrUnknownChannel)
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.channel != ch {
		logging.Debug("channel selected", "channel", ch)
	}
	v.channel = ch
	return nil
}

func (v *viewer) Channel() Channel {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.channel
}

func (v *viewer) Paused() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.paused
}

func (v *viewer) SetPaused(paused bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.paused = paused
}

// pause suspends rendering and returns the func that restores the previous paused value.
func (v *viewer) pause() func() {
	v.mu.Lock()
	prev := v.paused
	v.paused = true
	v.mu.Unlock()
	return func() {
		v.mu.Lock()
		v.paused = prev
		v.mu.Unlock()
	}
}

func (v *viewer) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

func (v *viewer) Stats() Stats {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.stats
}

func (v *viewer) Boundaries() []mesh.Edge {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.edges
}

func (v *viewer) ShowBoundaries(show bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.showBoundaries = show
}

func (v *viewer) Camera() camera.Camera {
	return v.camera
}

func (v *viewer) Instances() instance.Group {
	return v.models
}

func (v *viewer) Lights() light.Group {
	return v.lights
}

func (v *viewer) Release() {
	v.mu.Lock()
	defer v.mu.Unlock()

	for _, g := range []instance.Group{v.floor, v.models, v.boundaries} {
		if g != nil {
			g.Release()
		}
	}
	if v.lights != nil {
		v.lights.Release()
	}
	if v.quad != nil {
		v.quad.Release()
		v.quad = nil
	}
	if v.globals != nil {
		v.globals.Release()
		v.globals = nil
	}
	if v.targets != nil {
		v.targets.Release()
	}
	if v.watcher != nil {
		if err := v.watcher.Close(); err != nil {
			logging.Warn("close watcher", "err", err)
		}
	}
}
