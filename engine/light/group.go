package light

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-view/common"
	"github.com/Carmen-Shannon/oxy-view/engine/renderer"
)

// DefaultPipelineKey is the light-volume pipeline point light groups draw with unless configured otherwise.
const DefaultPipelineKey = "pointLight"

const minCapacity = 16

// group is the implementation of the Group interface.
type group struct {
	mu *sync.Mutex

	pipelineKey string

	mesh   renderer.Mesh
	lights []PointLight

	staging   []byte
	storage   renderer.Buffer
	capacity  int
	committed int
}

// Group owns the light-volume mesh and the point lights drawn with it.
//
// Draw issues one instanced draw of the volume mesh. The pipeline behind it culls front faces, passes where the
// volume's back faces lie beyond the G-buffer depth, never writes depth, and blends additively, so each pixel
// inside a volume is shaded once per light.
type Group interface {
	renderer.DrawGroup

	// SetMesh binds the light-volume mesh, releasing the previous one.
	//
	// Parameters:
	//   - mesh: the volume mesh, a unit sphere scaled by each light's radius
	SetMesh(mesh renderer.Mesh)

	// CreateLight adds a white light at the origin.
	//
	// Parameters:
	//   - radius: the attenuation radius
	//
	// Returns:
	//   - PointLight: the new light, owned by the group
	CreateLight(radius float32) PointLight

	// Lights returns the live lights in creation order.
	//
	// Returns:
	//   - []PointLight: the lights; the slice must not be modified
	Lights() []PointLight

	// Clear removes every light.
	Clear()

	// BeginFrame snapshots every light's position.
	BeginFrame()

	// Update packs every light's world matrix, view-space position, radius and color without uploading.
	//
	// Parameters:
	//   - view: this frame's world-to-view matrix
	Update(view common.Mat4)

	// Committed returns the number of lights covered by the last Commit.
	//
	// Returns:
	//   - int: the committed light count
	Committed() int

	// Release frees the mesh and the storage buffer.
	Release()
}

var _ Group = &group{}

// NewGroup creates an empty point light Group.
//
// Parameters:
//   - options: a variadic list of GroupBuilderOption functions
//
// Returns:
//   - Group: the group
func NewGroup(options ...GroupBuilderOption) Group {
	g := &group{
		mu:          &sync.Mutex{},
		pipelineKey: DefaultPipelineKey,
	}
	for _, opt := range options {
		opt(g)
	}
	return g
}

func (g *group) SetMesh(mesh renderer.Mesh) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.mesh != nil && g.mesh != mesh {
		g.mesh.Release()
	}
	g.mesh = mesh
}

func (g *group) PrepareMesh(mesh renderer.Mesh) {
	g.SetMesh(mesh)
}

func (g *group) CreateLight(radius float32) PointLight {
	g.mu.Lock()
	defer g.mu.Unlock()
	l := NewPointLight(WithRadius(radius))
	g.lights = append(g.lights, l)
	return l
}

func (g *group) Lights() []PointLight {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lights
}

func (g *group) Count() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.lights)
}

func (g *group) Clear() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.lights = nil
	g.committed = 0
}

func (g *group) BeginFrame() {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, l := range g.lights {
		l.BeginFrame()
	}
}

func (g *group) Update(view common.Mat4) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.update(view)
}

func (g *group) update(view common.Mat4) {
	need := len(g.lights) * GPUPointLightSize
	if cap(g.staging) < need {
		g.staging = make([]byte, need)
	}
	g.staging = g.staging[:need]
	for i, l := range g.lights {
		rec := l.(*pointLight).gpu(view)
		rec.MarshalTo(g.staging[i*GPUPointLightSize:])
	}
}

func (g *group) Commit(r renderer.Renderer, view renderer.ViewState) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.update(view.View)
	count := len(g.lights)
	if count == 0 {
		g.committed = 0
		return nil
	}

	if g.storage == nil || count > g.capacity {
		capacity := common.NextCapacity(g.capacity, count, minCapacity)
		buf, err := r.CreateBuffer("point-lights", renderer.BufferUsageStorage, uint64(capacity*GPUPointLightSize))
		if err != nil {
			return fmt.Errorf("allocate storage for %d lights: %w", capacity, err)
		}
		if g.storage != nil {
			g.storage.Release()
		}
		g.storage = buf
		g.capacity = capacity
	}

	if err := r.WriteBuffer(g.storage, 0, g.staging); err != nil {
		return fmt.Errorf("upload lights: %w", err)
	}
	g.committed = count
	return nil
}

func (g *group) Draw(r renderer.Renderer) error {
	g.mu.Lock()
	mesh, storage, count := g.mesh, g.storage, g.committed
	g.mu.Unlock()

	if mesh == nil || storage == nil || count == 0 {
		return nil
	}
	return r.DrawCall(g.pipelineKey, mesh, uint32(count), storage)
}

func (g *group) Committed() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.committed
}

func (g *group) Release() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.mesh != nil {
		g.mesh.Release()
		g.mesh = nil
	}
	if g.storage != nil {
		g.storage.Release()
		g.storage = nil
	}
	g.capacity = 0
	g.committed = 0
}
