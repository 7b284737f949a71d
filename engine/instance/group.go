package instance

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-view/common"
	"github.com/Carmen-Shannon/oxy-view/engine/renderer"
)

// minCapacity is the smallest storage buffer allocation, in instances.
const minCapacity = 16

// DefaultPipelineKey is the G-buffer pipeline instance groups draw with unless configured otherwise.
const DefaultPipelineKey = "gbuffer"

// group is the implementation of the Group interface.
type group struct {
	mu *sync.Mutex

	label       string
	pipelineKey string

	mesh      renderer.Mesh
	instances []*Instance

	staging   []byte
	storage   renderer.Buffer
	capacity  int
	committed int
}

// Group owns one shared mesh and the instances drawn with it.
//
// Every frame the owner calls BeginFrame, mutates instances, then Commit and Draw. Commit packs the live
// instances into a storage buffer and Draw issues one instanced draw covering everything committed.
// Instances created after Commit are drawn from the next frame on.
type Group interface {
	renderer.DrawGroup

	// Label returns the debug label of the group.
	//
	// Returns:
	//   - string: the label
	Label() string

	// SetMesh binds the shared mesh, releasing the previous one and dropping the committed instance data.
	//
	// Parameters:
	//   - mesh: the new mesh, or nil to draw nothing
	SetMesh(mesh renderer.Mesh)

	// Mesh returns the bound mesh.
	//
	// Returns:
	//   - renderer.Mesh: the mesh, or nil
	Mesh() renderer.Mesh

	// CreateInstance adds an instance with an identity transform and the default material.
	//
	// Returns:
	//   - *Instance: the new instance, owned by the group
	CreateInstance() *Instance

	// Instances returns the live instances in creation order.
	//
	// Returns:
	//   - []*Instance: the instances; the slice must not be modified
	Instances() []*Instance

	// Clear removes every instance.
	Clear()

	// BeginFrame snapshots every instance's model matrix as its previous matrix.
	BeginFrame()

	// Update packs every live instance against the view matrices into the staging buffer without uploading.
	//
	// Parameters:
	//   - view: this frame's world-to-view matrix
	//   - prevView: last frame's world-to-view matrix
	Update(view, prevView common.Mat4)

	// Committed returns the number of instances covered by the last Commit.
	//
	// Returns:
	//   - int: the committed instance count
	Committed() int

	// Storage returns the storage buffer holding the committed instances.
	//
	// Returns:
	//   - renderer.Buffer: the buffer, or nil before the first Commit
	Storage() renderer.Buffer

	// Release frees the mesh and the storage buffer.
	Release()
}

var _ Group = &group{}

// NewGroup creates an empty instance Group.
//
// Parameters:
//   - options: a variadic list of GroupBuilderOption functions
//
// Returns:
//   - Group: the group
func NewGroup(options ...GroupBuilderOption) Group {
	g := &group{
		mu:          &sync.Mutex{},
		label:       "instances",
		pipelineKey: DefaultPipelineKey,
	}
	for _, opt := range options {
		opt(g)
	}
	return g
}

func (g *group) Label() string {
	return g.label
}

func (g *group) SetMesh(mesh renderer.Mesh) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.mesh != nil && g.mesh != mesh {
		g.mesh.Release()
	}
	g.mesh = mesh
	g.dropStorage()
}

func (g *group) PrepareMesh(mesh renderer.Mesh) {
	g.SetMesh(mesh)
}

func (g *group) Mesh() renderer.Mesh {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.mesh
}

func (g *group) CreateInstance() *Instance {
	g.mu.Lock()
	defer g.mu.Unlock()

	inst := newInstance()
	g.instances = append(g.instances, inst)
	return inst
}

func (g *group) Instances() []*Instance {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.instances
}

func (g *group) Count() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.instances)
}

func (g *group) Clear() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.instances = nil
	g.staging = g.staging[:0]
	g.committed = 0
}

func (g *group) BeginFrame() {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, inst := range g.instances {
		inst.BeginFrame()
	}
}

func (g *group) Update(view, prevView common.Mat4) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.update(view, prevView)
}

func (g *group) update(view, prevView common.Mat4) {
	need := len(g.instances) * GPUInstanceSize
	if cap(g.staging) < need {
		g.staging = make([]byte, need)
	}
	g.staging = g.staging[:need]
	for i, inst := range g.instances {
		rec := inst.gpu(view, prevView)
		rec.MarshalTo(g.staging[i*GPUInstanceSize:])
	}
}

func (g *group) Commit(r renderer.Renderer, view renderer.ViewState) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.update(view.View, view.PrevView)
	count := len(g.instances)
	if count == 0 {
		g.committed = 0
		return nil
	}

	if g.storage == nil || count > g.capacity {
		capacity := common.NextCapacity(g.capacity, count, minCapacity)
		buf, err := r.CreateBuffer(g.label+"-instances", renderer.BufferUsageStorage, uint64(capacity*GPUInstanceSize))
		if err != nil {
			return fmt.Errorf("allocate %s storage for %d instances: %w", g.label, capacity, err)
		}
		g.dropStorage()
		g.storage = buf
		g.capacity = capacity
	}

	if err := r.WriteBuffer(g.storage, 0, g.staging); err != nil {
		return fmt.Errorf("upload %s instances: %w", g.label, err)
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

func (g *group) Storage() renderer.Buffer {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.storage
}

func (g *group) Release() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.mesh != nil {
		g.mesh.Release()
		g.mesh = nil
	}
	g.dropStorage()
}

// dropStorage releases the storage buffer. Callers hold g.mu.
func (g *group) dropStorage() {
	if g.storage != nil {
		g.storage.Release()
		g.storage = nil
	}
	g.capacity = 0
	g.committed = 0
}
