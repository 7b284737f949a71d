package renderer

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-view/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-view/engine/renderer/target"
)

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	pipelineCache map[string]pipeline.Pipeline

	backend RendererBackend

	pendingPresentMode *PresentMode
}

// Renderer defines the interface for the rendering system.
//
// It fronts a RendererBackend with a cache of registered pipelines keyed by PipelineKey, so callers draw by key
// and never hold backend objects.
type Renderer interface {
	target.Allocator

	// Backend returns the underlying backend.
	//
	// Returns:
	//   - RendererBackend: the backend
	Backend() RendererBackend

	// Pipeline retrieves the cached Pipeline associated with the given key.
	// If the Pipeline does not exist, this will return nil.
	//
	// Parameters:
	//   - key: the unique identifier for the Pipeline to retrieve
	//
	// Returns:
	//   - pipeline.Pipeline: the Pipeline associated with the key, or nil if not found
	Pipeline(key string) pipeline.Pipeline

	// RegisterPipelines compiles one or more pipelines through the backend, then caches them by PipelineKey.
	// Pipelines whose keys are already registered are skipped to avoid duplicate GPU resource creation.
	//
	// Parameters:
	//   - pipelines: the Pipelines to register
	//
	// Returns:
	//   - error: an error if pipeline creation fails
	RegisterPipelines(pipelines ...pipeline.Pipeline) error

	// Resize configures the underlying backend to handle a new surface size.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	Resize(width, height int)

	// SetPresentMode changes the surface present mode.
	//
	// Parameters:
	//   - mode: the present mode
	SetPresentMode(mode PresentMode)

	// CreateBuffer creates a zero-filled GPU buffer.
	//
	// Parameters:
	//   - label: debug label
	//   - usage: uniform or storage
	//   - size: size in bytes
	//
	// Returns:
	//   - Buffer: the buffer
	//   - error: an allocation failure
	CreateBuffer(label string, usage BufferUsage, size uint64) (Buffer, error)

	// WriteBuffer uploads data into buf at offset.
	//
	// Parameters:
	//   - buf: the destination buffer
	//   - offset: byte offset into buf
	//   - data: the bytes to upload
	//
	// Returns:
	//   - error: an error if the write is out of range
	WriteBuffer(buf Buffer, offset uint64, data []byte) error

	// CreateMesh uploads interleaved position/normal vertices and optional uint32 indices.
	//
	// Parameters:
	//   - label: debug label
	//   - vertexData: interleaved vertex bytes, VertexStride per vertex
	//   - vertexCount: number of vertices
	//   - indexData: little-endian uint32 indices, or nil
	//   - indexCount: number of indices
	//
	// Returns:
	//   - Mesh: the uploaded mesh
	//   - error: an allocation failure
	CreateMesh(label string, vertexData []byte, vertexCount int, indexData []byte, indexCount int) (Mesh, error)

	// SetGlobals sets the uniform buffer bound as the GlobalBuffer block.
	//
	// Parameters:
	//   - buf: the uniform buffer
	SetGlobals(buf Buffer)

	// SetTextures sets the G-buffer texture table.
	//
	// Parameters:
	//   - textures: textures indexed by TextureUnit
	SetTextures(textures [TextureUnitCount]target.Texture)

	// BeginFrame starts a frame.
	//
	// Returns:
	//   - error: a surface acquisition failure
	BeginFrame() error

	// BeginPass starts a render pass.
	//
	// Parameters:
	//   - desc: the pass descriptor
	//
	// Returns:
	//   - error: an error if a pass is already open
	BeginPass(desc PassDescriptor) error

	// DrawCall records an instanced draw with the cached pipeline pipelineKey.
	//
	// Parameters:
	//   - pipelineKey: the key of a registered pipeline
	//   - mesh: the mesh to draw
	//   - instanceCount: number of instances
	//   - storage: the storage buffer for the pipeline's RoleStorage group, or nil
	//
	// Returns:
	//   - error: an error if the pipeline is not registered or the draw fails
	DrawCall(pipelineKey string, mesh Mesh, instanceCount uint32, storage Buffer) error

	// EndPass ends the current pass.
	//
	// Returns:
	//   - error: an error if no pass is open
	EndPass() error

	// EndFrame submits the frame.
	//
	// Returns:
	//   - error: a submission failure
	EndFrame() error

	// Present shows the frame.
	Present()

	// DiscardFrame drops a frame that failed part way, so the next BeginFrame can start.
	DiscardFrame()
}

var _ Renderer = &renderer{}

// NewRenderer creates a Renderer over backend.
//
// Parameters:
//   - backend: the GPU backend
//   - options: a variadic list of RendererBuilderOption functions
//
// Returns:
//   - Renderer: the renderer
func NewRenderer(backend RendererBackend, options ...RendererBuilderOption) Renderer {
	r := &renderer{
		mu:            &sync.Mutex{},
		pipelineCache: make(map[string]pipeline.Pipeline),
		backend:       backend,
	}

	for _, opt := range options {
		opt(r)
	}

	if r.pendingPresentMode != nil {
		r.backend.SetPresentMode(*r.pendingPresentMode)
	}
	return r
}

func (r *renderer) Backend() RendererBackend {
	return r.backend
}

func (r *renderer) AllocateTexture(desc target.TextureDescriptor) (target.Texture, error) {
	return r.backend.AllocateTexture(desc)
}

func (r *renderer) Resize(width, height int) {
	r.backend.ConfigureSurface(width, height)
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.backend.SetPresentMode(mode)
}

func (r *renderer) Pipeline(key string) pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pipelineCache[key]
}

func (r *renderer) RegisterPipelines(pipelines ...pipeline.Pipeline) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range pipelines {
		key := p.PipelineKey()
		if _, exists := r.pipelineCache[key]; exists {
			continue
		}
		if err := r.backend.RegisterPipeline(p); err != nil {
			return fmt.Errorf("register pipeline %q: %w", key, err)
		}
		r.pipelineCache[key] = p
	}
	return nil
}

func (r *renderer) CreateBuffer(label string, usage BufferUsage, size uint64) (Buffer, error) {
	return r.backend.CreateBuffer(label, usage, size)
}

func (r *renderer) WriteBuffer(buf Buffer, offset uint64, data []byte) error {
	return r.backend.WriteBuffer(buf, offset, data)
}

func (r *renderer) CreateMesh(label string, vertexData []byte, vertexCount int, indexData []byte, indexCount int) (Mesh, error) {
	return r.backend.CreateMesh(label, vertexData, vertexCount, indexData, indexCount)
}

func (r *renderer) SetGlobals(buf Buffer) {
	r.backend.SetGlobals(buf)
}

func (r *renderer) SetTextures(textures [TextureUnitCount]target.Texture) {
	r.backend.SetTextures(textures)
}

func (r *renderer) BeginFrame() error {
	return r.backend.BeginFrame()
}

func (r *renderer) BeginPass(desc PassDescriptor) error {
	return r.backend.BeginPass(desc)
}

func (r *renderer) DrawCall(pipelineKey string, mesh Mesh, instanceCount uint32, storage Buffer) error {
	r.mu.Lock()
	p, exists := r.pipelineCache[pipelineKey]
	r.mu.Unlock()

	if !exists {
		return fmt.Errorf("render pipeline %q not found in cache", pipelineKey)
	}

	return r.backend.Draw(DrawCommand{
		Pipeline:      p,
		Mesh:          mesh,
		InstanceCount: instanceCount,
		Storage:       storage,
	})
}

func (r *renderer) EndPass() error {
	return r.backend.EndPass()
}

func (r *renderer) EndFrame() error {
	return r.backend.EndFrame()
}

func (r *renderer) Present() {
	r.backend.Present()
}

func (r *renderer) DiscardFrame() {
	r.backend.DiscardFrame()
}
