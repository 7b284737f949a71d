package renderer

import (
	"github.com/Carmen-Shannon/oxy-view/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-view/engine/renderer/target"
)

// RendererBackendType identifies the GPU backend implementation used by the Renderer.
type RendererBackendType int

const (
	// BackendTypeWGPU selects the WebGPU-based rendering backend.
	BackendTypeWGPU RendererBackendType = iota

	// BackendTypeRecording is a CPU-only backend that records commands instead of executing them.
	BackendTypeRecording
)

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped
)

// BufferUsage selects how a GPU buffer is bound.
type BufferUsage int

const (
	BufferUsageUniform BufferUsage = iota
	BufferUsageStorage
)

// Buffer is a GPU buffer created by the backend.
type Buffer interface {
	// Label returns the debug label.
	Label() string

	// Size returns the buffer size in bytes.
	Size() uint64

	// Release frees the buffer.
	Release()
}

// Mesh is an uploaded vertex buffer with an optional 32-bit index buffer.
// Vertices are interleaved position (vec3) and normal (vec3), VertexStride bytes each.
type Mesh interface {
	// Label returns the debug label.
	Label() string

	// VertexCount returns the number of vertices.
	VertexCount() int

	// IndexCount returns the number of indices, or zero for a non-indexed mesh.
	IndexCount() int

	// Release frees the GPU buffers.
	Release()

	// Released reports whether Release has been called.
	Released() bool
}

// VertexStride is the byte size of one interleaved mesh vertex.
const VertexStride = 24

// PassDescriptor configures a render pass.
type PassDescriptor struct {
	// Label is the debug label of the pass.
	Label string

	// Target is the framebuffer to render into, or nil for the window surface.
	Target target.Framebuffer

	// ClearColor clears every color attachment to ClearValue instead of loading it.
	ClearColor bool

	// ClearValue is the clear color used when ClearColor is set.
	ClearValue [4]float64

	// ClearDepth clears depth to 1.0 instead of loading it. Ignored for read-only depth.
	ClearDepth bool
}

// DrawCommand is one instanced draw within a pass.
type DrawCommand struct {
	// Pipeline is the registered pipeline to draw with.
	Pipeline pipeline.Pipeline

	// Mesh is the vertex/index data.
	Mesh Mesh

	// InstanceCount is the number of instances.
	InstanceCount uint32

	// Storage is bound at the pipeline's RoleStorage group, if it has one.
	Storage Buffer
}

// RendererBackend is the GPU API behind the Renderer.
//
// Resource creation can happen at any time on the render thread. Drawing follows a strict order:
// BeginFrame, then one or more BeginPass / Draw / EndPass sequences, then EndFrame and Present.
type RendererBackend interface {
	target.Allocator

	// Type identifies the backend implementation.
	Type() RendererBackendType

	// ConfigureSurface resizes the presentation surface.
	ConfigureSurface(width, height int)

	// SetPresentMode changes the surface present mode.
	SetPresentMode(mode PresentMode)

	// CreateBuffer creates a zero-filled GPU buffer.
	CreateBuffer(label string, usage BufferUsage, size uint64) (Buffer, error)

	// WriteBuffer uploads data into buf at offset.
	WriteBuffer(buf Buffer, offset uint64, data []byte) error

	// CreateMesh uploads interleaved vertex data and optional uint32 indices.
	CreateMesh(label string, vertexData []byte, vertexCount int, indexData []byte, indexCount int) (Mesh, error)

	// RegisterPipeline compiles p and stores the backend object with p.SetHandle.
	RegisterPipeline(p pipeline.Pipeline) error

	// SetGlobals sets the uniform buffer bound at every pipeline's RoleGlobals group.
	SetGlobals(buf Buffer)

	// SetTextures sets the texture table bound at every pipeline's RoleTextures group, indexed by TextureUnit.
	SetTextures(textures [TextureUnitCount]target.Texture)

	// BeginFrame acquires the next surface texture and starts command recording.
	BeginFrame() error

	// BeginPass starts a render pass.
	BeginPass(desc PassDescriptor) error

	// Draw records a draw in the current pass.
	Draw(cmd DrawCommand) error

	// EndPass ends the current pass.
	EndPass() error

	// EndFrame submits the recorded commands.
	EndFrame() error

	// Present shows the surface texture acquired by BeginFrame.
	Present()

	// DiscardFrame drops the frame in progress without submitting or presenting it.
	// It does nothing when no frame is open.
	DiscardFrame()

	// Release frees every backend object.
	Release()
}
