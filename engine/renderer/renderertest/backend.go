// Package renderertest provides a recording RendererBackend for tests that exercise rendering code without a GPU.
package renderertest

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-view/engine/renderer"
	"github.com/Carmen-Shannon/oxy-view/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-view/engine/renderer/target"
)

// ErrInjected is returned by operations made to fail through the Fail* fields.
var ErrInjected = errors.New("renderertest: injected failure")

// Texture is a CPU-only target.Texture.
type Texture struct {
	desc     target.TextureDescriptor
	released bool
}

func (t *Texture) Descriptor() target.TextureDescriptor { return t.desc }
func (t *Texture) Release()                             { t.released = true }
func (t *Texture) Released() bool                       { return t.released }

// Buffer is a CPU-only renderer.Buffer holding its contents.
type Buffer struct {
	label    string
	usage    renderer.BufferUsage
	Data     []byte
	released bool
}

func (b *Buffer) Label() string               { return b.label }
func (b *Buffer) Size() uint64                { return uint64(len(b.Data)) }
func (b *Buffer) Usage() renderer.BufferUsage { return b.usage }
func (b *Buffer) Release()                    { b.released = true }
func (b *Buffer) Released() bool              { return b.released }

// Mesh is a CPU-only renderer.Mesh.
type Mesh struct {
	label       string
	vertexCount int
	indexCount  int
	released    bool
}

func (m *Mesh) Label() string    { return m.label }
func (m *Mesh) VertexCount() int { return m.vertexCount }
func (m *Mesh) IndexCount() int  { return m.indexCount }
func (m *Mesh) Release()         { m.released = true }
func (m *Mesh) Released() bool   { return m.released }

// Pass is a recorded render pass.
type Pass struct {
	Descriptor renderer.PassDescriptor
	Draws      []renderer.DrawCommand
	// Textures is the texture table bound when the pass began.
	Textures [renderer.TextureUnitCount]target.Texture
}

// Frame is a recorded frame.
type Frame struct {
	Passes    []Pass
	Presented bool
	Discarded bool
}

// Backend records every call made through the renderer.RendererBackend interface.
type Backend struct {
	mu *sync.Mutex

	// FailAllocAt makes the n-th texture allocation (1-based, counted since creation) fail.
	FailAllocAt int
	// FailBeginFrame makes BeginFrame fail.
	FailBeginFrame bool
	// FailPass makes BeginPass fail for the pass with this label.
	FailPass string

	Width, Height int
	PresentMode   renderer.PresentMode
	Textures      []*Texture
	Buffers       []*Buffer
	Meshes        []*Mesh
	Pipelines     []pipeline.Pipeline
	Globals       renderer.Buffer
	Frames        []Frame
	Released      bool

	textures [renderer.TextureUnitCount]target.Texture
	allocs   int
	inFrame  bool
	pass     *Pass
}

var _ renderer.RendererBackend = &Backend{}

// NewBackend creates an empty recording backend.
func NewBackend() *Backend {
	return &Backend{mu: &sync.Mutex{}}
}

func (b *Backend) Type() renderer.RendererBackendType { return renderer.BackendTypeRecording }

func (b *Backend) AllocateTexture(desc target.TextureDescriptor) (target.Texture, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.allocs++
	if b.FailAllocAt > 0 && b.allocs == b.FailAllocAt {
		return nil, ErrInjected
	}
	tex := &Texture{desc: desc}
	b.Textures = append(b.Textures, tex)
	return tex, nil
}

// LiveTextures returns the number of allocated textures not yet released.
func (b *Backend) LiveTextures() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, t := range b.Textures {
		if !t.released {
			n++
		}
	}
	return n
}

func (b *Backend) ConfigureSurface(width, height int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Width, b.Height = width, height
}

func (b *Backend) SetPresentMode(mode renderer.PresentMode) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.PresentMode = mode
}

func (b *Backend) CreateBuffer(label string, usage renderer.BufferUsage, size uint64) (renderer.Buffer, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	buf := &Buffer{label: label, usage: usage, Data: make([]byte, size)}
	b.Buffers = append(b.Buffers, buf)
	return buf, nil
}

func (b *Backend) WriteBuffer(buf renderer.Buffer, offset uint64, data []byte) error {
	fb, ok := buf.(*Buffer)
	if !ok {
		return fmt.Errorf("renderertest: foreign buffer %T", buf)
	}
	if offset+uint64(len(data)) > uint64(len(fb.Data)) {
		return fmt.Errorf("renderertest: write of %d bytes at %d overflows %q (%d bytes)", len(data), offset, fb.label, len(fb.Data))
	}
	copy(fb.Data[offset:], data)
	return nil
}

func (b *Backend) CreateMesh(label string, vertexData []byte, vertexCount int, indexData []byte, indexCount int) (renderer.Mesh, error) {
	if len(vertexData) != vertexCount*renderer.VertexStride {
		return nil, fmt.Errorf("renderertest: mesh %q has %d vertex bytes for %d vertices", label, len(vertexData), vertexCount)
	}
	if len(indexData) != indexCount*4 {
		return nil, fmt.Errorf("renderertest: mesh %q has %d index bytes for %d indices", label, len(indexData), indexCount)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	m := &Mesh{label: label, vertexCount: vertexCount, indexCount: indexCount}
	b.Meshes = append(b.Meshes, m)
	return m, nil
}

func (b *Backend) RegisterPipeline(p pipeline.Pipeline) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	p.SetHandle(p.PipelineKey())
	b.Pipelines = append(b.Pipelines, p)
	return nil
}

func (b *Backend) SetGlobals(buf renderer.Buffer) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Globals = buf
}

func (b *Backend) SetTextures(textures [renderer.TextureUnitCount]target.Texture) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.textures = textures
}

func (b *Backend) BeginFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.FailBeginFrame {
		return ErrInjected
	}
	if b.inFrame {
		return errors.New("renderertest: frame already begun")
	}
	b.inFrame = true
	b.Frames = append(b.Frames, Frame{})
	return nil
}

func (b *Backend) BeginPass(desc renderer.PassDescriptor) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.inFrame {
		return errors.New("renderertest: pass outside frame")
	}
	if b.pass != nil {
		return errors.New("renderertest: pass already open")
	}
	if b.FailPass != "" && desc.Label == b.FailPass {
		return ErrInjected
	}
	if desc.Target != nil {
		if err := desc.Target.Validate(); err != nil {
			return err
		}
	}
	b.pass = &Pass{Descriptor: desc, Textures: b.textures}
	return nil
}

func (b *Backend) Draw(cmd renderer.DrawCommand) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.pass == nil {
		return errors.New("renderertest: draw outside pass")
	}
	if cmd.Mesh == nil || cmd.Mesh.Released() {
		return errors.New("renderertest: draw with released mesh")
	}
	b.pass.Draws = append(b.pass.Draws, cmd)
	return nil
}

func (b *Backend) EndPass() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.pass == nil {
		return errors.New("renderertest: no open pass")
	}
	f := &b.Frames[len(b.Frames)-1]
	f.Passes = append(f.Passes, *b.pass)
	b.pass = nil
	return nil
}

func (b *Backend) EndFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.pass != nil {
		return errors.New("renderertest: frame ended with open pass")
	}
	b.inFrame = false
	return nil
}

func (b *Backend) Present() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.Frames) > 0 {
		b.Frames[len(b.Frames)-1].Presented = true
	}
}

func (b *Backend) DiscardFrame() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.inFrame {
		return
	}
	b.pass = nil
	b.inFrame = false
	b.Frames[len(b.Frames)-1].Discarded = true
}

func (b *Backend) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Released = true
}

// LastFrame returns the most recently recorded frame.
func (b *Backend) LastFrame() Frame {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.Frames) == 0 {
		return Frame{}
	}
	return b.Frames[len(b.Frames)-1]
}

// PassLabels returns the labels of the passes in f, in order.
func (f Frame) PassLabels() []string {
	labels := make([]string, len(f.Passes))
	for i, p := range f.Passes {
		labels[i] = p.Descriptor.Label
	}
	return labels
}
