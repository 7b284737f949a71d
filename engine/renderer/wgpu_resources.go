package renderer

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-view/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-view/engine/renderer/target"
	"github.com/cogentcore/webgpu/wgpu"
)

// roleCount is the number of pipeline.BindGroupRole values.
const roleCount = int(pipeline.RoleStorage) + 1

// vertexLayout is the interleaved position/normal layout shared by every mesh.
var vertexLayout = wgpu.VertexBufferLayout{
	ArrayStride: VertexStride,
	StepMode:    wgpu.VertexStepModeVertex,
	Attributes: []wgpu.VertexAttribute{
		{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
		{Format: wgpu.VertexFormatFloat32x3, Offset: 12, ShaderLocation: 1},
	},
}

// wgpuTexture is a render target texture with its default view.
type wgpuTexture struct {
	desc     target.TextureDescriptor
	texture  *wgpu.Texture
	view     *wgpu.TextureView
	released bool
}

var _ target.Texture = &wgpuTexture{}

func (t *wgpuTexture) Descriptor() target.TextureDescriptor { return t.desc }
func (t *wgpuTexture) Released() bool                       { return t.released }

func (t *wgpuTexture) Release() {
	if t.released {
		return
	}
	t.released = true
	if t.view != nil {
		t.view.Release()
		t.view = nil
	}
	if t.texture != nil {
		t.texture.Release()
		t.texture = nil
	}
}

// wgpuBuffer is a uniform or storage buffer. group caches the storage bind group built on first draw.
type wgpuBuffer struct {
	label  string
	usage  BufferUsage
	size   uint64
	buffer *wgpu.Buffer
	group  *wgpu.BindGroup
}

var _ Buffer = &wgpuBuffer{}

func (b *wgpuBuffer) Label() string { return b.label }
func (b *wgpuBuffer) Size() uint64  { return b.size }

func (b *wgpuBuffer) Release() {
	if b.group != nil {
		b.group.Release()
		b.group = nil
	}
	if b.buffer != nil {
		b.buffer.Release()
		b.buffer = nil
	}
}

// wgpuMesh holds the vertex buffer and the optional index buffer of an uploaded mesh.
type wgpuMesh struct {
	label       string
	vertexCount int
	indexCount  int
	vertices    *wgpu.Buffer
	indices     *wgpu.Buffer
	released    bool
}

var _ Mesh = &wgpuMesh{}

func (m *wgpuMesh) Label() string    { return m.label }
func (m *wgpuMesh) VertexCount() int { return m.vertexCount }
func (m *wgpuMesh) IndexCount() int  { return m.indexCount }
func (m *wgpuMesh) Released() bool   { return m.released }

func (m *wgpuMesh) Release() {
	m.released = true
	if m.vertices != nil {
		m.vertices.Release()
		m.vertices = nil
	}
	if m.indices != nil {
		m.indices.Release()
		m.indices = nil
	}
}

// samplerKey identifies the sampler state of the texture table.
type samplerKey struct {
	wrap   target.WrapMode
	filter target.FilterMode
}

// createTexture allocates a texture usable as both render attachment and sampled texture. Caller must hold the
// mutex.
func (b *wgpuRendererBackendImpl) createTexture(desc target.TextureDescriptor) (*wgpuTexture, error) {
	if desc.Width <= 0 || desc.Height <= 0 {
		return nil, fmt.Errorf("allocate %s: invalid size", desc)
	}
	format := b.textureFormat(desc.Format)
	if format == wgpu.TextureFormatUndefined {
		return nil, fmt.Errorf("allocate %s: unsupported format", desc)
	}

	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: desc.Label,
		Size: wgpu.Extent3D{
			Width:              uint32(desc.Width),
			Height:             uint32(desc.Height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        format,
		Usage:         wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageTextureBinding,
	})
	if err != nil {
		return nil, fmt.Errorf("allocate %s: %w", desc, err)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, fmt.Errorf("view %s: %w", desc, err)
	}
	return &wgpuTexture{desc: desc, texture: tex, view: view}, nil
}

// textureFormat maps a target format onto the WebGPU format. RGBAFloat is stored as 16-bit floats, which are
// filterable without extra device features.
func (b *wgpuRendererBackendImpl) textureFormat(f target.Format) wgpu.TextureFormat {
	switch f {
	case target.FormatRGBAFloat:
		return wgpu.TextureFormatRGBA16Float
	case target.FormatDepth32Float:
		return wgpu.TextureFormatDepth32Float
	case target.FormatSurface:
		return b.surfaceFormat
	default:
		return wgpu.TextureFormatUndefined
	}
}

// passTextureGroup returns the texture table bind group for a pass rendering into fb. Textures attached to fb
// as color targets are swapped for a 1x1 placeholder so no texture is read and written by the same pass. A
// target with writable depth gets no texture group. Caller must hold the mutex.
func (b *wgpuRendererBackendImpl) passTextureGroup(fb target.Framebuffer) (*wgpu.BindGroup, error) {
	for _, tex := range b.textures {
		if tex == nil {
			return nil, nil
		}
	}
	if fb != nil {
		if depth, readOnly := fb.DepthAttachment(); depth != nil && !readOnly {
			return nil, nil
		}
	}

	mask := placeholderMask(b.textures, fb)
	if group, ok := b.textureGroup[mask]; ok {
		return group, nil
	}

	sampler, err := b.textureSampler()
	if err != nil {
		return nil, err
	}
	entries := make([]wgpu.BindGroupEntry, 0, TextureUnitCount+1)
	for unit, tex := range b.textures {
		view := b.placeholder.view
		if mask&(1<<unit) == 0 {
			wt, ok := tex.(*wgpuTexture)
			if !ok || wt.view == nil {
				return nil, fmt.Errorf("texture unit %s: %w", TextureUnit(unit).Name(), ErrForeignResource)
			}
			view = wt.view
		}
		entries = append(entries, wgpu.BindGroupEntry{Binding: uint32(unit), TextureView: view})
	}
	entries = append(entries, wgpu.BindGroupEntry{Binding: SamplerBinding, Sampler: sampler})

	group, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   "Texture Table Bind Group",
		Layout:  b.layouts[pipeline.RoleTextures],
		Entries: entries,
	})
	if err != nil {
		return nil, fmt.Errorf("create texture table bind group: %w", err)
	}
	b.textureGroup[mask] = group
	return group, nil
}

// placeholderMask returns a bit per texture unit that is one of fb's color attachments.
func placeholderMask(textures [TextureUnitCount]target.Texture, fb target.Framebuffer) uint32 {
	if fb == nil {
		return 0
	}
	var mask uint32
	for _, attached := range fb.ColorAttachments() {
		for unit, tex := range textures {
			if tex != nil && tex == attached {
				mask |= 1 << unit
			}
		}
	}
	return mask
}

// textureSampler returns the sampler matching the back-buffer's wrap and filter modes. Caller must hold the
// mutex.
func (b *wgpuRendererBackendImpl) textureSampler() (*wgpu.Sampler, error) {
	desc := b.textures[UnitBackBuffer].Descriptor()
	key := samplerKey{wrap: desc.Wrap, filter: desc.Filter}
	if b.sampler != nil && b.samplerKey == key {
		return b.sampler, nil
	}

	address := wgpu.AddressModeClampToEdge
	if key.wrap == target.WrapRepeat {
		address = wgpu.AddressModeRepeat
	}
	filter := wgpu.FilterModeNearest
	if key.filter == target.FilterLinear {
		filter = wgpu.FilterModeLinear
	}
	samp, err := b.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         "Texture Table Sampler",
		AddressModeU:  address,
		AddressModeV:  address,
		AddressModeW:  address,
		MagFilter:     filter,
		MinFilter:     filter,
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		LodMinClamp:   0,
		LodMaxClamp:   32,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("create sampler: %w", err)
	}
	if b.sampler != nil {
		b.sampler.Release()
	}
	b.sampler = samp
	b.samplerKey = key
	return samp, nil
}

// storageGroup returns the storage bind group of buf, creating it on first use. Caller must hold the mutex.
func (b *wgpuRendererBackendImpl) storageGroup(buf *wgpuBuffer) (*wgpu.BindGroup, error) {
	if buf.group != nil {
		return buf.group, nil
	}
	group, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  buf.label + " Bind Group",
		Layout: b.layouts[pipeline.RoleStorage],
		Entries: []wgpu.BindGroupEntry{{
			Binding: 0,
			Buffer:  buf.buffer,
			Size:    wgpu.WholeSize,
		}},
	})
	if err != nil {
		return nil, fmt.Errorf("create %s bind group: %w", buf.label, err)
	}
	buf.group = group
	return group, nil
}

func blendState(mode pipeline.BlendMode) *wgpu.BlendState {
	switch mode {
	case pipeline.BlendAdditive:
		additive := wgpu.BlendComponent{
			Operation: wgpu.BlendOperationAdd,
			SrcFactor: wgpu.BlendFactorOne,
			DstFactor: wgpu.BlendFactorOne,
		}
		return &wgpu.BlendState{Color: additive, Alpha: additive}
	case pipeline.BlendAlpha:
		return &wgpu.BlendState{
			Color: wgpu.BlendComponent{
				Operation: wgpu.BlendOperationAdd,
				SrcFactor: wgpu.BlendFactorSrcAlpha,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
			},
			Alpha: wgpu.BlendComponent{
				Operation: wgpu.BlendOperationAdd,
				SrcFactor: wgpu.BlendFactorOne,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
			},
		}
	default:
		return nil
	}
}

func compareFunction(c pipeline.CompareFunc) wgpu.CompareFunction {
	switch c {
	case pipeline.CompareLessEqual:
		return wgpu.CompareFunctionLessEqual
	case pipeline.CompareGreater:
		return wgpu.CompareFunctionGreater
	case pipeline.CompareGreaterEqual:
		return wgpu.CompareFunctionGreaterEqual
	case pipeline.CompareAlways:
		return wgpu.CompareFunctionAlways
	default:
		return wgpu.CompareFunctionLess
	}
}

func cullMode(m pipeline.CullMode) wgpu.CullMode {
	switch m {
	case pipeline.CullBack:
		return wgpu.CullModeBack
	case pipeline.CullFront:
		return wgpu.CullModeFront
	default:
		return wgpu.CullModeNone
	}
}

func primitiveTopology(t pipeline.Topology) wgpu.PrimitiveTopology {
	if t == pipeline.TopologyLineList {
		return wgpu.PrimitiveTopologyLineList
	}
	return wgpu.PrimitiveTopologyTriangleList
}

// alignBufferSize rounds size up to the 4-byte multiple queue writes require.
func alignBufferSize(size uint64) uint64 {
	if size < 4 {
		return 4
	}
	return (size + 3) &^ 3
}

// padCopy returns data zero-padded to a 4-byte multiple, or data itself when already aligned.
func padCopy(data []byte) []byte {
	if len(data)%4 == 0 {
		return data
	}
	out := make([]byte, alignBufferSize(uint64(len(data))))
	copy(out, data)
	return out
}
