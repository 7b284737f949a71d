package renderer

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-view/engine/logging"
	"github.com/Carmen-Shannon/oxy-view/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-view/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-view/engine/renderer/target"
	"github.com/cogentcore/webgpu/wgpu"
)

const (
	wgpuPresentVSync    = wgpu.PresentModeFifo
	wgpuPresentUncapped = wgpu.PresentModeImmediate
)

var (
	// ErrNoFrame is returned by pass and draw calls made outside BeginFrame / EndFrame.
	ErrNoFrame = errors.New("wgpu: no frame in progress")
	// ErrNoPass is returned by Draw and EndPass outside BeginPass / EndPass.
	ErrNoPass = errors.New("wgpu: no render pass in progress")
	// ErrForeignResource is returned when a texture, buffer or mesh was not created by this backend.
	ErrForeignResource = errors.New("wgpu: resource not created by this backend")
)

// wgpuRendererBackendImpl is the WebGPU implementation of RendererBackend.
type wgpuRendererBackendImpl struct {
	mu *sync.Mutex

	instance      *wgpu.Instance
	adapter       *wgpu.Adapter
	device        *wgpu.Device
	queue         *wgpu.Queue
	surface       *wgpu.Surface
	surfaceFormat wgpu.TextureFormat
	alphaMode     wgpu.CompositeAlphaMode
	presentMode   wgpu.PresentMode
	width, height int

	forceFallbackAdapter bool

	layouts     [roleCount]*wgpu.BindGroupLayout
	globals     *wgpuBuffer
	globalGroup *wgpu.BindGroup

	textures     [TextureUnitCount]target.Texture
	placeholder  *wgpuTexture
	sampler      *wgpu.Sampler
	samplerKey   samplerKey
	textureGroup map[uint32]*wgpu.BindGroup

	frameEncoder *wgpu.CommandEncoder
	frameSurface *wgpu.Texture
	frameView    *wgpu.TextureView
	framePass    *wgpu.RenderPassEncoder
	passTextures *wgpu.BindGroup
}

var _ RendererBackend = &wgpuRendererBackendImpl{}

// NewWGPURendererBackend opens a WebGPU device on a compatible adapter and configures the surface described by
// surfaceDescriptor at width x height.
//
// Parameters:
//   - surfaceDescriptor: the platform surface, usually from the window
//   - width, height: the initial surface size in pixels
//   - options: a variadic list of WGPUBackendBuilderOption functions
//
// Returns:
//   - RendererBackend: the backend
//   - error: an adapter, device or layout failure
func NewWGPURendererBackend(surfaceDescriptor *wgpu.SurfaceDescriptor, width, height int, options ...WGPUBackendBuilderOption) (RendererBackend, error) {
	b := &wgpuRendererBackendImpl{
		mu:           &sync.Mutex{},
		presentMode:  wgpuPresentVSync,
		textureGroup: make(map[uint32]*wgpu.BindGroup),
	}
	for _, opt := range options {
		opt(b)
	}

	b.instance = wgpu.CreateInstance(nil)
	b.surface = b.instance.CreateSurface(surfaceDescriptor)

	a, err := b.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: b.forceFallbackAdapter,
		CompatibleSurface:    b.surface,
	})
	if err != nil {
		b.Release()
		return nil, fmt.Errorf("request adapter: %w", err)
	}
	b.adapter = a

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Main Device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: wgpu.DefaultLimits(),
		},
	})
	if err != nil {
		b.Release()
		return nil, fmt.Errorf("request device: %w", err)
	}
	b.device = d
	b.queue = d.GetQueue()

	capabilities := b.surface.GetCapabilities(b.adapter)
	if len(capabilities.Formats) == 0 {
		b.Release()
		return nil, errors.New("surface reports no formats")
	}
	b.surfaceFormat = capabilities.Formats[0]
	b.alphaMode = capabilities.AlphaModes[0]

	if err := b.createLayouts(); err != nil {
		b.Release()
		return nil, err
	}
	if b.placeholder, err = b.createTexture(target.TextureDescriptor{
		Label:  "placeholder",
		Width:  1,
		Height: 1,
		Format: target.FormatRGBAFloat,
	}); err != nil {
		b.Release()
		return nil, err
	}

	b.ConfigureSurface(width, height)
	logging.Info("wgpu device ready", "format", b.surfaceFormat, "width", width, "height", height)
	return b, nil
}

// createLayouts builds the one bind group layout per role that every pipeline shares, so bind groups are
// interchangeable between pipelines.
func (b *wgpuRendererBackendImpl) createLayouts() error {
	visibility := wgpu.ShaderStageVertex | wgpu.ShaderStageFragment

	textureEntries := make([]wgpu.BindGroupLayoutEntry, 0, TextureUnitCount+1)
	for unit := range TextureUnitCount {
		sampleType := wgpu.TextureSampleTypeFloat
		if TextureUnit(unit) == UnitDepth {
			sampleType = wgpu.TextureSampleTypeDepth
		}
		textureEntries = append(textureEntries, wgpu.BindGroupLayoutEntry{
			Binding:    uint32(unit),
			Visibility: visibility,
			Texture: wgpu.TextureBindingLayout{
				SampleType:    sampleType,
				ViewDimension: wgpu.TextureViewDimension2D,
			},
		})
	}
	textureEntries = append(textureEntries, wgpu.BindGroupLayoutEntry{
		Binding:    SamplerBinding,
		Visibility: visibility,
		Sampler:    wgpu.SamplerBindingLayout{Type: wgpu.SamplerBindingTypeFiltering},
	})

	descriptors := [roleCount]wgpu.BindGroupLayoutDescriptor{
		pipeline.RoleGlobals: {
			Label: "Globals Layout",
			Entries: []wgpu.BindGroupLayoutEntry{{
				Binding:    GlobalBufferBinding,
				Visibility: visibility,
				Buffer:     wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeUniform},
			}},
		},
		pipeline.RoleTextures: {
			Label:   "Texture Table Layout",
			Entries: textureEntries,
		},
		pipeline.RoleStorage: {
			Label: "Storage Layout",
			Entries: []wgpu.BindGroupLayoutEntry{{
				Binding:    0,
				Visibility: visibility,
				Buffer:     wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeReadOnlyStorage},
			}},
		},
	}
	for role, desc := range descriptors {
		layout, err := b.device.CreateBindGroupLayout(&desc)
		if err != nil {
			return fmt.Errorf("create %s bind group layout: %w", desc.Label, err)
		}
		b.layouts[role] = layout
	}
	return nil
}

func (b *wgpuRendererBackendImpl) Type() RendererBackendType {
	return BackendTypeWGPU
}

func (b *wgpuRendererBackendImpl) ConfigureSurface(width, height int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if width <= 0 || height <= 0 {
		return
	}
	b.width, b.height = width, height
	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      b.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: b.presentMode,
		AlphaMode:   b.alphaMode,
	})
}

func (b *wgpuRendererBackendImpl) SetPresentMode(mode PresentMode) {
	b.mu.Lock()
	b.presentMode = wgpuPresentVSync
	if mode == PresentModeUncapped {
		b.presentMode = wgpuPresentUncapped
	}
	width, height := b.width, b.height
	b.mu.Unlock()

	// Reconfigure so the new mode applies to the next acquired texture.
	b.ConfigureSurface(width, height)
}

func (b *wgpuRendererBackendImpl) AllocateTexture(desc target.TextureDescriptor) (target.Texture, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	tex, err := b.createTexture(desc)
	if err != nil {
		return nil, err
	}
	return tex, nil
}

func (b *wgpuRendererBackendImpl) CreateBuffer(label string, usage BufferUsage, size uint64) (Buffer, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var gpuUsage wgpu.BufferUsage
	switch usage {
	case BufferUsageUniform:
		gpuUsage = wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst
	case BufferUsageStorage:
		gpuUsage = wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst
	default:
		return nil, fmt.Errorf("buffer %s: unknown usage %d", label, usage)
	}

	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label + " Buffer",
		Size:  alignBufferSize(size),
		Usage: gpuUsage,
	})
	if err != nil {
		return nil, fmt.Errorf("create buffer %s: %w", label, err)
	}
	return &wgpuBuffer{label: label, usage: usage, size: size, buffer: buf}, nil
}

func (b *wgpuRendererBackendImpl) WriteBuffer(buf Buffer, offset uint64, data []byte) error {
	wb, ok := buf.(*wgpuBuffer)
	if !ok || wb.buffer == nil {
		return ErrForeignResource
	}
	if offset+uint64(len(data)) > wb.size {
		return fmt.Errorf("write %d bytes at %d into buffer %s of %d bytes", len(data), offset, wb.label, wb.size)
	}
	return b.queue.WriteBuffer(wb.buffer, offset, data)
}

func (b *wgpuRendererBackendImpl) CreateMesh(label string, vertexData []byte, vertexCount int, indexData []byte, indexCount int) (Mesh, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	m := &wgpuMesh{label: label, vertexCount: vertexCount, indexCount: indexCount}
	if len(vertexData) == 0 {
		return m, nil
	}

	vb, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label + " Vertex Buffer",
		Size:  alignBufferSize(uint64(len(vertexData))),
		Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create vertex buffer %s: %w", label, err)
	}
	m.vertices = vb
	if err := b.queue.WriteBuffer(vb, 0, padCopy(vertexData)); err != nil {
		m.Release()
		return nil, fmt.Errorf("upload vertices %s: %w", label, err)
	}

	if indexCount > 0 {
		ib, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: label + " Index Buffer",
			Size:  alignBufferSize(uint64(len(indexData))),
			Usage: wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			m.Release()
			return nil, fmt.Errorf("create index buffer %s: %w", label, err)
		}
		m.indices = ib
		if err := b.queue.WriteBuffer(ib, 0, padCopy(indexData)); err != nil {
			m.Release()
			return nil, fmt.Errorf("upload indices %s: %w", label, err)
		}
	}
	return m, nil
}

func (b *wgpuRendererBackendImpl) RegisterPipeline(p pipeline.Pipeline) error {
	vertexShader := p.Shader(shader.ShaderTypeVertex)
	fragmentShader := p.Shader(shader.ShaderTypeFragment)
	if vertexShader == nil || fragmentShader == nil {
		return errors.New("both vertex and fragment shaders must be set to create a render pipeline")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	vs, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          vertexShader.Key(),
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: vertexShader.Source()},
	})
	if err != nil {
		return err
	}
	defer vs.Release()
	fs, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          fragmentShader.Key(),
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: fragmentShader.Source()},
	})
	if err != nil {
		return err
	}
	defer fs.Release()

	roles := p.BindGroups()
	bindGroupLayouts := make([]*wgpu.BindGroupLayout, len(roles))
	for i, role := range roles {
		if role < 0 || int(role) >= roleCount {
			return fmt.Errorf("unknown bind group role %d", role)
		}
		bindGroupLayouts[i] = b.layouts[role]
	}
	pipelineLayout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            p.PipelineKey(),
		BindGroupLayouts: bindGroupLayouts,
	})
	if err != nil {
		return err
	}
	defer pipelineLayout.Release()

	targets := make([]wgpu.ColorTargetState, 0, len(p.ColorTargets()))
	for _, ct := range p.ColorTargets() {
		targets = append(targets, wgpu.ColorTargetState{
			Format:    b.textureFormat(ct.Format),
			Blend:     blendState(ct.Blend),
			WriteMask: wgpu.ColorWriteMaskAll,
		})
	}

	var depthStencil *wgpu.DepthStencilState
	if p.DepthFormat() != target.FormatUndefined {
		depthStencil = &wgpu.DepthStencilState{
			Format:            b.textureFormat(p.DepthFormat()),
			DepthWriteEnabled: p.DepthWriteEnabled(),
			DepthCompare:      compareFunction(p.DepthCompare()),
			StencilFront:      wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
			StencilBack:       wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
		}
	}

	created, err := b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  p.PipelineKey() + " Render Pipeline",
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     vs,
			EntryPoint: vertexShader.EntryPoint(),
			Buffers:    []wgpu.VertexBufferLayout{vertexLayout},
		},
		Fragment: &wgpu.FragmentState{
			Module:     fs,
			EntryPoint: fragmentShader.EntryPoint(),
			Targets:    targets,
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  primitiveTopology(p.Topology()),
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  cullMode(p.CullMode()),
		},
		DepthStencil: depthStencil,
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return err
	}

	p.SetHandle(created)
	return nil
}

func (b *wgpuRendererBackendImpl) SetGlobals(buf Buffer) {
	b.mu.Lock()
	defer b.mu.Unlock()

	wb, ok := buf.(*wgpuBuffer)
	if !ok {
		logging.Error("globals buffer not created by the wgpu backend", "label", buf.Label())
		return
	}
	if b.globalGroup != nil {
		b.globalGroup.Release()
		b.globalGroup = nil
	}
	group, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "Globals Bind Group",
		Layout: b.layouts[pipeline.RoleGlobals],
		Entries: []wgpu.BindGroupEntry{{
			Binding: GlobalBufferBinding,
			Buffer:  wb.buffer,
			Size:    wgpu.WholeSize,
		}},
	})
	if err != nil {
		logging.Error("create globals bind group", "err", err)
		return
	}
	b.globals = wb
	b.globalGroup = group
}

func (b *wgpuRendererBackendImpl) SetTextures(textures [TextureUnitCount]target.Texture) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.textures = textures
	for key, group := range b.textureGroup {
		group.Release()
		delete(b.textureGroup, key)
	}
}

func (b *wgpuRendererBackendImpl) BeginFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameSurface != nil {
		return errors.New("previous frame surface not yet presented")
	}

	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		return err
	}
	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return err
	}
	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		view.Release()
		surfaceTexture.Release()
		return err
	}

	b.frameEncoder = encoder
	b.frameSurface = surfaceTexture
	b.frameView = view
	return nil
}

func (b *wgpuRendererBackendImpl) BeginPass(desc PassDescriptor) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameEncoder == nil {
		return ErrNoFrame
	}
	if b.framePass != nil {
		return fmt.Errorf("begin %s: previous pass not ended", desc.Label)
	}

	loadOp := wgpu.LoadOpLoad
	if desc.ClearColor {
		loadOp = wgpu.LoadOpClear
	}
	clear := wgpu.Color{R: desc.ClearValue[0], G: desc.ClearValue[1], B: desc.ClearValue[2], A: desc.ClearValue[3]}

	pass := &wgpu.RenderPassDescriptor{Label: desc.Label}
	if desc.Target == nil {
		pass.ColorAttachments = []wgpu.RenderPassColorAttachment{{
			View:       b.frameView,
			LoadOp:     loadOp,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: clear,
		}}
	} else {
		for _, tex := range desc.Target.ColorAttachments() {
			wt, ok := tex.(*wgpuTexture)
			if !ok {
				return fmt.Errorf("%s color attachment: %w", desc.Target.Label(), ErrForeignResource)
			}
			pass.ColorAttachments = append(pass.ColorAttachments, wgpu.RenderPassColorAttachment{
				View:       wt.view,
				LoadOp:     loadOp,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: clear,
			})
		}
		if depth, readOnly := desc.Target.DepthAttachment(); depth != nil {
			wt, ok := depth.(*wgpuTexture)
			if !ok {
				return fmt.Errorf("%s depth attachment: %w", desc.Target.Label(), ErrForeignResource)
			}
			attachment := &wgpu.RenderPassDepthStencilAttachment{View: wt.view, DepthReadOnly: readOnly}
			if !readOnly {
				attachment.DepthLoadOp = wgpu.LoadOpLoad
				if desc.ClearDepth {
					attachment.DepthLoadOp = wgpu.LoadOpClear
				}
				attachment.DepthStoreOp = wgpu.StoreOpStore
				attachment.DepthClearValue = 1
			}
			pass.DepthStencilAttachment = attachment
		}
	}

	textures, err := b.passTextureGroup(desc.Target)
	if err != nil {
		return fmt.Errorf("begin %s: %w", desc.Label, err)
	}
	b.passTextures = textures
	b.framePass = b.frameEncoder.BeginRenderPass(pass)
	return nil
}

func (b *wgpuRendererBackendImpl) Draw(cmd DrawCommand) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.framePass == nil {
		return ErrNoPass
	}
	renderPipeline, ok := cmd.Pipeline.Handle().(*wgpu.RenderPipeline)
	if !ok {
		return fmt.Errorf("pipeline %q is not registered", cmd.Pipeline.PipelineKey())
	}
	mesh, ok := cmd.Mesh.(*wgpuMesh)
	if !ok {
		return fmt.Errorf("mesh: %w", ErrForeignResource)
	}
	if mesh.vertices == nil || cmd.InstanceCount == 0 {
		return nil
	}

	b.framePass.SetPipeline(renderPipeline)
	for i, role := range cmd.Pipeline.BindGroups() {
		group, err := b.groupFor(role, cmd)
		if err != nil {
			return fmt.Errorf("draw %q: %w", cmd.Pipeline.PipelineKey(), err)
		}
		b.framePass.SetBindGroup(uint32(i), group, nil)
	}

	b.framePass.SetVertexBuffer(0, mesh.vertices, 0, wgpu.WholeSize)
	if mesh.indices != nil {
		b.framePass.SetIndexBuffer(mesh.indices, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
		b.framePass.DrawIndexed(uint32(mesh.indexCount), cmd.InstanceCount, 0, 0, 0)
		return nil
	}
	b.framePass.Draw(uint32(mesh.vertexCount), cmd.InstanceCount, 0, 0)
	return nil
}

// groupFor returns the bind group bound for role in the current draw.
func (b *wgpuRendererBackendImpl) groupFor(role pipeline.BindGroupRole, cmd DrawCommand) (*wgpu.BindGroup, error) {
	switch role {
	case pipeline.RoleGlobals:
		if b.globalGroup == nil {
			return nil, errors.New("globals buffer not set")
		}
		return b.globalGroup, nil
	case pipeline.RoleTextures:
		if b.passTextures == nil {
			return nil, errors.New("texture table not set")
		}
		return b.passTextures, nil
	case pipeline.RoleStorage:
		wb, ok := cmd.Storage.(*wgpuBuffer)
		if !ok || wb.buffer == nil {
			return nil, errors.New("storage buffer missing")
		}
		return b.storageGroup(wb)
	default:
		return nil, fmt.Errorf("unknown bind group role %d", role)
	}
}

func (b *wgpuRendererBackendImpl) EndPass() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.framePass == nil {
		return ErrNoPass
	}
	b.framePass.End()
	b.framePass.Release()
	b.framePass = nil
	b.passTextures = nil
	return nil
}

func (b *wgpuRendererBackendImpl) EndFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameEncoder == nil {
		return ErrNoFrame
	}
	if b.framePass != nil {
		b.framePass.End()
		b.framePass.Release()
		b.framePass = nil
		b.passTextures = nil
	}

	commandBuffer, err := b.frameEncoder.Finish(nil)
	b.frameEncoder.Release()
	b.frameEncoder = nil
	if err != nil {
		b.releaseFrameSurface()
		return err
	}

	b.queue.Submit(commandBuffer)
	commandBuffer.Release()
	return nil
}

func (b *wgpuRendererBackendImpl) Present() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameSurface == nil {
		return
	}
	b.surface.Present()
	b.releaseFrameSurface()
}

func (b *wgpuRendererBackendImpl) DiscardFrame() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.framePass != nil {
		b.framePass.End()
		b.framePass.Release()
		b.framePass = nil
		b.passTextures = nil
	}
	if b.frameEncoder != nil {
		b.frameEncoder.Release()
		b.frameEncoder = nil
	}
	b.releaseFrameSurface()
}

func (b *wgpuRendererBackendImpl) releaseFrameSurface() {
	if b.frameView != nil {
		b.frameView.Release()
		b.frameView = nil
	}
	if b.frameSurface != nil {
		b.frameSurface.Release()
		b.frameSurface = nil
	}
}

func (b *wgpuRendererBackendImpl) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.releaseFrameSurface()
	for key, group := range b.textureGroup {
		group.Release()
		delete(b.textureGroup, key)
	}
	if b.globalGroup != nil {
		b.globalGroup.Release()
		b.globalGroup = nil
	}
	if b.sampler != nil {
		b.sampler.Release()
		b.sampler = nil
	}
	if b.placeholder != nil {
		b.placeholder.Release()
		b.placeholder = nil
	}
	for i, layout := range b.layouts {
		if layout != nil {
			layout.Release()
			b.layouts[i] = nil
		}
	}
	b.queue = nil
	if b.device != nil {
		b.device.Release()
		b.device = nil
	}
	if b.adapter != nil {
		b.adapter.Release()
		b.adapter = nil
	}
	if b.surface != nil {
		b.surface.Release()
		b.surface = nil
	}
	if b.instance != nil {
		b.instance.Release()
		b.instance = nil
	}
}
