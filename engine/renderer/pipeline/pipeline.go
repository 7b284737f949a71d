package pipeline

import (
	"github.com/Carmen-Shannon/oxy-view/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-view/engine/renderer/target"
)

// CompareFunc is the depth comparison used by the depth test.
type CompareFunc int

const (
	CompareLess CompareFunc = iota
	CompareLessEqual
	CompareGreater
	CompareGreaterEqual
	CompareAlways
)

// CullMode selects which triangle faces are discarded.
type CullMode int

const (
	CullNone CullMode = iota
	CullBack
	CullFront
)

// Topology is the primitive topology of the pipeline.
type Topology int

const (
	TopologyTriangleList Topology = iota
	TopologyLineList
)

// BlendMode selects the color blend equation of a color target.
type BlendMode int

const (
	// BlendReplace writes the source color.
	BlendReplace BlendMode = iota
	// BlendAdditive accumulates: destination += source.
	BlendAdditive
	// BlendAlpha is standard source-over alpha blending.
	BlendAlpha
)

// BindGroupRole names a resource group the backend binds for a draw. The position of a role in
// Pipeline.BindGroups is its @group index in the pipeline's shaders.
type BindGroupRole int

const (
	// RoleGlobals is the GlobalBuffer uniform block.
	RoleGlobals BindGroupRole = iota
	// RoleTextures is the G-buffer texture table plus its sampler.
	RoleTextures
	// RoleStorage is the per-draw storage buffer (instances or lights).
	RoleStorage
)

// ColorTarget is one color output of the pipeline.
type ColorTarget struct {
	Format target.Format
	Blend  BlendMode
}

// pipeline is the implementation of the Pipeline interface.
type pipeline struct {
	pipelineKey string

	vertexShader, fragmentShader shader.Shader

	// handle is the backend's compiled pipeline object.
	handle any

	colorTargets      []ColorTarget
	depthFormat       target.Format
	depthCompare      CompareFunc
	depthWriteEnabled bool
	cullMode          CullMode
	topology          Topology
	bindGroups        []BindGroupRole
}

// Pipeline describes a render pipeline: its shader stages, fixed-function state, output formats and the
// resource groups it expects in @group order. The backend compiles it on registration and stores the compiled
// object with SetHandle.
type Pipeline interface {
	// PipelineKey retrieves the unique key of this pipeline.
	//
	// Returns:
	//   - string: the pipeline key
	PipelineKey() string

	// Shader returns the shader for a stage, or nil.
	//
	// Parameters:
	//   - shaderType: the stage
	//
	// Returns:
	//   - shader.Shader: the stage's shader or nil
	Shader(shaderType shader.ShaderType) shader.Shader

	// Handle returns the backend's compiled pipeline, or nil before registration.
	//
	// Returns:
	//   - any: the backend pipeline object
	Handle() any

	// SetHandle stores the backend's compiled pipeline.
	//
	// Parameters:
	//   - h: the backend pipeline object
	SetHandle(h any)

	// ColorTargets returns the color outputs in @location order.
	//
	// Returns:
	//   - []ColorTarget: the color outputs
	ColorTargets() []ColorTarget

	// DepthFormat returns the depth attachment format, or target.FormatUndefined for no depth.
	//
	// Returns:
	//   - target.Format: the depth format
	DepthFormat() target.Format

	// DepthCompare returns the depth test function.
	//
	// Returns:
	//   - CompareFunc: the comparison
	DepthCompare() CompareFunc

	// DepthWriteEnabled reports whether passing fragments write depth.
	//
	// Returns:
	//   - bool: true if depth writes are enabled
	DepthWriteEnabled() bool

	// CullMode returns the face culling mode.
	//
	// Returns:
	//   - CullMode: the cull mode
	CullMode() CullMode

	// Topology returns the primitive topology.
	//
	// Returns:
	//   - Topology: the topology
	Topology() Topology

	// BindGroups returns the resource groups in @group order.
	//
	// Returns:
	//   - []BindGroupRole: the roles
	BindGroups() []BindGroupRole

	// GroupIndex returns the @group index of role, or -1 if the pipeline does not use it.
	//
	// Parameters:
	//   - role: the resource group
	//
	// Returns:
	//   - int: the group index or -1
	GroupIndex(role BindGroupRole) int
}

var _ Pipeline = &pipeline{}

// NewPipeline creates a pipeline with one surface color target, no depth, back-face culling, a triangle list,
// and the globals group only.
//
// Parameters:
//   - pipelineKey: the unique key for the pipeline
//   - opts: a variadic list of PipelineBuilderOption functions to configure the pipeline
//
// Returns:
//   - Pipeline: the configured pipeline
func NewPipeline(pipelineKey string, opts ...PipelineBuilderOption) Pipeline {
	p := &pipeline{
		pipelineKey:       pipelineKey,
		colorTargets:      []ColorTarget{{Format: target.FormatSurface, Blend: BlendReplace}},
		depthFormat:       target.FormatUndefined,
		depthCompare:      CompareLess,
		depthWriteEnabled: false,
		cullMode:          CullBack,
		topology:          TopologyTriangleList,
		bindGroups:        []BindGroupRole{RoleGlobals},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *pipeline) PipelineKey() string {
	return p.pipelineKey
}

func (p *pipeline) Shader(shaderType shader.ShaderType) shader.Shader {
	switch shaderType {
	case shader.ShaderTypeVertex:
		return p.vertexShader
	case shader.ShaderTypeFragment:
		return p.fragmentShader
	default:
		return nil
	}
}

func (p *pipeline) Handle() any {
	return p.handle
}

func (p *pipeline) SetHandle(h any) {
	p.handle = h
}

func (p *pipeline) ColorTargets() []ColorTarget {
	return p.colorTargets
}

func (p *pipeline) DepthFormat() target.Format {
	return p.depthFormat
}

func (p *pipeline) DepthCompare() CompareFunc {
	return p.depthCompare
}

func (p *pipeline) DepthWriteEnabled() bool {
	return p.depthWriteEnabled
}

func (p *pipeline) CullMode() CullMode {
	return p.cullMode
}

func (p *pipeline) Topology() Topology {
	return p.topology
}

func (p *pipeline) BindGroups() []BindGroupRole {
	return p.bindGroups
}

func (p *pipeline) GroupIndex(role BindGroupRole) int {
	for i, r := range p.bindGroups {
		if r == role {
			return i
		}
	}
	return -1
}
