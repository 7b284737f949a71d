package pipeline

import (
	"github.com/Carmen-Shannon/oxy-view/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-view/engine/renderer/target"
)

// PipelineBuilderOption is a functional option used to configure a Pipeline during construction.
type PipelineBuilderOption func(*pipeline)

// WithVertexShader sets the vertex shader for this pipeline.
//
// Parameters:
//   - s: the vertex shader to use for this pipeline
//
// Returns:
//   - PipelineBuilderOption: a function that sets the vertex shader for this pipeline
func WithVertexShader(s shader.Shader) PipelineBuilderOption {
	return func(p *pipeline) {
		p.vertexShader = s
	}
}

// WithFragmentShader sets the fragment shader for this pipeline.
//
// Parameters:
//   - s: the fragment shader to use for this pipeline
//
// Returns:
//   - PipelineBuilderOption: a function that sets the fragment shader for this pipeline
func WithFragmentShader(s shader.Shader) PipelineBuilderOption {
	return func(p *pipeline) {
		p.fragmentShader = s
	}
}

// WithColorTargets replaces the color outputs.
//
// Parameters:
//   - targets: the color outputs in @location order
//
// Returns:
//   - PipelineBuilderOption: a function that sets the color targets
func WithColorTargets(targets ...ColorTarget) PipelineBuilderOption {
	return func(p *pipeline) {
		p.colorTargets = append([]ColorTarget(nil), targets...)
	}
}

// WithDepth enables a depth attachment with the given comparison and write state.
//
// Parameters:
//   - format: the depth format
//   - compare: the depth test function
//   - write: whether passing fragments write depth
//
// Returns:
//   - PipelineBuilderOption: a function that sets the depth state
func WithDepth(format target.Format, compare CompareFunc, write bool) PipelineBuilderOption {
	return func(p *pipeline) {
		p.depthFormat = format
		p.depthCompare = compare
		p.depthWriteEnabled = write
	}
}

// WithCullMode sets the face culling mode for this pipeline.
//
// Parameters:
//   - mode: the cull mode
//
// Returns:
//   - PipelineBuilderOption: a function that sets the cull mode
func WithCullMode(mode CullMode) PipelineBuilderOption {
	return func(p *pipeline) {
		p.cullMode = mode
	}
}

// WithTopology sets the primitive topology for this pipeline.
//
// Parameters:
//   - topology: the primitive topology
//
// Returns:
//   - PipelineBuilderOption: a function that sets the topology
func WithTopology(topology Topology) PipelineBuilderOption {
	return func(p *pipeline) {
		p.topology = topology
	}
}

// WithBindGroups sets the resource groups in @group order.
//
// Parameters:
//   - roles: the resource groups
//
// Returns:
//   - PipelineBuilderOption: a function that sets the bind groups
func WithBindGroups(roles ...BindGroupRole) PipelineBuilderOption {
	return func(p *pipeline) {
		p.bindGroups = append([]BindGroupRole(nil), roles...)
	}
}
