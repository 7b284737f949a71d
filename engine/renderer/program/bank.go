// Package program compiles the render pipelines of the deferred renderer: the G-buffer pass, the point light
// volumes, the boundary overlay, and one presentation program per viewable channel.
package program

import (
	"fmt"
	"io/fs"
	"path"

	"github.com/Carmen-Shannon/oxy-view/engine/camera"
	"github.com/Carmen-Shannon/oxy-view/engine/instance"
	"github.com/Carmen-Shannon/oxy-view/engine/light"
	"github.com/Carmen-Shannon/oxy-view/engine/renderer"
	"github.com/Carmen-Shannon/oxy-view/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-view/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-view/engine/renderer/target"
)

// Pipeline keys of the non-channel programs.
const (
	GeometryKey   = instance.DefaultPipelineKey
	PointLightKey = light.DefaultPipelineKey
	BoundaryKey   = "boundary"
)

// gbufferColorTargets is the number of G-buffer pass outputs: the back-buffer plus four channels.
const gbufferColorTargets = target.ChannelCount + 1

// bank is the implementation of the Bank interface.
type bank struct {
	fsys         fs.FS
	root         string
	registry     map[string]string
	surfaceBlend pipeline.BlendMode

	channels [ChannelCount]pipeline.Pipeline
	geometry pipeline.Pipeline
	light    pipeline.Pipeline
	boundary pipeline.Pipeline
}

// Bank is the fixed table of compiled programs.
//
// Every channel program pairs the shared full-screen vertex stage with the fragment stage named after the channel.
// All of them read the same six G-buffer texture units and the GlobalBuffer block, so switching channels only
// changes which pipeline the present pass draws with.
type Bank interface {
	// Bind returns the pipeline key of the channel's presentation program.
	//
	// Parameters:
	//   - ch: the channel
	//
	// Returns:
	//   - string: the pipeline key
	//   - error: ErrUnknownChannel
	Bind(ch Channel) (string, error)

	// Channel returns the presentation pipeline of ch, or nil for an unknown channel.
	//
	// Parameters:
	//   - ch: the channel
	//
	// Returns:
	//   - pipeline.Pipeline: the pipeline
	Channel(ch Channel) pipeline.Pipeline

	// Geometry returns the G-buffer pass pipeline.
	//
	// Returns:
	//   - pipeline.Pipeline: the pipeline
	Geometry() pipeline.Pipeline

	// Light returns the point light volume pipeline.
	//
	// Returns:
	//   - pipeline.Pipeline: the pipeline
	Light() pipeline.Pipeline

	// Boundary returns the boundary edge overlay pipeline.
	//
	// Returns:
	//   - pipeline.Pipeline: the pipeline
	Boundary() pipeline.Pipeline

	// Pipelines returns every pipeline of the bank, for registration with a renderer.
	//
	// Returns:
	//   - []pipeline.Pipeline: the pipelines
	Pipelines() []pipeline.Pipeline
}

var _ Bank = &bank{}

// NewBank compiles every program from the WGSL tree in fsys.
//
// Parameters:
//   - fsys: the file system holding the shader tree
//   - options: a variadic list of BankBuilderOption functions
//
// Returns:
//   - Bank: the compiled bank
//   - error: a shader load error or a binding that does not match the shared texture table
func NewBank(fsys fs.FS, options ...BankBuilderOption) (Bank, error) {
	b := &bank{
		fsys: fsys,
		root: "shaders",
		registry: map[string]string{
			"global_buffer.wgsl": camera.GPUGlobalUniformSource,
			"instance.wgsl":      instance.GPUInstanceSource,
			"point_light.wgsl":   light.GPUPointLightSource,
		},
	}
	for _, opt := range options {
		opt(b)
	}

	vert, err := b.load("deferred/main.wgsl", shader.ShaderTypeVertex)
	if err != nil {
		return nil, err
	}
	for ch := Channel(0); ch < ChannelCount; ch++ {
		frag, err := b.load("deferred/"+ch.String()+".wgsl", shader.ShaderTypeFragment)
		if err != nil {
			return nil, err
		}
		if err := checkTextureTable(frag); err != nil {
			return nil, err
		}
		b.channels[ch] = pipeline.NewPipeline("deferred/"+ch.String(),
			pipeline.WithVertexShader(vert),
			pipeline.WithFragmentShader(frag),
			pipeline.WithColorTargets(pipeline.ColorTarget{Format: target.FormatSurface, Blend: pipeline.BlendReplace}),
			pipeline.WithCullMode(pipeline.CullNone),
			pipeline.WithBindGroups(pipeline.RoleGlobals, pipeline.RoleTextures),
		)
	}

	if b.geometry, err = b.geometryPipeline(); err != nil {
		return nil, err
	}
	if b.light, err = b.lightPipeline(); err != nil {
		return nil, err
	}
	if b.boundary, err = b.boundaryPipeline(); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *bank) load(name string, shaderType shader.ShaderType) (shader.Shader, error) {
	opts := []shader.ShaderBuilderOption{shader.WithIncludePaths(b.root)}
	for inc, src := range b.registry {
		opts = append(opts, shader.WithInclude(inc, src))
	}
	s, err := shader.NewShader(b.fsys, path.Join(b.root, name), shaderType, opts...)
	if err != nil {
		return nil, err
	}
	if shaderType == shader.ShaderTypeVertex && len(s.Bindings()) == 0 {
		return s, nil
	}
	if err := s.BindBlock(renderer.GlobalBufferBlock, renderer.GlobalBufferBinding); err != nil {
		return nil, err
	}
	return s, nil
}

// checkTextureTable verifies that s declares every G-buffer texture at its unit.
func checkTextureTable(s shader.Shader) error {
	for u := renderer.TextureUnit(0); u < renderer.TextureUnitCount; u++ {
		if err := s.BindTexture(u.Name(), int(u)); err != nil {
			return err
		}
	}
	return nil
}

func (b *bank) geometryPipeline() (pipeline.Pipeline, error) {
	vert, err := b.load("gbuffer.wgsl", shader.ShaderTypeVertex)
	if err != nil {
		return nil, err
	}
	frag, err := b.load("gbuffer.wgsl", shader.ShaderTypeFragment)
	if err != nil {
		return nil, err
	}
	targets := make([]pipeline.ColorTarget, gbufferColorTargets)
	for i := range targets {
		targets[i] = pipeline.ColorTarget{Format: target.FormatRGBAFloat, Blend: pipeline.BlendReplace}
	}
	return pipeline.NewPipeline(GeometryKey,
		pipeline.WithVertexShader(vert),
		pipeline.WithFragmentShader(frag),
		pipeline.WithColorTargets(targets...),
		pipeline.WithDepth(target.FormatDepth32Float, pipeline.CompareLess, true),
		pipeline.WithCullMode(pipeline.CullBack),
		pipeline.WithBindGroups(pipeline.RoleGlobals, pipeline.RoleStorage),
	), nil
}

func (b *bank) lightPipeline() (pipeline.Pipeline, error) {
	vert, err := b.load("point_light.wgsl", shader.ShaderTypeVertex)
	if err != nil {
		return nil, err
	}
	frag, err := b.load("point_light.wgsl", shader.ShaderTypeFragment)
	if err != nil {
		return nil, err
	}
	if err := checkTextureTable(frag); err != nil {
		return nil, err
	}
	return pipeline.NewPipeline(PointLightKey,
		pipeline.WithVertexShader(vert),
		pipeline.WithFragmentShader(frag),
		pipeline.WithColorTargets(pipeline.ColorTarget{Format: target.FormatRGBAFloat, Blend: pipeline.BlendAdditive}),
		pipeline.WithDepth(target.FormatDepth32Float, pipeline.CompareGreater, false),
		pipeline.WithCullMode(pipeline.CullFront),
		pipeline.WithBindGroups(pipeline.RoleGlobals, pipeline.RoleTextures, pipeline.RoleStorage),
	), nil
}

func (b *bank) boundaryPipeline() (pipeline.Pipeline, error) {
	vert, err := b.load("boundary.wgsl", shader.ShaderTypeVertex)
	if err != nil {
		return nil, err
	}
	frag, err := b.load("boundary.wgsl", shader.ShaderTypeFragment)
	if err != nil {
		return nil, err
	}
	return pipeline.NewPipeline(BoundaryKey,
		pipeline.WithVertexShader(vert),
		pipeline.WithFragmentShader(frag),
		pipeline.WithColorTargets(pipeline.ColorTarget{Format: target.FormatSurface, Blend: b.surfaceBlend}),
		pipeline.WithCullMode(pipeline.CullNone),
		pipeline.WithTopology(pipeline.TopologyLineList),
		pipeline.WithBindGroups(pipeline.RoleGlobals, pipeline.RoleStorage),
	), nil
}

func (b *bank) Bind(ch Channel) (string, error) {
	if !ch.Valid() {
		return "", fmt.Errorf("bind %s: %w", ch, ErrUnknownChannel)
	}
	return b.channels[ch].PipelineKey(), nil
}

func (b *bank) Channel(ch Channel) pipeline.Pipeline {
	if !ch.Valid() {
		return nil
	}
	return b.channels[ch]
}

func (b *bank) Geometry() pipeline.Pipeline {
	return b.geometry
}

func (b *bank) Light() pipeline.Pipeline {
	return b.light
}

func (b *bank) Boundary() pipeline.Pipeline {
	return b.boundary
}

func (b *bank) Pipelines() []pipeline.Pipeline {
	out := make([]pipeline.Pipeline, 0, ChannelCount+3)
	out = append(out, b.geometry, b.light)
	out = append(out, b.channels[:]...)
	return append(out, b.boundary)
}
