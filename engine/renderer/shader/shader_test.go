package shader

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const globalBlock = `struct GlobalBuffer {
  view: mat4x4<f32>,
};`

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"shaders/gbuffer/depth.wgsl": {Data: []byte(`#include "gbuffer/textures.wgsl"
#include "ubo/global_buffer.wgsl"

@fragment
fn fs_main(@builtin(position) p: vec4<f32>) -> @location(0) vec4<f32> {
  return vec4<f32>(textureLoad(depthTexture, vec2<i32>(p.xy), 0));
}
`)},
		"shaders/gbuffer/textures.wgsl": {Data: []byte(`#include "ubo/global_buffer.wgsl"
@group(0) @binding(0) var<uniform> globals: GlobalBuffer;
@group(1) @binding(0) var geometryTexture: texture_2d<f32>;
@group(1) @binding(1) var materialTexture: texture_2d<f32>;
// @group(1) @binding(9) var commentedOut: texture_2d<f32>;
@group(1) @binding(5) var depthTexture: texture_depth_2d;
@group(1) @binding(6) var gbufferSampler: sampler;
@group(2) @binding(0) var<storage, read> lights: array<vec4<f32>>;
`)},
		"shaders/missing.wgsl": {Data: []byte(`#include "nope.wgsl"
@fragment fn fs_main() {}
`)},
		"shaders/cycle_a.wgsl": {Data: []byte(`#include "cycle_b.wgsl"
@vertex fn vs_main() -> @builtin(position) vec4<f32> { return vec4<f32>(); }
`)},
		"shaders/cycle_b.wgsl": {Data: []byte(`#include "cycle_a.wgsl"
const B: f32 = 1.0;
`)},
	}
}

func loadDepth(t *testing.T) Shader {
	t.Helper()
	s, err := NewShader(testFS(), "shaders/gbuffer/depth.wgsl", ShaderTypeFragment,
		WithIncludePaths("shaders"),
		WithInclude("ubo/global_buffer.wgsl", globalBlock),
	)
	require.NoError(t, err)
	return s
}

func TestIncludesExpandOnce(t *testing.T) {
	s := loadDepth(t)
	assert.Equal(t, []string{"shaders/gbuffer/textures.wgsl", "ubo/global_buffer.wgsl"}, s.Included())
	assert.Equal(t, 1, countOf(s.Source(), "struct GlobalBuffer"))
	assert.NotContains(t, s.Source(), "#include")
}

func TestEntryPointDetected(t *testing.T) {
	s := loadDepth(t)
	assert.Equal(t, "fs_main", s.EntryPoint())
	assert.Equal(t, "shaders/gbuffer/depth.wgsl", s.Key())
}

func TestBindingsScanned(t *testing.T) {
	s := loadDepth(t)
	got := s.Bindings()
	require.Len(t, got, 6)

	assert.Equal(t, Binding{Group: 0, Binding: 0, Name: "globals", Type: "GlobalBuffer", Kind: BindingUniform}, got[0])
	assert.Equal(t, BindingTexture, got[1].Kind)
	assert.Equal(t, "depthTexture", got[3].Name)
	assert.Equal(t, BindingDepthTexture, got[3].Kind)
	assert.Equal(t, BindingSampler, got[4].Kind)
	assert.Equal(t, BindingStorage, got[5].Kind)
	assert.Equal(t, 2, got[5].Group)

	_, ok := s.Binding("commentedOut")
	assert.False(t, ok)
}

func TestBindTexture(t *testing.T) {
	s := loadDepth(t)
	assert.NoError(t, s.BindTexture("geometryTexture", 0))
	assert.NoError(t, s.BindTexture("depthTexture", 5))
	assert.ErrorIs(t, s.BindTexture("depthTexture", 4), ErrBindingMismatch)
	assert.ErrorIs(t, s.BindTexture("gbufferSampler", 6), ErrBindingMismatch)
	assert.ErrorIs(t, s.BindTexture("lightbufferTexture", 4), ErrUnknownBinding)
}

func TestBindBlock(t *testing.T) {
	s := loadDepth(t)
	assert.NoError(t, s.BindBlock("GlobalBuffer", 0))
	assert.ErrorIs(t, s.BindBlock("GlobalBuffer", 1), ErrBindingMismatch)
	assert.ErrorIs(t, s.BindBlock("LightBuffer", 0), ErrUnknownBinding)
}

func TestMissingInclude(t *testing.T) {
	_, err := NewShader(testFS(), "shaders/missing.wgsl", ShaderTypeFragment)
	assert.ErrorIs(t, err, ErrIncludeNotFound)
}

func TestIncludeCycleTerminates(t *testing.T) {
	s, err := NewShader(testFS(), "shaders/cycle_a.wgsl", ShaderTypeVertex)
	require.NoError(t, err)
	assert.Equal(t, "vs_main", s.EntryPoint())
	assert.Equal(t, []string{"shaders/cycle_b.wgsl"}, s.Included())
}

func TestMissingEntryPoint(t *testing.T) {
	_, err := NewShaderFromSource("inline", "const A: f32 = 1.0;", ShaderTypeVertex)
	assert.ErrorIs(t, err, ErrEntryPointNotFound)
}

func TestExplicitEntryPoint(t *testing.T) {
	s, err := NewShaderFromSource("inline", "fn custom() {}", ShaderTypeVertex, WithEntryPoint("custom"), WithKey("k"))
	require.NoError(t, err)
	assert.Equal(t, "custom", s.EntryPoint())
	assert.Equal(t, "k", s.Key())
}

func countOf(s, sub string) int {
	n := 0
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			n++
		}
	}
	return n
}
