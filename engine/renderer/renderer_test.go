package renderer_test

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-view/engine/renderer"
	"github.com/Carmen-Shannon/oxy-view/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-view/engine/renderer/renderertest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterPipelinesSkipsDuplicates(t *testing.T) {
	backend := renderertest.NewBackend()
	r := renderer.NewRenderer(backend)

	p := pipeline.NewPipeline("gbuffer")
	require.NoError(t, r.RegisterPipelines(p, pipeline.NewPipeline("gbuffer")))
	require.NoError(t, r.RegisterPipelines(p))

	assert.Len(t, backend.Pipelines, 1)
	assert.Same(t, p, r.Pipeline("gbuffer"))
	assert.Equal(t, "gbuffer", p.Handle())
	assert.Nil(t, r.Pipeline("missing"))
}

func TestDrawCallUnknownPipeline(t *testing.T) {
	r := renderer.NewRenderer(renderertest.NewBackend())
	err := r.DrawCall("nope", nil, 1, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"nope"`)
}

func TestDrawCallRecordsCommand(t *testing.T) {
	backend := renderertest.NewBackend()
	r := renderer.NewRenderer(backend, renderer.WithPresentMode(renderer.PresentModeUncapped))
	assert.Equal(t, renderer.PresentModeUncapped, backend.PresentMode)

	require.NoError(t, r.RegisterPipelines(pipeline.NewPipeline("present")))
	mesh, err := r.CreateMesh("quad", make([]byte, 4*renderer.VertexStride), 4, make([]byte, 6*4), 6)
	require.NoError(t, err)

	require.NoError(t, r.BeginFrame())
	require.NoError(t, r.BeginPass(renderer.PassDescriptor{Label: "present"}))
	require.NoError(t, r.DrawCall("present", mesh, 3, nil))
	require.NoError(t, r.EndPass())
	require.NoError(t, r.EndFrame())
	r.Present()

	frame := backend.LastFrame()
	require.Len(t, frame.Passes, 1)
	require.Len(t, frame.Passes[0].Draws, 1)
	assert.Equal(t, uint32(3), frame.Passes[0].Draws[0].InstanceCount)
	assert.True(t, frame.Presented)
}

func TestWriteBufferBounds(t *testing.T) {
	r := renderer.NewRenderer(renderertest.NewBackend())
	buf, err := r.CreateBuffer("globals", renderer.BufferUsageUniform, 8)
	require.NoError(t, err)

	require.NoError(t, r.WriteBuffer(buf, 4, []byte{1, 2, 3, 4}))
	assert.Error(t, r.WriteBuffer(buf, 6, []byte{1, 2, 3}))
}

func TestTextureUnitNames(t *testing.T) {
	assert.Equal(t, "geometryTexture", renderer.UnitGeometry.Name())
	assert.Equal(t, "depthTexture", renderer.UnitDepth.Name())
	assert.Equal(t, "texture9", renderer.TextureUnit(9).Name())
}

func TestDiscardFrameAllowsNextFrame(t *testing.T) {
	backend := renderertest.NewBackend()
	r := renderer.NewRenderer(backend)

	r.DiscardFrame()
	assert.Empty(t, backend.Frames, "nothing to discard outside a frame")

	require.NoError(t, r.BeginFrame())
	require.NoError(t, r.BeginPass(renderer.PassDescriptor{Label: "gbuffer"}))
	r.DiscardFrame()
	assert.True(t, backend.LastFrame().Discarded)
	assert.False(t, backend.LastFrame().Presented)

	require.NoError(t, r.BeginFrame())
	require.NoError(t, r.EndFrame())
	r.Present()
	assert.Len(t, backend.Frames, 2)
	assert.True(t, backend.LastFrame().Presented)
}
