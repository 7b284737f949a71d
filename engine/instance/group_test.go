package instance

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-view/common"
	"github.com/Carmen-Shannon/oxy-view/engine/renderer"
	"github.com/Carmen-Shannon/oxy-view/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-view/engine/renderer/renderertest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRenderer(t *testing.T) (renderer.Renderer, *renderertest.Backend) {
	t.Helper()
	backend := renderertest.NewBackend()
	r := renderer.NewRenderer(backend)
	require.NoError(t, r.RegisterPipelines(pipeline.NewPipeline(DefaultPipelineKey)))
	return r, backend
}

func newTestMesh(t *testing.T, r renderer.Renderer) renderer.Mesh {
	t.Helper()
	m, err := r.CreateMesh("tri", make([]byte, 3*renderer.VertexStride), 3, nil, 0)
	require.NoError(t, err)
	return m
}

func drawFrame(t *testing.T, r renderer.Renderer, g Group) {
	t.Helper()
	require.NoError(t, g.Commit(r, renderer.ViewState{View: common.Identity4(), PrevView: common.Identity4()}))
	require.NoError(t, r.BeginFrame())
	require.NoError(t, r.BeginPass(renderer.PassDescriptor{Label: "gbuffer"}))
	require.NoError(t, g.Draw(r))
	require.NoError(t, r.EndPass())
	require.NoError(t, r.EndFrame())
}

func TestInstancedDrawCountMatchesInstances(t *testing.T) {
	for _, n := range []int{1, 12, 17, 100} {
		r, backend := newTestRenderer(t)
		g := NewGroup()
		g.SetMesh(newTestMesh(t, r))
		for range n {
			g.CreateInstance()
		}

		drawFrame(t, r, g)

		draws := backend.LastFrame().Passes[0].Draws
		require.Len(t, draws, 1)
		assert.Equal(t, uint32(n), draws[0].InstanceCount)
		assert.GreaterOrEqual(t, draws[0].Storage.Size(), uint64(n*GPUInstanceSize))
	}
}

func TestInstancesCreatedAfterCommitDrawNextFrame(t *testing.T) {
	r, backend := newTestRenderer(t)
	g := NewGroup()
	g.SetMesh(newTestMesh(t, r))
	g.CreateInstance()

	require.NoError(t, g.Commit(r, renderer.ViewState{View: common.Identity4(), PrevView: common.Identity4()}))
	g.CreateInstance()
	require.NoError(t, r.BeginFrame())
	require.NoError(t, r.BeginPass(renderer.PassDescriptor{}))
	require.NoError(t, g.Draw(r))
	require.NoError(t, r.EndPass())
	require.NoError(t, r.EndFrame())
	assert.Equal(t, uint32(1), backend.LastFrame().Passes[0].Draws[0].InstanceCount)

	drawFrame(t, r, g)
	assert.Equal(t, uint32(2), backend.LastFrame().Passes[0].Draws[0].InstanceCount)
}

func TestStorageGrowsByDoubling(t *testing.T) {
	r, _ := newTestRenderer(t)
	g := NewGroup()
	g.SetMesh(newTestMesh(t, r))
	for range minCapacity {
		g.CreateInstance()
	}
	drawFrame(t, r, g)
	first := g.Storage()
	assert.Equal(t, uint64(minCapacity*GPUInstanceSize), first.Size())

	g.CreateInstance()
	drawFrame(t, r, g)
	assert.True(t, first.(*renderertest.Buffer).Released())
	assert.Equal(t, uint64(2*minCapacity*GPUInstanceSize), g.Storage().Size())
}

func TestSetMeshReleasesPrevious(t *testing.T) {
	r, backend := newTestRenderer(t)
	g := NewGroup()
	old := newTestMesh(t, r)
	g.SetMesh(old)
	g.CreateInstance()
	drawFrame(t, r, g)

	g.SetMesh(newTestMesh(t, r))
	assert.True(t, old.Released())
	assert.Nil(t, g.Storage())
	assert.Equal(t, 0, g.Committed())

	drawFrame(t, r, g)
	assert.Len(t, backend.LastFrame().Passes[0].Draws, 1)
}

func TestDrawWithoutMeshIsNoop(t *testing.T) {
	r, backend := newTestRenderer(t)
	g := NewGroup()
	g.CreateInstance()
	drawFrame(t, r, g)
	assert.Empty(t, backend.LastFrame().Passes[0].Draws)
}

func TestPreviousModelTracksLastFrame(t *testing.T) {
	r, backend := newTestRenderer(t)
	g := NewGroup()
	g.SetMesh(newTestMesh(t, r))
	inst := g.CreateInstance()
	inst.Transform.SetTranslation(1, 0, 0)

	g.BeginFrame()
	inst.Transform.SetTranslation(2, 0, 0)
	drawFrame(t, r, g)

	data := backend.LastFrame().Passes[0].Draws[0].Storage.(*renderertest.Buffer).Data
	assert.Equal(t, float32(2), readFloat(data, 12))
	assert.Equal(t, float32(1), readFloat(data, 64/4+12))
}

func TestFirstFramePreviousEqualsCurrent(t *testing.T) {
	inst := newInstance()
	inst.Transform.SetTranslation(3, 4, 5)
	assert.Equal(t, inst.CurrentMatrix(), inst.PreviousMatrix())
}

func TestMarshalMaterial(t *testing.T) {
	rec := GPUInstance{Diffuse: [4]float32{0.25, 0.5, 0.75, 1}, Specular: [4]float32{1, 1, 1, 16}}
	buf := rec.Marshal()
	require.Len(t, buf, GPUInstanceSize)
	assert.Equal(t, float32(0.5), readFloat(buf, 65))
	assert.Equal(t, float32(16), readFloat(buf, 71))
}

func readFloat(buf []byte, index int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(buf[index*4:]))
}
