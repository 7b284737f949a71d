package viewer

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-view/assets"
	"github.com/Carmen-Shannon/oxy-view/common"
	"github.com/Carmen-Shannon/oxy-view/engine/config"
	"github.com/Carmen-Shannon/oxy-view/engine/input"
	"github.com/Carmen-Shannon/oxy-view/engine/renderer"
	"github.com/Carmen-Shannon/oxy-view/engine/renderer/program"
	"github.com/Carmen-Shannon/oxy-view/engine/renderer/renderertest"
	"github.com/Carmen-Shannon/oxy-view/engine/renderer/target"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	v       *viewer
	backend *renderertest.Backend
	input   input.Manager
}

func newFixture(t *testing.T, options ...ViewerBuilderOption) fixture {
	t.Helper()
	backend := renderertest.NewBackend()
	in := input.NewManager()
	v, err := NewViewer(renderer.NewRenderer(backend), in, options...)
	require.NoError(t, err)
	t.Cleanup(v.Release)
	return fixture{v: v.(*viewer), backend: backend, input: in}
}

func (f fixture) frames() int {
	return len(f.backend.Frames)
}

// drawsWith returns the draws of pass label in frame that use pipelineKey.
func drawsWith(frame renderertest.Frame, label, pipelineKey string) []renderer.DrawCommand {
	var out []renderer.DrawCommand
	for _, p := range frame.Passes {
		if p.Descriptor.Label != label {
			continue
		}
		for _, d := range p.Draws {
			if d.Pipeline.PipelineKey() == pipelineKey {
				out = append(out, d)
			}
		}
	}
	return out
}

func readMat(data []byte, offset int) common.Mat4 {
	var m common.Mat4
	for i := range m {
		m[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[offset+i*4:]))
	}
	return m
}

func TestResizeLoadRenderScenario(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.v.Resize(800, 600))
	require.NoError(t, f.v.LoadModel(assets.SphereModel))
	require.NoError(t, f.v.SelectChannel(Channel(0)))
	require.NoError(t, f.v.Render())

	back := f.v.targets.BackBuffer().Descriptor()
	assert.Equal(t, 800, back.Width)
	assert.Equal(t, 600, back.Height)
	for _, tex := range f.v.targets.Textures() {
		assert.Equal(t, 800, tex.Descriptor().Width)
		assert.Equal(t, 600, tex.Descriptor().Height)
	}
	assert.Equal(t, target.StatusComplete, f.v.frames.GBuffer().Status())
	assert.Equal(t, target.StatusComplete, f.v.frames.Light().Status())
	assert.Equal(t, 800, f.backend.Width)
	assert.Equal(t, 600, f.backend.Height)
	assert.True(t, f.backend.LastFrame().Presented)
	assert.Equal(t, StateIdle, f.v.State())
	assert.Equal(t, uint64(1), f.v.Stats().Frames)

	w, h := f.v.Camera().Viewport()
	assert.Equal(t, 800, w)
	assert.Equal(t, 600, h)
}

func TestResizeRebindsTextures(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.v.Resize(640, 480))
	first := f.v.targets.Channel(target.ChannelGeometry)
	require.NoError(t, f.v.Resize(1024, 768))

	assert.True(t, first.Released())
	require.NoError(t, f.v.Render())
	pass := f.backend.LastFrame().Passes[0]
	assert.Same(t, f.v.targets.Channel(target.ChannelGeometry), pass.Textures[renderer.UnitGeometry])
	assert.Same(t, f.v.targets.Depth(), pass.Textures[renderer.UnitDepth])
	assert.Same(t, f.v.targets.Channel(target.ChannelLight), pass.Textures[renderer.UnitLightBuffer])
}

func TestResizeErrors(t *testing.T) {
	f := newFixture(t)
	assert.ErrorIs(t, f.v.Resize(0, 600), target.ErrInvalidDimensions)

	f.backend.FailAllocAt = 1
	assert.ErrorIs(t, f.v.Resize(800, 600), renderertest.ErrInjected)
}

func TestRenderBeforeResize(t *testing.T) {
	f := newFixture(t)
	assert.ErrorIs(t, f.v.Render(), ErrNotResized)
	assert.Zero(t, f.frames())
}

func TestPassSequence(t *testing.T) {
	tests := []struct {
		channel Channel
		passes  []string
	}{
		{ChannelComposed, []string{"gbuffer", "lights", "present"}},
		{ChannelMotionBlur, []string{"gbuffer", "lights", "present"}},
		{ChannelDepth, []string{"gbuffer", "present"}},
		{ChannelVelocity, []string{"gbuffer", "present"}},
		{ChannelNormal, []string{"gbuffer", "present"}},
	}
	f := newFixture(t)
	require.NoError(t, f.v.Resize(320, 240))

	for _, tt := range tests {
		t.Run(tt.channel.String(), func(t *testing.T) {
			require.NoError(t, f.v.SelectChannel(tt.channel))
			require.NoError(t, f.v.Render())

			frame := f.backend.LastFrame()
			assert.Equal(t, tt.passes, frame.PassLabels())

			present := frame.Passes[len(frame.Passes)-1]
			require.Len(t, present.Draws, 1)
			assert.Equal(t, "deferred/"+tt.channel.String(), present.Draws[0].Pipeline.PipelineKey())
			assert.Nil(t, present.Descriptor.Target)
			assert.Same(t, f.v.quad, present.Draws[0].Mesh)
		})
	}
}

func TestGeometryAndLightPassTargets(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.v.Resize(320, 240))
	require.NoError(t, f.v.Render())

	frame := f.backend.LastFrame()
	gbuffer, lights := frame.Passes[0], frame.Passes[1]
	assert.Same(t, f.v.frames.GBuffer(), gbuffer.Descriptor.Target)
	assert.True(t, gbuffer.Descriptor.ClearColor)
	assert.True(t, gbuffer.Descriptor.ClearDepth)
	assert.Same(t, f.v.frames.Light(), lights.Descriptor.Target)
	assert.False(t, lights.Descriptor.ClearDepth)

	require.Len(t, lights.Draws, 1)
	assert.Equal(t, program.PointLightKey, lights.Draws[0].Pipeline.PipelineKey())
	assert.Equal(t, uint32(10), lights.Draws[0].InstanceCount)
}

func TestInstancedDrawCount(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.v.Resize(320, 240))
	require.NoError(t, f.v.Render())

	draws := drawsWith(f.backend.LastFrame(), "gbuffer", program.GeometryKey)
	require.Len(t, draws, 2)
	assert.Equal(t, uint32(1), draws[0].InstanceCount)
	assert.Equal(t, uint32(12), draws[1].InstanceCount)

	f.v.Instances().CreateInstance()
	require.NoError(t, f.v.Render())
	draws = drawsWith(f.backend.LastFrame(), "gbuffer", program.GeometryKey)
	assert.Equal(t, uint32(13), draws[1].InstanceCount)
}

func TestSameChannelTwiceIsIdentical(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.v.Resize(320, 240))
	require.NoError(t, f.v.Render())

	require.NoError(t, f.v.SelectChannel(ChannelDiffuse))
	require.NoError(t, f.v.Render())
	require.NoError(t, f.v.SelectChannel(ChannelDiffuse))
	require.NoError(t, f.v.Render())

	frames := f.backend.Frames
	require.Len(t, frames, 3)
	assert.Equal(t, frames[1], frames[2])
	assert.Len(t, f.backend.Textures, renderer.TextureUnitCount)
}

func TestSelectChannelRejectsUnknown(t *testing.T) {
	f := newFixture(t)
	assert.ErrorIs(t, f.v.SelectChannel(Channel(42)), program.ErrUnknownChannel)
	assert.Equal(t, ChannelComposed, f.v.Channel())
}

func TestPreviousCameraIsLastFrameCurrent(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.v.Resize(320, 240))

	globals := f.backend.Globals.(*renderertest.Buffer)
	const viewOffset, prevViewOffset = 0, 6 * common.Mat4Size

	f.v.Update()
	require.NoError(t, f.v.Render())
	view := readMat(globals.Data, viewOffset)
	assert.Equal(t, view, readMat(globals.Data, prevViewOffset))

	for range 3 {
		f.v.Update()
		f.v.Camera().Translate(common.Vec3{1, 0, -2})
		f.v.Camera().Rotate(5, common.AxisY)
		require.NoError(t, f.v.Render())

		assert.Equal(t, view, readMat(globals.Data, prevViewOffset))
		next := readMat(globals.Data, viewOffset)
		assert.NotEqual(t, view, next)
		view = next
	}
}

func TestPausedRenderIssuesNoCommands(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.v.Resize(320, 240))

	f.v.SetPaused(true)
	buffers := len(f.backend.Buffers)
	require.NoError(t, f.v.Render())
	assert.Zero(t, f.frames())
	assert.Len(t, f.backend.Buffers, buffers)

	f.v.SetPaused(false)
	require.NoError(t, f.v.Render())
	assert.Equal(t, 1, f.frames())
}

func TestPauseGuardRestoresPreviousValue(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.v.Resize(320, 240))

	release := f.v.pause()
	assert.True(t, f.v.Paused())
	require.NoError(t, f.v.Render())
	assert.Zero(t, f.frames())
	release()
	assert.False(t, f.v.Paused())

	f.v.SetPaused(true)
	release = f.v.pause()
	release()
	assert.True(t, f.v.Paused())
}

func TestReloadIsAtomic(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.v.Resize(320, 240))
	require.NoError(t, f.v.Render())
	before := drawsWith(f.backend.LastFrame(), "gbuffer", program.GeometryKey)[1].Mesh

	require.NoError(t, f.v.LoadModel(assets.OpenBoxModel))
	assert.False(t, f.v.Paused())
	assert.True(t, before.Released())

	require.NoError(t, f.v.Render())
	after := drawsWith(f.backend.LastFrame(), "gbuffer", program.GeometryKey)[1].Mesh
	assert.NotSame(t, before, after)
	assert.False(t, after.Released())
	assert.Same(t, f.v.Instances().Mesh(), after)

	stats := f.v.Stats()
	assert.Equal(t, assets.OpenBoxModel, stats.Path)
	assert.Equal(t, 12, stats.Instances)
	assert.Equal(t, stats.Mesh.Faces*12, stats.PolygonsPerFrame)
	assert.Equal(t, uint64(1), stats.Frames)
}

func TestFailedLoadDrawsNothing(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.v.Resize(320, 240))

	err := f.v.LoadModel("models/missing.obj")
	require.Error(t, err)
	assert.False(t, f.v.Paused())
	assert.Nil(t, f.v.Instances().Mesh())

	require.NoError(t, f.v.Render())
	draws := drawsWith(f.backend.LastFrame(), "gbuffer", program.GeometryKey)
	assert.Len(t, draws, 1, "only the floor is drawn")
}

// failingUploads fails every CreateMesh call for one label.
type failingUploads struct {
	renderer.Renderer
	label string
}

func (r *failingUploads) CreateMesh(label string, vertexData []byte, vertexCount int, indexData []byte, indexCount int) (renderer.Mesh, error) {
	if label == r.label {
		return nil, renderertest.ErrInjected
	}
	return r.Renderer.CreateMesh(label, vertexData, vertexCount, indexData, indexCount)
}

func TestFailedBoundaryUploadKeepsModelRetired(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.v.Resize(320, 240))
	f.v.renderer = &failingUploads{Renderer: f.v.renderer, label: "boundaries"}

	err := f.v.LoadModel(assets.OpenBoxModel)
	require.ErrorIs(t, err, renderertest.ErrInjected)
	assert.False(t, f.v.Paused())
	assert.Nil(t, f.v.Instances().Mesh())
	assert.Empty(t, f.v.Boundaries())
	assert.Zero(t, f.v.Stats().Mesh.Faces)

	uploaded := f.backend.Meshes[len(f.backend.Meshes)-1]
	assert.True(t, uploaded.Released(), "the model upload is released when its boundaries fail")

	require.NoError(t, f.v.Render())
	assert.Len(t, drawsWith(f.backend.LastFrame(), "gbuffer", program.GeometryKey), 1, "only the floor is drawn")
}

func TestBoundaryEdges(t *testing.T) {
	f := newFixture(t)
	assert.Empty(t, f.v.Boundaries(), "the sphere is closed")

	require.NoError(t, f.v.LoadModel(assets.OpenBoxModel))
	edges := f.v.Boundaries()
	require.Len(t, edges, 4)
	assert.Equal(t, 4, f.v.Stats().Mesh.BoundaryEdges)
	for i, e := range edges {
		assert.Equal(t, e.To, edges[(i+1)%len(edges)].From)
	}
}

func TestBoundaryOverlay(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.v.Resize(320, 240))
	require.NoError(t, f.v.LoadModel(assets.OpenBoxModel))

	require.NoError(t, f.v.Render())
	assert.Empty(t, drawsWith(f.backend.LastFrame(), "present", program.BoundaryKey))

	f.v.ShowBoundaries(true)
	f.v.Update()
	require.NoError(t, f.v.Render())
	draws := drawsWith(f.backend.LastFrame(), "present", program.BoundaryKey)
	require.Len(t, draws, 1)
	assert.Equal(t, 8, draws[0].Mesh.VertexCount())
	assert.Zero(t, draws[0].Mesh.IndexCount())
	assert.Equal(t, f.v.decor.Matrix(), f.v.overlay.Transform.Matrix())
	assert.Equal(t, boundaryColor, f.v.overlay.Material.Diffuse)
}

func TestDigitKeysSelectChannel(t *testing.T) {
	f := newFixture(t)

	f.input.HandleKey(common.Key3, true)
	f.v.Update()
	assert.Equal(t, ChannelPosition, f.v.Channel())

	f.input.HandleKey(common.Key3, false)
	f.input.HandleKey(common.Key0, true)
	f.v.Update()
	assert.Equal(t, ChannelComposed, f.v.Channel())
}

func TestToggleBoundariesKey(t *testing.T) {
	f := newFixture(t)
	f.input.HandleKey(common.KeyB, true)
	f.v.Update()
	assert.True(t, f.v.showBoundaries)
}

type stubDialog struct {
	path   string
	err    error
	calls  int
	onOpen func()
}

func (d *stubDialog) OpenFile() (string, error) {
	d.calls++
	if d.onOpen != nil {
		d.onOpen()
	}
	return d.path, d.err
}

func TestCtrlOOpensModel(t *testing.T) {
	d := &stubDialog{path: assets.OpenBoxModel}
	f := newFixture(t, WithDialog(d))

	f.input.HandleKey(common.KeyLeftControl, true)
	f.input.HandleKey(common.KeyO, true)
	f.v.Update()

	assert.Equal(t, 1, d.calls)
	assert.Equal(t, assets.OpenBoxModel, f.v.Stats().Path)
}

func TestOpenModelCancelled(t *testing.T) {
	d := &stubDialog{}
	f := newFixture(t, WithDialog(d))
	mesh := f.v.Instances().Mesh()

	require.NoError(t, f.v.OpenModel())
	assert.Same(t, mesh, f.v.Instances().Mesh())
	assert.Equal(t, assets.SphereModel, f.v.Stats().Path)

	d.err = errors.New("no display")
	assert.ErrorIs(t, f.v.OpenModel(), d.err)
}

func TestOpenModelPausesWhileDialogIsOpen(t *testing.T) {
	d := &stubDialog{}
	f := newFixture(t, WithDialog(d))
	var pausedDuringDialog bool
	d.onOpen = func() { pausedDuringDialog = f.v.Paused() }

	require.NoError(t, f.v.OpenModel())
	assert.True(t, pausedDuringDialog)
	assert.False(t, f.v.Paused(), "cancelling the dialog resumes the scene")

	d.path = assets.OpenBoxModel
	require.NoError(t, f.v.OpenModel())
	assert.True(t, pausedDuringDialog)
	assert.False(t, f.v.Paused())
	assert.Equal(t, assets.OpenBoxModel, f.v.Stats().Path)
}

func TestFailedPassDiscardsFrame(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.v.Resize(320, 240))

	f.backend.FailPass = "lights"
	require.ErrorIs(t, f.v.Render(), renderertest.ErrInjected)
	failed := f.backend.LastFrame()
	assert.True(t, failed.Discarded)
	assert.False(t, failed.Presented)

	f.backend.FailPass = ""
	require.NoError(t, f.v.Render())
	next := f.backend.LastFrame()
	assert.False(t, next.Discarded)
	assert.True(t, next.Presented)
	assert.Equal(t, []string{"gbuffer", "lights", "present"}, next.PassLabels())
}

type stubWatcher struct {
	pending string
	watched []string
	closed  bool
}

func (w *stubWatcher) Watch(path string) error {
	w.watched = append(w.watched, path)
	return nil
}

func (w *stubWatcher) Drain() (string, bool) {
	p := w.pending
	w.pending = ""
	return p, p != ""
}

func (w *stubWatcher) Close() error {
	w.closed = true
	return nil
}

func TestWatcherReloadsModel(t *testing.T) {
	w := &stubWatcher{}
	backend := renderertest.NewBackend()
	v, err := NewViewer(renderer.NewRenderer(backend), input.NewManager(), WithWatcher(w))
	require.NoError(t, err)
	assert.Empty(t, w.watched, "embedded models are not watched")

	old := v.Instances().Mesh()
	w.pending = assets.OpenBoxModel
	v.Update()
	assert.True(t, old.Released())
	assert.Len(t, v.Boundaries(), 4)

	v.Release()
	assert.True(t, w.closed)
}

func TestConfiguredScene(t *testing.T) {
	cfg := config.Default()
	cfg.Scene.LightCount = 3
	cfg.Scene.RingCount = 4
	cfg.Scene.Channel = "normal"
	f := newFixture(t, WithConfig(cfg))

	assert.Equal(t, 3, f.v.Lights().Count())
	assert.Equal(t, 4, f.v.Instances().Count())
	assert.Equal(t, ChannelNormal, f.v.Channel())

	for _, l := range f.v.Lights().Lights() {
		assert.InDelta(t, cfg.Scene.LightOrbit, l.Position().Length(), 1e-4)
	}
}

func TestAnimationAdvancesLightsAndInstances(t *testing.T) {
	f := newFixture(t)
	before := f.v.Lights().Lights()[0].Position()
	second := f.v.Instances().Instances()[1].CurrentMatrix()

	f.v.Update()

	assert.NotEqual(t, before, f.v.Lights().Lights()[0].Position())
	assert.Equal(t, before, f.v.Lights().Lights()[0].PreviousPosition())
	assert.NotEqual(t, second, f.v.Instances().Instances()[1].CurrentMatrix())
	assert.Equal(t, second, f.v.Instances().Instances()[1].PreviousMatrix())
}

func TestGestures(t *testing.T) {
	f := newFixture(t)

	f.input.HandleScroll(0, 1)
	f.v.Update()
	assert.InDelta(t, decorScale*1.1, f.v.decor.Scale()[0], 1e-3)

	f.input.HandlePan(10, 20)
	f.v.Update()
	assert.InDelta(t, 1, f.v.decor.Translation()[0], 1e-5)
	assert.InDelta(t, -2, f.v.decor.Translation()[1], 1e-5)

	f.input.HandleTouch(0, 0, 0, input.TouchPressed)
	f.v.Update()
	f.input.HandleTouch(0, 30, 40, input.TouchMoved)
	f.v.Update()
	assert.InDelta(t, 5*dragDecay, f.v.dragVelocity, 1e-4)
	f.v.Update()
	assert.InDelta(t, 5*dragDecay*dragDecay, f.v.dragVelocity, 1e-4)
}
