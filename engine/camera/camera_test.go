package camera

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-view/common"
	"github.com/Carmen-Shannon/oxy-view/engine/input"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFirstFramePreviousEqualsCurrent(t *testing.T) {
	cam := NewCamera(WithPosition(1, 2, 3), WithViewport(800, 600))
	u := cam.Uniform([4]float32{0.2, 0.2, 0.2, 1})
	assert.Equal(t, u.View, u.PrevView)
	assert.Equal(t, u.ViewProjection, u.PrevViewProjection)
}

func TestPreviousTracksLastFrame(t *testing.T) {
	cam := NewCamera(WithViewport(800, 600))

	var lastView common.Mat4
	for frame := 0; frame < 5; frame++ {
		cam.BeginFrame()
		u := cam.Uniform([4]float32{})
		if frame > 0 {
			assert.Equal(t, lastView, u.PrevView, "frame %d", frame)
		}
		cam.Translate(common.Vec3{0, 0, -1})
		cam.Rotate(5, LocalUp)
		lastView = cam.ViewMatrix()
	}
}

func TestBeginFrameSnapshotsBeforeMutation(t *testing.T) {
	cam := NewCamera()
	cam.BeginFrame()
	before := cam.ViewMatrix()
	cam.Translate(common.Vec3{10, 0, 0})
	assert.Equal(t, before, cam.PreviousViewMatrix())
	assert.NotEqual(t, before, cam.ViewMatrix())
}

func TestViewMatrixMovesWorldOpposite(t *testing.T) {
	cam := NewCamera(WithPosition(0, 0, 10))
	p := cam.ViewMatrix().MulPoint(common.Vec3{0, 0, 0})
	assert.InDelta(t, -10, p[2], 1e-5)
}

func TestDefaultBasis(t *testing.T) {
	cam := NewCamera()
	assert.Equal(t, common.Vec3{0, 0, -1}, cam.Forward())
	assert.Equal(t, common.AxisX, cam.Right())
	assert.Equal(t, common.AxisY, cam.Up())
}

func TestSetViewportUpdatesAspect(t *testing.T) {
	cam := NewCamera()
	cam.SetViewport(800, 400)
	assert.Equal(t, float32(2), cam.Aspect())
	w, h := cam.Viewport()
	assert.Equal(t, 800, w)
	assert.Equal(t, 400, h)

	cam.SetViewport(0, 100)
	assert.Equal(t, float32(2), cam.Aspect())
}

func TestNewCameraRejectsBadPlanes(t *testing.T) {
	assert.Panics(t, func() { NewCamera(WithNear(10), WithFar(1)) })
}

func TestUniformMarshalLayout(t *testing.T) {
	cam := NewCamera(WithViewport(800, 600), WithNear(0.1), WithFar(1000))
	u := cam.Uniform([4]float32{0.2, 0.3, 0.4, 1})
	buf := u.Marshal()
	require.Len(t, buf, GPUGlobalUniformSize)

	f := func(off int) float32 { return math.Float32frombits(binary.LittleEndian.Uint32(buf[off:])) }
	assert.Equal(t, float32(0.2), f(640))
	assert.Equal(t, float32(1), f(652))
	assert.Equal(t, float32(1000), f(656))
	assert.Equal(t, float32(0.1), f(660))
	assert.InDelta(t, 999.9, f(664), 1e-3)
	assert.Equal(t, float32(800), f(668))
	assert.Equal(t, float32(600), f(672))
}

func TestUniformInversesAreInverses(t *testing.T) {
	cam := NewCamera(WithViewport(640, 480), WithPosition(3, 4, 5))
	cam.Rotate(30, common.AxisY)
	u := cam.Uniform([4]float32{})
	id := u.ViewProjection.Mul(u.InvViewProjection)
	for i, v := range common.Identity4() {
		assert.InDelta(t, v, id[i], 1e-2)
	}
}

func TestFlyControllerRequiresLookButton(t *testing.T) {
	cam := NewCamera()
	in := input.NewManager()
	ctrl := NewFlyController()

	in.HandleKey(common.KeyW, true)
	in.Update()
	ctrl.Update(cam, in)
	assert.Equal(t, common.Vec3{}, cam.Position())
}

func TestFlyControllerTranslates(t *testing.T) {
	tests := []struct {
		name string
		keys []int
		want common.Vec3
	}{
		{"forward", []int{common.KeyW}, common.Vec3{0, 0, -3}},
		{"back", []int{common.KeyS}, common.Vec3{0, 0, 3}},
		{"left", []int{common.KeyA}, common.Vec3{-3, 0, 0}},
		{"right", []int{common.KeyD}, common.Vec3{3, 0, 0}},
		{"up", []int{common.KeyQ}, common.Vec3{0, 3, 0}},
		{"down", []int{common.KeyE}, common.Vec3{0, -3, 0}},
		{"slow", []int{common.KeyW, common.KeyLeftControl}, common.Vec3{0, 0, -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cam := NewCamera()
			in := input.NewManager()
			in.HandleButton(common.MouseButtonRight, true)
			for _, k := range tt.keys {
				in.HandleKey(k, true)
			}
			in.Update()
			NewFlyController().Update(cam, in)
			got := cam.Position()
			for i := range tt.want {
				assert.InDelta(t, tt.want[i], got[i], 1e-5)
			}
		})
	}
}

func TestFlyControllerLooks(t *testing.T) {
	cam := NewCamera()
	in := input.NewManager()
	in.HandleCursor(0, 0)
	in.Update()

	in.HandleButton(common.MouseButtonRight, true)
	in.HandleCursor(-180, 0)
	in.Update()
	NewFlyController().Update(cam, in)

	// 180 px at 0.5 deg/px turns the camera 90 degrees to the left.
	fwd := cam.Forward()
	assert.InDelta(t, -1, fwd[0], 1e-4)
	assert.InDelta(t, 0, fwd[2], 1e-4)
}
