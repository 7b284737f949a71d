package transform

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-view/common"
	"github.com/stretchr/testify/assert"
)

func TestNewIsIdentity(t *testing.T) {
	tr := New()
	assert.Equal(t, common.Identity4(), tr.Matrix())
}

func TestMatrixAppliesScaleRotateTranslate(t *testing.T) {
	tr := New()
	tr.SetScale(2)
	tr.Rotate(90, common.AxisZ)
	tr.SetTranslation(0, 0, -5)

	p := tr.Matrix().MulPoint(common.Vec3{1, 0, 0})
	assert.InDelta(t, 0, p[0], 1e-5)
	assert.InDelta(t, 2, p[1], 1e-5)
	assert.InDelta(t, -5, p[2], 1e-5)
}

func TestRotateAccumulates(t *testing.T) {
	tr := New()
	for i := 0; i < 4; i++ {
		tr.Rotate(90, common.AxisY)
	}
	v := tr.Rotation().Rotate(common.AxisX)
	assert.InDelta(t, 1, v[0], 1e-4)
	assert.InDelta(t, 0, v[2], 1e-4)
}

func TestTranslateAndScaleBy(t *testing.T) {
	tr := New()
	tr.Translate(common.Vec3{1, 2, 3})
	tr.Translate(common.Vec3{1, 0, 0})
	tr.ScaleBy(3)
	assert.Equal(t, common.Vec3{2, 2, 3}, tr.Translation())
	assert.Equal(t, common.Vec3{3, 3, 3}, tr.Scale())
}
