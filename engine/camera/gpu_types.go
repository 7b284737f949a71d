package camera

import (
	_ "embed"
	"encoding/binary"
	"math"

	"github.com/Carmen-Shannon/oxy-view/common"
)

// GPUGlobalUniformSource is the canonical WGSL definition of the GlobalBuffer struct.
// Matches GPUGlobalUniform layout exactly (688 bytes).
//
//go:embed assets/global_buffer.wgsl
var GPUGlobalUniformSource string

// GPUGlobalUniformSize is the byte size of the GlobalBuffer uniform block.
// Ten mat4 (640) + ambient vec4 (16) + five f32 (20) = 676, rounded up to the struct alignment of 16.
const GPUGlobalUniformSize = 688

// GPUGlobalUniform is the GPU-aligned representation of the GlobalBuffer uniform block shared by every program.
type GPUGlobalUniform struct {
	View                  common.Mat4 // offset   0
	Projection            common.Mat4 // offset  64
	ViewProjection        common.Mat4 // offset 128
	InvView               common.Mat4 // offset 192
	InvProjection         common.Mat4 // offset 256
	InvViewProjection     common.Mat4 // offset 320
	PrevView              common.Mat4 // offset 384
	PrevViewProjection    common.Mat4 // offset 448
	PrevInvView           common.Mat4 // offset 512
	PrevInvViewProjection common.Mat4 // offset 576
	Ambient               [4]float32  // offset 640
	Far                   float32     // offset 656
	Near                  float32     // offset 660
	DepthDiff             float32     // offset 664
	Width                 float32     // offset 668
	Height                float32     // offset 672
}

// Size returns the size of the GlobalBuffer uniform block in bytes.
//
// Returns:
//   - int: the block size in bytes (688)
func (g *GPUGlobalUniform) Size() int {
	return GPUGlobalUniformSize
}

// Marshal serializes the uniform into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUGlobalUniform) Marshal() []byte {
	buf := make([]byte, g.Size())
	mats := [...]common.Mat4{
		g.View, g.Projection, g.ViewProjection,
		g.InvView, g.InvProjection, g.InvViewProjection,
		g.PrevView, g.PrevViewProjection, g.PrevInvView, g.PrevInvViewProjection,
	}
	for i, m := range mats {
		m.Marshal(buf[i*common.Mat4Size:])
	}
	off := len(mats) * common.Mat4Size
	for i := range 4 {
		binary.LittleEndian.PutUint32(buf[off+i*4:], math.Float32bits(g.Ambient[i]))
	}
	off += 16
	for i, v := range [...]float32{g.Far, g.Near, g.DepthDiff, g.Width, g.Height} {
		binary.LittleEndian.PutUint32(buf[off+i*4:], math.Float32bits(v))
	}
	return buf
}
