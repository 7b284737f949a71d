package instance

import (
	_ "embed"
	"encoding/binary"
	"math"

	"github.com/Carmen-Shannon/oxy-view/common"
)

// GPUInstanceSource is the canonical WGSL definition of the Instance struct.
// Matches GPUInstance layout exactly (288 bytes).
//
//go:embed assets/instance.wgsl
var GPUInstanceSource string

// GPUInstanceSize is the byte size of one Instance element in the storage buffer.
const GPUInstanceSize = 4*common.Mat4Size + 32

// GPUInstance is the GPU-aligned representation of one drawn instance.
type GPUInstance struct {
	Model         common.Mat4 // offset   0
	PrevModel     common.Mat4 // offset  64
	ModelView     common.Mat4 // offset 128
	PrevModelView common.Mat4 // offset 192
	Diffuse       [4]float32  // offset 256: rgb, w unused
	Specular      [4]float32  // offset 272: rgb intensity, w exponent
}

// Size returns the size of the GPUInstance struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (288)
func (g *GPUInstance) Size() int {
	return GPUInstanceSize
}

// MarshalTo serializes the instance into buf, which must hold at least Size bytes.
//
// Parameters:
//   - buf: the destination slice
func (g *GPUInstance) MarshalTo(buf []byte) {
	g.Model.Marshal(buf[0:])
	g.PrevModel.Marshal(buf[64:])
	g.ModelView.Marshal(buf[128:])
	g.PrevModelView.Marshal(buf[192:])
	for i := range 4 {
		binary.LittleEndian.PutUint32(buf[256+i*4:], math.Float32bits(g.Diffuse[i]))
		binary.LittleEndian.PutUint32(buf[272+i*4:], math.Float32bits(g.Specular[i]))
	}
}

// Marshal serializes the instance into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 288-byte buffer ready for GPU upload
func (g *GPUInstance) Marshal() []byte {
	buf := make([]byte, GPUInstanceSize)
	g.MarshalTo(buf)
	return buf
}
