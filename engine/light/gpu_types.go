package light

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-view/common"
)

// GPUPointLightSource is the canonical WGSL definition of the PointLight struct.
// Matches GPUPointLight layout exactly (96 bytes).
//
//go:embed assets/point_light.wgsl
var GPUPointLightSource string

// GPUPointLightSize is the byte size of one PointLight element in the storage buffer.
const GPUPointLightSize = 96

// GPUPointLight is the GPU-aligned representation of a single point light volume.
// Matches the WGSL PointLight struct layout exactly (see GPUPointLightSource).
type GPUPointLight struct {
	Model        common.Mat4 // offset  0: translate(position) * scale(radius)
	ViewPosition [3]float32  // offset 64: light position in view space
	Radius       float32     // offset 76: attenuation cutoff distance
	Color        [3]float32  // offset 80: RGB color
	_pad         uint32      // offset 92: padding to 96-byte alignment
}

// Size returns the size of the GPUPointLight struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (96)
func (g *GPUPointLight) Size() int {
	return int(unsafe.Sizeof(*g))
}

// MarshalTo serializes the light into buf, which must hold at least GPUPointLightSize bytes.
//
// Parameters:
//   - buf: the destination slice
func (g *GPUPointLight) MarshalTo(buf []byte) {
	g.Model.Marshal(buf[0:64])
	binary.LittleEndian.PutUint32(buf[64:68], math.Float32bits(g.ViewPosition[0]))
	binary.LittleEndian.PutUint32(buf[68:72], math.Float32bits(g.ViewPosition[1]))
	binary.LittleEndian.PutUint32(buf[72:76], math.Float32bits(g.ViewPosition[2]))
	binary.LittleEndian.PutUint32(buf[76:80], math.Float32bits(g.Radius))
	binary.LittleEndian.PutUint32(buf[80:84], math.Float32bits(g.Color[0]))
	binary.LittleEndian.PutUint32(buf[84:88], math.Float32bits(g.Color[1]))
	binary.LittleEndian.PutUint32(buf[88:92], math.Float32bits(g.Color[2]))
	binary.LittleEndian.PutUint32(buf[92:96], 0) // padding
}

// Marshal serializes the GPUPointLight struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 96-byte buffer ready for GPU upload
func (g *GPUPointLight) Marshal() []byte {
	buf := make([]byte, GPUPointLightSize)
	g.MarshalTo(buf)
	return buf
}
