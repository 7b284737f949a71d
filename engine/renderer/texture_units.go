package renderer

import "fmt"

// TextureUnit is a fixed slot of the G-buffer texture table. Every deferred and light program binds the
// same six textures at the same slots, whichever channel it outputs.
type TextureUnit int

const (
	UnitGeometry TextureUnit = iota
	UnitMaterial
	UnitDynamics
	UnitBackBuffer
	UnitLightBuffer
	UnitDepth

	// TextureUnitCount is the number of texture table slots.
	TextureUnitCount = 6
)

// SamplerBinding is the binding index of the G-buffer sampler, following the texture slots.
const SamplerBinding = TextureUnitCount

// GlobalBufferBlock is the WGSL struct name of the shared uniform block and GlobalBufferBinding its binding.
const (
	GlobalBufferBlock   = "GlobalBuffer"
	GlobalBufferBinding = 0
)

var textureUnitNames = [TextureUnitCount]string{
	"geometryTexture",
	"materialTexture",
	"dynamicsTexture",
	"backbufferTexture",
	"lightbufferTexture",
	"depthTexture",
}

// Name returns the WGSL variable name bound at the unit.
func (u TextureUnit) Name() string {
	if u < 0 || int(u) >= TextureUnitCount {
		return fmt.Sprintf("texture%d", int(u))
	}
	return textureUnitNames[u]
}
