// Package target owns the render targets of the deferred pipeline: the G-buffer channel textures, the
// back-buffer and the depth buffer, and the two framebuffers (G-buffer and light accumulation) wired from them.
// Nothing in this package talks to a GPU API directly; textures come from an Allocator supplied by the backend.
package target

import "fmt"

// Format is the pixel format of a render target.
type Format int

const (
	// FormatUndefined marks an unset format.
	FormatUndefined Format = iota
	// FormatRGBAFloat is a four channel high precision float color format.
	FormatRGBAFloat
	// FormatDepth32Float is a single channel 32-bit float depth format.
	FormatDepth32Float
	// FormatSurface is the format of the window surface, chosen by the backend.
	FormatSurface
)

// IsDepth reports whether f is a depth format.
func (f Format) IsDepth() bool {
	return f == FormatDepth32Float
}

func (f Format) String() string {
	switch f {
	case FormatRGBAFloat:
		return "rgba-float"
	case FormatDepth32Float:
		return "depth32-float"
	case FormatSurface:
		return "surface"
	default:
		return "undefined"
	}
}

// WrapMode is the sampler address mode for a render target.
type WrapMode int

const (
	WrapClampToEdge WrapMode = iota
	WrapRepeat
)

// FilterMode is the sampler filter for a render target.
type FilterMode int

const (
	FilterNearest FilterMode = iota
	FilterLinear
)

// TextureDescriptor describes a render target texture.
type TextureDescriptor struct {
	Label  string
	Width  int
	Height int
	Format Format
	Wrap   WrapMode
	Filter FilterMode
}

func (d TextureDescriptor) String() string {
	return fmt.Sprintf("%s %dx%d %s", d.Label, d.Width, d.Height, d.Format)
}

// Texture is a GPU texture usable both as a render attachment and as a sampled texture.
type Texture interface {
	// Descriptor returns the descriptor the texture was allocated with.
	//
	// Returns:
	//   - TextureDescriptor: the allocation descriptor
	Descriptor() TextureDescriptor

	// Release frees the GPU memory backing the texture. Calling Release more than once is a no-op.
	Release()

	// Released reports whether Release has been called.
	//
	// Returns:
	//   - bool: true after Release
	Released() bool
}

// Allocator creates render target textures. It is implemented by the renderer backend.
type Allocator interface {
	// AllocateTexture allocates a texture for desc.
	//
	// Parameters:
	//   - desc: the texture descriptor
	//
	// Returns:
	//   - Texture: the allocated texture
	//   - error: an error if the allocation fails
	AllocateTexture(desc TextureDescriptor) (Texture, error)
}
