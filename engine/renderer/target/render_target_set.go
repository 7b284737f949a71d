package target

import (
	"fmt"
	"sync"
)

// Channel identifies one of the general-purpose G-buffer textures.
type Channel int

const (
	// ChannelGeometry holds the view-space normal and linear depth.
	ChannelGeometry Channel = iota
	// ChannelMaterial holds the diffuse color and specular exponent.
	ChannelMaterial
	// ChannelDynamics holds the screen-space velocity and specular intensity.
	ChannelDynamics
	// ChannelLight is cleared by the geometry pass and accumulates point light contributions in the light pass.
	ChannelLight

	// ChannelCount is the number of general-purpose G-buffer textures.
	ChannelCount = 4
)

var channelLabels = [ChannelCount]string{"gbuffer-geometry", "gbuffer-material", "gbuffer-dynamics", "gbuffer-light"}

func (c Channel) String() string {
	if c < 0 || int(c) >= ChannelCount {
		return fmt.Sprintf("channel(%d)", int(c))
	}
	return channelLabels[c]
}

type renderTargetSet struct {
	mu *sync.Mutex

	allocator Allocator

	width  int
	height int

	channels   [ChannelCount]Texture
	backBuffer Texture
	depth      Texture

	generation uint64
}

// RenderTargetSet owns every texture the deferred pipeline renders into: ChannelCount float4 channels,
// one float4 back-buffer and one float depth buffer, all sharing the same size.
type RenderTargetSet interface {
	// Resize releases every texture and allocates a fresh set at width x height.
	// Must be called before first use and after every viewport change.
	//
	// Parameters:
	//   - width, height: new size in pixels, both > 0
	//
	// Returns:
	//   - error: ErrInvalidDimensions for a non-positive size, or the wrapped allocation failure
	Resize(width, height int) error

	// Size returns the size of the current allocation.
	//
	// Returns:
	//   - width, height: size in pixels, zero before the first Resize
	Size() (width, height int)

	// Channel returns the texture for a G-buffer channel, or nil before the first Resize.
	//
	// Parameters:
	//   - c: the channel
	//
	// Returns:
	//   - Texture: the channel texture
	Channel(c Channel) Texture

	// BackBuffer returns the back-buffer texture, or nil before the first Resize.
	BackBuffer() Texture

	// Depth returns the depth texture, or nil before the first Resize.
	Depth() Texture

	// Textures returns every live texture: the channels, then the back-buffer, then depth.
	//
	// Returns:
	//   - []Texture: the textures, empty before the first Resize
	Textures() []Texture

	// Generation counts successful Resize calls. Consumers that cache texture bindings compare it to detect reallocation.
	//
	// Returns:
	//   - uint64: the allocation generation
	Generation() uint64

	// Release frees every texture.
	Release()
}

var _ RenderTargetSet = &renderTargetSet{}

// NewRenderTargetSet creates an empty set that allocates through a.
//
// Parameters:
//   - a: the texture allocator, normally the renderer backend
//
// Returns:
//   - RenderTargetSet: the set, with no textures until Resize is called
func NewRenderTargetSet(a Allocator) RenderTargetSet {
	return &renderTargetSet{
		mu:        &sync.Mutex{},
		allocator: a,
	}
}

func (s *renderTargetSet) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("resize %dx%d: %w", width, height, ErrInvalidDimensions)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.release()

	alloc := func(label string, f Format) (Texture, error) {
		tex, err := s.allocator.AllocateTexture(TextureDescriptor{
			Label:  label,
			Width:  width,
			Height: height,
			Format: f,
			Wrap:   WrapClampToEdge,
			Filter: FilterNearest,
		})
		if err != nil {
			return nil, fmt.Errorf("allocate %s %dx%d: %w", label, width, height, err)
		}
		return tex, nil
	}

	var err error
	for i := range s.channels {
		if s.channels[i], err = alloc(Channel(i).String(), FormatRGBAFloat); err != nil {
			s.release()
			return err
		}
	}
	if s.backBuffer, err = alloc("backbuffer", FormatRGBAFloat); err != nil {
		s.release()
		return err
	}
	if s.depth, err = alloc("depth", FormatDepth32Float); err != nil {
		s.release()
		return err
	}

	s.width, s.height = width, height
	s.generation++
	return nil
}

func (s *renderTargetSet) Size() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.width, s.height
}

func (s *renderTargetSet) Channel(c Channel) Texture {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c < 0 || int(c) >= ChannelCount {
		return nil
	}
	return s.channels[c]
}

func (s *renderTargetSet) BackBuffer() Texture {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.backBuffer
}

func (s *renderTargetSet) Depth() Texture {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.depth
}

func (s *renderTargetSet) Textures() []Texture {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.depth == nil {
		return nil
	}
	out := make([]Texture, 0, ChannelCount+2)
	out = append(out, s.channels[:]...)
	return append(out, s.backBuffer, s.depth)
}

func (s *renderTargetSet) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

func (s *renderTargetSet) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.release()
}

// release frees and clears every texture. Caller must hold the mutex.
func (s *renderTargetSet) release() {
	for i, tex := range s.channels {
		if tex != nil {
			tex.Release()
			s.channels[i] = nil
		}
	}
	if s.backBuffer != nil {
		s.backBuffer.Release()
		s.backBuffer = nil
	}
	if s.depth != nil {
		s.depth.Release()
		s.depth = nil
	}
	s.width, s.height = 0, 0
}
