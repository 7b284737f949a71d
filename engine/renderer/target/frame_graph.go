package target

import (
	"fmt"
	"sync"
)

// G-buffer color attachment slots.
const (
	SlotBackBuffer = 0
	// SlotChannel0 is the first of ChannelCount consecutive channel slots.
	SlotChannel0 = 1
)

type frameGraphBuffers struct {
	mu *sync.Mutex

	gbuffer Framebuffer
	light   Framebuffer
	built   bool
}

// FrameGraphBuffers holds the two framebuffers of the deferred pipeline.
//
// The G-buffer target writes the back-buffer and the four channels simultaneously with depth test and write.
// The light target writes ChannelLight only and shares the G-buffer depth read-only, which bounds light volumes
// by the scene depth.
type FrameGraphBuffers interface {
	// Build tears down both framebuffers and rewires them from set, then validates each.
	//
	// Parameters:
	//   - set: an allocated RenderTargetSet
	//
	// Returns:
	//   - error: ErrNotAllocated, or a *FramebufferError naming the framebuffer and the failed status
	Build(set RenderTargetSet) error

	// GBuffer returns the geometry pass framebuffer.
	GBuffer() Framebuffer

	// Light returns the light accumulation framebuffer.
	Light() Framebuffer

	// Built reports whether the last Build succeeded.
	Built() bool
}

var _ FrameGraphBuffers = &frameGraphBuffers{}

// NewFrameGraphBuffers creates the two framebuffers with no attachments.
//
// Returns:
//   - FrameGraphBuffers: unbuilt framebuffers
func NewFrameGraphBuffers() FrameGraphBuffers {
	return &frameGraphBuffers{
		mu:      &sync.Mutex{},
		gbuffer: NewFramebuffer("gbuffer"),
		light:   NewFramebuffer("lightbuffer"),
	}
}

func (g *frameGraphBuffers) Build(set RenderTargetSet) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.built = false
	g.gbuffer.Reset()
	g.light.Reset()

	if set.Depth() == nil {
		return fmt.Errorf("build framebuffers: %w", ErrNotAllocated)
	}

	g.gbuffer.AttachColor(SlotBackBuffer, set.BackBuffer())
	slots := []int{SlotBackBuffer}
	for c := Channel(0); c < ChannelCount; c++ {
		slot := SlotChannel0 + int(c)
		g.gbuffer.AttachColor(slot, set.Channel(c))
		slots = append(slots, slot)
	}
	g.gbuffer.AttachDepth(set.Depth(), false)
	g.gbuffer.SetDrawBuffers(slots...)

	g.light.AttachColor(0, set.Channel(ChannelLight))
	g.light.AttachDepth(set.Depth(), true)
	g.light.SetDrawBuffers(0)

	if err := g.gbuffer.Validate(); err != nil {
		return err
	}
	if err := g.light.Validate(); err != nil {
		return err
	}
	g.built = true
	return nil
}

func (g *frameGraphBuffers) GBuffer() Framebuffer {
	return g.gbuffer
}

func (g *frameGraphBuffers) Light() Framebuffer {
	return g.light
}

func (g *frameGraphBuffers) Built() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.built
}
