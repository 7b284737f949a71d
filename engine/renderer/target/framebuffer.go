package target

import "sync"

// MaxColorAttachments is the number of color attachment slots a framebuffer exposes.
const MaxColorAttachments = 8

// Status is the completeness state of a framebuffer.
type Status int

const (
	// StatusComplete means the framebuffer can be rendered to.
	StatusComplete Status = iota
	// StatusIncompleteAttachment means an attached texture is released or lacks a usable size or format.
	StatusIncompleteAttachment
	// StatusIncompleteMissingAttachment means nothing is attached.
	StatusIncompleteMissingAttachment
	// StatusIncompleteDrawBuffer means a draw buffer names an empty slot or repeats one.
	StatusIncompleteDrawBuffer
	// StatusIncompleteReadBuffer means the read buffer names an empty or out of range slot.
	StatusIncompleteReadBuffer
	// StatusUnsupported means a depth texture is bound as color or a color texture as depth.
	StatusUnsupported
	// StatusIncompleteDimensions means the attachments are not all the same size.
	StatusIncompleteDimensions
)

func (s Status) String() string {
	switch s {
	case StatusComplete:
		return "complete"
	case StatusIncompleteAttachment:
		return "incomplete attachment"
	case StatusIncompleteMissingAttachment:
		return "missing attachment"
	case StatusIncompleteDrawBuffer:
		return "incomplete draw buffer"
	case StatusIncompleteReadBuffer:
		return "incomplete read buffer"
	case StatusUnsupported:
		return "unsupported"
	case StatusIncompleteDimensions:
		return "incomplete dimensions"
	default:
		return "unknown"
	}
}

// noReadBuffer marks a framebuffer without a read buffer.
const noReadBuffer = -1

type framebuffer struct {
	mu *sync.Mutex

	label         string
	colors        [MaxColorAttachments]Texture
	depth         Texture
	depthReadOnly bool
	drawBuffers   []int
	readBuffer    int
}

// Framebuffer is a set of color attachments plus an optional depth attachment that a render pass draws into.
type Framebuffer interface {
	// Label returns the framebuffer's debug label.
	Label() string

	// AttachColor binds tex to color slot.
	//
	// Parameters:
	//   - slot: color attachment index in [0, MaxColorAttachments)
	//   - tex: the texture, or nil to clear the slot
	AttachColor(slot int, tex Texture)

	// AttachDepth binds the depth attachment.
	//
	// Parameters:
	//   - tex: the depth texture, or nil to clear it
	//   - readOnly: true when passes on this framebuffer test against depth without writing it
	AttachDepth(tex Texture, readOnly bool)

	// SetDrawBuffers selects which color slots are written by draws.
	//
	// Parameters:
	//   - slots: the color slots, in output location order
	SetDrawBuffers(slots ...int)

	// SetReadBuffer selects the color slot used for read-back, or -1 for none.
	//
	// Parameters:
	//   - slot: the color slot
	SetReadBuffer(slot int)

	// ColorAttachments returns the textures bound to the draw buffers, in draw-buffer order.
	//
	// Returns:
	//   - []Texture: the draw targets
	ColorAttachments() []Texture

	// DepthAttachment returns the depth texture and whether it is read-only.
	//
	// Returns:
	//   - Texture: the depth texture or nil
	//   - bool: true when the depth attachment is read-only
	DepthAttachment() (Texture, bool)

	// Status checks the framebuffer for completeness.
	//
	// Returns:
	//   - Status: StatusComplete or the first failure found
	Status() Status

	// Validate returns a *FramebufferError when Status is not StatusComplete.
	//
	// Returns:
	//   - error: nil for a complete framebuffer
	Validate() error

	// Reset clears every attachment and buffer selection.
	Reset()
}

var _ Framebuffer = &framebuffer{}

// NewFramebuffer creates an empty framebuffer.
//
// Parameters:
//   - label: debug label used in errors and by the backend
//
// Returns:
//   - Framebuffer: the framebuffer, with no attachments
func NewFramebuffer(label string) Framebuffer {
	return &framebuffer{
		mu:         &sync.Mutex{},
		label:      label,
		readBuffer: noReadBuffer,
	}
}

func (f *framebuffer) Label() string {
	return f.label
}

func (f *framebuffer) AttachColor(slot int, tex Texture) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if slot < 0 || slot >= MaxColorAttachments {
		return
	}
	f.colors[slot] = tex
}

func (f *framebuffer) AttachDepth(tex Texture, readOnly bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.depth = tex
	f.depthReadOnly = readOnly
}

func (f *framebuffer) SetDrawBuffers(slots ...int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.drawBuffers = append(f.drawBuffers[:0], slots...)
}

func (f *framebuffer) SetReadBuffer(slot int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.readBuffer = slot
}

func (f *framebuffer) ColorAttachments() []Texture {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Texture, 0, len(f.drawBuffers))
	for _, slot := range f.drawBuffers {
		if slot >= 0 && slot < MaxColorAttachments {
			out = append(out, f.colors[slot])
		}
	}
	return out
}

func (f *framebuffer) DepthAttachment() (Texture, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.depth, f.depthReadOnly
}

func (f *framebuffer) Status() Status {
	f.mu.Lock()
	defer f.mu.Unlock()

	attached := make([]Texture, 0, MaxColorAttachments+1)
	for _, tex := range f.colors {
		if tex == nil {
			continue
		}
		if incomplete(tex) {
			return StatusIncompleteAttachment
		}
		if tex.Descriptor().Format.IsDepth() {
			return StatusUnsupported
		}
		attached = append(attached, tex)
	}
	if f.depth != nil {
		if incomplete(f.depth) {
			return StatusIncompleteAttachment
		}
		if !f.depth.Descriptor().Format.IsDepth() {
			return StatusUnsupported
		}
		attached = append(attached, f.depth)
	}
	if len(attached) == 0 {
		return StatusIncompleteMissingAttachment
	}

	seen := make(map[int]bool, len(f.drawBuffers))
	for _, slot := range f.drawBuffers {
		if slot < 0 || slot >= MaxColorAttachments || f.colors[slot] == nil || seen[slot] {
			return StatusIncompleteDrawBuffer
		}
		seen[slot] = true
	}
	if f.readBuffer != noReadBuffer {
		if f.readBuffer < 0 || f.readBuffer >= MaxColorAttachments || f.colors[f.readBuffer] == nil {
			return StatusIncompleteReadBuffer
		}
	}

	first := attached[0].Descriptor()
	for _, tex := range attached[1:] {
		d := tex.Descriptor()
		if d.Width != first.Width || d.Height != first.Height {
			return StatusIncompleteDimensions
		}
	}
	return StatusComplete
}

func (f *framebuffer) Validate() error {
	if s := f.Status(); s != StatusComplete {
		return &FramebufferError{Framebuffer: f.label, Status: s}
	}
	return nil
}

func (f *framebuffer) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.colors = [MaxColorAttachments]Texture{}
	f.depth = nil
	f.depthReadOnly = false
	f.drawBuffers = f.drawBuffers[:0]
	f.readBuffer = noReadBuffer
}

// incomplete reports whether tex cannot back an attachment.
func incomplete(tex Texture) bool {
	d := tex.Descriptor()
	return tex.Released() || d.Width <= 0 || d.Height <= 0 || d.Format == FormatUndefined
}
