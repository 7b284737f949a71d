package renderer

import "github.com/Carmen-Shannon/oxy-view/common"

// ViewState is the per-frame camera data a DrawGroup commits against.
type ViewState struct {
	View       common.Mat4
	PrevView   common.Mat4
	Projection common.Mat4
}

// DrawGroup is a set of drawables that share one mesh and one pipeline. It is implemented by instance
// groups and point light groups.
type DrawGroup interface {
	// PrepareMesh takes shared ownership of mesh for the group's draws, replacing any previous mesh.
	//
	// Parameters:
	//   - mesh: the uploaded mesh, or nil to clear
	PrepareMesh(mesh Mesh)

	// Commit uploads the per-drawable data for this frame.
	//
	// Parameters:
	//   - r: the renderer used for buffer allocation and upload
	//   - view: this frame's camera matrices
	//
	// Returns:
	//   - error: a buffer allocation or upload failure
	Commit(r Renderer, view ViewState) error

	// Draw records one instanced draw covering everything committed.
	//
	// Parameters:
	//   - r: the renderer, inside a pass
	//
	// Returns:
	//   - error: a draw failure
	Draw(r Renderer) error

	// Count returns the number of live drawables.
	Count() int
}
