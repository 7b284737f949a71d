package mesh

import "errors"

var (
	// ErrEmptyMesh is returned when a source defines no faces.
	ErrEmptyMesh = errors.New("mesh: no faces")

	// ErrInvalidFace is returned for a face with fewer than three corners or a repeated vertex.
	ErrInvalidFace = errors.New("mesh: invalid face")

	// ErrIndexOutOfRange is returned when a face references a vertex or normal that does not exist.
	ErrIndexOutOfRange = errors.New("mesh: index out of range")

	// ErrNonManifold is returned when two faces traverse the same directed edge.
	ErrNonManifold = errors.New("mesh: non-manifold edge")
)
