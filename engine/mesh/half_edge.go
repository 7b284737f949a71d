// Package mesh holds the half-edge representation of loaded models.
package mesh

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-view/common"
)

// Vertex is a mesh vertex. Normal is the area-weighted average of the adjacent face normals.
type Vertex struct {
	Index    int
	Position common.Vec3
	Normal   common.Vec3

	edge *HalfEdge
}

// Edge returns one outgoing half-edge of v, or nil for an isolated vertex.
func (v *Vertex) Edge() *HalfEdge { return v.edge }

// Face is a polygon bounded by a cycle of half-edges.
type Face struct {
	Index  int
	Normal common.Vec3

	edge  *HalfEdge
	sides int
}

// Edge returns the first half-edge of the face.
func (f *Face) Edge() *HalfEdge { return f.edge }

// Sides returns the number of corners of the face.
func (f *Face) Sides() int { return f.sides }

// HalfEdge is one directed side of an edge. Interior half-edges belong to a face. Boundary half-edges have no face
// and run along the rim of a hole.
type HalfEdge struct {
	to   *Vertex
	next *HalfEdge
	prev *HalfEdge
	twin *HalfEdge
	face *Face

	// normal is the corner normal at the origin vertex, when the source provided one.
	normal    common.Vec3
	hasNormal bool
}

// To returns the vertex the half-edge points at.
func (e *HalfEdge) To() *Vertex { return e.to }

// From returns the vertex the half-edge starts at.
func (e *HalfEdge) From() *Vertex { return e.twin.to }

// Next returns the following half-edge around the same face or boundary loop.
func (e *HalfEdge) Next() *HalfEdge { return e.next }

// Prev returns the preceding half-edge around the same face or boundary loop.
func (e *HalfEdge) Prev() *HalfEdge { return e.prev }

// Twin returns the opposite half-edge.
func (e *HalfEdge) Twin() *HalfEdge { return e.twin }

// Face returns the owning face, or nil for a boundary half-edge.
func (e *HalfEdge) Face() *Face { return e.face }

// IsBoundary reports whether e has no owning face.
func (e *HalfEdge) IsBoundary() bool { return e.face == nil }

// CornerNormal returns the normal at the origin of e: the source normal when given, else the vertex normal.
func (e *HalfEdge) CornerNormal() common.Vec3 {
	if e.hasNormal {
		return e.normal
	}
	return e.From().Normal
}

// HalfEdgeMesh is a polygon mesh with full adjacency.
type HalfEdgeMesh struct {
	Vertices  []*Vertex
	Faces     []*Face
	HalfEdges []*HalfEdge
}

// Stats summarizes a mesh for load diagnostics.
type Stats struct {
	Vertices      int
	Faces         int
	Triangles     int
	HalfEdges     int
	BoundaryEdges int
}

// Stats returns element counts of m.
func (m *HalfEdgeMesh) Stats() Stats {
	s := Stats{
		Vertices:  len(m.Vertices),
		Faces:     len(m.Faces),
		HalfEdges: len(m.HalfEdges),
	}
	for _, f := range m.Faces {
		s.Triangles += f.sides - 2
	}
	for _, e := range m.HalfEdges {
		if e.IsBoundary() {
			s.BoundaryEdges++
		}
	}
	return s
}

// Polygon is one face of a builder input: vertex indices in winding order, and optional per-corner normal indices.
type Polygon struct {
	Vertices []int
	Normals  []int
}

type edgeKey struct{ from, to int }

// Build creates a half-edge mesh from positions, optional normals and polygons. Every directed edge may be
// used by at most one polygon. Unpaired edges receive boundary twins linked into loops.
//
// Parameters:
//   - positions: vertex positions
//   - normals: normal table referenced by Polygon.Normals, may be nil
//   - polygons: the faces
//
// Returns:
//   - *HalfEdgeMesh: the mesh
//   - error: ErrEmptyMesh, ErrInvalidFace, ErrIndexOutOfRange or ErrNonManifold, wrapped with the face index
func Build(positions []common.Vec3, normals []common.Vec3, polygons []Polygon) (*HalfEdgeMesh, error) {
	if len(polygons) == 0 {
		return nil, ErrEmptyMesh
	}

	m := &HalfEdgeMesh{
		Vertices: make([]*Vertex, len(positions)),
		Faces:    make([]*Face, 0, len(polygons)),
	}
	for i, p := range positions {
		m.Vertices[i] = &Vertex{Index: i, Position: p}
	}

	edges := make(map[edgeKey]*HalfEdge)
	for fi, poly := range polygons {
		if err := validatePolygon(poly, len(positions), len(normals)); err != nil {
			return nil, fmt.Errorf("face %d: %w", fi, err)
		}

		face := &Face{Index: fi, sides: len(poly.Vertices)}
		loop := make([]*HalfEdge, len(poly.Vertices))
		for i, from := range poly.Vertices {
			to := poly.Vertices[(i+1)%len(poly.Vertices)]
			key := edgeKey{from, to}
			if _, dup := edges[key]; dup {
				return nil, fmt.Errorf("face %d edge %d->%d: %w", fi, from, to, ErrNonManifold)
			}
			e := &HalfEdge{to: m.Vertices[to], face: face}
			if poly.Normals != nil {
				e.normal = normals[poly.Normals[i]].Normalized()
				e.hasNormal = true
			}
			edges[key] = e
			loop[i] = e
			if m.Vertices[from].edge == nil {
				m.Vertices[from].edge = e
			}
		}
		for i, e := range loop {
			e.next = loop[(i+1)%len(loop)]
			e.prev = loop[(i+len(loop)-1)%len(loop)]
			m.HalfEdges = append(m.HalfEdges, e)
		}
		face.edge = loop[0]
		m.Faces = append(m.Faces, face)
	}

	// Pair twins, creating boundary half-edges for unpaired sides.
	boundaryFrom := make(map[int]*HalfEdge)
	var boundary []*HalfEdge
	for _, e := range m.HalfEdges {
		if e.twin != nil {
			continue
		}
		key := edgeKey{e.prev.to.Index, e.to.Index}
		if twin, ok := edges[edgeKey{key.to, key.from}]; ok {
			e.twin, twin.twin = twin, e
			continue
		}
		b := &HalfEdge{to: m.Vertices[key.from], twin: e}
		e.twin = b
		boundaryFrom[key.to] = b
		boundary = append(boundary, b)
	}
	for _, b := range boundary {
		next, ok := boundaryFrom[b.to.Index]
		if !ok {
			return nil, fmt.Errorf("boundary at vertex %d: %w", b.to.Index, ErrNonManifold)
		}
		b.next = next
		next.prev = b
	}
	m.HalfEdges = append(m.HalfEdges, boundary...)

	m.computeNormals()
	return m, nil
}

func validatePolygon(poly Polygon, vertexCount, normalCount int) error {
	if len(poly.Vertices) < 3 {
		return ErrInvalidFace
	}
	if poly.Normals != nil && len(poly.Normals) != len(poly.Vertices) {
		return ErrInvalidFace
	}
	seen := make(map[int]struct{}, len(poly.Vertices))
	for i, v := range poly.Vertices {
		if v < 0 || v >= vertexCount {
			return ErrIndexOutOfRange
		}
		if _, dup := seen[v]; dup {
			return ErrInvalidFace
		}
		seen[v] = struct{}{}
		if poly.Normals != nil && (poly.Normals[i] < 0 || poly.Normals[i] >= normalCount) {
			return ErrIndexOutOfRange
		}
	}
	return nil
}

// computeNormals sets face normals with Newell's method and accumulates them into vertex normals.
func (m *HalfEdgeMesh) computeNormals() {
	for _, f := range m.Faces {
		var n common.Vec3
		e := f.edge
		for range f.sides {
			a, b := e.From().Position, e.to.Position
			n[0] += (a[1] - b[1]) * (a[2] + b[2])
			n[1] += (a[2] - b[2]) * (a[0] + b[0])
			n[2] += (a[0] - b[0]) * (a[1] + b[1])
			e = e.next
		}
		f.Normal = n.Normalized()

		e = f.edge
		for range f.sides {
			v := e.From()
			v.Normal = v.Normal.Add(n)
			e = e.next
		}
	}
	for _, v := range m.Vertices {
		v.Normal = v.Normal.Normalized()
	}
}
