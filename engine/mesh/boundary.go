package mesh

import "github.com/Carmen-Shannon/oxy-view/common"

// Edge is a line segment between two mesh-space points.
type Edge struct {
	From common.Vec3
	To   common.Vec3
}

// BoundaryEdges returns one segment per boundary half-edge, grouped by loop and ordered around each loop so
// consecutive segments share an endpoint. A closed mesh has none.
func (m *HalfEdgeMesh) BoundaryEdges() []Edge {
	visited := make(map[*HalfEdge]struct{})
	var edges []Edge
	for _, start := range m.HalfEdges {
		if !start.IsBoundary() {
			continue
		}
		if _, ok := visited[start]; ok {
			continue
		}
		for e := start; e != nil; e = e.next {
			if _, ok := visited[e]; ok {
				break
			}
			visited[e] = struct{}{}
			edges = append(edges, Edge{From: e.From().Position, To: e.to.Position})
		}
	}
	return edges
}

// BoundaryLines packs boundary edges as a line-list vertex buffer in the mesh vertex layout. The normal slot
// carries the edge direction.
func BoundaryLines(edges []Edge) ([]byte, int) {
	buf := make([]byte, 0, len(edges)*2*vertexStride)
	for _, e := range edges {
		dir := e.To.Sub(e.From).Normalized()
		buf = appendVertex(buf, e.From, dir)
		buf = appendVertex(buf, e.To, dir)
	}
	return buf, len(edges) * 2
}
