package mesh

import (
	"encoding/binary"
	"fmt"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-view/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cubeOBJ = `# unit cube
v -1 -1 -1
v  1 -1 -1
v  1  1 -1
v -1  1 -1
v -1 -1  1
v  1 -1  1
v  1  1  1
v -1  1  1
f 1 4 3 2
f 5 6 7 8
f 1 2 6 5
f 2 3 7 6
f 3 4 8 7
`

const cubeSide = "f 4 1 5 8\n"

const octahedronOBJ = `v 1 0 0
v -1 0 0
v 0 1 0
v 0 -1 0
v 0 0 1
v 0 0 -1
vn 0 0 1
f 1 3 5
f 3 2 5
f 2 4 5
f 4 1 5
f 3 1 6
f 2 3 6
f 4 2 6
f 1 4 6
`

// gridOBJ writes an n x n quad grid in the xz plane, skipping the quads listed in holes.
func gridOBJ(n int, holes map[[2]int]bool) string {
	var b strings.Builder
	for z := 0; z <= n; z++ {
		for x := 0; x <= n; x++ {
			fmt.Fprintf(&b, "v %d 0 %d\n", x, z)
		}
	}
	idx := func(x, z int) int { return z*(n+1) + x + 1 }
	for z := range n {
		for x := range n {
			if holes[[2]int{x, z}] {
				continue
			}
			fmt.Fprintf(&b, "f %d %d %d %d\n", idx(x, z), idx(x, z+1), idx(x+1, z+1), idx(x+1, z))
		}
	}
	return b.String()
}

func TestClosedMeshHasNoBoundary(t *testing.T) {
	for name, src := range map[string]string{"cube": cubeOBJ + cubeSide, "octahedron": octahedronOBJ} {
		m, err := LoadOBJ(strings.NewReader(src))
		require.NoError(t, err, name)
		assert.Empty(t, m.BoundaryEdges(), name)
		for _, e := range m.HalfEdges {
			assert.Same(t, e, e.Twin().Twin(), name)
			assert.Same(t, e, e.Next().Prev(), name)
		}
	}
}

func TestFourEdgeHole(t *testing.T) {
	m, err := LoadOBJ(strings.NewReader(cubeOBJ))
	require.NoError(t, err)

	edges := m.BoundaryEdges()
	require.Len(t, edges, 4)
	assertLoops(t, edges)
	for _, e := range edges {
		assert.Equal(t, float32(-1), e.From[0])
		assert.Equal(t, float32(-1), e.To[0])
	}
	assert.Equal(t, 4, m.Stats().BoundaryEdges)
}

func TestGridWithHole(t *testing.T) {
	m, err := LoadOBJ(strings.NewReader(gridOBJ(3, map[[2]int]bool{{1, 1}: true})))
	require.NoError(t, err)

	edges := m.BoundaryEdges()
	require.Len(t, edges, 16)
	assertLoops(t, edges)

	inner := 0
	for _, e := range edges {
		if e.From[0] > 0 && e.From[0] < 3 && e.From[2] > 0 && e.From[2] < 3 &&
			e.To[0] > 0 && e.To[0] < 3 && e.To[2] > 0 && e.To[2] < 3 {
			inner++
			assert.Equal(t, float32(1), e.From.Sub(e.To).Length())
		}
	}
	assert.Equal(t, 4, inner)
}

// assertLoops checks that consecutive segments share endpoints and every loop closes.
func assertLoops(t *testing.T, edges []Edge) {
	t.Helper()
	start := 0
	for i := range edges {
		last := i == len(edges)-1 || edges[i].To != edges[i+1].From
		if last {
			assert.Equal(t, edges[start].From, edges[i].To, "loop starting at %d is not closed", start)
			start = i + 1
		}
	}
}

func TestLoadOBJNormals(t *testing.T) {
	m, err := LoadOBJ(strings.NewReader("v 0 0 0\nv 1 0 0\nv 0 1 0\nvn 0 0 2\nf 1//1 2//1 -1//1\n"))
	require.NoError(t, err)
	require.Len(t, m.Faces, 1)
	assert.Equal(t, common.Vec3{0, 0, 1}, m.Faces[0].Normal)
	assert.Equal(t, common.Vec3{0, 0, 1}, m.Faces[0].Edge().CornerNormal())
	assert.Equal(t, 3, m.Stats().BoundaryEdges)
}

func TestLoadOBJErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want error
	}{
		{"empty", "v 0 0 0\n", ErrEmptyMesh},
		{"two corners", "v 0 0 0\nv 1 0 0\nf 1 2\n", ErrInvalidFace},
		{"zero index", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 0 1 2\n", ErrIndexOutOfRange},
		{"missing vertex", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 4\n", ErrIndexOutOfRange},
		{"repeated vertex", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 2\n", ErrInvalidFace},
		{"shared directed edge", "v 0 0 0\nv 1 0 0\nv 0 1 0\nv 0 0 1\nf 1 2 3\nf 1 2 4\n", ErrNonManifold},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadOBJ(strings.NewReader(tt.src))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestInterleaveQuad(t *testing.T) {
	m, err := LoadOBJ(strings.NewReader(gridOBJ(1, nil)))
	require.NoError(t, err)

	out := m.Interleave()
	assert.Equal(t, 4, out.VertexCount)
	assert.Equal(t, 6, out.IndexCount)
	assert.Len(t, out.Vertices, 4*vertexStride)
	assert.Equal(t, []uint32{0, 1, 2, 0, 2, 3}, indices(out))
}

func TestInterleaveConcurrentMatchesLayout(t *testing.T) {
	n := 100
	m, err := LoadOBJ(strings.NewReader(gridOBJ(n, nil)))
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(m.Faces), 2*minFacesPerTask)

	out := m.Interleave()
	require.Equal(t, n*n*4, out.VertexCount)
	require.Equal(t, n*n*6, out.IndexCount)

	idx := indices(out)
	for f := range n * n {
		base := uint32(4 * f)
		require.Equal(t, []uint32{base, base + 1, base + 2, base, base + 2, base + 3}, idx[f*6:f*6+6], "face %d", f)
	}
}

func TestBoundaryLines(t *testing.T) {
	buf, count := BoundaryLines([]Edge{{From: common.Vec3{0, 0, 0}, To: common.Vec3{2, 0, 0}}})
	assert.Equal(t, 2, count)
	assert.Len(t, buf, 2*vertexStride)
}

func indices(out Interleaved) []uint32 {
	idx := make([]uint32, out.IndexCount)
	for i := range idx {
		idx[i] = binary.LittleEndian.Uint32(out.Indices[i*4:])
	}
	return idx
}
