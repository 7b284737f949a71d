package mesh

import (
	"encoding/binary"
	"math"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-view/common"
)

// vertexStride is position vec3 + normal vec3 as float32.
const vertexStride = 24

// minFacesPerTask keeps small meshes on a single task.
const minFacesPerTask = 4096

var (
	packPool     worker.DynamicWorkerPool
	packPoolOnce sync.Once
)

func pool() worker.DynamicWorkerPool {
	packPoolOnce.Do(func() {
		packPool = worker.NewDynamicWorkerPool(runtime.NumCPU(), 256, 1*time.Second)
	})
	return packPool
}

// Interleaved is GPU-ready geometry: one vertex per face corner, fan-triangulated uint32 indices.
type Interleaved struct {
	Vertices    []byte
	VertexCount int
	Indices     []byte
	IndexCount  int
}

// Interleave packs m into position/normal vertices and triangle indices. Large meshes are split into chunks
// packed concurrently on a shared worker pool. Interleave returns once every chunk is written.
func (m *HalfEdgeMesh) Interleave() Interleaved {
	// Prefix sums give every face a fixed output range, so chunks write disjoint slices.
	cornerStart := make([]int, len(m.Faces)+1)
	triStart := make([]int, len(m.Faces)+1)
	for i, f := range m.Faces {
		cornerStart[i+1] = cornerStart[i] + f.sides
		triStart[i+1] = triStart[i] + f.sides - 2
	}

	out := Interleaved{
		VertexCount: cornerStart[len(m.Faces)],
		IndexCount:  triStart[len(m.Faces)] * 3,
	}
	out.Vertices = make([]byte, out.VertexCount*vertexStride)
	out.Indices = make([]byte, out.IndexCount*4)

	pack := func(lo, hi int) {
		for fi := lo; fi < hi; fi++ {
			f := m.Faces[fi]
			base := cornerStart[fi]
			e := f.edge
			for c := range f.sides {
				writeVertex(out.Vertices[(base+c)*vertexStride:], e.From().Position, e.CornerNormal())
				e = e.next
			}
			idx := triStart[fi] * 3 * 4
			for t := 1; t < f.sides-1; t++ {
				binary.LittleEndian.PutUint32(out.Indices[idx:], uint32(base))
				binary.LittleEndian.PutUint32(out.Indices[idx+4:], uint32(base+t))
				binary.LittleEndian.PutUint32(out.Indices[idx+8:], uint32(base+t+1))
				idx += 12
			}
		}
	}

	if len(m.Faces) < 2*minFacesPerTask {
		pack(0, len(m.Faces))
		return out
	}

	chunk := max(minFacesPerTask, (len(m.Faces)+runtime.NumCPU()-1)/runtime.NumCPU())
	p := pool()
	var wg sync.WaitGroup
	taskID := 0
	for lo := 0; lo < len(m.Faces); lo += chunk {
		hi := min(lo+chunk, len(m.Faces))
		wg.Add(1)
		id := taskID
		taskID++
		p.SubmitTask(worker.Task{
			ID: id,
			Do: func() (any, error) {
				defer wg.Done()
				pack(lo, hi)
				return nil, nil
			},
		})
	}
	wg.Wait()
	return out
}

func writeVertex(dst []byte, pos, normal common.Vec3) {
	for i := range 3 {
		binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(pos[i]))
		binary.LittleEndian.PutUint32(dst[12+i*4:], math.Float32bits(normal[i]))
	}
}

func appendVertex(dst []byte, pos, normal common.Vec3) []byte {
	var v [vertexStride]byte
	writeVertex(v[:], pos, normal)
	return append(dst, v[:]...)
}
