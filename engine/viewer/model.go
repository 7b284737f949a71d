package viewer

import (
	"fmt"
	"time"

	"github.com/Carmen-Shannon/oxy-view/engine/logging"
	"github.com/Carmen-Shannon/oxy-view/engine/mesh"
	"github.com/Carmen-Shannon/oxy-view/engine/renderer"
)

func (v *viewer) LoadModel(path string) error {
	release := v.pause()
	defer release()

	// Retire the old geometry first so nothing references it while the new one is built.
	v.mu.Lock()
	v.models.SetMesh(nil)
	v.boundaries.SetMesh(nil)
	v.edges = nil
	v.stats = Stats{Path: path}
	v.mu.Unlock()

	stats := Stats{Path: path}

	start := time.Now()
	m, err := v.openMesh(path)
	if err != nil {
		return fmt.Errorf("load model %s: %w", path, err)
	}
	stats.ParseTime = time.Since(start)
	stats.Mesh = m.Stats()

	start = time.Now()
	data := m.Interleave()
	stats.InterleaveTime = time.Since(start)

	start = time.Now()
	edges := m.BoundaryEdges()
	lines, lineCount := mesh.BoundaryLines(edges)
	stats.BoundaryTime = time.Since(start)

	v.mu.Lock()
	defer v.mu.Unlock()

	start = time.Now()
	gpu, err := v.uploadMesh("model", data)
	if err != nil {
		return err
	}
	var gpuLines renderer.Mesh
	if lineCount > 0 {
		gpuLines, err = v.renderer.CreateMesh("boundaries", lines, lineCount, nil, 0)
		if err != nil {
			gpu.Release()
			return fmt.Errorf("upload boundaries: %w", err)
		}
	}
	stats.UploadTime = time.Since(start)

	// Install the model and everything derived from it together.
	v.models.SetMesh(gpu)
	v.boundaries.SetMesh(gpuLines)
	stats.Instances = v.models.Count()
	stats.PolygonsPerFrame = stats.Mesh.Faces * stats.Instances
	v.edges = edges
	v.stats = stats

	logging.Info("model loaded",
		"path", path,
		"vertices", stats.Mesh.Vertices,
		"faces", stats.Mesh.Faces,
		"half_edges", stats.Mesh.HalfEdges,
		"boundary_edges", len(edges),
		"polygons_per_frame", stats.PolygonsPerFrame,
		"parse", stats.ParseTime,
		"interleave", stats.InterleaveTime,
		"boundary", stats.BoundaryTime,
		"upload", stats.UploadTime,
	)

	if v.watcher != nil && v.cfg.Watch.Enabled && onDisk(path) {
		if err := v.watcher.Watch(path); err != nil {
			logging.Warn("watch model", "path", path, "err", err)
		}
	}
	return nil
}

func (v *viewer) OpenModel() error {
	if v.dialog == nil {
		return nil
	}
	// The dialog blocks, so the scene stays paused until it returns or is cancelled.
	release := v.pause()
	defer release()

	path, err := v.dialog.OpenFile()
	if err != nil {
		return err
	}
	if path == "" {
		return nil
	}
	return v.LoadModel(path)
}
