package mesh

import (
	"bufio"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/Carmen-Shannon/oxy-view/common"
)

// LoadOBJ parses Wavefront OBJ geometry: v, vn and f records. Texture coordinates, groups and materials are
// ignored. Face indices may be negative (relative to the last record).
//
// Parameters:
//   - r: the OBJ source
//
// Returns:
//   - *HalfEdgeMesh: the mesh
//   - error: a parse error with its line number, or a Build error
func LoadOBJ(r io.Reader) (*HalfEdgeMesh, error) {
	var (
		positions []common.Vec3
		normals   []common.Vec3
		polygons  []Polygon
	)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}

		switch fields[0] {
		case "v":
			v, err := parseVec3(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("obj line %d: %w", line, err)
			}
			positions = append(positions, v)
		case "vn":
			v, err := parseVec3(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("obj line %d: %w", line, err)
			}
			normals = append(normals, v)
		case "f":
			poly, err := parseFace(fields[1:], len(positions), len(normals))
			if err != nil {
				return nil, fmt.Errorf("obj line %d: %w", line, err)
			}
			polygons = append(polygons, poly)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read obj: %w", err)
	}

	return Build(positions, normals, polygons)
}

// Open loads an OBJ file from fsys.
func Open(fsys fs.FS, name string) (*HalfEdgeMesh, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := LoadOBJ(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return m, nil
}

// OpenFile loads an OBJ file from the operating system path.
func OpenFile(path string) (*HalfEdgeMesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := LoadOBJ(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

func parseVec3(fields []string) (common.Vec3, error) {
	var v common.Vec3
	if len(fields) < 3 {
		return v, fmt.Errorf("expected 3 components, got %d", len(fields))
	}
	for i := range 3 {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return v, err
		}
		v[i] = float32(f)
	}
	return v, nil
}

// parseFace parses f v1[/vt1][/vn1] v2[/vt2][/vn2] ... Normals are kept only when every corner has one.
func parseFace(fields []string, positionCount, normalCount int) (Polygon, error) {
	if len(fields) < 3 {
		return Polygon{}, ErrInvalidFace
	}

	poly := Polygon{Vertices: make([]int, len(fields))}
	normals := make([]int, 0, len(fields))
	for i, f := range fields {
		parts := strings.Split(f, "/")
		v, err := resolveIndex(parts[0], positionCount)
		if err != nil {
			return Polygon{}, err
		}
		poly.Vertices[i] = v

		if len(parts) == 3 && parts[2] != "" {
			n, err := resolveIndex(parts[2], normalCount)
			if err != nil {
				return Polygon{}, err
			}
			normals = append(normals, n)
		}
	}
	if len(normals) == len(fields) {
		poly.Normals = normals
	}
	return poly, nil
}

// resolveIndex converts a 1-based or negative relative OBJ index to a 0-based index.
func resolveIndex(s string, count int) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	switch {
	case i > 0:
		i--
	case i < 0:
		i += count
	default:
		return 0, ErrIndexOutOfRange
	}
	if i < 0 || i >= count {
		return 0, ErrIndexOutOfRange
	}
	return i, nil
}
