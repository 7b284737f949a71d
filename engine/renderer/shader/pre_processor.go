// pre_processor.go resolves #include directives in WGSL source. WGSL has no include mechanism of its own, so
// shared declarations (the GlobalBuffer block, the G-buffer texture table, helper functions) are spliced in
// textually before the source is scanned and compiled.
//
// Includes are looked up first in the registry of built-in sources (WGSL struct definitions embedded by the
// GPU type packages), then relative to each include path in order. Every file is spliced at most once per
// shader, which also breaks include cycles.
package shader

import (
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"strings"
)

// includeRegex matches `#include "name"` on its own line.
var includeRegex = regexp.MustCompile(`^\s*#include\s+"([^"]+)"\s*$`)

// preProcessor is the implementation of the PreProcessor interface.
type preProcessor struct {
	fsys         fs.FS
	includePaths []string
	registry     map[string]string

	included []string
}

// PreProcessor expands #include directives in WGSL source.
type PreProcessor interface {
	// Process expands every #include in source, recursively.
	//
	// Parameters:
	//   - name: the name of source, used in error messages and to resolve sibling includes
	//   - source: the raw WGSL source
	//
	// Returns:
	//   - string: the expanded source
	//   - error: a wrapped ErrIncludeNotFound for an unresolved include
	Process(name, source string) (string, error)

	// Included returns the names of the files spliced in by the last Process call, in order.
	//
	// Returns:
	//   - []string: included file names
	Included() []string
}

var _ PreProcessor = &preProcessor{}

// NewPreProcessor creates a PreProcessor that reads includes from fsys.
//
// Parameters:
//   - fsys: the file system holding shader sources
//   - includePaths: directories searched in order for each include
//   - registry: built-in include sources keyed by include name, checked before fsys
//
// Returns:
//   - PreProcessor: the pre-processor
func NewPreProcessor(fsys fs.FS, includePaths []string, registry map[string]string) PreProcessor {
	return &preProcessor{
		fsys:         fsys,
		includePaths: includePaths,
		registry:     registry,
	}
}

func (p *preProcessor) Process(name, source string) (string, error) {
	p.included = p.included[:0]
	seen := map[string]bool{name: true}
	return p.expand(name, source, seen)
}

func (p *preProcessor) Included() []string {
	return p.included
}

func (p *preProcessor) expand(name, source string, seen map[string]bool) (string, error) {
	lines := strings.Split(source, "\n")
	out := make([]string, 0, len(lines))

	for i, line := range lines {
		m := includeRegex.FindStringSubmatch(line)
		if m == nil {
			out = append(out, line)
			continue
		}

		resolved, body, err := p.resolve(path.Dir(name), m[1])
		if err != nil {
			return "", fmt.Errorf("%s:%d: %w", name, i+1, err)
		}
		if seen[resolved] {
			continue
		}
		seen[resolved] = true
		p.included = append(p.included, resolved)

		expanded, err := p.expand(resolved, body, seen)
		if err != nil {
			return "", err
		}
		out = append(out, expanded)
	}
	return strings.Join(out, "\n"), nil
}

// resolve finds an include by name in the registry, next to the including file, then along the include paths.
func (p *preProcessor) resolve(dir, name string) (string, string, error) {
	if src, ok := p.registry[name]; ok {
		return name, src, nil
	}
	if p.fsys != nil {
		candidates := make([]string, 0, len(p.includePaths)+1)
		candidates = append(candidates, path.Join(dir, name))
		for _, inc := range p.includePaths {
			candidates = append(candidates, path.Join(inc, name))
		}
		for _, c := range candidates {
			data, err := fs.ReadFile(p.fsys, c)
			if err == nil {
				return c, string(data), nil
			}
		}
	}
	return "", "", fmt.Errorf("%q: %w", name, ErrIncludeNotFound)
}
