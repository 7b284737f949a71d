// wgsl_parser.go scans pre-processed WGSL source for the information the renderer needs without a full WGSL
// front end: entry point names and the @group/@binding resource declarations, each classified by kind.
package shader

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// BindingKind classifies a resource declaration.
type BindingKind int

const (
	BindingUniform BindingKind = iota
	BindingStorage
	BindingTexture
	BindingDepthTexture
	BindingSampler
)

func (k BindingKind) String() string {
	switch k {
	case BindingUniform:
		return "uniform"
	case BindingStorage:
		return "storage"
	case BindingTexture:
		return "texture"
	case BindingDepthTexture:
		return "depth-texture"
	case BindingSampler:
		return "sampler"
	default:
		return "unknown"
	}
}

// Binding is one @group/@binding declaration.
type Binding struct {
	Group   int
	Binding int
	Name    string
	Type    string
	Kind    BindingKind
}

var (
	// vertexEntryRegex matches the function name following a @vertex attribute.
	vertexEntryRegex = regexp.MustCompile(`(?s)@vertex\b.*?\bfn\s+(\w+)`)

	// fragmentEntryRegex matches the function name following a @fragment attribute.
	fragmentEntryRegex = regexp.MustCompile(`(?s)@fragment\b.*?\bfn\s+(\w+)`)

	// bindGroupDeclRegex captures group, binding, optional address space, variable name and type.
	bindGroupDeclRegex = regexp.MustCompile(`@group\((\d+)\)\s*@binding\((\d+)\)\s*var(?:<([^>]*)>)?\s+(\w+)\s*:\s*([^;]+?)\s*;`)

	// lineCommentRegex strips // comments before scanning.
	lineCommentRegex = regexp.MustCompile(`//[^\n]*`)
)

// parseEntryPoint returns the entry point for shaderType, or "" if none is declared.
func parseEntryPoint(source string, shaderType ShaderType) string {
	re := vertexEntryRegex
	if shaderType == ShaderTypeFragment {
		re = fragmentEntryRegex
	}
	m := re.FindStringSubmatch(source)
	if m == nil {
		return ""
	}
	return m[1]
}

// parseBindings returns every resource declaration in source ordered by group then binding.
func parseBindings(source string) []Binding {
	source = lineCommentRegex.ReplaceAllString(source, "")
	matches := bindGroupDeclRegex.FindAllStringSubmatch(source, -1)
	out := make([]Binding, 0, len(matches))
	for _, m := range matches {
		group, _ := strconv.Atoi(m[1])
		binding, _ := strconv.Atoi(m[2])
		out = append(out, Binding{
			Group:   group,
			Binding: binding,
			Name:    m[4],
			Type:    strings.TrimSpace(m[5]),
			Kind:    classify(m[3], m[5]),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Group != out[j].Group {
			return out[i].Group < out[j].Group
		}
		return out[i].Binding < out[j].Binding
	})
	return out
}

// classify maps an address space and type to a BindingKind.
func classify(addressSpace, typeName string) BindingKind {
	space := strings.TrimSpace(strings.SplitN(addressSpace, ",", 2)[0])
	switch space {
	case "uniform":
		return BindingUniform
	case "storage":
		return BindingStorage
	}
	t := strings.TrimSpace(typeName)
	switch {
	case strings.HasPrefix(t, "texture_depth"):
		return BindingDepthTexture
	case strings.HasPrefix(t, "texture_"):
		return BindingTexture
	default:
		return BindingSampler
	}
}
