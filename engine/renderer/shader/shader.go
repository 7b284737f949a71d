package shader

import (
	"fmt"
	"io/fs"
	"path"
)

// ShaderType identifies the pipeline stage a shader module provides.
type ShaderType int

const (
	// ShaderTypeVertex is the vertex stage.
	ShaderTypeVertex ShaderType = iota

	// ShaderTypeFragment is the fragment stage.
	ShaderTypeFragment
)

func (t ShaderType) String() string {
	if t == ShaderTypeFragment {
		return "fragment"
	}
	return "vertex"
}

// shader is the implementation of the Shader interface.
type shader struct {
	key        string
	path       string
	source     string
	shaderType ShaderType
	entryPoint string
	bindings   []Binding
	included   []string

	includePaths []string
	registry     map[string]string
}

// Shader is a pre-processed WGSL module for one pipeline stage, with its entry point and resource declarations.
type Shader interface {
	// Key retrieves the unique identifier for this shader.
	//
	// Returns:
	//   - string: the shader's unique key
	Key() string

	// Source retrieves the WGSL source with every include expanded.
	//
	// Returns:
	//   - string: the expanded WGSL source
	Source() string

	// ShaderType returns the stage this shader provides.
	//
	// Returns:
	//   - ShaderType: vertex or fragment
	ShaderType() ShaderType

	// EntryPoint returns the entry point function name.
	//
	// Returns:
	//   - string: the entry point name
	EntryPoint() string

	// Bindings returns every @group/@binding declaration, ordered by group then binding.
	//
	// Returns:
	//   - []Binding: the declarations
	Bindings() []Binding

	// Binding finds a declaration by variable name.
	//
	// Parameters:
	//   - name: the WGSL variable name
	//
	// Returns:
	//   - Binding: the declaration
	//   - bool: false when the shader does not declare name
	Binding(name string) (Binding, bool)

	// Included returns the include files spliced into the source.
	//
	// Returns:
	//   - []string: included file names
	Included() []string

	// BindTexture checks that the shader declares the texture name at texture unit unit.
	//
	// Parameters:
	//   - name: the texture variable name
	//   - unit: the expected binding index
	//
	// Returns:
	//   - error: ErrUnknownBinding or ErrBindingMismatch, wrapped with the shader key
	BindTexture(name string, unit int) error

	// BindBlock checks that the shader declares a uniform block of struct type block at binding.
	//
	// Parameters:
	//   - block: the WGSL struct type of the uniform block
	//   - binding: the expected binding index
	//
	// Returns:
	//   - error: ErrUnknownBinding or ErrBindingMismatch, wrapped with the shader key
	BindBlock(block string, binding int) error
}

var _ Shader = &shader{}

// NewShader loads sourcePath from fsys, expands its includes and scans it.
//
// Parameters:
//   - fsys: the file system holding the source and its includes
//   - sourcePath: the path of the WGSL file in fsys
//   - shaderType: the stage the module provides
//   - options: variadic list of ShaderBuilderOption functions
//
// Returns:
//   - Shader: the loaded shader
//   - error: a read, include or entry point error
func NewShader(fsys fs.FS, sourcePath string, shaderType ShaderType, options ...ShaderBuilderOption) (Shader, error) {
	data, err := fs.ReadFile(fsys, sourcePath)
	if err != nil {
		return nil, fmt.Errorf("read shader %s: %w", sourcePath, err)
	}
	s := &shader{
		key:        sourcePath,
		path:       sourcePath,
		shaderType: shaderType,
	}
	for _, opt := range options {
		opt(s)
	}
	if err := s.parse(fsys, string(data)); err != nil {
		return nil, err
	}
	return s, nil
}

// NewShaderFromSource builds a shader from in-memory source. Includes resolve against the registry only.
//
// Parameters:
//   - key: the shader key
//   - source: the WGSL source
//   - shaderType: the stage the module provides
//   - options: variadic list of ShaderBuilderOption functions
//
// Returns:
//   - Shader: the parsed shader
//   - error: an include or entry point error
func NewShaderFromSource(key, source string, shaderType ShaderType, options ...ShaderBuilderOption) (Shader, error) {
	s := &shader{key: key, path: key, shaderType: shaderType}
	for _, opt := range options {
		opt(s)
	}
	if err := s.parse(nil, source); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *shader) parse(fsys fs.FS, raw string) error {
	pp := NewPreProcessor(fsys, s.includePaths, s.registry)
	src, err := pp.Process(path.Clean(s.path), raw)
	if err != nil {
		return fmt.Errorf("shader %s: %w", s.key, err)
	}
	s.source = src
	s.included = append([]string(nil), pp.Included()...)

	if s.entryPoint == "" {
		s.entryPoint = parseEntryPoint(src, s.shaderType)
	}
	if s.entryPoint == "" {
		return fmt.Errorf("shader %s: %s: %w", s.key, s.shaderType, ErrEntryPointNotFound)
	}
	s.bindings = parseBindings(src)
	return nil
}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) ShaderType() ShaderType {
	return s.shaderType
}

func (s *shader) EntryPoint() string {
	return s.entryPoint
}

func (s *shader) Bindings() []Binding {
	return s.bindings
}

func (s *shader) Binding(name string) (Binding, bool) {
	for _, b := range s.bindings {
		if b.Name == name {
			return b, true
		}
	}
	return Binding{}, false
}

func (s *shader) Included() []string {
	return s.included
}

func (s *shader) BindTexture(name string, unit int) error {
	b, ok := s.Binding(name)
	if !ok {
		return fmt.Errorf("shader %s: texture %q: %w", s.key, name, ErrUnknownBinding)
	}
	if b.Kind != BindingTexture && b.Kind != BindingDepthTexture {
		return fmt.Errorf("shader %s: %q is a %s: %w", s.key, name, b.Kind, ErrBindingMismatch)
	}
	if b.Binding != unit {
		return fmt.Errorf("shader %s: texture %q at binding %d, want %d: %w", s.key, name, b.Binding, unit, ErrBindingMismatch)
	}
	return nil
}

func (s *shader) BindBlock(block string, binding int) error {
	for _, b := range s.bindings {
		if b.Type != block {
			continue
		}
		if b.Kind != BindingUniform {
			return fmt.Errorf("shader %s: block %q is a %s: %w", s.key, block, b.Kind, ErrBindingMismatch)
		}
		if b.Binding != binding {
			return fmt.Errorf("shader %s: block %q at binding %d, want %d: %w", s.key, block, b.Binding, binding, ErrBindingMismatch)
		}
		return nil
	}
	return fmt.Errorf("shader %s: block %q: %w", s.key, block, ErrUnknownBinding)
}
