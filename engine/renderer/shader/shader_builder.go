package shader

// ShaderBuilderOption is a functional option used to configure a Shader during construction.
type ShaderBuilderOption func(*shader)

// WithKey overrides the shader key, which defaults to the source path.
//
// Parameters:
//   - key: the unique shader key
//
// Returns:
//   - ShaderBuilderOption: a function that sets the key
func WithKey(key string) ShaderBuilderOption {
	return func(s *shader) {
		s.key = key
	}
}

// WithEntryPoint sets the entry point instead of detecting it from the stage attribute.
//
// Parameters:
//   - entryPoint: the entry point function name
//
// Returns:
//   - ShaderBuilderOption: a function that sets the entry point
func WithEntryPoint(entryPoint string) ShaderBuilderOption {
	return func(s *shader) {
		s.entryPoint = entryPoint
	}
}

// WithIncludePaths appends directories searched for #include files.
//
// Parameters:
//   - paths: include directories, searched in order
//
// Returns:
//   - ShaderBuilderOption: a function that adds include paths
func WithIncludePaths(paths ...string) ShaderBuilderOption {
	return func(s *shader) {
		s.includePaths = append(s.includePaths, paths...)
	}
}

// WithInclude registers a built-in include source, resolved before any include path.
//
// Parameters:
//   - name: the include name as written in #include "name"
//   - source: the WGSL source spliced in for the include
//
// Returns:
//   - ShaderBuilderOption: a function that registers the include
func WithInclude(name, source string) ShaderBuilderOption {
	return func(s *shader) {
		if s.registry == nil {
			s.registry = make(map[string]string)
		}
		s.registry[name] = source
	}
}
