package shader

import "errors"

var (
	// ErrIncludeNotFound is returned when an #include cannot be resolved against any include path.
	ErrIncludeNotFound = errors.New("shader include not found")

	// ErrEntryPointNotFound is returned when the source has no entry point for the shader type.
	ErrEntryPointNotFound = errors.New("shader entry point not found")

	// ErrUnknownBinding is returned when a named texture or block is not declared by the shader.
	ErrUnknownBinding = errors.New("shader does not declare binding")

	// ErrBindingMismatch is returned when a named binding exists but not at the requested slot or kind.
	ErrBindingMismatch = errors.New("shader binding does not match")
)
