package program

import "github.com/Carmen-Shannon/oxy-view/engine/renderer/pipeline"

// BankBuilderOption is a functional option applied to a bank during construction via NewBank.
type BankBuilderOption func(*bank)

// WithShaderRoot sets the directory of the shader tree inside the bank's file system. Defaults to "shaders".
//
// Parameters:
//   - root: the shader root directory
//
// Returns:
//   - BankBuilderOption: a function that applies the root option to a bank
func WithShaderRoot(root string) BankBuilderOption {
	return func(b *bank) {
		b.root = root
	}
}

// WithInclude registers an in-memory include available to every program, overriding a built-in one of the
// same name.
//
// Parameters:
//   - name: the include name as written in #include
//   - source: the WGSL source
//
// Returns:
//   - BankBuilderOption: a function that applies the include option to a bank
func WithInclude(name, source string) BankBuilderOption {
	return func(b *bank) {
		b.registry[name] = source
	}
}

// WithOverlayBlend sets the blend mode of the boundary overlay. Defaults to pipeline.BlendReplace.
//
// Parameters:
//   - mode: the blend mode
//
// Returns:
//   - BankBuilderOption: a function that applies the blend option to a bank
func WithOverlayBlend(mode pipeline.BlendMode) BankBuilderOption {
	return func(b *bank) {
		b.surfaceBlend = mode
	}
}
