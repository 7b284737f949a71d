package renderer

// WGPUBackendBuilderOption is a functional option applied to the WebGPU backend by NewWGPURendererBackend.
type WGPUBackendBuilderOption func(*wgpuRendererBackendImpl)

// WithFallbackAdapter forces the software fallback adapter, for machines without a usable GPU.
//
// Parameters:
//   - force: true to request the fallback adapter
//
// Returns:
//   - WGPUBackendBuilderOption: a function that applies the adapter option
func WithFallbackAdapter(force bool) WGPUBackendBuilderOption {
	return func(b *wgpuRendererBackendImpl) {
		b.forceFallbackAdapter = force
	}
}

// WithBackendPresentMode sets the present mode the surface is first configured with.
//
// Parameters:
//   - mode: the PresentMode
//
// Returns:
//   - WGPUBackendBuilderOption: a function that applies the present mode
func WithBackendPresentMode(mode PresentMode) WGPUBackendBuilderOption {
	return func(b *wgpuRendererBackendImpl) {
		if mode == PresentModeUncapped {
			b.presentMode = wgpuPresentUncapped
			return
		}
		b.presentMode = wgpuPresentVSync
	}
}
