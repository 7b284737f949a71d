package instance

// GroupBuilderOption is a functional option applied to a group during construction via NewGroup.
type GroupBuilderOption func(*group)

// WithLabel sets the debug label used for the group's GPU buffers.
//
// Parameters:
//   - label: the label
//
// Returns:
//   - GroupBuilderOption: a function that applies the label option to a group
func WithLabel(label string) GroupBuilderOption {
	return func(g *group) {
		g.label = label
	}
}

// WithPipelineKey sets the pipeline the group draws with.
//
// Parameters:
//   - key: a registered pipeline key
//
// Returns:
//   - GroupBuilderOption: a function that applies the pipeline option to a group
func WithPipelineKey(key string) GroupBuilderOption {
	return func(g *group) {
		g.pipelineKey = key
	}
}
