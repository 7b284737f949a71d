package light

import "github.com/Carmen-Shannon/oxy-view/common"

// LightBuilderOption is a function that configures a PointLight instance during construction.
type LightBuilderOption func(*pointLight)

// WithPosition is an option builder that sets the world-space position of the light.
//
// Parameters:
//   - x: the x position component
//   - y: the y position component
//   - z: the z position component
//
// Returns:
//   - LightBuilderOption: a function that applies the position option to a pointLight
func WithPosition(x, y, z float32) LightBuilderOption {
	return func(l *pointLight) {
		l.position = common.Vec3{x, y, z}
	}
}

// WithColor is an option builder that sets the RGB color of the light.
//
// Parameters:
//   - r: the red component
//   - g: the green component
//   - b: the blue component
//
// Returns:
//   - LightBuilderOption: a function that applies the color option to a pointLight
func WithColor(r, g, b float32) LightBuilderOption {
	return func(l *pointLight) {
		l.color = [3]float32{r, g, b}
	}
}

// WithRadius is an option builder that sets the attenuation radius. Non-positive values are ignored.
//
// Parameters:
//   - radius: the radius
//
// Returns:
//   - LightBuilderOption: a function that applies the radius option to a pointLight
func WithRadius(radius float32) LightBuilderOption {
	return func(l *pointLight) {
		if radius > 0 {
			l.radius = radius
		}
	}
}

// GroupBuilderOption is a functional option applied to a group during construction via NewGroup.
type GroupBuilderOption func(*group)

// WithPipelineKey sets the light-volume pipeline the group draws with.
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
