package viewer

import (
	"io/fs"

	"github.com/Carmen-Shannon/oxy-view/engine/camera"
	"github.com/Carmen-Shannon/oxy-view/engine/config"
	"github.com/Carmen-Shannon/oxy-view/engine/dialog"
	"github.com/Carmen-Shannon/oxy-view/engine/watcher"
)

// ViewerBuilderOption is a functional option applied to a viewer during construction via NewViewer.
type ViewerBuilderOption func(*viewer)

// WithConfig sets the settings the scene is built from. Defaults to config.Default().
//
// Parameters:
//   - cfg: the settings
//
// Returns:
//   - ViewerBuilderOption: a function that applies the config option to a viewer
func WithConfig(cfg config.Config) ViewerBuilderOption {
	return func(v *viewer) {
		v.cfg = cfg
	}
}

// WithAssets replaces the embedded asset tree holding shaders and built-in models.
//
// Parameters:
//   - fsys: the asset tree
//
// Returns:
//   - ViewerBuilderOption: a function that applies the assets option to a viewer
func WithAssets(fsys fs.FS) ViewerBuilderOption {
	return func(v *viewer) {
		v.assets = fsys
	}
}

// WithCamera sets the camera instead of building one from the config.
//
// Parameters:
//   - cam: the camera
//
// Returns:
//   - ViewerBuilderOption: a function that applies the camera option to a viewer
func WithCamera(cam camera.Camera) ViewerBuilderOption {
	return func(v *viewer) {
		v.camera = cam
	}
}

// WithDialog sets the file picker used by OpenModel. Without one, OpenModel does nothing.
//
// Parameters:
//   - d: the dialog
//
// Returns:
//   - ViewerBuilderOption: a function that applies the dialog option to a viewer
func WithDialog(d dialog.Dialog) ViewerBuilderOption {
	return func(v *viewer) {
		v.dialog = d
	}
}

// WithWatcher sets the watcher that reloads the model when its file changes. The viewer closes it on Release.
//
// Parameters:
//   - w: the watcher
//
// Returns:
//   - ViewerBuilderOption: a function that applies the watcher option to a viewer
func WithWatcher(w watcher.Watcher) ViewerBuilderOption {
	return func(v *viewer) {
		v.watcher = w
	}
}
