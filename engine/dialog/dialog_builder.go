package dialog

import "github.com/ncruces/zenity"

// DialogBuilderOption is a functional option applied to a dialog during construction via NewDialog.
type DialogBuilderOption func(*dialog)

// WithTitle sets the window title of the picker.
//
// Parameters:
//   - title: the title
//
// Returns:
//   - DialogBuilderOption: a function that applies the title option to a dialog
func WithTitle(title string) DialogBuilderOption {
	return func(d *dialog) {
		d.title = title
	}
}

// WithFilter replaces the file filters with a single named filter.
//
// Parameters:
//   - name: the label shown in the picker
//   - patterns: glob patterns such as "*.obj"
//
// Returns:
//   - DialogBuilderOption: a function that applies the filter option to a dialog
func WithFilter(name string, patterns ...string) DialogBuilderOption {
	return func(d *dialog) {
		d.filters = zenity.FileFilters{{Name: name, Patterns: patterns, CaseFold: true}}
	}
}

// WithDirectory sets the directory the picker starts in.
//
// Parameters:
//   - dir: the starting directory, with a trailing separator
//
// Returns:
//   - DialogBuilderOption: a function that applies the directory option to a dialog
func WithDirectory(dir string) DialogBuilderOption {
	return func(d *dialog) {
		d.dir = dir
	}
}
