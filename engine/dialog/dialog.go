// Package dialog opens native file pickers.
package dialog

import (
	"errors"
	"fmt"

	"github.com/ncruces/zenity"
)

// dialog is the implementation of the Dialog interface.
type dialog struct {
	title   string
	filters zenity.FileFilters
	dir     string

	selectFile func(options ...zenity.Option) (string, error)
}

// Dialog opens the model picker.
type Dialog interface {
	// OpenFile shows a file picker and blocks until it closes.
	//
	// Returns:
	//   - string: the chosen path, or "" if the user cancelled
	//   - error: an error from the platform dialog
	OpenFile() (string, error)
}

var _ Dialog = &dialog{}

// NewDialog creates a Dialog. By default it is titled "Open Model" and filters for Wavefront OBJ files.
//
// Parameters:
//   - options: a variadic list of DialogBuilderOption functions
//
// Returns:
//   - Dialog: the dialog
func NewDialog(options ...DialogBuilderOption) Dialog {
	d := &dialog{
		title: "Open Model",
		filters: zenity.FileFilters{
			{Name: "Wavefront Object File", Patterns: []string{"*.obj"}, CaseFold: true},
		},
		selectFile: zenity.SelectFile,
	}
	for _, opt := range options {
		opt(d)
	}
	return d
}

func (d *dialog) OpenFile() (string, error) {
	opts := []zenity.Option{zenity.Title(d.title), d.filters}
	if d.dir != "" {
		opts = append(opts, zenity.Filename(d.dir))
	}

	path, err := d.selectFile(opts...)
	if errors.Is(err, zenity.ErrCanceled) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("open file dialog: %w", err)
	}
	return path, nil
}
