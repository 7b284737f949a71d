package dialog

import (
	"errors"
	"testing"

	"github.com/ncruces/zenity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stub(path string, err error, calls *int) func(...zenity.Option) (string, error) {
	return func(opts ...zenity.Option) (string, error) {
		*calls++
		return path, err
	}
}

func TestOpenFile(t *testing.T) {
	boom := errors.New("no display")
	tests := []struct {
		name    string
		path    string
		err     error
		want    string
		wantErr error
	}{
		{name: "selected", path: "/tmp/bunny.obj", want: "/tmp/bunny.obj"},
		{name: "cancelled", err: zenity.ErrCanceled},
		{name: "failure", err: boom, wantErr: boom},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			d := NewDialog(WithTitle("Pick"), WithDirectory("/tmp/")).(*dialog)
			d.selectFile = stub(tt.path, tt.err, &calls)

			got, err := d.OpenFile()
			assert.Equal(t, 1, calls)
			assert.Equal(t, tt.want, got)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestDefaults(t *testing.T) {
	d := NewDialog().(*dialog)
	assert.Equal(t, "Open Model", d.title)
	require.Len(t, d.filters, 1)
	assert.Equal(t, []string{"*.obj"}, d.filters[0].Patterns)

	d = NewDialog(WithFilter("Meshes", "*.obj", "*.OBJ")).(*dialog)
	assert.Equal(t, "Meshes", d.filters[0].Name)
	assert.Len(t, d.filters[0].Patterns, 2)
}
