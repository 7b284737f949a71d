package program_test

import (
	"io/fs"
	"testing/fstest"

	"github.com/Carmen-Shannon/oxy-view/assets"
)

// copyTree copies the embedded shader tree into a writable map file system.
func copyTree(dst fstest.MapFS) error {
	return fs.WalkDir(assets.FS(), assets.ShaderRoot, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := fs.ReadFile(assets.FS(), p)
		if err != nil {
			return err
		}
		dst[p] = &fstest.MapFile{Data: data}
		return nil
	})
}
