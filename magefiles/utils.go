//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// goCmd runs the go tool mage was built with, streaming its output.
func goCmd(args ...string) error {
	return sh.RunV(mg.GoCmd(), args...)
}
