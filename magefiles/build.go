//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const binary = "bin/oxy-view"

type Build mg.Namespace

// Viewer compiles the oxy-view binary into bin/.
func (Build) Viewer() error {
	fmt.Println("Building oxy-view...")
	return goCmd("build", "-o", binary, "./cmd/oxy-view")
}

// Tidy runs go mod tidy.
func (Build) Tidy() error {
	return goCmd("mod", "tidy")
}

type Run mg.Namespace

// Viewer builds and starts the viewer with the default settings file.
func (Run) Viewer() error {
	mg.Deps(Build.Viewer)
	return sh.RunV(binary, "--config", "oxy-view.toml")
}

type Check mg.Namespace

// Test runs every package test.
func (Check) Test() error {
	return goCmd("test", "./...")
}

// Vet runs go vet.
func (Check) Vet() error {
	return goCmd("vet", "./...")
}

// Clean removes build output.
func Clean() error {
	fmt.Println("Cleaning bin/...")
	return sh.Rm("bin")
}
