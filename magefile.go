//go:build mage
// +build mage

package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Default target to run when none is specified
var Default = Build

const (
	binaryName = "sync-onboard"
	mainPkg    = "./cmd/sync-onboard"
)

// Build builds the binary
func Build() error {
	fmt.Println("Building...")
	return sh.Run("go", "build", "-o", binaryName, mainPkg)
}

// BuildWindows cross-compiles the binary for the Windows slicing workstation
func BuildWindows() error {
	fmt.Println("Building for windows/amd64...")
	return sh.RunWith(
		map[string]string{"GOOS": "windows", "GOARCH": "amd64"},
		"go", "build", "-o", binaryName+".exe", mainPkg,
	)
}

// Generate regenerates the imptest doubles used by the tests
func Generate() error {
	fmt.Println("Generating test doubles...")
	return sh.Run("go", "generate", "./...")
}

// Test runs all tests with the race detector and writes coverage.out
func Test() error {
	mg.Deps(Generate)
	fmt.Println("Running tests...")
	return sh.Run("go", "test", "-race", "-coverprofile=coverage.out", "./...")
}

// TestForFail runs the tests shuffled, stopping at the first failure
func TestForFail() error {
	mg.Deps(Generate)
	fmt.Println("Running unit tests for overall pass/fail...")
	return run(context.Background(), "go", "test", "-timeout=30s", "./...", "-failfast", "-shuffle=on", "-race")
}

// Coverage writes an HTML coverage report
func Coverage() error {
	if err := Test(); err != nil {
		return err
	}
	fmt.Println("Coverage report at coverage.html")
	return sh.Run("go", "tool", "cover", "-html=coverage.out", "-o", "coverage.html")
}

// Clean removes build artifacts
func Clean() error {
	fmt.Println("Cleaning...")
	os.Remove(binaryName)
	os.Remove(binaryName + ".exe")
	os.Remove("coverage.out")
	os.Remove("coverage.html")
	return nil
}

// Install installs the binary
func Install() error {
	fmt.Println("Installing...")
	return sh.Run("go", "install", mainPkg)
}

func run(c context.Context, command string, arg ...string) error {
	cmd := exec.CommandContext(c, command, arg...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	return cmd.Run()
}
