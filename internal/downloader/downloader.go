// Package downloader invokes external downloader programs against media URLs.
package downloader

import (
	"context"
	"fmt"
	"os"
	"os/exec"
)

// Supported lists the downloader programs that may appear in a settings file.
var Supported = []string{"aria2c", "wget", "youtube-dl"}

// IsSupported reports whether name is in the downloader allow-list.
func IsSupported(name string) bool {
	for _, s := range Supported {
		if s == name {
			return true
		}
	}
	return false
}

// CommandRunner is the interface for running an external command to completion.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) error
}

// ExecRunner runs commands via os/exec with Dir as the working directory.
// Stdout and stderr are inherited so downloader progress output stays visible.
type ExecRunner struct {
	Dir string
}

// Run starts the named program and waits for it to exit.
func (r ExecRunner) Run(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = r.Dir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// Invoker dispatches single URLs to a downloader program.
type Invoker struct {
	runner CommandRunner
}

// New creates an Invoker that executes downloads through runner.
func New(runner CommandRunner) *Invoker {
	return &Invoker{runner: runner}
}

// Download runs `<name> <url>` and waits for completion. The caller decides
// how to handle a failure; this method only reports it.
func (i *Invoker) Download(ctx context.Context, name, url string) error {
	if err := i.runner.Run(ctx, name, url); err != nil {
		return fmt.Errorf("run %s: %w", name, err)
	}
	return nil
}
