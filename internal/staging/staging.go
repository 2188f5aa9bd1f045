// SPDX-License-Identifier: MPL-2.0

// Package staging manages the ephemeral working directory a build assembles
// its bundle contents in.
//
// An Area is a scoped resource: Acquire creates it, and Release must run on
// every exit path of the pipeline (the pipeline defers it immediately after
// acquisition). Directory names carry a collision-resistant unique suffix so
// concurrent builds on one machine never share an area.
package staging

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// dirPrefix is the common prefix of staging directory names, making stray
// areas from crashed builds recognizable in the temp directory.
const dirPrefix = "playpack-build-"

// Area is an ephemeral directory exclusively owned by one build invocation.
type Area struct {
	path     string
	released bool
}

// Acquire creates a uniquely named, permission-restricted staging directory
// under the system temp directory.
func Acquire() (*Area, error) {
	path := filepath.Join(os.TempDir(), dirPrefix+uuid.NewString())
	if err := os.Mkdir(path, 0700); err != nil {
		return nil, fmt.Errorf("failed to create staging area: %w", err)
	}
	return &Area{path: path}, nil
}

// Path returns the absolute path of the staging directory.
func (a *Area) Path() string {
	return a.path
}

// Join returns the path of name inside the staging directory.
func (a *Area) Join(name string) string {
	return filepath.Join(a.path, name)
}

// Release recursively removes the staging directory. It is idempotent so it
// can be deferred unconditionally; after the first call the area must not be
// referenced again.
func (a *Area) Release() error {
	if a.released {
		return nil
	}
	a.released = true
	if err := os.RemoveAll(a.path); err != nil {
		return fmt.Errorf("failed to remove staging area %s: %w", a.path, err)
	}
	return nil
}
