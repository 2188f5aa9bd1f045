// SPDX-License-Identifier: MPL-2.0

// Package galaxy materializes external role dependencies into the staging
// area by invoking the ansible-galaxy resolver.
//
// The resolver is modeled as a capability interface so the pipeline can be
// tested with a fake; the production implementation shells out to the
// configured binary. Individual per-role failures are ignorable (the resolver
// is invoked with --ignore-errors), but a non-zero overall exit status is
// fatal for the whole build.
package galaxy

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
)

// InstallInfoFile is the per-role metadata file the resolver writes on
// install. Its contents record install time and resolver internals, which
// vary run to run without reflecting any declared input, so it must be
// stripped before archiving to keep builds reproducible.
const InstallInfoFile = ".galaxy_install_info"

// Resolver installs the roles listed in a requirements descriptor into a
// target directory.
type Resolver interface {
	// Resolve runs the resolver against requirementsFile, installing into
	// targetDir. A non-nil error means the overall resolution failed; the
	// targetDir may hold a partial install in that case.
	Resolve(ctx context.Context, requirementsFile, targetDir string) error
}

// CLIResolver invokes the ansible-galaxy command as a subprocess.
type CLIResolver struct {
	// Bin is the resolver command to run (default "ansible-galaxy").
	Bin string

	// Stdout and Stderr receive the resolver's output. Nil discards.
	Stdout io.Writer
	Stderr io.Writer
}

// NewCLIResolver creates a CLIResolver for the given binary, wiring its
// output to the current process's stdout/stderr.
func NewCLIResolver(bin string) *CLIResolver {
	return &CLIResolver{
		Bin:    bin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// Resolve runs `<bin> install -r <requirementsFile> -p <targetDir>
// --ignore-errors`. The call is synchronous and has no timeout of its own;
// cancellation comes from ctx.
func (r *CLIResolver) Resolve(ctx context.Context, requirementsFile, targetDir string) error {
	cmd := exec.CommandContext(ctx, r.Bin,
		"install",
		"-r", requirementsFile,
		"-p", targetDir,
		"--ignore-errors",
	)
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr

	if err := cmd.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return fmt.Errorf("%s exited with status %d", r.Bin, exitErr.ExitCode())
		}
		return fmt.Errorf("failed to run %s: %w", r.Bin, err)
	}
	return nil
}

// StripInstallMetadata removes every resolver-generated install-metadata file
// found anywhere under dir. A missing dir is not an error (no roles were
// installed).
func StripInstallMetadata(dir string) error {
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && d.Name() == InstallInfoFile {
			if err := os.Remove(path); err != nil {
				return fmt.Errorf("failed to remove %s: %w", path, err)
			}
		}
		return nil
	})
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
