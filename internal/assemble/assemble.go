// SPDX-License-Identifier: MPL-2.0

// Package assemble copies the build inputs into the staging area.
//
// The staged layout is fixed: the playbook, requirements descriptor, and vars
// file take canonical names regardless of their names on the build machine,
// local roles keep their tree under roles/, galaxy-resolved roles land under
// galaxy-roles/, and extra dependency paths keep their base names. Symbolic
// links are dereferenced on copy so the archive holds concrete file content,
// never link targets that may not exist on the target machine.
package assemble

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"playpack-cli/internal/staging"
)

// Canonical names inside the staging area. The entrypoint script references
// these, so they are part of the bundle contract, not a styling choice.
const (
	// PlaybookName is the canonical staged playbook file name.
	PlaybookName = "playbook.yml"
	// RequirementsName is the canonical staged role requirements descriptor.
	RequirementsName = "requirements.yml"
	// VarsName is the canonical staged extra-vars file name.
	VarsName = "vars.yml"
	// RolesDirName is the staged directory for local roles.
	RolesDirName = "roles"
	// GalaxyRolesDirName is the staged install target for resolved roles.
	GalaxyRolesDirName = "galaxy-roles"
	// AnsibleCfgName is the staged runtime configuration file.
	AnsibleCfgName = "ansible.cfg"
	// EntrypointName is the staged runtime entrypoint script.
	EntrypointName = "entrypoint.sh"
	// PipRequirementsName is the staged interpreter dependency manifest.
	PipRequirementsName = "requirements.txt"
)

// Content describes what the assembler stages. Optional fields are empty
// when absent; existence was already validated by configuration resolution.
type Content struct {
	// PlaybookFile is the path of the playbook on the build machine.
	PlaybookFile string

	// RolesDir is the local roles directory colocated with the playbook,
	// or empty when none exists.
	RolesDir string

	// RequirementsFile is the resolved requirements descriptor, or empty.
	RequirementsFile string

	// VarsFile is the extra-vars file, or empty.
	VarsFile string

	// ExtraDeps are additional files or directories copied by base name,
	// in caller order.
	ExtraDeps []string

	// AnsibleCfg is the fixed runtime configuration file content.
	AnsibleCfg string
}

// Assembler stages build content. Each copy step is logged; none is
// individually retryable.
type Assembler struct {
	logger *log.Logger
}

// New creates an Assembler logging through logger.
func New(logger *log.Logger) *Assembler {
	return &Assembler{logger: logger}
}

// Assemble copies c into area. After a successful return, the staging area
// is a self-contained snapshot with no remaining dependency on the build
// machine's filesystem layout.
func (a *Assembler) Assemble(area *staging.Area, c Content) error {
	a.logger.Info("staging playbook", "source", c.PlaybookFile)
	if err := CopyFile(c.PlaybookFile, area.Join(PlaybookName)); err != nil {
		return fmt.Errorf("failed to stage playbook: %w", err)
	}

	if c.RolesDir != "" {
		a.logger.Info("staging local roles", "source", c.RolesDir)
		if err := CopyTree(c.RolesDir, area.Join(RolesDirName)); err != nil {
			return fmt.Errorf("failed to stage local roles: %w", err)
		}
	}

	if c.RequirementsFile != "" {
		a.logger.Info("staging requirements descriptor", "source", c.RequirementsFile)
		if err := CopyFile(c.RequirementsFile, area.Join(RequirementsName)); err != nil {
			return fmt.Errorf("failed to stage requirements descriptor: %w", err)
		}
	}

	if c.VarsFile != "" {
		a.logger.Info("staging vars file", "source", c.VarsFile)
		if err := CopyFile(c.VarsFile, area.Join(VarsName)); err != nil {
			return fmt.Errorf("failed to stage vars file: %w", err)
		}
	}

	for _, dep := range c.ExtraDeps {
		a.logger.Info("staging extra dependency", "source", dep)
		if err := CopyTree(dep, area.Join(filepath.Base(dep))); err != nil {
			return fmt.Errorf("failed to stage extra dependency %s: %w", dep, err)
		}
	}

	a.logger.Info("staging runtime configuration", "file", AnsibleCfgName)
	if err := os.WriteFile(area.Join(AnsibleCfgName), []byte(c.AnsibleCfg), 0644); err != nil {
		return fmt.Errorf("failed to stage runtime configuration: %w", err)
	}

	return nil
}

// CopyFile copies a single file, dereferencing src if it is a symlink and
// preserving its permission bits and modification time.
func CopyFile(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory, expected a file", src)
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}

// CopyTree recursively copies src to dst. Files and directories reached
// through symlinks are copied as their concrete content. A src that is a
// plain file is copied like CopyFile.
func CopyTree(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}

	if !info.IsDir() {
		return CopyFile(src, dst)
	}

	if err := os.MkdirAll(dst, info.Mode().Perm()); err != nil {
		return err
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if err := CopyTree(filepath.Join(src, entry.Name()), filepath.Join(dst, entry.Name())); err != nil {
			return err
		}
	}

	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}
