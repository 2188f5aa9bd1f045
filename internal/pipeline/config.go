// SPDX-License-Identifier: MPL-2.0

package pipeline

import (
	"os"
	"path/filepath"
	"strings"

	"playpack-cli/internal/assemble"
	"playpack-cli/internal/issue"
)

// Options are the raw, user-supplied build options before validation.
type Options struct {
	// PlaybookFile is the playbook to bundle. Mandatory.
	PlaybookFile string

	// RequirementsFile is the galaxy requirements descriptor. Optional;
	// when empty, requirements.yml next to the playbook is used if present.
	RequirementsFile string

	// VarsFile is an extra-vars file. Optional, but must exist if set.
	VarsFile string

	// ExtraDeps are additional files or directories to bundle, in order.
	// Each must exist.
	ExtraDeps []string

	// AnsibleVersion pins the runtime version. Empty means unpinned.
	AnsibleVersion string

	// PythonPackages are extra pip requirement specifiers, verbatim.
	PythonPackages []string

	// OutputFile overrides the derived output path.
	OutputFile string
}

// BuildConfig is the finalized, validated configuration of one build. It is
// produced exactly once per invocation, before any staging occurs, and not
// modified afterwards.
type BuildConfig struct {
	PlaybookDir      string
	PlaybookFile     string
	RolesDir         string // empty when no local roles directory exists
	RequirementsFile string // empty when no descriptor was found
	VarsFile         string
	ExtraDeps        []string
	AnsibleVersion   string
	PythonPackages   []string
	OutputFile       string
}

// Resolve validates opts and produces a BuildConfig, applying defaults:
// the requirements descriptor defaults to requirements.yml next to the
// playbook (its absence is fine), and the output path defaults to the
// playbook's name with a .run extension. Every referenced path is checked
// for readability here, so later stages never discover a missing input.
func Resolve(opts Options) (*BuildConfig, error) {
	if opts.PlaybookFile == "" {
		return nil, issue.Configuration("a playbook file is required", "")
	}
	if err := checkReadableFile(opts.PlaybookFile); err != nil {
		return nil, issue.WrapConfiguration(err, "read playbook file", opts.PlaybookFile)
	}

	playbookDir := filepath.Dir(opts.PlaybookFile)
	cfg := &BuildConfig{
		PlaybookDir:    playbookDir,
		PlaybookFile:   opts.PlaybookFile,
		ExtraDeps:      opts.ExtraDeps,
		AnsibleVersion: opts.AnsibleVersion,
		PythonPackages: opts.PythonPackages,
	}

	rolesDir := filepath.Join(playbookDir, assemble.RolesDirName)
	if info, err := os.Stat(rolesDir); err == nil && info.IsDir() {
		cfg.RolesDir = rolesDir
	}

	if opts.RequirementsFile != "" {
		if err := checkReadableFile(opts.RequirementsFile); err != nil {
			return nil, issue.WrapConfiguration(err, "read requirements file", opts.RequirementsFile)
		}
		cfg.RequirementsFile = opts.RequirementsFile
	} else {
		// A co-located requirements.yml is picked up automatically; its
		// absence just means no external dependencies.
		colocated := filepath.Join(playbookDir, assemble.RequirementsName)
		if checkReadableFile(colocated) == nil {
			cfg.RequirementsFile = colocated
		}
	}

	if opts.VarsFile != "" {
		if err := checkReadableFile(opts.VarsFile); err != nil {
			return nil, issue.WrapConfiguration(err, "read vars file", opts.VarsFile)
		}
		cfg.VarsFile = opts.VarsFile
	}

	for _, dep := range opts.ExtraDeps {
		if _, err := os.Stat(dep); err != nil {
			return nil, issue.WrapConfiguration(err, "read extra dependency", dep)
		}
	}

	if opts.OutputFile != "" {
		cfg.OutputFile = opts.OutputFile
	} else {
		base := filepath.Base(opts.PlaybookFile)
		stem := strings.TrimSuffix(base, filepath.Ext(base))
		cfg.OutputFile = filepath.Join(playbookDir, stem+".run")
	}

	return cfg, nil
}

// checkReadableFile verifies that path is an existing, openable regular file.
func checkReadableFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	if info.IsDir() {
		return &os.PathError{Op: "open", Path: path, Err: os.ErrInvalid}
	}
	return nil
}
