// SPDX-License-Identifier: MPL-2.0

package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"playpack-cli/internal/issue"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestResolveDefaults(t *testing.T) {
	dir := t.TempDir()
	playbook := filepath.Join(dir, "site.yml")
	writeFile(t, playbook, "- hosts: all\n")

	cfg, err := Resolve(Options{PlaybookFile: playbook})
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}

	if cfg.PlaybookDir != dir {
		t.Errorf("PlaybookDir = %q, want %q", cfg.PlaybookDir, dir)
	}
	if want := filepath.Join(dir, "site.run"); cfg.OutputFile != want {
		t.Errorf("OutputFile = %q, want %q", cfg.OutputFile, want)
	}
	if cfg.RequirementsFile != "" {
		t.Errorf("RequirementsFile = %q, want empty (none exists)", cfg.RequirementsFile)
	}
	if cfg.RolesDir != "" {
		t.Errorf("RolesDir = %q, want empty (none exists)", cfg.RolesDir)
	}
}

func TestResolvePicksUpColocatedFiles(t *testing.T) {
	dir := t.TempDir()
	playbook := filepath.Join(dir, "site.yml")
	writeFile(t, playbook, "- hosts: all\n")
	writeFile(t, filepath.Join(dir, "requirements.yml"), "roles: []\n")
	writeFile(t, filepath.Join(dir, "roles/common/tasks/main.yml"), "- debug:\n")

	cfg, err := Resolve(Options{PlaybookFile: playbook})
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}

	if want := filepath.Join(dir, "requirements.yml"); cfg.RequirementsFile != want {
		t.Errorf("RequirementsFile = %q, want %q", cfg.RequirementsFile, want)
	}
	if want := filepath.Join(dir, "roles"); cfg.RolesDir != want {
		t.Errorf("RolesDir = %q, want %q", cfg.RolesDir, want)
	}
}

func TestResolveExplicitOptionsWin(t *testing.T) {
	dir := t.TempDir()
	playbook := filepath.Join(dir, "site.yml")
	reqs := filepath.Join(dir, "other-requirements.yml")
	vars := filepath.Join(dir, "prod-vars.yml")
	out := filepath.Join(dir, "dist", "site.bundle")
	writeFile(t, playbook, "- hosts: all\n")
	writeFile(t, reqs, "roles: []\n")
	writeFile(t, vars, "env: prod\n")

	cfg, err := Resolve(Options{
		PlaybookFile:     playbook,
		RequirementsFile: reqs,
		VarsFile:         vars,
		AnsibleVersion:   "2.14.1",
		PythonPackages:   []string{"boto==1.2.0"},
		OutputFile:       out,
	})
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}

	if cfg.RequirementsFile != reqs {
		t.Errorf("RequirementsFile = %q, want %q", cfg.RequirementsFile, reqs)
	}
	if cfg.VarsFile != vars {
		t.Errorf("VarsFile = %q, want %q", cfg.VarsFile, vars)
	}
	if cfg.OutputFile != out {
		t.Errorf("OutputFile = %q, want %q", cfg.OutputFile, out)
	}
	if cfg.AnsibleVersion != "2.14.1" {
		t.Errorf("AnsibleVersion = %q", cfg.AnsibleVersion)
	}
}

func TestResolveValidationFailures(t *testing.T) {
	dir := t.TempDir()
	playbook := filepath.Join(dir, "site.yml")
	writeFile(t, playbook, "- hosts: all\n")

	tests := []struct {
		name string
		opts Options
	}{
		{name: "no playbook", opts: Options{}},
		{name: "missing playbook", opts: Options{PlaybookFile: filepath.Join(dir, "absent.yml")}},
		{name: "playbook is a directory", opts: Options{PlaybookFile: dir}},
		{
			name: "declared requirements missing",
			opts: Options{PlaybookFile: playbook, RequirementsFile: filepath.Join(dir, "nope.yml")},
		},
		{
			name: "declared vars missing",
			opts: Options{PlaybookFile: playbook, VarsFile: filepath.Join(dir, "nope-vars.yml")},
		},
		{
			name: "declared extra dep missing",
			opts: Options{PlaybookFile: playbook, ExtraDeps: []string{filepath.Join(dir, "nope-dir")}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resolve(tt.opts)
			if err == nil {
				t.Fatal("Resolve() should have failed")
			}
			if issue.KindOf(err) != issue.KindConfiguration {
				t.Errorf("error kind = %v, want KindConfiguration (%v)", issue.KindOf(err), err)
			}
		})
	}
}

func TestResolveOutputNamingStripsExtension(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		playbook string
		output   string
	}{
		{playbook: "site.yml", output: "site.run"},
		{playbook: "deploy.yaml", output: "deploy.run"},
		{playbook: "noext", output: "noext.run"},
	}

	for _, tt := range tests {
		t.Run(tt.playbook, func(t *testing.T) {
			playbook := filepath.Join(dir, tt.playbook)
			writeFile(t, playbook, "- hosts: all\n")

			cfg, err := Resolve(Options{PlaybookFile: playbook})
			if err != nil {
				t.Fatalf("Resolve() error: %v", err)
			}
			if want := filepath.Join(dir, tt.output); cfg.OutputFile != want {
				t.Errorf("OutputFile = %q, want %q", cfg.OutputFile, want)
			}
		})
	}
}
