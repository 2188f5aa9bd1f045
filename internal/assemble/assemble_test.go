// SPDX-License-Identifier: MPL-2.0

package assemble

import (
	"io"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"playpack-cli/internal/staging"
)

func testLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestAssembleFullContent(t *testing.T) {
	src := t.TempDir()
	writeFile(t, filepath.Join(src, "site.yml"), "- hosts: all\n")
	writeFile(t, filepath.Join(src, "roles/common/tasks/main.yml"), "- debug:\n")
	writeFile(t, filepath.Join(src, "requirements.yml"), "roles: []\n")
	writeFile(t, filepath.Join(src, "vars.yml"), "env: prod\n")
	writeFile(t, filepath.Join(src, "files/motd"), "welcome\n")

	area, err := staging.Acquire()
	if err != nil {
		t.Fatal(err)
	}
	defer area.Release()

	content := Content{
		PlaybookFile:     filepath.Join(src, "site.yml"),
		RolesDir:         filepath.Join(src, "roles"),
		RequirementsFile: filepath.Join(src, "requirements.yml"),
		VarsFile:         filepath.Join(src, "vars.yml"),
		ExtraDeps:        []string{filepath.Join(src, "files")},
		AnsibleCfg:       "[defaults]\nroles_path = roles:galaxy-roles\n",
	}
	if err := New(testLogger()).Assemble(area, content); err != nil {
		t.Fatalf("Assemble() error: %v", err)
	}

	// Inputs take their canonical names; extra deps keep their base name.
	staged := []string{
		"playbook.yml",
		"requirements.yml",
		"vars.yml",
		"ansible.cfg",
		"roles/common/tasks/main.yml",
		"files/motd",
	}
	for _, rel := range staged {
		if _, err := os.Stat(area.Join(rel)); err != nil {
			t.Errorf("expected staged file %s: %v", rel, err)
		}
	}

	got, err := os.ReadFile(area.Join("playbook.yml"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "- hosts: all\n" {
		t.Errorf("staged playbook content = %q", got)
	}
}

func TestAssembleMinimalContent(t *testing.T) {
	src := t.TempDir()
	writeFile(t, filepath.Join(src, "site.yml"), "- hosts: all\n")

	area, err := staging.Acquire()
	if err != nil {
		t.Fatal(err)
	}
	defer area.Release()

	content := Content{
		PlaybookFile: filepath.Join(src, "site.yml"),
		AnsibleCfg:   "[defaults]\n",
	}
	if err := New(testLogger()).Assemble(area, content); err != nil {
		t.Fatalf("Assemble() error: %v", err)
	}

	for _, rel := range []string{"requirements.yml", "vars.yml", "roles"} {
		if _, err := os.Stat(area.Join(rel)); !os.IsNotExist(err) {
			t.Errorf("%s should not be staged for minimal content", rel)
		}
	}
}

func TestCopyFilePreservesModeAndTime(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.sh")
	if err := os.WriteFile(src, []byte("#!/bin/sh\n"), 0750); err != nil {
		t.Fatal(err)
	}
	stamp := time.Date(2023, 4, 1, 12, 0, 0, 0, time.UTC)
	if err := os.Chtimes(src, stamp, stamp); err != nil {
		t.Fatal(err)
	}

	dst := filepath.Join(dir, "dst.sh")
	if err := CopyFile(src, dst); err != nil {
		t.Fatalf("CopyFile() error: %v", err)
	}

	info, err := os.Stat(dst)
	if err != nil {
		t.Fatal(err)
	}
	if runtime.GOOS != "windows" {
		if perm := info.Mode().Perm(); perm != 0750 {
			t.Errorf("dst permissions = %o, want 0750", perm)
		}
	}
	if !info.ModTime().Equal(stamp) {
		t.Errorf("dst mtime = %v, want %v", info.ModTime(), stamp)
	}
}

func TestCopyTreeDereferencesSymlinks(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlink creation requires privileges on windows")
	}
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "real/config.yml"), "a: 1\n")
	writeFile(t, filepath.Join(dir, "tree/plain.txt"), "plain\n")
	if err := os.Symlink(filepath.Join(dir, "real/config.yml"), filepath.Join(dir, "tree/link.yml")); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(filepath.Join(dir, "real"), filepath.Join(dir, "tree/linkdir")); err != nil {
		t.Fatal(err)
	}

	dst := filepath.Join(dir, "out")
	if err := CopyTree(filepath.Join(dir, "tree"), dst); err != nil {
		t.Fatalf("CopyTree() error: %v", err)
	}

	for _, rel := range []string{"link.yml", "linkdir/config.yml"} {
		path := filepath.Join(dst, rel)
		info, err := os.Lstat(path)
		if err != nil {
			t.Errorf("missing copied entry %s: %v", rel, err)
			continue
		}
		if info.Mode()&os.ModeSymlink != 0 {
			t.Errorf("%s was copied as a symlink, want concrete content", rel)
		}
	}

	got, err := os.ReadFile(filepath.Join(dst, "link.yml"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "a: 1\n" {
		t.Errorf("dereferenced copy content = %q", got)
	}
}

func TestCopyFileRejectsDirectory(t *testing.T) {
	dir := t.TempDir()
	if err := CopyFile(dir, filepath.Join(dir, "out")); err == nil {
		t.Fatal("CopyFile() on a directory should fail")
	}
}
