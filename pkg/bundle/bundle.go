// Package bundle implements the self-extracting bundle format.
//
// A bundle is a text header script followed by a gzip-compressed tar archive
// of the staging area. The header carries a literal UNCOMPRESS_SKIP=<integer>
// line whose value is the 1-based line number of the first payload byte; the
// extraction logic at runtime skips that many lines and pipes the rest
// through gzip and tar. The skip value is derived from the header's own line
// count per build, never hard-coded.
//
// The format is reproducible: given identical staging contents, two builds at
// different times produce byte-identical bundles. This requires three things,
// all enforced here: every file timestamp is normalized to one fixed
// reference time before archiving, archive entries are enumerated in
// lexicographic order, and neither the tar entries nor the gzip stream embed
// wall-clock metadata.
package bundle

import (
	"archive/tar"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"
	"mvdan.cc/sh/v3/syntax"
)

const (
	// SkipToken is the header template placeholder replaced with the
	// computed skip line count.
	SkipToken = "%UNCOMPRESS_SKIP%"

	// VersionToken is the header template placeholder replaced with the
	// build's version string.
	VersionToken = "%VERSION%"

	// SkipVariable is the shell variable name the extraction logic reads.
	SkipVariable = "UNCOMPRESS_SKIP"
)

// ReferenceTime is the fixed timestamp every archived entry carries. The
// value is arbitrary; what matters is that it never varies between builds.
var ReferenceTime = time.Unix(0, 0).UTC()

// Options configures bundle creation.
type Options struct {
	// HeaderTemplate is the self-extraction header with SkipToken and
	// VersionToken still in place. It must end with a newline.
	HeaderTemplate string

	// Version is substituted for VersionToken.
	Version string

	// CompressionLevel is the gzip level (1-9). Zero means best compression.
	CompressionLevel int
}

// Write produces the bundle at outputPath from the contents of stagingDir.
// On any failure the partially written output file is removed: a bundle
// either exists completely or not at all.
func Write(outputPath, stagingDir string, opts Options) error {
	header, err := renderHeader(opts.HeaderTemplate, opts.Version)
	if err != nil {
		return err
	}

	if err := NormalizeTimes(stagingDir, ReferenceTime); err != nil {
		return fmt.Errorf("failed to normalize staging timestamps: %w", err)
	}

	out, err := os.OpenFile(outputPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0755)
	if err != nil {
		return fmt.Errorf("failed to create bundle file: %w", err)
	}

	err = func() error {
		if _, err := io.WriteString(out, header); err != nil {
			return fmt.Errorf("failed to write bundle header: %w", err)
		}
		if err := appendArchive(out, stagingDir, opts.CompressionLevel); err != nil {
			return fmt.Errorf("failed to write bundle archive: %w", err)
		}
		return out.Close()
	}()
	if err != nil {
		out.Close()
		os.Remove(outputPath)
		return err
	}

	// Permission bits given at open time are masked by the umask; make the
	// executable bit unconditional.
	if err := os.Chmod(outputPath, 0755); err != nil {
		os.Remove(outputPath)
		return fmt.Errorf("failed to mark bundle executable: %w", err)
	}
	return nil
}

// renderHeader substitutes the skip and version tokens into the header
// template. The skip value is the template's line count plus one, measured
// before substitution; a substitution that changes the line count would
// invalidate the value, so that is rejected rather than silently produced.
func renderHeader(template, version string) (string, error) {
	if template == "" || !strings.HasSuffix(template, "\n") {
		return "", fmt.Errorf("header template must be non-empty and end with a newline")
	}
	if !strings.Contains(template, SkipToken) {
		return "", fmt.Errorf("header template missing %s token", SkipToken)
	}

	lines := strings.Count(template, "\n")
	skip := lines + 1

	rendered := strings.ReplaceAll(template, SkipToken, strconv.Itoa(skip))
	rendered = strings.ReplaceAll(rendered, VersionToken, version)

	if strings.Count(rendered, "\n") != lines {
		return "", fmt.Errorf("header substitution changed the line count, skip value %d is invalid", skip)
	}

	// The header executes as a shell program on the target machine; catch a
	// template that does not even parse before shipping it.
	parser := syntax.NewParser(syntax.Variant(syntax.LangPOSIX))
	if _, err := parser.Parse(strings.NewReader(rendered), "header.sh"); err != nil {
		return "", fmt.Errorf("rendered header is not valid shell: %w", err)
	}

	return rendered, nil
}

// NormalizeTimes sets the modification and access time of every file and
// directory under dir to ref.
func NormalizeTimes(dir string, ref time.Time) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		return os.Chtimes(path, ref, ref)
	})
}

// appendArchive writes a gzip-compressed tar of dir's contents to w, entry
// paths relative to dir, in lexicographic order.
func appendArchive(w io.Writer, dir string, level int) error {
	if level == 0 {
		level = gzip.BestCompression
	}
	zw, err := gzip.NewWriterLevel(w, level)
	if err != nil {
		return err
	}
	// Leave the gzip header empty: a name or mod time here would break
	// byte-identical rebuilds.
	zw.Name = ""
	zw.ModTime = time.Time{}
	zw.OS = 255

	tw := tar.NewWriter(zw)

	entries, err := collectEntries(dir)
	if err != nil {
		return err
	}
	for _, rel := range entries {
		if err := writeEntry(tw, dir, rel); err != nil {
			return fmt.Errorf("failed to archive %s: %w", rel, err)
		}
	}

	if err := tw.Close(); err != nil {
		return err
	}
	return zw.Close()
}

// collectEntries lists every path under dir relative to it, sorted
// lexicographically. The root itself is excluded.
func collectEntries(dir string) ([]string, error) {
	var entries []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		entries = append(entries, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(entries)
	return entries, nil
}

// writeEntry writes one file or directory to the tar stream with all
// machine- and time-dependent header fields normalized.
func writeEntry(tw *tar.Writer, dir, rel string) error {
	path := filepath.Join(dir, filepath.FromSlash(rel))
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	hdr, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return err
	}
	hdr.Name = rel
	if info.IsDir() {
		hdr.Name += "/"
	}
	hdr.Uid = 0
	hdr.Gid = 0
	hdr.Uname = ""
	hdr.Gname = ""
	hdr.ModTime = ReferenceTime
	hdr.AccessTime = time.Time{}
	hdr.ChangeTime = time.Time{}
	hdr.Format = tar.FormatGNU

	if err := tw.WriteHeader(hdr); err != nil {
		return err
	}
	if info.IsDir() {
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(tw, f)
	return err
}
