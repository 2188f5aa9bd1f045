package bundle

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// gzipMagic is the two-byte signature every gzip stream starts with.
var gzipMagic = []byte{0x1f, 0x8b}

// Info describes a bundle read back from disk.
type Info struct {
	// Skip is the UNCOMPRESS_SKIP value: the 1-based line number of the
	// first payload byte.
	Skip int

	// Version is the version string embedded in the header, if present.
	Version string

	// HeaderBytes is the size of the header in bytes, i.e. the payload's
	// byte offset.
	HeaderBytes int64

	// PayloadIsGzip reports whether the bytes at the payload offset start
	// with the gzip magic number.
	PayloadIsGzip bool
}

// Inspect reads the header of the bundle at path and verifies that the
// declared skip offset lands on a gzip stream. It does not decompress the
// payload.
func Inspect(path string) (*Info, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read bundle: %w", err)
	}

	info := &Info{}

	// Scan the header line by line until the skip count is known, then
	// stop: everything past that point is compressed payload and must not
	// be interpreted as text.
	offset := 0
	line := 0
	for info.Skip == 0 || line < info.Skip-1 {
		nl := bytes.IndexByte(data[offset:], '\n')
		if nl < 0 {
			return nil, fmt.Errorf("bundle ended inside its header (line %d)", line+1)
		}
		text := string(data[offset : offset+nl])
		offset += nl + 1
		line++

		if v, ok := strings.CutPrefix(text, SkipVariable+"="); ok {
			skip, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil || skip < 1 {
				return nil, fmt.Errorf("invalid %s value %q", SkipVariable, v)
			}
			info.Skip = skip
		}
		if v, ok := strings.CutPrefix(text, "PLAYPACK_VERSION="); ok {
			info.Version = strings.Trim(v, `"`)
		}

		if info.Skip == 0 && line > 1000 {
			return nil, fmt.Errorf("no %s line found in the first %d lines", SkipVariable, line)
		}
	}

	info.HeaderBytes = int64(offset)
	info.PayloadIsGzip = bytes.HasPrefix(data[offset:], gzipMagic)
	return info, nil
}
