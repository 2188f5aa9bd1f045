// SPDX-License-Identifier: MPL-2.0

package pipeline

import (
	"fmt"
	"os"

	"playpack-cli/internal/assemble"
	"playpack-cli/internal/staging"
)

// installEntrypoint stages the fixed runtime entrypoint script. The script
// is a build-time constant, not user input; 0775 makes it directly
// executable by owner and group after extraction.
func installEntrypoint(area *staging.Area, script string) error {
	path := area.Join(assemble.EntrypointName)
	if err := os.WriteFile(path, []byte(script), 0775); err != nil {
		return fmt.Errorf("failed to install entrypoint: %w", err)
	}
	// WriteFile permissions are subject to the umask; the group-executable
	// bit is part of the contract, so set it explicitly.
	if err := os.Chmod(path, 0775); err != nil {
		return fmt.Errorf("failed to set entrypoint permissions: %w", err)
	}
	return nil
}
