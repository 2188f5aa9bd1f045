// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"playpack-cli/pkg/bundle"
)

// inspectCmd prints the extraction metadata of an existing bundle
var inspectCmd = &cobra.Command{
	Use:   "inspect <bundle>",
	Short: "Inspect a bundle's extraction metadata",
	Long: `Inspect the header of an existing bundle.

Prints the embedded version, the UNCOMPRESS_SKIP offset, the header
size, and whether the payload at that offset is a valid gzip stream.

Examples:
  playpack inspect site.run`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func runInspect(cmd *cobra.Command, args []string) error {
	info, err := bundle.Inspect(args[0])
	if err != nil {
		return &ExitError{Code: 1, Err: err}
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, TitleStyle.Render("Bundle: ")+PathStyle.Render(args[0]))
	fmt.Fprintf(out, "  version:         %s\n", info.Version)
	fmt.Fprintf(out, "  uncompress skip: %d\n", info.Skip)
	fmt.Fprintf(out, "  header bytes:    %d\n", info.HeaderBytes)

	if !info.PayloadIsGzip {
		fmt.Fprintln(out, ErrorStyle.Render("✗")+" payload at the declared offset is not a gzip stream")
		return &ExitError{Code: 1, Err: fmt.Errorf("bundle payload is not a gzip stream")}
	}
	fmt.Fprintln(out, SuccessStyle.Render("✓")+" payload offset is consistent")
	return nil
}
