// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"playpack-cli/internal/assets"
	"playpack-cli/internal/config"
	"playpack-cli/internal/galaxy"
	"playpack-cli/internal/pipeline"
)

var (
	// buildPlaybookFile is the playbook to bundle (mandatory)
	buildPlaybookFile string
	// buildRequirementsFile overrides the colocated requirements.yml
	buildRequirementsFile string
	// buildVarsFile is an extra-vars file to bundle
	buildVarsFile string
	// buildExtraDeps are additional files/directories to bundle
	buildExtraDeps []string
	// buildAnsibleVersion pins the runtime ansible version
	buildAnsibleVersion string
	// buildPythonPackages are extra pip requirement specifiers
	buildPythonPackages []string
	// buildOutput overrides the derived output path
	buildOutput string
)

// buildCmd builds a self-executing bundle from a playbook
var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build a self-executing bundle from a playbook",
	Long: `Build a self-executing bundle from a playbook.

The playbook, its local roles/ directory, a galaxy requirements
descriptor (requirements.yml next to the playbook, unless overridden),
an optional vars file, and any extra dependency paths are staged
together with the runtime entrypoint and packed into a single
executable archive.

Without --output, the bundle is written next to the playbook with a
.run extension.

Examples:
  playpack build --playbook-file site.yml
  playpack build --playbook-file site.yml --vars-file prod.yml --output dist/site.run
  playpack build --playbook-file site.yml --ansible-version 2.14.1 \
    --python-package boto==1.2.0 --python-package botocore==3.1.0`,
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().StringVar(&buildPlaybookFile, "playbook-file", "", "playbook to bundle (required)")
	buildCmd.Flags().StringVar(&buildRequirementsFile, "requirements-file", "", "galaxy requirements descriptor (default: requirements.yml next to the playbook)")
	buildCmd.Flags().StringVar(&buildVarsFile, "vars-file", "", "extra-vars file to bundle")
	buildCmd.Flags().StringArrayVar(&buildExtraDeps, "extra-deps", nil, "extra file or directory to bundle (repeatable)")
	buildCmd.Flags().StringVar(&buildAnsibleVersion, "ansible-version", "", "pin the ansible version installed at run time")
	buildCmd.Flags().StringArrayVar(&buildPythonPackages, "python-package", nil, "extra pip requirement specifier (repeatable)")
	buildCmd.Flags().StringVarP(&buildOutput, "output", "o", "", "output path for the bundle")

	_ = buildCmd.MarkFlagRequired("playbook-file")
}

func runBuild(cmd *cobra.Command, _ []string) error {
	appCfg, err := config.Load()
	if err != nil {
		return &ExitError{Code: 1, Err: err}
	}
	if appCfg.Verbose {
		verbose = true
	}

	buildCfg, err := pipeline.Resolve(pipeline.Options{
		PlaybookFile:     buildPlaybookFile,
		RequirementsFile: buildRequirementsFile,
		VarsFile:         buildVarsFile,
		ExtraDeps:        buildExtraDeps,
		AnsibleVersion:   buildAnsibleVersion,
		PythonPackages:   buildPythonPackages,
		OutputFile:       buildOutput,
	})
	if err != nil {
		return &ExitError{Code: 1, Err: err}
	}

	p := &pipeline.Pipeline{
		Config:           buildCfg,
		Resolver:         galaxy.NewCLIResolver(appCfg.GalaxyBin),
		Assets:           assets.Default(),
		Version:          Version,
		CompressionLevel: appCfg.CompressionLevel,
		Logger:           newLogger(),
	}
	if err := p.Run(cmd.Context()); err != nil {
		return &ExitError{Code: 1, Err: err}
	}

	fmt.Fprintln(cmd.OutOrStdout(),
		SuccessStyle.Render("✓")+" bundle written to "+PathStyle.Render(buildCfg.OutputFile))
	return nil
}
