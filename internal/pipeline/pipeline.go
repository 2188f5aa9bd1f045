// SPDX-License-Identifier: MPL-2.0

package pipeline

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"

	"playpack-cli/internal/assemble"
	"playpack-cli/internal/assets"
	"playpack-cli/internal/galaxy"
	"playpack-cli/internal/issue"
	"playpack-cli/internal/staging"
	"playpack-cli/pkg/bundle"
)

// Pipeline runs one build from a resolved configuration to a bundle file.
type Pipeline struct {
	// Config is the finalized build configuration.
	Config *BuildConfig

	// Resolver materializes external role dependencies.
	Resolver galaxy.Resolver

	// Assets are the fixed payload files (header, entrypoint, ansible.cfg).
	Assets assets.Assets

	// Version is the tool version embedded into the bundle header.
	Version string

	// CompressionLevel is the gzip level for the archive (0 = best).
	CompressionLevel int

	// Logger receives stage progress. Must not be nil.
	Logger *log.Logger
}

// Run executes the stages in order. The staging area is released on every
// exit path, including cancellation; the output file is only written by the
// final packaging stage, so an earlier failure leaves no artifact behind.
func (p *Pipeline) Run(ctx context.Context) error {
	area, err := staging.Acquire()
	if err != nil {
		return err
	}
	defer func() {
		if relErr := area.Release(); relErr != nil {
			p.Logger.Warn("staging area cleanup failed", "error", relErr)
		}
	}()
	p.Logger.Debug("acquired staging area", "path", area.Path())

	if err := ctx.Err(); err != nil {
		return err
	}

	content := assemble.Content{
		PlaybookFile:     p.Config.PlaybookFile,
		RolesDir:         p.Config.RolesDir,
		RequirementsFile: p.Config.RequirementsFile,
		VarsFile:         p.Config.VarsFile,
		ExtraDeps:        p.Config.ExtraDeps,
		AnsibleCfg:       p.Assets.AnsibleCfg,
	}
	if err := assemble.New(p.Logger).Assemble(area, content); err != nil {
		return err
	}

	if err := p.materializeDependencies(ctx, area); err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	p.Logger.Info("composing runtime requirements",
		"ansible_version", orUnpinned(p.Config.AnsibleVersion),
		"extra_packages", len(p.Config.PythonPackages))
	manifest := ComposeRequirements(p.Config.AnsibleVersion, p.Config.PythonPackages)
	if err := os.WriteFile(area.Join(assemble.PipRequirementsName), []byte(manifest), 0644); err != nil {
		return fmt.Errorf("failed to write runtime requirements: %w", err)
	}

	p.Logger.Info("installing entrypoint", "file", assemble.EntrypointName)
	if err := installEntrypoint(area, p.Assets.Entrypoint); err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	p.Logger.Info("packaging bundle", "output", p.Config.OutputFile)
	opts := bundle.Options{
		HeaderTemplate:   p.Assets.HeaderTemplate,
		Version:          p.Version,
		CompressionLevel: p.CompressionLevel,
	}
	if err := bundle.Write(p.Config.OutputFile, area.Path(), opts); err != nil {
		return err
	}

	p.Logger.Info("bundle complete", "output", p.Config.OutputFile)
	return nil
}

// materializeDependencies invokes the role resolver iff a requirements
// descriptor was staged, then strips the resolver's per-role install
// metadata so runs at different times cannot diverge the archive bytes.
func (p *Pipeline) materializeDependencies(ctx context.Context, area *staging.Area) error {
	if p.Config.RequirementsFile == "" {
		p.Logger.Debug("no requirements descriptor, skipping dependency resolution")
		return nil
	}

	requirements := area.Join(assemble.RequirementsName)
	target := area.Join(assemble.GalaxyRolesDirName)

	p.Logger.Info("installing galaxy roles", "requirements", requirements, "target", target)
	if err := p.Resolver.Resolve(ctx, requirements, target); err != nil {
		return issue.DependencyResolution(err, "install galaxy roles")
	}

	if err := galaxy.StripInstallMetadata(target); err != nil {
		return fmt.Errorf("failed to strip resolver metadata: %w", err)
	}
	return nil
}

func orUnpinned(version string) string {
	if version == "" {
		return "unpinned"
	}
	return version
}
