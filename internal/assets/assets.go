// SPDX-License-Identifier: MPL-2.0

// Package assets carries the fixed files every bundle embeds: the
// self-extraction header template, the runtime entrypoint script, and the
// ansible configuration.
//
// The files are compiled into the binary so a playpack installation is a
// single executable with no ambient installation root to resolve at runtime.
// Components that need them receive an Assets value, never read globals.
package assets

import (
	_ "embed"
)

var (
	//go:embed header.sh.template
	headerTemplate string

	//go:embed entrypoint.sh
	entrypointScript string

	//go:embed ansible.cfg
	ansibleCfg string
)

// Assets holds the fixed payload files injected into the packager and the
// entrypoint installer.
type Assets struct {
	// HeaderTemplate is the self-extraction header with %VERSION% and
	// %UNCOMPRESS_SKIP% placeholder tokens still in place.
	HeaderTemplate string

	// Entrypoint is the runtime entrypoint script, copied into the staging
	// area verbatim.
	Entrypoint string

	// AnsibleCfg is the fixed ansible configuration staged next to the
	// playbook.
	AnsibleCfg string
}

// Default returns the assets compiled into this binary.
func Default() Assets {
	return Assets{
		HeaderTemplate: headerTemplate,
		Entrypoint:     entrypointScript,
		AnsibleCfg:     ansibleCfg,
	}
}
