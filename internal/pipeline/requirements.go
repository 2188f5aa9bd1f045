// SPDX-License-Identifier: MPL-2.0

package pipeline

import (
	"strings"
)

// ComposeRequirements renders the interpreter dependency manifest staged as
// requirements.txt. The first line is the ansible requirement, pinned to an
// exact version when one was supplied and unpinned otherwise (resolution is
// deliberately deferred to install time on the target machine). Extra
// package specifiers follow verbatim, one per line, in caller order; their
// syntax is not validated here, that is the target machine installer's job.
func ComposeRequirements(ansibleVersion string, packages []string) string {
	var b strings.Builder

	if ansibleVersion != "" {
		b.WriteString("ansible==" + ansibleVersion + "\n")
	} else {
		b.WriteString("ansible\n")
	}
	for _, pkg := range packages {
		b.WriteString(pkg + "\n")
	}

	return b.String()
}
