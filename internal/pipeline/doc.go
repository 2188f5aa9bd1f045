// SPDX-License-Identifier: MPL-2.0

// Package pipeline drives a build from raw options to a finished bundle.
//
// The stages are strictly sequential: configuration resolution (before any
// staging), staging-area acquisition with deferred release, content assembly,
// dependency materialization, runtime requirement composition, entrypoint
// installation, and reproducible packaging. Each stage's precondition is the
// previous stage's postcondition on the staging area, so nothing here runs
// concurrently.
package pipeline
