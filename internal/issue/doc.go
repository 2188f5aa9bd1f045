// SPDX-License-Identifier: MPL-2.0

// Package issue classifies the fatal error kinds of the build pipeline.
//
// Every failure is wrapped as one of a small set of kinds so that a single
// top-level handler can map errors to process exit codes, instead of
// scattering os.Exit calls through business logic.
package issue
