// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the ajlaunch command tree.
//
// The root command launches AstroJournal. The doctor and config
// subcommands inspect the same pipeline and configuration without starting
// the application.
package cmd
