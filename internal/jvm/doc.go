// SPDX-License-Identifier: MPL-2.0

// Package jvm classifies a Java runtime from its version banner and builds
// the argument list used to start the AstroJournal application on it.
package jvm
