// SPDX-License-Identifier: MPL-2.0

// Package config loads launcher configuration.
//
// Configuration files are CUE, validated against the embedded #Config
// schema and merged into Viper on top of built-in defaults. Environment
// variables prefixed with AJLAUNCH_ override both. The defaults reproduce the
// stock launcher exactly, so a missing file is never an error.
package config
