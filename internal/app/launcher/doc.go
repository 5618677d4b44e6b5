// SPDX-License-Identifier: MPL-2.0

// Package launcher composes the launch pipeline: probe the Java runtime,
// classify it, size the heap from installed memory, resolve the class path
// and start the application. It decides exit codes and notification text
// but never shows anything itself; the command layer owns presentation.
package launcher
