// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable error handling with user-friendly messages.
//
// ActionableError carries the failed operation, the resource involved and a
// list of remediation hints. The issue catalog maps each fatal launcher
// condition to a Markdown help page rendered with glamour.
package issue
