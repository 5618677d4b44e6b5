// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helper functions for tests that handle errors
// appropriately, reducing boilerplate and ensuring consistent error handling.
//
// Helpers cover environment variable management (MustSetenv, MustUnsetenv),
// config home isolation (SetConfigHome), file creation (MustWriteFile) and
// fake Java runtimes (WriteFakeRuntime) that stand in for a real JVM in
// process-level tests.
package testutil
