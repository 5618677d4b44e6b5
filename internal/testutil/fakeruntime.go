// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"mvdan.cc/sh/v3/syntax"
)

// Version banners as printed by real runtimes on standard error.
// BannerOpenJDK never spells "Java" and is rejected by the classifier.
const (
	Banner64 = `java version "17.0.9" 2023-10-17 LTS
Java(TM) SE Runtime Environment (build 17.0.9+11-LTS-201)
Java HotSpot(TM) 64-Bit Server VM (build 17.0.9+11-LTS-201, mixed mode, sharing)
`
	Banner32 = `java version "1.8.0_381"
Java(TM) SE Runtime Environment (build 1.8.0_381-b09)
Java HotSpot(TM) Client VM (build 25.381-b09, mixed mode, sharing)
`
	BannerOpenJDK = `openjdk version "17.0.9" 2023-10-17
OpenJDK Runtime Environment Temurin-17.0.9+9 (build 17.0.9+9)
OpenJDK 64-Bit Server VM Temurin-17.0.9+9 (build 17.0.9+9, mixed mode, sharing)
`
)

// FakeRuntime describes a shell script standing in for the java binary.
type FakeRuntime struct {
	// Banner is written to stderr when invoked with -version.
	Banner string
	// Stdout is written to stdout for any other invocation.
	Stdout string
	// ExitCode is the exit status for non-version invocations.
	ExitCode int
	// ArgsFile, when set, receives one argument per line for non-version
	// invocations.
	ArgsFile string
}

// SkipIfNoPOSIXShell skips tests that rely on executable shell scripts.
func SkipIfNoPOSIXShell(t testing.TB) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake runtimes are POSIX shell scripts")
	}
}

// WriteFakeRuntime writes an executable script named "java" into dir and
// returns its path. The banner and output texts are stored next to the
// script and replayed with cat.
func WriteFakeRuntime(t testing.TB, dir string, fr FakeRuntime) string {
	t.Helper()
	SkipIfNoPOSIXShell(t)

	bannerPath := filepath.Join(dir, "java.banner")
	MustWriteFile(t, bannerPath, []byte(fr.Banner), 0o644)

	var sb strings.Builder
	sb.WriteString("#!/bin/sh\n")
	sb.WriteString("if [ \"$1\" = \"-version\" ]; then\n")
	fmt.Fprintf(&sb, "  cat %s >&2\n", shellQuote(t, bannerPath))
	sb.WriteString("  exit 0\nfi\n")
	if fr.ArgsFile != "" {
		fmt.Fprintf(&sb, "for a in \"$@\"; do printf '%%s\\n' \"$a\"; done > %s\n", shellQuote(t, fr.ArgsFile))
	}
	if fr.Stdout != "" {
		stdoutPath := filepath.Join(dir, "java.stdout")
		MustWriteFile(t, stdoutPath, []byte(fr.Stdout), 0o644)
		fmt.Fprintf(&sb, "cat %s\n", shellQuote(t, stdoutPath))
	}
	fmt.Fprintf(&sb, "exit %d\n", fr.ExitCode)

	path := filepath.Join(dir, "java")
	MustWriteFile(t, path, []byte(sb.String()), 0o755)
	return path
}

func shellQuote(t testing.TB, s string) string {
	t.Helper()
	q, err := syntax.Quote(s, syntax.LangPOSIX)
	if err != nil {
		t.Fatalf("quoting %q for the fake runtime: %v", s, err)
	}
	return q
}
