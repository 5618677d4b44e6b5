// SPDX-License-Identifier: MPL-2.0

package jvm

import (
	"strconv"
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

const (
	// DefaultStackSize is the fixed thread stack size passed as -Xss.
	DefaultStackSize = "4m"
	// DefaultArtifact is the application jar, relative to the install directory.
	DefaultArtifact = "target/astrojournal-0.9-jar-with-dependencies.jar"
)

// ArgsOptions describes the application invocation.
type ArgsOptions struct {
	// ClassPath is the install directory, used verbatim as the -cp value.
	ClassPath string
	// StackSize is the -Xss value including its unit (default "4m").
	StackSize string
	// HeapMB is the heap ceiling in megabytes, emitted as -Xmx<HeapMB>m.
	HeapMB int
	// Artifact is the jar run with -jar (default DefaultArtifact).
	Artifact string
}

// Args returns the runtime arguments, in order:
//
//	-cp <ClassPath> -Xss<StackSize> -Xmx<HeapMB>m -jar <Artifact>
//
// Each element is a separate argv entry, so the class path needs no quoting.
func Args(opts ArgsOptions) []string {
	stack := opts.StackSize
	if stack == "" {
		stack = DefaultStackSize
	}
	artifact := opts.Artifact
	if artifact == "" {
		artifact = DefaultArtifact
	}

	return []string{
		"-cp", opts.ClassPath,
		"-Xss" + stack,
		HeapFlag(opts.HeapMB),
		"-jar", artifact,
	}
}

// HeapFlag formats the maximum heap flag for a size in megabytes.
func HeapFlag(mb int) string {
	return "-Xmx" + strconv.Itoa(mb) + "m"
}

// CommandLine renders binary and args as a single line for display, quoting
// any argument that a POSIX shell would split or expand.
func CommandLine(binary string, args []string) string {
	parts := make([]string, 0, len(args)+1)
	for _, a := range append([]string{binary}, args...) {
		parts = append(parts, quote(a))
	}
	return strings.Join(parts, " ")
}

func quote(s string) string {
	if s == "" {
		return `""`
	}
	q, err := syntax.Quote(s, syntax.LangBash)
	if err != nil {
		// Quote only fails on bytes bash cannot represent; show them raw.
		return s
	}
	return q
}
