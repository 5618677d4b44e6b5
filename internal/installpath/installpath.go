// SPDX-License-Identifier: MPL-2.0

// Package installpath locates the directory the launcher was started from
// and normalizes it for use as a Java class path.
package installpath

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

const (
	// StylePOSIX leaves absolute slash-rooted paths alone.
	StylePOSIX Style = iota + 1
	// StyleWindows applies drive-letter and UNC rules.
	StyleWindows
)

// uncPrefix starts a Windows network path.
const uncPrefix = `\\`

type (
	// Style selects the path conventions used by Normalize.
	Style int

	// Resolver returns the launcher's install directory.
	Resolver interface {
		Resolve() (string, error)
	}

	// Executable resolves the directory holding the running binary.
	Executable struct {
		Style Style

		executable func() (string, error)
	}

	// Static is a Resolver that always returns the same, already normalized, path.
	Static string
)

// HostStyle returns the Style for the running operating system.
func HostStyle() Style {
	if runtime.GOOS == "windows" {
		return StyleWindows
	}
	return StylePOSIX
}

// NewExecutable returns a Resolver for the running binary using HostStyle.
func NewExecutable() *Executable {
	return &Executable{Style: HostStyle(), executable: os.Executable}
}

// Resolve implements Resolver.
func (e *Executable) Resolve() (string, error) {
	executable := e.executable
	if executable == nil {
		executable = os.Executable
	}

	exe, err := executable()
	if err != nil {
		return "", fmt.Errorf("locate launcher executable: %w", err)
	}

	// Follow symlinks so a link on PATH still finds the real install dir.
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}

	style := e.Style
	if style == 0 {
		style = HostStyle()
	}

	dir := Normalize(filepath.Dir(exe), style)
	if dir == "" {
		return "", fmt.Errorf("locate launcher executable: empty directory for %q", exe)
	}
	return dir, nil
}

// Resolve implements Resolver.
func (s Static) Resolve() (string, error) {
	if s == "" {
		return "", fmt.Errorf("install path is empty")
	}
	return string(s), nil
}

// Normalize turns a raw directory into a class-path-ready path.
//
// A local file URI prefix is removed. Under StyleWindows the remainder uses
// backslashes, and any path whose second character is not a drive colon is
// treated as a network share and given exactly two leading backslashes.
// Normalize is idempotent: normalizing its own output changes nothing.
func Normalize(raw string, style Style) string {
	p := stripFileURI(raw, style)

	if style != StyleWindows {
		return p
	}

	p = strings.ReplaceAll(p, "/", `\`)
	if p == "" || hasDriveLetter(p) {
		return p
	}
	return uncPrefix + strings.TrimLeft(p, `\`)
}

func hasDriveLetter(p string) bool {
	return len(p) >= 2 && p[1] == ':'
}

// stripFileURI removes a file-scheme prefix. The legacy backslash form
// ("file:\C:\dir") is what a directory name derived from a file URI looks
// like on Windows.
func stripFileURI(p string, style Style) string {
	if rest, ok := strings.CutPrefix(p, `file:\`); ok {
		return rest
	}

	if !strings.HasPrefix(p, "file:/") {
		return p
	}

	var rest string
	switch {
	case strings.HasPrefix(p, "file:///"):
		rest = p[len("file:///"):]
		if style != StyleWindows {
			rest = "/" + rest
		}
	case strings.HasPrefix(p, "file://"):
		// file://host/share names a network location.
		rest = p[len("file://"):]
		if style != StyleWindows {
			rest = "//" + rest
		}
	default:
		rest = p[len("file:"):]
		if style == StyleWindows {
			rest = strings.TrimPrefix(rest, "/")
		}
	}

	if unescaped, err := url.PathUnescape(rest); err == nil {
		return unescaped
	}
	return rest
}
