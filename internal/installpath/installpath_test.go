// SPDX-License-Identifier: MPL-2.0

package installpath

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestNormalize_Windows(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "drive path unchanged", raw: `C:\Program Files\AstroJournal`, want: `C:\Program Files\AstroJournal`},
		{name: "drive root unchanged", raw: `D:\`, want: `D:\`},
		{name: "legacy file prefix", raw: `file:\C:\AstroJournal`, want: `C:\AstroJournal`},
		{name: "legacy file prefix on share", raw: `file:\\server\share\AstroJournal`, want: `\\server\share\AstroJournal`},
		{name: "legacy file prefix without drive", raw: `file:\server\share`, want: `\\server\share`},
		{name: "file uri with drive", raw: "file:///C:/Program%20Files/AstroJournal", want: `C:\Program Files\AstroJournal`},
		{name: "file uri with host", raw: "file://server/share/AstroJournal", want: `\\server\share\AstroJournal`},
		{name: "short file uri", raw: "file:/C:/AstroJournal", want: `C:\AstroJournal`},
		{name: "share without separators", raw: `server\share`, want: `\\server\share`},
		{name: "already unc", raw: `\\server\share`, want: `\\server\share`},
		{name: "single leading separator", raw: `\server\share`, want: `\\server\share`},
		{name: "forward slashes", raw: "C:/AstroJournal", want: `C:\AstroJournal`},
		{name: "single character", raw: "x", want: `\\x`},
		{name: "empty", raw: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.raw, StyleWindows); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestNormalize_POSIX(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{raw: "/opt/astrojournal", want: "/opt/astrojournal"},
		{raw: "file:///opt/astrojournal", want: "/opt/astrojournal"},
		{raw: "file:///opt/Astro%20Journal", want: "/opt/Astro Journal"},
		{raw: "file:/opt/astrojournal", want: "/opt/astrojournal"},
		{raw: "file://nas/export/aj", want: "//nas/export/aj"},
		{raw: `file:\opt`, want: "opt"},
		{raw: "relative/dir", want: "relative/dir"},
	}

	for _, tt := range tests {
		if got := Normalize(tt.raw, StylePOSIX); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		`C:\AstroJournal`,
		`file:\C:\AstroJournal`,
		`server\share`,
		`\\server\share`,
		`\server`,
		"file://server/share",
		"file:///C:/a%20b",
		"/opt/aj",
		"file:///opt/aj",
	}

	for _, style := range []Style{StyleWindows, StylePOSIX} {
		for _, in := range inputs {
			once := Normalize(in, style)
			twice := Normalize(once, style)
			if once != twice {
				t.Errorf("style %d: Normalize not idempotent for %q: %q then %q", style, in, once, twice)
			}
			if strings.HasPrefix(once, "file:") {
				t.Errorf("style %d: Normalize(%q) = %q still has file prefix", style, in, once)
			}
			if style == StyleWindows && strings.HasPrefix(once, `\\\`) {
				t.Errorf("Normalize(%q) = %q has three leading separators", in, once)
			}
		}
	}
}

func TestExecutable_Resolve(t *testing.T) {
	dir := t.TempDir()
	exe := filepath.Join(dir, "ajlaunch")
	if err := os.WriteFile(exe, []byte("bin"), 0o755); err != nil {
		t.Fatal(err)
	}

	r := &Executable{Style: StylePOSIX, executable: func() (string, error) { return exe, nil }}
	got, err := r.Resolve()
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	want, _ := filepath.EvalSymlinks(dir)
	if got != want {
		t.Errorf("Resolve() = %q, want %q", got, want)
	}
}

func TestExecutable_ResolveFollowsSymlink(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need elevated privileges on Windows")
	}

	realDir := t.TempDir()
	linkDir := t.TempDir()
	exe := filepath.Join(realDir, "ajlaunch")
	if err := os.WriteFile(exe, []byte("bin"), 0o755); err != nil {
		t.Fatal(err)
	}
	link := filepath.Join(linkDir, "ajlaunch")
	if err := os.Symlink(exe, link); err != nil {
		t.Fatal(err)
	}

	r := &Executable{Style: StylePOSIX, executable: func() (string, error) { return link, nil }}
	got, err := r.Resolve()
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	want, _ := filepath.EvalSymlinks(realDir)
	if got != want {
		t.Errorf("Resolve() = %q, want %q", got, want)
	}
}

func TestExecutable_ResolveError(t *testing.T) {
	want := errors.New("no /proc")
	r := &Executable{executable: func() (string, error) { return "", want }}
	if _, err := r.Resolve(); !errors.Is(err, want) {
		t.Errorf("Resolve() error = %v, want %v", err, want)
	}
}

func TestStatic(t *testing.T) {
	got, err := Static(`C:\aj`).Resolve()
	if err != nil || got != `C:\aj` {
		t.Errorf("Static.Resolve() = %q, %v", got, err)
	}
	if _, err := Static("").Resolve(); err == nil {
		t.Error("empty Static should fail")
	}
}
