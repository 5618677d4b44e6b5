// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"

	"github.com/astrojournal/ajlaunch/internal/app/launcher"
	"github.com/astrojournal/ajlaunch/internal/config"
	"github.com/astrojournal/ajlaunch/internal/hostmem"
	"github.com/astrojournal/ajlaunch/internal/installpath"
	"github.com/astrojournal/ajlaunch/internal/issue"
	"github.com/astrojournal/ajlaunch/internal/launch"
	"github.com/astrojournal/ajlaunch/internal/notify"
	"github.com/astrojournal/ajlaunch/internal/probe"
	"github.com/astrojournal/ajlaunch/internal/testutil"
)

type (
	fakeProber struct{ text string }

	fakeRunner struct {
		calls   []launch.Spec
		outcome launch.Outcome
		err     error
	}

	failingProvider struct{ err error }

	testEnv struct {
		app      *App
		stdout   *bytes.Buffer
		stderr   *bytes.Buffer
		runner   *fakeRunner
		recorder *notify.Recorder
	}
)

func (p fakeProber) Probe(context.Context) probe.Result {
	return probe.Result{Binary: "/usr/bin/java", Text: p.text}
}

func (r *fakeRunner) Run(_ context.Context, spec launch.Spec) (launch.Outcome, error) {
	r.calls = append(r.calls, spec)
	if r.outcome.Output != "" {
		_, _ = io.WriteString(spec.Stdout, r.outcome.Output)
	}
	return r.outcome, r.err
}

func (p failingProvider) Load(context.Context, config.LoadOptions) (*config.Config, string, error) {
	return nil, "", p.err
}

func newTestEnv(banner string, memMB int) *testEnv {
	env := &testEnv{
		stdout:   &bytes.Buffer{},
		stderr:   &bytes.Buffer{},
		runner:   &fakeRunner{},
		recorder: &notify.Recorder{},
	}
	env.app = NewApp(Dependencies{
		Config: config.Static{},
		Paths:  installpath.Static("/opt/astrojournal"),
		NewLauncher: func(cfg *config.Config, logger *log.Logger) *launcher.Launcher {
			return &launcher.Launcher{
				Config: cfg,
				Prober: fakeProber{text: banner},
				Memory: hostmem.Fixed(memMB),
				Paths:  installpath.Static("/opt/astrojournal"),
				Runner: env.runner,
				Logger: logger,
				Stdout: env.stdout,
				Stderr: env.stderr,
			}
		},
		NewNotifier: func(*config.Config, io.Writer) notify.Notifier {
			return env.recorder
		},
		Stdout: env.stdout,
		Stderr: env.stderr,
	})
	return env
}

func (env *testEnv) execute(args ...string) error {
	root := NewRootCommand(env.app)
	root.SetArgs(args)
	return root.ExecuteContext(context.Background())
}

func exitCode(t *testing.T, err error) int {
	t.Helper()
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("error %v is not an *ExitError", err)
	}
	return exitErr.Code
}

func TestGetVersionString(t *testing.T) {
	// Not parallel: subtests mutate package-level Version/Commit/BuildDate vars.

	t.Run("ldflags version", func(t *testing.T) {
		origVersion, origCommit, origBuildDate := Version, Commit, BuildDate
		t.Cleanup(func() {
			Version, Commit, BuildDate = origVersion, origCommit, origBuildDate
		})

		Version = "v0.9.0"
		Commit = "abc1234"
		BuildDate = "2026-01-15T10:00:00Z"

		got := getVersionString()
		want := "v0.9.0 (commit: abc1234, built: 2026-01-15T10:00:00Z)"
		if got != want {
			t.Errorf("getVersionString() = %q, want %q", got, want)
		}
	})

	t.Run("dev build", func(t *testing.T) {
		origVersion := Version
		t.Cleanup(func() { Version = origVersion })

		Version = "dev"
		if got := getVersionString(); got != "dev (built from source)" {
			t.Errorf("getVersionString() = %q", got)
		}
	})
}

func TestLaunch_Success(t *testing.T) {
	env := newTestEnv(testutil.Banner64, 900)
	env.runner.outcome = launch.Outcome{Output: "AstroJournal started\n"}

	if code := exitCode(t, env.execute()); code != 0 {
		t.Fatalf("exit code = %d, want 0", code)
	}
	if len(env.runner.calls) != 1 {
		t.Fatalf("runner called %d times, want 1", len(env.runner.calls))
	}
	if got := env.runner.calls[0].Args[3]; got != "-Xmx500m" {
		t.Errorf("heap flag = %q, want -Xmx500m", got)
	}

	out := env.stdout.String()
	for _, want := range []string{
		"Found 64-bit JVM, setting memory ceiling to 500m",
		"Physical memory installed is 900",
		"Amount of memory to use is 500",
		"Final command is /usr/bin/java -cp /opt/astrojournal -Xss4m -Xmx500m -jar target/astrojournal-0.9-jar-with-dependencies.jar",
		"AstroJournal started",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("stdout missing %q:\n%s", want, out)
		}
	}
	if len(env.recorder.Notifications) != 0 {
		t.Errorf("no notification expected on success, got %+v", env.recorder.Notifications)
	}
}

func TestLaunch_FatalOutcomes(t *testing.T) {
	tests := []struct {
		name    string
		banner  string
		memMB   int
		runErr  error
		code    int
		issue   issue.Id
		message string
	}{
		{
			name:    "runtime absent",
			banner:  "",
			memMB:   4096,
			code:    1,
			issue:   issue.RuntimeNotFoundId,
			message: "Could not find java on your system",
		},
		{
			name:    "not enough memory",
			banner:  testutil.Banner64,
			memMB:   150,
			code:    1,
			issue:   issue.InsufficientMemoryId,
			message: "Not enough memory to run AstroJournal (you need at least 200MB)",
		},
		{
			name:    "launch failure",
			banner:  testutil.Banner32,
			memMB:   300,
			runErr:  &launch.Error{Binary: "java", Err: errors.New("permission denied")},
			code:    2,
			issue:   issue.LaunchFailedId,
			message: "AstroJournal process failed to start",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(tt.banner, tt.memMB)
			env.runner.err = tt.runErr

			if code := exitCode(t, env.execute()); code != tt.code {
				t.Errorf("exit code = %d, want %d", code, tt.code)
			}
			if len(env.recorder.Notifications) != 1 {
				t.Fatalf("got %d notifications, want 1", len(env.recorder.Notifications))
			}
			n := env.recorder.Notifications[0]
			if n.Title != "Failed to launch AstroJournal" || n.Message != tt.message || n.Issue != tt.issue {
				t.Errorf("notification = %+v", n)
			}
		})
	}
}

func TestLaunch_ApplicationExitStatus(t *testing.T) {
	t.Run("completed run exits 0", func(t *testing.T) {
		env := newTestEnv(testutil.Banner64, 4096)
		env.runner.outcome = launch.Outcome{ExitCode: 4}

		if code := exitCode(t, env.execute()); code != 0 {
			t.Errorf("exit code = %d, want 0", code)
		}
		if !strings.Contains(env.stdout.String(), "AstroJournal exited with status 4") {
			t.Errorf("the application status should be logged:\n%s", env.stdout.String())
		}
		if len(env.recorder.Notifications) != 0 {
			t.Error("an application exit status is not a launcher failure")
		}
	})

	t.Run("propagated when configured", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.Launch.PropagateExitCode = true
		env := newTestEnv(testutil.Banner64, 4096)
		env.app.Config = config.Static{Config: cfg}
		env.runner.outcome = launch.Outcome{ExitCode: 4}

		if code := exitCode(t, env.execute()); code != 4 {
			t.Errorf("exit code = %d, want 4", code)
		}
		if len(env.recorder.Notifications) != 0 {
			t.Error("an application exit status is not a launcher failure")
		}
	})
}

func TestLaunch_DefaultNotifierWritesPlainText(t *testing.T) {
	env := newTestEnv("", 4096)
	env.app.NewNotifier = func(cfg *config.Config, w io.Writer) notify.Notifier {
		// Dialogs off so Windows runs do not block on a message box.
		return notify.New(w, false, cfg.UI.IssueStyle)
	}

	if code := exitCode(t, env.execute()); code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	out := env.stderr.String()
	if !strings.Contains(out, "Could not find java on your system") {
		t.Fatalf("notification missing from stderr:\n%s", out)
	}
	if strings.Contains(out, "\x1b[") {
		t.Errorf("notification on a non-terminal must not contain escape sequences:\n%q", out)
	}
}

func TestHandleError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "reported exit error is silent",
			err:  &ExitError{Code: 1, Err: errors.New("could not find java on your system")},
			want: "",
		},
		{
			name: "application status is silent",
			err:  &ExitError{Code: 3},
			want: "",
		},
		{
			name: "other errors are printed",
			err:  errors.New(`unknown command "lanuch" for "ajlaunch"`),
			want: `unknown command "lanuch" for "ajlaunch"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			handleError(&buf, fang.Styles{}, tt.err)
			if tt.want == "" && buf.Len() != 0 {
				t.Errorf("handleError() wrote %q, want nothing", buf.String())
			}
			if tt.want != "" && !strings.Contains(buf.String(), tt.want) {
				t.Errorf("handleError() wrote %q, want it to contain %q", buf.String(), tt.want)
			}
		})
	}
}

func TestLaunch_DryRun(t *testing.T) {
	env := newTestEnv(testutil.Banner64, 4096)

	if code := exitCode(t, env.execute("--dry-run")); code != 0 {
		t.Fatalf("exit code = %d, want 0", code)
	}
	if len(env.runner.calls) != 0 {
		t.Error("dry run must not start the application")
	}
	if !strings.Contains(env.stdout.String(), "Final command is") {
		t.Errorf("dry run should print the final command:\n%s", env.stdout.String())
	}
}

func TestLaunch_ConfigLoadFailure(t *testing.T) {
	env := newTestEnv(testutil.Banner64, 4096)
	env.app.Config = failingProvider{err: errors.New("bad config")}

	if code := exitCode(t, env.execute()); code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
	if len(env.recorder.Notifications) != 1 || env.recorder.Notifications[0].Issue != issue.ConfigLoadFailedId {
		t.Errorf("notifications = %+v", env.recorder.Notifications)
	}
	if len(env.runner.calls) != 0 {
		t.Error("nothing may be launched without a configuration")
	}
}

func TestLaunch_VerboseShowsDebug(t *testing.T) {
	env := newTestEnv(testutil.Banner64, 4096)

	if err := env.execute("--verbose", "--dry-run"); err != nil {
		t.Fatalf("execute() error = %v", err)
	}
	if !strings.Contains(env.stdout.String(), "probed runtime") {
		t.Errorf("verbose output should include debug diagnostics:\n%s", env.stdout.String())
	}
}

func TestLaunch_RejectsArguments(t *testing.T) {
	env := newTestEnv(testutil.Banner64, 4096)
	if err := env.execute("extra"); err == nil {
		t.Error("positional arguments should be rejected")
	}
}

func TestExitError(t *testing.T) {
	t.Parallel()

	cause := errors.New("boom")
	if got := (&ExitError{Code: 2, Err: cause}).Error(); got != "boom" {
		t.Errorf("Error() = %q", got)
	}
	if got := (&ExitError{Code: 3}).Error(); got != "exit status 3" {
		t.Errorf("Error() = %q", got)
	}
	if !errors.Is(&ExitError{Code: 1, Err: cause}, cause) {
		t.Error("ExitError should unwrap to its cause")
	}
}
