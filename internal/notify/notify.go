// SPDX-License-Identifier: MPL-2.0

// Package notify shows blocking error notifications to the user.
//
// On Windows a modal message box is displayed, the way a desktop launcher is
// expected to fail. Everywhere else, and whenever dialogs are disabled, the
// notification is rendered as a styled card on the terminal.
package notify

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/term"

	"github.com/astrojournal/ajlaunch/internal/issue"
)

// Issue help styles. StyleAuto resolves to StyleNoTTY when the output is
// not a terminal or NO_COLOR is set, otherwise to the background's style.
const (
	StyleAuto  = "auto"
	StyleDark  = "dark"
	StyleLight = "light"
	StyleNoTTY = "notty"
)

var (
	colorError = lipgloss.Color("#EF4444")
	colorMuted = lipgloss.Color("#6B7280")
)

// cardStyles are bound to the renderer of the notification's writer, so
// colors are only emitted where that writer supports them.
type cardStyles struct {
	card   lipgloss.Style
	title  lipgloss.Style
	detail lipgloss.Style
}

func newCardStyles(r *lipgloss.Renderer) cardStyles {
	return cardStyles{
		card: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorError).
			Padding(0, 1),
		title: r.NewStyle().
			Bold(true).
			Foreground(colorError),
		detail: r.NewStyle().
			Foreground(colorMuted).
			Italic(true),
	}
}

type (
	// Notification is a fatal message for the user.
	Notification struct {
		// Title is the window caption, e.g. "Failed to launch AstroJournal".
		Title string
		// Message is the primary text.
		Message string
		// Detail is optional supporting text (error chain, hints).
		Detail string
		// Issue selects an optional catalog entry rendered after the card.
		Issue issue.Id
	}

	// Notifier displays a Notification and returns once the user has seen it.
	Notifier interface {
		Notify(n Notification) error
	}

	// Terminal renders notifications as a card on a writer.
	Terminal struct {
		W io.Writer
		// IssueStyle is the glamour style for catalog help; empty skips it.
		// StyleAuto is resolved against W.
		IssueStyle string
	}

	// Dialog shows a modal message box where the platform has one and falls
	// back to Fallback otherwise.
	Dialog struct {
		Fallback Notifier
	}

	// Recorder keeps notifications in memory.
	Recorder struct {
		Notifications []Notification
	}
)

// New returns a Dialog when dialogs are enabled, else a Terminal on w.
func New(w io.Writer, dialogs bool, issueStyle string) Notifier {
	terminal := &Terminal{W: w, IssueStyle: issueStyle}
	if !dialogs {
		return terminal
	}
	return &Dialog{Fallback: terminal}
}

// Notify implements Notifier.
func (t *Terminal) Notify(n Notification) error {
	r := lipgloss.NewRenderer(t.W)
	styles := newCardStyles(r)

	var body strings.Builder
	if n.Title != "" {
		body.WriteString(styles.title.Render(n.Title))
		body.WriteString("\n\n")
	}
	body.WriteString(n.Message)
	if n.Detail != "" {
		body.WriteString("\n\n")
		body.WriteString(styles.detail.Render(n.Detail))
	}

	if _, err := fmt.Fprintln(t.W, styles.card.Render(body.String())); err != nil {
		return fmt.Errorf("write notification: %w", err)
	}

	if n.Issue == 0 || t.IssueStyle == "" {
		return nil
	}
	entry := issue.Get(n.Issue)
	if entry == nil {
		return nil
	}
	rendered, err := entry.Render(resolveIssueStyle(t.W, r, t.IssueStyle))
	if err != nil {
		slog.Warn("failed to render issue catalog entry", "issueID", n.Issue, "error", err)
		return nil
	}
	_, err = fmt.Fprint(t.W, rendered)
	return err
}

// resolveIssueStyle turns StyleAuto into a concrete glamour style for w.
func resolveIssueStyle(w io.Writer, r *lipgloss.Renderer, style string) string {
	if style != StyleAuto {
		return style
	}
	f, ok := w.(term.File)
	if !ok || !term.IsTerminal(f.Fd()) || colorDisabled() {
		return StyleNoTTY
	}
	if r.HasDarkBackground() {
		return StyleDark
	}
	return StyleLight
}

func colorDisabled() bool {
	return os.Getenv("NO_COLOR") != ""
}

// Notify implements Notifier.
func (d *Dialog) Notify(n Notification) error {
	shown, err := showDialog(n)
	if shown && err == nil {
		return nil
	}
	if err != nil {
		slog.Debug("message box unavailable, falling back", "error", err)
	}
	if d.Fallback == nil {
		return err
	}
	return d.Fallback.Notify(n)
}

// Notify implements Notifier.
func (r *Recorder) Notify(n Notification) error {
	r.Notifications = append(r.Notifications, n)
	return nil
}
