// Copyright 2026 © The Studio Authors
// SPDX-License-Identifier: Apache-2.0

// Package present renders execution outcomes for the terminal and the web.
package present

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/multiagent-studio/studio/pkg/core"
)

const ruleWidth = 70

var (
	heavyRule = strings.Repeat("=", ruleWidth)
	lightRule = strings.Repeat("-", ruleWidth)
)

// Terminal writes the interactive session chrome and outcomes.
type Terminal struct {
	out      io.Writer
	color    bool
	markdown bool
	width    int
	md       *glamour.TermRenderer

	title   *color.Color
	success *color.Color
	failure *color.Color
	warn    *color.Color
}

// TerminalOption configures a Terminal.
type TerminalOption func(*Terminal)

// WithColor toggles ANSI colors. Colors default to on only for a TTY.
func WithColor(enabled bool) TerminalOption {
	return func(t *Terminal) { t.color = enabled }
}

// WithMarkdown renders successful outcomes as styled markdown.
func WithMarkdown(enabled bool) TerminalOption {
	return func(t *Terminal) { t.markdown = enabled }
}

// WithWidth fixes the wrap width instead of probing the terminal.
func WithWidth(width int) TerminalOption {
	return func(t *Terminal) {
		if width > 0 {
			t.width = width
		}
	}
}

// WithDevice probes dev, not out, for color support and width. Use it when out
// wraps the terminal, as a line editor's writer does.
func WithDevice(dev io.Writer) TerminalOption {
	return func(t *Terminal) {
		t.color = isTTY(dev)
		t.width = terminalWidth(dev)
	}
}

// NewTerminal creates a presenter writing to out.
func NewTerminal(out io.Writer, opts ...TerminalOption) *Terminal {
	if out == nil {
		out = io.Discard
	}
	t := &Terminal{out: out, color: isTTY(out), width: terminalWidth(out)}
	for _, opt := range opts {
		opt(t)
	}
	t.title = t.style(color.FgCyan, color.Bold)
	t.success = t.style(color.FgGreen, color.Bold)
	t.failure = t.style(color.FgRed, color.Bold)
	t.warn = t.style(color.FgYellow)
	if t.markdown {
		style := "notty"
		if t.color {
			style = "dark"
		}
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(style),
			glamour.WithWordWrap(t.width),
			glamour.WithEmoji(),
		)
		if err == nil {
			t.md = r
		}
	}
	return t
}

func (t *Terminal) style(attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if t.color {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c
}

// Banner prints the application header.
func (t *Terminal) Banner() {
	fmt.Fprintln(t.out, heavyRule)
	t.title.Fprintln(t.out, "🤖 MultiAgent Studio - CLI")
	fmt.Fprintln(t.out, "Multi-role AI assistant powered by CrewAI & Google Gemini")
	fmt.Fprintln(t.out, heavyRule)
}

// Working announces that a request is executing.
func (t *Terminal) Working(role string) {
	fmt.Fprintln(t.out, "\n"+heavyRule)
	t.title.Fprintln(t.out, "⏳ AGENT IS WORKING...")
	if role != "" {
		fmt.Fprintf(t.out, "Role: %s\n", role)
	}
	fmt.Fprintln(t.out, heavyRule)
}

// Outcome prints a framed response or error.
func (t *Terminal) Outcome(o core.Outcome) {
	fmt.Fprintln(t.out, "\n"+heavyRule)
	if o.OK() {
		t.success.Fprintln(t.out, "✅ AGENT RESPONSE:")
		fmt.Fprintln(t.out, heavyRule)
		fmt.Fprintln(t.out, t.renderText(o.Text))
	} else {
		t.failure.Fprintln(t.out, "❌ ERROR:")
		fmt.Fprintln(t.out, heavyRule)
		fmt.Fprintln(t.out, o.Text)
	}
	fmt.Fprintln(t.out, heavyRule)
}

func (t *Terminal) renderText(text string) string {
	if t.md == nil {
		return text
	}
	out, err := t.md.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimRight(out, "\n")
}

// Warn prints a warning line.
func (t *Terminal) Warn(msg string) {
	t.warn.Fprintln(t.out, "⚠️  "+msg)
}

// Fault prints an unexpected error.
func (t *Terminal) Fault(err error) {
	t.failure.Fprintf(t.out, "\n❌ Unexpected error: %v\n", err)
}

// MissingCredential explains how to provide the API key.
func (t *Terminal) MissingCredential(envVar string) {
	t.failure.Fprintf(t.out, "❌ ERROR: %s not found!\n", envVar)
	fmt.Fprintln(t.out, "Please make sure .env file exists with your API key.")
	fmt.Fprintf(t.out, "Or set it manually: export %s='your-key-here'\n", envVar)
}

// Separator prints a light rule between rounds.
func (t *Terminal) Separator() {
	fmt.Fprintln(t.out, lightRule)
}

// Farewell ends a session normally.
func (t *Terminal) Farewell() {
	fmt.Fprintln(t.out, "\n👋 Thank you for using the AI Agent! Goodbye!")
}

// Interrupted ends a session after Ctrl-C.
func (t *Terminal) Interrupted() {
	fmt.Fprintln(t.out, "\n\n👋 Interrupted by user. Goodbye!")
}

func isTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func terminalWidth(w io.Writer) int {
	width := 80
	if f, ok := w.(*os.File); ok {
		if cols, _, err := term.GetSize(int(f.Fd())); err == nil && cols > 0 {
			width = cols - 4
			if width > 120 {
				width = 120
			}
		}
	}
	return width
}
