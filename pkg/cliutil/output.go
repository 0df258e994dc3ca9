// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package cliutil

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Pre-defined styles for consistent output appearance.
var (
	// SuccessStyle is used for completed operations.
	SuccessStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))

	// ErrorStyle is used for surfaced errors.
	ErrorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)

	// BranchStyle highlights branch names.
	BranchStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))

	// CurrentBranchStyle highlights the current branch.
	CurrentBranchStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)

	// SubtleStyle is used for less important information.
	SubtleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// Output writes user-facing messages, styling them when the destination is a
// terminal.
type Output struct {
	w     io.Writer
	style bool
	quiet bool
}

// NewOutput creates an Output for w. Styling is enabled only when w is a
// terminal.
func NewOutput(w io.Writer, quiet bool) *Output {
	styled := false
	if f, ok := w.(*os.File); ok {
		styled = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &Output{w: w, style: styled, quiet: quiet}
}

// Writer exposes the underlying writer, for streaming output such as
// transfer progress.
func (o *Output) Writer() io.Writer {
	if o.quiet {
		return io.Discard
	}
	return o.w
}

// Printf writes a plain message line.
func (o *Output) Printf(format string, args ...any) {
	if o.quiet {
		return
	}
	fmt.Fprintf(o.w, format+"\n", args...)
}

// Successf writes a success message line.
func (o *Output) Successf(format string, args ...any) {
	o.styled(SuccessStyle, format, args...)
}

// Errorf writes an error message line. Errors print even in quiet mode.
func (o *Output) Errorf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if o.style {
		msg = ErrorStyle.Render(msg)
	}
	fmt.Fprintln(o.w, msg)
}

// Branch renders a branch name, marking the current one.
func (o *Output) Branch(name string, current bool) string {
	if !o.style {
		return name
	}
	if current {
		return CurrentBranchStyle.Render(name)
	}
	return BranchStyle.Render(name)
}

// Subtlef writes a de-emphasised message line.
func (o *Output) Subtlef(format string, args ...any) {
	o.styled(SubtleStyle, format, args...)
}

func (o *Output) styled(style lipgloss.Style, format string, args ...any) {
	if o.quiet {
		return
	}
	msg := fmt.Sprintf(format, args...)
	if o.style {
		msg = style.Render(msg)
	}
	fmt.Fprintln(o.w, msg)
}
