// Package console implements the operator-facing interaction surface on
// the terminal: free-text prompts, single-choice selection, severity
// notifications, and patch previews.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// Console implements domain.UserInteraction on stdin/stdout/stderr.
type Console struct {
	in     *bufio.Reader
	out    io.Writer
	errOut io.Writer

	// openURL launches the system browser; swapped out in tests.
	openURL func(url string) error
}

// NewConsole creates a Console bound to the process streams.
func NewConsole() *Console {
	return &Console{
		in:      bufio.NewReader(os.Stdin),
		out:     os.Stdout,
		errOut:  os.Stderr,
		openURL: openInBrowser,
	}
}

// NewConsoleWithStreams creates a Console with custom streams. This is
// useful for testing.
func NewConsoleWithStreams(in io.Reader, out, errOut io.Writer) *Console {
	return &Console{
		in:      bufio.NewReader(in),
		out:     out,
		errOut:  errOut,
		openURL: openInBrowser,
	}
}

// PromptText asks the operator for a free-text line. An empty answer or
// EOF counts as declining the prompt.
func (c *Console) PromptText(ctx context.Context, message string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	c.printf("%s\n> ", message)
	line, err := c.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", false, fmt.Errorf("failed to read input: %w", err)
	}

	answer := strings.TrimSpace(line)
	if answer == "" {
		return "", false, nil
	}
	return answer, true, nil
}

// PromptSelect asks the operator to pick exactly one option by number.
// Empty input, EOF, or anything that is not a listed number counts as
// declining.
func (c *Console) PromptSelect(ctx context.Context, message string, options []string) (int, bool, error) {
	if err := ctx.Err(); err != nil {
		return 0, false, err
	}

	c.printf("%s\n", message)
	for i, opt := range options {
		c.printf("  %d) %s\n", i+1, opt)
	}
	c.printf("> ")

	line, err := c.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return 0, false, fmt.Errorf("failed to read input: %w", err)
	}

	choice, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil || choice < 1 || choice > len(options) {
		return 0, false, nil
	}
	return choice - 1, true, nil
}

// Info surfaces an informational notification.
func (c *Console) Info(msg string) {
	c.printf("%s %s\n", color.CyanString("info:"), msg)
}

// Warn surfaces a warning notification.
func (c *Console) Warn(msg string) {
	c.eprintf("%s %s\n", color.YellowString("warning:"), msg)
}

// Error surfaces an error notification.
func (c *Console) Error(msg string) {
	c.eprintf("%s %s\n", color.RedString("error:"), msg)
}

// ShowPatch prints a colored inline diff of the mutation, insertions in
// green and deletions in red.
func (c *Console) ShowPatch(path string, original, updated []byte) {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(string(original), string(updated), false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	c.printf("%s %s\n", color.CyanString("patched:"), path)
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			c.printf("%s", color.GreenString(d.Text))
		case diffmatchpatch.DiffDelete:
			c.printf("%s", color.RedString(d.Text))
		default:
			c.printf("%s", d.Text)
		}
	}
	c.printf("\n")
}

// OfferOpen asks whether to open the URL externally and launches the
// system browser on a yes. Declining is not an error.
func (c *Console) OfferOpen(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.printf("Open %s in your browser? [y/N] ", url)
	line, err := c.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return fmt.Errorf("failed to read input: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		if err := c.openURL(url); err != nil {
			return fmt.Errorf("failed to open %s: %w", url, err)
		}
	}
	return nil
}

// printf writes to stdout. Write failures have no recovery action and
// are intentionally ignored.
func (c *Console) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(c.out, format, args...)
}

// eprintf writes to stderr, same policy as printf.
func (c *Console) eprintf(format string, args ...any) {
	_, _ = fmt.Fprintf(c.errOut, format, args...)
}

// openInBrowser launches the platform's URL opener.
func openInBrowser(url string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", url).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	default:
		return exec.Command("xdg-open", url).Start()
	}
}
