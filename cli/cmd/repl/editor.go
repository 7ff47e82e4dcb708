package repl

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/ardnew/wintitle/log"
)

// editorCommand opens the current expression in the user's editor. It
// implements tea.ExecCommand so the program releases the terminal while
// the editor runs.
type editorCommand struct {
	ctx    context.Context
	logger log.Logger
	text   string

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func (c *editorCommand) SetStdin(r io.Reader)  { c.stdin = r }
func (c *editorCommand) SetStdout(w io.Writer) { c.stdout = w }
func (c *editorCommand) SetStderr(w io.Writer) { c.stderr = w }

// editor returns the argv of the user's editor from VISUAL or EDITOR,
// falling back to vi.
func editor() []string {
	for _, key := range []string{"VISUAL", "EDITOR"} {
		if f := strings.Fields(os.Getenv(key)); len(f) > 0 {
			return f
		}
	}

	return []string{"vi"}
}

// Run writes the text to a temporary file, waits for the editor to exit
// and reads the result back into text. Line breaks are folded to
// spaces since the input line holds a single line.
func (c *editorCommand) Run() error {
	f, err := os.CreateTemp("", "wintitle-*.title")
	if err != nil {
		return err
	}

	path := f.Name()
	defer os.Remove(path)

	_, err = f.WriteString(c.text + "\n")
	if cerr := f.Close(); err == nil {
		err = cerr
	}

	if err != nil {
		return err
	}

	argv := append(editor(), path)

	cmd := exec.CommandContext(c.ctx, argv[0], argv[1:]...)
	cmd.Stdin, cmd.Stdout, cmd.Stderr = c.stdin, c.stdout, c.stderr

	if err := cmd.Run(); err != nil {
		return ErrNoEditor.Wrap(err).With(slog.String("editor", argv[0]))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	c.text = strings.Join(strings.Fields(string(data)), " ")

	c.logger.TraceContext(c.ctx, "editor closed", slog.Int("length", len(c.text)))

	return nil
}
