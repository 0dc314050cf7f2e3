package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/ardnew/aliasexpr/lang"
	"github.com/ardnew/aliasexpr/log"
)

const defaultEditor = "vi"

// editAliasCommand implements [tea.ExecCommand]. It writes the alias to a
// temporary file, opens $EDITOR on it and reads the result back. Expression
// aliases are parsed after each edit; on a syntax error the user is asked
// whether to edit again, and declining returns [ErrEditDeclined].
type editAliasCommand struct {
	ctx        context.Context
	logger     log.Logger
	text       string
	expression bool
	evalOpts   []lang.Option

	edited    string
	cancelled bool

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// SetStdin implements [tea.ExecCommand].
func (c *editAliasCommand) SetStdin(r io.Reader) { c.stdin = r }

// SetStdout implements [tea.ExecCommand].
func (c *editAliasCommand) SetStdout(w io.Writer) { c.stdout = w }

// SetStderr implements [tea.ExecCommand].
func (c *editAliasCommand) SetStderr(w io.Writer) { c.stderr = w }

// Run implements [tea.ExecCommand].
func (c *editAliasCommand) Run() error {
	ext := ".txt"
	if c.expression {
		ext = ".js"
	}

	f, err := os.CreateTemp("", "aliasexpr-*"+ext)
	if err != nil {
		return err
	}

	path := f.Name()

	defer os.Remove(path)

	err = f.Close()
	if err != nil {
		return err
	}

	text := c.text

	for {
		err = os.WriteFile(path, []byte(text), historyFileMode)
		if err != nil {
			return err
		}

		err = c.runEditor(path)
		if err != nil {
			return err
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		text = strings.TrimRight(string(data), "\n")

		if strings.TrimSpace(text) == "" {
			c.cancelled = true

			return nil
		}

		if !c.expression {
			c.edited = text

			return nil
		}

		_, parseErr := lang.Parse(c.ctx, text, c.evalOpts...)

		c.logger.TraceContext(c.ctx, "editor parse attempt",
			slog.Int("source_length", len(text)),
			slog.Bool("success", parseErr == nil),
		)

		if parseErr == nil {
			c.edited = text

			return nil
		}

		fmt.Fprintf(c.stderr, "\nsyntax error: %v\n", parseErr)
		fmt.Fprint(c.stdout, "Edit again? [Y/n] ")

		scanner := bufio.NewScanner(c.stdin)
		if !scanner.Scan() {
			return ErrEditDeclined
		}

		switch strings.ToLower(strings.TrimSpace(scanner.Text())) {
		case "n", "no":
			return ErrEditDeclined
		}
	}
}

// runEditor runs $EDITOR, or vi when it is unset, on path. $EDITOR may carry
// arguments, e.g. "code --wait".
func (c *editAliasCommand) runEditor(path string) error {
	args := strings.Fields(os.Getenv("EDITOR"))
	if len(args) == 0 {
		args = []string{defaultEditor}
	}

	cmd := exec.CommandContext(c.ctx, args[0], append(args[1:], path)...)
	cmd.Stdin = c.stdin
	cmd.Stdout = c.stdout
	cmd.Stderr = c.stderr

	return cmd.Run()
}
