package input

import (
	"context"
	"errors"
	"io"

	"github.com/chzyer/readline"
)

// TerminalSource reads lines from an interactive terminal with line editing.
type TerminalSource struct {
	rl *readline.Instance
}

// NewTerminalSource opens the terminal. History is kept in memory only.
func NewTerminalSource() (*TerminalSource, error) {
	rl, err := readline.NewEx(&readline.Config{
		InterruptPrompt:        "^C",
		EOFPrompt:              "",
		DisableAutoSaveHistory: true,
		HistoryLimit:           -1,
	})
	if err != nil {
		return nil, err
	}
	return &TerminalSource{rl: rl}, nil
}

// ReadLine implements LineSource. Ctrl-C maps to ErrInterrupted and Ctrl-D
// to io.EOF. When ctx ends first the terminal is closed and restored.
func (t *TerminalSource) ReadLine(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	t.rl.SetPrompt(prompt)

	type result struct {
		line string
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		line, err := t.rl.Readline()
		ch <- result{line, err}
	}()

	var line string
	var err error
	select {
	case res := <-ch:
		line, err = res.line, res.err
	case <-ctx.Done():
		_ = t.rl.Close()
		return "", ctx.Err()
	}
	switch {
	case errors.Is(err, readline.ErrInterrupt):
		return "", ErrInterrupted
	case errors.Is(err, io.EOF):
		return "", io.EOF
	case err != nil:
		return "", err
	}
	return line, nil
}

// Stdout returns a writer that cooperates with the active prompt.
func (t *TerminalSource) Stdout() io.Writer { return t.rl.Stdout() }

// Close restores the terminal.
func (t *TerminalSource) Close() error { return t.rl.Close() }
