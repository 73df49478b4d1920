// Package input collects a role choice and a task description from a
// pull-based line source.
package input

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
)

// ErrInterrupted is returned by a LineSource when the user interrupts input
// (Ctrl-C at a prompt).
var ErrInterrupted = errors.New("input interrupted")

// LineSource yields one line per call. It is finite: io.EOF ends it and it
// cannot be restarted. ReadLine returns ctx.Err() once ctx is done, even while
// waiting for input.
type LineSource interface {
	ReadLine(ctx context.Context, prompt string) (string, error)
}

// ReaderSource reads lines from an io.Reader and echoes prompts to a writer.
// The reader is drained by a background goroutine started on first use, so a
// canceled read never loses a line: it is handed to the next call.
type ReaderSource struct {
	r     *bufio.Reader
	out   io.Writer
	once  sync.Once
	lines chan lineResult
	mu    sync.Mutex
	done  error
}

type lineResult struct {
	line string
	err  error
}

// NewReaderSource wraps r. Prompts go to out; a nil out discards them.
func NewReaderSource(r io.Reader, out io.Writer) *ReaderSource {
	if out == nil {
		out = io.Discard
	}
	return &ReaderSource{r: bufio.NewReader(r), out: out, lines: make(chan lineResult)}
}

// ReadLine implements LineSource. A final line without a newline is returned
// before io.EOF.
func (s *ReaderSource) ReadLine(ctx context.Context, prompt string) (string, error) {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()
	if done != nil {
		return "", done
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if prompt != "" {
		fmt.Fprint(s.out, prompt)
	}
	s.once.Do(func() { go s.pump() })

	select {
	case res := <-s.lines:
		if res.err != nil {
			s.mu.Lock()
			s.done = res.err
			s.mu.Unlock()
			return "", res.err
		}
		return res.line, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (s *ReaderSource) pump() {
	for {
		line, err := s.r.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) && line != "" {
				s.lines <- lineResult{line: trimEOL(line)}
			}
			s.lines <- lineResult{err: err}
			return
		}
		s.lines <- lineResult{line: trimEOL(line)}
	}
}

// SliceSource replays a fixed list of lines, then io.EOF. It records the
// prompts it was asked with.
type SliceSource struct {
	mu      sync.Mutex
	lines   []string
	prompts []string
}

// NewSliceSource creates a source over lines.
func NewSliceSource(lines ...string) *SliceSource {
	return &SliceSource{lines: append([]string(nil), lines...)}
}

// ReadLine implements LineSource.
func (s *SliceSource) ReadLine(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts = append(s.prompts, prompt)
	if len(s.lines) == 0 {
		return "", io.EOF
	}
	line := s.lines[0]
	s.lines = s.lines[1:]
	return line, nil
}

// Prompts returns every prompt seen so far.
func (s *SliceSource) Prompts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.prompts...)
}

// Remaining returns how many lines have not been consumed.
func (s *SliceSource) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lines)
}

func trimEOL(line string) string {
	return strings.TrimRight(line, "\r\n")
}
