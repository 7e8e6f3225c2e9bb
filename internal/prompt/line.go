package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"nimbus/internal/review"
)

// LineConfirmer reads y/n answers line by line. End of input aborts.
type LineConfirmer struct {
	reader *bufio.Reader
	out    io.Writer
	mu     sync.Mutex
}

// NewLineConfirmer builds a LineConfirmer.
func NewLineConfirmer(in io.Reader, out io.Writer) *LineConfirmer {
	return &LineConfirmer{reader: bufio.NewReader(in), out: out}
}

// Confirm implements review.Confirmer.
func (l *LineConfirmer) Confirm(ctx context.Context, p review.Prompt) (bool, error) {
	question := p.Text() + " Apply? [y/n]: "
	for {
		if _, err := io.WriteString(l.out, question); err != nil {
			return false, err
		}
		line, err := l.readLine(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				if _, werr := io.WriteString(l.out, "\n"); werr != nil {
					return false, werr
				}
				return false, ErrAborted
			}
			return false, err
		}
		switch strings.ToLower(line) {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		case "q", "quit":
			return false, ErrAborted
		}
		if _, err := fmt.Fprintf(l.out, "Please answer y or n (q to quit).\n"); err != nil {
			return false, err
		}
	}
}

// readLine returns early on ctx cancellation; the pending read completes in
// the background and its result is discarded.
func (l *LineConfirmer) readLine(ctx context.Context) (string, error) {
	type result struct {
		value string
		err   error
	}
	resultCh := make(chan result, 1)
	go func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		value, err := l.reader.ReadString('\n')
		if err != nil && errors.Is(err, io.EOF) && strings.TrimSpace(value) != "" {
			err = nil
		}
		resultCh <- result{value: strings.TrimSpace(value), err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-resultCh:
		return res.value, res.err
	}
}
