package prompt

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"nimbus/internal/review"
)

// ErrAborted is returned when the operator quits the review.
var ErrAborted = errors.New("review aborted by operator")

// Options selects a confirmer implementation.
type Options struct {
	AssumeYes bool
	Plain     bool
	In        io.Reader
	Out       io.Writer
}

// New returns AutoConfirmer for AssumeYes, SelectConfirmer when both streams
// are terminals and Plain is false, and LineConfirmer otherwise.
func New(opts Options) review.Confirmer {
	in, out := opts.In, opts.Out
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	switch {
	case opts.AssumeYes:
		return AutoConfirmer{Out: out}
	case !opts.Plain && isTerminal(in) && isTerminal(out):
		return &SelectConfirmer{In: in, Out: out}
	default:
		return NewLineConfirmer(in, out)
	}
}

func isTerminal(stream any) bool {
	file, ok := stream.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// AutoConfirmer accepts every command, echoing it to Out when set.
type AutoConfirmer struct {
	Out io.Writer
}

// Confirm implements review.Confirmer.
func (a AutoConfirmer) Confirm(ctx context.Context, p review.Prompt) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if a.Out != nil {
		if _, err := io.WriteString(a.Out, p.Text()+" [auto]\n"); err != nil {
			return false, err
		}
	}
	return true, nil
}
