package adapters

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"mdmctl/internal/ports"
)

// TerminalPromptAdapter asks yes/no questions on a line-oriented stream.
// It keeps asking until it reads an accepted answer.
type TerminalPromptAdapter struct {
	reader *bufio.Reader
	out    io.Writer
}

var affirmativeAnswers = map[string]bool{"y": true, "yes": true}
var negativeAnswers = map[string]bool{"n": true, "no": true}

func NewTerminalPromptAdapter(in io.Reader, out io.Writer) *TerminalPromptAdapter {
	return &TerminalPromptAdapter{reader: bufio.NewReader(in), out: out}
}

func (a *TerminalPromptAdapter) Confirm(ctx context.Context, question string) (bool, error) {
	for {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		fmt.Fprintf(a.out, "%s [y/n]: ", question)
		line, err := a.reader.ReadString('\n')
		answer := strings.ToLower(strings.TrimSpace(line))
		switch {
		case affirmativeAnswers[answer]:
			return true, nil
		case negativeAnswers[answer]:
			return false, nil
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(a.out)
				return false, errbuilder.New().
					WithCode(errbuilder.CodeFailedPrecondition).
					WithMsg("confirmation aborted: no answer on input")
			}
			return false, errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to read confirmation").
				WithCause(err)
		}
		fmt.Fprintln(a.out, "please answer yes or no")
	}
}

var _ ports.PromptPort = (*TerminalPromptAdapter)(nil)
