package run

import (
	"bufio"
	"fmt"
	"io"

	"github.com/jiaming2012/option-pricer/src/utils"
)

type Prompter struct {
	In  *bufio.Reader
	Out io.Writer
}

func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{
		In:  bufio.NewReader(in),
		Out: out,
	}
}

func (p *Prompter) Ask(message string) (string, error) {
	fmt.Fprint(p.Out, message)

	var line string
	if err := utils.ReadLine(p.In, &line); err != nil {
		return "", err
	}

	return line, nil
}

// askUntilValid re-prompts until validate accepts the answer. Only read errors are returned.
func askUntilValid[T any](p *Prompter, message string, validate func(string) (T, error)) (T, error) {
	for {
		raw, err := p.Ask(message)
		if err != nil {
			var zero T
			return zero, err
		}

		v, err := validate(raw)
		if err == nil {
			return v, nil
		}

		fmt.Fprintln(p.Out, err)
	}
}
