package prompt

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Terminal is a Selector reading from a blocking text interface, usually
// stdin/stdout.
type Terminal struct {
	in  *bufio.Reader
	out io.Writer
}

// NewTerminal creates a Terminal reading answers from in and writing
// prompts to out.
func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{in: bufio.NewReader(in), out: out}
}

// Ask writes the prompt and reads lines until one satisfies every
// predicate. Rejected answers are reported and asked for again.
func (t *Terminal) Ask(prompt string, preds ...Predicate) (string, error) {
	for {
		fmt.Fprint(t.out, prompt)

		line, err := t.in.ReadString('\n')
		if err != nil && line == "" {
			return "", errors.Wrap(err, "couldn't read an answer")
		}
		answer := strings.TrimRight(line, "\r\n")

		if perr := checkAll(answer, preds); perr != nil {
			fmt.Fprintf(t.out, "%s\n", perr)
			if err != nil {
				return "", errors.Wrap(err, "couldn't read a valid answer")
			}
			continue
		}

		return answer, nil
	}
}

// Choose presents the options one per line and asks for a number,
// returning the zero-based index of the pick.
func (t *Terminal) Choose(prompt string, options []string) (int, error) {
	if len(options) == 0 {
		return 0, errors.New("no options to choose from")
	}

	fmt.Fprintf(t.out, "%s\n", numberedOptions(options))

	answer, err := t.Ask(prompt, IsInt, InRange(1, int64(len(options))))
	if err != nil {
		return 0, err
	}

	n, _ := strconv.ParseInt(strings.TrimSpace(answer), 10, 64)
	return int(n) - 1, nil
}
