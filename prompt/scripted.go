package prompt

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ErrAnswersExhausted is returned by Scripted once every preset answer has
// been consumed.
var ErrAnswersExhausted = errors.New("no scripted answers left")

// Scripted is a Selector with preset answers. Unlike Terminal it never
// re-prompts: a preset answer that fails validation is an immediate error,
// so that a bad script can't loop a workflow forever.
type Scripted struct {
	answers []string
	next    int
}

// NewScripted creates a Selector that replays the given answers in order.
func NewScripted(answers ...string) *Scripted {
	return &Scripted{answers: answers}
}

func (s *Scripted) pop() (string, error) {
	if s.next >= len(s.answers) {
		return "", ErrAnswersExhausted
	}
	answer := s.answers[s.next]
	s.next++
	return answer, nil
}

func (s *Scripted) Ask(prompt string, preds ...Predicate) (string, error) {
	answer, err := s.pop()
	if err != nil {
		return "", err
	}

	if err := checkAll(answer, preds); err != nil {
		return "", errors.Wrapf(err, "scripted answer %q rejected", answer)
	}

	return answer, nil
}

// Choose matches the next answer against the options by value first, then
// as a 1-based position.
func (s *Scripted) Choose(prompt string, options []string) (int, error) {
	answer, err := s.pop()
	if err != nil {
		return 0, err
	}

	for i, option := range options {
		if option == answer {
			return i, nil
		}
	}

	n, err := strconv.ParseInt(strings.TrimSpace(answer), 10, 64)
	if err == nil && n >= 1 && n <= int64(len(options)) {
		return int(n) - 1, nil
	}

	return 0, errors.Errorf("scripted answer %q matches none of %d options", answer, len(options))
}
