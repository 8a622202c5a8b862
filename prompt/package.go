// Package prompt collects validated answers from a user. The Selector
// interface has a terminal implementation that loops until the input
// satisfies every predicate, and a scripted implementation that returns
// preset answers so workflows can run under test without a console.
package prompt

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// A Predicate rejects unacceptable input with a descriptive error. Input is
// never coerced; the raw answer either passes every predicate or is asked
// for again.
type Predicate func(answer string) error

// Selector answers questions. Choose returns a zero-based index into the
// given options.
type Selector interface {
	Ask(prompt string, preds ...Predicate) (string, error)
	Choose(prompt string, options []string) (int, error)
}

// NonEmpty rejects blank answers.
func NonEmpty(answer string) error {
	if strings.TrimSpace(answer) == "" {
		return errors.New("an answer is required")
	}
	return nil
}

// IsInt rejects answers that are not base-10 integers.
func IsInt(answer string) error {
	if _, err := strconv.ParseInt(strings.TrimSpace(answer), 10, 64); err != nil {
		return errors.Errorf("%q is not an integer", answer)
	}
	return nil
}

// IsYesNo rejects answers other than y/n/yes/no, in any case.
func IsYesNo(answer string) error {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "n", "yes", "no":
		return nil
	}
	return errors.Errorf("%q is not a yes or no answer", answer)
}

// InRange builds a predicate accepting integers in [lower, upper]. Both
// bounds are inclusive.
func InRange(lower, upper int64) Predicate {
	return func(answer string) error {
		n, err := strconv.ParseInt(strings.TrimSpace(answer), 10, 64)
		if err != nil {
			return errors.Errorf("%q is not an integer", answer)
		}
		if n < lower || n > upper {
			return errors.Errorf("%d is not between %d and %d", n, lower, upper)
		}
		return nil
	}
}

// AskInt asks with IsInt plus any extra predicates and parses the answer.
func AskInt(s Selector, prompt string, preds ...Predicate) (int64, error) {
	answer, err := s.Ask(prompt, append([]Predicate{IsInt}, preds...)...)
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(strings.TrimSpace(answer), 10, 64)
}

// AskYesNo asks a y/n question and reports whether the answer was yes.
func AskYesNo(s Selector, prompt string) (bool, error) {
	answer, err := s.Ask(prompt, IsYesNo)
	if err != nil {
		return false, err
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes", nil
}

func checkAll(answer string, preds []Predicate) error {
	for _, pred := range preds {
		if err := pred(answer); err != nil {
			return err
		}
	}
	return nil
}

func numberedOptions(options []string) string {
	lines := make([]string, 0, len(options))
	for i, option := range options {
		lines = append(lines, fmt.Sprintf("%d: %s", i+1, option))
	}
	return strings.Join(lines, "\n")
}
