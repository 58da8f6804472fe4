// Package prompt implements the interactive surface on a plain terminal.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/Olenjan/makelist/core"
)

type Terminal struct {
	in  *bufio.Reader
	out io.Writer
}

func New() *Terminal {
	return &Terminal{in: bufio.NewReader(os.Stdin), out: os.Stderr}
}

// NewWith is the test hook.
func NewWith(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{in: bufio.NewReader(in), out: out}
}

// Confirm prints the question with numbered options and reads one answer.
// An empty line or EOF cancels. Answers match by number or by
// case-insensitive prefix of the option label.
func (t *Terminal) Confirm(question string, options ...string) string {
	fmt.Fprintln(t.out, question)
	for i, opt := range options {
		fmt.Fprintf(t.out, "  [%d] %s\n", i+1, opt)
	}
	fmt.Fprint(t.out, "> ")

	line, err := t.in.ReadString('\n')
	if err != nil && line == "" {
		return core.ChoiceCancelled
	}
	answer := strings.TrimSpace(line)
	if answer == "" {
		return core.ChoiceCancelled
	}
	if n, err := strconv.Atoi(answer); err == nil && n >= 1 && n <= len(options) {
		return options[n-1]
	}
	lower := strings.ToLower(answer)
	for _, opt := range options {
		if strings.HasPrefix(strings.ToLower(opt), lower) {
			return opt
		}
	}
	return core.ChoiceCancelled
}

func (t *Terminal) PickOne(question string, options []string) int {
	fmt.Fprintln(t.out, question)
	for i, opt := range options {
		fmt.Fprintf(t.out, "  [%d] %s\n", i+1, opt)
	}
	fmt.Fprint(t.out, "> ")

	line, err := t.in.ReadString('\n')
	if err != nil && line == "" {
		return -1
	}
	answer := strings.TrimSpace(line)
	n, err := strconv.Atoi(answer)
	if err != nil || n < 1 || n > len(options) {
		return -1
	}
	return n - 1
}
