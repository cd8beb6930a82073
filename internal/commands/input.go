package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"todoctl/internal/exitcode"
)

// Stdin is where passwords are read from. Tests replace it.
var Stdin io.Reader = os.Stdin

// errNoInput is returned when stdin ends before a required line.
var errNoInput = errors.New("unexpected end of input")

// Terminal hooks, replaced in tests.
var (
	isTerminal   = term.IsTerminal
	readPassword = term.ReadPassword
)

// lineReader reads one secret per prompt. On a terminal the input is not
// echoed; piped input is read one line at a time.
type lineReader struct {
	r      *bufio.Reader
	prompt io.Writer
	fd     int
	tty    bool
}

func newLineReader(prompt io.Writer) *lineReader {
	l := &lineReader{r: bufio.NewReader(Stdin), prompt: prompt}
	if f, ok := Stdin.(interface{ Fd() uintptr }); ok && isTerminal(int(f.Fd())) {
		l.fd = int(f.Fd())
		l.tty = true
	}
	return l
}

// read prints label and returns the next value without its line ending.
func (l *lineReader) read(label string) (string, error) {
	fmt.Fprintf(l.prompt, "%s: ", label)
	if l.tty {
		b, err := readPassword(l.fd)
		fmt.Fprintln(l.prompt)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}

	line, err := l.r.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		if errors.Is(err, io.EOF) {
			return "", errNoInput
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// readAll reads one line per label.
func (l *lineReader) readAll(labels ...string) ([]string, error) {
	values := make([]string, len(labels))
	for i, label := range labels {
		v, err := l.read(label)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}

// inputError reports a failed read.
func inputError(errOut io.Writer, err error) int {
	fmt.Fprintf(errOut, "error: %v\n", err)
	return exitcode.UserError
}
