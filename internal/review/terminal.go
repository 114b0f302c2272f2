// Package review implements the interactive terminal session for vetting one
// university's extracted records before they are persisted.
package review

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Terminal abstracts operator I/O so review sessions can be driven by a
// scripted input sequence in tests. Close must be called on every exit path;
// leaving the input resource open can keep the process from exiting.
type Terminal interface {
	// Prompt prints msg and reads one line, trimmed. Returns io.EOF when
	// the input is exhausted.
	Prompt(msg string) (string, error)
	Println(args ...any)
	Printf(format string, args ...any)
	Close() error
}

// StdTerminal is the production Terminal over stdin/stdout.
type StdTerminal struct {
	in  *bufio.Reader
	out io.Writer
}

// NewStdTerminal wires a Terminal to the process's stdin and stdout.
func NewStdTerminal() *StdTerminal {
	return &StdTerminal{in: bufio.NewReader(os.Stdin), out: os.Stdout}
}

func (t *StdTerminal) Prompt(msg string) (string, error) {
	fmt.Fprint(t.out, msg)
	line, err := t.in.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (t *StdTerminal) Println(args ...any) {
	fmt.Fprintln(t.out, args...)
}

func (t *StdTerminal) Printf(format string, args ...any) {
	fmt.Fprintf(t.out, format, args...)
}

// Close is a no-op for the stdin-backed terminal; stdin belongs to the
// process, not the session.
func (t *StdTerminal) Close() error { return nil }
