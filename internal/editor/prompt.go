package editor

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Prompter collects one line of input. It returns ErrCancelled when the user
// backs out.
type Prompter interface {
	Prompt(message string) (string, error)
}

type Confirmer interface {
	Confirm(message string) (bool, error)
}

// PromptFunc adapts a function to Prompter.
type PromptFunc func(message string) (string, error)

func (f PromptFunc) Prompt(message string) (string, error) { return f(message) }

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(message string) (bool, error)

func (f ConfirmFunc) Confirm(message string) (bool, error) { return f(message) }

// Answer is a Prompter that always replies with s.
func Answer(s string) Prompter {
	return PromptFunc(func(string) (string, error) { return s, nil })
}

// AlwaysYes confirms without asking.
var AlwaysYes Confirmer = ConfirmFunc(func(string) (bool, error) { return true, nil })

// LinePrompter asks on out and reads answers line by line from in.
type LinePrompter struct {
	in  *bufio.Reader
	out io.Writer
}

func NewLinePrompter(in io.Reader, out io.Writer) *LinePrompter {
	return &LinePrompter{in: bufio.NewReader(in), out: out}
}

func (p *LinePrompter) Prompt(message string) (string, error) {
	fmt.Fprintf(p.out, "%s: ", message)
	line, err := p.readLine()
	if err != nil {
		return "", err
	}
	return line, nil
}

func (p *LinePrompter) Confirm(message string) (bool, error) {
	fmt.Fprintf(p.out, "%s [y/N]: ", message)
	line, err := p.readLine()
	if errors.Is(err, ErrCancelled) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	switch strings.ToLower(line) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

// readLine maps end of input before any text to ErrCancelled.
func (p *LinePrompter) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	if errors.Is(err, io.EOF) && line == "" {
		return "", ErrCancelled
	}
	return strings.TrimSpace(line), nil
}
