package prompt

import (
	"bufio"
	"bytes"
	"crypto/subtle"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

var (
	ErrMismatch = errors.New("entries do not match")
	ErrEmpty    = errors.New("no input given")
)

// Prompter asks the user for secrets and confirmations.
// Secrets are read from the terminal without echo, or as lines from a reader when one isn't available.
type Prompter struct {
	out      io.Writer
	lines    *bufio.Reader
	fd       int
	terminal bool
}

// New creates a Prompter reading from in and writing prompts to out.
// If in is a terminal and forceLines is false, secrets are read without echo.
func New(in io.Reader, out io.Writer, forceLines bool) *Prompter {
	p := &Prompter{out: out, lines: bufio.NewReader(in)}
	if f, ok := in.(*os.File); ok && !forceLines && term.IsTerminal(int(f.Fd())) {
		p.fd = int(f.Fd())
		p.terminal = true
	}
	return p
}

// Secret prompts for a single secret. The caller owns the returned bytes, and should wipe them when done.
func (p *Prompter) Secret(label string) ([]byte, error) {
	_, _ = fmt.Fprintf(p.out, "%s: ", label)
	var (
		secret []byte
		err    error
	)
	if p.terminal {
		secret, err = term.ReadPassword(p.fd)
		_, _ = fmt.Fprintln(p.out)
	} else {
		secret, err = p.readLine()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", strings.ToLower(label), err)
	}
	if len(secret) == 0 {
		return nil, ErrEmpty
	}
	return secret, nil
}

// NewSecret prompts for a secret twice, and returns ErrMismatch if the entries differ.
func (p *Prompter) NewSecret(label string) ([]byte, error) {
	first, err := p.Secret(label)
	if err != nil {
		return nil, err
	}
	second, err := p.Secret("Confirm " + strings.ToLower(label))
	if err != nil {
		wipe(first)
		return nil, err
	}
	defer wipe(second)
	if subtle.ConstantTimeCompare(first, second) != 1 {
		wipe(first)
		return nil, ErrMismatch
	}
	return first, nil
}

// Confirm asks a yes/no question, defaulting to no.
func (p *Prompter) Confirm(question string) (bool, error) {
	_, _ = fmt.Fprintf(p.out, "%s [y/N]: ", question)
	answer, err := p.readLine()
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(string(answer))) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

func (p *Prompter) readLine() ([]byte, error) {
	line, err := p.lines.ReadBytes('\n')
	if err != nil && !(errors.Is(err, io.EOF) && len(line) > 0) {
		return nil, err
	}
	return bytes.TrimRight(line, "\r\n"), nil
}

// Wipe zeroes b.
func Wipe(b []byte) { wipe(b) }

func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
