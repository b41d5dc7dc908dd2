package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/feather-lang/parselmouth/interp"
)

const (
	prompt         = "% "
	continuePrompt = "> "
)

// lineReader yields one line of input per call, showing the given prompt.
type lineReader interface {
	ReadLine(prompt string) (string, error)
}

// runREPL evaluates input line by line. Incomplete commands accumulate
// until they parse. When stdin is a terminal, lines are edited in raw mode.
func runREPL(in *interp.Interp, stdin io.Reader, stdout, stderr io.Writer) error {
	var r lineReader
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		tr, err := newTermReader(f, stdout)
		if err != nil {
			return err
		}
		defer tr.Close()
		r = tr
		stdout, stderr = tr.t, tr.t
	} else {
		r = &scanReader{s: bufio.NewScanner(stdin), out: stdout}
	}

	var buf string
	for {
		p := prompt
		if buf != "" {
			p = continuePrompt
		}
		line, err := r.ReadLine(p)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if buf != "" {
			buf += "\n" + line
		} else {
			buf = line
		}

		switch res := interp.Parse(buf); res.Status {
		case interp.ParseIncomplete:
			continue
		case interp.ParseError:
			fmt.Fprintf(stderr, "error: %s\n", res.Message)
			buf = ""
			continue
		}

		result, err := in.Eval(buf)
		if err != nil {
			fmt.Fprintf(stderr, "error: %s\n", err)
		} else if s := result.String(); s != "" {
			fmt.Fprintln(stdout, s)
		}
		buf = ""
	}
}

type scanReader struct {
	s   *bufio.Scanner
	out io.Writer
}

func (r *scanReader) ReadLine(prompt string) (string, error) {
	fmt.Fprint(r.out, prompt)
	if !r.s.Scan() {
		if err := r.s.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return r.s.Text(), nil
}

// termReader edits lines with history on a raw-mode terminal.
type termReader struct {
	fd       int
	oldState *term.State
	t        *term.Terminal
}

func newTermReader(f *os.File, out io.Writer) (*termReader, error) {
	fd := int(f.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return nil, err
	}
	rw := struct {
		io.Reader
		io.Writer
	}{f, out}
	t := term.NewTerminal(rw, prompt)
	if w, h, err := term.GetSize(fd); err == nil {
		t.SetSize(w, h)
	}
	return &termReader{fd: fd, oldState: oldState, t: t}, nil
}

func (r *termReader) ReadLine(p string) (string, error) {
	r.t.SetPrompt(p)
	return r.t.ReadLine()
}

func (r *termReader) Close() error {
	return term.Restore(r.fd, r.oldState)
}
