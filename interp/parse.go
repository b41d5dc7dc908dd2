package interp

import (
	"errors"
	"fmt"
	"strings"
)

// ParseStatus indicates the result of parsing a script.
type ParseStatus int

const (
	// ParseOK indicates the script is syntactically complete and valid.
	ParseOK ParseStatus = iota

	// ParseIncomplete indicates the script has unclosed braces, brackets, or quotes.
	ParseIncomplete

	// ParseError indicates a syntax error in the script.
	ParseError
)

// ParseResult holds the result of parsing a script.
type ParseResult struct {
	// Status indicates whether parsing succeeded, found incomplete input, or failed.
	Status ParseStatus

	// Message contains an error message if Status is not ParseOK.
	Message string
}

// Parse checks if a script is syntactically complete.
//
// This is useful for implementing REPLs that need to detect incomplete input
// (unclosed braces, brackets, or quotes).
func Parse(script string) ParseResult {
	_, err := parseScript(script)
	if err == nil {
		return ParseResult{Status: ParseOK}
	}
	var inc *incompleteError
	if errors.As(err, &inc) {
		return ParseResult{Status: ParseIncomplete, Message: err.Error()}
	}
	return ParseResult{Status: ParseError, Message: err.Error()}
}

type incompleteError struct {
	missing string
}

func (e *incompleteError) Error() string { return "missing " + e.missing }

type partKind int

const (
	partLiteral partKind = iota
	partVar
	partScript
)

type part struct {
	kind partKind
	text string
}

type word struct {
	parts []part
}

type command struct {
	words []word
}

type parser struct {
	src string
	pos int
}

// parseScript splits a script into commands and words. Substitutions are
// recorded, not performed; nested scripts are parsed when evaluated.
func parseScript(src string) ([]command, error) {
	p := &parser{src: src}
	var cmds []command
	for {
		p.skipCommandSeparators()
		if p.eof() {
			return cmds, nil
		}
		if p.peek() == '#' {
			p.skipComment()
			continue
		}
		cmd, err := p.parseCommand()
		if err != nil {
			return nil, err
		}
		if len(cmd.words) > 0 {
			cmds = append(cmds, cmd)
		}
	}
}

func (p *parser) eof() bool  { return p.pos >= len(p.src) }
func (p *parser) peek() byte { return p.src[p.pos] }

func (p *parser) skipCommandSeparators() {
	for !p.eof() {
		switch p.peek() {
		case ' ', '\t', '\r', '\n', ';':
			p.pos++
		default:
			return
		}
	}
}

func (p *parser) skipComment() {
	for !p.eof() && p.peek() != '\n' {
		if p.peek() == '\\' && p.pos+1 < len(p.src) {
			p.pos++
		}
		p.pos++
	}
}

// skipBlanks skips spaces and tabs within a command, including
// backslash-newline continuations.
func (p *parser) skipBlanks() {
	for !p.eof() {
		c := p.peek()
		switch {
		case c == ' ' || c == '\t' || c == '\r':
			p.pos++
		case c == '\\' && p.pos+1 < len(p.src) && p.src[p.pos+1] == '\n':
			p.pos += 2
		default:
			return
		}
	}
}

func (p *parser) parseCommand() (command, error) {
	var cmd command
	for {
		p.skipBlanks()
		if p.eof() || p.peek() == '\n' || p.peek() == ';' {
			return cmd, nil
		}
		w, err := p.parseWord()
		if err != nil {
			return command{}, err
		}
		cmd.words = append(cmd.words, w)
	}
}

func (p *parser) parseWord() (word, error) {
	switch p.peek() {
	case '{':
		return p.parseBraced()
	case '"':
		return p.parseQuoted()
	default:
		return p.parseBare()
	}
}

func (p *parser) parseBraced() (word, error) {
	start := p.pos + 1
	depth := 1
	p.pos++
	for !p.eof() && depth > 0 {
		switch p.peek() {
		case '\\':
			p.pos++
		case '{':
			depth++
		case '}':
			depth--
		}
		p.pos++
	}
	if depth != 0 {
		return word{}, &incompleteError{missing: "close-brace"}
	}
	text := p.src[start : p.pos-1]
	if !p.atWordEnd() {
		return word{}, fmt.Errorf("extra characters after close-brace")
	}
	return word{parts: []part{{kind: partLiteral, text: text}}}, nil
}

func (p *parser) parseQuoted() (word, error) {
	p.pos++
	w, err := p.parseSubstituted(func(c byte) bool { return c == '"' })
	if err != nil {
		return word{}, err
	}
	if p.eof() {
		return word{}, &incompleteError{missing: "\""}
	}
	p.pos++
	if !p.atWordEnd() {
		return word{}, fmt.Errorf("extra characters after close-quote")
	}
	return w, nil
}

func (p *parser) parseBare() (word, error) {
	return p.parseSubstituted(func(c byte) bool {
		return c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == ';'
	})
}

func (p *parser) atWordEnd() bool {
	if p.eof() {
		return true
	}
	switch p.peek() {
	case ' ', '\t', '\r', '\n', ';':
		return true
	}
	return false
}

// parseSubstituted reads characters until stop reports true, collecting
// literal text, variable references and command substitutions.
func (p *parser) parseSubstituted(stop func(byte) bool) (word, error) {
	var w word
	var lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			w.parts = append(w.parts, part{kind: partLiteral, text: lit.String()})
			lit.Reset()
		}
	}
	for !p.eof() && !stop(p.peek()) {
		c := p.peek()
		switch c {
		case '\\':
			p.pos++
			if p.eof() {
				lit.WriteByte('\\')
				continue
			}
			lit.WriteString(unescape(p.peek()))
			p.pos++
		case '$':
			name, ok, err := p.parseVarName()
			if err != nil {
				return word{}, err
			}
			if !ok {
				lit.WriteByte('$')
				continue
			}
			flush()
			w.parts = append(w.parts, part{kind: partVar, text: name})
		case '[':
			end, err := scanBracket(p.src, p.pos)
			if err != nil {
				return word{}, err
			}
			flush()
			w.parts = append(w.parts, part{kind: partScript, text: p.src[p.pos+1 : end]})
			p.pos = end + 1
		default:
			lit.WriteByte(c)
			p.pos++
		}
	}
	flush()
	if len(w.parts) == 0 {
		w.parts = []part{{kind: partLiteral}}
	}
	return w, nil
}

// parseVarName consumes "$name" or "${name}". It reports false when the
// dollar sign does not start a variable reference.
func (p *parser) parseVarName() (string, bool, error) {
	start := p.pos + 1
	if start < len(p.src) && p.src[start] == '{' {
		end := strings.IndexByte(p.src[start:], '}')
		if end < 0 {
			return "", false, &incompleteError{missing: "close-brace for variable name"}
		}
		p.pos = start + end + 1
		return p.src[start+1 : start+end], true, nil
	}
	end := start
	for end < len(p.src) && isVarChar(p.src[end]) {
		end++
	}
	if end == start {
		p.pos++
		return "", false, nil
	}
	p.pos = end
	return p.src[start:end], true, nil
}

func isVarChar(c byte) bool {
	return c == '_' || c == ':' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// scanBracket returns the index of the bracket closing the one at start.
func scanBracket(src string, start int) (int, error) {
	depth := 0
	braces := 0
	for i := start; i < len(src); i++ {
		switch src[i] {
		case '\\':
			i++
		case '{':
			braces++
		case '}':
			if braces > 0 {
				braces--
			}
		case '[':
			if braces == 0 {
				depth++
			}
		case ']':
			if braces == 0 {
				depth--
				if depth == 0 {
					return i, nil
				}
			}
		}
	}
	return 0, &incompleteError{missing: "close-bracket"}
}

func unescape(c byte) string {
	switch c {
	case 'n':
		return "\n"
	case 't':
		return "\t"
	case 'r':
		return "\r"
	case '\n':
		return " "
	default:
		return string(c)
	}
}

// parseList parses a TCL list string into a slice of strings.
func parseList(s string) ([]string, error) {
	var items []string
	pos := 0

	for pos < len(s) {
		for pos < len(s) && (s[pos] == ' ' || s[pos] == '\t' || s[pos] == '\n' || s[pos] == '\r') {
			pos++
		}
		if pos >= len(s) {
			break
		}

		var elem string
		switch s[pos] {
		case '{':
			depth := 1
			start := pos + 1
			pos++
			for pos < len(s) && depth > 0 {
				if s[pos] == '{' {
					depth++
				} else if s[pos] == '}' {
					depth--
				}
				pos++
			}
			if depth != 0 {
				return nil, fmt.Errorf("unmatched open brace in list")
			}
			elem = s[start : pos-1]
		case '"':
			start := pos + 1
			pos++
			for pos < len(s) && s[pos] != '"' {
				if s[pos] == '\\' && pos+1 < len(s) {
					pos++
				}
				pos++
			}
			if pos >= len(s) {
				return nil, fmt.Errorf("unmatched open quote in list")
			}
			elem = s[start:pos]
			pos++
		default:
			start := pos
			for pos < len(s) && s[pos] != ' ' && s[pos] != '\t' && s[pos] != '\n' && s[pos] != '\r' {
				pos++
			}
			elem = s[start:pos]
		}
		items = append(items, elem)
	}
	return items, nil
}
