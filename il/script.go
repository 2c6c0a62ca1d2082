package il

import (
	"fmt"
	"strings"
)

// Script is a flat stack program: comma-separated tokens evaluated left to
// right against an operand stack. See the package comment for the token
// vocabulary.
type Script struct {
	buf strings.Builder
}

// Appendf appends formatted tokens to the program. Callers terminate each
// fragment with the separator; Canonical trims the final one.
func (s *Script) Appendf(format string, args ...any) {
	fmt.Fprintf(&s.buf, format, args...)
}

// Set replaces the program with formatted tokens.
func (s *Script) Set(format string, args ...any) {
	s.buf.Reset()
	s.Appendf(format, args...)
}

// Empty returns true if no tokens have been emitted.
func (s *Script) Empty() bool {
	return s.buf.Len() == 0
}

// Canonical trims one trailing separator token, if present.
func (s *Script) Canonical() {
	text := s.buf.String()
	if strings.HasSuffix(text, ",") {
		s.buf.Reset()
		s.buf.WriteString(text[:len(text)-1])
	}
}

// Text returns the token stream.
func (s *Script) Text() string {
	return s.buf.String()
}

// Tokens returns the program split at separators.
func (s *Script) Tokens() []string {
	if s.Empty() {
		return nil
	}
	return strings.Split(s.buf.String(), ",")
}
