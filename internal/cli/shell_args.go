package cli

import (
	"errors"
	"strings"
)

var (
	errUnterminatedEscape = errors.New("unterminated escape sequence")
	errUnterminatedQuote  = errors.New("unterminated quoted string")
)

// splitShellArgs splits a command bar line into arguments. Single quotes are
// literal, double quotes allow backslash escapes.
func splitShellArgs(input string) ([]string, error) {
	var (
		parts   []string
		cur     strings.Builder
		quote   rune
		escaped bool
		started bool
	)

	flush := func() {
		parts = append(parts, cur.String())
		cur.Reset()
		started = false
	}

	for _, r := range input {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case quote == '\'':
			if r == '\'' {
				quote = 0
			} else {
				cur.WriteRune(r)
			}
		case quote == '"':
			switch r {
			case '"':
				quote = 0
			case '\\':
				escaped = true
			default:
				cur.WriteRune(r)
			}
		case r == '\\':
			escaped = true
			started = true
		case r == '\'' || r == '"':
			quote = r
			started = true
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			if started {
				flush()
			}
		default:
			cur.WriteRune(r)
			started = true
		}
	}

	if escaped {
		return nil, errUnterminatedEscape
	}
	if quote != 0 {
		return nil, errUnterminatedQuote
	}
	if started {
		flush()
	}
	return parts, nil
}
