package outline

import (
	"errors"
	"fmt"
	"strings"
)

// RootSelector names the outline root.
const RootSelector = "#outline-root"

const childrenStep = ".outline-children"

var errBadSelector = errors.New("malformed selector")

// SelectorFor builds the selector of the node reached by following keys from
// the root.
func SelectorFor(keys ...string) string {
	var b strings.Builder
	b.WriteString(RootSelector)
	for _, key := range keys {
		b.WriteString(` > [data-key="`)
		b.WriteString(strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(key))
		b.WriteString(`"]`)
	}
	return b.String()
}

// ParseSelector returns the key path a selector denotes. The grammar is
// "#outline-root" followed by ">"-separated steps, each either
// ".outline-children" (ignored) or [data-key="KEY"].
func ParseSelector(selector string) ([]string, error) {
	s := strings.TrimSpace(selector)
	if !strings.HasPrefix(s, RootSelector) {
		return nil, fmt.Errorf("%w: %q does not start at %s", errBadSelector, selector, RootSelector)
	}
	s = s[len(RootSelector):]
	var keys []string
	for {
		s = strings.TrimLeft(s, " \t")
		if s == "" {
			return keys, nil
		}
		if s[0] != '>' {
			return nil, fmt.Errorf("%w: expected '>' in %q", errBadSelector, selector)
		}
		s = strings.TrimLeft(s[1:], " \t")
		switch {
		case strings.HasPrefix(s, childrenStep):
			s = s[len(childrenStep):]
		case strings.HasPrefix(s, `[data-key="`):
			key, rest, err := scanQuoted(s[len(`[data-key=`):])
			if err != nil {
				return nil, fmt.Errorf("%w: %v in %q", errBadSelector, err, selector)
			}
			if !strings.HasPrefix(rest, "]") {
				return nil, fmt.Errorf("%w: unterminated step in %q", errBadSelector, selector)
			}
			keys = append(keys, key)
			s = rest[1:]
		default:
			return nil, fmt.Errorf("%w: unsupported step in %q", errBadSelector, selector)
		}
	}
}

// scanQuoted reads a double-quoted string with backslash escapes and returns
// it with the remaining input.
func scanQuoted(s string) (string, string, error) {
	if s == "" || s[0] != '"' {
		return "", s, errors.New("expected quote")
	}
	var b strings.Builder
	for i := 1; i < len(s); i++ {
		switch c := s[i]; c {
		case '\\':
			if i+1 >= len(s) {
				return "", s, errors.New("dangling escape")
			}
			i++
			b.WriteByte(s[i])
		case '"':
			return b.String(), s[i+1:], nil
		default:
			b.WriteByte(c)
		}
	}
	return "", s, errors.New("unterminated quote")
}
