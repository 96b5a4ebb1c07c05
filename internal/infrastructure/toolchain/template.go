package toolchain

import (
	"errors"
	"strconv"
	"strings"
)

// Format substitutes positional placeholders {0}..{n} in tpl.
// Placeholders without a matching argument are left as written.
func Format(tpl string, args ...string) string {
	var b strings.Builder
	b.Grow(len(tpl))

	for i := 0; i < len(tpl); i++ {
		if tpl[i] != '{' {
			b.WriteByte(tpl[i])
			continue
		}
		end := strings.IndexByte(tpl[i:], '}')
		if end < 0 {
			b.WriteString(tpl[i:])
			break
		}
		idx, err := strconv.Atoi(tpl[i+1 : i+end])
		if err != nil || idx < 0 || idx >= len(args) {
			b.WriteByte('{')
			continue
		}
		b.WriteString(args[idx])
		i += end
	}
	return b.String()
}

// ErrUnterminatedQuote is returned by SplitArgs for an unbalanced quote.
var ErrUnterminatedQuote = errors.New("unterminated quote in arguments")

// SplitArgs splits a command line into arguments. Single and double quotes
// group words; a backslash escapes the next character outside single quotes.
func SplitArgs(s string) ([]string, error) {
	var (
		args    []string
		cur     strings.Builder
		inArg   bool
		quote   byte
		escaped bool
	)

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			cur.WriteByte(c)
			escaped = false
		case c == '\\' && quote != '\'' && i+1 < len(s) && isEscapable(s[i+1]):
			escaped = true
			inArg = true
		case quote != 0:
			if c == quote {
				quote = 0
			} else {
				cur.WriteByte(c)
			}
		case c == '"' || c == '\'':
			quote = c
			inArg = true
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			if inArg {
				args = append(args, cur.String())
				cur.Reset()
				inArg = false
			}
		default:
			cur.WriteByte(c)
			inArg = true
		}
	}

	if quote != 0 {
		return nil, ErrUnterminatedQuote
	}
	if inArg {
		args = append(args, cur.String())
	}
	return args, nil
}

// isEscapable limits escapes to quoting characters so Windows-style paths
// keep their backslashes.
func isEscapable(c byte) bool {
	return c == '"' || c == '\'' || c == '\\' || c == ' '
}

// Quote wraps s in double quotes when SplitArgs would otherwise change it.
// Inside the quotes, a backslash is doubled only where SplitArgs would read
// it as an escape, so Windows paths keep their single separators.
func Quote(s string) string {
	if s == "" {
		return `""`
	}
	if !needsQuoting(s) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '"':
			b.WriteString(`\"`)
		case c == '\\' && (i+1 == len(s) || isEscapable(s[i+1])):
			b.WriteString(`\\`)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}

func needsQuoting(s string) bool {
	if strings.ContainsAny(s, " \t\n\r\"'") {
		return true
	}
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && (i+1 == len(s) || isEscapable(s[i+1])) {
			return true
		}
	}
	return false
}

// JoinArgs quotes each element as needed and joins them with spaces.
func JoinArgs(parts []string) string {
	quoted := make([]string, len(parts))
	for i, p := range parts {
		quoted[i] = Quote(p)
	}
	return strings.Join(quoted, " ")
}
