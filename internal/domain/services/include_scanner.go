package services

import (
	"regexp"
	"strings"
)

// includePattern matches #include <X> and #include "X", allowing whitespace
// after the hash.
var includePattern = regexp.MustCompile(`(?m)^[ \t]*#[ \t]*include[ \t]*[<"]([^>"\r\n]+)[>"]`)

// IncludeScanner extracts the file names referenced by include directives.
type IncludeScanner struct{}

// NewIncludeScanner creates a new include scanner
func NewIncludeScanner() *IncludeScanner {
	return &IncludeScanner{}
}

// Scan returns referenced file names in order of first appearance, without
// duplicates. Directives inside block or line comments are ignored.
func (s *IncludeScanner) Scan(text string) []string {
	text = stripComments(text)

	seen := make(map[string]bool)
	var names []string
	for _, m := range includePattern.FindAllStringSubmatch(text, -1) {
		name := strings.TrimSpace(m[1])
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}

// stripComments blanks out comments while keeping line structure, so
// line-anchored patterns still work.
func stripComments(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	inBlock, inLine, inString := false, false, false
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case inBlock:
			if c == '*' && i+1 < len(text) && text[i+1] == '/' {
				inBlock = false
				i++
				b.WriteString("  ")
				continue
			}
			if c == '\n' {
				b.WriteByte('\n')
			} else {
				b.WriteByte(' ')
			}
		case inLine:
			if c == '\n' {
				inLine = false
				b.WriteByte('\n')
			}
		case inString:
			b.WriteByte(c)
			if c == '\\' && i+1 < len(text) {
				i++
				b.WriteByte(text[i])
			} else if c == '"' || c == '\n' {
				inString = false
			}
		case c == '/' && i+1 < len(text) && text[i+1] == '*':
			inBlock = true
			i++
			b.WriteString("  ")
		case c == '/' && i+1 < len(text) && text[i+1] == '/':
			inLine = true
			i++
		default:
			if c == '"' && !isIncludeLine(text, i) {
				inString = true
			}
			b.WriteByte(c)
		}
	}
	return b.String()
}

// isIncludeLine reports whether the quote at pos belongs to an include
// directive, whose quoted path must not be treated as a string literal.
func isIncludeLine(text string, pos int) bool {
	start := strings.LastIndexByte(text[:pos], '\n') + 1
	line := strings.TrimSpace(text[start:pos])
	if !strings.HasPrefix(line, "#") {
		return false
	}
	return strings.HasPrefix(strings.TrimSpace(line[1:]), "include")
}
