// Package transpiler converts sketch sources into a C++ translation unit.
package transpiler

import (
	"regexp"
	"strings"

	"github.com/avrforge/sketchforge/internal/application/ports"
	"github.com/avrforge/sketchforge/internal/domain/services"
)

// Ensure interface compliance
var (
	_ ports.Transpiler          = (*SketchTranspiler)(nil)
	_ ports.DependencyExtractor = (*SketchTranspiler)(nil)
)

// CoreHeader is included at the top of every generated unit.
const CoreHeader = "Arduino.h"

// functionPattern matches a top-level function definition header ending in '{'.
var functionPattern = regexp.MustCompile(`(?m)^([A-Za-z_][\w:<>\*&\s]*?[\s\*&])([A-Za-z_]\w*)\s*\(([^;{}()]*)\)\s*\{`)

var controlKeywords = map[string]bool{
	"if": true, "for": true, "while": true, "switch": true, "return": true, "else": true,
}

// SketchTranspiler adds the core include and forward declarations so that
// sketch functions may be used before they are defined.
type SketchTranspiler struct {
	scanner *services.IncludeScanner
}

// New creates a sketch transpiler.
func New() *SketchTranspiler {
	return &SketchTranspiler{scanner: services.NewIncludeScanner()}
}

// ExtractDependencyNames returns included file names in order of first appearance.
func (t *SketchTranspiler) ExtractDependencyNames(sketch string) []string {
	return t.scanner.Scan(sketch)
}

// Transpile returns a compilable C++ unit. Prototypes are inserted after the
// leading preprocessor block, for every function not already declared.
func (t *SketchTranspiler) Transpile(sketch string) (string, error) {
	sketch = strings.ReplaceAll(sketch, "\r\n", "\n")
	lines := strings.Split(sketch, "\n")

	insertAt := leadingPreprocessorEnd(lines)
	prototypes := t.prototypes(sketch)

	var b strings.Builder
	b.Grow(len(sketch) + 256)

	hasCore := false
	for _, name := range t.scanner.Scan(sketch) {
		if name == CoreHeader {
			hasCore = true
			break
		}
	}
	if !hasCore {
		b.WriteString("#include <" + CoreHeader + ">\n")
	}

	for i := 0; i < insertAt; i++ {
		b.WriteString(lines[i])
		b.WriteByte('\n')
	}
	for _, p := range prototypes {
		b.WriteString(p)
		b.WriteByte('\n')
	}
	b.WriteString(strings.Join(lines[insertAt:], "\n"))
	if !strings.HasSuffix(sketch, "\n") {
		b.WriteByte('\n')
	}
	return b.String(), nil
}

func (t *SketchTranspiler) prototypes(sketch string) []string {
	topLevel := stripBodies(sketch)
	seen := make(map[string]bool)
	var out []string
	for _, m := range functionPattern.FindAllStringSubmatch(topLevel, -1) {
		ret := strings.Join(strings.Fields(m[1]), " ")
		name := m[2]
		if controlKeywords[name] || controlKeywords[ret] {
			continue
		}
		proto := strings.TrimSpace(ret) + " " + name + "(" + strings.Join(strings.Fields(m[3]), " ") + ");"
		proto = strings.ReplaceAll(proto, " *", "*")
		if seen[proto] || declared(topLevel, name) {
			continue
		}
		seen[proto] = true
		out = append(out, proto)
	}
	return out
}

// declared reports whether topLevel already has a prototype for name.
func declared(topLevel, name string) bool {
	re := regexp.MustCompile(`(?m)^[^\n{}]*\b` + regexp.QuoteMeta(name) + `\s*\([^)]*\)\s*;`)
	return re.MatchString(topLevel)
}

// stripBodies blanks everything nested inside braces so only top-level
// definitions can match.
func stripBodies(s string) string {
	b := []byte(s)
	depth := 0
	for i, c := range b {
		switch c {
		case '{':
			depth++
			if depth > 1 {
				b[i] = ' '
			}
		case '}':
			if depth > 1 {
				b[i] = ' '
			}
			if depth > 0 {
				depth--
			}
		case '\n':
		default:
			if depth > 0 {
				b[i] = ' '
			}
		}
	}
	return string(b)
}

// leadingPreprocessorEnd returns the index of the first line after the
// leading block of directives, comments and blank lines.
func leadingPreprocessorEnd(lines []string) int {
	inBlock := false
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case inBlock:
			if strings.Contains(trimmed, "*/") {
				inBlock = false
			}
		case trimmed == "", strings.HasPrefix(trimmed, "#"), strings.HasPrefix(trimmed, "//"):
		case strings.HasPrefix(trimmed, "/*"):
			inBlock = !strings.Contains(trimmed, "*/")
		default:
			return i
		}
	}
	return len(lines)
}
