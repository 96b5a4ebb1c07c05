package build

import "fmt"

// DefaultMaxOutputSize caps the tool output kept per invocation in a report (64KB).
const DefaultMaxOutputSize = 64 * 1024

// TruncateOutput shortens s to at most limit bytes, keeping the head where
// compilers print the first (usually root-cause) error.
func TruncateOutput(s string, limit int) string {
	if limit <= 0 || len(s) <= limit {
		return s
	}
	marker := fmt.Sprintf("\n... [TRUNCATED %d bytes] ...", len(s)-limit)
	return s[:limit] + marker
}
