package subtitle

import "fmt"

// FormatError reports a malformed subtitle file. Parsing aborts on the first
// occurrence; a half-read file is never returned.
type FormatError struct {
	Line    int    // 1-based line number in the source text
	Message string
}

func (e *FormatError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("subtitle format error at line %d: %s", e.Line, e.Message)
	}
	return fmt.Sprintf("subtitle format error: %s", e.Message)
}

func formatErrorf(line int, format string, args ...interface{}) *FormatError {
	return &FormatError{Line: line, Message: fmt.Sprintf(format, args...)}
}
