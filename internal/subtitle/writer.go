package subtitle

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"
)

// Format serializes cues back to SRT text. It is a left inverse of Parse:
// formatting Parse's output reproduces a canonical rendition of the input
// byte for byte. Translated text is preferred when present so the same
// serializer writes both the source and the final translated file.
func Format(cues []Cue) string {
	var sb strings.Builder

	for _, cue := range cues {
		fmt.Fprintf(&sb, "%d\n", cue.Index)
		fmt.Fprintf(&sb, "%s --> %s\n", FormatTimestamp(cue.StartTime), FormatTimestamp(cue.EndTime))

		text := cue.Text
		if len(cue.TranslatedText) > 0 {
			text = cue.TranslatedText
		}
		for _, line := range text {
			sb.WriteString(line)
			sb.WriteByte('\n')
		}
		sb.WriteByte('\n')
	}

	return sb.String()
}

// WriteFile serializes cues to path as UTF-8 SRT.
func WriteFile(path string, cues []Cue) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	if _, err := writer.WriteString(Format(cues)); err != nil {
		return fmt.Errorf("failed to write subtitle file: %w", err)
	}
	return writer.Flush()
}

// FormatTimestamp formats a duration in the SRT HH:MM:SS,mmm notation.
func FormatTimestamp(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	milliseconds := int(d.Milliseconds()) % 1000

	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, seconds, milliseconds)
}
