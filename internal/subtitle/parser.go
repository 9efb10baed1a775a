package subtitle

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// SRT time line format: 00:02:16,612 --> 00:02:19,376
var timeLineRe = regexp.MustCompile(`^(\d{2,}):(\d{2}):(\d{2}),(\d{3})\s-->\s(\d{2,}):(\d{2}):(\d{2}),(\d{3})\s*$`)

// Parse parses SRT content into an ordered cue sequence. It is a single
// forward pass over the lines; the first malformed cue block aborts with a
// FormatError. Index gaps between cues are tolerated and preserved.
func Parse(content string) ([]Cue, error) {
	content = strings.TrimPrefix(content, "\ufeff")
	content = strings.ReplaceAll(content, "\r\n", "\n")

	lines := strings.Split(content, "\n")

	var cues []Cue
	current := Cue{}
	state := "index" // "index", "time", "text"
	var textLines []string
	lastIndex := 0

	flush := func(lineNo int) error {
		if len(textLines) == 0 {
			return formatErrorf(lineNo, "cue %d has no text lines", current.Index)
		}
		current.Text = textLines
		cues = append(cues, current)
		current = Cue{}
		textLines = nil
		return nil
	}

	for i, raw := range lines {
		lineNo := i + 1

		switch state {
		case "index":
			trimmed := strings.TrimSpace(raw)
			if trimmed == "" {
				continue
			}
			index, err := strconv.Atoi(trimmed)
			if err != nil {
				return nil, formatErrorf(lineNo, "expected cue index, got %q", trimmed)
			}
			if index <= 0 {
				return nil, formatErrorf(lineNo, "cue index must be positive, got %d", index)
			}
			if index <= lastIndex {
				return nil, formatErrorf(lineNo, "cue index %d is not increasing (previous %d)", index, lastIndex)
			}
			current.Index = index
			lastIndex = index
			state = "time"

		case "time":
			trimmed := strings.TrimSpace(raw)
			if trimmed == "" {
				return nil, formatErrorf(lineNo, "cue %d is missing its time line", current.Index)
			}
			startTime, endTime, err := parseTimeLine(trimmed)
			if err != nil {
				return nil, formatErrorf(lineNo, "cue %d: %v", current.Index, err)
			}
			if endTime <= startTime {
				return nil, formatErrorf(lineNo, "cue %d: end time %s is not after start time %s",
					current.Index, FormatTimestamp(endTime), FormatTimestamp(startTime))
			}
			current.StartTime = startTime
			current.EndTime = endTime
			state = "text"

		case "text":
			if raw == "" {
				if err := flush(lineNo); err != nil {
					return nil, err
				}
				state = "index"
			} else {
				// kept verbatim, whitespace-only lines included
				textLines = append(textLines, raw)
			}
		}
	}

	switch state {
	case "time":
		return nil, formatErrorf(len(lines), "cue %d is missing its time line", current.Index)
	case "text":
		if err := flush(len(lines)); err != nil {
			return nil, err
		}
	}

	return cues, nil
}

func parseTimeLine(line string) (time.Duration, time.Duration, error) {
	matches := timeLineRe.FindStringSubmatch(line)
	if len(matches) != 9 {
		return 0, 0, formatErrorf(0, "malformed time line %q", line)
	}

	parse := func(hours, minutes, seconds, milliseconds string) time.Duration {
		h, _ := strconv.Atoi(hours)
		m, _ := strconv.Atoi(minutes)
		s, _ := strconv.Atoi(seconds)
		ms, _ := strconv.Atoi(milliseconds)

		return time.Duration(h)*time.Hour +
			time.Duration(m)*time.Minute +
			time.Duration(s)*time.Second +
			time.Duration(ms)*time.Millisecond
	}

	return parse(matches[1], matches[2], matches[3], matches[4]),
		parse(matches[5], matches[6], matches[7], matches[8]),
		nil
}
