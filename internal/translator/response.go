package translator

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/MimeLyc/movie-sub-pipeline/internal/chunker"
	"github.com/MimeLyc/movie-sub-pipeline/internal/llm"
)

// ParseResponse decodes and validates a collaborator response for one chunk.
// The expected payload is a JSON object mapping original cue index to
// translated text, bare or inside a markdown code fence. The shape contract
// is exact: one non-empty translation for every cue index in the chunk's
// range, and none outside it.
func ParseResponse(raw string, chunk chunker.Chunk) (map[int]string, error) {
	jsonText := llm.ExtractJSON(raw)

	var decoded map[string]string
	if err := json.Unmarshal([]byte(jsonText), &decoded); err != nil {
		return nil, fmt.Errorf("response is not a JSON index-to-text object: %v", err)
	}

	result := make(map[int]string, len(decoded))
	for key, text := range decoded {
		index, err := strconv.Atoi(strings.TrimSpace(key))
		if err != nil {
			return nil, fmt.Errorf("response contains non-numeric cue index %q", key)
		}
		if _, dup := result[index]; dup {
			return nil, fmt.Errorf("response contains duplicate cue index %d", index)
		}
		result[index] = text
	}

	expected := chunk.CueIndices()
	expectedSet := make(map[int]bool, len(expected))
	for _, index := range expected {
		expectedSet[index] = true
	}

	var missing, foreign []int
	for _, index := range expected {
		if _, ok := result[index]; !ok {
			missing = append(missing, index)
		}
	}
	for index := range result {
		if !expectedSet[index] {
			foreign = append(foreign, index)
		}
	}
	sort.Ints(foreign)

	if len(missing) > 0 {
		return nil, fmt.Errorf("response is missing translations for cue indices %v", missing)
	}
	if len(foreign) > 0 {
		return nil, fmt.Errorf("response contains cue indices %v outside chunk range %d-%d",
			foreign, chunk.StartIndex, chunk.EndIndex)
	}

	for _, index := range expected {
		if strings.TrimSpace(result[index]) == "" {
			return nil, fmt.Errorf("response has an empty translation for cue index %d", index)
		}
	}

	return result, nil
}
