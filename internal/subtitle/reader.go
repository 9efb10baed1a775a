package subtitle

import (
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/abadojack/whatlanggo"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/language"
)

// ReadFile reads and parses an SRT file. Subtitle files arrive in a zoo of
// encodings, so the raw bytes go through a fallback chain before parsing:
// UTF-8 (with or without BOM), UTF-16 LE, then Windows-1252.
func ReadFile(path string) (*File, error) {
	if !strings.HasSuffix(strings.ToLower(path), ".srt") {
		return nil, fmt.Errorf("only SRT format subtitle files are supported: %s", path)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read subtitle file: %w", err)
	}

	content, err := decodeSubtitleBytes(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode subtitle file %s: %w", path, err)
	}

	cues, err := Parse(content)
	if err != nil {
		return nil, err
	}

	return &File{
		Cues:     cues,
		Language: detectLanguage(cues),
		Format:   "SRT",
		Path:     path,
	}, nil
}

func decodeSubtitleBytes(raw []byte) (string, error) {
	// UTF-16 LE BOM
	if len(raw) >= 2 && raw[0] == 0xFF && raw[1] == 0xFE {
		decoded, err := unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder().Bytes(raw)
		if err != nil {
			return "", err
		}
		return string(decoded), nil
	}

	if utf8.Valid(raw) {
		return string(raw), nil
	}

	decoded, err := charmap.Windows1252.NewDecoder().Bytes(raw)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}

// detectLanguage picks the dominant language over all cue text
func detectLanguage(cues []Cue) language.Tag {
	if len(cues) == 0 {
		return language.Und
	}

	langMap := make(map[string]int)
	for _, cue := range cues {
		lang := whatlanggo.DetectLang(strings.Join(cue.Text, "\n")).Iso6391()
		langMap[lang]++
	}

	var topLang string
	var topCount int
	for lang, count := range langMap {
		if count > topCount {
			topLang = lang
			topCount = count
		}
	}

	return language.All.Make(topLang)
}
