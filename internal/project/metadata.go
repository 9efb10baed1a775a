package project

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Metadata is the content-analysis artifact produced by the analysis
// collaborator. The schema is fixed; the pipeline consumes it read-only to
// enrich translation prompts.
type Metadata struct {
	FilmMetadata       FilmMetadata       `json:"film_metadata"`
	Characters         Characters         `json:"characters"`
	Themes             Themes             `json:"themes"`
	TranslationContext TranslationContext `json:"translation_context"`
	StorySummary       string             `json:"story_summary"`
}

type FilmMetadata struct {
	Genre     string   `json:"genre"`
	Subgenres []string `json:"subgenres"`
	Setting   Setting  `json:"setting"`
	Tone      string   `json:"tone"`
}

type Setting struct {
	Location    string   `json:"location"`
	TimePeriod  string   `json:"time_period"`
	Environment []string `json:"environment"`
}

type Characters struct {
	MainCharacters         []string `json:"main_characters"`
	SecondaryCharacters    []string `json:"secondary_characters"`
	CharacterRelationships string   `json:"character_relationships"`
}

type Themes struct {
	PrimaryThemes    []string `json:"primary_themes"`
	CulturalElements []string `json:"cultural_elements"`
	SensitiveTopics  []string `json:"sensitive_topics"`
}

type TranslationContext struct {
	TargetLanguage     string             `json:"target_language"`
	Register           string             `json:"register"`
	SpecialTerminology SpecialTerminology `json:"special_terminology"`
	TranslationNotes   []string           `json:"translation_notes"`
}

type SpecialTerminology struct {
	ProperNouns    []string `json:"proper_nouns"`
	CulturalTerms  []string `json:"cultural_terms"`
	TechnicalTerms []string `json:"technical_terms"`
}

// Validate checks the keys translation prompts depend on.
func (m *Metadata) Validate() error {
	if m.FilmMetadata.Genre == "" {
		return fmt.Errorf("metadata is missing film_metadata.genre")
	}
	if len(m.Characters.MainCharacters) == 0 {
		return fmt.Errorf("metadata is missing characters.main_characters")
	}
	if m.StorySummary == "" {
		return fmt.Errorf("metadata is missing story_summary")
	}
	return nil
}

// LoadMetadata reads and decodes the metadata artifact. Returns os.ErrNotExist
// wrapped when the artifact has not been generated yet; callers decide whether
// that degrades or aborts.
func (p *Project) LoadMetadata() (*Metadata, error) {
	raw, err := os.ReadFile(p.MetadataPath())
	if err != nil {
		return nil, fmt.Errorf("read metadata: %w", err)
	}

	var meta Metadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, fmt.Errorf("parse metadata: %w", err)
	}
	return &meta, nil
}

// SaveMetadata writes the metadata artifact with stable indentation.
func (p *Project) SaveMetadata(meta *Metadata) error {
	payload, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}
	if err := os.WriteFile(p.MetadataPath(), append(payload, '\n'), 0o644); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}
	return nil
}

// HasMetadata reports whether the analysis artifact exists.
func (p *Project) HasMetadata() bool {
	_, err := os.Stat(p.MetadataPath())
	return err == nil
}

// ContextText renders the metadata as the story-context block embedded in
// every translation prompt. A nil receiver renders the degraded form so the
// pipeline keeps working without an analysis pass.
func (m *Metadata) ContextText(targetLanguage string) string {
	var sb strings.Builder
	sb.WriteString("STORY CONTEXT for Translation:\n\n")

	if m == nil {
		sb.WriteString("WARNING: No metadata available. Translate conservatively.\n\n")
		sb.WriteString("TRANSLATION NOTES:\n")
		sb.WriteString("- Preserve character names exactly as shown\n")
		sb.WriteString("- Preserve formatting (dashes for dialogue, ellipses, etc.)\n")
		return sb.String()
	}

	if m.StorySummary != "" {
		fmt.Fprintf(&sb, "STORY: %s\n\n", m.StorySummary)
	}

	fmt.Fprintf(&sb, "GENRE: %s\n", cases.Title(language.English).String(m.FilmMetadata.Genre))
	if len(m.FilmMetadata.Subgenres) > 0 {
		fmt.Fprintf(&sb, "SUBGENRES: %s\n", strings.Join(m.FilmMetadata.Subgenres, ", "))
	}
	sb.WriteString("\n")

	if len(m.Characters.MainCharacters) > 0 {
		fmt.Fprintf(&sb, "MAIN CHARACTERS: %s\n", strings.Join(m.Characters.MainCharacters, ", "))
	}
	if len(m.Characters.SecondaryCharacters) > 0 {
		fmt.Fprintf(&sb, "SECONDARY CHARACTERS: %s\n", strings.Join(m.Characters.SecondaryCharacters, ", "))
	}
	if m.Characters.CharacterRelationships != "" {
		fmt.Fprintf(&sb, "RELATIONSHIPS: %s\n", m.Characters.CharacterRelationships)
	}
	sb.WriteString("\n")

	if m.FilmMetadata.Setting.Location != "" {
		fmt.Fprintf(&sb, "LOCATION: %s\n", m.FilmMetadata.Setting.Location)
	}
	if m.FilmMetadata.Setting.TimePeriod != "" {
		fmt.Fprintf(&sb, "TIME PERIOD: %s\n", m.FilmMetadata.Setting.TimePeriod)
	}
	if len(m.FilmMetadata.Setting.Environment) > 0 {
		fmt.Fprintf(&sb, "ENVIRONMENTS: %s\n", strings.Join(m.FilmMetadata.Setting.Environment, ", "))
	}
	sb.WriteString("\n")

	if len(m.Themes.PrimaryThemes) > 0 {
		sb.WriteString("THEMES:\n")
		for _, theme := range m.Themes.PrimaryThemes {
			fmt.Fprintf(&sb, "- %s\n", theme)
		}
		sb.WriteString("\n")
	}

	if len(m.Themes.CulturalElements) > 0 {
		sb.WriteString("KEY CULTURAL ELEMENTS:\n")
		for _, element := range m.Themes.CulturalElements {
			fmt.Fprintf(&sb, "- %s\n", element)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("TRANSLATION NOTES:\n")
	if nouns := m.TranslationContext.SpecialTerminology.ProperNouns; len(nouns) > 0 {
		fmt.Fprintf(&sb, "- Preserve these names/terms exactly: %s\n", strings.Join(nouns, ", "))
	}
	if terms := m.TranslationContext.SpecialTerminology.CulturalTerms; len(terms) > 0 {
		fmt.Fprintf(&sb, "- Handle these cultural terms carefully: %s\n", strings.Join(terms, ", "))
	}
	if m.TranslationContext.Register != "" {
		fmt.Fprintf(&sb, "- Use %s register/tone in %s\n", m.TranslationContext.Register, targetLanguage)
	}
	for _, note := range m.TranslationContext.TranslationNotes {
		fmt.Fprintf(&sb, "- %s\n", note)
	}
	sb.WriteString("- Preserve formatting (dashes for dialogue, ellipses, etc.)\n")

	return sb.String()
}
