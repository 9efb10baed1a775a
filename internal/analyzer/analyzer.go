package analyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/MimeLyc/movie-sub-pipeline/internal/llm"
	"github.com/MimeLyc/movie-sub-pipeline/internal/project"
	"github.com/MimeLyc/movie-sub-pipeline/internal/subtitle"
	"github.com/MimeLyc/movie-sub-pipeline/pkg/log"
)

// Collaborator is the external LLM-backed capability performing the
// content analysis.
type Collaborator interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Analyzer drives the content-analysis stage: it hands the full subtitle
// text to the collaborator with a fixed prompt template and persists the
// validated metadata artifact.
type Analyzer struct {
	collaborator Collaborator
}

func New(collaborator Collaborator) *Analyzer {
	return &Analyzer{collaborator: collaborator}
}

const analysisSystemPrompt = `You are an expert film analyst. Analyze the provided subtitle file and generate structured metadata for translation purposes.

Create a JSON metadata document with exactly this shape:

{
  "film_metadata": {
    "genre": "string - primary genre (drama, comedy, action, etc.)",
    "subgenres": ["list", "of", "secondary", "genres"],
    "setting": {
      "location": "string - geographic location/country",
      "time_period": "string - when story takes place",
      "environment": ["list", "of", "main", "settings"]
    },
    "tone": "string - overall emotional tone"
  },
  "characters": {
    "main_characters": ["list", "of", "main", "character", "names"],
    "secondary_characters": ["list", "of", "secondary", "character", "names"],
    "character_relationships": "string - brief description of key relationships"
  },
  "themes": {
    "primary_themes": ["list", "of", "main", "themes"],
    "cultural_elements": ["list", "of", "cultural", "references"],
    "sensitive_topics": ["list", "of", "sensitive", "content", "areas"]
  },
  "translation_context": {
    "target_language": "%s",
    "register": "string - formal/informal/mixed appropriate for content",
    "special_terminology": {
      "proper_nouns": ["names", "places", "to", "preserve"],
      "cultural_terms": ["terms", "requiring", "careful", "translation"],
      "technical_terms": ["specialized", "vocabulary", "if", "any"]
    },
    "translation_notes": ["specific guidance for the target language"]
  },
  "story_summary": "2-3 sentence summary of the plot for translation context"
}

Read through ALL the subtitle content, identify dialogue patterns, cultural references and the emotional register, then respond with ONLY the JSON metadata, no additional explanation or markdown formatting.`

// Analyze generates metadata.json for the project. An existing artifact is
// kept unless force is set; analysis never runs twice by accident because
// the artifact is the sole record of the stage having happened.
func (a *Analyzer) Analyze(ctx context.Context, proj *project.Project, targetLanguage string, force bool) (*project.Metadata, error) {
	if proj.HasMetadata() && !force {
		log.Info("metadata.json already exists for %s, skipping analysis", proj.Name)
		return proj.LoadMetadata()
	}

	srtPath, err := proj.SourceSubtitlePath()
	if err != nil {
		return nil, err
	}
	file, err := subtitle.ReadFile(srtPath)
	if err != nil {
		return nil, err
	}

	log.Info("Analyzing %s (%d cues)", proj.Name, len(file.Cues))

	systemPrompt := fmt.Sprintf(analysisSystemPrompt, targetLanguage)
	userPrompt := "SUBTITLE CONTENT TO ANALYZE:\n\n" + subtitle.Format(file.Cues)

	response, err := a.collaborator.Complete(ctx, systemPrompt, userPrompt)
	if err != nil {
		return nil, fmt.Errorf("analysis request failed: %w", err)
	}

	meta, err := decodeMetadata(response)
	if err != nil {
		return nil, err
	}

	if err := proj.SaveMetadata(meta); err != nil {
		return nil, err
	}
	log.Info("Generated metadata.json for %s", proj.Name)
	return meta, nil
}

func decodeMetadata(response string) (*project.Metadata, error) {
	jsonText := llm.ExtractJSON(response)

	var meta project.Metadata
	if err := json.Unmarshal([]byte(jsonText), &meta); err != nil {
		preview := jsonText
		if len(preview) > 200 {
			preview = preview[:200] + "..."
		}
		return nil, fmt.Errorf("analysis response is not valid JSON (%s): %w", strings.ReplaceAll(preview, "\n", " "), err)
	}

	if err := meta.Validate(); err != nil {
		return nil, fmt.Errorf("analysis response failed validation: %w", err)
	}
	return &meta, nil
}
