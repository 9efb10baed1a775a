package project

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/language"
)

// Project is a movie directory holding one source subtitle file, the
// metadata artifact, the batch state database and, eventually, the
// translated output. The directory is the sole persisted representation
// of a translation run.
type Project struct {
	Dir  string
	Name string
}

// Open validates the project directory and returns its handle.
func Open(dir string) (*Project, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("project directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("project path %s is not a directory", dir)
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve project directory: %w", err)
	}

	return &Project{
		Dir:  abs,
		Name: filepath.Base(abs),
	}, nil
}

// SourceSubtitlePath locates the source subtitle. Files named *_EN.srt are
// preferred; otherwise any .srt in the directory qualifies, except files the
// pipeline itself wrote (recognized by a language sub-extension).
func (p *Project) SourceSubtitlePath() (string, error) {
	enFiles, err := filepath.Glob(filepath.Join(p.Dir, "*_EN.srt"))
	if err != nil {
		return "", err
	}
	if len(enFiles) > 0 {
		sort.Strings(enFiles)
		return enFiles[0], nil
	}

	srtFiles, err := filepath.Glob(filepath.Join(p.Dir, "*.srt"))
	if err != nil {
		return "", err
	}
	sort.Strings(srtFiles)
	for _, path := range srtFiles {
		if !isGeneratedOutput(path) {
			return path, nil
		}
	}

	return "", fmt.Errorf("no subtitle file found in %s", p.Dir)
}

// isGeneratedOutput reports whether path looks like a pipeline output file,
// i.e. carries a language sub-extension such as movie.ro.srt.
func isGeneratedOutput(path string) bool {
	base := strings.TrimSuffix(filepath.Base(path), ".srt")
	ext := filepath.Ext(base)
	if ext == "" {
		return false
	}
	_, err := language.Parse(strings.TrimPrefix(ext, "."))
	return err == nil
}

// OutputPath is where the assembled translation gets written.
func (p *Project) OutputPath(target language.Tag) string {
	return filepath.Join(p.Dir, fmt.Sprintf("%s.%s.srt", p.Name, target.String()))
}

// MetadataPath is the analysis artifact location.
func (p *Project) MetadataPath() string {
	return filepath.Join(p.Dir, "metadata.json")
}

// BatchDBPath is the batch state database location.
func (p *Project) BatchDBPath() string {
	return filepath.Join(p.Dir, "batch.db")
}

// LockPath is the advisory lock guarding single-writer access.
func (p *Project) LockPath() string {
	return filepath.Join(p.Dir, ".subpipe.lock")
}
