// Package service wires the subtitle codec and the pirate transformer into
// the translation operation the job queue executes.
package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/piratarr/piratarr/internal/jobs"
	"github.com/piratarr/piratarr/internal/pirate"
	"github.com/piratarr/piratarr/internal/subtitle"
	"github.com/piratarr/piratarr/pkg/file"
	"github.com/piratarr/piratarr/pkg/log"
)

// Translator turns one SRT file into its pirate sidecar. The source file is
// never modified; output is written atomically next to it.
type Translator struct {
	transformer *pirate.Transformer
}

func NewTranslator(transformer *pirate.Transformer) *Translator {
	return &Translator{transformer: transformer}
}

// TranslateFile decodes sourcePath, transforms every cue, and writes the
// result to the derived pirate sidecar path. Timestamps pass through
// untouched; cue text keeps its internal line structure.
func (t *Translator) TranslateFile(ctx context.Context, sourcePath string) (string, int, error) {
	if strings.TrimSpace(sourcePath) == "" {
		return "", 0, NewError(ErrValidation, "source path is empty")
	}
	if err := ctx.Err(); err != nil {
		return "", 0, err
	}

	decoded, err := subtitle.DecodeFile(sourcePath)
	if err != nil {
		return "", 0, classifyDecodeError(sourcePath, err)
	}

	if decoded.Language != "" && decoded.Language != "en" {
		log.Warn("Subtitle %s detected as %q, translating anyway", sourcePath, decoded.Language)
	}

	for i := range decoded.Cues {
		decoded.Cues[i].Text = t.transformText(decoded.Cues[i].Text)
	}

	outputPath := file.PirateSidecarPath(sourcePath)
	if err := writeAtomic(outputPath, decoded); err != nil {
		return "", 0, err
	}

	log.Info("Translated %s -> %s (%d cues)", sourcePath, outputPath, len(decoded.Cues))
	return outputPath, len(decoded.Cues), nil
}

// Preview transforms raw text without touching the filesystem.
func (t *Translator) Preview(text string) string {
	return t.transformText(text)
}

// Executor adapts the translator to the job queue.
func (t *Translator) Executor() jobs.Executor {
	return func(ctx context.Context, job *jobs.TranslationJob) (jobs.ExecResult, error) {
		outputPath, cueCount, err := t.TranslateFile(ctx, job.SourcePath)
		if err != nil {
			return jobs.ExecResult{}, err
		}
		return jobs.ExecResult{OutputPath: outputPath, CueCount: cueCount}, nil
	}
}

// transformText runs the transformer per line so multi-line cues keep their
// line breaks.
func (t *Translator) transformText(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = t.transformer.Transform(line)
	}
	return strings.Join(lines, "\n")
}

func classifyDecodeError(sourcePath string, err error) error {
	var parseErr *subtitle.ParseError
	switch {
	case errors.As(err, &parseErr):
		return WrapError(err, ErrParse, "subtitle file is malformed").
			WithContext("path", sourcePath).
			WithContext("line", parseErr.LineNum)
	case errors.Is(err, os.ErrNotExist):
		return WrapError(err, ErrFileNotFound, "subtitle file does not exist").
			WithContext("path", sourcePath)
	default:
		return WrapError(err, ErrFileRead, "failed to read subtitle file").
			WithContext("path", sourcePath)
	}
}

// writeAtomic encodes to a temp file in the target directory and renames it
// into place, so a crash mid-write never leaves a partial sidecar.
func writeAtomic(outputPath string, decoded *subtitle.File) error {
	dir := filepath.Dir(outputPath)
	tmp, err := os.CreateTemp(dir, ".piratarr-*.srt")
	if err != nil {
		return WrapError(err, ErrFileWrite, "failed to create temporary output file").
			WithContext("dir", dir)
	}
	tmpPath := tmp.Name()

	if err := subtitle.Encode(tmp, decoded); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return WrapError(err, ErrFileWrite, "failed to encode subtitle output").
			WithContext("path", outputPath)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return WrapError(err, ErrFileWrite, "failed to flush subtitle output").
			WithContext("path", outputPath)
	}
	if err := os.Rename(tmpPath, outputPath); err != nil {
		os.Remove(tmpPath)
		return WrapError(err, ErrFileWrite, fmt.Sprintf("failed to move output into place: %v", err)).
			WithContext("path", outputPath)
	}
	return nil
}
