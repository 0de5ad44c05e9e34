package pipeline

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/sergi/go-diff/diffmatchpatch"

	"problem-reporter/api/internal/office"
	"problem-reporter/api/internal/pipeline/types"
)

var (
	// ErrRender is terminal: no artifact is produced for the submission.
	ErrRender         = errors.New("render failed")
	ErrMissingContent = errors.New("newContent missing for target")
)

const modifiedSuffix = "_modificato"

// RenderReport merges evidence and outcome into the report artifact.
func RenderReport(ev types.ExtractedEvidence, out types.ReportOutcome, now time.Time) *types.Report {
	files := ev.Files
	if files == nil {
		files = []types.FileSummary{}
	}
	images := ev.Images
	if images == nil {
		images = []types.ImageText{}
	}
	return &types.Report{
		Type:                      types.ArtifactReport,
		Timestamp:                 now,
		AudioTranscription:        ev.Transcript,
		FilesAnalyzed:             files,
		ExtractedImageTexts:       images,
		ProblemDescription:        out.ProblemDescription,
		UserSolution:              out.UserSolution,
		DetailedSolutions:         out.DetailedSolutions,
		PreventiveRecommendations: out.PreventiveRecommendations,
		ManagementSummary:         out.ManagementSummary,
	}
}

// RenderModification regenerates the target file from the parsed content.
// The new file fully replaces the original; nothing of its formatting is kept.
func RenderModification(mode types.Mode, ev types.ExtractedEvidence, out types.ModificationOutcome, now time.Time) (*types.FileModification, error) {
	var (
		data        []byte
		contentType string
		original    string
		before      []string
		after       []string
		err         error
	)
	switch mode.Target {
	case types.TargetExcel:
		if out.NewContent.Rows == nil {
			return nil, fmt.Errorf("%w: excel: %w", ErrRender, ErrMissingContent)
		}
		data, err = office.EncodeXLSX(out.NewContent.Rows)
		contentType = office.XLSXContentType
		if ev.Spreadsheet != nil {
			original = ev.Spreadsheet.Filename
			before = rowLines(ev.Spreadsheet.Rows)
		}
		after = rowLines(out.NewContent.Rows)
	case types.TargetWord:
		if out.NewContent.Text == nil {
			return nil, fmt.Errorf("%w: word: %w", ErrRender, ErrMissingContent)
		}
		paragraphs := splitLines(*out.NewContent.Text)
		data, err = office.EncodeDOCX(paragraphs)
		contentType = office.DOCXContentType
		if ev.Document != nil {
			original = ev.Document.Filename
			before = splitLines(ev.Document.Text)
		}
		after = paragraphs
	default:
		return nil, fmt.Errorf("%w: unsupported target %q", ErrRender, mode.Target)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRender, err)
	}

	images := ev.Images
	if images == nil {
		images = []types.ImageText{}
	}
	return &types.FileModification{
		Type:                types.ArtifactFileModification,
		FileType:            mode.Target,
		OriginalFilename:    original,
		ModifiedFilename:    ModifiedFilename(original, mode.Target),
		ModifiedFile:        data,
		ContentType:         contentType,
		AudioTranscription:  ev.Transcript,
		ExtractedImageTexts: images,
		Modifications:       out.Modifications,
		Summary:             out.Summary,
		Changes:             CountChanges(before, after),
		Timestamp:           now,
	}, nil
}

// ModifiedFilename derives the download name, e.g. "dati.xls" -> "dati_modificato.xlsx".
func ModifiedFilename(original string, target types.Target) string {
	ext := ".xlsx"
	if target == types.TargetWord {
		ext = ".docx"
	}
	base := strings.TrimSuffix(filepath.Base(original), filepath.Ext(original))
	if base == "" || base == "." || base == string(filepath.Separator) {
		base = "file"
	}
	return base + modifiedSuffix + ext
}

// CountChanges diffs two line lists and counts inserted, deleted and unchanged lines.
func CountChanges(before, after []string) types.ChangeStats {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(joinLines(before), joinLines(after))
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var st types.ChangeStats
	for _, d := range diffs {
		n := strings.Count(d.Text, "\n")
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			st.Inserted += n
		case diffmatchpatch.DiffDelete:
			st.Deleted += n
		case diffmatchpatch.DiffEqual:
			st.Unchanged += n
		}
	}
	return st
}

func joinLines(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

func rowLines(rows [][]string) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = strings.Join(r, "\t")
	}
	return out
}

func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.Split(text, "\n")
}
