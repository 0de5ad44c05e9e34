package pipeline

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"

	"problem-reporter/api/internal/extract"
	"problem-reporter/api/internal/pipeline/types"
)

var (
	errNoObject    = errors.New("no JSON object in reply")
	errEmptyObject = errors.New("empty JSON object")
)

// extractJSONObject returns the text between the first '{' and the last '}'.
func extractJSONObject(reply string) (string, error) {
	start := strings.IndexByte(reply, '{')
	end := strings.LastIndexByte(reply, '}')
	if start < 0 || end < start {
		return "", errNoObject
	}
	return reply[start : end+1], nil
}

func decodeObject(reply string, v any) error {
	obj, err := extractJSONObject(reply)
	if err != nil {
		return err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(obj), &fields); err != nil {
		return err
	}
	if len(fields) == 0 {
		return errEmptyObject
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(obj)))
	return dec.Decode(v)
}

// DefaultReport is the outcome used whenever synthesis or parsing fails.
func DefaultReport() types.ReportOutcome {
	return types.ReportOutcome{
		ProblemDescription: "Problema generico rilevato",
		UserSolution:       nil,
		DetailedSolutions: []types.DetailedSolution{{
			Title:         "Soluzione generica",
			Description:   "Analisi più approfondita necessaria",
			Steps:         []string{"Identificare la causa", "Applicare correzione", "Verificare risultato"},
			Priority:      types.PriorityMedium,
			EstimatedTime: "30-60 minuti",
			RequiredTools: []string{"Strumenti standard"},
		}},
		PreventiveRecommendations: []string{"Monitorare la situazione", "Controlli periodici"},
		ManagementSummary:         "Problema segnalato e in fase di risoluzione",
	}
}

// DefaultModification echoes the captured content so a failed synthesis still
// yields a file equal to the original.
func DefaultModification(target types.Target, ev types.ExtractedEvidence) types.ModificationOutcome {
	out := types.ModificationOutcome{
		ModificationType: string(target),
		Modifications:    "Nessuna modifica applicata",
		Summary:          "Non è stato possibile elaborare le modifiche richieste; il contenuto originale è stato mantenuto",
	}
	switch target {
	case types.TargetExcel:
		rows := [][]string{}
		if ev.Spreadsheet != nil && ev.Spreadsheet.Rows != nil {
			rows = ev.Spreadsheet.Rows
		}
		out.NewContent = types.RowsContent(rows)
	case types.TargetWord:
		text := ""
		if ev.Document != nil {
			text = ev.Document.Text
		}
		if text == extract.DocumentFailed {
			// Nothing to echo: leave NewContent unset so no file is produced.
			out.Summary = "Non è stato possibile leggere il documento originale; nessun file è stato generato"
			break
		}
		out.NewContent = types.TextContent(text)
	}
	return out
}

// ParseReport decodes a report reply; ok=false means the default was returned.
func ParseReport(reply string) (types.ReportOutcome, bool) {
	var out types.ReportOutcome
	if err := decodeObject(reply, &out); err != nil {
		return DefaultReport(), false
	}
	if out.DetailedSolutions == nil {
		out.DetailedSolutions = []types.DetailedSolution{}
	}
	for i := range out.DetailedSolutions {
		s := &out.DetailedSolutions[i]
		if s.Steps == nil {
			s.Steps = []string{}
		}
		if s.RequiredTools == nil {
			s.RequiredTools = []string{}
		}
	}
	if out.PreventiveRecommendations == nil {
		out.PreventiveRecommendations = []string{}
	}
	return out, true
}

// ParseModification decodes a modification reply for target.
func ParseModification(reply string, target types.Target, ev types.ExtractedEvidence) (types.ModificationOutcome, bool) {
	var out types.ModificationOutcome
	if err := decodeObject(reply, &out); err != nil {
		return DefaultModification(target, ev), false
	}
	if out.ModificationType == "" {
		out.ModificationType = string(target)
	}
	return out, true
}
