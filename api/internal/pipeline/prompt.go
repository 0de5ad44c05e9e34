package pipeline

import (
	"fmt"
	"strings"

	"problem-reporter/api/internal/pipeline/types"
)

const emptyMarker = "(nessuno)"

const reportSchema = `{
  "problemDescription": "descrizione del problema",
  "userSolution": "soluzione applicata dall'operatore o null se non menzionata",
  "detailedSolutions": [
    {
      "title": "Titolo della soluzione",
      "description": "Descrizione dettagliata",
      "steps": ["Passo 1", "Passo 2", "Passo 3"],
      "priority": "alta/media/bassa",
      "estimatedTime": "tempo stimato",
      "requiredTools": ["strumento1", "strumento2"]
    }
  ],
  "preventiveRecommendations": ["raccomandazione1", "raccomandazione2"],
  "managementSummary": "riepilogo per il management"
}`

const excelSchema = `{
  "modificationType": "excel",
  "newContent": [["Intestazione1", "Intestazione2"], ["valore1", "valore2"]],
  "modifications": "descrizione delle modifiche applicate",
  "summary": "riepilogo per l'operatore"
}`

const wordSchema = `{
  "modificationType": "word",
  "newContent": "testo completo del documento aggiornato, paragrafi separati da \n",
  "modifications": "descrizione delle modifiche applicate",
  "summary": "riepilogo per l'operatore"
}`

// BuildPrompt renders the user prompt for one synthesis call.
func BuildPrompt(mode types.Mode, ev types.ExtractedEvidence) string {
	var b strings.Builder
	if mode.IsReport() {
		writeReportPrompt(&b, ev)
	} else {
		writeModificationPrompt(&b, mode, ev)
	}
	return b.String()
}

func writeReportPrompt(b *strings.Builder, ev types.ExtractedEvidence) {
	b.WriteString("CONTESTO: Analisi di un problema professionale riportato da un operatore/tecnico.\n\n")
	writeEvidence(b, ev)

	b.WriteString("FILE ALLEGATI:\n")
	if len(ev.Files) == 0 {
		b.WriteString(emptyMarker + "\n")
	}
	for _, f := range ev.Files {
		fmt.Fprintf(b, "- %s (%s)\n", f.Name, f.Type)
	}

	b.WriteString(`
COMPITO: Analizza il problema descritto e fornisci:
1. Una descrizione chiara del problema identificato
2. La soluzione che l'operatore ha già applicato (se menzionata), con una valutazione della sua efficacia
3. Almeno due soluzioni dettagliate raccomandate con passaggi specifici, priorità, tempo stimato e strumenti necessari.
   La spiegazione deve essere professionale e tecnica, ma soprattutto esaustiva per un operatore tecnico
   e completa di ogni passaggio.
4. Raccomandazioni aggiuntive per prevenire problemi futuri
5. Un riepilogo professionale per il management con l'impatto sull'attività

Rispondi in formato JSON con questa struttura:
`)
	b.WriteString(reportSchema)
	b.WriteString("\n")
}

func writeModificationPrompt(b *strings.Builder, mode types.Mode, ev types.ExtractedEvidence) {
	b.WriteString("CONTESTO: Un operatore chiede di modificare un file esistente. " +
		"Le istruzioni sono nella trascrizione audio e nel testo estratto dalle immagini.\n\n")
	writeEvidence(b, ev)

	switch mode.Target {
	case types.TargetExcel:
		name, rows := "", [][]string(nil)
		if ev.Spreadsheet != nil {
			name, rows = ev.Spreadsheet.Filename, ev.Spreadsheet.Rows
		}
		fmt.Fprintf(b, "FOGLIO DI CALCOLO ESISTENTE (%s):\n", name)
		if len(rows) == 0 {
			b.WriteString(emptyMarker + "\n")
		}
		for _, r := range rows {
			b.WriteString(strings.Join(r, " | "))
			b.WriteString("\n")
		}
		b.WriteString(`
COMPITO: Applica al foglio le modifiche richieste e restituisci il contenuto completo aggiornato
come matrice di righe (la prima riga contiene le intestazioni). Non omettere righe non modificate.

Rispondi in formato JSON con questa struttura:
`)
		b.WriteString(excelSchema)
	case types.TargetWord:
		name, text := "", ""
		if ev.Document != nil {
			name, text = ev.Document.Filename, ev.Document.Text
		}
		fmt.Fprintf(b, "DOCUMENTO ESISTENTE (%s):\n", name)
		if strings.TrimSpace(text) == "" {
			text = emptyMarker
		}
		b.WriteString(text)
		b.WriteString("\n")
		b.WriteString(`
COMPITO: Applica al documento le modifiche richieste e restituisci il testo completo aggiornato.
Non omettere le parti non modificate.

Rispondi in formato JSON con questa struttura:
`)
		b.WriteString(wordSchema)
	}
	b.WriteString("\n")
}

func writeEvidence(b *strings.Builder, ev types.ExtractedEvidence) {
	transcript := ev.Transcript
	if strings.TrimSpace(transcript) == "" {
		transcript = emptyMarker
	}
	fmt.Fprintf(b, "TRASCRIZIONE AUDIO: \"%s\"\n\n", transcript)

	b.WriteString("TESTO ESTRATTO DALLE IMMAGINI:\n")
	if len(ev.Images) == 0 {
		b.WriteString(emptyMarker + "\n")
	}
	for _, im := range ev.Images {
		fmt.Fprintf(b, "- %s: %s\n", im.Filename, im.ExtractedText)
	}
	b.WriteString("\n")
}
