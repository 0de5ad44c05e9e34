package telegram

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"problem-reporter/api/internal/pdf"
	"problem-reporter/api/internal/pipeline/types"
	"problem-reporter/api/internal/util"
)

// Telegram rejects messages longer than 4096 characters; a byte bound stays under it.
const maxMessageBytes = 3900

func (r *Router) deliver(cid int64, art types.Artifact) {
	switch a := art.(type) {
	case *types.Report:
		r.send(cid, util.Truncate(reportSummary(a), maxMessageBytes))
		b, err := pdf.Render(a)
		if err != nil {
			r.Log.Error("pdf render failed", zap.Int64("chat", cid), zap.String("stage", "pdf"), zap.Error(err))
			return
		}
		r.sendFile(cid, pdf.Filename(a), b, "Report completo in PDF")
	case *types.FileModification:
		r.send(cid, util.Truncate(modificationSummary(a), maxMessageBytes))
		r.sendFile(cid, a.ModifiedFilename, a.ModifiedFile, "")
	}
}

func (r *Router) sendFile(cid int64, name string, data []byte, caption string) {
	doc := tgbotapi.NewDocument(cid, tgbotapi.FileBytes{Name: name, Bytes: data})
	doc.Caption = caption
	if _, err := r.Bot.Send(doc); err != nil {
		r.Log.Warn("send document failed", zap.Int64("chat", cid), zap.String("file", name), zap.Error(err))
	}
}

func reportSummary(rep *types.Report) string {
	var b strings.Builder
	b.WriteString("📋 PROBLEMA IDENTIFICATO\n")
	b.WriteString(rep.ProblemDescription)
	b.WriteString("\n")
	if rep.UserSolution != nil && *rep.UserSolution != "" {
		b.WriteString("\n🔧 SOLUZIONE APPLICATA\n")
		b.WriteString(*rep.UserSolution)
		b.WriteString("\n")
	}
	if len(rep.DetailedSolutions) > 0 {
		b.WriteString("\n✅ SOLUZIONI RACCOMANDATE\n")
		for i, s := range rep.DetailedSolutions {
			fmt.Fprintf(&b, "%d. %s [%s, %s]\n", i+1, s.Title, strings.ToUpper(s.Priority), s.EstimatedTime)
		}
	}
	if rep.ManagementSummary != "" {
		b.WriteString("\n📊 RIEPILOGO GESTIONALE\n")
		b.WriteString(rep.ManagementSummary)
		b.WriteString("\n")
	}
	return b.String()
}

func modificationSummary(fm *types.FileModification) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📝 %s aggiornato: %s\n\n", fileLabel(fm.FileType), fm.ModifiedFilename)
	if fm.Modifications != "" {
		b.WriteString("Modifiche: ")
		b.WriteString(fm.Modifications)
		b.WriteString("\n")
	}
	if fm.Summary != "" {
		b.WriteString(fm.Summary)
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "\nRighe: +%d −%d =%d", fm.Changes.Inserted, fm.Changes.Deleted, fm.Changes.Unchanged)
	return b.String()
}

func fileLabel(t types.Target) string {
	if t == types.TargetWord {
		return "Documento"
	}
	return "Foglio di calcolo"
}
