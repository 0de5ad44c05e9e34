package handle

import (
	"encoding/json"
	"mime"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"problem-reporter/api/internal/office"
	"problem-reporter/api/internal/pdf"
	"problem-reporter/api/internal/pipeline/types"
)

type pdfRequest struct {
	Report *types.Report `json:"report"`
}

type downloadRequest struct {
	Report *types.FileModification `json:"report"`
}

// GeneratePDF renders a previously returned report as a PDF attachment.
func (h *Handle) GeneratePDF(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST only")
		return
	}
	var req pdfRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json: "+err.Error())
		return
	}
	if req.Report == nil {
		writeError(w, http.StatusBadRequest, "Report data required")
		return
	}
	b, err := pdf.Render(req.Report)
	if err != nil {
		h.log.Error("pdf render failed", zap.String("stage", "pdf"), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Errore durante la generazione del PDF")
		return
	}
	writeAttachment(w, pdf.ContentType, pdf.Filename(req.Report), b)
}

// DownloadModifiedFile returns the regenerated file carried by a file_modification artifact.
func (h *Handle) DownloadModifiedFile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST only")
		return
	}
	var req downloadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json: "+err.Error())
		return
	}
	fm := req.Report
	if fm == nil || len(fm.ModifiedFile) == 0 {
		writeError(w, http.StatusBadRequest, "Modified file data required")
		return
	}
	if fm.Type != "" && fm.Type != types.ArtifactFileModification {
		writeError(w, http.StatusBadRequest, "unexpected report type "+strconv.Quote(fm.Type))
		return
	}
	var ct, ext string
	switch fm.FileType {
	case types.TargetExcel:
		ct, ext = office.XLSXContentType, ".xlsx"
	case types.TargetWord:
		ct, ext = office.DOCXContentType, ".docx"
	default:
		writeError(w, http.StatusBadRequest, "unsupported fileType "+strconv.Quote(string(fm.FileType)))
		return
	}
	name := fm.ModifiedFilename
	if name == "" {
		name = "file_modificato" + ext
	}
	writeAttachment(w, ct, name, fm.ModifiedFile)
}

func writeAttachment(w http.ResponseWriter, contentType, filename string, b []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	w.Header().Set("Content-Length", strconv.Itoa(len(b)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}
