package handle

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"problem-reporter/api/internal/pipeline/types"
	"problem-reporter/api/internal/util"
)

const (
	audioField = "audio"

	msgProcessFailed = "Errore durante l'elaborazione del report"
)

var (
	ErrTooLarge     = errors.New("file exceeds upload limit")
	ErrTooManyFiles = errors.New("too many files")
	ErrNotMultipart = errors.New("multipart/form-data required")
)

type processResponse struct {
	Success bool           `json:"success"`
	Report  types.Artifact `json:"report,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// ProcessReport accepts a multipart bundle: field "audio" is the voice note,
// every other file part is an attachment, kept in request order.
func (h *Handle) ProcessReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST only")
		return
	}
	sub, err := h.readSubmission(r)
	switch {
	case errors.Is(err, ErrTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, err.Error())
		return
	case err != nil:
		writeError(w, http.StatusBadRequest, "bad multipart: "+err.Error())
		return
	}
	log := h.log.With(zap.String("submission", sub.ID))

	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout(r))
	defer cancel()

	art, err := h.runner.Run(ctx, sub)
	if err != nil {
		log.Error("process report failed", zap.String("stage", "http"), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, processResponse{Success: false, Error: msgProcessFailed})
		return
	}
	writeJSON(w, http.StatusOK, processResponse{Success: true, Report: art})
}

func (h *Handle) readSubmission(r *http.Request) (types.Submission, error) {
	sub := types.Submission{ID: uuid.NewString()}
	mr, err := r.MultipartReader()
	if err != nil {
		return sub, fmt.Errorf("%w: %w", ErrNotMultipart, err)
	}
	files := 0
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return sub, err
		}
		name := part.FileName()
		if name == "" {
			_ = part.Close()
			continue
		}
		files++
		if files > h.opts.MaxFiles {
			_ = part.Close()
			return sub, fmt.Errorf("%w: max %d", ErrTooManyFiles, h.opts.MaxFiles)
		}
		data, err := io.ReadAll(io.LimitReader(part, h.opts.MaxUploadBytes+1))
		_ = part.Close()
		if err != nil {
			return sub, err
		}
		if int64(len(data)) > h.opts.MaxUploadBytes {
			return sub, fmt.Errorf("%w: %s (max %d bytes)", ErrTooLarge, name, h.opts.MaxUploadBytes)
		}
		if part.FormName() == audioField {
			if sub.Audio != nil {
				h.log.Debug("extra audio part ignored", zap.String("submission", sub.ID), zap.String("file", name))
				continue
			}
			sub.Audio, sub.AudioName = data, name
			continue
		}
		sub.Attachments = append(sub.Attachments, types.Attachment{
			Filename: name,
			MimeType: util.PickMIME(part.Header.Get("Content-Type"), data),
			Data:     data,
		})
	}
	return sub, nil
}
