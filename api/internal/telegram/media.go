package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"problem-reporter/api/internal/pipeline/types"
	"problem-reporter/api/internal/util"
)

var errFileTooLarge = errors.New("file too large")

// incoming describes one file carried by a message.
type incoming struct {
	fileID string
	name   string
	mime   string
	size   int
	audio  bool
}

// fileOf picks the file a message carries, if any. For photos the largest size is used.
func fileOf(msg *tgbotapi.Message) (incoming, bool) {
	switch {
	case msg.Voice != nil:
		return incoming{fileID: msg.Voice.FileID, name: "nota_vocale.ogg", mime: msg.Voice.MimeType, size: msg.Voice.FileSize, audio: true}, true
	case msg.Audio != nil:
		name := msg.Audio.FileName
		if name == "" {
			name = "audio.mp3"
		}
		return incoming{fileID: msg.Audio.FileID, name: name, mime: msg.Audio.MimeType, size: msg.Audio.FileSize, audio: true}, true
	case len(msg.Photo) > 0:
		ph := msg.Photo[len(msg.Photo)-1]
		return incoming{fileID: ph.FileID, name: "foto_" + strconv.Itoa(msg.MessageID) + ".jpg", mime: "image/jpeg", size: ph.FileSize}, true
	case msg.Document != nil:
		return incoming{fileID: msg.Document.FileID, name: msg.Document.FileName, mime: msg.Document.MimeType, size: msg.Document.FileSize}, true
	}
	return incoming{}, false
}

func (r *Router) fetch(ctx context.Context, in incoming) ([]byte, error) {
	if r.MaxFileBytes > 0 && int64(in.size) > r.MaxFileBytes {
		return nil, errFileTooLarge
	}
	url, err := r.Bot.GetFileDirectURL(in.fileID)
	if err != nil {
		return nil, err
	}
	data, err := r.download(ctx, url)
	if err != nil {
		return nil, err
	}
	if r.MaxFileBytes > 0 && int64(len(data)) > r.MaxFileBytes {
		return nil, errFileTooLarge
	}
	return data, nil
}

func (in incoming) attachment(data []byte) types.Attachment {
	name := in.name
	if name == "" {
		name = "file"
	}
	return types.Attachment{Filename: name, MimeType: util.PickMIME(in.mime, data), Data: data}
}

func (r *Router) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := r.httpClient().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, string(b))
	}
	limit := r.MaxFileBytes
	if limit <= 0 {
		return io.ReadAll(resp.Body)
	}
	return io.ReadAll(io.LimitReader(resp.Body, limit+1))
}

func (r *Router) httpClient() *http.Client {
	if r.HTTPClient != nil {
		return r.HTTPClient
	}
	return &http.Client{Timeout: 60 * time.Second}
}
