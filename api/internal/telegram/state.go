package telegram

import (
	"sync"
	"time"

	"problem-reporter/api/internal/pipeline/types"
)

// bundleTTL drops a pending bundle left untouched for too long.
const bundleTTL = time.Hour

// bundle collects what a chat sent since the last /invia or /annulla.
type bundle struct {
	mu          sync.Mutex
	audio       []byte
	audioName   string
	attachments []types.Attachment
	lastAt      time.Time
}

// sessions is chatID -> *bundle.
type sessions struct {
	m   sync.Map
	now func() time.Time
}

func (s *sessions) get(chatID int64) *bundle {
	now := s.now()
	v, _ := s.m.LoadOrStore(chatID, &bundle{lastAt: now})
	b := v.(*bundle)
	b.mu.Lock()
	if now.Sub(b.lastAt) > bundleTTL {
		b.audio, b.audioName, b.attachments = nil, "", nil
	}
	b.lastAt = now
	b.mu.Unlock()
	return b
}

func (s *sessions) setAudio(chatID int64, name string, data []byte) (replaced bool) {
	b := s.get(chatID)
	b.mu.Lock()
	defer b.mu.Unlock()
	replaced = b.audio != nil
	b.audio, b.audioName = data, name
	return replaced
}

func (s *sessions) addAttachment(chatID int64, a types.Attachment) int {
	b := s.get(chatID)
	b.mu.Lock()
	defer b.mu.Unlock()
	b.attachments = append(b.attachments, a)
	return len(b.attachments)
}

// take removes and returns the pending submission of chatID.
func (s *sessions) take(chatID int64) (types.Submission, bool) {
	v, ok := s.m.LoadAndDelete(chatID)
	if !ok {
		return types.Submission{}, false
	}
	b := v.(*bundle)
	b.mu.Lock()
	defer b.mu.Unlock()
	if s.now().Sub(b.lastAt) > bundleTTL || (b.audio == nil && len(b.attachments) == 0) {
		return types.Submission{}, false
	}
	return types.Submission{Audio: b.audio, AudioName: b.audioName, Attachments: b.attachments}, true
}

func (s *sessions) clear(chatID int64) bool {
	_, ok := s.m.LoadAndDelete(chatID)
	return ok
}

// status reports whether audio is pending and how many files are attached.
func (s *sessions) status(chatID int64) (bool, int) {
	v, ok := s.m.Load(chatID)
	if !ok {
		return false, 0
	}
	b := v.(*bundle)
	b.mu.Lock()
	defer b.mu.Unlock()
	if s.now().Sub(b.lastAt) > bundleTTL {
		return false, 0
	}
	return b.audio != nil, len(b.attachments)
}
