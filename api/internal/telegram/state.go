package telegram

import (
	"sync"

	"sgpa-scan/api/internal/grades"
)

// session is the per-chat state. The sheet is only touched under mu.
type session struct {
	mu    sync.Mutex
	sheet *grades.Sheet
	// scanning is set while a photo of this chat is being read.
	scanning bool
}

func (r *Router) session(chatID int64) *session {
	v, _ := r.sessions.LoadOrStore(chatID, &session{sheet: grades.NewSheet()})
	return v.(*session)
}

func (s *session) withSheet(fn func(*grades.Sheet) string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.sheet)
}

// beginScan marks the session busy; false means a scan is already running.
func (s *session) beginScan() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.scanning {
		return false
	}
	s.scanning = true
	return true
}

func (s *session) endScan(records []grades.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scanning = false
	if records != nil {
		s.sheet.Load(records)
	}
}
