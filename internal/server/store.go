package server

import (
	"sync"
	"time"

	"github.com/Zuo-Peng/chatlens/internal/filter"
	"github.com/Zuo-Peng/chatlens/internal/parse"
	"github.com/google/uuid"
)

// Upload is one parsed export. Messages are never modified after Put;
// requests work on filtered copies.
type Upload struct {
	ID       string
	Name     string
	Messages []parse.Message
	Created  time.Time
}

// UploadInfo is the JSON description of an upload.
type UploadInfo struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Messages int      `json:"messages"`
	Users    []string `json:"users"`
	From     string   `json:"from"`
	To       string   `json:"to"`
}

func (u *Upload) Info() UploadInfo {
	info := UploadInfo{
		ID:       u.ID,
		Name:     u.Name,
		Messages: len(u.Messages),
		Users:    filter.UserOptions(u.Messages),
	}
	if from, to, err := filter.DateBounds(u.Messages); err == nil {
		info.From = from.Format(dateLayout)
		info.To = to.Format(dateLayout)
	}
	return info
}

// Store holds uploads in memory for the lifetime of the process.
type Store struct {
	mu      sync.RWMutex
	uploads map[string]*Upload
}

func NewStore() *Store {
	return &Store{uploads: make(map[string]*Upload)}
}

func (s *Store) Put(name string, msgs []parse.Message) *Upload {
	u := &Upload{
		ID:       uuid.NewString(),
		Name:     name,
		Messages: msgs,
		Created:  time.Now(),
	}
	s.mu.Lock()
	s.uploads[u.ID] = u
	s.mu.Unlock()
	return u
}

func (s *Store) Get(id string) (*Upload, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.uploads[id]
	return u, ok
}

func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.uploads[id]; !ok {
		return false
	}
	delete(s.uploads, id)
	return true
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.uploads)
}
