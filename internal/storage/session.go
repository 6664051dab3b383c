package storage

import (
	"context"
	"sync"

	"github.com/xxxsen/atomdocs/internal/model"
	appErr "github.com/xxxsen/atomdocs/internal/pkg/errors"
)

// sessionStore keeps the site in process memory. Content lives as long as
// the server process and starts empty.
type sessionStore struct {
	mu     sync.RWMutex
	data   *model.SiteData
	closed bool
}

func init() {
	Register("session", createSessionStore)
}

func createSessionStore(_ interface{}) (Store, error) {
	return NewSessionStore(), nil
}

func NewSessionStore() Store {
	return &sessionStore{data: model.EmptySiteData()}
}

func (s *sessionStore) Type() string {
	return "session"
}

func (s *sessionStore) Read(_ context.Context) (*model.SiteData, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, appErr.ErrClosed
	}
	return s.data.Clone(), nil
}

func (s *sessionStore) Write(_ context.Context, data *model.SiteData) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return appErr.ErrClosed
	}
	s.data = data.Clone().Normalize()
	return nil
}

func (s *sessionStore) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}
