package api

import (
	"sync"

	"github.com/google/uuid"
)

const sessionCookie = "recipe_session"

// sessionStore maps opaque cookie tokens to signed-in usernames. Sessions live
// until logout or process exit.
type sessionStore struct {
	mu    sync.Mutex
	users map[string]string
}

func newSessionStore() *sessionStore {
	return &sessionStore{users: make(map[string]string)}
}

func (s *sessionStore) create(username string) (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	token := id.String()
	s.mu.Lock()
	s.users[token] = username
	s.mu.Unlock()
	return token, nil
}

func (s *sessionStore) lookup(token string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[token]
	return user, ok
}

func (s *sessionStore) remove(token string) {
	s.mu.Lock()
	delete(s.users, token)
	s.mu.Unlock()
}
