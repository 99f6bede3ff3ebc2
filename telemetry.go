package main

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// uiEvent is one line of ui-events.ndjson.
type uiEvent struct {
	SessionID string            `json:"session_id"`
	User      string            `json:"user,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
	Event     string            `json:"event"`
	Page      string            `json:"page,omitempty"`
	RecipeID  string            `json:"recipe_id,omitempty"`
	Material  string            `json:"material_code,omitempty"`
	Extra     map[string]string `json:"extra,omitempty"`
}

type eventRecorder struct {
	path      string
	sessionID string

	mu   sync.Mutex
	user string
}

func newEventRecorder(path string) *eventRecorder {
	_ = os.MkdirAll(filepath.Dir(path), 0o755)
	return &eventRecorder{path: path, sessionID: newSessionID()}
}

func (r *eventRecorder) SetUser(user string) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.user = strings.TrimSpace(user)
	r.mu.Unlock()
}

// Emit appends event to the log file. Failures are dropped.
func (r *eventRecorder) Emit(event uiEvent) {
	if r == nil || strings.TrimSpace(event.Event) == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if event.SessionID == "" {
		event.SessionID = r.sessionID
	}
	if event.User == "" {
		event.User = r.user
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	if len(event.Extra) == 0 {
		event.Extra = nil
	}
	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	f, err := os.OpenFile(r.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return
	}
	defer f.Close()
	_, _ = f.Write(append(data, '\n'))
}

func newSessionID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err == nil {
		return hex.EncodeToString(buf)
	}
	return fmt.Sprintf("%x", time.Now().UnixNano())
}
