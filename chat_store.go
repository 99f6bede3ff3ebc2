package main

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// defaultConversationName is used when a new conversation is created with a
// blank name.
const defaultConversationName = "新對話"

type conversation struct {
	ID   int64
	Name string
}

type chatMessage struct {
	Role string // "user" or "bot"
	Text string
}

// chatStore keeps the chatbot history in a local sqlite file. A nil store
// behaves as an empty, read-only one.
type chatStore struct {
	db   *sql.DB
	path string
}

func openChatStore(dir string) (*chatStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	path := filepath.Join(dir, "chat.sqlite")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if err := migrateChatStore(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &chatStore{db: db, path: path}, nil
}

func migrateChatStore(db *sql.DB) error {
	statements := []string{
		`PRAGMA journal_mode=WAL;`,
		`PRAGMA foreign_keys=ON;`,
		`CREATE TABLE IF NOT EXISTS conversations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS messages (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			conversation_id INTEGER NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
			role TEXT NOT NULL,
			body TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);`,
	}
	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("chat store migration failed: %w", err)
		}
	}
	return nil
}

func (s *chatStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *chatStore) List() ([]conversation, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	rows, err := s.db.Query(`SELECT id, name FROM conversations ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []conversation
	for rows.Next() {
		var c conversation
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *chatStore) Create(name string) (conversation, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = defaultConversationName
	}
	if s == nil || s.db == nil {
		return conversation{Name: name}, nil
	}
	res, err := s.db.Exec(`INSERT INTO conversations (name) VALUES (?)`, name)
	if err != nil {
		return conversation{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return conversation{}, err
	}
	return conversation{ID: id, Name: name}, nil
}

// Rename ignores a blank name.
func (s *chatStore) Rename(id int64, name string) error {
	name = strings.TrimSpace(name)
	if s == nil || s.db == nil || name == "" {
		return nil
	}
	_, err := s.db.Exec(`UPDATE conversations SET name = ? WHERE id = ?`, name, id)
	return err
}

func (s *chatStore) Delete(id int64) error {
	if s == nil || s.db == nil {
		return nil
	}
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM messages WHERE conversation_id = ?`, id); err != nil {
		_ = tx.Rollback()
		return err
	}
	if _, err := tx.Exec(`DELETE FROM conversations WHERE id = ?`, id); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (s *chatStore) Messages(id int64) ([]chatMessage, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	rows, err := s.db.Query(`SELECT role, body FROM messages WHERE conversation_id = ? ORDER BY id ASC`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []chatMessage
	for rows.Next() {
		var m chatMessage
		if err := rows.Scan(&m.Role, &m.Text); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *chatStore) Append(id int64, msg chatMessage) error {
	if s == nil || s.db == nil {
		return nil
	}
	_, err := s.db.Exec(`INSERT INTO messages (conversation_id, role, body) VALUES (?, ?, ?)`, id, msg.Role, msg.Text)
	return err
}
