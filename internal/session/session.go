package session

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Message is one turn of a conversation.
type Message struct {
	Role      string    `json:"role"` // "user" or "assistant"
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Intent    string    `json:"intent,omitempty"`
}

// Session is the conversation history for one session id.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id,omitempty"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Manager keeps conversation history and user preferences, persisted as JSON
// files under a storage directory (one file per session plus a shared
// preferences file).
type Manager struct {
	mu           sync.RWMutex
	sessions     map[string]*Session
	userSessions map[string]string            // user id -> active session id
	preferences  map[string]map[string]string // user id -> preference map
	storagePath  string
	maxHistory   int
	expiry       time.Duration
}

// NewManager creates a session manager rooted at storagePath.
func NewManager(storagePath string, maxHistory int, expiry time.Duration) *Manager {
	m := &Manager{
		sessions:     make(map[string]*Session),
		userSessions: make(map[string]string),
		preferences:  make(map[string]map[string]string),
		storagePath:  storagePath,
		maxHistory:   maxHistory,
		expiry:       expiry,
	}

	if err := os.MkdirAll(storagePath, 0755); err != nil {
		log.Printf("Warning: failed to create session storage directory: %v", err)
	}
	m.loadPreferences()

	return m
}

// SessionFor returns the active session id for a user, creating one when the
// user has none yet.
func (m *Manager) SessionFor(userID string) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id, ok := m.userSessions[userID]; ok {
		return id
	}
	id := fmt.Sprintf("%s_%s", userID, uuid.New().String()[:8])
	m.userSessions[userID] = id
	return id
}

// AddUserMessage appends a user message to the session and persists it.
func (m *Manager) AddUserMessage(sessionID, content, intent string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session := m.getOrCreateSession(sessionID)
	session.Messages = append(session.Messages, Message{
		Role:      "user",
		Content:   content,
		Timestamp: time.Now(),
		Intent:    intent,
	})
	session.UpdatedAt = time.Now()
	m.trimHistory(session)

	return m.saveSession(session)
}

// AddAssistantMessage appends an assistant message to the session and
// persists it.
func (m *Manager) AddAssistantMessage(sessionID, content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session := m.getOrCreateSession(sessionID)
	session.Messages = append(session.Messages, Message{
		Role:      "assistant",
		Content:   content,
		Timestamp: time.Now(),
	})
	session.UpdatedAt = time.Now()
	m.trimHistory(session)

	return m.saveSession(session)
}

// History returns up to limit most recent messages of a session (all of them
// when limit <= 0).
func (m *Manager) History(sessionID string, limit int) []Message {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, ok := m.sessions[sessionID]
	if !ok {
		session = m.loadSession(sessionID)
		if session == nil {
			return []Message{}
		}
	}

	messages := session.Messages
	if limit > 0 && len(messages) > limit {
		messages = messages[len(messages)-limit:]
	}
	out := make([]Message, len(messages))
	copy(out, messages)
	return out
}

// SetPreference stores one user preference and persists the preference file.
func (m *Manager) SetPreference(userID, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	prefs, ok := m.preferences[userID]
	if !ok {
		prefs = make(map[string]string)
		m.preferences[userID] = prefs
	}
	prefs[key] = value

	return m.savePreferences()
}

// Preferences returns a copy of the stored preferences for a user.
func (m *Manager) Preferences(userID string) map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]string, len(m.preferences[userID]))
	for k, v := range m.preferences[userID] {
		out[k] = v
	}
	return out
}

// CaptureFacts extracts durable user facts from a message ("my name is ...")
// and stores them as preferences.
func (m *Manager) CaptureFacts(userID, text string) {
	// Index and slice on the same lowered string; lowering can change byte
	// offsets for some characters.
	lower := strings.ToLower(text)
	idx := strings.Index(lower, "my name is")
	if idx < 0 {
		return
	}
	name := strings.TrimSpace(lower[idx+len("my name is"):])
	name = strings.TrimRight(name, ".!?")
	if name == "" {
		return
	}
	if err := m.SetPreference(userID, "name", titleCase(name)); err != nil {
		log.Printf("Warning: failed to save name preference: %v", err)
	}
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// CleanupExpired removes sessions idle longer than the expiry window from
// memory and disk, returning how many were removed.
func (m *Manager) CleanupExpired() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-m.expiry)
	removed := 0

	for id, session := range m.sessions {
		if session.UpdatedAt.Before(cutoff) {
			delete(m.sessions, id)
			if err := os.Remove(m.sessionFile(id)); err != nil && !os.IsNotExist(err) {
				return removed, err
			}
			removed++
		}
	}

	return removed, nil
}

func (m *Manager) getOrCreateSession(sessionID string) *Session {
	session, ok := m.sessions[sessionID]
	if ok {
		return session
	}
	session = m.loadSession(sessionID)
	if session == nil {
		session = &Session{
			ID:        sessionID,
			Messages:  []Message{},
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}
	}
	m.sessions[sessionID] = session
	return session
}

func (m *Manager) trimHistory(session *Session) {
	if m.maxHistory > 0 && len(session.Messages) > m.maxHistory {
		session.Messages = session.Messages[len(session.Messages)-m.maxHistory:]
	}
}

func (m *Manager) sessionFile(sessionID string) string {
	return filepath.Join(m.storagePath, sessionID+".json")
}

func (m *Manager) loadSession(sessionID string) *Session {
	data, err := os.ReadFile(m.sessionFile(sessionID))
	if err != nil {
		return nil
	}
	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		log.Printf("Warning: failed to parse session file %s: %v", sessionID, err)
		return nil
	}
	return &session
}

func (m *Manager) saveSession(session *Session) error {
	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(m.sessionFile(session.ID), data, 0644)
}

func (m *Manager) preferencesFile() string {
	return filepath.Join(m.storagePath, "preferences.json")
}

func (m *Manager) loadPreferences() {
	data, err := os.ReadFile(m.preferencesFile())
	if err != nil {
		return
	}
	if err := json.Unmarshal(data, &m.preferences); err != nil {
		log.Printf("Warning: failed to parse preferences file: %v", err)
	}
}

func (m *Manager) savePreferences() error {
	data, err := json.MarshalIndent(m.preferences, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(m.preferencesFile(), data, 0644)
}
