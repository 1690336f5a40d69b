// Package session implements the in-memory conversation store.
//
// Sessions live for the process lifetime only. The store is sharded so that
// traffic on unrelated sessions never contends on the same lock, while all
// mutations of a single session serialize on its shard. Concurrent writers
// to the same session follow last-writer-wins semantics.
package session

import (
	"errors"
	"hash/fnv"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a session id is not present in the store.
var ErrNotFound = errors.New("session not found")

const shardCount = 16

// Message is one user/assistant exchange inside a session.
type Message struct {
	UserMessage string    `json:"user_message"`
	BotResponse string    `json:"bot_response"`
	Reasoning   string    `json:"reasoning"`
	Timestamp   time.Time `json:"timestamp"`
}

// Session is the full conversation state for one session id.
type Session struct {
	ID           string    `json:"session_id"`
	CreatedAt    time.Time `json:"created_at"`
	LastActivity time.Time `json:"last_activity"`
	TeamUsed     string    `json:"team_used"`
	Messages     []Message `json:"messages"`
}

// Summary is the listing view of a session, without message bodies.
type Summary struct {
	SessionID    string    `json:"session_id"`
	CreatedAt    time.Time `json:"created_at"`
	LastActivity time.Time `json:"last_activity"`
	MessageCount int       `json:"message_count"`
	TeamUsed     string    `json:"team_used"`
}

type shard struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// Store is a sharded in-memory session store safe for concurrent use.
type Store struct {
	shards [shardCount]*shard
}

// NewStore returns an empty Store.
func NewStore() *Store {
	s := &Store{}
	for i := range s.shards {
		s.shards[i] = &shard{sessions: make(map[string]*Session)}
	}
	return s
}

func (s *Store) shardFor(id string) *shard {
	h := fnv.New32a()
	h.Write([]byte(id))
	return s.shards[h.Sum32()%shardCount]
}

// Resolve returns id when it names an existing session; otherwise it
// allocates a fresh session (new uuid, team "global") and returns its id.
// An empty id always allocates.
func (s *Store) Resolve(id string) string {
	if id != "" {
		sh := s.shardFor(id)
		sh.mu.RLock()
		_, ok := sh.sessions[id]
		sh.mu.RUnlock()
		if ok {
			return id
		}
	}

	newID := uuid.New().String()
	now := time.Now()
	sh := s.shardFor(newID)
	sh.mu.Lock()
	sh.sessions[newID] = &Session{
		ID:           newID,
		CreatedAt:    now,
		LastActivity: now,
		TeamUsed:     "global",
		Messages:     []Message{},
	}
	sh.mu.Unlock()
	return newID
}

// Record appends an exchange to the session and refreshes its last activity
// and team. Recording against an unknown id is a no-op: streams for expired
// or fabricated sessions must not resurrect state.
func (s *Store) Record(id, userMessage, botResponse, reasoning, team string) {
	sh := s.shardFor(id)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	sess, ok := sh.sessions[id]
	if !ok {
		return
	}
	now := time.Now()
	sess.Messages = append(sess.Messages, Message{
		UserMessage: userMessage,
		BotResponse: botResponse,
		Reasoning:   reasoning,
		Timestamp:   now,
	})
	sess.LastActivity = now
	sess.TeamUsed = team
}

// List returns summaries of all sessions ordered by last activity,
// most recent first.
func (s *Store) List() []Summary {
	out := make([]Summary, 0)
	for _, sh := range s.shards {
		sh.mu.RLock()
		for _, sess := range sh.sessions {
			out = append(out, Summary{
				SessionID:    sess.ID,
				CreatedAt:    sess.CreatedAt,
				LastActivity: sess.LastActivity,
				MessageCount: len(sess.Messages),
				TeamUsed:     sess.TeamUsed,
			})
		}
		sh.mu.RUnlock()
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].LastActivity.After(out[j].LastActivity)
	})
	return out
}

// Get returns a deep copy of the session, or ErrNotFound.
func (s *Store) Get(id string) (Session, error) {
	sh := s.shardFor(id)
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	sess, ok := sh.sessions[id]
	if !ok {
		return Session{}, ErrNotFound
	}
	cp := *sess
	cp.Messages = make([]Message, len(sess.Messages))
	copy(cp.Messages, sess.Messages)
	return cp, nil
}

// Delete removes the session, or returns ErrNotFound.
func (s *Store) Delete(id string) error {
	sh := s.shardFor(id)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	if _, ok := sh.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(sh.sessions, id)
	return nil
}

// Count returns the number of live sessions.
func (s *Store) Count() int {
	n := 0
	for _, sh := range s.shards {
		sh.mu.RLock()
		n += len(sh.sessions)
		sh.mu.RUnlock()
	}
	return n
}
