package memory

import (
	"time"

	"ai-orchestrator-be/pkg/llm"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// SessionState carries the in-flight conversation for one chat session.
type SessionState struct {
	Id       uuid.UUID
	Title    string
	History  []llm.Message
	LastSeen time.Time
}

type SessionRepository struct {
	cache *cache.Cache
}

func NewSessionRepository() *SessionRepository {
	// Default expiration of 1 hour, purge expired items every 10 minutes
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &SessionRepository{
		cache: c,
	}
}

func (r *SessionRepository) Save(state *SessionState) {
	state.LastSeen = time.Now()
	r.cache.Set(state.Id.String(), state, cache.DefaultExpiration)
}

func (r *SessionRepository) Get(sessionId uuid.UUID) (*SessionState, bool) {
	if x, found := r.cache.Get(sessionId.String()); found {
		return x.(*SessionState), true
	}
	return nil, false
}

func (r *SessionRepository) Delete(sessionId uuid.UUID) {
	r.cache.Delete(sessionId.String())
}
