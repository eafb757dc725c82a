// Package session holds research sessions: the topic, the session's API
// key, the current research artifact, and the Q&A conversation. Each
// session owns its own copies; nothing is shared between sessions.
package session

import (
	"sync"
	"time"

	"github.com/codeready-toolchain/scout/pkg/credential"
)

// State is the main lifecycle state of a research session.
type State string

const (
	StateIdle            State = "idle"
	StateReportRequested State = "report_requested"
	StateResearching     State = "researching"
	StateMerging         State = "merging"
	StateArtifactReady   State = "artifact_ready"
	StateFailed          State = "failed"
)

// Artifact is the merged research document of one report run. Immutable
// once stored; a new report run supersedes it with a new value.
type Artifact struct {
	Topic   string `json:"topic"`
	Content string `json:"content"`

	// Degraded is set when the merge ran with an unavailable input
	// (lenient merge policy). Unavailable names the missing inputs.
	Degraded    bool     `json:"degraded"`
	Unavailable []string `json:"unavailable,omitempty"`

	// Path of the audit file; empty when writing it failed.
	Path      string    `json:"path,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Session is one research session. Safe for concurrent use.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu        sync.RWMutex
	topic     string
	apiKey    string
	state     State
	lastError string
	artifact  *Artifact
	news      string
	summary   string
	updatedAt time.Time

	conversation *Conversation

	// runMu serializes report runs of this session.
	runMu sync.Mutex
}

func newSession(id string, now time.Time) *Session {
	s := &Session{
		ID:        id,
		CreatedAt: now,
		state:     StateIdle,
		updatedAt: now,
	}
	s.conversation = &Conversation{onChange: s.markActive}
	return s
}

// Topic returns the current research topic.
func (s *Session) Topic() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.topic
}

// SetTopic changes the topic. The current artifact stays until a new
// report supersedes it.
func (s *Session) SetTopic(topic string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.topic = topic
	s.touch()
}

// APIKey returns the session's own API key, or "".
func (s *Session) APIKey() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.apiKey
}

// SetAPIKey stores a validated key and returns the key it replaced.
func (s *Session) SetAPIKey(key string) (previous string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	previous, s.apiKey = s.apiKey, key
	s.touch()
	return previous
}

// State returns the main lifecycle state.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Transition moves the session to state and clears the last error.
func (s *Session) Transition(state State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
	s.lastError = ""
	s.touch()
}

// Fail records a failed report run. A previous artifact is kept.
func (s *Session) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateFailed
	if err != nil {
		s.lastError = err.Error()
	}
	s.touch()
}

// Artifact returns the current artifact, or nil.
func (s *Session) Artifact() *Artifact {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.artifact
}

// SetArtifact supersedes the current artifact and the summary derived from
// it, and moves the session to StateArtifactReady.
func (s *Session) SetArtifact(a *Artifact, news string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.artifact = a
	s.news = news
	s.summary = ""
	s.state = StateArtifactReady
	s.lastError = ""
	s.touch()
}

// News returns the latest news digest.
func (s *Session) News() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.news
}

// SetNews stores a news digest fetched on its own.
func (s *Session) SetNews(news string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.news = news
	s.touch()
}

// Summary returns the summary of the current artifact.
func (s *Session) Summary() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.summary
}

// SetSummary stores a summary of artifact. It is dropped when artifact has
// been superseded in the meantime.
func (s *Session) SetSummary(artifact *Artifact, summary string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.artifact != artifact {
		return false
	}
	s.summary = summary
	s.touch()
	return true
}

// Conversation returns the session's Q&A store.
func (s *Session) Conversation() *Conversation {
	return s.conversation
}

// BeginRun serializes report runs of the session. Call the returned
// function when the run ends.
func (s *Session) BeginRun() (end func()) {
	s.runMu.Lock()
	return s.runMu.Unlock
}

// UpdatedAt returns the time of the last change.
func (s *Session) UpdatedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updatedAt
}

// markActive records activity that did not change session fields, such as
// a Q&A exchange.
func (s *Session) markActive() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
}

func (s *Session) touch() {
	s.updatedAt = time.Now()
}

// View is a read-only snapshot of a session for API responses. The API key
// only appears masked.
type View struct {
	ID        string    `json:"id"`
	Topic     string    `json:"topic"`
	State     State     `json:"state"`
	Error     string    `json:"error,omitempty"`
	APIKey    string    `json:"api_key,omitempty"`
	Artifact  *Artifact `json:"artifact,omitempty"`
	News      string    `json:"news,omitempty"`
	Summary   string    `json:"summary,omitempty"`
	Turns     []Turn    `json:"conversation"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Snapshot returns a View of the session.
func (s *Session) Snapshot() View {
	s.mu.RLock()
	v := View{
		ID:        s.ID,
		Topic:     s.topic,
		State:     s.state,
		Error:     s.lastError,
		Artifact:  s.artifact,
		News:      s.news,
		Summary:   s.summary,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.updatedAt,
	}
	if s.apiKey != "" {
		v.APIKey = credential.Mask(s.apiKey)
	}
	s.mu.RUnlock()

	v.Turns = s.conversation.Turns()
	return v
}
