package session

import (
	"errors"
	"sync"
	"time"
)

// Speaker identifies who produced a conversation turn.
type Speaker string

const (
	SpeakerUser      Speaker = "user"
	SpeakerAssistant Speaker = "assistant"
)

// Turn is one entry of a conversation.
type Turn struct {
	Speaker Speaker   `json:"speaker"`
	Text    string    `json:"text"`
	At      time.Time `json:"at"`
}

// ErrEmptyAnswer is returned by Exchange when the answer function returned
// blank text.
var ErrEmptyAnswer = errors.New("empty answer")

// Conversation is the append-only Q&A log of one session. Turns are never
// reordered or edited; Clear is the only way to remove them.
type Conversation struct {
	// turnMu orders exchanges and clears in request order.
	turnMu sync.Mutex

	mu    sync.RWMutex
	turns []Turn

	// onChange runs after every append or clear, outside mu.
	onChange func()
}

// Exchange answers question against the history as it stands when the
// exchange gets its turn. On success the question and answer are appended
// in that order, atomically; on failure nothing is appended.
//
// Exchanges of one conversation run one at a time, so history replays
// questions in the order they were asked.
func (c *Conversation) Exchange(question string, answer func(history []Turn) (string, error)) (string, error) {
	c.turnMu.Lock()
	defer c.turnMu.Unlock()

	reply, err := answer(c.Turns())
	if err != nil {
		return "", err
	}
	if reply == "" {
		return "", ErrEmptyAnswer
	}

	c.mu.Lock()
	now := time.Now()
	c.turns = append(c.turns,
		Turn{Speaker: SpeakerUser, Text: question, At: now},
		Turn{Speaker: SpeakerAssistant, Text: reply, At: now},
	)
	c.mu.Unlock()

	c.changed()
	return reply, nil
}

// Clear removes every turn. Idempotent. Waits for an exchange in flight.
func (c *Conversation) Clear() {
	c.turnMu.Lock()
	defer c.turnMu.Unlock()

	c.mu.Lock()
	c.turns = nil
	c.mu.Unlock()

	c.changed()
}

func (c *Conversation) changed() {
	if c.onChange != nil {
		c.onChange()
	}
}

// Turns returns a copy of the turns, oldest first.
func (c *Conversation) Turns() []Turn {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Turn, len(c.turns))
	copy(out, c.turns)
	return out
}

// Len returns the number of turns.
func (c *Conversation) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.turns)
}
