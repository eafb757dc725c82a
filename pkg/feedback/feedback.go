// Package feedback turns free-text user feedback into a short,
// tone-appropriate acknowledgment. Sentiment is classified with a
// structured LLM reply validated against a closed enum; anything the
// classifier cannot settle falls back to a static response.
package feedback

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/codeready-toolchain/scout/pkg/agent"
	"github.com/codeready-toolchain/scout/pkg/agent/controller"
	"github.com/codeready-toolchain/scout/pkg/agent/prompt"
	"github.com/codeready-toolchain/scout/pkg/config"
	"github.com/codeready-toolchain/scout/pkg/metrics"
)

// FallbackResponse is returned whenever no sentiment-specific reply could
// be produced.
const FallbackResponse = "Thank you for your feedback! We appreciate your input and will use it to improve."

// Sentiment is the closed set of classifier outcomes.
type Sentiment string

const (
	Positive Sentiment = "positive"
	Negative Sentiment = "negative"
)

var (
	ErrNotJSON             = errors.New("reply is not a JSON object")
	ErrMissingSentiment    = errors.New(`reply has no "sentiment" field`)
	ErrUnexpectedSentiment = errors.New("sentiment must be positive or negative")
)

// ClassificationError reports feedback whose sentiment could not be
// established. Raw is the last rejected reply, empty when the LLM call
// itself failed.
type ClassificationError struct {
	Raw string
	Err error
}

func (e *ClassificationError) Error() string {
	if e.Raw == "" {
		return fmt.Sprintf("classifying feedback: %v", e.Err)
	}
	return fmt.Sprintf("classifying feedback: %v (reply %q)", e.Err, e.Raw)
}

func (e *ClassificationError) Unwrap() error {
	return e.Err
}

// Record is one feedback submission and the reply it received.
type Record struct {
	Text      string    `json:"text"`
	Rating    int       `json:"rating,omitempty"`
	Sentiment Sentiment `json:"sentiment,omitempty"`
	Response  string    `json:"response"`
	Fallback  bool      `json:"fallback"`
}

// Classifier classifies feedback and writes the reply.
type Classifier struct {
	llm      agent.LLMClient
	attempts int
	single   agent.Controller
}

// NewClassifier creates a classifier over an LLM client. cfg may be nil.
func NewClassifier(cfg *config.FeedbackConfig, llm agent.LLMClient) *Classifier {
	attempts := 2
	if cfg != nil && cfg.ClassificationAttempts > 0 {
		attempts = cfg.ClassificationAttempts
	}
	return &Classifier{
		llm:      llm,
		attempts: attempts,
		single:   controller.NewSingleCallController(),
	}
}

// Classify asks for a JSON sentiment and validates it. A rejected reply is
// re-prompted with the reason, up to the configured number of attempts. An
// LLM failure is not retried.
func (c *Classifier) Classify(ctx context.Context, text string) (Sentiment, error) {
	task := prompt.ClassifyTask(text)
	var (
		history []agent.ConversationMessage
		lastErr error
		raw     string
	)
	for attempt := 1; attempt <= c.attempts; attempt++ {
		reply, err := c.complete(ctx, "feedback-classify", task, history, true)
		if err != nil {
			return "", &ClassificationError{Err: err}
		}
		s, err := ParseSentiment(reply)
		if err == nil {
			return s, nil
		}
		slog.Debug("Rejected sentiment classification", "attempt", attempt, "error", err)
		raw, lastErr = reply, err
		history = append(history,
			agent.ConversationMessage{Role: agent.RoleUser, Content: task},
			agent.ConversationMessage{Role: agent.RoleAssistant, Content: reply})
		task = prompt.ClassifyRetry(reply, err.Error())
	}
	return "", &ClassificationError{Raw: raw, Err: lastErr}
}

// Respond classifies the feedback and replies in the matching tone. It
// never fails: any problem yields FallbackResponse with Fallback set.
func (c *Classifier) Respond(ctx context.Context, text string, rating int) Record {
	rec := Record{Text: text, Rating: rating}
	if strings.TrimSpace(text) == "" {
		return fallback(rec, "empty feedback")
	}

	s, err := c.Classify(ctx, text)
	if err != nil {
		slog.Warn("Feedback classification failed", "error", err)
		return fallback(rec, "unclassified")
	}
	rec.Sentiment = s

	var task string
	switch s {
	case Positive:
		task = prompt.PositiveReplyTask(text)
	case Negative:
		task = prompt.NegativeReplyTask(text)
	default:
		return fallback(rec, "unknown sentiment")
	}

	reply, err := c.complete(ctx, "feedback-reply", task, nil, false)
	if err != nil {
		slog.Warn("Feedback reply failed", "sentiment", s, "error", err)
		return fallback(rec, "reply failed")
	}
	rec.Response = strings.TrimSpace(reply)
	metrics.ObserveFeedback(string(s))
	return rec
}

func fallback(rec Record, reason string) Record {
	slog.Debug("Using fallback feedback response", "reason", reason)
	rec.Response = FallbackResponse
	rec.Fallback = true
	label := string(rec.Sentiment)
	if label == "" {
		label = "unknown"
	}
	metrics.ObserveFeedback(label)
	return rec
}

func (c *Classifier) complete(ctx context.Context, name, task string, history []agent.ConversationMessage, jsonOutput bool) (string, error) {
	res, err := c.single.Run(ctx, &agent.ExecutionContext{
		ExecutionID: uuid.NewString(),
		AgentName:   name,
		Task:        task,
		History:     history,
		Config:      agent.SingleCallConfig(name, jsonOutput),
		LLMClient:   c.llm,
	})
	if err != nil {
		return "", err
	}
	if err := res.Err(); err != nil {
		return "", err
	}
	return res.FinalAnswer, nil
}

// ParseSentiment validates a classifier reply of the form
// {"sentiment": "positive"}. A fenced code block around the object is
// tolerated; anything outside the closed enum is rejected.
func ParseSentiment(reply string) (Sentiment, error) {
	body := strings.TrimSpace(reply)
	body = strings.TrimPrefix(body, "```json")
	body = strings.TrimPrefix(body, "```")
	body = strings.TrimSuffix(body, "```")

	var parsed struct {
		Sentiment *string `json:"sentiment"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(body)), &parsed); err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotJSON, err)
	}
	if parsed.Sentiment == nil {
		return "", ErrMissingSentiment
	}
	switch s := Sentiment(strings.ToLower(strings.TrimSpace(*parsed.Sentiment))); s {
	case Positive, Negative:
		return s, nil
	default:
		return "", fmt.Errorf("%w, got %q", ErrUnexpectedSentiment, *parsed.Sentiment)
	}
}
