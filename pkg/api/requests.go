package api

// CreateSessionRequest is the optional body of POST /api/v1/sessions.
type CreateSessionRequest struct {
	Topic  string `json:"topic"`
	APIKey string `json:"api_key"`
}

// SetTopicRequest is the body of PUT /api/v1/sessions/:id/topic.
type SetTopicRequest struct {
	Topic string `json:"topic"`
}

// SetAPIKeyRequest is the body of PUT /api/v1/sessions/:id/api-key.
type SetAPIKeyRequest struct {
	APIKey string `json:"api_key"`
}

// AskRequest is the body of POST /api/v1/sessions/:id/questions.
type AskRequest struct {
	Question string `json:"question"`
}

// FeedbackRequest is the body of POST /api/v1/feedback. SessionID selects
// the API key the classifier uses; without it the server key is used.
type FeedbackRequest struct {
	Text      string `json:"text"`
	Rating    int    `json:"rating" binding:"omitempty,min=1,max=5"`
	SessionID string `json:"session_id"`
}
