package domain

// QueryLog is a write-only audit record, one per answered question.
type QueryLog struct {
	Query          string `json:"query"`
	DocID          string `json:"doc_id"`
	UserID         string `json:"user_id,omitempty"`
	ResponseTimeMs int64  `json:"response_time_ms"`
	ChunkCount     int    `json:"chunk_count"`
}

type Feedback struct {
	Query      string `json:"query"`
	Answer     string `json:"answer"`
	WasHelpful bool   `json:"was_helpful"`
	Notes      string `json:"notes,omitempty"`
	DocID      string `json:"doc_id,omitempty"`
	UserID     string `json:"user_id,omitempty"`
}
