package domain

type RetrievedChunk struct {
	DocID      string         `json:"doc_id"`
	ChunkIndex int            `json:"chunk_index"`
	Text       string         `json:"chunk_text"`
	Metadata   map[string]any `json:"metadata"`
	Similarity float64        `json:"similarity"`
}

// Source is the caller-facing citation for a retrieved chunk: a truncated
// preview rather than the full text.
type Source struct {
	Content    string         `json:"content"`
	Metadata   map[string]any `json:"metadata"`
	Similarity float64        `json:"similarity_score"`
}

type Answer struct {
	Text           string   `json:"answer"`
	Sources        []Source `json:"sources"`
	ChunkCount     int      `json:"chunk_count"`
	ResponseTimeMs int64    `json:"response_time_ms"`
}

type AnswerEventType string

const (
	EventSources  AnswerEventType = "sources"
	EventAnswer   AnswerEventType = "answer"
	EventMetadata AnswerEventType = "metadata"
)

// AnswerEvent is one element of the streaming answer: sources first (when
// retrieval found anything), then the answer text, then final metadata.
type AnswerEvent struct {
	Type    AnswerEventType `json:"type"`
	Content any             `json:"content"`
}

type AnswerMetadata struct {
	ResponseTimeMs int64 `json:"response_time_ms"`
	ChunkCount     int   `json:"chunk_count"`
}
