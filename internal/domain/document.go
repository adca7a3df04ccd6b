package domain

import "time"

// Document is the metadata row kept for every ingested file. The vectors
// themselves live in the vector store under ExternalID.
type Document struct {
	ID          int64
	ExternalID  string
	Filename    string
	ContentType string
	UploadedAt  time.Time
}

type ChunkStrategy string

const (
	ChunkFixed    ChunkStrategy = "fixed"
	ChunkSentence ChunkStrategy = "sentence"
	ChunkSliding  ChunkStrategy = "sliding"
)

// RetrievedChunk is a chunk returned from vector search.
type RetrievedChunk struct {
	Text       string  `json:"text"`
	DocumentID string  `json:"document_id,omitempty"`
	ChunkID    int     `json:"chunk_id"`
	Score      float64 `json:"score"`
}

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)
