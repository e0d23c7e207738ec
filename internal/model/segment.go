package model

import (
	"encoding/json"
	"time"
)

// Segment is one chunk of a document's extracted text together with its
// embedding. Segments are immutable after creation; Seq records the chunk's
// position in the original document so storage order survives concurrent
// embedding during ingestion.
// The embedding is stored as a JSON array of float32 for portability.
type Segment struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	DocumentID uint      `gorm:"not null;index" json:"document_id"`
	Seq        int       `gorm:"not null" json:"seq"`
	Text       string    `gorm:"type:text;not null" json:"text"`
	Embedding  string    `gorm:"type:text;not null" json:"-"` // JSON array of float32
	Page       *int      `json:"page,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// EmbeddingVector returns the parsed embedding slice; empty on parse error.
func (s *Segment) EmbeddingVector() []float32 {
	if s.Embedding == "" {
		return nil
	}
	var v []float32
	_ = json.Unmarshal([]byte(s.Embedding), &v)
	return v
}

// SetEmbedding stores the embedding as JSON.
func (s *Segment) SetEmbedding(vec []float32) {
	if len(vec) == 0 {
		s.Embedding = "[]"
		return
	}
	b, _ := json.Marshal(vec)
	s.Embedding = string(b)
}
