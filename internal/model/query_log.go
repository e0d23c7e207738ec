package model

import "time"

// QueryLog records one read operation against the corpus. Logs are published
// to RabbitMQ after the response is produced and persisted asynchronously.
type QueryLog struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Operation  string    `gorm:"size:32;not null;index" json:"operation"`
	DocumentID uint      `gorm:"index" json:"document_id"` // 0 = whole corpus
	Query      string    `gorm:"type:text" json:"query"`
	Answer     string    `gorm:"type:text" json:"answer"`
	DurationMS int64     `json:"duration_ms"`
	CreatedAt  time.Time `json:"created_at"`
}
