package model

import (
	"encoding/json"
	"time"
)

// Document is an ingested file. Deleting a document cascades to its segments.
type Document struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Title        string    `gorm:"size:256;not null" json:"title"`
	OriginalName string    `gorm:"size:256" json:"original_name,omitempty"`
	Category     string    `gorm:"size:128" json:"category"`
	Tags         string    `gorm:"type:text" json:"-"` // JSON array of strings
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TagList returns the parsed tags; empty on parse error.
func (d *Document) TagList() []string {
	if d.Tags == "" {
		return nil
	}
	var tags []string
	_ = json.Unmarshal([]byte(d.Tags), &tags)
	return tags
}

// SetTags stores the tags as JSON, preserving order.
func (d *Document) SetTags(tags []string) {
	if len(tags) == 0 {
		d.Tags = "[]"
		return
	}
	b, _ := json.Marshal(tags)
	d.Tags = string(b)
}

// DocumentSummary pairs a document with the number of segments it owns.
type DocumentSummary struct {
	Document     Document `json:"document"`
	Tags         []string `json:"tags"`
	SegmentCount int64    `json:"segment_count"`
}
