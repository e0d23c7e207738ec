package rag

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"ragchat/internal/model"
)

// ErrDimensionMismatch reports that a stored embedding's length disagrees
// with the query embedding's length. Scoring must abort rather than truncate
// or pad vectors, since a partial dot product is meaningless.
var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

// ScoredSegment is a transient pairing of a stored segment with its
// similarity to the query. It is never persisted.
type ScoredSegment struct {
	Segment model.Segment `json:"segment"`
	Score   float64       `json:"score"`
}

// CosineSimilarity returns the cosine of the angle between a and b, in
// [-1, 1]. If either vector has zero norm the score is 0 by policy, so a
// degenerate embedding never poisons a ranking with NaN.
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrDimensionMismatch, len(a), len(b))
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}

// Rank scores every candidate against the query embedding and returns the
// min(topK, len(candidates)) best, highest score first. Ties keep the
// candidates' original relative order. The scan is exhaustive: the corpus is
// expected to stay small enough that O(n*d) is acceptable.
func Rank(query []float32, candidates []model.Segment, topK int) ([]ScoredSegment, error) {
	if topK <= 0 || len(candidates) == 0 {
		return nil, nil
	}

	scored := make([]ScoredSegment, len(candidates))
	for i := range candidates {
		score, err := CosineSimilarity(query, candidates[i].EmbeddingVector())
		if err != nil {
			return nil, fmt.Errorf("score segment %d failed: %w", candidates[i].ID, err)
		}
		scored[i] = ScoredSegment{Segment: candidates[i], Score: score}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if topK > len(scored) {
		topK = len(scored)
	}
	return scored[:topK], nil
}
