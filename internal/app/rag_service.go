package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"ragchat/internal/ai"
	"ragchat/internal/config"
	"ragchat/internal/model"
	"ragchat/internal/rag"
)

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrDocumentNotFound = errors.New("document not found")
	ErrCorpusEmpty      = errors.New("no indexed segments, upload a document first")
)

const sourcePreviewRunes = 300

// RAGService composes chunking, embedding, retrieval and generation into the
// four corpus operations: ingest, ask, summarize and similarity check.
type RAGService struct {
	docStore  DocumentStore
	segStore  SegmentStore
	embedder  EmbeddingProvider
	generator AnswerProvider
	embCache  EmbeddingCache    // optional
	queryLogs QueryLogPublisher // optional

	chunker *rag.Chunker
	cfg     config.RAGConfig
}

func NewRAGService(
	docStore DocumentStore,
	segStore SegmentStore,
	embedder EmbeddingProvider,
	generator AnswerProvider,
	embCache EmbeddingCache,
	queryLogs QueryLogPublisher,
	cfg config.RAGConfig,
) (*RAGService, error) {
	chunker, err := rag.NewChunker(cfg.ChunkSize, cfg.ChunkOverlap)
	if err != nil {
		return nil, fmt.Errorf("build chunker failed: %w", err)
	}
	return &RAGService{
		docStore:  docStore,
		segStore:  segStore,
		embedder:  embedder,
		generator: generator,
		embCache:  embCache,
		queryLogs: queryLogs,
		chunker:   chunker,
		cfg:       cfg,
	}, nil
}

// IngestInput carries extracted document text plus metadata.
type IngestInput struct {
	Title        string
	OriginalName string
	Category     string
	Tags         []string
	Text         string
}

type IngestResult struct {
	Document   model.Document `json:"document"`
	ChunkCount int            `json:"chunk_count"`
}

// Ingest splits the text, embeds each chunk and persists the document with
// its segments. Embedding within a batch runs concurrently; batches persist
// in chunk order. Indexing is best-effort: a failure mid-loop stops further
// processing and is reported, but segments already written stay in place.
func (s *RAGService) Ingest(ctx context.Context, input IngestInput) (*IngestResult, error) {
	text := strings.TrimSpace(input.Text)
	if text == "" {
		return nil, fmt.Errorf("%w: no extractable text", ErrInvalidInput)
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		title = strings.TrimSpace(input.OriginalName)
	}
	if title == "" {
		title = "Untitled"
	}

	chunks := s.chunker.Chunk(text)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: no extractable text", ErrInvalidInput)
	}

	doc := &model.Document{
		Title:        title,
		OriginalName: strings.TrimSpace(input.OriginalName),
		Category:     strings.TrimSpace(input.Category),
	}
	doc.SetTags(input.Tags)
	if err := s.docStore.Create(ctx, doc); err != nil {
		return nil, err
	}

	batchSize := s.cfg.EmbedBatchSize
	if batchSize <= 0 {
		batchSize = 10
	}

	persisted := 0
	for start := 0; start < len(chunks); start += batchSize {
		end := start + batchSize
		if end > len(chunks) {
			end = len(chunks)
		}

		segments, err := s.embedBatch(ctx, doc.ID, chunks, start, end)
		if err != nil {
			return nil, fmt.Errorf("indexed %d of %d chunks for document %d: %w",
				persisted, len(chunks), doc.ID, err)
		}
		if err := s.segStore.CreateBatch(ctx, segments); err != nil {
			return nil, fmt.Errorf("indexed %d of %d chunks for document %d: %w",
				persisted, len(chunks), doc.ID, err)
		}
		persisted = end
	}

	return &IngestResult{
		Document:   *doc,
		ChunkCount: len(chunks),
	}, nil
}

// embedBatch embeds chunks[start:end] concurrently. Each segment keeps the
// chunk's original index in Seq, so storage order is independent of which
// embedding call finishes first.
func (s *RAGService) embedBatch(ctx context.Context, documentID uint, chunks []string, start, end int) ([]model.Segment, error) {
	segments := make([]model.Segment, end-start)

	g, groupCtx := errgroup.WithContext(ctx)
	if s.cfg.EmbedConcurrency > 0 {
		g.SetLimit(s.cfg.EmbedConcurrency)
	}
	for i := start; i < end; i++ {
		i := i
		g.Go(func() error {
			vec, err := s.embedder.Embed(groupCtx, chunks[i])
			if err != nil {
				return fmt.Errorf("embed chunk %d failed: %w", i, err)
			}
			seg := model.Segment{
				DocumentID: documentID,
				Seq:        i,
				Text:       chunks[i],
			}
			seg.SetEmbedding(vec)
			segments[i-start] = seg
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return segments, nil
}

type AskInput struct {
	Question   string
	DocumentID uint // 0 = whole corpus
}

// Source is one retrieved segment backing an answer, with its text trimmed
// to a preview.
type Source struct {
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}

type AskResult struct {
	Answer  string   `json:"answer"`
	Sources []Source `json:"sources"`
}

// Ask retrieves the most similar segments, assembles them into a context
// block and has the chat model answer from that context alone.
func (s *RAGService) Ask(ctx context.Context, input AskInput) (*AskResult, error) {
	started := time.Now()

	question := strings.TrimSpace(input.Question)
	if question == "" {
		return nil, fmt.Errorf("%w: question is required", ErrInvalidInput)
	}

	segments, err := s.resolveSegments(ctx, input.DocumentID)
	if err != nil {
		return nil, err
	}

	queryVec, err := s.embedQuery(ctx, question)
	if err != nil {
		return nil, err
	}

	ranked, err := rag.Rank(queryVec, segments, s.cfg.TopK)
	if err != nil {
		return nil, err
	}

	blocks := make([]string, len(ranked))
	for i, r := range ranked {
		blocks[i] = fmt.Sprintf("Chunk %d (similarity %.3f):\n%s", i+1, r.Score, r.Segment.Text)
	}
	contextBlock := strings.Join(blocks, "\n\n")

	answer, err := s.generator.GenerateAnswer(ctx, question, contextBlock)
	if err != nil {
		return nil, err
	}

	sources := make([]Source, len(ranked))
	for i, r := range ranked {
		sources[i] = Source{
			Text:  truncateRunes(r.Segment.Text, sourcePreviewRunes),
			Score: r.Score,
		}
	}

	s.logQuery(ctx, "ask", input.DocumentID, question, answer, started)

	return &AskResult{
		Answer:  strings.TrimSpace(answer),
		Sources: sources,
	}, nil
}

type SummarizeInput struct {
	DocumentID uint // 0 = whole corpus
}

type SummarizeResult struct {
	Summary string `json:"summary"`
}

// Summarize joins the first SummaryMaxSegments segments in storage order and
// asks the chat model for a bullet-point summary. Selection is deliberately
// positional rather than similarity-ranked: this is a bulk summary of the
// document's opening content, not a query-driven one.
func (s *RAGService) Summarize(ctx context.Context, input SummarizeInput) (*SummarizeResult, error) {
	started := time.Now()

	segments, err := s.resolveSegments(ctx, input.DocumentID)
	if err != nil {
		return nil, err
	}

	limit := s.cfg.SummaryMaxSegments
	if limit <= 0 {
		limit = 40
	}
	if limit > len(segments) {
		limit = len(segments)
	}

	texts := make([]string, limit)
	for i := 0; i < limit; i++ {
		texts[i] = segments[i].Text
	}
	combined := strings.Join(texts, "\n\n")

	summary, err := s.generator.Summarize(ctx, combined)
	if err != nil {
		return nil, err
	}

	s.logQuery(ctx, "summarize", input.DocumentID, "", summary, started)

	return &SummarizeResult{Summary: strings.TrimSpace(summary)}, nil
}

type SimilarityInput struct {
	Text       string
	DocumentID uint // 0 = whole corpus
}

// SimilarityMatch is one nearest segment with its raw cosine score.
type SimilarityMatch struct {
	Chunk      string  `json:"chunk"`
	Similarity float64 `json:"similarity"`
}

type SimilarityResult struct {
	Results []SimilarityMatch `json:"results"`
}

// CheckSimilarity returns the stored segments closest to the input text,
// without any context assembly or generation.
func (s *RAGService) CheckSimilarity(ctx context.Context, input SimilarityInput) (*SimilarityResult, error) {
	started := time.Now()

	text := strings.TrimSpace(input.Text)
	if text == "" {
		return nil, fmt.Errorf("%w: text is required", ErrInvalidInput)
	}

	segments, err := s.resolveSegments(ctx, input.DocumentID)
	if err != nil {
		return nil, err
	}

	queryVec, err := s.embedQuery(ctx, text)
	if err != nil {
		return nil, err
	}

	ranked, err := rag.Rank(queryVec, segments, s.cfg.SimilarityTopK)
	if err != nil {
		return nil, err
	}

	matches := make([]SimilarityMatch, len(ranked))
	for i, r := range ranked {
		matches[i] = SimilarityMatch{
			Chunk:      r.Segment.Text,
			Similarity: r.Score,
		}
	}

	s.logQuery(ctx, "similarity", input.DocumentID, truncateRunes(text, sourcePreviewRunes), "", started)

	return &SimilarityResult{Results: matches}, nil
}

// resolveSegments loads the candidate set. The empty-corpus check runs here,
// before any provider call is made.
func (s *RAGService) resolveSegments(ctx context.Context, documentID uint) ([]model.Segment, error) {
	if documentID != 0 {
		doc, err := s.docStore.GetByID(ctx, documentID)
		if err != nil {
			return nil, err
		}
		if doc == nil {
			return nil, ErrDocumentNotFound
		}
	}

	segments, err := s.segStore.Find(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if len(segments) == 0 {
		return nil, ErrCorpusEmpty
	}
	return segments, nil
}

// embedQuery embeds read-path input text, consulting the cache first and
// retrying transient provider failures a bounded number of times.
func (s *RAGService) embedQuery(ctx context.Context, text string) ([]float32, error) {
	if s.embCache != nil {
		vec, ok, err := s.embCache.Get(ctx, text)
		if err != nil {
			log.Printf("embedding cache get failed: %v", err)
		} else if ok {
			return vec, nil
		}
	}

	var vec []float32
	var err error
	for attempt := 0; attempt <= s.cfg.EmbedRetries; attempt++ {
		vec, err = s.embedder.Embed(ctx, text)
		if err == nil {
			break
		}
		if !errors.Is(err, ai.ErrUnavailable) || ctx.Err() != nil {
			break
		}
	}
	if err != nil {
		return nil, err
	}

	if s.embCache != nil {
		if err := s.embCache.Set(ctx, text, vec); err != nil {
			log.Printf("embedding cache set failed: %v", err)
		}
	}
	return vec, nil
}

func (s *RAGService) logQuery(ctx context.Context, operation string, documentID uint, query, answer string, started time.Time) {
	if s.queryLogs == nil {
		return
	}
	entry := model.QueryLog{
		Operation:  operation,
		DocumentID: documentID,
		Query:      query,
		Answer:     truncateRunes(answer, 2000),
		DurationMS: time.Since(started).Milliseconds(),
	}
	if err := s.queryLogs.Publish(ctx, entry); err != nil {
		log.Printf("publish query log failed: %v", err)
	}
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
