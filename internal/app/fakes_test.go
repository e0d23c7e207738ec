package app

import (
	"context"
	"errors"
	"sync"

	"ragchat/internal/model"
)

type fakeSegmentStore struct {
	mu       sync.Mutex
	segments []model.Segment
	nextID   uint
	failNext error
}

func (f *fakeSegmentStore) CreateBatch(_ context.Context, segments []model.Segment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNext != nil {
		err := f.failNext
		f.failNext = nil
		return err
	}
	for i := range segments {
		f.nextID++
		segments[i].ID = f.nextID
		f.segments = append(f.segments, segments[i])
	}
	return nil
}

func (f *fakeSegmentStore) Find(_ context.Context, documentID uint) ([]model.Segment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Segment
	for _, seg := range f.segments {
		if documentID == 0 || seg.DocumentID == documentID {
			out = append(out, seg)
		}
	}
	return out, nil
}

func (f *fakeSegmentStore) deleteByDocument(documentID uint) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var kept []model.Segment
	for _, seg := range f.segments {
		if seg.DocumentID != documentID {
			kept = append(kept, seg)
		}
	}
	f.segments = kept
}

type fakeDocumentStore struct {
	mu       sync.Mutex
	docs     map[uint]*model.Document
	nextID   uint
	segStore *fakeSegmentStore
}

func newFakeDocumentStore(segStore *fakeSegmentStore) *fakeDocumentStore {
	return &fakeDocumentStore{
		docs:     make(map[uint]*model.Document),
		segStore: segStore,
	}
}

func (f *fakeDocumentStore) Create(_ context.Context, doc *model.Document) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	doc.ID = f.nextID
	clone := *doc
	f.docs[doc.ID] = &clone
	return nil
}

func (f *fakeDocumentStore) GetByID(_ context.Context, id uint) (*model.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, ok := f.docs[id]
	if !ok {
		return nil, nil
	}
	clone := *doc
	return &clone, nil
}

func (f *fakeDocumentStore) Update(_ context.Context, doc *model.Document) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.docs[doc.ID]; !ok {
		return errors.New("update missing document")
	}
	clone := *doc
	f.docs[doc.ID] = &clone
	return nil
}

func (f *fakeDocumentStore) List(_ context.Context) ([]model.DocumentSummary, error) {
	f.mu.Lock()
	docs := make([]*model.Document, 0, len(f.docs))
	for _, doc := range f.docs {
		docs = append(docs, doc)
	}
	f.mu.Unlock()

	var summaries []model.DocumentSummary
	for _, doc := range docs {
		segs, _ := f.segStore.Find(context.Background(), doc.ID)
		summaries = append(summaries, model.DocumentSummary{
			Document:     *doc,
			Tags:         doc.TagList(),
			SegmentCount: int64(len(segs)),
		})
	}
	return summaries, nil
}

func (f *fakeDocumentStore) DeleteWithSegments(_ context.Context, id uint) error {
	f.mu.Lock()
	delete(f.docs, id)
	f.mu.Unlock()
	f.segStore.deleteByDocument(id)
	return nil
}

// fakeEmbedder returns a fixed vector per call and can be told to fail from
// a given call onward.
type fakeEmbedder struct {
	mu        sync.Mutex
	vector    []float32
	vectors   map[string][]float32
	calls     int
	failFrom  int // 1-based call number to start failing at; 0 = never
	failWith  error
	failTimes int // with failFrom, how many calls fail; 0 = all subsequent
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failFrom > 0 && f.calls >= f.failFrom {
		if f.failTimes == 0 || f.calls < f.failFrom+f.failTimes {
			return nil, f.failWith
		}
	}
	if vec, ok := f.vectors[text]; ok {
		return vec, nil
	}
	return f.vector, nil
}

func (f *fakeEmbedder) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeGenerator struct {
	mu           sync.Mutex
	answer       string
	summary      string
	lastQuestion string
	lastContext  string
	lastDocument string
	answerCalls  int
	summaryCalls int
}

func (f *fakeGenerator) GenerateAnswer(_ context.Context, question, contextText string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.answerCalls++
	f.lastQuestion = question
	f.lastContext = contextText
	return f.answer, nil
}

func (f *fakeGenerator) Summarize(_ context.Context, documentText string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.summaryCalls++
	f.lastDocument = documentText
	return f.summary, nil
}

type fakeEmbeddingCache struct {
	mu      sync.Mutex
	entries map[string][]float32
}

func newFakeEmbeddingCache() *fakeEmbeddingCache {
	return &fakeEmbeddingCache{entries: make(map[string][]float32)}
}

func (f *fakeEmbeddingCache) Get(_ context.Context, text string) ([]float32, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	vec, ok := f.entries[text]
	return vec, ok, nil
}

func (f *fakeEmbeddingCache) Set(_ context.Context, text string, vec []float32) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[text] = vec
	return nil
}

type fakeQueryLogPublisher struct {
	mu      sync.Mutex
	entries []model.QueryLog
}

func (f *fakeQueryLogPublisher) Publish(_ context.Context, entry model.QueryLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeQueryLogPublisher) logged() []model.QueryLog {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.QueryLog(nil), f.entries...)
}
