package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragchat/internal/model"
)

func newDocFixture() (*DocumentService, *fakeDocumentStore, *fakeSegmentStore) {
	segs := &fakeSegmentStore{}
	docs := newFakeDocumentStore(segs)
	return NewDocumentService(docs), docs, segs
}

func TestListDocumentsReportsSegmentCounts(t *testing.T) {
	service, docs, segs := newDocFixture()

	doc := &model.Document{Title: "counted"}
	require.NoError(t, docs.Create(context.Background(), doc))
	for i := 0; i < 3; i++ {
		seg := model.Segment{DocumentID: doc.ID, Seq: i, Text: "t"}
		seg.SetEmbedding([]float32{1})
		require.NoError(t, segs.CreateBatch(context.Background(), []model.Segment{seg}))
	}

	summaries, err := service.ListDocuments(context.Background())
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, "counted", summaries[0].Document.Title)
	assert.Equal(t, int64(3), summaries[0].SegmentCount)
}

func TestUpdateDocumentNotFound(t *testing.T) {
	service, _, _ := newDocFixture()

	title := "new title"
	_, err := service.UpdateDocument(context.Background(), UpdateDocumentInput{ID: 99, Title: &title})
	assert.ErrorIs(t, err, ErrDocumentNotFound)
}

func TestUpdateDocumentPartialFields(t *testing.T) {
	service, docs, _ := newDocFixture()

	doc := &model.Document{Title: "before", Category: "old"}
	doc.SetTags([]string{"a"})
	require.NoError(t, docs.Create(context.Background(), doc))

	tags := []string{"x", "y"}
	updated, err := service.UpdateDocument(context.Background(), UpdateDocumentInput{
		ID:   doc.ID,
		Tags: &tags,
	})
	require.NoError(t, err)
	// Untouched fields survive a partial update.
	assert.Equal(t, "before", updated.Title)
	assert.Equal(t, "old", updated.Category)
	assert.Equal(t, []string{"x", "y"}, updated.TagList())
}

func TestUpdateDocumentRejectsBlankTitle(t *testing.T) {
	service, docs, _ := newDocFixture()

	doc := &model.Document{Title: "keep"}
	require.NoError(t, docs.Create(context.Background(), doc))

	blank := "   "
	_, err := service.UpdateDocument(context.Background(), UpdateDocumentInput{ID: doc.ID, Title: &blank})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestDeleteDocumentCascades(t *testing.T) {
	service, docs, segs := newDocFixture()

	doc := &model.Document{Title: "doomed"}
	require.NoError(t, docs.Create(context.Background(), doc))
	for i := 0; i < 4; i++ {
		seg := model.Segment{DocumentID: doc.ID, Seq: i, Text: "t"}
		seg.SetEmbedding([]float32{1})
		require.NoError(t, segs.CreateBatch(context.Background(), []model.Segment{seg}))
	}

	require.NoError(t, service.DeleteDocument(context.Background(), doc.ID))

	remaining, err := segs.Find(context.Background(), doc.ID)
	require.NoError(t, err)
	assert.Empty(t, remaining)

	summaries, err := service.ListDocuments(context.Background())
	require.NoError(t, err)
	assert.Empty(t, summaries)
}

func TestDeleteDocumentNotFound(t *testing.T) {
	service, _, _ := newDocFixture()
	assert.ErrorIs(t, service.DeleteDocument(context.Background(), 7), ErrDocumentNotFound)
}
