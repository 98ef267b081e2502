package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/mwantia/pastebox/pkg/db/models"
)

func TestGetOrCreateTag(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	first, err := s.GetOrCreateTag(ctx, "work")
	require.NoError(t, err)

	again, err := s.GetOrCreateTag(ctx, "work")
	require.NoError(t, err)
	assert.Equal(t, first, again)

	other, err := s.GetOrCreateTag(ctx, "Work")
	require.NoError(t, err)
	assert.NotEqual(t, first, other, "names are case-sensitive")

	_, err = s.GetOrCreateTag(ctx, "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestGetOrCreateTag_Concurrent(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	const callers = 8
	ids := make([]int64, callers)

	var start sync.WaitGroup
	start.Add(1)

	var g errgroup.Group
	for i := 0; i < callers; i++ {
		g.Go(func() error {
			start.Wait()
			id, err := s.GetOrCreateTag(ctx, "x")
			ids[i] = id
			return err
		})
	}
	start.Done()
	require.NoError(t, g.Wait())

	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}

	var count int64
	require.NoError(t, s.DB().Model(&models.Tag{}).Where("name = ?", "x").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestGetTagAndFindByName(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	id := createTag(t, s, "snippets")

	tag, err := s.GetTag(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "snippets", tag.Name)
	assert.False(t, tag.CreatedAt.IsZero())

	byName, err := s.FindTagByName(ctx, "snippets")
	require.NoError(t, err)
	assert.Equal(t, id, byName.ID)

	_, err = s.GetTag(ctx, id+1)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.FindTagByName(ctx, "Snippets")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListTags_OrderedByName(t *testing.T) {
	s := setupTestStore(t)

	for _, name := range []string{"zeta", "alpha", "mid"} {
		createTag(t, s, name)
	}

	tags, err := s.ListTags(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, tagNames(tags))
}

func TestDeleteTag_CascadesWithoutDeletingPastes(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	p1 := createPaste(t, s, "one")
	p2 := createPaste(t, s, "two")
	shared := createTag(t, s, "shared")
	keep := createTag(t, s, "keep")

	require.NoError(t, s.AttachTag(ctx, p1, shared))
	require.NoError(t, s.AttachTag(ctx, p1, keep))
	require.NoError(t, s.AttachTag(ctx, p2, shared))

	require.NoError(t, s.DeleteTag(ctx, shared))

	tags, err := s.ListTagsForPaste(ctx, p1)
	require.NoError(t, err)
	assert.Equal(t, []string{"keep"}, tagNames(tags))

	tags, err = s.ListTagsForPaste(ctx, p2)
	require.NoError(t, err)
	assert.Empty(t, tags)

	_, err = s.GetPaste(ctx, p1)
	assert.NoError(t, err)
	_, err = s.GetPaste(ctx, p2)
	assert.NoError(t, err)

	assert.ErrorIs(t, s.DeleteTag(ctx, shared), ErrNotFound)
}

func TestPruneOrphanTags(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	pasteID := createPaste(t, s, "p")
	used := createTag(t, s, "used")
	createTag(t, s, "orphan-a")
	createTag(t, s, "orphan-b")
	require.NoError(t, s.AttachTag(ctx, pasteID, used))

	pruned, err := s.PruneOrphanTags(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), pruned)

	tags, err := s.ListTags(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"used"}, tagNames(tags))
}

func TestTagNamesForPastes(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	p1 := createPaste(t, s, "one")
	p2 := createPaste(t, s, "two")
	p3 := createPaste(t, s, "three")
	b := createTag(t, s, "b")
	a := createTag(t, s, "a")

	require.NoError(t, s.AttachTag(ctx, p1, b))
	require.NoError(t, s.AttachTag(ctx, p1, a))
	require.NoError(t, s.AttachTag(ctx, p2, a))

	names, err := s.TagNamesForPastes(ctx, []int64{p1, p2, p3})
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, names[p1])
	assert.Equal(t, []string{"a"}, names[p2])
	assert.NotContains(t, names, p3)

	empty, err := s.TagNamesForPastes(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func tagNames(tags []models.Tag) []string {
	names := make([]string, 0, len(tags))
	for _, tag := range tags {
		names = append(names, tag.Name)
	}
	return names
}

func tagIDs(tags []models.Tag) []int64 {
	ids := make([]int64, 0, len(tags))
	for _, tag := range tags {
		ids = append(ids, tag.ID)
	}
	return ids
}

// bulkInsertPastes inserts count pastes in one statement and returns their ids
// in ascending order.
func bulkInsertPastes(t *testing.T, s *SQLiteStore, count int) []int64 {
	t.Helper()

	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.DB().Exec(`WITH RECURSIVE n(i) AS (
			SELECT 1 UNION ALL SELECT i + 1 FROM n WHERE i < ?
		)
		INSERT INTO paste (value, created_at, last_used_at)
		SELECT CAST('bulk-' || i AS BLOB), ?, ? FROM n`, count, now, now).Error)

	var ids []int64
	require.NoError(t, s.DB().Model(&models.Paste{}).Order("id ASC").Pluck("id", &ids).Error)
	require.Len(t, ids, count)
	return ids
}

func TestTagNamesForPastes_ManyIDs(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	ids := bulkInsertPastes(t, s, 33000)
	first, middle, last := ids[0], ids[tagNameChunk], ids[len(ids)-1]

	a := createTag(t, s, "a")
	b := createTag(t, s, "b")
	require.NoError(t, s.AttachTag(ctx, first, a))
	require.NoError(t, s.AttachTag(ctx, middle, b))
	require.NoError(t, s.AttachTag(ctx, last, b))
	require.NoError(t, s.AttachTag(ctx, last, a))

	names, err := s.TagNamesForPastes(ctx, ids)
	require.NoError(t, err)
	assert.Len(t, names, 3)
	assert.Equal(t, []string{"a"}, names[first])
	assert.Equal(t, []string{"b"}, names[middle])
	assert.Equal(t, []string{"b", "a"}, names[last])
}
