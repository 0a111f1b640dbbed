package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/artpar/portfolio/internal/content"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	store, err := NewInMemory(opts...)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func insertCategory(t *testing.T, s *Store, name string) content.Record {
	t.Helper()
	rec, err := s.Insert(context.Background(), content.KindCategories, content.Record{
		"name": name, "slug": name, "aspect_ratio": content.AspectWide,
	})
	require.NoError(t, err)
	return rec
}

func insertItem(t *testing.T, s *Store, categoryID string, starred bool) content.Record {
	t.Helper()
	rec, err := s.Insert(context.Background(), content.KindItems, content.Record{
		"file_url": "https://cdn/x.png", "file_type": content.FileImage,
		"category_id": categoryID, "is_starred": starred,
	})
	require.NoError(t, err)
	return rec
}

func TestStore_InsertGet(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	store := newTestStore(t, WithClock(func() time.Time { return now }))
	ctx := context.Background()

	rec, err := store.Insert(ctx, content.KindTagPresets, content.Record{
		"preset_name": "Gaming", "tag_ids": []string{"t1", "t2"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, rec.ID())
	assert.True(t, now.Equal(rec.Time(content.ColCreatedAt)))

	got, err := store.Get(ctx, content.KindTagPresets, rec.ID())
	require.NoError(t, err)
	assert.Equal(t, rec, got)

	preset := content.TagPresetFromRecord(got)
	assert.Equal(t, "Gaming", preset.PresetName)
	assert.Equal(t, []string{"t1", "t2"}, preset.TagIDs)

	_, err = store.Get(ctx, content.KindTagPresets, "missing")
	assert.ErrorIs(t, err, content.ErrNotFound)
}

func TestStore_InsertRejectsUnknownColumn(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Insert(context.Background(), content.KindFAQs, content.Record{"question": "q", "nope": 1})
	assert.ErrorIs(t, err, content.ErrUnknownColumn)

	_, err = store.Insert(context.Background(), "users", content.Record{})
	assert.ErrorIs(t, err, content.ErrUnknownKind)
}

func TestStore_FetchFiltersAndOrder(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	cat := insertCategory(t, store, "gaming")
	other := insertCategory(t, store, "vlog")
	a := insertItem(t, store, cat.ID(), false)
	b := insertItem(t, store, cat.ID(), true)
	insertItem(t, store, other.ID(), true)

	records, err := store.Fetch(ctx, content.KindItems, content.QueryOptions{
		Filters: []content.Filter{content.Eq("category_id", cat.ID())},
		OrderBy: []content.Order{content.Desc("is_starred")},
	})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, b.ID(), records[0].ID())
	assert.Equal(t, a.ID(), records[1].ID())

	n, err := store.Count(ctx, content.KindItems, content.QueryOptions{
		Filters: []content.Filter{content.Eq("is_starred", true)},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = store.Count(ctx, content.KindItems, content.QueryOptions{
		Filters: []content.Filter{content.Neq("category_id", cat.ID())},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestStore_FetchLimitOffset(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := store.Insert(ctx, content.KindFAQs, content.Record{"question": "q", "answer": "a", "order_index": i})
		require.NoError(t, err)
	}

	page, err := store.Fetch(ctx, content.KindFAQs, content.QueryOptions{
		OrderBy: []content.Order{content.Asc(content.ColOrder)},
		Limit:   2,
		Offset:  1,
	})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, int64(1), page[0].Int(content.ColOrder))
	assert.Equal(t, int64(2), page[1].Int(content.ColOrder))

	rest, err := store.Fetch(ctx, content.KindFAQs, content.QueryOptions{Offset: 3})
	require.NoError(t, err)
	assert.Len(t, rest, 2)
}

func TestStore_Update(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	clock := now
	store := newTestStore(t, WithClock(func() time.Time { return clock }))
	ctx := context.Background()

	rec, err := store.Insert(ctx, content.KindProgressTracker, content.Record{"thumbnails_in_progress": 3})
	require.NoError(t, err)
	assert.True(t, now.Equal(rec.Time(content.ColUpdatedAt)))

	clock = now.Add(time.Hour)
	updated, err := store.Update(ctx, content.KindProgressTracker, rec.ID(), content.Record{"thumbnails_in_progress": 12})
	require.NoError(t, err)
	assert.Equal(t, int64(12), updated.Int("thumbnails_in_progress"))
	assert.True(t, clock.Equal(updated.Time(content.ColUpdatedAt)))
	assert.True(t, now.Equal(updated.Time(content.ColCreatedAt)))

	_, err = store.Update(ctx, content.KindProgressTracker, "missing", content.Record{"thumbnails_in_progress": 1})
	assert.ErrorIs(t, err, content.ErrNotFound)
}

func TestStore_DeleteCascades(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	cat := insertCategory(t, store, "gaming")
	item := insertItem(t, store, cat.ID(), false)
	tag, err := store.Insert(ctx, content.KindTags, content.Record{"name": "fps"})
	require.NoError(t, err)
	_, err = store.Insert(ctx, content.KindItemTags, content.Record{"portfolio_item_id": item.ID(), "tag_id": tag.ID()})
	require.NoError(t, err)
	_, err = store.IncrementClick(ctx, item.ID(), time.Now())
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, content.KindCategories, cat.ID()))

	for _, kind := range []content.Kind{content.KindItems, content.KindItemTags, content.KindClicks} {
		n, err := store.Count(ctx, kind, content.QueryOptions{})
		require.NoError(t, err)
		assert.Zero(t, n, kind)
	}

	assert.ErrorIs(t, store.Delete(ctx, content.KindCategories, cat.ID()), content.ErrNotFound)
}

func TestStore_ForeignKeyEnforced(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Insert(context.Background(), content.KindItems, content.Record{"category_id": "nope"})
	assert.Error(t, err)
}

func TestStore_DeleteWhere(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	cat := insertCategory(t, store, "gaming")
	item := insertItem(t, store, cat.ID(), false)
	for _, name := range []string{"a", "b"} {
		tag, err := store.Insert(ctx, content.KindTags, content.Record{"name": name})
		require.NoError(t, err)
		_, err = store.Insert(ctx, content.KindItemTags, content.Record{"portfolio_item_id": item.ID(), "tag_id": tag.ID()})
		require.NoError(t, err)
	}

	n, err := store.DeleteWhere(ctx, content.KindItemTags, content.QueryOptions{
		Filters: []content.Filter{content.Eq("portfolio_item_id", item.ID())},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	_, err = store.DeleteWhere(ctx, content.KindItemTags, content.QueryOptions{})
	assert.Error(t, err)
}

func TestStore_IncrementDailyVisit(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	n, err := store.IncrementDailyVisit(ctx, "2025-06-01")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = store.IncrementDailyVisit(ctx, "2025-06-01")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = store.IncrementDailyVisit(ctx, "2025-06-02")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	records, err := store.Fetch(ctx, content.KindSiteAnalytics, content.QueryOptions{
		OrderBy: []content.Order{content.Asc("visit_date")},
	})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, int64(2), content.SiteVisitFromRecord(records[0]).VisitCount)
}

func TestStore_IncrementClick(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	item := insertItem(t, store, insertCategory(t, store, "c").ID(), false)
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	for want := int64(1); want <= 3; want++ {
		n, err := store.IncrementClick(ctx, item.ID(), at.Add(time.Duration(want)*time.Minute))
		require.NoError(t, err)
		assert.Equal(t, want, n)
	}

	records, err := store.Fetch(ctx, content.KindClicks, content.QueryOptions{})
	require.NoError(t, err)
	require.Len(t, records, 1)
	clicks := content.ItemClicksFromRecord(records[0])
	assert.True(t, at.Add(3*time.Minute).Equal(clicks.LastClickedAt))
}

func TestStore_Tx(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("commit", func(t *testing.T) {
		err := store.Tx(ctx, func(tx content.Store) error {
			_, err := tx.Insert(ctx, content.KindReviews, content.Record{"reviewer_name": "a"})
			return err
		})
		require.NoError(t, err)

		n, err := store.Count(ctx, content.KindReviews, content.QueryOptions{})
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})

	t.Run("rollback", func(t *testing.T) {
		boom := errors.New("boom")
		err := store.Tx(ctx, func(tx content.Store) error {
			if _, err := tx.Insert(ctx, content.KindReviews, content.Record{"reviewer_name": "b"}); err != nil {
				return err
			}
			return tx.Tx(ctx, func(inner content.Store) error { return boom })
		})
		assert.ErrorIs(t, err, boom)

		n, err := store.Count(ctx, content.KindReviews, content.QueryOptions{})
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})
}

func TestStore_Closed(t *testing.T) {
	store, err := NewInMemory()
	require.NoError(t, err)
	require.NoError(t, store.Close())
	require.NoError(t, store.Close())

	ctx := context.Background()
	_, err = store.Fetch(ctx, content.KindTags, content.QueryOptions{})
	assert.ErrorIs(t, err, content.ErrStoreClosed)
	_, err = store.Insert(ctx, content.KindTags, content.Record{})
	assert.ErrorIs(t, err, content.ErrStoreClosed)
	assert.ErrorIs(t, store.Tx(ctx, func(content.Store) error { return nil }), content.ErrStoreClosed)
}

func TestStore_ConcurrentIncrements(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.IncrementDailyVisit(ctx, "2025-06-01")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	n, err := store.IncrementDailyVisit(ctx, "2025-06-01")
	require.NoError(t, err)
	assert.Equal(t, int64(21), n)
}

func TestStore_FileDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "portfolio.db")
	ctx := context.Background()

	store, err := New(path)
	require.NoError(t, err)
	rec, err := store.Insert(ctx, content.KindTags, content.Record{"name": "persisted"})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := New(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get(ctx, content.KindTags, rec.ID())
	require.NoError(t, err)
	assert.Equal(t, "persisted", got.String("name"))
}

func TestSchemaMatchesTables(t *testing.T) {
	store := newTestStore(t)

	for _, kind := range content.Kinds() {
		rows, err := store.DB().Query("SELECT name FROM pragma_table_info(?)", string(kind))
		require.NoError(t, err)

		have := map[string]bool{}
		for rows.Next() {
			var name string
			require.NoError(t, rows.Scan(&name))
			have[name] = true
		}
		rows.Close()

		cols, err := content.Schema(kind)
		require.NoError(t, err)
		for _, c := range cols {
			assert.True(t, have[c.Name], "%s.%s", kind, c.Name)
		}
	}
}
