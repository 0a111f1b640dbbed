package portfolio

import (
	"context"
	"errors"
	"testing"

	"github.com/artpar/portfolio/internal/content"
	"github.com/artpar/portfolio/internal/content/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackVisit_CountsPerDay(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	n, err := f.svc.TrackVisit(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	n, err = f.svc.TrackVisit(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	visits, err := f.store.Fetch(ctx, content.KindSiteAnalytics, content.QueryOptions{})
	require.NoError(t, err)
	require.Len(t, visits, 1)
	assert.Equal(t, "2025-06-01", visits[0].String("visit_date"))
}

func TestTrackClick(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c := f.category(t, "Gaming", false)
	it := f.item(t, c.ID)

	for want := int64(1); want <= 3; want++ {
		n, err := f.svc.TrackClick(ctx, it.ID)
		require.NoError(t, err)
		assert.Equal(t, want, n)
	}

	_, err := f.svc.TrackClick(ctx, "missing")
	assert.ErrorIs(t, err, content.ErrNotFound)
}

func TestDashboard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.store.IncrementDailyVisit(ctx, "2025-05-30")
	require.NoError(t, err)
	for range 3 {
		_, err = f.svc.TrackVisit(ctx)
		require.NoError(t, err)
	}

	c := f.category(t, "Gaming", false)
	var items []content.Item
	for range TopClickedLimit + 2 {
		items = append(items, f.item(t, c.ID))
	}
	for i, it := range items {
		for range i + 1 {
			_, err := f.svc.TrackClick(ctx, it.ID)
			require.NoError(t, err)
		}
	}

	d, err := f.svc.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), d.TotalVisits)
	assert.Equal(t, int64(3), d.TodayVisits)

	// 1 + 2 + ... + 12
	assert.Equal(t, int64(78), d.TotalClicks)
	require.Len(t, d.TopItems, TopClickedLimit)
	assert.Equal(t, items[len(items)-1].ID, d.TopItems[0].Item.ID)
	assert.Equal(t, int64(12), d.TopItems[0].ClickCount)
	assert.NotEmpty(t, d.TopItems[0].LastClickedAt)

	empty := newFixture(t)
	d, err = empty.svc.Dashboard(ctx)
	require.NoError(t, err)
	assert.Zero(t, d.TotalVisits)
	assert.NotNil(t, d.TopItems)
}

func TestCounts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c := f.category(t, "Gaming", false)
	f.category(t, "Vlogs", true)
	f.item(t, c.ID)
	_, err := f.svc.CreateFAQ(ctx, FAQInput{Question: "q", Answer: "a"})
	require.NoError(t, err)
	_, err = f.svc.CreateReview(ctx, ReviewInput{ReviewerName: "n", ReviewerText: "t"})
	require.NoError(t, err)

	counts, err := f.svc.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, Counts{Items: 1, FAQs: 1, Reviews: 1, Categories: 2}, counts)
}

func TestCounts_Failure(t *testing.T) {
	boom := errors.New("timeout")
	clk := newClock()
	inner, err := sqlite.NewInMemory(sqlite.WithClock(clk.Now))
	require.NoError(t, err)
	t.Cleanup(func() { inner.Close() })

	f := newFixtureWithStore(t, &failingStore{Store: inner, err: boom, count: true}, clk)
	_, err = f.svc.Counts(context.Background())
	assert.ErrorIs(t, err, boom)

	var op *OpError
	require.ErrorAs(t, err, &op)
	assert.Equal(t, "Error loading dashboard counts. Please try again.", op.Message())
}
