package portfolio

import (
	"context"
	"errors"

	"github.com/artpar/portfolio/internal/content"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// TopClickedLimit is the number of items listed on the dashboard.
const TopClickedLimit = 10

// VisitDate returns the UTC calendar day used as the visit counter key.
func (s *Service) VisitDate() string {
	return s.now().UTC().Format("2006-01-02")
}

// TrackVisit counts one visit against today.
func (s *Service) TrackVisit(ctx context.Context) (int64, error) {
	date := s.VisitDate()
	n, err := s.store.IncrementDailyVisit(ctx, date)
	if err != nil {
		return 0, s.fail("tracking visit", err, zap.String("date", date))
	}
	return n, nil
}

// TrackClick counts one click on an item.
func (s *Service) TrackClick(ctx context.Context, itemID string) (int64, error) {
	if _, err := s.store.Get(ctx, content.KindItems, itemID); err != nil {
		return 0, s.fail("tracking click", err, zap.String("item", itemID))
	}
	n, err := s.store.IncrementClick(ctx, itemID, s.now())
	if err != nil {
		return 0, s.fail("tracking click", err, zap.String("item", itemID))
	}
	return n, nil
}

// ClickedItem is an item with its click count.
type ClickedItem struct {
	Item          content.Item `json:"item"`
	ClickCount    int64        `json:"click_count"`
	LastClickedAt string       `json:"last_clicked_at"`
}

// Dashboard is the analytics summary.
type Dashboard struct {
	TotalVisits int64         `json:"total_visits"`
	TodayVisits int64         `json:"today_visits"`
	TotalClicks int64         `json:"total_clicks"`
	TopItems    []ClickedItem `json:"top_items"`
}

// Dashboard sums visits and clicks and lists the most clicked items.
func (s *Service) Dashboard(ctx context.Context) (Dashboard, error) {
	visits, err := fetchAs(ctx, s.store, content.KindSiteAnalytics, content.QueryOptions{}, content.SiteVisitFromRecord)
	if err != nil {
		return Dashboard{}, s.fail("loading analytics", err)
	}
	clicks, err := fetchAs(ctx, s.store, content.KindClicks, content.QueryOptions{
		OrderBy: []content.Order{content.Desc("click_count")},
	}, content.ItemClicksFromRecord)
	if err != nil {
		return Dashboard{}, s.fail("loading analytics", err)
	}

	today := s.VisitDate()
	d := Dashboard{TopItems: []ClickedItem{}}
	for _, v := range visits {
		d.TotalVisits += v.VisitCount
		if v.VisitDate == today {
			d.TodayVisits = v.VisitCount
		}
	}
	for _, c := range clicks {
		d.TotalClicks += c.ClickCount
	}

	for _, c := range clicks {
		if len(d.TopItems) == TopClickedLimit {
			break
		}
		rec, err := s.store.Get(ctx, content.KindItems, c.ItemID)
		if errors.Is(err, content.ErrNotFound) {
			continue
		}
		if err != nil {
			return Dashboard{}, s.fail("loading analytics", err, zap.String("item", c.ItemID))
		}
		d.TopItems = append(d.TopItems, ClickedItem{
			Item:          content.ItemFromRecord(rec),
			ClickCount:    c.ClickCount,
			LastClickedAt: c.LastClickedAt.UTC().Format("2006-01-02 15:04:05"),
		})
	}
	return d, nil
}

// Counts is the number of records of each showcase kind.
type Counts struct {
	Items        int64 `json:"items"`
	ABTests      int64 `json:"ab_tests"`
	Achievements int64 `json:"achievements"`
	Reviews      int64 `json:"reviews"`
	FAQs         int64 `json:"faqs"`
	Categories   int64 `json:"categories"`
}

// Counts fetches every showcase count concurrently.
func (s *Service) Counts(ctx context.Context) (Counts, error) {
	var c Counts
	targets := []struct {
		kind content.Kind
		dst  *int64
	}{
		{content.KindItems, &c.Items},
		{content.KindABTests, &c.ABTests},
		{content.KindAchievements, &c.Achievements},
		{content.KindReviews, &c.Reviews},
		{content.KindFAQs, &c.FAQs},
		{content.KindCategories, &c.Categories},
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, t := range targets {
		g.Go(func() error {
			n, err := s.store.Count(gctx, t.kind, content.QueryOptions{})
			if err != nil {
				return err
			}
			*t.dst = n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Counts{}, s.fail("loading dashboard counts", err)
	}
	return c, nil
}
