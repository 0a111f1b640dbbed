package portfolio

import (
	"context"
	"fmt"
	"strings"

	"github.com/artpar/portfolio/internal/content"
	"github.com/artpar/portfolio/internal/fuzzy"
	"github.com/artpar/portfolio/internal/star"
	"go.uber.org/zap"
)

// AllCategories selects every visible category.
const AllCategories = "all"

// GalleryQuery narrows a gallery view.
type GalleryQuery struct {
	Category string `json:"category,omitempty"`
	Query    string `json:"query,omitempty"`
}

// Gallery is one rendered gallery view.
type Gallery struct {
	Items         []content.Item `json:"items"`
	Message       string         `json:"message,omitempty"`
	StarredCounts map[string]int `json:"starred_counts"`
}

// Items returns the items of visible categories, starred first then newest,
// filtered by category slug and ranked by query.
func (s *Service) Items(ctx context.Context, q GalleryQuery) (Gallery, error) {
	return s.gallery(ctx, q, 0)
}

// Popular is Items restricted to the first PopularLimit items of the
// category before searching.
func (s *Service) Popular(ctx context.Context, q GalleryQuery) (Gallery, error) {
	return s.gallery(ctx, q, s.settings.PopularLimit)
}

func (s *Service) gallery(ctx context.Context, q GalleryQuery, limit int) (Gallery, error) {
	items, categories, err := s.visibleItems(ctx)
	if err != nil {
		return Gallery{}, s.fail("loading portfolio items", err)
	}

	filtered := items
	if q.Category != "" && q.Category != AllCategories {
		filtered = nil
		for _, it := range items {
			if it.Category != nil && it.Category.Slug == q.Category {
				filtered = append(filtered, it)
			}
		}
	}
	if limit > 0 && len(filtered) > limit {
		filtered = filtered[:limit]
	}

	result := fuzzy.Search(filtered, q.Query, ItemFields, s.settings.ItemThreshold)
	g := Gallery{Items: result}
	if g.Items == nil {
		g.Items = []content.Item{}
	}
	if len(result) == 0 && strings.TrimSpace(q.Query) != "" {
		g.Message = s.tagFallback(items, q.Query)
	}

	counts, err := s.starredCounts(ctx, categories)
	if err != nil {
		return Gallery{}, s.fail("loading star counts", err)
	}
	g.StarredCounts = counts
	return g, nil
}

// ItemFields is the searchable text of an item: its category name then
// its tag names.
func ItemFields(it content.Item) []string {
	fields := make([]string, 0, len(it.Tags)+1)
	if it.Category != nil {
		fields = append(fields, it.Category.Name)
	} else {
		fields = append(fields, "")
	}
	return append(fields, it.TagNames()...)
}

// tagFallback names the first tag close to query when an item search came
// back empty.
func (s *Service) tagFallback(items []content.Item, query string) string {
	seen := make(map[string]bool)
	var tags []content.Tag
	for _, it := range items {
		for _, t := range it.Tags {
			if !seen[t.ID] {
				seen[t.ID] = true
				tags = append(tags, t)
			}
		}
	}

	matches := fuzzy.Search(tags, query, func(t content.Tag) []string { return []string{t.Name} }, s.settings.TagThreshold)
	if len(matches) == 0 {
		return ""
	}
	return fmt.Sprintf("No items available for tag %q", matches[0].Name)
}

// visibleItems loads every item of a visible category with its category
// and tags attached.
func (s *Service) visibleItems(ctx context.Context) ([]content.Item, []content.Category, error) {
	categories, err := fetchAs(ctx, s.store, content.KindCategories, content.QueryOptions{
		Filters: []content.Filter{content.Eq("is_hidden", false)},
		OrderBy: byOrder().OrderBy,
	}, content.CategoryFromRecord)
	if err != nil {
		return nil, nil, err
	}

	items, err := fetchAs(ctx, s.store, content.KindItems, content.QueryOptions{
		OrderBy: []content.Order{content.Desc("is_starred"), content.Desc(content.ColCreatedAt)},
	}, content.ItemFromRecord)
	if err != nil {
		return nil, nil, err
	}

	byID := make(map[string]*content.Category, len(categories))
	for i := range categories {
		byID[categories[i].ID] = &categories[i]
	}

	visible := items[:0]
	for _, it := range items {
		if c, ok := byID[it.CategoryID]; ok {
			it.Category = c
			visible = append(visible, it)
		}
	}

	if err := s.attachTags(ctx, visible); err != nil {
		return nil, nil, err
	}
	return visible, categories, nil
}

// attachTags fills Tags on every item in place.
func (s *Service) attachTags(ctx context.Context, items []content.Item) error {
	if len(items) == 0 {
		return nil
	}

	tags, err := fetchAs(ctx, s.store, content.KindTags, byOrder(), content.TagFromRecord)
	if err != nil {
		return err
	}
	links, err := fetchAs(ctx, s.store, content.KindItemTags, content.QueryOptions{
		OrderBy: []content.Order{content.Asc(content.ColCreatedAt)},
	}, content.ItemTagFromRecord)
	if err != nil {
		return err
	}

	tagByID := make(map[string]content.Tag, len(tags))
	for _, t := range tags {
		tagByID[t.ID] = t
	}
	byItem := make(map[string][]content.Tag)
	for _, l := range links {
		if t, ok := tagByID[l.TagID]; ok {
			byItem[l.ItemID] = append(byItem[l.ItemID], t)
		}
	}
	for i := range items {
		items[i].Tags = byItem[items[i].ID]
	}
	return nil
}

func (s *Service) starredCounts(ctx context.Context, categories []content.Category) (map[string]int, error) {
	ids := make([]string, len(categories))
	for i, c := range categories {
		ids[i] = c.ID
	}
	if err := s.limiter.Load(ctx, ids...); err != nil {
		return nil, err
	}

	counts := s.limiter.Counts()
	out := make(map[string]int, len(ids))
	for _, id := range ids {
		out[id] = counts.Get(id)
	}
	return out, nil
}

// StarredCounts returns the number of starred items per visible category.
func (s *Service) StarredCounts(ctx context.Context) (map[string]int, error) {
	categories, err := fetchAs(ctx, s.store, content.KindCategories, content.QueryOptions{
		Filters: []content.Filter{content.Eq("is_hidden", false)},
	}, content.CategoryFromRecord)
	if err != nil {
		return nil, s.fail("loading star counts", err)
	}
	counts, err := s.starredCounts(ctx, categories)
	if err != nil {
		return nil, s.fail("loading star counts", err)
	}
	return counts, nil
}

// StarResult is the outcome of a star toggle.
type StarResult struct {
	Item              content.Item `json:"item"`
	StarredInCategory int          `json:"starred_in_category"`
}

// ToggleStar flips an item's starred flag. Starring is refused with
// star.ErrLimitReached once the item's category holds MaxPerCategory
// starred items.
func (s *Service) ToggleStar(ctx context.Context, itemID string) (StarResult, error) {
	rec, err := s.store.Get(ctx, content.KindItems, itemID)
	if err != nil {
		return StarResult{}, s.fail("updating star status", err, zap.String("id", itemID))
	}
	item := content.ItemFromRecord(rec)

	if err := s.limiter.Load(ctx, item.CategoryID); err != nil {
		return StarResult{}, s.fail("updating star status", err, zap.String("id", itemID))
	}

	toggled, n, err := s.limiter.Toggle(ctx, star.Item{
		ID:         item.ID,
		CategoryID: item.CategoryID,
		Starred:    item.IsStarred,
	}, !item.IsStarred)
	if err != nil {
		return StarResult{}, s.fail("updating star status", err, zap.String("id", itemID))
	}

	item.IsStarred = toggled.Starred
	return StarResult{Item: item, StarredInCategory: n}, nil
}
