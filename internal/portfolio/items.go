package portfolio

import (
	"context"
	"errors"

	"github.com/artpar/portfolio/internal/blob"
	"github.com/artpar/portfolio/internal/content"
	"github.com/artpar/portfolio/internal/star"
	"go.uber.org/zap"
)

// ItemInput is the editable part of a portfolio item. File is required on
// create and optional on update.
type ItemInput struct {
	CategoryID string
	TagIDs     []string
	File       *Upload
}

// AdminItems returns every item in admin order, optionally restricted to
// one category, with category and tags attached.
func (s *Service) AdminItems(ctx context.Context, categoryID string) ([]content.Item, error) {
	opts := byOrder()
	if categoryID != "" {
		opts.Filters = []content.Filter{content.Eq("category_id", categoryID)}
	}
	items, err := fetchAs(ctx, s.store, content.KindItems, opts, content.ItemFromRecord)
	if err != nil {
		return nil, s.fail("loading portfolio items", err)
	}

	categories, err := fetchAs(ctx, s.store, content.KindCategories, content.QueryOptions{}, content.CategoryFromRecord)
	if err != nil {
		return nil, s.fail("loading portfolio items", err)
	}
	byID := make(map[string]*content.Category, len(categories))
	for i := range categories {
		byID[categories[i].ID] = &categories[i]
	}
	for i := range items {
		items[i].Category = byID[items[i].CategoryID]
	}

	if err := s.attachTags(ctx, items); err != nil {
		return nil, s.fail("loading portfolio items", err)
	}
	return items, nil
}

// CreateItem uploads the file and stores the item with its tags.
func (s *Service) CreateItem(ctx context.Context, in ItemInput) (content.Item, error) {
	if in.File == nil {
		return content.Item{}, invalid("file", "is required")
	}
	if in.CategoryID == "" {
		return content.Item{}, invalid("category_id", "is required")
	}
	if err := s.requireCategory(ctx, in.CategoryID); err != nil {
		return content.Item{}, err
	}

	objectPath := blob.ObjectPath(blob.PrefixPortfolio, in.File.Filename, s.now())
	url, err := s.upload(ctx, objectPath, *in.File)
	if err != nil {
		return content.Item{}, s.fail("uploading file", err, zap.String("path", objectPath))
	}

	var out content.Item
	err = s.store.Tx(ctx, func(tx content.Store) error {
		rec, err := insertOrdered(ctx, tx, content.KindItems, content.Record{
			"file_url":    url,
			"file_type":   blob.DetectFileType(in.File.ContentType),
			"category_id": in.CategoryID,
			"is_starred":  false,
		})
		if err != nil {
			return err
		}
		out = content.ItemFromRecord(rec)
		return replaceItemTags(ctx, tx, out.ID, in.TagIDs)
	})
	if err != nil {
		s.discardUpload(ctx, objectPath)
		return content.Item{}, s.fail("saving portfolio item", err, zap.String("category", in.CategoryID))
	}
	return out, nil
}

// UpdateItem moves an item to another category, replaces its tags and, if
// a file is given, its media.
func (s *Service) UpdateItem(ctx context.Context, id string, in ItemInput) (content.Item, error) {
	if in.CategoryID == "" {
		return content.Item{}, invalid("category_id", "is required")
	}
	if err := s.requireCategory(ctx, in.CategoryID); err != nil {
		return content.Item{}, err
	}

	fields := content.Record{"category_id": in.CategoryID}
	var objectPath string
	if in.File != nil {
		objectPath = blob.ObjectPath(blob.PrefixPortfolio, in.File.Filename, s.now())
		url, err := s.upload(ctx, objectPath, *in.File)
		if err != nil {
			return content.Item{}, s.fail("uploading file", err, zap.String("path", objectPath))
		}
		fields["file_url"] = url
		fields["file_type"] = blob.DetectFileType(in.File.ContentType)
	}

	var out content.Item
	err := s.store.Tx(ctx, func(tx content.Store) error {
		if err := checkStarMove(ctx, tx, id, in.CategoryID); err != nil {
			return err
		}
		rec, err := tx.Update(ctx, content.KindItems, id, fields)
		if err != nil {
			return err
		}
		out = content.ItemFromRecord(rec)
		return replaceItemTags(ctx, tx, id, in.TagIDs)
	})
	if err != nil {
		if objectPath != "" {
			s.discardUpload(ctx, objectPath)
		}
		return content.Item{}, s.fail("saving portfolio item", err, zap.String("id", id))
	}
	return out, nil
}

// checkStarMove keeps a starred item from entering a category that already
// holds MaxPerCategory starred items.
func checkStarMove(ctx context.Context, tx content.Store, id, categoryID string) error {
	rec, err := tx.Get(ctx, content.KindItems, id)
	if err != nil {
		return err
	}
	item := content.ItemFromRecord(rec)
	if !item.IsStarred || item.CategoryID == categoryID {
		return nil
	}
	n, err := starStore{store: tx}.StarredCount(ctx, categoryID)
	if err != nil {
		return err
	}
	if n >= star.MaxPerCategory {
		return star.ErrLimitReached
	}
	return nil
}

// DeleteItem removes an item with its tags and click counter.
func (s *Service) DeleteItem(ctx context.Context, id string) error {
	return s.deleteOrdered(ctx, content.KindItems, id, "deleting portfolio item")
}

// ApplyPreset adds a preset's tags to an item.
func (s *Service) ApplyPreset(ctx context.Context, itemID, presetID string) ([]string, error) {
	rec, err := s.store.Get(ctx, content.KindTagPresets, presetID)
	if err != nil {
		return nil, s.fail("applying tag preset", err, zap.String("preset", presetID))
	}
	preset := content.TagPresetFromRecord(rec)

	var merged []string
	err = s.store.Tx(ctx, func(tx content.Store) error {
		if _, err := tx.Get(ctx, content.KindItems, itemID); err != nil {
			return err
		}
		links, err := tx.Fetch(ctx, content.KindItemTags, content.QueryOptions{
			Filters: []content.Filter{content.Eq("portfolio_item_id", itemID)},
			OrderBy: []content.Order{content.Asc(content.ColCreatedAt)},
		})
		if err != nil {
			return err
		}
		current := make([]string, len(links))
		for i, l := range links {
			current[i] = l.String("tag_id")
		}
		merged = MergeTagIDs(current, preset.TagIDs)
		return replaceItemTags(ctx, tx, itemID, merged)
	})
	if err != nil {
		return nil, s.fail("applying tag preset", err, zap.String("item", itemID), zap.String("preset", presetID))
	}
	return merged, nil
}

func (s *Service) requireCategory(ctx context.Context, id string) error {
	_, err := s.store.Get(ctx, content.KindCategories, id)
	if errors.Is(err, content.ErrNotFound) {
		return invalid("category_id", "category does not exist")
	}
	if err != nil {
		return s.fail("loading category", err, zap.String("id", id))
	}
	return nil
}

func (s *Service) discardUpload(ctx context.Context, objectPath string) {
	if s.blobs == nil {
		return
	}
	if err := s.blobs.Delete(ctx, objectPath); err != nil {
		s.logger.Warn("failed to remove orphaned upload", zap.String("path", objectPath), zap.Error(err))
	}
}

// replaceItemTags rewrites an item's tag associations to tagIDs.
func replaceItemTags(ctx context.Context, tx content.Store, itemID string, tagIDs []string) error {
	if _, err := tx.DeleteWhere(ctx, content.KindItemTags, content.QueryOptions{
		Filters: []content.Filter{content.Eq("portfolio_item_id", itemID)},
	}); err != nil {
		return err
	}
	for _, tagID := range MergeTagIDs(nil, tagIDs) {
		if _, err := tx.Insert(ctx, content.KindItemTags, content.Record{
			"portfolio_item_id": itemID,
			"tag_id":            tagID,
		}); err != nil {
			return err
		}
	}
	return nil
}
