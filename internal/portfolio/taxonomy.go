package portfolio

import (
	"context"
	"slices"

	"github.com/artpar/portfolio/internal/content"
	"github.com/artpar/portfolio/internal/fuzzy"
	"go.uber.org/zap"
)

// DefaultTagColor is given to tags created without a color.
const DefaultTagColor = "#6b7280"

// CategoryInput is the editable part of a category.
type CategoryInput struct {
	Name        string `json:"name"`
	AspectRatio string `json:"aspect_ratio"`
	IsHidden    bool   `json:"is_hidden"`
}

func (in CategoryInput) record() (content.Record, error) {
	name, err := required("name", in.Name)
	if err != nil {
		return nil, err
	}
	aspect := in.AspectRatio
	switch aspect {
	case "":
		aspect = content.AspectWide
	case content.AspectWide, content.AspectSquare, content.AspectTall:
	default:
		return nil, invalid("aspect_ratio", "must be 16:9, 1:1 or 9:16")
	}
	return content.Record{
		"name":         name,
		"slug":         Slugify(name),
		"aspect_ratio": aspect,
		"is_hidden":    in.IsHidden,
	}, nil
}

// AllCategoriesAdmin returns every category, hidden ones included.
func (s *Service) AllCategoriesAdmin(ctx context.Context) ([]content.Category, error) {
	out, err := fetchAs(ctx, s.store, content.KindCategories, byOrder(), content.CategoryFromRecord)
	if err != nil {
		return nil, s.fail("loading categories", err)
	}
	return out, nil
}

// CreateCategory appends a category to the end of the order.
func (s *Service) CreateCategory(ctx context.Context, in CategoryInput) (content.Category, error) {
	rec, err := in.record()
	if err != nil {
		return content.Category{}, err
	}
	out, err := insertOrdered(ctx, s.store, content.KindCategories, rec)
	if err != nil {
		return content.Category{}, s.fail("saving category", err, zap.String("name", in.Name))
	}
	return content.CategoryFromRecord(out), nil
}

// UpdateCategory replaces a category's fields and regenerates its slug.
func (s *Service) UpdateCategory(ctx context.Context, id string, in CategoryInput) (content.Category, error) {
	rec, err := in.record()
	if err != nil {
		return content.Category{}, err
	}
	out, err := s.store.Update(ctx, content.KindCategories, id, rec)
	if err != nil {
		return content.Category{}, s.fail("saving category", err, zap.String("id", id))
	}
	return content.CategoryFromRecord(out), nil
}

// SetCategoryHidden shows or hides a category on the public site.
func (s *Service) SetCategoryHidden(ctx context.Context, id string, hidden bool) (content.Category, error) {
	out, err := s.store.Update(ctx, content.KindCategories, id, content.Record{"is_hidden": hidden})
	if err != nil {
		return content.Category{}, s.fail("updating category visibility", err, zap.String("id", id))
	}
	return content.CategoryFromRecord(out), nil
}

// DeleteCategory removes a category. Its items go with it.
func (s *Service) DeleteCategory(ctx context.Context, id string) error {
	return s.deleteOrdered(ctx, content.KindCategories, id, "deleting category")
}

// TagInput is the editable part of a tag.
type TagInput struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

func (in TagInput) record() (content.Record, error) {
	name, err := required("name", in.Name)
	if err != nil {
		return nil, err
	}
	color := in.Color
	if color == "" {
		color = DefaultTagColor
	}
	return content.Record{"name": name, "slug": Slugify(name), "color": color}, nil
}

// Tags returns every tag in display order.
func (s *Service) Tags(ctx context.Context) ([]content.Tag, error) {
	out, err := fetchAs(ctx, s.store, content.KindTags, byOrder(), content.TagFromRecord)
	if err != nil {
		return nil, s.fail("loading tags", err)
	}
	return out, nil
}

// SearchTags ranks tags by name for the admin tag picker.
func (s *Service) SearchTags(ctx context.Context, query string) ([]content.Tag, error) {
	tags, err := s.Tags(ctx)
	if err != nil {
		return nil, err
	}
	return fuzzy.Search(tags, query, func(t content.Tag) []string { return []string{t.Name} }, fuzzy.TagPickerThreshold), nil
}

// CreateTag appends a tag to the end of the order.
func (s *Service) CreateTag(ctx context.Context, in TagInput) (content.Tag, error) {
	rec, err := in.record()
	if err != nil {
		return content.Tag{}, err
	}
	out, err := insertOrdered(ctx, s.store, content.KindTags, rec)
	if err != nil {
		return content.Tag{}, s.fail("saving tag", err, zap.String("name", in.Name))
	}
	return content.TagFromRecord(out), nil
}

// UpdateTag replaces a tag's fields and regenerates its slug.
func (s *Service) UpdateTag(ctx context.Context, id string, in TagInput) (content.Tag, error) {
	rec, err := in.record()
	if err != nil {
		return content.Tag{}, err
	}
	out, err := s.store.Update(ctx, content.KindTags, id, rec)
	if err != nil {
		return content.Tag{}, s.fail("saving tag", err, zap.String("id", id))
	}
	return content.TagFromRecord(out), nil
}

// DeleteTag removes a tag and its item associations.
func (s *Service) DeleteTag(ctx context.Context, id string) error {
	return s.deleteOrdered(ctx, content.KindTags, id, "deleting tag")
}

// PresetInput is the editable part of a tag preset.
type PresetInput struct {
	Name   string   `json:"preset_name"`
	TagIDs []string `json:"tag_ids"`
}

func (in PresetInput) record() (content.Record, error) {
	name, err := required("preset_name", in.Name)
	if err != nil {
		return nil, err
	}
	ids := MergeTagIDs(nil, in.TagIDs)
	if len(ids) == 0 {
		return nil, invalid("tag_ids", "select at least one tag")
	}
	return content.Record{"preset_name": name, "tag_ids": ids}, nil
}

// Presets returns the tag presets, newest first.
func (s *Service) Presets(ctx context.Context) ([]content.TagPreset, error) {
	out, err := fetchAs(ctx, s.store, content.KindTagPresets, content.QueryOptions{
		OrderBy: []content.Order{content.Desc(content.ColCreatedAt)},
	}, content.TagPresetFromRecord)
	if err != nil {
		return nil, s.fail("loading tag presets", err)
	}
	return out, nil
}

// CreatePreset stores a named tag set.
func (s *Service) CreatePreset(ctx context.Context, in PresetInput) (content.TagPreset, error) {
	rec, err := in.record()
	if err != nil {
		return content.TagPreset{}, err
	}
	out, err := s.store.Insert(ctx, content.KindTagPresets, rec)
	if err != nil {
		return content.TagPreset{}, s.fail("saving tag preset", err, zap.String("name", in.Name))
	}
	return content.TagPresetFromRecord(out), nil
}

// UpdatePreset replaces a preset's name and tags.
func (s *Service) UpdatePreset(ctx context.Context, id string, in PresetInput) (content.TagPreset, error) {
	rec, err := in.record()
	if err != nil {
		return content.TagPreset{}, err
	}
	out, err := s.store.Update(ctx, content.KindTagPresets, id, rec)
	if err != nil {
		return content.TagPreset{}, s.fail("saving tag preset", err, zap.String("id", id))
	}
	return content.TagPresetFromRecord(out), nil
}

// DeletePreset removes a preset.
func (s *Service) DeletePreset(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, content.KindTagPresets, id); err != nil {
		return s.fail("deleting tag preset", err, zap.String("id", id))
	}
	return nil
}

// MergeTagIDs appends the ids of add missing from current, keeping first
// occurrences in order. Empty ids are dropped.
func MergeTagIDs(current, add []string) []string {
	out := make([]string, 0, len(current)+len(add))
	for _, id := range slices.Concat(current, add) {
		if id != "" && !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}
