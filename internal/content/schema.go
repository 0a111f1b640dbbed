package content

import (
	"fmt"
	"sort"
)

// Kind names a record collection.
type Kind string

const (
	KindCategories      Kind = "categories"
	KindItems           Kind = "portfolio_items"
	KindTags            Kind = "tags"
	KindItemTags        Kind = "portfolio_item_tags"
	KindABTests         Kind = "ab_tests"
	KindAchievements    Kind = "achievements"
	KindReviews         Kind = "reviews"
	KindFAQs            Kind = "faqs"
	KindSiteAnalytics   Kind = "site_analytics"
	KindClicks          Kind = "portfolio_clicks"
	KindTagRequests     Kind = "tag_requests"
	KindPrivateSubmits  Kind = "private_form_submissions"
	KindTagPresets      Kind = "tag_presets"
	KindProgressTracker Kind = "progress_tracker"
)

// ColumnType is the storage type of a column.
type ColumnType int

const (
	TypeText ColumnType = iota
	TypeInt
	TypeBool
	TypeTime
	TypeList
)

func (t ColumnType) String() string {
	switch t {
	case TypeText:
		return "text"
	case TypeInt:
		return "int"
	case TypeBool:
		return "bool"
	case TypeTime:
		return "time"
	case TypeList:
		return "list"
	default:
		return fmt.Sprintf("ColumnType(%d)", int(t))
	}
}

// Column describes one column of a kind. Stamped time columns are set to
// the current time on insert when absent.
type Column struct {
	Name    string
	Type    ColumnType
	Stamped bool
}

// Well-known columns.
const (
	ColID        = "id"
	ColCreatedAt = "created_at"
	ColUpdatedAt = "updated_at"
	ColOrder     = "order_index"
)

var schema = map[Kind][]Column{
	KindCategories: {
		{Name: "name"}, {Name: "slug"}, {Name: "aspect_ratio"},
		{Name: "is_hidden", Type: TypeBool}, {Name: ColOrder, Type: TypeInt},
	},
	KindItems: {
		{Name: "file_url"}, {Name: "file_type"}, {Name: "category_id"},
		{Name: ColOrder, Type: TypeInt}, {Name: "is_starred", Type: TypeBool},
	},
	KindTags: {
		{Name: "name"}, {Name: "slug"}, {Name: "color"}, {Name: ColOrder, Type: TypeInt},
	},
	KindItemTags: {
		{Name: "portfolio_item_id"}, {Name: "tag_id"},
	},
	KindABTests: {
		{Name: "video_title"}, {Name: "version_a_url"}, {Name: "version_b_url"},
		{Name: ColOrder, Type: TypeInt},
	},
	KindAchievements: {
		{Name: "number", Type: TypeInt}, {Name: "suffix"}, {Name: "label"}, {Name: "icon"},
		{Name: ColOrder, Type: TypeInt},
	},
	KindReviews: {
		{Name: "reviewer_name"}, {Name: "reviewer_text"}, {Name: ColOrder, Type: TypeInt},
	},
	KindFAQs: {
		{Name: "question"}, {Name: "answer"}, {Name: ColOrder, Type: TypeInt},
	},
	KindSiteAnalytics: {
		{Name: "visit_date"}, {Name: "visit_count", Type: TypeInt},
		{Name: ColUpdatedAt, Type: TypeTime, Stamped: true},
	},
	KindClicks: {
		{Name: "portfolio_item_id"}, {Name: "click_count", Type: TypeInt},
		{Name: "last_clicked_at", Type: TypeTime, Stamped: true},
	},
	KindTagRequests: {
		{Name: "requested_tag"}, {Name: "requested_at", Type: TypeTime, Stamped: true},
		{Name: "approved", Type: TypeBool},
	},
	KindPrivateSubmits: {
		{Name: "name"}, {Name: "email"}, {Name: "message"},
	},
	KindTagPresets: {
		{Name: "preset_name"}, {Name: "tag_ids", Type: TypeList},
	},
	KindProgressTracker: {
		{Name: "thumbnails_in_progress", Type: TypeInt},
		{Name: ColUpdatedAt, Type: TypeTime, Stamped: true},
	},
}

var common = []Column{
	{Name: ColID},
	{Name: ColCreatedAt, Type: TypeTime, Stamped: true},
}

// Kinds returns every known kind in name order.
func Kinds() []Kind {
	kinds := make([]Kind, 0, len(schema))
	for k := range schema {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// Schema returns the ordered columns of kind, starting with id and
// created_at.
func Schema(kind Kind) ([]Column, error) {
	cols, ok := schema[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
	out := make([]Column, 0, len(common)+len(cols))
	out = append(out, common...)
	return append(out, cols...), nil
}

// Columns returns the columns of kind keyed by name.
func Columns(kind Kind) (map[string]Column, error) {
	cols, err := Schema(kind)
	if err != nil {
		return nil, err
	}
	m := make(map[string]Column, len(cols))
	for _, c := range cols {
		m[c.Name] = c
	}
	return m, nil
}

// HasColumn reports whether kind has the named column.
func HasColumn(kind Kind, name string) bool {
	cols, err := Columns(kind)
	if err != nil {
		return false
	}
	_, ok := cols[name]
	return ok
}

func unknownColumn(kind Kind, name string) error {
	return fmt.Errorf("%w: %s.%s", ErrUnknownColumn, kind, name)
}
