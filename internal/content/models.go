package content

import "time"

// Aspect ratios a category may declare.
const (
	AspectWide   = "16:9"
	AspectSquare = "1:1"
	AspectTall   = "9:16"
)

// File types of portfolio items.
const (
	FileImage = "image"
	FileVideo = "video"
)

// Category groups portfolio items.
type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	AspectRatio string    `json:"aspect_ratio"`
	IsHidden    bool      `json:"is_hidden"`
	OrderIndex  int       `json:"order_index"`
	CreatedAt   time.Time `json:"created_at"`
}

// CategoryFromRecord decodes a categories record.
func CategoryFromRecord(r Record) Category {
	return Category{
		ID:          r.ID(),
		Name:        r.String("name"),
		Slug:        r.String("slug"),
		AspectRatio: r.String("aspect_ratio"),
		IsHidden:    r.Bool("is_hidden"),
		OrderIndex:  int(r.Int(ColOrder)),
		CreatedAt:   r.Time(ColCreatedAt),
	}
}

// Tag labels portfolio items.
type Tag struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Slug       string    `json:"slug"`
	Color      string    `json:"color"`
	OrderIndex int       `json:"order_index"`
	CreatedAt  time.Time `json:"created_at"`
}

// TagFromRecord decodes a tags record.
func TagFromRecord(r Record) Tag {
	return Tag{
		ID:         r.ID(),
		Name:       r.String("name"),
		Slug:       r.String("slug"),
		Color:      r.String("color"),
		OrderIndex: int(r.Int(ColOrder)),
		CreatedAt:  r.Time(ColCreatedAt),
	}
}

// Item is a portfolio media entry. Category and Tags are populated by
// readers that join them.
type Item struct {
	ID         string    `json:"id"`
	FileURL    string    `json:"file_url"`
	FileType   string    `json:"file_type"`
	CategoryID string    `json:"category_id"`
	OrderIndex int       `json:"order_index"`
	IsStarred  bool      `json:"is_starred"`
	CreatedAt  time.Time `json:"created_at"`
	Category   *Category `json:"category,omitempty"`
	Tags       []Tag     `json:"tags,omitempty"`
}

// ItemFromRecord decodes a portfolio_items record.
func ItemFromRecord(r Record) Item {
	return Item{
		ID:         r.ID(),
		FileURL:    r.String("file_url"),
		FileType:   r.String("file_type"),
		CategoryID: r.String("category_id"),
		OrderIndex: int(r.Int(ColOrder)),
		IsStarred:  r.Bool("is_starred"),
		CreatedAt:  r.Time(ColCreatedAt),
	}
}

// TagNames returns the names of the item's tags.
func (i Item) TagNames() []string {
	names := make([]string, len(i.Tags))
	for n, t := range i.Tags {
		names[n] = t.Name
	}
	return names
}

// ItemTag associates an item with a tag.
type ItemTag struct {
	ID        string    `json:"id"`
	ItemID    string    `json:"portfolio_item_id"`
	TagID     string    `json:"tag_id"`
	CreatedAt time.Time `json:"created_at"`
}

// ItemTagFromRecord decodes a portfolio_item_tags record.
func ItemTagFromRecord(r Record) ItemTag {
	return ItemTag{
		ID:        r.ID(),
		ItemID:    r.String("portfolio_item_id"),
		TagID:     r.String("tag_id"),
		CreatedAt: r.Time(ColCreatedAt),
	}
}

// ABTest pairs two thumbnail versions of one video.
type ABTest struct {
	ID          string    `json:"id"`
	VideoTitle  string    `json:"video_title"`
	VersionAURL string    `json:"version_a_url"`
	VersionBURL string    `json:"version_b_url"`
	OrderIndex  int       `json:"order_index"`
	CreatedAt   time.Time `json:"created_at"`
}

// ABTestFromRecord decodes an ab_tests record.
func ABTestFromRecord(r Record) ABTest {
	return ABTest{
		ID:          r.ID(),
		VideoTitle:  r.String("video_title"),
		VersionAURL: r.String("version_a_url"),
		VersionBURL: r.String("version_b_url"),
		OrderIndex:  int(r.Int(ColOrder)),
		CreatedAt:   r.Time(ColCreatedAt),
	}
}

// Achievement is a headline counter.
type Achievement struct {
	ID         string    `json:"id"`
	Number     int64     `json:"number"`
	Suffix     string    `json:"suffix"`
	Label      string    `json:"label"`
	Icon       string    `json:"icon"`
	OrderIndex int       `json:"order_index"`
	CreatedAt  time.Time `json:"created_at"`
}

// AchievementFromRecord decodes an achievements record.
func AchievementFromRecord(r Record) Achievement {
	return Achievement{
		ID:         r.ID(),
		Number:     r.Int("number"),
		Suffix:     r.String("suffix"),
		Label:      r.String("label"),
		Icon:       r.String("icon"),
		OrderIndex: int(r.Int(ColOrder)),
		CreatedAt:  r.Time(ColCreatedAt),
	}
}

// MillionViews reports whether the counter is abbreviated once it finishes.
func (a Achievement) MillionViews() bool {
	return a.Number >= 1_000_000
}

// Review is a client testimonial.
type Review struct {
	ID           string    `json:"id"`
	ReviewerName string    `json:"reviewer_name"`
	ReviewerText string    `json:"reviewer_text"`
	OrderIndex   int       `json:"order_index"`
	CreatedAt    time.Time `json:"created_at"`
}

// ReviewFromRecord decodes a reviews record.
func ReviewFromRecord(r Record) Review {
	return Review{
		ID:           r.ID(),
		ReviewerName: r.String("reviewer_name"),
		ReviewerText: r.String("reviewer_text"),
		OrderIndex:   int(r.Int(ColOrder)),
		CreatedAt:    r.Time(ColCreatedAt),
	}
}

// FAQ is a question and its answer.
type FAQ struct {
	ID         string    `json:"id"`
	Question   string    `json:"question"`
	Answer     string    `json:"answer"`
	OrderIndex int       `json:"order_index"`
	CreatedAt  time.Time `json:"created_at"`
}

// FAQFromRecord decodes a faqs record.
func FAQFromRecord(r Record) FAQ {
	return FAQ{
		ID:         r.ID(),
		Question:   r.String("question"),
		Answer:     r.String("answer"),
		OrderIndex: int(r.Int(ColOrder)),
		CreatedAt:  r.Time(ColCreatedAt),
	}
}

// SiteVisit is the visit counter of one day.
type SiteVisit struct {
	ID         string    `json:"id"`
	VisitDate  string    `json:"visit_date"`
	VisitCount int64     `json:"visit_count"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// SiteVisitFromRecord decodes a site_analytics record.
func SiteVisitFromRecord(r Record) SiteVisit {
	return SiteVisit{
		ID:         r.ID(),
		VisitDate:  r.String("visit_date"),
		VisitCount: r.Int("visit_count"),
		CreatedAt:  r.Time(ColCreatedAt),
		UpdatedAt:  r.Time(ColUpdatedAt),
	}
}

// ItemClicks is the click counter of one item.
type ItemClicks struct {
	ID            string    `json:"id"`
	ItemID        string    `json:"portfolio_item_id"`
	ClickCount    int64     `json:"click_count"`
	LastClickedAt time.Time `json:"last_clicked_at"`
	CreatedAt     time.Time `json:"created_at"`
}

// ItemClicksFromRecord decodes a portfolio_clicks record.
func ItemClicksFromRecord(r Record) ItemClicks {
	return ItemClicks{
		ID:            r.ID(),
		ItemID:        r.String("portfolio_item_id"),
		ClickCount:    r.Int("click_count"),
		LastClickedAt: r.Time("last_clicked_at"),
		CreatedAt:     r.Time(ColCreatedAt),
	}
}

// TagRequest is a visitor's request for a new tag.
type TagRequest struct {
	ID           string    `json:"id"`
	RequestedTag string    `json:"requested_tag"`
	RequestedAt  time.Time `json:"requested_at"`
	Approved     bool      `json:"approved"`
}

// TagRequestFromRecord decodes a tag_requests record.
func TagRequestFromRecord(r Record) TagRequest {
	return TagRequest{
		ID:           r.ID(),
		RequestedTag: r.String("requested_tag"),
		RequestedAt:  r.Time("requested_at"),
		Approved:     r.Bool("approved"),
	}
}

// PrivateSubmission is a message left through the private access form.
type PrivateSubmission struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// PrivateSubmissionFromRecord decodes a private_form_submissions record.
func PrivateSubmissionFromRecord(r Record) PrivateSubmission {
	return PrivateSubmission{
		ID:        r.ID(),
		Name:      r.String("name"),
		Email:     r.String("email"),
		Message:   r.String("message"),
		CreatedAt: r.Time(ColCreatedAt),
	}
}

// TagPreset is a named set of tags applied together.
type TagPreset struct {
	ID         string    `json:"id"`
	PresetName string    `json:"preset_name"`
	TagIDs     []string  `json:"tag_ids"`
	CreatedAt  time.Time `json:"created_at"`
}

// TagPresetFromRecord decodes a tag_presets record.
func TagPresetFromRecord(r Record) TagPreset {
	return TagPreset{
		ID:         r.ID(),
		PresetName: r.String("preset_name"),
		TagIDs:     r.Strings("tag_ids"),
		CreatedAt:  r.Time(ColCreatedAt),
	}
}

// Progress is the number of thumbnails currently in production.
type Progress struct {
	ID                   string    `json:"id"`
	ThumbnailsInProgress int64     `json:"thumbnails_in_progress"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// ProgressFromRecord decodes a progress_tracker record.
func ProgressFromRecord(r Record) Progress {
	return Progress{
		ID:                   r.ID(),
		ThumbnailsInProgress: r.Int("thumbnails_in_progress"),
		CreatedAt:            r.Time(ColCreatedAt),
		UpdatedAt:            r.Time(ColUpdatedAt),
	}
}

// Decode converts records with fn.
func Decode[T any](records []Record, fn func(Record) T) []T {
	out := make([]T, len(records))
	for i, r := range records {
		out[i] = fn(r)
	}
	return out
}
