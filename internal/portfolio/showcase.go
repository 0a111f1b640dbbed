package portfolio

import (
	"context"
	"strings"

	"github.com/artpar/portfolio/internal/blob"
	"github.com/artpar/portfolio/internal/content"
	"go.uber.org/zap"
)

// A/B test upload prefixes.
const (
	VersionA = "version_a"
	VersionB = "version_b"
)

// ABTestInput is the editable part of an A/B test. Both files are
// required on create; on update a nil file keeps the stored image.
type ABTestInput struct {
	VideoTitle string
	VersionA   *Upload
	VersionB   *Upload
}

// CreateABTest uploads both versions and appends the test to the order.
func (s *Service) CreateABTest(ctx context.Context, in ABTestInput) (content.ABTest, error) {
	title, err := required("video_title", in.VideoTitle)
	if err != nil {
		return content.ABTest{}, err
	}
	if in.VersionA == nil || in.VersionB == nil {
		return content.ABTest{}, invalid("", "Both Version A and Version B images are required")
	}

	rec := content.Record{"video_title": title}
	if err := s.uploadVersions(ctx, in, rec); err != nil {
		return content.ABTest{}, err
	}

	out, err := insertOrdered(ctx, s.store, content.KindABTests, rec)
	if err != nil {
		return content.ABTest{}, s.fail("saving A/B test", err, zap.String("title", title))
	}
	return content.ABTestFromRecord(out), nil
}

// UpdateABTest changes the title and replaces any version given.
func (s *Service) UpdateABTest(ctx context.Context, id string, in ABTestInput) (content.ABTest, error) {
	title, err := required("video_title", in.VideoTitle)
	if err != nil {
		return content.ABTest{}, err
	}

	rec := content.Record{"video_title": title}
	if err := s.uploadVersions(ctx, in, rec); err != nil {
		return content.ABTest{}, err
	}

	out, err := s.store.Update(ctx, content.KindABTests, id, rec)
	if err != nil {
		return content.ABTest{}, s.fail("saving A/B test", err, zap.String("id", id))
	}
	return content.ABTestFromRecord(out), nil
}

func (s *Service) uploadVersions(ctx context.Context, in ABTestInput, rec content.Record) error {
	versions := []struct {
		name   string
		column string
		file   *Upload
	}{
		{VersionA, "version_a_url", in.VersionA},
		{VersionB, "version_b_url", in.VersionB},
	}
	for _, v := range versions {
		if v.file == nil {
			continue
		}
		objectPath := blob.ABObjectPath(v.name, v.file.Filename, s.now())
		url, err := s.upload(ctx, objectPath, *v.file)
		if err != nil {
			return s.fail("uploading file", err, zap.String("path", objectPath))
		}
		rec[v.column] = url
	}
	return nil
}

// DeleteABTest removes an A/B test.
func (s *Service) DeleteABTest(ctx context.Context, id string) error {
	return s.deleteOrdered(ctx, content.KindABTests, id, "deleting A/B test")
}

// AchievementInput is the editable part of an achievement.
type AchievementInput struct {
	Number int64  `json:"number"`
	Suffix string `json:"suffix"`
	Label  string `json:"label"`
	Icon   string `json:"icon"`
}

func (in AchievementInput) record() (content.Record, error) {
	label, err := required("label", in.Label)
	if err != nil {
		return nil, err
	}
	if in.Number < 0 {
		return nil, invalid("number", "must not be negative")
	}
	return content.Record{
		"number": in.Number,
		"suffix": strings.TrimSpace(in.Suffix),
		"label":  label,
		"icon":   strings.TrimSpace(in.Icon),
	}, nil
}

// CreateAchievement appends an achievement to the order.
func (s *Service) CreateAchievement(ctx context.Context, in AchievementInput) (content.Achievement, error) {
	rec, err := in.record()
	if err != nil {
		return content.Achievement{}, err
	}
	out, err := insertOrdered(ctx, s.store, content.KindAchievements, rec)
	if err != nil {
		return content.Achievement{}, s.fail("saving achievement", err)
	}
	return content.AchievementFromRecord(out), nil
}

// UpdateAchievement replaces an achievement's fields.
func (s *Service) UpdateAchievement(ctx context.Context, id string, in AchievementInput) (content.Achievement, error) {
	rec, err := in.record()
	if err != nil {
		return content.Achievement{}, err
	}
	out, err := s.store.Update(ctx, content.KindAchievements, id, rec)
	if err != nil {
		return content.Achievement{}, s.fail("saving achievement", err, zap.String("id", id))
	}
	return content.AchievementFromRecord(out), nil
}

// DeleteAchievement removes an achievement.
func (s *Service) DeleteAchievement(ctx context.Context, id string) error {
	return s.deleteOrdered(ctx, content.KindAchievements, id, "deleting achievement")
}

// ReviewInput is the editable part of a review.
type ReviewInput struct {
	ReviewerName string `json:"reviewer_name"`
	ReviewerText string `json:"reviewer_text"`
}

func (in ReviewInput) record() (content.Record, error) {
	name, err := required("reviewer_name", in.ReviewerName)
	if err != nil {
		return nil, err
	}
	text, err := required("reviewer_text", in.ReviewerText)
	if err != nil {
		return nil, err
	}
	return content.Record{"reviewer_name": name, "reviewer_text": text}, nil
}

// CreateReview appends a review to the order.
func (s *Service) CreateReview(ctx context.Context, in ReviewInput) (content.Review, error) {
	rec, err := in.record()
	if err != nil {
		return content.Review{}, err
	}
	out, err := insertOrdered(ctx, s.store, content.KindReviews, rec)
	if err != nil {
		return content.Review{}, s.fail("saving review", err)
	}
	return content.ReviewFromRecord(out), nil
}

// UpdateReview replaces a review's fields.
func (s *Service) UpdateReview(ctx context.Context, id string, in ReviewInput) (content.Review, error) {
	rec, err := in.record()
	if err != nil {
		return content.Review{}, err
	}
	out, err := s.store.Update(ctx, content.KindReviews, id, rec)
	if err != nil {
		return content.Review{}, s.fail("saving review", err, zap.String("id", id))
	}
	return content.ReviewFromRecord(out), nil
}

// DeleteReview removes a review.
func (s *Service) DeleteReview(ctx context.Context, id string) error {
	return s.deleteOrdered(ctx, content.KindReviews, id, "deleting review")
}

// FAQInput is the editable part of an FAQ.
type FAQInput struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

func (in FAQInput) record() (content.Record, error) {
	q := strings.TrimSpace(in.Question)
	a := strings.TrimSpace(in.Answer)
	if q == "" || a == "" {
		return nil, invalid("", "Please fill in both question and answer")
	}
	return content.Record{"question": q, "answer": a}, nil
}

// CreateFAQ appends an FAQ to the order.
func (s *Service) CreateFAQ(ctx context.Context, in FAQInput) (content.FAQ, error) {
	rec, err := in.record()
	if err != nil {
		return content.FAQ{}, err
	}
	out, err := insertOrdered(ctx, s.store, content.KindFAQs, rec)
	if err != nil {
		return content.FAQ{}, s.fail("saving FAQ", err)
	}
	return content.FAQFromRecord(out), nil
}

// UpdateFAQ replaces an FAQ's question and answer.
func (s *Service) UpdateFAQ(ctx context.Context, id string, in FAQInput) (content.FAQ, error) {
	rec, err := in.record()
	if err != nil {
		return content.FAQ{}, err
	}
	out, err := s.store.Update(ctx, content.KindFAQs, id, rec)
	if err != nil {
		return content.FAQ{}, s.fail("saving FAQ", err, zap.String("id", id))
	}
	return content.FAQFromRecord(out), nil
}

// DeleteFAQ removes an FAQ.
func (s *Service) DeleteFAQ(ctx context.Context, id string) error {
	return s.deleteOrdered(ctx, content.KindFAQs, id, "deleting FAQ")
}
