package portfolio

import (
	"context"
	"strings"

	"github.com/artpar/portfolio/internal/content"
	"github.com/artpar/portfolio/internal/estimate"
	"go.uber.org/zap"
)

// Categories returns the visible categories in display order.
func (s *Service) Categories(ctx context.Context) ([]content.Category, error) {
	out, err := fetchAs(ctx, s.store, content.KindCategories, content.QueryOptions{
		Filters: []content.Filter{content.Eq("is_hidden", false)},
		OrderBy: byOrder().OrderBy,
	}, content.CategoryFromRecord)
	if err != nil {
		return nil, s.fail("loading categories", err)
	}
	return out, nil
}

// ABTests returns the A/B tests in display order.
func (s *Service) ABTests(ctx context.Context) ([]content.ABTest, error) {
	out, err := fetchAs(ctx, s.store, content.KindABTests, byOrder(), content.ABTestFromRecord)
	if err != nil {
		return nil, s.fail("loading A/B tests", err)
	}
	return out, nil
}

// Achievements returns the achievement counters in display order.
func (s *Service) Achievements(ctx context.Context) ([]content.Achievement, error) {
	out, err := fetchAs(ctx, s.store, content.KindAchievements, byOrder(), content.AchievementFromRecord)
	if err != nil {
		return nil, s.fail("loading achievements", err)
	}
	return out, nil
}

// Reviews returns the reviews in display order.
func (s *Service) Reviews(ctx context.Context) ([]content.Review, error) {
	out, err := fetchAs(ctx, s.store, content.KindReviews, byOrder(), content.ReviewFromRecord)
	if err != nil {
		return nil, s.fail("loading reviews", err)
	}
	return out, nil
}

// FAQs returns the FAQs in display order.
func (s *Service) FAQs(ctx context.Context) ([]content.FAQ, error) {
	out, err := fetchAs(ctx, s.store, content.KindFAQs, byOrder(), content.FAQFromRecord)
	if err != nil {
		return nil, s.fail("loading FAQs", err)
	}
	return out, nil
}

// Progress returns the current production load and its estimate. With no
// tracker row the load is zero.
func (s *Service) Progress(ctx context.Context) (ProgressEstimate, error) {
	p, _, err := s.latestProgress(ctx)
	if err != nil {
		return ProgressEstimate{}, s.fail("loading progress", err)
	}
	return progressEstimate(p), nil
}

func progressEstimate(p content.Progress) ProgressEstimate {
	return ProgressEstimate{
		ThumbnailsInProgress: p.ThumbnailsInProgress,
		Estimate:             estimate.Tier(int(p.ThumbnailsInProgress)),
		UpdatedAt:            p.UpdatedAt,
	}
}

func (s *Service) latestProgress(ctx context.Context) (content.Progress, bool, error) {
	records, err := s.store.Fetch(ctx, content.KindProgressTracker, content.QueryOptions{
		OrderBy: []content.Order{content.Desc(content.ColUpdatedAt)},
		Limit:   1,
	})
	if err != nil {
		return content.Progress{}, false, err
	}
	if len(records) == 0 {
		return content.Progress{}, false, nil
	}
	return content.ProgressFromRecord(records[0]), true, nil
}

// PrivateForm is a submission of the private access form.
type PrivateForm struct {
	Password string `json:"password"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Message  string `json:"message"`
}

// CheckPrivatePassword gates access to the private form. An unset
// password disables private access.
func (s *Service) CheckPrivatePassword(password string) error {
	if s.settings.PrivatePassword == "" {
		return invalid("password", "private access is disabled")
	}
	if password != s.settings.PrivatePassword {
		return invalid("password", "Incorrect password. Please try again.")
	}
	return nil
}

// SubmitPrivateForm stores a private form message after checking the
// password and the fields.
func (s *Service) SubmitPrivateForm(ctx context.Context, form PrivateForm) (content.PrivateSubmission, error) {
	if err := s.CheckPrivatePassword(form.Password); err != nil {
		return content.PrivateSubmission{}, err
	}

	name := strings.TrimSpace(form.Name)
	email := strings.TrimSpace(form.Email)
	message := strings.TrimSpace(form.Message)
	if name == "" || email == "" || message == "" {
		return content.PrivateSubmission{}, invalid("", "Please fill in all fields")
	}
	if !ValidEmail(email) {
		return content.PrivateSubmission{}, invalid("email", "Please enter a valid email address")
	}

	rec, err := s.store.Insert(ctx, content.KindPrivateSubmits, content.Record{
		"name":    name,
		"email":   email,
		"message": message,
	})
	if err != nil {
		return content.PrivateSubmission{}, s.fail("submitting form", err)
	}
	return content.PrivateSubmissionFromRecord(rec), nil
}

// RequestTag records a visitor's request for a new tag.
func (s *Service) RequestTag(ctx context.Context, name string) (content.TagRequest, error) {
	tag, err := required("requested_tag", name)
	if err != nil {
		return content.TagRequest{}, err
	}
	rec, err := s.store.Insert(ctx, content.KindTagRequests, content.Record{"requested_tag": tag})
	if err != nil {
		return content.TagRequest{}, s.fail("requesting tag", err, zap.String("tag", tag))
	}
	return content.TagRequestFromRecord(rec), nil
}
