package portfolio

import (
	"context"

	"github.com/artpar/portfolio/internal/content"
	"go.uber.org/zap"
)

// SetProgress records the number of thumbnails in production. The latest
// tracker row is updated, or one is created, and notifier is told.
func (s *Service) SetProgress(ctx context.Context, count int64) (ProgressEstimate, error) {
	if count < 0 {
		return ProgressEstimate{}, invalid("thumbnails_in_progress", "must not be negative")
	}

	latest, ok, err := s.latestProgress(ctx)
	if err != nil {
		return ProgressEstimate{}, s.fail("updating progress", err)
	}

	fields := content.Record{"thumbnails_in_progress": count}
	var rec content.Record
	if ok {
		rec, err = s.store.Update(ctx, content.KindProgressTracker, latest.ID, fields)
	} else {
		rec, err = s.store.Insert(ctx, content.KindProgressTracker, fields)
	}
	if err != nil {
		return ProgressEstimate{}, s.fail("updating progress", err)
	}

	p := progressEstimate(content.ProgressFromRecord(rec))
	if s.notifier != nil {
		s.notifier.NotifyProgress(p)
	}
	return p, nil
}

// Submissions returns private form submissions, newest first.
func (s *Service) Submissions(ctx context.Context) ([]content.PrivateSubmission, error) {
	out, err := fetchAs(ctx, s.store, content.KindPrivateSubmits, content.QueryOptions{
		OrderBy: []content.Order{content.Desc(content.ColCreatedAt)},
	}, content.PrivateSubmissionFromRecord)
	if err != nil {
		return nil, s.fail("loading submissions", err)
	}
	return out, nil
}

// DeleteSubmission removes a private form submission.
func (s *Service) DeleteSubmission(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, content.KindPrivateSubmits, id); err != nil {
		return s.fail("deleting submission", err, zap.String("id", id))
	}
	return nil
}

// TagRequests returns the tag requests, newest first.
func (s *Service) TagRequests(ctx context.Context) ([]content.TagRequest, error) {
	out, err := fetchAs(ctx, s.store, content.KindTagRequests, content.QueryOptions{
		OrderBy: []content.Order{content.Desc("requested_at")},
	}, content.TagRequestFromRecord)
	if err != nil {
		return nil, s.fail("loading tag requests", err)
	}
	return out, nil
}

// ApproveTagRequest marks a request approved and creates the tag unless
// one with the same slug exists.
func (s *Service) ApproveTagRequest(ctx context.Context, id string) (content.Tag, error) {
	var tag content.Tag
	err := s.store.Tx(ctx, func(tx content.Store) error {
		rec, err := tx.Update(ctx, content.KindTagRequests, id, content.Record{"approved": true})
		if err != nil {
			return err
		}
		in := TagInput{Name: content.TagRequestFromRecord(rec).RequestedTag}
		fields, err := in.record()
		if err != nil {
			return err
		}

		existing, err := tx.Fetch(ctx, content.KindTags, content.QueryOptions{
			Filters: []content.Filter{content.Eq("slug", fields["slug"])},
			Limit:   1,
		})
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			tag = content.TagFromRecord(existing[0])
			return nil
		}

		created, err := insertOrdered(ctx, tx, content.KindTags, fields)
		if err != nil {
			return err
		}
		tag = content.TagFromRecord(created)
		return nil
	})
	if err != nil {
		return content.Tag{}, s.fail("approving tag request", err, zap.String("id", id))
	}
	return tag, nil
}

// DeleteTagRequest removes a tag request.
func (s *Service) DeleteTagRequest(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, content.KindTagRequests, id); err != nil {
		return s.fail("deleting tag request", err, zap.String("id", id))
	}
	return nil
}
