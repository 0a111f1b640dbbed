package portfolio

import (
	"context"
	"fmt"

	"github.com/artpar/portfolio/internal/content"
	"github.com/artpar/portfolio/internal/reorder"
	"go.uber.org/zap"
)

var orderable = map[content.Kind]string{
	content.KindCategories:   "reordering categories",
	content.KindTags:         "reordering tags",
	content.KindItems:        "reordering portfolio items",
	content.KindABTests:      "reordering A/B tests",
	content.KindAchievements: "reordering achievements",
	content.KindReviews:      "reordering reviews",
	content.KindFAQs:         "reordering FAQs",
}

// Orderable reports whether kind carries a drag-and-drop order.
func Orderable(kind content.Kind) bool {
	_, ok := orderable[kind]
	return ok
}

// Reorder moves movedID to targetID's position within kind and writes back
// every changed order index. Unknown or equal ids leave the order as is.
func (s *Service) Reorder(ctx context.Context, kind content.Kind, movedID, targetID string) ([]reorder.Entry, error) {
	action, ok := orderable[kind]
	if !ok {
		return nil, invalid("kind", fmt.Sprintf("%s cannot be reordered", kind))
	}

	s.orderMu.Lock()
	defer s.orderMu.Unlock()

	entries, err := s.orderEntries(ctx, kind)
	if err != nil {
		return nil, s.fail(action, err, zap.String("kind", string(kind)))
	}

	list := reorder.NewList(entries, s.orderWriter(kind))
	out, err := list.Move(ctx, movedID, targetID)
	if err != nil {
		return nil, s.fail(action, err,
			zap.String("kind", string(kind)),
			zap.String("moved", movedID),
			zap.String("target", targetID))
	}
	return out, nil
}

// renumber closes gaps left in kind's order after a delete.
func (s *Service) renumber(ctx context.Context, kind content.Kind) error {
	s.orderMu.Lock()
	defer s.orderMu.Unlock()

	before, err := s.orderEntries(ctx, kind)
	if err != nil {
		return err
	}
	w := s.orderWriter(kind)
	for _, e := range reorder.Changed(before, reorder.Normalize(before)) {
		if err := w.WriteOrder(ctx, e.ID, e.OrderIndex); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) orderEntries(ctx context.Context, kind content.Kind) ([]reorder.Entry, error) {
	records, err := s.store.Fetch(ctx, kind, byOrder())
	if err != nil {
		return nil, err
	}
	return content.Decode(records, func(r content.Record) reorder.Entry {
		return reorder.Entry{ID: r.ID(), OrderIndex: int(r.Int(content.ColOrder))}
	}), nil
}

func (s *Service) orderWriter(kind content.Kind) reorder.Writer {
	return reorder.WriterFunc(func(ctx context.Context, id string, orderIndex int) error {
		_, err := s.store.Update(ctx, kind, id, content.Record{content.ColOrder: orderIndex})
		return err
	})
}

// insertOrdered appends rec to the end of kind's order.
func insertOrdered(ctx context.Context, store content.Store, kind content.Kind, rec content.Record) (content.Record, error) {
	var out content.Record
	err := store.Tx(ctx, func(tx content.Store) error {
		n, err := tx.Count(ctx, kind, content.QueryOptions{})
		if err != nil {
			return err
		}
		rec[content.ColOrder] = n
		out, err = tx.Insert(ctx, kind, rec)
		return err
	})
	return out, err
}

// deleteOrdered removes id from kind and renumbers what remains.
func (s *Service) deleteOrdered(ctx context.Context, kind content.Kind, id, action string) error {
	if err := s.store.Delete(ctx, kind, id); err != nil {
		return s.fail(action, err, zap.String("kind", string(kind)), zap.String("id", id))
	}
	if err := s.renumber(ctx, kind); err != nil {
		s.logger.Warn("failed to renumber after delete", zap.String("kind", string(kind)), zap.Error(err))
	}
	return nil
}
