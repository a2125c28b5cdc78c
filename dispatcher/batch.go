package dispatcher

import (
	"context"

	"github.com/Luismorlan/feedcast/model"
	"github.com/Luismorlan/feedcast/queue"
	"github.com/pkg/errors"
)

// flushOrder fixes the order kinds are enqueued in.
var flushOrder = []model.FeedKind{model.FeedKindHome, model.FeedKindList, model.FeedKindAntenna}

// Batch accumulates antenna delivery targets of one status, deduplicated per
// feed kind, and enqueues them with one bulk call per kind.
type Batch struct {
	statusID int64
	update   bool

	items map[model.FeedKind][]queue.FeedInsertion
	index map[model.DeliveryTarget]int
}

func NewBatch(statusID int64, update bool) *Batch {
	b := &Batch{statusID: statusID, update: update}
	b.reset()
	return b
}

func (b *Batch) reset() {
	b.items = make(map[model.FeedKind][]queue.FeedInsertion)
	b.index = make(map[model.DeliveryTarget]int)
}

// Add records target. It returns false when target was already recorded. A
// target reached both in and out of a foreign context keeps the non-foreign
// provenance.
func (b *Batch) Add(target model.DeliveryTarget, foreignContext bool) bool {
	if i, ok := b.index[target]; ok {
		if !foreignContext {
			b.items[target.Kind][i].ForeignContext = false
		}
		return false
	}
	b.index[target] = len(b.items[target.Kind])
	b.items[target.Kind] = append(b.items[target.Kind], queue.FeedInsertion{
		StatusID:       b.statusID,
		Kind:           target.Kind,
		TargetID:       target.ID,
		Update:         b.update,
		ForeignContext: foreignContext,
	})
	return true
}

func (b *Batch) Len() int {
	return len(b.index)
}

// Items returns the recorded insertions of one kind in insertion order.
func (b *Batch) Items(kind model.FeedKind) []queue.FeedInsertion {
	return append([]queue.FeedInsertion{}, b.items[kind]...)
}

// Flush enqueues every recorded insertion, one EnqueueBulk call per non-empty
// kind, and empties the batch. It returns the number enqueued per kind. On
// failure the batch keeps the kinds that were not enqueued yet.
func (b *Batch) Flush(ctx context.Context, q queue.FeedInsertionQueue) (map[model.FeedKind]int, error) {
	counts := make(map[model.FeedKind]int)
	for _, kind := range flushOrder {
		items := b.items[kind]
		if len(items) == 0 {
			continue
		}
		if err := q.EnqueueBulk(ctx, items); err != nil {
			return counts, errors.Wrapf(err, "enqueue %d %s antenna insertions", len(items), kind)
		}
		counts[kind] = len(items)
		for _, item := range items {
			delete(b.index, item.Target())
		}
		delete(b.items, kind)
	}
	return counts, nil
}
