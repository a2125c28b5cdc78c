package feed

import (
	"context"
	"sort"
	"sync"

	"github.com/Luismorlan/feedcast/model"
)

// MemoryStore mirrors RedisStore semantics in process.
type MemoryStore struct {
	mu       sync.Mutex
	maxItems int
	feeds    map[model.DeliveryTarget]map[int64]struct{}
	foreign  map[model.DeliveryTarget]map[int64]struct{}
	// Err, when set, fails every append.
	Err error
}

func NewMemoryStore(maxItems int) *MemoryStore {
	if maxItems <= 0 {
		maxItems = DefaultMaxItems
	}
	return &MemoryStore{
		maxItems: maxItems,
		feeds:    make(map[model.DeliveryTarget]map[int64]struct{}),
		foreign:  make(map[model.DeliveryTarget]map[int64]struct{}),
	}
}

func insertTrimmed(m map[model.DeliveryTarget]map[int64]struct{}, target model.DeliveryTarget, statusID int64, maxItems int) bool {
	set, ok := m[target]
	if !ok {
		set = make(map[int64]struct{})
		m[target] = set
	}
	if _, ok := set[statusID]; ok {
		return false
	}
	set[statusID] = struct{}{}
	for len(set) > maxItems {
		oldest := statusID
		for id := range set {
			if id < oldest {
				oldest = id
			}
		}
		delete(set, oldest)
	}
	return true
}

func (s *MemoryStore) append(target model.DeliveryTarget, statusID int64, isEdit bool, isForeignContext bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return false, s.Err
	}
	_, present := s.feeds[target][statusID]
	added := insertTrimmed(s.feeds, target, statusID, s.maxItems)
	if isForeignContext {
		insertTrimmed(s.foreign, target, statusID, s.maxItems)
	}
	return added || (isEdit && present), nil
}

func (s *MemoryStore) AppendToPersonalFeed(ctx context.Context, accountID int64, statusID int64, isEdit bool) (bool, error) {
	return s.append(model.PersonalFeedOf(accountID), statusID, isEdit, false)
}

func (s *MemoryStore) AppendToListFeed(ctx context.Context, listID int64, statusID int64, isEdit bool, isForeignContext bool) (bool, error) {
	return s.append(model.NamedListFeedOf(listID), statusID, isEdit, isForeignContext)
}

func (s *MemoryStore) AppendToRuleFeed(ctx context.Context, antennaID int64, statusID int64, isEdit bool) (bool, error) {
	return s.append(model.RuleFeedOf(antennaID), statusID, isEdit, false)
}

func sortedDesc(set map[int64]struct{}, limit int) []int64 {
	ids := make([]int64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] > ids[j] })
	if limit >= 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	return ids
}

func (s *MemoryStore) Statuses(ctx context.Context, target model.DeliveryTarget, limit int) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedDesc(s.feeds[target], limit), nil
}

// Foreign lists ids recorded as foreign context for a list feed, newest first.
func (s *MemoryStore) Foreign(target model.DeliveryTarget) []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedDesc(s.foreign[target], -1)
}

// Targets lists every feed holding statusID.
func (s *MemoryStore) Targets(statusID int64) []model.DeliveryTarget {
	s.mu.Lock()
	defer s.mu.Unlock()
	res := []model.DeliveryTarget{}
	for target, set := range s.feeds {
		if _, ok := set[statusID]; ok {
			res = append(res, target)
		}
	}
	sort.Slice(res, func(i, j int) bool {
		if res[i].Kind != res[j].Kind {
			return res[i].Kind < res[j].Kind
		}
		return res[i].ID < res[j].ID
	})
	return res
}
