package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Luismorlan/feedcast/antenna"
	"github.com/Luismorlan/feedcast/model"
	"github.com/Luismorlan/feedcast/utils"
)

// MemoryStore keeps accounts, the follow graph, lists, antennas and statuses in
// memory. It implements the same read methods as the Postgres stores and backs
// unit tests and local runs.
type MemoryStore struct {
	mu sync.RWMutex

	accounts      map[int64]*model.Account
	follows       map[int64]map[int64]struct{} // follower -> targets
	blocks        map[int64]map[int64]struct{}
	lists         map[int64]*model.List
	listMembers   map[int64]map[int64]struct{} // list -> members
	tagFollows    map[int64]map[int64]struct{} // tag -> accounts
	statuses      map[int64]*model.Status
	antennas      map[int64]*model.Antenna
	conversations map[int64]map[int64]struct{} // account -> statuses
	nextAntennaID int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts:      make(map[int64]*model.Account),
		follows:       make(map[int64]map[int64]struct{}),
		blocks:        make(map[int64]map[int64]struct{}),
		lists:         make(map[int64]*model.List),
		listMembers:   make(map[int64]map[int64]struct{}),
		tagFollows:    make(map[int64]map[int64]struct{}),
		statuses:      make(map[int64]*model.Status),
		antennas:      make(map[int64]*model.Antenna),
		conversations: make(map[int64]map[int64]struct{}),
	}
}

func addEdge(m map[int64]map[int64]struct{}, from int64, to int64) {
	if _, ok := m[from]; !ok {
		m[from] = make(map[int64]struct{})
	}
	m[from][to] = struct{}{}
}

func hasEdge(m map[int64]map[int64]struct{}, from int64, to int64) bool {
	_, ok := m[from][to]
	return ok
}

func sortedIDs(set map[int64]struct{}) []int64 {
	ids := make([]int64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func idKey(id int64) int64 { return id }

func (s *MemoryStore) PutAccount(a model.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[a.ID] = &a
}

func (s *MemoryStore) PutFollow(followerID int64, targetID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	addEdge(s.follows, followerID, targetID)
}

func (s *MemoryStore) PutBlock(accountID int64, targetID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	addEdge(s.blocks, accountID, targetID)
}

func (s *MemoryStore) PutList(l model.List, memberIDs ...int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lists[l.ID] = &l
	for _, id := range memberIDs {
		addEdge(s.listMembers, l.ID, id)
	}
}

func (s *MemoryStore) PutTagFollow(accountID int64, tagID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	addEdge(s.tagFollows, tagID, accountID)
}

func (s *MemoryStore) PutStatus(status model.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses[status.ID] = &status
}

// PutAntenna stores a without write-time validation, so tests can seed
// malformed antennas.
func (s *MemoryStore) PutAntenna(a model.Antenna) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.ID == 0 {
		s.nextAntennaID++
		a.ID = s.nextAntennaID
	}
	if a.ID > s.nextAntennaID {
		s.nextAntennaID = a.ID
	}
	s.antennas[a.ID] = &a
}

func (s *MemoryStore) CreateAntenna(ctx context.Context, a *model.Antenna) error {
	if err := a.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, existing := range s.antennas {
		if existing.AccountID == a.AccountID {
			count++
		}
	}
	if count >= model.MaxAntennasPerAccount {
		return model.ErrAntennaLimitReached
	}
	s.nextAntennaID++
	a.ID = s.nextAntennaID
	stored := *a
	s.antennas[a.ID] = &stored
	return nil
}

func (s *MemoryStore) sortedAntennas() []model.Antenna {
	res := make([]model.Antenna, 0, len(s.antennas))
	for _, a := range s.antennas {
		res = append(res, *a)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res
}

func (s *MemoryStore) antennaPage(after int64, limit int, admit func(a *model.Antenna) bool) []model.Antenna {
	s.mu.RLock()
	defer s.mu.RUnlock()
	admitted := []model.Antenna{}
	for _, a := range s.sortedAntennas() {
		a := a
		if admit(&a) {
			admitted = append(admitted, a)
		}
	}
	return SlicePage(admitted, antennaKey, after, limit)
}

func (s *MemoryStore) TopicCandidates(c antenna.Criteria, pageSize int) *Cursor[model.Antenna] {
	return NewCursor(pageSize, antennaKey, func(ctx context.Context, after int64, limit int) ([]model.Antenna, error) {
		return s.antennaPage(after, limit, func(a *model.Antenna) bool {
			return c.Admits(a, s.accounts[a.AccountID])
		}), nil
	})
}

func (s *MemoryStore) BroadCandidates(c antenna.BroadCriteria, pageSize int) *Cursor[model.Antenna] {
	return NewCursor(pageSize, antennaKey, func(ctx context.Context, after int64, limit int) ([]model.Antenna, error) {
		return s.antennaPage(after, limit, func(a *model.Antenna) bool {
			return c.Admits(a, s.accounts[a.AccountID], hasEdge(s.follows, a.AccountID, c.AuthorID))
		}), nil
	})
}

func (s *MemoryStore) AntennaOwner(ctx context.Context, antennaID int64) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.antennas[antennaID]
	if !ok {
		return 0, ErrNotFound
	}
	return a.AccountID, nil
}

func (s *MemoryStore) isLocal(id int64) bool {
	a, ok := s.accounts[id]
	return ok && a.IsLocal() && !a.IsSuspended()
}

func (s *MemoryStore) isLocalActive(id int64, activeSince time.Time) bool {
	return s.isLocal(id) && s.accounts[id].ActiveSince(activeSince)
}

func (s *MemoryStore) idPage(after int64, limit int, collect func() map[int64]struct{}) []int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return SlicePage(sortedIDs(collect()), idKey, after, limit)
}

func (s *MemoryStore) LocalFollowers(accountID int64, activeSince time.Time, pageSize int) *Cursor[int64] {
	return NewIDCursor(pageSize, func(ctx context.Context, after int64, limit int) ([]int64, error) {
		return s.idPage(after, limit, func() map[int64]struct{} {
			res := map[int64]struct{}{}
			for follower := range s.follows {
				if hasEdge(s.follows, follower, accountID) && s.isLocalActive(follower, activeSince) {
					res[follower] = struct{}{}
				}
			}
			return res
		}), nil
	})
}

func (s *MemoryStore) listsContaining(memberID int64, activeSince time.Time, owners map[int64]struct{}) map[int64]struct{} {
	res := map[int64]struct{}{}
	for listID, members := range s.listMembers {
		if _, ok := members[memberID]; !ok {
			continue
		}
		l, ok := s.lists[listID]
		if !ok {
			continue
		}
		owner, ok := s.accounts[l.AccountID]
		if !ok || owner.IsSuspended() || !owner.ActiveSince(activeSince) {
			continue
		}
		if owners != nil {
			if _, ok := owners[l.AccountID]; !ok {
				continue
			}
		}
		res[listID] = struct{}{}
	}
	return res
}

func (s *MemoryStore) ListsForLocalDistribution(memberID int64, activeSince time.Time, pageSize int) *Cursor[int64] {
	return NewIDCursor(pageSize, func(ctx context.Context, after int64, limit int) ([]int64, error) {
		return s.idPage(after, limit, func() map[int64]struct{} {
			return s.listsContaining(memberID, activeSince, nil)
		}), nil
	})
}

func (s *MemoryStore) ListsOwnedByAmong(memberID int64, ownerIDs []int64, activeSince time.Time, pageSize int) *Cursor[int64] {
	owners := utils.Int64Set(ownerIDs)
	return NewIDCursor(pageSize, func(ctx context.Context, after int64, limit int) ([]int64, error) {
		return s.idPage(after, limit, func() map[int64]struct{} {
			return s.listsContaining(memberID, activeSince, owners)
		}), nil
	})
}

func (s *MemoryStore) LocalFollowersAmong(ctx context.Context, accountID int64, ids []int64, activeSince time.Time) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := map[int64]struct{}{}
	for _, id := range ids {
		if hasEdge(s.follows, id, accountID) && s.isLocalActive(id, activeSince) {
			res[id] = struct{}{}
		}
	}
	return sortedIDs(res), nil
}

func (s *MemoryStore) LocalAccountsAmong(ctx context.Context, ids []int64) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := map[int64]struct{}{}
	for _, id := range ids {
		if s.isLocal(id) {
			res[id] = struct{}{}
		}
	}
	return sortedIDs(res), nil
}

func (s *MemoryStore) TagFollowers(tagIDs []int64, pageSize int) *Cursor[int64] {
	return NewIDCursor(pageSize, func(ctx context.Context, after int64, limit int) ([]int64, error) {
		return s.idPage(after, limit, func() map[int64]struct{} {
			res := map[int64]struct{}{}
			for _, tagID := range tagIDs {
				for id := range s.tagFollows[tagID] {
					if s.isLocal(id) {
						res[id] = struct{}{}
					}
				}
			}
			return res
		}), nil
	})
}

func (s *MemoryStore) LocalRebloggers(statusID int64, pageSize int) *Cursor[int64] {
	return NewIDCursor(pageSize, func(ctx context.Context, after int64, limit int) ([]int64, error) {
		return s.idPage(after, limit, func() map[int64]struct{} {
			res := map[int64]struct{}{}
			for _, st := range s.statuses {
				if st.ReblogOfID != nil && *st.ReblogOfID == statusID && s.isLocal(st.AccountID) {
					res[st.AccountID] = struct{}{}
				}
			}
			return res
		}), nil
	})
}

func (s *MemoryStore) Relationships(ctx context.Context, authorID int64, ownerIDs []int64) (map[int64]antenna.Relationship, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make(map[int64]antenna.Relationship, len(ownerIDs))
	for _, id := range ownerIDs {
		rel := antenna.Relationship{
			OwnerFollowsAuthor: hasEdge(s.follows, id, authorID),
			AuthorFollowsOwner: hasEdge(s.follows, authorID, id),
		}
		if rel.OwnerFollowsAuthor || rel.AuthorFollowsOwner {
			res[id] = rel
		}
	}
	return res, nil
}

func (s *MemoryStore) FindAccount(ctx context.Context, id int64) (*model.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (s *MemoryStore) Blocking(ctx context.Context, accountID int64, targetID int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return hasEdge(s.blocks, accountID, targetID), nil
}

func (s *MemoryStore) ListOwner(ctx context.Context, listID int64) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.lists[listID]
	if !ok {
		return 0, ErrNotFound
	}
	return l.AccountID, nil
}

// FindStatus returns a copy of the stored status with its author attached.
func (s *MemoryStore) FindStatus(ctx context.Context, id int64) (*model.Status, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.statuses[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *st
	if a, ok := s.accounts[cp.AccountID]; ok {
		cp.Account = *a
	}
	return &cp, nil
}

func (s *MemoryStore) AddStatus(ctx context.Context, statusID int64, participantIDs []int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range participantIDs {
		addEdge(s.conversations, id, statusID)
	}
	return nil
}

// ConversationStatuses lists status ids in accountID's conversations.
func (s *MemoryStore) ConversationStatuses(accountID int64) []int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedIDs(s.conversations[accountID])
}
