package feed

import (
	"context"
	"strconv"

	"github.com/Luismorlan/feedcast/model"
	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
)

// RedisStore keeps each feed in a sorted set scored by status id, trimmed to
// the newest maxItems entries.
type RedisStore struct {
	client   *redis.Client
	maxItems int64
}

func NewRedisStore(client *redis.Client, maxItems int) *RedisStore {
	if maxItems <= 0 {
		maxItems = DefaultMaxItems
	}
	return &RedisStore{client: client, maxItems: int64(maxItems)}
}

func (s *RedisStore) append(ctx context.Context, target model.DeliveryTarget, statusID int64, isEdit bool, isForeignContext bool) (bool, error) {
	key := Key(target)
	member := &redis.Z{Score: float64(statusID), Member: strconv.FormatInt(statusID, 10)}

	var added *redis.IntCmd
	var present *redis.FloatCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		present = pipe.ZScore(ctx, key, member.Member.(string))
		added = pipe.ZAddNX(ctx, key, member)
		pipe.ZRemRangeByRank(ctx, key, 0, -(s.maxItems + 1))
		if isForeignContext {
			foreign := ForeignKey(target)
			pipe.ZAddNX(ctx, foreign, member)
			pipe.ZRemRangeByRank(ctx, foreign, 0, -(s.maxItems + 1))
		}
		return nil
	})
	// ZSCORE of a missing member yields redis.Nil, which the pipeline reports.
	if err != nil && err != redis.Nil {
		return false, errors.Wrapf(err, "append %d to %s", statusID, key)
	}
	if err := added.Err(); err != nil {
		return false, errors.Wrapf(err, "append %d to %s", statusID, key)
	}
	if added.Val() > 0 {
		return true, nil
	}
	return isEdit && present.Err() == nil, nil
}

func (s *RedisStore) AppendToPersonalFeed(ctx context.Context, accountID int64, statusID int64, isEdit bool) (bool, error) {
	return s.append(ctx, model.PersonalFeedOf(accountID), statusID, isEdit, false)
}

func (s *RedisStore) AppendToListFeed(ctx context.Context, listID int64, statusID int64, isEdit bool, isForeignContext bool) (bool, error) {
	return s.append(ctx, model.NamedListFeedOf(listID), statusID, isEdit, isForeignContext)
}

func (s *RedisStore) AppendToRuleFeed(ctx context.Context, antennaID int64, statusID int64, isEdit bool) (bool, error) {
	return s.append(ctx, model.RuleFeedOf(antennaID), statusID, isEdit, false)
}

func (s *RedisStore) Statuses(ctx context.Context, target model.DeliveryTarget, limit int) ([]int64, error) {
	members, err := s.client.ZRevRange(ctx, Key(target), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", Key(target))
	}
	ids := make([]int64, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "malformed member %q in %s", m, Key(target))
		}
		ids = append(ids, id)
	}
	return ids, nil
}
