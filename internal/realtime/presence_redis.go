package realtime

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const presenceKey = "campus:presence"

// RedisPresence keeps last-seen times in a sorted set so presence is shared
// between server instances.
type RedisPresence struct {
	rdb *redis.Client
	now func() time.Time
}

// NewRedisClient accepts either a redis:// URL or a bare host:port address.
func NewRedisClient(redisURL string) (*redis.Client, error) {
	if strings.HasPrefix(redisURL, "redis://") || strings.HasPrefix(redisURL, "rediss://") {
		opts, err := redis.ParseURL(redisURL)
		if err != nil {
			return nil, errors.Wrap(err, "parse REDIS_URL")
		}
		return redis.NewClient(opts), nil
	}
	return redis.NewClient(&redis.Options{Addr: redisURL}), nil
}

func NewRedisPresence(rdb *redis.Client) *RedisPresence {
	return &RedisPresence{rdb: rdb, now: time.Now}
}

func (p *RedisPresence) Heartbeat(ctx context.Context, userID primitive.ObjectID) error {
	err := p.rdb.ZAdd(ctx, presenceKey, &redis.Z{
		Score:  float64(p.now().Unix()),
		Member: userID.Hex(),
	}).Err()
	return errors.Wrap(err, "presence heartbeat")
}

func (p *RedisPresence) SetOffline(ctx context.Context, userID primitive.ObjectID) error {
	return errors.Wrap(p.rdb.ZRem(ctx, presenceKey, userID.Hex()).Err(), "presence offline")
}

func (p *RedisPresence) Online(ctx context.Context, userIDs []primitive.ObjectID) ([]primitive.ObjectID, error) {
	if len(userIDs) == 0 {
		return []primitive.ObjectID{}, nil
	}

	pipe := p.rdb.Pipeline()
	cmds := make([]*redis.FloatCmd, len(userIDs))
	for i, id := range userIDs {
		cmds[i] = pipe.ZScore(ctx, presenceKey, id.Hex())
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, errors.Wrap(err, "presence lookup")
	}

	cutoff := float64(p.now().Add(-PresenceTTL).Unix())
	online := make([]primitive.ObjectID, 0, len(userIDs))
	for i, cmd := range cmds {
		score, err := cmd.Result()
		if err != nil {
			continue
		}
		if score > cutoff {
			online = append(online, userIDs[i])
		}
	}
	return online, nil
}

func (p *RedisPresence) Sweep(ctx context.Context) (int64, error) {
	cutoff := strconv.FormatInt(p.now().Add(-PresenceTTL).Unix(), 10)
	n, err := p.rdb.ZRemRangeByScore(ctx, presenceKey, "-inf", cutoff).Result()
	if err != nil {
		return 0, errors.Wrap(err, "presence sweep")
	}
	if n > 0 {
		logrus.WithField("removed", n).Debug("Stale presence entries removed")
	}
	return n, nil
}
