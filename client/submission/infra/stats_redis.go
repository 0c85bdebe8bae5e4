package infra

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"crpt-gateway/client/submission/domain"

	"github.com/redis/go-redis/v9"
)

// RedisStatsStore grava contadores de envio em hashes do Redis.
//
// Redis aqui é só estatística: a admissão continua local ao processo.
type RedisStatsStore struct {
	rdb *redis.Client

	prefix string
	// ttl aplica apenas em chaves de série temporal / por target.
	// total é cumulativo e não expira.
	ttl time.Duration

	bucket string // "minute" (padrão) ou "none"

	trackTargets bool
}

type RedisStatsOption func(*RedisStatsStore)

func WithStatsPrefix(prefix string) RedisStatsOption {
	return func(s *RedisStatsStore) {
		s.prefix = strings.Trim(prefix, ":")
	}
}

func WithStatsTTL(d time.Duration) RedisStatsOption {
	return func(s *RedisStatsStore) { s.ttl = d }
}

func WithStatsBucket(bucket string) RedisStatsOption {
	return func(s *RedisStatsStore) { s.bucket = strings.ToLower(strings.TrimSpace(bucket)) }
}

func WithStatsTrackTargets(track bool) RedisStatsOption {
	return func(s *RedisStatsStore) { s.trackTargets = track }
}

func NewRedisStatsStore(rdb *redis.Client, opts ...RedisStatsOption) *RedisStatsStore {
	s := &RedisStatsStore{
		rdb:    rdb,
		prefix: "crpt:stats",
		ttl:    24 * time.Hour,
		bucket: "minute",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStatsStore) Record(ctx context.Context, ev domain.StatsEvent) error {
	if s == nil || s.rdb == nil {
		return nil
	}

	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}

	field := string(ev.Outcome)
	if field == "" {
		return nil
	}

	totalKey := s.prefix + ":total"

	pipe := s.rdb.Pipeline()
	pipe.HIncrBy(ctx, totalKey, field, 1)
	if ev.Waited > 0 {
		pipe.HIncrBy(ctx, totalKey, "waited_ms", ev.Waited.Milliseconds())
	}

	if s.bucket == "minute" {
		bucketKey := fmt.Sprintf("%s:minute:%s", s.prefix, at.UTC().Format("200601021504"))
		pipe.HIncrBy(ctx, bucketKey, field, 1)
		if s.ttl > 0 {
			pipe.Expire(ctx, bucketKey, s.ttl)
		}
	}

	if ev.Status != 0 {
		pipe.HIncrBy(ctx, s.prefix+":status", strconv.Itoa(ev.Status), 1)
	}

	if s.trackTargets {
		t := strings.TrimSpace(ev.Target)
		if t != "" {
			targetKey := s.prefix + ":target:" + t
			pipe.HIncrBy(ctx, targetKey, field, 1)
			if s.ttl > 0 {
				pipe.Expire(ctx, targetKey, s.ttl)
			}
		}
	}

	_, err := pipe.Exec(ctx)
	return err
}
