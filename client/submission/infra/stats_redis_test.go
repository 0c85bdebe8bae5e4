package infra

import (
	"context"
	"os"
	"testing"
	"time"

	"crpt-gateway/client/submission/domain"

	"github.com/redis/go-redis/v9"
)

func TestRedisStatsStore_NilClientIsNoop(t *testing.T) {
	var s *RedisStatsStore
	if err := s.Record(context.Background(), domain.StatsEvent{Outcome: domain.OutcomeAccepted}); err != nil {
		t.Fatalf("expected nil store to be a no-op, got %v", err)
	}
}

// Roda só com um Redis disponível (ex: REDIS_ADDR=localhost:6379).
func TestRedisStatsStore_RecordIncrementsHashes(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	rdb := redis.NewClient(&redis.Options{Addr: addr})
	defer func() { _ = rdb.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	prefix := "crpt:test:" + time.Now().Format("150405.000000")
	s := NewRedisStatsStore(rdb, WithStatsPrefix(prefix), WithStatsTTL(time.Minute), WithStatsTrackTargets(true))
	defer rdb.Del(ctx, prefix+":total", prefix+":status", prefix+":target:t1")

	for _, ev := range []domain.StatsEvent{
		{Target: "t1", Outcome: domain.OutcomeAccepted, Status: 200},
		{Target: "t1", Outcome: domain.OutcomeRejected, Status: 404},
		{Target: "t1", Outcome: domain.OutcomeAccepted, Status: 200},
	} {
		if err := s.Record(ctx, ev); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	got, err := rdb.HGet(ctx, prefix+":total", "accepted").Int()
	if err != nil {
		t.Fatalf("HGet: %v", err)
	}
	if got != 2 {
		t.Fatalf("expected accepted=2, got %d", got)
	}
	rejected, _ := rdb.HGet(ctx, prefix+":target:t1", "rejected").Int()
	if rejected != 1 {
		t.Fatalf("expected target rejected=1, got %d", rejected)
	}
	notFound, _ := rdb.HGet(ctx, prefix+":status", "404").Int()
	if notFound != 1 {
		t.Fatalf("expected status 404 count=1, got %d", notFound)
	}
}
