package main

import (
	"context"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// quota imita a cota do servidor real: um token bucket (x/time/rate) por cliente,
// com limpeza periódica dos clientes inativos.
//
// O burst é 2x limit: um cliente de janela fixa pode mandar até 2*limit
// chamadas em volta da virada de janela sem estar errado.
type quota struct {
	mu      sync.Mutex
	entries map[string]*quotaEntry
	rps     rate.Limit
	burst   int
	idleTTL time.Duration
}

type quotaEntry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

func newQuota(limit int, window time.Duration) *quota {
	return &quota{
		entries: make(map[string]*quotaEntry),
		rps:     rate.Limit(float64(limit) / window.Seconds()),
		burst:   2 * limit,
		idleTTL: 15 * time.Minute,
	}
}

func (q *quota) Allow(key string) bool {
	now := time.Now()

	q.mu.Lock()
	ent, ok := q.entries[key]
	if !ok {
		ent = &quotaEntry{lim: rate.NewLimiter(q.rps, q.burst)}
		q.entries[key] = ent
	}
	ent.lastSeen = now
	q.mu.Unlock()

	return ent.lim.AllowN(now, 1)
}

func (q *quota) cleanup() {
	cutoff := time.Now().Add(-q.idleTTL)

	q.mu.Lock()
	defer q.mu.Unlock()
	for k, ent := range q.entries {
		if ent.lastSeen.Before(cutoff) {
			delete(q.entries, k)
		}
	}
}

// startJanitor limpa clientes inativos até o ctx encerrar.
func (q *quota) startJanitor(ctx context.Context, every time.Duration) {
	t := time.NewTicker(every)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				q.cleanup()
			}
		}
	}()
}

// clientKey identifica o cliente pelo header X-Client ou, na falta, pelo host remoto.
func clientKey(r *http.Request) string {
	if v := strings.TrimSpace(r.Header.Get("X-Client")); v != "" {
		return v
	}
	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil && host != "" {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return "unknown"
}
