package infra

import (
	"context"
	"sync"
	"time"

	"crpt-gateway/client/submission/domain"
)

type Counters struct {
	Accepted        int64
	Rejected        int64
	TransportErrors int64
	EncodingErrors  int64
	NoSlot          int64

	// Waited soma o tempo que os envios passaram bloqueados no gate.
	Waited time.Duration
}

// Total é a quantidade de envios admitidos, qualquer que seja o resultado.
func (c Counters) Total() int64 {
	return c.Accepted + c.Rejected + c.TransportErrors + c.EncodingErrors + c.NoSlot
}

func (c *Counters) add(ev domain.StatsEvent) {
	switch ev.Outcome {
	case domain.OutcomeAccepted:
		c.Accepted++
	case domain.OutcomeRejected:
		c.Rejected++
	case domain.OutcomeTransportError:
		c.TransportErrors++
	case domain.OutcomeEncodingError:
		c.EncodingErrors++
	case domain.OutcomeNoSlot:
		c.NoSlot++
	}
	c.Waited += ev.Waited
}

// MemoryStatsStore é uma implementação simples em memória.
// Útil para testes e para o resumo do CLI.
//
// Não faz expiração.
type MemoryStatsStore struct {
	mu       sync.Mutex
	total    Counters
	byTarget map[string]Counters
	byStatus map[int]int64

	trackTargets bool
}

type MemoryStatsOption func(*MemoryStatsStore)

func WithTrackTargets(track bool) MemoryStatsOption {
	return func(s *MemoryStatsStore) { s.trackTargets = track }
}

func NewMemoryStatsStore(opts ...MemoryStatsOption) *MemoryStatsStore {
	s := &MemoryStatsStore{
		byTarget: make(map[string]Counters),
		byStatus: make(map[int]int64),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStatsStore) Record(_ context.Context, ev domain.StatsEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.total.add(ev)
	if ev.Status != 0 {
		s.byStatus[ev.Status]++
	}
	if s.trackTargets {
		c := s.byTarget[ev.Target]
		c.add(ev)
		s.byTarget[ev.Target] = c
	}
	return nil
}

func (s *MemoryStatsStore) Total() Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

func (s *MemoryStatsStore) ByTarget() map[string]Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]Counters, len(s.byTarget))
	for k, v := range s.byTarget {
		out[k] = v
	}
	return out
}

func (s *MemoryStatsStore) ByStatus() map[int]int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[int]int64, len(s.byStatus))
	for k, v := range s.byStatus {
		out[k] = v
	}
	return out
}
