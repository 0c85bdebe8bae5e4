package infra

import (
	"context"
	"errors"
	"sync"
	"time"

	"crpt-gateway/client/submission/domain"

	"go.uber.org/zap"
)

// Registry mantém um WindowGate por endpoint (chave), todos com o mesmo
// limit/window, com limpeza periódica dos gates ociosos.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*registryEntry
	closed  bool

	limit        int
	window       time.Duration
	idleTTL      time.Duration
	cleanupEvery time.Duration
	logger       *zap.Logger
}

type registryEntry struct {
	gate     *WindowGate
	lastSeen time.Time
}

type RegistryOption func(*Registry)

func WithIdleTTL(d time.Duration) RegistryOption {
	return func(r *Registry) { r.idleTTL = d }
}

func WithCleanupEvery(d time.Duration) RegistryOption {
	return func(r *Registry) { r.cleanupEvery = d }
}

func WithRegistryLogger(l *zap.Logger) RegistryOption {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRegistry valida limit/window da mesma forma que NewWindowGate.
//
// idleTTL nunca fica abaixo de 2x window: um gate só é descartado depois que a
// janela dele certamente virou, então recriá-lo não admite mais que limit.
func NewRegistry(limit int, window time.Duration, opts ...RegistryOption) (*Registry, error) {
	if err := validateWindow(limit, window); err != nil {
		return nil, err
	}

	r := &Registry{
		entries:      make(map[string]*registryEntry),
		limit:        limit,
		window:       window,
		idleTTL:      15 * time.Minute,
		cleanupEvery: 2 * time.Minute,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if floor := 2 * window; r.idleTTL < floor {
		r.idleTTL = floor
	}
	return r, nil
}

func (r *Registry) IdleTTL() time.Duration      { return r.idleTTL }
func (r *Registry) CleanupEvery() time.Duration { return r.cleanupEvery }

// Get retorna o gate da chave, criando se necessário.
func (r *Registry) Get(key string) (*WindowGate, error) {
	now := time.Now()

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, domain.ErrGateClosed
	}
	if ent, ok := r.entries[key]; ok {
		ent.lastSeen = now
		return ent.gate, nil
	}

	g, err := NewWindowGate(r.limit, r.window, WithGateName(key), WithGateLogger(r.logger))
	if err != nil {
		return nil, err
	}
	r.entries[key] = &registryEntry{gate: g, lastSeen: now}
	return g, nil
}

// Gate devolve um domain.Gate que resolve o gate da chave a cada chamada,
// então continua válido mesmo depois que o janitor descarta o gate ocioso.
func (r *Registry) Gate(key string) domain.Gate {
	return registryGate{r: r, key: key}
}

// Cleanup fecha e remove gates sem uso há mais de idleTTL.
// Gate com admissão na janela corrente nunca é removido.
func (r *Registry) Cleanup() {
	cutoff := time.Now().Add(-r.idleTTL)

	r.mu.Lock()
	var stale []*WindowGate
	for k, ent := range r.entries {
		if ent.lastSeen.Before(cutoff) && ent.gate.InUse() == 0 {
			stale = append(stale, ent.gate)
			delete(r.entries, k)
		}
	}
	r.mu.Unlock()

	for _, g := range stale {
		_ = g.Close()
	}
	if len(stale) > 0 {
		r.logger.Debug("reaped idle gates", zap.Int("count", len(stale)))
	}
}

// Len retorna quantos gates estão ativos.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// StartJanitor inicia uma goroutine que limpa gates ociosos periodicamente.
// Pare cancelando o contexto.
func (r *Registry) StartJanitor(ctx context.Context) {
	if r.cleanupEvery <= 0 {
		return
	}

	t := time.NewTicker(r.cleanupEvery)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				r.Cleanup()
			}
		}
	}()
}

// Close fecha todos os gates; Get passa a retornar domain.ErrGateClosed.
func (r *Registry) Close() error {
	r.mu.Lock()
	r.closed = true
	gates := make([]*WindowGate, 0, len(r.entries))
	for k, ent := range r.entries {
		gates = append(gates, ent.gate)
		delete(r.entries, k)
	}
	r.mu.Unlock()

	for _, g := range gates {
		_ = g.Close()
	}
	return nil
}

type registryGate struct {
	r   *Registry
	key string
}

func (g registryGate) Acquire(ctx context.Context) error {
	for {
		gate, err := g.r.Get(g.key)
		if err != nil {
			return err
		}
		err = gate.Acquire(ctx)
		if !errors.Is(err, domain.ErrGateClosed) {
			return err
		}
		// gate descartado pelo janitor enquanto esperava: pega o novo,
		// a menos que o registry inteiro tenha sido fechado.
	}
}

func (g registryGate) Notify() {
	g.r.mu.Lock()
	ent, ok := g.r.entries[g.key]
	g.r.mu.Unlock()
	if ok {
		ent.gate.Notify()
	}
}
