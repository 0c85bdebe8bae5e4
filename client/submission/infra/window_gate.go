package infra

import (
	"context"
	"errors"
	"sync"
	"time"

	"crpt-gateway/client/submission/domain"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// WindowGate é o gate de janela fixa: no máximo `limit` admissões por janela,
// e toda a capacidade volta de uma vez quando a janela vira (não é token bucket).
//
// count só é lido/alterado com mu travado. Quem espera captura o canal wake
// ainda com o lock, então um reset entre a checagem e a espera nunca se perde.
type WindowGate struct {
	mu     sync.Mutex
	count  int
	wake   chan struct{}
	closed bool

	limit  int
	window time.Duration

	name      string
	logger    *zap.Logger
	saturated rate.Sometimes

	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

var _ domain.Gate = (*WindowGate)(nil)

type GateOption func(*WindowGate)

func WithGateLogger(l *zap.Logger) GateOption {
	return func(g *WindowGate) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithGateName identifica o gate nos logs (ex: URL do endpoint).
func WithGateName(name string) GateOption {
	return func(g *WindowGate) { g.name = name }
}

// NewWindowGate cria o gate e já inicia a goroutine de reset.
// A janela 0 começa na construção com capacidade cheia.
// Close deve ser chamado para liberar o ticker.
func NewWindowGate(limit int, window time.Duration, opts ...GateOption) (*WindowGate, error) {
	if err := validateWindow(limit, window); err != nil {
		return nil, err
	}

	g := &WindowGate{
		wake:      make(chan struct{}),
		limit:     limit,
		window:    window,
		logger:    zap.NewNop(),
		saturated: rate.Sometimes{Interval: time.Second},
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.logger = g.logger.With(zap.String("gate", g.name), zap.Int("limit", limit), zap.Duration("window", window))

	t := time.NewTicker(window)
	go func() {
		defer close(g.done)
		defer t.Stop()
		for {
			select {
			case <-g.stop:
				return
			case <-t.C:
				g.reset()
			}
		}
	}()
	return g, nil
}

func validateWindow(limit int, window time.Duration) error {
	if limit <= 0 {
		return errors.New("gate limit must be > 0")
	}
	if window <= 0 {
		return errors.New("gate window must be > 0")
	}
	return nil
}

func (g *WindowGate) Limit() int            { return g.limit }
func (g *WindowGate) Window() time.Duration { return g.window }

// InUse retorna quantas admissões já aconteceram na janela corrente.
func (g *WindowGate) InUse() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.count
}

// Acquire bloqueia até existir vaga na janela corrente.
// Retorna ctx.Err() se o contexto encerrar e domain.ErrGateClosed se o gate fechar.
func (g *WindowGate) Acquire(ctx context.Context) error {
	for {
		g.mu.Lock()
		if g.closed {
			g.mu.Unlock()
			return domain.ErrGateClosed
		}
		if g.count < g.limit {
			g.count++
			g.mu.Unlock()
			return nil
		}
		wake := g.wake
		g.mu.Unlock()

		g.saturated.Do(func() {
			g.logger.Debug("gate saturated, waiting for next window")
		})

		select {
		case <-wake:
			// reavalia: outros podem ter ocupado as vagas primeiro
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Notify acorda quem espera para reavaliar o contador. Não devolve vaga.
func (g *WindowGate) Notify() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return
	}
	g.broadcastLocked()
}

// Close para o ticker e libera todos que esperam com domain.ErrGateClosed.
// Pode ser chamado mais de uma vez.
func (g *WindowGate) Close() error {
	g.closeOnce.Do(func() {
		close(g.stop)
		<-g.done

		g.mu.Lock()
		g.closed = true
		close(g.wake)
		g.mu.Unlock()

		g.logger.Debug("gate closed")
	})
	return nil
}

func (g *WindowGate) reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return
	}
	g.count = 0
	g.broadcastLocked()
}

// broadcastLocked exige mu travado.
func (g *WindowGate) broadcastLocked() {
	close(g.wake)
	g.wake = make(chan struct{})
}
