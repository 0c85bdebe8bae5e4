package infra

import (
	"context"
	"sync"

	"crpt-gateway/client/submission/domain"
)

// InFlightPool é um semáforo em channel com `max` vagas de chamada em voo.
type InFlightPool struct {
	sem chan struct{}
}

var _ domain.InFlightLimiter = (*InFlightPool)(nil)

// NewInFlightPool retorna nil com max <= 0 (sem limite).
func NewInFlightPool(max int) *InFlightPool {
	if max <= 0 {
		return nil
	}
	return &InFlightPool{sem: make(chan struct{}, max)}
}

func (p *InFlightPool) Reserve(ctx context.Context) (func(), error) {
	// ctx já encerrado não disputa vaga com o select abaixo
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	select {
	case p.sem <- struct{}{}:
		var once sync.Once
		return func() { once.Do(func() { <-p.sem }) }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (p *InFlightPool) Cap() int { return cap(p.sem) }

// InUse retorna quantas vagas estão ocupadas agora.
func (p *InFlightPool) InUse() int { return len(p.sem) }
