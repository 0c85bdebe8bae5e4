package application

import (
	"context"
	"time"

	"crpt-gateway/client/submission/domain"
)

// InFlightService reserva vaga de chamada em voo para um envio já admitido pelo gate.
type InFlightService struct {
	// Limiter nil significa sem limite.
	Limiter domain.InFlightLimiter
	// Timeout <= 0 espera até o ctx do chamador encerrar.
	Timeout time.Duration
}

// Reserve retorna a função de release ou o motivo da desistência:
// context.Canceled quando o chamador cancelou e context.DeadlineExceeded
// quando o Timeout (ou o deadline do chamador) venceu.
func (s InFlightService) Reserve(ctx context.Context) (func(), error) {
	if s.Limiter == nil {
		return func() {}, nil
	}
	if s.Timeout <= 0 {
		return s.Limiter.Reserve(ctx)
	}

	rctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()
	return s.Limiter.Reserve(rctx)
}
