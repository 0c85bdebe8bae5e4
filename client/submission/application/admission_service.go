package application

import (
	"context"
	"time"

	"crpt-gateway/client/submission/domain"
)

// AdmissionService concentra a regra de admissão no gate com timeout opcional,
// sem saber nada sobre HTTP.
type AdmissionService struct {
	Gate           domain.Gate
	AcquireTimeout time.Duration

	// Now permite controlar o relógio em testes. nil usa time.Now.
	Now func() time.Time
}

// Admit espera uma vaga na janela corrente.
// - Se `AcquireTimeout <= 0`, espera indefinidamente (até ctx cancelar ou o gate fechar).
// - Se `AcquireTimeout > 0`, espera até o timeout.
// Retorna quanto tempo o chamador ficou bloqueado. Sem Gate, admite na hora.
func (s AdmissionService) Admit(ctx context.Context) (time.Duration, error) {
	if s.Gate == nil {
		return 0, nil
	}
	now := s.Now
	if now == nil {
		now = time.Now
	}

	if s.AcquireTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.AcquireTimeout)
		defer cancel()
	}

	start := now()
	err := s.Gate.Acquire(ctx)
	return now().Sub(start), err
}

// Done avisa o gate que um envio admitido terminou, para quem espera reavaliar.
// Não devolve vaga.
func (s AdmissionService) Done() {
	if s.Gate != nil {
		s.Gate.Notify()
	}
}
