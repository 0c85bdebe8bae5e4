package domain

import "context"

// InFlightLimiter limita quantas chamadas HTTP admitidas podem estar em voo ao
// mesmo tempo. É independente do Gate: não consome nem devolve vaga da janela.
//
// Reserve bloqueia até haver vaga ou o ctx encerrar; nesse caso retorna ctx.Err().
// release pode ser chamada mais de uma vez, só a primeira libera a vaga.
type InFlightLimiter interface {
	Reserve(ctx context.Context) (release func(), err error)
}
