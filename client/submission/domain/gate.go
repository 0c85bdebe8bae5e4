package domain

// Camada de domínio da admissão.
//
// Regras e contratos (interfaces/tipos) sem dependência de net/http.

import (
	"context"
	"errors"
)

// ErrGateClosed é retornado por Acquire quando o gate foi fechado
// (ex: shutdown do processo) enquanto o chamador esperava ou antes dele chegar.
var ErrGateClosed = errors.New("admission gate is closed")

// Gate limita quantas chamadas passam por janela de tempo.
//
// A semântica é: Acquire bloqueia até existir vaga na janela corrente, até o ctx
// encerrar ou até o gate ser fechado. Não existe Release: a capacidade volta
// apenas quando a janela é reiniciada.
//
// Notify é só uma dica para os que esperam reavaliarem o contador; nunca devolve
// vaga.
type Gate interface {
	Acquire(ctx context.Context) error
	Notify()
}
