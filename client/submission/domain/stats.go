package domain

import (
	"context"
	"time"
)

// Outcome é o resultado final de um envio admitido pelo gate.
type Outcome string

const (
	OutcomeAccepted       Outcome = "accepted"
	OutcomeRejected       Outcome = "rejected"
	OutcomeTransportError Outcome = "transport_error"
	OutcomeEncodingError  Outcome = "encoding_error"
	OutcomeNoSlot         Outcome = "no_slot"
)

// StatsEvent representa um envio que passou pelo gate.
//
// Target é a URL (ou chave lógica) do endpoint. Status só é preenchido quando
// houve resposta HTTP. Waited é quanto tempo o chamador ficou bloqueado no gate.
//
// Observação: cuidado com cardinalidade de Target em bases como Redis/Prometheus.
type StatsEvent struct {
	Target  string
	Outcome Outcome
	Status  int
	Waited  time.Duration

	At time.Time
}

// StatsStore é a estratégia de persistência para estatísticas de envio.
//
// Implementações podem armazenar em Redis, memória, etc.
// O cliente trata erro como best-effort (não derruba o envio).
type StatsStore interface {
	Record(ctx context.Context, ev StatsEvent) error
}
