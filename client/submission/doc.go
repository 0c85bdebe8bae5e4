// Package submission fornece o cliente HTTP (net/http) que envia documentos
// respeitando o gate de admissão.
//
// Visão geral (camadas):
//
//   - domain: contratos e tipos do domínio (Document, Gate, InFlightLimiter, StatsStore)
//   - application: casos de uso (admissão com timeout, vagas em voo) sem net/http
//   - infra: implementações concretas (WindowGate, Registry, semáforo, stats)
//   - submission (este pacote): Client.Submit/SubmitAll + tradução de status/erros
//
// Fluxo de um envio:
//
//  1. Espera vaga no gate (pode bloquear até a próxima janela)
//  2. Serializa o documento em JSON
//  3. Faz o POST com Content-Type application/json
//  4. Status 200 é sucesso; qualquer outro vira RemoteRejectedError
//  5. Avisa o gate que terminou (dica de wake-up, não devolve vaga)
//
// Nada é repetido internamente: cada falha chega uma vez ao chamador, que decide
// se reenvia (consumindo uma nova vaga).
package submission
