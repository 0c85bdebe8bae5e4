// Package infra contém implementações concretas (infraestrutura) para os contratos
// definidos no pacote domain.
//
// Exemplos:
//   - WindowGate: gate de janela fixa (contador + reset periódico)
//   - Registry: um WindowGate por endpoint, com limpeza dos ociosos
//   - InFlightPool: semáforo em channel para limitar chamadas em voo
//   - MemoryStatsStore / RedisStatsStore: estatísticas de envio
package infra
