// Package application contém os casos de uso (regras de aplicação) para admissão
// de envios e limite de chamadas em voo.
//
// Ele depende apenas do pacote domain e não conhece net/http.
// Ex.: AdmissionService.Admit(ctx) bloqueia no gate e informa quanto tempo esperou.
package application
