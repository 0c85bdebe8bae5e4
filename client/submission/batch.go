package submission

import (
	"context"

	"crpt-gateway/client/submission/domain"

	"golang.org/x/sync/errgroup"
)

// Result é o resultado do envio docs[Index] em SubmitAll.
type Result struct {
	Index    int
	Document *domain.Document
	Err      error
}

// SubmitAll envia todos os documentos com no máximo `workers` goroutines ao mesmo
// tempo (workers <= 0 usa uma por documento). O ritmo real continua sendo o do gate.
//
// Uma falha não cancela as demais: cada documento tem seu próprio Result, na
// mesma ordem de docs.
func (c *Client) SubmitAll(ctx context.Context, docs []*domain.Document, workers int) []Result {
	if len(docs) == 0 {
		return nil
	}
	if workers <= 0 || workers > len(docs) {
		workers = len(docs)
	}

	results := make([]Result, len(docs))
	var g errgroup.Group
	g.SetLimit(workers)
	for i, doc := range docs {
		g.Go(func() error {
			results[i] = Result{Index: i, Document: doc, Err: c.Submit(ctx, doc)}
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// Failed conta quantos resultados terminaram com erro.
func Failed(results []Result) int {
	n := 0
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	return n
}
