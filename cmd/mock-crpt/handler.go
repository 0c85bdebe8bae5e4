package main

import (
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"strconv"
	"sync/atomic"

	"crpt-gateway/client/submission/domain"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const createPath = "/api/v3/lk/documents/create"

type server struct {
	quota  *quota
	logger *zap.Logger

	// failStatus != 0 força essa resposta para todo documento válido.
	failStatus int
	received   atomic.Int64
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Post(createPath, s.createDocument)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "ok\n")
	})
	return r
}

func (s *server) createDocument(w http.ResponseWriter, r *http.Request) {
	n := s.received.Add(1)
	key := clientKey(r)
	log := s.logger.With(zap.String("client", key), zap.Int64("seq", n))

	if !s.quota.Allow(key) {
		log.Warn("quota exceeded")
		w.Header().Set("Retry-After", "1")
		http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
		return
	}

	if mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type")); err != nil || mt != "application/json" {
		http.Error(w, "content type must be application/json", http.StatusUnsupportedMediaType)
		return
	}

	var doc domain.Document
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		log.Info("invalid document", zap.Error(err))
		http.Error(w, "bad request: "+err.Error(), http.StatusBadRequest)
		return
	}

	if s.failStatus != 0 {
		http.Error(w, "forced failure", s.failStatus)
		return
	}

	log.Info("document received", zap.String("doc_id", doc.DocID), zap.Int("products", len(doc.Products)))
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"value": strconv.FormatInt(n, 10)})
}
