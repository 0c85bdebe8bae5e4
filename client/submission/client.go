package submission

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"crpt-gateway/client/submission/application"
	"crpt-gateway/client/submission/domain"
	"crpt-gateway/client/submission/infra"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultURL é o endpoint de criação de documentos da API real.
const DefaultURL = "https://ismp.crpt.ru/api/v3/lk/documents/create"

// corpo de erro guardado no RemoteRejectedError
const maxErrorBody = 64 << 10

// Target descreve o endpoint: URL e headers obrigatórios (ex: Authorization).
// Content-Type é sempre application/json.
type Target struct {
	URL     string
	Headers map[string]string
}

// Encoder serializa o documento no corpo da requisição.
type Encoder func(v any) ([]byte, error)

type Options struct {
	Target Target
	// Gate é compartilhado e não pertence ao cliente: quem cria fecha.
	Gate           domain.Gate
	AcquireTimeout time.Duration

	HTTPClient *http.Client
	Encoder    Encoder

	// MaxInFlight > 0 limita chamadas HTTP simultâneas. Não afeta a contagem
	// de admissões da janela.
	MaxInFlight     int
	InFlightTimeout time.Duration

	Stats   domain.StatsStore
	Metrics *Metrics
	Logger  *zap.Logger
}

// Client envia documentos um por um, cada envio passando pelo gate.
// É seguro para uso concorrente; não guarda estado mutável próprio.
type Client struct {
	target    Target
	admission application.AdmissionService
	inFlight  application.InFlightService
	http      *http.Client
	encode    Encoder
	stats     domain.StatsStore
	metrics   *Metrics
	logger    *zap.Logger
}

func NewClient(opts Options) (*Client, error) {
	if opts.Gate == nil {
		return nil, errors.New("submission: gate is required")
	}
	u, err := url.Parse(strings.TrimSpace(opts.Target.URL))
	if err != nil {
		return nil, fmt.Errorf("submission: invalid target url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("submission: target url must be absolute http(s), got %q", opts.Target.URL)
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	if opts.Encoder == nil {
		opts.Encoder = json.Marshal
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	headers := make(map[string]string, len(opts.Target.Headers))
	for k, v := range opts.Target.Headers {
		headers[k] = v
	}

	return &Client{
		target: Target{URL: u.String(), Headers: headers},
		admission: application.AdmissionService{
			Gate:           opts.Gate,
			AcquireTimeout: opts.AcquireTimeout,
		},
		inFlight: application.InFlightService{
			Limiter: inFlightLimiter(opts.MaxInFlight),
			Timeout: opts.InFlightTimeout,
		},
		http:    opts.HTTPClient,
		encode:  opts.Encoder,
		stats:   opts.Stats,
		metrics: opts.Metrics,
		logger:  opts.Logger.With(zap.String("target", u.String())),
	}, nil
}

func (c *Client) Target() Target { return c.target }

// Submit espera vaga no gate e envia o documento.
//
// Erros possíveis: falha de admissão (ctx, timeout ou domain.ErrGateClosed,
// embrulhados), *EncodingError, ErrNoSlot (com a causa do ctx), *TransportError
// e *RemoteRejectedError.
// A vaga da janela é consumida mesmo quando o envio falha.
func (c *Client) Submit(ctx context.Context, doc *domain.Document) error {
	log := c.logger.With(zap.String("submission_id", uuid.NewString()))

	waited, err := c.admission.Admit(ctx)
	if err != nil {
		log.Debug("admission aborted", zap.Duration("waited", waited), zap.Error(err))
		return fmt.Errorf("admission: %w", err)
	}
	defer c.admission.Done()
	c.metrics.observeAdmission(waited)

	start := time.Now()
	status, err := c.send(ctx, log, doc)
	outcome := outcomeOf(err)
	c.metrics.observeSubmission(outcome, time.Since(start))

	if c.stats != nil {
		ev := domain.StatsEvent{
			Target:  c.target.URL,
			Outcome: outcome,
			Status:  status,
			Waited:  waited,
			At:      time.Now(),
		}
		if serr := c.stats.Record(context.WithoutCancel(ctx), ev); serr != nil {
			log.Warn("failed to record submission stats", zap.Error(serr))
		}
	}

	fields := []zap.Field{
		zap.String("outcome", string(outcome)),
		zap.Int("status", status),
		zap.Duration("waited", waited),
		zap.Duration("took", time.Since(start)),
	}
	if err != nil {
		log.Warn("document submission failed", append(fields, zap.Error(err))...)
		return err
	}
	log.Info("document submitted", fields...)
	return nil
}

func (c *Client) send(ctx context.Context, log *zap.Logger, doc *domain.Document) (int, error) {
	body, err := c.encode(doc)
	if err != nil {
		return 0, &EncodingError{Err: err}
	}
	if ce := log.Check(zap.DebugLevel, "document payload"); ce != nil {
		ce.Write(zap.ByteString("body", body))
	}

	release, err := c.inFlight.Reserve(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrNoSlot, err)
	}
	defer release()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.target.URL, bytes.NewReader(body))
	if err != nil {
		return 0, &TransportError{Target: c.target.URL, Err: err}
	}
	for k, v := range c.target.Headers {
		req.Header.Set(k, v)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, &TransportError{Target: c.target.URL, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, nil
	}

	b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return resp.StatusCode, &RemoteRejectedError{Status: resp.StatusCode, Body: string(b)}
}

// inFlightLimiter evita guardar um *InFlightPool nil na interface.
func inFlightLimiter(max int) domain.InFlightLimiter {
	if p := infra.NewInFlightPool(max); p != nil {
		return p
	}
	return nil
}

func outcomeOf(err error) domain.Outcome {
	switch {
	case err == nil:
		return domain.OutcomeAccepted
	case IsEncodingError(err):
		return domain.OutcomeEncodingError
	case errors.Is(err, ErrNoSlot):
		return domain.OutcomeNoSlot
	case IsTransportError(err):
		return domain.OutcomeTransportError
	default:
		return domain.OutcomeRejected
	}
}
