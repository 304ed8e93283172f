package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/time/rate"

	"github.com/ZanzyTHEbar/sentiment-o-meter/internal/analysis"
	"github.com/ZanzyTHEbar/sentiment-o-meter/internal/errors"
	"github.com/ZanzyTHEbar/sentiment-o-meter/internal/resilience"
)

const (
	DefaultHuggingFaceURL = "https://api-inference.huggingface.co"
	DefaultModel          = "nlptown/bert-base-multilingual-uncased-sentiment"
)

// HuggingFaceConfig configures the hosted inference client
type HuggingFaceConfig struct {
	BaseURL           string
	Model             string
	Token             string
	Timeout           time.Duration
	RequestsPerSecond float64
	Breaker           resilience.CircuitBreakerConfig
	HTTPClient        *http.Client
	Clock             clockwork.Clock
}

// HuggingFaceClient calls a text-classification model on the Hugging Face
// Inference API. It implements analysis.StarModel.
type HuggingFaceClient struct {
	endpoint string
	model    string
	token    string
	client   *http.Client
	limiter  *rate.Limiter
	breaker  *resilience.CircuitBreaker
}

type inferenceRequest struct {
	Inputs  string           `json:"inputs"`
	Options inferenceOptions `json:"options"`
}

type inferenceOptions struct {
	WaitForModel bool `json:"wait_for_model"`
}

type inferenceError struct {
	Error         string  `json:"error"`
	EstimatedTime float64 `json:"estimated_time,omitempty"`
}

// NewHuggingFaceClient creates a client with rate limiting and a circuit breaker
func NewHuggingFaceClient(cfg HuggingFaceConfig) *HuggingFaceClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultHuggingFaceURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:          10,
				MaxIdleConnsPerHost:   5,
				IdleConnTimeout:       30 * time.Second,
				TLSHandshakeTimeout:   10 * time.Second,
				ResponseHeaderTimeout: cfg.Timeout,
			},
			Timeout: cfg.Timeout,
		}
	}

	limit := rate.Inf
	burst := 1
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
		burst = int(cfg.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
	}

	return &HuggingFaceClient{
		endpoint: strings.TrimRight(cfg.BaseURL, "/") + "/models/" + cfg.Model,
		model:    cfg.Model,
		token:    cfg.Token,
		client:   client,
		limiter:  rate.NewLimiter(limit, burst),
		breaker:  resilience.NewCircuitBreaker(cfg.Breaker, cfg.Clock),
	}
}

// Model returns the configured model id
func (h *HuggingFaceClient) Model() string {
	return h.model
}

// BreakerState returns the state of the client's circuit breaker
func (h *HuggingFaceClient) BreakerState() resilience.CircuitBreakerState {
	return h.breaker.State()
}

// Predict classifies text and returns the star probabilities
func (h *HuggingFaceClient) Predict(ctx context.Context, text string) ([]analysis.StarScore, error) {
	var stars []analysis.StarScore

	err := h.breaker.Call(func() error {
		var err error
		stars, err = h.predict(ctx, text)
		return err
	})
	if err != nil {
		var cbErr *resilience.CircuitBreakerError
		if stderrors.As(err, &cbErr) {
			return nil, errors.NewClassifierError(errors.FailureUnavailable, "classifier circuit is "+cbErr.State.String(), err)
		}
		return nil, err
	}

	return stars, nil
}

func (h *HuggingFaceClient) predict(ctx context.Context, text string) ([]analysis.StarScore, error) {
	if err := h.limiter.Wait(ctx); err != nil {
		return nil, errors.NewClassifierError(errors.FailureTimeout, "rate limiter wait aborted", err)
	}

	body, err := json.Marshal(inferenceRequest{
		Inputs:  text,
		Options: inferenceOptions{WaitForModel: true},
	})
	if err != nil {
		return nil, errors.NewClassifierError(errors.FailureMalformed, "failed to encode inference request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, errors.NewClassifierError(errors.FailureUnavailable, "failed to build inference request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "Sentiment-o-Meter/1.0")
	if h.token != "" {
		req.Header.Set("Authorization", "Bearer "+h.token)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		if stderrors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
			return nil, errors.NewClassifierError(errors.FailureTimeout, "inference request timed out", err)
		}
		return nil, errors.NewClassifierError(errors.FailureUnavailable, "inference request failed", err)
	}
	defer errors.SafeClose(resp.Body, "inference response body")

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, errors.NewClassifierError(errors.FailureUnavailable, "failed to read inference response", err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := strings.TrimSpace(string(payload))
		var apiErr inferenceError
		if json.Unmarshal(payload, &apiErr) == nil && apiErr.Error != "" {
			msg = apiErr.Error
		}
		return nil, errors.NewClassifierError(errors.FailureUnavailable,
			fmt.Sprintf("inference API error: status %d", resp.StatusCode), stderrors.New(msg))
	}

	return ParseInferenceResponse(payload)
}

// ParseInferenceResponse decodes a text-classification response. The API
// answers a single input with either [[{label,score}…]] or [{label,score}…].
func ParseInferenceResponse(payload []byte) ([]analysis.StarScore, error) {
	var nested [][]analysis.StarScore
	if err := json.Unmarshal(payload, &nested); err == nil {
		if len(nested) == 0 || len(nested[0]) == 0 {
			return nil, errors.NewClassifierError(errors.FailureMalformed, "empty inference response", nil)
		}
		return nested[0], nil
	}

	var flat []analysis.StarScore
	if err := json.Unmarshal(payload, &flat); err != nil {
		return nil, errors.NewClassifierError(errors.FailureMalformed, "unexpected inference response shape", err)
	}
	if len(flat) == 0 {
		return nil, errors.NewClassifierError(errors.FailureMalformed, "empty inference response", nil)
	}
	return flat, nil
}
