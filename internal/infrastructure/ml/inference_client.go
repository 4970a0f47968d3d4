package ml

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const logitsOutput = "logits"

// InferenceConfig configures an InferenceClient.
type InferenceConfig struct {
	BaseURL      string
	ModelName    string
	ModelVersion string
	Timeout      time.Duration

	// BreakerFailures consecutive failures open the breaker for BreakerOpenFor.
	BreakerFailures uint32
	BreakerOpenFor  time.Duration
}

// InferenceObserver records the latency and outcome of each inference call.
type InferenceObserver interface {
	ObserveInference(model string, started time.Time, err error)
}

// InferenceClient calls a KServe/Triton v2 REST inference endpoint.
type InferenceClient struct {
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	observer   InferenceObserver
	modelPath  string
	baseURL    string
	modelName  string
}

// NewInferenceClient creates an InferenceClient. observer may be nil.
func NewInferenceClient(cfg InferenceConfig, observer InferenceObserver) (*InferenceClient, error) {
	if _, err := url.ParseRequestURI(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid inference url %q: %w", cfg.BaseURL, err)
	}
	if cfg.ModelName == "" {
		return nil, errors.New("model name is required")
	}

	modelPath := "/v2/models/" + url.PathEscape(cfg.ModelName)
	if cfg.ModelVersion != "" {
		modelPath += "/versions/" + url.PathEscape(cfg.ModelVersion)
	}

	failures := cfg.BreakerFailures
	if failures == 0 {
		failures = 5
	}

	return &InferenceClient{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "inference:" + cfg.ModelName,
			Timeout: cfg.BreakerOpenFor,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= failures
			},
		}),
		observer:  observer,
		modelPath: modelPath,
		baseURL:   cfg.BaseURL,
		modelName: cfg.ModelName,
	}, nil
}

type inferTensor struct {
	Name     string `json:"name"`
	Shape    []int  `json:"shape"`
	Datatype string `json:"datatype"`
	Data     any    `json:"data"`
}

type inferOutputRequest struct {
	Name string `json:"name"`
}

type inferRequest struct {
	Inputs  []inferTensor        `json:"inputs"`
	Outputs []inferOutputRequest `json:"outputs"`
}

type inferOutput struct {
	Name     string    `json:"name"`
	Shape    []int     `json:"shape"`
	Datatype string    `json:"datatype"`
	Data     []float64 `json:"data"`
}

type inferResponse struct {
	ModelName string        `json:"model_name"`
	Outputs   []inferOutput `json:"outputs"`
	Error     string        `json:"error"`
}

// Infer sends one encoded sequence and returns the raw logits.
func (c *InferenceClient) Infer(ctx context.Context, enc Encoding) (logits []float64, err error) {
	ctx, span := otel.Tracer("msgrisk/ml").Start(ctx, "InferenceClient.Infer")
	span.SetAttributes(attribute.String("model", c.modelName), attribute.Int("sequence_length", len(enc.InputIDs)))
	started := time.Now()
	defer func() {
		if c.observer != nil {
			c.observer.ObserveInference(c.modelName, started, err)
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	out, err := c.breaker.Execute(func() (interface{}, error) {
		return c.infer(ctx, enc)
	})
	if err != nil {
		return nil, err
	}
	return out.([]float64), nil
}

func (c *InferenceClient) infer(ctx context.Context, enc Encoding) ([]float64, error) {
	shape := []int{1, len(enc.InputIDs)}
	body, err := json.Marshal(inferRequest{
		Inputs: []inferTensor{
			{Name: "input_ids", Shape: shape, Datatype: "INT64", Data: enc.InputIDs},
			{Name: "attention_mask", Shape: shape, Datatype: "INT64", Data: enc.AttentionMask},
			{Name: "token_type_ids", Shape: shape, Datatype: "INT64", Data: enc.TokenTypeIDs},
		},
		Outputs: []inferOutputRequest{{Name: logitsOutput}},
	})
	if err != nil {
		return nil, fmt.Errorf("encode infer request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+c.modelPath+"/infer", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build infer request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("infer request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read infer response: %w", err)
	}

	var parsed inferResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("decode infer response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("inference server returned %d: %s", resp.StatusCode, parsed.Error)
	}

	for _, o := range parsed.Outputs {
		if o.Name != logitsOutput {
			continue
		}
		if len(o.Shape) != 2 || o.Shape[0] != 1 || o.Shape[1] != len(o.Data) {
			return nil, fmt.Errorf("unexpected logits shape %v for %d values", o.Shape, len(o.Data))
		}
		return o.Data, nil
	}
	return nil, fmt.Errorf("response has no %q output", logitsOutput)
}

// Ready reports whether the server has the model loaded.
func (c *InferenceClient) Ready(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+c.modelPath+"/ready", nil)
	if err != nil {
		return fmt.Errorf("build ready request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ready request: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("model %s ready check returned %d", c.modelName, resp.StatusCode)
	}
	return nil
}

// BreakerState exposes the circuit breaker state for health reporting.
func (c *InferenceClient) BreakerState() string {
	return c.breaker.State().String()
}
