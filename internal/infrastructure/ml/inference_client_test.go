package ml

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingInferenceObserver struct {
	calls  int
	errors int
}

func (r *recordingInferenceObserver) ObserveInference(_ string, _ time.Time, err error) {
	r.calls++
	if err != nil {
		r.errors++
	}
}

func newTestClient(t *testing.T, handler http.HandlerFunc, obs InferenceObserver) *InferenceClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewInferenceClient(InferenceConfig{
		BaseURL:         srv.URL,
		ModelName:       "fraud_msg_cls",
		Timeout:         2 * time.Second,
		BreakerFailures: 2,
		BreakerOpenFor:  time.Minute,
	}, obs)
	require.NoError(t, err)
	return c
}

func testEncoding() Encoding {
	return Encoding{
		InputIDs:      []int64{2, 4, 5, 3},
		AttentionMask: []int64{1, 1, 1, 1},
		TokenTypeIDs:  []int64{0, 0, 0, 0},
	}
}

func TestInferenceClient_Infer(t *testing.T) {
	var got inferRequest
	obs := &recordingInferenceObserver{}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v2/models/fraud_msg_cls/infer", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"model_name":"fraud_msg_cls","outputs":[{"name":"logits","shape":[1,3],"datatype":"FP32","data":[0.5,-1.25,2]}]}`))
	}, obs)

	logits, err := c.Infer(context.Background(), testEncoding())
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, -1.25, 2}, logits)

	require.Len(t, got.Inputs, 3)
	assert.Equal(t, "input_ids", got.Inputs[0].Name)
	assert.Equal(t, "INT64", got.Inputs[0].Datatype)
	assert.Equal(t, []int{1, 4}, got.Inputs[0].Shape)
	assert.Equal(t, "token_type_ids", got.Inputs[2].Name)
	assert.Equal(t, "logits", got.Outputs[0].Name)
	assert.Equal(t, 1, obs.calls)
	assert.Zero(t, obs.errors)
}

func TestInferenceClient_InferErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, `{"error":"model crashed"}`},
		{"not json", http.StatusOK, `<html>`},
		{"no logits output", http.StatusOK, `{"outputs":[{"name":"probs","shape":[1,1],"data":[1]}]}`},
		{"shape mismatch", http.StatusOK, `{"outputs":[{"name":"logits","shape":[1,10],"data":[1,2]}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obs := &recordingInferenceObserver{}
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}, obs)

			_, err := c.Infer(context.Background(), testEncoding())
			require.Error(t, err)
			assert.Equal(t, 1, obs.errors)
		})
	}
}

func TestInferenceClient_BreakerOpens(t *testing.T) {
	var hits atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":"overloaded"}`))
	}, nil)

	for range 2 {
		_, err := c.Infer(context.Background(), testEncoding())
		require.Error(t, err)
	}
	assert.Equal(t, "open", c.BreakerState())

	_, err := c.Infer(context.Background(), testEncoding())
	require.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, int32(2), hits.Load())
}

func TestInferenceClient_Ready(t *testing.T) {
	ready := true
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/models/fraud_msg_cls/ready", r.URL.Path)
		if !ready {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	}, nil)

	require.NoError(t, c.Ready(context.Background()))
	ready = false
	require.Error(t, c.Ready(context.Background()))
}

func TestInferenceClient_VersionedPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/models/fraud_msg_cls/versions/3/ready", r.URL.Path)
	}))
	t.Cleanup(srv.Close)

	c, err := NewInferenceClient(InferenceConfig{BaseURL: srv.URL, ModelName: "fraud_msg_cls", ModelVersion: "3"}, nil)
	require.NoError(t, err)
	require.NoError(t, c.Ready(context.Background()))
}

func TestNewInferenceClient_Validation(t *testing.T) {
	_, err := NewInferenceClient(InferenceConfig{BaseURL: "::bad", ModelName: "m"}, nil)
	require.Error(t, err)

	_, err = NewInferenceClient(InferenceConfig{BaseURL: "http://localhost:8000"}, nil)
	require.Error(t, err)
}
