package ml

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/antifraud/msgrisk/internal/domain/port"
	"github.com/antifraud/msgrisk/internal/domain/valueobject"
	"github.com/antifraud/msgrisk/pkg/observability"
)

type fakeLogitsSource struct {
	err    error
	logits []float64
	last   Encoding
}

func (f *fakeLogitsSource) Infer(_ context.Context, enc Encoding) ([]float64, error) {
	f.last = enc
	return f.logits, f.err
}

func TestBertClassifier_Classify(t *testing.T) {
	src := &fakeLogitsSource{logits: []float64{0, 0, 0, 0, 0, 0, 0, 0, 3.5, 0}}
	c := NewBertClassifier(newTestTokenizer(t, 8), src)

	res, err := c.Classify(context.Background(), "立即点击")
	require.NoError(t, err)
	assert.True(t, res.Top().Category.Equal(valueobject.CategoryFakeInvestment))
	assert.Equal(t, int64(2), src.last.InputIDs[0])
	assert.Len(t, src.last.InputIDs, 8)
}

func TestBertClassifier_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  *fakeLogitsSource
	}{
		{"transport failure", &fakeLogitsSource{err: errors.New("connection refused")}},
		{"wrong logits length", &fakeLogitsSource{logits: []float64{1, 2}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewBertClassifier(newTestTokenizer(t, 8), tt.src)
			res, err := c.Classify(context.Background(), "立即点击")
			require.ErrorIs(t, err, port.ErrInference)
			assert.True(t, res.IsZero())
		})
	}
}

func TestStubModelClient_Deterministic(t *testing.T) {
	stub := NewStubModelClient(observability.NopLogger())
	c := NewBertClassifier(newTestTokenizer(t, 16), stub)

	a, err := c.Classify(context.Background(), "立即点击领取奖品")
	require.NoError(t, err)
	b, err := c.Classify(context.Background(), "立即点击领取奖品")
	require.NoError(t, err)
	assert.Equal(t, a.Predictions(), b.Predictions())
	require.NoError(t, stub.Ready(context.Background()))
}
