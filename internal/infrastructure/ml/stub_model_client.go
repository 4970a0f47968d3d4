package ml

import (
	"context"
	"hash/fnv"
	"log/slog"

	"github.com/antifraud/msgrisk/internal/domain/valueobject"
)

// StubModelClient is a LogitsSource for development without an inference
// server. Logits are derived from the token ids, so output is deterministic
// but carries no meaning.
type StubModelClient struct {
	logger *slog.Logger
}

// NewStubModelClient creates a new stub model client.
func NewStubModelClient(logger *slog.Logger) *StubModelClient {
	return &StubModelClient{logger: logger}
}

// Infer returns pseudo-logits for enc.
func (c *StubModelClient) Infer(_ context.Context, enc Encoding) ([]float64, error) {
	h := fnv.New64a()
	for _, id := range enc.InputIDs {
		var b [8]byte
		for i := range b {
			b[i] = byte(id >> (8 * i))
		}
		_, _ = h.Write(b[:])
	}
	seed := h.Sum64()

	logits := make([]float64, valueobject.NumFraudCategories)
	for i := range logits {
		logits[i] = float64((seed>>(i*6))&0x3f) / 16
	}

	c.logger.Debug("stub model inference", slog.Int("tokens", countTokens(enc)))
	return logits, nil
}

// Ready always succeeds.
func (c *StubModelClient) Ready(context.Context) error { return nil }

func countTokens(enc Encoding) int {
	n := 0
	for _, m := range enc.AttentionMask {
		n += int(m)
	}
	return n
}
