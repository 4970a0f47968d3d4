package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/antifraud/msgrisk/internal/domain/model"
	"github.com/antifraud/msgrisk/internal/domain/valueobject"
)

func newTestCache(t *testing.T, ttl time.Duration) (*RedisResultCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisResultCache(client, "fraud_msg_cls", ttl), mr
}

func sampleResult(t *testing.T) model.MessageRiskResult {
	t.Helper()
	cls, err := valueobject.NewClassificationResult([]float64{0, 0, 5, 0, 1, 0, 0, 0, 0, 0})
	require.NoError(t, err)
	return model.MessageRiskResult{
		Classification: cls,
		RiskLevel:      valueobject.RiskLevelHigh,
		Keywords:       []string{"客服", "理赔"},
		Features:       valueobject.RiskFeatureSet{KeywordRisk: 68, LinkRisk: 30, UrgencyIndex: 57, SemanticAnomaly: cls.Top().Probability * 100},
	}
}

func TestRedisResultCache_RoundTrip(t *testing.T) {
	c, _ := newTestCache(t, time.Hour)
	ctx := context.Background()
	hash := model.HashText("您的快递已丢失，请联系客服办理理赔")

	_, ok, err := c.Get(ctx, hash)
	require.NoError(t, err)
	assert.False(t, ok)

	want := sampleResult(t)
	require.NoError(t, c.Set(ctx, hash, want))

	got, ok, err := c.Get(ctx, hash)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want.Classification.Predictions(), got.Classification.Predictions())
	assert.True(t, got.RiskLevel.Equal(valueobject.RiskLevelHigh))
	assert.Equal(t, want.Keywords, got.Keywords)
	assert.Equal(t, want.Features, got.Features)
}

func TestRedisResultCache_TTL(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "abc", sampleResult(t)))
	assert.Equal(t, time.Minute, mr.TTL("msgrisk:result:fraud_msg_cls:abc"))

	mr.FastForward(2 * time.Minute)
	_, ok, err := c.Get(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisResultCache_CorruptEntry(t *testing.T) {
	c, mr := newTestCache(t, 0)
	require.NoError(t, mr.Set("msgrisk:result:fraud_msg_cls:bad", "{not json"))

	_, _, err := c.Get(context.Background(), "bad")
	require.Error(t, err)
}

func TestRedisResultCache_ServerDown(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1, DialTimeout: 200 * time.Millisecond})
	t.Cleanup(func() { _ = client.Close() })
	c := NewRedisResultCache(client, "fraud_msg_cls", 0)

	_, _, err := c.Get(context.Background(), "abc")
	require.Error(t, err)
	require.Error(t, c.Ping(context.Background()))
}
