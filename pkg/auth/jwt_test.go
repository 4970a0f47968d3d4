package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

func newTestJWTService(t *testing.T, secret string, exp time.Duration) *JWTService {
	t.Helper()
	svc, err := NewJWTService(JWTConfig{
		Secret:     secret,
		Issuer:     "msgrisk-test",
		Expiration: exp,
	})
	require.NoError(t, err)
	return svc
}

func TestNewJWTService_RequiresKeyMaterial(t *testing.T) {
	_, err := NewJWTService(JWTConfig{Issuer: "x"})
	require.Error(t, err)
}

func TestGenerateAndValidateToken(t *testing.T) {
	svc := newTestJWTService(t, "test-secret", 15*time.Minute)

	token, err := svc.GenerateToken("svc-sms-gateway", "tenant-a", []string{RoleAPIClient})
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "svc-sms-gateway", claims.Subject)
	assert.Equal(t, "tenant-a", claims.TenantID)
	assert.Equal(t, []string{RoleAPIClient}, claims.Roles)
	assert.Equal(t, "msgrisk-test", claims.Issuer)
}

func TestGenerateAndValidateToken_RSA(t *testing.T) {
	privPEM, pubPEM := generateKeyPair(t)

	issuer, err := NewJWTService(JWTConfig{PrivateKeyPEM: string(privPEM), Expiration: time.Minute})
	require.NoError(t, err)
	validator, err := NewJWTService(JWTConfig{PublicKeyPEM: string(pubPEM)})
	require.NoError(t, err)

	token, err := issuer.GenerateToken("analyst-1", "tenant-b", []string{RoleAnalyst})
	require.NoError(t, err)

	claims, err := validator.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "tenant-b", claims.TenantID)

	_, err = validator.GenerateToken("x", "y", nil)
	require.Error(t, err)
}

func TestValidateToken_Expired(t *testing.T) {
	svc := newTestJWTService(t, "test-secret", -time.Hour)

	token, err := svc.GenerateToken("s", "t", []string{RoleReporter})
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	require.Error(t, err)
}

func TestValidateToken_InvalidSignature(t *testing.T) {
	svc1 := newTestJWTService(t, "secret-one", time.Minute)
	svc2 := newTestJWTService(t, "secret-two", time.Minute)

	token, err := svc1.GenerateToken("s", "t", nil)
	require.NoError(t, err)

	_, err = svc2.ValidateToken(token)
	require.Error(t, err)
}

func TestHasRole(t *testing.T) {
	claims := Claims{Roles: []string{RoleAdmin, RoleAnalyst}}

	assert.True(t, claims.HasRole(RoleAdmin))
	assert.True(t, claims.HasRole(RoleAnalyst))
	assert.False(t, claims.HasRole(RoleReporter))
}

func TestClaimsFromContext(t *testing.T) {
	ctx := context.Background()
	_, ok := ClaimsFromContext(ctx)
	assert.False(t, ok)
	assert.Empty(t, TenantFromContext(ctx))

	ctx = ContextWithClaims(ctx, &Claims{TenantID: "tenant-c", Roles: []string{RoleAnalyst}})
	got, ok := ClaimsFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "tenant-c", got.TenantID)
	assert.Equal(t, "tenant-c", TenantFromContext(ctx))
}

func TestUnaryAuthInterceptor(t *testing.T) {
	svc := newTestJWTService(t, "test-secret", time.Minute)
	token, err := svc.GenerateToken("s", "tenant-d", []string{RoleAPIClient})
	require.NoError(t, err)

	interceptor := UnaryAuthInterceptor(svc, "/grpc.health.v1.Health/Check")
	var seenTenant string
	handler := func(ctx context.Context, req any) (any, error) {
		seenTenant = TenantFromContext(ctx)
		return "ok", nil
	}

	tests := []struct {
		name     string
		method   string
		md       metadata.MD
		wantCode codes.Code
		tenant   string
	}{
		{name: "skipped method", method: "/grpc.health.v1.Health/Check", wantCode: codes.OK},
		{name: "missing metadata", method: "/msgrisk.v1.MessageRiskService/AssessMessage", wantCode: codes.Unauthenticated},
		{name: "missing header", method: "/msgrisk.v1.MessageRiskService/AssessMessage", md: metadata.Pairs("x", "y"), wantCode: codes.Unauthenticated},
		{name: "bad token", method: "/msgrisk.v1.MessageRiskService/AssessMessage", md: metadata.Pairs("authorization", "Bearer nope"), wantCode: codes.Unauthenticated},
		{name: "valid token", method: "/msgrisk.v1.MessageRiskService/AssessMessage", md: metadata.Pairs("authorization", "Bearer "+token), wantCode: codes.OK, tenant: "tenant-d"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seenTenant = ""
			ctx := context.Background()
			if tt.md != nil {
				ctx = metadata.NewIncomingContext(ctx, tt.md)
			}
			_, err := interceptor(ctx, nil, &grpc.UnaryServerInfo{FullMethod: tt.method}, handler)
			assert.Equal(t, tt.wantCode, status.Code(err))
			assert.Equal(t, tt.tenant, seenTenant)
		})
	}
}

func TestRequireRole(t *testing.T) {
	interceptor := RequireRole(RoleAdmin, RoleAnalyst)
	handler := func(ctx context.Context, req any) (any, error) { return "ok", nil }
	info := &grpc.UnaryServerInfo{FullMethod: "/msgrisk.v1.MessageRiskService/ListAssessments"}

	ctx := ContextWithClaims(context.Background(), &Claims{Roles: []string{RoleAnalyst}})
	_, err := interceptor(ctx, nil, info, handler)
	require.NoError(t, err)

	ctx = ContextWithClaims(context.Background(), &Claims{Roles: []string{RoleReporter}})
	_, err = interceptor(ctx, nil, info, handler)
	assert.Equal(t, codes.PermissionDenied, status.Code(err))
}

func TestHTTPMiddleware(t *testing.T) {
	svc := newTestJWTService(t, "test-secret", time.Minute)
	token, err := svc.GenerateToken("s", "tenant-e", nil)
	require.NoError(t, err)

	h := HTTPMiddleware(svc, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(TenantFromContext(r.Context())))
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/score", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/score", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "tenant-e", rec.Body.String())
}
