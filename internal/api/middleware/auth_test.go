package middleware

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-market-sync/internal/domain"
	"github.com/feral-file/ff-market-sync/internal/logger"
)

const testAddress = "0xb47e3cd837dDF8e4c57F05d70Ab865de6e193BBB"

func TestMain(m *testing.M) {
	if err := logger.Initialize(logger.Config{Debug: false}); err != nil {
		panic(err)
	}
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type testKeys struct {
	private   *rsa.PrivateKey
	publicPEM string
}

func newTestKeys(t *testing.T) testKeys {
	t.Helper()
	private, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	der, err := x509.MarshalPKIXPublicKey(&private.PublicKey)
	require.NoError(t, err)
	return testKeys{
		private:   private,
		publicPEM: string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})),
	}
}

func (k testKeys) sign(t *testing.T, claims Claims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(k.private)
	require.NoError(t, err)
	return signed
}

func TestAuthenticate(t *testing.T) {
	keys := newTestKeys(t)
	other := newTestKeys(t)
	cfg := AuthConfig{JWTPublicKey: keys.publicPEM, APIKeys: []string{"key-1", ""}}

	valid := keys.sign(t, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strings.ToLower(testAddress),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	admin := keys.sign(t, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: testAddress},
		Admin:            true,
	})
	expired := keys.sign(t, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   testAddress,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})
	badSubject := keys.sign(t, Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "alice"}})
	foreign := other.sign(t, Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: testAddress}})

	tests := []struct {
		name       string
		header     string
		wantOK     bool
		wantType   string
		wantCaller domain.Caller
	}{
		{name: "user token", header: "Bearer " + valid, wantOK: true, wantType: AuthTypeJWT, wantCaller: domain.Caller{Address: domain.NormalizeAddress(testAddress)}},
		{name: "admin token", header: "bearer " + admin, wantOK: true, wantType: AuthTypeJWT, wantCaller: domain.Caller{Address: domain.NormalizeAddress(testAddress), IsAdmin: true}},
		{name: "api key", header: "ApiKey key-1", wantOK: true, wantType: AuthTypeAPIKey, wantCaller: domain.Caller{IsAdmin: true}},
		{name: "empty api key never matches", header: "ApiKey ", wantOK: false},
		{name: "expired token", header: "Bearer " + expired},
		{name: "subject is not an address", header: "Bearer " + badSubject},
		{name: "signed by another key", header: "Bearer " + foreign},
		{name: "missing header", header: ""},
		{name: "malformed header", header: "Bearer"},
		{name: "unknown scheme", header: "Basic dXNlcjpwYXNz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Authenticate(tt.header, cfg)
			assert.Equal(t, tt.wantOK, result.Success)
			if !tt.wantOK {
				assert.Error(t, result.Error)
				return
			}
			assert.NoError(t, result.Error)
			assert.Equal(t, tt.wantType, result.AuthType)
			assert.Equal(t, tt.wantCaller, result.Caller)
		})
	}
}

func TestAuthenticate_NoPublicKey(t *testing.T) {
	keys := newTestKeys(t)
	token := keys.sign(t, Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: testAddress}})

	result := Authenticate("Bearer "+token, AuthConfig{})
	assert.False(t, result.Success)
	assert.Contains(t, result.Error.Error(), "public key not configured")
}

func newTestRouter(handlers ...gin.HandlerFunc) (*gin.Engine, *domain.Caller) {
	var seen domain.Caller
	router := gin.New()
	handlers = append(handlers, func(c *gin.Context) {
		seen = CallerFromContext(c)
		c.Status(http.StatusNoContent)
	})
	router.GET("/", handlers...)
	return router, &seen
}

func serve(router *gin.Engine, authHeader string) int {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w.Code
}

func TestOptionalAuth(t *testing.T) {
	cfg := AuthConfig{APIKeys: []string{"key-1"}}

	router, seen := newTestRouter(OptionalAuth(cfg))
	assert.Equal(t, http.StatusNoContent, serve(router, ""))
	assert.Equal(t, domain.Caller{}, *seen)

	assert.Equal(t, http.StatusNoContent, serve(router, "ApiKey key-1"))
	assert.True(t, seen.IsAdmin)

	assert.Equal(t, http.StatusUnauthorized, serve(router, "ApiKey nope"))
}

func TestAuth_RequireAdmin(t *testing.T) {
	keys := newTestKeys(t)
	cfg := AuthConfig{JWTPublicKey: keys.publicPEM, APIKeys: []string{"key-1"}}
	user := keys.sign(t, Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: testAddress}})

	router, _ := newTestRouter(Auth(cfg), RequireAdmin())

	assert.Equal(t, http.StatusUnauthorized, serve(router, ""))
	assert.Equal(t, http.StatusForbidden, serve(router, "Bearer "+user))
	assert.Equal(t, http.StatusNoContent, serve(router, "ApiKey key-1"))
}

func TestCallerFromContext_Anonymous(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Equal(t, domain.Caller{}, CallerFromContext(c))
}
