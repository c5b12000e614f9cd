package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sourcemart/storefront-api/internal/auth"
	"github.com/sourcemart/storefront-api/internal/common"
)

func identityProbe(t *testing.T) (http.Handler, *string, *string) {
	t.Helper()
	var userID, accountKey string
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, _ = common.UserID(r.Context())
		accountKey, _ = common.AccountKey(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	return h, &userID, &accountKey
}

func TestIdentityFromBearerToken(t *testing.T) {
	tokens := &auth.Tokens{Secret: []byte("test-secret"), Issuer: "storefront"}
	signed, err := tokens.SignAccessToken("user-42", time.Hour)
	require.NoError(t, err)

	probe, userID, accountKey := identityProbe(t)
	handler := auth.Middleware{Tokens: tokens}.Identity(probe)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, "user-42", *userID)
	require.Equal(t, "user:user-42", *accountKey)
}

func TestIdentityFromAnonHeader(t *testing.T) {
	probe, userID, accountKey := identityProbe(t)
	handler := auth.Middleware{Tokens: &auth.Tokens{Secret: []byte("test-secret")}}.Identity(probe)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(auth.AnonHeader, "cart-abc")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Empty(t, *userID)
	require.Equal(t, "anon:cart-abc", *accountKey)
}

func TestIdentityInvalidTokenFallsBackToAnon(t *testing.T) {
	issuer := &auth.Tokens{Secret: []byte("other-secret")}
	signed, err := issuer.SignAccessToken("user-42", time.Hour)
	require.NoError(t, err)

	probe, userID, accountKey := identityProbe(t)
	handler := auth.Middleware{Tokens: &auth.Tokens{Secret: []byte("test-secret")}}.Identity(probe)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	req.Header.Set(auth.AnonHeader, "cart-abc")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Empty(t, *userID, "forged token is ignored")
	require.Equal(t, "anon:cart-abc", *accountKey)
}

func TestExpiredTokenRejected(t *testing.T) {
	past := time.Now().Add(-2 * time.Hour)
	tokens := &auth.Tokens{Secret: []byte("test-secret"), Now: func() time.Time { return past }}
	signed, err := tokens.SignAccessToken("user-42", time.Hour)
	require.NoError(t, err)

	live := &auth.Tokens{Secret: []byte("test-secret")}
	_, err = live.ParseAccessToken(signed)
	require.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestRequireIdentity(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	guarded := auth.RequireIdentity(next)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	guarded.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(common.WithAccountKey(req.Context(), "anon:cart-abc"))
	rec = httptest.NewRecorder()
	guarded.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}
