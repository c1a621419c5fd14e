package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/askhat-dev/travel-marketplace/internal/domain"
	"github.com/askhat-dev/travel-marketplace/internal/platform/logger"
)

const testSecret = "test-secret"

func signToken(t *testing.T, sub, role string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  sub,
		"role": role,
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func authedRequest(token string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/bookings", nil)
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	return r
}

func runJWTAuth(r *http.Request, next http.Handler) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	JWTAuth(testSecret, logger.NewNop())(next).ServeHTTP(rec, r)
	return rec
}

func decodeErrorKind(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var envelope errorEnvelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&envelope))
	return envelope.Error.Kind
}

func TestJWTAuth_ValidToken(t *testing.T) {
	userID := primitive.NewObjectID()
	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		actor, err := actorFrom(r)
		require.NoError(t, err)
		assert.Equal(t, userID, actor.ID)
		assert.Equal(t, "host", string(actor.Role))
	})

	rec := runJWTAuth(authedRequest(signToken(t, userID.Hex(), "host")), next)
	assert.True(t, called)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestJWTAuth_MissingToken(t *testing.T) {
	next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler must not run without a token")
	})

	rec := runJWTAuth(authedRequest(""), next)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "unauthorized", decodeErrorKind(t, rec))
}

func TestJWTAuth_WrongSignature(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": primitive.NewObjectID().Hex(),
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte("another-secret"))
	require.NoError(t, err)

	next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler must not run with a forged token")
	})

	rec := runJWTAuth(authedRequest(signed), next)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// A well-signed token whose subject is not a user id must be rejected as
// unauthorized, not bubble up as a server error.
func TestJWTAuth_MalformedSubject(t *testing.T) {
	next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler must not run with a malformed subject")
	})

	for _, sub := range []string{"not-an-object-id", "42"} {
		rec := runJWTAuth(authedRequest(signToken(t, sub, "guest")), next)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, sub)
		assert.Equal(t, "unauthorized", decodeErrorKind(t, rec), sub)
	}
}

func TestActorFrom_MalformedSubjectIsForbidden(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/bookings", nil)
	ctx := context.WithValue(r.Context(), UserIDCtxKey, "not-an-object-id")
	ctx = context.WithValue(ctx, UserRoleCtxKey, "guest")

	_, err := actorFrom(r.WithContext(ctx))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	kind, code := classify(err)
	assert.Equal(t, "forbidden", kind)
	assert.Equal(t, http.StatusForbidden, code)
}

func TestJWTAuth_UnknownRoleFallsBackToGuest(t *testing.T) {
	userID := primitive.NewObjectID()
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFrom(r)
		require.NoError(t, err)
		assert.Equal(t, "guest", string(actor.Role))
	})

	rec := runJWTAuth(authedRequest(signToken(t, userID.Hex(), "superuser")), next)
	assert.Equal(t, http.StatusOK, rec.Code)
}
