package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

var testConfig = &Config{Secret: "s3cret", Issuer: "majaz.test", TTL: time.Hour}

func TestIssueAndParse(t *testing.T) {
	token, err := IssueToken(testConfig, Customer{ID: "cus_1", Email: "a@b.c", Name: "Sara", Locale: "ar"}, time.Now())
	require.NoError(t, err)

	c, err := ParseToken(testConfig, token)
	require.NoError(t, err)
	require.Equal(t, Customer{ID: "cus_1", Email: "a@b.c", Name: "Sara", Locale: "ar"}, c)
}

func TestParseRejects(t *testing.T) {
	expired, err := IssueToken(testConfig, Customer{ID: "cus_1", Email: "a@b.c"}, time.Now().Add(-2*time.Hour))
	require.NoError(t, err)

	otherIssuer, err := IssueToken(&Config{Secret: "s3cret", Issuer: "elsewhere", TTL: time.Hour}, Customer{ID: "cus_1", Email: "a@b.c"}, time.Now())
	require.NoError(t, err)

	otherSecret, err := IssueToken(&Config{Secret: "other", Issuer: "majaz.test", TTL: time.Hour}, Customer{ID: "cus_1", Email: "a@b.c"}, time.Now())
	require.NoError(t, err)

	noEmail, err := IssueToken(testConfig, Customer{ID: "cus_1"}, time.Now())
	require.NoError(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "cus_1", "email": "a@b.c", "iss": "majaz.test"})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"expired":      expired,
		"other issuer": otherIssuer,
		"other secret": otherSecret,
		"no email":     noEmail,
		"alg none":     unsigned,
		"garbage":      "not.a.token",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseToken(testConfig, token)
			require.ErrorIs(t, err, ErrUnauthorized)
		})
	}
}

func TestMiddleware(t *testing.T) {
	var failures []error
	mw := Middleware(testConfig, func(w http.ResponseWriter, _ *http.Request, err error) {
		failures = append(failures, err)
		w.WriteHeader(http.StatusUnauthorized)
	})

	h := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, ok := CustomerFrom(r.Context())
		require.True(t, ok)
		_, _ = w.Write([]byte(c.ID))
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/requests", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	token, err := IssueToken(testConfig, Customer{ID: "cus_9", Email: "x@y.z"}, time.Now())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/requests", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "cus_9", rec.Body.String())

	require.Len(t, failures, 1)
	require.True(t, errors.Is(failures[0], ErrUnauthorized))
}
