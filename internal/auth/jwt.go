// Package auth authenticates customer dashboard requests with HS256 bearer tokens.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrUnauthorized = errors.New("unauthorized")

type Config struct {
	Secret string        `env:"JWT_SECRET" env-required:"true"`
	Issuer string        `env:"JWT_ISSUER" env-default:"majaz.ae"`
	TTL    time.Duration `env:"JWT_TTL" env-default:"24h"`
}

type Customer struct {
	ID     string
	Email  string
	Name   string
	Locale string
}

type claims struct {
	Email  string `json:"email"`
	Name   string `json:"name,omitempty"`
	Locale string `json:"locale,omitempty"`
	jwt.RegisteredClaims
}

type contextKey struct{}

func IssueToken(config *Config, c Customer, now time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Email:  c.Email,
		Name:   c.Name,
		Locale: c.Locale,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   c.ID,
			Issuer:    config.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(config.TTL)),
		},
	})

	signed, err := token.SignedString([]byte(config.Secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func ParseToken(config *Config, raw string) (Customer, error) {
	var cl claims
	_, err := jwt.ParseWithClaims(raw, &cl, func(token *jwt.Token) (interface{}, error) {
		return []byte(config.Secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(config.Issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return Customer{}, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	if cl.Subject == "" || cl.Email == "" {
		return Customer{}, fmt.Errorf("%w: missing subject or email", ErrUnauthorized)
	}

	return Customer{ID: cl.Subject, Email: cl.Email, Name: cl.Name, Locale: cl.Locale}, nil
}

// Middleware rejects requests without a valid bearer token. onFail writes the response.
func Middleware(config *Config, onFail func(w http.ResponseWriter, r *http.Request, err error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			raw, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || raw == "" {
				onFail(w, r, fmt.Errorf("%w: missing bearer token", ErrUnauthorized))
				return
			}

			customer, err := ParseToken(config, raw)
			if err != nil {
				onFail(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithCustomer(r.Context(), customer)))
		})
	}
}

func WithCustomer(ctx context.Context, c Customer) context.Context {
	return context.WithValue(ctx, contextKey{}, c)
}

func CustomerFrom(ctx context.Context) (Customer, bool) {
	c, ok := ctx.Value(contextKey{}).(Customer)
	return c, ok
}
