package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"majaz-portal/internal/auth"
	"majaz-portal/internal/domain"
	"majaz-portal/internal/logger"
	"majaz-portal/internal/repository/mock_repository"
)

func newTestRouter(t *testing.T) (http.Handler, *mock_repository.MockRepository, *auth.Config) {
	t.Helper()

	ctrl := gomock.NewController(t)
	repo := mock_repository.NewMockRepository(ctrl)
	authCfg := &auth.Config{Secret: "test-secret", Issuer: "majaz.ae", TTL: time.Hour}

	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewCounter(prometheus.CounterOpts{Name: "majaz_test_total"}))

	router := NewRouter(Deps{
		Repo:           repo,
		Team:           repo,
		Auth:           authCfg,
		PublishableKey: "pk_test",
		Metrics:        reg,
	}, zap.NewNop(), &logger.Config{}, &Config{
		Timeout:     time.Second,
		CORSOrigins: []string{"https://majaz.ae"},
	})

	return router, repo, authCfg
}

func TestHealthAndMetrics(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "majaz_test_total")
}

func TestPublicTeamRoute(t *testing.T) {
	router, repo, _ := newTestRouter(t)

	repo.EXPECT().ListTeamMembers(gomock.Any(), domain.RoleFounder).Return([]domain.TeamMember{}, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/team?role=founder", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"success":true,"count":0,"data":[]}`, rec.Body.String())
}

func TestDashboardRequiresToken(t *testing.T) {
	router, repo, authCfg := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/requests/stats", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	token, err := auth.IssueToken(authCfg, auth.Customer{ID: "cus-1", Email: "a@example.com"}, time.Now())
	require.NoError(t, err)

	repo.EXPECT().RequestStats(gomock.Any(), "cus-1").Return(map[domain.Status]int{}, nil)

	r := httptest.NewRequest(http.MethodGet, "/api/requests/stats", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, r)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	router, _, _ := newTestRouter(t)

	r := httptest.NewRequest(http.MethodOptions, "/api/create-payment-intent", nil)
	r.Header.Set("Origin", "https://majaz.ae")
	r.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, r)

	require.Equal(t, "https://majaz.ae", rec.Header().Get("Access-Control-Allow-Origin"))
}
