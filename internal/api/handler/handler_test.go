package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"majaz-portal/internal/auth"
	"majaz-portal/internal/domain"
	"majaz-portal/internal/mail"
	"majaz-portal/internal/repository"
	"majaz-portal/internal/repository/mock_repository"
)

const testTimeout = time.Second

var testCustomer = auth.Customer{ID: "cus-1", Email: "layla@example.com", Name: "Layla", Locale: "en"}

type errorBody struct {
	Error struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Fields  map[string]string `json:"fields"`
	} `json:"error"`
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()

	var body errorBody
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func authed(r *http.Request) *http.Request {
	return r.WithContext(auth.WithCustomer(r.Context(), testCustomer))
}

func jsonBody(t *testing.T, v interface{}) *bytes.Reader {
	t.Helper()

	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(raw)
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func ownedRequest() *domain.Request {
	return &domain.Request{
		ID:            "req-1",
		CustomerID:    testCustomer.ID,
		CustomerEmail: testCustomer.Email,
		Locale:        "en",
		Tier:          domain.TierPlatinum,
		Status:        domain.StatusPendingPayment,
		VehicleMake:   "Porsche",
		VehicleModel:  "911",
		VehicleYear:   2023,
		Amount:        domain.TierPlatinum.Price(),
		Currency:      domain.Currency,
		CreatedAt:     time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC),
		UpdatedAt:     time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestListTeam(t *testing.T) {
	members := []domain.TeamMember{
		{ID: "tm-1", Name: "Omar Haddad", NameAr: "عمر حداد", Role: domain.RoleInspector, Bio: "Porsche specialist", BioAr: "متخصص بورشه", Rating: 4.9},
	}

	tests := []struct {
		name       string
		url        string
		setup      func(repo *mock_repository.MockRepository)
		wantStatus int
		wantCode   string
		wantName   string
		wantLabel  string
	}{
		{
			name: "all members",
			url:  "/api/team",
			setup: func(repo *mock_repository.MockRepository) {
				repo.EXPECT().ListTeamMembers(gomock.Any(), domain.Role("")).Return(members, nil)
			},
			wantStatus: http.StatusOK,
			wantName:   "Omar Haddad",
			wantLabel:  "Inspector",
		},
		{
			name: "role filter in arabic",
			url:  "/api/team?role=inspector&locale=ar",
			setup: func(repo *mock_repository.MockRepository) {
				repo.EXPECT().ListTeamMembers(gomock.Any(), domain.RoleInspector).Return(members, nil)
			},
			wantStatus: http.StatusOK,
			wantName:   "عمر حداد",
			wantLabel:  "مفتش",
		},
		{
			name:       "unknown role",
			url:        "/api/team?role=driver",
			setup:      func(repo *mock_repository.MockRepository) {},
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_ROLE",
		},
		{
			name: "repository failure",
			url:  "/api/team",
			setup: func(repo *mock_repository.MockRepository) {
				repo.EXPECT().ListTeamMembers(gomock.Any(), gomock.Any()).Return(nil, errors.New("boom"))
			},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := mock_repository.NewMockRepository(ctrl)
			tt.setup(repo)

			rec := httptest.NewRecorder()
			ListTeam(repo, testTimeout, zap.NewNop())(rec, httptest.NewRequest(http.MethodGet, tt.url, nil))

			require.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantCode != "" {
				body := decodeError(t, rec)
				require.Equal(t, tt.wantCode, body.Error.Code)
				require.Contains(t, body.Error.Message, "inspector")
				return
			}
			if tt.wantStatus != http.StatusOK {
				return
			}

			var resp struct {
				Success bool `json:"success"`
				Count   int  `json:"count"`
				Data    []struct {
					Name      string   `json:"name"`
					RoleLabel string   `json:"role_label"`
					Languages []string `json:"languages"`
				} `json:"data"`
			}
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			require.True(t, resp.Success)
			require.Equal(t, 1, resp.Count)
			require.Equal(t, tt.wantName, resp.Data[0].Name)
			require.Equal(t, tt.wantLabel, resp.Data[0].RoleLabel)
			require.NotNil(t, resp.Data[0].Languages)
		})
	}
}

func TestGetPricing(t *testing.T) {
	rec := httptest.NewRecorder()
	GetPricing("pk_test_123", zap.NewNop())(rec, httptest.NewRequest(http.MethodGet, "/api/pricing?locale=ar", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Locale         string `json:"locale"`
		Dir            string `json:"dir"`
		PublishableKey string `json:"publishable_key"`
		Tiers          []struct {
			ID       string   `json:"id"`
			Features []string `json:"features"`
			Price    int64    `json:"price"`
			Deposit  int64    `json:"deposit"`
		} `json:"tiers"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Equal(t, "ar", resp.Locale)
	require.Equal(t, "rtl", resp.Dir)
	require.Equal(t, "pk_test_123", resp.PublishableKey)
	require.Len(t, resp.Tiers, len(domain.Tiers))
	require.Equal(t, "basic", resp.Tiers[0].ID)
	require.Equal(t, int64(150000), resp.Tiers[0].Price)
	require.Equal(t, int64(30000), resp.Tiers[0].Deposit)
	require.NotEmpty(t, resp.Tiers[0].Features)
}

type fakeContactNotifier struct {
	forms []mail.ContactForm
	err   error
}

func (f *fakeContactNotifier) ContactReceived(_ context.Context, form mail.ContactForm) error {
	f.forms = append(f.forms, form)
	return f.err
}

func TestSubmitContact(t *testing.T) {
	t.Run("accepted", func(t *testing.T) {
		n := &fakeContactNotifier{}
		body := `{"name":" Khalid ","email":"khalid@example.com","message":"Interested in a Diamond inspection.","locale":"ar"}`

		rec := httptest.NewRecorder()
		SubmitContact(n, testTimeout, zap.NewNop())(rec, httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(body)))

		require.Equal(t, http.StatusAccepted, rec.Code)
		require.Len(t, n.forms, 1)
		require.Equal(t, "Khalid", n.forms[0].Name)
		require.Equal(t, "ar", n.forms[0].Locale.String())
	})

	t.Run("validation failure", func(t *testing.T) {
		n := &fakeContactNotifier{}

		rec := httptest.NewRecorder()
		SubmitContact(n, testTimeout, zap.NewNop())(rec, httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(`{"email":"x"}`)))

		require.Equal(t, http.StatusBadRequest, rec.Code)
		body := decodeError(t, rec)
		require.Equal(t, "VALIDATION_FAILED", body.Error.Code)
		require.Contains(t, body.Error.Fields, "email")
		require.Empty(t, n.forms)
	})

	t.Run("delivery failure", func(t *testing.T) {
		n := &fakeContactNotifier{err: errors.New("smtp down")}
		body := `{"name":"Khalid","email":"khalid@example.com","message":"Interested in a Diamond inspection."}`

		rec := httptest.NewRecorder()
		SubmitContact(n, testTimeout, zap.NewNop())(rec, httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(body)))

		require.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestCreateRequest(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock_repository.NewMockRepository(ctrl)

	repo.EXPECT().CreateRequest(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, req *domain.Request, event domain.Event) (*domain.Request, error) {
			require.Equal(t, testCustomer.ID, req.CustomerID)
			require.Equal(t, testCustomer.Email, req.CustomerEmail)
			require.Equal(t, domain.StatusPendingPayment, req.Status)
			require.Equal(t, domain.TierGold.Price(), req.Amount)
			require.Equal(t, "WP0ZZZ99ZPS123456", req.VIN)
			require.Equal(t, "ar", req.Locale)
			require.NotNil(t, req.PreferredDate)
			require.Equal(t, domain.EventRequestCreated, event.Type)

			out := *req
			out.ID = "req-new"
			return &out, nil
		})

	body := jsonBody(t, map[string]interface{}{
		"tier":           "gold",
		"vehicle_make":   "Bentley",
		"vehicle_model":  "Continental GT",
		"vehicle_year":   2022,
		"vin":            "wp0zzz99zps123456",
		"location":       "Abu Dhabi",
		"preferred_date": "2026-11-02",
		"locale":         "ar",
	})

	rec := httptest.NewRecorder()
	CreateRequest(repo, testTimeout, zap.NewNop())(rec, authed(httptest.NewRequest(http.MethodPost, "/api/requests", body)))

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		ID            string `json:"id"`
		Status        string `json:"status"`
		PreferredDate string `json:"preferred_date"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Equal(t, "req-new", resp.ID)
	require.Equal(t, "pending_payment", resp.Status)
	require.Equal(t, "2026-11-02", resp.PreferredDate)
}

func TestCreateRequestValidation(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock_repository.NewMockRepository(ctrl)

	rec := httptest.NewRecorder()
	body := strings.NewReader(`{"tier":"silver","vehicle_make":"Bentley"}`)
	CreateRequest(repo, testTimeout, zap.NewNop())(rec, authed(httptest.NewRequest(http.MethodPost, "/api/requests", body)))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeError(t, rec)
	require.Contains(t, resp.Error.Fields, "tier")
	require.Contains(t, resp.Error.Fields, "vehicle_model")
}

func TestJSONBodyLimit(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock_repository.NewMockRepository(ctrl)
	notifier := &fakeContactNotifier{}

	oversized := `{"notes":"` + strings.Repeat("a", int(maxJSONBody)) + `"}`

	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"create request", CreateRequest(repo, testTimeout, zap.NewNop())},
		{"submit contact", SubmitContact(notifier, testTimeout, zap.NewNop())},
		{"create payment intent", CreatePaymentIntent(repo, &fakePayments{}, testTimeout, zap.NewNop())},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.handler(rec, authed(httptest.NewRequest(http.MethodPost, "/api", strings.NewReader(oversized))))

			require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
		})
	}
	require.Empty(t, notifier.forms)
}

func TestListRequests(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock_repository.NewMockRepository(ctrl)

	repo.EXPECT().ListRequests(gomock.Any(), domain.RequestFilter{
		CustomerID: testCustomer.ID,
		Status:     domain.StatusPaid,
		Query:      "porsche",
	}).Return([]domain.Request{*ownedRequest()}, nil)

	rec := httptest.NewRecorder()
	ListRequests(repo, testTimeout, zap.NewNop())(rec, authed(httptest.NewRequest(http.MethodGet, "/api/requests?status=paid&q=+porsche+", nil)))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Equal(t, 1, resp.Count)
}

func TestListRequestsRejectsUnknownStatus(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock_repository.NewMockRepository(ctrl)

	rec := httptest.NewRecorder()
	ListRequests(repo, testTimeout, zap.NewNop())(rec, authed(httptest.NewRequest(http.MethodGet, "/api/requests?status=lost", nil)))

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRequestStats(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock_repository.NewMockRepository(ctrl)

	repo.EXPECT().RequestStats(gomock.Any(), testCustomer.ID).Return(map[domain.Status]int{
		domain.StatusPaid:           2,
		domain.StatusPendingPayment: 1,
	}, nil)

	rec := httptest.NewRecorder()
	RequestStats(repo, testTimeout, zap.NewNop())(rec, authed(httptest.NewRequest(http.MethodGet, "/api/requests/stats", nil)))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Total    int            `json:"total"`
		ByStatus map[string]int `json:"by_status"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Equal(t, 3, resp.Total)
	require.Equal(t, 2, resp.ByStatus["paid"])
	require.Equal(t, 0, resp.ByStatus["refunded"])
	require.Len(t, resp.ByStatus, len(domain.Statuses))
}

func TestGetRequest(t *testing.T) {
	t.Run("with events", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mock_repository.NewMockRepository(ctrl)

		repo.EXPECT().GetRequest(gomock.Any(), "req-1").Return(ownedRequest(), nil)
		repo.EXPECT().ListEvents(gomock.Any(), "req-1").Return([]domain.Event{
			{ID: "ev-1", RequestID: "req-1", Type: domain.EventRequestCreated, Description: "created"},
		}, nil)

		rec := httptest.NewRecorder()
		r := withURLParam(authed(httptest.NewRequest(http.MethodGet, "/api/requests/req-1", nil)), "id", "req-1")
		GetRequest(repo, testTimeout, zap.NewNop())(rec, r)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			ID     string `json:"id"`
			Events []struct {
				Type string `json:"type"`
			} `json:"events"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		require.Equal(t, "req-1", resp.ID)
		require.Len(t, resp.Events, 1)
		require.Equal(t, "request_created", resp.Events[0].Type)
	})

	t.Run("missing", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mock_repository.NewMockRepository(ctrl)

		repo.EXPECT().GetRequest(gomock.Any(), "nope").Return(nil, repository.ErrRequestNotFound)

		rec := httptest.NewRecorder()
		r := withURLParam(authed(httptest.NewRequest(http.MethodGet, "/api/requests/nope", nil)), "id", "nope")
		GetRequest(repo, testTimeout, zap.NewNop())(rec, r)

		require.Equal(t, http.StatusNotFound, rec.Code)
		require.Equal(t, "NOT_FOUND", decodeError(t, rec).Error.Code)
	})

	t.Run("other customer", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mock_repository.NewMockRepository(ctrl)

		foreign := ownedRequest()
		foreign.CustomerID = "cus-2"
		repo.EXPECT().GetRequest(gomock.Any(), "req-1").Return(foreign, nil)

		rec := httptest.NewRecorder()
		r := withURLParam(authed(httptest.NewRequest(http.MethodGet, "/api/requests/req-1", nil)), "id", "req-1")
		GetRequest(repo, testTimeout, zap.NewNop())(rec, r)

		require.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestUnauthorized(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	})
	h := auth.Middleware(&auth.Config{Secret: "s", Issuer: "majaz.ae", TTL: time.Hour}, Unauthorized(zap.NewNop()))(next)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/requests", nil))

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "UNAUTHORIZED", decodeError(t, rec).Error.Code)
}
