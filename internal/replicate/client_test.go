package replicate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig(url string) *Config {
	return &Config{
		Token:        "r8_test",
		BaseURL:      url,
		Model:        "black-forest-labs/flux-schnell",
		PollInterval: 10 * time.Millisecond,
		RetryMax:     0,
	}
}

func fakeReplicate(t *testing.T, finalStatus Status) (*httptest.Server, *int32) {
	t.Helper()

	var polls int32
	mux := http.NewServeMux()

	mux.HandleFunc("/models/black-forest-labs/flux-schnell/predictions", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "Bearer r8_test", r.Header.Get("Authorization"))

		var body struct {
			Input map[string]interface{} `json:"input"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.NotEmpty(t, body.Input["prompt"])

		_ = json.NewEncoder(w).Encode(map[string]interface{}{"id": "p1", "status": "starting"})
	})

	var srv *httptest.Server
	mux.HandleFunc("/predictions/p1", func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&polls, 1)
		if n < 2 {
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"id": "p1", "status": "processing"})
			return
		}

		resp := map[string]interface{}{"id": "p1", "status": finalStatus}
		if finalStatus == StatusSucceeded {
			resp["output"] = []string{srv.URL + "/files/p1.webp"}
		} else {
			resp["error"] = "NSFW content detected"
		}
		_ = json.NewEncoder(w).Encode(resp)
	})

	mux.HandleFunc("/files/p1.webp", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("RIFFimage"))
	})

	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &polls
}

func TestGenerateAndDownload(t *testing.T) {
	srv, polls := fakeReplicate(t, StatusSucceeded)
	c := New(testConfig(srv.URL), zap.NewNop())

	p, err := c.Generate(context.Background(), map[string]interface{}{"prompt": "white Rolls-Royce Cullinan at dusk"})
	require.NoError(t, err)
	require.Equal(t, StatusSucceeded, p.Status)
	require.EqualValues(t, 2, atomic.LoadInt32(polls))

	urls, err := p.URLs()
	require.NoError(t, err)
	require.Len(t, urls, 1)

	out := filepath.Join(t.TempDir(), "car.webp")
	f, err := os.Create(out)
	require.NoError(t, err)
	n, err := c.Download(context.Background(), urls[0], f)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	require.EqualValues(t, len("RIFFimage"), n)
}

func TestGenerateFailedPrediction(t *testing.T) {
	srv, _ := fakeReplicate(t, StatusFailed)
	c := New(testConfig(srv.URL), zap.NewNop())

	_, err := c.Generate(context.Background(), map[string]interface{}{"prompt": "x"})
	require.ErrorIs(t, err, ErrPredictionFailed)
}

func TestCreateRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"Invalid token"}`))
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL), zap.NewNop())
	_, err := c.Create(context.Background(), map[string]interface{}{"prompt": "x"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "401")
}

func TestCreateIsNotRetried(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.RetryMax = 3
	c := New(cfg, zap.NewNop())

	_, err := c.Create(context.Background(), map[string]interface{}{"prompt": "x"})
	require.Error(t, err)
	require.EqualValues(t, 1, atomic.LoadInt32(&hits))
}

func TestPredictionURLs(t *testing.T) {
	single := Prediction{Output: json.RawMessage(`"https://x/a.png"`)}
	urls, err := single.URLs()
	require.NoError(t, err)
	require.Equal(t, []string{"https://x/a.png"}, urls)

	empty := Prediction{Output: json.RawMessage(`[]`)}
	_, err = empty.URLs()
	require.ErrorIs(t, err, ErrNoOutput)

	missing := Prediction{}
	_, err = missing.URLs()
	require.ErrorIs(t, err, ErrNoOutput)
}
