// Package replicate drives image generation on the Replicate predictions API.
package replicate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
)

var (
	ErrPredictionFailed = errors.New("prediction failed")
	ErrNoOutput         = errors.New("prediction returned no output")
)

type Config struct {
	Token        string        `env:"REPLICATE_API_TOKEN" env-required:"true"`
	BaseURL      string        `env:"REPLICATE_BASE_URL" env-default:"https://api.replicate.com/v1"`
	Model        string        `env:"REPLICATE_MODEL" env-default:"black-forest-labs/flux-schnell"`
	PollInterval time.Duration `env:"REPLICATE_POLL_INTERVAL" env-default:"2s"`
	RetryMax     int           `env:"REPLICATE_RETRY_MAX" env-default:"4"`
}

type Status string

const (
	StatusStarting   Status = "starting"
	StatusProcessing Status = "processing"
	StatusSucceeded  Status = "succeeded"
	StatusFailed     Status = "failed"
	StatusCanceled   Status = "canceled"
)

func (s Status) Done() bool {
	return s == StatusSucceeded || s == StatusFailed || s == StatusCanceled
}

type Prediction struct {
	ID     string          `json:"id"`
	Status Status          `json:"status"`
	Output json.RawMessage `json:"output"`
	Error  interface{}     `json:"error"`
}

// URLs normalizes the output field, which models return either as one URL or a list.
func (p *Prediction) URLs() ([]string, error) {
	if len(p.Output) == 0 || string(p.Output) == "null" {
		return nil, ErrNoOutput
	}

	var list []string
	if err := json.Unmarshal(p.Output, &list); err == nil {
		if len(list) == 0 {
			return nil, ErrNoOutput
		}
		return list, nil
	}

	var single string
	if err := json.Unmarshal(p.Output, &single); err != nil {
		return nil, fmt.Errorf("unexpected output %s: %w", p.Output, err)
	}
	return []string{single}, nil
}

type Client struct {
	http   *http.Client
	create *http.Client
	config *Config
	logger *zap.Logger
}

func New(config *Config, logger *zap.Logger) *Client {
	return &Client{
		http: newHTTPClient(config.RetryMax, logger),
		// Creating a prediction is billed; a retried POST may start a second one.
		create: newHTTPClient(0, logger),
		config: config,
		logger: logger,
	}
}

func newHTTPClient(retryMax int, logger *zap.Logger) *http.Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = retryMax
	rc.Logger = leveledLogger{logger.Sugar()}
	rc.RequestLogHook = func(_ retryablehttp.Logger, req *http.Request, attempt int) {
		if attempt > 0 {
			logger.Warn("replicate request retry", zap.String("method", req.Method), zap.String("url", req.URL.String()), zap.Int("attempt", attempt))
		}
	}

	return rc.StandardClient()
}

// Generate creates a prediction and waits until it settles.
func (c *Client) Generate(ctx context.Context, input map[string]interface{}) (*Prediction, error) {
	p, err := c.Create(ctx, input)
	if err != nil {
		return nil, err
	}

	return c.Wait(ctx, p)
}

func (c *Client) Create(ctx context.Context, input map[string]interface{}) (*Prediction, error) {
	body, err := json.Marshal(map[string]interface{}{"input": input})
	if err != nil {
		return nil, fmt.Errorf("failed to encode input: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s/predictions", c.config.BaseURL, c.config.Model)
	var p Prediction
	err = c.do(ctx, http.MethodPost, url, body, &p)
	if err != nil {
		return nil, fmt.Errorf("failed to create prediction: %w", err)
	}

	c.logger.Info("prediction created", zap.String("prediction_id", p.ID), zap.String("status", string(p.Status)))
	return &p, nil
}

func (c *Client) Get(ctx context.Context, id string) (*Prediction, error) {
	var p Prediction
	err := c.do(ctx, http.MethodGet, c.config.BaseURL+"/predictions/"+id, nil, &p)
	if err != nil {
		return nil, fmt.Errorf("failed to get prediction %s: %w", id, err)
	}
	return &p, nil
}

func (c *Client) Wait(ctx context.Context, p *Prediction) (*Prediction, error) {
	ticker := time.NewTicker(c.config.PollInterval)
	defer ticker.Stop()

	for !p.Status.Done() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}

		next, err := c.Get(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		p = next
	}

	if p.Status != StatusSucceeded {
		return p, fmt.Errorf("%w: %s (%v)", ErrPredictionFailed, p.Status, p.Error)
	}
	return p, nil
}

// Download streams url into w.
func (c *Client) Download(ctx context.Context, url string, w io.Writer) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to download %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("failed to download %s: status %d", url, resp.StatusCode)
	}

	return io.Copy(w, resp.Body)
}

func (c *Client) do(ctx context.Context, method, url string, body []byte, out interface{}) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.config.Token)
	req.Header.Set("Content-Type", "application/json")

	client := c.http
	if method != http.MethodGet {
		client = c.create
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("replicate returned %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

type leveledLogger struct {
	s *zap.SugaredLogger
}

func (l leveledLogger) Error(msg string, kv ...interface{}) { l.s.Errorw(msg, kv...) }
func (l leveledLogger) Info(msg string, kv ...interface{})  { l.s.Debugw(msg, kv...) }
func (l leveledLogger) Debug(msg string, kv ...interface{}) { l.s.Debugw(msg, kv...) }
func (l leveledLogger) Warn(msg string, kv ...interface{})  { l.s.Warnw(msg, kv...) }
