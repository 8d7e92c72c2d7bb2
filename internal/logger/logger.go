package logger

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const envLocal = "local"

type Config struct {
	Level     string   `env:"LOGGER_LEVEL" env-default:"info"`
	Env       string   `env:"LOGGER_ENV" env-default:"prod"`
	SkipPaths []string `env:"LOGGER_SKIP_PATHS" env-separator:"," env-default:"/healthz,/metrics"`
}

func New(config *Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(config.Level)
	if err != nil {
		return nil, fmt.Errorf("failed to parse log level %q: %w", config.Level, err)
	}

	var zapCfg zap.Config
	if config.Env == envLocal {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
		zapCfg.EncoderConfig.TimeKey = "timestamp"
		zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	log, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	return log, nil
}

// MiddlewareLogger logs every request after it has been served.
func MiddlewareLogger(log *zap.Logger, config *Config) func(next http.Handler) http.Handler {
	skip := make(map[string]struct{}, len(config.SkipPaths))
	for _, p := range config.SkipPaths {
		p = strings.TrimSpace(p)
		if p != "" {
			skip[p] = struct{}{}
		}
	}

	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			if _, ok := skip[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			defer func() {
				fields := []zap.Field{
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("duration", time.Since(start)),
					zap.String("remote_addr", r.RemoteAddr),
					zap.String("request_id", middleware.GetReqID(r.Context())),
				}

				switch {
				case ww.Status() >= http.StatusInternalServerError:
					log.Error("http request", fields...)
				case ww.Status() >= http.StatusBadRequest:
					log.Warn("http request", fields...)
				default:
					log.Info("http request", fields...)
				}
			}()

			next.ServeHTTP(ww, r)
		}

		return http.HandlerFunc(fn)
	}
}
