package handler

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"majaz-portal/internal/api"
	"majaz-portal/internal/domain"
	"majaz-portal/internal/repository"
)

func RequestStats(repo repository.Repository, requestTimeout time.Duration, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
		defer cancel()

		c := customer(r)

		counts, err := repo.RequestStats(ctx, c.ID)
		if err != nil {
			logger.Error("RequestStats: failed to count requests", zap.String("customer_id", c.ID), zap.Error(err))
			WriteError(w, logger, "failed to count requests", http.StatusInternalServerError)
			return
		}

		stats := api.RequestStats{ByStatus: make(map[string]int, len(domain.Statuses))}
		for _, s := range domain.Statuses {
			stats.ByStatus[string(s)] = counts[s]
			stats.Total += counts[s]
		}

		_ = writeJSON(w, logger, http.StatusOK, stats)
	}
}
