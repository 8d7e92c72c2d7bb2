package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"majaz-portal/internal/api"
	"majaz-portal/internal/domain"
	"majaz-portal/internal/repository"
)

func ListRequests(repo repository.Repository, requestTimeout time.Duration, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
		defer cancel()

		c := customer(r)
		filter := domain.RequestFilter{
			CustomerID: c.ID,
			Query:      strings.TrimSpace(r.URL.Query().Get("q")),
		}

		if raw := r.URL.Query().Get("status"); raw != "" && raw != "all" {
			status := domain.Status(raw)
			if !status.Valid() {
				logger.Warn("ListRequests: invalid status", zap.String("status", raw))
				api.WriteApiError(w, logger, "unknown status "+raw, api.CodeValidationFailed, http.StatusBadRequest)
				return
			}
			filter.Status = status
		}

		requests, err := repo.ListRequests(ctx, filter)
		if err != nil {
			logger.Error("ListRequests: failed to list requests", zap.String("customer_id", c.ID), zap.Error(err))
			WriteError(w, logger, "failed to list requests", http.StatusInternalServerError)
			return
		}

		data := make([]api.Request, len(requests))
		for i := range requests {
			data[i] = toApiRequest(&requests[i])
		}

		_ = writeJSON(w, logger, http.StatusOK, api.RequestList{Count: len(data), Data: data})
	}
}
