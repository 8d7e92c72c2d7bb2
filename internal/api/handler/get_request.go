package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"majaz-portal/internal/api"
	"majaz-portal/internal/repository"
)

func GetRequest(repo repository.Repository, requestTimeout time.Duration, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
		defer cancel()

		id := chi.URLParam(r, "id")
		c := customer(r)

		req, err := repo.GetRequest(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrRequestNotFound) {
				logger.Warn("GetRequest: request not found", zap.String("request_id", id))
				api.WriteApiError(w, logger, api.ErrNotFound, api.CodeNotFound, http.StatusNotFound)
				return
			}

			logger.Error("GetRequest: failed to get request", zap.String("request_id", id), zap.Error(err))
			WriteError(w, logger, "failed to get request", http.StatusInternalServerError)
			return
		}

		// Someone else's request looks the same as a missing one.
		if req.CustomerID != c.ID {
			logger.Warn("GetRequest: request owned by another customer",
				zap.String("request_id", id),
				zap.String("customer_id", c.ID),
			)
			api.WriteApiError(w, logger, api.ErrNotFound, api.CodeNotFound, http.StatusNotFound)
			return
		}

		events, err := repo.ListEvents(ctx, id)
		if err != nil {
			logger.Error("GetRequest: failed to list events", zap.String("request_id", id), zap.Error(err))
			WriteError(w, logger, "failed to list events", http.StatusInternalServerError)
			return
		}

		out := toApiRequest(req)
		out.Events = toApiEvents(events)

		_ = writeJSON(w, logger, http.StatusOK, out)
	}
}
