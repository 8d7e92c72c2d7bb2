package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"majaz-portal/internal/api"
	"majaz-portal/internal/i18n"
	"majaz-portal/internal/mail"
)

type ContactNotifier interface {
	ContactReceived(ctx context.Context, form mail.ContactForm) error
}

func SubmitContact(notifier ContactNotifier, requestTimeout time.Duration, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
		defer cancel()

		var in api.ContactInput
		err := decodeJSON(w, r, &in)
		if err != nil {
			logger.Warn("SubmitContact: failed to decode body", zap.Error(err))
			writeDecodeError(w, logger, err)
			return
		}

		in.Name = strings.TrimSpace(in.Name)
		in.Email = strings.TrimSpace(in.Email)
		in.Message = strings.TrimSpace(in.Message)

		err = in.Validate()
		if err != nil {
			logger.Warn("SubmitContact: validation failed", zap.Error(err))
			api.WriteValidationError(w, logger, err)
			return
		}

		locale := i18n.FromRequest(r)
		if in.Locale != "" {
			locale = i18n.Parse(in.Locale)
		}

		err = notifier.ContactReceived(ctx, mail.ContactForm{
			Name:    in.Name,
			Email:   in.Email,
			Phone:   in.Phone,
			Subject: in.Subject,
			Message: in.Message,
			Locale:  locale,
		})
		if err != nil {
			logger.Error("SubmitContact: failed to deliver enquiry", zap.Error(err))
			WriteError(w, logger, "failed to deliver enquiry", http.StatusInternalServerError)
			return
		}

		_ = writeJSON(w, logger, http.StatusAccepted, map[string]bool{"success": true})

		logger.Info("SubmitContact: enquiry delivered", zap.String("locale", locale.String()))
	}
}
