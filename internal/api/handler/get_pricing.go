package handler

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"majaz-portal/internal/api"
	"majaz-portal/internal/domain"
	"majaz-portal/internal/i18n"
)

func GetPricing(publishableKey string, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		locale := i18n.FromRequest(r)

		tiers := make([]api.Tier, 0, len(domain.Tiers))
		for _, t := range domain.Tiers {
			tiers = append(tiers, api.Tier{
				ID:             string(t),
				Name:           i18n.T(locale, i18n.TierNameKey(string(t))),
				Features:       strings.Split(i18n.T(locale, i18n.TierFeaturesKey(string(t))), i18n.FeatureSeparator),
				Price:          t.Price(),
				Deposit:        t.Deposit(),
				Currency:       domain.Currency,
				PriceDisplay:   i18n.FormatAmount(locale, t.Price(), domain.Currency),
				DepositDisplay: i18n.FormatAmount(locale, t.Deposit(), domain.Currency),
			})
		}

		_ = writeJSON(w, logger, http.StatusOK, api.PricingResponse{
			Locale:         locale.String(),
			Dir:            locale.Dir(),
			PublishableKey: publishableKey,
			Tiers:          tiers,
		})
	}
}
