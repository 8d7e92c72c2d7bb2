package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"majaz-portal/internal/api"
	"majaz-portal/internal/domain"
	"majaz-portal/internal/i18n"
)

type TeamLister interface {
	ListTeamMembers(ctx context.Context, role domain.Role) ([]domain.TeamMember, error)
}

func ListTeam(team TeamLister, requestTimeout time.Duration, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
		defer cancel()

		var role domain.Role
		if raw := r.URL.Query().Get("role"); raw != "" {
			parsed, err := domain.ParseRole(raw)
			if err != nil {
				logger.Warn("ListTeam: invalid role", zap.String("role", raw))
				msg := "role must be one of: " + joinRoles()
				api.WriteApiError(w, logger, msg, api.CodeInvalidRole, http.StatusBadRequest)
				return
			}
			role = parsed
		}

		members, err := team.ListTeamMembers(ctx, role)
		if err != nil {
			logger.Error("ListTeam: failed to list team members", zap.String("role", string(role)), zap.Error(err))
			WriteError(w, logger, "failed to list team members", http.StatusInternalServerError)
			return
		}

		locale := i18n.FromRequest(r)
		data := make([]api.TeamMember, len(members))
		for i, m := range members {
			data[i] = localizeMember(m, locale)
		}

		_ = writeJSON(w, logger, http.StatusOK, api.TeamResponse{
			Success: true,
			Count:   len(data),
			Data:    data,
		})

		logger.Debug("ListTeam: successfully listed team", zap.String("role", string(role)), zap.Int("count", len(data)))
	}
}

func localizeMember(m domain.TeamMember, locale i18n.Locale) api.TeamMember {
	name, bio := m.Name, m.Bio
	if locale == i18n.Arabic {
		if m.NameAr != "" {
			name = m.NameAr
		}
		if m.BioAr != "" {
			bio = m.BioAr
		}
	}

	languages := m.Languages
	if languages == nil {
		languages = []string{}
	}

	return api.TeamMember{
		ID:              m.ID,
		Name:            name,
		Role:            string(m.Role),
		RoleLabel:       i18n.T(locale, i18n.RoleKey(string(m.Role))),
		Bio:             bio,
		Rating:          m.Rating,
		InspectionCount: m.InspectionCount,
		Email:           m.Email,
		Phone:           m.Phone,
		WhatsApp:        m.WhatsApp,
		PhotoURL:        m.PhotoURL,
		Languages:       languages,
	}
}

func joinRoles() string {
	names := make([]string, len(domain.Roles))
	for i, r := range domain.Roles {
		names[i] = string(r)
	}
	return strings.Join(names, ", ")
}
